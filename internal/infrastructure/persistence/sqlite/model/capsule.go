package model

type Capsule struct {
	CapsuleID   string  `gorm:"column:capsule_id;type:text;primaryKey"`
	InsightID   string  `gorm:"column:insight_id;type:text;not null;uniqueIndex"`
	EntryID     string  `gorm:"column:entry_id;type:text;not null;index"`
	UserID      string  `gorm:"column:user_id;type:text;not null;index"`
	Type        string  `gorm:"column:type;type:text;not null"`
	State       string  `gorm:"column:state;type:text;not null"`
	PayloadJSON string  `gorm:"column:payload_json;type:text;not null;default:''"`
	Fallback    bool    `gorm:"column:fallback;not null;default:0"`
	CreatedAt   string  `gorm:"column:created_at;type:text;not null"`
	ReadyAt     *string `gorm:"column:ready_at;type:text"`
}

func (Capsule) TableName() string {
	return "capsules"
}
