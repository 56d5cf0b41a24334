package model

type Entry struct {
	EntryID        string  `gorm:"column:entry_id;type:text;primaryKey"`
	UserID         string  `gorm:"column:user_id;type:text;not null;index"`
	Text           string  `gorm:"column:text;type:text;not null"`
	State          string  `gorm:"column:state;type:text;not null"`
	ModerationJSON string  `gorm:"column:moderation_json;type:text;not null;default:''"`
	CapsuleReadyID *string `gorm:"column:capsule_ready_id;type:text"`
	CreatedAt      string  `gorm:"column:created_at;type:text;not null"`
	SubmittedAt    *string `gorm:"column:submitted_at;type:text"`
	UpdatedAt      string  `gorm:"column:updated_at;type:text;not null"`
}

func (Entry) TableName() string {
	return "entries"
}
