package model

type Alert struct {
	AlertID     string  `gorm:"column:alert_id;type:text;primaryKey"`
	InsightID   string  `gorm:"column:insight_id;type:text;not null;uniqueIndex"`
	EntryID     string  `gorm:"column:entry_id;type:text;not null;index"`
	UserID      string  `gorm:"column:user_id;type:text;not null;index"`
	Tier        string  `gorm:"column:tier;type:text;not null"`
	Score       float64 `gorm:"column:score;not null;default:0"`
	ReasonsJSON string  `gorm:"column:reasons_json;type:text;not null;default:''"`
	Source      string  `gorm:"column:source;type:text;not null"`
	Action      string  `gorm:"column:action;type:text;not null;default:''"`
	Resolved    bool    `gorm:"column:resolved;not null;default:false"`
	CreatedAt   string  `gorm:"column:created_at;type:text;not null"`
}

func (Alert) TableName() string {
	return "alerts"
}
