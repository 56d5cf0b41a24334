package model

type Insight struct {
	InsightID    string  `gorm:"column:insight_id;type:text;primaryKey"`
	EntryID      string  `gorm:"column:entry_id;type:text;not null;uniqueIndex"`
	UserID       string  `gorm:"column:user_id;type:text;not null;index"`
	Summary      string  `gorm:"column:summary;type:text;not null"`
	AnalysisJSON string  `gorm:"column:analysis_json;type:text;not null"`
	AlertTier    string  `gorm:"column:alert_tier;type:text;not null"`
	RiskScore    float64 `gorm:"column:risk_score;not null;default:0"`
	Enforcement  string  `gorm:"column:enforcement;type:text;not null"`
	CreatedAt    string  `gorm:"column:created_at;type:text;not null"`
}

func (Insight) TableName() string {
	return "insights"
}
