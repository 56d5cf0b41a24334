package model

type ClassifierDecision struct {
	DecisionID string `gorm:"column:decision_id;type:text;primaryKey"`
	EntryID    string `gorm:"column:entry_id;type:text;not null;index"`
	Path       string `gorm:"column:path;type:text;not null"`
	ScoresJSON string `gorm:"column:scores_json;type:text;not null"`
	ShadowJSON string `gorm:"column:shadow_json;type:text;not null;default:''"`
	Fallback   bool   `gorm:"column:fallback;not null;default:0"`
	LatencyMs  int64  `gorm:"column:latency_ms;not null;default:0"`
	CreatedAt  string `gorm:"column:created_at;type:text;not null;index"`
}

func (ClassifierDecision) TableName() string {
	return "classifier_decisions"
}
