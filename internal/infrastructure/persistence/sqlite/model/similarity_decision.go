package model

type SimilarityDecision struct {
	DecisionID string  `gorm:"column:decision_id;type:text;primaryKey"`
	CapsuleID  string  `gorm:"column:capsule_id;type:text;not null;index"`
	UserID     string  `gorm:"column:user_id;type:text;not null;index"`
	BestScore  float64 `gorm:"column:best_score;not null;default:0"`
	Threshold  float64 `gorm:"column:threshold;not null;default:0"`
	Reused     bool    `gorm:"column:reused;not null;default:0"`
	DonorID    string  `gorm:"column:donor_id;type:text;not null;default:''"`
	Candidates int     `gorm:"column:candidates;not null;default:0"`
	CreatedAt  string  `gorm:"column:created_at;type:text;not null"`
}

func (SimilarityDecision) TableName() string {
	return "similarity_decisions"
}
