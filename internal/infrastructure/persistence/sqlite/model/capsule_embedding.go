package model

type CapsuleEmbedding struct {
	EmbeddingID string `gorm:"column:embedding_id;type:text;primaryKey"`
	CapsuleID   string `gorm:"column:capsule_id;type:text;not null;index"`
	UserID      string `gorm:"column:user_id;type:text;not null;index"`
	Version     string `gorm:"column:version;type:text;not null"`
	Dims        int    `gorm:"column:dims;not null"`
	VectorJSON  string `gorm:"column:vector_json;type:text;not null"`
	CreatedAt   string `gorm:"column:created_at;type:text;not null;index"`
}

func (CapsuleEmbedding) TableName() string {
	return "capsule_embeddings"
}
