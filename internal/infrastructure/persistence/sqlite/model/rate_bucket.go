package model

type RateBucket struct {
	BucketKey string  `gorm:"column:bucket_key;type:text;primaryKey"`
	Tokens    float64 `gorm:"column:tokens;not null"`
	UpdatedAt string  `gorm:"column:updated_at;type:text;not null"`
}

func (RateBucket) TableName() string {
	return "rate_buckets"
}
