package ports

import (
	"context"
	"errors"
)

var (
	ErrEntryNotFound   = errors.New("journal entry not found")
	ErrInsightNotFound = errors.New("insight not found")
	ErrCapsuleNotFound = errors.New("capsule not found")
)

// EntryRecord is the persistence view of a journal entry. Timestamps are
// RFC3339Nano strings; JSON-bearing columns stay serialized at this layer.
type EntryRecord struct {
	EntryID        string
	UserID         string
	Text           string
	State          string
	ModerationJSON string
	CapsuleReadyID *string
	CreatedAt      string
	SubmittedAt    *string
	UpdatedAt      string
}

type InsightRecord struct {
	InsightID    string
	EntryID      string
	UserID       string
	Summary      string
	AnalysisJSON string
	AlertTier    string
	RiskScore    float64
	Enforcement  string
	CreatedAt    string
}

// ClassifierDecisionRecord is an append-only audit row; nothing in the
// pipeline reads it back.
type ClassifierDecisionRecord struct {
	DecisionID string
	EntryID    string
	Path       string
	ScoresJSON string
	ShadowJSON string
	Fallback   bool
	LatencyMs  int64
	CreatedAt  string
}

type AlertRecord struct {
	AlertID     string
	InsightID   string
	EntryID     string
	UserID      string
	Tier        string
	Score       float64
	ReasonsJSON string
	Source      string
	Action      string
	Resolved    bool
	CreatedAt   string
}

type CapsuleRecord struct {
	CapsuleID   string
	InsightID   string
	EntryID     string
	UserID      string
	Type        string
	State       string
	PayloadJSON string
	Fallback    bool
	CreatedAt   string
	ReadyAt     *string
}

type EmbeddingRecord struct {
	EmbeddingID string
	CapsuleID   string
	UserID      string
	Version     string
	Dims        int
	VectorJSON  string
	CreatedAt   string
}

// SimilarityDecisionRecord logs one reuse lookup, reused or not.
type SimilarityDecisionRecord struct {
	DecisionID string
	CapsuleID  string
	UserID     string
	BestScore  float64
	Threshold  float64
	Reused     bool
	DonorID    string
	Candidates int
	CreatedAt  string
}

type RateBucketRecord struct {
	BucketKey string
	Tokens    float64
	UpdatedAt string
}

type JournalRepository interface {
	CreateEntry(ctx context.Context, entry EntryRecord) error
	GetEntry(ctx context.Context, entryID string) (EntryRecord, error)
	UpdateEntrySubmission(ctx context.Context, entryID string, state string, moderationJSON string, submittedAt string) error
	SetEntryState(ctx context.Context, entryID string, state string, updatedAt string) error
	SetEntryCapsule(ctx context.Context, entryID string, capsuleID string, updatedAt string) error

	// CreateInsight inserts at most one insight per entry. The bool reports
	// whether this call performed the insert.
	CreateInsight(ctx context.Context, insight InsightRecord) (bool, error)
	GetInsight(ctx context.Context, insightID string) (InsightRecord, error)
	FindInsightByEntry(ctx context.Context, entryID string) (InsightRecord, bool, error)
	AppendClassifierDecision(ctx context.Context, decision ClassifierDecisionRecord) error

	// CreateAlert inserts at most one alert per insight.
	CreateAlert(ctx context.Context, alert AlertRecord) (bool, error)
	FindAlertByInsight(ctx context.Context, insightID string) (AlertRecord, bool, error)

	// ReserveCapsule inserts the generating-state row for an insight; the
	// bool reports whether this worker won the reservation.
	ReserveCapsule(ctx context.Context, capsule CapsuleRecord) (bool, error)
	FinalizeCapsule(ctx context.Context, capsuleID string, payloadJSON string, fallback bool, readyAt string) error
	GetCapsule(ctx context.Context, capsuleID string) (CapsuleRecord, error)
	FindCapsuleByInsight(ctx context.Context, insightID string) (CapsuleRecord, bool, error)

	StoreEmbedding(ctx context.Context, embedding EmbeddingRecord) error
	ListRecentEmbeddings(ctx context.Context, userID string, limit int) ([]EmbeddingRecord, error)
	AppendSimilarityDecision(ctx context.Context, decision SimilarityDecisionRecord) error

	GetRateBucket(ctx context.Context, bucketKey string) (RateBucketRecord, bool, error)
	PutRateBucket(ctx context.Context, bucket RateBucketRecord) error
}
