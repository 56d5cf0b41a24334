package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"solace/internal/infrastructure/persistence/sqlite/model"
	"solace/internal/ports"
)

func setupJournalRepository(t *testing.T) *JournalRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "journal.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.Entry{},
		&model.Insight{},
		&model.ClassifierDecision{},
		&model.Alert{},
		&model.Capsule{},
		&model.CapsuleEmbedding{},
		&model.SimilarityDecision{},
		&model.RateBucket{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewJournalRepository(db)
}

func testEntry(id string, now string) ports.EntryRecord {
	return ports.EntryRecord{
		EntryID:   id,
		UserID:    "user-1",
		Text:      "today was a long day",
		State:     "draft",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestEntryLifecycle(t *testing.T) {
	repo := setupJournalRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if err := repo.CreateEntry(ctx, testEntry("e-1", now)); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	got, err := repo.GetEntry(ctx, "e-1")
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if got.State != "draft" || got.SubmittedAt != nil {
		t.Fatalf("GetEntry() = %+v", got)
	}

	if err := repo.UpdateEntrySubmission(ctx, "e-1", "submitted", `{"selfHarm":false}`, now); err != nil {
		t.Fatalf("UpdateEntrySubmission() error = %v", err)
	}
	got, err = repo.GetEntry(ctx, "e-1")
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if got.State != "submitted" || got.SubmittedAt == nil || *got.SubmittedAt != now {
		t.Fatalf("GetEntry() after submit = %+v", got)
	}

	if err := repo.SetEntryState(ctx, "e-1", "processed", now); err != nil {
		t.Fatalf("SetEntryState() error = %v", err)
	}
	if err := repo.SetEntryCapsule(ctx, "e-1", "c-1", now); err != nil {
		t.Fatalf("SetEntryCapsule() error = %v", err)
	}
	got, err = repo.GetEntry(ctx, "e-1")
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if got.State != "processed" || got.CapsuleReadyID == nil || *got.CapsuleReadyID != "c-1" {
		t.Fatalf("GetEntry() after capsule = %+v", got)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	repo := setupJournalRepository(t)
	if _, err := repo.GetEntry(context.Background(), "missing"); err != ports.ErrEntryNotFound {
		t.Fatalf("GetEntry() error = %v, want ErrEntryNotFound", err)
	}
}

func TestCreateInsightIdempotent(t *testing.T) {
	repo := setupJournalRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	insight := ports.InsightRecord{
		InsightID:    "i-1",
		EntryID:      "e-1",
		UserID:       "user-1",
		Summary:      "a long day",
		AnalysisJSON: "{}",
		AlertTier:    "none",
		Enforcement:  "off",
		CreatedAt:    now,
	}
	inserted, err := repo.CreateInsight(ctx, insight)
	if err != nil {
		t.Fatalf("CreateInsight() error = %v", err)
	}
	if !inserted {
		t.Fatal("CreateInsight() inserted = false on first call")
	}

	dup := insight
	dup.InsightID = "i-2"
	inserted, err = repo.CreateInsight(ctx, dup)
	if err != nil {
		t.Fatalf("CreateInsight() duplicate error = %v", err)
	}
	if inserted {
		t.Fatal("CreateInsight() inserted = true for duplicate entry_id")
	}

	got, found, err := repo.FindInsightByEntry(ctx, "e-1")
	if err != nil || !found {
		t.Fatalf("FindInsightByEntry() = %v, %v", found, err)
	}
	if got.InsightID != "i-1" {
		t.Fatalf("FindInsightByEntry() insight_id = %s, want the first insert", got.InsightID)
	}
}

func TestCreateAlertIdempotent(t *testing.T) {
	repo := setupJournalRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	alert := ports.AlertRecord{
		AlertID:   "a-1",
		InsightID: "i-1",
		EntryID:   "e-1",
		UserID:    "user-1",
		Tier:      "soft_nudge",
		Score:     0.6,
		Source:    "composite",
		CreatedAt: now,
	}
	inserted, err := repo.CreateAlert(ctx, alert)
	if err != nil || !inserted {
		t.Fatalf("CreateAlert() = %v, %v", inserted, err)
	}

	dup := alert
	dup.AlertID = "a-2"
	dup.Tier = "hard_escalate"
	inserted, err = repo.CreateAlert(ctx, dup)
	if err != nil {
		t.Fatalf("CreateAlert() duplicate error = %v", err)
	}
	if inserted {
		t.Fatal("CreateAlert() inserted = true for duplicate insight_id")
	}

	got, found, err := repo.FindAlertByInsight(ctx, "i-1")
	if err != nil || !found {
		t.Fatalf("FindAlertByInsight() = %v, %v", found, err)
	}
	if got.Tier != "soft_nudge" {
		t.Fatalf("FindAlertByInsight() tier = %s, want the first insert kept", got.Tier)
	}
}

func TestReserveAndFinalizeCapsule(t *testing.T) {
	repo := setupJournalRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	capsule := ports.CapsuleRecord{
		CapsuleID: "c-1",
		InsightID: "i-1",
		EntryID:   "e-1",
		UserID:    "user-1",
		Type:      "story",
		State:     "generating",
		CreatedAt: now,
	}
	won, err := repo.ReserveCapsule(ctx, capsule)
	if err != nil || !won {
		t.Fatalf("ReserveCapsule() = %v, %v", won, err)
	}

	dup := capsule
	dup.CapsuleID = "c-2"
	won, err = repo.ReserveCapsule(ctx, dup)
	if err != nil {
		t.Fatalf("ReserveCapsule() duplicate error = %v", err)
	}
	if won {
		t.Fatal("ReserveCapsule() won = true for duplicate insight_id")
	}

	if err := repo.FinalizeCapsule(ctx, "c-1", `{"story":"..."}`, false, now); err != nil {
		t.Fatalf("FinalizeCapsule() error = %v", err)
	}
	got, err := repo.GetCapsule(ctx, "c-1")
	if err != nil {
		t.Fatalf("GetCapsule() error = %v", err)
	}
	if got.State != "ready" || got.ReadyAt == nil {
		t.Fatalf("GetCapsule() after finalize = %+v", got)
	}

	byInsight, found, err := repo.FindCapsuleByInsight(ctx, "i-1")
	if err != nil || !found {
		t.Fatalf("FindCapsuleByInsight() = %v, %v", found, err)
	}
	if byInsight.CapsuleID != "c-1" {
		t.Fatalf("FindCapsuleByInsight() capsule_id = %s", byInsight.CapsuleID)
	}
}

func TestListRecentEmbeddingsOrderAndLimit(t *testing.T) {
	repo := setupJournalRepository(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		rec := ports.EmbeddingRecord{
			EmbeddingID: string(rune('a' + i)),
			CapsuleID:   "c-" + string(rune('a'+i)),
			UserID:      "user-1",
			Version:     "v2",
			Dims:        2,
			VectorJSON:  "[1,0]",
			CreatedAt:   base.Add(time.Duration(i) * time.Second).Format(time.RFC3339Nano),
		}
		if err := repo.StoreEmbedding(ctx, rec); err != nil {
			t.Fatalf("StoreEmbedding() error = %v", err)
		}
	}

	items, err := repo.ListRecentEmbeddings(ctx, "user-1", 3)
	if err != nil {
		t.Fatalf("ListRecentEmbeddings() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("ListRecentEmbeddings() len = %d, want 3", len(items))
	}
	if items[0].EmbeddingID != "e" {
		t.Fatalf("ListRecentEmbeddings() first = %s, want newest", items[0].EmbeddingID)
	}

	other, err := repo.ListRecentEmbeddings(ctx, "user-2", 10)
	if err != nil {
		t.Fatalf("ListRecentEmbeddings() error = %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("ListRecentEmbeddings() for other user len = %d", len(other))
	}
}

func TestRateBucketUpsert(t *testing.T) {
	repo := setupJournalRepository(t)
	ctx := context.Background()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if _, found, err := repo.GetRateBucket(ctx, "user-1:submit"); err != nil || found {
		t.Fatalf("GetRateBucket() = %v, %v, want miss", found, err)
	}

	if err := repo.PutRateBucket(ctx, ports.RateBucketRecord{BucketKey: "user-1:submit", Tokens: 99, UpdatedAt: now}); err != nil {
		t.Fatalf("PutRateBucket() error = %v", err)
	}
	if err := repo.PutRateBucket(ctx, ports.RateBucketRecord{BucketKey: "user-1:submit", Tokens: 98, UpdatedAt: now}); err != nil {
		t.Fatalf("PutRateBucket() second error = %v", err)
	}

	got, found, err := repo.GetRateBucket(ctx, "user-1:submit")
	if err != nil || !found {
		t.Fatalf("GetRateBucket() = %v, %v", found, err)
	}
	if got.Tokens != 98 {
		t.Fatalf("GetRateBucket() tokens = %v, want 98 after upsert", got.Tokens)
	}
}
