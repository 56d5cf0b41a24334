package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"solace/internal/errs"
	"solace/internal/infrastructure/persistence/sqlite/model"
	"solace/internal/ports"
)

type JournalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *JournalRepository) CreateEntry(ctx context.Context, entry ports.EntryRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Entry{
		EntryID:        entry.EntryID,
		UserID:         entry.UserID,
		Text:           entry.Text,
		State:          entry.State,
		ModerationJSON: entry.ModerationJSON,
		CapsuleReadyID: entry.CapsuleReadyID,
		CreatedAt:      entry.CreatedAt,
		SubmittedAt:    entry.SubmittedAt,
		UpdatedAt:      entry.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert entry")
	}
	return nil
}

func (r *JournalRepository) GetEntry(ctx context.Context, entryID string) (ports.EntryRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.EntryRecord{}, err
	}

	var row model.Entry
	if err := db.Where("entry_id = ?", entryID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.EntryRecord{}, ports.ErrEntryNotFound
		}
		return ports.EntryRecord{}, errs.Wrap(err, "query entry")
	}
	return mapEntry(row), nil
}

func (r *JournalRepository) UpdateEntrySubmission(ctx context.Context, entryID string, state string, moderationJSON string, submittedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&model.Entry{}).
		Where("entry_id = ?", entryID).
		Updates(map[string]any{
			"state":           state,
			"moderation_json": moderationJSON,
			"submitted_at":    submittedAt,
			"updated_at":      submittedAt,
		}).Error; err != nil {
		return errs.Wrap(err, "update entry submission")
	}
	return nil
}

func (r *JournalRepository) SetEntryState(ctx context.Context, entryID string, state string, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&model.Entry{}).
		Where("entry_id = ?", entryID).
		Updates(map[string]any{
			"state":      state,
			"updated_at": updatedAt,
		}).Error; err != nil {
		return errs.Wrap(err, "update entry state")
	}
	return nil
}

func (r *JournalRepository) SetEntryCapsule(ctx context.Context, entryID string, capsuleID string, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&model.Entry{}).
		Where("entry_id = ?", entryID).
		Updates(map[string]any{
			"capsule_ready_id": capsuleID,
			"updated_at":       updatedAt,
		}).Error; err != nil {
		return errs.Wrap(err, "update entry capsule pointer")
	}
	return nil
}

func (r *JournalRepository) CreateInsight(ctx context.Context, insight ports.InsightRecord) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	row := model.Insight{
		InsightID:    insight.InsightID,
		EntryID:      insight.EntryID,
		UserID:       insight.UserID,
		Summary:      insight.Summary,
		AnalysisJSON: insight.AnalysisJSON,
		AlertTier:    insight.AlertTier,
		RiskScore:    insight.RiskScore,
		Enforcement:  insight.Enforcement,
		CreatedAt:    insight.CreatedAt,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "insert insight")
	}
	return result.RowsAffected > 0, nil
}

func (r *JournalRepository) GetInsight(ctx context.Context, insightID string) (ports.InsightRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.InsightRecord{}, err
	}

	var row model.Insight
	if err := db.Where("insight_id = ?", insightID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.InsightRecord{}, ports.ErrInsightNotFound
		}
		return ports.InsightRecord{}, errs.Wrap(err, "query insight")
	}
	return mapInsight(row), nil
}

func (r *JournalRepository) FindInsightByEntry(ctx context.Context, entryID string) (ports.InsightRecord, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.InsightRecord{}, false, err
	}

	var row model.Insight
	if err := db.Where("entry_id = ?", entryID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.InsightRecord{}, false, nil
		}
		return ports.InsightRecord{}, false, errs.Wrap(err, "query insight by entry")
	}
	return mapInsight(row), true, nil
}

func (r *JournalRepository) AppendClassifierDecision(ctx context.Context, decision ports.ClassifierDecisionRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.ClassifierDecision{
		DecisionID: decision.DecisionID,
		EntryID:    decision.EntryID,
		Path:       decision.Path,
		ScoresJSON: decision.ScoresJSON,
		ShadowJSON: decision.ShadowJSON,
		Fallback:   decision.Fallback,
		LatencyMs:  decision.LatencyMs,
		CreatedAt:  decision.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert classifier decision")
	}
	return nil
}

func (r *JournalRepository) CreateAlert(ctx context.Context, alert ports.AlertRecord) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	row := model.Alert{
		AlertID:     alert.AlertID,
		InsightID:   alert.InsightID,
		EntryID:     alert.EntryID,
		UserID:      alert.UserID,
		Tier:        alert.Tier,
		Score:       alert.Score,
		ReasonsJSON: alert.ReasonsJSON,
		Source:      alert.Source,
		Action:      alert.Action,
		Resolved:    alert.Resolved,
		CreatedAt:   alert.CreatedAt,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "insight_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "insert alert")
	}
	return result.RowsAffected > 0, nil
}

func (r *JournalRepository) FindAlertByInsight(ctx context.Context, insightID string) (ports.AlertRecord, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.AlertRecord{}, false, err
	}

	var row model.Alert
	if err := db.Where("insight_id = ?", insightID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.AlertRecord{}, false, nil
		}
		return ports.AlertRecord{}, false, errs.Wrap(err, "query alert by insight")
	}
	return mapAlert(row), true, nil
}

func (r *JournalRepository) ReserveCapsule(ctx context.Context, capsule ports.CapsuleRecord) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	row := model.Capsule{
		CapsuleID:   capsule.CapsuleID,
		InsightID:   capsule.InsightID,
		EntryID:     capsule.EntryID,
		UserID:      capsule.UserID,
		Type:        capsule.Type,
		State:       capsule.State,
		PayloadJSON: capsule.PayloadJSON,
		Fallback:    capsule.Fallback,
		CreatedAt:   capsule.CreatedAt,
		ReadyAt:     capsule.ReadyAt,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "insight_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "reserve capsule")
	}
	return result.RowsAffected > 0, nil
}

func (r *JournalRepository) FinalizeCapsule(ctx context.Context, capsuleID string, payloadJSON string, fallback bool, readyAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&model.Capsule{}).
		Where("capsule_id = ?", capsuleID).
		Updates(map[string]any{
			"state":        "ready",
			"payload_json": payloadJSON,
			"fallback":     fallback,
			"ready_at":     readyAt,
		}).Error; err != nil {
		return errs.Wrap(err, "finalize capsule")
	}
	return nil
}

func (r *JournalRepository) GetCapsule(ctx context.Context, capsuleID string) (ports.CapsuleRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.CapsuleRecord{}, err
	}

	var row model.Capsule
	if err := db.Where("capsule_id = ?", capsuleID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CapsuleRecord{}, ports.ErrCapsuleNotFound
		}
		return ports.CapsuleRecord{}, errs.Wrap(err, "query capsule")
	}
	return mapCapsule(row), nil
}

func (r *JournalRepository) FindCapsuleByInsight(ctx context.Context, insightID string) (ports.CapsuleRecord, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.CapsuleRecord{}, false, err
	}

	var row model.Capsule
	if err := db.Where("insight_id = ?", insightID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CapsuleRecord{}, false, nil
		}
		return ports.CapsuleRecord{}, false, errs.Wrap(err, "query capsule by insight")
	}
	return mapCapsule(row), true, nil
}

func (r *JournalRepository) StoreEmbedding(ctx context.Context, embedding ports.EmbeddingRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.CapsuleEmbedding{
		EmbeddingID: embedding.EmbeddingID,
		CapsuleID:   embedding.CapsuleID,
		UserID:      embedding.UserID,
		Version:     embedding.Version,
		Dims:        embedding.Dims,
		VectorJSON:  embedding.VectorJSON,
		CreatedAt:   embedding.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert embedding")
	}
	return nil
}

func (r *JournalRepository) ListRecentEmbeddings(ctx context.Context, userID string, limit int) ([]ports.EmbeddingRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.CapsuleEmbedding{}).
		Where("user_id = ?", userID).
		Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.CapsuleEmbedding
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query embeddings")
	}

	items := make([]ports.EmbeddingRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.EmbeddingRecord{
			EmbeddingID: row.EmbeddingID,
			CapsuleID:   row.CapsuleID,
			UserID:      row.UserID,
			Version:     row.Version,
			Dims:        row.Dims,
			VectorJSON:  row.VectorJSON,
			CreatedAt:   row.CreatedAt,
		})
	}
	return items, nil
}

func (r *JournalRepository) AppendSimilarityDecision(ctx context.Context, decision ports.SimilarityDecisionRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.SimilarityDecision{
		DecisionID: decision.DecisionID,
		CapsuleID:  decision.CapsuleID,
		UserID:     decision.UserID,
		BestScore:  decision.BestScore,
		Threshold:  decision.Threshold,
		Reused:     decision.Reused,
		DonorID:    decision.DonorID,
		Candidates: decision.Candidates,
		CreatedAt:  decision.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert similarity decision")
	}
	return nil
}

func (r *JournalRepository) GetRateBucket(ctx context.Context, bucketKey string) (ports.RateBucketRecord, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.RateBucketRecord{}, false, err
	}

	var row model.RateBucket
	if err := db.Where("bucket_key = ?", bucketKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.RateBucketRecord{}, false, nil
		}
		return ports.RateBucketRecord{}, false, errs.Wrap(err, "query rate bucket")
	}
	return ports.RateBucketRecord{
		BucketKey: row.BucketKey,
		Tokens:    row.Tokens,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

func (r *JournalRepository) PutRateBucket(ctx context.Context, bucket ports.RateBucketRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.RateBucket{
		BucketKey: bucket.BucketKey,
		Tokens:    bucket.Tokens,
		UpdatedAt: bucket.UpdatedAt,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bucket_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"tokens", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert rate bucket")
	}
	return nil
}

func mapEntry(row model.Entry) ports.EntryRecord {
	return ports.EntryRecord{
		EntryID:        row.EntryID,
		UserID:         row.UserID,
		Text:           row.Text,
		State:          row.State,
		ModerationJSON: row.ModerationJSON,
		CapsuleReadyID: row.CapsuleReadyID,
		CreatedAt:      row.CreatedAt,
		SubmittedAt:    row.SubmittedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

func mapInsight(row model.Insight) ports.InsightRecord {
	return ports.InsightRecord{
		InsightID:    row.InsightID,
		EntryID:      row.EntryID,
		UserID:       row.UserID,
		Summary:      row.Summary,
		AnalysisJSON: row.AnalysisJSON,
		AlertTier:    row.AlertTier,
		RiskScore:    row.RiskScore,
		Enforcement:  row.Enforcement,
		CreatedAt:    row.CreatedAt,
	}
}

func mapAlert(row model.Alert) ports.AlertRecord {
	return ports.AlertRecord{
		AlertID:     row.AlertID,
		InsightID:   row.InsightID,
		EntryID:     row.EntryID,
		UserID:      row.UserID,
		Tier:        row.Tier,
		Score:       row.Score,
		ReasonsJSON: row.ReasonsJSON,
		Source:      row.Source,
		Action:      row.Action,
		Resolved:    row.Resolved,
		CreatedAt:   row.CreatedAt,
	}
}

func mapCapsule(row model.Capsule) ports.CapsuleRecord {
	return ports.CapsuleRecord{
		CapsuleID:   row.CapsuleID,
		InsightID:   row.InsightID,
		EntryID:     row.EntryID,
		UserID:      row.UserID,
		Type:        row.Type,
		State:       row.State,
		PayloadJSON: row.PayloadJSON,
		Fallback:    row.Fallback,
		CreatedAt:   row.CreatedAt,
		ReadyAt:     row.ReadyAt,
	}
}
