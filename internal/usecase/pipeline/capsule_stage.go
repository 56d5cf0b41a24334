package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"solace/internal/bootstrap/logging"
	"solace/internal/domain/journal"
	"solace/internal/errs"
	"solace/internal/ports"
)

// OnInsightCreated generates the capsule for an insight. The reservation
// insert (unique insight_id, state generating) picks a single winner under
// redelivery; everyone else observes and backs off.
func (s *Service) OnInsightCreated(ctx context.Context, insightID string) error {
	ctx = logging.WithAttrs(ctx, slog.String("insight_id", insightID))

	insight, err := s.repo.GetInsight(ctx, insightID)
	if err != nil {
		return err
	}

	if existing, found, err := s.repo.FindCapsuleByInsight(ctx, insightID); err != nil {
		return err
	} else if found {
		if existing.State == string(journal.CapsuleReady) {
			// Redelivery after completion; make sure the pointer landed.
			return s.repo.SetEntryCapsule(ctx, existing.EntryID, existing.CapsuleID, s.timestamp())
		}
		logging.Info(ctx, "capsule reservation held elsewhere, skipping")
		return nil
	}

	var analysis journal.AnalysisResult
	if err := json.Unmarshal([]byte(insight.AnalysisJSON), &analysis); err != nil {
		return errs.Wrap(err, "decode stored analysis")
	}

	capsuleType := journal.SelectCapsuleType(analysis.Emotions)
	mood := "neutral"
	if len(analysis.Emotions) > 0 && analysis.Emotions[0].Label != "" {
		mood = analysis.Emotions[0].Label
	}

	capsule := ports.CapsuleRecord{
		CapsuleID: uuid.NewString(),
		InsightID: insight.InsightID,
		EntryID:   insight.EntryID,
		UserID:    insight.UserID,
		Type:      string(capsuleType),
		State:     string(journal.CapsuleGenerating),
		CreatedAt: s.timestamp(),
	}
	won, err := s.repo.ReserveCapsule(ctx, capsule)
	if err != nil {
		return err
	}
	if !won {
		logging.Info(ctx, "lost capsule reservation, skipping")
		return nil
	}
	ctx = logging.WithAttrs(ctx, slog.String("capsule_id", capsule.CapsuleID))

	// The lookup text and story theme come from the analysis, not the raw
	// text: the dominant topic, else the dominant emotion.
	theme := mood
	if len(analysis.Topics) > 0 && analysis.Topics[0] != "" {
		theme = analysis.Topics[0]
	}

	// Stories are the expensive modality, so only they go through the
	// reuse path.
	if capsuleType == journal.CapsuleStory {
		lookup := s.embed(ctx, theme)

		if match, ok := s.findSimilarCapsule(ctx, insight.UserID, capsule.CapsuleID, lookup); ok {
			if done, err := s.finalizeReused(ctx, capsule, match); err != nil {
				return err
			} else if done {
				return nil
			}
			// Donor vanished or had an unusable payload; generate fresh.
		}

		payload, fellBack := s.generateCapsule(ctx, capsuleType, theme)
		if err := s.finalizeCapsule(ctx, capsule, payload, fellBack); err != nil {
			return err
		}
		if !fellBack {
			// Future lookups match against the generated story itself,
			// not the theme that seeded it.
			vector := s.embed(ctx, payload.Story)
			if err := s.storeCapsuleEmbedding(ctx, capsule.CapsuleID, insight.UserID, vector); err != nil {
				logging.Warn(ctx, "embedding store failed", slog.Any("err", errs.Loggable(err)))
			}
		}
		return nil
	}

	payload, fellBack := s.generateCapsule(ctx, capsuleType, mood)
	return s.finalizeCapsule(ctx, capsule, payload, fellBack)
}

func (s *Service) finalizeReused(ctx context.Context, capsule ports.CapsuleRecord, match SimilarityMatch) (bool, error) {
	donor, err := s.repo.GetCapsule(ctx, match.DonorCapsuleID)
	if err != nil {
		if errors.Is(err, ports.ErrCapsuleNotFound) {
			return false, nil
		}
		return false, err
	}

	var payload journal.CapsulePayload
	if err := json.Unmarshal([]byte(donor.PayloadJSON), &payload); err != nil || payload.Story == "" {
		return false, nil
	}

	payload.ReusedFrom = donor.CapsuleID
	payload.SimilarityScore = match.Score

	logging.Info(ctx, "capsule reused",
		slog.String("donor_id", donor.CapsuleID),
		slog.Float64("score", match.Score),
	)
	if err := s.finalizeCapsule(ctx, capsule, payload, false); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) finalizeCapsule(ctx context.Context, capsule ports.CapsuleRecord, payload journal.CapsulePayload, fellBack bool) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(err, "encode capsule payload")
	}

	readyAt := s.timestamp()
	if err := s.repo.FinalizeCapsule(ctx, capsule.CapsuleID, string(payloadJSON), fellBack, readyAt); err != nil {
		return err
	}
	if err := s.repo.SetEntryCapsule(ctx, capsule.EntryID, capsule.CapsuleID, readyAt); err != nil {
		return err
	}

	logging.Info(ctx, "capsule ready",
		slog.String("type", capsule.Type),
		slog.Bool("fallback", fellBack),
	)
	return nil
}
