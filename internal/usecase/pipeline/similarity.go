package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"solace/internal/bootstrap/logging"
	"solace/internal/domain/journal"
	"solace/internal/errs"
	"solace/internal/ports"
)

// SimilarityMatch is a reuse decision against one donor capsule.
type SimilarityMatch struct {
	DonorCapsuleID string
	Score          float64
}

// findSimilarCapsule scans the user's recent capsule embeddings for a donor
// worth reusing. Every embedding in the window is scored, candidates are
// sorted by score and truncated, then the two-band threshold decides: high
// band reuses unconditionally, anything at or above base_min reuses at the
// base band. Every lookup is logged with the band that decided it.
func (s *Service) findSimilarCapsule(ctx context.Context, userID string, capsuleID string, lookup []float64) (SimilarityMatch, bool) {
	cfg := s.profile.Similarity

	records, err := s.repo.ListRecentEmbeddings(ctx, userID, cfg.Window)
	if err != nil {
		logging.Warn(ctx, "similarity lookup failed, generating fresh",
			slog.Any("err", errs.Loggable(err)),
		)
		return SimilarityMatch{}, false
	}

	type candidate struct {
		capsuleID string
		score     float64
	}
	candidates := make([]candidate, 0, len(records))
	for _, record := range records {
		if cfg.RequireSameVersion && record.Version != EmbeddingVersion {
			continue
		}
		if record.Dims != len(lookup) {
			continue
		}
		var vector []float64
		if err := json.Unmarshal([]byte(record.VectorJSON), &vector); err != nil {
			continue
		}
		candidates = append(candidates, candidate{
			capsuleID: record.CapsuleID,
			score:     journal.Cosine(lookup, vector),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > cfg.MaxCandidates {
		candidates = candidates[:cfg.MaxCandidates]
	}

	best := candidate{score: -1}
	if len(candidates) > 0 {
		best = candidates[0]
	}

	reused := best.capsuleID != "" && best.score >= cfg.BaseMin
	threshold := cfg.BaseMin
	if best.score >= cfg.HighBand {
		threshold = cfg.HighBand
	}

	s.logSimilarityDecision(ctx, capsuleID, userID, best.score, best.capsuleID, len(candidates), threshold, reused)

	if !reused {
		return SimilarityMatch{}, false
	}
	return SimilarityMatch{DonorCapsuleID: best.capsuleID, Score: best.score}, true
}

func (s *Service) logSimilarityDecision(ctx context.Context, capsuleID string, userID string, bestScore float64, donorID string, candidates int, threshold float64, reused bool) {
	if bestScore < 0 {
		bestScore = 0
	}
	decision := ports.SimilarityDecisionRecord{
		DecisionID: uuid.NewString(),
		CapsuleID:  capsuleID,
		UserID:     userID,
		BestScore:  bestScore,
		Threshold:  threshold,
		Reused:     reused,
		DonorID:    donorID,
		Candidates: candidates,
		CreatedAt:  s.timestamp(),
	}
	// Audit write is best effort; a failed log must not fail generation.
	if err := s.repo.AppendSimilarityDecision(ctx, decision); err != nil {
		logging.Warn(ctx, "similarity decision log failed",
			slog.Any("err", errs.Loggable(err)),
		)
	}
	logging.Info(ctx, "similarity decision",
		slog.String("capsule_id", capsuleID),
		slog.Bool("reused", reused),
		slog.Float64("best_score", bestScore),
		slog.Int("candidates", candidates),
	)
}

// storeCapsuleEmbedding records the vector that future lookups match on.
// Only fresh generations are stored; reused capsules would double-count.
func (s *Service) storeCapsuleEmbedding(ctx context.Context, capsuleID string, userID string, vector []float64) error {
	vectorJSON, err := json.Marshal(vector)
	if err != nil {
		return errs.Wrap(err, "encode vector")
	}
	return s.repo.StoreEmbedding(ctx, ports.EmbeddingRecord{
		EmbeddingID: uuid.NewString(),
		CapsuleID:   capsuleID,
		UserID:      userID,
		Version:     EmbeddingVersion,
		Dims:        len(vector),
		VectorJSON:  string(vectorJSON),
		CreatedAt:   s.timestamp(),
	})
}
