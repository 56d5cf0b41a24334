package pipeline

import (
	"context"
	"log/slog"
	"time"

	"solace/internal/bootstrap/logging"
	"solace/internal/domain/journal"
	"solace/internal/errs"
)

// EmbeddingVersion tags stored vectors. Bumping it fences off vectors from
// incompatible embedding spaces during similarity lookups.
const EmbeddingVersion = "v2"

// embed returns a vector for the text, falling back to the deterministic
// hashed placeholder when no backend is configured or the call fails.
func (s *Service) embed(ctx context.Context, text string) []float64 {
	if s.model == nil {
		return journal.PlaceholderVector(text)
	}

	timeout := time.Duration(s.profile.Generation.EmbedTimeoutMs) * time.Millisecond
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	vector, err := s.model.Embed(callCtx, s.embedModel, text)
	if err != nil || len(vector) == 0 {
		logging.Warn(ctx, "embedding failed, using placeholder vector",
			slog.Any("err", errs.Loggable(err)),
		)
		return journal.PlaceholderVector(text)
	}
	return vector
}
