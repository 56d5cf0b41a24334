package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"solace/internal/bootstrap/logging"
	"solace/internal/errs"
)

// StartWorker subscribes both pipeline stages on the shared queue group.
// Handler errors are logged, not returned: delivery is at-least-once and a
// later submit or publish retries the work.
func (s *Service) StartWorker(queue string) error {
	if err := s.bus.Subscribe(SubjectEntrySubmitted, queue, func(ctx context.Context, payload []byte) {
		var event entrySubmittedEvent
		if err := json.Unmarshal(payload, &event); err != nil || event.EntryID == "" {
			logging.Warn(ctx, "malformed submitted event", slog.Any("err", errs.Loggable(err)))
			return
		}
		if err := s.OnEntrySubmitted(ctx, event.EntryID); err != nil {
			logging.Error(ctx, "insight stage failed",
				slog.String("entry_id", event.EntryID),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	}); err != nil {
		return err
	}

	return s.bus.Subscribe(SubjectInsightCreated, queue, func(ctx context.Context, payload []byte) {
		var event insightCreatedEvent
		if err := json.Unmarshal(payload, &event); err != nil || event.InsightID == "" {
			logging.Warn(ctx, "malformed insight event", slog.Any("err", errs.Loggable(err)))
			return
		}
		if err := s.OnInsightCreated(ctx, event.InsightID); err != nil {
			logging.Error(ctx, "capsule stage failed",
				slog.String("insight_id", event.InsightID),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	})
}
