package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"solace/internal/bootstrap/logging"
	"solace/internal/domain/journal"
	"solace/internal/errs"
	"solace/internal/ports"
)

const (
	// SubjectEntrySubmitted fans a submitted entry out to insight workers.
	SubjectEntrySubmitted = "journal.entry.submitted"
	// SubjectInsightCreated fans a new insight out to capsule workers.
	SubjectInsightCreated = "journal.insight.created"

	rateBucketSubmit = "entrySubmit"

	minEntryChars = 3
)

var errEntryOwnership = errors.New("entry belongs to another user")

type entrySubmittedEvent struct {
	EntryID string `json:"entryId"`
}

type insightCreatedEvent struct {
	InsightID string `json:"insightId"`
}

// CreateDraftEntry stores a draft. Drafts are invisible to the pipeline
// until submitted.
func (s *Service) CreateDraftEntry(ctx context.Context, userID string, text string) (ports.EntryRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return ports.EntryRecord{}, errors.New("user id is required")
	}

	now := s.timestamp()
	entry := ports.EntryRecord{
		EntryID:   uuid.NewString(),
		UserID:    userID,
		Text:      text,
		State:     string(journal.EntryDraft),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateEntry(ctx, entry); err != nil {
		return ports.EntryRecord{}, err
	}

	logging.Info(ctx, "draft entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("user_id", userID),
	)
	return entry, nil
}

// SubmitEntry moves a draft into the pipeline: validates, moderates,
// charges the rate bucket, persists the transition and publishes the
// submitted event. Resubmitting an already-submitted entry republishes the
// event without taking another token, so delivery retries are cheap.
func (s *Service) SubmitEntry(ctx context.Context, userID string, entryID string) (ports.EntryRecord, error) {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return ports.EntryRecord{}, err
	}
	if entry.UserID != userID {
		return ports.EntryRecord{}, errEntryOwnership
	}

	if entry.State != string(journal.EntryDraft) {
		// Already past submission; re-publish so a lost event can recover.
		if err := s.publishEntrySubmitted(ctx, entry.EntryID); err != nil {
			return ports.EntryRecord{}, err
		}
		return entry, nil
	}

	if len(strings.TrimSpace(entry.Text)) < minEntryChars {
		return ports.EntryRecord{}, journal.ErrTextTooShort
	}

	flags := journal.ModerateText(entry.Text)
	if s.enforcement == journal.EnforcementHard && flags.SelfHarm {
		return ports.EntryRecord{}, journal.ErrSubmissionBlocked
	}

	if err := s.ConsumeRateLimit(ctx, userID, rateBucketSubmit); err != nil {
		return ports.EntryRecord{}, err
	}

	flagsJSON, err := json.Marshal(flags)
	if err != nil {
		return ports.EntryRecord{}, errs.Wrap(err, "encode moderation flags")
	}

	submittedAt := s.timestamp()
	nextState, err := journal.NextEntryState(journal.EntryState(entry.State), journal.EntrySubmitted)
	if err != nil {
		return ports.EntryRecord{}, err
	}
	if err := s.repo.UpdateEntrySubmission(ctx, entry.EntryID, string(nextState), string(flagsJSON), submittedAt); err != nil {
		return ports.EntryRecord{}, err
	}

	entry.State = string(nextState)
	entry.ModerationJSON = string(flagsJSON)
	entry.SubmittedAt = &submittedAt
	entry.UpdatedAt = submittedAt

	logging.Info(ctx, "entry submitted",
		slog.String("entry_id", entry.EntryID),
		slog.String("user_id", userID),
	)

	if err := s.publishEntrySubmitted(ctx, entry.EntryID); err != nil {
		return ports.EntryRecord{}, err
	}
	return entry, nil
}

// SubmitText is the one-shot ingestion path: draft plus submit.
func (s *Service) SubmitText(ctx context.Context, userID string, text string) (ports.EntryRecord, error) {
	entry, err := s.CreateDraftEntry(ctx, userID, text)
	if err != nil {
		return ports.EntryRecord{}, err
	}
	return s.SubmitEntry(ctx, userID, entry.EntryID)
}

func (s *Service) publishEntrySubmitted(ctx context.Context, entryID string) error {
	payload, err := json.Marshal(entrySubmittedEvent{EntryID: entryID})
	if err != nil {
		return errs.Wrap(err, "encode submitted event")
	}
	if err := s.bus.Publish(ctx, SubjectEntrySubmitted, payload); err != nil {
		return errs.Wrap(err, "publish submitted event")
	}
	return nil
}

func (s *Service) publishInsightCreated(ctx context.Context, insightID string) error {
	payload, err := json.Marshal(insightCreatedEvent{InsightID: insightID})
	if err != nil {
		return errs.Wrap(err, "encode insight event")
	}
	if err := s.bus.Publish(ctx, SubjectInsightCreated, payload); err != nil {
		return errs.Wrap(err, "publish insight event")
	}
	return nil
}
