package pipeline

import (
	"context"

	"solace/internal/ports"
)

// GetEntry returns an entry scoped to its owner; other users see not-found.
func (s *Service) GetEntry(ctx context.Context, userID string, entryID string) (ports.EntryRecord, error) {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return ports.EntryRecord{}, err
	}
	if entry.UserID != userID {
		return ports.EntryRecord{}, ports.ErrEntryNotFound
	}
	return entry, nil
}

// GetCapsuleForUser returns a capsule scoped to its owner.
func (s *Service) GetCapsuleForUser(ctx context.Context, userID string, capsuleID string) (ports.CapsuleRecord, error) {
	capsule, err := s.repo.GetCapsule(ctx, capsuleID)
	if err != nil {
		return ports.CapsuleRecord{}, err
	}
	if capsule.UserID != userID {
		return ports.CapsuleRecord{}, ports.ErrCapsuleNotFound
	}
	return capsule, nil
}
