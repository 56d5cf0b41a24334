package journal

import "fmt"

// EntryState is the lifecycle of a journal entry. Text is immutable once the
// entry leaves Draft; later transitions are owned by the pipeline.
type EntryState string

const (
	EntryDraft       EntryState = "draft"
	EntrySubmitted   EntryState = "submitted"
	EntryProcessed   EntryState = "processed"
	EntryNeedsReview EntryState = "needs_review"
)

// CapsuleState tracks the reserve-then-finalize capsule lifecycle.
type CapsuleState string

const (
	CapsuleGenerating CapsuleState = "generating"
	CapsuleReady      CapsuleState = "ready"
)

type EnforcementMode string

const (
	EnforcementOff  EnforcementMode = "off"
	EnforcementSoft EnforcementMode = "soft"
	EnforcementHard EnforcementMode = "hard"
)

func ParseEnforcementMode(raw string) (EnforcementMode, error) {
	switch EnforcementMode(raw) {
	case EnforcementOff, EnforcementSoft, EnforcementHard:
		return EnforcementMode(raw), nil
	case "":
		return EnforcementOff, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidEnforcement, raw)
	}
}

var entryTransitions = map[EntryState]map[EntryState]struct{}{
	EntryDraft:     {EntrySubmitted: {}},
	EntrySubmitted: {EntryProcessed: {}, EntryNeedsReview: {}},
	EntryProcessed: {EntryNeedsReview: {}},
}

// NextEntryState validates a transition and returns the target state.
func NextEntryState(from EntryState, to EntryState) (EntryState, error) {
	allowed, ok := entryTransitions[from]
	if !ok {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if _, ok := allowed[to]; !ok {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return to, nil
}

// NextCapsuleState validates the single legal capsule transition.
func NextCapsuleState(from CapsuleState, to CapsuleState) (CapsuleState, error) {
	if from == CapsuleGenerating && to == CapsuleReady {
		return to, nil
	}
	return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
