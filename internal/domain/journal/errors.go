package journal

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrInvalidEnforcement = errors.New("invalid enforcement mode")
	ErrTextTooShort       = errors.New("journal text too short")
	ErrSubmissionBlocked  = errors.New("submission blocked by moderation policy")
)

// RateLimitError is the one user-facing pipeline failure. It is retryable
// and carries the wait hint surfaced as a Retry-After header.
type RateLimitError struct {
	Bucket       string
	Capacity     int
	RetryAfterMs int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for bucket %q, retry after %dms", e.Bucket, e.RetryAfterMs)
}
