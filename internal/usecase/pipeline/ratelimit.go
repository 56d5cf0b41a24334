package pipeline

import (
	"context"
	"errors"
	"math"
	"time"

	"solace/internal/domain/journal"
	"solace/internal/errs"
	"solace/internal/ports"
)

var errUnknownBucket = errors.New("unknown rate bucket")

// ConsumeRateLimit takes one token from the user's continuous bucket, or
// returns a journal.RateLimitError carrying the wait hint. The read-refill-
// write sequence runs in one transaction so concurrent submissions cannot
// mint tokens. A rejected call never mutates the bucket.
func (s *Service) ConsumeRateLimit(ctx context.Context, userID string, bucket string) error {
	cfg, ok := s.profile.Buckets[bucket]
	if !ok {
		return errs.Wrapf(errUnknownBucket, "bucket %q", bucket)
	}

	key := userID + ":" + bucket
	now := s.now().UTC()
	rate := float64(cfg.Capacity) / float64(cfg.WindowMs) // tokens per ms

	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		record, found, err := s.repo.GetRateBucket(txCtx, key)
		if err != nil {
			return err
		}

		if !found {
			return s.repo.PutRateBucket(txCtx, ports.RateBucketRecord{
				BucketKey: key,
				Tokens:    float64(cfg.Capacity) - 1,
				UpdatedAt: now.Format(time.RFC3339Nano),
			})
		}

		updatedAt, err := time.Parse(time.RFC3339Nano, record.UpdatedAt)
		if err != nil {
			return errs.Wrap(err, "parse bucket timestamp")
		}
		elapsedMs := float64(now.Sub(updatedAt).Milliseconds())
		if elapsedMs < 0 {
			// Clock went backwards; treat as no refill rather than failing.
			elapsedMs = 0
		}

		refilled := record.Tokens + elapsedMs*rate
		if refilled > float64(cfg.Capacity) {
			refilled = float64(cfg.Capacity)
		}

		if refilled < 1 {
			return &journal.RateLimitError{
				Bucket:       bucket,
				Capacity:     cfg.Capacity,
				RetryAfterMs: int64(math.Ceil((1 - refilled) / rate)),
			}
		}

		return s.repo.PutRateBucket(txCtx, ports.RateBucketRecord{
			BucketKey: key,
			Tokens:    refilled - 1,
			UpdatedAt: now.Format(time.RFC3339Nano),
		})
	})
}
