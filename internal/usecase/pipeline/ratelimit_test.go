package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"solace/internal/domain/journal"
)

func TestConsumeRateLimitFirstUse(t *testing.T) {
	env := setupService(t, Options{}, nil)
	ctx := context.Background()

	if err := env.service.ConsumeRateLimit(ctx, "user-1", "entrySubmit"); err != nil {
		t.Fatalf("ConsumeRateLimit() error = %v", err)
	}

	record, found, err := env.repo.GetRateBucket(ctx, "user-1:entrySubmit")
	if err != nil || !found {
		t.Fatalf("GetRateBucket() = %v, %v", found, err)
	}
	if record.Tokens != 99 {
		t.Fatalf("tokens = %v, want capacity-1", record.Tokens)
	}
}

func TestConsumeRateLimitExhaustionAndRefill(t *testing.T) {
	env := setupService(t, Options{}, nil)
	ctx := context.Background()
	advance := fixedClock(env.service, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 100; i++ {
		if err := env.service.ConsumeRateLimit(ctx, "user-1", "entrySubmit"); err != nil {
			t.Fatalf("ConsumeRateLimit() #%d error = %v", i, err)
		}
	}

	err := env.service.ConsumeRateLimit(ctx, "user-1", "entrySubmit")
	var rateErr *journal.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("ConsumeRateLimit() error = %v, want RateLimitError", err)
	}
	if rateErr.RetryAfterMs <= 0 {
		t.Fatalf("RetryAfterMs = %d, want positive", rateErr.RetryAfterMs)
	}
	// 100 tokens per hour refills one token in 36s.
	if rateErr.RetryAfterMs > 36_000 {
		t.Fatalf("RetryAfterMs = %d, want <= 36000", rateErr.RetryAfterMs)
	}

	// A rejection must not mutate the bucket: waiting the hinted time
	// makes exactly one token available.
	advance(time.Duration(rateErr.RetryAfterMs) * time.Millisecond)
	if err := env.service.ConsumeRateLimit(ctx, "user-1", "entrySubmit"); err != nil {
		t.Fatalf("ConsumeRateLimit() after wait error = %v", err)
	}
	if err := env.service.ConsumeRateLimit(ctx, "user-1", "entrySubmit"); err == nil {
		t.Fatal("ConsumeRateLimit() allowed a second token without refill time")
	}
}

// Over any window, tokens granted never exceed capacity plus refill.
func TestConsumeRateLimitConservation(t *testing.T) {
	env := setupService(t, Options{}, nil)
	ctx := context.Background()
	advance := fixedClock(env.service, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	granted := 0
	// One hour of attempts every 10s: capacity 100 plus 360 refill steps
	// of 0.1 tokens each.
	for i := 0; i < 360; i++ {
		if err := env.service.ConsumeRateLimit(ctx, "user-1", "entrySubmit"); err == nil {
			granted++
		}
		advance(10 * time.Second)
	}

	// 100 initial + one refilled token per 36s of elapsed hour.
	maxExpected := 100 + 100
	if granted > maxExpected {
		t.Fatalf("granted %d tokens, conservation bound is %d", granted, maxExpected)
	}
	if granted < 100 {
		t.Fatalf("granted %d tokens, initial capacity alone is 100", granted)
	}
}

func TestConsumeRateLimitClockBackwards(t *testing.T) {
	env := setupService(t, Options{}, nil)
	ctx := context.Background()
	advance := fixedClock(env.service, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	if err := env.service.ConsumeRateLimit(ctx, "user-1", "entrySubmit"); err != nil {
		t.Fatalf("ConsumeRateLimit() error = %v", err)
	}
	advance(-10 * time.Minute)
	if err := env.service.ConsumeRateLimit(ctx, "user-1", "entrySubmit"); err != nil {
		t.Fatalf("ConsumeRateLimit() after clock skew error = %v", err)
	}

	record, _, err := env.repo.GetRateBucket(ctx, "user-1:entrySubmit")
	if err != nil {
		t.Fatalf("GetRateBucket() error = %v", err)
	}
	if record.Tokens > 98 {
		t.Fatalf("tokens = %v, skew must not mint tokens", record.Tokens)
	}
}

func TestConsumeRateLimitUnknownBucket(t *testing.T) {
	env := setupService(t, Options{}, nil)
	if err := env.service.ConsumeRateLimit(context.Background(), "user-1", "nope"); err == nil {
		t.Fatal("ConsumeRateLimit() accepted unknown bucket")
	}
}

func TestConsumeRateLimitPerUserIsolation(t *testing.T) {
	env := setupService(t, Options{}, nil)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if err := env.service.ConsumeRateLimit(ctx, "user-1", "entrySubmit"); err != nil {
			t.Fatalf("ConsumeRateLimit() #%d error = %v", i, err)
		}
	}
	if err := env.service.ConsumeRateLimit(ctx, "user-2", "entrySubmit"); err != nil {
		t.Fatalf("ConsumeRateLimit() for second user error = %v", err)
	}
}
