package probe

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultRetries = 3
	DefaultBackoff = 45 * time.Second
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryChecker runs one attempt and, while it is unsuccessful, up to Retries
// more, each after Backoff. The last attempt's result is returned.
type RetryChecker struct {
	Inner   Checker
	Retries int
	Backoff time.Duration
	Sleep   SleepFunc
}

func NewRetryChecker(inner Checker, retries int, backoff time.Duration) *RetryChecker {
	if retries < 0 {
		retries = 0
	}
	if backoff < 0 {
		backoff = 0
	}
	return &RetryChecker{Inner: inner, Retries: retries, Backoff: backoff, Sleep: sleepCtx}
}

func (r *RetryChecker) Check(ctx context.Context, target string) CheckResult {
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	last := r.Inner.Check(ctx, target)
	attempts := 1
	for i := 0; i < r.Retries && !last.Success(); i++ {
		if err := sleep(ctx, r.Backoff); err != nil {
			break
		}
		last = r.Inner.Check(ctx, target)
		attempts++
	}

	last.Attempts = attempts
	if !last.Success() && attempts > 1 {
		last.Message = fmt.Sprintf("%s (after %d attempts)", last.Message, attempts)
	}
	return last
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
