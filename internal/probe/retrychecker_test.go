package probe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fake checker you can control
type fakeChecker struct {
	results []CheckResult
	i       int
}

func (f *fakeChecker) Check(ctx context.Context, target string) CheckResult {
	if f.i >= len(f.results) {
		return CheckResult{StatusCode: 404, Message: "no more"}
	}
	r := f.results[f.i]
	f.i++
	return r
}

type recordingSleep struct {
	calls []time.Duration
	err   error
}

func (s *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return s.err
}

func TestRetryChecker_FailTwiceThenSucceed(t *testing.T) {
	f := &fakeChecker{
		results: []CheckResult{
			{StatusCode: 503, Elapsed: 5 * time.Millisecond, Message: "503"},
			{StatusCode: 404, Elapsed: 6 * time.Millisecond, Message: "dial"},
			{StatusCode: 200, Elapsed: 7 * time.Millisecond, Message: "200 OK"},
		},
	}
	sl := &recordingSleep{}
	rc := NewRetryChecker(f, DefaultRetries, DefaultBackoff)
	rc.Sleep = sl.sleep

	out := rc.Check(context.Background(), "https://example.com")
	if !out.Success() || out.StatusCode != 200 {
		t.Fatalf("expected third attempt's success, got %+v", out)
	}
	if out.Elapsed != 7*time.Millisecond {
		t.Fatalf("elapsed must be the successful attempt's own time, got %v", out.Elapsed)
	}
	if out.Attempts != 3 {
		t.Fatalf("want 3 attempts, got %d", out.Attempts)
	}
	if len(sl.calls) != 2 || sl.calls[0] != 45*time.Second || sl.calls[1] != 45*time.Second {
		t.Fatalf("want two 45s backoffs, got %v", sl.calls)
	}
	if out.Message != "200 OK" {
		t.Fatalf("success message should not be annotated: %q", out.Message)
	}
}

func TestRetryChecker_AllFailAnnotates(t *testing.T) {
	f := &fakeChecker{
		results: []CheckResult{
			{StatusCode: 500, Message: "fail1"},
			{StatusCode: 500, Message: "fail2"},
			{StatusCode: 502, Message: "fail3"},
			{StatusCode: 503, Message: "fail4"},
			{StatusCode: 200, Message: "never reached"},
		},
	}
	sl := &recordingSleep{}
	rc := &RetryChecker{Inner: f, Retries: 3, Backoff: time.Second, Sleep: sl.sleep}

	out := rc.Check(context.Background(), "https://example.com")
	if out.Success() {
		t.Fatalf("expected failure, got success")
	}
	if out.StatusCode != 503 || out.Attempts != 4 {
		t.Fatalf("want last failing attempt (503, 4 attempts), got %+v", out)
	}
	if len(sl.calls) != 3 {
		t.Fatalf("want 3 backoffs, got %d", len(sl.calls))
	}
	if !strings.Contains(out.Message, "after 4 attempts") {
		t.Fatalf("expected retry annotation, got %q", out.Message)
	}
}

func TestRetryChecker_ImmediateSuccessNoBackoff(t *testing.T) {
	f := &fakeChecker{results: []CheckResult{{StatusCode: 204}}}
	sl := &recordingSleep{}
	rc := &RetryChecker{Inner: f, Retries: 3, Backoff: time.Hour, Sleep: sl.sleep}

	out := rc.Check(context.Background(), "https://example.com")
	if !out.Success() || out.Attempts != 1 || len(sl.calls) != 0 {
		t.Fatalf("unexpected: %+v sleeps=%v", out, sl.calls)
	}
}

func TestRetryChecker_StopsWhenSleepCancelled(t *testing.T) {
	f := &fakeChecker{results: []CheckResult{{StatusCode: 500, Message: "down"}, {StatusCode: 200}}}
	sl := &recordingSleep{err: context.Canceled}
	rc := &RetryChecker{Inner: f, Retries: 3, Backoff: time.Hour, Sleep: sl.sleep}

	out := rc.Check(context.Background(), "https://example.com")
	if out.StatusCode != 500 || out.Attempts != 1 {
		t.Fatalf("want first attempt returned on cancel, got %+v", out)
	}
}

func TestSleepCtx_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := sleepCtx(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("sleep did not return promptly")
	}
}
