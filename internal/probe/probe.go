package probe

import (
	"context"
	"time"

	"github.com/hamed0406/statuspage/internal/domain"
)

// CheckResult is the outcome of a probe.
//
// StatusCode is the HTTP status when the server answered and
// domain.UnreachableCode for transport failures (DNS, connect, timeout).
// Elapsed covers the reported attempt only, never retry backoff.
type CheckResult struct {
	StatusCode int
	Elapsed    time.Duration
	Message    string
	Attempts   int
}

func (r CheckResult) Success() bool { return domain.IsSuccessCode(r.StatusCode) }

func (r CheckResult) ElapsedMS() int64 {
	if r.Elapsed < 0 {
		return 0
	}
	return r.Elapsed.Milliseconds()
}

// Checker probes a single target URL. Implementations never return an error:
// failures are reported through the status code.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
