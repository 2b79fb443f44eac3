package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/hamed0406/statuspage/internal/domain"
)

type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

// Check sends HEAD and falls back to GET for servers that reject HEAD.
func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	start := time.Now()
	resp, err := h.do(ctx, http.MethodHead, target)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		resp, err = h.do(ctx, http.MethodGet, target)
	}
	elapsed := time.Since(start)
	if err != nil {
		return CheckResult{StatusCode: domain.UnreachableCode, Elapsed: elapsed, Message: err.Error(), Attempts: 1}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return CheckResult{
		StatusCode: resp.StatusCode,
		Elapsed:    elapsed,
		Message:    resp.Status,
		Attempts:   1,
	}
}

func (h *HTTPChecker) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "statuspage-probe/1.0")
	return h.Client.Do(req)
}
