package scheduler

import (
	"testing"

	"github.com/hamed0406/statuspage/internal/domain"
)

func TestIsDownTransition(t *testing.T) {
	ok := &domain.ProbeResult{StatusCode: 200}
	down := &domain.ProbeResult{StatusCode: 503}

	cases := []struct {
		name string
		prev *domain.ProbeResult
		cur  int
		down bool
		rec  bool
	}{
		{"no prior success", nil, 200, false, false},
		{"no prior failure", nil, 500, false, false},
		{"up to down", ok, 500, true, false},
		{"up to unreachable", ok, domain.UnreachableCode, true, false},
		{"down to down", down, 500, false, false},
		{"down to up", down, 204, false, true},
		{"up to up", ok, 200, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cur := domain.NewProbeResult{StatusCode: c.cur}
			if got := IsDownTransition(c.prev, cur); got != c.down {
				t.Fatalf("IsDownTransition=%v want %v", got, c.down)
			}
			if got := IsRecovery(c.prev, cur); got != c.rec {
				t.Fatalf("IsRecovery=%v want %v", got, c.rec)
			}
		})
	}
}
