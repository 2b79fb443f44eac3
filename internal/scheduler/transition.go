package scheduler

import "github.com/hamed0406/statuspage/internal/domain"

// IsDownTransition reports whether cur is the first failure after a success.
// A project with no prior result never transitions.
func IsDownTransition(prev *domain.ProbeResult, cur domain.NewProbeResult) bool {
	return prev != nil && prev.Success() && !cur.Success()
}

// IsRecovery is the opposite edge. It is logged, not notified.
func IsRecovery(prev *domain.ProbeResult, cur domain.NewProbeResult) bool {
	return prev != nil && !prev.Success() && cur.Success()
}
