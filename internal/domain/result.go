package domain

import "time"

// UnreachableCode is recorded when a probe fails below HTTP (DNS, connect, timeout).
const UnreachableCode = 404

// ProbeResult is one stored observation. CreatedAt is assigned by the store.
type ProbeResult struct {
	ID         int64     `json:"id"`
	ProjectID  ProjectID `json:"project_id"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	StatusCode int       `json:"status_code"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r ProbeResult) Success() bool { return IsSuccessCode(r.StatusCode) }

// NewProbeResult is what the scheduler hands to the store: no id, no timestamp.
type NewProbeResult struct {
	ProjectID  ProjectID `json:"project_id"`
	ElapsedMS  int64     `json:"elapsed_ms"`
	StatusCode int       `json:"status_code"`
}

func (r NewProbeResult) Success() bool { return IsSuccessCode(r.StatusCode) }

// IsSuccessCode reports whether code is in the 2xx range.
func IsSuccessCode(code int) bool {
	return code >= 200 && code <= 299
}
