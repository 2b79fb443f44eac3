package availability

import (
	"sort"
	"time"

	"github.com/hamed0406/statuspage/internal/domain"
)

// DefaultMinDowntimeMinutes is the threshold below which a failing span is noise.
const DefaultMinDowntimeMinutes = 2

// Downtime is one contiguous failing span within a day.
type Downtime struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"-"`
	Text     string        `json:"duration"`
}

func newDowntime(start, end time.Time) Downtime {
	d := end.Sub(start)
	if d < 0 {
		d = 0
	}
	return Downtime{Start: start, End: end, Duration: d, Text: FormatDuration(d)}
}

// Aggregator derives day availability from raw probe results. It holds no
// state besides its threshold, so every method is safe to call concurrently.
type Aggregator struct {
	MinDowntimeMinutes int64
}

func NewAggregator(minDowntimeMinutes int64) Aggregator {
	if minDowntimeMinutes < 0 {
		minDowntimeMinutes = 0
	}
	return Aggregator{MinDowntimeMinutes: minDowntimeMinutes}
}

func (a Aggregator) reportable(d time.Duration) bool {
	return int64(d/time.Minute) > a.MinDowntimeMinutes
}

// ComputeDowntimePeriods returns the downtime intervals for one day of results.
// Results may be in any order. A span still open at the last observation runs
// until the end of that day, or until now if the day is still in progress.
func (a Aggregator) ComputeDowntimePeriods(results []domain.ProbeResult, now time.Time) []Downtime {
	if len(results) == 0 {
		return nil
	}
	obs := chronological(results)
	dayEnd := startOfDay(obs[0].CreatedAt).AddDate(0, 0, 1)
	until := minTime(now, dayEnd)

	if allFailed(obs) {
		return []Downtime{newDowntime(obs[0].CreatedAt, until)}
	}

	var (
		out    []Downtime
		open   bool
		marker time.Time
	)
	for _, r := range obs {
		if !r.Success() {
			if !open {
				open, marker = true, r.CreatedAt
			}
			continue
		}
		if open {
			if a.reportable(r.CreatedAt.Sub(marker)) {
				out = append(out, newDowntime(marker, r.CreatedAt))
			}
			open = false
		}
	}
	if open && a.reportable(until.Sub(marker)) {
		out = append(out, newDowntime(marker, until))
	}
	return out
}

// OverallStatus classifies a day from its observations and computed downtime.
func OverallStatus(results []domain.ProbeResult, downtime []Downtime) Status {
	if len(results) == 0 {
		return Unknown
	}
	if len(downtime) == 0 {
		return Operational
	}
	if allFailed(results) {
		return Failed
	}
	if latest(results).Success() {
		return Recovering
	}
	return Failing
}

// chronological returns a sorted copy, oldest first; ties keep insertion id order.
func chronological(results []domain.ProbeResult) []domain.ProbeResult {
	out := make([]domain.ProbeResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func latest(results []domain.ProbeResult) domain.ProbeResult {
	best := results[0]
	for _, r := range results[1:] {
		if r.CreatedAt.After(best.CreatedAt) || (r.CreatedAt.Equal(best.CreatedAt) && r.ID > best.ID) {
			best = r
		}
	}
	return best
}

func allFailed(results []domain.ProbeResult) bool {
	for _, r := range results {
		if r.Success() {
			return false
		}
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string { return t.UTC().Format(time.DateOnly) }

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
