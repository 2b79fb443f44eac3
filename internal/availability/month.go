package availability

import (
	"time"

	"github.com/hamed0406/statuspage/internal/domain"
)

// Month is one calendar month of coarse daily statuses for the history page.
type Month struct {
	Name           string   `json:"name"`
	Year           int      `json:"year"`
	FirstDayOffset int      `json:"first_day_offset"` // Monday = 0
	Days           []Status `json:"days"`
}

// BuildMonths classifies every day of the last count calendar months (the
// current one included, oldest first). A day is Failed when every result
// failed, Operational when every result succeeded and Failing otherwise.
func BuildMonths(results []domain.ProbeResult, now time.Time, count int) []Month {
	byDay := make(map[string][]domain.ProbeResult)
	for _, r := range results {
		k := dayKey(r.CreatedAt)
		byDay[k] = append(byDay[k], r)
	}

	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]Month, 0, count)
	for i := count - 1; i >= 0; i-- {
		start := first.AddDate(0, -i, 0)
		next := start.AddDate(0, 1, 0)
		m := Month{
			Name:           start.Month().String(),
			Year:           start.Year(),
			FirstDayOffset: (int(start.Weekday()) + 6) % 7,
		}
		for d := start; d.Before(next); d = d.AddDate(0, 0, 1) {
			m.Days = append(m.Days, coarseStatus(byDay[dayKey(d)]))
		}
		months = append(months, m)
	}
	return months
}

func coarseStatus(results []domain.ProbeResult) Status {
	if len(results) == 0 {
		return Unknown
	}
	ok, failed := 0, 0
	for _, r := range results {
		if r.Success() {
			ok++
		} else {
			failed++
		}
	}
	switch {
	case failed == 0:
		return Operational
	case ok == 0:
		return Failed
	default:
		return Failing
	}
}
