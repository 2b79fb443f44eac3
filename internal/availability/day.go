package availability

import (
	"time"

	"github.com/hamed0406/statuspage/internal/domain"
)

// DayAvailability is the derived view of one project on one UTC day.
type DayAvailability struct {
	Date          time.Time            `json:"date"`
	Status        Status               `json:"status"`
	Colour        string               `json:"colour"`
	Downtime      []Downtime           `json:"downtime"`
	Checks        int                  `json:"checks"`
	AvgResponseMS int64                `json:"avg_response_ms"`
	Results       []domain.ProbeResult `json:"-"`
}

// Label is the date as shown on the status grid.
func (d DayAvailability) Label() string { return d.Date.Format("2006/01/02") }

// Day builds the availability of a single day from that day's results.
func (a Aggregator) Day(date time.Time, results []domain.ProbeResult, now time.Time) DayAvailability {
	downtime := a.ComputeDowntimePeriods(results, now)
	if downtime == nil {
		downtime = []Downtime{}
	}
	status := OverallStatus(results, downtime)
	return DayAvailability{
		Date:          startOfDay(date),
		Status:        status,
		Colour:        status.Colour(),
		Downtime:      downtime,
		Checks:        len(results),
		AvgResponseMS: averageElapsed(results),
		Results:       results,
	}
}

func averageElapsed(results []domain.ProbeResult) int64 {
	if len(results) == 0 {
		return 0
	}
	var sum int64
	for _, r := range results {
		sum += r.ElapsedMS
	}
	return sum / int64(len(results))
}

// ProjectStatus is a project with its day grid, oldest day first.
type ProjectStatus struct {
	Project domain.Project    `json:"project"`
	Days    []DayAvailability `json:"days"`
	Today   DayAvailability   `json:"today"`
}

// BuildProjectStatus buckets results (which may belong to several projects)
// into historySize UTC days ending today.
func (a Aggregator) BuildProjectStatus(p domain.Project, results []domain.ProbeResult, historySize int, now time.Time) ProjectStatus {
	if historySize < 1 {
		historySize = 1
	}
	byDay := make(map[string][]domain.ProbeResult)
	for _, r := range results {
		if r.ProjectID != p.ID {
			continue
		}
		k := dayKey(r.CreatedAt)
		byDay[k] = append(byDay[k], r)
	}

	today := startOfDay(now)
	days := make([]DayAvailability, 0, historySize)
	for x := historySize - 1; x >= 0; x-- {
		d := today.AddDate(0, 0, -x)
		days = append(days, a.Day(d, byDay[dayKey(d)], now))
	}
	return ProjectStatus{Project: p, Days: days, Today: days[len(days)-1]}
}

// BuildStatusPage builds a ProjectStatus for every enabled project.
func (a Aggregator) BuildStatusPage(projects []domain.Project, results []domain.ProbeResult, historySize int, now time.Time) []ProjectStatus {
	out := make([]ProjectStatus, 0, len(projects))
	for _, p := range projects {
		if !p.Enabled {
			continue
		}
		out = append(out, a.BuildProjectStatus(p, results, historySize, now))
	}
	return out
}
