package availability

import (
	"testing"
	"time"

	"github.com/hamed0406/statuspage/internal/domain"
)

func TestBuildProjectStatus_Grid(t *testing.T) {
	agg := NewAggregator(DefaultMinDowntimeMinutes)
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	p := domain.Project{ID: "P1", Name: "api", Enabled: true}

	results := []domain.ProbeResult{
		{ID: 4, ProjectID: "P1", ElapsedMS: 300, StatusCode: 200, CreatedAt: time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)},
		{ID: 3, ProjectID: "P1", ElapsedMS: 100, StatusCode: 200, CreatedAt: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)},
		{ID: 2, ProjectID: "P2", ElapsedMS: 999, StatusCode: 500, CreatedAt: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)},
		{ID: 1, ProjectID: "P1", ElapsedMS: 50, StatusCode: 503, CreatedAt: time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)},
	}

	ps := agg.BuildProjectStatus(p, results, 3, now)
	if len(ps.Days) != 3 {
		t.Fatalf("want 3 days, got %d", len(ps.Days))
	}
	want := []Status{Unknown, Failed, Operational}
	for i, d := range ps.Days {
		if d.Status != want[i] {
			t.Fatalf("day %d (%s): want %s got %s", i, d.Label(), want[i], d.Status)
		}
	}
	if ps.Days[0].Label() != "2025/06/08" {
		t.Fatalf("oldest day label: %s", ps.Days[0].Label())
	}
	if ps.Today.Checks != 2 || ps.Today.AvgResponseMS != 200 {
		t.Fatalf("today: checks=%d avg=%d", ps.Today.Checks, ps.Today.AvgResponseMS)
	}
	if ps.Days[1].Downtime[0].Text != "16 hours" {
		t.Fatalf("failed day downtime: %+v", ps.Days[1].Downtime)
	}
	if ps.Days[0].AvgResponseMS != 0 || ps.Days[0].Colour != "#808080" {
		t.Fatalf("empty day: %+v", ps.Days[0])
	}
}

func TestBuildStatusPage_SkipsDisabled(t *testing.T) {
	agg := NewAggregator(DefaultMinDowntimeMinutes)
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	projects := []domain.Project{
		{ID: "P1", Name: "on", Enabled: true},
		{ID: "P2", Name: "off", Enabled: false},
	}
	page := agg.BuildStatusPage(projects, nil, 30, now)
	if len(page) != 1 || page[0].Project.ID != "P1" {
		t.Fatalf("want only enabled project, got %+v", page)
	}
	if len(page[0].Days) != 30 || page[0].Today.Status != Unknown {
		t.Fatalf("unexpected grid: %d days, today=%s", len(page[0].Days), page[0].Today.Status)
	}
}

func TestBuildMonths(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	results := []domain.ProbeResult{
		{StatusCode: 200, CreatedAt: time.Date(2025, 3, 2, 1, 0, 0, 0, time.UTC)},
		{StatusCode: 500, CreatedAt: time.Date(2025, 3, 2, 2, 0, 0, 0, time.UTC)},
		{StatusCode: 500, CreatedAt: time.Date(2025, 3, 3, 2, 0, 0, 0, time.UTC)},
		{StatusCode: 200, CreatedAt: time.Date(2025, 2, 10, 2, 0, 0, 0, time.UTC)},
	}
	months := BuildMonths(results, now, 3)
	if len(months) != 3 {
		t.Fatalf("want 3 months, got %d", len(months))
	}
	if months[0].Name != "January" || len(months[0].Days) != 31 || months[0].FirstDayOffset != 2 {
		t.Fatalf("january: %+v", months[0])
	}
	if months[1].Name != "February" || len(months[1].Days) != 28 || months[1].FirstDayOffset != 5 {
		t.Fatalf("february: name=%s days=%d offset=%d", months[1].Name, len(months[1].Days), months[1].FirstDayOffset)
	}
	if months[1].Days[9] != Operational {
		t.Fatalf("feb 10: %s", months[1].Days[9])
	}
	if months[2].Days[1] != Failing || months[2].Days[2] != Failed || months[2].Days[0] != Unknown {
		t.Fatalf("march: %v", months[2].Days[:3])
	}
}
