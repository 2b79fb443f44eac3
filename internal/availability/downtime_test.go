package availability

import (
	"reflect"
	"testing"
	"time"

	"github.com/hamed0406/statuspage/internal/domain"
)

func at(h, m int) time.Time {
	return time.Date(2025, 6, 1, h, m, 0, 0, time.UTC)
}

func res(id int64, code int, ts time.Time) domain.ProbeResult {
	return domain.ProbeResult{ID: id, ProjectID: "P1", ElapsedMS: 10, StatusCode: code, CreatedAt: ts}
}

var nextWeek = time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)

func TestComputeDowntime_EmptyAndAllSuccess(t *testing.T) {
	agg := NewAggregator(DefaultMinDowntimeMinutes)

	if got := agg.ComputeDowntimePeriods(nil, nextWeek); len(got) != 0 {
		t.Fatalf("empty input: want no intervals, got %+v", got)
	}
	if s := OverallStatus(nil, nil); s != Unknown {
		t.Fatalf("empty input: want Unknown, got %s", s)
	}

	ok := []domain.ProbeResult{res(3, 200, at(12, 0)), res(2, 204, at(11, 0)), res(1, 200, at(10, 0))}
	got := agg.ComputeDowntimePeriods(ok, nextWeek)
	if len(got) != 0 {
		t.Fatalf("all success: want no intervals, got %+v", got)
	}
	if s := OverallStatus(ok, got); s != Operational {
		t.Fatalf("all success: want Operational, got %s", s)
	}
}

func TestComputeDowntime_AllFailedPastDay(t *testing.T) {
	agg := NewAggregator(DefaultMinDowntimeMinutes)
	in := []domain.ProbeResult{
		res(1, 503, time.Date(2020, 9, 25, 0, 0, 0, 0, time.UTC)),
		res(2, 404, time.Date(2020, 9, 25, 12, 0, 0, 0, time.UTC)),
	}
	got := agg.ComputeDowntimePeriods(in, nextWeek)
	if len(got) != 1 {
		t.Fatalf("want exactly one interval, got %d", len(got))
	}
	if got[0].Text != "24 hours" {
		t.Fatalf("want 24 hours, got %q", got[0].Text)
	}
	if s := OverallStatus(in, got); s != Failed {
		t.Fatalf("want Failed, got %s", s)
	}
}

func TestComputeDowntime_AllFailedToday(t *testing.T) {
	agg := NewAggregator(DefaultMinDowntimeMinutes)
	in := []domain.ProbeResult{res(1, 500, at(10, 0))}
	got := agg.ComputeDowntimePeriods(in, at(12, 30))
	if len(got) != 1 || got[0].Text != "2 hours 30 minutes" {
		t.Fatalf("want one open interval of 2h30, got %+v", got)
	}
	if !got[0].End.Equal(at(12, 30)) {
		t.Fatalf("open interval should end now, got %v", got[0].End)
	}
}

func TestComputeDowntime_GapAboveThreshold(t *testing.T) {
	agg := NewAggregator(DefaultMinDowntimeMinutes)
	// most recent first
	in := []domain.ProbeResult{
		res(3, 200, at(12, 0)),
		res(2, 503, at(11, 0)),
		res(1, 200, at(10, 0)),
	}
	got := agg.ComputeDowntimePeriods(in, nextWeek)
	if len(got) != 1 {
		t.Fatalf("want one interval, got %+v", got)
	}
	if got[0].Duration != time.Hour || got[0].Text != "1 hour" {
		t.Fatalf("want 1 hour, got %v %q", got[0].Duration, got[0].Text)
	}
	if !got[0].Start.Equal(at(11, 0)) || !got[0].End.Equal(at(12, 0)) {
		t.Fatalf("bad bounds: %+v", got[0])
	}
	if s := OverallStatus(in, got); s != Recovering {
		t.Fatalf("last observation succeeded: want Recovering, got %s", s)
	}
}

func TestComputeDowntime_GapBelowThreshold(t *testing.T) {
	agg := NewAggregator(DefaultMinDowntimeMinutes)
	in := []domain.ProbeResult{
		res(3, 200, at(11, 2)),
		res(2, 503, at(11, 0)),
		res(1, 200, at(10, 0)),
	}
	got := agg.ComputeDowntimePeriods(in, nextWeek)
	if len(got) != 0 {
		t.Fatalf("2 minute gap is not above a 2 minute threshold, got %+v", got)
	}
	if s := OverallStatus(in, got); s != Operational {
		t.Fatalf("want Operational, got %s", s)
	}
}

func TestComputeDowntime_OrderAgnostic(t *testing.T) {
	agg := NewAggregator(DefaultMinDowntimeMinutes)
	desc := []domain.ProbeResult{
		res(6, 200, at(18, 0)),
		res(5, 500, at(16, 0)),
		res(4, 500, at(15, 0)),
		res(3, 200, at(12, 0)),
		res(2, 404, at(11, 0)),
		res(1, 200, at(10, 0)),
	}
	asc := make([]domain.ProbeResult, len(desc))
	for i := range desc {
		asc[len(desc)-1-i] = desc[i]
	}

	a := agg.ComputeDowntimePeriods(desc, nextWeek)
	b := agg.ComputeDowntimePeriods(asc, nextWeek)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("order changed the result:\ndesc=%+v\nasc =%+v", a, b)
	}
	if len(a) != 2 || a[0].Text != "1 hour" || a[1].Text != "3 hours" {
		t.Fatalf("unexpected intervals: %+v", a)
	}
	for _, d := range a {
		if d.Duration <= 0 {
			t.Fatalf("non-positive span: %+v", d)
		}
	}
	// input must not be reordered
	if desc[0].ID != 6 || asc[0].ID != 1 {
		t.Fatalf("input slice was mutated")
	}
}

func TestComputeDowntime_StillDownAtEndOfDay(t *testing.T) {
	agg := NewAggregator(DefaultMinDowntimeMinutes)
	in := []domain.ProbeResult{
		res(2, 503, at(20, 0)),
		res(1, 200, at(10, 0)),
	}

	past := agg.ComputeDowntimePeriods(in, nextWeek)
	if len(past) != 1 || past[0].Text != "4 hours" {
		t.Fatalf("past day: want 4 hours to midnight, got %+v", past)
	}
	if s := OverallStatus(in, past); s != Failing {
		t.Fatalf("want Failing, got %s", s)
	}

	today := agg.ComputeDowntimePeriods(in, at(21, 30))
	if len(today) != 1 || today[0].Text != "1 hour 30 minutes" {
		t.Fatalf("today: want span to now, got %+v", today)
	}

	short := agg.ComputeDowntimePeriods(in, at(20, 1))
	if len(short) != 0 {
		t.Fatalf("open span under threshold must not be reported, got %+v", short)
	}
}

func TestComputeDowntime_Idempotent(t *testing.T) {
	agg := NewAggregator(DefaultMinDowntimeMinutes)
	in := []domain.ProbeResult{
		res(3, 500, at(13, 0)),
		res(2, 200, at(12, 0)),
		res(1, 500, at(9, 0)),
	}
	first := agg.ComputeDowntimePeriods(in, nextWeek)
	second := agg.ComputeDowntimePeriods(in, nextWeek)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestComputeDowntime_ThresholdIsConfigurable(t *testing.T) {
	in := []domain.ProbeResult{
		res(3, 200, at(11, 10)),
		res(2, 500, at(11, 0)),
		res(1, 200, at(10, 0)),
	}
	if got := NewAggregator(15).ComputeDowntimePeriods(in, nextWeek); len(got) != 0 {
		t.Fatalf("threshold 15: want none, got %+v", got)
	}
	if got := NewAggregator(5).ComputeDowntimePeriods(in, nextWeek); len(got) != 1 {
		t.Fatalf("threshold 5: want one, got %+v", got)
	}
}
