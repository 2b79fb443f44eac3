package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/repo"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "status.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSQLiteStore_Projects(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	p := &domain.Project{Name: "api", URL: "https://example.com", Enabled: true}
	if err := s.CreateProject(ctx, p); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if err := s.CreateProject(ctx, &domain.Project{Name: "docs"}); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if err := s.CreateProject(ctx, &domain.Project{Name: "API"}); !errors.Is(err, repo.ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}

	all, err := s.ListProjects(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListProjects: %+v %v", all, err)
	}
	enabled, err := s.ListEnabledProjects(ctx)
	if err != nil || len(enabled) != 1 || enabled[0].ID != p.ID {
		t.Fatalf("ListEnabledProjects: %+v %v", enabled, err)
	}

	got, err := s.GetProjectByName(ctx, "API")
	if err != nil || got.ID != p.ID || got.Description != "" {
		t.Fatalf("GetProjectByName: %+v %v", got, err)
	}
	if _, err := s.GetProject(ctx, "missing"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	p.Description = "public api"
	p.Enabled = false
	if err := s.UpdateProject(ctx, p); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	got, _ = s.GetProject(ctx, p.ID)
	if got.Enabled || got.Description != "public api" {
		t.Fatalf("unexpected project after update: %+v", got)
	}
	if err := s.UpdateProject(ctx, &domain.Project{ID: "nope", Name: "x"}); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_Results(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.Now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	p1 := &domain.Project{ID: "P1", Name: "one"}
	p2 := &domain.Project{ID: "P2", Name: "two"}
	_ = s.CreateProject(ctx, p1) // tick 1
	_ = s.CreateProject(ctx, p2) // tick 2

	if got, err := s.LatestResult(ctx, "P1"); err != nil || got != nil {
		t.Fatalf("no results yet: want nil,nil got %+v %v", got, err)
	}

	for _, r := range []domain.NewProbeResult{
		{ProjectID: "P1", ElapsedMS: 10, StatusCode: 200}, // tick 3
		{ProjectID: "P2", ElapsedMS: 20, StatusCode: 500}, // tick 4
		{ProjectID: "P1", ElapsedMS: 30, StatusCode: 503}, // tick 5
	} {
		if err := s.InsertResult(ctx, r); err != nil {
			t.Fatalf("InsertResult: %v", err)
		}
	}

	latest, err := s.LatestResult(ctx, "P1")
	if err != nil || latest == nil || latest.StatusCode != 503 {
		t.Fatalf("LatestResult: %+v %v", latest, err)
	}
	if !latest.CreatedAt.Equal(base.Add(5 * time.Minute)) {
		t.Fatalf("created_at: %v", latest.CreatedAt)
	}

	all, err := s.ResultsSince(ctx, "", time.Time{})
	if err != nil || len(all) != 3 || all[0].ElapsedMS != 30 || all[2].ElapsedMS != 10 {
		t.Fatalf("want newest first across projects: %+v %v", all, err)
	}
	recent, _ := s.ResultsSince(ctx, "P1", base.Add(3*time.Minute))
	if len(recent) != 1 || recent[0].StatusCode != 503 {
		t.Fatalf("window filter: %+v", recent)
	}

	if err := s.InsertResult(ctx, domain.NewProbeResult{ProjectID: "ghost", StatusCode: 200}); err == nil {
		t.Fatalf("expected foreign key violation for unknown project")
	}
}

func TestSQLiteStore_Subscriptions(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	if _, err := s.AddEmailSubscription(ctx, "a@example.com", "tok-a"); err != nil {
		t.Fatalf("AddEmailSubscription: %v", err)
	}
	if _, err := s.AddEmailSubscription(ctx, "A@example.com", "tok-x"); !errors.Is(err, repo.ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
	if err := s.ConfirmEmailSubscription(ctx, "tok-a"); err != nil {
		t.Fatalf("ConfirmEmailSubscription: %v", err)
	}
	if err := s.ConfirmEmailSubscription(ctx, "bogus"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	emails, _ := s.ConfirmedEmails(ctx)
	if len(emails) != 1 || emails[0] != "a@example.com" {
		t.Fatalf("ConfirmedEmails: %v", emails)
	}

	sms, err := s.AddSMSSubscription(ctx, "+15550001")
	if err != nil || !sms.Confirmed {
		t.Fatalf("AddSMSSubscription: %+v %v", sms, err)
	}
	phones, _ := s.ConfirmedPhoneNumbers(ctx)
	if len(phones) != 1 || phones[0] != "+15550001" {
		t.Fatalf("ConfirmedPhoneNumbers: %v", phones)
	}

	if _, err := s.AddWebhookSubscription(ctx, "https://hooks.example.com/a", "secret"); err != nil {
		t.Fatalf("AddWebhookSubscription: %v", err)
	}
	hooks, _ := s.EnabledWebhooks(ctx)
	if len(hooks) != 1 || hooks[0].Secret != "secret" || !hooks[0].Enabled {
		t.Fatalf("EnabledWebhooks: %+v", hooks)
	}

	subs, err := s.ListSubscriptions(ctx)
	if err != nil || len(subs.Email) != 1 || len(subs.SMS) != 1 || len(subs.Webhook) != 1 {
		t.Fatalf("ListSubscriptions: %+v %v", subs, err)
	}
}
