package repo

import (
	"context"
	"errors"
	"time"

	"github.com/hamed0406/statuspage/internal/domain"
)

var (
	ErrNotFound  = errors.New("repo: not found")
	ErrDuplicate = errors.New("repo: duplicate")
)

// Read windows used by the status pages.
const (
	Window30Days = 30 * 24 * time.Hour
	Window90Days = 90 * 24 * time.Hour
)

// Ports (interfaces), one per resource.
type ProjectStore interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	ListEnabledProjects(ctx context.Context) ([]domain.Project, error)
	GetProject(ctx context.Context, id domain.ProjectID) (*domain.Project, error)
	GetProjectByName(ctx context.Context, name string) (*domain.Project, error)
	CreateProject(ctx context.Context, p *domain.Project) error
	UpdateProject(ctx context.Context, p *domain.Project) error
}

type ResultStore interface {
	InsertResult(ctx context.Context, r domain.NewProbeResult) error
	// LatestResult returns nil, nil when the project has no results yet.
	LatestResult(ctx context.Context, id domain.ProjectID) (*domain.ProbeResult, error)
	// ResultsSince returns results newer than since, newest first. An empty
	// id selects every project.
	ResultsSince(ctx context.Context, id domain.ProjectID, since time.Time) ([]domain.ProbeResult, error)
}

type SubscriptionStore interface {
	AddEmailSubscription(ctx context.Context, email, token string) (*domain.EmailSubscription, error)
	ConfirmEmailSubscription(ctx context.Context, token string) error
	ConfirmedEmails(ctx context.Context) ([]string, error)
	AddSMSSubscription(ctx context.Context, phone string) (*domain.SMSSubscription, error)
	ConfirmedPhoneNumbers(ctx context.Context) ([]string, error)
	AddWebhookSubscription(ctx context.Context, url, secret string) (*domain.WebhookSubscription, error)
	EnabledWebhooks(ctx context.Context) ([]domain.WebhookSubscription, error)
	ListSubscriptions(ctx context.Context) (domain.Subscriptions, error)
}

// Store is what the composition root opens: every port plus lifecycle.
type Store interface {
	ProjectStore
	ResultStore
	SubscriptionStore
	Ping(ctx context.Context) error
	Close()
}
