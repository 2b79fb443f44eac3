package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/repo"
)

// Store keeps everything in process memory. Now stamps new rows and can be
// replaced in tests.
type Store struct {
	Now func() time.Time

	mu       sync.RWMutex
	projects map[domain.ProjectID]*domain.Project
	results  []domain.ProbeResult
	nextID   int64
	emails   []domain.EmailSubscription
	sms      []domain.SMSSubscription
	webhooks []domain.WebhookSubscription
}

var _ repo.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		Now:      func() time.Time { return time.Now().UTC() },
		projects: make(map[domain.ProjectID]*domain.Project),
		results:  make([]domain.ProbeResult, 0, 128),
	}
}

func (m *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Store) Close() {}

func (m *Store) id() int64 {
	m.nextID++
	return m.nextID
}

// ---- ProjectStore ----

func (m *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return m.listProjects(false), nil
}

func (m *Store) ListEnabledProjects(ctx context.Context) ([]domain.Project, error) {
	return m.listProjects(true), nil
}

func (m *Store) listProjects(enabledOnly bool) []domain.Project {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Project, 0, len(m.projects))
	for _, p := range m.projects {
		if enabledOnly && !p.Enabled {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (m *Store) GetProject(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Store) GetProjectByName(ctx context.Context, name string) (*domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.projects {
		if strings.EqualFold(p.Name, name) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *Store) CreateProject(ctx context.Context, p *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.projects {
		if strings.EqualFold(existing.Name, p.Name) {
			return fmt.Errorf("project %q: %w", p.Name, repo.ErrDuplicate)
		}
	}
	if p.ID == "" {
		p.ID = domain.ProjectID(uuid.NewString())
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.Now()
	}
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *Store) UpdateProject(ctx context.Context, p *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.projects[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	for id, existing := range m.projects {
		if id != p.ID && strings.EqualFold(existing.Name, p.Name) {
			return fmt.Errorf("project %q: %w", p.Name, repo.ErrDuplicate)
		}
	}
	cur.Name = p.Name
	cur.URL = p.URL
	cur.Description = p.Description
	cur.Enabled = p.Enabled
	p.CreatedAt = cur.CreatedAt
	return nil
}

// ---- ResultStore ----

func (m *Store) InsertResult(ctx context.Context, r domain.NewProbeResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, domain.ProbeResult{
		ID:         m.id(),
		ProjectID:  r.ProjectID,
		ElapsedMS:  r.ElapsedMS,
		StatusCode: r.StatusCode,
		CreatedAt:  m.Now(),
	})
	return nil
}

func (m *Store) LatestResult(ctx context.Context, id domain.ProjectID) (*domain.ProbeResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best *domain.ProbeResult
	for i := range m.results {
		r := &m.results[i]
		if r.ProjectID != id {
			continue
		}
		if best == nil || r.CreatedAt.After(best.CreatedAt) ||
			(r.CreatedAt.Equal(best.CreatedAt) && r.ID > best.ID) {
			best = r
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (m *Store) ResultsSince(ctx context.Context, id domain.ProjectID, since time.Time) ([]domain.ProbeResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.ProbeResult, 0)
	for _, r := range m.results {
		if id != "" && r.ProjectID != id {
			continue
		}
		if r.CreatedAt.After(since) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ---- SubscriptionStore ----

func (m *Store) AddEmailSubscription(ctx context.Context, email, token string) (*domain.EmailSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.emails {
		if strings.EqualFold(s.Email, email) {
			return nil, fmt.Errorf("email %q: %w", email, repo.ErrDuplicate)
		}
	}
	s := domain.EmailSubscription{ID: m.id(), Email: email, Token: token, CreatedAt: m.Now()}
	m.emails = append(m.emails, s)
	return &s, nil
}

func (m *Store) ConfirmEmailSubscription(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.emails {
		if token != "" && m.emails[i].Token == token {
			m.emails[i].Confirmed = true
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *Store) ConfirmedEmails(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, s := range m.emails {
		if s.Confirmed {
			out = append(out, s.Email)
		}
	}
	return out, nil
}

// AddSMSSubscription registers a phone number. Numbers are added by an admin
// and count as confirmed.
func (m *Store) AddSMSSubscription(ctx context.Context, phone string) (*domain.SMSSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sms {
		if s.PhoneNumber == phone {
			return nil, fmt.Errorf("phone %q: %w", phone, repo.ErrDuplicate)
		}
	}
	s := domain.SMSSubscription{ID: m.id(), PhoneNumber: phone, Confirmed: true, CreatedAt: m.Now()}
	m.sms = append(m.sms, s)
	return &s, nil
}

func (m *Store) ConfirmedPhoneNumbers(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, s := range m.sms {
		if s.Confirmed {
			out = append(out, s.PhoneNumber)
		}
	}
	return out, nil
}

func (m *Store) AddWebhookSubscription(ctx context.Context, url, secret string) (*domain.WebhookSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.webhooks {
		if s.URL == url {
			return nil, fmt.Errorf("webhook %q: %w", url, repo.ErrDuplicate)
		}
	}
	s := domain.WebhookSubscription{ID: m.id(), URL: url, Secret: secret, Enabled: true, CreatedAt: m.Now()}
	m.webhooks = append(m.webhooks, s)
	return &s, nil
}

func (m *Store) EnabledWebhooks(ctx context.Context) ([]domain.WebhookSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.WebhookSubscription
	for _, s := range m.webhooks {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Store) ListSubscriptions(ctx context.Context) (domain.Subscriptions, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.Subscriptions{
		Email:   append([]domain.EmailSubscription(nil), m.emails...),
		SMS:     append([]domain.SMSSubscription(nil), m.sms...),
		Webhook: append([]domain.WebhookSubscription(nil), m.webhooks...),
	}, nil
}
