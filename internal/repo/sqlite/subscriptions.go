package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/repo"
)

func (s *Store) insert(ctx context.Context, q string, args ...any) (int64, int64, error) {
	now := s.nowMS()
	res, err := s.db.ExecContext(ctx, q, append(args, now)...)
	if err != nil {
		return 0, 0, err
	}
	id, err := res.LastInsertId()
	return id, now, err
}

func (s *Store) AddEmailSubscription(ctx context.Context, email, token string) (*domain.EmailSubscription, error) {
	id, now, err := s.insert(ctx,
		`INSERT INTO email_subscriptions (email, token, created_at) VALUES (?, ?, ?)`, email, token)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("email %q: %w", email, repo.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert email subscription: %w", err)
	}
	return &domain.EmailSubscription{ID: id, Email: email, Token: token, CreatedAt: fromMS(now)}, nil
}

func (s *Store) ConfirmEmailSubscription(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE email_subscriptions SET confirmed = 1 WHERE token = ? AND token <> ''`, token)
	if err != nil {
		return fmt.Errorf("confirm email subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) strings(ctx context.Context, q string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) ConfirmedEmails(ctx context.Context) ([]string, error) {
	out, err := s.strings(ctx, `SELECT email FROM email_subscriptions WHERE confirmed = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("confirmed emails: %w", err)
	}
	return out, nil
}

func (s *Store) AddSMSSubscription(ctx context.Context, phone string) (*domain.SMSSubscription, error) {
	id, now, err := s.insert(ctx,
		`INSERT INTO sms_subscriptions (phone_number, created_at) VALUES (?, ?)`, phone)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("phone %q: %w", phone, repo.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert sms subscription: %w", err)
	}
	return &domain.SMSSubscription{ID: id, PhoneNumber: phone, Confirmed: true, CreatedAt: fromMS(now)}, nil
}

func (s *Store) ConfirmedPhoneNumbers(ctx context.Context) ([]string, error) {
	out, err := s.strings(ctx, `SELECT phone_number FROM sms_subscriptions WHERE confirmed = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("confirmed phone numbers: %w", err)
	}
	return out, nil
}

func (s *Store) AddWebhookSubscription(ctx context.Context, url, secret string) (*domain.WebhookSubscription, error) {
	id, now, err := s.insert(ctx,
		`INSERT INTO webhook_subscriptions (url, secret, created_at) VALUES (?, ?, ?)`, url, secret)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("webhook %q: %w", url, repo.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert webhook subscription: %w", err)
	}
	return &domain.WebhookSubscription{ID: id, URL: url, Secret: secret, Enabled: true, CreatedAt: fromMS(now)}, nil
}

func scanWebhooks(rows *sql.Rows) ([]domain.WebhookSubscription, error) {
	defer rows.Close()
	var out []domain.WebhookSubscription
	for rows.Next() {
		var (
			w       domain.WebhookSubscription
			created int64
		)
		if err := rows.Scan(&w.ID, &w.URL, &w.Secret, &w.Enabled, &created); err != nil {
			return nil, err
		}
		w.CreatedAt = fromMS(created)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) EnabledWebhooks(ctx context.Context) ([]domain.WebhookSubscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, secret, enabled, created_at FROM webhook_subscriptions WHERE enabled = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("enabled webhooks: %w", err)
	}
	out, err := scanWebhooks(rows)
	if err != nil {
		return nil, fmt.Errorf("enabled webhooks: %w", err)
	}
	return out, nil
}

func (s *Store) listEmails(ctx context.Context) ([]domain.EmailSubscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, token, confirmed, created_at FROM email_subscriptions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.EmailSubscription
	for rows.Next() {
		var (
			e       domain.EmailSubscription
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Email, &e.Token, &e.Confirmed, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = fromMS(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) listSMS(ctx context.Context) ([]domain.SMSSubscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phone_number, confirmed, created_at FROM sms_subscriptions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.SMSSubscription
	for rows.Next() {
		var (
			m       domain.SMSSubscription
			created int64
		)
		if err := rows.Scan(&m.ID, &m.PhoneNumber, &m.Confirmed, &created); err != nil {
			return nil, err
		}
		m.CreatedAt = fromMS(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListSubscriptions(ctx context.Context) (domain.Subscriptions, error) {
	var (
		subs domain.Subscriptions
		err  error
	)
	if subs.Email, err = s.listEmails(ctx); err != nil {
		return subs, fmt.Errorf("list email subscriptions: %w", err)
	}
	if subs.SMS, err = s.listSMS(ctx); err != nil {
		return subs, fmt.Errorf("list sms subscriptions: %w", err)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, secret, enabled, created_at FROM webhook_subscriptions ORDER BY id`)
	if err != nil {
		return subs, fmt.Errorf("list webhook subscriptions: %w", err)
	}
	if subs.Webhook, err = scanWebhooks(rows); err != nil {
		return subs, fmt.Errorf("list webhook subscriptions: %w", err)
	}
	return subs, nil
}
