package postgres

import (
	"context"
	"fmt"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/repo"
)

func (s *Store) AddEmailSubscription(ctx context.Context, email, token string) (*domain.EmailSubscription, error) {
	sub := domain.EmailSubscription{Email: email, Token: token}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO email_subscriptions (email, token) VALUES ($1, $2)
		 RETURNING id, created_at`, email, token,
	).Scan(&sub.ID, &sub.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("email %q: %w", email, repo.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert email subscription: %w", err)
	}
	return &sub, nil
}

func (s *Store) ConfirmEmailSubscription(ctx context.Context, token string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE email_subscriptions SET confirmed = TRUE WHERE token = $1 AND token <> ''`, token)
	if err != nil {
		return fmt.Errorf("confirm email subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) strings(ctx context.Context, q string) ([]string, error) {
	rows, err := s.pool.Query(ctx, q)
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
	out, err := s.strings(ctx, `SELECT email FROM email_subscriptions WHERE confirmed ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("confirmed emails: %w", err)
	}
	return out, nil
}

func (s *Store) AddSMSSubscription(ctx context.Context, phone string) (*domain.SMSSubscription, error) {
	sub := domain.SMSSubscription{PhoneNumber: phone}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sms_subscriptions (phone_number) VALUES ($1)
		 RETURNING id, confirmed, created_at`, phone,
	).Scan(&sub.ID, &sub.Confirmed, &sub.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("phone %q: %w", phone, repo.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert sms subscription: %w", err)
	}
	return &sub, nil
}

func (s *Store) ConfirmedPhoneNumbers(ctx context.Context) ([]string, error) {
	out, err := s.strings(ctx, `SELECT phone_number FROM sms_subscriptions WHERE confirmed ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("confirmed phone numbers: %w", err)
	}
	return out, nil
}

func (s *Store) AddWebhookSubscription(ctx context.Context, url, secret string) (*domain.WebhookSubscription, error) {
	sub := domain.WebhookSubscription{URL: url, Secret: secret}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO webhook_subscriptions (url, secret) VALUES ($1, $2)
		 RETURNING id, enabled, created_at`, url, secret,
	).Scan(&sub.ID, &sub.Enabled, &sub.CreatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("webhook %q: %w", url, repo.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert webhook subscription: %w", err)
	}
	return &sub, nil
}

func (s *Store) webhooks(ctx context.Context, q string) ([]domain.WebhookSubscription, error) {
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.WebhookSubscription
	for rows.Next() {
		var w domain.WebhookSubscription
		if err := rows.Scan(&w.ID, &w.URL, &w.Secret, &w.Enabled, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) EnabledWebhooks(ctx context.Context) ([]domain.WebhookSubscription, error) {
	out, err := s.webhooks(ctx,
		`SELECT id, url, secret, enabled, created_at FROM webhook_subscriptions WHERE enabled ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("enabled webhooks: %w", err)
	}
	return out, nil
}

func (s *Store) ListSubscriptions(ctx context.Context) (domain.Subscriptions, error) {
	var subs domain.Subscriptions

	rows, err := s.pool.Query(ctx,
		`SELECT id, email, token, confirmed, created_at FROM email_subscriptions ORDER BY id`)
	if err != nil {
		return subs, fmt.Errorf("list email subscriptions: %w", err)
	}
	for rows.Next() {
		var e domain.EmailSubscription
		if err := rows.Scan(&e.ID, &e.Email, &e.Token, &e.Confirmed, &e.CreatedAt); err != nil {
			rows.Close()
			return subs, fmt.Errorf("scan email subscription: %w", err)
		}
		subs.Email = append(subs.Email, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return subs, err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT id, phone_number, confirmed, created_at FROM sms_subscriptions ORDER BY id`)
	if err != nil {
		return subs, fmt.Errorf("list sms subscriptions: %w", err)
	}
	for rows.Next() {
		var m domain.SMSSubscription
		if err := rows.Scan(&m.ID, &m.PhoneNumber, &m.Confirmed, &m.CreatedAt); err != nil {
			rows.Close()
			return subs, fmt.Errorf("scan sms subscription: %w", err)
		}
		subs.SMS = append(subs.SMS, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return subs, err
	}

	subs.Webhook, err = s.webhooks(ctx,
		`SELECT id, url, secret, enabled, created_at FROM webhook_subscriptions ORDER BY id`)
	if err != nil {
		return subs, fmt.Errorf("list webhook subscriptions: %w", err)
	}
	return subs, nil
}
