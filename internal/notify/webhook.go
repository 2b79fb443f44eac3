package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/hamed0406/statuspage/internal/domain"
)

const SignatureHeader = "X-Signature-256"

type WebhookSource interface {
	EnabledWebhooks(ctx context.Context) ([]domain.WebhookSubscription, error)
}

// Webhook POSTs a JSON event to every enabled webhook subscription.
type Webhook struct {
	Source WebhookSource
	Client *http.Client
}

func NewWebhook(src WebhookSource) *Webhook {
	return &Webhook{Source: src, Client: &http.Client{Timeout: 10 * time.Second}}
}

type webhookPayload struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	StatusCode  int    `json:"status_code"`
	Time        string `json:"time"`
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Notify(ctx context.Context, ev Event) error {
	hooks, err := w.Source.EnabledWebhooks(ctx)
	if err != nil {
		return fmt.Errorf("load webhooks: %w", err)
	}
	if len(hooks) == 0 {
		return nil
	}
	body, err := json.Marshal(webhookPayload{
		ProjectID:   string(ev.ProjectID),
		ProjectName: ev.ProjectName,
		StatusCode:  ev.Code,
		Time:        ev.Time.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	var errs error
	for _, h := range hooks {
		errs = multierr.Append(errs, w.post(ctx, h, body))
	}
	return errs
}

func (w *Webhook) post(ctx context.Context, h domain.WebhookSubscription, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook %d: %w", h.ID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(h.Secret, body))
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %d: %w", h.ID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("webhook %d: non-2xx: %d", h.ID, resp.StatusCode)
	}
	return nil
}

// Sign returns the "sha256=<hex>" HMAC of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
