package notify

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"net/http"
	"text/template"
	"time"
)

//go:embed "templates"
var templateFS embed.FS

const DefaultSMTP2GOEndpoint = "https://api.smtp2go.com/v3/email/send"

// SMTP2GO API request structure
type SMTP2GORequest struct {
	APIKey   string   `json:"api_key"`
	To       []string `json:"to"`
	Sender   string   `json:"sender"`
	Subject  string   `json:"subject"`
	TextBody string   `json:"text_body"`
	HtmlBody string   `json:"html_body"`
}

// SMTP2GO API response structure
type SMTP2GOResponse struct {
	RequestID string `json:"request_id"`
	Data      struct {
		EmailID string `json:"email_id"`
	} `json:"data"`
}

type Mailer struct {
	apiKey   string
	sender   string
	endpoint string
	client   *http.Client
}

// NewMailer returns nil when the API key or sender is missing.
func NewMailer(apiKey, sender, endpoint string) *Mailer {
	if apiKey == "" || sender == "" {
		return nil
	}
	if endpoint == "" {
		endpoint = DefaultSMTP2GOEndpoint
	}
	return &Mailer{
		apiKey:   apiKey,
		sender:   sender,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type rendered struct {
	subject, plain, html string
}

func render(templateFile string, data any) (rendered, error) {
	var out rendered

	// Subject and plain body render as text; only the HTML body is escaped.
	txt, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return out, err
	}
	htm, err := htmltemplate.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return out, err
	}

	subject := new(bytes.Buffer)
	if err := txt.ExecuteTemplate(subject, "subject", data); err != nil {
		return out, err
	}
	plainBody := new(bytes.Buffer)
	if err := txt.ExecuteTemplate(plainBody, "plainBody", data); err != nil {
		return out, err
	}
	htmlBody := new(bytes.Buffer)
	if err := htm.ExecuteTemplate(htmlBody, "htmlBody", data); err != nil {
		return out, err
	}
	out.subject, out.plain, out.html = subject.String(), plainBody.String(), htmlBody.String()
	return out, nil
}

// Send renders templateFile with data and delivers one message to recipients.
func (m *Mailer) Send(ctx context.Context, recipients []string, templateFile string, data any) error {
	if len(recipients) == 0 {
		return errors.New("no recipients")
	}
	msg, err := render(templateFile, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", templateFile, err)
	}

	jsonData, err := json.Marshal(SMTP2GORequest{
		APIKey:   m.apiKey,
		To:       recipients,
		Sender:   m.sender,
		Subject:  msg.subject,
		TextBody: msg.plain,
		HtmlBody: msg.html,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return m.sendViaAPI(ctx, jsonData)
}

// SendConfirmation mails the subscription confirmation link to one address.
func (m *Mailer) SendConfirmation(ctx context.Context, to, link string) error {
	return m.Send(ctx, []string{to}, "confirm.tmpl", map[string]string{"Link": link})
}

func (m *Mailer) sendViaAPI(ctx context.Context, jsonData []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API request failed with status: %d", resp.StatusCode)
	}

	var response SMTP2GOResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type EmailSource interface {
	ConfirmedEmails(ctx context.Context) ([]string, error)
}

// Email alerts every confirmed email subscriber.
type Email struct {
	Mailer *Mailer
	Source EmailSource
}

func (e *Email) Name() string { return "email" }

func (e *Email) Notify(ctx context.Context, ev Event) error {
	to, err := e.Source.ConfirmedEmails(ctx)
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}
	if len(to) == 0 {
		return nil
	}
	return e.Mailer.Send(ctx, to, "alert.tmpl", struct {
		ProjectName string
		Code        int
		Time        string
	}{ev.ProjectName, ev.Code, ev.Time.UTC().Format(time.RFC3339)})
}
