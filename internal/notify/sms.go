package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/multierr"
)

const DefaultTwilioBaseURL = "https://api.twilio.com"

type PhoneSource interface {
	ConfirmedPhoneNumbers(ctx context.Context) ([]string, error)
}

// SMS sends alerts through the Twilio Messages API.
type SMS struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
	Source     PhoneSource
	Client     *http.Client
}

// NewSMS returns nil unless the account and sender are set.
func NewSMS(sid, token, from string, src PhoneSource) *SMS {
	if sid == "" || token == "" || from == "" {
		return nil
	}
	return &SMS{
		AccountSID: sid,
		AuthToken:  token,
		From:       from,
		BaseURL:    DefaultTwilioBaseURL,
		Source:     src,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func SMSText(ev Event) string {
	return fmt.Sprintf("YouUp, Project '%s' down, code %d", ev.ProjectName, ev.Code)
}

func (s *SMS) Name() string { return "sms" }

func (s *SMS) Notify(ctx context.Context, ev Event) error {
	phones, err := s.Source.ConfirmedPhoneNumbers(ctx)
	if err != nil {
		return fmt.Errorf("load phone numbers: %w", err)
	}
	text := SMSText(ev)
	var errs error
	for _, to := range phones {
		errs = multierr.Append(errs, s.send(ctx, to, text))
	}
	return errs
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *SMS) send(ctx context.Context, to, text string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(s.BaseURL, "/"), url.PathEscape(s.AccountSID))
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.From)
	form.Set("Body", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	req.SetBasicAuth(s.AccountSID, s.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		var te twilioError
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if json.Unmarshal(b, &te) == nil && te.Message != "" {
			return fmt.Errorf("twilio %d: %s (code %d)", resp.StatusCode, te.Message, te.Code)
		}
		return fmt.Errorf("twilio non-2xx: %d", resp.StatusCode)
	}
	return nil
}
