package domain

import "time"

type EmailSubscription struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
}

type SMSSubscription struct {
	ID          int64     `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	Confirmed   bool      `json:"confirmed"`
	CreatedAt   time.Time `json:"created_at"`
}

type WebhookSubscription struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Secret    string    `json:"-"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscriptions groups every subscriber list for the admin view.
type Subscriptions struct {
	Email   []EmailSubscription   `json:"email"`
	SMS     []SMSSubscription     `json:"sms"`
	Webhook []WebhookSubscription `json:"webhook"`
}
