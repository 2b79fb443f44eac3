package domain

import "time"

type ProjectID string

// Project is a monitored endpoint. Disabled projects keep their history but are
// not probed and not shown on public pages.
type Project struct {
	ID          ProjectID `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
}
