// Package notify delivers down-transition alerts to every configured channel.
package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/metrics"
)

// Event is raised once per down-transition of a project.
type Event struct {
	ProjectID   domain.ProjectID
	ProjectName string
	Code        int
	Time        time.Time
}

func (e Event) Title() string {
	return fmt.Sprintf("Alert in project '%s'", e.ProjectName)
}

func (e Event) Text() string {
	return fmt.Sprintf("Service is now down, received a status code of %d at %s",
		e.Code, e.Time.UTC().Format(time.RFC3339))
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Channel is a single delivery mechanism (email, sms, webhook, slack).
type Channel interface {
	Notifier
	Name() string
}

// Fanout sends every event to all channels. A failing or panicking channel is
// logged and does not stop the others.
type Fanout struct {
	log      *zap.Logger
	metrics  *metrics.Collectors
	channels []Channel
}

func NewFanout(log *zap.Logger, m *metrics.Collectors, channels ...Channel) *Fanout {
	if log == nil {
		log = zap.NewNop()
	}
	f := &Fanout{log: log, metrics: m}
	for _, c := range channels {
		if c != nil {
			f.channels = append(f.channels, c)
		}
	}
	return f
}

// Channels returns the names of the active channels.
func (f *Fanout) Channels() []string {
	out := make([]string, 0, len(f.channels))
	for _, c := range f.channels {
		out = append(out, c.Name())
	}
	return out
}

func (f *Fanout) Notify(ctx context.Context, ev Event) error {
	var errs error
	for _, c := range f.channels {
		err := f.send(ctx, c, ev)
		f.metrics.Notification(c.Name(), err)
		if err != nil {
			f.log.Warn("notify_channel_error",
				zap.String("channel", c.Name()),
				zap.String("project_id", string(ev.ProjectID)),
				zap.Int("code", ev.Code),
				zap.Error(err),
			)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", c.Name(), err))
			continue
		}
		f.log.Info("notify_sent",
			zap.String("channel", c.Name()),
			zap.String("project_id", string(ev.ProjectID)),
		)
	}
	return errs
}

func (f *Fanout) send(ctx context.Context, c Channel, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.Notify(ctx, ev)
}
