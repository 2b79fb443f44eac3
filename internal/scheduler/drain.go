package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Drainer interface {
	Drain(ctx context.Context, limit int) int
}

// cronLogger routes cron's own logging into zap.
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw("cron_"+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw("cron_"+msg, append(keysAndValues, "error", err)...)
}

// NewDrainJob schedules buf.Drain every interval on its own cron. Runs never
// overlap. The caller starts and stops the returned cron.
func NewDrainJob(ctx context.Context, buf Drainer, interval time.Duration, batch int, log *zap.Logger) (*cron.Cron, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if interval < time.Second {
		return nil, fmt.Errorf("drain interval %s too short", interval)
	}
	if batch < 1 {
		batch = 1
	}
	cl := cronLogger{s: log.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	_, err := c.AddFunc("@every "+interval.String(), func() {
		buf.Drain(ctx, batch)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule drain: %w", err)
	}
	return c, nil
}
