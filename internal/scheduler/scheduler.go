package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/metrics"
	"github.com/hamed0406/statuspage/internal/notify"
	"github.com/hamed0406/statuspage/internal/probe"
)

const DefaultInterval = 90 * time.Second

// Store is the slice of the repository the loop reads from.
type Store interface {
	Ping(ctx context.Context) error
	ListProjects(ctx context.Context) ([]domain.Project, error)
	LatestResult(ctx context.Context, id domain.ProjectID) (*domain.ProbeResult, error)
}

// Submitter accepts results for storage; it never fails from the caller's view.
type Submitter interface {
	Submit(ctx context.Context, r domain.NewProbeResult)
}

type Scheduler struct {
	Logger      *zap.Logger
	Store       Store
	Buffer      Submitter
	Checker     probe.Checker
	Notifier    notify.Notifier
	Metrics     *metrics.Collectors
	Interval    time.Duration
	Concurrency int

	// Now is read when a probe completes; it stamps notification events.
	Now func() time.Time
	// DNS classifies the host of a failed probe. Nil disables the lookup.
	DNS func(ctx context.Context, host string) probe.DNSStatus
}

func New(
	logger *zap.Logger,
	store Store,
	buf Submitter,
	checker probe.Checker,
	notifier notify.Notifier,
	m *metrics.Collectors,
	interval time.Duration,
	concurrency int,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if interval < 0 {
		interval = 0
	}
	return &Scheduler{
		Logger:      logger,
		Store:       store,
		Buffer:      buf,
		Checker:     checker,
		Notifier:    notifier,
		Metrics:     m,
		Interval:    interval,
		Concurrency: concurrency,
		Now:         func() time.Time { return time.Now().UTC() },
		DNS:         probe.CheckDNS,
	}
}

// Run sleeps for the interval, then runs one pass, until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	if s.Interval == 0 {
		s.Logger.Info("scheduler_disabled")
		return
	}
	s.Logger.Info("scheduler_started", zap.Duration("interval", s.Interval))

	t := time.NewTimer(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("scheduler_stopped")
			return
		case <-t.C:
		}
		_ = s.RunOnce(ctx)
		t.Reset(s.Interval)
	}
}

// RunOnce probes every enabled project. It returns an error only when the
// whole iteration was skipped.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if err := s.Store.Ping(ctx); err != nil {
		s.Logger.Warn("scheduler_ping_error", zap.Error(err))
		return fmt.Errorf("ping: %w", err)
	}
	projects, err := s.Store.ListProjects(ctx)
	if err != nil {
		s.Logger.Warn("scheduler_list_error", zap.Error(err))
		return fmt.Errorf("list projects: %w", err)
	}

	sem := make(chan struct{}, s.Concurrency)
	var wg sync.WaitGroup

	for _, p := range projects {
		if !p.Enabled {
			continue
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(p domain.Project) {
			defer func() { <-sem }()
			defer wg.Done()
			s.checkProject(ctx, p)
		}(p)
	}

	wg.Wait()
	return nil
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Scheduler) checkProject(ctx context.Context, p domain.Project) {
	log := s.Logger.With(zap.String("project_id", string(p.ID)), zap.String("project", p.Name))
	defer func() {
		if r := recover(); r != nil {
			log.Error("scheduler_project_panic", zap.Any("panic", r))
		}
	}()

	out := s.Checker.Check(ctx, p.URL)
	at := s.now()
	s.Metrics.ObserveProbe(out.Success(), out.Elapsed)

	if !out.Success() && s.DNS != nil {
		if host := probe.HostOf(p.URL); host != "" {
			d := s.DNS(ctx, host)
			log.Info("scheduler_dns_diagnostic",
				zap.String("host", host),
				zap.String("class", d.Class),
				zap.String("resolver_error", d.ResolverError),
			)
		}
	}

	prev, err := s.Store.LatestResult(ctx, p.ID)
	latestOK := err == nil
	if err != nil {
		log.Warn("scheduler_latest_error", zap.Error(err))
	}

	res := domain.NewProbeResult{
		ProjectID:  p.ID,
		ElapsedMS:  out.ElapsedMS(),
		StatusCode: out.StatusCode,
	}
	s.Buffer.Submit(ctx, res)

	log.Debug("scheduler_probe",
		zap.String("url", p.URL),
		zap.Int("status", out.StatusCode),
		zap.Int64("elapsed_ms", res.ElapsedMS),
		zap.Int("attempts", out.Attempts),
		zap.String("reason", out.Message),
	)

	if !latestOK {
		return
	}
	switch {
	case IsDownTransition(prev, res):
		s.Metrics.DownTransition()
		log.Warn("scheduler_down_transition", zap.Int("status", res.StatusCode), zap.Time("at", at))
		if s.Notifier == nil {
			return
		}
		ev := notify.Event{ProjectID: p.ID, ProjectName: p.Name, Code: res.StatusCode, Time: at}
		if err := s.Notifier.Notify(ctx, ev); err != nil {
			log.Warn("scheduler_notify_error", zap.Error(err))
		}
	case IsRecovery(prev, res):
		log.Info("scheduler_recovered", zap.Int("status", res.StatusCode))
	}
}
