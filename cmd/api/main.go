package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/availability"
	"github.com/hamed0406/statuspage/internal/config"
	"github.com/hamed0406/statuspage/internal/httpapi"
	apimw "github.com/hamed0406/statuspage/internal/httpapi/middleware"
	"github.com/hamed0406/statuspage/internal/logging"
	"github.com/hamed0406/statuspage/internal/metrics"
	"github.com/hamed0406/statuspage/internal/notify"
	"github.com/hamed0406/statuspage/internal/pending"
	"github.com/hamed0406/statuspage/internal/probe"
	"github.com/hamed0406/statuspage/internal/repo"
	"github.com/hamed0406/statuspage/internal/repo/memory"
	pg "github.com/hamed0406/statuspage/internal/repo/postgres"
	"github.com/hamed0406/statuspage/internal/repo/sqlite"
	"github.com/hamed0406/statuspage/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store_open_error", zap.Error(err))
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	buf := pending.New(store, logger, m)

	// Notification channels
	var channels []notify.Channel
	mailer := notify.NewMailer(cfg.SMTP2GOAPIKey, cfg.AlertEmail, cfg.SMTP2GOEndpoint)
	if mailer != nil {
		channels = append(channels, &notify.Email{Mailer: mailer, Source: store})
	} else {
		logger.Warn("notify_email_disabled", zap.String("reason", "SMTP2GO_API_KEY or ALERT_EMAIL empty"))
	}
	if cfg.SMSNotifications {
		if sms := notify.NewSMS(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom, store); sms != nil {
			channels = append(channels, sms)
		} else {
			logger.Warn("notify_sms_disabled", zap.String("reason", "twilio credentials incomplete"))
		}
	}
	channels = append(channels, notify.NewWebhook(store))
	if slack := notify.NewSlack(cfg.SlackWebhookURL); slack != nil {
		channels = append(channels, slack)
	}
	fanout := notify.NewFanout(logger, m, channels...)
	logger.Info("notify_channels", zap.Strings("channels", fanout.Channels()))

	// Scheduler + drain job
	var drainStop func()
	if cfg.Update && cfg.CheckInterval > 0 {
		checker := probe.NewRetryChecker(probe.NewHTTPChecker(cfg.HTTPTimeout), cfg.RetryAttempts, cfg.RetryBackoff)
		sched := scheduler.New(logger, store, buf, checker, fanout, m, cfg.CheckInterval, cfg.MaxConcurrentChecks)
		go sched.Run(ctx)

		drain, err := scheduler.NewDrainJob(ctx, buf, cfg.CheckInterval, cfg.PendingDrainBatch, logger)
		if err != nil {
			logger.Warn("drain_job_disabled", zap.Error(err))
		} else {
			drain.Start()
			drainStop = func() { <-drain.Stop().Done() }
		}
	} else {
		logger.Info("scheduler_not_started", zap.Bool("update", cfg.Update), zap.Duration("interval", cfg.CheckInterval))
	}

	api := httpapi.NewServer(logger, store, buf, availability.NewAggregator(cfg.MinDowntimeMinutes), cfg.HistorySize)
	api.BaseURL = cfg.PublicBaseURL
	api.Metrics = m
	api.Gatherer = reg
	if mailer != nil {
		api.Mailer = mailer
	}

	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_listen_error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown_started")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api_shutdown_error", zap.Error(err))
	}
	if drainStop != nil {
		drainStop()
	}
	if n := buf.Len(); n > 0 {
		logger.Warn("shutdown_pending_lost", zap.Int("depth", n))
	}
	logger.Info("shutdown_complete")
}

// openStore picks Postgres, then SQLite, then memory.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.Store, error) {
	switch {
	case cfg.DatabaseURL != "":
		s, err := pg.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		logger.Info("store_postgres")
		return s, nil
	case cfg.SQLitePath != "":
		s, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("store_sqlite", zap.String("path", cfg.SQLitePath))
		return s, nil
	default:
		logger.Warn("store_memory", zap.String("reason", "DATABASE_URL and SQLITE_PATH empty; data is lost on restart"))
		return memory.New(), nil
	}
}
