package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/availability"
	"github.com/hamed0406/statuspage/internal/domain"
	apimw "github.com/hamed0406/statuspage/internal/httpapi/middleware"
	"github.com/hamed0406/statuspage/internal/metrics"
	"github.com/hamed0406/statuspage/internal/repo"
)

// Store is everything the HTTP layer reads and writes.
type Store interface {
	repo.ProjectStore
	repo.ResultStore
	repo.SubscriptionStore
	Ping(ctx context.Context) error
}

// Pending exposes the write buffer for the admin view.
type Pending interface {
	Len() int
	Snapshot() []domain.NewProbeResult
}

// Confirmer sends subscription confirmation links.
type Confirmer interface {
	SendConfirmation(ctx context.Context, to, link string) error
}

type Server struct {
	Logger      *zap.Logger
	Store       Store
	Pending     Pending
	Aggregator  availability.Aggregator
	HistorySize int

	// Optional.
	BaseURL  string
	Mailer   Confirmer
	Metrics  *metrics.Collectors
	Gatherer prometheus.Gatherer
	Now      func() time.Time
}

func NewServer(l *zap.Logger, store Store, pending Pending, agg availability.Aggregator, historySize int) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	if historySize < 1 {
		historySize = 30
	}
	return &Server{
		Logger:      l,
		Store:       store,
		Pending:     pending,
		Aggregator:  agg,
		HistorySize: historySize,
		BaseURL:     "http://localhost:8102",
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, s.requestLogger, chimw.Recoverer)

	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
			MaxAge:         300,
		}))
	}

	publicLimit := apimw.RateLimit(pubRPM, pubBurst)
	adminLimit := apimw.RateLimit(admRPM, admBurst)

	r.Get("/healthz", s.handleHealth)
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	// HTML pages are open so they can be embedded and shared.
	r.Group(func(r chi.Router) {
		r.Use(publicLimit)
		r.Get("/", s.handleStatusPage)
		r.Get("/embed/{id}", s.handleEmbed)
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(publicLimit, apimw.RequireAny(keys))
			r.Get("/status", s.handleStatus)
			r.Get("/projects/{id}/status", s.handleProjectStatus)
			r.Get("/history", s.handleHistory)
		})

		r.Group(func(r chi.Router) {
			r.Use(publicLimit)
			r.Post("/subscribe/email", s.handleSubscribeEmail)
			r.Get("/subscribe/confirm", s.handleConfirmEmail)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminLimit, apimw.RequireAdmin(keys))
			r.Get("/projects", s.handleListProjects)
			r.Post("/projects", s.handleCreateProject)
			r.Put("/projects/{id}", s.handleUpdateProject)
			r.Get("/subscriptions", s.handleListSubscriptions)
			r.Post("/subscriptions/sms", s.handleAddSMS)
			r.Post("/subscriptions/webhook", s.handleAddWebhook)
			r.Get("/pending", s.handlePending)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		s.Logger.Warn("health_store_unreachable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.Metrics.HTTPRequest(r.Method, route, status, elapsed)
		s.Logger.Debug("http_request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}
