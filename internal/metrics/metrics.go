package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "statuspage"

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

// Collectors holds every metric the service exports. A nil *Collectors is
// valid and records nothing.
type Collectors struct {
	Probes        *prometheus.CounterVec
	ProbeDuration prometheus.Histogram
	Transitions   prometheus.Counter
	PendingDepth  prometheus.Gauge
	PendingWrites *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
	HTTPLatency   *prometheus.HistogramVec
}

// New builds the collectors and registers them on reg (nil skips
// registration). Collectors already present on reg are reused.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "probes_total",
			Help:      "Probes run by the scheduler, by outcome.",
		}, []string{"outcome"}),
		ProbeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "probe_duration_seconds",
			Help:      "Elapsed time of the reported probe attempt.",
			Buckets:   histogramBuckets,
		}),
		Transitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "down_transitions_total",
			Help:      "Success to failure transitions detected.",
		}),
		PendingDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pending",
			Name:      "depth",
			Help:      "Probe results waiting to be written to the store.",
		}),
		PendingWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pending",
			Name:      "writes_total",
			Help:      "Store writes of probe results, by result.",
		}, []string{"result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Notification deliveries, by channel and result.",
		}, []string{"channel", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers.",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		return c
	}
	c.Probes = register(reg, c.Probes)
	c.ProbeDuration = register(reg, c.ProbeDuration)
	c.Transitions = register(reg, c.Transitions)
	c.PendingDepth = register(reg, c.PendingDepth)
	c.PendingWrites = register(reg, c.PendingWrites)
	c.Notifications = register(reg, c.Notifications)
	c.HTTPRequests = register(reg, c.HTTPRequests)
	c.HTTPLatency = register(reg, c.HTTPLatency)
	return c
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

func (c *Collectors) ObserveProbe(success bool, elapsed time.Duration) {
	if c == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	c.Probes.WithLabelValues(outcome).Inc()
	c.ProbeDuration.Observe(elapsed.Seconds())
}

func (c *Collectors) DownTransition() {
	if c == nil {
		return
	}
	c.Transitions.Inc()
}

func (c *Collectors) SetPending(n int) {
	if c == nil {
		return
	}
	c.PendingDepth.Set(float64(n))
}

// PendingWrite counts a store write attempt: direct, buffered, drained or drain_failed.
func (c *Collectors) PendingWrite(result string) {
	if c == nil {
		return
	}
	c.PendingWrites.WithLabelValues(result).Inc()
}

func (c *Collectors) Notification(channel string, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Notifications.WithLabelValues(channel, result).Inc()
}

func (c *Collectors) HTTPRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	c.HTTPRequests.With(labels).Inc()
	c.HTTPLatency.With(labels).Observe(d.Seconds())
}
