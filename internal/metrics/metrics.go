// Package metrics holds the Prometheus collectors for HTTP traffic and
// subscription activity.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/portfolio/internal/middleware"
)

const namespace = "portfolio"

// Metrics owns a registry and the collectors registered on it. All
// recording methods are safe on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	requestErrors   *prometheus.CounterVec

	accountsRegistered     prometheus.Counter
	subscriptionsCreated   *prometheus.CounterVec
	subscriptionsConfirmed *prometheus.CounterVec
	paymentIntents         *prometheus.CounterVec
	contactMessages        *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "route", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		requestErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_errors_total",
				Help:      "Total number of HTTP errors returned to clients.",
			},
			[]string{"method", "route", "status_class"},
		),
		accountsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_registered_total",
			Help:      "Accounts created through registration.",
		}),
		subscriptionsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscriptions_created_total",
				Help:      "Pending subscriptions created, by plan.",
			},
			[]string{"plan"},
		),
		subscriptionsConfirmed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscriptions_confirmed_total",
				Help:      "Subscriptions moved to active, by plan.",
			},
			[]string{"plan"},
		),
		paymentIntents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_intents_total",
				Help:      "Payment intent requests, by plan and result.",
			},
			[]string{"plan", "result"},
		),
		contactMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "contact_messages_total",
				Help:      "Contact form submissions, by result.",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.requestTotal,
		m.requestErrors,
		m.accountsRegistered,
		m.subscriptionsCreated,
		m.subscriptionsConfirmed,
		m.paymentIntents,
		m.contactMessages,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records count, duration and errors of every request. The
// route label is the matched ServeMux pattern when there is one.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := middleware.NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		route := routeLabel(r)
		m.RecordRequest(r.Method, route, rec.Status, time.Since(start))
	})
}

func (m *Metrics) RecordRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, route, code).Observe(elapsed.Seconds())
	m.requestTotal.WithLabelValues(method, route, code).Inc()
	if status >= 400 {
		m.requestErrors.WithLabelValues(method, route, classifyStatus(status)).Inc()
	}
}

func (m *Metrics) AccountRegistered() {
	if m == nil {
		return
	}
	m.accountsRegistered.Inc()
}

func (m *Metrics) SubscriptionCreated(plan string) {
	if m == nil {
		return
	}
	m.subscriptionsCreated.WithLabelValues(plan).Inc()
}

func (m *Metrics) SubscriptionConfirmed(plan string) {
	if m == nil {
		return
	}
	m.subscriptionsConfirmed.WithLabelValues(plan).Inc()
}

func (m *Metrics) PaymentIntent(plan string, err error) {
	if m == nil {
		return
	}
	m.paymentIntents.WithLabelValues(plan, result(err)).Inc()
}

func (m *Metrics) ContactMessage(err error) {
	if m == nil {
		return
	}
	m.contactMessages.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func classifyStatus(status int) string {
	switch {
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	default:
		return "none"
	}
}

func routeLabel(r *http.Request) string {
	if r.Pattern != "" {
		// "GET /content/{id}" -> "/content/{id}"
		if _, path, ok := strings.Cut(r.Pattern, " "); ok {
			return path
		}
		return r.Pattern
	}
	return normalizeRoute(r.URL.Path)
}

// normalizeRoute collapses numeric segments so unmatched paths do not
// explode label cardinality.
func normalizeRoute(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	norm := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if len(norm) == 5 {
			break
		}
		if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
			seg = ":id"
		} else if len(seg) > 32 {
			seg = ":token"
		}
		norm = append(norm, seg)
	}
	return "/" + strings.Join(norm, "/")
}
