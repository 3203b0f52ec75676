package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the service collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	loansRequested prometheus.Counter
	fundings       *prometheus.CounterVec
	fundedVolume   prometheus.Counter
	fullyFunded    prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lending",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lending",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}, []string{"method", "path"}),
		loansRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lending",
			Subsystem: "ledger",
			Name:      "loans_requested_total",
			Help:      "Loan requests created.",
		}),
		fundings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lending",
			Subsystem: "ledger",
			Name:      "fundings_total",
			Help:      "Funding attempts by outcome.",
		}, []string{"outcome"}),
		fundedVolume: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lending",
			Subsystem: "ledger",
			Name:      "funded_amount_total",
			Help:      "Sum of accepted contributions.",
		}),
		fullyFunded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lending",
			Subsystem: "ledger",
			Name:      "loans_fully_funded_total",
			Help:      "Loans that reached their requested amount.",
		}),
	}
	m.Registry.MustRegister(m.httpRequests, m.httpDuration, m.loansRequested, m.fundings, m.fundedVolume, m.fullyFunded)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) LoanRequested() {
	if m == nil {
		return
	}
	m.loansRequested.Inc()
}

// Funding records one funding attempt; amount counts only when accepted.
func (m *Metrics) Funding(outcome string, amount float64, completed bool) {
	if m == nil {
		return
	}
	m.fundings.WithLabelValues(outcome).Inc()
	if outcome == OutcomeAccepted {
		m.fundedVolume.Add(amount)
	}
	if completed {
		m.fullyFunded.Inc()
	}
}

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)
