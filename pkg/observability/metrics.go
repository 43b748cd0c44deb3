package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/inicheck/pkg/checkers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

// Metrics records checker outcomes as Prometheus collectors.
type Metrics struct {
	checks   *prometheus.CounterVec
	issues   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inicheck_checks_total",
				Help: "Total number of item checks by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		issues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inicheck_issues_total",
				Help: "Total number of failed scalars by issue kind",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inicheck_check_duration_seconds",
				Help:    "Duration of item checks",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"type"},
		),
	}

	for _, c := range []prometheus.Collector{m.checks, m.issues, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one check event.
func (m *Metrics) Observe(e *checkers.CheckEvent) {
	res := e.Result
	typ := res.Type.Name()

	outcome := OutcomeValid
	if !res.Valid() {
		outcome = OutcomeInvalid
	}
	m.checks.WithLabelValues(typ, outcome).Inc()
	m.duration.WithLabelValues(typ).Observe(e.Duration.Seconds())

	for _, iss := range res.IssueList() {
		m.issues.WithLabelValues(string(iss.Kind)).Inc()
	}
}

// Hooks returns checker hooks feeding the collectors.
func (m *Metrics) Hooks() checkers.Hooks {
	return checkers.Hooks{
		OnCheck: func(_ context.Context, e *checkers.CheckEvent) {
			m.Observe(e)
		},
	}
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
