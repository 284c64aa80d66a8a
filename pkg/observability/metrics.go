package observability

import (
	"context"
	"fmt"

	"github.com/aretw0/routechain/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeOK         = "ok"
	OutcomeFailed     = "failed"
	OutcomeSkipped    = "skipped"
	OutcomeSuperseded = "superseded"
)

// Metrics exports sequencer activity as Prometheus collectors.
type Metrics struct {
	Sequences    *prometheus.CounterVec
	Hooks        *prometheus.CounterVec
	Items        *prometheus.CounterVec
	HookDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors under namespace and registers them with reg.
// A nil reg skips registration.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "routechain"
	}
	m := &Metrics{
		Sequences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sequences_total",
				Help:      "Total number of finished hook sequences",
			},
			[]string{"status"},
		),
		Hooks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "hooks_total",
				Help:      "Total number of hook invocations",
			},
			[]string{"hook", "outcome"},
		),
		Items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chain_items_total",
				Help:      "Total number of settled chain items",
			},
			[]string{"outcome"},
		),
		HookDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "hook_duration_seconds",
				Help:      "Duration of hook invocations including their chains",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"hook"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Sequences, m.Hooks, m.Items, m.HookDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// LifecycleHooks returns the hooks that feed the collectors.
func (m *Metrics) LifecycleHooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSequenceEnd: func(_ context.Context, e *domain.SequenceEvent) {
			m.Sequences.WithLabelValues(string(e.Status)).Inc()
		},
		OnHookEnd: func(_ context.Context, e *domain.HookEvent) {
			outcome := OutcomeOK
			switch {
			case e.Superseded:
				outcome = OutcomeSuperseded
			case e.Err != nil:
				outcome = OutcomeFailed
			}
			m.Hooks.WithLabelValues(string(e.Hook), outcome).Inc()
			m.HookDuration.WithLabelValues(string(e.Hook)).Observe(e.Duration.Seconds())
		},
		OnItemEnd: func(_ context.Context, e *domain.ItemEvent) {
			outcome := OutcomeOK
			switch {
			case e.Err != nil:
				outcome = OutcomeFailed
			case e.Skipped:
				outcome = OutcomeSkipped
			}
			m.Items.WithLabelValues(outcome).Inc()
		},
	}
}
