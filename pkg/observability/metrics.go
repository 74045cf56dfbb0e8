// Package observability turns engine lifecycle hooks into Prometheus
// metrics. The collectors are ordinary hooks; combine them with your own
// via Combine and expose them with promhttp.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/parley/pkg/domain"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	turns         *prometheus.CounterVec
	turnDuration  prometheus.Histogram
	dialogBegins  *prometheus.CounterVec
	dialogEnds    *prometheus.CounterVec
	interruptions *prometheus.CounterVec
	retryExceeded *prometheus.CounterVec
}

// New creates and registers the collectors. A nil registerer falls back to
// the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_turns_total",
			Help: "Total number of processed turns",
		}, []string{"intent", "outcome"}),
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "parley_turn_duration_seconds",
			Help: "Duration of turn processing",
		}),
		dialogBegins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_dialog_begins_total",
			Help: "Total number of dialog frames begun",
		}, []string{"dialog"}),
		dialogEnds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_dialog_ends_total",
			Help: "Total number of dialog frames ended",
		}, []string{"dialog"}),
		interruptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_interruptions_total",
			Help: "Total number of routed interruptions",
		}, []string{"kind"}),
		retryExceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_retry_exceeded_total",
			Help: "Total number of prompts hitting their retry ceiling",
		}, []string{"prompt_id"}),
	}
	reg.MustRegister(
		m.turns,
		m.turnDuration,
		m.dialogBegins,
		m.dialogEnds,
		m.interruptions,
		m.retryExceeded,
	)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			intent := e.Intent
			if intent == "" {
				intent = "none"
			}
			m.turns.WithLabelValues(intent, outcome).Inc()
			m.turnDuration.Observe(e.Duration.Seconds())
		},
		OnDialogBegin: func(_ context.Context, e *domain.DialogEvent) {
			m.dialogBegins.WithLabelValues(e.Dialog).Inc()
		},
		OnDialogEnd: func(_ context.Context, e *domain.DialogEvent) {
			m.dialogEnds.WithLabelValues(e.Dialog).Inc()
		},
		OnInterruption: func(_ context.Context, e *domain.InterruptionEvent) {
			m.interruptions.WithLabelValues(string(e.Kind)).Inc()
		},
		OnRetryExceeded: func(_ context.Context, e *domain.PromptEvent) {
			m.retryExceeded.WithLabelValues(e.PromptID).Inc()
		},
	}
}

// Combine fans one lifecycle event out to every given hook set, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	out.OnTurnStart = func(ctx context.Context, e *domain.TurnEvent) {
		for _, h := range sets {
			if h.OnTurnStart != nil {
				h.OnTurnStart(ctx, e)
			}
		}
	}
	out.OnTurnEnd = func(ctx context.Context, e *domain.TurnEvent) {
		for _, h := range sets {
			if h.OnTurnEnd != nil {
				h.OnTurnEnd(ctx, e)
			}
		}
	}
	out.OnDialogBegin = func(ctx context.Context, e *domain.DialogEvent) {
		for _, h := range sets {
			if h.OnDialogBegin != nil {
				h.OnDialogBegin(ctx, e)
			}
		}
	}
	out.OnDialogEnd = func(ctx context.Context, e *domain.DialogEvent) {
		for _, h := range sets {
			if h.OnDialogEnd != nil {
				h.OnDialogEnd(ctx, e)
			}
		}
	}
	out.OnInterruption = func(ctx context.Context, e *domain.InterruptionEvent) {
		for _, h := range sets {
			if h.OnInterruption != nil {
				h.OnInterruption(ctx, e)
			}
		}
	}
	out.OnRetryExceeded = func(ctx context.Context, e *domain.PromptEvent) {
		for _, h := range sets {
			if h.OnRetryExceeded != nil {
				h.OnRetryExceeded(ctx, e)
			}
		}
	}
	return out
}
