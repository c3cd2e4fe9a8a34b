package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
Metrics Types:

- VotesCast: a CounterVec labelled by outcome ("accepted" or the
  rejection reason), so quota pressure and duplicate attempts show up
  next to successful votes.

- RPCDuration: a HistogramVec over every Connect procedure, labelled
  by procedure and response code.

Registration:
Metrics are registered on the registerer passed to NewServerMetrics.
Tests pass a fresh prometheus.NewRegistry() so they never collide with
the process-wide default registry.
*/

// Vote outcomes that are not rejection reasons.
const (
	OutcomeAccepted = "accepted"
	OutcomeError    = "error"
)

type ServerMetrics struct {
	VotesCast   *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer, namespace string) *ServerMetrics {
	factory := promauto.With(reg)
	return &ServerMetrics{
		VotesCast: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_cast_total",
				Help:      "Total number of cast vote attempts by outcome",
			},
			[]string{"outcome"},
		),
		RPCDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_duration_seconds",
				Help:      "Histogram of Connect RPC handling times",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
			},
			[]string{"procedure", "code"},
		),
	}
}

// ObserveVote counts one CastVote attempt. A nil receiver is a no-op.
func (m *ServerMetrics) ObserveVote(outcome string) {
	if m == nil {
		return
	}
	m.VotesCast.WithLabelValues(outcome).Inc()
}

// ObserveRPC records the duration of one RPC. A nil receiver is a no-op.
func (m *ServerMetrics) ObserveRPC(procedure, code string, seconds float64) {
	if m == nil {
		return
	}
	m.RPCDuration.WithLabelValues(procedure, code).Observe(seconds)
}
