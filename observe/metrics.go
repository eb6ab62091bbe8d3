package observe

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tinywasm/schema"
)

// Metrics counts schema executions by action and outcome.
type Metrics struct {
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the schema collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schema",
			Name:      "executions_total",
			Help:      "Schema changes submitted to the executor, by action and outcome.",
		}, []string{"action", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "schema",
			Name:      "execution_duration_seconds",
			Help:      "Time spent applying one schema change.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
	}
	for _, c := range []prometheus.Collector{m.executions, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Outcome labels an execution error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, schema.ErrExists):
		return "exists"
	case errors.Is(err, schema.ErrNotFound):
		return "not_found"
	case errors.Is(err, schema.ErrUnsupported):
		return "unsupported"
	case errors.Is(err, schema.ErrValidation), errors.Is(err, schema.ErrEmptyName):
		return "invalid"
	default:
		return "error"
	}
}

// Wrap returns an executor that records every Execute of next.
func (m *Metrics) Wrap(next schema.Executor) *Executor {
	return Wrap(next, func(ctx context.Context, next schema.Executor, s *schema.Schema) error {
		start := time.Now()
		err := next.Execute(ctx, s)
		action := s.Action.String()
		m.duration.WithLabelValues(action).Observe(time.Since(start).Seconds())
		m.executions.WithLabelValues(action, Outcome(err)).Inc()
		return err
	})
}
