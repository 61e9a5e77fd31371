package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type metricHooks struct {
	ops       metric.Int64Counter
	latency   metric.Float64Histogram
	conflicts metric.Int64Counter
	retries   metric.Int64Counter
}

// NewMetricHooks creates aggregate hooks that record OpenTelemetry instruments on meter.
func NewMetricHooks(meter metric.Meter) (Hooks, error) {
	if meter == nil {
		return noopHooks{}, nil
	}
	ops, err := meter.Int64Counter("aggregate.operations",
		metric.WithDescription("Aggregate write operations by name and status."))
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("aggregate.operation.duration",
		metric.WithDescription("Aggregate write latency including the transaction."),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	conflicts, err := meter.Int64Counter("aggregate.conflicts",
		metric.WithDescription("Writes rejected by a uniqueness or concurrency conflict."))
	if err != nil {
		return nil, err
	}
	retries, err := meter.Int64Counter("aggregate.retryable",
		metric.WithDescription("Writes that failed with a transient, retryable error."))
	if err != nil {
		return nil, err
	}
	return &metricHooks{ops: ops, latency: latency, conflicts: conflicts, retries: retries}, nil
}

func (h *metricHooks) ObserveOperation(name, status string, dur time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("op", strings.TrimSpace(name)),
		attribute.String("status", strings.TrimSpace(status)),
	)
	h.ops.Add(context.Background(), 1, attrs)
	h.latency.Record(context.Background(), float64(dur.Microseconds())/1000, attrs)
}

func (h *metricHooks) IncConflict(name string) {
	h.conflicts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", strings.TrimSpace(name))))
}

func (h *metricHooks) IncRetry(name string) {
	h.retries.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", strings.TrimSpace(name))))
}

// FanoutHooks forwards every signal to each non-nil hook in order.
func FanoutHooks(hooks ...Hooks) Hooks {
	out := make(fanoutHooks, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return noopHooks{}
	}
	return out
}

type fanoutHooks []Hooks

func (f fanoutHooks) ObserveOperation(name, status string, dur time.Duration) {
	for _, h := range f {
		h.ObserveOperation(name, status, dur)
	}
}

func (f fanoutHooks) IncConflict(name string) {
	for _, h := range f {
		h.IncConflict(name)
	}
}

func (f fanoutHooks) IncRetry(name string) {
	for _, h := range f {
		h.IncRetry(name)
	}
}
