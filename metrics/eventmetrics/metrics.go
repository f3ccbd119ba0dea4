// Package eventmetrics exports [eventbus.Dispatcher] activity as Prometheus metrics.
package eventmetrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/saylorsolutions/eventx/patterns/eventbus"
)

const (
	KindError        = "error"
	KindPanic        = "panic"
	KindRegistration = "registration"
)

// Metrics holds the collectors updated by a dispatcher configured with [Metrics.Options].
type Metrics struct {
	dispatches *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	downstream func(err error)
}

// New creates and registers the dispatcher collectors with reg under the given namespace.
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		return nil, errors.New("nil registerer")
	}
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Total number of executed events that had at least one handler",
			},
			[]string{"event"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_failures_total",
				Help:      "Total number of handler and registration failures",
			},
			[]string{"event", "kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Time taken to run every handler of an event",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"event"},
		),
	}
	for _, c := range []prometheus.Collector{m.dispatches, m.failures, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register dispatcher metrics: %w", err)
		}
	}
	return m, nil
}

// Chain passes every failure on to handler after it's counted.
func (m *Metrics) Chain(handler func(err error)) *Metrics {
	m.downstream = handler
	return m
}

// Options returns the [eventbus.Option] values that connect a dispatcher to these metrics.
// They replace any dispatch hook or error handler set before them, so use [Metrics.Chain] for custom error handling.
func (m *Metrics) Options() []eventbus.Option {
	return []eventbus.Option{
		eventbus.WithDispatchHook(m.observe),
		eventbus.WithErrorHandler(m.recordFailure),
	}
}

func (m *Metrics) observe(event string, _, _ int, elapsed time.Duration) {
	m.dispatches.WithLabelValues(event).Inc()
	m.duration.WithLabelValues(event).Observe(elapsed.Seconds())
}

func (m *Metrics) recordFailure(err error) {
	var (
		invErr *eventbus.InvocationError
		regErr *eventbus.RegistrationError
	)
	switch {
	case errors.As(err, &invErr):
		kind := KindError
		if invErr.Panicked() {
			kind = KindPanic
		}
		m.failures.WithLabelValues(invErr.Event, kind).Inc()
	case errors.As(err, &regErr):
		m.failures.WithLabelValues(regErr.Event, KindRegistration).Inc()
	}
	if m.downstream != nil {
		m.downstream(err)
	}
}
