package eventmetrics

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/saylorsolutions/eventx/patterns/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDispatcher(t *testing.T, reg prometheus.Registerer, chained func(error)) (*eventbus.Dispatcher, *Metrics) {
	t.Helper()
	m, err := New(reg, "eventx")
	require.NoError(t, err)
	m.Chain(chained)
	opts := append([]eventbus.Option{eventbus.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, m.Options()...)
	return eventbus.New(opts...), m
}

func TestMetrics_Dispatch(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	d, m := testDispatcher(t, reg, nil)
	d.RegisterFunc("user.login", func(*eventbus.Arguments) error {
		return nil
	})

	d.Execute("user.login", nil)
	d.Execute("user.login", nil)
	d.Execute("no.handlers", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.dispatches.WithLabelValues("user.login")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.dispatches), "Events without handlers should not be counted")
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))

	expected := `
# HELP eventx_dispatch_total Total number of executed events that had at least one handler
# TYPE eventx_dispatch_total counter
eventx_dispatch_total{event="user.login"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "eventx_dispatch_total"))
}

func TestMetrics_Failures(t *testing.T) {
	var chained []error
	d, m := testDispatcher(t, prometheus.NewRegistry(), func(err error) {
		chained = append(chained, err)
	})
	d.RegisterFunc("job.run", func(*eventbus.Arguments) error {
		return errors.New("failed")
	})
	d.RegisterFunc("job.run", func(*eventbus.Arguments) error {
		panic("boom")
	})
	d.RegisterFunc("", func(*eventbus.Arguments) error {
		return nil
	})

	d.Execute("job.run", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("job.run", KindError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("job.run", KindPanic)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("", KindRegistration)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("job.run")), "Failed handlers still count as a dispatch")
	assert.Len(t, chained, 3, "Every failure should be passed on")
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, "eventx")
	assert.Error(t, err)

	reg := prometheus.NewRegistry()
	_, err = New(reg, "eventx")
	require.NoError(t, err)
	_, err = New(reg, "eventx")
	assert.Error(t, err, "Registering the same metrics twice should fail")
}
