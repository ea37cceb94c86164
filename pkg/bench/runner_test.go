package bench

import (
	"context"
	"testing"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/domain/action"
	"github.com/NeuralTrust/banhammer/pkg/domain/ladder"
	"github.com/NeuralTrust/banhammer/pkg/engine"
	"github.com/NeuralTrust/banhammer/pkg/infra/store"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	noop := action.New("noop", func(context.Context, string, time.Duration, string, time.Duration, int64) error {
		return nil
	})
	l, err := ladder.New(map[string][]ladder.Threshold{
		"login_failed": {
			{Window: time.Hour, Limit: 10, Actions: []action.Action{noop}, ActionDuration: time.Hour},
			{Window: time.Hour, Limit: 100, Actions: []action.Action{noop}, ActionDuration: 24 * time.Hour},
		},
	})
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	return engine.New(l, store.NewMemoryStore(nil), true, engine.WithLogger(logger))
}

func TestRunner_Incr(t *testing.T) {
	r := NewRunner(newEngine(t))

	stats, err := r.Run(context.Background(), Options{
		Operation:   engine.OperationIncr,
		Token:       "1234",
		Metric:      "login_failed",
		Iterations:  50,
		Concurrency: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Calls)
	assert.Zero(t, stats.Errors)
	assert.Equal(t, 10, stats.Passed)
	assert.LessOrEqual(t, stats.Min, stats.P50)
	assert.LessOrEqual(t, stats.P50, stats.P99)
	assert.LessOrEqual(t, stats.P99, stats.Max)
}

func TestRunner_Concurrent(t *testing.T) {
	r := NewRunner(newEngine(t))

	stats, err := r.Run(context.Background(), Options{
		Operation:   engine.OperationIncr,
		Token:       "1234",
		Metric:      "login_failed",
		Iterations:  200,
		Concurrency: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, 200, stats.Calls)
	assert.Zero(t, stats.Errors)
	assert.Positive(t, stats.Total)
}

func TestRunner_PeekAndStatus(t *testing.T) {
	r := NewRunner(newEngine(t))
	ctx := context.Background()

	stats, err := r.Run(ctx, Options{Operation: engine.OperationPeek, Token: "1234", Metric: "login_failed", Threshold: 1, Iterations: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Passed)

	stats, err = r.Run(ctx, Options{Operation: engine.OperationStatus, Token: "1234", Metric: "login_failed", Iterations: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Calls)
	assert.Equal(t, 5, stats.Passed)
}

func TestRunner_CountsErrors(t *testing.T) {
	r := NewRunner(newEngine(t))

	stats, err := r.Run(context.Background(), Options{Operation: engine.OperationIncr, Token: "1234", Metric: "unknown", Iterations: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Calls)
	assert.Equal(t, 3, stats.Errors)
	assert.Zero(t, stats.Passed)
}

func TestRunner_InvalidOptions(t *testing.T) {
	r := NewRunner(newEngine(t))
	ctx := context.Background()

	_, err := r.Run(ctx, Options{Operation: "reset", Metric: "login_failed", Iterations: 1})
	assert.ErrorContains(t, err, "unknown operation")
	_, err = r.Run(ctx, Options{Operation: engine.OperationIncr, Metric: "login_failed"})
	assert.ErrorContains(t, err, "iterations")
	_, err = r.Run(ctx, Options{Operation: engine.OperationIncr, Iterations: 1})
	assert.ErrorContains(t, err, "metric")
}

func TestRunner_CanceledContext(t *testing.T) {
	r := NewRunner(newEngine(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := r.Run(ctx, Options{Operation: engine.OperationIncr, Token: "1234", Metric: "login_failed", Iterations: 100})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Calls)
}

func TestPercentile(t *testing.T) {
	sorted := make([]time.Duration, 100)
	for i := range sorted {
		sorted[i] = time.Duration(i+1) * time.Millisecond
	}
	assert.Equal(t, 50*time.Millisecond, percentile(sorted, 0.50))
	assert.Equal(t, 99*time.Millisecond, percentile(sorted, 0.99))
	assert.Equal(t, time.Millisecond, percentile(sorted[:1], 0.99))
}
