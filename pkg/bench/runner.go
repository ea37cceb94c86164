package bench

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/engine"
	"golang.org/x/sync/errgroup"
)

// RateEngine is the part of the engine a benchmark drives.
type RateEngine interface {
	Incr(ctx context.Context, token, metric string, threshold int) (bool, engine.Snapshot, error)
	Peek(ctx context.Context, token, metric string, threshold int) (bool, engine.Snapshot, error)
	Status(ctx context.Context, token, metric string) (engine.Snapshot, error)
}

type Options struct {
	Operation   string
	Token       string
	Metric      string
	Threshold   int
	Iterations  int
	Concurrency int
}

// Stats summarises a run. Total is wall time; the other durations are per
// call.
type Stats struct {
	Calls  int
	Errors int
	Passed int
	Total  time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	P50    time.Duration
	P99    time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"calls=%d errors=%d passed=%d total=%s min=%s mean=%s p50=%s p99=%s max=%s",
		s.Calls, s.Errors, s.Passed, s.Total, s.Min, s.Mean, s.P50, s.P99, s.Max,
	)
}

type Runner struct {
	engine RateEngine
}

func NewRunner(engine RateEngine) *Runner {
	return &Runner{engine: engine}
}

func (r *Runner) Run(ctx context.Context, opts Options) (Stats, error) {
	if err := opts.validate(); err != nil {
		return Stats{}, err
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var (
		mu        sync.Mutex
		durations = make([]time.Duration, 0, opts.Iterations)
		errs      int
		passed    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	start := time.Now()
	for i := 0; i < opts.Iterations; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			callStart := time.Now()
			ok, err := r.call(gctx, opts)
			elapsed := time.Since(callStart)

			mu.Lock()
			defer mu.Unlock()
			durations = append(durations, elapsed)
			if err != nil {
				errs++
			} else if ok {
				passed++
			}
			return nil
		})
	}
	_ = g.Wait()
	total := time.Since(start)

	stats := summarize(durations)
	stats.Errors = errs
	stats.Passed = passed
	stats.Total = total
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (r *Runner) call(ctx context.Context, opts Options) (bool, error) {
	switch opts.Operation {
	case engine.OperationIncr:
		ok, _, err := r.engine.Incr(ctx, opts.Token, opts.Metric, opts.Threshold)
		return ok, err
	case engine.OperationPeek:
		ok, _, err := r.engine.Peek(ctx, opts.Token, opts.Metric, opts.Threshold)
		return ok, err
	default:
		_, err := r.engine.Status(ctx, opts.Token, opts.Metric)
		return err == nil, err
	}
}

func (o Options) validate() error {
	switch o.Operation {
	case engine.OperationIncr, engine.OperationPeek, engine.OperationStatus:
	default:
		return fmt.Errorf("unknown operation %q, expected incr, peek or status", o.Operation)
	}
	if o.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", o.Iterations)
	}
	if o.Metric == "" {
		return fmt.Errorf("metric is required")
	}
	return nil
}

func summarize(durations []time.Duration) Stats {
	stats := Stats{Calls: len(durations)}
	if len(durations) == 0 {
		return stats
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	stats.Min = durations[0]
	stats.Max = durations[len(durations)-1]
	stats.Mean = sum / time.Duration(len(durations))
	stats.P50 = percentile(durations, 0.50)
	stats.P99 = percentile(durations, 0.99)
	return stats
}

// percentile uses the nearest-rank method on sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	return sorted[rank]
}
