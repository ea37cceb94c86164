package engine

import (
	"context"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/domain/counter"
	"github.com/NeuralTrust/banhammer/pkg/domain/ladder"
	"github.com/sirupsen/logrus"
)

const (
	OperationIncr   = "incr"
	OperationPeek   = "peek"
	OperationStatus = "status"
)

// Snapshot maps a threshold index to the number of events counted in its
// window during a single call.
type Snapshot map[int]int64

type Engine struct {
	ladder       *ladder.Ladder
	store        counter.Store
	returnRates  bool
	logger       *logrus.Logger
	clock        func() time.Time
	storeTimeout time.Duration
	recorder     Recorder
	dispatcher   *Dispatcher
}

// New builds an engine over an immutable ladder. A nil store is accepted and
// makes every count zero.
func New(l *ladder.Ladder, store counter.Store, returnRates bool, opts ...Option) *Engine {
	e := &Engine{
		ladder:       l,
		store:        store,
		returnRates:  returnRates,
		logger:       logrus.New(),
		clock:        time.Now,
		storeTimeout: DefaultStoreTimeout,
		recorder:     NoopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.dispatcher = NewDispatcher(e.logger, e.recorder)
	return e
}

func (e *Engine) Ladder() *ladder.Ladder {
	return e.ladder
}

// Incr records one event for token on every threshold of metric, then checks
// the requested threshold. Actions of a breached threshold run before Incr
// returns.
func (e *Engine) Incr(ctx context.Context, token, metric string, threshold int) (bool, Snapshot, error) {
	rungs, err := e.rungs(metric, threshold)
	if err != nil {
		return false, nil, err
	}
	now := e.clock()
	e.record(ctx, token, metric, rungs, now)
	return e.check(ctx, OperationIncr, token, metric, threshold, rungs, now)
}

// Peek checks the requested threshold without recording an event. Breaches
// still dispatch actions.
func (e *Engine) Peek(ctx context.Context, token, metric string, threshold int) (bool, Snapshot, error) {
	rungs, err := e.rungs(metric, threshold)
	if err != nil {
		return false, nil, err
	}
	return e.check(ctx, OperationPeek, token, metric, threshold, rungs, e.clock())
}

// Now is an alias of Peek.
func (e *Engine) Now(ctx context.Context, token, metric string, threshold int) (bool, Snapshot, error) {
	return e.Peek(ctx, token, metric, threshold)
}

// Status counts every threshold of metric. It never records and never
// dispatches, and always returns the snapshot.
func (e *Engine) Status(ctx context.Context, token, metric string) (Snapshot, error) {
	rungs, err := e.ladder.Thresholds(metric)
	if err != nil {
		return nil, err
	}
	return e.snapshot(ctx, token, metric, rungs, e.clock()), nil
}

func (e *Engine) rungs(metric string, threshold int) ([]ladder.Threshold, error) {
	if _, err := e.ladder.Threshold(metric, threshold); err != nil {
		return nil, err
	}
	return e.ladder.Thresholds(metric)
}

func (e *Engine) check(
	ctx context.Context,
	operation string,
	token string,
	metric string,
	threshold int,
	rungs []ladder.Threshold,
	now time.Time,
) (bool, Snapshot, error) {
	snapshot := e.snapshot(ctx, token, metric, rungs, now)
	rung := rungs[threshold]
	passed := snapshot[threshold] <= rung.Limit
	e.recorder.ObserveCheck(metric, operation, passed)

	if !passed {
		e.recorder.ObserveBreach(metric, threshold)
		e.logger.WithFields(logrus.Fields{
			"token":     token,
			"metric":    metric,
			"threshold": threshold,
			"count":     snapshot[threshold],
			"limit":     rung.Limit,
		}).Debug("threshold breached")
		if err := e.dispatcher.Dispatch(ctx, token, metric, rung); err != nil {
			e.logger.WithError(err).WithFields(logrus.Fields{
				"metric":    metric,
				"threshold": threshold,
			}).Warn("breach actions failed")
		}
	}

	if !e.returnRates {
		return passed, nil, nil
	}
	return passed, snapshot, nil
}

func (e *Engine) snapshot(ctx context.Context, token, metric string, rungs []ladder.Threshold, now time.Time) Snapshot {
	snapshot := make(Snapshot, len(rungs))
	for i, rung := range rungs {
		snapshot[i] = e.count(ctx, counter.Key(token, metric, i), now.Add(-rung.Window), now)
	}
	return snapshot
}

func (e *Engine) count(ctx context.Context, key string, from, to time.Time) int64 {
	if e.store == nil {
		return 0
	}
	var n int64
	err := e.call(ctx, "count", func(ctx context.Context) error {
		var err error
		n, err = e.store.CountInRange(ctx, key, from, to)
		return err
	})
	if err != nil {
		e.storeFailure("count", key, err)
		return 0
	}
	return n
}

func (e *Engine) record(ctx context.Context, token, metric string, rungs []ladder.Threshold, now time.Time) {
	if e.store == nil {
		return
	}
	pruner, canPrune := e.store.(counter.Pruner)
	for i, rung := range rungs {
		key := counter.Key(token, metric, i)
		if err := e.call(ctx, "add", func(ctx context.Context) error {
			return e.store.AddEvent(ctx, key, now)
		}); err != nil {
			e.storeFailure("add", key, err)
			continue
		}
		if err := e.call(ctx, "expire", func(ctx context.Context) error {
			return e.store.SetExpiry(ctx, key, rung.Window)
		}); err != nil {
			e.storeFailure("expire", key, err)
		}
		if !canPrune {
			continue
		}
		if err := e.call(ctx, "prune", func(ctx context.Context) error {
			return pruner.Prune(ctx, key, now.Add(-rung.Window))
		}); err != nil {
			e.storeFailure("prune", key, err)
		}
	}
}

func (e *Engine) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- fn(ctx)
	}()

	var err error
	select {
	case err = <-done:
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
	case <-ctx.Done():
		// the call keeps running in the background; its result is dropped
		err = ctx.Err()
	}
	e.recorder.ObserveStoreLatency(operation, time.Since(start))
	return err
}

func (e *Engine) storeFailure(operation, key string, err error) {
	e.recorder.ObserveStoreError(operation)
	e.logger.WithError(err).WithFields(logrus.Fields{
		"operation": operation,
		"key":       key,
	}).Warn("counter store unavailable, failing open")
}
