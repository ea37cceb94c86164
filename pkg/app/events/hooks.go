package events

import (
	"context"

	"github.com/NeuralTrust/banhammer/pkg/engine"
	"github.com/sirupsen/logrus"
)

const (
	MetricLoginFailed     = "login_failed"
	MetricLoginSuccessful = "login_successful"

	// RestrictedIPThreshold is checked instead of the first rung for callers
	// coming from a restricted address.
	RestrictedIPThreshold = 1
)

// RateEngine is the part of the engine the hooks call.
type RateEngine interface {
	Incr(ctx context.Context, token, metric string, threshold int) (bool, engine.Snapshot, error)
	Peek(ctx context.Context, token, metric string, threshold int) (bool, engine.Snapshot, error)
	Status(ctx context.Context, token, metric string) (engine.Snapshot, error)
}

// Result is the outcome of a hook that checked a threshold.
type Result struct {
	Metric    string
	Threshold int
	Passed    bool
	Snapshot  engine.Snapshot
}

// Hooks are called at fixed points of the login lifecycle.
type Hooks struct {
	logger *logrus.Logger
	engine RateEngine
}

func NewHooks(logger *logrus.Logger, engine RateEngine) *Hooks {
	return &Hooks{logger: logger, engine: engine}
}

func (h *Hooks) AfterLoginFailed(ctx context.Context, token string) (Result, error) {
	return h.incr(ctx, token, MetricLoginFailed)
}

// LoginRestrictedIP checks the stricter login_failed rung without recording.
func (h *Hooks) LoginRestrictedIP(ctx context.Context, token string) (Result, error) {
	passed, snapshot, err := h.engine.Peek(ctx, token, MetricLoginFailed, RestrictedIPThreshold)
	if err != nil {
		return Result{}, err
	}
	if !passed {
		h.logger.WithFields(logrus.Fields{
			"token":  token,
			"metric": MetricLoginFailed,
		}).Info("restricted ip over login_failed limit")
	}
	return Result{
		Metric:    MetricLoginFailed,
		Threshold: RestrictedIPThreshold,
		Passed:    passed,
		Snapshot:  snapshot,
	}, nil
}

func (h *Hooks) AfterLoginSuccessful(ctx context.Context, token string) (Result, error) {
	return h.incr(ctx, token, MetricLoginSuccessful)
}

// ReportLoginSuccessful returns the login_successful counts of token.
func (h *Hooks) ReportLoginSuccessful(ctx context.Context, token string) (engine.Snapshot, error) {
	return h.engine.Status(ctx, token, MetricLoginSuccessful)
}

func (h *Hooks) incr(ctx context.Context, token, metric string) (Result, error) {
	passed, snapshot, err := h.engine.Incr(ctx, token, metric, 0)
	if err != nil {
		return Result{}, err
	}
	return Result{Metric: metric, Passed: passed, Snapshot: snapshot}, nil
}
