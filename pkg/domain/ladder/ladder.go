package ladder

import (
	"fmt"
	"sort"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/domain/action"
	domain "github.com/NeuralTrust/banhammer/pkg/domain/errors"
)

// Threshold is one rung of a metric's ladder. Each rung is checked on its own
// window and its own counter key; rungs are not cumulative.
type Threshold struct {
	Window         time.Duration
	Limit          int64
	Actions        []action.Action
	ActionDuration time.Duration
}

// ActionNames lists the configured actions in dispatch order.
func (t Threshold) ActionNames() []string {
	names := make([]string, 0, len(t.Actions))
	for _, a := range t.Actions {
		names = append(names, a.Name())
	}
	return names
}

// Ladder maps metric names to their ordered thresholds. It is read-only once
// built.
type Ladder struct {
	metrics map[string][]Threshold
}

func New(metrics map[string][]Threshold) (*Ladder, error) {
	copied := make(map[string][]Threshold, len(metrics))
	for metric, thresholds := range metrics {
		if metric == "" {
			return nil, &domain.ConfigurationError{
				Threshold: -1,
				Reason:    "metric name must not be empty",
				Err:       domain.ErrInvalidThreshold,
			}
		}
		if len(thresholds) == 0 {
			return nil, &domain.ConfigurationError{
				Metric:    metric,
				Threshold: -1,
				Reason:    "metric must define at least one threshold",
				Err:       domain.ErrInvalidThreshold,
			}
		}
		rungs := make([]Threshold, len(thresholds))
		for i, t := range thresholds {
			if err := validate(metric, i, t); err != nil {
				return nil, err
			}
			rungs[i] = Threshold{
				Window:         t.Window,
				Limit:          t.Limit,
				Actions:        append([]action.Action(nil), t.Actions...),
				ActionDuration: t.ActionDuration,
			}
		}
		copied[metric] = rungs
	}
	return &Ladder{metrics: copied}, nil
}

func validate(metric string, index int, t Threshold) error {
	switch {
	case t.Window <= 0:
		return domain.NewInvalidThresholdError(metric, index, "window must be positive")
	case t.Limit < 0:
		return domain.NewInvalidThresholdError(metric, index, "limit must not be negative")
	case len(t.Actions) == 0:
		return domain.NewInvalidThresholdError(metric, index, "at least one action is required")
	case t.ActionDuration < 0:
		return domain.NewInvalidThresholdError(metric, index, "action duration must not be negative")
	}
	for _, a := range t.Actions {
		if a == nil {
			return domain.NewInvalidThresholdError(metric, index, "action must not be nil")
		}
		if d, ok := a.(action.DurationBound); ok && d.NeedsDuration() && t.ActionDuration <= 0 {
			return domain.NewInvalidThresholdError(metric, index,
				fmt.Sprintf("action '%s' requires a positive action duration", a.Name()))
		}
	}
	return nil
}

// Thresholds returns a copy of the ladder for metric.
func (l *Ladder) Thresholds(metric string) ([]Threshold, error) {
	rungs, ok := l.metrics[metric]
	if !ok {
		return nil, domain.NewUnknownMetricError(metric)
	}
	return append([]Threshold(nil), rungs...), nil
}

// Threshold returns a single rung, failing on unknown metrics and out of range
// indexes.
func (l *Ladder) Threshold(metric string, index int) (Threshold, error) {
	rungs, ok := l.metrics[metric]
	if !ok {
		return Threshold{}, domain.NewUnknownMetricError(metric)
	}
	if index < 0 || index >= len(rungs) {
		return Threshold{}, domain.NewInvalidThresholdError(metric, index, "threshold index out of range")
	}
	return rungs[index], nil
}

func (l *Ladder) Has(metric string) bool {
	_, ok := l.metrics[metric]
	return ok
}

func (l *Ladder) Len(metric string) int {
	return len(l.metrics[metric])
}

// Metrics returns the configured metric names, sorted.
func (l *Ladder) Metrics() []string {
	names := make([]string, 0, len(l.metrics))
	for name := range l.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
