package bans

import (
	"errors"
	"sort"

	"github.com/NeuralTrust/banhammer/pkg/config"
	"github.com/NeuralTrust/banhammer/pkg/domain/action"
	domain "github.com/NeuralTrust/banhammer/pkg/domain/errors"
	"github.com/NeuralTrust/banhammer/pkg/domain/ladder"
)

type Builder interface {
	Build(cfg config.BansConfig) (*ladder.Ladder, error)
}

type builder struct {
	locator action.Locator
}

func NewBuilder(locator action.Locator) Builder {
	return &builder{locator: locator}
}

// Build resolves every action name through the locator and validates the
// resulting ladder. The first failing metric, in name order, is reported.
func (b *builder) Build(cfg config.BansConfig) (*ladder.Ladder, error) {
	metrics := make([]string, 0, len(cfg))
	for metric := range cfg {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)

	resolved := make(map[string][]ladder.Threshold, len(cfg))
	for _, metric := range metrics {
		thresholds := cfg[metric]
		rungs := make([]ladder.Threshold, 0, len(thresholds))
		for i, t := range thresholds {
			actions, err := b.resolve(metric, i, t.Actions)
			if err != nil {
				return nil, err
			}
			rungs = append(rungs, ladder.Threshold{
				Window:         t.Window,
				Limit:          t.Limit,
				Actions:        actions,
				ActionDuration: t.ActionDuration,
			})
		}
		resolved[metric] = rungs
	}
	return ladder.New(resolved)
}

func (b *builder) resolve(metric string, index int, names []string) ([]action.Action, error) {
	actions := make([]action.Action, 0, len(names))
	for _, name := range names {
		a, err := b.locator.GetAction(name)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownAction) {
				return nil, domain.NewUnknownActionError(metric, index, name)
			}
			return nil, domain.NewInvalidThresholdError(metric, index, err.Error())
		}
		actions = append(actions, a)
	}
	return actions, nil
}
