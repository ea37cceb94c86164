package action

import (
	"context"
	"time"
)

// Action is a side effect triggered when a token breaches a threshold. Every
// action receives the same arguments regardless of what it does.
type Action interface {
	Name() string
	Execute(
		ctx context.Context,
		token string,
		duration time.Duration,
		metric string,
		window time.Duration,
		limit int64,
	) error
}

type Func func(
	ctx context.Context,
	token string,
	duration time.Duration,
	metric string,
	window time.Duration,
	limit int64,
) error

type funcAction struct {
	name string
	fn   Func
}

// New adapts a plain function to the Action interface.
func New(name string, fn Func) Action {
	return &funcAction{name: name, fn: fn}
}

func (a *funcAction) Name() string {
	return a.name
}

func (a *funcAction) Execute(
	ctx context.Context,
	token string,
	duration time.Duration,
	metric string,
	window time.Duration,
	limit int64,
) error {
	return a.fn(ctx, token, duration, metric, window, limit)
}

// DurationBound is implemented by actions that cannot run with a zero action
// duration. Ladders reject such an action on a rung without one.
type DurationBound interface {
	NeedsDuration() bool
}

// Locator resolves configured action names.
type Locator interface {
	GetAction(name string) (Action, error)
}
