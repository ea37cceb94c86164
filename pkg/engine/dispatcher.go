package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/NeuralTrust/banhammer/pkg/domain/action"
	"github.com/NeuralTrust/banhammer/pkg/domain/ladder"
	"github.com/sirupsen/logrus"
)

// ActionError is the failure of a single breach action.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %s failed: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Dispatcher runs the actions of a breached threshold in order. A failing or
// panicking action never stops the ones after it.
type Dispatcher struct {
	logger   *logrus.Logger
	recorder Recorder
}

func NewDispatcher(logger *logrus.Logger, recorder Recorder) *Dispatcher {
	if logger == nil {
		logger = logrus.New()
	}
	if recorder == nil {
		recorder = NoopRecorder{}
	}
	return &Dispatcher{logger: logger, recorder: recorder}
}

// Dispatch returns every action failure joined, or nil.
func (d *Dispatcher) Dispatch(ctx context.Context, token, metric string, threshold ladder.Threshold) error {
	var errs []error
	for _, a := range threshold.Actions {
		if err := d.run(ctx, a, token, metric, threshold); err != nil {
			d.recorder.ObserveActionFailure(a.Name())
			d.logger.WithError(err).WithFields(logrus.Fields{
				"action": a.Name(),
				"token":  token,
				"metric": metric,
			}).Error("breach action failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) run(
	ctx context.Context,
	a action.Action,
	token string,
	metric string,
	threshold ladder.Threshold,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ActionError{Action: a.Name(), Err: fmt.Errorf("panic recovered: %v", r)}
		}
	}()
	if execErr := a.Execute(ctx, token, threshold.ActionDuration, metric, threshold.Window, threshold.Limit); execErr != nil {
		return &ActionError{Action: a.Name(), Err: execErr}
	}
	return nil
}
