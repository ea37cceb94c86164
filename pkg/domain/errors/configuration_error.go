package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMetric    = errors.New("unknown metric")
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrUnknownAction    = errors.New("unknown action")
)

// ConfigurationError reports a metric or threshold that the loaded ladder cannot serve.
type ConfigurationError struct {
	Metric    string
	Threshold int
	Reason    string
	Err       error
}

func (e *ConfigurationError) Error() string {
	if e.Threshold >= 0 {
		return fmt.Sprintf("configuration error: metric '%s' threshold %d: %s", e.Metric, e.Threshold, e.Reason)
	}
	return fmt.Sprintf("configuration error: metric '%s': %s", e.Metric, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func NewUnknownMetricError(metric string) error {
	return &ConfigurationError{
		Metric:    metric,
		Threshold: -1,
		Reason:    "metric is not defined in the bans configuration",
		Err:       ErrUnknownMetric,
	}
}

func NewInvalidThresholdError(metric string, threshold int, reason string) error {
	return &ConfigurationError{
		Metric:    metric,
		Threshold: threshold,
		Reason:    reason,
		Err:       ErrInvalidThreshold,
	}
}

func NewUnknownActionError(metric string, threshold int, name string) error {
	return &ConfigurationError{
		Metric:    metric,
		Threshold: threshold,
		Reason:    fmt.Sprintf("action '%s' is not registered", name),
		Err:       ErrUnknownAction,
	}
}

func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
