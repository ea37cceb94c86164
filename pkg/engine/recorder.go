package engine

import "time"

// Recorder receives engine measurements. The prometheus package provides the
// production implementation.
type Recorder interface {
	ObserveCheck(metric, operation string, passed bool)
	ObserveBreach(metric string, threshold int)
	ObserveActionFailure(action string)
	ObserveStoreError(operation string)
	ObserveStoreLatency(operation string, elapsed time.Duration)
}

// NoopRecorder discards every measurement.
type NoopRecorder struct{}

func (NoopRecorder) ObserveCheck(string, string, bool)          {}
func (NoopRecorder) ObserveBreach(string, int)                  {}
func (NoopRecorder) ObserveActionFailure(string)                {}
func (NoopRecorder) ObserveStoreError(string)                   {}
func (NoopRecorder) ObserveStoreLatency(string, time.Duration) {}
