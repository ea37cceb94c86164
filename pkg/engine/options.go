package engine

import (
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultStoreTimeout = 250 * time.Millisecond

type Option func(*Engine)

func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithStoreTimeout bounds every single store call. Non-positive values keep the
// default.
func WithStoreTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout > 0 {
			e.storeTimeout = timeout
		}
	}
}

func WithRecorder(recorder Recorder) Option {
	return func(e *Engine) {
		if recorder != nil {
			e.recorder = recorder
		}
	}
}
