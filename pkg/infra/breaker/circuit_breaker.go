package breaker

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxFailures = 5
)

type CircuitBreaker interface {
	Execute(fn func() error) error
	State() gobreaker.State
}

type Config struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures uint32        `mapstructure:"max_failures"`
}

type circuitBreakerWrapper struct {
	breaker *gobreaker.CircuitBreaker
}

// New opens the breaker after maxFailures consecutive failures and lets
// a trial request through once timeout has elapsed.
func New(name string, timeout time.Duration, maxFailures uint32) CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	return &circuitBreakerWrapper{
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func FromConfig(name string, cfg Config) CircuitBreaker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultMaxFailures
	}
	return New(name, timeout, maxFailures)
}

func (g *circuitBreakerWrapper) Execute(fn func() error) (err error) {
	// gobreaker counts the panic as a failure and re-raises it.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("breaker (%s): panic recovered: %v", g.breaker.Name(), r)
		}
	}()
	_, err = g.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err != nil {
		return fmt.Errorf("breaker (%s): %w", g.breaker.Name(), err)
	}
	return nil
}

func (g *circuitBreakerWrapper) State() gobreaker.State {
	return g.breaker.State()
}
