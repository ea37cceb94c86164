package actions

import (
	"fmt"
	"sort"
	"sync"

	"github.com/NeuralTrust/banhammer/pkg/config"
	"github.com/NeuralTrust/banhammer/pkg/domain/action"
	domain "github.com/NeuralTrust/banhammer/pkg/domain/errors"
)

// Factory builds configured actions of one type.
type Factory interface {
	Type() string
	ValidateConfig(settings map[string]interface{}) error
	WithSettings(name string, settings map[string]interface{}) (action.Action, error)
}

type closer interface {
	Close()
}

var _ action.Locator = (*Registry)(nil)

// Registry resolves action names used by the bans configuration. Names are
// either configured explicitly or match a factory type, which is then built
// with empty settings.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	actions   map[string]action.Action
}

type RegistryOption func(*Registry)

func WithFactory(factory Factory) RegistryOption {
	return func(r *Registry) {
		r.factories[factory.Type()] = factory
	}
}

// WithAction registers a ready-made action under its own name.
func WithAction(a action.Action) RegistryOption {
	return func(r *Registry) {
		r.actions[a.Name()] = a
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		actions:   make(map[string]action.Action),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Configure builds every action of the actions config section.
func (r *Registry) Configure(cfg map[string]config.ActionConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		actionCfg := cfg[name]
		typ := actionCfg.Type
		if typ == "" {
			typ = name
		}
		a, err := r.build(name, typ, actionCfg.Settings)
		if err != nil {
			return err
		}
		r.actions[name] = a
	}
	return nil
}

func (r *Registry) GetAction(name string) (action.Action, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.actions[name]; ok {
		return a, nil
	}
	a, err := r.build(name, name, nil)
	if err != nil {
		return nil, err
	}
	r.actions[name] = a
	return a, nil
}

func (r *Registry) build(name, typ string, settings map[string]interface{}) (action.Action, error) {
	factory, ok := r.factories[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAction, typ)
	}
	if err := factory.ValidateConfig(settings); err != nil {
		return nil, fmt.Errorf("invalid %s action %q: %w", typ, name, err)
	}
	a, err := factory.WithSettings(name, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s action %q: %w", typ, name, err)
	}
	return a, nil
}

// Names lists every built action.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases actions holding connections, such as kafka producers.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		if c, ok := a.(closer); ok {
			c.Close()
		}
	}
}
