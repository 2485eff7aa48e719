package screener

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/astocklab/astock-eval/internal/data"
	"github.com/astocklab/astock-eval/internal/logger"
)

// Factory builds one screener instance bound to a data manager.
type Factory func(manager *data.Manager, log *logger.Logger) Screener

// builtins is the static registration list. A new screener joins the
// registry by adding a line here.
func builtins() map[string]Factory {
	return map[string]Factory{
		"momentum":   NewMomentumScreener,
		"technical":  NewTechnicalScreener,
		"volatility": NewVolatilityScreener,
	}
}

// Registry owns the name to screener table. It is constructed explicitly
// and carries no package-level state; two registries never interfere.
type Registry struct {
	manager *data.Manager
	log     *logger.Logger

	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry pre-populated with the builtin
// screeners.
func NewRegistry(manager *data.Manager, log *logger.Logger) *Registry {
	r := &Registry{
		manager:   manager,
		log:       log,
		factories: make(map[string]Factory),
	}
	r.Reload()

	return r
}

// Register adds a screener factory under a name. Registering a name
// twice is an error.
func (r *Registry) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("screener %s already registered", name)
	}

	r.factories[name] = factory

	return nil
}

// Get instantiates the screener registered under name.
func (r *Registry) Get(name string) (Screener, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("screener %q: %w", name, ErrScreenerNotFound)
	}

	return factory(r.manager, r.log), nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Reload clears the table and re-registers the builtins. Running it
// repeatedly leaves the registry in the same state, so custom entries
// added with Register must be re-added afterwards.
func (r *Registry) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories = make(map[string]Factory)
	for name, factory := range builtins() {
		r.factories[name] = factory
	}
}

// BatchScreen runs every enabled config in order. A config whose
// screener is missing or whose run fails is logged and skipped; callers
// get the results that succeeded.
func (r *Registry) BatchScreen(ctx context.Context, configs []Config, symbols []string) []*Result {
	results := make([]*Result, 0, len(configs))

	for _, config := range configs {
		if !config.Enabled {
			continue
		}

		s, err := r.Get(config.Name)
		if err != nil {
			r.log.Warn("Skipping unknown screener", zap.String("name", config.Name), zap.Error(err))
			continue
		}

		result, err := s.Screen(ctx, symbols, config.Params)
		if err != nil {
			r.log.Warn("Screener run failed", zap.String("name", config.Name), zap.Error(err))
			continue
		}

		results = append(results, result)
	}

	return results
}

// CreateComposite resolves each config against the registry and builds a
// composite screener. Unknown child names fail the whole construction.
func (r *Registry) CreateComposite(name string, mode Mode, configs []Config) (*Composite, error) {
	children := make([]Child, 0, len(configs))

	for _, config := range configs {
		s, err := r.Get(config.Name)
		if err != nil {
			return nil, err
		}

		children = append(children, Child{
			Screener: s,
			Params:   config.Params,
			Weight:   config.Weight,
		})
	}

	return NewComposite(name, mode, children, r.log)
}
