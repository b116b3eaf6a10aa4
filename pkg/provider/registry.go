package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formfill/internal/logging"
	"github.com/goliatone/go-formfill/pkg/config"
)

// Factory builds a provider from its configured defaults.
type Factory func(defaults config.ProviderDefaults, opts ...Option) Provider

// Registry stores provider factories by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry holding the built-in providers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(config.ProviderOpenAI, func(d config.ProviderDefaults, opts ...Option) Provider {
		return NewOpenAI(d, opts...)
	})
	r.MustRegister(config.ProviderOllama, func(d config.ProviderDefaults, opts ...Option) Provider {
		return NewOllama(d, opts...)
	})
	r.MustRegister(config.ProviderLMStudio, func(d config.ProviderDefaults, opts ...Option) Provider {
		return NewLMStudio(d, opts...)
	})
	return r
}

// Register adds a factory. Duplicate names return an error.
func (r *Registry) Register(name string, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("provider: factory is required")
	}
	key := normalizeName(name)
	if key == "" {
		return fmt.Errorf("provider: provider name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("provider: provider %q already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
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

// Has reports whether a provider is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[normalizeName(name)]
	return ok
}

// New builds the named provider from cfg. Unknown names fail with an error
// wrapping ErrUnknownProvider that lists the valid names. Unless opts set a
// logger, the provider logs through a component logger gated by
// cfg.Debug.Providers.
func (r *Registry) New(name string, cfg config.Config, opts ...Option) (Provider, error) {
	key := normalizeName(name)

	r.mu.RLock()
	factory, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (valid: %s)", ErrUnknownProvider, name, strings.Join(r.List(), ", "))
	}

	defaults, _ := cfg.Provider(key)
	all := make([]Option, 0, len(opts)+1)
	all = append(all, WithLogger(logging.Component("provider."+key, cfg.Debug.Providers)))
	all = append(all, opts...)
	return factory(defaults, all...), nil
}

var defaultRegistry = DefaultRegistry()

// New builds a built-in provider by name. See Registry.New.
func New(name string, cfg config.Config, opts ...Option) (Provider, error) {
	return defaultRegistry.New(name, cfg, opts...)
}

// Names lists the built-in provider names.
func Names() []string {
	return defaultRegistry.List()
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
