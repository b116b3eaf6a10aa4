package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Built-in provider names.
const (
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
	ProviderLMStudio = "lmstudio"
)

// ProviderDefaults holds the connection defaults of one named provider.
type ProviderDefaults struct {
	Endpoint string
	Model    string
	Timeout  time.Duration
	APIKey   string
}

// Debug toggles verbose logging for the provider adapters and the fill
// pipeline independently.
type Debug struct {
	Providers bool
	Fill      bool
}

// Config is the explicit configuration value handed to constructors. Nothing
// in this module mutates a Config it was given.
type Config struct {
	ActiveProvider string
	Debug          Debug
	Providers      map[string]ProviderDefaults
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ActiveProvider: ProviderOllama,
		Providers: map[string]ProviderDefaults{
			ProviderOpenAI: {
				Endpoint: "https://api.openai.com/v1",
				Model:    "gpt-4o-mini",
				Timeout:  60 * time.Second,
			},
			ProviderOllama: {
				Endpoint: "http://localhost:11434",
				Model:    "llama3.2",
				Timeout:  120 * time.Second,
			},
			ProviderLMStudio: {
				Endpoint: "http://localhost:1234/v1",
				Model:    "local-model",
				Timeout:  120 * time.Second,
			},
		},
	}
}

// Provider returns the defaults for name.
func (c Config) Provider(name string) (ProviderDefaults, bool) {
	p, ok := c.Providers[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// ProviderNames returns the configured provider names in sorted order.
func (c Config) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy so callers can derive variants safely.
func (c Config) Clone() Config {
	out := c
	out.Providers = make(map[string]ProviderDefaults, len(c.Providers))
	for name, p := range c.Providers {
		out.Providers[name] = p
	}
	return out
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ActiveProvider) == "" {
		errs = append(errs, errors.New("config: active provider is required"))
	} else if _, ok := c.Provider(c.ActiveProvider); !ok {
		errs = append(errs, fmt.Errorf("config: active provider %q has no defaults (configured: %s)",
			c.ActiveProvider, strings.Join(c.ProviderNames(), ", ")))
	}
	for _, name := range c.ProviderNames() {
		p := c.Providers[name]
		if strings.TrimSpace(p.Endpoint) == "" {
			errs = append(errs, fmt.Errorf("config: provider %q: endpoint is required", name))
		}
		if p.Timeout < 0 {
			errs = append(errs, fmt.Errorf("config: provider %q: timeout must not be negative", name))
		}
	}
	return errors.Join(errs...)
}
