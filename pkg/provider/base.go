package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-formfill/internal/logging"
	"github.com/goliatone/go-formfill/pkg/config"
)

// Option customises a built-in provider.
type Option func(*options)

type options struct {
	client     *http.Client
	logger     *slog.Logger
	structured *bool
	apiKey     string
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.client = client
		}
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStructuredOutput overrides whether the provider advertises structured
// output support.
func WithStructuredOutput(enabled bool) Option {
	return func(o *options) {
		o.structured = &enabled
	}
}

// WithAPIKey overrides the API key from the provider defaults.
func WithAPIKey(key string) Option {
	return func(o *options) {
		o.apiKey = strings.TrimSpace(key)
	}
}

func buildOptions(opts []Option) options {
	o := options{
		client: &http.Client{},
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// modelLister is the part of a provider base needs for model selection.
type modelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// base carries the state every built-in provider shares.
type base struct {
	desc       Descriptor
	endpoint   string
	timeout    time.Duration
	structured bool
	logger     *slog.Logger
	http       *transport
	lister     modelLister

	mu    sync.RWMutex
	model string
}

func newBase(desc Descriptor, defaults config.ProviderDefaults, fallback config.ProviderDefaults, structured bool, o options) *base {
	endpoint := strings.TrimRight(strings.TrimSpace(defaults.Endpoint), "/")
	if endpoint == "" {
		endpoint = strings.TrimRight(fallback.Endpoint, "/")
	}
	model := strings.TrimSpace(defaults.Model)
	if model == "" {
		model = fallback.Model
	}
	timeout := defaults.Timeout
	if timeout == 0 {
		timeout = fallback.Timeout
	}
	if o.structured != nil {
		structured = *o.structured
	}
	return &base{
		desc:       desc,
		endpoint:   endpoint,
		timeout:    timeout,
		structured: structured,
		logger:     o.logger,
		model:      model,
		http: &transport{
			client:  o.client,
			logger:  o.logger,
			timeout: timeout,
		},
	}
}

func (b *base) Descriptor() Descriptor { return b.desc }

func (b *base) SupportsStructuredOutput() bool { return b.structured }

// Endpoint returns the base URL requests are sent to.
func (b *base) Endpoint() string { return b.endpoint }

func (b *base) SelectedModel() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.model
}

func (b *base) SetSelectedModel(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("provider: model name is required")
	}

	models, err := b.lister.ListModels(ctx)
	if err != nil {
		b.logger.Debug("provider.models.unverified", "provider", b.desc.Name, "model", name, "error", err)
		b.setModel(name)
		return nil
	}
	for _, m := range models {
		if m == name || strings.HasPrefix(m, name+":") {
			b.setModel(name)
			return nil
		}
	}
	return fmt.Errorf("%w %q for %s (available: %s)", ErrUnknownModel, name, b.desc.Name, strings.Join(models, ", "))
}

func (b *base) setModel(name string) {
	b.mu.Lock()
	b.model = name
	b.mu.Unlock()
}

func (b *base) Ping(ctx context.Context) error {
	_, err := b.lister.ListModels(ctx)
	return err
}

func (b *base) IsAvailable(ctx context.Context) bool {
	if err := b.Ping(ctx); err != nil {
		b.logger.Debug("provider.unavailable", "provider", b.desc.Name, "error", err)
		return false
	}
	return true
}

func (b *base) modelFor(req ChatRequest) string {
	if m := strings.TrimSpace(req.Model); m != "" {
		return m
	}
	return b.SelectedModel()
}
