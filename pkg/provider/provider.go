package provider

import (
	"context"
	"errors"
)

// Locality tells whether a provider runs on the local machine or a remote
// service.
type Locality string

const (
	Local  Locality = "local"
	Remote Locality = "remote"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrUnknownProvider is returned when a provider name is not registered.
	ErrUnknownProvider = errors.New("provider: unknown provider")
	// ErrTimeout wraps requests that ran past the provider timeout.
	ErrTimeout = errors.New("provider: request timed out")
	// ErrEmptyResponse is returned when a response carries no choice at all.
	ErrEmptyResponse = errors.New("provider: empty response")
	// ErrStatus wraps non-2xx HTTP answers.
	ErrStatus = errors.New("provider: unexpected status")
	// ErrUnknownModel is returned by SetSelectedModel for models the
	// provider does not list.
	ErrUnknownModel = errors.New("provider: unknown model")
)

// Descriptor identifies a provider.
type Descriptor struct {
	Name     string   `json:"name"`
	Locality Locality `json:"locality"`
}

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a single-turn request. Format, when set, is an advisory JSON
// Schema that providers without structured output ignore.
type ChatRequest struct {
	Messages  []Message
	Model     string
	MaxTokens int
	Format    map[string]any
}

// ChatResponse carries the model answer. Content is nil when the model
// returned no content.
type ChatResponse struct {
	Content      *string
	Model        string
	FinishReason string
}

// Text returns the content or "".
func (r ChatResponse) Text() string {
	if r.Content == nil {
		return ""
	}
	return *r.Content
}

// Provider is the boundary to an LLM backend.
type Provider interface {
	Descriptor() Descriptor
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	ListModels(ctx context.Context) ([]string, error)
	// IsAvailable is a best-effort reachability check; it reports false
	// instead of returning errors.
	IsAvailable(ctx context.Context) bool
	SelectedModel() string
	// SetSelectedModel validates name against ListModels and accepts it
	// unconditionally when listing fails.
	SetSelectedModel(ctx context.Context, name string) error
	SupportsStructuredOutput() bool
}

// Pinger is implemented by providers that can report why they are
// unavailable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping returns the reachability error of p, using Pinger when available.
func Ping(ctx context.Context, p Provider) error {
	if pinger, ok := p.(Pinger); ok {
		return pinger.Ping(ctx)
	}
	if !p.IsAvailable(ctx) {
		return errors.New("provider: unavailable")
	}
	return nil
}
