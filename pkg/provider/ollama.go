package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-formfill/pkg/config"
)

// Ollama talks to a local Ollama server.
type Ollama struct {
	*base
}

var (
	_ Provider = (*Ollama)(nil)
	_ Pinger   = (*Ollama)(nil)
)

// NewOllama constructs the Ollama provider.
func NewOllama(defaults config.ProviderDefaults, opts ...Option) *Ollama {
	o := buildOptions(opts)
	p := &Ollama{base: newBase(
		Descriptor{Name: config.ProviderOllama, Locality: Local},
		defaults,
		config.ProviderDefaults{Endpoint: "http://localhost:11434", Model: "llama3.2", Timeout: 120 * time.Second},
		true,
		o,
	)}
	p.lister = p
	return p
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   map[string]any `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Model   string `json:"model"`
	Message *struct {
		Content string `json:"content"`
	} `json:"message"`
	DoneReason string `json:"done_reason"`
}

// Chat sends one non-streaming /api/chat request. A Format schema is passed
// through as Ollama's format parameter.
func (p *Ollama) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	body := ollamaChatRequest{
		Model:    p.modelFor(req),
		Messages: req.Messages,
	}
	if req.Format != nil && p.structured {
		body.Format = req.Format
	}
	if req.MaxTokens > 0 {
		body.Options = map[string]any{"num_predict": req.MaxTokens}
	}

	var out ollamaChatResponse
	if err := p.http.do(ctx, http.MethodPost, p.endpoint+"/api/chat", body, &out); err != nil {
		return ChatResponse{}, fmt.Errorf("%s chat: %w", p.desc.Name, err)
	}
	if out.Message == nil {
		return ChatResponse{}, fmt.Errorf("%s chat: %w", p.desc.Name, ErrEmptyResponse)
	}
	content := out.Message.Content
	p.logger.Debug("provider.chat.ok",
		"provider", p.desc.Name,
		"model", out.Model,
		"finish_reason", out.DoneReason,
	)
	return ChatResponse{
		Content:      &content,
		Model:        out.Model,
		FinishReason: out.DoneReason,
	}, nil
}

// ListModels returns the locally pulled models from /api/tags.
func (p *Ollama) ListModels(ctx context.Context) ([]string, error) {
	var out struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := p.http.do(ctx, http.MethodGet, p.endpoint+"/api/tags", nil, &out); err != nil {
		return nil, fmt.Errorf("%s models: %w", p.desc.Name, err)
	}
	models := make([]string, 0, len(out.Models))
	for _, m := range out.Models {
		models = append(models, m.Name)
	}
	return models, nil
}
