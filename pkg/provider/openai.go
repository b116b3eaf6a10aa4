package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-formfill/pkg/config"
)

// OpenAI talks to an OpenAI-compatible chat/completions API.
type OpenAI struct {
	*base
}

var (
	_ Provider = (*OpenAI)(nil)
	_ Pinger   = (*OpenAI)(nil)
)

// NewOpenAI constructs the remote OpenAI provider.
func NewOpenAI(defaults config.ProviderDefaults, opts ...Option) *OpenAI {
	return newOpenAICompatible(
		Descriptor{Name: config.ProviderOpenAI, Locality: Remote},
		defaults,
		config.ProviderDefaults{Endpoint: "https://api.openai.com/v1", Model: "gpt-4o-mini", Timeout: 60 * time.Second},
		opts,
	)
}

// NewLMStudio constructs the local LM Studio provider, which serves an
// OpenAI-compatible API.
func NewLMStudio(defaults config.ProviderDefaults, opts ...Option) *OpenAI {
	return newOpenAICompatible(
		Descriptor{Name: config.ProviderLMStudio, Locality: Local},
		defaults,
		config.ProviderDefaults{Endpoint: "http://localhost:1234/v1", Model: "local-model", Timeout: 120 * time.Second},
		opts,
	)
}

func newOpenAICompatible(desc Descriptor, defaults, fallback config.ProviderDefaults, opts []Option) *OpenAI {
	o := buildOptions(opts)
	p := &OpenAI{base: newBase(desc, defaults, fallback, true, o)}
	p.lister = p

	key := o.apiKey
	if key == "" {
		key = strings.TrimSpace(defaults.APIKey)
	}
	if key != "" {
		p.http.headers = map[string]string{"Authorization": "Bearer " + key}
	}
	return p
}

type openAIChatRequest struct {
	Model          string         `json:"model"`
	Messages       []Message      `json:"messages"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Chat sends one chat/completions request. A Format schema is forwarded as a
// json_schema response format when structured output is enabled.
func (p *OpenAI) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	body := openAIChatRequest{
		Model:     p.modelFor(req),
		Messages:  req.Messages,
		MaxTokens: req.MaxTokens,
	}
	if req.Format != nil && p.structured {
		body.ResponseFormat = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "form_fields",
				"schema": req.Format,
			},
		}
	}

	var out openAIChatResponse
	if err := p.http.do(ctx, http.MethodPost, p.endpoint+"/chat/completions", body, &out); err != nil {
		return ChatResponse{}, fmt.Errorf("%s chat: %w", p.desc.Name, err)
	}
	if len(out.Choices) == 0 {
		return ChatResponse{}, fmt.Errorf("%s chat: %w", p.desc.Name, ErrEmptyResponse)
	}
	choice := out.Choices[0]
	p.logger.Debug("provider.chat.ok",
		"provider", p.desc.Name,
		"model", out.Model,
		"finish_reason", choice.FinishReason,
	)
	return ChatResponse{
		Content:      choice.Message.Content,
		Model:        out.Model,
		FinishReason: choice.FinishReason,
	}, nil
}

// ListModels returns the ids served under /models.
func (p *OpenAI) ListModels(ctx context.Context) ([]string, error) {
	var out struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := p.http.do(ctx, http.MethodGet, p.endpoint+"/models", nil, &out); err != nil {
		return nil, fmt.Errorf("%s models: %w", p.desc.Name, err)
	}
	models := make([]string, 0, len(out.Data))
	for _, m := range out.Data {
		models = append(models, m.ID)
	}
	return models, nil
}
