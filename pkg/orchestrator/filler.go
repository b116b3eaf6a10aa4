package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/goliatone/go-formfill/internal/logging"
	"github.com/goliatone/go-formfill/pkg/dom"
	"github.com/goliatone/go-formfill/pkg/fields"
	"github.com/goliatone/go-formfill/pkg/fill"
	"github.com/goliatone/go-formfill/pkg/prompt"
	"github.com/goliatone/go-formfill/pkg/provider"
	"github.com/goliatone/go-formfill/pkg/response"
	"github.com/goliatone/go-formfill/pkg/review"
)

var (
	// ErrNoProvider is returned by every call while no provider is set.
	ErrNoProvider = errors.New("orchestrator: provider is required")
	// ErrNoTarget is returned when the form or element argument is nil.
	ErrNoTarget = errors.New("orchestrator: target element is required")
)

// Status summarises a fill call.
type Status string

const (
	// StatusFilled means every value that was offered got written.
	StatusFilled Status = "filled"
	// StatusPartial means some values were written and others skipped.
	StatusPartial Status = "partial"
	// StatusNoData means nothing was written and nothing failed.
	StatusNoData Status = "no_data"
	// StatusFailed means the provider call failed and nothing was written.
	StatusFailed Status = "failed"
)

// Result reports what a fill call did. Skipped maps identifiers to the
// writer's skip reason.
type Result struct {
	Status  Status            `json:"status"`
	Applied []string          `json:"applied,omitempty"`
	Skipped map[string]string `json:"skipped,omitempty"`
	Values  response.Values   `json:"values,omitempty"`
}

// Filler extracts values from text with an LLM provider and writes them into
// forms. It is safe for concurrent use; each call snapshots the provider and
// allow-list when it starts.
type Filler struct {
	mu       sync.RWMutex
	provider provider.Provider
	fields   []string

	logger     *slog.Logger
	debug      bool
	writer     *fill.Writer
	writerOpts []fill.Option
	fieldOpts  []fields.BuilderOption
	reviewer   review.Reviewer
	sanitize   func(string) string
	engine     *prompt.Engine
	template   string
	maxTokens  int
	model      string
}

// New constructs a Filler for p. A nil provider is accepted; calls then fail
// with ErrNoProvider until SetProvider is called.
func New(p provider.Provider, options ...Option) *Filler {
	f := &Filler{
		provider:  p,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	if f.logger == nil {
		f.logger = logging.Component(defaultFillLogComponent, f.debug)
	}
	writerOpts := append([]fill.Option{fill.WithLogger(f.logger)}, f.writerOpts...)
	f.writer = fill.NewWriter(writerOpts...)
	return f
}

// SetProvider swaps the active provider for subsequent calls.
func (f *Filler) SetProvider(p provider.Provider) {
	f.mu.Lock()
	f.provider = p
	f.mu.Unlock()
}

// Provider returns the active provider.
func (f *Filler) Provider() provider.Provider {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.provider
}

// SetFields restricts fills to the given field identifiers. A nil or empty
// list puts every detected field back in scope.
func (f *Filler) SetFields(names []string) {
	cleaned := cleanNames(names)
	f.mu.Lock()
	f.fields = cleaned
	f.mu.Unlock()
}

// Fields returns a copy of the allow-list, nil when every field is in scope.
func (f *Filler) Fields() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.fields == nil {
		return nil
	}
	return append([]string(nil), f.fields...)
}

func (f *Filler) snapshot() (provider.Provider, []string) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.provider, append([]string(nil), f.fields...)
}

// FillFromText describes form, asks the provider for values found in text
// and writes every non-empty value whose key matches a field identifier.
// Fields missing from the response are left untouched. A failed provider
// call returns StatusFailed with the error and writes nothing; a malformed
// response is StatusNoData with a nil error.
func (f *Filler) FillFromText(ctx context.Context, form *dom.Element, text string) (Result, error) {
	p, allow := f.snapshot()
	if p == nil {
		return Result{Status: StatusFailed}, ErrNoProvider
	}
	if form == nil {
		return Result{Status: StatusFailed}, ErrNoTarget
	}

	descs := fields.Filter(fields.Build(form, f.fieldOpts...), allow)
	descs = addressable(descs)
	if len(descs) == 0 {
		f.logger.Debug("fill.no_fields", "allow", allow)
		return Result{Status: StatusNoData}, nil
	}

	values, err := f.extract(ctx, p, descs, text)
	if err != nil {
		f.logger.Warn("fill.abort", "provider", p.Descriptor().Name, "error", err)
		return Result{Status: StatusFailed}, err
	}

	if f.reviewer != nil {
		reviewed, err := f.reviewer.Review(ctx, descs, values)
		if err != nil {
			f.logger.Warn("fill.review.abort", "error", err)
			return Result{Status: StatusFailed, Values: values}, fmt.Errorf("orchestrator: review: %w", err)
		}
		values = reviewed
	}
	if err := ctx.Err(); err != nil {
		return Result{Status: StatusFailed, Values: values}, err
	}

	res := f.apply(descs, values)
	f.logger.Debug("fill.done",
		"status", res.Status,
		"applied", len(res.Applied),
		"skipped", len(res.Skipped),
	)
	return res, nil
}

// Extract asks the provider for values of descs found in text without
// writing anything. The allow-list applies; descriptors may be element-less.
func (f *Filler) Extract(ctx context.Context, descs []fields.Descriptor, text string) (response.Values, error) {
	p, allow := f.snapshot()
	if p == nil {
		return nil, ErrNoProvider
	}
	descs = addressable(fields.Filter(descs, allow))
	if len(descs) == 0 {
		return response.Values{}, nil
	}
	return f.extract(ctx, p, descs, text)
}

// FillSingleField asks the provider for one plausible value for el, using
// extra as additional context, and writes the trimmed answer without JSON
// parsing. On failure the field is left unchanged.
func (f *Filler) FillSingleField(ctx context.Context, el *dom.Element, extra string) (Result, error) {
	p, _ := f.snapshot()
	if p == nil {
		return Result{Status: StatusFailed}, ErrNoProvider
	}
	if el == nil {
		return Result{Status: StatusFailed}, ErrNoTarget
	}
	desc, ok := fields.Describe(el, f.fieldOpts...)
	if !ok {
		f.logger.Debug("fill.single.unsupported", "tag", el.Tag(), "type", el.Type())
		return Result{Status: StatusNoData}, nil
	}

	resp, err := p.Chat(ctx, provider.ChatRequest{
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: prompt.SingleFieldSystemPrompt},
			{Role: provider.RoleUser, Content: prompt.BuildSingleFieldPrompt(desc, extra)},
		},
		Model:     f.model,
		MaxTokens: singleFieldMaxTokens,
	})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		f.logger.Warn("fill.single.abort", "provider", p.Descriptor().Name, "error", err)
		return Result{Status: StatusFailed}, fmt.Errorf("orchestrator: provider chat: %w", err)
	}
	value := strings.TrimSpace(resp.Text())
	if value == "" {
		return Result{Status: StatusFailed}, fmt.Errorf("orchestrator: provider chat: %w", provider.ErrEmptyResponse)
	}

	id := desc.Identifier()
	if id == "" {
		id = el.Name()
	}
	res := Result{Values: response.Values{id: value}}
	outcome := f.writer.Apply(desc.Element, desc.Kind, value)
	if outcome.Applied {
		res.Status = StatusFilled
		res.Applied = []string{id}
	} else {
		res.Status = StatusNoData
		res.Skipped = map[string]string{id: outcome.Reason}
	}
	return res, nil
}

func (f *Filler) extract(ctx context.Context, p provider.Provider, descs []fields.Descriptor, text string) (response.Values, error) {
	if f.sanitize != nil {
		text = f.sanitize(text)
	}

	userPrompt, err := f.render(descs, text)
	if err != nil {
		return nil, err
	}

	req := provider.ChatRequest{
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: prompt.SystemPrompt},
			{Role: provider.RoleUser, Content: userPrompt},
		},
		Model:     f.model,
		MaxTokens: f.maxTokens,
	}
	if p.SupportsStructuredOutput() {
		req.Format = prompt.BuildResponseSchema(descs)
	}

	f.logger.Debug("fill.request",
		"provider", p.Descriptor().Name,
		"fields", len(descs),
		"structured", req.Format != nil,
	)
	resp, err := p.Chat(ctx, req)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("orchestrator: provider chat: %w", err)
	}
	raw := resp.Text()
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("orchestrator: provider chat: %w", provider.ErrEmptyResponse)
	}

	values := response.Parse(raw, response.WithLogger(f.logger))
	if req.Format != nil && len(values) > 0 {
		if err := response.Validate(req.Format, raw); err != nil {
			f.logger.Debug("fill.schema.mismatch", "error", err)
		}
	}
	return values, nil
}

func (f *Filler) render(descs []fields.Descriptor, text string) (string, error) {
	if f.engine == nil {
		return prompt.BuildExtractionPrompt(descs, text), nil
	}
	out, err := f.engine.Render(f.template, prompt.TemplateData(descs, text))
	if err != nil {
		return "", fmt.Errorf("orchestrator: render prompt: %w", err)
	}
	return out, nil
}

func (f *Filler) apply(descs []fields.Descriptor, values response.Values) Result {
	res := Result{Values: values}
	for _, desc := range descs {
		id := desc.Identifier()
		value, ok := values.Lookup(id)
		if !ok {
			continue
		}
		outcome := f.writer.Apply(desc.Element, desc.Kind, value)
		if outcome.Applied {
			res.Applied = append(res.Applied, id)
			continue
		}
		if res.Skipped == nil {
			res.Skipped = make(map[string]string)
		}
		res.Skipped[id] = outcome.Reason
	}

	switch {
	case len(res.Applied) == 0:
		res.Status = StatusNoData
	case len(res.Skipped) > 0:
		res.Status = StatusPartial
	default:
		res.Status = StatusFilled
	}
	return res
}

func addressable(descs []fields.Descriptor) []fields.Descriptor {
	out := descs[:0:0]
	for _, d := range descs {
		if d.Identifier() != "" {
			out = append(out, d)
		}
	}
	return out
}
