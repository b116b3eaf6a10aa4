// Package formfill fills HTML forms and OpenAPI request payloads from
// free-form text with a local or remote LLM.
//
// The root package wires the defaults; pkg/orchestrator, pkg/provider and
// pkg/fill expose the individual stages.
package formfill

import (
	"context"
	"strings"

	"github.com/goliatone/go-formfill/pkg/config"
	"github.com/goliatone/go-formfill/pkg/dom"
	"github.com/goliatone/go-formfill/pkg/openapi"
	"github.com/goliatone/go-formfill/pkg/orchestrator"
	"github.com/goliatone/go-formfill/pkg/prompt"
	"github.com/goliatone/go-formfill/pkg/provider"
	"github.com/goliatone/go-formfill/pkg/response"
)

// Result aliases orchestrator.Result for callers of the root helpers.
type Result = orchestrator.Result

// NewFiller builds the active provider from cfg and returns a Filler bound to
// it. Debug logging follows cfg.Debug.Fill unless options override it.
func NewFiller(cfg config.Config, options ...orchestrator.Option) (*orchestrator.Filler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := provider.New(cfg.ActiveProvider, cfg)
	if err != nil {
		return nil, err
	}
	opts := make([]orchestrator.Option, 0, len(options)+1)
	opts = append(opts, orchestrator.WithDebug(cfg.Debug.Fill))
	opts = append(opts, options...)
	return orchestrator.New(p, opts...), nil
}

// FillHTML fills the form matching selector in markup and returns the
// rendered document together with the fill result. The document is returned
// unchanged when the result carries no applied values.
func FillHTML(ctx context.Context, cfg config.Config, markup, selector, text string, options ...orchestrator.Option) (string, Result, error) {
	filler, err := NewFiller(cfg, options...)
	if err != nil {
		return "", Result{}, err
	}
	doc, err := dom.ParseString(markup)
	if err != nil {
		return "", Result{}, err
	}
	form, err := doc.Form(selector)
	if err != nil {
		return "", Result{}, err
	}
	res, err := filler.FillFromText(ctx, form, text)
	if err != nil {
		return "", res, err
	}
	return doc.String(), res, nil
}

// ExtractOpenAPI extracts values for the request body of operationID in the
// OpenAPI document data.
func ExtractOpenAPI(ctx context.Context, cfg config.Config, data []byte, operationID, text string, options ...orchestrator.Option) (response.Values, error) {
	descs, err := openapi.Fields(ctx, data, operationID)
	if err != nil {
		return nil, err
	}
	filler, err := NewFiller(cfg, options...)
	if err != nil {
		return nil, err
	}
	return filler.Extract(ctx, descs, text)
}

// WithEmbeddedPrompt renders extraction prompts with the bundled template
// name, for example "extraction".
func WithEmbeddedPrompt(name string) (orchestrator.Option, error) {
	engine, err := prompt.NewEngine(prompt.WithFS(EmbeddedTemplates()))
	if err != nil {
		return nil, err
	}
	return orchestrator.WithPromptTemplate(engine, strings.TrimSpace(name)), nil
}
