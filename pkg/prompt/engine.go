package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formfill/pkg/fields"
)

// EngineOption configures an Engine before construction.
type EngineOption func(*engineConfig)

type engineConfig struct {
	baseDir    string
	templates  fs.FS
	extension  string
	globalData map[string]any
}

// WithBaseDir loads named templates from a directory on disk.
func WithBaseDir(dir string) EngineOption {
	return func(cfg *engineConfig) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads named templates from an fs.FS.
func WithFS(files fs.FS) EngineOption {
	return func(cfg *engineConfig) {
		cfg.templates = files
	}
}

// WithExtension overrides the extension appended to template names.
func WithExtension(ext string) EngineOption {
	return func(cfg *engineConfig) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) EngineOption {
	return func(cfg *engineConfig) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// Engine renders caller-supplied pongo2 prompt templates. Output is never
// HTML-escaped: prompts are plain text.
type Engine struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	files     fs.FS
	templates map[string]*pongo2.Template
	tplExt    string
}

// NewEngine constructs an Engine. Without a base dir or fs.FS only inline
// templates can be rendered.
func NewEngine(options ...EngineOption) (*Engine, error) {
	cfg := &engineConfig{extension: ".tpl"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	files := cfg.templates
	if files == nil && cfg.baseDir != "" {
		info, err := os.Stat(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("prompt: template dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("prompt: template dir %q is not a directory", cfg.baseDir)
		}
		files = os.DirFS(cfg.baseDir)
	}

	var loaders []pongo2.TemplateLoader
	if files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(files))
	}

	engine := &Engine{
		set:       pongo2.NewSet("formfill", loaders...),
		files:     files,
		templates: make(map[string]*pongo2.Template),
		tplExt:    cfg.extension,
	}
	registerDefaultFilters()

	if len(cfg.globalData) > 0 {
		engine.set.Globals = make(pongo2.Context, len(cfg.globalData))
		engine.set.Globals.Update(pongo2.Context(cfg.globalData))
	}
	return engine, nil
}

// Render executes a named template, or name itself when it contains template
// markup.
func (e *Engine) Render(name string, data map[string]any) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("prompt: engine is nil")
	}

	var (
		tmpl *pongo2.Template
		err  error
	)
	if isTemplateContent(name) {
		tmpl, err = e.compile(name, []byte(name))
	} else {
		tmpl, err = e.load(name)
	}
	if err != nil {
		return "", err
	}

	ctx := pongo2.Context{}
	for key, value := range data {
		ctx[key] = value
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("prompt: execute template: %w", err)
	}
	return buf.String(), nil
}

// RegisterFilter registers a template filter. Filters are global to pongo2.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("prompt: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("prompt: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

func (e *Engine) load(name string) (*pongo2.Template, error) {
	path := name
	if !strings.HasSuffix(path, e.tplExt) {
		path += e.tplExt
	}

	e.mu.RLock()
	tmpl, ok := e.templates[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	if e.files == nil {
		return nil, fmt.Errorf("prompt: template %q: no template source configured", name)
	}
	raw, err := fs.ReadFile(e.files, path)
	if err != nil {
		return nil, fmt.Errorf("prompt: load template %q: %w", path, err)
	}
	tmpl, err = e.compile(path, raw)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.templates[path] = tmpl
	e.mu.Unlock()
	return tmpl, nil
}

func (e *Engine) compile(label string, raw []byte) (*pongo2.Template, error) {
	wrapped := make([]byte, 0, len(raw)+48)
	wrapped = append(wrapped, "{% autoescape off %}"...)
	wrapped = append(wrapped, raw...)
	wrapped = append(wrapped, "{% endautoescape %}"...)

	tmpl, err := e.set.FromBytes(wrapped)
	if err != nil {
		if isTemplateContent(label) {
			label = "inline"
		}
		return nil, fmt.Errorf("prompt: parse template %s: %w", label, err)
	}
	return tmpl, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

// TemplateData is the context handed to extraction templates: "text" holds
// the source text and "fields" one map per addressable field with the keys
// identifier, kind, label, placeholder, pattern, hint, format, required and
// options.
func TemplateData(descs []fields.Descriptor, sourceText string) map[string]any {
	items := make([]map[string]any, 0, len(descs))
	for _, desc := range descs {
		id := desc.Identifier()
		if id == "" {
			continue
		}
		items = append(items, map[string]any{
			"identifier":  id,
			"kind":        string(desc.Kind),
			"label":       desc.Label,
			"placeholder": desc.Placeholder,
			"pattern":     desc.Pattern,
			"hint":        desc.Hint,
			"format":      FormatHint(desc.Kind),
			"required":    desc.Required,
			"options":     optionLabels(desc),
		})
	}
	return map[string]any{
		"fields": items,
		"text":   sourceText,
	}
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("bulleted") {
		_ = pongo2.RegisterFilter("bulleted", filterBulleted)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterBulleted renders a list as "- item" lines.
func filterBulleted(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if !in.CanSlice() || in.Len() == 0 {
		return pongo2.AsValue(""), nil
	}
	lines := make([]string, 0, in.Len())
	for i := 0; i < in.Len(); i++ {
		lines = append(lines, "- "+in.Index(i).String())
	}
	return pongo2.AsValue(strings.Join(lines, "\n")), nil
}
