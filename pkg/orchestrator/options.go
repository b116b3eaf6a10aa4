package orchestrator

import (
	"log/slog"
	"strings"

	"github.com/goliatone/go-formfill/pkg/fields"
	"github.com/goliatone/go-formfill/pkg/fill"
	"github.com/goliatone/go-formfill/pkg/prompt"
	"github.com/goliatone/go-formfill/pkg/review"
)

const (
	defaultMaxTokens        = 1000
	singleFieldMaxTokens    = 100
	defaultFillLogComponent = "fill"
)

// Option customises a Filler.
type Option func(*Filler)

// WithLogger sets the pipeline logger. It takes precedence over WithDebug.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithDebug enables fill pipeline logging through the shared component
// logger. It mirrors config.Debug.Fill.
func WithDebug(enabled bool) Option {
	return func(f *Filler) {
		f.debug = enabled
	}
}

// WithReviewer runs r on the extracted values before they are written.
func WithReviewer(r review.Reviewer) Option {
	return func(f *Filler) {
		f.reviewer = r
	}
}

// WithSanitizer transforms the source text before it is embedded in the
// prompt, for example sanitize.Text.
func WithSanitizer(fn func(string) string) Option {
	return func(f *Filler) {
		f.sanitize = fn
	}
}

// WithPromptTemplate renders the extraction prompt with engine instead of the
// built-in composer. name is a template file or inline template content.
func WithPromptTemplate(engine *prompt.Engine, name string) Option {
	return func(f *Filler) {
		if engine == nil || strings.TrimSpace(name) == "" {
			return
		}
		f.engine = engine
		f.template = name
	}
}

// WithWriterOptions forwards options to the value writer.
func WithWriterOptions(opts ...fill.Option) Option {
	return func(f *Filler) {
		f.writerOpts = append(f.writerOpts, opts...)
	}
}

// WithFieldOptions forwards options to the field model builder.
func WithFieldOptions(opts ...fields.BuilderOption) Option {
	return func(f *Filler) {
		f.fieldOpts = append(f.fieldOpts, opts...)
	}
}

// WithMaxTokens caps the extraction response length.
func WithMaxTokens(n int) Option {
	return func(f *Filler) {
		if n > 0 {
			f.maxTokens = n
		}
	}
}

// WithModel overrides the provider's selected model per request.
func WithModel(name string) Option {
	return func(f *Filler) {
		f.model = strings.TrimSpace(name)
	}
}

// WithFields sets the initial allow-list. See Filler.SetFields.
func WithFields(names ...string) Option {
	return func(f *Filler) {
		f.fields = cleanNames(names)
	}
}

func cleanNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
