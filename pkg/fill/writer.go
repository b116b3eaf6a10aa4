package fill

import (
	"log/slog"
	"strings"

	"github.com/goliatone/go-formfill/internal/logging"
	"github.com/goliatone/go-formfill/pkg/dom"
	"github.com/goliatone/go-formfill/pkg/fields"
)

// DefaultMinFuzzyLength is the shortest string that takes part in substring
// matching of select and radio options.
const DefaultMinFuzzyLength = 2

// Skip reasons reported in Outcome.Reason.
const (
	ReasonNoElement   = "no element"
	ReasonSentinel    = "sentinel value"
	ReasonNoMatch     = "no matching option"
	ReasonInvalidDate = "unparseable date"
)

var sentinels = map[string]struct{}{
	"null":      {},
	"":          {},
	"n/a":       {},
	"none":      {},
	"no value":  {},
	"empty":     {},
	"undefined": {},
	"unknown":   {},
	"missing":   {},
}

var truthy = map[string]struct{}{
	"true":    {},
	"yes":     {},
	"1":       {},
	"checked": {},
	"on":      {},
}

// IsSentinel reports whether raw is one of the "no data" answers that must
// never overwrite form state.
func IsSentinel(raw string) bool {
	_, ok := sentinels[normalize(raw)]
	return ok
}

// IsTruthy reports whether raw means "checked".
func IsTruthy(raw string) bool {
	_, ok := truthy[normalize(raw)]
	return ok
}

// Outcome describes what a single write did.
type Outcome struct {
	Applied bool   `json:"applied"`
	Value   string `json:"value,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func skipped(reason string) Outcome {
	return Outcome{Reason: reason}
}

// Option customises a Writer.
type Option func(*Writer)

// WithLogger sets the logger used for debug warnings on skipped writes.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMinFuzzyLength sets the shortest option value, option label or input
// considered for substring matching. Values below 1 disable the guard.
func WithMinFuzzyLength(n int) Option {
	return func(w *Writer) {
		if n < 1 {
			n = 1
		}
		w.minFuzzy = n
	}
}

// WithISOWeeks formats week inputs with ISO-8601 week numbers.
func WithISOWeeks() Option {
	return func(w *Writer) {
		w.isoWeeks = true
	}
}

// Writer applies raw string values to form controls.
type Writer struct {
	logger   *slog.Logger
	minFuzzy int
	isoWeeks bool
}

// NewWriter constructs a Writer.
func NewWriter(options ...Option) *Writer {
	w := &Writer{
		logger:   logging.Discard(),
		minFuzzy: DefaultMinFuzzyLength,
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Apply writes raw into el, coercing it for kind, and dispatches bubbling
// input and change events on success. Sentinels, unmatched options and
// unparseable dates leave the control untouched. Apply never panics.
func (w *Writer) Apply(el *dom.Element, kind fields.Kind, raw string) Outcome {
	if el == nil {
		return skipped(ReasonNoElement)
	}
	norm := normalize(raw)
	if _, ok := sentinels[norm]; ok {
		w.debug("fill.skip", el, kind, raw, ReasonSentinel)
		return skipped(ReasonSentinel)
	}

	switch {
	case kind == fields.KindCheckbox:
		_, checked := truthy[norm]
		el.SetChecked(checked)
		emit(el)
		if checked {
			return Outcome{Applied: true, Value: "true"}
		}
		return Outcome{Applied: true, Value: "false"}

	case kind == fields.KindRadio:
		radio := w.pickRadio(el, norm)
		if radio == nil {
			w.debug("fill.skip", el, kind, raw, ReasonNoMatch)
			return skipped(ReasonNoMatch)
		}
		radio.SetChecked(true)
		emit(radio)
		return Outcome{Applied: true, Value: radio.AttrOr("value", "on")}

	case kind.IsDateLike():
		value, ok := normalizeDate(raw, kind, w.isoWeeks)
		if !ok {
			w.debug("fill.skip", el, kind, raw, ReasonInvalidDate)
			return skipped(ReasonInvalidDate)
		}
		el.SetValue(value)
		emit(el)
		return Outcome{Applied: true, Value: value}

	case kind == fields.KindSelect:
		opt := w.pickOption(el.Options(), norm)
		if opt == nil {
			w.debug("fill.skip", el, kind, raw, ReasonNoMatch)
			return skipped(ReasonNoMatch)
		}
		el.SelectOption(opt)
		emit(el)
		return Outcome{Applied: true, Value: opt.OptionValue()}

	default:
		el.SetValue(raw)
		emit(el)
		return Outcome{Applied: true, Value: raw}
	}
}

// ApplyElement derives the kind from the element itself and applies raw.
func (w *Writer) ApplyElement(el *dom.Element, raw string) Outcome {
	return w.Apply(el, KindOf(el), raw)
}

// KindOf returns the Kind a control would be described with.
func KindOf(el *dom.Element) fields.Kind {
	switch el.Tag() {
	case "textarea":
		return fields.KindTextarea
	case "select":
		return fields.KindSelect
	default:
		return fields.KindFor(el.Type())
	}
}

func (w *Writer) pickRadio(el *dom.Element, norm string) *dom.Element {
	group := el.RadioGroup()
	if len(group) == 0 {
		group = []*dom.Element{el}
	}
	candidates := make([]choice, 0, len(group))
	for _, radio := range group {
		label := ""
		if l := radio.Label(); l != nil {
			label = l.TextSkipping("select", "textarea", "option")
		}
		candidates = append(candidates, choice{
			el:    radio,
			value: normalize(radio.AttrOr("value", "on")),
			label: normalize(label),
		})
	}
	return w.match(candidates, norm)
}

func (w *Writer) pickOption(opts []*dom.Element, norm string) *dom.Element {
	candidates := make([]choice, 0, len(opts))
	for _, opt := range opts {
		candidates = append(candidates, choice{
			el:    opt,
			value: normalize(opt.OptionValue()),
			label: normalize(opt.Text()),
		})
	}
	return w.match(candidates, norm)
}

type choice struct {
	el    *dom.Element
	value string
	label string
}

// match returns the first exact value/label hit, else the first candidate
// whose value or label contains needle or is contained by it.
func (w *Writer) match(candidates []choice, needle string) *dom.Element {
	for _, c := range candidates {
		if c.value == needle || c.label == needle {
			return c.el
		}
	}
	if len(needle) < w.minFuzzy {
		return nil
	}
	for _, c := range candidates {
		if w.fuzzy(c.value, needle) || w.fuzzy(c.label, needle) {
			return c.el
		}
	}
	return nil
}

func (w *Writer) fuzzy(candidate, needle string) bool {
	if len(candidate) < w.minFuzzy {
		return false
	}
	return strings.Contains(candidate, needle) || strings.Contains(needle, candidate)
}

func (w *Writer) debug(event string, el *dom.Element, kind fields.Kind, raw, reason string) {
	w.logger.Debug(event,
		"field", fieldName(el),
		"kind", string(kind),
		"value", raw,
		"reason", reason,
	)
}

func fieldName(el *dom.Element) string {
	if name := el.Name(); name != "" {
		return name
	}
	if id := el.ID(); id != "" {
		return id
	}
	return el.Placeholder()
}

func emit(el *dom.Element) {
	el.Dispatch(dom.EventInput)
	el.Dispatch(dom.EventChange)
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
