package fields

import (
	"strings"

	"github.com/goliatone/go-formfill/pkg/dom"
)

// DefaultHintAttribute is the author-supplied guidance attribute.
const DefaultHintAttribute = "data-ai-hint"

var excludedInputTypes = map[string]struct{}{
	"submit": {},
	"reset":  {},
	"button": {},
	"hidden": {},
	"image":  {},
	"file":   {},
}

// labelSkipTags are ignored when reading a wrapping label's text so that the
// label of a select does not absorb the option texts.
var labelSkipTags = []string{"select", "textarea", "option", "script", "style"}

// BuilderOption customises Build and Describe.
type BuilderOption func(*builderConfig)

type builderConfig struct {
	hintAttr string
}

// WithHintAttribute overrides the attribute hints are read from.
func WithHintAttribute(name string) BuilderOption {
	return func(cfg *builderConfig) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.hintAttr = trimmed
		}
	}
}

func newBuilderConfig(opts []BuilderOption) builderConfig {
	cfg := builderConfig{hintAttr: DefaultHintAttribute}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Build walks container and returns one descriptor per fillable control, in
// document order. Radios sharing a name collapse into one descriptor whose
// element is the first member; unnamed radios are dropped. Build only reads
// the document.
func Build(container *dom.Element, opts ...BuilderOption) []Descriptor {
	if container == nil {
		return nil
	}
	cfg := newBuilderConfig(opts)

	var out []Descriptor
	radioIndex := make(map[string]int)

	for _, el := range container.Descendants("input", "textarea", "select") {
		if isExcluded(el) {
			continue
		}
		if el.Tag() == "input" && el.Type() == "radio" {
			name := el.Name()
			if name == "" {
				continue
			}
			if idx, ok := radioIndex[name]; ok {
				mergeRadio(&out[idx], el, cfg)
				continue
			}
			radioIndex[name] = len(out)
			out = append(out, newRadioGroup(el, cfg))
			continue
		}
		out = append(out, describeControl(el, cfg))
	}
	return out
}

// Describe builds the descriptor for a single control. A radio yields the
// descriptor of its whole group within the owning form. ok is false when el
// is not a fillable control.
func Describe(el *dom.Element, opts ...BuilderOption) (Descriptor, bool) {
	if el == nil || !el.IsControl() || isExcluded(el) {
		return Descriptor{}, false
	}
	cfg := newBuilderConfig(opts)
	if el.Tag() == "input" && el.Type() == "radio" {
		group := el.RadioGroup()
		if len(group) == 0 {
			return Descriptor{}, false
		}
		desc := newRadioGroup(group[0], cfg)
		for _, member := range group[1:] {
			mergeRadio(&desc, member, cfg)
		}
		return desc, true
	}
	return describeControl(el, cfg), true
}

func isExcluded(el *dom.Element) bool {
	if el.Tag() != "input" {
		return false
	}
	_, excluded := excludedInputTypes[el.Type()]
	return excluded
}

func describeControl(el *dom.Element, cfg builderConfig) Descriptor {
	desc := Descriptor{
		Element:     el,
		Name:        el.Name(),
		Label:       labelText(el),
		Placeholder: el.Placeholder(),
		Pattern:     el.Pattern(),
		Hint:        hintOf(el, cfg),
		Required:    el.Required(),
		Disabled:    el.Disabled(),
	}
	switch el.Tag() {
	case "textarea":
		desc.Kind = KindTextarea
	case "select":
		desc.Kind = KindSelect
		desc.Options = selectOptions(el)
	default:
		desc.Kind = KindFor(el.Type())
	}
	if desc.Kind == KindCheckbox {
		desc.Placeholder = el.AttrOr("value", "")
	}
	return desc
}

func newRadioGroup(first *dom.Element, cfg builderConfig) Descriptor {
	desc := Descriptor{
		Element:     first,
		Kind:        KindRadio,
		Name:        first.Name(),
		Label:       labelText(first),
		Placeholder: first.AttrOr("value", ""),
		Hint:        hintOf(first, cfg),
		Required:    first.Required(),
		Disabled:    first.Disabled(),
	}
	desc.Options = append(desc.Options, radioOption(first))
	return desc
}

func mergeRadio(desc *Descriptor, member *dom.Element, cfg builderConfig) {
	desc.Options = append(desc.Options, radioOption(member))
	if hint := hintOf(member, cfg); hint != "" {
		if desc.Hint == "" {
			desc.Hint = hint
		} else {
			desc.Hint += " " + hint
		}
	}
	desc.Required = desc.Required || member.Required()
}

func radioOption(el *dom.Element) Option {
	value := el.AttrOr("value", "on")
	label := labelText(el)
	if label == "" {
		label = value
	}
	return Option{Value: value, Label: label}
}

func selectOptions(el *dom.Element) []Option {
	opts := el.Options()
	if len(opts) == 0 {
		return nil
	}
	out := make([]Option, 0, len(opts))
	for _, opt := range opts {
		out = append(out, Option{Value: opt.OptionValue(), Label: opt.Text()})
	}
	return out
}

// labelText resolves the control's label once: <label for=id> first, then a
// wrapping <label>. Missing labels yield "".
func labelText(el *dom.Element) string {
	label := el.Label()
	if label == nil {
		return ""
	}
	return label.TextSkipping(labelSkipTags...)
}

func hintOf(el *dom.Element, cfg builderConfig) string {
	return strings.TrimSpace(el.AttrOr(cfg.hintAttr, ""))
}
