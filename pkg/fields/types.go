package fields

import (
	"strings"

	"github.com/goliatone/go-formfill/pkg/dom"
)

// Kind is the closed set of control kinds the writer dispatches on. Input
// subtypes outside the set are carried verbatim (for example "range" or
// "color") and treated as text-like.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindNumber   Kind = "number"
	KindTel      Kind = "tel"
	KindURL      Kind = "url"
	KindDate     Kind = "date"
	KindDateTime Kind = "datetime"
	KindTime     Kind = "time"
	KindMonth    Kind = "month"
	KindWeek     Kind = "week"
	KindTextarea Kind = "textarea"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
	KindRadio    Kind = "radio"
	KindRange    Kind = "range"
)

// IsDateLike reports whether values for the kind go through date/time
// normalisation.
func (k Kind) IsDateLike() bool {
	switch k {
	case KindDate, KindDateTime, KindTime, KindMonth, KindWeek:
		return true
	}
	return false
}

// HasOptions reports whether the kind is answered from a fixed option list.
func (k Kind) HasOptions() bool {
	return k == KindSelect || k == KindRadio
}

// Option is one choice of a select or radio group.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Descriptor is the normalised description of one fillable control or radio
// group. Element is nil for descriptors built from non-DOM sources.
type Descriptor struct {
	Element     *dom.Element `json:"-"`
	Kind        Kind         `json:"kind"`
	Name        string       `json:"name,omitempty"`
	Label       string       `json:"label,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
	Pattern     string       `json:"pattern,omitempty"`
	Hint        string       `json:"hint,omitempty"`
	Options     []Option     `json:"options,omitempty"`
	Required    bool         `json:"required,omitempty"`
	Disabled    bool         `json:"disabled,omitempty"`
}

// Identifier is the key extracted data must use to address the field:
// name, then label, then placeholder. It is empty for anonymous fields.
func (d Descriptor) Identifier() string {
	switch {
	case d.Name != "":
		return d.Name
	case d.Label != "":
		return d.Label
	default:
		return d.Placeholder
	}
}

// OptionLabels returns the display labels of the descriptor's options.
func (d Descriptor) OptionLabels() []string {
	if len(d.Options) == 0 {
		return nil
	}
	out := make([]string, 0, len(d.Options))
	for _, opt := range d.Options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		out = append(out, label)
	}
	return out
}

// KindFor maps an input type attribute to a Kind.
func KindFor(inputType string) Kind {
	t := strings.ToLower(strings.TrimSpace(inputType))
	switch t {
	case "":
		return KindText
	case "datetime-local", "datetime":
		return KindDateTime
	default:
		return Kind(t)
	}
}

// Filter keeps the descriptors whose identifier is in allow. A nil or empty
// allow-list keeps everything; anonymous descriptors never survive a
// non-empty allow-list.
func Filter(descs []Descriptor, allow []string) []Descriptor {
	if len(allow) == 0 {
		return descs
	}
	set := make(map[string]struct{}, len(allow))
	for _, name := range allow {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	out := make([]Descriptor, 0, len(descs))
	for _, d := range descs {
		id := d.Identifier()
		if id == "" {
			continue
		}
		if _, ok := set[id]; ok {
			out = append(out, d)
		}
	}
	return out
}
