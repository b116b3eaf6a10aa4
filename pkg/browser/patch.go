package browser

import (
	"strings"

	"github.com/goliatone/go-formfill/pkg/dom"
)

// Patch is the final state of one control touched by a fill, addressed by a
// CSS selector that also resolves on the live page.
type Patch struct {
	Selector  string `json:"selector"`
	Value     string `json:"value"`
	Checked   bool   `json:"checked"`
	Checkable bool   `json:"checkable"`
}

// Patches folds recorded input/change events into one patch per target, in
// first-touched order, carrying each target's current state. Targets that
// cannot be addressed (no id and no name) are dropped.
func Patches(events []dom.Event) []Patch {
	seen := make(map[*dom.Element]struct{}, len(events))
	var out []Patch
	for _, ev := range events {
		if ev.Type != dom.EventInput && ev.Type != dom.EventChange {
			continue
		}
		el := ev.Target
		if el == nil {
			continue
		}
		if _, ok := seen[el]; ok {
			continue
		}
		seen[el] = struct{}{}

		sel := selectorFor(el)
		if sel == "" {
			continue
		}
		p := Patch{Selector: sel}
		switch el.Type() {
		case "checkbox", "radio":
			p.Checkable = true
			p.Checked = el.Checked()
		default:
			p.Value = el.Value()
		}
		out = append(out, p)
	}
	return out
}

func selectorFor(el *dom.Element) string {
	if id := el.ID(); id != "" {
		return "#" + cssIdent(id)
	}
	name := el.Name()
	if name == "" {
		return ""
	}
	sel := el.Tag() + `[name="` + cssString(name) + `"]`
	if t := el.Type(); t == "checkbox" || t == "radio" {
		if value, ok := el.Attr("value"); ok {
			sel += `[value="` + cssString(value) + `"]`
		}
	}
	return sel
}

func cssString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `).Replace(s)
}

// cssIdent escapes characters that would end an id selector early.
func cssIdent(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '-' || r == '_' || r >= 0x80,
			r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteString(`\3`)
				b.WriteRune(r)
				b.WriteByte(' ')
				continue
			}
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
