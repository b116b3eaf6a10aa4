package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is a handle on a single element node.
type Element struct {
	doc       *Document
	node      *html.Node
	listeners map[string][]Listener
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	if e == nil {
		return nil
	}
	return e.doc
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	if e == nil {
		return ""
	}
	return strings.ToLower(e.node.Data)
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	return attr(e.node, name), hasAttr(e.node, name)
}

// AttrOr returns the attribute value or fallback when missing.
func (e *Element) AttrOr(name, fallback string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return fallback
}

// HasAttr reports whether the attribute is present, regardless of value.
func (e *Element) HasAttr(name string) bool {
	return e != nil && hasAttr(e.node, name)
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	if e == nil {
		return
	}
	for i, a := range e.node.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr drops an attribute if present.
func (e *Element) RemoveAttr(name string) {
	if e == nil {
		return
	}
	out := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			continue
		}
		out = append(out, a)
	}
	e.node.Attr = out
}

func (e *Element) ID() string { return e.AttrOr("id", "") }
func (e *Element) Name() string { return e.AttrOr("name", "") }
func (e *Element) Placeholder() string { return e.AttrOr("placeholder", "") }
func (e *Element) Pattern() string { return e.AttrOr("pattern", "") }
func (e *Element) Disabled() bool { return e.HasAttr("disabled") }
func (e *Element) Required() bool { return e.HasAttr("required") }

// Type returns the lower-cased type attribute. Inputs without one report
// "text", matching browser behaviour.
func (e *Element) Type() string {
	if e == nil {
		return ""
	}
	t := strings.ToLower(strings.TrimSpace(e.AttrOr("type", "")))
	if t == "" && e.node.DataAtom == atom.Input {
		return "text"
	}
	return t
}

// IsControl reports whether the element is an input, textarea or select.
func (e *Element) IsControl() bool {
	if e == nil {
		return false
	}
	switch e.node.DataAtom {
	case atom.Input, atom.Textarea, atom.Select:
		return true
	}
	return false
}

// Value returns the control's current value: the value attribute for inputs,
// the text content for textareas and the selected option's value for selects.
func (e *Element) Value() string {
	if e == nil {
		return ""
	}
	switch e.node.DataAtom {
	case atom.Textarea:
		return rawText(e.node)
	case atom.Select:
		if opt := e.SelectedOption(); opt != nil {
			return opt.OptionValue()
		}
		return ""
	case atom.Option:
		return e.OptionValue()
	default:
		return e.AttrOr("value", "")
	}
}

// SetValue assigns a value. For selects the value must equal an option value
// exactly; SetValue reports false when nothing was changed.
func (e *Element) SetValue(value string) bool {
	if e == nil {
		return false
	}
	switch e.node.DataAtom {
	case atom.Textarea:
		for c := e.node.FirstChild; c != nil; {
			next := c.NextSibling
			e.node.RemoveChild(c)
			c = next
		}
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: value})
		return true
	case atom.Select:
		for _, opt := range e.Options() {
			if opt.OptionValue() == value {
				e.SelectOption(opt)
				return true
			}
		}
		return false
	default:
		e.SetAttr("value", value)
		return true
	}
}

// Checked reports the checked state of a checkbox or radio.
func (e *Element) Checked() bool {
	return e.HasAttr("checked")
}

// SetChecked updates the checked state. Checking a radio unchecks the other
// members of its group, as a browser would.
func (e *Element) SetChecked(checked bool) {
	if e == nil {
		return
	}
	if !checked {
		e.RemoveAttr("checked")
		return
	}
	if e.Type() == "radio" && e.Name() != "" {
		for _, other := range e.RadioGroup() {
			if other != e {
				other.RemoveAttr("checked")
			}
		}
	}
	e.SetAttr("checked", "")
}

// RadioGroup returns every radio sharing this element's name within the same
// form (or the whole document for form-less radios), in document order.
func (e *Element) RadioGroup() []*Element {
	if e == nil || e.Name() == "" {
		return nil
	}
	scope := e.Form()
	var root *html.Node
	if scope != nil {
		root = scope.node
	} else {
		root = e.doc.root
	}
	var out []*Element
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Input &&
			strings.EqualFold(attr(n, "type"), "radio") && attr(n, "name") == e.Name() {
			out = append(out, e.doc.wrap(n))
		}
		return true
	})
	return out
}

// Options returns the <option> descendants of a select (including those
// nested in <optgroup>).
func (e *Element) Options() []*Element {
	if e == nil || e.node.DataAtom != atom.Select {
		return nil
	}
	return e.Descendants("option")
}

// SelectedOption returns the selected option, falling back to the first
// option for single selects.
func (e *Element) SelectedOption() *Element {
	opts := e.Options()
	for _, opt := range opts {
		if opt.HasAttr("selected") {
			return opt
		}
	}
	if len(opts) > 0 && !e.HasAttr("multiple") {
		return opts[0]
	}
	return nil
}

// SelectOption marks opt as the only selected option of e.
func (e *Element) SelectOption(opt *Element) {
	for _, o := range e.Options() {
		if o == opt {
			o.SetAttr("selected", "")
		} else {
			o.RemoveAttr("selected")
		}
	}
}

// OptionValue returns an option's value attribute, defaulting to its text.
func (e *Element) OptionValue() string {
	if v, ok := e.Attr("value"); ok {
		return v
	}
	return e.Text()
}

// Text returns the element's text content with whitespace collapsed.
func (e *Element) Text() string {
	return e.TextSkipping()
}

// TextSkipping returns the collapsed text content, ignoring the subtrees of
// the named tags.
func (e *Element) TextSkipping(tags ...string) string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(c.Data)
				b.WriteByte(' ')
			case html.ElementNode:
				if containsFold(tags, c.Data) {
					continue
				}
				visit(c)
			}
		}
	}
	visit(e.node)
	return strings.Join(strings.Fields(b.String()), " ")
}

// Parent returns the nearest element ancestor.
func (e *Element) Parent() *Element {
	if e == nil {
		return nil
	}
	for p := e.node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return e.doc.wrap(p)
		}
	}
	return nil
}

// Closest returns the nearest ancestor with the given tag (excluding e).
func (e *Element) Closest(tag string) *Element {
	for p := e.Parent(); p != nil; p = p.Parent() {
		if strings.EqualFold(p.node.Data, tag) {
			return p
		}
	}
	return nil
}

// Form returns the form owning this control: the element named by the form
// attribute when present, otherwise the closest <form> ancestor.
func (e *Element) Form() *Element {
	if e == nil {
		return nil
	}
	if id, ok := e.Attr("form"); ok && id != "" {
		if f := e.doc.ElementByID(id); f != nil && f.Tag() == "form" {
			return f
		}
	}
	return e.Closest("form")
}

// Descendants returns descendant elements whose tag is in tags (all elements
// when tags is empty), in document order.
func (e *Element) Descendants(tags ...string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	walk(e.node, func(n *html.Node) bool {
		if n == e.node || n.Type != html.ElementNode {
			return true
		}
		if len(tags) == 0 || containsFold(tags, n.Data) {
			out = append(out, e.doc.wrap(n))
		}
		return true
	})
	return out
}

// Find returns the first descendant matching selector.
func (e *Element) Find(selector string) *Element {
	if e == nil {
		return nil
	}
	sel, err := parseSelector(selector)
	if err != nil {
		return nil
	}
	matches := e.doc.match(e.node, sel)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// Label returns the label associated with the control: a <label for> whose
// attribute equals the control's id, else the closest wrapping <label>.
func (e *Element) Label() *Element {
	if e == nil {
		return nil
	}
	if id := e.ID(); id != "" {
		var found *html.Node
		walk(e.doc.root, func(n *html.Node) bool {
			if n.Type == html.ElementNode && n.DataAtom == atom.Label && attr(n, "for") == id {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			return e.doc.wrap(found)
		}
	}
	return e.Closest("label")
}

func rawText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
