package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNotFound is returned when a selector does not match any element.
var ErrNotFound = errors.New("dom: element not found")

// Document owns a parsed HTML tree plus the listeners observing it.
type Document struct {
	root      *html.Node
	elements  map[*html.Node]*Element
	listeners []Listener
}

// Parse reads an HTML document (or fragment; the parser adds the implied
// html/head/body wrappers) from r.
func Parse(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, errors.New("dom: reader is required")
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	return &Document{
		root:     root,
		elements: make(map[*html.Node]*Element),
	}, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// MustParseString panics when markup cannot be parsed. Intended for tests and
// static fixtures.
func MustParseString(markup string) *Document {
	doc, err := ParseString(markup)
	if err != nil {
		panic(err)
	}
	return doc
}

// Render writes the current state of the document, including every value
// written by the fill pipeline, back out as HTML.
func (d *Document) Render(w io.Writer) error {
	if d == nil || d.root == nil {
		return errors.New("dom: document is nil")
	}
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("dom: render: %w", err)
	}
	return nil
}

// String renders the document to a string, returning an empty string on
// failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Body returns the <body> element, which every parsed document has.
func (d *Document) Body() *Element {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			found = n
			return false
		}
		return true
	})
	return d.wrap(found)
}

// Find returns the first element matching selector, or nil.
func (d *Document) Find(selector string) *Element {
	matches := d.FindAll(selector)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// FindAll returns every element matching selector in document order. An
// indexed selector (`form:1`) yields at most one element.
func (d *Document) FindAll(selector string) []*Element {
	if d == nil {
		return nil
	}
	sel, err := parseSelector(selector)
	if err != nil {
		return nil
	}
	return d.match(d.root, sel)
}

// Form resolves a form by selector. An empty selector returns the first form
// in the document.
func (d *Document) Form(selector string) (*Element, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		selector = "form"
	}
	el := d.Find(selector)
	if el == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	return el, nil
}

// ElementByID returns the element whose id attribute equals id.
func (d *Document) ElementByID(id string) *Element {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return d.wrap(found)
}

// AddListener registers a document-level listener. Bubbling events reach it
// after every element listener on the target's ancestor path.
func (d *Document) AddListener(fn Listener) {
	if fn == nil {
		return
	}
	d.listeners = append(d.listeners, fn)
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

func (d *Document) match(root *html.Node, sel selector) []*Element {
	var out []*Element
	count := 0
	walk(root, func(n *html.Node) bool {
		if n == root || n.Type != html.ElementNode || !sel.matches(n) {
			return true
		}
		if sel.index >= 0 {
			if count == sel.index {
				out = append(out, d.wrap(n))
				return false
			}
			count++
			return true
		}
		out = append(out, d.wrap(n))
		return true
	})
	return out
}

// walk visits n and its descendants depth-first in document order. Returning
// false from fn stops the walk.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}
