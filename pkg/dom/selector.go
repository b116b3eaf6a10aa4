package dom

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// selector is the tiny subset of CSS the CLI and browser adapter need:
//
//	tag            form, input, select
//	#id            #signup
//	tag#id         form#signup
//	[attr=value]   [name=email]
//	tag[attr=v]    input[name="email"]
//	...:N          form:1 (zero-based index among matches)
type selector struct {
	tag        string
	id         string
	attrKey    string
	attrValue  string
	attrValued bool
	index      int
}

func parseSelector(raw string) (selector, error) {
	sel := selector{index: -1}
	s := strings.TrimSpace(raw)
	if s == "" {
		return sel, fmt.Errorf("dom: empty selector")
	}

	if i := strings.LastIndex(s, ":"); i >= 0 && !strings.Contains(s[i:], "]") {
		n, err := strconv.Atoi(s[i+1:])
		if err != nil || n < 0 {
			return sel, fmt.Errorf("dom: invalid selector index in %q", raw)
		}
		sel.index = n
		s = s[:i]
	}

	if i := strings.Index(s, "["); i >= 0 {
		if !strings.HasSuffix(s, "]") {
			return sel, fmt.Errorf("dom: unterminated attribute selector %q", raw)
		}
		body := s[i+1 : len(s)-1]
		s = s[:i]
		key, value, found := strings.Cut(body, "=")
		sel.attrKey = strings.ToLower(strings.TrimSpace(key))
		if found {
			sel.attrValue = strings.Trim(strings.TrimSpace(value), `"'`)
			sel.attrValued = true
		}
		if sel.attrKey == "" {
			return sel, fmt.Errorf("dom: empty attribute in selector %q", raw)
		}
	}

	if i := strings.Index(s, "#"); i >= 0 {
		sel.id = s[i+1:]
		s = s[:i]
	}
	sel.tag = strings.ToLower(strings.TrimSpace(s))
	if sel.tag == "" && sel.id == "" && sel.attrKey == "" {
		return sel, fmt.Errorf("dom: selector %q matches nothing", raw)
	}
	return sel, nil
}

func (s selector) matches(n *html.Node) bool {
	if s.tag != "" && s.tag != "*" && !strings.EqualFold(n.Data, s.tag) {
		return false
	}
	if s.id != "" && attr(n, "id") != s.id {
		return false
	}
	if s.attrKey != "" {
		if s.attrValued {
			return attr(n, s.attrKey) == s.attrValue
		}
		return hasAttr(n, s.attrKey)
	}
	return true
}
