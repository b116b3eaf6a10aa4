// Package sanitize turns pasted source text into plain text before it is
// embedded in a prompt. Markup is stripped with a strict bluemonday policy,
// script and style bodies are dropped, entities are decoded and whitespace is
// normalised line by line.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	markupPattern   = regexp.MustCompile(`(?i)<!--|<!doctype\b|</?(?:` + elementNames + `)(?:\s[^>]*)?/?>`)
	autolinkPattern = regexp.MustCompile(`<((?:[A-Za-z][A-Za-z0-9+.\-]*://|mailto:)[^\s<>]+|[^\s<>@"]+@[^\s<>@"]+)>`)
	spacePattern    = regexp.MustCompile(`[ \t\f\v\p{Zs}]+`)
	breakTagPattern = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/tr|/h[1-6])\s*/?>`)
)

const elementNames = `a|abbr|address|article|aside|b|blockquote|body|br|button|caption|code|col|colgroup|` +
	`dd|del|details|div|dl|dt|em|fieldset|figcaption|figure|font|footer|form|h[1-6]|head|header|hr|html|` +
	`i|iframe|img|input|ins|label|legend|li|link|main|mark|meta|nav|noscript|ol|option|p|pre|q|s|script|` +
	`section|select|small|span|strong|style|sub|summary|sup|table|tbody|td|textarea|tfoot|th|thead|title|` +
	`tr|u|ul`

// Text returns raw as plain text. Autolinks such as <jane@example.com> keep
// their address. Input without markup only has its whitespace normalised.
func Text(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	text := unwrapAutolinks(raw)
	if markupPattern.MatchString(text) {
		text = breakTagPattern.ReplaceAllStringFunc(text, func(tag string) string {
			return tag + "\n"
		})
		text = html.UnescapeString(textSanitizer().Sanitize(text))
	}
	return normalizeSpace(text)
}

// HasMarkup reports whether raw contains HTML elements, comments or a
// doctype. Autolinks and comparison operators do not count.
func HasMarkup(raw string) bool {
	return markupPattern.MatchString(unwrapAutolinks(raw))
}

// unwrapAutolinks drops the brackets around mail-style autolinks
// (<user@host>, <scheme://...>) so they survive tag stripping.
func unwrapAutolinks(raw string) string {
	return autolinkPattern.ReplaceAllString(raw, "$1")
}

func normalizeSpace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(spacePattern.ReplaceAllString(line, " "))
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AddSpaceWhenStrippingTag(true)
		textPolicy = policy
	})
	return textPolicy
}
