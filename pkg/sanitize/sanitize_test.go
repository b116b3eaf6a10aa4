package sanitize

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "  \n\t", want: ""},
		{name: "plain text keeps lines", in: "  Name:   Ada\r\n\r\n\r\nEmail: ada@example.com  ", want: "Name: Ada\n\nEmail: ada@example.com"},
		{name: "comparison operators are not markup", in: "budget < 500 and > 100", want: "budget < 500 and > 100"},
		{name: "paragraphs become lines", in: "<p>Name: Ada</p><p>Role: engineer</p>", want: "Name: Ada\nRole: engineer"},
		{name: "entities decoded", in: "<div>Fish &amp; Chips &quot;Ltd&quot;</div>", want: `Fish & Chips "Ltd"`},
		{name: "mail header address survives", in: "From: Jane Doe <jane.doe@example.com>\nPhone 555-1234", want: "From: Jane Doe jane.doe@example.com\nPhone 555-1234"},
		{name: "url autolink survives", in: "See <https://example.com/a?b=1> for details", want: "See https://example.com/a?b=1 for details"},
		{name: "address inside markup survives", in: "<p>Reply to <b>Jane</b> <jane@example.com></p>", want: "Reply to Jane jane@example.com"},
		{name: "inline tags keep word boundaries", in: "Call<b>me</b>at<br>noon", want: "Call me at\nnoon"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Text(tc.in); got != tc.want {
				t.Fatalf("Text(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTextDropsScripts(t *testing.T) {
	got := Text(`<p>Serial SN-42</p><script>alert('x')</script><style>p{color:red}</style>`)
	if strings.Contains(got, "alert") || strings.Contains(got, "color") {
		t.Fatalf("expected script and style bodies to be removed, got %q", got)
	}
	if !strings.Contains(got, "Serial SN-42") {
		t.Fatalf("expected text content to remain, got %q", got)
	}
}

func TestHasMarkup(t *testing.T) {
	if HasMarkup("a < b") {
		t.Fatal("bare comparison must not count as markup")
	}
	if !HasMarkup("hello <em>world</em>") {
		t.Fatal("expected markup to be detected")
	}
	if HasMarkup("From: Jane Doe <jane.doe@example.com>") {
		t.Fatal("an autolinked address must not count as markup")
	}
	if HasMarkup("use <T> as the type parameter") {
		t.Fatal("unknown element names must not count as markup")
	}
}
