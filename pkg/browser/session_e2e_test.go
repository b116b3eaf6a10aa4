//go:build e2e

package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/goliatone/go-formfill/pkg/dom"
	"github.com/goliatone/go-formfill/pkg/fields"
	"github.com/goliatone/go-formfill/pkg/fill"
)

const livePage = `<!doctype html><html><body>
<form id="signup">
  <input id="email" name="email">
  <input type="checkbox" name="terms" value="yes">
</form>
<script>
  window.changes = [];
  document.addEventListener("change", function (e) { window.changes.push(e.target.name); });
</script>
</body></html>`

func TestSessionRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(livePage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Open(ctx, srv.URL)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	markup, err := s.FormHTML(ctx, "#signup")
	if err != nil {
		t.Fatalf("form html: %v", err)
	}
	if !strings.Contains(markup, `name="email"`) {
		t.Fatalf("unexpected markup %q", markup)
	}

	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	recorder := dom.NewRecorder(doc)
	w := fill.NewWriter()
	w.Apply(doc.Find("#email"), fields.KindEmail, "ada@example.com")
	w.Apply(doc.Find("input[name=terms]"), fields.KindCheckbox, "yes")

	if err := s.Replay(ctx, recorder.Events()); err != nil {
		t.Fatalf("replay: %v", err)
	}

	var email string
	var checked bool
	var changes []string
	err = chromedp.Run(s.ctx,
		chromedp.Value("#email", &email, chromedp.ByQuery),
		chromedp.Evaluate(`document.querySelector("input[name=terms]").checked`, &checked),
		chromedp.Evaluate(`window.changes`, &changes),
	)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if email != "ada@example.com" || !checked {
		t.Fatalf("live page not patched: email=%q checked=%v", email, checked)
	}
	if strings.Join(changes, ",") != "email,terms" {
		t.Fatalf("unexpected change events %v", changes)
	}

	if err := s.Replay(ctx, []dom.Event{{Type: dom.EventChange, Target: dom.MustParseString(`<input id="gone">`).Find("#gone")}}); err == nil {
		t.Fatal("expected missing target error")
	}
}
