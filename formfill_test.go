package formfill_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	formfill "github.com/goliatone/go-formfill"
	"github.com/goliatone/go-formfill/pkg/config"
	"github.com/goliatone/go-formfill/pkg/dom"
	"github.com/goliatone/go-formfill/pkg/fields"
	"github.com/goliatone/go-formfill/pkg/orchestrator"
	"github.com/goliatone/go-formfill/pkg/prompt"
	"github.com/goliatone/go-formfill/pkg/testsupport"
)

const contactForm = `<form id="contact">
  <label for="name">Name</label><input id="name" name="name">
  <input type="email" name="email">
  <select name="topic"><option value="">--</option><option value="sales">Sales</option><option value="support">Support</option></select>
</form>`

func ollamaConfig(t *testing.T, content string, prompts *[]string) config.Config {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if prompts != nil && len(req.Messages) > 0 {
			*prompts = append(*prompts, req.Messages[len(req.Messages)-1].Content)
		}
		body, _ := json.Marshal(map[string]any{"message": map[string]any{"content": content}})
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	p := cfg.Providers[config.ProviderOllama]
	p.Endpoint = srv.URL
	cfg.Providers[config.ProviderOllama] = p
	cfg.ActiveProvider = config.ProviderOllama
	return cfg
}

func TestFillHTML(t *testing.T) {
	cfg := ollamaConfig(t, `{"name":"Ada","email":"ada@example.com","topic":"Support"}`, nil)

	out, res, err := formfill.FillHTML(context.Background(), cfg, contactForm, "#contact", "Ada (ada@example.com) needs support")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if res.Status != orchestrator.StatusFilled {
		t.Fatalf("status: got %q", res.Status)
	}

	form, err := dom.MustParseString(out).Form("#contact")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	want := map[string]string{"name": "Ada", "email": "ada@example.com", "topic": "support"}
	if diff := cmp.Diff(want, testsupport.FieldValues(form)); diff != "" {
		t.Fatalf("filled values mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFillerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ActiveProvider = "nope"
	if _, err := formfill.NewFiller(cfg); err == nil {
		t.Fatal("expected a configuration error")
	}
}

func TestExtractOpenAPI(t *testing.T) {
	data, err := os.ReadFile("pkg/openapi/testdata/users.yaml")
	if err != nil {
		t.Fatalf("read spec: %v", err)
	}
	var prompts []string
	cfg := ollamaConfig(t, `{"name":"Ada Lovelace","plan":"pro","newsletter":true}`, &prompts)

	values, err := formfill.ExtractOpenAPI(context.Background(), cfg, data, "createUser", "Ada Lovelace wants the pro plan and the newsletter")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := map[string]string{"name": "Ada Lovelace", "plan": "pro", "newsletter": "true"}
	if diff := cmp.Diff(want, map[string]string(values)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(prompts) != 1 || !strings.Contains(prompts[0], "- plan (type: select)") {
		t.Fatalf("expected the operation fields in the prompt, got %q", prompts)
	}
}

func TestEmbeddedExtractionTemplateMatchesBuiltIn(t *testing.T) {
	descs := []fields.Descriptor{
		{Kind: fields.KindText, Name: "name", Label: "Full name", Placeholder: "Ada", Required: true},
		{Kind: fields.KindDate, Name: "born", Hint: "Date of birth"},
		{Kind: fields.KindSelect, Name: "plan", Options: []fields.Option{{Value: "basic", Label: "Basic"}, {Value: "pro", Label: "Pro"}}},
	}
	text := "Ada Lovelace, born 10 December 1815, wants Pro."

	engine, err := prompt.NewEngine(prompt.WithFS(formfill.EmbeddedTemplates()))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	got, err := engine.Render("extraction", prompt.TemplateData(descs, text))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff(prompt.BuildExtractionPrompt(descs, text), got); diff != "" {
		t.Fatalf("embedded template drifted from the built-in prompt (-want +got):\n%s", diff)
	}

	opt, err := formfill.WithEmbeddedPrompt("extraction")
	if err != nil || opt == nil {
		t.Fatalf("embedded prompt option: %v", err)
	}
}
