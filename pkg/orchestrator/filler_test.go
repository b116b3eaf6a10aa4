package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/dom"
	"github.com/goliatone/go-formfill/pkg/fields"
	"github.com/goliatone/go-formfill/pkg/fill"
	"github.com/goliatone/go-formfill/pkg/orchestrator"
	"github.com/goliatone/go-formfill/pkg/prompt"
	"github.com/goliatone/go-formfill/pkg/provider"
	"github.com/goliatone/go-formfill/pkg/response"
	"github.com/goliatone/go-formfill/pkg/review"
	"github.com/goliatone/go-formfill/pkg/sanitize"
	"github.com/goliatone/go-formfill/pkg/testsupport"
)

type fakeProvider struct {
	mu         sync.Mutex
	name       string
	structured bool
	content    *string
	err        error
	requests   []provider.ChatRequest
}

func answering(content string) *fakeProvider {
	return &fakeProvider{name: "fake", structured: true, content: &content}
}

func (f *fakeProvider) Descriptor() provider.Descriptor {
	return provider.Descriptor{Name: f.name, Locality: provider.Local}
}

func (f *fakeProvider) Chat(_ context.Context, req provider.ChatRequest) (provider.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return provider.ChatResponse{}, f.err
	}
	return provider.ChatResponse{Content: f.content, Model: "fake-model"}, nil
}

func (f *fakeProvider) ListModels(context.Context) ([]string, error) {
	return []string{"fake-model"}, nil
}

func (f *fakeProvider) IsAvailable(context.Context) bool { return true }

func (f *fakeProvider) SelectedModel() string { return "fake-model" }

func (f *fakeProvider) SetSelectedModel(context.Context, string) error { return nil }

func (f *fakeProvider) SupportsStructuredOutput() bool { return f.structured }

func (f *fakeProvider) calls() []provider.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.ChatRequest(nil), f.requests...)
}

func loadForm(t *testing.T, fixture, selector string) (*dom.Document, *dom.Element) {
	t.Helper()
	doc := testsupport.MustLoadHTML(t, filepath.Join("testdata", fixture))
	form, err := doc.Form(selector)
	if err != nil {
		t.Fatalf("form %s: %v", selector, err)
	}
	return doc, form
}

func userPrompt(t *testing.T, req provider.ChatRequest) string {
	t.Helper()
	if len(req.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(req.Messages))
	}
	return req.Messages[1].Content
}

func TestFillFromTextScenario(t *testing.T) {
	doc, form := loadForm(t, "glider.html", "#inspection")
	recorder := dom.NewRecorder(doc)
	p := answering(`{"manufacturer":"ozone","serialNumber":"123456789","remarks":"good condition"}`)

	res, err := orchestrator.New(p).FillFromText(context.Background(), form, "Ozone, 123456789, good condition")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	if res.Status != orchestrator.StatusFilled {
		t.Fatalf("expected filled status, got %q", res.Status)
	}
	if diff := cmp.Diff([]string{"manufacturer", "serialNumber", "remarks"}, res.Applied); diff != "" {
		t.Fatalf("applied mismatch (-want +got):\n%s", diff)
	}
	want := map[string]string{
		"manufacturer": "ozone",
		"serialNumber": "123456789",
		"remarks":      "good condition",
	}
	if diff := cmp.Diff(want, testsupport.FieldValues(form)); diff != "" {
		t.Fatalf("form values mismatch (-want +got):\n%s", diff)
	}
	if got := len(recorder.Events()); got != 6 {
		t.Fatalf("expected input and change per field, got %d events", got)
	}

	calls := p.calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one provider call, got %d", len(calls))
	}
	req := calls[0]
	if req.Messages[0].Role != provider.RoleSystem || req.Messages[0].Content != prompt.SystemPrompt {
		t.Fatalf("unexpected system message %+v", req.Messages[0])
	}
	if !strings.Contains(userPrompt(t, req), "Ozone, 123456789, good condition") {
		t.Fatal("prompt must embed the source text")
	}
	props, ok := req.Format["properties"].(map[string]any)
	if !ok || len(props) != 3 {
		t.Fatalf("expected schema with three properties, got %v", req.Format)
	}
	if req.MaxTokens <= 0 {
		t.Fatalf("expected a token cap, got %d", req.MaxTokens)
	}
}

func TestFillFromTextMalformedResponseLeavesFormUntouched(t *testing.T) {
	doc, form := loadForm(t, "glider.html", "#inspection")
	recorder := dom.NewRecorder(doc)
	before := testsupport.FieldValues(form)

	res, err := orchestrator.New(answering("not valid json")).FillFromText(context.Background(), form, "Ozone, 123456789, good condition")
	if err != nil {
		t.Fatalf("malformed responses must not error: %v", err)
	}
	if res.Status != orchestrator.StatusNoData {
		t.Fatalf("expected no_data status, got %q", res.Status)
	}
	if diff := cmp.Diff(before, testsupport.FieldValues(form)); diff != "" {
		t.Fatalf("form changed (-before +after):\n%s", diff)
	}
	if len(recorder.Events()) != 0 {
		t.Fatalf("expected no events, got %d", len(recorder.Events()))
	}
}

func TestFillFromTextProviderFailureWritesNothing(t *testing.T) {
	cases := []struct {
		name string
		p    *fakeProvider
		want error
	}{
		{name: "timeout", p: &fakeProvider{name: "fake", err: fmt.Errorf("fake chat: %w", provider.ErrTimeout)}, want: provider.ErrTimeout},
		{name: "nil content", p: &fakeProvider{name: "fake"}, want: provider.ErrEmptyResponse},
		{name: "blank content", p: answering("  \n"), want: provider.ErrEmptyResponse},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, form := loadForm(t, "glider.html", "#inspection")
			before := testsupport.FieldValues(form)

			res, err := orchestrator.New(tc.p).FillFromText(context.Background(), form, "Ozone")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if res.Status != orchestrator.StatusFailed || len(res.Applied) != 0 {
				t.Fatalf("unexpected result %+v", res)
			}
			if diff := cmp.Diff(before, testsupport.FieldValues(form)); diff != "" {
				t.Fatalf("form changed (-before +after):\n%s", diff)
			}
		})
	}
}

func TestFieldAllowList(t *testing.T) {
	_, form := loadForm(t, "person.html", "#person")
	p := answering(`{"firstName":"Jane","lastName":"Doe"}`)
	f := orchestrator.New(p)
	f.SetFields([]string{"firstName"})

	res, err := f.FillFromText(context.Background(), form, "Jane Doe")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	text := userPrompt(t, p.calls()[0])
	if !strings.Contains(text, "firstName") || strings.Contains(text, "lastName") {
		t.Fatalf("prompt must only list firstName:\n%s", text)
	}
	props := p.calls()[0].Format["properties"].(map[string]any)
	if _, ok := props["lastName"]; ok {
		t.Fatal("schema must not describe filtered fields")
	}
	values := testsupport.FieldValues(form)
	if values["firstName"] != "Jane" || values["lastName"] != "old-last" {
		t.Fatalf("unexpected values %v", values)
	}
	if diff := cmp.Diff([]string{"firstName"}, res.Applied); diff != "" {
		t.Fatalf("applied mismatch (-want +got):\n%s", diff)
	}

	f.SetFields(nil)
	if f.Fields() != nil {
		t.Fatalf("expected cleared allow-list, got %v", f.Fields())
	}
}

func TestAllowListWithoutMatchesSkipsProvider(t *testing.T) {
	_, form := loadForm(t, "person.html", "#person")
	p := answering(`{}`)
	f := orchestrator.New(p, orchestrator.WithFields("nickname"))

	res, err := f.FillFromText(context.Background(), form, "Jane")
	if err != nil || res.Status != orchestrator.StatusNoData {
		t.Fatalf("expected no_data without error, got %+v, %v", res, err)
	}
	if len(p.calls()) != 0 {
		t.Fatal("provider must not be called when no field is in scope")
	}
}

func TestPartialFill(t *testing.T) {
	_, form := loadForm(t, "person.html", "#person")
	p := answering(`{"firstName":"Jane","lastName":"N/A","born":"whenever","consent":"yes"}`)

	res, err := orchestrator.New(p).FillFromText(context.Background(), form, "Jane")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if res.Status != orchestrator.StatusPartial {
		t.Fatalf("expected partial status, got %q", res.Status)
	}
	wantSkipped := map[string]string{
		"lastName": fill.ReasonSentinel,
		"born":     fill.ReasonInvalidDate,
	}
	if diff := cmp.Diff(wantSkipped, res.Skipped); diff != "" {
		t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
	}
	want := map[string]string{
		"firstName": "Jane",
		"lastName":  "old-last",
		"born":      "",
		"consent":   "checked",
	}
	if diff := cmp.Diff(want, testsupport.FieldValues(form)); diff != "" {
		t.Fatalf("form values mismatch (-want +got):\n%s", diff)
	}
}

func TestStructuredOutputOnlyWhenSupported(t *testing.T) {
	_, form := loadForm(t, "person.html", "#person")
	p := answering(`{"firstName":"Jane"}`)
	p.structured = false

	if _, err := orchestrator.New(p).FillFromText(context.Background(), form, "Jane"); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if p.calls()[0].Format != nil {
		t.Fatal("schema must not be sent to providers without structured output")
	}
}

func TestFillSingleField(t *testing.T) {
	doc, _ := loadForm(t, "glider.html", "#inspection")
	el := doc.ElementByID("serialNumber")
	p := answering("  SN-2024-001 \n")

	res, err := orchestrator.New(p, orchestrator.WithModel("tiny")).FillSingleField(context.Background(), el, "paraglider")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if el.Value() != "SN-2024-001" {
		t.Fatalf("expected trimmed value, got %q", el.Value())
	}
	want := orchestrator.Result{
		Status:  orchestrator.StatusFilled,
		Applied: []string{"serialNumber"},
		Values:  response.Values{"serialNumber": "SN-2024-001"},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	req := p.calls()[0]
	if req.Format != nil || req.Model != "tiny" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Messages[0].Content != prompt.SingleFieldSystemPrompt {
		t.Fatalf("unexpected system prompt %q", req.Messages[0].Content)
	}
	if !strings.Contains(req.Messages[1].Content, "paraglider") {
		t.Fatalf("prompt must carry the extra context:\n%s", req.Messages[1].Content)
	}
}

func TestFillSingleFieldFailureLeavesFieldUnchanged(t *testing.T) {
	doc, _ := loadForm(t, "person.html", "#person")
	el := doc.Find("input[name=firstName]")
	if el == nil {
		t.Fatal("firstName input not found")
	}
	p := &fakeProvider{name: "fake", err: errors.New("connection refused")}

	res, err := orchestrator.New(p).FillSingleField(context.Background(), el, "")
	if err == nil || res.Status != orchestrator.StatusFailed {
		t.Fatalf("expected failure, got %+v, %v", res, err)
	}
	if el.Value() != "old-first" {
		t.Fatalf("field changed to %q", el.Value())
	}
}

func TestNoProvider(t *testing.T) {
	_, form := loadForm(t, "person.html", "#person")
	f := orchestrator.New(nil)

	if _, err := f.FillFromText(context.Background(), form, "x"); !errors.Is(err, orchestrator.ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}
	if _, err := f.Extract(context.Background(), nil, "x"); !errors.Is(err, orchestrator.ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}

	p := answering(`{"firstName":"Jane"}`)
	f.SetProvider(p)
	if f.Provider() != provider.Provider(p) {
		t.Fatal("expected provider to be swapped")
	}
	if _, err := f.FillFromText(context.Background(), form, "x"); err != nil {
		t.Fatalf("fill after SetProvider: %v", err)
	}
	if _, err := f.FillFromText(context.Background(), nil, "x"); !errors.Is(err, orchestrator.ErrNoTarget) {
		t.Fatalf("expected ErrNoTarget, got %v", err)
	}
}

func TestExtractElementlessDescriptors(t *testing.T) {
	p := answering("```json\n{\"email\":\"ada@example.com\",\"age\":36,\"plan\":\"unknown\"}\n```")
	descs := []fields.Descriptor{
		{Kind: fields.KindEmail, Name: "email"},
		{Kind: fields.KindNumber, Name: "age"},
		{Kind: fields.KindText, Label: ""},
	}

	got, err := orchestrator.New(p).Extract(context.Background(), descs, "Ada, 36, ada@example.com")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	want := response.Values{"email": "ada@example.com", "age": "36", "plan": "unknown"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestReviewerEditsBeforeWrite(t *testing.T) {
	_, form := loadForm(t, "person.html", "#person")
	p := answering(`{"firstName":"Jane","lastName":"Doe"}`)
	reviewer := review.Func(func(_ context.Context, _ []fields.Descriptor, v response.Values) (response.Values, error) {
		out := response.Values{"firstName": strings.ToUpper(v["firstName"])}
		return out, nil
	})

	if _, err := orchestrator.New(p, orchestrator.WithReviewer(reviewer)).FillFromText(context.Background(), form, "Jane Doe"); err != nil {
		t.Fatalf("fill: %v", err)
	}
	values := testsupport.FieldValues(form)
	if values["firstName"] != "JANE" || values["lastName"] != "old-last" {
		t.Fatalf("unexpected values %v", values)
	}

	_, form = loadForm(t, "person.html", "#person")
	aborting := review.Func(func(context.Context, []fields.Descriptor, response.Values) (response.Values, error) {
		return nil, review.ErrAborted
	})
	res, err := orchestrator.New(p, orchestrator.WithReviewer(aborting)).FillFromText(context.Background(), form, "Jane Doe")
	if !errors.Is(err, review.ErrAborted) || res.Status != orchestrator.StatusFailed {
		t.Fatalf("expected aborted review, got %+v, %v", res, err)
	}
	if testsupport.FieldValues(form)["firstName"] != "old-first" {
		t.Fatal("aborted review must not write")
	}
}

func TestPromptTemplateAndSanitizer(t *testing.T) {
	_, form := loadForm(t, "person.html", "#person")
	engine, err := prompt.NewEngine()
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	tpl := "{% for f in fields %}{{ f.identifier }};{% endfor %}|{{ text }}"
	p := answering(`{}`)
	f := orchestrator.New(p,
		orchestrator.WithPromptTemplate(engine, tpl),
		orchestrator.WithSanitizer(sanitize.Text),
		orchestrator.WithFields("firstName", "born"),
	)

	if _, err := f.FillFromText(context.Background(), form, "<p>Jane &amp; co</p>"); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if got := userPrompt(t, p.calls()[0]); got != "firstName;born;|Jane & co" {
		t.Fatalf("unexpected rendered prompt %q", got)
	}
}

func TestConcurrentFillsSnapshotConfiguration(t *testing.T) {
	a := answering(`{"firstName":"A"}`)
	b := answering(`{"firstName":"B"}`)
	f := orchestrator.New(a)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				f.SetProvider(b)
				f.SetFields([]string{"firstName"})
			} else {
				f.SetProvider(a)
				f.SetFields(nil)
			}
		}(i)
		go func() {
			defer wg.Done()
			doc, err := dom.ParseString(`<form><input name="firstName"><input name="lastName" value="keep"></form>`)
			if err != nil {
				t.Errorf("parse: %v", err)
				return
			}
			form, _ := doc.Form("")
			if _, err := f.FillFromText(context.Background(), form, "x"); err != nil {
				t.Errorf("fill: %v", err)
				return
			}
			values := testsupport.FieldValues(form)
			if v := values["firstName"]; v != "A" && v != "B" {
				t.Errorf("unexpected firstName %q", v)
			}
			if values["lastName"] != "keep" {
				t.Errorf("lastName changed to %q", values["lastName"])
			}
		}()
	}
	wg.Wait()

	if got := len(a.calls()) + len(b.calls()); got != 16 {
		t.Fatalf("expected one call per fill, got %d", got)
	}
}
