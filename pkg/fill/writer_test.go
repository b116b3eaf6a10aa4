package fill_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/dom"
	"github.com/goliatone/go-formfill/pkg/fields"
	"github.com/goliatone/go-formfill/pkg/fill"
	"github.com/goliatone/go-formfill/pkg/testsupport"
)

const writerMarkup = `
<form id="f">
  <input name="firstName" value="keep">
  <input type="checkbox" name="agree" value="yes" checked>
  <select name="country">
    <option value="de" selected>Germany</option>
    <option value="us">United States</option>
  </select>
  <label for="g-m">Male</label><input id="g-m" type="radio" name="gender" value="m" checked>
  <label><input type="radio" name="gender" value="f"> Female</label>
  <input type="date" name="born" value="2000-01-01">
  <input type="time" name="at" value="09:00">
  <textarea name="notes">old</textarea>
</form>`

func TestSentinelsNeverOverwrite(t *testing.T) {
	sentinels := []string{"null", "", "n/a", "none", "no value", "empty", "undefined", "unknown", "missing"}
	variants := func(s string) []string {
		return []string{s, strings.ToUpper(s), "  " + s + "\t"}
	}

	w := fill.NewWriter()
	for _, sentinel := range sentinels {
		for _, raw := range variants(sentinel) {
			doc := dom.MustParseString(writerMarkup)
			form := doc.Find("#f")
			before := testsupport.FieldValues(form)
			rec := dom.NewRecorder(doc)

			for _, desc := range fields.Build(form) {
				out := w.Apply(desc.Element, desc.Kind, raw)
				if out.Applied || out.Reason != fill.ReasonSentinel {
					t.Fatalf("%s with %q: expected sentinel skip, got %+v", desc.Name, raw, out)
				}
			}

			if diff := cmp.Diff(before, testsupport.FieldValues(form)); diff != "" {
				t.Fatalf("sentinel %q changed the form (-want +got):\n%s", raw, diff)
			}
			if n := len(rec.Events()); n != 0 {
				t.Fatalf("sentinel %q dispatched %d events", raw, n)
			}
		}
	}
}

func TestCheckboxTruthiness(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"true", true},
		{"YES", true},
		{" 1 ", true},
		{"Checked", true},
		{"on", true},
		{"false", false},
		{"no", false},
		{"0", false},
		{"maybe", false},
		{"off", false},
	}

	w := fill.NewWriter()
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			doc := dom.MustParseString(`<input type="checkbox" name="agree">`)
			box := doc.Find("input")
			box.SetChecked(!tc.want)

			out := w.Apply(box, fields.KindCheckbox, tc.raw)
			if !out.Applied {
				t.Fatalf("expected write, got %+v", out)
			}
			if box.Checked() != tc.want {
				t.Fatalf("checked: want %v got %v", tc.want, box.Checked())
			}
		})
	}
}

func TestSelectMatchingPrecedence(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		applied bool
	}{
		{raw: "us", want: "us", applied: true},
		{raw: "Germany", want: "de", applied: true},
		{raw: "united states", want: "us", applied: true},
		{raw: "germ", want: "de", applied: true},
		{raw: "I live in the United States of America", want: "us", applied: true},
		{raw: "France", want: "", applied: false},
		{raw: "x", want: "", applied: false},
	}

	w := fill.NewWriter()
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			doc := dom.MustParseString(`<select name="country">
				<option value="">Choose</option>
				<option value="de">Germany</option>
				<option value="us">United States</option>
			</select>`)
			sel := doc.Find("select")

			out := w.Apply(sel, fields.KindSelect, tc.raw)
			if out.Applied != tc.applied {
				t.Fatalf("applied: want %v got %+v", tc.applied, out)
			}
			if got := sel.Value(); got != tc.want {
				t.Fatalf("selected value: want %q got %q", tc.want, got)
			}
		})
	}
}

func TestMinFuzzyLengthGuard(t *testing.T) {
	markup := `<select name="grade"><option value="">-</option><option value="a">A</option></select>`

	doc := dom.MustParseString(markup)
	if out := fill.NewWriter().Apply(doc.Find("select"), fields.KindSelect, "banana"); out.Applied {
		t.Fatalf("single-letter option must not fuzzy-match by default, got %+v", out)
	}

	doc = dom.MustParseString(markup)
	out := fill.NewWriter(fill.WithMinFuzzyLength(1)).Apply(doc.Find("select"), fields.KindSelect, "banana")
	if !out.Applied || out.Value != "a" {
		t.Fatalf("expected guard override to match, got %+v", out)
	}

	doc = dom.MustParseString(markup)
	if out := fill.NewWriter().Apply(doc.Find("select"), fields.KindSelect, "A"); !out.Applied {
		t.Fatalf("exact match must ignore the guard, got %+v", out)
	}
}

func TestRadioResolution(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{raw: "f", want: "f"},
		{raw: "Female", want: "f"},
		{raw: "male", want: "m"},
		{raw: "fem", want: "f"},
		{raw: "robot", want: "m"},
	}

	w := fill.NewWriter()
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			doc := dom.MustParseString(writerMarkup)
			form := doc.Find("#f")
			first := doc.Find("#g-m")

			w.Apply(first, fields.KindRadio, tc.raw)
			if got := testsupport.FieldValues(form)["gender"]; got != tc.want {
				t.Fatalf("checked radio: want %q got %q", tc.want, got)
			}
		})
	}
}

func TestWritesDispatchInputThenChange(t *testing.T) {
	doc := dom.MustParseString(writerMarkup)
	rec := dom.NewRecorder(doc)
	notes := doc.Find("textarea")

	out := fill.NewWriter().Apply(notes, fields.KindTextarea, "  Line one\nLine two ")
	if !out.Applied {
		t.Fatalf("expected write, got %+v", out)
	}
	if got := notes.Value(); got != "  Line one\nLine two " {
		t.Fatalf("textarea must be written verbatim, got %q", got)
	}

	var got []string
	for _, ev := range rec.Events() {
		if !ev.Bubbles || ev.Target != notes {
			t.Fatalf("unexpected event %+v", ev)
		}
		got = append(got, ev.Type)
	}
	if diff := cmp.Diff([]string{dom.EventInput, dom.EventChange}, got); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestDateInputs(t *testing.T) {
	doc := dom.MustParseString(writerMarkup)
	w := fill.NewWriter()

	born := doc.Find("[name=born]")
	if out := w.Apply(born, fields.KindDate, "2023-07-10"); !out.Applied || born.Value() != "2023-07-10" {
		t.Fatalf("iso date: got %+v value %q", out, born.Value())
	}

	at := doc.Find("[name=at]")
	if out := w.Apply(at, fields.KindTime, "3:45 pm"); !out.Applied || at.Value() != "15:45" {
		t.Fatalf("12-hour time: got %+v value %q", out, at.Value())
	}

	out := w.Apply(born, fields.KindDate, "whenever")
	if out.Applied || out.Reason != fill.ReasonInvalidDate {
		t.Fatalf("unparseable date must be skipped, got %+v", out)
	}
	if born.Value() != "2023-07-10" {
		t.Fatalf("unparseable date changed the input to %q", born.Value())
	}
}

func TestApplyElementInfersKind(t *testing.T) {
	doc := dom.MustParseString(writerMarkup)
	box := doc.Find("[name=agree]")

	fill.NewWriter().ApplyElement(box, "no")
	if box.Checked() {
		t.Fatal("expected checkbox to be unchecked")
	}
	if kind := fill.KindOf(doc.Find("select")); kind != fields.KindSelect {
		t.Fatalf("select kind: got %q", kind)
	}
}

func TestApplyNilElement(t *testing.T) {
	if out := fill.NewWriter().Apply(nil, fields.KindText, "x"); out.Applied || out.Reason != fill.ReasonNoElement {
		t.Fatalf("nil element: got %+v", out)
	}
}
