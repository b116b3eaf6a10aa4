package review

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/fields"
	"github.com/goliatone/go-formfill/pkg/response"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	infoMessages []string
	selects      []SelectConfig
	inputPos     int
	selectPos    int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func reviewFields() []fields.Descriptor {
	return []fields.Descriptor{
		{Kind: fields.KindText, Name: "name", Label: "Full name"},
		{Kind: fields.KindSelect, Name: "plan", Options: []fields.Option{
			{Value: "basic", Label: "Basic"},
			{Value: "pro", Label: "Pro"},
		}},
		{Kind: fields.KindCheckbox, Name: "subscribe"},
		{Kind: fields.KindText, Name: "notes"},
	}
}

func TestReviewEditsValues(t *testing.T) {
	driver := &stubDriver{
		confirm:   []bool{false, false, false, false, true},
		inputs:    []string{"Ada King"},
		selectIdx: []int{1},
	}
	r := New(WithPromptDriver(driver))

	got, err := r.Review(context.Background(), reviewFields(), response.Values{
		"name":      "Ada",
		"plan":      "basic",
		"subscribe": "true",
		"notes":     "call after 5",
		"extra":     "kept",
	})
	if err != nil {
		t.Fatalf("review: %v", err)
	}

	want := response.Values{
		"name":      "Ada King",
		"plan":      "Pro",
		"subscribe": "false",
		"notes":     "call after 5",
		"extra":     "kept",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Review 4 extracted value(s)"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if len(driver.selects) != 1 {
		t.Fatalf("expected one select prompt, got %d", len(driver.selects))
	}
	sel := driver.selects[0]
	if diff := cmp.Diff([]string{"Basic", "Pro", skipChoice}, sel.Options); diff != "" {
		t.Fatalf("select options mismatch (-want +got):\n%s", diff)
	}
	if sel.DefaultIndex != 0 {
		t.Fatalf("expected current option preselected, got %d", sel.DefaultIndex)
	}
}

func TestReviewDropsValues(t *testing.T) {
	driver := &stubDriver{
		confirm:   []bool{false, false},
		inputs:    []string{"  "},
		selectIdx: []int{2},
	}
	r := New(WithPromptDriver(driver))

	got, err := r.Review(context.Background(), reviewFields(), response.Values{
		"name": "Ada",
		"plan": "gold",
	})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected every value dropped, got %v", got)
	}
}

func TestReviewSkipsWhenNothingToAsk(t *testing.T) {
	driver := &stubDriver{}
	r := New(WithPromptDriver(driver))

	got, err := r.Review(context.Background(), reviewFields(), response.Values{"name": "", "other": "x"})
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if diff := cmp.Diff(response.Values{"name": "", "other": "x"}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if len(driver.infoMessages) != 0 {
		t.Fatalf("expected no prompts, got %v", driver.infoMessages)
	}
}

func TestReviewPropagatesDriverErrors(t *testing.T) {
	driver := &stubDriver{}
	r := New(WithPromptDriver(driver))

	if _, err := r.Review(context.Background(), reviewFields(), response.Values{"name": "Ada"}); err == nil {
		t.Fatal("expected driver error")
	}
}

func TestFuncAdapter(t *testing.T) {
	var called bool
	var r Reviewer = Func(func(_ context.Context, _ []fields.Descriptor, v response.Values) (response.Values, error) {
		called = true
		return v, nil
	})
	if _, err := r.Review(context.Background(), nil, response.Values{}); err != nil || !called {
		t.Fatalf("expected adapter to call through, err=%v called=%v", err, called)
	}
}
