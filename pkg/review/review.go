package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formfill/pkg/fields"
	"github.com/goliatone/go-formfill/pkg/response"
)

// ErrAborted signals the user aborted the review (for example with Ctrl+C).
var ErrAborted = errors.New("review: aborted")

// skipChoice is appended to option lists so a value can be dropped.
const skipChoice = "(leave empty)"

// Reviewer inspects extracted values before they are written. The returned
// map replaces values; keys removed from it are not written.
type Reviewer interface {
	Review(ctx context.Context, descs []fields.Descriptor, values response.Values) (response.Values, error)
}

// Func adapts a function to the Reviewer interface.
type Func func(ctx context.Context, descs []fields.Descriptor, values response.Values) (response.Values, error)

// Review calls f.
func (f Func) Review(ctx context.Context, descs []fields.Descriptor, values response.Values) (response.Values, error) {
	return f(ctx, descs, values)
}

// Option configures the interactive reviewer.
type Option func(*Interactive)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Interactive) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithPageSize sets the page size of option lists.
func WithPageSize(n int) Option {
	return func(r *Interactive) {
		if n > 0 {
			r.pageSize = n
		}
	}
}

// Interactive walks every extracted value and asks the user to keep, edit or
// drop it.
type Interactive struct {
	driver   PromptDriver
	pageSize int
}

var _ Reviewer = (*Interactive)(nil)

// New builds an Interactive reviewer backed by survey unless a driver is
// supplied.
func New(opts ...Option) *Interactive {
	r := &Interactive{pageSize: 10}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver()
	}
	return r
}

// Review asks about each described field that has a value, in form order.
// Values without a matching descriptor pass through untouched.
func (r *Interactive) Review(ctx context.Context, descs []fields.Descriptor, values response.Values) (response.Values, error) {
	out := make(response.Values, len(values))
	for k, v := range values {
		out[k] = v
	}

	pending := 0
	for _, desc := range descs {
		if _, ok := values.Lookup(desc.Identifier()); ok {
			pending++
		}
	}
	if pending == 0 {
		return out, nil
	}
	if err := r.driver.Info(ctx, fmt.Sprintf("Review %d extracted value(s)", pending)); err != nil {
		return nil, err
	}

	for _, desc := range descs {
		id := desc.Identifier()
		current, ok := values.Lookup(id)
		if !ok {
			continue
		}
		keep, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("%s = %q. Keep?", displayName(desc), current),
			Default: true,
		})
		if err != nil {
			return nil, err
		}
		if keep {
			continue
		}
		next, err := r.edit(ctx, desc, current)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(next) == "" {
			delete(out, id)
			continue
		}
		out[id] = next
	}
	return out, nil
}

func (r *Interactive) edit(ctx context.Context, desc fields.Descriptor, current string) (string, error) {
	name := displayName(desc)
	switch {
	case desc.Kind == fields.KindCheckbox:
		checked, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Check %s?", name),
			Default: strings.EqualFold(current, "true"),
		})
		if err != nil {
			return "", err
		}
		if checked {
			return "true", nil
		}
		return "false", nil
	case desc.Kind.HasOptions() && len(desc.Options) > 0:
		labels := desc.OptionLabels()
		choices := append(append([]string{}, labels...), skipChoice)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      fmt.Sprintf("Choose %s", name),
			Options:      choices,
			DefaultIndex: optionIndex(desc, current),
			PageSize:     r.pageSize,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(labels) {
			return "", nil
		}
		return labels[idx], nil
	default:
		return r.driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("%s:", name),
			Default: current,
			Help:    desc.Hint,
		})
	}
}

func optionIndex(desc fields.Descriptor, value string) int {
	for i, opt := range desc.Options {
		if strings.EqualFold(opt.Value, value) || strings.EqualFold(opt.Label, value) {
			return i
		}
	}
	return len(desc.Options)
}

func displayName(desc fields.Descriptor) string {
	if desc.Label != "" {
		return desc.Label
	}
	return desc.Identifier()
}
