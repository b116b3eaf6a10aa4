// Package fields builds the language-agnostic field model of a form. Each
// fillable control becomes a Descriptor carrying its Kind (decided once, here,
// so downstream code switches on an explicit enum instead of re-inspecting the
// element), the identifiers extracted data is joined on (name, label,
// placeholder), validation hints and, for selects and radio groups, the
// available options.
package fields
