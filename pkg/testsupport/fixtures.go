package testsupport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-formfill/pkg/dom"
)

// MustLoadHTML parses an HTML fixture. Testing helpers fail the test on error
// to keep table-driven tests concise.
func MustLoadHTML(t *testing.T, path string) *dom.Document {
	t.Helper()

	doc, err := LoadHTML(path)
	if err != nil {
		t.Fatalf("load html: %v", err)
	}
	return doc
}

// LoadHTML reads and parses an HTML fixture without requiring testing.T.
func LoadHTML(path string) (*dom.Document, error) {
	if path == "" {
		return nil, errors.New("testsupport: html path is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: open html: %w", err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("testsupport: parse html: %w", err)
	}
	return doc, nil
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// FieldValues snapshots the current value of every named control under root,
// keyed by name. Checkboxes report "checked"/"unchecked" and radio groups the
// value of the checked member, so tests can assert a fill left a form intact.
func FieldValues(root *dom.Element) map[string]string {
	out := make(map[string]string)
	for _, el := range root.Descendants("input", "textarea", "select") {
		name := el.Name()
		if name == "" {
			continue
		}
		switch el.Type() {
		case "checkbox":
			if el.Checked() {
				out[name] = "checked"
			} else {
				out[name] = "unchecked"
			}
		case "radio":
			if _, seen := out[name]; !seen {
				out[name] = ""
			}
			if el.Checked() {
				out[name] = el.AttrOr("value", "on")
			}
		default:
			out[name] = el.Value()
		}
	}
	return out
}
