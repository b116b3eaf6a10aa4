package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-formfill/internal/logging"
)

// ErrMalformed reports a response that is not a single JSON object.
var ErrMalformed = errors.New("response: not a JSON object")

var fencePattern = regexp.MustCompile("```[A-Za-z0-9_+-]*")

// Values maps field identifiers to extracted string values.
type Values map[string]string

// Lookup returns the value for id when it is present and non-empty.
func (v Values) Lookup(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	value, ok := v[id]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Keys returns the identifiers in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Option customises Parse.
type Option func(*parseConfig)

type parseConfig struct {
	logger *slog.Logger
}

// WithLogger sets the logger parse failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *parseConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Clean trims raw and removes markdown code fence markers, tagged or bare.
func Clean(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.Contains(cleaned, "```") {
		cleaned = strings.TrimSpace(fencePattern.ReplaceAllString(cleaned, ""))
	}
	return cleaned
}

// Parse decodes a model answer into Values. Every JSON value becomes its
// literal text: numbers keep their original spelling, booleans become
// "true"/"false", null becomes "null" and nested arrays or objects become
// compact JSON. Anything other than one JSON object yields an empty map;
// Parse never fails.
func Parse(raw string, opts ...Option) Values {
	cfg := parseConfig{logger: logging.Discard()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	obj, err := decodeObject(Clean(raw))
	if err != nil {
		cfg.logger.Debug("response.parse.failed", "error", err, "raw_len", len(raw))
		return Values{}
	}

	out := make(Values, len(obj))
	for key, value := range obj {
		out[key] = stringify(value)
	}
	return out
}

// IsWellFormedJSON reports whether s parses as JSON.
func IsWellFormedJSON(s string) bool {
	return json.Valid([]byte(s))
}

func decodeObject(cleaned string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Join(ErrMalformed, errors.New("trailing data after JSON value"))
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, ErrMalformed
	}
	return obj, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return ""
		}
		return strings.TrimSpace(buf.String())
	}
}
