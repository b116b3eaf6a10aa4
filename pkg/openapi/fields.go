package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formfill/pkg/fields"
)

// ErrOperationNotFound is returned when no operation matches the requested id.
var ErrOperationNotFound = errors.New("openapi: operation not found")

// textareaThreshold is the maxLength above which strings become textareas.
const textareaThreshold = 255

// Option configures document loading.
type Option func(*options)

type options struct {
	externalRefs bool
	validate     bool
}

// WithExternalRefs allows $refs that point outside the document.
func WithExternalRefs(enabled bool) Option {
	return func(o *options) {
		o.externalRefs = enabled
	}
}

// WithValidation toggles document validation before fields are read.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

// Fields loads an OpenAPI 3 document (JSON or YAML) and describes the request
// body properties of operationID as element-less field descriptors. Nested
// objects are flattened into dotted names; array properties are skipped.
// Operations without an operationId are addressed as "method:path", for
// example "post:/users".
func Fields(ctx context.Context, data []byte, operationID string, opts ...Option) ([]fields.Descriptor, error) {
	spec, err := load(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	op := findOperation(spec, strings.TrimSpace(operationID))
	if op == nil {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrOperationNotFound, operationID, strings.Join(operationIDs(spec), ", "))
	}
	schema := requestSchema(op.RequestBody)
	if schema == nil {
		return nil, nil
	}
	var out []fields.Descriptor
	collect(&out, "", schema, nil)
	return out, nil
}

// Operations lists the operation ids of a document in sorted order.
func Operations(ctx context.Context, data []byte, opts ...Option) ([]string, error) {
	spec, err := load(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	return operationIDs(spec), nil
}

func load(ctx context.Context, data []byte, opts []Option) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	cfg := options{validate: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: cfg.externalRefs,
	}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return spec, nil
}

func eachOperation(spec *openapi3.T, fn func(id string, op *openapi3.Operation) bool) {
	if spec.Paths == nil {
		return
	}
	for _, path := range spec.Paths.InMatchingOrder() {
		item := spec.Paths.Value(path)
		if item == nil {
			continue
		}
		ops := item.Operations()
		methods := make([]string, 0, len(ops))
		for method := range ops {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		for _, method := range methods {
			op := ops[method]
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			if !fn(id, op) {
				return
			}
		}
	}
}

func findOperation(spec *openapi3.T, id string) *openapi3.Operation {
	var found *openapi3.Operation
	eachOperation(spec, func(candidate string, op *openapi3.Operation) bool {
		if candidate == id {
			found = op
			return false
		}
		return true
	})
	return found
}

func operationIDs(spec *openapi3.T) []string {
	var ids []string
	eachOperation(spec, func(id string, _ *openapi3.Operation) bool {
		ids = append(ids, id)
		return true
	})
	sort.Strings(ids)
	return ids
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func collect(out *[]fields.Descriptor, prefix string, schema *openapi3.Schema, seen map[*openapi3.Schema]bool) {
	if schema == nil || seen[schema] {
		return
	}
	if seen == nil {
		seen = make(map[*openapi3.Schema]bool)
	}
	seen[schema] = true
	defer delete(seen, schema)

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		full := name
		if prefix != "" {
			full = prefix + "." + name
		}
		switch schemaType(prop) {
		case openapi3.TypeObject:
			collect(out, full, prop, seen)
			continue
		case openapi3.TypeArray:
			continue
		}
		*out = append(*out, describe(full, prop, required[name]))
	}
}

func describe(name string, prop *openapi3.Schema, required bool) fields.Descriptor {
	desc := fields.Descriptor{
		Kind:     kindOf(prop),
		Name:     name,
		Label:    strings.TrimSpace(prop.Title),
		Pattern:  prop.Pattern,
		Hint:     strings.TrimSpace(prop.Description),
		Required: required,
	}
	if prop.Example != nil {
		desc.Placeholder = fmt.Sprint(prop.Example)
	}
	for _, value := range prop.Enum {
		if value == nil {
			continue
		}
		text := fmt.Sprint(value)
		desc.Options = append(desc.Options, fields.Option{Value: text, Label: text})
	}
	return desc
}

func kindOf(prop *openapi3.Schema) fields.Kind {
	if len(prop.Enum) > 0 {
		return fields.KindSelect
	}
	switch schemaType(prop) {
	case openapi3.TypeBoolean:
		return fields.KindCheckbox
	case openapi3.TypeInteger, openapi3.TypeNumber:
		return fields.KindNumber
	}
	switch strings.ToLower(prop.Format) {
	case "date":
		return fields.KindDate
	case "date-time":
		return fields.KindDateTime
	case "time":
		return fields.KindTime
	case "email":
		return fields.KindEmail
	case "uri", "url":
		return fields.KindURL
	}
	if prop.MaxLength != nil && *prop.MaxLength > textareaThreshold {
		return fields.KindTextarea
	}
	return fields.KindText
}

func schemaType(schema *openapi3.Schema) string {
	if schema.Type == nil {
		if len(schema.Properties) > 0 {
			return openapi3.TypeObject
		}
		return ""
	}
	for _, t := range schema.Type.Slice() {
		if t != openapi3.TypeNull {
			return t
		}
	}
	return ""
}
