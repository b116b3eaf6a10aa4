package prompt

import (
	"strings"

	"github.com/goliatone/go-formfill/pkg/fields"
)

// BuildResponseSchema returns the advisory JSON Schema for an extraction
// answer as a generic map. Every property is optional because the model is
// told to leave out fields it found nothing for.
func BuildResponseSchema(descs []fields.Descriptor) map[string]any {
	props := make(map[string]any, len(descs))
	for _, desc := range descs {
		id := desc.Identifier()
		if id == "" {
			continue
		}
		props[id] = propertySchema(desc)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

func propertySchema(desc fields.Descriptor) map[string]any {
	prop := map[string]any{}
	switch desc.Kind {
	case fields.KindNumber, fields.KindRange:
		prop["type"] = "number"
	case fields.KindCheckbox:
		prop["type"] = "boolean"
	case fields.KindURL:
		prop["type"] = "string"
		prop["format"] = "uri"
	case fields.KindDate:
		prop["type"] = "string"
		prop["format"] = "date"
	case fields.KindDateTime:
		prop["type"] = "string"
		prop["format"] = "date-time"
	case fields.KindTime:
		prop["type"] = "string"
		prop["format"] = "time"
	default:
		prop["type"] = "string"
	}

	if desc.Pattern != "" {
		prop["pattern"] = desc.Pattern
	}
	if description := describe(desc); description != "" {
		prop["description"] = description
	}
	return prop
}

func describe(desc fields.Descriptor) string {
	var parts []string
	for _, s := range []string{desc.Placeholder, desc.Hint} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " - ")
}
