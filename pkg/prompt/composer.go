package prompt

import (
	"strings"

	"github.com/goliatone/go-formfill/pkg/fields"
)

// SystemPrompt is sent as the system message of every extraction request.
const SystemPrompt = "You are a precise data extraction assistant. " +
	"You read free-form text and fill in web form fields. " +
	"You answer with JSON only and never invent data that is not in the text."

// SingleFieldSystemPrompt is sent as the system message when generating a
// value for one field.
const SingleFieldSystemPrompt = "You generate realistic example values for web form fields. " +
	"You answer with the bare value only."

// FormatHint returns the literal syntax a date-like kind expects, or "".
func FormatHint(kind fields.Kind) string {
	switch kind {
	case fields.KindDate:
		return "YYYY-MM-DD"
	case fields.KindDateTime:
		return "YYYY-MM-DDTHH:MM"
	case fields.KindTime:
		return "HH:MM"
	default:
		return ""
	}
}

// BuildExtractionPrompt lists every addressable field followed by the source
// text and the answer rules. Fields without an identifier are omitted since
// no answer could be routed back to them.
func BuildExtractionPrompt(descs []fields.Descriptor, sourceText string) string {
	var b strings.Builder
	b.WriteString("Extract information from the text below and return it as a JSON object for these form fields:\n\n")
	b.WriteString("Fields:\n")
	for _, desc := range descs {
		writeField(&b, desc)
	}

	b.WriteString("\nText:\n\"\"\"\n")
	b.WriteString(sourceText)
	b.WriteString("\n\"\"\"\n\n")

	rules := []string{
		"Return a JSON object whose keys are the field identifiers exactly as listed above.",
		"Only include fields for which the text contains data. Leave out everything else.",
		`For checkbox fields answer with the string "true" or "false".`,
		"For radio and select fields answer with one of the listed option values or labels.",
		"Use the given format for date and time fields.",
		"Return only the JSON object, with no explanation and no markdown code fences.",
	}
	b.WriteString("Instructions:\n")
	for _, rule := range rules {
		b.WriteString("- ")
		b.WriteString(rule)
		b.WriteByte('\n')
	}
	return b.String()
}

func writeField(b *strings.Builder, desc fields.Descriptor) {
	id := desc.Identifier()
	if id == "" {
		return
	}
	b.WriteString("- ")
	b.WriteString(id)
	b.WriteString(" (type: ")
	b.WriteString(string(desc.Kind))
	b.WriteString(")\n")

	line := func(key, value string) {
		if value == "" {
			return
		}
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte('\n')
	}
	line("Label", desc.Label)
	line("Placeholder", desc.Placeholder)
	if desc.Kind.HasOptions() {
		if labels := optionLabels(desc); len(labels) > 0 {
			line("Options", "["+strings.Join(labels, ", ")+"]")
		}
	}
	line("Format", FormatHint(desc.Kind))
	line("Hint", desc.Hint)
	if desc.Required {
		line("Required", "yes")
	}
}

// BuildSingleFieldPrompt asks for one free-text value. Checkboxes get a
// yes/no question that discourages always giving the same answer.
func BuildSingleFieldPrompt(desc fields.Descriptor, context string) string {
	var parts []string

	if desc.Kind == fields.KindCheckbox {
		parts = append(parts, "Decide whether the following checkbox should be checked.")
	} else {
		parts = append(parts, "Generate a realistic value for the following form field.")
	}

	add := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			parts = append(parts, key+": "+value)
		}
	}
	add("Label", desc.Label)
	add("Name", desc.Name)
	add("Type", string(desc.Kind))
	add("Placeholder", desc.Placeholder)
	add("Pattern", desc.Pattern)
	add("Format", FormatHint(desc.Kind))
	add("Hint", desc.Hint)
	if desc.Kind.HasOptions() {
		add("Options", strings.Join(optionLabels(desc), ", "))
	}
	add("Additional context", context)

	if desc.Kind == fields.KindCheckbox {
		parts = append(parts,
			`Answer with exactly "true" or "false" and nothing else.`,
			"Vary your answer between requests instead of always returning the same value.",
		)
	} else {
		parts = append(parts, "Respond with the value only, without quotes, labels or explanations.")
	}
	return strings.Join(parts, "\n")
}

func optionLabels(desc fields.Descriptor) []string {
	labels := desc.OptionLabels()
	out := labels[:0]
	for _, label := range labels {
		if strings.TrimSpace(label) != "" {
			out = append(out, label)
		}
	}
	return out
}
