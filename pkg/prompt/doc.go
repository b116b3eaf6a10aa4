// Package prompt composes the text and JSON Schema sent to a provider.
//
// BuildExtractionPrompt and BuildResponseSchema describe a field model for
// one multi-field extraction; BuildSingleFieldPrompt asks for a single free
// text value. Embedders that need a different wording can render their own
// pongo2 template with Engine and TemplateData.
package prompt
