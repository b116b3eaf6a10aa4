// Package provider defines the LLM backend boundary and ships adapters for
// OpenAI, LM Studio and Ollama.
//
// Providers enforce their own request timeout and report it as ErrTimeout.
// Build one by name with New, or register custom factories on a Registry.
package provider
