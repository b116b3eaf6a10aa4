package response

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validate checks the cleaned answer against an advisory schema. Callers use
// the result for diagnostics only; Parse accepts answers that fail it.
func Validate(schemaMap map[string]any, raw string) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("response: marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("response: add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("response: compile schema: %w", err)
	}

	obj, err := decodeObject(Clean(raw))
	if err != nil {
		return err
	}
	if err := schema.Validate(obj); err != nil {
		return fmt.Errorf("response: does not match schema: %w", err)
	}
	return nil
}
