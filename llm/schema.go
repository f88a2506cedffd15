package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ResponseSchema wraps a compiled JSON Schema used to validate LLM JSON-mode
// responses before they are unmarshaled into Go types, catching malformed
// payloads earlier than a failed struct decode would. The planner validates
// its plan responses with one; the analysis actions decode their responses
// without a schema.
type ResponseSchema struct {
	compiled *jsonschema.Schema
}

// CompileResponseSchema compiles a JSON Schema document (as a Go value, e.g.
// unmarshaled from a map or json.RawMessage) for reuse across calls.
func CompileResponseSchema(name string, schemaDoc any) (*ResponseSchema, error) {
	raw, err := json.Marshal(schemaDoc)
	if err != nil {
		return nil, fmt.Errorf("llm: marshal schema %s: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("llm: decode schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("llm: add schema resource %s: %w", name, err)
	}
	compiled, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("llm: compile schema %s: %w", name, err)
	}
	return &ResponseSchema{compiled: compiled}, nil
}

// Validate checks a raw JSON response body against the schema.
func (s *ResponseSchema) Validate(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("llm: response is not valid JSON: %w", err)
	}
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("llm: response failed schema validation: %w", err)
	}
	return nil
}
