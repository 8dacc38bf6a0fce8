package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema captures the required shape of the configuration file.
// Validating against it means malformed configs fail with the exact field
// path rather than a generic decode error.
const documentSchema = `{
  "type": "object",
  "required": ["servers"],
  "additionalProperties": false,
  "properties": {
    "servers": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["command"],
        "additionalProperties": false,
        "properties": {
          "command": {"type": "string", "minLength": 1},
          "args": {"type": "array", "items": {"type": "string"}},
          "env": {"type": "object", "additionalProperties": {"type": "string"}},
          "lazy": {"type": "boolean"}
        }
      }
    }
  }
}`

// validateShape checks the decoded document against documentSchema and
// reports every violation, one per field.
func validateShape(doc map[string]any) error {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		details = append(details, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf(
		"config must be shaped as { servers: { <name>: { command, args, env, lazy } } }: %s",
		strings.Join(details, "; "),
	)
}
