package models

import (
	"bytes"
	"encoding/json"
	"strings"

	js "github.com/santhosh-tekuri/jsonschema/v5"

	"er_diagram/internal/apperrors"
)

const diagramSchemaURL = "diagram.schema.json"

const diagramSchema = `{
  "type": "object",
  "required": ["entities", "connections"],
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string"},
          "type": {"type": "string"},
          "name": {"type": "string"},
          "position": {
            "type": "object",
            "properties": {
              "left": {"type": "integer"},
              "top": {"type": "integer"}
            }
          }
        }
      }
    },
    "connections": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "source": {"type": "string"},
          "target": {"type": "string"}
        }
      }
    }
  }
}`

var diagramValidator = mustCompileDiagramSchema()

func mustCompileDiagramSchema() *js.Schema {
	compiler := js.NewCompiler()
	if err := compiler.AddResource(diagramSchemaURL, strings.NewReader(diagramSchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(diagramSchemaURL)
}

// DecodeDiagram parses and validates diagram JSON as posted by the editor.
// Any structural problem is reported as an invalid input error.
func DecodeDiagram(data []byte) (*Diagram, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.InvalidInput("no data received")
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.InvalidInput("invalid JSON: %v", err)
	}
	if err := diagramValidator.Validate(raw); err != nil {
		return nil, apperrors.InvalidInput("invalid diagram: %v", err)
	}
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, apperrors.InvalidInput("invalid diagram: %v", err)
	}
	return &d, nil
}
