package framework

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidFramework = errors.New("invalid framework")

const schemaJSON = `{
  "type": "object",
  "required": ["dimensions", "focusAreas", "principles", "outputStructure"],
  "properties": {
    "version": {"type": "integer", "minimum": 0},
    "dimensions": {
      "type": "object",
      "required": ["financialHealth", "strategicAlignment", "aiReadiness"],
      "properties": {
        "financialHealth": {"$ref": "#/definitions/dimension"},
        "strategicAlignment": {"$ref": "#/definitions/dimension"},
        "aiReadiness": {"$ref": "#/definitions/dimension"}
      }
    },
    "focusAreas": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["name", "enabled"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "enabled": {"type": "boolean"}
        }
      }
    },
    "principles": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "minLength": 1}
    },
    "outputStructure": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "minLength": 1}
    },
    "departmentGuidelines": {
      "type": ["object", "null"],
      "additionalProperties": {"type": "string"}
    }
  },
  "definitions": {
    "dimension": {
      "type": "object",
      "required": ["weight"],
      "properties": {
        "weight": {"type": "integer", "minimum": 0, "maximum": 100},
        "description": {"type": "string"}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// Validate checks a framework document: schema constraints first, then the
// rule that the three dimension weights add up to 100.
func Validate(f *Framework) error {
	if f == nil {
		return fmt.Errorf("%w: document is empty", ErrInvalidFramework)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(f))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	if total := f.Dimensions.TotalWeight(); total != 100 {
		problems = append(problems, fmt.Sprintf("dimension weights must sum to 100, got %d", total))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidFramework, strings.Join(problems, "; "))
	}
	return nil
}
