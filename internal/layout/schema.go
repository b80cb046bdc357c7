package layout

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const schemaURL = "wayosk://layout.schema.json"

const layoutSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["outlines", "views"],
  "additionalProperties": false,
  "properties": {
    "margins": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "top": {"type": "number", "minimum": 0},
        "bottom": {"type": "number", "minimum": 0},
        "side": {"type": "number", "minimum": 0}
      }
    },
    "outlines": {
      "type": "object",
      "required": ["default"],
      "additionalProperties": {
        "type": "object",
        "required": ["width", "height"],
        "additionalProperties": false,
        "properties": {
          "width": {"type": "number", "exclusiveMinimum": 0},
          "height": {"type": "number", "exclusiveMinimum": 0}
        }
      }
    },
    "views": {
      "type": "object",
      "required": ["base"],
      "additionalProperties": {
        "type": "array",
        "minItems": 1,
        "items": {"type": "string"}
      }
    },
    "buttons": {
      "type": "object",
      "additionalProperties": {"$ref": "#/$defs/button"}
    }
  },
  "$defs": {
    "button": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "action": {
          "oneOf": [
            {"enum": ["erase", "show_prefs"]},
            {
              "type": "object",
              "required": ["set_view"],
              "additionalProperties": false,
              "properties": {"set_view": {"type": "string"}}
            },
            {
              "type": "object",
              "required": ["locking"],
              "additionalProperties": false,
              "properties": {
                "locking": {
                  "type": "object",
                  "required": ["lock_view", "unlock_view"],
                  "additionalProperties": false,
                  "properties": {
                    "lock_view": {"type": "string"},
                    "unlock_view": {"type": "string"},
                    "pops": {"type": "boolean"},
                    "looks_locked_from": {"type": "array", "items": {"type": "string"}}
                  }
                }
              }
            }
          ]
        },
        "keysym": {"type": "string"},
        "text": {"type": "string"},
        "modifier": {"enum": ["Control", "Ctrl", "Alt", "Mod1", "Mod4", "Super"]},
        "label": {"type": "string"},
        "icon": {"type": "string"},
        "outline": {"type": "string"}
      }
    }
  }
}`

var compiledSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(layoutSchema)); err != nil {
		panic(fmt.Sprintf("layout schema: %v", err))
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		panic(fmt.Sprintf("layout schema: %v", err))
	}
	compiledSchema = schema
}

// Validate checks a YAML layout document against the layout schema.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	// The validator expects the value shapes produced by encoding/json.
	raw, err := json.Marshal(normalize(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if err := compiledSchema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	return nil
}

// normalize turns YAML maps with non-string keys into string-keyed maps.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	}
	return v
}
