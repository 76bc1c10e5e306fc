package curriculum

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument is returned when the curriculum document does not have the
// expected LGS / YKS(TYT|AYT) → subject → topic shape.
var ErrInvalidDocument = errors.New("invalid curriculum document")

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "anyOf": [
    {"required": ["LGS"]},
    {"required": ["YKS"]}
  ],
  "properties": {
    "LGS": {"$ref": "#/definitions/subjects"},
    "YKS": {
      "type": "object",
      "properties": {
        "TYT": {"$ref": "#/definitions/subjects"},
        "AYT": {"$ref": "#/definitions/subjects"}
      }
    }
  },
  "definitions": {
    "subjects": {
      "type": "object",
      "additionalProperties": {"$ref": "#/definitions/topics"}
    },
    "topics": {
      "type": "object",
      "additionalProperties": {"$ref": "#/definitions/record"}
    },
    "history": {
      "type": "array",
      "items": {"type": "integer", "minimum": 0}
    },
    "names": {
      "type": "array",
      "items": {"type": "string"}
    },
    "record": {
      "type": "object",
      "properties": {
        "subtopics": {"$ref": "#/definitions/names"},
        "alt_konular": {"$ref": "#/definitions/names"},
        "history": {"$ref": "#/definitions/history"},
        "yearly_history": {"$ref": "#/definitions/history"},
        "yearlyHistory": {"$ref": "#/definitions/history"},
        "importance": {"type": "string"}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// validate checks a document against the curriculum schema.
func validate(doc gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}
