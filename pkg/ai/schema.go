package ai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// rubricDraftSchema is the contract for model-produced rubric documents.
// Validation happens before any enrichment so malformed output is rejected
// with a structured error instead of duck-typing its way into the store.
const rubricDraftSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title", "criteria"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "criteria": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title", "levels"],
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "weight": {"type": "number", "minimum": 0},
          "levels": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["label", "score"],
              "properties": {
                "label": {"type": "string", "minLength": 1},
                "score": {"type": "number", "minimum": 0},
                "description": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

var draftSchema = jsonschema.MustCompileString("rubric_draft.json", rubricDraftSchema)

// ParseRubricDraft validates raw model output against the rubric draft schema
// and decodes it. The returned error wraps the schema violation when the
// document shape is wrong.
func ParseRubricDraft(data []byte) (RubricDraft, error) {
	var document interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return RubricDraft{}, fmt.Errorf("parse rubric draft json: %w", err)
	}

	if err := draftSchema.Validate(document); err != nil {
		return RubricDraft{}, fmt.Errorf("rubric draft failed validation: %w", err)
	}

	var draft RubricDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return RubricDraft{}, fmt.Errorf("decode rubric draft: %w", err)
	}

	return draft, nil
}
