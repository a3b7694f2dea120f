package flowstore

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes a desired-state object body.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["Name", "ContactFlowType", "Content"],
  "properties": {
    "Name":            {"type": "string", "minLength": 1},
    "ContactFlowType": {"type": "string", "minLength": 1},
    "Content":         {"type": "string", "minLength": 1}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *gojsonschema.Schema
	schemaErr      error
)

func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	})
	return compiledSchema, schemaErr
}

// validateDocument checks body against the desired-state document schema.
func validateDocument(body []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("compile document schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("document is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return fmt.Errorf("document shape: %s", strings.Join(msgs, "; "))
}
