package query

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// optionsSchemaJSON describes the envelope of a JSON options document. Filter
// clauses and sort directions are checked by the decoder, which reports them
// with typed errors.
const optionsSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"filter": {
			"type": ["object", "array", "null"],
			"items": {"type": "object"}
		},
		"sort": {
			"type": ["object", "array", "null"],
			"items": {
				"type": "object",
				"properties": {
					"field": {"type": "string"},
					"direction": {"type": "string"}
				},
				"required": ["field"],
				"additionalProperties": false
			}
		},
		"page": {"type": ["integer", "null"]},
		"limit": {"type": ["integer", "null"]}
	},
	"additionalProperties": false
}`

var optionsSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(optionsSchemaJSON))
})

// ValidateOptionsDocument checks that data is a JSON options document: an
// object with only filter, sort, page and limit members, each of the right
// JSON type.
func ValidateOptionsDocument(data []byte) error {
	sc, err := optionsSchema()
	if err != nil {
		return fmt.Errorf("failed to compile options schema: %w", err)
	}

	result, err := sc.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(errs, "; "))
	}
	return nil
}
