// Package schema describes the shape of the records held in a collection.
// A schema is optional: without one, filters are dispatched on the shape of
// the filter itself. With one, filters are checked against declared field
// types before they are compiled.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document represents a single record of a collection.
type Document map[string]any

// FieldType represents the basic field types supported by the schema system.
type FieldType string

const (
	FieldTypeString  FieldType = "string"  // Text data
	FieldTypeNumber  FieldType = "number"  // Numeric data
	FieldTypeInteger FieldType = "integer" // Numeric data
	FieldTypeDecimal FieldType = "decimal" // Numeric data
	FieldTypeBoolean FieldType = "boolean" // True/false values
	FieldTypeTime    FieldType = "time"    // Timestamps, time.Time or RFC3339 strings
	FieldTypeEnum    FieldType = "enum"    // One out of a set of pre-defined items
	FieldTypeArray   FieldType = "array"   // Ordered list of items
	FieldTypeObject  FieldType = "object"  // Structured data with nested fields
	FieldTypeRecord  FieldType = "record"  // Unorganized key-value object, resolves to map[string]any
)

// IsNested reports whether values of this type can hold sub-records that a
// nested filter may drill into.
func (t FieldType) IsNested() bool {
	switch t {
	case FieldTypeArray, FieldTypeObject, FieldTypeRecord:
		return true
	}
	return false
}

// IsOrdered reports whether values of this type have a natural ordering.
func (t FieldType) IsOrdered() bool {
	switch t {
	case FieldTypeString, FieldTypeNumber, FieldTypeInteger, FieldTypeDecimal,
		FieldTypeBoolean, FieldTypeTime, FieldTypeEnum:
		return true
	}
	return false
}

// FieldDefinition defines a field within a schema.
type FieldDefinition struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
	// ItemsType specifies the type of items in 'array' fields.
	ItemsType *FieldType `json:"itemsType,omitempty"`
	// Fields describes the sub-record of an 'object' field, or of each item
	// of an 'array' field whose items are objects. A nil map leaves the
	// sub-record unchecked.
	Fields map[string]*FieldDefinition `json:"fields,omitempty"`
	// Description provides a brief explanation of the field.
	Description *string `json:"description,omitempty"`
}

// SchemaDefinition describes the records of one named collection.
type SchemaDefinition struct {
	Name        string                      `json:"name"`
	Version     string                      `json:"version,omitempty"`
	Description *string                     `json:"description,omitempty"`
	Fields      map[string]*FieldDefinition `json:"fields"`
}

// ParseSchema decodes a JSON schema definition and checks that it is usable.
func ParseSchema(data []byte) (*SchemaDefinition, error) {
	var s SchemaDefinition
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode schema definition: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the schema names a collection and that every field
// declares a type. Field names are filled in from their map keys when empty.
func (s *SchemaDefinition) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema must define a collection name")
	}
	return validateFields(s.Fields, s.Name)
}

func validateFields(fields map[string]*FieldDefinition, path string) error {
	for key, field := range fields {
		fieldPath := path + "." + key
		if field == nil {
			return fmt.Errorf("field '%s' has no definition", fieldPath)
		}
		if strings.Contains(key, ".") {
			return fmt.Errorf("field name '%s' must not contain '.'", fieldPath)
		}
		if field.Name == "" {
			field.Name = key
		}
		if field.Type == "" {
			return fmt.Errorf("field '%s' must declare a type", fieldPath)
		}
		if len(field.Fields) > 0 && !field.Type.IsNested() {
			return fmt.Errorf("field '%s' of type %s cannot declare nested fields", fieldPath, field.Type)
		}
		if err := validateFields(field.Fields, fieldPath); err != nil {
			return err
		}
	}
	return nil
}
