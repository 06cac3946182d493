package schema

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

// Issue describes one way a document fails to match its schema.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// Validator checks documents against a schema: declared field types, the
// sub-records of object fields and the items of array fields.
type Validator struct {
	schema *SchemaDefinition
	issues []Issue
}

// NewValidator creates a new Validator instance for a given schema.
// The returned validator can be reused for multiple validation operations.
func NewValidator(schema *SchemaDefinition) *Validator {
	return &Validator{
		schema: schema,
		issues: make([]Issue, 0),
	}
}

// Validate checks if a given data map conforms to the validator's schema.
// It returns a boolean indicating whether the validation was successful, and a slice
// of any issues that were found. The `loose` parameter can be used to ignore
// fields the schema does not declare.
func (v *Validator) Validate(data map[string]any, loose bool) (bool, []Issue) {
	v.issues = make([]Issue, 0)
	v.validateData(data, v.schema.Fields, "", loose)
	return len(v.issues) == 0, v.issues
}

// validateData checks all fields of one record.
func (v *Validator) validateData(data map[string]any, fields map[string]*FieldDefinition, path string, loose bool) {
	for fieldName, fieldDef := range fields {
		value, exists := data[fieldName]
		if !exists {
			continue
		}
		v.validateFieldValue(value, fieldDef, v.buildPath(path, fieldName), loose)
	}

	if loose {
		return
	}
	for dataKey := range data {
		if _, exists := fields[dataKey]; !exists {
			v.addIssue("UNEXPECTED_FIELD", fmt.Sprintf("Unexpected field '%s' not defined in schema", dataKey), v.buildPath(path, dataKey))
		}
	}
}

// validateFieldValue validates a single field's value against its definition.
func (v *Validator) validateFieldValue(value any, fieldDef *FieldDefinition, path string, loose bool) {
	if value == nil {
		return
	}
	if !v.validateFieldType(value, fieldDef.Type, path) {
		return
	}

	switch fieldDef.Type {
	case FieldTypeObject:
		if len(fieldDef.Fields) > 0 {
			v.validateData(toRecord(value), fieldDef.Fields, path, loose)
		}
	case FieldTypeArray:
		v.validateArrayField(value, fieldDef, path, loose)
	}
}

// validateArrayField checks every item of an array against ItemsType, and the
// sub-record of object items against Fields.
func (v *Validator) validateArrayField(value any, fieldDef *FieldDefinition, path string, loose bool) {
	rv := reflect.ValueOf(value)
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		if item == nil {
			continue
		}
		if fieldDef.ItemsType != nil && !v.validateFieldType(item, *fieldDef.ItemsType, itemPath) {
			continue
		}
		if len(fieldDef.Fields) > 0 && v.isObjectType(item) {
			v.validateData(toRecord(item), fieldDef.Fields, itemPath, loose)
		}
	}
}

// validateFieldType checks if a value's type matches the expected type.
func (v *Validator) validateFieldType(value any, expectedType FieldType, path string) bool {
	ok := true
	switch expectedType {
	case FieldTypeString, FieldTypeEnum:
		_, ok = value.(string)
	case FieldTypeBoolean:
		_, ok = value.(bool)
	case FieldTypeNumber, FieldTypeDecimal:
		ok = v.isNumericType(value)
	case FieldTypeInteger:
		ok = v.isIntegerType(value)
	case FieldTypeTime:
		ok = v.isTimeType(value)
	case FieldTypeArray:
		ok = v.isArrayType(value)
	case FieldTypeObject, FieldTypeRecord:
		ok = v.isObjectType(value)
	}
	if !ok {
		v.addIssue("TYPE_MISMATCH", fmt.Sprintf("Expected %s, got %T", expectedType, value), path)
	}
	return ok
}

func (v *Validator) isNumericType(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// isIntegerType accepts integral floats, which is how decoded JSON numbers arrive.
func (v *Validator) isIntegerType(value any) bool {
	switch val := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return val == math.Trunc(val)
	case float32:
		return float64(val) == math.Trunc(float64(val))
	}
	return false
}

func (v *Validator) isTimeType(value any) bool {
	switch val := value.(type) {
	case time.Time:
		return true
	case string:
		_, err := time.Parse(time.RFC3339Nano, val)
		return err == nil
	}
	return false
}

func (v *Validator) isArrayType(value any) bool {
	kind := reflect.TypeOf(value).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

func (v *Validator) isObjectType(value any) bool {
	t := reflect.TypeOf(value)
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

func toRecord(value any) map[string]any {
	switch m := value.(type) {
	case map[string]any:
		return m
	case Document:
		return m
	}
	rv := reflect.ValueOf(value)
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out
}

func (v *Validator) buildPath(basePath, fieldName string) string {
	if basePath == "" {
		return fieldName
	}
	return basePath + "." + fieldName
}

func (v *Validator) addIssue(code, message, path string) {
	v.issues = append(v.issues, Issue{
		Code:    code,
		Message: message,
		Path:    path,
	})
}

// FormatIssues joins issues into one line for error messages.
func FormatIssues(issues []Issue) string {
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = fmt.Sprintf("%s: %s", issue.Path, issue.Message)
	}
	return strings.Join(parts, "; ")
}
