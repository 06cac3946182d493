// Package utils converts between Go structs and the generic records the
// paginator works on.
package utils

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// StructToMap converts a Go struct into a map[string]any.
//
// The struct is marshaled to JSON and decoded back, so `json:"tag"`
// annotations and `omitempty` decide the keys. Nested structs become nested
// maps and slices become []any, which keeps them reachable by nested filters
// and dotted sort keys.
//
// The input `record` must be a struct or a pointer to a struct.
//
// Example:
//
//	type Book struct {
//		Title string `json:"title"`
//	}
//	type User struct {
//		ID    int    `json:"id"`
//		Books []Book `json:"books"`
//	}
//	m, err := StructToMap(User{ID: 1, Books: []Book{{Title: "Marvel"}}})
//	// m == map[string]any{"id": 1.0, "books": []any{map[string]any{"title": "Marvel"}}}
func StructToMap[T any](record T) (map[string]any, error) {
	val := reflect.ValueOf(record)

	if !val.IsValid() {
		return nil, fmt.Errorf("input record cannot be nil")
	}

	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("input record cannot be a nil pointer to a struct")
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input record must be a struct or a pointer to a struct, got %s", val.Kind())
	}

	jsonBytes, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("StructToMap: failed to marshal input record to JSON: %w", err)
	}

	var result map[string]any
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return nil, fmt.Errorf("StructToMap: failed to unmarshal JSON to map[string]any: %w", err)
	}
	return result, nil
}

// MapToStruct is a generic function that converts a `map[string]any` into
// a new instance of the specified generic struct type `T`. It is the inverse
// of StructToMap.
//
// The generic type `T` must be a struct type or a pointer to one.
//
// Example:
//
//	user, err := MapToStruct[User](map[string]any{"id": 1, "books": []any{}})
func MapToStruct[T any](input map[string]any) (T, error) {
	var zero T

	if input == nil {
		return zero, fmt.Errorf("MapToStruct: input map cannot be nil")
	}

	typ := reflect.TypeOf(zero)
	if typ == nil {
		return zero, fmt.Errorf("MapToStruct: generic type T must be a struct type (or pointer to struct), got interface")
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return zero, fmt.Errorf("MapToStruct: generic type T must be a struct type (or pointer to struct), got %s", typ.Kind())
	}

	jsonBytes, err := json.Marshal(input)
	if err != nil {
		return zero, fmt.Errorf("MapToStruct: failed to marshal input map to JSON: %w", err)
	}

	var result T
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return zero, fmt.Errorf("MapToStruct: failed to unmarshal JSON to target struct: %w", err)
	}

	return result, nil
}

// StructsToMaps converts every record of a slice with StructToMap.
func StructsToMaps[T any](records []T) ([]map[string]any, error) {
	out := make([]map[string]any, len(records))
	for i, record := range records {
		m, err := StructToMap(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = m
	}
	return out, nil
}
