package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuePaths(issues []Issue) []string {
	paths := make([]string, len(issues))
	for i, issue := range issues {
		paths[i] = issue.Path
	}
	return paths
}

func TestValidator_Valid(t *testing.T) {
	s, err := ParseSchema([]byte(usersSchemaJSON))
	require.NoError(t, err)
	v := NewValidator(s)

	docs := []map[string]any{
		{
			"id": 1, "name": "Alice", "age": float64(30),
			"profile": map[string]any{"city": "Nairobi"},
			"books":   []any{map[string]any{"id": 1, "title": "Marvel"}},
			"tags":    []string{"a", "b"},
		},
		{"id": int64(2), "profile": nil, "books": []any{}},
		{"id": 3, "books": []Document{{"id": 4, "title": "Dark Horse"}}},
	}
	for _, doc := range docs {
		valid, issues := v.Validate(doc, false)
		assert.True(t, valid, "%v", issues)
		assert.Empty(t, issues)
	}
}

func TestValidator_Issues(t *testing.T) {
	s, err := ParseSchema([]byte(usersSchemaJSON))
	require.NoError(t, err)
	v := NewValidator(s)

	valid, issues := v.Validate(map[string]any{
		"id":      1.5,
		"name":    42,
		"profile": map[string]any{"city": 7},
		"books":   []any{map[string]any{"id": "x"}, "not a book"},
		"tags":    "a",
		"email":   "x@example.com",
	}, false)
	assert.False(t, valid)
	assert.ElementsMatch(t, []string{
		"id",
		"name",
		"profile.city",
		"books[0].id",
		"books[1]",
		"tags",
		"email",
	}, issuePaths(issues))

	codes := map[string]string{}
	for _, issue := range issues {
		codes[issue.Path] = issue.Code
	}
	assert.Equal(t, "UNEXPECTED_FIELD", codes["email"])
	assert.Equal(t, "TYPE_MISMATCH", codes["tags"])

	valid, issues = v.Validate(map[string]any{"id": 1, "email": "x"}, true)
	assert.True(t, valid, "loose validation ignores undeclared fields")
	assert.Empty(t, issues)
}

func TestValidator_Types(t *testing.T) {
	tests := []struct {
		fieldType FieldType
		value     any
		valid     bool
	}{
		{FieldTypeString, "x", true},
		{FieldTypeString, 1, false},
		{FieldTypeEnum, "red", true},
		{FieldTypeBoolean, true, true},
		{FieldTypeBoolean, "true", false},
		{FieldTypeNumber, 2.5, true},
		{FieldTypeNumber, uint8(1), true},
		{FieldTypeDecimal, "2.5", false},
		{FieldTypeInteger, 3, true},
		{FieldTypeInteger, float64(3), true},
		{FieldTypeInteger, 3.1, false},
		{FieldTypeTime, time.Now(), true},
		{FieldTypeTime, "2024-01-02T03:04:05Z", true},
		{FieldTypeTime, "yesterday", false},
		{FieldTypeArray, []int{1}, true},
		{FieldTypeArray, map[string]any{}, false},
		{FieldTypeObject, map[string]int{"a": 1}, true},
		{FieldTypeRecord, Document{}, true},
		{FieldTypeRecord, []any{}, false},
	}
	for _, tt := range tests {
		s := &SchemaDefinition{Name: "t", Fields: map[string]*FieldDefinition{"f": {Name: "f", Type: tt.fieldType}}}
		valid, _ := NewValidator(s).Validate(map[string]any{"f": tt.value}, false)
		assert.Equal(t, tt.valid, valid, "%s %#v", tt.fieldType, tt.value)
	}
}

func TestFormatIssues(t *testing.T) {
	assert.Equal(t, "a: bad; b.c: worse", FormatIssues([]Issue{
		{Code: "X", Message: "bad", Path: "a"},
		{Code: "Y", Message: "worse", Path: "b.c"},
	}))
	assert.Equal(t, "", FormatIssues(nil))
}
