package pathexpr

import (
	"errors"
	"testing"
	"time"

	"github.com/asaidimu/go-paginate/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() map[string]any {
	return map[string]any{
		"users": []any{
			map[string]any{
				"id": 1, "name": "Alice", "age": 25,
				"profile": map[string]any{"city": "Nairobi"},
				"books":   []any{map[string]any{"id": 1, "title": "Marvel"}},
			},
			map[string]any{
				"id": 2, "name": "Bob", "age": 30,
				"profile": map[string]any{"city": "Mombasa"},
				"books":   []any{map[string]any{"id": 2, "title": "DC Comics"}},
			},
			map[string]any{
				"id": 3, "name": "Charlie", "age": 35,
				"books": []any{
					map[string]any{"id": 3, "title": "Image Comics"},
					map[string]any{"id": 4, "title": "Dark Horse"},
				},
			},
		},
	}
}

func ids(results []Result) []any {
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.Value.(map[string]any)["id"]
	}
	return out
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected []any
	}{
		{"select all", "$.users[*]", []any{1, 2, 3}},
		{"equality", "$.users[?(@.id==3)]", []any{3}},
		{"inequality", "$.users[?(@.id!=3)]", []any{1, 2}},
		{"greater than", "$.users[?(@.age>25)]", []any{2, 3}},
		{"greater or equal", "$.users[?(@.age>=30)]", []any{2, 3}},
		{"less than", "$.users[?(@.age<30)]", []any{1}},
		{"less or equal", "$.users[?(@.age<=30)]", []any{1, 2}},
		{"string equality", "$.users[?(@.name=='Bob')]", []any{2}},
		{"string ordering", "$.users[?(@.name>'Bob')]", []any{3}},
		{"and", "$.users[?(@.age>25 && @.name=='Charlie')]", []any{3}},
		{"or", "$.users[?(@.id==1 || @.id==3)]", []any{1, 3}},
		{"grouped", "$.users[?((@.id==1 || @.id==2) && @.age>25)]", []any{2}},
		{"nested exists", "$.users[?(@.books[?(@.id==3)])]", []any{3}},
		{"nested exists any element", "$.users[?(@.books[?(@.title=='Dark Horse')])]", []any{3}},
		{"nested exists same element", "$.users[?(@.books[?(@.id==3 && @.title=='Dark Horse')])]", []any{}},
		{"nested object as single element", "$.users[?(@.profile[?(@.city=='Mombasa')])]", []any{2}},
		{"dotted path", "$.users[?(@.profile.city=='Nairobi')]", []any{1}},
		{"missing field compares false", "$.users[?(@.profile.city>'A')]", []any{1, 2}},
		{"missing field is not equal", "$.users[?(@.profile.city!='Nairobi')]", []any{2, 3}},
		{"bare existence", "$.users[?(@.profile)]", []any{1, 2}},
		{"type mismatch", "$.users[?(@.age>'20')]", []any{}},
	}

	doc := sampleDocument()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Evaluate(tt.expr, doc)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(results))
		})
	}
}

func TestEvaluate_ResultPaths(t *testing.T) {
	results, err := Evaluate("$.users[?(@.age>25)]", sampleDocument())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "$.users[1]", results[0].Path)
	assert.Equal(t, "$.users[2]", results[1].Path)

	results, err = Evaluate("$['user list'][*]", map[string]any{"user list": []any{map[string]any{"id": 1}}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "$['user list'][0]", results[0].Path)
}

func TestEvaluate_ReturnsElementsNotCopies(t *testing.T) {
	doc := sampleDocument()
	results, err := Evaluate("$.users[?(@.id==1)]", doc)
	require.NoError(t, err)
	require.Len(t, results, 1)

	original := doc["users"].([]any)[0].(map[string]any)
	result := results[0].Value.(map[string]any)
	result["marker"] = true
	assert.Equal(t, true, original["marker"])
}

func TestEvaluate_TypedCollections(t *testing.T) {
	doc := schema.Document{
		"users": []schema.Document{
			{"id": 1, "tags": []string{"a", "b"}},
			{"id": 2, "tags": []string{"c"}},
		},
		"orders": []map[string]any{
			{"id": 10, "total": float32(9.5)},
		},
	}

	results, err := Evaluate("$.users[?(@.tags==['c'])]", doc)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Value.(schema.Document)["id"])

	results, err = Evaluate("$.orders[?(@.total<10)]", doc)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestEvaluate_Times(t *testing.T) {
	doc := map[string]any{
		"events": []any{
			map[string]any{"id": 1, "at": time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
			map[string]any{"id": 2, "at": time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	results, err := Evaluate("$.events[?(@.at>'2023-02-01T00:00:00Z')]", doc)
	require.NoError(t, err)
	assert.Equal(t, []any{2}, ids(results))
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate("$.users[*]", []any{})
	assert.True(t, errors.Is(err, ErrNotObject))

	_, err = Evaluate("$.users[*]", map[string]any{"users": "nope"})
	assert.True(t, errors.Is(err, ErrNotSequence))

	_, err = Evaluate("$.users[", map[string]any{})
	var syntaxErr *SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))

	results, err := Evaluate("$.missing[*]", map[string]any{})
	assert.NoError(t, err)
	assert.Empty(t, results)
}
