package query

import (
	"math"
	"testing"
	"time"

	"github.com/asaidimu/go-paginate/core/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docIDs(docs []schema.Document) []any {
	ids := make([]any, len(docs))
	for i, d := range docs {
		ids[i] = d["id"]
	}
	return ids
}

func TestSortDirection_Normalize(t *testing.T) {
	tests := []struct {
		in       SortDirection
		expected SortDirection
		valid    bool
	}{
		{"", SortDirectionAsc, true},
		{"asc", SortDirectionAsc, true},
		{"ASC", SortDirectionAsc, true},
		{"desc", SortDirectionDesc, true},
		{"Desc", SortDirectionDesc, true},
		{"up", "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, err := tt.in.normalize()
			if !tt.valid {
				assert.ErrorIs(t, err, ErrInvalidSortDirection)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSortDocuments(t *testing.T) {
	items := []schema.Document{
		{"id": 1, "age": 30, "name": "b"},
		{"id": 2, "age": 25, "name": "a"},
		{"id": 3, "age": 30, "name": "a"},
		{"id": 4, "age": 25, "name": "c"},
	}

	tests := []struct {
		name     string
		sort     []SortConfiguration
		expected []any
	}{
		{"no keys keeps order", nil, []any{1, 2, 3, 4}},
		{"asc", []SortConfiguration{{Field: "age", Direction: SortDirectionAsc}}, []any{2, 4, 1, 3}},
		{"desc", []SortConfiguration{{Field: "age", Direction: SortDirectionDesc}}, []any{1, 3, 2, 4}},
		{"tie-break", []SortConfiguration{
			{Field: "age", Direction: SortDirectionDesc},
			{Field: "name", Direction: SortDirectionAsc},
		}, []any{3, 1, 2, 4}},
		{"tie-break desc", []SortConfiguration{
			{Field: "name", Direction: SortDirectionAsc},
			{Field: "age", Direction: SortDirectionDesc},
		}, []any{3, 2, 1, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted, err := SortDocuments(items, tt.sort)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, docIDs(sorted))
		})
	}

	assert.Equal(t, []any{1, 2, 3, 4}, docIDs(items), "input is not reordered")
}

func TestSortDocuments_Stable(t *testing.T) {
	items := make([]schema.Document, 50)
	for i := range items {
		items[i] = schema.Document{"id": i, "group": i % 3}
	}

	sorted, err := SortDocuments(items, []SortConfiguration{{Field: "group", Direction: SortDirectionDesc}})
	require.NoError(t, err)

	last := map[any]int{}
	for _, doc := range sorted {
		g := doc["group"]
		if prev, ok := last[g]; ok {
			assert.Less(t, prev, doc["id"].(int), "records with equal keys keep input order")
		}
		last[g] = doc["id"].(int)
	}
}

func TestSortDocuments_MixedKinds(t *testing.T) {
	items := []schema.Document{
		{"id": 1, "v": "text"},
		{"id": 2, "v": 10},
		{"id": 3},
		{"id": 4, "v": true},
		{"id": 5, "v": time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"id": 6, "v": []any{1}},
		{"id": 7, "v": 2.5},
	}

	sorted, err := SortDocuments(items, []SortConfiguration{{Field: "v"}})
	require.NoError(t, err)
	assert.Equal(t, []any{3, 4, 7, 2, 1, 5, 6}, docIDs(sorted))

	sorted, err = SortDocuments(items, []SortConfiguration{{Field: "v", Direction: SortDirectionDesc}})
	require.NoError(t, err)
	assert.Equal(t, []any{6, 5, 1, 2, 7, 4, 3}, docIDs(sorted))
}

func TestSortDocuments_NestedKey(t *testing.T) {
	items := []schema.Document{
		{"id": 1, "profile": map[string]any{"city": "Nairobi"}},
		{"id": 2, "profile": map[string]any{"city": "Kisumu"}},
		{"id": 3},
	}
	sorted, err := SortDocuments(items, []SortConfiguration{{Field: "profile.city"}})
	require.NoError(t, err)
	assert.Equal(t, []any{3, 2, 1}, docIDs(sorted))
}

func TestSortDocuments_Errors(t *testing.T) {
	items := []schema.Document{{"id": 1}}

	_, err := SortDocuments(items, []SortConfiguration{{Field: "id", Direction: "sideways"}})
	assert.ErrorIs(t, err, ErrInvalidSortDirection)

	_, err = SortDocuments(items, []SortConfiguration{{Field: ""}})
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestSlicePage(t *testing.T) {
	items := make([]schema.Document, 5)
	for i := range items {
		items[i] = schema.Document{"id": i + 1}
	}

	tests := []struct {
		name     string
		page     int
		limit    int
		expected []any
	}{
		{"first page", 1, 2, []any{1, 2}},
		{"middle page", 2, 2, []any{3, 4}},
		{"partial last page", 3, 2, []any{5}},
		{"past the end", 4, 2, []any{}},
		{"far past the end", 1 << 40, 1 << 30, []any{}},
		{"limit larger than items", 1, 10, []any{1, 2, 3, 4, 5}},
		{"page zero", 0, 2, []any{}},
		{"limit zero", 1, 0, []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := SlicePage(items, tt.page, tt.limit)
			assert.NotNil(t, page)
			assert.Equal(t, tt.expected, docIDs(page))
		})
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, limit, expected int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{2, 1, 2},
		{5, 0, 0},
		{3, math.MaxInt, 1},
		{math.MaxInt, math.MaxInt, 1},
		{math.MaxInt, 2, math.MaxInt/2 + 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, PageCount(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}
