package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/asaidimu/go-paginate/core/pathexpr"
	"github.com/asaidimu/go-paginate/core/schema"
)

// normalize maps a direction onto asc or desc, ignoring case. An empty
// direction sorts ascending.
func (d SortDirection) normalize() (SortDirection, error) {
	switch SortDirection(strings.ToLower(string(d))) {
	case "", SortDirectionAsc:
		return SortDirectionAsc, nil
	case SortDirectionDesc:
		return SortDirectionDesc, nil
	}
	return "", fmt.Errorf("%w: '%s'", ErrInvalidSortDirection, string(d))
}

type sortKey struct {
	path pathexpr.Path
	desc bool
}

func sortKeys(sort []SortConfiguration) ([]sortKey, error) {
	keys := make([]sortKey, 0, len(sort))
	for i, s := range sort {
		if s.Field == "" {
			return nil, fmt.Errorf("%w: sort key %d has no field", ErrInvalidOptions, i)
		}
		direction, err := s.Direction.normalize()
		if err != nil {
			return nil, fmt.Errorf("sort on '%s': %w", s.Field, err)
		}
		keys = append(keys, sortKey{path: pathexpr.ParsePath(s.Field), desc: direction == SortDirectionDesc})
	}
	return keys, nil
}

// SortDocuments returns a copy of items ordered by the sort keys, each key
// breaking the ties left by the previous one. Records equal on every key keep
// their input order. Values of different kinds order as
// null < bool < number < string < time < array < object; arrays and objects
// never order among themselves and defer to the next key.
func SortDocuments(items []schema.Document, sort []SortConfiguration) ([]schema.Document, error) {
	keys, err := sortKeys(sort)
	if err != nil {
		return nil, err
	}
	sorted := slices.Clone(items)
	if len(keys) == 0 {
		return sorted, nil
	}

	slices.SortStableFunc(sorted, func(a, b schema.Document) int {
		for _, key := range keys {
			left, _ := pathexpr.Lookup(a, key.path)
			right, _ := pathexpr.Lookup(b, key.path)
			c := pathexpr.Compare(left, right)
			if key.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return sorted, nil
}

// SlicePage returns the records of a 1-based page. A page past the end is
// empty, not an error.
func SlicePage(items []schema.Document, page, limit int) []schema.Document {
	if page < 1 || limit < 1 || page-1 > len(items)/limit {
		return []schema.Document{}
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []schema.Document{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}

// PageCount is the number of pages needed to hold total records.
func PageCount(total, limit int) int {
	if limit < 1 || total <= 0 {
		return 0
	}
	return (total-1)/limit + 1
}
