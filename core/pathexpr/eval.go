package pathexpr

import (
	"fmt"
	"strings"
)

// Result is a single element selected by a query.
type Result struct {
	// Path is the normalized location of the element, e.g. `$.users[2]`.
	// Two results with the same Path are the same element of the document.
	Path string
	// Value is the selected element itself, not a copy.
	Value any
}

// Evaluate compiles and runs a query expression against a document.
func Evaluate(expression string, document any) ([]Result, error) {
	q, err := Compile(expression)
	if err != nil {
		return nil, err
	}
	return q.Evaluate(document)
}

// Evaluate runs the query against a document and returns the matching
// elements of the collection in document order. A collection missing from the
// document selects nothing.
func (q *Query) Evaluate(document any) ([]Result, error) {
	root, ok := asMap(document)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, document)
	}
	coll, ok := root[q.Collection]
	if !ok {
		return nil, nil
	}
	items, ok := asSequence(coll)
	if !ok {
		return nil, fmt.Errorf("%w: '%s' holds %T", ErrNotSequence, q.Collection, coll)
	}

	var sb strings.Builder
	sb.WriteByte('$')
	writeSegment(&sb, q.Collection)
	base := sb.String()

	results := make([]Result, 0, len(items))
	for i, item := range items {
		if q.Predicate == nil || Match(q.Predicate, item) {
			results = append(results, Result{Path: fmt.Sprintf("%s[%d]", base, i), Value: item})
		}
	}
	return results, nil
}

// Match reports whether an item satisfies a predicate.
func Match(expr Expr, item any) bool {
	switch e := expr.(type) {
	case *Comparison:
		value, _ := Lookup(item, e.Path)
		return Apply(e.Op, value, e.Value)
	case *Exists:
		value, found := Lookup(item, e.Path)
		if !found {
			return false
		}
		if e.Filter == nil {
			return value != nil
		}
		if elems, ok := asSequence(value); ok {
			for _, elem := range elems {
				if Match(e.Filter, elem) {
					return true
				}
			}
			return false
		}
		if _, ok := asMap(value); ok {
			return Match(e.Filter, value)
		}
		return false
	case *And:
		for _, term := range e.Terms {
			if !Match(term, item) {
				return false
			}
		}
		return true
	case *Or:
		for _, term := range e.Terms {
			if Match(term, item) {
				return true
			}
		}
		return false
	case *Group:
		return Match(e.Inner, item)
	}
	return false
}
