// Package query defines the filter, sort and pagination DSL used to page
// through in-memory collections, and the engine that evaluates it. A filter
// is compiled into filter-bracket path expressions scoped to the collection,
// evaluated against the data, merged, sorted and sliced into a Result.
package query

import (
	"github.com/asaidimu/go-paginate/core/schema"
)

// Operator is the name of a comparison applied to a field.
type Operator string

// Supported operators.
const (
	OperatorEq  Operator = "eq"
	OperatorNe  Operator = "ne"
	OperatorGt  Operator = "gt"
	OperatorGte Operator = "gte"
	OperatorLt  Operator = "lt"
	OperatorLte Operator = "lte"
	OperatorIn  Operator = "in"
	OperatorNin Operator = "nin"
)

// supportedOperators is the fixed set of operators a filter may use.
var supportedOperators = map[Operator]struct{}{
	OperatorEq:  {},
	OperatorNe:  {},
	OperatorGt:  {},
	OperatorGte: {},
	OperatorLt:  {},
	OperatorLte: {},
	OperatorIn:  {},
	OperatorNin: {},
}

// IsSupported checks if an operator is one of the supported operators.
func (o Operator) IsSupported() bool {
	_, ok := supportedOperators[o]
	return ok
}

// IsOrdering reports whether the operator relies on the natural ordering of
// the field's values.
func (o Operator) IsOrdering() bool {
	switch o {
	case OperatorGt, OperatorGte, OperatorLt, OperatorLte:
		return true
	}
	return false
}

// Comparison applies one operator to a field. For in and nin, Value is the
// sequence of candidate values.
type Comparison struct {
	Operator Operator
	Value    any
}

// FieldClause holds everything an AND-object says about one field: leaf
// comparisons on the field's own value, and a sub-filter on the records
// nested under it. A record satisfies the clause when every comparison holds
// and, if Nested is set, at least one nested record satisfies all of Nested.
type FieldClause struct {
	Field       string // may be a dotted path, e.g. "profile.city"
	Comparisons []Comparison
	Nested      Conditions
}

// Conditions is an AND-object: every clause must hold. Order is preserved in
// the compiled expression.
type Conditions []FieldClause

// FilterKind tells the two forms of a filter apart.
type FilterKind string

const (
	FilterKindAnd FilterKind = "and"
	FilterKindOr  FilterKind = "or"
)

// Filter is either an AND-object or an OR-sequence of AND-objects.
type Filter struct {
	Kind FilterKind
	And  Conditions   // set when Kind is FilterKindAnd
	Or   []Conditions // set when Kind is FilterKindOr
}

// AllOf returns an AND-object filter.
func AllOf(clauses ...FieldClause) *Filter {
	return &Filter{Kind: FilterKindAnd, And: Conditions(clauses)}
}

// AnyOf returns an OR-sequence filter. Results of matching alternatives are
// unioned.
func AnyOf(alternatives ...Conditions) *Filter {
	if alternatives == nil {
		alternatives = []Conditions{}
	}
	return &Filter{Kind: FilterKindOr, Or: alternatives}
}

// Where returns a clause applying one operator to a field.
func Where(field string, operator Operator, value any) FieldClause {
	return FieldClause{Field: field, Comparisons: []Comparison{{Operator: operator, Value: value}}}
}

// WhereNested returns a clause matching records whose nested field holds at
// least one record satisfying every sub-clause.
func WhereNested(field string, clauses ...FieldClause) FieldClause {
	return FieldClause{Field: field, Nested: Conditions(clauses)}
}

// SortDirection specifies the direction for sorting.
type SortDirection string

// Supported sort directions.
const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// SortConfiguration defines the sorting order for a specific field. Several
// configurations apply in order, each breaking ties left by the previous.
type SortConfiguration struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// Options selects, orders and pages the records of a collection.
type Options struct {
	Filter *Filter             // nil returns the whole collection
	Sort   []SortConfiguration // nil keeps the collection's order
	Page   int                 // 1-based; values below 1 mean 1
	Limit  int                 // values below 1 mean Config.DefaultLimit
}

// Result is one page of records.
type Result struct {
	Items       []schema.Document `json:"items"`
	Total       int               `json:"total"`       // matches before slicing
	PageCount   int               `json:"pageCount"`   // ceil(Total / Limit)
	CurrentPage int               `json:"currentPage"` // the page that was requested
	Limit       int               `json:"limit"`       // the limit that was applied
}
