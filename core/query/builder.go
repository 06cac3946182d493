package query

import (
	"fmt"
	"strings"
)

// QueryBuilder provides a fluent API for building pagination Options.
// Conditions added with Where are AND-ed into the current alternative; Or
// closes the current alternative and starts a new one, turning the filter
// into an OR-sequence.
type QueryBuilder struct {
	options      Options
	current      Conditions
	alternatives []Conditions
}

// NewQueryBuilder creates a new, empty query builder instance.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Build returns the constructed Options. Without any condition the filter is
// nil and every record matches.
func (qb *QueryBuilder) Build() Options {
	opts := qb.options
	opts.Sort = append([]SortConfiguration(nil), qb.options.Sort...)

	switch {
	case qb.alternatives != nil:
		alts := cloneAlternatives(qb.alternatives)
		if len(qb.current) > 0 || len(alts) == 0 {
			alts = append(alts, cloneConditions(qb.current))
		}
		opts.Filter = AnyOf(alts...)
	case len(qb.current) > 0:
		opts.Filter = AllOf(cloneConditions(qb.current)...)
	}
	return opts
}

// Clone creates a deep copy of the builder so that a derived query can be
// extended without touching the original.
func (qb *QueryBuilder) Clone() *QueryBuilder {
	clone := &QueryBuilder{
		options: qb.options,
		current: cloneConditions(qb.current),
	}
	clone.options.Sort = append([]SortConfiguration(nil), qb.options.Sort...)
	if qb.alternatives != nil {
		clone.alternatives = cloneAlternatives(qb.alternatives)
	}
	return clone
}

// Reset clears all configurations from the query builder, returning it to its initial state.
func (qb *QueryBuilder) Reset() *QueryBuilder {
	*qb = QueryBuilder{}
	return qb
}

// Where begins a condition on a field. The field may be a dotted path.
func (qb *QueryBuilder) Where(field string) *FilterConditionBuilder {
	return &FilterConditionBuilder{parent: qb, field: field}
}

// WhereNested adds a clause matching records whose nested field holds at
// least one record satisfying every given clause.
func (qb *QueryBuilder) WhereNested(field string, clauses ...FieldClause) *QueryBuilder {
	clause := qb.clause(field)
	clause.Nested = append(clause.Nested, clauses...)
	return qb
}

// Or closes the current alternative and starts a new one. Records matching
// any alternative are returned. An alternative without conditions is
// dropped, so a leading or repeated Or never matches every record.
func (qb *QueryBuilder) Or() *QueryBuilder {
	if qb.alternatives == nil {
		qb.alternatives = []Conditions{}
	}
	if len(qb.current) > 0 {
		qb.alternatives = append(qb.alternatives, qb.current)
	}
	qb.current = nil
	return qb
}

// clause returns the clause for field in the current alternative, creating
// it when absent.
func (qb *QueryBuilder) clause(field string) *FieldClause {
	for i := range qb.current {
		if qb.current[i].Field == field {
			return &qb.current[i]
		}
	}
	qb.current = append(qb.current, FieldClause{Field: field})
	return &qb.current[len(qb.current)-1]
}

// FilterConditionBuilder builds a single comparison on a field.
type FilterConditionBuilder struct {
	parent *QueryBuilder
	field  string
}

// Eq adds an equality condition to the query.
func (fcb *FilterConditionBuilder) Eq(value any) *QueryBuilder {
	return fcb.addCondition(OperatorEq, value)
}

// Ne adds a not-equal condition to the query.
func (fcb *FilterConditionBuilder) Ne(value any) *QueryBuilder {
	return fcb.addCondition(OperatorNe, value)
}

// Lt adds a less-than condition to the query.
func (fcb *FilterConditionBuilder) Lt(value any) *QueryBuilder {
	return fcb.addCondition(OperatorLt, value)
}

// Lte adds a less-than-or-equal condition to the query.
func (fcb *FilterConditionBuilder) Lte(value any) *QueryBuilder {
	return fcb.addCondition(OperatorLte, value)
}

// Gt adds a greater-than condition to the query.
func (fcb *FilterConditionBuilder) Gt(value any) *QueryBuilder {
	return fcb.addCondition(OperatorGt, value)
}

// Gte adds a greater-than-or-equal condition to the query.
func (fcb *FilterConditionBuilder) Gte(value any) *QueryBuilder {
	return fcb.addCondition(OperatorGte, value)
}

// In adds an "in" condition, checking if a field's value is within a set of values.
func (fcb *FilterConditionBuilder) In(values ...any) *QueryBuilder {
	return fcb.addCondition(OperatorIn, values)
}

// Nin adds a "not in" condition, checking if a field's value is not within a set of values.
func (fcb *FilterConditionBuilder) Nin(values ...any) *QueryBuilder {
	return fcb.addCondition(OperatorNin, values)
}

// Custom adds a condition with an arbitrary operator. Unsupported operators
// are reported when the filter is compiled.
func (fcb *FilterConditionBuilder) Custom(operator Operator, value any) *QueryBuilder {
	return fcb.addCondition(operator, value)
}

func (fcb *FilterConditionBuilder) addCondition(operator Operator, value any) *QueryBuilder {
	clause := fcb.parent.clause(fcb.field)
	clause.Comparisons = append(clause.Comparisons, Comparison{Operator: operator, Value: value})
	return fcb.parent
}

// OrderBy adds a sorting configuration to the query.
func (qb *QueryBuilder) OrderBy(field string, direction SortDirection) *QueryBuilder {
	qb.options.Sort = append(qb.options.Sort, SortConfiguration{Field: field, Direction: direction})
	return qb
}

// OrderByAsc adds an ascending sort order for a specific field.
func (qb *QueryBuilder) OrderByAsc(field string) *QueryBuilder {
	return qb.OrderBy(field, SortDirectionAsc)
}

// OrderByDesc adds a descending sort order for a specific field.
func (qb *QueryBuilder) OrderByDesc(field string) *QueryBuilder {
	return qb.OrderBy(field, SortDirectionDesc)
}

// Page sets the 1-based page to return.
func (qb *QueryBuilder) Page(page int) *QueryBuilder {
	qb.options.Page = page
	return qb
}

// Limit sets the maximum number of records per page.
func (qb *QueryBuilder) Limit(limit int) *QueryBuilder {
	qb.options.Limit = limit
	return qb
}

// QueryValidationError represents an error found during query validation.
type QueryValidationError struct {
	Field   string
	Message string
}

// Error returns the error message for a QueryValidationError.
func (ve QueryValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// QueryValidationResult contains the results of a query validation.
type QueryValidationResult struct {
	IsValid bool
	Errors  []QueryValidationError
}

// Validate reports problems that would make the query fail or behave
// unexpectedly: unsupported operators, empty clauses, unknown sort
// directions and negative paging values.
func (qb *QueryBuilder) Validate() QueryValidationResult {
	var errors []QueryValidationError

	alts := append(append([]Conditions(nil), qb.alternatives...), qb.current)
	for i, alt := range alts {
		prefix := "filter"
		if qb.alternatives != nil {
			prefix = fmt.Sprintf("filter[%d]", i)
		}
		errors = append(errors, validateConditions(prefix, alt)...)
	}

	for i, s := range qb.options.Sort {
		if s.Field == "" {
			errors = append(errors, QueryValidationError{
				Field:   fmt.Sprintf("sort[%d].field", i),
				Message: "field cannot be empty",
			})
		}
		if _, err := s.Direction.normalize(); err != nil {
			errors = append(errors, QueryValidationError{
				Field:   fmt.Sprintf("sort[%d].direction", i),
				Message: err.Error(),
			})
		}
	}

	if qb.options.Page < 0 {
		errors = append(errors, QueryValidationError{Field: "page", Message: "page cannot be negative"})
	}
	if qb.options.Limit < 0 {
		errors = append(errors, QueryValidationError{Field: "limit", Message: "limit cannot be negative"})
	}

	return QueryValidationResult{
		IsValid: len(errors) == 0,
		Errors:  errors,
	}
}

func validateConditions(prefix string, conditions Conditions) []QueryValidationError {
	var errors []QueryValidationError
	for _, clause := range conditions {
		field := prefix + "." + clause.Field
		if len(clause.Comparisons) == 0 && len(clause.Nested) == 0 {
			errors = append(errors, QueryValidationError{Field: field, Message: "clause has no operators"})
		}
		for _, cmp := range clause.Comparisons {
			if !cmp.Operator.IsSupported() {
				errors = append(errors, QueryValidationError{
					Field:   field,
					Message: fmt.Sprintf("unsupported operator: %s", cmp.Operator),
				})
			}
		}
		errors = append(errors, validateConditions(field, clause.Nested)...)
	}
	return errors
}

// String returns a human-readable representation of the built query.
func (qb *QueryBuilder) String() string {
	var parts []string

	if qb.alternatives != nil {
		count := len(qb.alternatives)
		if len(qb.current) > 0 || count == 0 {
			count++
		}
		parts = append(parts, fmt.Sprintf("FILTER: %d alternatives", count))
	} else if len(qb.current) > 0 {
		fields := make([]string, len(qb.current))
		for i, clause := range qb.current {
			fields[i] = clause.Field
		}
		parts = append(parts, fmt.Sprintf("FILTER: %s", strings.Join(fields, ", ")))
	}

	if len(qb.options.Sort) > 0 {
		sortFields := make([]string, len(qb.options.Sort))
		for i, sort := range qb.options.Sort {
			sortFields[i] = fmt.Sprintf("%s %s", sort.Field, sort.Direction)
		}
		parts = append(parts, fmt.Sprintf("ORDER BY: %s", strings.Join(sortFields, ", ")))
	}

	if qb.options.Page > 0 {
		parts = append(parts, fmt.Sprintf("PAGE: %d", qb.options.Page))
	}
	if qb.options.Limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT: %d", qb.options.Limit))
	}

	if len(parts) == 0 {
		return "EMPTY QUERY"
	}

	return strings.Join(parts, " | ")
}

func cloneConditions(conditions Conditions) Conditions {
	if conditions == nil {
		return nil
	}
	out := make(Conditions, len(conditions))
	for i, clause := range conditions {
		out[i] = FieldClause{
			Field:       clause.Field,
			Comparisons: append([]Comparison(nil), clause.Comparisons...),
			Nested:      cloneConditions(clause.Nested),
		}
	}
	return out
}

func cloneAlternatives(alternatives []Conditions) []Conditions {
	out := make([]Conditions, len(alternatives))
	for i, alt := range alternatives {
		out[i] = cloneConditions(alt)
	}
	return out
}
