package query

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCollection is returned when the named collection is not a
	// sequence of records.
	ErrInvalidCollection = errors.New("invalid collection")
	// ErrInvalidSortDirection is returned for a direction other than asc or desc.
	ErrInvalidSortDirection = errors.New("invalid sort direction")
	// ErrInvalidOptions is returned for options that cannot be decoded.
	ErrInvalidOptions = errors.New("invalid pagination options")
)

// UnsupportedOperatorError reports an operator outside the supported set.
type UnsupportedOperatorError struct {
	Operator string
	Field    string
}

func (e *UnsupportedOperatorError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("unsupported operator: %s", e.Operator)
	}
	return fmt.Sprintf("unsupported operator: %s (field '%s')", e.Operator, e.Field)
}

// InvalidFilterError reports a filter whose shape cannot be compiled, such as
// a clause with no operators, a non-sequence operand for in, or a nested
// filter on a field the schema declares as scalar.
type InvalidFilterError struct {
	Field  string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter on field '%s': %s", e.Field, e.Reason)
}

// QueryCompilationError reports a compiled expression that the path-query
// engine rejected. It points at a defect in the compiler, not at user input.
type QueryCompilationError struct {
	Expression string
	Err        error
}

func (e *QueryCompilationError) Error() string {
	return fmt.Sprintf("query compilation failed for %q: %v", e.Expression, e.Err)
}

func (e *QueryCompilationError) Unwrap() error {
	return e.Err
}
