package pathexpr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotObject is returned when the evaluated document is not a record.
	ErrNotObject = errors.New("document is not an object")
	// ErrNotSequence is returned when the selected collection is not a sequence.
	ErrNotSequence = errors.New("collection is not a sequence")
)

// SyntaxError reports a malformed query expression.
type SyntaxError struct {
	Expression string
	Position   int // byte offset into Expression
	Message    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d in %q: %s", e.Position, e.Expression, e.Message)
}
