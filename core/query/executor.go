package query

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/asaidimu/go-paginate/core/pathexpr"
	"go.uber.org/zap"
)

// FilterExecutor evaluates compiled query expressions against a document
// and merges their matches.
type FilterExecutor struct {
	logger *zap.Logger
}

// NewFilterExecutor creates a new FilterExecutor instance.
func NewFilterExecutor(logger *zap.Logger) *FilterExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilterExecutor{logger: logger}
}

// Execute runs each expression against data. A single expression returns
// its matches in document order. Several expressions are alternatives: their
// matches are unioned, each record appearing once, in the order it was first
// matched. Records are the same when they are the same map, so a map stored
// twice in the collection is returned once. No expressions match nothing.
func (e *FilterExecutor) Execute(ctx context.Context, data any, expressions []string) ([]pathexpr.Result, error) {
	merged := make([]pathexpr.Result, 0)
	seen := make(map[any]struct{})

	for _, expression := range expressions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		q, err := pathexpr.Compile(expression)
		if err != nil {
			return nil, &QueryCompilationError{Expression: expression, Err: err}
		}
		results, err := q.Evaluate(data)
		if err != nil {
			if errors.Is(err, pathexpr.ErrNotObject) || errors.Is(err, pathexpr.ErrNotSequence) {
				return nil, fmt.Errorf("%w: %w", ErrInvalidCollection, err)
			}
			return nil, fmt.Errorf("failed to evaluate %q: %w", expression, err)
		}

		e.logger.Debug("Evaluated query",
			zap.String("expression", expression),
			zap.Int("matches", len(results)),
		)

		if len(expressions) == 1 {
			return append(merged, results...), nil
		}
		for _, r := range results {
			key := recordIdentity(r)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, r)
		}
	}

	return merged, nil
}

// recordIdentity keys a match by the map it refers to, falling back to its
// path for values that are not maps.
func recordIdentity(r pathexpr.Result) any {
	rv := reflect.ValueOf(r.Value)
	if rv.Kind() == reflect.Map && !rv.IsNil() {
		return rv.UnsafePointer()
	}
	return r.Path
}
