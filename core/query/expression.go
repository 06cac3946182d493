package query

import (
	"github.com/asaidimu/go-paginate/core/pathexpr"
)

// ScopeQuery wraps a predicate fragment into a complete query over the
// records of a collection, e.g. $.users[?(@.age>25)]. A nil fragment
// selects every record: $.users[*].
func ScopeQuery(collection string, fragment pathexpr.Expr) string {
	q := &pathexpr.Query{Collection: collection, Predicate: fragment}
	return q.String()
}

// Queries compiles a filter and scopes each fragment to the collection,
// yielding the expressions the executor runs. An empty OR-sequence yields no
// expressions.
func (c *Compiler) Queries(collection string, f *Filter) ([]string, error) {
	if collection == "" {
		return nil, ErrInvalidCollection
	}
	fragments, err := c.CompileFilter(f)
	if err != nil {
		return nil, err
	}
	queries := make([]string, len(fragments))
	for i, fragment := range fragments {
		queries[i] = ScopeQuery(collection, fragment)
	}
	return queries, nil
}
