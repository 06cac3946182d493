package query

import (
	"fmt"
	"reflect"

	"github.com/asaidimu/go-paginate/core/pathexpr"
	"github.com/asaidimu/go-paginate/core/schema"
)

var comparisonOps = map[Operator]pathexpr.CompareOp{
	OperatorEq:  pathexpr.OpEq,
	OperatorNe:  pathexpr.OpNe,
	OperatorGt:  pathexpr.OpGt,
	OperatorGte: pathexpr.OpGte,
	OperatorLt:  pathexpr.OpLt,
	OperatorLte: pathexpr.OpLte,
}

// Compiler translates filters into predicate expressions over the current
// item. With a schema, every referenced field is checked against its declared
// type before compilation; without one, the shape of the filter decides.
type Compiler struct {
	schema *schema.SchemaDefinition
}

// NewCompiler creates a compiler. The schema may be nil.
func NewCompiler(s *schema.SchemaDefinition) *Compiler {
	return &Compiler{schema: s}
}

// fieldScope locates the record a clause applies to: the collection's
// records at the top level, or the records nested under a field.
type fieldScope struct {
	parent *schema.FieldDefinition
	nested bool
}

// CompileClause compiles one field clause into a predicate fragment.
func (c *Compiler) CompileClause(clause FieldClause) (pathexpr.Expr, error) {
	return c.compileClause(clause, fieldScope{})
}

// CompileAnd joins the clauses of an AND-object. An empty AND-object compiles
// to a nil fragment, which selects every record.
func (c *Compiler) CompileAnd(conditions Conditions) (pathexpr.Expr, error) {
	return c.compileConditions(conditions, fieldScope{})
}

// CompileOr compiles each alternative of an OR-sequence into its own
// fragment, in declaration order.
func (c *Compiler) CompileOr(alternatives []Conditions) ([]pathexpr.Expr, error) {
	fragments := make([]pathexpr.Expr, 0, len(alternatives))
	for _, alt := range alternatives {
		fragment, err := c.CompileAnd(alt)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, fragment)
	}
	return fragments, nil
}

// CompileFilter compiles a filter into the fragments the executor runs: one
// for an AND-object, one per alternative for an OR-sequence. A nil filter
// yields a single nil fragment.
func (c *Compiler) CompileFilter(f *Filter) ([]pathexpr.Expr, error) {
	if f == nil {
		return []pathexpr.Expr{nil}, nil
	}
	kind, err := f.kind()
	if err != nil {
		return nil, err
	}
	if kind == FilterKindOr {
		return c.CompileOr(f.Or)
	}
	fragment, err := c.CompileAnd(f.And)
	if err != nil {
		return nil, err
	}
	return []pathexpr.Expr{fragment}, nil
}

// kind resolves the form of a filter, inferring it when Kind is unset.
func (f *Filter) kind() (FilterKind, error) {
	switch f.Kind {
	case FilterKindAnd, FilterKindOr:
		return f.Kind, nil
	case "":
		if f.Or != nil && f.And != nil {
			return "", &InvalidFilterError{Reason: "a filter is either an AND-object or an OR-sequence, not both"}
		}
		if f.Or != nil {
			return FilterKindOr, nil
		}
		return FilterKindAnd, nil
	}
	return "", &InvalidFilterError{Reason: fmt.Sprintf("unknown filter kind '%s'", f.Kind)}
}

func (c *Compiler) compileConditions(conditions Conditions, scope fieldScope) (pathexpr.Expr, error) {
	terms := make([]pathexpr.Expr, 0, len(conditions))
	for _, clause := range conditions {
		term, err := c.compileClause(clause, scope)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return joinAnd(terms), nil
}

func joinAnd(terms []pathexpr.Expr) pathexpr.Expr {
	switch len(terms) {
	case 0:
		return nil
	case 1:
		return terms[0]
	}
	return &pathexpr.And{Terms: terms}
}

func (c *Compiler) compileClause(clause FieldClause, scope fieldScope) (pathexpr.Expr, error) {
	if clause.Field == "" {
		return nil, &InvalidFilterError{Reason: "field name is empty"}
	}
	if len(clause.Comparisons) == 0 && len(clause.Nested) == 0 {
		return nil, &InvalidFilterError{Field: clause.Field, Reason: "clause has no operators"}
	}

	def, err := c.resolve(clause.Field, scope)
	if err != nil {
		return nil, err
	}
	path := pathexpr.ParsePath(clause.Field)

	terms := make([]pathexpr.Expr, 0, len(clause.Comparisons)+1)
	for _, cmp := range clause.Comparisons {
		term, err := compileComparison(clause.Field, path, cmp, def)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}

	if len(clause.Nested) > 0 {
		if def != nil && !def.Type.IsNested() {
			return nil, &InvalidFilterError{
				Field:  clause.Field,
				Reason: fmt.Sprintf("nested filter on a field of type %s", def.Type),
			}
		}
		inner, err := c.compileConditions(clause.Nested, fieldScope{parent: def, nested: true})
		if err != nil {
			return nil, err
		}
		terms = append(terms, &pathexpr.Exists{Path: path, Filter: inner})
	}

	return joinAnd(terms), nil
}

// resolve looks a field up in the schema. A nil definition means the field
// is unchecked.
func (c *Compiler) resolve(field string, scope fieldScope) (*schema.FieldDefinition, error) {
	if c.schema == nil {
		return nil, nil
	}

	var (
		def *schema.FieldDefinition
		ok  bool
	)
	switch {
	case !scope.nested:
		def, ok = c.schema.ResolvePath(field)
	case scope.parent == nil:
		return nil, nil
	default:
		def, ok = scope.parent.ResolveIn(field)
	}
	if !ok {
		return nil, &InvalidFilterError{Field: field, Reason: "field is not declared in the schema"}
	}
	return def, nil
}

func compileComparison(field string, path pathexpr.Path, cmp Comparison, def *schema.FieldDefinition) (pathexpr.Expr, error) {
	if !cmp.Operator.IsSupported() {
		return nil, &UnsupportedOperatorError{Operator: string(cmp.Operator), Field: field}
	}
	if def != nil && cmp.Operator.IsOrdering() && !def.Type.IsOrdered() {
		return nil, &InvalidFilterError{
			Field:  field,
			Reason: fmt.Sprintf("operator %s cannot order values of type %s", cmp.Operator, def.Type),
		}
	}

	switch cmp.Operator {
	case OperatorIn, OperatorNin:
		candidates, ok := sequenceOperand(cmp.Value)
		if !ok {
			return nil, &InvalidFilterError{Field: field, Reason: fmt.Sprintf("operator %s needs a sequence of candidates, got %T", cmp.Operator, cmp.Value)}
		}
		if len(candidates) == 0 {
			return nil, &InvalidFilterError{Field: field, Reason: fmt.Sprintf("operator %s needs at least one candidate", cmp.Operator)}
		}

		op := pathexpr.OpEq
		if cmp.Operator == OperatorNin {
			op = pathexpr.OpNe
		}
		terms := make([]pathexpr.Expr, len(candidates))
		for i, candidate := range candidates {
			if err := checkLiteral(field, candidate); err != nil {
				return nil, err
			}
			terms[i] = &pathexpr.Comparison{Path: path, Op: op, Value: candidate}
		}
		if cmp.Operator == OperatorIn {
			return &pathexpr.Group{Inner: &pathexpr.Or{Terms: terms}}, nil
		}
		return &pathexpr.Group{Inner: &pathexpr.And{Terms: terms}}, nil
	}

	if err := checkLiteral(field, cmp.Value); err != nil {
		return nil, err
	}
	return &pathexpr.Comparison{Path: path, Op: comparisonOps[cmp.Operator], Value: cmp.Value}, nil
}

func checkLiteral(field string, value any) error {
	if _, err := pathexpr.FormatLiteral(value); err != nil {
		return &InvalidFilterError{Field: field, Reason: err.Error()}
	}
	return nil
}

// sequenceOperand returns the candidates of an in/nin operand.
func sequenceOperand(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
