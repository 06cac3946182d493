// Package pathexpr implements the filter-bracket subset of JSONPath used to
// select records out of a named collection:
//
//	$.users[?(@.age>25 && @.books[?(@.id==3)])]
//	$.users[*]
//
// Expressions are built as a typed tree (Comparison, Exists, And, Or, Group),
// printed to their textual form, parsed back from text and evaluated directly
// against decoded JSON-like Go values (maps, slices and scalars).
package pathexpr

import (
	"strings"
	"unicode"
)

// CompareOp is a binary comparison between a field and a literal.
type CompareOp string

// Supported comparison operators.
const (
	OpEq  CompareOp = "=="
	OpNe  CompareOp = "!="
	OpGt  CompareOp = ">"
	OpGte CompareOp = ">="
	OpLt  CompareOp = "<"
	OpLte CompareOp = "<="
)

// Expr is a predicate over the current item (@).
type Expr interface {
	// String renders the predicate in filter-bracket syntax.
	String() string
	expr()
}

// Path is a field path relative to the current item. Each element is one
// field name; nested records are reached by successive elements.
type Path []string

// Comparison tests a field of the current item against a literal value.
type Comparison struct {
	Path  Path
	Op    CompareOp
	Value any
}

// Exists tests a field of the current item. With a nil Filter it holds when
// the field is present and not null. With a Filter it holds when at least one
// element of the field (a sequence, or a single nested record) satisfies it.
type Exists struct {
	Path   Path
	Filter Expr
}

// And holds when every term holds.
type And struct {
	Terms []Expr
}

// Or holds when any term holds.
type Or struct {
	Terms []Expr
}

// Group is an explicitly parenthesized expression.
type Group struct {
	Inner Expr
}

func (*Comparison) expr() {}
func (*Exists) expr()     {}
func (*And) expr()        {}
func (*Or) expr()         {}
func (*Group) expr()      {}

func (c *Comparison) String() string {
	lit, err := FormatLiteral(c.Value)
	if err != nil {
		lit = "<invalid>"
	}
	return c.Path.String() + string(c.Op) + lit
}

func (e *Exists) String() string {
	if e.Filter == nil {
		return e.Path.String()
	}
	return e.Path.String() + "[?(" + e.Filter.String() + ")]"
}

func (a *And) String() string {
	parts := make([]string, len(a.Terms))
	for i, term := range a.Terms {
		// && binds tighter than ||, so a bare Or term needs parentheses.
		if _, isOr := term.(*Or); isOr {
			parts[i] = "(" + term.String() + ")"
		} else {
			parts[i] = term.String()
		}
	}
	return strings.Join(parts, " && ")
}

func (o *Or) String() string {
	parts := make([]string, len(o.Terms))
	for i, term := range o.Terms {
		parts[i] = term.String()
	}
	return strings.Join(parts, " || ")
}

func (g *Group) String() string {
	return "(" + g.Inner.String() + ")"
}

// ParsePath splits a dotted field name ("profile.city") into a Path.
func ParsePath(field string) Path {
	return Path(strings.Split(field, "."))
}

// String renders the path relative to the current item, using dot notation
// for plain identifiers and bracket notation for anything else.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('@')
	for _, seg := range p {
		writeSegment(&sb, seg)
	}
	return sb.String()
}

// Dotted renders the path as a dotted field name.
func (p Path) Dotted() string {
	return strings.Join(p, ".")
}

func writeSegment(sb *strings.Builder, seg string) {
	if isIdentifier(seg) {
		sb.WriteByte('.')
		sb.WriteString(seg)
		return
	}
	sb.WriteByte('[')
	sb.WriteString(quote(seg))
	sb.WriteByte(']')
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentRune(r) {
			return false
		}
		if i == 0 && unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Query selects the elements of a named collection that satisfy a predicate.
// A nil Predicate selects every element.
type Query struct {
	Collection string
	Predicate  Expr
}

// String renders the full query expression.
func (q *Query) String() string {
	var sb strings.Builder
	sb.WriteByte('$')
	writeSegment(&sb, q.Collection)
	if q.Predicate == nil {
		sb.WriteString("[*]")
	} else {
		sb.WriteString("[?(")
		sb.WriteString(q.Predicate.String())
		sb.WriteString(")]")
	}
	return sb.String()
}
