package pathexpr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_RoundTrip(t *testing.T) {
	tests := []string{
		"$.users[*]",
		"$.users[?(@.id==3)]",
		"$.users[?(@.age>25 && @.name!='Bob')]",
		"$.users[?(@.age>=30 || @.age<=20)]",
		"$.users[?(@.books[?(@.id==3)])]",
		"$.users[?((@.id==1 || @.id==2) && @.age<40)]",
		"$.users[?(@.profile.city=='Nairobi')]",
		"$.users[?(@['first name']=='Ann')]",
		"$['user-list'][?(@.active==true)]",
		"$.users[?(@.deleted==null)]",
		"$.users[?(@.tags==['a','b'])]",
		"$.users[?(@.score>-1.5)]",
		"$.users[?(@.nickname)]",
		"$.users[?(@.name=='O\\'Brien')]",
	}

	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			q, err := Compile(expr)
			require.NoError(t, err)
			assert.Equal(t, expr, q.String())
		})
	}
}

func TestCompile_Structure(t *testing.T) {
	q, err := Compile(`$.users[?(@.age > 25 && (@.id == 1 || @.books[?(@.title == "DC")]))]`)
	require.NoError(t, err)
	assert.Equal(t, "users", q.Collection)

	and, ok := q.Predicate.(*And)
	require.True(t, ok)
	require.Len(t, and.Terms, 2)

	cmp, ok := and.Terms[0].(*Comparison)
	require.True(t, ok)
	assert.Equal(t, Path{"age"}, cmp.Path)
	assert.Equal(t, OpGt, cmp.Op)
	assert.Equal(t, 25.0, cmp.Value)

	group, ok := and.Terms[1].(*Group)
	require.True(t, ok)
	or, ok := group.Inner.(*Or)
	require.True(t, ok)
	require.Len(t, or.Terms, 2)

	exists, ok := or.Terms[1].(*Exists)
	require.True(t, ok)
	assert.Equal(t, Path{"books"}, exists.Path)
	inner, ok := exists.Filter.(*Comparison)
	require.True(t, ok)
	assert.Equal(t, "DC", inner.Value)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"missing root", ".users[*]"},
		{"missing selector", "$.users"},
		{"empty predicate", "$.users[?()]"},
		{"unbalanced parens", "$.users[?(@.id==1]"},
		{"dangling and", "$.users[?(@.id==1 &&)]"},
		{"single ampersand", "$.users[?(@.id==1 & @.age==2)]"},
		{"single equals", "$.users[?(@.id=1)]"},
		{"missing literal", "$.users[?(@.id==)]"},
		{"unterminated string", "$.users[?(@.name=='Bob)]"},
		{"bare identifier literal", "$.users[?(@.name==Bob)]"},
		{"trailing tokens", "$.users[*] extra"},
		{"bad number", "$.users[?(@.age==-)]"},
		{"filter without field", "$.users[?(@[?(@.id==1)])]"},
		{"unexpected character", "$.users[?(@.id==1 # 2)]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.expr)
			require.Error(t, err)
			var syntaxErr *SyntaxError
			require.True(t, errors.As(err, &syntaxErr), "expected *SyntaxError, got %T", err)
			assert.Equal(t, tt.expr, syntaxErr.Expression)
		})
	}
}

func TestParsePredicate(t *testing.T) {
	expr, err := ParsePredicate("@.age>25 && @.books[?(@.id==3)]")
	require.NoError(t, err)
	assert.Equal(t, "@.age>25 && @.books[?(@.id==3)]", expr.String())

	_, err = ParsePredicate("@.age>25 )")
	assert.Error(t, err)
}

func TestMustCompile(t *testing.T) {
	assert.NotPanics(t, func() { MustCompile("$.users[*]") })
	assert.Panics(t, func() { MustCompile("$.users[") })
}

func TestAndString_ParenthesizesOrTerms(t *testing.T) {
	expr := &And{Terms: []Expr{
		&Or{Terms: []Expr{
			&Comparison{Path: Path{"a"}, Op: OpEq, Value: 1},
			&Comparison{Path: Path{"a"}, Op: OpEq, Value: 2},
		}},
		&Comparison{Path: Path{"b"}, Op: OpLt, Value: 3},
	}}
	assert.Equal(t, "(@.a==1 || @.a==2) && @.b<3", expr.String())
}
