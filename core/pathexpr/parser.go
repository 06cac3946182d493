package pathexpr

import (
	"fmt"
	"strconv"
)

type parser struct {
	src    string
	tokens []token
	pos    int
}

// Compile parses a query expression of the form `$.<collection>[?(<predicate>)]`
// or `$.<collection>[*]`.
func Compile(expression string) (*Query, error) {
	tokens, err := tokenize(expression)
	if err != nil {
		return nil, err
	}
	p := &parser{src: expression, tokens: tokens}
	return p.parseQuery()
}

// MustCompile is like Compile but panics on a malformed expression.
func MustCompile(expression string) *Query {
	q, err := Compile(expression)
	if err != nil {
		panic(fmt.Sprintf("pathexpr.MustCompile: %v", err))
	}
	return q
}

// ParsePredicate parses a bare predicate over the current item, such as
// `@.age>25 && @.books[?(@.id==3)]`.
func ParsePredicate(predicate string) (Expr, error) {
	tokens, err := tokenize(predicate)
	if err != nil {
		return nil, err
	}
	p := &parser{src: predicate, tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenEOF); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(kind tokenKind) bool {
	if p.peek().kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		return tok, p.errorf(tok, "expected %s, found %s", kind, describe(tok))
	}
	return p.advance(), nil
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &SyntaxError{Expression: p.src, Position: tok.pos, Message: fmt.Sprintf(format, args...)}
}

func describe(tok token) string {
	switch tok.kind {
	case tokenIdent, tokenNumber, tokenCompare:
		return fmt.Sprintf("%s %q", tok.kind, tok.text)
	}
	return tok.kind.String()
}

func (p *parser) parseQuery() (*Query, error) {
	if _, err := p.expect(tokenRoot); err != nil {
		return nil, err
	}
	name, err := p.parseSegment()
	if err != nil {
		return nil, err
	}
	q := &Query{Collection: name}

	if _, err := p.expect(tokenLBracket); err != nil {
		return nil, err
	}
	if p.accept(tokenStar) {
		if _, err := p.expect(tokenRBracket); err != nil {
			return nil, err
		}
	} else {
		pred, err := p.parseFilterBody()
		if err != nil {
			return nil, err
		}
		q.Predicate = pred
	}

	if _, err := p.expect(tokenEOF); err != nil {
		return nil, err
	}
	return q, nil
}

// parseSegment reads `.name` or `['name']`.
func (p *parser) parseSegment() (string, error) {
	tok := p.peek()
	switch tok.kind {
	case tokenDot:
		p.advance()
		ident, err := p.expect(tokenIdent)
		if err != nil {
			return "", err
		}
		return ident.text, nil
	case tokenLBracket:
		p.advance()
		name, err := p.expect(tokenString)
		if err != nil {
			return "", err
		}
		if _, err := p.expect(tokenRBracket); err != nil {
			return "", err
		}
		return name.text, nil
	}
	return "", p.errorf(tok, "expected field name, found %s", describe(tok))
}

// parseFilterBody reads `?(<expr>)]` after an opening bracket.
func (p *parser) parseFilterBody() (Expr, error) {
	if _, err := p.expect(tokenQuestion); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenLParen); err != nil {
		return nil, err
	}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRBracket); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) parseOr() (Expr, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}
	for p.accept(tokenOr) {
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return &Or{Terms: terms}, nil
}

func (p *parser) parseAnd() (Expr, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []Expr{first}
	for p.accept(tokenAnd) {
		next, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return &And{Terms: terms}, nil
}

func (p *parser) parseTerm() (Expr, error) {
	tok := p.peek()
	switch tok.kind {
	case tokenLParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return &Group{Inner: inner}, nil
	case tokenCurrent:
		return p.parseFieldTerm()
	}
	return nil, p.errorf(tok, "expected '@' or '(', found %s", describe(tok))
}

// parseFieldTerm reads a path relative to the current item, followed by a
// comparison, a nested filter, or nothing (existence).
func (p *parser) parseFieldTerm() (Expr, error) {
	p.advance() // @
	var path Path
	for {
		tok := p.peek()
		if tok.kind == tokenLBracket && p.tokens[p.pos+1].kind == tokenQuestion {
			p.advance()
			if len(path) == 0 {
				return nil, p.errorf(tok, "nested filter requires a field")
			}
			filter, err := p.parseFilterBody()
			if err != nil {
				return nil, err
			}
			return &Exists{Path: path, Filter: filter}, nil
		}
		if tok.kind != tokenDot && tok.kind != tokenLBracket {
			break
		}
		seg, err := p.parseSegment()
		if err != nil {
			return nil, err
		}
		path = append(path, seg)
	}
	if len(path) == 0 {
		return nil, p.errorf(p.peek(), "expected field after '@'")
	}

	if op := p.peek(); op.kind == tokenCompare {
		p.advance()
		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &Comparison{Path: path, Op: CompareOp(op.text), Value: value}, nil
	}
	return &Exists{Path: path}, nil
}

func (p *parser) parseLiteral() (any, error) {
	tok := p.advance()
	switch tok.kind {
	case tokenString:
		return tok.text, nil
	case tokenNumber:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number %q", tok.text)
		}
		return f, nil
	case tokenIdent:
		switch tok.text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		}
	case tokenLBracket:
		items := []any{}
		if p.accept(tokenRBracket) {
			return items, nil
		}
		for {
			item, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if p.accept(tokenComma) {
				continue
			}
			if _, err := p.expect(tokenRBracket); err != nil {
				return nil, err
			}
			return items, nil
		}
	}
	return nil, p.errorf(tok, "expected literal value, found %s", describe(tok))
}
