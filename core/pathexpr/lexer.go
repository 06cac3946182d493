package pathexpr

import (
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokenEOF      tokenKind = iota
	tokenRoot               // $
	tokenCurrent            // @
	tokenDot                // .
	tokenLBracket           // [
	tokenRBracket           // ]
	tokenLParen             // (
	tokenRParen             // )
	tokenQuestion           // ?
	tokenStar               // *
	tokenComma              // ,
	tokenAnd                // &&
	tokenOr                 // ||
	tokenCompare            // == != > >= < <=
	tokenIdent              // name, true, false, null
	tokenString             // 'text' or "text"
	tokenNumber             // -1.5e3
)

var tokenNames = map[tokenKind]string{
	tokenEOF:      "end of expression",
	tokenRoot:     "'$'",
	tokenCurrent:  "'@'",
	tokenDot:      "'.'",
	tokenLBracket: "'['",
	tokenRBracket: "']'",
	tokenLParen:   "'('",
	tokenRParen:   "')'",
	tokenQuestion: "'?'",
	tokenStar:     "'*'",
	tokenComma:    "','",
	tokenAnd:      "'&&'",
	tokenOr:       "'||'",
	tokenCompare:  "comparison operator",
	tokenIdent:    "identifier",
	tokenString:   "string",
	tokenNumber:   "number",
}

func (k tokenKind) String() string {
	return tokenNames[k]
}

var punctuation = map[byte]tokenKind{
	'$': tokenRoot, '@': tokenCurrent, '.': tokenDot,
	'[': tokenLBracket, ']': tokenRBracket, '(': tokenLParen, ')': tokenRParen,
	'?': tokenQuestion, '*': tokenStar, ',': tokenComma,
}

type token struct {
	kind tokenKind
	text string // identifier name, decoded string, number text or operator
	pos  int
}

type lexer struct {
	src string
	pos int
}

func tokenize(src string) ([]token, error) {
	lx := &lexer{src: src}
	var tokens []token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.kind == tokenEOF {
			return tokens, nil
		}
	}
}

func (lx *lexer) errorf(pos int, msg string) error {
	return &SyntaxError{Expression: lx.src, Position: pos, Message: msg}
}

func (lx *lexer) next() (token, error) {
	for lx.pos < len(lx.src) && isSpace(lx.src[lx.pos]) {
		lx.pos++
	}
	start := lx.pos
	if start >= len(lx.src) {
		return token{kind: tokenEOF, pos: start}, nil
	}

	c := lx.src[start]
	switch {
	case c == '&' || c == '|':
		if lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == c {
			lx.pos += 2
			kind := tokenAnd
			if c == '|' {
				kind = tokenOr
			}
			return token{kind: kind, text: lx.src[start:lx.pos], pos: start}, nil
		}
		return token{}, lx.errorf(start, "expected '"+string(c)+string(c)+"'")
	case c == '=' || c == '!':
		if lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '=' {
			lx.pos += 2
			return token{kind: tokenCompare, text: lx.src[start:lx.pos], pos: start}, nil
		}
		return token{}, lx.errorf(start, "expected '"+string(c)+"='")
	case c == '<' || c == '>':
		lx.pos++
		if lx.pos < len(lx.src) && lx.src[lx.pos] == '=' {
			lx.pos++
		}
		return token{kind: tokenCompare, text: lx.src[start:lx.pos], pos: start}, nil
	case c == '\'' || c == '"':
		return lx.readString(c)
	case c == '-' || isDigit(c):
		return lx.readNumber()
	}

	if kind, ok := punctuation[c]; ok {
		lx.pos++
		return token{kind: kind, text: string(c), pos: start}, nil
	}

	r, size := utf8.DecodeRuneInString(lx.src[start:])
	if !isIdentRune(r) {
		return token{}, lx.errorf(start, "unexpected character "+quote(string(r)))
	}
	for lx.pos < len(lx.src) {
		r, size = utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !isIdentRune(r) {
			break
		}
		lx.pos += size
	}
	return token{kind: tokenIdent, text: lx.src[start:lx.pos], pos: start}, nil
}

func (lx *lexer) readString(delim byte) (token, error) {
	start := lx.pos
	lx.pos++
	var sb strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch c {
		case delim:
			lx.pos++
			return token{kind: tokenString, text: sb.String(), pos: start}, nil
		case '\\':
			if lx.pos+1 >= len(lx.src) {
				return token{}, lx.errorf(lx.pos, "unterminated escape sequence")
			}
			switch esc := lx.src[lx.pos+1]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(esc)
			}
			lx.pos += 2
		default:
			sb.WriteByte(c)
			lx.pos++
		}
	}
	return token{}, lx.errorf(start, "unterminated string")
}

func (lx *lexer) readNumber() (token, error) {
	start := lx.pos
	if lx.src[lx.pos] == '-' {
		lx.pos++
	}
	digits := lx.scanDigits()
	if lx.pos < len(lx.src) && lx.src[lx.pos] == '.' {
		lx.pos++
		digits += lx.scanDigits()
	}
	if digits == 0 {
		return token{}, lx.errorf(start, "malformed number")
	}
	if lx.pos < len(lx.src) && (lx.src[lx.pos] == 'e' || lx.src[lx.pos] == 'E') {
		lx.pos++
		if lx.pos < len(lx.src) && (lx.src[lx.pos] == '+' || lx.src[lx.pos] == '-') {
			lx.pos++
		}
		if lx.scanDigits() == 0 {
			return token{}, lx.errorf(start, "malformed number exponent")
		}
	}
	return token{kind: tokenNumber, text: lx.src[start:lx.pos], pos: start}, nil
}

func (lx *lexer) scanDigits() int {
	n := 0
	for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
		lx.pos++
		n++
	}
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
