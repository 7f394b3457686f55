package problem

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIllegal
	tokIdent    // number, Point, geo.Point
	tokInt      // -3
	tokMutable  // ?name
	tokRigid    // 'name
	tokArrow    // ->
	tokLParen   // (
	tokRParen   // )
	tokLBracket // [
	tokRBracket // ]
	tokComma    // ,
	tokBind     // :=
)

var tokenNames = map[tokenType]string{
	tokEOF:      "end of type",
	tokIllegal:  "illegal character",
	tokIdent:    "identifier",
	tokInt:      "integer",
	tokMutable:  "placeholder",
	tokRigid:    "rigid placeholder",
	tokArrow:    "'->'",
	tokLParen:   "'('",
	tokRParen:   "')'",
	tokLBracket: "'['",
	tokRBracket: "']'",
	tokComma:    "','",
	tokBind:     "':='",
}

func (t tokenType) String() string {
	return tokenNames[t]
}

type typeToken struct {
	Type    tokenType
	Literal string
	Column  int
}

// typeLexer splits a type expression into tokens. Columns are 1-based
// rune offsets into the expression.
type typeLexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	column       int
}

func newTypeLexer(input string) *typeLexer {
	l := &typeLexer{input: input}
	l.readChar()
	return l
}

func (l *typeLexer) readChar() {
	l.position = l.readPosition
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.readPosition += w
	l.column++
}

func (l *typeLexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *typeLexer) NextToken() typeToken {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}

	col := l.column
	tok := typeToken{Column: col}

	switch {
	case l.ch == 0:
		tok.Type = tokEOF
		return tok
	case l.ch == '-' && l.peekChar() == '>':
		l.readChar()
		l.readChar()
		tok.Type, tok.Literal = tokArrow, "->"
		return tok
	case l.ch == '-' && isDigit(l.peekChar()), isDigit(l.ch):
		start := l.position
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
		tok.Type, tok.Literal = tokInt, l.input[start:l.position]
		return tok
	case l.ch == ':' && l.peekChar() == '=':
		l.readChar()
		l.readChar()
		tok.Type, tok.Literal = tokBind, ":="
		return tok
	case l.ch == '?' || l.ch == '\'':
		sigil := l.ch
		l.readChar()
		name := l.readIdentifier()
		if name == "" {
			tok.Type, tok.Literal = tokIllegal, string(sigil)
			return tok
		}
		tok.Type, tok.Literal = tokMutable, name
		if sigil == '\'' {
			tok.Type = tokRigid
		}
		return tok
	case isLetter(l.ch):
		tok.Type, tok.Literal = tokIdent, l.readIdentifier()
		return tok
	}

	switch l.ch {
	case '(':
		tok.Type = tokLParen
	case ')':
		tok.Type = tokRParen
	case '[':
		tok.Type = tokLBracket
	case ']':
		tok.Type = tokRBracket
	case ',':
		tok.Type = tokComma
	default:
		tok.Type = tokIllegal
	}
	tok.Literal = string(l.ch)
	l.readChar()
	return tok
}

// readIdentifier reads letters, digits, underscores and inner dots.
func (l *typeLexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) || (l.ch == '.' && isLetter(l.peekChar())) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (t typeToken) describe() string {
	switch t.Type {
	case tokIdent, tokInt, tokIllegal:
		return fmt.Sprintf("%q", t.Literal)
	case tokMutable:
		return "?" + t.Literal
	case tokRigid:
		return "'" + t.Literal
	default:
		return t.Type.String()
	}
}
