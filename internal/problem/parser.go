package problem

import (
	"fmt"
	"strconv"

	"github.com/funvibe/rangetyck/internal/typesystem"
)

// minter returns the placeholder for a named occurrence. A nil minter
// rejects placeholders.
type minter func(mode typesystem.Mode, name string) typesystem.TVar

// TypeSyntaxError is a malformed type expression.
type TypeSyntaxError struct {
	Input  string
	Column int
	Msg    string
}

func (e *TypeSyntaxError) Error() string {
	return fmt.Sprintf("type %q, column %d: %s", e.Input, e.Column, e.Msg)
}

type typeParser struct {
	l     *typeLexer
	input string
	mint  minter

	curToken  typeToken
	peekToken typeToken
}

// ParseType parses a placeholder-free type expression.
func ParseType(input string) (typesystem.Type, error) {
	return parseType(input, nil)
}

func parseType(input string, mint minter) (t typesystem.Type, err error) {
	p := &typeParser{l: newTypeLexer(input), input: input, mint: mint}
	p.nextToken()
	p.nextToken()

	defer func() {
		if r := recover(); r != nil {
			syntaxErr, ok := r.(*TypeSyntaxError)
			if !ok {
				panic(r)
			}
			t, err = nil, syntaxErr
		}
	}()

	t = p.parseType()
	if !p.curTokenIs(tokEOF) {
		p.fail("unexpected %s after type", p.curToken.describe())
	}
	return t, nil
}

func (p *typeParser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *typeParser) curTokenIs(t tokenType) bool {
	return p.curToken.Type == t
}

func (p *typeParser) expect(t tokenType) typeToken {
	if !p.curTokenIs(t) {
		p.fail("expected %s, got %s", t, p.curToken.describe())
	}
	tok := p.curToken
	p.nextToken()
	return tok
}

func (p *typeParser) fail(format string, args ...interface{}) {
	p.failAt(p.curToken.Column, format, args...)
}

func (p *typeParser) failAt(column int, format string, args ...interface{}) {
	panic(&TypeSyntaxError{Input: p.input, Column: column, Msg: fmt.Sprintf(format, args...)})
}

// parseType parses an arrow chain; arrows associate to the right.
func (p *typeParser) parseType() typesystem.Type {
	domain := p.parsePostfix()
	if !p.curTokenIs(tokArrow) {
		return domain
	}
	p.nextToken()
	return typesystem.TFunc{Domain: domain, Codomain: p.parseType()}
}

func (p *typeParser) parsePostfix() typesystem.Type {
	t := p.parsePrimary()
	for p.curTokenIs(tokLBracket) {
		p.nextToken()
		t = typesystem.TInstantiated{Base: t, Bindings: p.parseBindings()}
		p.expect(tokRBracket)
	}
	return t
}

func (p *typeParser) parseBindings() typesystem.Bindings {
	bindings := make(typesystem.Bindings)
	for {
		name := p.expect(tokIdent)
		ref := typesystem.Ref(name.Literal)
		if _, dup := bindings[ref]; dup {
			p.failAt(name.Column, "%s bound twice", ref)
		}
		p.expect(tokBind)
		bindings[ref] = p.parseType()
		if !p.curTokenIs(tokComma) {
			return bindings
		}
		p.nextToken()
	}
}

func (p *typeParser) parsePrimary() typesystem.Type {
	tok := p.curToken
	switch tok.Type {
	case tokIdent:
		p.nextToken()
		switch tok.Literal {
		case "number":
			return typesystem.TNumber{}
		case "invalid":
			return typesystem.TInvalid{}
		}
		return typesystem.TName{Ref: typesystem.Ref(tok.Literal)}
	case tokInt:
		return p.parseRange()
	case tokMutable, tokRigid:
		if p.mint == nil {
			p.fail("placeholder %s not allowed here", tok.describe())
		}
		p.nextToken()
		mode := typesystem.Mutable
		if tok.Type == tokRigid {
			mode = typesystem.Rigid
		}
		return p.mint(mode, tok.Literal)
	case tokLParen:
		p.nextToken()
		first := p.parseType()
		if p.curTokenIs(tokRParen) {
			p.nextToken()
			return first
		}
		p.expect(tokComma)
		second := p.parseType()
		p.expect(tokRParen)
		return typesystem.TProduct{Left: first, Right: second}
	}
	p.fail("unexpected %s", tok.describe())
	return nil
}

func (p *typeParser) parseRange() typesystem.Type {
	start := p.curToken.Column
	lo := p.parseInt()
	upto := p.expect(tokIdent)
	if upto.Literal != "upto" {
		p.failAt(upto.Column, "expected 'upto', got %q", upto.Literal)
	}
	hi := p.parseInt()
	r, err := typesystem.NewRange(lo, hi)
	if err != nil {
		p.failAt(start, "%v", err)
	}
	return r
}

func (p *typeParser) parseInt() int64 {
	tok := p.expect(tokInt)
	n, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		p.failAt(tok.Column, "bad integer %q", tok.Literal)
	}
	return n
}
