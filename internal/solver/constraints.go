package solver

import (
	"fmt"
	"strings"

	"github.com/funvibe/rangetyck/internal/token"
	"github.com/funvibe/rangetyck/internal/typesystem"
)

// Constraint is a typing obligation. The set of implementations is closed.
type Constraint interface {
	// At is the span diagnostics about this obligation point to.
	At() token.Span
	// Kind is the obligation's name as spelled in problem files.
	Kind() string
	String() string
	isConstraint()
}

var (
	_ Constraint = Assignable{}
	_ Constraint = Equal{}
	_ Constraint = Field{}
	_ Constraint = Instantiated{}
	_ Constraint = UnitLike{}
	_ Constraint = Numeric{}
	_ Constraint = Textual{}
	_ Constraint = TypeNumeric{}
)

// CoercionID names an assignment site so lowering can find its coercion.
type CoercionID string

// Assignable requires a value of type From to be storable in Into.
type Assignable struct {
	Span token.Span
	ID   CoercionID
	Into typesystem.Type
	From typesystem.Type
}

// Equal delegates straight to the unifier.
type Equal struct {
	Span     token.Span
	Expected typesystem.Type
	Actual   typesystem.Type
}

// Field requires Target to be the type of field Name on the record Of.
type Field struct {
	Span   token.Span
	Target typesystem.Type
	Of     typesystem.Type
	Name   string
}

// Template is a polymorphic item: Body over the rigid parameters Params.
type Template struct {
	Params []typesystem.Ref
	Body   typesystem.Type
}

func (t Template) String() string {
	if len(t.Params) == 0 {
		return t.Body.String()
	}
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = string(p)
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(params, " "), t.Body)
}

// Instantiated requires Type to be some instantiation of Template.
type Instantiated struct {
	Span     token.Span
	Type     typesystem.Type
	Template Template
}

// UnitLike requires Type to be the designated unit type.
type UnitLike struct {
	Span token.Span
	Type typesystem.Type
}

// Numeric requires Type to support numeric operations.
type Numeric struct {
	Span token.Span
	Type typesystem.Type
}

// Textual requires Type to be a text type.
type Textual struct {
	Span token.Span
	Type typesystem.Type
}

// TypeNumeric is a numeric obligation checked only after the main loop,
// defaulting to number when still undecided.
type TypeNumeric struct {
	Span token.Span
	Type typesystem.Type
}

func (c Assignable) At() token.Span   { return c.Span }
func (c Equal) At() token.Span        { return c.Span }
func (c Field) At() token.Span        { return c.Span }
func (c Instantiated) At() token.Span { return c.Span }
func (c UnitLike) At() token.Span     { return c.Span }
func (c Numeric) At() token.Span      { return c.Span }
func (c Textual) At() token.Span      { return c.Span }
func (c TypeNumeric) At() token.Span  { return c.Span }

func (Assignable) Kind() string   { return "assignable" }
func (Equal) Kind() string        { return "equal" }
func (Field) Kind() string        { return "field" }
func (Instantiated) Kind() string { return "instantiated" }
func (UnitLike) Kind() string     { return "unit" }
func (Numeric) Kind() string      { return "numeric" }
func (Textual) Kind() string      { return "textual" }
func (TypeNumeric) Kind() string  { return "type-numeric" }

func (Assignable) isConstraint()   {}
func (Equal) isConstraint()        {}
func (Field) isConstraint()        {}
func (Instantiated) isConstraint() {}
func (UnitLike) isConstraint()     {}
func (Numeric) isConstraint()      {}
func (Textual) isConstraint()      {}
func (TypeNumeric) isConstraint()  {}

func (c Assignable) String() string {
	return fmt.Sprintf("%s: %s <- %s", c.Span, c.Into, c.From)
}

func (c Equal) String() string {
	return fmt.Sprintf("%s: %s ~ %s", c.Span, c.Expected, c.Actual)
}

func (c Field) String() string {
	return fmt.Sprintf("%s: %s ~ %s.%s", c.Span, c.Target, c.Of, c.Name)
}

func (c Instantiated) String() string {
	return fmt.Sprintf("%s: %s instance of %s", c.Span, c.Type, c.Template)
}

func (c UnitLike) String() string    { return fmt.Sprintf("%s: unit %s", c.Span, c.Type) }
func (c Numeric) String() string     { return fmt.Sprintf("%s: numeric %s", c.Span, c.Type) }
func (c Textual) String() string     { return fmt.Sprintf("%s: textual %s", c.Span, c.Type) }
func (c TypeNumeric) String() string { return fmt.Sprintf("%s: type-numeric %s", c.Span, c.Type) }
