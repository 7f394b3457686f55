package typesystem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/rangetyck/internal/token"
)

// Type is the interface for all types in our system.
// The set of implementations is closed.
type Type interface {
	String() string
	isType()
}

var (
	_ Type = TInvalid{}
	_ Type = TNumber{}
	_ Type = TRange{}
	_ Type = TName{}
	_ Type = TFunc{}
	_ Type = TProduct{}
	_ Type = TVar{}
	_ Type = TInstantiated{}
)

// Ref identifies a nominal type declared elsewhere. Two names are the same
// type iff their refs are equal.
type Ref string

func (r Ref) String() string { return string(r) }

// Mode tells whether a placeholder may be committed by the unifier.
type Mode int

const (
	// Mutable placeholders are introduced by the solver and freely resolvable.
	Mutable Mode = iota
	// Rigid placeholders are user-visible type variables. They are never
	// committed by the unifier directly.
	Rigid
)

func (m Mode) String() string {
	switch m {
	case Mutable:
		return "mutable"
	case Rigid:
		return "rigid"
	default:
		return "unknown"
	}
}

// UniVar is the identity of a unification placeholder: the span that
// introduced it plus an ordinal for that span.
type UniVar struct {
	Span  token.Span
	Count int
}

func (v UniVar) String() string {
	return fmt.Sprintf("%s#%d", v.Span, v.Count)
}

// Less orders placeholders by span, then ordinal. Used for stable output.
func (v UniVar) Less(w UniVar) bool {
	if v.Span.File != w.Span.File {
		return v.Span.File < w.Span.File
	}
	if v.Span.Start != w.Span.Start {
		return v.Span.Start.Before(w.Span.Start)
	}
	if v.Span.End != w.Span.End {
		return v.Span.End.Before(w.Span.End)
	}
	return v.Count < w.Count
}

// TInvalid is the type of something that already failed to check.
// It unifies with anything and never produces further diagnostics.
type TInvalid struct{}

func (TInvalid) isType() {}
func (TInvalid) String() string { return "<invalid>" }

// TNumber is the unconstrained numeric supertype.
type TNumber struct{}

func (TNumber) isType() {}
func (TNumber) String() string { return "number" }

// TRange is the inclusive integer interval Lo..Hi. Build it with NewRange.
type TRange struct {
	Lo int64
	Hi int64
}

// NewRange returns the range type lo upto hi, rejecting lo > hi.
func NewRange(lo, hi int64) (TRange, error) {
	if lo > hi {
		return TRange{}, &MalformedRangeError{Lo: lo, Hi: hi}
	}
	return TRange{Lo: lo, Hi: hi}, nil
}

// MustRange is NewRange for bounds known to be well formed.
func MustRange(lo, hi int64) TRange {
	r, err := NewRange(lo, hi)
	if err != nil {
		panic(err)
	}
	return r
}

// Contains reports whether every value of other is also a value of r.
func (r TRange) Contains(other TRange) bool {
	return r.Lo <= other.Lo && r.Hi >= other.Hi
}

func (TRange) isType() {}
func (r TRange) String() string {
	return fmt.Sprintf("%d upto %d", r.Lo, r.Hi)
}

// TName refers to a nominal or alias type.
type TName struct {
	Ref Ref
}

func (TName) isType() {}
func (t TName) String() string { return string(t.Ref) }

// TFunc is the function type Domain -> Codomain.
type TFunc struct {
	Domain   Type
	Codomain Type
}

func (TFunc) isType() {}
func (t TFunc) String() string {
	return renderFunc(t, func(t Type) string { return t.String() })
}

// TProduct is the pair type (Left, Right).
type TProduct struct {
	Left  Type
	Right Type
}

func (TProduct) isType() {}
func (t TProduct) String() string {
	return fmt.Sprintf("(%s, %s)", t.Left, t.Right)
}

// TVar is a unification placeholder.
type TVar struct {
	Mode Mode
	ID   UniVar
}

func (TVar) isType() {}
func (t TVar) String() string {
	if t.Mode == Rigid {
		return "'" + t.ID.String()
	}
	return "?" + t.ID.String()
}

// Var returns a mutable placeholder type for id.
func Var(id UniVar) TVar { return TVar{Mode: Mutable, ID: id} }

// RigidVar returns a rigid placeholder type for id.
func RigidVar(id UniVar) TVar { return TVar{Mode: Rigid, ID: id} }

// TInstantiated is Base read through Bindings, a substitution for the
// rigid parameters of a polymorphic item.
type TInstantiated struct {
	Base     Type
	Bindings Bindings
}

func (TInstantiated) isType() {}
func (t TInstantiated) String() string {
	return renderInstantiated(t, func(t Type) string { return t.String() })
}

func renderFunc(t TFunc, render func(Type) string) string {
	domain := render(t.Domain)
	if _, ok := t.Domain.(TFunc); ok {
		domain = "(" + domain + ")"
	}
	return domain + " -> " + render(t.Codomain)
}

func renderInstantiated(t TInstantiated, render func(Type) string) string {
	base := render(t.Base)
	switch t.Base.(type) {
	case TFunc, TRange:
		base = "(" + base + ")"
	}
	parts := make([]string, 0, len(t.Bindings))
	for _, ref := range t.Bindings.Refs() {
		parts = append(parts, fmt.Sprintf("%s := %s", ref, render(t.Bindings[ref])))
	}
	return base + "[" + strings.Join(parts, ", ") + "]"
}

// Equal reports structural equality. Placeholders are equal when their
// identities are, regardless of mode.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case TInvalid:
		_, ok := b.(TInvalid)
		return ok
	case TNumber:
		_, ok := b.(TNumber)
		return ok
	case TRange:
		b, ok := b.(TRange)
		return ok && a == b
	case TName:
		b, ok := b.(TName)
		return ok && a.Ref == b.Ref
	case TFunc:
		b, ok := b.(TFunc)
		return ok && Equal(a.Domain, b.Domain) && Equal(a.Codomain, b.Codomain)
	case TProduct:
		b, ok := b.(TProduct)
		return ok && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case TVar:
		b, ok := b.(TVar)
		return ok && a.ID == b.ID
	case TInstantiated:
		b, ok := b.(TInstantiated)
		if !ok || !Equal(a.Base, b.Base) || len(a.Bindings) != len(b.Bindings) {
			return false
		}
		for ref, t := range a.Bindings {
			u, ok := b.Bindings[ref]
			if !ok || !Equal(t, u) {
				return false
			}
		}
		return true
	}
	return false
}

// IsClosed reports whether t mentions no placeholder.
func IsClosed(t Type) bool {
	return FreeVars(t).Empty()
}

// WithMode re-tags every placeholder in t with mode.
func WithMode(t Type, mode Mode) Type {
	switch t := t.(type) {
	case TVar:
		return TVar{Mode: mode, ID: t.ID}
	case TFunc:
		return TFunc{Domain: WithMode(t.Domain, mode), Codomain: WithMode(t.Codomain, mode)}
	case TProduct:
		return TProduct{Left: WithMode(t.Left, mode), Right: WithMode(t.Right, mode)}
	case TInstantiated:
		bindings := make(Bindings, len(t.Bindings))
		for ref, ty := range t.Bindings {
			bindings[ref] = WithMode(ty, mode)
		}
		return TInstantiated{Base: WithMode(t.Base, mode), Bindings: bindings}
	default:
		return t
	}
}

// Bindings maps rigid parameter names to the types they stand for.
type Bindings map[Ref]Type

// Refs returns the bound names in sorted order.
func (b Bindings) Refs() []Ref {
	refs := make([]Ref, 0, len(b))
	for ref := range b {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs
}

// Lookup returns the type bound to ref. A binding of a name to itself is
// treated as no binding at all.
func (b Bindings) Lookup(ref Ref) (Type, bool) {
	t, ok := b[ref]
	if !ok {
		return nil, false
	}
	if n, isName := t.(TName); isName && n.Ref == ref {
		return nil, false
	}
	return t, true
}
