package typesystem

import (
	"github.com/funvibe/rangetyck/internal/diagnostics"
	"github.com/funvibe/rangetyck/internal/token"
)

// Deferred is a pair the unifier could not decide because one side is an
// unresolved rigid placeholder. Var is that placeholder, wrapped in
// TInstantiated when it was met under a non-empty context.
type Deferred struct {
	Span  token.Span
	Var   Type
	Other Type
}

// Unifier compares pairs of types, committing mutable placeholders into the
// store and reporting what cannot be reconciled. It never fails; every
// problem becomes a diagnostic.
type Unifier struct {
	store    *Store
	reporter diagnostics.Reporter
	deferred []Deferred
}

func NewUnifier(store *Store, reporter diagnostics.Reporter) *Unifier {
	return &Unifier{store: store, reporter: reporter}
}

func (u *Unifier) Store() *Store {
	return u.store
}

// TakeDeferred returns the pairs deferred since the last call and clears
// the worklist.
func (u *Unifier) TakeDeferred() []Deferred {
	deferred := u.deferred
	u.deferred = nil
	return deferred
}

// Unify checks actual against expected in the empty context.
func (u *Unifier) Unify(span token.Span, expected, actual Type) {
	u.UnifyWithin(nil, span, expected, actual)
}

// UnifyWithin checks actual against expected, reading Name references
// through ctx.
func (u *Unifier) UnifyWithin(ctx Bindings, span token.Span, expected, actual Type) {
	// Ranges and numbers
	switch exp := expected.(type) {
	case TRange:
		if act, ok := actual.(TRange); ok {
			if !exp.Contains(act) {
				u.reporter.Report(diagnostics.NarrowRange(span,
					[2]int64{exp.Lo, exp.Hi}, [2]int64{act.Lo, act.Hi}))
			}
			return
		}
	case TNumber:
		switch actual.(type) {
		case TRange, TNumber:
			return
		}
	}

	// Names bound by the instantiation context
	if n, ok := expected.(TName); ok {
		if bound, ok := ctx.Lookup(n.Ref); ok {
			u.UnifyWithin(ctx, span, bound, actual)
			return
		}
	}
	if n, ok := actual.(TName); ok {
		if bound, ok := ctx.Lookup(n.Ref); ok {
			u.UnifyWithin(ctx, span, expected, bound)
			return
		}
	}

	// Structural composites
	switch exp := expected.(type) {
	case TName:
		if act, ok := actual.(TName); ok {
			if exp.Ref != act.Ref {
				u.incompatible(span, expected, actual)
			}
			return
		}
	case TFunc:
		if act, ok := actual.(TFunc); ok {
			u.UnifyWithin(ctx, span, exp.Domain, act.Domain)
			u.UnifyWithin(ctx, span, exp.Codomain, act.Codomain)
			return
		}
	case TProduct:
		if act, ok := actual.(TProduct); ok {
			u.UnifyWithin(ctx, span, exp.Left, act.Left)
			u.UnifyWithin(ctx, span, exp.Right, act.Right)
			return
		}
	}

	// Placeholders
	ev, expIsVar := expected.(TVar)
	av, actIsVar := actual.(TVar)
	if expIsVar && actIsVar && ev.ID == av.ID {
		return
	}
	if expIsVar {
		if b, ok := u.store.Lookup(ev.Mode, ev.ID); ok {
			u.UnifyWithin(MergeBindings(ctx, b.Bindings), span, b.Type, actual)
			return
		}
	}
	if actIsVar {
		if b, ok := u.store.Lookup(av.Mode, av.ID); ok {
			u.UnifyWithin(MergeBindings(ctx, b.Bindings), span, expected, b.Type)
			return
		}
	}
	switch {
	case expIsVar && actIsVar && ev.Mode == Rigid && av.Mode == Mutable:
		// Prefer committing the mutable side over deferring the rigid one.
		u.bind(ctx, span, av, expected)
		return
	case expIsVar:
		u.bind(ctx, span, ev, actual)
		return
	case actIsVar:
		u.bind(ctx, span, av, expected)
		return
	}

	// Instantiation is transparent once its bindings join the context.
	if inst, ok := expected.(TInstantiated); ok {
		u.UnifyWithin(MergeBindings(ctx, inst.Bindings), span, inst.Base, actual)
		return
	}
	if inst, ok := actual.(TInstantiated); ok {
		u.UnifyWithin(MergeBindings(ctx, inst.Bindings), span, expected, inst.Base)
		return
	}

	if _, ok := expected.(TInvalid); ok {
		return
	}
	if _, ok := actual.(TInvalid); ok {
		return
	}

	u.incompatible(span, expected, actual)
}

// bind resolves the unresolved placeholder v against other.
func (u *Unifier) bind(ctx Bindings, span token.Span, v TVar, other Type) {
	if v.Mode == Rigid {
		var held Type = v
		if len(ctx) > 0 {
			held = TInstantiated{Base: v, Bindings: ctx}
		}
		u.deferred = append(u.deferred, Deferred{Span: span, Var: held, Other: other})
		return
	}

	if Occurs(u.store, v.ID, other) {
		snap := u.store.View()
		u.reporter.Report(diagnostics.RecursiveInference(span, v.String(), Pretty(other, snap)))
		u.store.Commit(ctx, v.ID, TInvalid{})
		u.store.SetCause(v.ID, span)
		return
	}

	u.store.Commit(ctx, v.ID, other)
	u.store.SetCause(v.ID, span)
}

func (u *Unifier) incompatible(span token.Span, expected, actual Type) {
	snap := u.store.View()
	u.reporter.Report(diagnostics.Incompatible(span, Pretty(expected, snap), Pretty(actual, snap)))
}
