package solver

import (
	"github.com/funvibe/rangetyck/internal/symbols"
	"github.com/funvibe/rangetyck/internal/typesystem"
)

// head resolves the outermost constructor of t: committed placeholders are
// followed, instantiations are unwrapped and names bound by the collected
// context are substituted. The returned context is what the head must be
// read under.
func (s *Solver) head(t typesystem.Type) (typesystem.Type, typesystem.Bindings) {
	var ctx typesystem.Bindings
	seen := make(map[typesystem.UniVar]bool)
	names := make(map[typesystem.Ref]bool)
	for {
		switch h := t.(type) {
		case typesystem.TVar:
			if seen[h.ID] {
				return h, ctx
			}
			seen[h.ID] = true
			b, ok := s.store.Lookup(h.Mode, h.ID)
			if !ok {
				return h, ctx
			}
			ctx = typesystem.MergeBindings(ctx, b.Bindings)
			t = b.Type
		case typesystem.TInstantiated:
			ctx = typesystem.MergeBindings(ctx, h.Bindings)
			t = h.Base
		case typesystem.TName:
			bound, ok := ctx.Lookup(h.Ref)
			if !ok || names[h.Ref] {
				return h, ctx
			}
			names[h.Ref] = true
			t = bound
		default:
			return h, ctx
		}
	}
}

// shape looks ref up, following alias bodies that are themselves names.
// The returned ref is the last one in the alias chain.
func (s *Solver) shape(ref typesystem.Ref) (typesystem.Ref, symbols.Shape, bool) {
	seen := make(map[typesystem.Ref]bool)
	for !seen[ref] {
		seen[ref] = true
		shape, ok := s.oracle.Lookup(ref)
		if !ok {
			return ref, symbols.Shape{}, false
		}
		next, isName := shape.Body.(typesystem.TName)
		if !isName || shape.IsRecord() {
			return ref, shape, true
		}
		ref = next.Ref
	}
	return ref, symbols.Shape{}, false
}

func isUnresolved(t typesystem.Type) bool {
	_, ok := t.(typesystem.TVar)
	return ok
}
