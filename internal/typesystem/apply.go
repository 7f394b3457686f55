package typesystem

import (
	set "github.com/hashicorp/go-set/v3"
)

// Apply erases every committed placeholder in t, following the store
// transitively and reading bound names through the instantiation contexts
// met on the way. Placeholders without a binding stay in place, and a
// placeholder met again while it is being expanded is left as is.
func Apply(store *Store, t Type) Type {
	return apply(store, nil, t, set.New[UniVar](0))
}

func apply(store *Store, ctx Bindings, t Type, expanding *set.Set[UniVar]) Type {
	switch t := t.(type) {
	case TName:
		if bound, ok := ctx.Lookup(t.Ref); ok {
			return apply(store, ctx, bound, expanding)
		}
		return t
	case TVar:
		if expanding.Contains(t.ID) {
			return t
		}
		b, ok := store.Lookup(t.Mode, t.ID)
		if !ok {
			return t
		}
		expanding.Insert(t.ID)
		defer expanding.Remove(t.ID)
		return apply(store, MergeBindings(ctx, b.Bindings), b.Type, expanding)
	case TFunc:
		return TFunc{
			Domain:   apply(store, ctx, t.Domain, expanding),
			Codomain: apply(store, ctx, t.Codomain, expanding),
		}
	case TProduct:
		return TProduct{
			Left:  apply(store, ctx, t.Left, expanding),
			Right: apply(store, ctx, t.Right, expanding),
		}
	case TInstantiated:
		return apply(store, MergeBindings(ctx, t.Bindings), t.Base, expanding)
	default:
		return t
	}
}
