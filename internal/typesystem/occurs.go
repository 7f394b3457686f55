package typesystem

import (
	set "github.com/hashicorp/go-set/v3"
)

// FreeVars collects every placeholder mentioned in t, structurally. It does
// not look through a store.
func FreeVars(t Type) *set.Set[UniVar] {
	vars := set.New[UniVar](0)
	collectVars(t, vars)
	return vars
}

func collectVars(t Type, vars *set.Set[UniVar]) {
	switch t := t.(type) {
	case TVar:
		vars.Insert(t.ID)
	case TFunc:
		collectVars(t.Domain, vars)
		collectVars(t.Codomain, vars)
	case TProduct:
		collectVars(t.Left, vars)
		collectVars(t.Right, vars)
	case TInstantiated:
		collectVars(t.Base, vars)
		for _, b := range t.Bindings {
			collectVars(b, vars)
		}
	}
}

// Occurs reports whether id appears anywhere inside t, including behind
// placeholders already committed in store. A nil store makes the check
// purely structural.
func Occurs(store *Store, id UniVar, t Type) bool {
	return occurs(store, id, t, set.New[UniVar](0))
}

func occurs(store *Store, id UniVar, t Type, visited *set.Set[UniVar]) bool {
	switch t := t.(type) {
	case TVar:
		if t.ID == id {
			return true
		}
		if store == nil || !visited.Insert(t.ID) {
			return false
		}
		b, ok := store.entries[t.ID]
		if !ok {
			return false
		}
		if occurs(store, id, b.Type, visited) {
			return true
		}
		for _, bound := range b.Bindings {
			if occurs(store, id, bound, visited) {
				return true
			}
		}
		return false
	case TFunc:
		return occurs(store, id, t.Domain, visited) || occurs(store, id, t.Codomain, visited)
	case TProduct:
		return occurs(store, id, t.Left, visited) || occurs(store, id, t.Right, visited)
	case TInstantiated:
		if occurs(store, id, t.Base, visited) {
			return true
		}
		for _, bound := range t.Bindings {
			if occurs(store, id, bound, visited) {
				return true
			}
		}
		return false
	default:
		// Name, Number, Range, Invalid
		return false
	}
}
