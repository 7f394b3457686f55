package typesystem

import "github.com/funvibe/rangetyck/internal/config"

// MergeBindings returns the union of two instantiation contexts. Entries of
// inner win over outer for the same name. Neither argument is modified; when
// one side is empty the other is returned as is, so contexts are shared
// rather than copied along the recursion.
//
// Callers never produce two bindings for one name with different intent.
// In debug mode such a conflict panics with *BindingConflictError.
func MergeBindings(outer, inner Bindings) Bindings {
	if len(inner) == 0 {
		return outer
	}
	if len(outer) == 0 {
		return inner
	}

	merged := make(Bindings, len(outer)+len(inner))
	for ref, t := range outer {
		merged[ref] = t
	}
	for ref, t := range inner {
		if prev, ok := merged[ref]; ok && config.IsDebugMode && !Equal(prev, t) {
			panic(&BindingConflictError{Ref: ref, Outer: prev, Inner: t})
		}
		merged[ref] = t
	}
	return merged
}
