package solver

import (
	"sort"

	"github.com/funvibe/rangetyck/internal/diagnostics"
	"github.com/funvibe/rangetyck/internal/token"
	"github.com/funvibe/rangetyck/internal/typesystem"
	set "github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
)

// CoercionKind says how lowering converts an assigned value.
type CoercionKind int

const (
	// Identity keeps the representation.
	Identity CoercionKind = iota
	// Widen moves a value into a wider range or into number.
	Widen
)

func (k CoercionKind) String() string {
	switch k {
	case Identity:
		return "identity"
	case Widen:
		return "widen"
	default:
		return "unknown"
	}
}

// Coercion is the outcome of one Assignable obligation.
type Coercion struct {
	At   token.Span
	Kind CoercionKind
	Into typesystem.Type
	From typesystem.Type
}

// Solution is what a session hands to lowering.
type Solution struct {
	Diagnostics []*diagnostics.DiagnosticError
	Store       *typesystem.Store
	// Counts is the placeholder counter after solving, to seed the next
	// session on the same spans.
	Counts    map[token.Span]int
	Coercions map[CoercionID]Coercion
	Batches   int
	Stalled   bool
}

// Resolve substitutes every committed placeholder in t.
func (s *Solution) Resolve(t typesystem.Type) typesystem.Type {
	return typesystem.Apply(s.Store, t)
}

// Substitution returns every committed placeholder fully resolved.
func (s *Solution) Substitution() map[typesystem.UniVar]typesystem.Type {
	return lo.Associate(s.Store.Vars(), func(v typesystem.UniVar) (typesystem.UniVar, typesystem.Type) {
		return v, s.Resolve(typesystem.Var(v))
	})
}

// Causes maps committed placeholders to the span that committed them.
func (s *Solution) Causes() map[typesystem.UniVar]token.Span {
	return s.Store.Causes()
}

// Unresolved lists, in stable order, the placeholders still free in types
// after substitution.
func (s *Solution) Unresolved(types ...typesystem.Type) []typesystem.UniVar {
	free := set.New[typesystem.UniVar](0)
	for _, t := range types {
		free.InsertSet(typesystem.FreeVars(s.Resolve(t)))
	}
	vars := free.Slice()
	sort.Slice(vars, func(i, j int) bool { return vars[i].Less(vars[j]) })
	return vars
}

// HasErrors reports whether the session produced any diagnostic.
func (s *Solution) HasErrors() bool {
	return len(s.Diagnostics) > 0
}

// CoercionIDs returns the recorded coercion ids in sorted order.
func (s *Solution) CoercionIDs() []CoercionID {
	ids := lo.Keys(s.Coercions)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
