package typesystem

import (
	"sort"

	"github.com/funvibe/rangetyck/internal/token"
)

// Binding is what a placeholder resolved to, together with the
// instantiation context it was resolved under.
type Binding struct {
	Bindings Bindings
	Type     Type
}

// Store is the substitution of one solving session. Every placeholder is
// committed at most once and never overwritten.
type Store struct {
	entries map[UniVar]Binding
	causes  map[UniVar]token.Span
}

func NewStore() *Store {
	return &Store{
		entries: make(map[UniVar]Binding),
		causes:  make(map[UniVar]token.Span),
	}
}

// Lookup returns the binding of id with its type re-tagged to mode.
func (s *Store) Lookup(mode Mode, id UniVar) (Binding, bool) {
	b, ok := s.entries[id]
	if !ok {
		return Binding{}, false
	}
	return Binding{Bindings: b.Bindings, Type: WithMode(b.Type, mode)}, true
}

// Has reports whether id is committed.
func (s *Store) Has(id UniVar) bool {
	_, ok := s.entries[id]
	return ok
}

// Commit stores ty (under bindings) for id. Committing a placeholder twice
// is a solver bug and panics with *DoubleCommitError.
func (s *Store) Commit(bindings Bindings, id UniVar, ty Type) {
	if existing, ok := s.entries[id]; ok {
		panic(&DoubleCommitError{Var: id, Existing: existing.Type, Attempted: ty})
	}
	s.entries[id] = Binding{Bindings: bindings, Type: ty}
}

// SetCause records the span whose obligation committed id.
func (s *Store) SetCause(id UniVar, span token.Span) {
	s.causes[id] = span
}

// Cause returns the span recorded for id by SetCause.
func (s *Store) Cause(id UniVar) (token.Span, bool) {
	span, ok := s.causes[id]
	return span, ok
}

// Causes returns a copy of all recorded causes.
func (s *Store) Causes() map[UniVar]token.Span {
	out := make(map[UniVar]token.Span, len(s.causes))
	for id, span := range s.causes {
		out[id] = span
	}
	return out
}

func (s *Store) Len() int {
	return len(s.entries)
}

// Vars returns the committed placeholders in stable order.
func (s *Store) Vars() []UniVar {
	return sortedVars(s.entries)
}

// Snapshot returns an immutable copy of the current entries.
func (s *Store) Snapshot() Snapshot {
	entries := make(map[UniVar]Binding, len(s.entries))
	for id, b := range s.entries {
		entries[id] = b
	}
	return Snapshot{entries: entries}
}

// View shares the live entries without copying. Only for read-only use
// that finishes before the next Commit.
func (s *Store) View() Snapshot {
	return Snapshot{entries: s.entries}
}

// Snapshot is a read-only view of a Store at one point in time.
type Snapshot struct {
	entries map[UniVar]Binding
}

// Lookup returns the binding of id as stored.
func (s Snapshot) Lookup(id UniVar) (Binding, bool) {
	b, ok := s.entries[id]
	return b, ok
}

func (s Snapshot) Len() int {
	return len(s.entries)
}

// Vars returns the placeholders in the snapshot in stable order.
func (s Snapshot) Vars() []UniVar {
	return sortedVars(s.entries)
}

func sortedVars(entries map[UniVar]Binding) []UniVar {
	vars := make([]UniVar, 0, len(entries))
	for id := range entries {
		vars = append(vars, id)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Less(vars[j]) })
	return vars
}
