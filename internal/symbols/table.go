package symbols

import (
	"fmt"
	"sort"

	"github.com/funvibe/rangetyck/internal/typesystem"
)

type ScopeType int

const (
	ScopePrelude ScopeType = iota // Designated built-in types (unit, text)
	ScopeGlobal                   // Declarations of one problem
)

// Table is an Oracle backed by a map. Lookups fall back to the outer table,
// so a problem's declarations sit on top of the prelude.
type Table struct {
	store     map[typesystem.Ref]Shape
	outer     *Table
	scopeType ScopeType
}

func NewEmptyTable() *Table {
	return &Table{
		store:     make(map[typesystem.Ref]Shape),
		scopeType: ScopeGlobal,
	}
}

func NewEnclosedTable(outer *Table) *Table {
	t := NewEmptyTable()
	t.outer = outer
	return t
}

// NewPrelude declares the designated unit type and the text types.
func NewPrelude(unit typesystem.Ref, text []typesystem.Ref) *Table {
	t := NewEmptyTable()
	t.scopeType = ScopePrelude
	t.store[unit] = Shape{}
	for _, ref := range text {
		t.store[ref] = Shape{Textual: true}
	}
	return t
}

// Outer returns the enclosing table, or nil.
func (t *Table) Outer() *Table {
	return t.outer
}

// IsPrelude reports whether t holds the built-in declarations.
func (t *Table) IsPrelude() bool {
	return t.scopeType == ScopePrelude
}

// Register declares ref in this table. A name may be declared once per
// table; it may shadow a prelude declaration. An alias body may not name
// the alias itself.
func (t *Table) Register(ref typesystem.Ref, shape Shape) error {
	if ref == "" {
		return fmt.Errorf("empty type name")
	}
	if _, ok := t.store[ref]; ok {
		return fmt.Errorf("type %s declared twice", ref)
	}
	seen := make(map[typesystem.Ref]bool, len(shape.Params))
	for _, p := range shape.Params {
		if seen[p] {
			return fmt.Errorf("type %s: parameter %s repeated", ref, p)
		}
		seen[p] = true
	}
	if shape.Body != nil && !seen[ref] && mentions(shape.Body, ref) {
		return fmt.Errorf("type %s: alias refers to itself", ref)
	}
	t.store[ref] = shape
	return nil
}

// Lookup implements Oracle.
func (t *Table) Lookup(ref typesystem.Ref) (Shape, bool) {
	for scope := t; scope != nil; scope = scope.outer {
		if shape, ok := scope.store[ref]; ok {
			return shape, true
		}
	}
	return Shape{}, false
}

// Refs returns the names declared in this table, not its outer ones.
func (t *Table) Refs() []typesystem.Ref {
	refs := make([]typesystem.Ref, 0, len(t.store))
	for ref := range t.store {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i] < refs[j] })
	return refs
}
