package symbols

import (
	"sort"

	"github.com/funvibe/rangetyck/internal/typesystem"
)

// Shape is the declared form of a nominal type.
type Shape struct {
	// Params are the rigid parameters of a polymorphic declaration, in order.
	Params []typesystem.Ref
	// Fields is non-nil for records.
	Fields map[string]typesystem.Type
	// Body is the aliased type, nil for opaque nominals and records.
	Body typesystem.Type
	// Numeric and Textual mark nominals that satisfy the corresponding
	// obligations without an alias body.
	Numeric bool
	Textual bool
}

// IsRecord reports whether the shape declares fields.
func (s Shape) IsRecord() bool {
	return s.Fields != nil
}

// Field returns the declared type of name.
func (s Shape) Field(name string) (typesystem.Type, bool) {
	t, ok := s.Fields[name]
	return t, ok
}

// FieldNames returns the field names in sorted order.
func (s Shape) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// mentions reports whether t refers to the nominal ref anywhere.
func mentions(t typesystem.Type, ref typesystem.Ref) bool {
	switch t := t.(type) {
	case typesystem.TName:
		return t.Ref == ref
	case typesystem.TFunc:
		return mentions(t.Domain, ref) || mentions(t.Codomain, ref)
	case typesystem.TProduct:
		return mentions(t.Left, ref) || mentions(t.Right, ref)
	case typesystem.TInstantiated:
		if mentions(t.Base, ref) {
			return true
		}
		for _, b := range t.Bindings {
			if mentions(b, ref) {
				return true
			}
		}
	}
	return false
}

// Oracle resolves nominal references to their declared shapes.
type Oracle interface {
	Lookup(ref typesystem.Ref) (Shape, bool)
}
