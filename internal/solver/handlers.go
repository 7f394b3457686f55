package solver

import (
	"github.com/funvibe/rangetyck/internal/diagnostics"
	"github.com/funvibe/rangetyck/internal/typesystem"
)

func (s *Solver) assign(c Assignable) {
	into, _ := s.head(c.Into)
	from, _ := s.head(c.From)

	kind := Identity
	switch into := into.(type) {
	case typesystem.TRange:
		if from, ok := from.(typesystem.TRange); ok {
			if !into.Contains(from) {
				s.reporter.Report(diagnostics.NarrowRange(c.Span,
					[2]int64{into.Lo, into.Hi}, [2]int64{from.Lo, from.Hi}))
				return
			}
			if into != from {
				kind = Widen
			}
			s.record(c, kind)
			return
		}
	case typesystem.TNumber:
		if _, ok := from.(typesystem.TRange); ok {
			s.record(c, Widen)
			return
		}
	}

	reported := s.reporter.n
	s.unifier.Unify(c.Span, c.Into, c.From)
	if s.reporter.n != reported {
		return
	}
	s.record(c, kind)
}

func (s *Solver) record(c Assignable, kind CoercionKind) {
	if c.ID == "" {
		return
	}
	s.coercions[c.ID] = Coercion{At: c.Span, Kind: kind, Into: c.Into, From: c.From}
}

func (s *Solver) field(c Field) {
	of, ctx := s.head(c.Of)

	switch h := of.(type) {
	case typesystem.TVar:
		s.push(c)
		return
	case typesystem.TInvalid:
		s.unifier.Unify(c.Span, c.Target, typesystem.TInvalid{})
		return
	case typesystem.TName:
		_, shape, ok := s.shape(h.Ref)
		if !ok {
			s.push(c)
			return
		}
		if !shape.IsRecord() {
			s.reporter.Report(diagnostics.NotARecord(c.Span, s.pretty(c.Of), c.Name))
			return
		}
		fieldType, ok := shape.Field(c.Name)
		if !ok {
			s.reporter.Report(diagnostics.NoSuchField(c.Span, s.pretty(c.Of), c.Name))
			return
		}

		bindings := make(typesystem.Bindings, len(shape.Params))
		for _, param := range shape.Params {
			if actual, ok := ctx.Lookup(param); ok {
				bindings[param] = actual
			} else {
				bindings[param] = s.fresh(c.Span)
			}
		}
		var actual typesystem.Type = fieldType
		if len(bindings) > 0 {
			actual = typesystem.TInstantiated{Base: fieldType, Bindings: bindings}
		}
		s.unifier.Unify(c.Span, c.Target, actual)
	default:
		s.reporter.Report(diagnostics.NotARecord(c.Span, s.pretty(c.Of), c.Name))
	}
}

func (s *Solver) instantiated(c Instantiated) {
	body, _ := s.head(c.Template.Body)
	if isUnresolved(body) {
		s.push(c)
		return
	}

	if len(c.Template.Params) == 0 {
		s.unifier.Unify(c.Span, c.Type, c.Template.Body)
		return
	}

	bindings := make(typesystem.Bindings, len(c.Template.Params))
	for _, param := range c.Template.Params {
		bindings[param] = s.fresh(c.Span)
	}
	s.logf("instantiating %s at %s", c.Template, c.Span)
	s.unifier.Unify(c.Span, c.Type, typesystem.TInstantiated{Base: c.Template.Body, Bindings: bindings})
}
