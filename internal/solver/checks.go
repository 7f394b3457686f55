package solver

import (
	"github.com/funvibe/rangetyck/internal/diagnostics"
	"github.com/funvibe/rangetyck/internal/token"
	"github.com/funvibe/rangetyck/internal/typesystem"
)

type checkResult int

const (
	resultOk checkResult = iota
	resultUnsolved
	resultError
)

// numeric decides whether t supports numeric operations. Errors are
// reported here; unsolved obligations are the caller's to requeue.
func (s *Solver) numeric(span token.Span, t typesystem.Type) checkResult {
	r := s.numericKind(t, make(map[typesystem.Ref]bool))
	if r == resultError {
		s.reporter.Report(diagnostics.NotNumeric(span, s.pretty(t)))
	}
	return r
}

// numericKind follows alias bodies; seen cuts aliases that refer back to
// themselves, which are never numeric.
func (s *Solver) numericKind(t typesystem.Type, seen map[typesystem.Ref]bool) checkResult {
	h, _ := s.head(t)
	switch h := h.(type) {
	case typesystem.TVar:
		return resultUnsolved
	case typesystem.TNumber, typesystem.TRange, typesystem.TInvalid:
		return resultOk
	case typesystem.TName:
		ref, shape, ok := s.shape(h.Ref)
		if !ok {
			return resultUnsolved
		}
		if seen[ref] {
			return resultError
		}
		seen[ref] = true
		if shape.Numeric {
			return resultOk
		}
		if shape.Body != nil && !shape.IsRecord() {
			return s.numericKind(shape.Body, seen)
		}
	}
	return resultError
}

// textual decides whether t is a text type.
func (s *Solver) textual(span token.Span, t typesystem.Type) checkResult {
	r := s.textualKind(t, make(map[typesystem.Ref]bool))
	if r == resultError {
		s.reporter.Report(diagnostics.NotTextual(span, s.pretty(t)))
	}
	return r
}

func (s *Solver) textualKind(t typesystem.Type, seen map[typesystem.Ref]bool) checkResult {
	h, _ := s.head(t)
	switch h := h.(type) {
	case typesystem.TVar:
		return resultUnsolved
	case typesystem.TInvalid:
		return resultOk
	case typesystem.TName:
		if s.texts.Contains(h.Ref) {
			return resultOk
		}
		ref, shape, ok := s.shape(h.Ref)
		if !ok {
			return resultUnsolved
		}
		if seen[ref] {
			return resultError
		}
		seen[ref] = true
		if shape.Textual || s.texts.Contains(ref) {
			return resultOk
		}
		if shape.Body != nil && !shape.IsRecord() {
			return s.textualKind(shape.Body, seen)
		}
	}
	return resultError
}
