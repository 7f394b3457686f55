package solver

import (
	"strings"

	"github.com/funvibe/rangetyck/internal/diagnostics"
	"github.com/funvibe/rangetyck/internal/symbols"
	"github.com/funvibe/rangetyck/internal/token"
	"github.com/funvibe/rangetyck/internal/typesystem"
	set "github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
)

// Options configure a solving session.
type Options struct {
	// UnitType is what UnitLike obligations unify with.
	UnitType typesystem.Ref
	// TextTypes are the nominals that satisfy Textual obligations in
	// addition to shapes flagged textual.
	TextTypes []typesystem.Ref

	// Debug enables tracing through Logf.
	Debug bool
	Logf  func(format string, v ...interface{})
}

// Solver owns one session: the queue, the store and the placeholder
// counter. It is not safe for concurrent use.
type Solver struct {
	oracle   symbols.Oracle
	reporter *countingReporter
	opts     Options

	store    *typesystem.Store
	unifier  *typesystem.Unifier
	counts   map[token.Span]int
	texts    *set.Set[typesystem.Ref]
	next     []Constraint
	numerics []TypeNumeric

	coercions map[CoercionID]Coercion
	batches   int
	stalled   bool
}

// New creates a session. counts says how many placeholders each span has
// already produced; it is copied, the caller's map is left alone.
func New(oracle symbols.Oracle, counts map[token.Span]int, reporter diagnostics.Reporter, opts Options) *Solver {
	store := typesystem.NewStore()
	counting := &countingReporter{Reporter: reporter}
	return &Solver{
		oracle:    oracle,
		reporter:  counting,
		opts:      opts,
		store:     store,
		unifier:   typesystem.NewUnifier(store, counting),
		counts:    lo.Assign(counts),
		texts:     set.From(opts.TextTypes),
		coercions: make(map[CoercionID]Coercion),
	}
}

// Solve runs a session over constraints with a fresh diagnostic sink and
// returns its result.
func Solve(oracle symbols.Oracle, counts map[token.Span]int, constraints []Constraint, opts Options) *Solution {
	sink := diagnostics.NewSink()
	solution := New(oracle, counts, sink, opts).Solve(constraints)
	solution.Diagnostics = sink.Diagnostics()
	return solution
}

// Solve drains constraints to a fixpoint, then defaults the postponed
// numeric obligations. Diagnostics go to the session's reporter.
func (s *Solver) Solve(constraints []Constraint) *Solution {
	queue := append([]Constraint(nil), constraints...)

	for len(queue) > 0 {
		batch := queue
		s.next = nil
		s.batches++
		s.logf("batch %d: %d constraint(s)", s.batches, len(batch))

		for _, c := range batch {
			s.step(c)
		}

		queue = s.next
		s.next = nil
		if len(queue) >= len(batch) {
			s.stalled = true
			s.logf("batch %d stalled with %d constraint(s): %s", s.batches, len(queue),
				strings.Join(lo.Map(queue, func(c Constraint, _ int) string { return c.String() }), "; "))
			for _, c := range queue {
				s.reportUnsolvable(c)
			}
			break
		}
	}

	s.defaultNumerics()

	return &Solution{
		Store:     s.store,
		Counts:    s.counts,
		Coercions: s.coercions,
		Batches:   s.batches,
		Stalled:   s.stalled,
	}
}

func (s *Solver) step(c Constraint) {
	switch c := c.(type) {
	case Assignable:
		s.assign(c)
	case Equal:
		s.unifier.Unify(c.Span, c.Expected, c.Actual)
	case Field:
		s.field(c)
	case Instantiated:
		s.instantiated(c)
	case UnitLike:
		s.unifier.Unify(c.Span, typesystem.TName{Ref: s.opts.UnitType}, c.Type)
	case Numeric:
		if s.numeric(c.Span, c.Type) == resultUnsolved {
			s.push(c)
		}
	case Textual:
		if s.textual(c.Span, c.Type) == resultUnsolved {
			s.push(c)
		}
	case TypeNumeric:
		s.numerics = append(s.numerics, c)
	}

	// Pairs the unifier could not decide come back as equalities.
	for _, d := range s.unifier.TakeDeferred() {
		s.push(Equal{Span: d.Span, Expected: d.Var, Actual: d.Other})
	}
}

func (s *Solver) defaultNumerics() {
	numerics := s.numerics
	s.numerics = nil

	for _, c := range numerics {
		if s.numeric(c.Span, c.Type) == resultUnsolved {
			s.logf("defaulting %s to number", c.Type)
			s.unifier.Unify(c.Span, c.Type, typesystem.TNumber{})
		}
	}

	// Nothing runs after defaulting, so anything deferred now is stuck.
	for _, d := range s.unifier.TakeDeferred() {
		s.reporter.Report(diagnostics.Ambiguous(d.Span, "type-numeric"))
	}
}

// fresh mints a new mutable placeholder for span.
func (s *Solver) fresh(span token.Span) typesystem.TVar {
	count := s.counts[span]
	s.counts[span] = count + 1
	return typesystem.Var(typesystem.UniVar{Span: span, Count: count})
}

// countingReporter forwards to the session reporter and counts what went
// through, so a handler can tell whether a call reported anything.
type countingReporter struct {
	diagnostics.Reporter
	n int
}

func (r *countingReporter) Report(err *diagnostics.DiagnosticError) {
	r.n++
	r.Reporter.Report(err)
}

func (s *Solver) push(c Constraint) {
	s.next = append(s.next, c)
}

func (s *Solver) reportUnsolvable(c Constraint) {
	s.reporter.Report(diagnostics.Ambiguous(c.At(), c.Kind()))
}

func (s *Solver) pretty(t typesystem.Type) string {
	return typesystem.Pretty(t, s.store.View())
}

func (s *Solver) logf(format string, v ...interface{}) {
	if s.opts.Debug && s.opts.Logf != nil {
		s.opts.Logf(format, v...)
	}
}
