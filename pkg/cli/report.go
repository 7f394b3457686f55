package cli

import (
	"fmt"
	"io"

	"github.com/funvibe/rangetyck/internal/config"
	"github.com/funvibe/rangetyck/internal/diagnostics"
	"github.com/funvibe/rangetyck/internal/pipeline"
	"github.com/funvibe/rangetyck/internal/solver"
	"github.com/sanity-io/litter"
)

type reporter struct {
	w       io.Writer
	emitter *diagnostics.Emitter
	ctx     *pipeline.PipelineContext
}

func (r *reporter) report() {
	p, sol := r.ctx.Problem, r.ctx.Solution

	fmt.Fprintf(r.w, "%s: %d constraint(s), %d batch(es)", p.File, len(p.Constraints), sol.Batches)
	if sol.Stalled {
		fmt.Fprint(r.w, ", stalled")
	}
	fmt.Fprintln(r.w)

	for _, name := range p.VarNames() {
		fmt.Fprintf(r.w, "  %s = %s\n", name, sol.Resolve(p.VarType(name)))
	}

	if ids := sol.CoercionIDs(); len(ids) > 0 {
		fmt.Fprintln(r.w, "coercions:")
		for _, id := range ids {
			c := sol.Coercions[id]
			fmt.Fprintf(r.w, "  %-12s %-8s %s <- %s\n", id, c.Kind, sol.Resolve(c.Into), sol.Resolve(c.From))
		}
	}

	if len(sol.Diagnostics) > 0 {
		fmt.Fprintln(r.w)
		r.emitter.EmitAll(sol.Diagnostics)
	}

	if !config.IsTestMode {
		fmt.Fprintf(r.w, "session %s\n", r.ctx.SessionID)
	}
}

type solutionDump struct {
	Session      string
	Batches      int
	Stalled      bool
	Placeholders map[string]string
	Causes       map[string]string
	Coercions    map[solver.CoercionID]solver.Coercion
	Counts       map[string]int
	Diagnostics  []string
}

func (r *reporter) dump() {
	p, sol := r.ctx.Problem, r.ctx.Solution

	d := solutionDump{
		Batches:      sol.Batches,
		Stalled:      sol.Stalled,
		Placeholders: make(map[string]string),
		Causes:       make(map[string]string),
		Coercions:    sol.Coercions,
		Counts:       make(map[string]int),
	}
	if !config.IsTestMode {
		d.Session = r.ctx.SessionID.String()
	}
	for v, t := range sol.Substitution() {
		d.Placeholders[v.String()] = t.String()
	}
	for v, span := range sol.Causes() {
		d.Causes[v.String()] = span.String()
	}
	for span, n := range sol.Counts {
		if span.File == p.File {
			d.Counts[span.String()] = n
		}
	}

	for _, diag := range sol.Diagnostics {
		d.Diagnostics = append(d.Diagnostics, diag.Error())
	}

	fmt.Fprintln(r.w, litter.Options{StripPackageNames: true}.Sdump(d))
}
