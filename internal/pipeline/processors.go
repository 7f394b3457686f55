package pipeline

import (
	"os"
	"path/filepath"

	"github.com/funvibe/rangetyck/internal/config"
	"github.com/funvibe/rangetyck/internal/countstore"
	"github.com/funvibe/rangetyck/internal/diagnostics"
	"github.com/funvibe/rangetyck/internal/problem"
	"github.com/funvibe/rangetyck/internal/solver"
	"github.com/funvibe/rangetyck/internal/symbols"
	"github.com/funvibe/rangetyck/internal/token"
	"github.com/funvibe/rangetyck/internal/typesystem"
	"github.com/samber/lo"
)

// Default returns the standard session: settings, problem, solve, persist.
func Default() *Pipeline {
	return New(
		&SettingsProcessor{},
		&ProblemProcessor{},
		&SolveProcessor{},
		&PersistProcessor{},
	)
}

// SettingsProcessor finds and loads rangetyck.yaml next to the problem.
type SettingsProcessor struct{}

func (sp *SettingsProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Settings != nil {
		return ctx
	}

	path, err := config.FindSettings(filepath.Dir(ctx.FilePath))
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrC001, token.Span{}, err.Error()))
		ctx.Settings = config.DefaultSettings()
		return ctx
	}
	if path == "" {
		ctx.Settings = config.DefaultSettings()
		return ctx
	}

	settings, err := config.LoadSettings(path)
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrC001, token.Span{File: path}, err.Error()))
		ctx.Settings = config.DefaultSettings()
		return ctx
	}
	ctx.logf("settings: %s", path)
	ctx.Settings = settings
	return ctx
}

// ProblemProcessor reads the problem file, opens the count store and mints
// the problem's placeholders on top of the persisted counters.
type ProblemProcessor struct{}

func (pp *ProblemProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.HasErrors() {
		return ctx
	}

	data, err := os.ReadFile(ctx.FilePath)
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, token.Span{}, err.Error()))
		return ctx
	}
	file, err := problem.Decode(data, ctx.FilePath)
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, token.Span{}, err.Error()))
		return ctx
	}

	var seed map[token.Span]int
	if countsPath := pp.countsPath(ctx); countsPath != "" {
		store, err := countstore.Open(ctx.Ctx, countsPath)
		if err != nil {
			ctx.Errors = append(ctx.Errors, err)
			return ctx
		}
		ctx.Counts = store
		if seed, err = store.LoadAll(ctx.Ctx); err != nil {
			ctx.Errors = append(ctx.Errors, err)
			return ctx
		}
		ctx.logf("counts: %s (%d span(s))", countsPath, len(seed))
	}

	prelude := symbols.NewPrelude(typesystem.Ref(ctx.Settings.UnitType), textTypes(ctx.Settings))
	p, err := file.Build(ctx.FilePath, seed, prelude)
	if err != nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrP001, token.Span{}, err.Error()))
		return ctx
	}
	ctx.Problem = p
	return ctx
}

func (pp *ProblemProcessor) countsPath(ctx *PipelineContext) string {
	if ctx.NoCounts {
		return ""
	}
	if ctx.CountsPath != "" {
		return ctx.CountsPath
	}
	return ctx.Settings.CountsPath(filepath.Dir(ctx.FilePath))
}

// SolveProcessor runs the solver over the loaded problem.
type SolveProcessor struct{}

func (sp *SolveProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Problem == nil || ctx.HasErrors() {
		return ctx
	}

	opts := solver.Options{
		UnitType:  typesystem.Ref(ctx.Settings.UnitType),
		TextTypes: textTypes(ctx.Settings),
		Debug:     ctx.Debug(),
		Logf:      ctx.Logf,
	}
	ctx.Solution = solver.Solve(ctx.Problem.Symbols, ctx.Problem.Counts, ctx.Problem.Constraints, opts)
	ctx.logf("session %s: %d diagnostic(s), %d placeholder(s) committed",
		ctx.SessionID, len(ctx.Solution.Diagnostics), ctx.Solution.Store.Len())
	return ctx
}

// PersistProcessor stores the advanced counters and closes the store.
type PersistProcessor struct{}

func (pp *PersistProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Counts == nil {
		return ctx
	}
	defer func() {
		if err := ctx.Counts.Close(); err != nil {
			ctx.Errors = append(ctx.Errors, err)
		}
		ctx.Counts = nil
	}()

	if ctx.Solution == nil {
		return ctx
	}
	if err := ctx.Counts.Save(ctx.Ctx, ctx.SessionID, ctx.Solution.Counts); err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	err := ctx.Counts.RecordSession(ctx.Ctx, countstore.Session{
		ID:           ctx.SessionID,
		Problem:      ctx.FilePath,
		StartedAt:    ctx.StartedAt,
		Diagnostics:  len(ctx.Solution.Diagnostics),
		Placeholders: ctx.Solution.Store.Len(),
	})
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
	}
	return ctx
}

func textTypes(s *config.Settings) []typesystem.Ref {
	return lo.Map(s.TextTypes, func(name string, _ int) typesystem.Ref { return typesystem.Ref(name) })
}
