package pipeline

import (
	"context"
	"time"

	"github.com/funvibe/rangetyck/internal/config"
	"github.com/funvibe/rangetyck/internal/countstore"
	"github.com/funvibe/rangetyck/internal/problem"
	"github.com/funvibe/rangetyck/internal/solver"
	"github.com/google/uuid"
)

// PipelineContext carries one session from settings to solution.
type PipelineContext struct {
	Ctx       context.Context
	FilePath  string
	SessionID uuid.UUID
	StartedAt time.Time

	// Settings are looked up next to FilePath when nil.
	Settings *config.Settings
	// CountsPath overrides the settings' counts database when non-empty.
	CountsPath string
	// NoCounts disables counter persistence.
	NoCounts bool

	Counts   *countstore.Store
	Problem  *problem.Problem
	Solution *solver.Solution

	// Errors holds failures outside typing (settings, problem file, count
	// store), as *diagnostics.DiagnosticError where a code applies.
	Errors []error

	// Logf receives debug traces; nil disables them.
	Logf func(format string, v ...interface{})
}

// NewContext creates a context for checking path with a fresh session id.
func NewContext(ctx context.Context, path string) *PipelineContext {
	return &PipelineContext{
		Ctx:       ctx,
		FilePath:  path,
		SessionID: uuid.New(),
		StartedAt: time.Now(),
	}
}

func (c *PipelineContext) HasErrors() bool {
	return len(c.Errors) > 0
}

// Debug reports whether tracing is on.
func (c *PipelineContext) Debug() bool {
	return c.Logf != nil && (config.IsDebugMode || (c.Settings != nil && c.Settings.Debug))
}

func (c *PipelineContext) logf(format string, v ...interface{}) {
	if c.Debug() {
		c.Logf(format, v...)
	}
}
