package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
)

const (
	ansiRed    = "\033[31m"
	ansiBold   = "\033[1m"
	ansiCyan   = "\033[36m"
	ansiYellow = "\033[33m"
	ansiReset  = "\033[0m"
)

// Emitter renders diagnostics as text.
type Emitter struct {
	w     io.Writer
	color bool
}

// NewEmitter creates an emitter writing to w.
func NewEmitter(w io.Writer, color bool) *Emitter {
	return &Emitter{w: w, color: color}
}

// ShouldColor decides whether output to f gets ANSI colours for the
// given mode ("auto", "always" or "never"). In auto mode a nil f, or one
// that is not a terminal, gets none.
func ShouldColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if f == nil || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (e *Emitter) paint(code, s string) string {
	if !e.color {
		return s
	}
	return code + s + ansiReset
}

// Emit writes one diagnostic.
func (e *Emitter) Emit(d *DiagnosticError) {
	fmt.Fprintf(e.w, "%s: %s\n",
		e.paint(ansiBold+ansiRed, fmt.Sprintf("error[%s]", d.Code)),
		e.paint(ansiBold, d.Message))
	fmt.Fprintf(e.w, "  %s %s\n", e.paint(ansiCyan, "-->"), d.Span)
	if d.Expected != "" && d.Actual != "" {
		fmt.Fprintf(e.w, "  %s expected %s\n", e.paint(ansiCyan, "="), d.Expected)
		fmt.Fprintf(e.w, "  %s    found %s\n", e.paint(ansiCyan, "="), d.Actual)
	}
}

// EmitAll writes every diagnostic followed by a per-code summary.
func (e *Emitter) EmitAll(ds []*DiagnosticError) {
	for _, d := range ds {
		e.Emit(d)
	}
	e.summary(ds)
}

func (e *Emitter) summary(ds []*DiagnosticError) {
	if len(ds) == 0 {
		return
	}
	counts := make(map[ErrorCode]int)
	for _, d := range ds {
		counts[d.Code]++
	}
	codes := make([]ErrorCode, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	fmt.Fprintln(e.w, e.paint(ansiRed, fmt.Sprintf("\nSolving failed with %d error(s)", len(ds))))
	for _, code := range codes {
		fmt.Fprintf(e.w, "  %s %-20s %d\n", e.paint(ansiYellow, string(code)), code.Title(), counts[code])
	}
}
