package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/funvibe/rangetyck/internal/token"
)

func TestDiagnosticError(t *testing.T) {
	span := token.NewSpan("main.zp", 3, 5, 3, 9)

	tests := []struct {
		name     string
		err      *DiagnosticError
		wantCode ErrorCode
		wantMsg  string
	}{
		{
			name:     "incompatible",
			err:      Incompatible(span, "number", "Point"),
			wantCode: ErrT001,
			wantMsg:  "main.zp:3:5-3:9: error[T001]: incompatible types: expected number, found Point",
		},
		{
			name:     "narrow range",
			err:      NarrowRange(span, [2]int64{0, 10}, [2]int64{-1, 5}),
			wantCode: ErrT002,
			wantMsg:  "main.zp:3:5-3:9: error[T002]: range too narrow: 0 upto 10 does not contain -1 upto 5",
		},
		{
			name:     "recursive",
			err:      RecursiveInference(span, "?a", "?a -> number"),
			wantCode: ErrT003,
			wantMsg:  "main.zp:3:5-3:9: error[T003]: recursive inference: ?a occurs in ?a -> number",
		},
		{
			name:     "ambiguous",
			err:      Ambiguous(span, ""),
			wantCode: ErrT004,
			wantMsg:  "main.zp:3:5-3:9: error[T004]: ambiguous type",
		},
		{
			name:     "no such field",
			err:      NoSuchField(span, "Point", "z"),
			wantCode: ErrT005,
			wantMsg:  `main.zp:3:5-3:9: error[T005]: no field "z" on Point`,
		},
		{
			name:     "not a record",
			err:      NotARecord(span, "number", "x"),
			wantCode: ErrT006,
			wantMsg:  `main.zp:3:5-3:9: error[T006]: cannot access field "x": number is not a record`,
		},
		{
			name:     "not numeric",
			err:      NotNumeric(span, "Point"),
			wantCode: ErrT007,
			wantMsg:  "main.zp:3:5-3:9: error[T007]: expected a numeric type, found Point",
		},
		{
			name:     "not textual",
			err:      NotTextual(span, "number"),
			wantCode: ErrT008,
			wantMsg:  "main.zp:3:5-3:9: error[T008]: expected a text type, found number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestNarrowRangeCarriesBounds(t *testing.T) {
	d := NarrowRange(token.Span{}, [2]int64{0, 10}, [2]int64{-1, 5})
	if d.Expected != "0 upto 10" || d.Actual != "-1 upto 5" {
		t.Errorf("got expected=%q actual=%q", d.Expected, d.Actual)
	}
}

func TestSink(t *testing.T) {
	s := NewSink()
	if s.HasErrors() {
		t.Fatal("new sink should be empty")
	}

	s.Report(Ambiguous(token.Span{}, ""))
	s.Report(Incompatible(token.Span{}, "a", "b"))
	s.Report(Ambiguous(token.Span{}, ""))

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if got := s.Count(ErrT004); got != 2 {
		t.Errorf("Count(T004) = %d, want 2", got)
	}

	ds := s.Diagnostics()
	if ds[0].Code != ErrT004 || ds[1].Code != ErrT001 || ds[2].Code != ErrT004 {
		t.Errorf("diagnostics out of report order: %v", ds)
	}

	// The returned slice is a copy.
	ds[0] = nil
	if s.Diagnostics()[0] == nil {
		t.Error("Diagnostics() exposed internal storage")
	}

	drained := s.Drain()
	if len(drained) != 3 || s.HasErrors() {
		t.Errorf("Drain() = %d entries, sink still has %d", len(drained), s.Len())
	}
}

func TestSinkZeroValue(t *testing.T) {
	var s Sink
	s.Report(NotNumeric(token.Span{}, "x"))
	if s.Count(ErrT007) != 1 {
		t.Errorf("zero-value sink lost a report")
	}
}

func TestEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf, false)
	span := token.NewSpan("main.zp", 1, 1, 1, 1)

	e.EmitAll([]*DiagnosticError{
		Incompatible(span, "number", "Point"),
		Ambiguous(span, ""),
	})

	out := buf.String()
	for _, want := range []string{
		"error[T001]: incompatible types: expected number, found Point",
		"--> main.zp:1:1",
		"= expected number",
		"Solving failed with 2 error(s)",
		"T004",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Errorf("uncoloured emitter produced escape codes")
	}
}

func TestEmitterColor(t *testing.T) {
	var buf bytes.Buffer
	NewEmitter(&buf, true).Emit(NotTextual(token.Span{}, "number"))
	if !strings.Contains(buf.String(), ansiReset) {
		t.Errorf("coloured emitter produced no escape codes: %q", buf.String())
	}
}

func TestShouldColor(t *testing.T) {
	if !ShouldColor("always", nil) {
		t.Error("always should colour")
	}
	if ShouldColor("never", nil) {
		t.Error("never should not colour")
	}
}
