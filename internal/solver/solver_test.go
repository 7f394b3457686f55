package solver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/funvibe/rangetyck/internal/diagnostics"
	"github.com/funvibe/rangetyck/internal/symbols"
	"github.com/funvibe/rangetyck/internal/token"
	"github.com/funvibe/rangetyck/internal/typesystem"
	"github.com/kr/pretty"
)

func at(line int) token.Span {
	return token.NewSpan("s.zp", line, 1, line, 5)
}

func mvar(line int) typesystem.TVar {
	return typesystem.Var(typesystem.UniVar{Span: at(line), Count: 0})
}

func rigid(line int) typesystem.TVar {
	return typesystem.RigidVar(typesystem.UniVar{Span: at(line), Count: 0})
}

func rng(lo, hi int64) typesystem.TRange { return typesystem.MustRange(lo, hi) }

func name(ref string) typesystem.TName { return typesystem.TName{Ref: typesystem.Ref(ref)} }

func testTable(t *testing.T) *symbols.Table {
	t.Helper()
	table := symbols.NewEnclosedTable(symbols.NewPrelude("unit", []typesystem.Ref{"text"}))
	decls := map[typesystem.Ref]symbols.Shape{
		"Point": {Fields: map[string]typesystem.Type{"x": rng(0, 100), "y": rng(0, 100)}},
		"Box":   {Params: []typesystem.Ref{"T"}, Fields: map[string]typesystem.Type{"item": name("T")}},
		"Percent": {Body: rng(0, 100)},
		"Money":   {Numeric: true},
		"Label":   {Body: name("text")},
		"Handle":  {},
	}
	for ref, shape := range decls {
		if err := table.Register(ref, shape); err != nil {
			t.Fatalf("Register(%s): %v", ref, err)
		}
	}
	return table
}

var testOptions = Options{UnitType: "unit", TextTypes: []typesystem.Ref{"text"}}

func solve(t *testing.T, constraints ...Constraint) *Solution {
	t.Helper()
	return Solve(testTable(t), nil, constraints, testOptions)
}

func expectCodes(t *testing.T, sol *Solution, want ...diagnostics.ErrorCode) {
	t.Helper()
	if len(sol.Diagnostics) != len(want) {
		t.Fatalf("got %d diagnostics, want %d: %v", len(sol.Diagnostics), len(want), sol.Diagnostics)
	}
	for i, d := range sol.Diagnostics {
		if d.Code != want[i] {
			t.Errorf("diagnostic %d: code %s, want %s (%s)", i, d.Code, want[i], d.Message)
		}
	}
}

func expectResolved(t *testing.T, sol *Solution, ty typesystem.Type, want typesystem.Type) {
	t.Helper()
	got := sol.Resolve(ty)
	if !typesystem.Equal(got, want) {
		t.Errorf("%s resolved to %s, want %s\n%v", ty, got, want, pretty.Diff(got, want))
	}
}

func TestFixpointTermination(t *testing.T) {
	sol := solve(t,
		Field{Span: at(1), Target: mvar(1), Of: name("Ghost"), Name: "a"},
		Field{Span: at(2), Target: mvar(2), Of: name("Phantom"), Name: "b"},
	)
	expectCodes(t, sol, diagnostics.ErrT004, diagnostics.ErrT004)
	if sol.Batches != 1 || !sol.Stalled {
		t.Errorf("batches = %d, stalled = %v, want one stalled batch", sol.Batches, sol.Stalled)
	}
	if sol.Diagnostics[0].Span != at(1) || sol.Diagnostics[1].Span != at(2) {
		t.Errorf("ambiguous diagnostics not at constraint spans: %v", sol.Diagnostics)
	}
}

func TestNumericDefaulting(t *testing.T) {
	v := mvar(1)
	sol := solve(t, TypeNumeric{Span: at(1), Type: v})
	expectCodes(t, sol)
	expectResolved(t, sol, v, typesystem.TNumber{})
}

func TestTypeNumericKeepsRange(t *testing.T) {
	v := mvar(1)
	sol := solve(t,
		TypeNumeric{Span: at(1), Type: v},
		Equal{Span: at(2), Expected: v, Actual: rng(0, 9)},
	)
	expectCodes(t, sol)
	expectResolved(t, sol, v, rng(0, 9))
}

func TestNumericRequeued(t *testing.T) {
	v := mvar(1)
	sol := solve(t,
		Numeric{Span: at(1), Type: v},
		Equal{Span: at(2), Expected: v, Actual: rng(0, 5)},
	)
	expectCodes(t, sol)
	if sol.Batches != 2 {
		t.Errorf("batches = %d, want 2", sol.Batches)
	}
}

func TestNumericChecks(t *testing.T) {
	tests := []struct {
		name string
		ty   typesystem.Type
		want []diagnostics.ErrorCode
	}{
		{"number", typesystem.TNumber{}, nil},
		{"range", rng(1, 2), nil},
		{"invalid", typesystem.TInvalid{}, nil},
		{"numeric nominal", name("Money"), nil},
		{"range alias", name("Percent"), nil},
		{"record", name("Point"), []diagnostics.ErrorCode{diagnostics.ErrT007}},
		{"function", typesystem.TFunc{Domain: typesystem.TNumber{}, Codomain: typesystem.TNumber{}}, []diagnostics.ErrorCode{diagnostics.ErrT007}},
		{"unconstrained", mvar(5), []diagnostics.ErrorCode{diagnostics.ErrT004}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol := solve(t, Numeric{Span: at(1), Type: tt.ty})
			expectCodes(t, sol, tt.want...)
		})
	}
}

func TestTextualChecks(t *testing.T) {
	tests := []struct {
		name string
		ty   typesystem.Type
		want []diagnostics.ErrorCode
	}{
		{"text", name("text"), nil},
		{"alias of text", name("Label"), nil},
		{"invalid", typesystem.TInvalid{}, nil},
		{"number", typesystem.TNumber{}, []diagnostics.ErrorCode{diagnostics.ErrT008}},
		{"opaque nominal", name("Handle"), []diagnostics.ErrorCode{diagnostics.ErrT008}},
		{"unknown nominal", name("Ghost"), []diagnostics.ErrorCode{diagnostics.ErrT004}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol := solve(t, Textual{Span: at(1), Type: tt.ty})
			expectCodes(t, sol, tt.want...)
		})
	}
}

func TestDefaultingRunsAfterStall(t *testing.T) {
	v := mvar(2)
	sol := solve(t,
		Field{Span: at(1), Target: mvar(1), Of: name("Ghost"), Name: "a"},
		TypeNumeric{Span: at(2), Type: v},
	)
	expectCodes(t, sol, diagnostics.ErrT004)
	if !sol.Stalled {
		t.Errorf("expected a stalled batch")
	}
	if sol.Diagnostics[0].Span != at(1) {
		t.Errorf("ambiguous at %s, want the field access", sol.Diagnostics[0].Span)
	}
	expectResolved(t, sol, v, typesystem.TNumber{})
}

func TestTypeNumericOnRigidIsAmbiguous(t *testing.T) {
	sol := solve(t, TypeNumeric{Span: at(1), Type: rigid(1)})
	expectCodes(t, sol, diagnostics.ErrT004)
	d := sol.Diagnostics[0]
	if d.Span != at(1) || !strings.Contains(d.Message, "type-numeric") {
		t.Errorf("diagnostic = %s, want ambiguous type-numeric at %s", d, at(1))
	}
	if sol.Store.Has(rigid(1).ID) {
		t.Errorf("rigid placeholder was committed")
	}
}

func TestCyclicAliasChecks(t *testing.T) {
	table := testTable(t)
	// Aliases that only reach each other through instantiations.
	decls := map[typesystem.Ref]symbols.Shape{
		"Ping": {Body: typesystem.TInstantiated{Base: name("Pong"), Bindings: typesystem.Bindings{"X": typesystem.TNumber{}}}},
		"Pong": {Body: typesystem.TInstantiated{Base: name("Ping"), Bindings: typesystem.Bindings{"X": typesystem.TNumber{}}}},
	}
	for ref, shape := range decls {
		if err := table.Register(ref, shape); err != nil {
			t.Fatalf("Register(%s): %v", ref, err)
		}
	}

	tests := []struct {
		name string
		c    Constraint
		want diagnostics.ErrorCode
	}{
		{"numeric", Numeric{Span: at(1), Type: name("Ping")}, diagnostics.ErrT007},
		{"textual", Textual{Span: at(1), Type: name("Pong")}, diagnostics.ErrT008},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol := Solve(table, nil, []Constraint{tt.c}, testOptions)
			expectCodes(t, sol, tt.want)
		})
	}
}

func TestRigidNeverResolvedIsAmbiguous(t *testing.T) {
	sol := solve(t, Equal{Span: at(1), Expected: rigid(1), Actual: typesystem.TNumber{}})
	expectCodes(t, sol, diagnostics.ErrT004)
	if sol.Diagnostics[0].Span != at(1) {
		t.Errorf("ambiguous at %s", sol.Diagnostics[0].Span)
	}
}

func TestUnitLike(t *testing.T) {
	u := mvar(1)
	sol := solve(t,
		UnitLike{Span: at(1), Type: u},
		UnitLike{Span: at(2), Type: typesystem.TNumber{}},
	)
	expectCodes(t, sol, diagnostics.ErrT001)
	expectResolved(t, sol, u, name("unit"))
}

func TestFieldAccess(t *testing.T) {
	x, p := mvar(1), mvar(2)
	sol := solve(t,
		Field{Span: at(1), Target: x, Of: p, Name: "x"},
		Equal{Span: at(2), Expected: p, Actual: name("Point")},
	)
	expectCodes(t, sol)
	expectResolved(t, sol, x, rng(0, 100))
}

func TestFieldErrors(t *testing.T) {
	sol := solve(t,
		Field{Span: at(1), Target: mvar(1), Of: name("Point"), Name: "z"},
		Field{Span: at(2), Target: mvar(2), Of: typesystem.TNumber{}, Name: "x"},
		Field{Span: at(3), Target: mvar(3), Of: name("Percent"), Name: "x"},
	)
	expectCodes(t, sol, diagnostics.ErrT005, diagnostics.ErrT006, diagnostics.ErrT006)
}

func TestFieldOfInvalidIsSilent(t *testing.T) {
	target := mvar(1)
	sol := solve(t, Field{Span: at(1), Target: target, Of: typesystem.TInvalid{}, Name: "x"})
	expectCodes(t, sol)
	expectResolved(t, sol, target, typesystem.TInvalid{})
}

func TestFieldThroughInstantiation(t *testing.T) {
	target := mvar(1)
	box := typesystem.TInstantiated{Base: name("Box"), Bindings: typesystem.Bindings{"T": rng(0, 5)}}
	sol := solve(t, Field{Span: at(1), Target: target, Of: box, Name: "item"})
	expectCodes(t, sol)
	expectResolved(t, sol, target, rng(0, 5))
}

func TestFieldOfGenericMintsPlaceholders(t *testing.T) {
	target := mvar(1)
	sol := Solve(testTable(t), map[token.Span]int{at(1): 1},
		[]Constraint{Field{Span: at(1), Target: target, Of: name("Box"), Name: "item"}},
		testOptions)
	expectCodes(t, sol)

	minted := typesystem.Var(typesystem.UniVar{Span: at(1), Count: 1})
	expectResolved(t, sol, target, minted)
	if sol.Counts[at(1)] != 2 {
		t.Errorf("counts[%s] = %d, want 2", at(1), sol.Counts[at(1)])
	}
}

func TestInstantiated(t *testing.T) {
	f := mvar(1)
	template := Template{
		Params: []typesystem.Ref{"T"},
		Body:   typesystem.TFunc{Domain: name("T"), Codomain: name("T")},
	}
	counts := map[token.Span]int{at(1): 3}
	sol := Solve(testTable(t), counts, []Constraint{
		Instantiated{Span: at(1), Type: f, Template: template},
	}, testOptions)
	expectCodes(t, sol)

	fresh := typesystem.Var(typesystem.UniVar{Span: at(1), Count: 3})
	expectResolved(t, sol, f, typesystem.TFunc{Domain: fresh, Codomain: fresh})

	if counts[at(1)] != 3 {
		t.Errorf("caller's counts were modified")
	}
	if unresolved := sol.Unresolved(f); len(unresolved) != 1 || unresolved[0] != fresh.ID {
		t.Errorf("Unresolved = %v, want [%s]", unresolved, fresh.ID)
	}
}

func TestInstantiatedThenApplied(t *testing.T) {
	f := mvar(1)
	template := Template{
		Params: []typesystem.Ref{"T"},
		Body:   typesystem.TFunc{Domain: name("T"), Codomain: name("T")},
	}
	sol := solve(t,
		Instantiated{Span: at(1), Type: f, Template: template},
		Equal{Span: at(2), Expected: f, Actual: typesystem.TFunc{Domain: rng(0, 3), Codomain: rng(0, 3)}},
	)
	expectCodes(t, sol)
	expectResolved(t, sol, f, typesystem.TFunc{Domain: rng(0, 3), Codomain: rng(0, 3)})
}

func TestInstantiatedDeferredOnPlaceholderBody(t *testing.T) {
	body := mvar(2)
	sol := solve(t,
		Instantiated{Span: at(1), Type: mvar(1), Template: Template{Params: []typesystem.Ref{"T"}, Body: body}},
		Equal{Span: at(2), Expected: body, Actual: typesystem.TProduct{Left: name("T"), Right: typesystem.TNumber{}}},
	)
	expectCodes(t, sol)
	if sol.Batches != 2 {
		t.Errorf("batches = %d, want 2", sol.Batches)
	}
}

func TestAssignable(t *testing.T) {
	v := mvar(9)
	tests := []struct {
		name     string
		into     typesystem.Type
		from     typesystem.Type
		wantKind CoercionKind
		wantErr  []diagnostics.ErrorCode
	}{
		{"widen range", rng(0, 10), rng(3, 4), Widen, nil},
		{"same range", rng(0, 10), rng(0, 10), Identity, nil},
		{"into number", typesystem.TNumber{}, rng(3, 4), Widen, nil},
		{"nominal", name("Point"), name("Point"), Identity, nil},
		{"placeholder", v, rng(1, 2), Identity, nil},
		{"narrow", rng(3, 4), rng(0, 10), 0, []diagnostics.ErrorCode{diagnostics.ErrT002}},
		{"mismatch", name("Point"), typesystem.TNumber{}, 0, []diagnostics.ErrorCode{diagnostics.ErrT001}},
		{"incompatible nominals", name("Point"), name("Handle"), 0, []diagnostics.ErrorCode{diagnostics.ErrT001}},
		{"incompatible function", typesystem.TFunc{Domain: rng(0, 1), Codomain: typesystem.TNumber{}}, rng(0, 1), 0, []diagnostics.ErrorCode{diagnostics.ErrT001}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol := solve(t, Assignable{Span: at(1), ID: "a1", Into: tt.into, From: tt.from})
			expectCodes(t, sol, tt.wantErr...)

			c, ok := sol.Coercions["a1"]
			if tt.wantErr != nil {
				if ok {
					t.Errorf("rejected assignment recorded a coercion: %+v", c)
				}
				return
			}
			if !ok {
				t.Fatalf("no coercion recorded")
			}
			if c.Kind != tt.wantKind || c.At != at(1) {
				t.Errorf("coercion = %+v, want kind %s", c, tt.wantKind)
			}
		})
	}
}

func TestAssignableThroughPlaceholder(t *testing.T) {
	into := mvar(1)
	sol := solve(t,
		Equal{Span: at(1), Expected: into, Actual: rng(0, 10)},
		Assignable{Span: at(2), ID: "a", Into: into, From: rng(2, 3)},
	)
	expectCodes(t, sol)
	if sol.Coercions["a"].Kind != Widen {
		t.Errorf("coercion kind = %s, want widen", sol.Coercions["a"].Kind)
	}
}

func TestSubstitutionAndCauses(t *testing.T) {
	a, b := mvar(1), mvar(2)
	sol := solve(t,
		Equal{Span: at(1), Expected: a, Actual: typesystem.TProduct{Left: b, Right: typesystem.TNumber{}}},
		Equal{Span: at(2), Expected: b, Actual: rng(0, 1)},
	)
	expectCodes(t, sol)

	want := map[typesystem.UniVar]typesystem.Type{
		a.ID: typesystem.TProduct{Left: rng(0, 1), Right: typesystem.TNumber{}},
		b.ID: rng(0, 1),
	}
	if diff := pretty.Diff(sol.Substitution(), want); len(diff) > 0 {
		t.Errorf("substitution mismatch: %v", diff)
	}
	causes := sol.Causes()
	if causes[a.ID] != at(1) || causes[b.ID] != at(2) {
		t.Errorf("causes = %v", causes)
	}
}

func TestDebugLogging(t *testing.T) {
	var lines []string
	opts := testOptions
	opts.Debug = true
	opts.Logf = func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	}
	Solve(testTable(t), nil, []Constraint{TypeNumeric{Span: at(1), Type: mvar(1)}}, opts)
	if len(lines) == 0 {
		t.Errorf("debug session logged nothing")
	}

	lines = nil
	Solve(testTable(t), nil, []Constraint{TypeNumeric{Span: at(1), Type: mvar(1)}}, testOptions)
	if len(lines) != 0 {
		t.Errorf("non-debug session logged %v", lines)
	}
}

func TestSolverWithExternalReporter(t *testing.T) {
	sink := diagnostics.NewSink()
	sol := New(testTable(t), nil, sink, testOptions).Solve([]Constraint{
		Equal{Span: at(1), Expected: name("Point"), Actual: typesystem.TNumber{}},
	})
	if sink.Count(diagnostics.ErrT001) != 1 {
		t.Errorf("reporter got %v", sink.Diagnostics())
	}
	if sol.HasErrors() {
		t.Errorf("Solution.Diagnostics is only filled by Solve")
	}
}
