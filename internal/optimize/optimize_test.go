package optimize

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/parser"
	"github.com/linescript-lang/linescript/internal/types"
)

func compile(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := parser.New(src)
	prog := p.ParseProgram()
	if prog == nil {
		t.Fatalf("parse failed: %v", p.Errors())
	}
	diags := types.NewChecker(prog).Check()
	if diag.HasErrors(diags) {
		t.Fatalf("check failed: %v", diags)
	}
	return prog
}

func optimized(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog := compile(t, src)
	New(prog, 12).Run()
	recheck := types.NewChecker(prog).Check()
	if diag.HasErrors(recheck) {
		t.Fatalf("re-check after optimization failed: %v", recheck)
	}
	return prog
}

// printedInts extracts the integers a fully-reduced script prints: loop
// reduction, constant propagation and print specialization leave
// println_str calls carrying decimal literals.
func printedInts(t *testing.T, prog *ast.Program) []int64 {
	t.Helper()
	main := prog.FindFunction("__linescript_script_main")
	var out []int64
	for _, s := range main.Body {
		switch x := s.(type) {
		case *ast.For, *ast.While:
			t.Fatal("loop survived reduction")
		case *ast.ExprStmt:
			call, ok := x.X.(*ast.Call)
			if !ok || call.Name != "println_str" {
				continue
			}
			lit, ok := call.Args[0].(*ast.StrLit)
			if !ok {
				t.Fatalf("println argument not specialized: %#v", call.Args[0])
			}
			v, err := strconv.ParseInt(lit.Value, 10, 64)
			if err != nil {
				t.Fatalf("printed value %q is not an integer", lit.Value)
			}
			out = append(out, v)
		}
	}
	return out
}

func printedOne(t *testing.T, prog *ast.Program) int64 {
	t.Helper()
	vals := printedInts(t, prog)
	if len(vals) != 1 {
		t.Fatalf("printed %d values, want 1", len(vals))
	}
	return vals[0]
}

func TestConstantFolding(t *testing.T) {
	prog := optimized(t, "declare a: i64 = 1 + 2 * 3\nprintln(a)\n")
	if got := printedOne(t, prog); got != 7 {
		t.Fatalf("folded result = %d, want 7", got)
	}
}

func TestPrintSpecialization(t *testing.T) {
	prog := optimized(t, "println(1 + 2 * 3)\n")
	main := prog.FindFunction("__linescript_script_main")
	call := main.Body[0].(*ast.ExprStmt).X.(*ast.Call)
	if call.Name != "println_str" {
		t.Fatalf("known-constant println specialized to %q, want println_str", call.Name)
	}
	lit, ok := call.Args[0].(*ast.StrLit)
	if !ok || lit.Value != "7" {
		t.Fatalf("specialized argument = %#v, want \"7\"", call.Args[0])
	}
}

func TestAlgebraicIdentities(t *testing.T) {
	tests := []struct {
		expr string
		want string // surviving shape: "ident" or "literal"
	}{
		{"x + 0", "ident"},
		{"0 + x", "ident"},
		{"x - 0", "ident"},
		{"x * 1", "ident"},
		{"1 * x", "ident"},
		{"x / 1", "ident"},
		{"x ** 1", "ident"},
		{"x - x", "literal"},
	}
	for _, tt := range tests {
		src := fmt.Sprintf("fn f(x: i64) -> i64 { return %s }\nprintln(f(3))\n", tt.expr)
		prog := optimized(t, src)
		fn := prog.FindFunction("f")
		ret := fn.Body[0].(*ast.Return)
		switch tt.want {
		case "ident":
			if _, ok := ret.Value.(*ast.Ident); !ok {
				t.Errorf("%s did not collapse to the variable: %#v", tt.expr, ret.Value)
			}
		case "literal":
			lit, ok := ret.Value.(*ast.IntLit)
			if !ok || lit.Value != 0 {
				t.Errorf("%s did not collapse to 0: %#v", tt.expr, ret.Value)
			}
		}
	}
}

func TestNegationOverrideDisablesFolding(t *testing.T) {
	prog := optimized(t, `
operator unary - (x: i64) -> i64 {
    return x * 100
}
declare a: i64 = 5
println(a)
declare f: f64 = -2.5
println(f)
`)
	if !prog.HasNegOverride() {
		t.Fatal("negation override not detected")
	}
	// The f64 negation does not match the i64 override, so only the
	// program-wide flag keeps it from folding to a literal.
	main := prog.FindFunction("__linescript_script_main")
	for _, s := range main.Body {
		if d, ok := s.(*ast.Declare); ok && d.Name == "f" {
			if _, ok := d.Init.(*ast.Unary); !ok {
				t.Fatalf("negation folded despite override: %#v", d.Init)
			}
		}
	}
}

func TestInlineSingleReturn(t *testing.T) {
	prog := optimized(t, `
fn double(x: i64) -> i64 { return x * 2 }
println(double(21))
`)
	main := prog.FindFunction("__linescript_script_main")
	call := main.Body[0].(*ast.ExprStmt).X.(*ast.Call)
	// double(21) inlines to 21*2, folds to 42, specializes to println_str.
	if call.Name != "println_str" {
		t.Fatalf("inline + fold chain produced %q", call.Name)
	}
	if lit, ok := call.Args[0].(*ast.StrLit); !ok || lit.Value != "42" {
		t.Fatalf("inlined result = %#v, want \"42\"", call.Args[0])
	}
}

func TestDeadStoreElimination(t *testing.T) {
	prog := optimized(t, `
declare unused: i64 = 1 + 2
declare used: i64 = 3
println(used)
`)
	main := prog.FindFunction("__linescript_script_main")
	for _, s := range main.Body {
		if d, ok := s.(*ast.Declare); ok && d.Name == "unused" {
			t.Fatal("dead store survived")
		}
	}
}

func TestTailDeadPruning(t *testing.T) {
	prog := optimized(t, `
fn f() -> i64 {
    return 1
    println(2)
}
println(f())
`)
	fn := prog.FindFunction("f")
	if len(fn.Body) != 1 {
		t.Fatalf("statements after return survived: %d", len(fn.Body))
	}
}

// bruteLoop runs the reduction the slow way for differential checks.
func bruteLoop(start, stop, step int64, f func(i int64) int64) int64 {
	var acc int64
	if step > 0 {
		for i := start; i < stop; i += step {
			acc += f(i)
		}
	} else {
		for i := start; i > stop; i += step {
			acc += f(i)
		}
	}
	return acc
}

func TestClosedFormAffine(t *testing.T) {
	ranges := []struct{ start, stop, step int64 }{
		{0, 100, 1},
		{0, 5, 1},
		{5, 0, -1},
		{10, 10, 1},   // zero trips
		{-20, 20, 3},
		{7, -13, -4},
	}
	for _, r := range ranges {
		src := fmt.Sprintf(`
declare s: i64 = 0
for i in %d..%d step %d {
    s = s + (2*i + 3)
}
println(s)
`, r.start, r.stop, r.step)
		prog := optimized(t, src)
		want := bruteLoop(r.start, r.stop, r.step, func(i int64) int64 { return 2*i + 3 })
		if got := printedOne(t, prog); got != want {
			t.Errorf("range %+v: closed form %d, brute force %d", r, got, want)
		}
	}
}

func TestClosedFormAffineHundredSteps(t *testing.T) {
	prog := optimized(t, `
declare s: i64 = 0
for i in 0..100 step 1 {
    s = s + (2*i + 3)
}
println(s)
`)
	if got := printedOne(t, prog); got != 10200 {
		t.Fatalf("affine sum = %d, want 10200", got)
	}
}

func TestClosedFormMultipleReductions(t *testing.T) {
	prog := optimized(t, `
declare a: i64 = 0
declare b: i64 = 0
declare c: i64 = 0
for i in 0..50 step 2 {
    a = a + i
    b = b + (3*i - 1)
    c = c - i
}
println(a)
println(b)
println(c)
`)
	wantA := bruteLoop(0, 50, 2, func(i int64) int64 { return i })
	wantB := bruteLoop(0, 50, 2, func(i int64) int64 { return 3*i - 1 })
	wantC := -wantA
	got := printedInts(t, prog)
	if len(got) != 3 {
		t.Fatalf("printed %d values, want 3", len(got))
	}
	if got[0] != wantA || got[1] != wantB || got[2] != wantC {
		t.Errorf("got %v, want [%d %d %d]", got, wantA, wantB, wantC)
	}
}

func TestClosedFormPolynomial(t *testing.T) {
	for _, r := range []struct{ start, stop, step int64 }{{0, 30, 1}, {-5, 12, 2}, {9, -9, -3}} {
		src := fmt.Sprintf(`
declare s: i64 = 0
for i in %d..%d step %d {
    s = s + (i*i + 2*i + 1)
}
println(s)
`, r.start, r.stop, r.step)
		prog := optimized(t, src)
		want := bruteLoop(r.start, r.stop, r.step, func(i int64) int64 { return i*i + 2*i + 1 })
		if got := printedOne(t, prog); got != want {
			t.Errorf("range %+v: %d, want %d", r, got, want)
		}
	}
}

func TestClosedFormPairCoupled(t *testing.T) {
	for _, r := range []struct{ start, stop, step int64 }{{0, 5, 1}, {0, 100, 1}, {3, 33, 4}} {
		src := fmt.Sprintf(`
declare acc: i64 = 0
declare state: i64 = 0
for i in %d..%d step %d {
    acc = acc + state
    state = state + (i + 1)
}
println(acc)
println(state)
`, r.start, r.stop, r.step)
		prog := optimized(t, src)

		var acc, state int64
		bruteLoop(r.start, r.stop, r.step, func(i int64) int64 {
			acc += state
			state += i + 1
			return 0
		})
		got := printedInts(t, prog)
		if len(got) != 2 {
			t.Fatalf("printed %d values, want 2", len(got))
		}
		if got[0] != acc || got[1] != state {
			t.Errorf("range %+v: got %v, brute force [%d %d]", r, got, acc, state)
		}
	}
}

func TestClosedFormAlternating(t *testing.T) {
	for _, r := range []struct{ start, stop, step int64 }{{0, 10, 1}, {0, 11, 1}, {1, 40, 3}, {0, 20, 2}, {1, 21, 2}} {
		src := fmt.Sprintf(`
declare x: i64 = 0
for i in %d..%d step %d {
    if i %% 2 == 0 {
        x = x + i
    } else {
        x = x - i
    }
}
println(x)
`, r.start, r.stop, r.step)
		prog := optimized(t, src)
		want := bruteLoop(r.start, r.stop, r.step, func(i int64) int64 {
			if i%2 == 0 {
				return i
			}
			return -i
		})
		if got := printedOne(t, prog); got != want {
			t.Errorf("range %+v: %d, want %d", r, got, want)
		}
	}
}

func TestClosedFormModular(t *testing.T) {
	for _, r := range []struct{ start, stop, step, a, b, m int64 }{
		{0, 1000, 1, 3, 2, 7},
		{0, 50, 1, 1, 0, 5},
		{2, 90, 3, 5, 11, 13},
	} {
		src := fmt.Sprintf(`
declare s: i64 = 0
for i in %d..%d step %d {
    s = s + (%d*i + %d) %% %d
}
println(s)
`, r.start, r.stop, r.step, r.a, r.b, r.m)
		prog := optimized(t, src)
		want := bruteLoop(r.start, r.stop, r.step, func(i int64) int64 { return (r.a*i + r.b) % r.m })
		if got := printedOne(t, prog); got != want {
			t.Errorf("case %+v: %d, want %d", r, got, want)
		}
	}
}

func TestClosedFormBilinear(t *testing.T) {
	prog := optimized(t, `
declare s: i64 = 0
for i in 0..10 step 1 {
    for j in 0..8 step 1 {
        s = s + (i*j + 2*i + 3*j + 4)
    }
}
println(s)
`)
	var want int64
	for i := int64(0); i < 10; i++ {
		for j := int64(0); j < 8; j++ {
			want += i*j + 2*i + 3*j + 4
		}
	}
	if got := printedOne(t, prog); got != want {
		t.Fatalf("bilinear sum = %d, want %d", got, want)
	}
}

func TestShortTripUnroll(t *testing.T) {
	prog := optimized(t, `
fn effect(v: i64) {
    println(v)
}
declare x: i64 = 10
for i in 0..4 {
    effect(i + x)
}
`)
	main := prog.FindFunction("__linescript_script_main")
	calls := 0
	for _, s := range main.Body {
		if _, ok := s.(*ast.For); ok {
			t.Fatal("short-trip loop survived unrolling")
		}
		if es, ok := s.(*ast.ExprStmt); ok {
			if _, ok := es.X.(*ast.Call); ok {
				calls++
			}
		}
	}
	if calls != 4 {
		t.Fatalf("unrolled into %d calls, want 4", calls)
	}
}

func TestZeroTripLoopDeleted(t *testing.T) {
	prog := optimized(t, `
fn effect(v: i64) {
    println(v)
}
for i in 5..5 {
    effect(i)
}
println_str("done")
`)
	main := prog.FindFunction("__linescript_script_main")
	for _, s := range main.Body {
		if _, ok := s.(*ast.For); ok {
			t.Fatal("zero-trip loop survived")
		}
	}
}

func TestCallBodiesAreNotReduced(t *testing.T) {
	prog := optimized(t, `
fn effect(v: i64) {
    println(v)
}
declare s: i64 = 0
for i in 0..100 {
    s = s + i
    effect(s)
}
println(s)
`)
	main := prog.FindFunction("__linescript_script_main")
	found := false
	for _, s := range main.Body {
		if _, ok := s.(*ast.For); ok {
			found = true
		}
	}
	if !found {
		t.Fatal("loop with observable calls must be kept")
	}
}

func TestMul64Overflow(t *testing.T) {
	if _, ok := mul64(1<<62, 4); ok {
		t.Fatal("expected overflow")
	}
	if v, ok := mul64(1<<31, 1<<31); !ok || v != 1<<62 {
		t.Fatalf("mul64 = %d, %v", v, ok)
	}
	if v, ok := mul64(-(1 << 31), 1<<31); !ok || v != -(1 << 62) {
		t.Fatalf("negative mul64 = %d, %v", v, ok)
	}
}

func TestTripCount(t *testing.T) {
	tests := []struct {
		start, stop, step int64
		want              int64
	}{
		{0, 10, 1, 10},
		{0, 10, 3, 4},
		{10, 0, -1, 10},
		{10, 0, -3, 4},
		{5, 5, 1, 0},
		{5, 0, 1, 0},
		{0, 5, -1, 0},
	}
	for _, tt := range tests {
		got, ok := tripCount(tt.start, tt.stop, tt.step)
		if !ok || got != tt.want {
			t.Errorf("tripCount(%d, %d, %d) = %d, %v; want %d",
				tt.start, tt.stop, tt.step, got, ok, tt.want)
		}
	}
}

func TestFloorSum(t *testing.T) {
	for _, c := range []struct{ n, m, a, b int64 }{
		{10, 7, 3, 2}, {100, 13, 5, 11}, {50, 5, 1, 0}, {1, 3, 0, 0},
	} {
		var want int64
		for k := int64(0); k < c.n; k++ {
			want += (c.a*k + c.b) / c.m
		}
		if got := floorSum(c.n, c.m, c.a, c.b); got != want {
			t.Errorf("floorSum(%d,%d,%d,%d) = %d, want %d", c.n, c.m, c.a, c.b, got, want)
		}
	}
}
