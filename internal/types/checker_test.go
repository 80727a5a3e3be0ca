package types

import (
	"strings"
	"testing"

	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/parser"
)

func check(t *testing.T, src string) (*ast.Program, []diag.Diagnostic) {
	t.Helper()
	p := parser.New(src)
	prog := p.ParseProgram()
	if prog == nil {
		t.Fatalf("parse failed: %v", p.Errors())
	}
	return prog, NewChecker(prog).Check()
}

func checkOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, diags := check(t, src)
	if diag.HasErrors(diags) {
		t.Fatalf("unexpected errors: %v", diags)
	}
	return prog
}

func checkFails(t *testing.T, src string, wantSubstr string) {
	t.Helper()
	_, diags := check(t, src)
	for _, d := range diags {
		if d.IsError() && strings.Contains(d.Message, wantSubstr) {
			return
		}
	}
	t.Fatalf("expected error containing %q, got %v", wantSubstr, diags)
}

func TestPrintResolvesPerType(t *testing.T) {
	prog := checkOK(t, `
println(42)
println(1.5)
println(true)
println("hi")
`)
	main := prog.FindFunction("__linescript_script_main")
	want := []string{"println_i64", "println_f64", "println_bool", "println_str"}
	for i, name := range want {
		call := main.Body[i].(*ast.ExprStmt).X.(*ast.Call)
		if call.Name != name {
			t.Fatalf("statement %d resolved to %q, want %q", i, call.Name, name)
		}
	}
}

func TestOverloadResolutionCosts(t *testing.T) {
	prog := checkOK(t, `
fn f(a: i64) -> i64 { return a }
fn f(a: f64) -> f64 { return a }
declare r: i64 = f(1)
declare s: f64 = f(1.5)
`)
	main := prog.FindFunction("__linescript_script_main")
	first := main.Body[0].(*ast.Declare).Init.(*ast.Call)
	if first.Name != "f" {
		t.Fatalf("exact i64 match resolved to %q", first.Name)
	}
	second := main.Body[1].(*ast.Declare).Init.(*ast.Call)
	if second.Name != "__ls_ovl_f_1" {
		t.Fatalf("f64 match resolved to %q", second.Name)
	}
}

func TestUnconvertibleArgument(t *testing.T) {
	checkFails(t, `
fn g(a: i64) -> i64 { return a }
declare r: i64 = g("nope")
`, "no overload")
}

func TestDuplicateSignatureError(t *testing.T) {
	checkFails(t, `
fn f(a: i64) -> i64 { return a }
fn f(b: i64) -> i64 { return b }
`, "duplicate signature")
}

func TestDuplicateSignatureDemotedUnderSuperuser(t *testing.T) {
	prog, diags := check(t, `
superuser()
fn f(a: i64) -> i64 { return a }
fn f(b: i64) -> i64 { return b }
`)
	if !prog.Superuser {
		t.Fatal("superuser flag not set")
	}
	if diag.HasErrors(diags) {
		t.Fatalf("duplicate signature should be a warning under superuser: %v", diags)
	}
	warned := false
	for _, d := range diags {
		if d.Severity == diag.SeverityWarning && d.Code == diag.CodeTypeDuplicateOverload {
			warned = true
		}
	}
	if !warned {
		t.Fatal("expected a duplicate-signature warning")
	}
}

func TestThrowsContract(t *testing.T) {
	checkFails(t, `
fn risky() -> i64 throws IOErr {
    return 1
}
fn caller() -> i64 {
    return risky()
}
`, "IOErr")

	checkOK(t, `
fn risky() -> i64 throws IOErr {
    return 1
}
fn caller() -> i64 throws IOErr {
    return risky()
}
`)
}

func TestOwnedRules(t *testing.T) {
	prog := checkOK(t, "declare owned a = array_new()\n")
	main := prog.FindFunction("__linescript_script_main")
	d := main.Body[0].(*ast.Declare)
	if d.FreeFn != "array_free" {
		t.Fatalf("owned free fn = %q, want array_free", d.FreeFn)
	}

	checkFails(t, "declare owned a = str_len(\"x\")\n", "recognized constructor")
	checkFails(t, `
declare owned a = array_new()
a = 5
`, "owned")
	checkFails(t, `
while true {
    declare owned a = array_new()
}
`, "loop")
	checkFails(t, `
fn f() -> i64 {
    declare owned a = array_new()
    return a
}
`, "escape")
}

func TestOwnedClassConstructor(t *testing.T) {
	prog := checkOK(t, `
class P {
    declare x: i64 = 0
}
declare owned p = P()
`)
	main := prog.FindFunction("__linescript_script_main")
	d := main.Body[0].(*ast.Declare)
	if d.FreeFn != "object_free" {
		t.Fatalf("class ctor owned free fn = %q, want object_free", d.FreeFn)
	}
}

func TestForRangeRules(t *testing.T) {
	checkOK(t, "for i in 0..10 { println(i) }\n")
	checkFails(t, "for i in 0..10 step 0 { println(i) }\n", "step")
	checkFails(t, "for i in 0..1.5 { println(i) }\n", "i64")
}

func TestParallelForBodyRules(t *testing.T) {
	checkFails(t, `
declare total: i64 = 0
parallel for i in 0..100 {
    total = total + i
}
`, "outer variable")

	checkFails(t, `
parallel for i in 0..100 {
    break
}
`, "break")

	// Nested loops own their loop control.
	checkOK(t, `
parallel for i in 0..100 {
    declare local: i64 = 0
    for j in 0..10 {
        if j == 5 {
            break
        }
        local = local + j
    }
}
`)
}

func TestDivisionByLiteralZero(t *testing.T) {
	checkFails(t, "declare a: i64 = 1 / 0\n", "zero")
	checkFails(t, "declare a: i64 = 1 % 0\n", "zero")
	checkOK(t, "declare a: i64 = 1 / 2\n")
}

func TestNarrowingAssignmentAccepted(t *testing.T) {
	// The checker deliberately accepts narrowing stores even though the
	// overload resolver penalizes them.
	checkOK(t, `
declare a: i32 = 0
declare b: i64 = 70000
a = b
`)
}

func TestSpawnRules(t *testing.T) {
	prog := checkOK(t, `
fn work() {
    println_str("bg")
}
declare id: i64 = spawn(work())
await(id)
`)
	main := prog.FindFunction("__linescript_script_main")
	sp := main.Body[0].(*ast.Declare).Init.(*ast.Call)
	if sp.Name != "spawn" {
		t.Fatalf("spawn call renamed to %q", sp.Name)
	}
	checkFails(t, `
fn work(n: i64) {
    println(n)
}
declare id: i64 = spawn(work(1))
`, "zero-argument")
	checkFails(t, `
fn work() -> i64 {
    return 1
}
declare id: i64 = spawn(work())
`, "void")
}

func TestMinMaxPromotion(t *testing.T) {
	prog := checkOK(t, `
declare a: i64 = max(1, 2)
declare b: f64 = max(1, 2.5)
`)
	main := prog.FindFunction("__linescript_script_main")
	intMax := main.Body[0].(*ast.Declare).Init.(*ast.Call)
	if intMax.Name != "max_i64" {
		t.Fatalf("integer max resolved to %q", intMax.Name)
	}
	floatMax := main.Body[1].(*ast.Declare).Init.(*ast.Call)
	if floatMax.Name != "max_f64" {
		t.Fatalf("promoted max resolved to %q", floatMax.Name)
	}
}

func TestMemWarningIsAdvisory(t *testing.T) {
	prog, diags := check(t, "declare p: i64 = mem_alloc(8)\nmem_free(p)\n")
	if diag.HasErrors(diags) {
		t.Fatalf("mem_* use must not be an error: %v", diags)
	}
	_ = prog
	noted := false
	for _, d := range diags {
		if d.Severity == diag.SeverityNote && d.Code == diag.CodeTypeRawMemory {
			noted = true
		}
	}
	if !noted {
		t.Fatal("expected raw-memory advisory note")
	}
}

func TestFreeOperatorOverloadResolution(t *testing.T) {
	prog := checkOK(t, `
operator + (a: str, b: str) -> str {
    return str_concat(a, b)
}
declare s: str = "a" + "b"
`)
	main := prog.FindFunction("__linescript_script_main")
	bin := main.Body[0].(*ast.Declare).Init.(*ast.Binary)
	if bin.OverrideFn != "__ls_op_plus" {
		t.Fatalf("free operator override = %q", bin.OverrideFn)
	}
	if bin.Inf() != ast.TypeStr {
		t.Fatalf("overloaded operator inferred %q, want str", bin.Inf())
	}
}

func TestRecheckIdempotence(t *testing.T) {
	src := `
class P {
    declare x: i64 = 1
}
fn f(a: i64) -> i64 { return a * 2 }
declare p = P()
declare r: i64 = f(p.x)
println(r)
`
	p := parser.New(src)
	prog := p.ParseProgram()
	if prog == nil {
		t.Fatalf("parse failed: %v", p.Errors())
	}
	first := NewChecker(prog).Check()
	if diag.HasErrors(first) {
		t.Fatalf("first pass failed: %v", first)
	}
	second := NewChecker(prog).Check()
	if diag.CountErrors(second) != 0 {
		t.Fatalf("re-check produced new errors: %v", second)
	}
}

func TestEveryExpressionTyped(t *testing.T) {
	prog := checkOK(t, `
declare a: i64 = 1 + 2 * 3
declare b: bool = a > 4 and a < 10
println(a)
`)
	main := prog.FindFunction("__linescript_script_main")
	var assertTyped func(e ast.Expr)
	assertTyped = func(e ast.Expr) {
		if e == nil {
			return
		}
		if !e.IsTyped() {
			t.Fatalf("untyped expression %T after checking", e)
		}
		switch x := e.(type) {
		case *ast.Unary:
			assertTyped(x.Operand)
		case *ast.Binary:
			assertTyped(x.Left)
			assertTyped(x.Right)
		case *ast.Call:
			for _, a := range x.Args {
				assertTyped(a)
			}
		}
	}
	for _, s := range main.Body {
		switch x := s.(type) {
		case *ast.Declare:
			assertTyped(x.Init)
		case *ast.ExprStmt:
			assertTyped(x.X)
		}
	}
}
