package parser

import (
	"testing"

	"github.com/linescript-lang/linescript/internal/ast"
)

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	p := New(src)
	prog := p.ParseProgram()
	if prog == nil {
		t.Fatalf("parse failed: %v", p.Errors())
	}
	return prog
}

func parseFails(t *testing.T, src string) {
	t.Helper()
	p := New(src)
	if prog := p.ParseProgram(); prog != nil {
		t.Fatalf("expected parse failure for %q", src)
	}
}

func TestBareStatementsBecomeScriptMain(t *testing.T) {
	prog := parseOK(t, "println(1 + 2)\n")

	fn := prog.FindFunction("__linescript_script_main")
	if fn == nil {
		t.Fatal("expected synthesized script main")
	}
	if len(fn.Body) != 1 {
		t.Fatalf("script main body length = %d", len(fn.Body))
	}
}

func TestStatementTerminators(t *testing.T) {
	// Semicolons, newlines and closing block tokens all terminate.
	parseOK(t, "declare a: i64 = 1; declare b: i64 = 2\n")
	parseOK(t, "if true { declare a: i64 = 1 }\n")
	parseOK(t, "if true do declare a: i64 = 1 end\n")
	parseFails(t, "declare a: i64 = 1 declare b: i64 = 2\n")
}

func TestBlockFormsInterchangeable(t *testing.T) {
	prog := parseOK(t, `
fn twice(x: i64) -> i64 do
    return x * 2
end

fn thrice(x: i64) -> i64 {
    return x * 3
}
`)
	if prog.FindFunction("twice") == nil || prog.FindFunction("thrice") == nil {
		t.Fatal("expected both block forms to parse")
	}
}

func TestOverloadMangling(t *testing.T) {
	prog := parseOK(t, `
fn f(a: i64) -> i64 { return a }
fn f(a: f64) -> f64 { return a }
fn f(a: i64, b: i64) -> i64 { return a + b }
`)
	group := prog.Overloads["f"]
	if len(group) != 3 {
		t.Fatalf("overload group size = %d, want 3", len(group))
	}
	if group[0].Name != "f" {
		t.Fatalf("first overload symbol = %q, want f", group[0].Name)
	}
	if group[1].Name != "__ls_ovl_f_1" || group[2].Name != "__ls_ovl_f_2" {
		t.Fatalf("mangled symbols = %q, %q", group[1].Name, group[2].Name)
	}
}

func TestFunctionDetectionHeuristic(t *testing.T) {
	// A bare call statement must not be mistaken for a declaration.
	prog := parseOK(t, `
fn helper() -> i64 { return 1 }
helper()
`)
	if prog.FindFunction("__linescript_script_main") == nil {
		t.Fatal("call statement should land in script main")
	}

	// A keywordless declaration is detected through the lookahead.
	prog = parseOK(t, "add(a: i64, b: i64) -> i64 { return a + b }\n")
	if prog.FindFunction("add") == nil {
		t.Fatal("expected keywordless function declaration")
	}
}

func TestExternFunction(t *testing.T) {
	prog := parseOK(t, "extern fn putchar_raw(c: i64);\n")
	fn := prog.FindFunction("putchar_raw")
	if fn == nil || !fn.Extern || fn.Body != nil {
		t.Fatal("expected extern prototype with no body")
	}
}

func TestConstructorSynthesis(t *testing.T) {
	prog := parseOK(t, `
class P {
    declare x: i64 = 0
    constructor(v: i64) {
        this.x = v
    }
}
declare owned p = P(7)
println(p.x)
`)
	ctor := prog.FindFunction("__ls_ctor_P")
	if ctor == nil {
		t.Fatal("expected synthesized constructor")
	}
	// Shape: declare this; field init; user body; return this.
	first, ok := ctor.Body[0].(*ast.Declare)
	if !ok || first.Name != "this" {
		t.Fatalf("constructor must start by declaring this, got %T", ctor.Body[0])
	}
	if _, ok := first.Init.(*ast.Call); !ok {
		t.Fatal("this initializer must be a constructor or object_new call")
	}
	last, ok := ctor.Body[len(ctor.Body)-1].(*ast.Return)
	if !ok {
		t.Fatal("constructor must end with return")
	}
	if id, ok := last.Value.(*ast.Ident); !ok || id.Name != "this" {
		t.Fatal("constructor must return this")
	}
}

func TestSynthesizedDefaultConstructor(t *testing.T) {
	prog := parseOK(t, `
class Empty {
    declare n: i64 = 3
}
declare e = Empty()
`)
	ctor := prog.FindFunction("__ls_ctor_Empty")
	if ctor == nil {
		t.Fatal("every class receives exactly one constructor")
	}
	if len(ctor.Params) != 0 {
		t.Fatal("default constructor takes no parameters")
	}
}

func TestFieldReadRewrite(t *testing.T) {
	prog := parseOK(t, `
class P {
    declare x: i64 = 0
    declare f: f64 = 0.0
    declare b: bool = false
}
declare p = P()
declare a: i64 = p.x
declare c: f64 = p.f
declare d: bool = p.b
`)
	main := prog.FindFunction("__linescript_script_main")
	reads := map[string]string{}
	for _, s := range main.Body {
		d, ok := s.(*ast.Declare)
		if !ok {
			continue
		}
		if call, ok := d.Init.(*ast.Call); ok {
			reads[d.Name] = call.Name
		}
	}
	if reads["a"] != "parse_i64" {
		t.Fatalf("i64 field read parses with %q, want parse_i64", reads["a"])
	}
	if reads["c"] != "parse_f64" {
		t.Fatalf("f64 field read parses with %q, want parse_f64", reads["c"])
	}
	if reads["d"] != "i64_to_bool" {
		t.Fatalf("bool field read parses with %q, want i64_to_bool", reads["d"])
	}
}

func TestFieldWriteRewrite(t *testing.T) {
	prog := parseOK(t, `
class P {
    declare x: i64 = 0
}
declare p = P()
p.x = 5
`)
	main := prog.FindFunction("__linescript_script_main")
	last, ok := main.Body[len(main.Body)-1].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("field write should lower to a call statement, got %T", main.Body[len(main.Body)-1])
	}
	call, ok := last.X.(*ast.Call)
	if !ok || call.Name != "object_set" {
		t.Fatal("field write must lower to object_set")
	}
	if fmtCall, ok := call.Args[2].(*ast.Call); !ok || fmtCall.Name != "formatOutput" {
		t.Fatal("stored value must round through formatOutput")
	}
}

func TestMethodCallRewrite(t *testing.T) {
	prog := parseOK(t, `
class Counter {
    declare n: i64 = 0
    fn bump(amount: i64) -> i64 {
        return amount
    }
    static fn zero() -> i64 {
        return 0
    }
}
declare c = Counter()
declare r: i64 = c.bump(2)
declare z: i64 = Counter.zero()
`)
	main := prog.FindFunction("__linescript_script_main")

	bump := main.Body[1].(*ast.Declare).Init.(*ast.Call)
	if bump.Name != "__ls_m_Counter_bump" {
		t.Fatalf("method call symbol = %q", bump.Name)
	}
	if len(bump.Args) != 2 {
		t.Fatalf("receiver must be prepended, arg count = %d", len(bump.Args))
	}

	zero := main.Body[2].(*ast.Declare).Init.(*ast.Call)
	if zero.Name != "__ls_m_Counter_zero" {
		t.Fatalf("static call symbol = %q", zero.Name)
	}
	if len(zero.Args) != 0 {
		t.Fatal("static call must not receive an instance argument")
	}
}

func TestStaticCallOnInstanceMethodFails(t *testing.T) {
	parseFails(t, `
class C {
    fn m() -> i64 { return 1 }
}
declare r: i64 = C.m()
`)
}

func TestMacroExpansion(t *testing.T) {
	prog := parseOK(t, `
macro square(x: expr) -> expr { x * x }
declare n: i64 = expand(square(3 + 1))
`)
	main := prog.FindFunction("__linescript_script_main")
	d := main.Body[0].(*ast.Declare)
	bin, ok := d.Init.(*ast.Binary)
	if !ok {
		t.Fatalf("expansion should leave a binary node, got %T", d.Init)
	}
	// Hygiene-free substitution clones the argument into each slot.
	if _, ok := bin.Left.(*ast.Binary); !ok {
		t.Fatal("macro argument should be substituted structurally")
	}
}

func TestMacroStmtKindErrorsOnUse(t *testing.T) {
	parseFails(t, `
macro bad(x: stmt) -> expr { x }
declare n: i64 = expand(bad(1))
`)
}

func TestDeleteLowering(t *testing.T) {
	prog := parseOK(t, `
declare a = array_new()
declare m: i64 = mem_alloc(64)
delete a
delete[] m
`)
	main := prog.FindFunction("__linescript_script_main")
	free1 := main.Body[2].(*ast.ExprStmt).X.(*ast.Call)
	if free1.Name != "array_free" {
		t.Fatalf("delete of array handle frees with %q", free1.Name)
	}
	free2 := main.Body[3].(*ast.ExprStmt).X.(*ast.Call)
	if free2.Name != "mem_free" {
		t.Fatalf("delete of unknown handle defaults to %q, want mem_free", free2.Name)
	}
}

func TestSuNamespaceComposition(t *testing.T) {
	prog := parseOK(t, `
superuser()
su.trace.on()
superuser.limit.set(1024)
`)
	if !prog.Superuser {
		t.Fatal("superuser() call must flip the program flag")
	}
	main := prog.FindFunction("__linescript_script_main")
	c1 := main.Body[1].(*ast.ExprStmt).X.(*ast.Call)
	if c1.Name != "su.trace.on" {
		t.Fatalf("composed symbol = %q", c1.Name)
	}
	c2 := main.Body[2].(*ast.ExprStmt).X.(*ast.Call)
	if c2.Name != "su.limit.set" {
		t.Fatalf("superuser.* must canonicalize to su.*, got %q", c2.Name)
	}
}

func TestOperatorOverloadDecl(t *testing.T) {
	prog := parseOK(t, `
operator + (a: str, b: str) -> str {
    return str_concat(a, b)
}
`)
	group := prog.Overloads["__ls_op_plus"]
	if len(group) != 1 {
		t.Fatalf("operator overload group size = %d", len(group))
	}
	if group[0].OperatorKind != "+" {
		t.Fatalf("operator kind = %q", group[0].OperatorKind)
	}
}

func TestBadOperatorShapes(t *testing.T) {
	parseFails(t, "operator + (a: i64) -> i64 { return a }\n")
	parseFails(t, "operator + (a: i64, b: i64) { return }\n")
	parseFails(t, "operator + (a: i64, b: i64) -> i64 throws E { return a }\n")
}

func TestMemberOperatorLowering(t *testing.T) {
	prog := parseOK(t, `
class Vec {
    declare x: i64 = 0
    operator + (other: Vec) -> i64 {
        return this.x + other.x
    }
}
declare a = Vec()
declare b = Vec()
declare s: i64 = a + b
`)
	main := prog.FindFunction("__linescript_script_main")
	d := main.Body[2].(*ast.Declare)
	bin := d.Init.(*ast.Binary)
	if bin.OverrideFn != "__ls_m_Vec_op_plus" {
		t.Fatalf("member operator override = %q", bin.OverrideFn)
	}
}

func TestFlagDecl(t *testing.T) {
	prog := parseOK(t, `
flag fast-mode() {
    println_str("fast")
}
`)
	fn := prog.FindFunction("__ls_flag_fast_mode")
	if fn == nil || !fn.CLIFlag {
		t.Fatal("expected CLI flag function")
	}
	if fn.SrcName != "fast-mode" {
		t.Fatalf("flag source name = %q", fn.SrcName)
	}
}

func TestFormatBlock(t *testing.T) {
	prog := parseOK(t, `
formatOutput {
    print_str("hi")
} ("!")
`)
	main := prog.FindFunction("__linescript_script_main")
	fb, ok := main.Body[0].(*ast.FormatBlock)
	if !ok {
		t.Fatalf("expected format block, got %T", main.Body[0])
	}
	if fb.EndArg == nil {
		t.Fatal("format block end argument missing")
	}
}

func TestElifChain(t *testing.T) {
	prog := parseOK(t, `
declare x: i64 = 1
if x == 0 {
    println_str("zero")
} elif x == 1 {
    println_str("one")
} else {
    println_str("many")
}
`)
	main := prog.FindFunction("__linescript_script_main")
	outer := main.Body[1].(*ast.If)
	if len(outer.Else) != 1 {
		t.Fatalf("elif must desugar into a nested if, else arm length = %d", len(outer.Else))
	}
	if _, ok := outer.Else[0].(*ast.If); !ok {
		t.Fatalf("elif arm is %T, want *ast.If", outer.Else[0])
	}
}

func TestFieldsMustPrecedeMethods(t *testing.T) {
	parseFails(t, `
class C {
    fn m() -> i64 { return 1 }
    declare x: i64 = 0
}
`)
}

func TestDuplicateClassFails(t *testing.T) {
	parseFails(t, "class A { declare x: i64 = 0 }\nclass A { declare y: i64 = 0 }\n")
}

func TestCompoundAssignDesugars(t *testing.T) {
	prog := parseOK(t, `
declare s: i64 = 0
s += 3
s++
`)
	main := prog.FindFunction("__linescript_script_main")
	plusAssign := main.Body[1].(*ast.Assign)
	if _, ok := plusAssign.Value.(*ast.Binary); !ok {
		t.Fatal("compound assign must desugar to a binary store")
	}
	incr := main.Body[2].(*ast.Assign)
	if _, ok := incr.Value.(*ast.Binary); !ok {
		t.Fatal("increment must desugar to a binary store")
	}
}

func TestParallelFor(t *testing.T) {
	prog := parseOK(t, `
parallel for i in 0..100 {
    declare t: i64 = i * 2
}
`)
	main := prog.FindFunction("__linescript_script_main")
	loop := main.Body[0].(*ast.For)
	if !loop.Parallel {
		t.Fatal("parallel flag lost")
	}
}
