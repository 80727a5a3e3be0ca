package cemit

import (
	"strings"
	"testing"

	"github.com/linescript-lang/linescript/internal/depscan"
	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/optimize"
	"github.com/linescript-lang/linescript/internal/parser"
	"github.com/linescript-lang/linescript/internal/types"
)

func emit(t *testing.T, src string, opts Options) string {
	t.Helper()
	ctext, diags := tryEmit(t, src, opts)
	if diag.HasErrors(diags) {
		t.Fatalf("emit failed: %v", diags)
	}
	return ctext
}

func tryEmit(t *testing.T, src string, opts Options) (string, []diag.Diagnostic) {
	t.Helper()
	p := parser.New(src)
	prog := p.ParseProgram()
	if prog == nil {
		t.Fatalf("parse failed: %v", p.Errors())
	}
	if diags := types.NewChecker(prog).Check(); diag.HasErrors(diags) {
		t.Fatalf("check failed: %v", diags)
	}
	optimize.New(prog, 12).Run()
	if diags := types.NewChecker(prog).Check(); diag.HasErrors(diags) {
		t.Fatalf("re-check failed: %v", diags)
	}
	if prog.Superuser {
		opts.Superuser = true
	}
	feat := depscan.Scan(prog)
	return New(prog, feat, opts).Emit()
}

func TestIntegerLiteralsCarryLLSuffix(t *testing.T) {
	ctext := emit(t, "declare big: i64 = 1\nprintln(big + cli_token_count())\n", Options{})
	if !strings.Contains(ctext, "1LL") {
		t.Fatal("integer literals must carry the LL suffix")
	}
}

func TestFloatLiteralPrecision(t *testing.T) {
	ctext := emit(t, "declare f: f64 = 2.0\nprintln(f * i64_to_f64(cli_token_count()))\n", Options{})
	if !strings.Contains(ctext, "2.0") {
		t.Fatalf("float literal must keep a decimal point:\n%s", ctext)
	}
}

func TestStringComparisonUsesRuntime(t *testing.T) {
	ctext := emit(t, `
declare a: str = cli_value("x")
declare b: str = cli_value("y")
if a == b {
    println_str("same")
}
if a != b {
    println_str("diff")
}
`, Options{})
	if !strings.Contains(ctext, "ls_str_eq(") {
		t.Fatal("str == must emit ls_str_eq")
	}
	if !strings.Contains(ctext, "ls_str_neq(") {
		t.Fatal("str != must emit ls_str_neq")
	}
}

func TestOwnedHandleFreedOncePerPath(t *testing.T) {
	// One object_free call site for straight-line fall-through.
	ctext := emit(t, `
class P {
    declare x: i64 = 0
    constructor(v: i64) {
        this.x = v
    }
}
declare owned p = P(7)
println(p.x)
`, Options{})
	if got := strings.Count(ctext, "object_free(p)"); got != 1 {
		t.Fatalf("object_free(p) emitted %d times, want 1", got)
	}
}

func TestOwnedHandleFreedOnEveryExit(t *testing.T) {
	ctext := emit(t, `
fn work(sel: i64) -> i64 {
    declare owned a = array_new()
    if sel == cli_token_count() {
        return 1
    }
    return 2
}
println(work(3))
`, Options{})
	// One free per return path: the early return, the tail return.
	if got := strings.Count(ctext, "array_free(a)"); got != 2 {
		t.Fatalf("array_free(a) emitted %d times, want 2", got)
	}
}

func TestFormatBlockEmission(t *testing.T) {
	ctext := emit(t, `
formatOutput {
    print_str("hi")
} ("!")
`, Options{})
	for _, want := range []string{"ls_format_begin();", "ls_format_end(\"!\")", "ls_emit_text("} {
		if !strings.Contains(ctext, want) {
			t.Fatalf("format block emission missing %q:\n%s", want, ctext)
		}
	}
}

func TestParallelForEmission(t *testing.T) {
	ctext := emit(t, `
parallel for i in 0..100000 {
    declare v: i64 = i * i
}
`, Options{})
	if !strings.Contains(ctext, "LS_PAR_FOR_IF(") {
		t.Fatal("parallel for must emit the guarded pragma macro")
	}
	if !strings.Contains(ctext, "LS_PAR_MIN_ITERS") {
		t.Fatal("parallel for must compare against the trip threshold")
	}
}

func TestReductionLoopEmission(t *testing.T) {
	// Non-constant bounds keep the loop; the reduction shape gets its own
	// accumulator and SIMD reduction pragma.
	ctext := emit(t, `
fn sum_to(n: i64) -> i64 {
    declare s: i64 = 0
    for i in 0..n {
        s = s + i
    }
    return s
}
println(sum_to(cli_token_count()))
`, Options{})
	if !strings.Contains(ctext, "LS_OMP_SIMD_REDUCTION_PLUS(") {
		t.Fatalf("reduction loop must emit the reduction pragma:\n%s", ctext)
	}
}

func TestEntryWrapperScriptMain(t *testing.T) {
	ctext := emit(t, "println(7)\n", Options{})
	if !strings.Contains(ctext, "__linescript_script_main();") {
		t.Fatal("wrapper must call the synthesized script main")
	}
	if !strings.Contains(ctext, "return 0;") {
		t.Fatal("void entry wrapper must return 0")
	}
}

func TestEntryWrapperUserMainRenamed(t *testing.T) {
	ctext := emit(t, `
fn main() -> i64 {
    return 3
}
`, Options{})
	if !strings.Contains(ctext, "__ls_user_main") {
		t.Fatal("a user function named main must be renamed away from the C entry")
	}
	if !strings.Contains(ctext, "return (int)__ls_user_main();") {
		t.Fatal("non-void entry value must be cast to int")
	}
}

func TestEntryCardinalityErrors(t *testing.T) {
	_, diags := tryEmit(t, `
fn a() -> i64 { return 1 }
fn b() -> i64 { return 2 }
`, Options{})
	if !diag.HasErrors(diags) {
		t.Fatal("two zero-argument candidates must fail")
	}

	_, diags = tryEmit(t, "fn only(x: i64) -> i64 { return x }\n", Options{})
	if !diag.HasErrors(diags) {
		t.Fatal("no entry candidate must fail")
	}
}

func TestCLIFlagDispatch(t *testing.T) {
	ctext := emit(t, `
flag turbo() {
    println_str("turbo")
}
println_str("run")
`, Options{})
	if !strings.Contains(ctext, `"--turbo"`) {
		t.Fatal("wrapper must match the flag spelling")
	}
	if !strings.Contains(ctext, "__ls_flag_turbo();") {
		t.Fatal("wrapper must invoke the flag function")
	}
}

func TestSuperuserEmission(t *testing.T) {
	ctext := emit(t, `
superuser()
declare a: i64 = cli_token_count()
println(a)
`, Options{})
	if !strings.Contains(ctext, "ls_su_guard_step();") {
		t.Fatal("superuser builds prepend the step guard")
	}
	if !strings.Contains(ctext, "ls_su_trace_stmt(") {
		t.Fatal("superuser builds prepend the statement trace")
	}
}

func TestMinimalRuntimeOmitsContainers(t *testing.T) {
	ctext := emit(t, "println(42)\n", Options{})
	if strings.Contains(ctext, "array_new") {
		t.Fatal("minimal runtime must not carry the container tables")
	}
}

func TestSpawnEmitsFunctionPointer(t *testing.T) {
	ctext := emit(t, `
fn work() {
    println_str("bg")
}
declare id: i64 = spawn(work())
await(id)
`, Options{})
	if !strings.Contains(ctext, "ls_spawn(work)") {
		t.Fatalf("spawn must pass the resolved function pointer:\n%s", ctext)
	}
}

func TestStrHoldAtCallBoundary(t *testing.T) {
	// Two statements keep shout out of the inliner so the call site
	// survives to emission.
	ctext := emit(t, `
fn shout(msg: str) -> str {
    declare out: str = str_upper(msg)
    return out
}
declare s: str = cli_value("m")
println_str(shout(s))
`, Options{})
	if !strings.Contains(ctext, "ls_str_hold(s)") {
		t.Fatalf("non-literal str argument must be held:\n%s", ctext)
	}
}

func TestPrototypesPrecedeBodies(t *testing.T) {
	ctext := emit(t, `
fn helper(x: i64) -> i64 {
    return x + cli_token_count()
}
println(helper(1))
`, Options{})
	proto := strings.Index(ctext, "helper(int64_t x);")
	body := strings.Index(ctext, "helper(int64_t x) {")
	if proto < 0 || body < 0 || proto > body {
		t.Fatalf("prototype ordering wrong: proto=%d body=%d", proto, body)
	}
}

func TestEmitterTreatsIRReadOnly(t *testing.T) {
	p := parser.New("println(7)\n")
	prog := p.ParseProgram()
	if prog == nil {
		t.Fatal("parse failed")
	}
	if diags := types.NewChecker(prog).Check(); diag.HasErrors(diags) {
		t.Fatal("check failed")
	}
	feat := depscan.Scan(prog)
	before := len(prog.FindFunction("__linescript_script_main").Body)
	New(prog, feat, Options{}).Emit()
	if len(prog.FindFunction("__linescript_script_main").Body) != before {
		t.Fatal("emitter mutated the IR")
	}
}
