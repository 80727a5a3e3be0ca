package depscan

import (
	"testing"

	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/parser"
	"github.com/linescript-lang/linescript/internal/types"
)

func scan(t *testing.T, src string) Features {
	t.Helper()
	p := parser.New(src)
	prog := p.ParseProgram()
	if prog == nil {
		t.Fatalf("parse failed: %v", p.Errors())
	}
	if diags := types.NewChecker(prog).Check(); diag.HasErrors(diags) {
		t.Fatalf("check failed: %v", diags)
	}
	return Scan(prog)
}

func TestMinimalRuntime(t *testing.T) {
	f := scan(t, "println(42)\n")
	if !f.MinimalRuntime {
		t.Fatal("print-only program should use the minimal runtime")
	}
	if !f.UltraMinimal {
		t.Fatal("integer print-only program qualifies for ultra-minimal")
	}
}

func TestFloatDisablesUltraMinimal(t *testing.T) {
	f := scan(t, "println(1.5)\n")
	if !f.MinimalRuntime {
		t.Fatal("float printing still fits the minimal runtime")
	}
	if f.UltraMinimal {
		t.Fatal("f64 arithmetic excludes ultra-minimal")
	}
	if !f.UsesF64 {
		t.Fatal("f64 use not recorded")
	}
}

func TestStringFlowDisablesMinimal(t *testing.T) {
	f := scan(t, `
declare s: str = str_concat("a", "b")
println(s)
`)
	if f.MinimalRuntime {
		t.Fatal("string values flowing through the IR require the full runtime")
	}
}

func TestStringLiteralPrintStaysMinimal(t *testing.T) {
	f := scan(t, "println(\"hi\")\n")
	if !f.MinimalRuntime {
		t.Fatal("a literal fed straight to print stays minimal")
	}
}

func TestFeatureFlags(t *testing.T) {
	f := scan(t, `
declare g = game_new(100, 100, "t")
for i in 0..10 {
    println(i)
}
parallel for i in 0..1000 {
    declare v: i64 = i * i
}
declare r: str = http_get("http://example.com/")
println(2 ** 10)
.format()
stateSpeed(1)
`)
	if !f.NeedsFor {
		t.Fatal("for flag missing")
	}
	if !f.HasParallelFor {
		t.Fatal("parallel flag missing")
	}
	if !f.NeedsGraphics {
		t.Fatal("graphics flag missing")
	}
	if !f.NeedsHTTP {
		t.Fatal("http flag missing")
	}
	if !f.NeedsPow {
		t.Fatal("pow flag missing")
	}
	if !f.FormatMarker {
		t.Fatal("format marker missing")
	}
	if !f.NeedsStateSpeed {
		t.Fatal("stateSpeed flag missing")
	}
	if f.MinimalRuntime || f.UltraMinimal {
		t.Fatal("feature-rich program cannot be minimal")
	}
}

func TestFormatBlockNeedsFormatRuntime(t *testing.T) {
	f := scan(t, `
formatOutput {
    print_str("hi")
} ("!")
`)
	if !f.NeedsFormatOutput {
		t.Fatal("format block must set the formatOutput flag")
	}
}

func TestScanIsReadOnly(t *testing.T) {
	p := parser.New("println(1)\n")
	prog := p.ParseProgram()
	if prog == nil {
		t.Fatal("parse failed")
	}
	if diags := types.NewChecker(prog).Check(); diag.HasErrors(diags) {
		t.Fatal("check failed")
	}
	before := len(prog.FindFunction("__linescript_script_main").Body)
	Scan(prog)
	after := len(prog.FindFunction("__linescript_script_main").Body)
	if before != after {
		t.Fatal("scan mutated the IR")
	}
}
