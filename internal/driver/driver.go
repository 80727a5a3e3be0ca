// Package driver concatenates inputs, orchestrates the compile pipeline
// (lex, parse, check, optimize, re-check, depscan, emit), manages the
// typed-IR bundle cache and invokes the host C toolchain.
package driver

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/linescript-lang/linescript/internal/cemit"
	"github.com/linescript-lang/linescript/internal/depscan"
	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/optimize"
	"github.com/linescript-lang/linescript/internal/parser"
	"github.com/linescript-lang/linescript/internal/types"
)

// Result is the outcome of a frontend run.
type Result struct {
	CText    string
	Features depscan.Features
	Diags    []diag.Diagnostic
}

// Compile runs the full pipeline over concatenated source text. All inputs
// form one program; there is no separate compilation.
func Compile(source string, cfg *Config) Result {
	cfg.Defaults()

	p := parser.New(source)
	prog := p.ParseProgram()
	diags := p.Errors()
	if prog == nil {
		return Result{Diags: diags}
	}
	if cfg.Superuser {
		prog.Superuser = true
	}

	checker := types.NewChecker(prog)
	firstPass := checker.Check()
	diags = append(diags, firstPass...)
	if diag.HasErrors(firstPass) {
		return Result{Diags: diags}
	}

	optimize.New(prog, cfg.Passes).Run()

	// The mandatory re-check: optimizer rewrites can change inferred types
	// of synthesized expressions, so overloads are re-resolved. Any new
	// error here is a latent bug the first pass missed.
	recheck := types.NewChecker(prog).Check()
	if diag.HasErrors(recheck) {
		diags = append(diags, diag.Error(diag.StageOptimize, diag.CodeTypeMismatch, diag.Span{},
			fmt.Sprintf("internal: re-type-check after optimization failed with %d errors",
				diag.CountErrors(recheck))))
		diags = append(diags, recheck...)
		return Result{Diags: diags}
	}

	feat := depscan.Scan(prog)

	em := cemit.New(prog, feat, cemit.Options{
		Superuser:     prog.Superuser,
		TargetWindows: targetIsWindows(cfg),
	})
	ctext, emitDiags := em.Emit()
	diags = append(diags, emitDiags...)
	if diag.HasErrors(emitDiags) {
		return Result{Diags: diags}
	}

	return Result{CText: ctext, Features: feat, Diags: diags}
}

func targetIsWindows(cfg *Config) bool {
	if cfg.Target != "" {
		return strings.Contains(cfg.Target, "windows") || strings.Contains(cfg.Target, "mingw")
	}
	return runtime.GOOS == "windows"
}

// ReadInputs loads and concatenates the input files in argument order.
func ReadInputs(paths []string) (string, []string, error) {
	var contents []string
	var sb strings.Builder
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return "", nil, fmt.Errorf("read input %s: %w", p, err)
		}
		contents = append(contents, string(data))
		sb.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), contents, nil
}

// ValidInputExt accepts the LineScript source extensions.
func ValidInputExt(path string) bool {
	return strings.HasSuffix(path, ".lsc") || strings.HasSuffix(path, ".ls")
}
