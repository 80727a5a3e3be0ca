// Package depscan walks the final IR and decides which runtime features the
// emitted C must carry. The flags gate which level of the runtime template
// the emitter inlines and which platform headers it includes.
package depscan

import (
	"strings"

	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// Features is the set of runtime capabilities a program requires.
type Features struct {
	// MinimalRuntime: only print/println/format/stateSpeed entry points
	// are called and no string values flow through the IR.
	MinimalRuntime bool
	// UltraMinimal additionally excludes f64 arithmetic and stateSpeed;
	// only honored on Windows targets, where the CRT can be dropped.
	UltraMinimal bool

	NeedsFor          bool
	NeedsPow          bool
	NeedsStateSpeed   bool
	NeedsFormatOutput bool
	NeedsHTTP         bool
	NeedsGraphics     bool
	HasParallelFor    bool
	// FormatMarker: a .format() call anywhere; suppresses toolchain
	// chatter and routes debug output.
	FormatMarker bool

	UsesF64 bool
	UsesStr bool
}

// minimalCalls are the entry points a minimal-runtime program may use.
func isMinimalCall(name string) bool {
	switch {
	case strings.HasPrefix(name, "print_"),
		strings.HasPrefix(name, "println_"),
		strings.HasPrefix(name, "format_"):
		return true
	}
	switch name {
	case "stateSpeed", ".stateSpeed", ".format", ".freeConsole", "formatOutput", "FormatOutput":
		return true
	}
	return false
}

// Scan computes the feature set for a checked, optimized program.
func Scan(prog *ast.Program) Features {
	f := Features{MinimalRuntime: true}

	for _, fn := range prog.Functions {
		if fn.Extern {
			continue
		}
		for _, p := range fn.Params {
			noteType(&f, p.Type)
		}
		noteType(&f, fn.Return)
		scanStmts(&f, fn.Body)
	}

	f.UltraMinimal = f.MinimalRuntime && !f.UsesF64 && !f.NeedsStateSpeed && !f.NeedsFormatOutput
	return f
}

func noteType(f *Features, t ast.Type) {
	switch t {
	case ast.TypeF64, ast.TypeF32:
		f.UsesF64 = true
	case ast.TypeStr:
		f.UsesStr = true
		f.MinimalRuntime = false
	}
}

func scanStmts(f *Features, stmts []ast.Stmt) {
	for _, s := range stmts {
		switch x := s.(type) {
		case *ast.Declare:
			noteType(f, x.Resolved)
			scanExpr(f, x.Init)
		case *ast.Assign:
			scanExpr(f, x.Value)
		case *ast.ExprStmt:
			scanExpr(f, x.X)
		case *ast.Return:
			scanExpr(f, x.Value)
		case *ast.If:
			scanExpr(f, x.Cond)
			scanStmts(f, x.Then)
			scanStmts(f, x.Else)
		case *ast.While:
			scanExpr(f, x.Cond)
			scanStmts(f, x.Body)
		case *ast.For:
			f.NeedsFor = true
			if x.Parallel {
				f.HasParallelFor = true
			}
			scanExpr(f, x.Start)
			scanExpr(f, x.Stop)
			scanExpr(f, x.Step)
			scanStmts(f, x.Body)
		case *ast.FormatBlock:
			f.NeedsFormatOutput = true
			f.MinimalRuntime = false
			scanExpr(f, x.EndArg)
			scanStmts(f, x.Body)
		}
	}
}

func scanExpr(f *Features, e ast.Expr) {
	if e == nil {
		return
	}
	switch t := e.Inf(); t {
	case ast.TypeF64, ast.TypeF32:
		f.UsesF64 = true
	case ast.TypeStr:
		// String literals and formatOutput results feeding print are the
		// string shapes the minimal runtime still handles.
		_, isLit := e.(*ast.StrLit)
		isFmt := false
		if call, ok := e.(*ast.Call); ok && isMinimalCall(call.Name) {
			isFmt = true
		}
		if !isLit && !isFmt {
			f.UsesStr = true
			f.MinimalRuntime = false
		}
	}

	switch x := e.(type) {
	case *ast.Unary:
		scanExpr(f, x.Operand)
	case *ast.Binary:
		if x.Op == lexer.POW {
			f.NeedsPow = true
		}
		scanExpr(f, x.Left)
		scanExpr(f, x.Right)
	case *ast.Call:
		scanCall(f, x)
		for _, a := range x.Args {
			scanExpr(f, a)
		}
	}
}

func scanCall(f *Features, x *ast.Call) {
	name := x.Name
	if !isMinimalCall(name) {
		f.MinimalRuntime = false
	}
	switch {
	case strings.HasPrefix(name, "http_"):
		f.NeedsHTTP = true
	case strings.HasPrefix(name, "game_"),
		strings.HasPrefix(name, "pg_"),
		strings.HasPrefix(name, "key_down"):
		f.NeedsGraphics = true
	}
	switch name {
	case "stateSpeed", ".stateSpeed":
		f.NeedsStateSpeed = true
	case ".format":
		f.FormatMarker = true
	case "formatOutput", "FormatOutput",
		"format_i32", "format_i64", "format_f32", "format_f64", "format_bool", "format_str":
		f.NeedsFormatOutput = true
	case "pow_f64":
		f.NeedsPow = true
	}
}
