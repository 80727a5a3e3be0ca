// Package cemit writes a self-contained C translation unit for a checked,
// optimized program: headers, the feature-gated runtime blob, prototypes,
// function bodies, loop specializations, and the entry wrapper.
package cemit

import (
	"fmt"
	"strings"

	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/depscan"
	"github.com/linescript-lang/linescript/internal/diag"
)

// Options are the emitter knobs the driver controls.
type Options struct {
	Superuser     bool
	TargetWindows bool
}

// Emitter holds emission state for one translation unit.
type Emitter struct {
	prog *ast.Program
	feat depscan.Features
	opts Options

	buf    strings.Builder
	indent int

	// scopes tracks owned-handle cleanup items; every scope exit emits the
	// pending frees in reverse registration order.
	scopes []*scopeFrame

	curFn   *ast.Function
	tmpSeq  int
	entryFn *ast.Function

	Diags []diag.Diagnostic
}

type ownedItem struct {
	name   string
	freeFn string
}

type scopeFrame struct {
	owned  []ownedItem
	isLoop bool
}

// New creates an emitter.
func New(prog *ast.Program, feat depscan.Features, opts Options) *Emitter {
	return &Emitter{prog: prog, feat: feat, opts: opts}
}

// Emit produces the C text. A cardinality failure (no entry, ambiguous
// entry) is reported through Diags with an empty result.
func (e *Emitter) Emit() (string, []diag.Diagnostic) {
	entry, ok := e.selectEntry()
	if !ok {
		return "", e.Diags
	}
	e.entryFn = entry

	ultra := e.feat.UltraMinimal && e.opts.TargetWindows

	e.emitIncludes(ultra)
	e.raw(runtimeI128)
	if !ultra {
		e.raw(runtimePrelude)
	}
	e.raw(runtimeParallelMacros)
	e.emitRuntimeBlob(ultra)
	e.emitPrototypes()
	e.emitBodies()
	e.emitEntryWrapper(ultra)

	return e.buf.String(), e.Diags
}

// selectEntry picks the program entry: the synthesized script main, else a
// function literally named main, else the sole zero-argument user function.
func (e *Emitter) selectEntry() (*ast.Function, bool) {
	if fn := e.prog.FindFunction("__linescript_script_main"); fn != nil {
		return fn, true
	}
	if fn := e.prog.FindFunction("main"); fn != nil {
		return fn, true
	}
	var candidates []*ast.Function
	for _, fn := range e.prog.Functions {
		if fn.Extern || fn.CLIFlag || fn.OwnerClass != "" || fn.OperatorKind != "" {
			continue
		}
		if len(fn.Params) == 0 {
			candidates = append(candidates, fn)
		}
	}
	switch len(candidates) {
	case 1:
		return candidates[0], true
	case 0:
		e.Diags = append(e.Diags, diag.Error(diag.StageEmit, diag.CodeDriverNoEntry, diag.Span{},
			"no entry point: declare top-level statements, a main function, or a single zero-argument function"))
	default:
		e.Diags = append(e.Diags, diag.Error(diag.StageEmit, diag.CodeDriverManyEntries, diag.Span{},
			fmt.Sprintf("ambiguous entry point: %d zero-argument functions and no main", len(candidates))))
	}
	return nil, false
}

func (e *Emitter) raw(s string) {
	e.buf.WriteString(s)
}

func (e *Emitter) line(format string, args ...any) {
	for i := 0; i < e.indent; i++ {
		e.buf.WriteString("    ")
	}
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

func (e *Emitter) tmp(prefix string) string {
	e.tmpSeq++
	return fmt.Sprintf("__ls_%s%d", prefix, e.tmpSeq)
}

func (e *Emitter) emitIncludes(ultra bool) {
	e.raw("#include <stdint.h>\n")
	e.raw("#include <stddef.h>\n")
	if !ultra {
		e.raw("#include <stdio.h>\n")
		e.raw("#include <stdlib.h>\n")
		e.raw("#include <time.h>\n")
		e.raw("#include <math.h>\n")
		e.raw("#include <string.h>\n")
		e.raw("#include <ctype.h>\n")
	}
	if e.opts.TargetWindows || ultra {
		e.raw("#include <windows.h>\n")
		if e.feat.NeedsHTTP {
			e.raw("#include <winsock2.h>\n")
			e.raw("#pragma comment(lib, \"ws2_32.lib\")\n")
			e.raw("#define LS_CLOSESOCK closesocket\n")
		}
	} else {
		if e.feat.NeedsHTTP {
			e.raw("#include <sys/socket.h>\n")
			e.raw("#include <netinet/in.h>\n")
			e.raw("#include <netdb.h>\n")
			e.raw("#include <unistd.h>\n")
			e.raw("#define LS_CLOSESOCK close\n")
		}
		e.raw("#include <pthread.h>\n")
	}
	e.raw("#if defined(_MSC_VER)\n#define LS_THREAD_LOCAL __declspec(thread)\n" +
		"#else\n#define LS_THREAD_LOCAL _Thread_local\n#endif\n")
}

// emitRuntimeBlob inlines the runtime level the dependency flags selected.
func (e *Emitter) emitRuntimeBlob(ultra bool) {
	if ultra {
		e.raw(runtimeUltraMinimal)
		return
	}
	if e.feat.MinimalRuntime {
		e.raw(runtimeMinimal)
		return
	}
	e.raw(runtimeStrings)
	e.raw(runtimeCore)
	if e.feat.NeedsGraphics {
		e.raw(runtimeGraphics)
	}
	if e.feat.NeedsHTTP {
		e.raw(runtimeHTTP)
	}
}

// cType maps a LineScript type to its C spelling.
func cType(t ast.Type) string {
	switch t {
	case ast.TypeI32:
		return "int32_t"
	case ast.TypeI64:
		return "int64_t"
	case ast.TypeF32:
		return "float"
	case ast.TypeF64:
		return "double"
	case ast.TypeBool:
		return "int"
	case ast.TypeStr:
		return "const char *"
	case ast.TypeVoid:
		return "void"
	}
	return "int64_t"
}

// symName maps a function symbol to its C identifier; a user function
// named main must not collide with the wrapper.
func symName(name string) string {
	if name == "main" {
		return "__ls_user_main"
	}
	return name
}

// isInlineCandidate applies the shape checks of the optimizer's inlining
// predicate (not extern, not a flag, at most 8 parameters, a single return)
// for the static inline prototype hint. Unlike the optimizer it does not
// reject a bare return or a self-call.
func isInlineCandidate(fn *ast.Function) bool {
	if fn.Extern || fn.CLIFlag || len(fn.Params) > 8 || len(fn.Body) != 1 {
		return false
	}
	_, ok := fn.Body[0].(*ast.Return)
	return ok
}

func (e *Emitter) signature(fn *ast.Function) string {
	var sb strings.Builder
	if isInlineCandidate(fn) || fn.Inline {
		sb.WriteString("static inline ")
	} else if !fn.Extern {
		sb.WriteString("static ")
	}
	sb.WriteString(cType(fn.Return))
	if !strings.HasSuffix(sb.String(), "*") {
		sb.WriteString(" ")
	}
	sb.WriteString(symName(fn.Name))
	sb.WriteString("(")
	if len(fn.Params) == 0 {
		sb.WriteString("void")
	}
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(cType(p.Type))
		if !strings.HasSuffix(cType(p.Type), "*") {
			sb.WriteString(" ")
		}
		sb.WriteString(p.Name)
	}
	sb.WriteString(")")
	return sb.String()
}

func (e *Emitter) emitPrototypes() {
	e.raw("\n/* forward prototypes */\n")
	for _, fn := range e.prog.Functions {
		e.raw(e.signature(fn) + ";\n")
	}
}

func (e *Emitter) emitBodies() {
	for _, fn := range e.prog.Functions {
		if fn.Extern {
			continue
		}
		e.curFn = fn
		e.raw("\n" + e.signature(fn) + " {\n")
		e.indent++
		e.pushScope(false)
		for _, s := range fn.Body {
			e.emitStmt(s)
		}
		// Fall-through scope exit still releases owned handles; a trailing
		// return already did, so no dead free sites after it.
		if !endsWithTerminator(fn.Body) {
			e.emitScopeFrees(1)
		}
		e.popScope()
		e.indent--
		e.raw("}\n")
	}
}

// emitEntryWrapper writes the process entry: flag-function dispatch in
// first-seen command-line order, then the user entry. The ultra-minimal
// Windows build replaces main with mainCRTStartup and exits via
// ExitProcess.
func (e *Emitter) emitEntryWrapper(ultra bool) {
	entry := e.entryFn
	var flags []*ast.Function
	for _, fn := range e.prog.Functions {
		if fn.CLIFlag {
			flags = append(flags, fn)
		}
	}

	if ultra {
		e.raw("\nvoid __stdcall mainCRTStartup(void) {\n")
		if entry.Return == ast.TypeVoid || entry.Return == ast.TypeStr {
			e.raw(fmt.Sprintf("    %s();\n    ExitProcess(0);\n", symName(entry.Name)))
		} else {
			e.raw(fmt.Sprintf("    ExitProcess((UINT)%s());\n", symName(entry.Name)))
		}
		e.raw("}\n")
		return
	}

	needsArgs := len(flags) > 0 || !e.feat.MinimalRuntime
	if needsArgs {
		e.raw("\nint main(int argc, char **argv) {\n")
	} else {
		e.raw("\nint main(void) {\n")
	}
	if !e.feat.MinimalRuntime {
		e.raw("    ls_cli_init(argc, argv);\n")
	}
	if len(flags) > 0 {
		for i := range flags {
			e.raw(fmt.Sprintf("    int __ls_flag_seen_%d = 0;\n", i))
		}
		e.raw("    for (int __ls_i = 1; __ls_i < argc; __ls_i++) {\n")
		for i, fn := range flags {
			e.raw(fmt.Sprintf("        if (strcmp(argv[__ls_i], \"--%s\") == 0 && !__ls_flag_seen_%d) { __ls_flag_seen_%d = 1; %s(); }\n",
				fn.SrcName, i, i, symName(fn.Name)))
		}
		e.raw("    }\n")
	}
	if entry.Return == ast.TypeVoid || entry.Return == ast.TypeStr {
		e.raw(fmt.Sprintf("    %s();\n    return 0;\n", symName(entry.Name)))
	} else {
		e.raw(fmt.Sprintf("    return (int)%s();\n", symName(entry.Name)))
	}
	e.raw("}\n")
}

func (e *Emitter) pushScope(isLoop bool) {
	e.scopes = append(e.scopes, &scopeFrame{isLoop: isLoop})
}

func (e *Emitter) popScope() {
	e.scopes = e.scopes[:len(e.scopes)-1]
}

func (e *Emitter) registerOwned(name, freeFn string) {
	top := e.scopes[len(e.scopes)-1]
	top.owned = append(top.owned, ownedItem{name: name, freeFn: freeFn})
}

// emitScopeFrees releases the owned handles of the innermost n scopes in
// reverse registration order.
func (e *Emitter) emitScopeFrees(n int) {
	for i := 0; i < n && i < len(e.scopes); i++ {
		frame := e.scopes[len(e.scopes)-1-i]
		for j := len(frame.owned) - 1; j >= 0; j-- {
			e.line("%s(%s);", frame.owned[j].freeFn, frame.owned[j].name)
		}
	}
}

// emitAllFrees releases every scope (function return).
func (e *Emitter) emitAllFrees() {
	e.emitScopeFrees(len(e.scopes))
}

// emitLoopExitFrees releases scopes up to and including the innermost loop
// (break/continue crossing the loop boundary).
func (e *Emitter) emitLoopExitFrees() {
	n := 0
	for i := len(e.scopes) - 1; i >= 0; i-- {
		n++
		if e.scopes[i].isLoop {
			break
		}
	}
	e.emitScopeFrees(n)
}
