package cemit

import (
	"fmt"

	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/lexer"
)

func stmtKind(s ast.Stmt) string {
	switch s.(type) {
	case *ast.Declare:
		return "declare"
	case *ast.Assign:
		return "assign"
	case *ast.ExprStmt:
		return "expr"
	case *ast.Return:
		return "return"
	case *ast.If:
		return "if"
	case *ast.While:
		return "while"
	case *ast.For:
		return "for"
	case *ast.FormatBlock:
		return "format"
	case *ast.Break:
		return "break"
	case *ast.Continue:
		return "continue"
	}
	return "stmt"
}

func (e *Emitter) emitStmt(s ast.Stmt) {
	if e.opts.Superuser {
		e.line("ls_su_guard_step();")
		e.line("ls_su_trace_stmt(%q, %d, %q);", e.curFn.SrcName, s.Span().Line, stmtKind(s))
	}

	switch x := s.(type) {
	case *ast.Declare:
		e.emitDeclare(x)

	case *ast.Assign:
		e.line("%s = %s;", x.Name, e.expr(x.Value))

	case *ast.ExprStmt:
		e.line("%s;", e.expr(x.X))

	case *ast.Return:
		e.emitAllFrees()
		if x.Value == nil {
			e.line("return;")
			return
		}
		val := e.expr(x.Value)
		if e.curFn.Return == ast.TypeStr {
			if _, isLit := x.Value.(*ast.StrLit); !isLit {
				val = "ls_str_hold(" + val + ")"
			}
		}
		e.line("return %s;", val)

	case *ast.If:
		e.line("if (%s) {", e.expr(x.Cond))
		e.emitBlock(x.Then, false)
		if len(x.Else) > 0 {
			e.line("} else {")
			e.emitBlock(x.Else, false)
		}
		e.line("}")

	case *ast.While:
		e.line("while (%s) {", e.expr(x.Cond))
		e.emitBlock(x.Body, true)
		e.line("}")

	case *ast.For:
		e.emitFor(x)

	case *ast.FormatBlock:
		e.emitFormatBlock(x)

	case *ast.Break:
		e.emitLoopExitFrees()
		e.line("break;")

	case *ast.Continue:
		e.emitLoopExitFrees()
		e.line("continue;")
	}
}

func (e *Emitter) emitBlock(stmts []ast.Stmt, isLoop bool) {
	e.indent++
	e.pushScope(isLoop)
	for _, s := range stmts {
		e.emitStmt(s)
	}
	if !endsWithTerminator(stmts) {
		e.emitScopeFrees(1)
	}
	e.popScope()
	e.indent--
}

// endsWithTerminator reports whether control cannot fall off the end of
// the block; tail-dead pruning guarantees the terminator is last.
func endsWithTerminator(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	switch stmts[len(stmts)-1].(type) {
	case *ast.Return, *ast.Break, *ast.Continue:
		return true
	}
	return false
}

func (e *Emitter) emitDeclare(x *ast.Declare) {
	t := x.Resolved
	if t == ast.TypeUnknown {
		t = ast.TypeI64
	}
	prefix := ""
	if x.Const {
		prefix = "const "
	}
	ct := cType(t)
	sep := " "
	if ct[len(ct)-1] == '*' {
		sep = ""
	}
	if x.Init != nil {
		e.line("%s%s%s%s = %s;", prefix, ct, sep, x.Name, e.expr(x.Init))
	} else {
		e.line("%s%s%s%s = 0;", prefix, ct, sep, x.Name)
	}
	if x.Owned && x.FreeFn != "" {
		e.registerOwned(x.Name, x.FreeFn)
	}
}

// emitFor writes a counted loop with the applicable specialization: SIMD
// hints for call-free local bodies, a trip-count-guarded parallel pragma
// for parallel loops, and a separate reduction accumulator for recognized
// reduction shapes.
func (e *Emitter) emitFor(x *ast.For) {
	iv := x.Var
	startT := e.tmp("start")
	stopT := e.tmp("stop")
	stepT := e.tmp("step")

	e.line("{")
	e.indent++
	e.line("int64_t %s = %s;", startT, e.expr(x.Start))
	e.line("int64_t %s = %s;", stopT, e.expr(x.Stop))
	e.line("int64_t %s = %s;", stepT, e.expr(x.Step))

	cond := fmt.Sprintf("%s > 0 ? %s < %s : %s > %s", stepT, iv, stopT, iv, stopT)
	if lit, ok := stepLiteral(x.Step); ok {
		if lit > 0 {
			cond = fmt.Sprintf("%s < %s", iv, stopT)
		} else {
			cond = fmt.Sprintf("%s > %s", iv, stopT)
		}
	}

	if red, ok := e.matchEmitReduction(x); ok && !x.Parallel {
		accT := e.tmp("red")
		e.line("int64_t %s = 0;", accT)
		e.line("LS_OMP_SIMD_REDUCTION_PLUS(%s)", accT)
		e.line("for (int64_t %s = %s; %s; %s += %s) {", iv, startT, cond, iv, stepT)
		e.indent++
		e.line("%s += %s;", accT, e.expr(red.rhs))
		e.indent--
		e.line("}")
		op := "+"
		if red.sign < 0 {
			op = "-"
		}
		e.line("%s = %s %s %s;", red.target, red.target, op, accT)
		e.indent--
		e.line("}")
		return
	}

	switch {
	case x.Parallel:
		e.line("LS_PAR_FOR_IF(ls_trip_count(%s, %s, %s) >= LS_PAR_MIN_ITERS)", startT, stopT, stepT)
	case bodyIsVectorizable(x.Body):
		e.line("LS_OMP_SIMD")
		e.line("LS_VEC_HINT")
	}
	e.line("for (int64_t %s = %s; %s; %s += %s) {", iv, startT, cond, iv, stepT)
	e.emitBlock(x.Body, true)
	e.line("}")
	e.indent--
	e.line("}")
}

func stepLiteral(step ast.Expr) (int64, bool) {
	lit, ok := step.(*ast.IntLit)
	if !ok {
		return 0, false
	}
	return lit.Value, true
}

// emitReduction is the reduction shape the emitter recognizes for the SIMD
// reduction specialization: a single 'acc = acc ± rhs' body with a
// call-free i64 RHS not reading the accumulator.
type emitReduction struct {
	target string
	sign   int
	rhs    ast.Expr
}

func (e *Emitter) matchEmitReduction(x *ast.For) (emitReduction, bool) {
	if len(x.Body) != 1 {
		return emitReduction{}, false
	}
	as, ok := x.Body[0].(*ast.Assign)
	if !ok {
		return emitReduction{}, false
	}
	bin, ok := as.Value.(*ast.Binary)
	if !ok || bin.OverrideFn != "" || bin.Inf() != ast.TypeI64 {
		return emitReduction{}, false
	}
	var rhs ast.Expr
	sign := 1
	switch bin.Op {
	case lexer.PLUS:
		if id, ok := bin.Left.(*ast.Ident); ok && id.Name == as.Name {
			rhs = bin.Right
		} else if id, ok := bin.Right.(*ast.Ident); ok && id.Name == as.Name {
			rhs = bin.Left
		}
	case lexer.MINUS:
		if id, ok := bin.Left.(*ast.Ident); ok && id.Name == as.Name {
			rhs = bin.Right
			sign = -1
		}
	}
	if rhs == nil || exprHasCall(rhs) || exprReadsVar(rhs, as.Name) {
		return emitReduction{}, false
	}
	return emitReduction{target: as.Name, sign: sign, rhs: rhs}, true
}

// bodyIsVectorizable: all statements are local declares, assigns, or
// expression statements with no calls.
func bodyIsVectorizable(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		switch x := s.(type) {
		case *ast.Declare:
			if exprHasCall(x.Init) {
				return false
			}
		case *ast.Assign:
			if exprHasCall(x.Value) {
				return false
			}
		case *ast.ExprStmt:
			if exprHasCall(x.X) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func exprHasCall(x ast.Expr) bool {
	found := false
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch v := e.(type) {
		case *ast.Call:
			found = true
		case *ast.Unary:
			if v.OverrideFn != "" {
				found = true
			}
			walk(v.Operand)
		case *ast.Binary:
			if v.OverrideFn != "" {
				found = true
			}
			walk(v.Left)
			walk(v.Right)
		}
	}
	if x != nil {
		walk(x)
	}
	return found
}

func exprReadsVar(x ast.Expr, name string) bool {
	found := false
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch v := e.(type) {
		case *ast.Ident:
			if v.Name == name {
				found = true
			}
		case *ast.Unary:
			walk(v.Operand)
		case *ast.Binary:
			walk(v.Left)
			walk(v.Right)
		case *ast.Call:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	if x != nil {
		walk(x)
	}
	return found
}

// emitFormatBlock redirects print output into the thread-local buffer for
// the body, appends the end argument and flushes the result.
func (e *Emitter) emitFormatBlock(x *ast.FormatBlock) {
	e.line("ls_format_begin();")
	e.emitBlockNoScope(x.Body)
	end := `""`
	if x.EndArg != nil {
		end = e.expr(x.EndArg)
	}
	tmp := e.tmp("fmt")
	e.line("const char *%s = ls_format_end(%s);", tmp, end)
	e.line("ls_emit_text(%s);", tmp)
}

func (e *Emitter) emitBlockNoScope(stmts []ast.Stmt) {
	e.pushScope(false)
	for _, s := range stmts {
		e.emitStmt(s)
	}
	e.emitScopeFrees(1)
	e.popScope()
}
