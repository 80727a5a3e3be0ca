package optimize

import (
	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// Optimizer runs the peephole and loop-algebraic passes over a typed
// program. Each pass run is a fixed point: while any sub-transformation
// reports a change the pass repeats, up to the configured iteration count.
type Optimizer struct {
	prog   *ast.Program
	passes int

	// negOverride disables every transform that would rewrite -x, because
	// a user unary-negation override changes its semantics.
	negOverride bool

	inlinable map[string]*ast.Function
}

// New creates an optimizer; passes defaults to 12 when non-positive.
func New(prog *ast.Program, passes int) *Optimizer {
	if passes <= 0 {
		passes = 12
	}
	return &Optimizer{
		prog:        prog,
		passes:      passes,
		negOverride: prog.HasNegOverride(),
	}
}

// Run executes the configured number of passes, stopping early at a global
// fixed point.
func (o *Optimizer) Run() {
	for i := 0; i < o.passes; i++ {
		if !o.pass() {
			return
		}
	}
}

func (o *Optimizer) pass() bool {
	o.collectInlinable()

	changed := false
	for _, fn := range o.prog.Functions {
		if fn.Extern {
			continue
		}
		if o.inlineCalls(fn) {
			changed = true
		}
		if o.foldFunction(fn) {
			changed = true
		}
		if o.propagateConstants(fn) {
			changed = true
		}
		if body, c := o.reduceLoops(fn.Body); c {
			fn.Body = body
			changed = true
		}
		if body, c := o.eliminateDeadStores(fn.Body, true); c {
			fn.Body = body
			changed = true
		}
		if body, c := pruneTailDead(fn.Body); c {
			fn.Body = body
			changed = true
		}
	}
	return changed
}

// collectInlinable finds the inlining candidates: non-extern, at most 8
// parameters, body a single return of an expression with no self-call.
func (o *Optimizer) collectInlinable() {
	o.inlinable = make(map[string]*ast.Function)
	for _, fn := range o.prog.Functions {
		if fn.Extern || fn.CLIFlag || len(fn.Params) > 8 || len(fn.Body) != 1 {
			continue
		}
		ret, ok := fn.Body[0].(*ast.Return)
		if !ok || ret.Value == nil {
			continue
		}
		if callsSymbol(ret.Value, fn.Name) {
			continue
		}
		o.inlinable[fn.Name] = fn
	}
}

func callsSymbol(e ast.Expr, symbol string) bool {
	found := false
	walkExpr(e, func(x ast.Expr) {
		if call, ok := x.(*ast.Call); ok && call.Name == symbol {
			found = true
		}
	})
	return found
}

// inlineCalls substitutes inlinable call sites with the callee's return
// expression, mapping parameters to arguments.
func (o *Optimizer) inlineCalls(fn *ast.Function) bool {
	changed := false
	rewriteExprs(fn.Body, func(e ast.Expr) ast.Expr {
		call, ok := e.(*ast.Call)
		if !ok {
			return e
		}
		target, ok := o.inlinable[call.Name]
		if !ok || target == fn {
			return e
		}
		if len(call.Args) != len(target.Params) {
			return e
		}
		bindings := make(map[string]ast.Expr, len(target.Params))
		for i, p := range target.Params {
			bindings[p.Name] = call.Args[i]
		}
		ret := target.Body[0].(*ast.Return)
		changed = true
		return ast.SubstituteIdents(ast.CloneExpr(ret.Value), bindings)
	})
	return changed
}

// walkExpr visits e and every sub-expression.
func walkExpr(e ast.Expr, visit func(ast.Expr)) {
	if e == nil {
		return
	}
	visit(e)
	switch x := e.(type) {
	case *ast.Unary:
		walkExpr(x.Operand, visit)
	case *ast.Binary:
		walkExpr(x.Left, visit)
		walkExpr(x.Right, visit)
	case *ast.Call:
		for _, a := range x.Args {
			walkExpr(a, visit)
		}
	}
}

// rewriteExprs applies a bottom-up expression rewrite to every expression
// in a statement list.
func rewriteExprs(stmts []ast.Stmt, rw func(ast.Expr) ast.Expr) {
	var rewrite func(e ast.Expr) ast.Expr
	rewrite = func(e ast.Expr) ast.Expr {
		if e == nil {
			return nil
		}
		switch x := e.(type) {
		case *ast.Unary:
			x.Operand = rewrite(x.Operand)
		case *ast.Binary:
			x.Left = rewrite(x.Left)
			x.Right = rewrite(x.Right)
		case *ast.Call:
			for i := range x.Args {
				x.Args[i] = rewrite(x.Args[i])
			}
		}
		return rw(e)
	}
	var walk func(stmts []ast.Stmt)
	walk = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			switch x := s.(type) {
			case *ast.Declare:
				x.Init = rewrite(x.Init)
			case *ast.Assign:
				x.Value = rewrite(x.Value)
			case *ast.ExprStmt:
				x.X = rewrite(x.X)
			case *ast.Return:
				x.Value = rewrite(x.Value)
			case *ast.If:
				x.Cond = rewrite(x.Cond)
				walk(x.Then)
				walk(x.Else)
			case *ast.While:
				x.Cond = rewrite(x.Cond)
				walk(x.Body)
			case *ast.For:
				x.Start = rewrite(x.Start)
				x.Stop = rewrite(x.Stop)
				x.Step = rewrite(x.Step)
				walk(x.Body)
			case *ast.FormatBlock:
				x.EndArg = rewrite(x.EndArg)
				walk(x.Body)
			}
		}
	}
	walk(stmts)
}

// refsVar reports whether the expression reads the named variable.
func refsVar(e ast.Expr, name string) bool {
	found := false
	walkExpr(e, func(x ast.Expr) {
		if id, ok := x.(*ast.Ident); ok && id.Name == name {
			found = true
		}
	})
	return found
}

// triviallyPure reports whether evaluating the expression can have no
// observable effect: no calls, and no division, modulo or pow (which can
// trap or diverge numerically).
func triviallyPure(e ast.Expr) bool {
	pure := true
	walkExpr(e, func(x ast.Expr) {
		switch b := x.(type) {
		case *ast.Call:
			pure = false
		case *ast.Binary:
			if b.Op == lexer.SLASH || b.Op == lexer.PERCENT || b.Op == lexer.POW {
				pure = false
			}
			if b.OverrideFn != "" {
				pure = false
			}
		case *ast.Unary:
			if b.OverrideFn != "" {
				pure = false
			}
		}
	})
	return pure
}

// stmtReads reports whether a statement (recursively) reads the variable.
func stmtReads(s ast.Stmt, name string) bool {
	switch x := s.(type) {
	case *ast.Declare:
		return refsVar(x.Init, name)
	case *ast.Assign:
		return refsVar(x.Value, name)
	case *ast.ExprStmt:
		return refsVar(x.X, name)
	case *ast.Return:
		return refsVar(x.Value, name)
	case *ast.If:
		if refsVar(x.Cond, name) {
			return true
		}
		return anyReads(x.Then, name) || anyReads(x.Else, name)
	case *ast.While:
		return refsVar(x.Cond, name) || anyReads(x.Body, name)
	case *ast.For:
		return refsVar(x.Start, name) || refsVar(x.Stop, name) ||
			refsVar(x.Step, name) || anyReads(x.Body, name)
	case *ast.FormatBlock:
		return refsVar(x.EndArg, name) || anyReads(x.Body, name)
	}
	return false
}

func anyReads(stmts []ast.Stmt, name string) bool {
	for _, s := range stmts {
		if stmtReads(s, name) {
			return true
		}
	}
	return false
}
