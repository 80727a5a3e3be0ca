package optimize

import (
	"strconv"

	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// propagateConstants performs local i64 constant propagation per block: a
// declare or assign whose value evaluates to a known i64 records it and the
// stored expression is rewritten to the literal. Entering any loop or
// conditional invalidates the map; the analysis is intentionally
// conservative.
func (o *Optimizer) propagateConstants(fn *ast.Function) bool {
	return o.propagateInBlock(fn.Body)
}

func (o *Optimizer) propagateInBlock(stmts []ast.Stmt) bool {
	changed := false
	known := make(map[string]int64)

	for _, s := range stmts {
		switch x := s.(type) {
		case *ast.Declare:
			if v, ok := evalKnownI64(x.Init, known); ok && x.Resolved == ast.TypeI64 {
				if _, already := x.Init.(*ast.IntLit); !already {
					lit := ast.NewIntLit(v, x.Init.Span())
					lit.SetInf(ast.TypeI64)
					x.Init = lit
					changed = true
				}
				known[x.Name] = v
			} else {
				delete(known, x.Name)
			}

		case *ast.Assign:
			if v, ok := evalKnownI64(x.Value, known); ok {
				if _, already := x.Value.(*ast.IntLit); !already {
					lit := ast.NewIntLit(v, x.Value.Span())
					lit.SetInf(ast.TypeI64)
					x.Value = lit
					changed = true
				}
				known[x.Name] = v
			} else {
				delete(known, x.Name)
			}

		case *ast.ExprStmt:
			if o.specializePrint(x, known) {
				changed = true
			}

		case *ast.If:
			if o.propagateInBlock(x.Then) {
				changed = true
			}
			if o.propagateInBlock(x.Else) {
				changed = true
			}
			known = make(map[string]int64)

		case *ast.While:
			if o.propagateInBlock(x.Body) {
				changed = true
			}
			known = make(map[string]int64)

		case *ast.For:
			if o.propagateInBlock(x.Body) {
				changed = true
			}
			known = make(map[string]int64)

		case *ast.FormatBlock:
			if o.propagateInBlock(x.Body) {
				changed = true
			}
			known = make(map[string]int64)
		}
	}
	return changed
}

// specializePrint rewrites print/println of a known i64 into the _str form
// carrying the decimal string.
func (o *Optimizer) specializePrint(s *ast.ExprStmt, known map[string]int64) bool {
	call, ok := s.X.(*ast.Call)
	if !ok || len(call.Args) != 1 {
		return false
	}
	var repl string
	switch call.Name {
	case "print_i64":
		repl = "print_str"
	case "println_i64":
		repl = "println_str"
	default:
		return false
	}
	v, ok := evalKnownI64(call.Args[0], known)
	if !ok {
		return false
	}
	if lit, already := call.Args[0].(*ast.StrLit); already && lit.Value == strconv.FormatInt(v, 10) {
		return false
	}
	str := ast.NewStrLit(strconv.FormatInt(v, 10), call.Args[0].Span())
	str.SetInf(ast.TypeStr)
	call.Name = repl
	call.Args[0] = str
	return true
}

// evalKnownI64 evaluates an expression using only literals, variables with
// known values, and overflow-checked arithmetic.
func evalKnownI64(e ast.Expr, known map[string]int64) (int64, bool) {
	switch x := e.(type) {
	case *ast.IntLit:
		return x.Value, true
	case *ast.Ident:
		v, ok := known[x.Name]
		return v, ok
	case *ast.Unary:
		if x.Op != lexer.MINUS || x.OverrideFn != "" {
			return 0, false
		}
		v, ok := evalKnownI64(x.Operand, known)
		if !ok || v == minI64 {
			return 0, false
		}
		return -v, true
	case *ast.Binary:
		if x.OverrideFn != "" {
			return 0, false
		}
		a, ok := evalKnownI64(x.Left, known)
		if !ok {
			return 0, false
		}
		b, ok := evalKnownI64(x.Right, known)
		if !ok {
			return 0, false
		}
		switch x.Op {
		case lexer.PLUS:
			return addChecked(a, b)
		case lexer.MINUS:
			return i128From(a).sub(i128From(b)).toI64()
		case lexer.ASTERISK:
			return mul64(a, b)
		case lexer.SLASH:
			if b == 0 || (a == minI64 && b == -1) {
				return 0, false
			}
			return a / b, true
		case lexer.PERCENT:
			if b == 0 || (a == minI64 && b == -1) {
				return 0, false
			}
			return a % b, true
		case lexer.POW:
			return ipow(a, b)
		}
	}
	return 0, false
}

func addChecked(a, b int64) (int64, bool) {
	return add64(a, b)
}
