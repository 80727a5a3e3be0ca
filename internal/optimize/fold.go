package optimize

import (
	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// foldFunction applies constant folding and algebraic identities to every
// expression in the function body.
func (o *Optimizer) foldFunction(fn *ast.Function) bool {
	changed := false
	rewriteExprs(fn.Body, func(e ast.Expr) ast.Expr {
		out := o.foldExpr(e)
		if out != e {
			changed = true
		}
		return out
	})
	return changed
}

func (o *Optimizer) foldExpr(e ast.Expr) ast.Expr {
	switch x := e.(type) {
	case *ast.Unary:
		return o.foldUnary(x)
	case *ast.Binary:
		return o.foldBinary(x)
	}
	return e
}

func (o *Optimizer) foldUnary(x *ast.Unary) ast.Expr {
	if x.OverrideFn != "" {
		return x
	}
	switch x.Op {
	case lexer.MINUS:
		if o.negOverride {
			return x
		}
		switch v := x.Operand.(type) {
		case *ast.IntLit:
			out := ast.NewIntLit(-v.Value, x.Span())
			out.SetInf(v.Inf())
			return out
		case *ast.FloatLit:
			out := ast.NewFloatLit(-v.Value, x.Span())
			out.SetInf(v.Inf())
			return out
		}
	case lexer.BANG:
		if v, ok := x.Operand.(*ast.BoolLit); ok {
			out := ast.NewBoolLit(!v.Value, x.Span())
			out.SetInf(ast.TypeBool)
			return out
		}
	}
	return x
}

func (o *Optimizer) foldBinary(x *ast.Binary) ast.Expr {
	if x.OverrideFn != "" {
		return x
	}

	li, lIsInt := x.Left.(*ast.IntLit)
	ri, rIsInt := x.Right.(*ast.IntLit)
	lf, lIsFloat := x.Left.(*ast.FloatLit)
	rf, rIsFloat := x.Right.(*ast.FloatLit)
	lb, lIsBool := x.Left.(*ast.BoolLit)
	rb, rIsBool := x.Right.(*ast.BoolLit)

	if lIsInt && rIsInt {
		if out, ok := foldIntInt(x, li.Value, ri.Value); ok {
			return out
		}
	}
	if lIsFloat && rIsFloat {
		if out, ok := foldFloatFloat(x, lf.Value, rf.Value); ok {
			return out
		}
	}
	if lIsBool && rIsBool {
		if out, ok := foldBoolBool(x, lb.Value, rb.Value); ok {
			return out
		}
	}

	// Short-circuit with a literal operand.
	switch x.Op {
	case lexer.AND:
		if lIsBool {
			if lb.Value {
				return x.Right
			}
			return retypedBool(false, x)
		}
		if rIsBool && rb.Value {
			return x.Left
		}
	case lexer.OR:
		if lIsBool {
			if lb.Value {
				return retypedBool(true, x)
			}
			return x.Right
		}
		if rIsBool && !rb.Value {
			return x.Left
		}
	}

	return o.foldIdentity(x, li, lIsInt, ri, rIsInt)
}

// foldIdentity applies the algebraic identities that hold regardless of
// typing: x+0, 0+x, x-0, x*1, 1*x, x/1, x**1 collapse; x-x collapses to 0
// only for i64 (float NaN makes it unsafe there).
func (o *Optimizer) foldIdentity(x *ast.Binary, li *ast.IntLit, lIsInt bool, ri *ast.IntLit, rIsInt bool) ast.Expr {
	rIsZero := rIsInt && ri.Value == 0
	lIsZero := lIsInt && li.Value == 0
	rIsOne := rIsInt && ri.Value == 1
	lIsOne := lIsInt && li.Value == 1

	switch x.Op {
	case lexer.PLUS:
		if rIsZero {
			return x.Left
		}
		if lIsZero {
			return x.Right
		}
	case lexer.MINUS:
		if rIsZero {
			return x.Left
		}
		if sameVar(x.Left, x.Right) && x.Inf() == ast.TypeI64 {
			out := ast.NewIntLit(0, x.Span())
			out.SetInf(ast.TypeI64)
			return out
		}
	case lexer.ASTERISK:
		if rIsOne {
			return x.Left
		}
		if lIsOne {
			return x.Right
		}
	case lexer.SLASH, lexer.POW:
		if rIsOne {
			return x.Left
		}
	}
	return x
}

func sameVar(a, b ast.Expr) bool {
	ai, ok1 := a.(*ast.Ident)
	bi, ok2 := b.(*ast.Ident)
	return ok1 && ok2 && ai.Name == bi.Name
}

func retypedBool(v bool, at ast.Expr) ast.Expr {
	out := ast.NewBoolLit(v, at.Span())
	out.SetInf(ast.TypeBool)
	return out
}

func foldIntInt(x *ast.Binary, a, b int64) (ast.Expr, bool) {
	mkInt := func(v int64) (ast.Expr, bool) {
		out := ast.NewIntLit(v, x.Span())
		out.SetInf(ast.TypeI64)
		return out, true
	}
	mkBool := func(v bool) (ast.Expr, bool) {
		return retypedBool(v, x), true
	}
	switch x.Op {
	case lexer.PLUS:
		if v, ok := add64(a, b); ok {
			return mkInt(v)
		}
	case lexer.MINUS:
		if v, ok := i128From(a).sub(i128From(b)).toI64(); ok {
			return mkInt(v)
		}
	case lexer.ASTERISK:
		if v, ok := mul64(a, b); ok {
			return mkInt(v)
		}
	case lexer.SLASH:
		if b != 0 && !(a == minI64 && b == -1) {
			return mkInt(a / b)
		}
	case lexer.PERCENT:
		if b != 0 && !(a == minI64 && b == -1) {
			return mkInt(a % b)
		}
	case lexer.POW:
		if v, ok := ipow(a, b); ok {
			return mkInt(v)
		}
	case lexer.EQ:
		return mkBool(a == b)
	case lexer.NOT_EQ:
		return mkBool(a != b)
	case lexer.LT:
		return mkBool(a < b)
	case lexer.LE:
		return mkBool(a <= b)
	case lexer.GT:
		return mkBool(a > b)
	case lexer.GE:
		return mkBool(a >= b)
	}
	return nil, false
}

const minI64 = -1 << 63

// ipow is integer pow by repeated squaring with overflow checks. Negative
// exponents do not fold.
func ipow(base, exp int64) (int64, bool) {
	if exp < 0 {
		return 0, false
	}
	result := int64(1)
	b := base
	for exp > 0 {
		if exp&1 == 1 {
			v, ok := mul64(result, b)
			if !ok {
				return 0, false
			}
			result = v
		}
		exp >>= 1
		if exp == 0 {
			break
		}
		v, ok := mul64(b, b)
		if !ok {
			return 0, false
		}
		b = v
	}
	return result, true
}

func foldFloatFloat(x *ast.Binary, a, b float64) (ast.Expr, bool) {
	mkFloat := func(v float64) (ast.Expr, bool) {
		out := ast.NewFloatLit(v, x.Span())
		out.SetInf(ast.TypeF64)
		return out, true
	}
	mkBool := func(v bool) (ast.Expr, bool) {
		return retypedBool(v, x), true
	}
	switch x.Op {
	case lexer.PLUS:
		return mkFloat(a + b)
	case lexer.MINUS:
		return mkFloat(a - b)
	case lexer.ASTERISK:
		return mkFloat(a * b)
	case lexer.SLASH:
		if b != 0 {
			return mkFloat(a / b)
		}
	case lexer.EQ:
		return mkBool(a == b)
	case lexer.NOT_EQ:
		return mkBool(a != b)
	case lexer.LT:
		return mkBool(a < b)
	case lexer.LE:
		return mkBool(a <= b)
	case lexer.GT:
		return mkBool(a > b)
	case lexer.GE:
		return mkBool(a >= b)
	}
	return nil, false
}

func foldBoolBool(x *ast.Binary, a, b bool) (ast.Expr, bool) {
	switch x.Op {
	case lexer.AND:
		return retypedBool(a && b, x), true
	case lexer.OR:
		return retypedBool(a || b, x), true
	case lexer.EQ:
		return retypedBool(a == b, x), true
	case lexer.NOT_EQ:
		return retypedBool(a != b, x), true
	}
	return nil, false
}
