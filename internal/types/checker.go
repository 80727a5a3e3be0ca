package types

import (
	"fmt"
	"strings"

	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// Checker performs type checking on a parsed program in two passes:
// collect (signatures of all declared and builtin functions) then per-body
// checking. The identical check runs a second time after optimization; the
// optimizer's rewrites must not introduce errors the first pass did not see.
type Checker struct {
	prog     *ast.Program
	builtins map[string][]Signature
	funcs    map[string]*ast.Function // by emitted symbol

	Diags []diag.Diagnostic
}

// NewChecker creates a checker for the given program.
func NewChecker(prog *ast.Program) *Checker {
	return &Checker{
		prog:     prog,
		builtins: Builtins(),
		funcs:    make(map[string]*ast.Function),
	}
}

// Check runs both passes and returns the accumulated diagnostics.
func (c *Checker) Check() []diag.Diagnostic {
	c.collect()
	for _, fn := range c.prog.Functions {
		if !fn.Extern {
			c.checkFn(fn)
		}
	}
	return c.Diags
}

// collect registers every function symbol and enforces overload uniqueness:
// no group may contain two entries with identical parameter-type lists.
func (c *Checker) collect() {
	for _, fn := range c.prog.Functions {
		c.funcs[fn.Name] = fn
	}
	for name, group := range c.prog.Overloads {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if typeListEqual(group[i].ParamTypes(), group[j].ParamTypes()) {
					c.demotable(diag.CodeTypeDuplicateOverload, group[j].Span,
						"duplicate signature for "+name)
				}
			}
		}
	}
}

func typeListEqual(a, b []ast.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *Checker) errorf(code diag.Code, span diag.Span, format string, args ...any) {
	c.Diags = append(c.Diags, diag.Error(diag.StageTypeCheck, code, span, fmt.Sprintf(format, args...)))
}

func (c *Checker) warnf(code diag.Code, span diag.Span, format string, args ...any) {
	c.Diags = append(c.Diags, diag.Warning(diag.StageTypeCheck, code, span, fmt.Sprintf(format, args...)))
}

func (c *Checker) notef(code diag.Code, span diag.Span, format string, args ...any) {
	c.Diags = append(c.Diags, diag.Note(diag.StageTypeCheck, code, span, fmt.Sprintf(format, args...)))
}

// demotable reports an error that superuser mode demotes to a warning.
func (c *Checker) demotable(code diag.Code, span diag.Span, msg string) {
	if c.prog.Superuser {
		c.warnf(code, span, "%s", msg)
		return
	}
	c.errorf(code, span, "%s", msg)
}

// varInfo tracks one local or parameter.
type varInfo struct {
	typ     ast.Type
	isConst bool
	owned   bool
}

// fnEnv is the per-function checking environment.
type fnEnv struct {
	fn        *ast.Function
	vars      map[string]*varInfo
	loopDepth int
	throws    map[string]bool
}

func (c *Checker) checkFn(fn *ast.Function) {
	env := &fnEnv{
		fn:     fn,
		vars:   make(map[string]*varInfo),
		throws: make(map[string]bool),
	}
	for _, p := range fn.Params {
		env.vars[p.Name] = &varInfo{typ: p.Type}
	}
	for _, t := range fn.Throws {
		env.throws[t] = true
	}
	c.checkStmts(fn.Body, env)
}

func (c *Checker) checkStmts(stmts []ast.Stmt, env *fnEnv) {
	for _, s := range stmts {
		c.checkStmt(s, env)
	}
}

func (c *Checker) checkStmt(s ast.Stmt, env *fnEnv) {
	switch st := s.(type) {
	case *ast.Declare:
		c.checkDeclare(st, env)

	case *ast.Assign:
		vt := c.checkExpr(st.Value, env)
		info, ok := env.vars[st.Name]
		if !ok {
			c.errorf(diag.CodeTypeUnknownName, st.Span(), "unknown name %s", st.Name)
			return
		}
		if info.isConst {
			c.errorf(diag.CodeTypeConstViolation, st.Span(), "cannot assign to const %s", st.Name)
		}
		if info.owned {
			c.errorf(diag.CodeTypeOwnedViolation, st.Span(), "cannot reassign owned handle %s", st.Name)
		}
		if vt != ast.TypeUnknown && !Assignable(info.typ, vt) {
			c.errorf(diag.CodeTypeMismatch, st.Span(),
				"cannot assign %s to %s of type %s", vt, st.Name, info.typ)
		}

	case *ast.ExprStmt:
		c.checkExpr(st.X, env)

	case *ast.Return:
		if st.Value == nil {
			if env.fn.Return != ast.TypeVoid {
				c.errorf(diag.CodeTypeMismatch, st.Span(),
					"function %s must return %s", env.fn.SrcName, env.fn.Return)
			}
			return
		}
		if id, ok := st.Value.(*ast.Ident); ok {
			if info, exists := env.vars[id.Name]; exists && info.owned {
				c.errorf(diag.CodeTypeOwnedViolation, st.Span(),
					"owned handle %s may not escape via return", id.Name)
			}
		}
		vt := c.checkExpr(st.Value, env)
		if env.fn.Return == ast.TypeVoid {
			c.errorf(diag.CodeTypeMismatch, st.Span(),
				"void function %s may not return a value", env.fn.SrcName)
		} else if vt != ast.TypeUnknown && !Assignable(env.fn.Return, vt) {
			c.errorf(diag.CodeTypeMismatch, st.Span(),
				"cannot return %s from function returning %s", vt, env.fn.Return)
		}

	case *ast.If:
		ct := c.checkExpr(st.Cond, env)
		if ct != ast.TypeBool && ct != ast.TypeUnknown {
			c.errorf(diag.CodeTypeMismatch, st.Cond.Span(), "if condition must be bool, found %s", ct)
		}
		c.checkStmts(st.Then, env)
		c.checkStmts(st.Else, env)

	case *ast.While:
		ct := c.checkExpr(st.Cond, env)
		if ct != ast.TypeBool && ct != ast.TypeUnknown {
			c.errorf(diag.CodeTypeMismatch, st.Cond.Span(), "while condition must be bool, found %s", ct)
		}
		env.loopDepth++
		c.checkStmts(st.Body, env)
		env.loopDepth--

	case *ast.For:
		c.checkFor(st, env)

	case *ast.FormatBlock:
		if st.EndArg != nil {
			at := c.checkExpr(st.EndArg, env)
			if !Printable(at) && at != ast.TypeUnknown {
				c.errorf(diag.CodeTypeMismatch, st.EndArg.Span(),
					"format block end argument must be printable, found %s", at)
			}
		}
		c.checkStmts(st.Body, env)

	case *ast.Break, *ast.Continue:
		// Loop binding is syntactic; nothing to infer.
	}
}

func (c *Checker) checkDeclare(st *ast.Declare, env *fnEnv) {
	var initType ast.Type
	if st.Init != nil {
		initType = c.checkExpr(st.Init, env)
	}

	resolved := st.DeclType
	if resolved == ast.TypeUnknown {
		resolved = initType
	}
	if resolved == ast.TypeUnknown || resolved == ast.TypeVoid {
		c.errorf(diag.CodeTypeMismatch, st.Span(),
			"cannot infer a value type for %s", st.Name)
		resolved = ast.TypeI64
	}
	if st.DeclType != ast.TypeUnknown && st.Init != nil &&
		initType != ast.TypeUnknown && !Assignable(st.DeclType, initType) {
		c.errorf(diag.CodeTypeMismatch, st.Span(),
			"cannot initialize %s of type %s with %s", st.Name, st.DeclType, initType)
	}
	st.Resolved = resolved

	if st.Owned {
		c.checkOwned(st, env)
	}

	env.vars[st.Name] = &varInfo{typ: resolved, isConst: st.Const, owned: st.Owned}
}

// checkOwned enforces the owned-handle rules: created by a recognized
// constructor, declared type i64, and not inside any loop. The emitter
// relies on these to place exactly one free call on every scope exit.
func (c *Checker) checkOwned(st *ast.Declare, env *fnEnv) {
	if env.loopDepth > 0 {
		c.errorf(diag.CodeTypeOwnedViolation, st.Span(),
			"owned declaration %s may not appear inside a loop", st.Name)
	}
	if st.Resolved != ast.TypeI64 {
		c.errorf(diag.CodeTypeOwnedViolation, st.Span(),
			"owned declaration %s must have type i64, found %s", st.Name, st.Resolved)
	}
	call, ok := st.Init.(*ast.Call)
	if !ok {
		c.errorf(diag.CodeTypeOwnedViolation, st.Span(),
			"owned declaration %s requires a recognized constructor call", st.Name)
		return
	}
	freeFn, known := FreeForCtor(call.Name)
	if !known {
		c.errorf(diag.CodeTypeOwnedViolation, st.Span(),
			"%s is not a recognized constructor for owned declarations", call.Name)
		return
	}
	st.FreeFn = freeFn
}

func (c *Checker) checkFor(st *ast.For, env *fnEnv) {
	for _, part := range []struct {
		name string
		expr ast.Expr
	}{{"start", st.Start}, {"stop", st.Stop}, {"step", st.Step}} {
		t := c.checkExpr(part.expr, env)
		if t != ast.TypeI64 && t != ast.TypeUnknown {
			c.errorf(diag.CodeTypeBadForRange, part.expr.Span(),
				"for %s must be i64, found %s", part.name, t)
		}
	}
	if lit, ok := st.Step.(*ast.IntLit); ok && lit.Value == 0 {
		c.demotable(diag.CodeTypeBadForRange, st.Step.Span(), "for step must not be zero")
	}

	outer := make(map[string]bool, len(env.vars))
	for name := range env.vars {
		outer[name] = true
	}
	env.vars[st.Var] = &varInfo{typ: ast.TypeI64}
	env.loopDepth++
	c.checkStmts(st.Body, env)
	env.loopDepth--

	if st.Parallel {
		c.checkParallelBody(st, outer, env)
	}
}

// checkParallelBody rejects loop-control flow bound to the parallel loop
// and writes to variables declared outside the body; iterations must be
// independent.
func (c *Checker) checkParallelBody(st *ast.For, outer map[string]bool, env *fnEnv) {
	declared := map[string]bool{st.Var: true}
	var walk func(stmts []ast.Stmt)
	walk = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			switch x := s.(type) {
			case *ast.Declare:
				declared[x.Name] = true
			case *ast.Assign:
				if outer[x.Name] && !declared[x.Name] {
					c.demotable(diag.CodeTypeBadParallelBody, x.Span(),
						"parallel for body may not assign to outer variable "+x.Name)
				}
			case *ast.Break:
				c.demotable(diag.CodeTypeBadParallelBody, x.Span(),
					"break is not allowed in a parallel for body")
			case *ast.Continue:
				c.demotable(diag.CodeTypeBadParallelBody, x.Span(),
					"continue is not allowed in a parallel for body")
			case *ast.If:
				walk(x.Then)
				walk(x.Else)
			case *ast.FormatBlock:
				walk(x.Body)
			case *ast.For, *ast.While:
				// Nested loops own their break/continue; their bodies are
				// still scanned for outer writes.
				switch l := s.(type) {
				case *ast.For:
					declared[l.Var] = true
					walkAssignsOnly(l.Body, outer, declared, c)
				case *ast.While:
					walkAssignsOnly(l.Body, outer, declared, c)
				}
			}
		}
	}
	walk(st.Body)
}

func walkAssignsOnly(stmts []ast.Stmt, outer, declared map[string]bool, c *Checker) {
	for _, s := range stmts {
		switch x := s.(type) {
		case *ast.Declare:
			declared[x.Name] = true
		case *ast.Assign:
			if outer[x.Name] && !declared[x.Name] {
				c.demotable(diag.CodeTypeBadParallelBody, x.Span(),
					"parallel for body may not assign to outer variable "+x.Name)
			}
		case *ast.If:
			walkAssignsOnly(x.Then, outer, declared, c)
			walkAssignsOnly(x.Else, outer, declared, c)
		case *ast.For:
			declared[x.Var] = true
			walkAssignsOnly(x.Body, outer, declared, c)
		case *ast.While:
			walkAssignsOnly(x.Body, outer, declared, c)
		case *ast.FormatBlock:
			walkAssignsOnly(x.Body, outer, declared, c)
		}
	}
}

func (c *Checker) checkExpr(e ast.Expr, env *fnEnv) ast.Type {
	if e == nil {
		return ast.TypeUnknown
	}
	switch x := e.(type) {
	case *ast.IntLit:
		x.SetInf(ast.TypeI64)
		return ast.TypeI64
	case *ast.FloatLit:
		x.SetInf(ast.TypeF64)
		return ast.TypeF64
	case *ast.BoolLit:
		x.SetInf(ast.TypeBool)
		return ast.TypeBool
	case *ast.StrLit:
		x.SetInf(ast.TypeStr)
		return ast.TypeStr
	case *ast.Ident:
		info, ok := env.vars[x.Name]
		if !ok {
			c.errorf(diag.CodeTypeUnknownName, x.Span(), "unknown name %s", x.Name)
			x.SetInf(ast.TypeUnknown)
			return ast.TypeUnknown
		}
		x.SetInf(info.typ)
		return info.typ
	case *ast.Unary:
		return c.checkUnary(x, env)
	case *ast.Binary:
		return c.checkBinary(x, env)
	case *ast.Call:
		return c.checkCall(x, env)
	}
	return ast.TypeUnknown
}

func (c *Checker) checkUnary(x *ast.Unary, env *fnEnv) ast.Type {
	ot := c.checkExpr(x.Operand, env)

	if x.OverrideFn != "" {
		if fn := c.funcs[x.OverrideFn]; fn != nil {
			x.SetInf(fn.Return)
			return fn.Return
		}
	}
	// Free unary operator overloads.
	if symName, ok := unaryOpSymbol(x.Op); ok {
		if group := c.prog.Overloads["__ls_op_"+symName]; len(group) > 0 {
			if win := c.resolveGroup(group, []ast.Type{ot}); win != nil {
				x.OverrideFn = win.Name
				x.SetInf(win.Return)
				return win.Return
			}
		}
	}

	switch x.Op {
	case lexer.MINUS:
		if !IsNumeric(ot) && ot != ast.TypeUnknown {
			c.errorf(diag.CodeTypeBadOperator, x.Span(), "cannot negate %s", ot)
		}
		x.SetInf(ot)
		return ot
	case lexer.BANG:
		if ot != ast.TypeBool && ot != ast.TypeUnknown {
			c.errorf(diag.CodeTypeBadOperator, x.Span(), "logical not requires bool, found %s", ot)
		}
		x.SetInf(ast.TypeBool)
		return ast.TypeBool
	}
	x.SetInf(ast.TypeUnknown)
	return ast.TypeUnknown
}

func unaryOpSymbol(op lexer.TokenType) (string, bool) {
	switch op {
	case lexer.MINUS:
		return "neg", true
	case lexer.BANG:
		return "not", true
	}
	return "", false
}

func binaryOpSymbol(op lexer.TokenType) (string, bool) {
	switch op {
	case lexer.PLUS:
		return "plus", true
	case lexer.MINUS:
		return "minus", true
	case lexer.ASTERISK:
		return "mul", true
	case lexer.SLASH:
		return "div", true
	case lexer.PERCENT:
		return "mod", true
	case lexer.POW:
		return "pow", true
	case lexer.EQ:
		return "eq", true
	case lexer.NOT_EQ:
		return "neq", true
	case lexer.LT:
		return "lt", true
	case lexer.LE:
		return "le", true
	case lexer.GT:
		return "gt", true
	case lexer.GE:
		return "ge", true
	case lexer.AND:
		return "and", true
	case lexer.OR:
		return "or", true
	}
	return "", false
}

func (c *Checker) checkBinary(x *ast.Binary, env *fnEnv) ast.Type {
	lt := c.checkExpr(x.Left, env)
	rt := c.checkExpr(x.Right, env)

	// A member operator pre-resolved by the parser wins outright.
	if x.OverrideFn != "" {
		if fn := c.funcs[x.OverrideFn]; fn != nil {
			x.SetInf(fn.Return)
			return fn.Return
		}
	}
	// Then a free operator overload with matching parameter types.
	if symName, ok := binaryOpSymbol(x.Op); ok {
		if group := c.prog.Overloads["__ls_op_"+symName]; len(group) > 0 {
			if win := c.resolveGroup(group, []ast.Type{lt, rt}); win != nil {
				x.OverrideFn = win.Name
				x.SetInf(win.Return)
				return win.Return
			}
		}
	}

	// Literal zero on the right of / or % is caught here rather than at
	// runtime.
	if x.Op == lexer.SLASH || x.Op == lexer.PERCENT {
		if lit, ok := x.Right.(*ast.IntLit); ok && lit.Value == 0 {
			c.demotable(diag.CodeTypeDivisionByZero, x.Span(), "division or modulo by literal zero")
		}
	}

	result := c.defaultBinaryType(x, lt, rt)
	x.SetInf(result)
	return result
}

func (c *Checker) defaultBinaryType(x *ast.Binary, lt, rt ast.Type) ast.Type {
	if lt == ast.TypeUnknown || rt == ast.TypeUnknown {
		return ast.TypeUnknown
	}
	switch x.Op {
	case lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.POW:
		if IsNumeric(lt) && IsNumeric(rt) {
			return Promote(lt, rt)
		}
	case lexer.PERCENT:
		if IsInt(lt) && IsInt(rt) {
			return Promote(lt, rt)
		}
	case lexer.EQ, lexer.NOT_EQ:
		if (IsNumeric(lt) && IsNumeric(rt)) || lt == rt {
			return ast.TypeBool
		}
	case lexer.LT, lexer.LE, lexer.GT, lexer.GE:
		if (IsNumeric(lt) && IsNumeric(rt)) || (lt == ast.TypeStr && rt == ast.TypeStr) {
			return ast.TypeBool
		}
	case lexer.AND, lexer.OR:
		if lt == ast.TypeBool && rt == ast.TypeBool {
			return ast.TypeBool
		}
	}
	c.errorf(diag.CodeTypeBadOperator, x.Span(),
		"operator %s is not defined for %s and %s", x.Op, lt, rt)
	return ast.TypeUnknown
}

// resolveGroup picks the unique cost-minimal candidate, or nil when none
// converts. Ties are not reported here; checkCall uses rankGroup directly
// to report ambiguity.
func (c *Checker) resolveGroup(group []*ast.Function, args []ast.Type) *ast.Function {
	win, _ := c.rankGroup(group, args)
	return win
}

// rankGroup returns the best candidate and whether the minimum was shared.
func (c *Checker) rankGroup(group []*ast.Function, args []ast.Type) (*ast.Function, bool) {
	best := -1
	var win *ast.Function
	tied := false
	for _, cand := range group {
		params := cand.ParamTypes()
		if len(params) != len(args) {
			continue
		}
		total := 0
		ok := true
		for i := range args {
			cost := ConvCost(args[i], params[i])
			if cost < 0 {
				ok = false
				break
			}
			total += cost
		}
		if !ok {
			continue
		}
		if best < 0 || total < best {
			best = total
			win = cand
			tied = false
		} else if total == best {
			tied = true
		}
	}
	return win, tied
}

func (c *Checker) checkCall(x *ast.Call, env *fnEnv) ast.Type {
	if t, handled := c.checkSpecialCall(x, env); handled {
		return t
	}

	args := make([]ast.Type, len(x.Args))
	for i, a := range x.Args {
		args[i] = c.checkExpr(a, env)
	}

	if strings.HasPrefix(x.Name, "mem_") {
		c.notef(diag.CodeTypeRawMemory, x.Span(),
			"raw memory access via %s; prefer typed wrappers", x.Name)
	}

	// User overload group by source name.
	if group, ok := c.prog.Overloads[x.Name]; ok {
		win, tied := c.rankGroup(group, args)
		if win == nil {
			c.errorf(diag.CodeTypeBadArgument, x.Span(),
				"no overload of %s accepts the given arguments", x.Name)
			x.SetInf(ast.TypeUnknown)
			return ast.TypeUnknown
		}
		if tied {
			c.demotable(diag.CodeTypeAmbiguousOverload, x.Span(),
				"ambiguous call to "+x.Name)
		}
		x.Name = win.Name
		c.checkThrows(win, x.Span(), env)
		x.SetInf(win.Return)
		return win.Return
	}

	// Direct symbol (mangled methods, constructors, flag functions).
	if fn, ok := c.funcs[x.Name]; ok {
		c.checkArgsAgainst(x, args, fn.ParamTypes(), fn.SrcName)
		c.checkThrows(fn, x.Span(), env)
		x.SetInf(fn.Return)
		return fn.Return
	}

	// Builtins.
	if sigs, ok := c.builtins[x.Name]; ok {
		for _, sig := range sigs {
			if len(sig.Params) != len(args) {
				continue
			}
			good := true
			for i := range args {
				if args[i] != ast.TypeUnknown && ConvCost(args[i], sig.Params[i]) < 0 {
					good = false
					break
				}
			}
			if good {
				x.SetInf(sig.Return)
				return sig.Return
			}
		}
		c.errorf(diag.CodeTypeBadArgument, x.Span(),
			"invalid arguments for builtin %s", x.Name)
		x.SetInf(ast.TypeUnknown)
		return ast.TypeUnknown
	}

	c.errorf(diag.CodeTypeUnknownName, x.Span(), "unknown function %s", x.Name)
	x.SetInf(ast.TypeUnknown)
	return ast.TypeUnknown
}

func (c *Checker) checkArgsAgainst(x *ast.Call, args []ast.Type, params []ast.Type, name string) {
	if len(args) != len(params) {
		c.errorf(diag.CodeTypeArityMismatch, x.Span(),
			"%s expects %d arguments, found %d", name, len(params), len(args))
		return
	}
	for i := range args {
		if args[i] == ast.TypeUnknown {
			continue
		}
		if ConvCost(args[i], params[i]) < 0 {
			c.errorf(diag.CodeTypeBadArgument, x.Args[i].Span(),
				"argument %d of %s: cannot convert %s to %s", i+1, name, args[i], params[i])
		}
	}
}

// checkThrows enforces the throws contract: calling a function that throws
// X is legal only inside a function whose throws set contains X.
func (c *Checker) checkThrows(target *ast.Function, span diag.Span, env *fnEnv) {
	for _, kind := range target.Throws {
		if !env.throws[kind] {
			c.demotable(diag.CodeTypeThrowsContract, span,
				"call to "+target.SrcName+" may throw "+kind+", which "+env.fn.SrcName+" does not declare")
		}
	}
}

// checkSpecialCall handles the polymorphic builtins: print/println,
// formatOutput, max/min, abs, clamp, the input family, and spawn. Each is
// rewritten onto the concrete per-type runtime symbol.
func (c *Checker) checkSpecialCall(x *ast.Call, env *fnEnv) (ast.Type, bool) {
	switch x.Name {
	case "print", "println":
		if len(x.Args) != 1 {
			c.errorf(diag.CodeTypeArityMismatch, x.Span(), "%s expects 1 argument", x.Name)
			x.SetInf(ast.TypeVoid)
			return ast.TypeVoid, true
		}
		at := c.checkExpr(x.Args[0], env)
		if !Printable(at) && at != ast.TypeUnknown {
			c.errorf(diag.CodeTypeBadArgument, x.Span(), "%s argument must be printable, found %s", x.Name, at)
		}
		if suffix := typeSuffix(at); suffix != "" {
			x.Name = x.Name + "_" + suffix
		}
		x.SetInf(ast.TypeVoid)
		return ast.TypeVoid, true

	case "formatOutput", "FormatOutput":
		if len(x.Args) != 1 {
			c.errorf(diag.CodeTypeArityMismatch, x.Span(), "formatOutput expects 1 argument")
			x.SetInf(ast.TypeStr)
			return ast.TypeStr, true
		}
		at := c.checkExpr(x.Args[0], env)
		if !Printable(at) && at != ast.TypeUnknown {
			c.errorf(diag.CodeTypeBadArgument, x.Span(), "formatOutput argument must be printable, found %s", at)
		}
		if suffix := typeSuffix(at); suffix != "" {
			x.Name = "format_" + suffix
		} else {
			x.Name = "format_str"
		}
		x.SetInf(ast.TypeStr)
		return ast.TypeStr, true

	case "max", "min":
		return c.checkMinMax(x, env), true

	case "abs":
		if len(x.Args) != 1 {
			c.errorf(diag.CodeTypeArityMismatch, x.Span(), "abs expects 1 argument")
			x.SetInf(ast.TypeUnknown)
			return ast.TypeUnknown, true
		}
		at := c.checkExpr(x.Args[0], env)
		if !IsNumeric(at) && at != ast.TypeUnknown {
			c.errorf(diag.CodeTypeBadArgument, x.Span(), "abs requires a numeric argument, found %s", at)
		}
		if IsFloat(at) {
			x.Name = "abs_f64"
		} else {
			x.Name = "abs_i64"
		}
		x.SetInf(at)
		return at, true

	case "clamp":
		if len(x.Args) != 3 {
			c.errorf(diag.CodeTypeArityMismatch, x.Span(), "clamp expects 3 arguments")
			x.SetInf(ast.TypeUnknown)
			return ast.TypeUnknown, true
		}
		t := ast.TypeI32
		for _, a := range x.Args {
			at := c.checkExpr(a, env)
			if !IsNumeric(at) && at != ast.TypeUnknown {
				c.errorf(diag.CodeTypeBadArgument, a.Span(), "clamp requires numeric arguments, found %s", at)
			}
			t = Promote(t, at)
		}
		if IsFloat(t) {
			x.Name = "clamp_f64"
		} else {
			x.Name = "clamp_i64"
		}
		x.SetInf(t)
		return t, true

	case "input", "input_i64", "input_f64":
		base := x.Name
		ret := ast.TypeStr
		switch base {
		case "input_i64":
			ret = ast.TypeI64
		case "input_f64":
			ret = ast.TypeF64
		}
		switch len(x.Args) {
		case 0:
		case 1:
			at := c.checkExpr(x.Args[0], env)
			if at != ast.TypeStr && at != ast.TypeUnknown {
				c.errorf(diag.CodeTypeBadArgument, x.Span(), "%s prompt must be str, found %s", base, at)
			}
			if base == "input" {
				x.Name = "input_prompt"
			} else {
				x.Name = base + "_prompt"
			}
		default:
			c.errorf(diag.CodeTypeArityMismatch, x.Span(), "%s expects at most 1 argument", base)
		}
		x.SetInf(ret)
		return ret, true

	case "spawn":
		x.SetInf(ast.TypeI64)
		if len(x.Args) != 1 {
			c.errorf(diag.CodeTypeArityMismatch, x.Span(), "spawn expects 1 argument")
			return ast.TypeI64, true
		}
		task, ok := x.Args[0].(*ast.Call)
		if !ok || len(task.Args) != 0 {
			c.errorf(diag.CodeTypeBadArgument, x.Span(),
				"spawn requires a zero-argument call to a void function")
			return ast.TypeI64, true
		}
		// Resolve the task target through the regular path; this also
		// rewrites task.Name to the chosen symbol.
		tt := c.checkCall(task, env)
		if tt != ast.TypeVoid && tt != ast.TypeUnknown {
			c.errorf(diag.CodeTypeBadArgument, x.Span(),
				"spawn target must return void, %s returns %s", task.Name, tt)
		}
		return ast.TypeI64, true
	}
	return ast.TypeUnknown, false
}

func (c *Checker) checkMinMax(x *ast.Call, env *fnEnv) ast.Type {
	if len(x.Args) != 2 {
		c.errorf(diag.CodeTypeArityMismatch, x.Span(), "%s expects 2 arguments", x.Name)
		x.SetInf(ast.TypeUnknown)
		return ast.TypeUnknown
	}
	a := c.checkExpr(x.Args[0], env)
	b := c.checkExpr(x.Args[1], env)
	for _, at := range []ast.Type{a, b} {
		if !IsNumeric(at) && at != ast.TypeUnknown {
			c.errorf(diag.CodeTypeBadArgument, x.Span(), "%s requires numeric arguments, found %s", x.Name, at)
		}
	}
	t := Promote(a, b)
	if IsFloat(t) {
		x.Name = x.Name + "_f64"
	} else {
		x.Name = x.Name + "_i64"
	}
	x.SetInf(t)
	return t
}

func typeSuffix(t ast.Type) string {
	switch t {
	case ast.TypeI32:
		return "i32"
	case ast.TypeI64:
		return "i64"
	case ast.TypeF32:
		return "f32"
	case ast.TypeF64:
		return "f64"
	case ast.TypeBool:
		return "bool"
	case ast.TypeStr:
		return "str"
	}
	return ""
}
