package parser

import (
	"strings"

	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/diag"
)

// ctorFree maps recognized constructors to their free functions. It drives
// delete lowering; the checker holds the same table for owned-handle
// validation.
var ctorFree = map[string]string{
	"array_new":           "array_free",
	"dict_new":            "dict_free",
	"map_new":             "map_free",
	"object_new":          "object_free",
	"np_new":              "np_free",
	"np_copy":             "np_free",
	"np_from_range":       "np_free",
	"np_linspace":         "np_free",
	"gfx_new":             "gfx_free",
	"pg_surface_new":      "gfx_free",
	"game_new":            "game_free",
	"pg_init":             "game_free",
	"phys_new":            "phys_free",
	"http_server_listen":  "http_server_close",
	"http_client_connect": "http_client_close",
	"result_ok":           "result_free",
	"result_err":          "result_free",
	"option_some":         "option_free",
	"option_none":         "option_free",
}

// rewriteScope tracks, per function, which variables hold class instances
// and which constructor created each handle.
type rewriteScope struct {
	varClass map[string]string
	varCtor  map[string]string
	owner    string // enclosing method's class, "" for free functions
	inCtor   bool   // constructors may initialize const fields
}

// rewriteProgram synthesizes constructors and lowers every function body.
func (p *Parser) rewriteProgram() {
	for _, name := range p.program.ClassList {
		p.synthesizeConstructor(p.program.Classes[name])
	}
	for _, fn := range p.program.Functions {
		p.rewriteFunction(fn)
	}
}

// synthesizeConstructor gives every class exactly one constructor:
// declare this = base-ctor or object_new(); field initializers as
// object_set; the user body if any; return this.
func (p *Parser) synthesizeConstructor(cls *ast.ClassInfo) {
	ctor := p.classCtors[cls.Name]
	span := cls.Span
	if ctor != nil {
		span = ctor.span
	}

	var initCall ast.Expr
	switch {
	case ctor != nil && ctor.hasInit:
		initCall = ast.NewCall("__ls_ctor_"+cls.Base, ctor.initArgs, span)
	case cls.Base != "":
		initCall = ast.NewCall("__ls_ctor_"+cls.Base, nil, span)
	default:
		initCall = ast.NewCall("object_new", nil, span)
	}

	declThis := ast.NewDeclare("this", ast.TypeI64, false, false, initCall, span)
	declThis.DeclClass = cls.Name

	body := []ast.Stmt{declThis}
	for i := range cls.Fields {
		f := &cls.Fields[i]
		init := f.Init
		if init == nil {
			init = zeroValue(f.Type, span)
		}
		body = append(body, ast.NewExprStmt(objectSet(
			ast.NewIdent("this", span), f.Name, init, f.Type, span), span))
	}
	if ctor != nil {
		body = append(body, ctor.body...)
	}
	body = append(body, ast.NewReturn(ast.NewIdent("this", span), span))

	fn := &ast.Function{
		Name:       "__ls_ctor_" + cls.Name,
		SrcName:    cls.Name,
		Return:     ast.TypeI64,
		OwnerClass: cls.Name,
		Body:       body,
		Span:       span,
	}
	if ctor != nil {
		fn.Params = ctor.params
	}
	p.program.Overloads[fn.Name] = []*ast.Function{fn}
	p.program.Functions = append(p.program.Functions, fn)
}

func zeroValue(t ast.Type, span diag.Span) ast.Expr {
	switch t {
	case ast.TypeF32, ast.TypeF64:
		return ast.NewFloatLit(0, span)
	case ast.TypeBool:
		return ast.NewBoolLit(false, span)
	case ast.TypeStr:
		return ast.NewStrLit("", span)
	default:
		return ast.NewIntLit(0, span)
	}
}

// objectSet builds object_set(recv, "field", formatOutput(value)), with
// booleans converted to i64 first so the stringly-typed store is uniform.
func objectSet(recv ast.Expr, field string, value ast.Expr, fieldType ast.Type, span diag.Span) ast.Expr {
	if fieldType == ast.TypeBool {
		value = ast.NewCall("bool_to_i64", []ast.Expr{value}, span)
	}
	formatted := ast.NewCall("formatOutput", []ast.Expr{value}, span)
	return ast.NewCall("object_set", []ast.Expr{
		recv,
		ast.NewStrLit(field, span),
		formatted,
	}, span)
}

// objectGet builds the type-directed read-back chain around
// object_get(recv, "field").
func objectGet(recv ast.Expr, field string, fieldType ast.Type, span diag.Span) ast.Expr {
	get := ast.NewCall("object_get", []ast.Expr{recv, ast.NewStrLit(field, span)}, span)
	switch fieldType {
	case ast.TypeI64:
		return ast.NewCall("parse_i64", []ast.Expr{get}, span)
	case ast.TypeF64:
		return ast.NewCall("parse_f64", []ast.Expr{get}, span)
	case ast.TypeBool:
		inner := ast.NewCall("parse_i64", []ast.Expr{get}, span)
		return ast.NewCall("i64_to_bool", []ast.Expr{inner}, span)
	case ast.TypeI32:
		inner := ast.NewCall("parse_i64", []ast.Expr{get}, span)
		return ast.NewCall("to_i32", []ast.Expr{inner}, span)
	case ast.TypeF32:
		inner := ast.NewCall("parse_f64", []ast.Expr{get}, span)
		return ast.NewCall("to_f32", []ast.Expr{inner}, span)
	default:
		return get
	}
}

func (p *Parser) rewriteFunction(fn *ast.Function) {
	if fn.Extern {
		return
	}
	sc := &rewriteScope{
		varClass: make(map[string]string),
		varCtor:  make(map[string]string),
		owner:    fn.OwnerClass,
		inCtor:   strings.HasPrefix(fn.Name, "__ls_ctor_"),
	}
	for _, pm := range fn.Params {
		if pm.Class != "" {
			sc.varClass[pm.Name] = pm.Class
		}
	}
	fn.Body = p.rewriteStmts(fn.Body, sc)
}

func (p *Parser) rewriteStmts(stmts []ast.Stmt, sc *rewriteScope) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, p.rewriteStmt(s, sc))
	}
	return out
}

func (p *Parser) rewriteStmt(s ast.Stmt, sc *rewriteScope) ast.Stmt {
	switch st := s.(type) {
	case *ast.Declare:
		st.Init = p.rewriteExpr(st.Init, sc)
		if st.DeclClass != "" {
			if p.program.Classes[st.DeclClass] == nil {
				p.fail(diag.CodeParseSyntax, st.Span(), "unknown class "+st.DeclClass)
			}
			sc.varClass[st.Name] = st.DeclClass
		}
		if call, ok := st.Init.(*ast.Call); ok {
			if cls := p.ctorClass(call.Name); cls != "" {
				sc.varClass[st.Name] = cls
				sc.varCtor[st.Name] = call.Name
			} else if _, known := ctorFree[call.Name]; known {
				sc.varCtor[st.Name] = call.Name
			}
		}
		return st

	case *ast.Assign:
		st.Value = p.rewriteExpr(st.Value, sc)
		return st

	case *ast.AssignField:
		recv := p.rewriteExpr(st.Recv, sc)
		cls := p.exprClass(recv, sc)
		if cls == nil {
			p.fail(diag.CodeParseSyntax, st.Span(), "cannot resolve receiver class for field "+st.Field)
		}
		field := cls.FindField(st.Field, p.program.Classes)
		if field == nil {
			p.fail(diag.CodeParseSyntax, st.Span(), "class "+cls.Name+" has no field "+st.Field)
		}
		p.checkFieldAccess(field, sc, st.Span())
		if field.Const && !sc.inCtor {
			p.fail(diag.CodeParseSyntax, st.Span(),
				"cannot assign to const field "+field.Name+" of class "+field.Owner)
		}
		value := p.rewriteExpr(st.Value, sc)
		return ast.NewExprStmt(objectSet(recv, st.Field, value, field.Type, st.Span()), st.Span())

	case *ast.Delete:
		freeFn := "mem_free"
		if ctor, ok := sc.varCtor[st.Name]; ok {
			if cls := p.ctorClass(ctor); cls != "" {
				freeFn = "object_free"
			} else if f, ok := ctorFree[ctor]; ok {
				freeFn = f
			}
		}
		call := ast.NewCall(freeFn, []ast.Expr{ast.NewIdent(st.Name, st.Span())}, st.Span())
		return ast.NewExprStmt(call, st.Span())

	case *ast.ExprStmt:
		st.X = p.rewriteExpr(st.X, sc)
		return st

	case *ast.Return:
		st.Value = p.rewriteExpr(st.Value, sc)
		return st

	case *ast.If:
		st.Cond = p.rewriteExpr(st.Cond, sc)
		st.Then = p.rewriteStmts(st.Then, sc)
		st.Else = p.rewriteStmts(st.Else, sc)
		return st

	case *ast.While:
		st.Cond = p.rewriteExpr(st.Cond, sc)
		st.Body = p.rewriteStmts(st.Body, sc)
		return st

	case *ast.For:
		st.Start = p.rewriteExpr(st.Start, sc)
		st.Stop = p.rewriteExpr(st.Stop, sc)
		st.Step = p.rewriteExpr(st.Step, sc)
		st.Body = p.rewriteStmts(st.Body, sc)
		return st

	case *ast.FormatBlock:
		st.EndArg = p.rewriteExpr(st.EndArg, sc)
		st.Body = p.rewriteStmts(st.Body, sc)
		return st
	}
	return s
}

// ctorClass returns the class a constructor symbol creates, or "".
func (p *Parser) ctorClass(callName string) string {
	if cls, ok := p.program.Classes[callName]; ok {
		return cls.Name
	}
	if len(callName) > len("__ls_ctor_") && callName[:len("__ls_ctor_")] == "__ls_ctor_" {
		return callName[len("__ls_ctor_"):]
	}
	return ""
}

// exprClass resolves the class of a receiver expression: class-typed
// identifiers only, which is all the member rewrite rules require.
func (p *Parser) exprClass(e ast.Expr, sc *rewriteScope) *ast.ClassInfo {
	id, ok := e.(*ast.Ident)
	if !ok {
		return nil
	}
	if cls, ok := sc.varClass[id.Name]; ok {
		return p.program.Classes[cls]
	}
	return nil
}

func (p *Parser) checkFieldAccess(field *ast.Field, sc *rewriteScope, span diag.Span) {
	switch field.Access {
	case ast.AccessPrivate:
		if sc.owner != field.Owner {
			p.fail(diag.CodeParseSyntax, span,
				"field "+field.Name+" of class "+field.Owner+" is private")
		}
	case ast.AccessProtected:
		if !p.isSubclassOf(sc.owner, field.Owner) {
			p.fail(diag.CodeParseSyntax, span,
				"field "+field.Name+" of class "+field.Owner+" is protected")
		}
	}
}

func (p *Parser) isSubclassOf(cls, ancestor string) bool {
	for cls != "" {
		if cls == ancestor {
			return true
		}
		info := p.program.Classes[cls]
		if info == nil {
			return false
		}
		cls = info.Base
	}
	return false
}

func (p *Parser) rewriteExpr(e ast.Expr, sc *rewriteScope) ast.Expr {
	if e == nil {
		return nil
	}
	switch x := e.(type) {
	case *ast.Member:
		recv := p.rewriteExpr(x.Recv, sc)
		cls := p.exprClass(recv, sc)
		if cls == nil {
			p.fail(diag.CodeParseSyntax, x.Span(), "cannot resolve receiver class for field "+x.Field)
		}
		field := cls.FindField(x.Field, p.program.Classes)
		if field == nil {
			p.fail(diag.CodeParseSyntax, x.Span(), "class "+cls.Name+" has no field "+x.Field)
		}
		p.checkFieldAccess(field, sc, x.Span())
		return objectGet(recv, x.Field, field.Type, x.Span())

	case *ast.MethodCall:
		return p.rewriteMethodCall(x, sc)

	case *ast.Unary:
		x.Operand = p.rewriteExpr(x.Operand, sc)
		if cls := p.exprClass(x.Operand, sc); cls != nil {
			if sigs := cls.FindMethods("operatorunary"+string(x.Op), p.program.Classes); len(sigs) > 0 {
				x.OverrideFn = sigs[0].Symbol
			}
		}
		return x

	case *ast.Binary:
		x.Left = p.rewriteExpr(x.Left, sc)
		x.Right = p.rewriteExpr(x.Right, sc)
		if cls := p.exprClass(x.Left, sc); cls != nil {
			if sigs := cls.FindMethods("operator"+string(x.Op), p.program.Classes); len(sigs) > 0 {
				x.OverrideFn = sigs[0].Symbol
			}
		}
		return x

	case *ast.Call:
		if x.Name == "__ls_expand" {
			return p.expandMacro(x, sc)
		}
		for i := range x.Args {
			x.Args[i] = p.rewriteExpr(x.Args[i], sc)
		}
		if x.Name == "superuser" {
			p.program.Superuser = true
		}
		if cls, ok := p.program.Classes[x.Name]; ok {
			x.Name = "__ls_ctor_" + cls.Name
		}
		return x
	}
	return e
}

// rewriteMethodCall resolves a method by receiver class and argument arity,
// enforces access/static rules, and lowers to a direct call on the mangled
// symbol with the receiver prepended for non-static methods.
func (p *Parser) rewriteMethodCall(x *ast.MethodCall, sc *rewriteScope) ast.Expr {
	args := make([]ast.Expr, len(x.Args))
	for i := range x.Args {
		args[i] = p.rewriteExpr(x.Args[i], sc)
	}

	// ClassName.method(...) is the static call form. A variable shadowing
	// the class name wins.
	if id, ok := x.Recv.(*ast.Ident); ok {
		if _, shadowed := sc.varClass[id.Name]; !shadowed {
			if cls, isClass := p.program.Classes[id.Name]; isClass {
				sig := p.resolveMethod(cls, x.Method, len(args), x.Span())
				if !sig.Static {
					p.fail(diag.CodeParseSyntax, x.Span(),
						"class-qualified call requires a static method, "+cls.Name+"."+x.Method+" is not static")
				}
				p.checkMethodAccess(sig, sc, x.Span())
				return ast.NewCall(sig.Symbol, args, x.Span())
			}
		}
	}

	recv := p.rewriteExpr(x.Recv, sc)
	cls := p.exprClass(recv, sc)
	if cls == nil {
		p.fail(diag.CodeParseSyntax, x.Span(), "cannot resolve receiver class for method "+x.Method)
	}
	sig := p.resolveMethod(cls, x.Method, len(args), x.Span())
	if sig.Static {
		p.fail(diag.CodeParseSyntax, x.Span(),
			"static method "+cls.Name+"."+x.Method+" must be called as "+cls.Name+"."+x.Method)
	}
	p.checkMethodAccess(sig, sc, x.Span())
	return ast.NewCall(sig.Symbol, append([]ast.Expr{recv}, args...), x.Span())
}

func (p *Parser) resolveMethod(cls *ast.ClassInfo, name string, arity int, span diag.Span) *ast.MethodSig {
	sigs := cls.FindMethods(name, p.program.Classes)
	if len(sigs) == 0 {
		p.fail(diag.CodeParseSyntax, span, "class "+cls.Name+" has no method "+name)
	}
	for _, sig := range sigs {
		if len(sig.Params) == arity {
			return sig
		}
	}
	p.fail(diag.CodeParseSyntax, span, "no overload of "+cls.Name+"."+name+" takes that many arguments")
	return nil
}

func (p *Parser) checkMethodAccess(sig *ast.MethodSig, sc *rewriteScope, span diag.Span) {
	switch sig.Access {
	case ast.AccessPrivate:
		if sc.owner != sig.Owner {
			p.fail(diag.CodeParseSyntax, span, "method "+sig.Owner+"."+sig.Symbol+" is private")
		}
	case ast.AccessProtected:
		if !p.isSubclassOf(sc.owner, sig.Owner) {
			p.fail(diag.CodeParseSyntax, span, "method of class "+sig.Owner+" is protected")
		}
	}
}

// expandMacro substitutes a declared expression macro at an
// expand(foo(args)) site. Substitution is hygiene-free on the AST.
func (p *Parser) expandMacro(x *ast.Call, sc *rewriteScope) ast.Expr {
	inner := x.Args[0].(*ast.Call)
	m := p.program.Macros[inner.Name]
	if m == nil {
		p.fail(diag.CodeParseBadMacro, x.Span(), "unknown macro "+inner.Name)
	}

	kinds := p.macroKinds[inner.Name]
	if kinds.ret != "expr" {
		p.fail(diag.CodeParseBadMacro, x.Span(),
			"macro "+inner.Name+" has unsupported return kind "+kinds.ret)
	}
	for i, k := range kinds.params {
		if k != "expr" {
			p.fail(diag.CodeParseBadMacro, x.Span(),
				"macro "+inner.Name+" parameter "+m.Params[i]+" has unsupported kind "+k)
		}
	}
	if len(inner.Args) != len(m.Params) {
		p.fail(diag.CodeParseBadMacro, x.Span(),
			"macro "+inner.Name+" expects a different number of arguments")
	}

	bindings := make(map[string]ast.Expr, len(m.Params))
	for i, name := range m.Params {
		bindings[name] = p.rewriteExpr(inner.Args[i], sc)
	}
	body := ast.SubstituteIdents(ast.CloneExpr(m.Body), bindings)
	return p.rewriteExpr(body, sc)
}
