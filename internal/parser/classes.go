package parser

import (
	"strconv"

	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// userCtor captures the user-written constructor before synthesis.
type userCtor struct {
	params   []ast.Param
	initArgs []ast.Expr // base class init-list arguments, nil when absent
	hasInit  bool
	body     []ast.Stmt
	span     diag.Span
}

// parseClassDecl parses 'class Name [extends Base] { fields... methods... }'.
// Fields must precede methods.
func (p *Parser) parseClassDecl() {
	span := p.expect(lexer.CLASS).Span
	name := p.expectIdent().Literal

	if p.program.Classes[name] != nil {
		p.fail(diag.CodeParseDuplicateDecl, span, "duplicate class "+name)
	}

	base := ""
	if p.at(lexer.EXTENDS) {
		p.next()
		base = p.expectIdent().Literal
	}

	cls := &ast.ClassInfo{
		Name:    name,
		Base:    base,
		Methods: make(map[string][]*ast.MethodSig),
		Span:    span,
	}
	p.program.Classes[name] = cls
	p.program.ClassList = append(p.program.ClassList, name)

	var open, close lexer.TokenType
	p.skipNewlines()
	if p.at(lexer.DO) {
		open, close = lexer.DO, lexer.END
	} else {
		open, close = lexer.LBRACE, lexer.RBRACE
	}
	p.expect(open)

	sawMethod := false
	for {
		p.skipTerminators()
		if p.at(close) {
			p.next()
			break
		}
		if p.at(lexer.EOF) {
			p.fail(diag.CodeParseSyntax, p.cur().Span, "unexpected end of input in class "+name)
		}

		access := ast.AccessPublic
		switch p.cur().Type {
		case lexer.PUBLIC:
			p.next()
		case lexer.PROTECTED:
			p.next()
			access = ast.AccessProtected
		case lexer.PRIVATE:
			p.next()
			access = ast.AccessPrivate
		}

		if p.at(lexer.DECLARE) {
			if sawMethod {
				p.fail(diag.CodeParseSyntax, p.cur().Span,
					"fields must precede methods in class "+name)
			}
			p.parseClassField(cls, access)
			continue
		}

		sawMethod = true
		p.parseClassMethod(cls, access)
	}

	p.endOfStatement()
}

// parseClassField parses 'declare [const] [owned] name: type [= expr]'.
func (p *Parser) parseClassField(cls *ast.ClassInfo, access ast.Access) {
	p.expect(lexer.DECLARE)

	isConst := false
	owned := false
	for p.at(lexer.CONST) || p.at(lexer.OWNED) {
		if p.next().Type == lexer.CONST {
			isConst = true
		} else {
			owned = true
		}
	}

	nameTok := p.expectIdent()
	p.expect(lexer.COLON)
	typ, class := p.parseTypeName()
	if class != "" {
		typ = ast.TypeI64
	}

	var init ast.Expr
	if p.at(lexer.ASSIGN) {
		p.next()
		init = p.parseExpr()
	}

	if cls.FindField(nameTok.Literal, p.program.Classes) != nil {
		p.fail(diag.CodeParseDuplicateDecl, nameTok.Span,
			"duplicate field "+nameTok.Literal+" in class "+cls.Name)
	}

	cls.Fields = append(cls.Fields, ast.Field{
		Name:   nameTok.Literal,
		Type:   typ,
		Access: access,
		Owner:  cls.Name,
		Const:  isConst,
		Owned:  owned,
		Init:   init,
	})
	p.endOfStatement()
}

// parseClassMethod parses a method, member operator, or constructor.
func (p *Parser) parseClassMethod(cls *ast.ClassInfo, access ast.Access) {
	span := p.cur().Span

	static := false
	virtual := false
	override := false
	final := false
	for {
		switch p.cur().Type {
		case lexer.STATIC:
			p.next()
			static = true
			continue
		case lexer.VIRTUAL:
			p.next()
			virtual = true
			continue
		case lexer.OVERRIDE:
			p.next()
			override = true
			continue
		case lexer.FINAL:
			p.next()
			final = true
			continue
		}
		break
	}
	if static && (virtual || override) {
		p.fail(diag.CodeParseBadModifier, span, "static method may not be virtual or override")
	}
	if virtual && override {
		p.fail(diag.CodeParseBadModifier, span, "method may not be both virtual and override")
	}

	if p.at(lexer.OPERATOR) {
		if static || virtual || override || final {
			p.fail(diag.CodeParseBadModifier, span, "member operator may not carry method modifiers")
		}
		p.parseMemberOperator(cls, access)
		return
	}

	if p.at(lexer.FN) || p.at(lexer.FUNC) {
		p.next()
	}
	nameTok := p.expectIdent()
	mname := nameTok.Literal

	params := p.parseParamList()

	// A method named constructor, or matching the class name, becomes the
	// constructor.
	if mname == "constructor" || mname == cls.Name {
		if static || virtual || override || final {
			p.fail(diag.CodeParseBadModifier, span, "constructor may not carry method modifiers")
		}
		ctor := &userCtor{params: params, span: span}
		if p.at(lexer.COLON) {
			p.next()
			baseTok := p.expectIdent()
			if baseTok.Literal != cls.Base {
				p.fail(diag.CodeParseSyntax, baseTok.Span,
					"constructor init-list must target the declared base class")
			}
			ctor.initArgs = p.parseArgs()
			ctor.hasInit = true
		}
		ctor.body = p.parseBlock()
		if p.classCtors[cls.Name] != nil {
			p.fail(diag.CodeParseDuplicateDecl, span, "duplicate constructor for class "+cls.Name)
		}
		p.classCtors[cls.Name] = ctor
		p.endOfStatement()
		return
	}

	ret, throws := p.parseSignatureTail()

	overloads := cls.Methods[mname]
	symbol := "__ls_m_" + cls.Name + "_" + mname
	if len(overloads) > 0 {
		symbol += "_" + strconv.Itoa(len(overloads))
	}

	fn := &ast.Function{
		Name:       symbol,
		SrcName:    mname,
		Return:     ret,
		Throws:     throws,
		OwnerClass: cls.Name,
		Access:     access,
		Static:     static,
		Virtual:    virtual,
		Override:   override,
		Final:      final,
		Span:       span,
	}
	if !static {
		fn.Params = append([]ast.Param{{Name: "this", Type: ast.TypeI64, Class: cls.Name}}, params...)
	} else {
		fn.Params = params
	}
	fn.Body = p.parseBlock()

	sig := &ast.MethodSig{
		Symbol:   symbol,
		Owner:    cls.Name,
		Access:   access,
		Static:   static,
		Virtual:  virtual,
		Override: override,
		Final:    final,
		Params:   paramTypes(params),
		Return:   ret,
	}
	for _, prev := range overloads {
		if typesEqual(prev.Params, sig.Params) {
			p.fail(diag.CodeParseDuplicateDecl, span,
				"duplicate method signature "+cls.Name+"."+mname)
		}
	}
	cls.Methods[mname] = append(overloads, sig)
	p.program.Functions = append(p.program.Functions, fn)
	p.endOfStatement()
}

// parseMemberOperator parses 'operator <op>(other: T) -> R' inside a class
// body. The receiver is implicit.
func (p *Parser) parseMemberOperator(cls *ast.ClassInfo, access ast.Access) {
	span := p.expect(lexer.OPERATOR).Span

	unary := false
	if p.at(lexer.UNARY) {
		p.next()
		unary = true
	}
	opTok := p.next()
	opKey := string(opTok.Type)
	if unary {
		opKey = "unary" + opKey
	}
	symName, ok := opSymbolNames[opKey]
	if !ok {
		p.fail(diag.CodeParseBadOperatorDecl, opTok.Span,
			"operator '"+opTok.Literal+"' cannot be overloaded")
	}

	params := p.parseParamList()
	ret, throws := p.parseSignatureTail()

	want := 1
	if unary {
		want = 0
	}
	if len(params) != want {
		p.fail(diag.CodeParseBadOperatorDecl, span,
			"member operator "+opTok.Literal+" takes "+strconv.Itoa(want)+" explicit parameter(s)")
	}
	if ret == ast.TypeVoid {
		p.fail(diag.CodeParseBadOperatorDecl, span, "operator overload may not return void")
	}
	if len(throws) != 0 {
		p.fail(diag.CodeParseBadOperatorDecl, span, "operator overload may not declare throws")
	}

	key := "operator" + opKey
	if len(cls.Methods[key]) > 0 {
		p.fail(diag.CodeParseDuplicateDecl, span,
			"duplicate member operator "+opTok.Literal+" in class "+cls.Name)
	}

	symbol := "__ls_m_" + cls.Name + "_op_" + symName
	fn := &ast.Function{
		Name:         symbol,
		SrcName:      key,
		Params:       append([]ast.Param{{Name: "this", Type: ast.TypeI64, Class: cls.Name}}, params...),
		Return:       ret,
		OwnerClass:   cls.Name,
		Access:       access,
		OperatorKind: opKey,
		Span:         span,
	}
	fn.Body = p.parseBlock()

	cls.Methods[key] = []*ast.MethodSig{{
		Symbol: symbol,
		Owner:  cls.Name,
		Access: access,
		Params: paramTypes(params),
		Return: ret,
	}}
	p.program.Functions = append(p.program.Functions, fn)
	p.endOfStatement()
}

func paramTypes(params []ast.Param) []ast.Type {
	ts := make([]ast.Type, len(params))
	for i, pm := range params {
		ts[i] = pm.Type
	}
	return ts
}

func typesEqual(a, b []ast.Type) bool {
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
