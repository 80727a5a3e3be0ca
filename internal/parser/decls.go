package parser

import (
	"strconv"
	"strings"

	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// opSymbolNames maps operator spellings to the suffix used in overload
// symbols (__ls_op_plus and friends).
var opSymbolNames = map[string]string{
	"+":      "plus",
	"-":      "minus",
	"*":      "mul",
	"/":      "div",
	"%":      "mod",
	"**":     "pow",
	"==":     "eq",
	"!=":     "neq",
	"<":      "lt",
	"<=":     "le",
	">":      "gt",
	">=":     "ge",
	"&&":     "and",
	"||":     "or",
	"unary-": "neg",
	"unary!": "not",
}

func (p *Parser) parseTopLevel() {
	switch p.cur().Type {
	case lexer.MACRO:
		p.parseMacroDecl()
	case lexer.CLASS:
		p.parseClassDecl()
	case lexer.FLAG:
		p.parseFlagDecl()
	case lexer.OPERATOR:
		p.parseOperatorDecl()
	case lexer.EXTERN, lexer.INLINE, lexer.FN, lexer.FUNC:
		p.parseFunctionDecl()
	default:
		if p.looksLikeFunction() {
			p.parseFunctionDecl()
			return
		}
		stmt := p.parseStatement()
		p.scripts = append(p.scripts, stmt)
	}
}

// looksLikeFunction implements the declaration-vs-call lookahead: skip
// modifiers, an optional fn/func keyword and the name, scan past a balanced
// parameter list (tolerating nested newlines), then accept one of '->',
// 'throws', 'do', '{' — or a trailing ';' when extern was present.
func (p *Parser) looksLikeFunction() bool {
	i := p.pos
	sawExtern := false
	for p.toks[i].Type == lexer.EXTERN || p.toks[i].Type == lexer.INLINE {
		if p.toks[i].Type == lexer.EXTERN {
			sawExtern = true
		}
		i++
	}
	if p.toks[i].Type == lexer.FN || p.toks[i].Type == lexer.FUNC {
		i++
	}
	if p.toks[i].Type != lexer.IDENT {
		return false
	}
	i++
	if p.toks[i].Type != lexer.LPAREN {
		return false
	}
	depth := 0
	for ; i < len(p.toks); i++ {
		switch p.toks[i].Type {
		case lexer.LPAREN:
			depth++
		case lexer.RPAREN:
			depth--
		case lexer.EOF:
			return false
		}
		if depth == 0 && p.toks[i].Type == lexer.RPAREN {
			i++
			break
		}
	}
	switch p.toks[i].Type {
	case lexer.ARROW, lexer.THROWS, lexer.DO, lexer.LBRACE:
		return true
	case lexer.SEMICOLON:
		return sawExtern
	}
	return false
}

// parseFunctionDecl parses a top-level function and registers it in the
// overload table.
func (p *Parser) parseFunctionDecl() {
	span := p.cur().Span

	extern := false
	inline := false
	for p.at(lexer.EXTERN) || p.at(lexer.INLINE) {
		if p.next().Type == lexer.EXTERN {
			extern = true
		} else {
			inline = true
		}
	}
	if p.at(lexer.FN) || p.at(lexer.FUNC) {
		p.next()
	}

	name := p.expectIdent().Literal
	params := p.parseParamList()
	ret, throws := p.parseSignatureTail()

	fn := &ast.Function{
		SrcName: name,
		Params:  params,
		Return:  ret,
		Throws:  throws,
		Extern:  extern,
		Inline:  inline,
		Span:    span,
	}

	if extern {
		p.expect(lexer.SEMICOLON)
	} else {
		fn.Body = p.parseBlock()
	}

	p.registerOverload(name, fn)
	p.endOfStatement()
}

// parseParamList parses '(' name ':' type, ... ')' tolerating newlines
// anywhere inside the parentheses.
func (p *Parser) parseParamList() []ast.Param {
	p.expect(lexer.LPAREN)
	var params []ast.Param
	p.skipNewlines()
	for !p.at(lexer.RPAREN) {
		nameTok := p.expectIdent()
		p.expect(lexer.COLON)
		typ, class := p.parseTypeName()
		params = append(params, ast.Param{Name: nameTok.Literal, Type: typ, Class: class})
		p.skipNewlines()
		if p.at(lexer.COMMA) {
			p.next()
			p.skipNewlines()
			continue
		}
		break
	}
	p.skipNewlines()
	p.expect(lexer.RPAREN)
	return params
}

// parseSignatureTail parses the optional '-> type' and 'throws A, B' suffix.
func (p *Parser) parseSignatureTail() (ast.Type, []string) {
	ret := ast.TypeVoid
	if p.at(lexer.ARROW) {
		p.next()
		typ, class := p.parseTypeName()
		if class != "" {
			typ = ast.TypeI64
		}
		ret = typ
	}
	var throws []string
	if p.at(lexer.THROWS) {
		p.next()
		for {
			throws = append(throws, p.expectIdent().Literal)
			if !p.at(lexer.COMMA) {
				break
			}
			p.next()
		}
	}
	return ret, throws
}

// registerOverload adds a function to its overload group. The first
// overload keeps the source name as its symbol; subsequent overloads are
// mangled __ls_ovl_<name>_<N>.
func (p *Parser) registerOverload(name string, fn *ast.Function) {
	group := p.program.Overloads[name]
	if len(group) == 0 {
		fn.Name = name
	} else {
		fn.Name = "__ls_ovl_" + name + "_" + strconv.Itoa(len(group))
	}
	p.program.Overloads[name] = append(group, fn)
	p.program.Functions = append(p.program.Functions, fn)
}

// parseFlagDecl parses 'flag name[-name]*()' and its body: a no-argument
// void function invoked from the entry wrapper when --name is passed.
func (p *Parser) parseFlagDecl() {
	span := p.expect(lexer.FLAG).Span

	parts := []string{p.expectIdent().Literal}
	for p.at(lexer.MINUS) {
		p.next()
		parts = append(parts, p.expectIdent().Literal)
	}
	srcName := strings.Join(parts, "-")
	for _, part := range parts {
		if part == "" {
			p.fail(diag.CodeParseBadFlagName, span, "bad flag name "+strconv.Quote(srcName))
		}
	}

	p.expect(lexer.LPAREN)
	p.skipNewlines()
	if !p.at(lexer.RPAREN) {
		p.fail(diag.CodeParseBadFlagName, p.cur().Span,
			"flag function "+srcName+" may not take parameters")
	}
	p.next()

	fn := &ast.Function{
		Name:    "__ls_flag_" + strings.Join(parts, "_"),
		SrcName: srcName,
		Return:  ast.TypeVoid,
		CLIFlag: true,
		Span:    span,
	}
	fn.Body = p.parseBlock()

	if p.program.Overloads[fn.Name] != nil {
		p.fail(diag.CodeParseDuplicateDecl, span, "duplicate flag "+srcName)
	}
	p.program.Overloads[fn.Name] = []*ast.Function{fn}
	p.program.Functions = append(p.program.Functions, fn)
	p.endOfStatement()
}

// parseOperatorDecl parses a free operator overload:
//
//	operator <binop>(a: T, b: U) -> R   (two params, non-void, no throws)
//	operator unary <uop>(x: T) -> R
func (p *Parser) parseOperatorDecl() {
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

	want := 2
	if unary {
		want = 1
	}
	if len(params) != want {
		p.fail(diag.CodeParseBadOperatorDecl, span,
			"operator "+opTok.Literal+" overload requires exactly "+strconv.Itoa(want)+" parameters")
	}
	if ret == ast.TypeVoid {
		p.fail(diag.CodeParseBadOperatorDecl, span,
			"operator overload may not return void")
	}
	if len(throws) != 0 {
		p.fail(diag.CodeParseBadOperatorDecl, span,
			"operator overload may not declare throws")
	}

	fn := &ast.Function{
		SrcName:      "__ls_op_" + symName,
		Params:       params,
		Return:       ret,
		OperatorKind: opKey,
		Span:         span,
	}
	fn.Body = p.parseBlock()
	p.registerOverload(fn.SrcName, fn)
	p.endOfStatement()
}

// parseMacroDecl parses 'macro name(param: kind, ...) -> kind { body }'.
// Only expr parameter and return kinds are usable; stmt and item parse but
// error at expansion time.
func (p *Parser) parseMacroDecl() {
	span := p.expect(lexer.MACRO).Span
	name := p.expectIdent().Literal

	p.expect(lexer.LPAREN)
	var params []string
	var kinds []string
	p.skipNewlines()
	for !p.at(lexer.RPAREN) {
		pn := p.expectIdent()
		p.expect(lexer.COLON)
		kind := p.expectIdent().Literal
		switch kind {
		case "expr", "stmt", "item":
		default:
			p.fail(diag.CodeParseBadMacro, pn.Span, "unknown macro parameter kind '"+kind+"'")
		}
		params = append(params, pn.Literal)
		kinds = append(kinds, kind)
		p.skipNewlines()
		if p.at(lexer.COMMA) {
			p.next()
			p.skipNewlines()
			continue
		}
		break
	}
	p.skipNewlines()
	p.expect(lexer.RPAREN)

	retKind := "expr"
	if p.at(lexer.ARROW) {
		p.next()
		retKind = p.expectIdent().Literal
	}

	// A macro body is a single expression template wrapped in a block.
	var open lexer.TokenType
	var close lexer.TokenType
	if p.at(lexer.DO) {
		open, close = lexer.DO, lexer.END
	} else {
		open, close = lexer.LBRACE, lexer.RBRACE
	}
	p.expect(open)
	p.skipNewlines()
	body := p.parseExpr()
	p.skipNewlines()
	p.expect(close)

	if p.program.Macros[name] != nil {
		p.fail(diag.CodeParseDuplicateDecl, span, "duplicate macro "+name)
	}
	m := &ast.MacroInfo{Name: name, Params: params, Body: body, Span: span}
	p.program.Macros[name] = m
	p.macroKinds[name] = macroKinds{params: kinds, ret: retKind}
	p.endOfStatement()
}
