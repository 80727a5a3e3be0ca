package parser

import (
	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// Binding powers for precedence climbing, lowest first.
const (
	precLowest = iota
	precOr
	precAnd
	precEquality
	precComparison
	precSum
	precProduct
	precPower
	precPrefix
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:       precOr,
	lexer.AND:      precAnd,
	lexer.EQ:       precEquality,
	lexer.NOT_EQ:   precEquality,
	lexer.LT:       precComparison,
	lexer.LE:       precComparison,
	lexer.GT:       precComparison,
	lexer.GE:       precComparison,
	lexer.PLUS:     precSum,
	lexer.MINUS:    precSum,
	lexer.ASTERISK: precProduct,
	lexer.SLASH:    precProduct,
	lexer.PERCENT:  precProduct,
	lexer.POW:      precPower,
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(precLowest)
}

// parseBinary climbs operator precedence. Power is right-associative; the
// rest associate left.
func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()

	for {
		prec, ok := precedences[p.cur().Type]
		if !ok || prec <= minPrec {
			return left
		}
		opTok := p.next()
		var right ast.Expr
		if opTok.Type == lexer.POW {
			right = p.parseBinary(prec - 1)
		} else {
			right = p.parseBinary(prec)
		}
		left = ast.NewBinary(opTok.Type, left, right, opTok.Span)
	}
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur().Type {
	case lexer.MINUS, lexer.BANG:
		opTok := p.next()
		operand := p.parseUnary()
		return ast.NewUnary(opTok.Type, operand, opTok.Span)
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by call and member
// suffixes.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()

	for {
		switch p.cur().Type {
		case lexer.DOT:
			// su.* and superuser.* receivers compose into one dotted
			// builtin symbol rather than member accesses.
			if id, ok := expr.(*ast.Ident); ok && (id.Name == "su" || id.Name == "superuser") {
				expr = p.parseSuCall(id)
				continue
			}
			p.next()
			fieldTok := p.expectIdent()
			if p.at(lexer.LPAREN) {
				args := p.parseArgs()
				expr = ast.NewMethodCall(expr, fieldTok.Literal, args, fieldTok.Span)
			} else {
				expr = ast.NewMember(expr, fieldTok.Literal, fieldTok.Span)
			}
		default:
			return expr
		}
	}
}

// parseSuCall folds a su.a.b(...) chain into a single call on the dotted
// symbol. superuser.* canonicalizes to su.*.
func (p *Parser) parseSuCall(base *ast.Ident) ast.Expr {
	name := "su"
	for p.at(lexer.DOT) {
		p.next()
		name += "." + p.expectIdent().Literal
	}
	if !p.at(lexer.LPAREN) {
		p.fail(diag.CodeParseSyntax, p.cur().Span,
			"expected call on privileged namespace symbol "+name)
	}
	args := p.parseArgs()
	return ast.NewCall(name, args, base.Span())
}

func (p *Parser) parseArgs() []ast.Expr {
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	p.skipNewlines()
	for !p.at(lexer.RPAREN) {
		args = append(args, p.parseExpr())
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
	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.cur()
	switch tok.Type {
	case lexer.INT:
		p.next()
		return ast.NewIntLit(parseInt(tok), tok.Span)

	case lexer.FLOAT:
		p.next()
		return ast.NewFloatLit(parseFloat(tok), tok.Span)

	case lexer.STRING:
		p.next()
		return ast.NewStrLit(tok.Literal, tok.Span)

	case lexer.TRUE:
		p.next()
		return ast.NewBoolLit(true, tok.Span)

	case lexer.FALSE:
		p.next()
		return ast.NewBoolLit(false, tok.Span)

	case lexer.EXPAND:
		return p.parseExpand()

	case lexer.IDENT:
		p.next()
		if p.at(lexer.LPAREN) {
			args := p.parseArgs()
			return ast.NewCall(tok.Literal, args, tok.Span)
		}
		return ast.NewIdent(tok.Literal, tok.Span)

	case lexer.DOT:
		// Leading-dot runtime markers: .format(), .stateSpeed(), ...
		p.next()
		nameTok := p.expectIdent()
		if !p.at(lexer.LPAREN) {
			p.fail(diag.CodeParseSyntax, nameTok.Span,
				"expected call on marker ."+nameTok.Literal)
		}
		args := p.parseArgs()
		return ast.NewCall("."+nameTok.Literal, args, tok.Span)

	case lexer.LPAREN:
		p.next()
		p.skipNewlines()
		expr := p.parseExpr()
		p.skipNewlines()
		p.expect(lexer.RPAREN)
		return expr
	}

	p.fail(diag.CodeParseSyntax, tok.Span,
		"unexpected token '"+tok.Literal+"' in expression")
	return nil
}

// parseExpand parses 'expand(foo(args))'. The substitution itself happens
// in the rewrite pass once all macros are collected.
func (p *Parser) parseExpand() ast.Expr {
	span := p.expect(lexer.EXPAND).Span
	p.expect(lexer.LPAREN)
	inner := p.parseExpr()
	p.expect(lexer.RPAREN)

	call, ok := inner.(*ast.Call)
	if !ok {
		p.fail(diag.CodeParseBadMacro, span, "expand requires a macro call")
	}
	return ast.NewCall("__ls_expand", []ast.Expr{call}, span)
}
