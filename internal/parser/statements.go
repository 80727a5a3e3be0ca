package parser

import (
	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// parseBlock parses either brace or do/end block form; the two are
// interchangeable everywhere a block is expected.
func (p *Parser) parseBlock() []ast.Stmt {
	p.skipNewlines()
	switch p.cur().Type {
	case lexer.LBRACE:
		p.next()
		stmts := p.parseStmtsUntil(lexer.RBRACE)
		p.expect(lexer.RBRACE)
		return stmts
	case lexer.DO:
		p.next()
		stmts := p.parseStmtsUntil(lexer.END)
		p.expect(lexer.END)
		return stmts
	}
	p.fail(diag.CodeParseSyntax, p.cur().Span,
		"expected '{' or 'do' to open block, found '"+p.cur().Literal+"'")
	return nil
}

// parseBranchBlock parses a block that may also end at else/elif without
// consuming that token (the do/end form of an if arm).
func (p *Parser) parseBranchBlock() ([]ast.Stmt, bool) {
	p.skipNewlines()
	switch p.cur().Type {
	case lexer.LBRACE:
		p.next()
		stmts := p.parseStmtsUntil(lexer.RBRACE)
		p.expect(lexer.RBRACE)
		return stmts, true
	case lexer.DO:
		p.next()
		stmts := p.parseStmtsUntil(lexer.END)
		if p.at(lexer.END) {
			p.next()
			return stmts, true
		}
		// Stopped at else/elif: the chain shares one trailing 'end'.
		return stmts, false
	}
	p.fail(diag.CodeParseSyntax, p.cur().Span,
		"expected '{' or 'do' to open block, found '"+p.cur().Literal+"'")
	return nil, false
}

func (p *Parser) parseStmtsUntil(close lexer.TokenType) []ast.Stmt {
	var stmts []ast.Stmt
	for {
		p.skipTerminators()
		switch p.cur().Type {
		case close, lexer.ELSE, lexer.ELIF:
			return stmts
		case lexer.EOF:
			p.fail(diag.CodeParseSyntax, p.cur().Span,
				"unexpected end of input, expected '"+string(close)+"'")
		}
		stmts = append(stmts, p.parseStatement())
	}
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur().Type {
	case lexer.DECLARE:
		return p.parseDeclare()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR, lexer.PARALLEL:
		return p.parseFor()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.BREAK:
		span := p.next().Span
		s := &ast.Break{}
		s.SetSpan(span)
		p.endOfStatement()
		return s
	case lexer.CONTINUE:
		span := p.next().Span
		s := &ast.Continue{}
		s.SetSpan(span)
		p.endOfStatement()
		return s
	case lexer.DELETE:
		return p.parseDelete()
	case lexer.IDENT:
		if p.cur().Literal == "formatOutput" || p.cur().Literal == "FormatOutput" {
			if fb := p.tryParseFormatBlock(); fb != nil {
				return fb
			}
		}
	}
	return p.parseSimpleStatement()
}

// parseDeclare parses 'declare [const] [owned] name [: type] [= expr]'.
func (p *Parser) parseDeclare() ast.Stmt {
	span := p.expect(lexer.DECLARE).Span

	isConst := false
	owned := false
	for p.at(lexer.CONST) || p.at(lexer.OWNED) {
		if p.next().Type == lexer.CONST {
			isConst = true
		} else {
			owned = true
		}
	}

	name := p.expectIdent().Literal

	declType := ast.TypeUnknown
	declClass := ""
	if p.at(lexer.COLON) {
		p.next()
		declType, declClass = p.parseTypeName()
	}

	var init ast.Expr
	if p.at(lexer.ASSIGN) {
		p.next()
		init = p.parseExpr()
	}

	s := ast.NewDeclare(name, declType, isConst, owned, init, span)
	s.DeclClass = declClass
	p.endOfStatement()
	return s
}

// parseIf parses an if/elif/else chain; elif arms desugar into nested else
// blocks.
func (p *Parser) parseIf() ast.Stmt {
	span := p.expect(lexer.IF).Span
	cond := p.parseExpr()
	then, closed := p.parseBranchBlock()

	s := &ast.If{Cond: cond, Then: then}
	s.SetSpan(span)

	p.maybeSkipNewlinesBeforeElse()
	switch {
	case p.at(lexer.ELIF):
		p.toks[p.pos].Type = lexer.IF // reparse the chain tail as an if
		inner := p.parseIf()
		s.Else = []ast.Stmt{inner}
		return s
	case p.at(lexer.ELSE):
		p.next()
		if closed {
			elseBody, _ := p.parseBranchBlock()
			s.Else = elseBody
		} else {
			// do-form chains share a single trailing end; the else arm is
			// bare statements.
			s.Else = p.parseStmtsUntil(lexer.END)
			p.expect(lexer.END)
		}
		p.endOfStatement()
		return s
	}
	if !closed {
		p.expect(lexer.END)
	}
	p.endOfStatement()
	return s
}

// maybeSkipNewlinesBeforeElse tolerates newlines between '}' and else/elif.
func (p *Parser) maybeSkipNewlinesBeforeElse() {
	i := p.pos
	for p.toks[i].Type == lexer.NEWLINE {
		i++
	}
	if p.toks[i].Type == lexer.ELSE || p.toks[i].Type == lexer.ELIF {
		p.pos = i
	}
}

func (p *Parser) parseWhile() ast.Stmt {
	span := p.expect(lexer.WHILE).Span
	cond := p.parseExpr()
	body := p.parseBlock()
	s := &ast.While{Cond: cond, Body: body}
	s.SetSpan(span)
	p.endOfStatement()
	return s
}

// parseFor parses '[parallel] for i in start..stop [step expr] block'.
func (p *Parser) parseFor() ast.Stmt {
	parallel := false
	span := p.cur().Span
	if p.at(lexer.PARALLEL) {
		p.next()
		parallel = true
	}
	p.expect(lexer.FOR)
	name := p.expectIdent().Literal
	p.expect(lexer.IN)
	start := p.parseExpr()
	p.expect(lexer.DOTDOT)
	stop := p.parseExpr()

	var step ast.Expr
	if p.at(lexer.STEP) {
		p.next()
		step = p.parseExpr()
	} else {
		step = ast.NewIntLit(1, span)
	}

	body := p.parseBlock()
	s := &ast.For{Var: name, Start: start, Stop: stop, Step: step, Parallel: parallel, Body: body}
	s.SetSpan(span)
	p.endOfStatement()
	return s
}

func (p *Parser) parseReturn() ast.Stmt {
	span := p.expect(lexer.RETURN).Span
	var value ast.Expr
	switch p.cur().Type {
	case lexer.SEMICOLON, lexer.NEWLINE, lexer.RBRACE, lexer.END, lexer.ELSE, lexer.ELIF, lexer.EOF:
	default:
		value = p.parseExpr()
	}
	s := ast.NewReturn(value, span)
	p.endOfStatement()
	return s
}

// parseDelete parses 'delete x' and 'delete[] x'. Both emit the free call
// recorded for the variable's constructor; the bracket form is tracked.
func (p *Parser) parseDelete() ast.Stmt {
	span := p.expect(lexer.DELETE).Span
	isArray := false
	if p.at(lexer.LBRACKET) {
		p.next()
		p.expect(lexer.RBRACKET)
		isArray = true
	}
	name := p.expectIdent().Literal
	s := &ast.Delete{Name: name, Array: isArray}
	s.SetSpan(span)
	p.endOfStatement()
	return s
}

// tryParseFormatBlock parses 'formatOutput <block> [(endArg)]' when the
// identifier is followed by a block opener; otherwise it returns nil and
// the caller falls through to ordinary call parsing.
func (p *Parser) tryParseFormatBlock() ast.Stmt {
	i := p.pos + 1
	for p.toks[i].Type == lexer.NEWLINE {
		i++
	}
	if p.toks[i].Type != lexer.LBRACE && p.toks[i].Type != lexer.DO {
		return nil
	}

	span := p.next().Span // the formatOutput identifier
	body := p.parseBlock()

	var endArg ast.Expr
	if p.at(lexer.LPAREN) {
		p.next()
		p.skipNewlines()
		endArg = p.parseExpr()
		p.skipNewlines()
		p.expect(lexer.RPAREN)
	}

	s := &ast.FormatBlock{EndArg: endArg, Body: body}
	s.SetSpan(span)
	p.endOfStatement()
	return s
}

// parseSimpleStatement parses assignments (plain, compound, increment and
// field forms) and expression statements.
func (p *Parser) parseSimpleStatement() ast.Stmt {
	span := p.cur().Span
	lhs := p.parseExpr()

	switch p.cur().Type {
	case lexer.ASSIGN:
		p.next()
		value := p.parseExpr()
		return p.finishAssign(lhs, value, span)

	case lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN, lexer.STAR_ASSIGN,
		lexer.SLASH_ASSIGN, lexer.PERCENT_ASSIGN, lexer.POW_ASSIGN:
		opTok := p.next()
		rhs := p.parseExpr()
		op := compoundOp(opTok.Type)
		value := ast.NewBinary(op, ast.CloneExpr(lhs), rhs, opTok.Span)
		return p.finishAssign(lhs, value, span)

	case lexer.INCR, lexer.DECR:
		opTok := p.next()
		op := lexer.PLUS
		if opTok.Type == lexer.DECR {
			op = lexer.MINUS
		}
		one := ast.NewIntLit(1, opTok.Span)
		value := ast.NewBinary(op, ast.CloneExpr(lhs), one, opTok.Span)
		return p.finishAssign(lhs, value, span)
	}

	s := ast.NewExprStmt(lhs, span)
	p.endOfStatement()
	return s
}

func compoundOp(tt lexer.TokenType) lexer.TokenType {
	switch tt {
	case lexer.PLUS_ASSIGN:
		return lexer.PLUS
	case lexer.MINUS_ASSIGN:
		return lexer.MINUS
	case lexer.STAR_ASSIGN:
		return lexer.ASTERISK
	case lexer.SLASH_ASSIGN:
		return lexer.SLASH
	case lexer.PERCENT_ASSIGN:
		return lexer.PERCENT
	default:
		return lexer.POW
	}
}

func (p *Parser) finishAssign(lhs ast.Expr, value ast.Expr, span diag.Span) ast.Stmt {
	switch target := lhs.(type) {
	case *ast.Ident:
		s := ast.NewAssign(target.Name, value, span)
		p.endOfStatement()
		return s
	case *ast.Member:
		s := &ast.AssignField{Recv: target.Recv, Field: target.Field, Value: value}
		s.SetSpan(span)
		p.endOfStatement()
		return s
	}
	p.fail(diag.CodeParseSyntax, span, "invalid assignment target")
	return nil
}
