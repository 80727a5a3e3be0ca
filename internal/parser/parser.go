package parser

import (
	"strconv"

	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// Parser implements recursive descent over a pre-scanned token slice with
// precedence climbing for expressions. Beyond syntax it performs the
// semantic rewriting the later phases rely on: class constructor synthesis,
// member access lowering, macro expansion, operator-overload lowering, and
// overload symbol mangling. All syntax errors are fatal; parsing aborts at
// the first one.
type Parser struct {
	toks []lexer.Token
	pos  int

	program *ast.Program
	scripts []ast.Stmt // bare top-level statements

	macroKinds map[string]macroKinds
	classCtors map[string]*userCtor

	errors []diag.Diagnostic
}

// macroKinds records the declared parameter and return kinds of a macro.
// Only expr is usable; stmt and item error at expansion.
type macroKinds struct {
	params []string
	ret    string
}

// parseAbort is the panic sentinel used to unwind on a fatal syntax error.
type parseAbort struct{}

// New returns a parser over the given source.
func New(input string) *Parser {
	lx := lexer.New(input)
	toks := lx.Tokenize()
	p := &Parser{
		toks:       toks,
		program:    ast.NewProgram(),
		macroKinds: make(map[string]macroKinds),
		classCtors: make(map[string]*userCtor),
	}
	p.errors = append(p.errors, lx.Errors...)
	return p
}

// Errors returns accumulated diagnostics.
func (p *Parser) Errors() []diag.Diagnostic {
	return p.errors
}

// ParseProgram parses the full compilation unit, runs the rewrite pass and
// returns the program. On a fatal error the returned program is nil and
// Errors holds the diagnostic.
func (p *Parser) ParseProgram() (prog *ast.Program) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseAbort); !ok {
				panic(r)
			}
			prog = nil
		}
	}()

	if diag.HasErrors(p.errors) {
		return nil
	}

	for p.cur().Type != lexer.EOF {
		p.skipTerminators()
		if p.cur().Type == lexer.EOF {
			break
		}
		p.parseTopLevel()
	}

	if len(p.scripts) > 0 {
		p.program.Functions = append(p.program.Functions, &ast.Function{
			Name:    "__linescript_script_main",
			SrcName: "__linescript_script_main",
			Return:  ast.TypeVoid,
			Body:    p.scripts,
		})
	}

	p.rewriteProgram()

	if diag.HasErrors(p.errors) {
		return nil
	}
	return p.program
}

func (p *Parser) cur() lexer.Token {
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos+n]
}

func (p *Parser) next() lexer.Token {
	tok := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) at(tt lexer.TokenType) bool {
	return p.cur().Type == tt
}

// skipNewlines consumes newline tokens only.
func (p *Parser) skipNewlines() {
	for p.at(lexer.NEWLINE) {
		p.next()
	}
}

// skipTerminators consumes newlines and stray semicolons between forms.
func (p *Parser) skipTerminators() {
	for p.at(lexer.NEWLINE) || p.at(lexer.SEMICOLON) {
		p.next()
	}
}

// fail records a fatal syntax error and aborts parsing.
func (p *Parser) fail(code diag.Code, span diag.Span, msg string) {
	p.errors = append(p.errors, diag.Error(diag.StageParser, code, span, msg))
	panic(parseAbort{})
}

// expect consumes a token of the given type or fails.
func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	if !p.at(tt) {
		p.fail(diag.CodeParseSyntax, p.cur().Span,
			"expected '"+string(tt)+"', found '"+p.cur().Literal+"'")
	}
	return p.next()
}

// expectIdent consumes an identifier or fails.
func (p *Parser) expectIdent() lexer.Token {
	if !p.at(lexer.IDENT) {
		p.fail(diag.CodeParseSyntax, p.cur().Span,
			"expected identifier, found '"+p.cur().Literal+"'")
	}
	return p.next()
}

// endOfStatement enforces the statement terminator rule: a statement ends at
// ';', one or more newlines, or the opening of a closing block token.
func (p *Parser) endOfStatement() {
	switch p.cur().Type {
	case lexer.SEMICOLON:
		p.next()
		return
	case lexer.NEWLINE:
		p.skipNewlines()
		return
	case lexer.RBRACE, lexer.END, lexer.ELSE, lexer.ELIF, lexer.EOF:
		return
	}
	p.fail(diag.CodeParseMissingTerminator, p.cur().Span,
		"expected end of statement, found '"+p.cur().Literal+"'")
}

// parseTypeName parses a type annotation: a primitive name or a class name
// (reified as i64 with the class tracked separately).
func (p *Parser) parseTypeName() (ast.Type, string) {
	tok := p.expectIdent()
	switch tok.Literal {
	case "i32":
		return ast.TypeI32, ""
	case "i64":
		return ast.TypeI64, ""
	case "f32":
		return ast.TypeF32, ""
	case "f64":
		return ast.TypeF64, ""
	case "bool":
		return ast.TypeBool, ""
	case "str":
		return ast.TypeStr, ""
	case "void":
		return ast.TypeVoid, ""
	default:
		return ast.TypeI64, tok.Literal
	}
}

// parseInt parses the integer token literal; the lexer guarantees digits.
func parseInt(tok lexer.Token) int64 {
	v, _ := strconv.ParseInt(tok.Literal, 10, 64)
	return v
}

func parseFloat(tok lexer.Token) float64 {
	v, _ := strconv.ParseFloat(tok.Literal, 64)
	return v
}
