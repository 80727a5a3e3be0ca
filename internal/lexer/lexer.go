package lexer

import (
	"strconv"

	"github.com/linescript-lang/linescript/internal/diag"
)

// Lexer scans LineScript source in a single forward pass. Punctuation needs
// at most two bytes of lookahead and no position is ever re-read.
type Lexer struct {
	input  string
	pos    int  // index of the current byte
	ch     byte // current byte (0 = EOF)
	line   int  // current line number (1-based)
	column int  // current column number (1-based)

	Errors []diag.Diagnostic
}

// New creates a new lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		pos:    -1,
		line:   1,
		column: 0,
	}
	l.read()
	return l
}

func (l *Lexer) addError(code diag.Code, msg string, span diag.Span) {
	l.Errors = append(l.Errors, diag.Error(diag.StageLexer, code, span, msg))
}

// read advances the lexer to the next byte, tracking line and column so that
// they always describe the byte at pos.
func (l *Lexer) read() {
	prev := l.pos
	l.pos++
	if prev >= 0 && prev < len(l.input) && l.input[prev] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	if l.pos >= len(l.input) {
		l.ch = 0
		return
	}
	l.ch = l.input[l.pos]
}

// peek returns the next byte without advancing.
func (l *Lexer) peek() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) span() diag.Span {
	return diag.Span{Line: l.line, Column: l.column}
}

func (l *Lexer) makeToken(tt TokenType, literal string, span diag.Span) Token {
	return Token{Type: tt, Literal: literal, Span: span}
}

// single emits a one-byte token and advances past it.
func (l *Lexer) single(tt TokenType) Token {
	span := l.span()
	lit := string(l.ch)
	l.read()
	return l.makeToken(tt, lit, span)
}

// pair emits a two-byte token and advances past both bytes.
func (l *Lexer) pair(tt TokenType) Token {
	span := l.span()
	lit := string(l.ch) + string(l.peek())
	l.read()
	l.read()
	return l.makeToken(tt, lit, span)
}

// pick emits a two-byte token when the next byte matches, else the one-byte
// fallback.
func (l *Lexer) pick(next byte, two TokenType, one TokenType) Token {
	if l.peek() == next {
		return l.pair(two)
	}
	return l.single(one)
}

// skipSpace skips spaces, tabs and carriage returns. Newlines are tokens,
// not whitespace.
func (l *Lexer) skipSpace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.read()
	}
}

// skipLineComment consumes a // comment up to (not including) the newline.
func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.read()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.read()
	}
	return l.input[start:l.pos]
}

// readNumber reads [0-9]+ optionally followed by .[0-9]+. A dot not followed
// by a digit is left for the caller (range operator, member access).
func (l *Lexer) readNumber() (string, TokenType) {
	start := l.pos
	for isDigit(l.ch) {
		l.read()
	}
	if l.ch == '.' && isDigit(l.peek()) {
		l.read()
		for isDigit(l.ch) {
			l.read()
		}
		return l.input[start:l.pos], FLOAT
	}
	return l.input[start:l.pos], INT
}

// readString reads a double-quoted string literal with escapes. Both bad
// escapes and unterminated literals are fatal, span-attributed errors.
func (l *Lexer) readString(span diag.Span) (string, bool) {
	var out []byte
	l.read() // consume opening quote
	for {
		switch l.ch {
		case 0, '\n':
			l.addError(diag.CodeLexerUnterminatedString, "unterminated string literal", span)
			return string(out), false
		case '"':
			l.read()
			return string(out), true
		case '\\':
			escSpan := l.span()
			l.read()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			default:
				l.addError(diag.CodeLexerBadEscape,
					"unknown escape sequence \\"+string(l.ch), escSpan)
				return string(out), false
			}
			l.read()
		default:
			out = append(out, l.ch)
			l.read()
		}
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	for {
		l.skipSpace()

		switch l.ch {
		case 0:
			return l.makeToken(EOF, "", l.span())

		case '\n':
			return l.single(NEWLINE)

		case '/':
			if l.peek() == '/' {
				l.skipLineComment()
				continue
			}
			return l.pick('=', SLASH_ASSIGN, SLASH)

		case '=':
			return l.pick('=', EQ, ASSIGN)

		case '!':
			return l.pick('=', NOT_EQ, BANG)

		case '<':
			return l.pick('=', LE, LT)

		case '>':
			return l.pick('=', GE, GT)

		case '+':
			if l.peek() == '+' {
				return l.pair(INCR)
			}
			return l.pick('=', PLUS_ASSIGN, PLUS)

		case '-':
			switch l.peek() {
			case '-':
				return l.pair(DECR)
			case '>':
				return l.pair(ARROW)
			}
			return l.pick('=', MINUS_ASSIGN, MINUS)

		case '*':
			if l.peek() == '*' {
				span := l.span()
				l.read()
				l.read()
				if l.ch == '=' {
					l.read()
					return l.makeToken(POW_ASSIGN, "**=", span)
				}
				return l.makeToken(POW, "**", span)
			}
			return l.pick('=', STAR_ASSIGN, ASTERISK)

		case '%':
			return l.pick('=', PERCENT_ASSIGN, PERCENT)

		case '^':
			// ^= is the power-assign spelling; bare ^ is not an operator.
			if l.peek() == '=' {
				return l.pair(POW_ASSIGN)
			}
			return l.illegal()

		case '&':
			if l.peek() == '&' {
				return l.pair(AND)
			}
			return l.illegal()

		case '|':
			if l.peek() == '|' {
				return l.pair(OR)
			}
			return l.illegal()

		case '.':
			if l.peek() == '.' {
				return l.pair(DOTDOT)
			}
			return l.single(DOT)

		case ';':
			return l.single(SEMICOLON)
		case ',':
			return l.single(COMMA)
		case ':':
			return l.single(COLON)
		case '(':
			return l.single(LPAREN)
		case ')':
			return l.single(RPAREN)
		case '{':
			return l.single(LBRACE)
		case '}':
			return l.single(RBRACE)
		case '[':
			return l.single(LBRACKET)
		case ']':
			return l.single(RBRACKET)

		case '"':
			span := l.span()
			value, ok := l.readString(span)
			if !ok {
				return l.makeToken(ILLEGAL, value, span)
			}
			return l.makeToken(STRING, value, span)

		default:
			if isLetter(l.ch) {
				span := l.span()
				literal := l.readIdentifier()
				return l.makeToken(LookupIdent(literal), literal, span)
			}
			if isDigit(l.ch) {
				span := l.span()
				literal, tt := l.readNumber()
				return l.makeToken(tt, literal, span)
			}
			return l.illegal()
		}
	}
}

func (l *Lexer) illegal() Token {
	span := l.span()
	raw := string(l.ch)
	l.read()
	l.addError(diag.CodeLexerIllegalChar, "illegal character "+strconv.Quote(raw), span)
	return l.makeToken(ILLEGAL, raw, span)
}

// Tokenize scans the whole input. The token slice always ends with EOF.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func isLetter(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
