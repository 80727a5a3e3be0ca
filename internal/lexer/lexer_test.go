package lexer

import (
	"testing"
)

func TestNextToken_Basic(t *testing.T) {
	input := `declare x: i64 = 10;`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{DECLARE, "declare"},
		{IDENT, "x"},
		{COLON, ":"},
		{IDENT, "i64"},
		{ASSIGN, "="},
		{INT, "10"},
		{SEMICOLON, ";"},
		{EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextToken_Operators(t *testing.T) {
	input := `= + - * / % ** == != < > <= >= && || ! .. -> ++ -- += -= *= /= %= **= ^=`

	expected := []TokenType{
		ASSIGN, PLUS, MINUS, ASTERISK, SLASH, PERCENT, POW,
		EQ, NOT_EQ, LT, GT, LE, GE, AND, OR, BANG,
		DOTDOT, ARROW, INCR, DECR,
		PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN,
		PERCENT_ASSIGN, POW_ASSIGN, POW_ASSIGN,
		EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("step %d - expected token %q, got %q (%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestNextToken_WordOperators(t *testing.T) {
	l := New(`a and b or not c`)

	expected := []TokenType{IDENT, AND, IDENT, OR, BANG, IDENT, EOF}
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("step %d - expected %q, got %q", i, want, tok.Type)
		}
	}
}

func TestNewlinesAreTokens(t *testing.T) {
	l := New("a\n\nb")

	expected := []TokenType{IDENT, NEWLINE, NEWLINE, IDENT, EOF}
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("step %d - expected %q, got %q", i, want, tok.Type)
		}
	}
}

func TestLineCommentsSkipToNewline(t *testing.T) {
	l := New("a // comment text\nb")

	expected := []struct {
		typ TokenType
		lit string
	}{
		{IDENT, "a"},
		{NEWLINE, "\n"},
		{IDENT, "b"},
		{EOF, ""},
	}
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ || tok.Literal != want.lit {
			t.Fatalf("step %d - expected %q %q, got %q %q", i, want.typ, want.lit, tok.Type, tok.Literal)
		}
	}
}

func TestFloatVsRange(t *testing.T) {
	// A dot not followed by a digit must not be consumed into the number.
	l := New(`1.5 0..10 3.x`)

	expected := []struct {
		typ TokenType
		lit string
	}{
		{FLOAT, "1.5"},
		{INT, "0"},
		{DOTDOT, ".."},
		{INT, "10"},
		{INT, "3"},
		{DOT, "."},
		{IDENT, "x"},
		{EOF, ""},
	}
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ || tok.Literal != want.lit {
			t.Fatalf("step %d - expected %q %q, got %q %q", i, want.typ, want.lit, tok.Type, tok.Literal)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\nb\t\"c\"\\"`)

	tok := l.NextToken()
	if tok.Type != STRING {
		t.Fatalf("expected string token, got %q", tok.Type)
	}
	if tok.Literal != "a\nb\t\"c\"\\" {
		t.Fatalf("decoded value wrong: %q", tok.Literal)
	}
	if len(l.Errors) != 0 {
		t.Fatalf("unexpected lexer errors: %v", l.Errors)
	}
}

func TestBadEscapeIsError(t *testing.T) {
	l := New(`"a\qb"`)
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected illegal token, got %q", tok.Type)
	}
	if len(l.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(l.Errors))
	}
}

func TestUnterminatedStringIsError(t *testing.T) {
	l := New("\"abc\nx")
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected illegal token, got %q", tok.Type)
	}
	if len(l.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(l.Errors))
	}
}

func TestSpans(t *testing.T) {
	l := New("ab cd\nef")

	tests := []struct {
		lit  string
		line int
		col  int
	}{
		{"ab", 1, 1},
		{"cd", 1, 4},
		{"\n", 1, 6},
		{"ef", 2, 1},
	}
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Literal != tt.lit {
			t.Fatalf("step %d - literal %q, want %q", i, tok.Literal, tt.lit)
		}
		if tok.Span.Line != tt.line || tok.Span.Column != tt.col {
			t.Fatalf("step %d (%q) - span %d:%d, want %d:%d",
				i, tt.lit, tok.Span.Line, tok.Span.Column, tt.line, tt.col)
		}
	}
}

func TestIllegalCharacter(t *testing.T) {
	l := New("a $ b")
	toks := l.Tokenize()
	if len(l.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(l.Errors))
	}
	foundIllegal := false
	for _, tok := range toks {
		if tok.Type == ILLEGAL {
			foundIllegal = true
		}
	}
	if !foundIllegal {
		t.Fatal("expected an ILLEGAL token in the stream")
	}
}
