package ast

import (
	"testing"

	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/lexer"
)

func TestCloneExprIsDeep(t *testing.T) {
	span := diag.Span{Line: 1, Column: 1}
	inner := NewIntLit(2, span)
	orig := NewBinary(lexer.PLUS, NewIdent("x", span), inner, span)

	clone := CloneExpr(orig).(*Binary)
	if clone == orig {
		t.Fatal("clone returned the same node")
	}
	clone.Right.(*IntLit).Value = 99
	if inner.Value != 2 {
		t.Fatal("clone shares a subtree with the original")
	}
}

func TestSubstituteIdentsClonesReplacement(t *testing.T) {
	span := diag.Span{Line: 1, Column: 1}
	repl := NewBinary(lexer.PLUS, NewIntLit(1, span), NewIntLit(2, span), span)
	body := NewBinary(lexer.ASTERISK, NewIdent("x", span), NewIdent("x", span), span)

	out := SubstituteIdents(body, map[string]Expr{"x": repl}).(*Binary)
	left := out.Left.(*Binary)
	right := out.Right.(*Binary)
	if left == right || left == repl || right == repl {
		t.Fatal("each substitution site must receive its own clone")
	}
}

func TestSubstituteInStmtPinsLoopVar(t *testing.T) {
	span := diag.Span{Line: 1, Column: 1}
	stmt := NewAssign("s",
		NewBinary(lexer.PLUS, NewIdent("s", span), NewIdent("i", span), span), span)

	SubstituteInStmt(stmt, map[string]Expr{"i": NewIntLit(7, span)})
	bin := stmt.Value.(*Binary)
	lit, ok := bin.Right.(*IntLit)
	if !ok || lit.Value != 7 {
		t.Fatalf("loop variable not substituted: %#v", bin.Right)
	}
	if _, ok := bin.Left.(*Ident); !ok {
		t.Fatal("unrelated identifiers must survive substitution")
	}
}

func TestHasNegOverride(t *testing.T) {
	prog := NewProgram()
	if prog.HasNegOverride() {
		t.Fatal("empty program has no negation override")
	}
	prog.Functions = append(prog.Functions, &Function{
		Name:         "__ls_op_neg",
		SrcName:      "__ls_op_neg",
		OperatorKind: "unary-",
	})
	if !prog.HasNegOverride() {
		t.Fatal("negation override not detected")
	}
}
