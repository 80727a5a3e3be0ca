package ast

import (
	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// Type names a LineScript primitive type. Class and container handles are
// reified as i64; the checker tracks the originating class separately.
type Type string

const (
	TypeUnknown Type = ""
	TypeI32     Type = "i32"
	TypeI64     Type = "i64"
	TypeF32     Type = "f32"
	TypeF64     Type = "f64"
	TypeBool    Type = "bool"
	TypeStr     Type = "str"
	TypeVoid    Type = "void"
)

// Node represents any IR node with an associated source span.
type Node interface {
	Span() diag.Span
}

// Expr represents an expression node. Every expression carries its span and,
// after type checking, an inferred type and a typed flag.
type Expr interface {
	Node
	exprNode()
	Inf() Type
	SetInf(Type)
	IsTyped() bool
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// exprMeta carries the span and checker annotations shared by all
// expression variants.
type exprMeta struct {
	span  diag.Span
	inf   Type
	typed bool
}

func (m *exprMeta) Span() diag.Span { return m.span }
func (m *exprMeta) Inf() Type       { return m.inf }
func (m *exprMeta) IsTyped() bool   { return m.typed }

func (m *exprMeta) SetInf(t Type) {
	m.inf = t
	m.typed = true
}

// SetSpan updates the node span.
func (m *exprMeta) SetSpan(span diag.Span) { m.span = span }

// IntLit is an integer literal.
type IntLit struct {
	exprMeta
	Value int64
}

// FloatLit is a float literal.
type FloatLit struct {
	exprMeta
	Value float64
}

// BoolLit is a boolean literal.
type BoolLit struct {
	exprMeta
	Value bool
}

// StrLit is a string literal (decoded).
type StrLit struct {
	exprMeta
	Value string
}

// Ident is a variable or parameter reference.
type Ident struct {
	exprMeta
	Name string
}

// Unary is a unary operation. OverrideFn names a resolved user operator
// overload when one applies.
type Unary struct {
	exprMeta
	Op         lexer.TokenType
	Operand    Expr
	OverrideFn string
}

// Binary is a binary operation. OverrideFn names a resolved user operator
// overload when one applies.
type Binary struct {
	exprMeta
	Op          lexer.TokenType
	Left, Right Expr
	OverrideFn  string
}

// Call is a function or builtin call. Name is rewritten to the resolved
// symbol during overload resolution.
type Call struct {
	exprMeta
	Name string
	Args []Expr
}

// Member is a field access expression. It exists only between parsing and
// the parser's rewrite pass, which lowers it to object_get plus a
// type-directed parse-back chain.
type Member struct {
	exprMeta
	Recv  Expr
	Field string
}

// MethodCall is a method invocation on a receiver. Like Member, it is
// lowered by the parser's rewrite pass into a direct call on the resolved
// method symbol.
type MethodCall struct {
	exprMeta
	Recv   Expr
	Method string
	Args   []Expr
}

func (*IntLit) exprNode()     {}
func (*FloatLit) exprNode()   {}
func (*BoolLit) exprNode()    {}
func (*StrLit) exprNode()     {}
func (*Ident) exprNode()      {}
func (*Unary) exprNode()      {}
func (*Binary) exprNode()     {}
func (*Call) exprNode()       {}
func (*Member) exprNode()     {}
func (*MethodCall) exprNode() {}

// NewIntLit constructs an integer literal node.
func NewIntLit(v int64, span diag.Span) *IntLit {
	e := &IntLit{Value: v}
	e.span = span
	return e
}

// NewFloatLit constructs a float literal node.
func NewFloatLit(v float64, span diag.Span) *FloatLit {
	e := &FloatLit{Value: v}
	e.span = span
	return e
}

// NewBoolLit constructs a boolean literal node.
func NewBoolLit(v bool, span diag.Span) *BoolLit {
	e := &BoolLit{Value: v}
	e.span = span
	return e
}

// NewStrLit constructs a string literal node.
func NewStrLit(v string, span diag.Span) *StrLit {
	e := &StrLit{Value: v}
	e.span = span
	return e
}

// NewIdent constructs an identifier node.
func NewIdent(name string, span diag.Span) *Ident {
	e := &Ident{Name: name}
	e.span = span
	return e
}

// NewUnary constructs a unary operation node.
func NewUnary(op lexer.TokenType, operand Expr, span diag.Span) *Unary {
	e := &Unary{Op: op, Operand: operand}
	e.span = span
	return e
}

// NewBinary constructs a binary operation node.
func NewBinary(op lexer.TokenType, left, right Expr, span diag.Span) *Binary {
	e := &Binary{Op: op, Left: left, Right: right}
	e.span = span
	return e
}

// NewCall constructs a call node.
func NewCall(name string, args []Expr, span diag.Span) *Call {
	e := &Call{Name: name, Args: args}
	e.span = span
	return e
}

// NewMember constructs a member access node.
func NewMember(recv Expr, field string, span diag.Span) *Member {
	e := &Member{Recv: recv, Field: field}
	e.span = span
	return e
}

// NewMethodCall constructs a method call node.
func NewMethodCall(recv Expr, method string, args []Expr, span diag.Span) *MethodCall {
	e := &MethodCall{Recv: recv, Method: method, Args: args}
	e.span = span
	return e
}

// stmtMeta carries the span shared by all statement variants.
type stmtMeta struct {
	span diag.Span
}

func (m *stmtMeta) Span() diag.Span { return m.span }

// SetSpan updates the node span.
func (m *stmtMeta) SetSpan(span diag.Span) { m.span = span }

// Declare introduces a variable. After checking, Resolved holds the final
// type and FreeFn the release function when the declaration owns a handle.
type Declare struct {
	stmtMeta
	Name      string
	DeclType  Type   // declared type, TypeUnknown when inferred
	DeclClass string // originating class when the annotation names a class
	Const     bool
	Owned     bool
	Init      Expr
	Resolved  Type
	FreeFn    string
}

// Assign stores a value into an existing variable.
type Assign struct {
	stmtMeta
	Name  string
	Value Expr
}

// ExprStmt evaluates an expression for its effects.
type ExprStmt struct {
	stmtMeta
	X Expr
}

// Return exits the enclosing function; Value may be nil for void returns.
type Return struct {
	stmtMeta
	Value Expr
}

// If is a conditional; elif chains are desugared into nested Else blocks.
type If struct {
	stmtMeta
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While is a condition-guarded loop.
type While struct {
	stmtMeta
	Cond Expr
	Body []Stmt
}

// For is a counted range loop over start..stop with an optional step.
type For struct {
	stmtMeta
	Var      string
	Start    Expr
	Stop     Expr
	Step     Expr
	Parallel bool
	Body     []Stmt
}

// FormatBlock redirects print output into a thread-local buffer for the
// duration of its body, appending EndArg (default empty) before flushing.
type FormatBlock struct {
	stmtMeta
	EndArg Expr
	Body   []Stmt
}

// AssignField stores into a field of a receiver. It exists only between
// parsing and the parser's rewrite pass, which lowers it to object_set.
type AssignField struct {
	stmtMeta
	Recv  Expr
	Field string
	Value Expr
}

// Delete releases the handle held by a variable. It exists only between
// parsing and the parser's rewrite pass, which lowers it to the free call
// recorded for the variable's constructor.
type Delete struct {
	stmtMeta
	Name  string
	Array bool // delete[] form; tracked but lowered identically
}

// Break exits the innermost loop.
type Break struct {
	stmtMeta
}

// Continue advances the innermost loop.
type Continue struct {
	stmtMeta
}

func (*Declare) stmtNode()     {}
func (*Assign) stmtNode()      {}
func (*ExprStmt) stmtNode()    {}
func (*Return) stmtNode()      {}
func (*If) stmtNode()          {}
func (*While) stmtNode()       {}
func (*For) stmtNode()         {}
func (*FormatBlock) stmtNode() {}
func (*AssignField) stmtNode() {}
func (*Delete) stmtNode()      {}
func (*Break) stmtNode()       {}
func (*Continue) stmtNode()    {}

// NewDeclare constructs a declaration statement.
func NewDeclare(name string, declType Type, isConst, owned bool, init Expr, span diag.Span) *Declare {
	s := &Declare{Name: name, DeclType: declType, Const: isConst, Owned: owned, Init: init}
	s.span = span
	return s
}

// NewAssign constructs an assignment statement.
func NewAssign(name string, value Expr, span diag.Span) *Assign {
	s := &Assign{Name: name, Value: value}
	s.span = span
	return s
}

// NewExprStmt constructs an expression statement.
func NewExprStmt(x Expr, span diag.Span) *ExprStmt {
	s := &ExprStmt{X: x}
	s.span = span
	return s
}

// NewReturn constructs a return statement.
func NewReturn(value Expr, span diag.Span) *Return {
	s := &Return{Value: value}
	s.span = span
	return s
}
