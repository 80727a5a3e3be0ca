package ast

import "github.com/linescript-lang/linescript/internal/diag"

// Access names a member access level.
type Access string

const (
	AccessPublic    Access = "public"
	AccessProtected Access = "protected"
	AccessPrivate   Access = "private"
)

// Param is a function parameter. Class records the originating class name
// when the annotation was a class type (reified as i64).
type Param struct {
	Name  string
	Type  Type
	Class string
}

// Function is a checked function definition. Name is the emitted symbol
// (possibly mangled for overloading); SrcName is the user-visible name used
// for diagnostics and overload grouping.
type Function struct {
	Name    string
	SrcName string
	Params  []Param
	Return  Type
	Throws  []string
	Body    []Stmt

	Extern  bool
	Inline  bool
	CLIFlag bool

	// Class-method flags; OwnerClass is empty for free functions.
	OwnerClass string
	Access     Access
	Static     bool
	Virtual    bool
	Override   bool
	Final      bool

	// OperatorKind is the overloaded operator spelling ("+", "unary-", ...)
	// or empty for ordinary functions.
	OperatorKind string

	Span diag.Span
}

// ParamTypes returns the parameter type list.
func (f *Function) ParamTypes() []Type {
	ts := make([]Type, len(f.Params))
	for i, p := range f.Params {
		ts[i] = p.Type
	}
	return ts
}

// Field is a class field.
type Field struct {
	Name   string
	Type   Type
	Access Access
	Owner  string // declaring class, for inherited field lookups
	Const  bool
	Owned  bool
	Init   Expr // optional initializer, rewritten into the constructor
}

// MethodSig records one method overload of a class.
type MethodSig struct {
	Symbol   string
	Owner    string
	Access   Access
	Static   bool
	Virtual  bool
	Override bool
	Final    bool
	Params   []Type // excluding the implicit receiver
	Return   Type
}

// ClassInfo describes a declared class. Fields keep insertion order; the
// object store is keyed by name so layout never matters, but constructor
// synthesis initializes fields in declaration order.
type ClassInfo struct {
	Name    string
	Base    string
	Fields  []Field
	Methods map[string][]*MethodSig
	Span    diag.Span
}

// FindField resolves a field by name, walking the inheritance chain via the
// provided class table.
func (c *ClassInfo) FindField(name string, classes map[string]*ClassInfo) *Field {
	for cls := c; cls != nil; {
		for i := range cls.Fields {
			if cls.Fields[i].Name == name {
				return &cls.Fields[i]
			}
		}
		if cls.Base == "" {
			return nil
		}
		cls = classes[cls.Base]
	}
	return nil
}

// FindMethods resolves the overload set for a method name, walking the
// inheritance chain.
func (c *ClassInfo) FindMethods(name string, classes map[string]*ClassInfo) []*MethodSig {
	for cls := c; cls != nil; {
		if sigs, ok := cls.Methods[name]; ok {
			return sigs
		}
		if cls.Base == "" {
			return nil
		}
		cls = classes[cls.Base]
	}
	return nil
}

// MacroInfo is a declared expression macro: a body template with named
// expression parameters, substituted hygiene-free at expansion sites.
type MacroInfo struct {
	Name   string
	Params []string
	Body   Expr
	Span   diag.Span
}

// Program is a parsed and rewritten compilation unit.
type Program struct {
	Functions []*Function
	Classes   map[string]*ClassInfo
	ClassList []string // declaration order
	Macros    map[string]*MacroInfo

	// Overloads groups functions by source name for resolution.
	Overloads map[string][]*Function

	// Superuser is set when the source calls superuser() or the driver
	// passes --su-session.
	Superuser bool
}

// NewProgram constructs an empty program.
func NewProgram() *Program {
	return &Program{
		Classes:   make(map[string]*ClassInfo),
		Macros:    make(map[string]*MacroInfo),
		Overloads: make(map[string][]*Function),
	}
}

// FindFunction returns the function emitted under the given symbol.
func (p *Program) FindFunction(symbol string) *Function {
	for _, fn := range p.Functions {
		if fn.Name == symbol {
			return fn
		}
	}
	return nil
}

// HasNegOverride reports whether the program defines a unary-negation
// operator override. When it does, folding of -x would change semantics and
// the optimizer disables the affected transforms.
func (p *Program) HasNegOverride() bool {
	for _, fn := range p.Functions {
		if fn.OperatorKind == "unary-" {
			return true
		}
	}
	return false
}
