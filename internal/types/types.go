package types

import "github.com/linescript-lang/linescript/internal/ast"

// Signature describes a callable: a user function, a builtin, or an
// operator overload.
type Signature struct {
	Name   string // emitted symbol
	Params []ast.Type
	Return ast.Type
	Throws []string
}

// IsNumeric reports whether t participates in arithmetic.
func IsNumeric(t ast.Type) bool {
	switch t {
	case ast.TypeI32, ast.TypeI64, ast.TypeF32, ast.TypeF64:
		return true
	}
	return false
}

// IsInt reports whether t is an integer type.
func IsInt(t ast.Type) bool {
	return t == ast.TypeI32 || t == ast.TypeI64
}

// IsFloat reports whether t is a floating type.
func IsFloat(t ast.Type) bool {
	return t == ast.TypeF32 || t == ast.TypeF64
}

// Printable reports whether t can be handed to print/println: any primitive
// except void.
func Printable(t ast.Type) bool {
	switch t {
	case ast.TypeI32, ast.TypeI64, ast.TypeF32, ast.TypeF64, ast.TypeBool, ast.TypeStr:
		return true
	}
	return false
}

// Assignable reports whether a value of type src may be stored into a slot
// of type dst: identical types, or both numeric. Narrowing numeric
// assignments are deliberately accepted here while the overload resolver
// penalizes them; the asymmetry is inherited behavior.
func Assignable(dst, src ast.Type) bool {
	if dst == src {
		return true
	}
	return IsNumeric(dst) && IsNumeric(src)
}

// ConvCost is the per-argument conversion cost for overload ranking:
// 0 exact, 1 safe widening, -1 not convertible.
func ConvCost(from, to ast.Type) int {
	if from == to {
		return 0
	}
	if safeWiden(from, to) {
		return 1
	}
	return -1
}

// safeWiden reports the value-preserving numeric widenings:
// i32 -> {i64, f32, f64}, i64 -> f64, f32 -> f64.
func safeWiden(from, to ast.Type) bool {
	switch from {
	case ast.TypeI32:
		return to == ast.TypeI64 || to == ast.TypeF32 || to == ast.TypeF64
	case ast.TypeI64:
		return to == ast.TypeF64
	case ast.TypeF32:
		return to == ast.TypeF64
	}
	return false
}

// Promote computes the arithmetic result type: if either operand is float
// the wider float wins (f64 dominates), otherwise the wider int.
func Promote(a, b ast.Type) ast.Type {
	if a == ast.TypeF64 || b == ast.TypeF64 {
		return ast.TypeF64
	}
	if a == ast.TypeF32 || b == ast.TypeF32 {
		return ast.TypeF32
	}
	if a == ast.TypeI64 || b == ast.TypeI64 {
		return ast.TypeI64
	}
	return ast.TypeI32
}

// CtorFree maps recognized constructors to their free functions for
// owned-handle validation. The parser holds the same table for delete
// lowering.
var CtorFree = map[string]string{
	"array_new":           "array_free",
	"dict_new":            "dict_free",
	"map_new":             "map_free",
	"object_new":          "object_free",
	"np_new":              "np_free",
	"np_copy":             "np_free",
	"np_from_range":       "np_free",
	"np_linspace":         "np_free",
	"gfx_new":             "gfx_free",
	"pg_surface_new":      "gfx_free",
	"game_new":            "game_free",
	"pg_init":             "game_free",
	"phys_new":            "phys_free",
	"http_server_listen":  "http_server_close",
	"http_client_connect": "http_client_close",
	"result_ok":           "result_free",
	"result_err":          "result_free",
	"option_some":         "option_free",
	"option_none":         "option_free",
}

// FreeForCtor returns the release function for a constructor symbol.
// Synthesized class constructors release through object_free.
func FreeForCtor(name string) (string, bool) {
	if f, ok := CtorFree[name]; ok {
		return f, true
	}
	if len(name) > len("__ls_ctor_") && name[:len("__ls_ctor_")] == "__ls_ctor_" {
		return "object_free", true
	}
	return "", false
}
