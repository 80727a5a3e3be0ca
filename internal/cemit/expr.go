package cemit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/linescript-lang/linescript/internal/ast"
	"github.com/linescript-lang/linescript/internal/lexer"
)

// runtimeNameMap renames the builtins whose user-facing spelling collides
// with libc or carries namespace dots.
var runtimeNameMap = map[string]string{
	"rand":             "ls_rand",
	"abort":            "ls_abort",
	"stateSpeed":       "ls_state_speed",
	".stateSpeed":      "ls_state_speed",
	".format":          "ls_format_mode_on",
	".freeConsole":     "ls_free_console",
	"su.trace.on":      "ls_su_trace_on",
	"su.trace.off":     "ls_su_trace_off",
	"su.limit.set":     "ls_su_limit_set",
	"su.limit.clear":   "ls_su_limit_clear",
	"su.step.limit":    "ls_su_step_limit_set",
	"su.mem.report":    "ls_su_mem_report",
	"su.ir.dump":       "ls_su_ir_dump",
}

func (e *Emitter) expr(x ast.Expr) string {
	if x == nil {
		return ""
	}
	switch v := x.(type) {
	case *ast.IntLit:
		return fmt.Sprintf("%dLL", v.Value)

	case *ast.FloatLit:
		return formatCFloat(v.Value)

	case *ast.BoolLit:
		if v.Value {
			return "1"
		}
		return "0"

	case *ast.StrLit:
		return quoteC(v.Value)

	case *ast.Ident:
		return v.Name

	case *ast.Unary:
		if v.OverrideFn != "" {
			return fmt.Sprintf("%s(%s)", symName(v.OverrideFn), e.expr(v.Operand))
		}
		switch v.Op {
		case lexer.MINUS:
			return fmt.Sprintf("(-%s)", e.expr(v.Operand))
		case lexer.BANG:
			return fmt.Sprintf("(!%s)", e.expr(v.Operand))
		}
		return e.expr(v.Operand)

	case *ast.Binary:
		return e.binary(v)

	case *ast.Call:
		return e.call(v)
	}
	return ""
}

func (e *Emitter) binary(v *ast.Binary) string {
	if v.OverrideFn != "" {
		return fmt.Sprintf("%s(%s, %s)", symName(v.OverrideFn), e.expr(v.Left), e.expr(v.Right))
	}

	left, right := e.expr(v.Left), e.expr(v.Right)

	// String comparisons go through the runtime, never pointer compare.
	if v.Left.Inf() == ast.TypeStr && v.Right.Inf() == ast.TypeStr {
		switch v.Op {
		case lexer.EQ:
			return fmt.Sprintf("ls_str_eq(%s, %s)", left, right)
		case lexer.NOT_EQ:
			return fmt.Sprintf("ls_str_neq(%s, %s)", left, right)
		case lexer.LT, lexer.LE, lexer.GT, lexer.GE:
			return fmt.Sprintf("(strcmp(%s, %s) %s 0)", left, right, v.Op)
		}
	}

	if v.Op == lexer.POW {
		if v.Inf() == ast.TypeF64 || v.Inf() == ast.TypeF32 {
			return fmt.Sprintf("pow(%s, %s)", left, right)
		}
		return fmt.Sprintf("ls_pow_i64(%s, %s)", left, right)
	}

	op := string(v.Op)
	return fmt.Sprintf("(%s %s %s)", left, op, right)
}

func (e *Emitter) call(v *ast.Call) string {
	name := v.Name
	if mapped, ok := runtimeNameMap[name]; ok {
		name = mapped
	}

	if name == "spawn" {
		// The checker guarantees the argument is a zero-argument call to a
		// resolved void function; the task carries the function pointer.
		if task, ok := v.Args[0].(*ast.Call); ok {
			return fmt.Sprintf("ls_spawn(%s)", symName(task.Name))
		}
		return "ls_spawn(0)"
	}
	if name == "superuser" {
		return "superuser()"
	}
	if name == "exit" {
		return fmt.Sprintf("exit((int)%s)", e.expr(v.Args[0]))
	}

	target := e.prog.FindFunction(v.Name)
	args := make([]string, len(v.Args))
	for i, a := range v.Args {
		arg := e.expr(a)
		// Non-literal string arguments crossing into user functions are
		// held so the callee outlives the scratch ring rotation.
		if target != nil && i < len(target.Params) && target.Params[i].Type == ast.TypeStr {
			if _, isLit := a.(*ast.StrLit); !isLit {
				arg = "ls_str_hold(" + arg + ")"
			}
		}
		args[i] = arg
	}
	return fmt.Sprintf("%s(%s)", symName(name), strings.Join(args, ", "))
}

// formatCFloat renders a float literal at 17 significant digits with a
// guaranteed decimal point.
func formatCFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', 17, 64)
	if !strings.Contains(s, ".") {
		if i := strings.IndexAny(s, "eE"); i >= 0 {
			s = s[:i] + ".0" + s[i:]
		} else {
			s += ".0"
		}
	}
	return s
}

// quoteC renders a C string literal with the supported escapes.
func quoteC(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			if c < 32 || c > 126 {
				fmt.Fprintf(&sb, `\x%02x`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
