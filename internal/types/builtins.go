package types

import "github.com/linescript-lang/linescript/internal/ast"

// Shorthands for the builtin table.
const (
	tI32  = ast.TypeI32
	tI64  = ast.TypeI64
	tF32  = ast.TypeF32
	tF64  = ast.TypeF64
	tBool = ast.TypeBool
	tStr  = ast.TypeStr
	tVoid = ast.TypeVoid
)

type builtinDef struct {
	name   string
	params []ast.Type
	ret    ast.Type
}

// builtinDefs seeds the signatures of every runtime entry point the checker
// knows. print/println, formatOutput, max/min/abs/clamp, the input family
// and spawn are additionally special-cased in the checker because they are
// polymorphic over their arguments.
var builtinDefs = []builtinDef{
	// Per-type print entry points (the polymorphic print/println resolve
	// onto these).
	{"print_i32", []ast.Type{tI32}, tVoid},
	{"print_i64", []ast.Type{tI64}, tVoid},
	{"print_f32", []ast.Type{tF32}, tVoid},
	{"print_f64", []ast.Type{tF64}, tVoid},
	{"print_bool", []ast.Type{tBool}, tVoid},
	{"print_str", []ast.Type{tStr}, tVoid},
	{"println_i32", []ast.Type{tI32}, tVoid},
	{"println_i64", []ast.Type{tI64}, tVoid},
	{"println_f32", []ast.Type{tF32}, tVoid},
	{"println_f64", []ast.Type{tF64}, tVoid},
	{"println_bool", []ast.Type{tBool}, tVoid},
	{"println_str", []ast.Type{tStr}, tVoid},

	// Strings.
	{"str_len", []ast.Type{tStr}, tI64},
	{"str_substring", []ast.Type{tStr, tI64, tI64}, tStr},
	{"str_trim", []ast.Type{tStr}, tStr},
	{"str_replace", []ast.Type{tStr, tStr, tStr}, tStr},
	{"str_concat", []ast.Type{tStr, tStr}, tStr},
	{"str_upper", []ast.Type{tStr}, tStr},
	{"str_lower", []ast.Type{tStr}, tStr},
	{"str_contains", []ast.Type{tStr, tStr}, tBool},
	{"str_starts_with", []ast.Type{tStr, tStr}, tBool},
	{"str_ends_with", []ast.Type{tStr, tStr}, tBool},
	{"str_index_of", []ast.Type{tStr, tStr}, tI64},
	{"str_char_at", []ast.Type{tStr, tI64}, tStr},
	{"str_repeat", []ast.Type{tStr, tI64}, tStr},

	// Raw memory. Uses draw an advisory recommending typed wrappers.
	{"mem_alloc", []ast.Type{tI64}, tI64},
	{"mem_free", []ast.Type{tI64}, tVoid},
	{"mem_read_i32", []ast.Type{tI64}, tI32},
	{"mem_read_i64", []ast.Type{tI64}, tI64},
	{"mem_read_f64", []ast.Type{tI64}, tF64},
	{"mem_write_i32", []ast.Type{tI64, tI32}, tVoid},
	{"mem_write_i64", []ast.Type{tI64, tI64}, tVoid},
	{"mem_write_f64", []ast.Type{tI64, tF64}, tVoid},
	{"mem_copy", []ast.Type{tI64, tI64, tI64}, tVoid},
	{"mem_set", []ast.Type{tI64, tI64, tI64}, tVoid},

	// Arrays (i64 element handles).
	{"array_new", nil, tI64},
	{"array_free", []ast.Type{tI64}, tVoid},
	{"array_len", []ast.Type{tI64}, tI64},
	{"array_get", []ast.Type{tI64, tI64}, tI64},
	{"array_set", []ast.Type{tI64, tI64, tI64}, tVoid},
	{"array_push", []ast.Type{tI64, tI64}, tVoid},
	{"array_pop", []ast.Type{tI64}, tI64},
	{"array_has", []ast.Type{tI64, tI64}, tBool},
	{"array_remove", []ast.Type{tI64, tI64}, tVoid},

	// Dicts (string keyed, string valued).
	{"dict_new", nil, tI64},
	{"dict_free", []ast.Type{tI64}, tVoid},
	{"dict_len", []ast.Type{tI64}, tI64},
	{"dict_get", []ast.Type{tI64, tStr}, tStr},
	{"dict_set", []ast.Type{tI64, tStr, tStr}, tVoid},
	{"dict_has", []ast.Type{tI64, tStr}, tBool},
	{"dict_remove", []ast.Type{tI64, tStr}, tVoid},

	// Maps (i64 keyed, i64 valued).
	{"map_new", nil, tI64},
	{"map_free", []ast.Type{tI64}, tVoid},
	{"map_len", []ast.Type{tI64}, tI64},
	{"map_get", []ast.Type{tI64, tI64}, tI64},
	{"map_set", []ast.Type{tI64, tI64, tI64}, tVoid},
	{"map_has", []ast.Type{tI64, tI64}, tBool},
	{"map_remove", []ast.Type{tI64, tI64}, tVoid},

	// Objects (string keyed, stringly typed store backing class fields).
	{"object_new", nil, tI64},
	{"object_free", []ast.Type{tI64}, tVoid},
	{"object_len", []ast.Type{tI64}, tI64},
	{"object_get", []ast.Type{tI64, tStr}, tStr},
	{"object_set", []ast.Type{tI64, tStr, tStr}, tVoid},
	{"object_has", []ast.Type{tI64, tStr}, tBool},
	{"object_remove", []ast.Type{tI64, tStr}, tVoid},

	// Option and result.
	{"option_some", []ast.Type{tI64}, tI64},
	{"option_none", nil, tI64},
	{"option_is_some", []ast.Type{tI64}, tBool},
	{"option_get", []ast.Type{tI64}, tI64},
	{"option_get_or", []ast.Type{tI64, tI64}, tI64},
	{"option_free", []ast.Type{tI64}, tVoid},
	{"result_ok", []ast.Type{tI64}, tI64},
	{"result_err", []ast.Type{tI64}, tI64},
	{"result_is_ok", []ast.Type{tI64}, tBool},
	{"result_get", []ast.Type{tI64}, tI64},
	{"result_error", []ast.Type{tI64}, tI64},
	{"result_free", []ast.Type{tI64}, tVoid},

	// Numerical vectors.
	{"np_new", []ast.Type{tI64}, tI64},
	{"np_copy", []ast.Type{tI64}, tI64},
	{"np_from_range", []ast.Type{tI64, tI64, tI64}, tI64},
	{"np_linspace", []ast.Type{tF64, tF64, tI64}, tI64},
	{"np_free", []ast.Type{tI64}, tVoid},
	{"np_len", []ast.Type{tI64}, tI64},
	{"np_get", []ast.Type{tI64, tI64}, tF64},
	{"np_set", []ast.Type{tI64, tI64, tF64}, tVoid},
	{"np_fill", []ast.Type{tI64, tF64}, tVoid},
	{"np_add", []ast.Type{tI64, tI64}, tVoid},
	{"np_mul", []ast.Type{tI64, tI64}, tVoid},
	{"np_scale", []ast.Type{tI64, tF64}, tVoid},
	{"np_dot", []ast.Type{tI64, tI64}, tF64},
	{"np_sum", []ast.Type{tI64}, tF64},
	{"np_min", []ast.Type{tI64}, tF64},
	{"np_max", []ast.Type{tI64}, tF64},
	{"np_mean", []ast.Type{tI64}, tF64},

	// Graphics surfaces.
	{"gfx_new", []ast.Type{tI64, tI64}, tI64},
	{"gfx_free", []ast.Type{tI64}, tVoid},
	{"gfx_clear", []ast.Type{tI64, tI64}, tVoid},
	{"gfx_set_pixel", []ast.Type{tI64, tI64, tI64, tI64}, tVoid},
	{"gfx_line", []ast.Type{tI64, tI64, tI64, tI64, tI64, tI64}, tVoid},
	{"gfx_rect", []ast.Type{tI64, tI64, tI64, tI64, tI64, tI64}, tVoid},
	{"gfx_fill_rect", []ast.Type{tI64, tI64, tI64, tI64, tI64, tI64}, tVoid},
	{"gfx_circle", []ast.Type{tI64, tI64, tI64, tI64, tI64}, tVoid},
	{"gfx_present", []ast.Type{tI64}, tVoid},
	{"gfx_save_ppm", []ast.Type{tI64, tStr}, tVoid},

	// Game loop.
	{"game_new", []ast.Type{tI64, tI64, tStr}, tI64},
	{"game_free", []ast.Type{tI64}, tVoid},
	{"game_running", []ast.Type{tI64}, tBool},
	{"game_begin_frame", []ast.Type{tI64}, tVoid},
	{"game_end_frame", []ast.Type{tI64}, tVoid},
	{"game_width", []ast.Type{tI64}, tI64},
	{"game_height", []ast.Type{tI64}, tI64},

	// pygame-flavored shims.
	{"pg_init", []ast.Type{tI64, tI64}, tI64},
	{"pg_surface_new", []ast.Type{tI64, tI64}, tI64},
	{"pg_surface_blit", []ast.Type{tI64, tI64, tI64, tI64}, tVoid},
	{"pg_flip", nil, tVoid},
	{"pg_quit", nil, tVoid},

	// Physics.
	{"phys_new", nil, tI64},
	{"phys_free", []ast.Type{tI64}, tVoid},
	{"phys_set_gravity", []ast.Type{tI64, tF64, tF64}, tVoid},
	{"phys_add_body", []ast.Type{tI64, tF64, tF64, tF64}, tI64},
	{"phys_step", []ast.Type{tI64, tF64}, tVoid},
	{"phys_body_x", []ast.Type{tI64, tI64}, tF64},
	{"phys_body_y", []ast.Type{tI64, tI64}, tF64},
	{"phys_body_set_vel", []ast.Type{tI64, tI64, tF64, tF64}, tVoid},

	// Camera and input devices.
	{"camera_set", []ast.Type{tF64, tF64}, tVoid},
	{"camera_x", nil, tF64},
	{"camera_y", nil, tF64},
	{"camera_zoom", []ast.Type{tF64}, tVoid},
	{"key_down", []ast.Type{tI64}, tBool},
	{"key_down_name", []ast.Type{tStr}, tBool},

	// HTTP client and server.
	{"http_server_listen", []ast.Type{tI64}, tI64},
	{"http_server_close", []ast.Type{tI64}, tVoid},
	{"http_server_accept", []ast.Type{tI64}, tI64},
	{"http_request_path", []ast.Type{tI64}, tStr},
	{"http_request_method", []ast.Type{tI64}, tStr},
	{"http_respond", []ast.Type{tI64, tI64, tStr}, tVoid},
	{"http_client_connect", []ast.Type{tStr, tI64}, tI64},
	{"http_client_close", []ast.Type{tI64}, tVoid},
	{"http_get", []ast.Type{tStr}, tStr},
	{"http_post", []ast.Type{tStr, tStr}, tStr},

	// Scalar-to-string formatting (the polymorphic formatOutput resolves
	// onto these).
	{"format_i32", []ast.Type{tI32}, tStr},
	{"format_i64", []ast.Type{tI64}, tStr},
	{"format_f32", []ast.Type{tF32}, tStr},
	{"format_f64", []ast.Type{tF64}, tStr},
	{"format_bool", []ast.Type{tBool}, tStr},
	{"format_str", []ast.Type{tStr}, tStr},

	// Numeric selection (max/min/abs/clamp resolve onto these).
	{"max_i64", []ast.Type{tI64, tI64}, tI64},
	{"max_f64", []ast.Type{tF64, tF64}, tF64},
	{"min_i64", []ast.Type{tI64, tI64}, tI64},
	{"min_f64", []ast.Type{tF64, tF64}, tF64},
	{"abs_i64", []ast.Type{tI64}, tI64},
	{"abs_f64", []ast.Type{tF64}, tF64},
	{"clamp_i64", []ast.Type{tI64, tI64, tI64}, tI64},
	{"clamp_f64", []ast.Type{tF64, tF64, tF64}, tF64},

	// Console input (the input family resolves onto these).
	{"input", nil, tStr},
	{"input_prompt", []ast.Type{tStr}, tStr},
	{"input_i64", nil, tI64},
	{"input_i64_prompt", []ast.Type{tStr}, tI64},
	{"input_f64", nil, tF64},
	{"input_f64_prompt", []ast.Type{tStr}, tF64},

	// Parsing and conversion.
	{"parse_i64", []ast.Type{tStr}, tI64},
	{"parse_f64", []ast.Type{tStr}, tF64},
	{"i64_to_bool", []ast.Type{tI64}, tBool},
	{"bool_to_i64", []ast.Type{tBool}, tI64},
	{"to_i32", []ast.Type{tI64}, tI32},
	{"to_i64", []ast.Type{tI32}, tI64},
	{"to_f32", []ast.Type{tF64}, tF32},
	{"to_f64", []ast.Type{tF32}, tF64},
	{"i64_to_f64", []ast.Type{tI64}, tF64},
	{"f64_to_i64", []ast.Type{tF64}, tI64},
	{"i64_to_str", []ast.Type{tI64}, tStr},
	{"f64_to_str", []ast.Type{tF64}, tStr},

	// Math.
	{"sqrt", []ast.Type{tF64}, tF64},
	{"sin", []ast.Type{tF64}, tF64},
	{"cos", []ast.Type{tF64}, tF64},
	{"tan", []ast.Type{tF64}, tF64},
	{"atan2", []ast.Type{tF64, tF64}, tF64},
	{"floor", []ast.Type{tF64}, tF64},
	{"ceil", []ast.Type{tF64}, tF64},
	{"round", []ast.Type{tF64}, tF64},
	{"log", []ast.Type{tF64}, tF64},
	{"exp", []ast.Type{tF64}, tF64},
	{"pow_f64", []ast.Type{tF64, tF64}, tF64},
	{"rand", nil, tF64},
	{"rand_i64", []ast.Type{tI64, tI64}, tI64},
	{"pi", nil, tF64},

	// CLI token table.
	{"cli_token_count", nil, tI64},
	{"cli_token", []ast.Type{tI64}, tStr},
	{"cli_has", []ast.Type{tStr}, tBool},
	{"cli_value", []ast.Type{tStr}, tStr},

	// Concurrency and clocks. spawn is special-cased.
	{"await", []ast.Type{tI64}, tVoid},
	{"await_all", nil, tVoid},
	{"clock_ms", nil, tI64},
	{"clock_us", nil, tI64},
	{"sleep_ms", []ast.Type{tI64}, tVoid},

	// Format-mode markers and mode switches.
	{".format", nil, tVoid},
	{".stateSpeed", []ast.Type{tI64}, tVoid},
	{".freeConsole", nil, tVoid},
	{"stateSpeed", []ast.Type{tI64}, tVoid},

	// Process control.
	{"exit", []ast.Type{tI64}, tVoid},
	{"abort", []ast.Type{tStr}, tVoid},

	// Privileged namespace. superuser() flips the compile-time mode as a
	// side effect during parsing; it is also a callable runtime shim.
	{"superuser", nil, tVoid},
	{"su.trace.on", nil, tVoid},
	{"su.trace.off", nil, tVoid},
	{"su.limit.set", []ast.Type{tI64}, tVoid},
	{"su.limit.clear", nil, tVoid},
	{"su.step.limit", []ast.Type{tI64}, tVoid},
	{"su.mem.report", nil, tVoid},
	// Registered but emitted as a placeholder shim.
	{"su.ir.dump", nil, tVoid},
}

// Builtins returns the builtin signature table keyed by name.
func Builtins() map[string][]Signature {
	out := make(map[string][]Signature, len(builtinDefs))
	for _, d := range builtinDefs {
		out[d.name] = append(out[d.name], Signature{
			Name:   d.name,
			Params: d.params,
			Return: d.ret,
		})
	}
	return out
}

// IsBuiltin reports whether name is a seeded runtime entry point.
func IsBuiltin(name string) bool {
	for _, d := range builtinDefs {
		if d.name == name {
			return true
		}
	}
	return false
}
