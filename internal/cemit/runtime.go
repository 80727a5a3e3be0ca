package cemit

// Runtime template text inlined verbatim into the generated translation
// unit. The dependency scanner decides which level and which optional
// segments are emitted; the compiler core only guarantees the symbol
// surface, the bodies are runtime-library territory.

// runtimeI128 is the 128-bit integer typedef every build gets, with the
// MSVC fallback.
const runtimeI128 = `
#if defined(_MSC_VER)
typedef int64_t LS_I128; /* no native 128-bit; strength-reduced code avoided */
#else
typedef __int128 LS_I128;
#endif
`

// runtimePrelude carries the superuser global state; it needs stdio and is
// skipped on the CRT-free ultra-minimal level.
const runtimePrelude = `

static int ls_su_enabled = 0;
static long long ls_su_step_limit = 0;
static long long ls_su_steps = 0;
static long long ls_su_mem_limit = 0;
static long long ls_su_mem_used = 0;
static int ls_su_trace = 0;

static void ls_su_guard_step(void) {
    if (!ls_su_enabled) return;
    ls_su_steps++;
    if (ls_su_step_limit > 0 && ls_su_steps > ls_su_step_limit) {
        fputs("superuser: step limit exceeded\n", stderr);
        exit(3);
    }
}

static void ls_su_trace_stmt(const char *fn, int line, const char *kind) {
    if (!ls_su_enabled || !ls_su_trace) return;
    fprintf(stderr, "[su] %s:%d %s\n", fn, line, kind);
}

static void superuser(void) { ls_su_enabled = 1; }
static void ls_su_trace_on(void) { ls_su_trace = 1; }
static void ls_su_trace_off(void) { ls_su_trace = 0; }
static void ls_su_limit_set(int64_t bytes) { ls_su_mem_limit = bytes; }
static void ls_su_limit_clear(void) { ls_su_mem_limit = 0; }
static void ls_su_step_limit_set(int64_t n) { ls_su_step_limit = n; }
static void ls_su_mem_report(void) {
    fprintf(stderr, "[su] mem used=%lld limit=%lld\n", ls_su_mem_used, ls_su_mem_limit);
}
static void ls_su_ir_dump(void) {
    /* placeholder: typed IR is not carried into the binary */
    fputs("[su] ir dump unavailable at runtime\n", stderr);
}
`

// runtimeParallelMacros is the OpenMP-by-pragma block. OpenMP is engaged
// via _Pragma, never via a header.
const runtimeParallelMacros = `
#ifndef LS_PAR_MIN_ITERS
#define LS_PAR_MIN_ITERS 4096
#endif
#if defined(_OPENMP)
#define LS_PAR_FOR _Pragma("omp parallel for")
#define LS_PAR_FOR_IF(c) _Pragma("omp parallel for if(c)")
#define LS_OMP_SIMD _Pragma("omp simd")
#define LS_OMP_SIMD_REDUCTION_PLUS(v) _Pragma("omp simd reduction(+:v)")
#define LS_OMP_SIMD_REDUCTION_PLUS2(a,b) _Pragma("omp simd reduction(+:a,b)")
#define LS_OMP_SIMD_REDUCTION_PLUS3(a,b,c) _Pragma("omp simd reduction(+:a,b,c)")
#define LS_OMP_SIMD_REDUCTION_PLUS4(a,b,c,d) _Pragma("omp simd reduction(+:a,b,c,d)")
#else
#define LS_PAR_FOR
#define LS_PAR_FOR_IF(c)
#define LS_OMP_SIMD
#define LS_OMP_SIMD_REDUCTION_PLUS(v)
#define LS_OMP_SIMD_REDUCTION_PLUS2(a,b)
#define LS_OMP_SIMD_REDUCTION_PLUS3(a,b,c)
#define LS_OMP_SIMD_REDUCTION_PLUS4(a,b,c,d)
#endif
#if defined(__clang__)
#define LS_VEC_HINT _Pragma("clang loop vectorize(enable)")
#elif defined(__GNUC__)
#define LS_VEC_HINT _Pragma("GCC ivdep")
#else
#define LS_VEC_HINT
#endif

static int64_t ls_trip_count(int64_t start, int64_t stop, int64_t step) {
    if (step > 0) return stop > start ? (stop - start + step - 1) / step : 0;
    if (step < 0) return start > stop ? (start - stop - step - 1) / (-step) : 0;
    return 0;
}
`

// runtimeUltraMinimal is the Windows-only CRT-free level: direct WriteFile
// and ExitProcess, integers only.
const runtimeUltraMinimal = `
static void ls_raw_write(const char *p, int n) {
    DWORD written;
    WriteFile(GetStdHandle(STD_OUTPUT_HANDLE), p, (DWORD)n, &written, 0);
}

static void print_str(const char *s) {
    int n = 0;
    while (s[n]) n++;
    ls_raw_write(s, n);
}
static void println_str(const char *s) { print_str(s); ls_raw_write("\n", 1); }

static void print_i64(int64_t v) {
    char buf[24];
    int i = 24;
    unsigned long long u = v < 0 ? (unsigned long long)(-(v + 1)) + 1 : (unsigned long long)v;
    if (u == 0) buf[--i] = '0';
    while (u) { buf[--i] = (char)('0' + u % 10); u /= 10; }
    if (v < 0) buf[--i] = '-';
    ls_raw_write(buf + i, 24 - i);
}
static void println_i64(int64_t v) { print_i64(v); ls_raw_write("\n", 1); }
static void print_i32(int32_t v) { print_i64(v); }
static void println_i32(int32_t v) { println_i64(v); }
static void print_bool(int v) { print_str(v ? "true" : "false"); }
static void println_bool(int v) { print_bool(v); ls_raw_write("\n", 1); }
static void ls_format_mode_on(void) {}
static void ls_free_console(void) { FreeConsole(); }
`

// runtimeMinimal is the stdio level: print entry points over fputs and
// snprintf, nothing heap-managed.
const runtimeMinimal = `
static void print_str(const char *s) { fputs(s, stdout); }
static void println_str(const char *s) { fputs(s, stdout); fputc('\n', stdout); }
static void print_i64(int64_t v) { printf("%lld", (long long)v); }
static void println_i64(int64_t v) { printf("%lld\n", (long long)v); }
static void print_i32(int32_t v) { printf("%d", v); }
static void println_i32(int32_t v) { printf("%d\n", v); }
static void print_f64(double v) { printf("%g", v); }
static void println_f64(double v) { printf("%g\n", v); }
static void print_f32(float v) { printf("%g", (double)v); }
static void println_f32(float v) { printf("%g\n", (double)v); }
static void print_bool(int v) { fputs(v ? "true" : "false", stdout); }
static void println_bool(int v) { fputs(v ? "true\n" : "false\n", stdout); }
static void ls_state_speed(int64_t mode) { (void)mode; }

static char ls_min_fmt[64];
static const char *format_i64(int64_t v) { snprintf(ls_min_fmt, sizeof ls_min_fmt, "%lld", (long long)v); return ls_min_fmt; }
static const char *format_i32(int32_t v) { return format_i64(v); }
static const char *format_f64(double v) { snprintf(ls_min_fmt, sizeof ls_min_fmt, "%g", v); return ls_min_fmt; }
static const char *format_f32(float v) { return format_f64((double)v); }
static const char *format_bool(int v) { return v ? "true" : "false"; }
static const char *format_str(const char *s) { return s; }
static int ls_format_mode = 0;
static void ls_format_mode_on(void) { ls_format_mode = 1; }
static void ls_free_console(void) { fflush(stdout); }
`

// runtimeStrings is the scratch-ring string discipline plus the
// thread-local format buffer. Short-lived values rotate through the ring;
// ls_str_hold promotes anything that must survive a call boundary.
const runtimeStrings = `
#define LS_SCRATCH_SLOTS 64
#define LS_SCRATCH_LEN 256
static LS_THREAD_LOCAL char ls_scratch[LS_SCRATCH_SLOTS][LS_SCRATCH_LEN];
static LS_THREAD_LOCAL int ls_scratch_next = 0;

static char *ls_scratch_take(void) {
    char *p = ls_scratch[ls_scratch_next];
    ls_scratch_next = (ls_scratch_next + 1) % LS_SCRATCH_SLOTS;
    return p;
}

static const char *ls_str_hold(const char *s) {
    size_t n = strlen(s) + 1;
    char *p = (char *)malloc(n);
    memcpy(p, s, n);
    return p;
}

static int ls_str_eq(const char *a, const char *b) { return strcmp(a, b) == 0; }
static int ls_str_neq(const char *a, const char *b) { return strcmp(a, b) != 0; }

#define LS_FORMAT_CAP 65536
static LS_THREAD_LOCAL char ls_format_buf[LS_FORMAT_CAP];
static LS_THREAD_LOCAL size_t ls_format_len = 0;
static LS_THREAD_LOCAL int ls_format_active = 0;
static int ls_format_mode = 0;

static void ls_emit_text(const char *s) {
    if (ls_format_active) {
        size_t n = strlen(s);
        if (ls_format_len + n >= LS_FORMAT_CAP) n = LS_FORMAT_CAP - 1 - ls_format_len;
        memcpy(ls_format_buf + ls_format_len, s, n);
        ls_format_len += n;
        ls_format_buf[ls_format_len] = 0;
        return;
    }
    fputs(s, stdout);
}

static void ls_format_begin(void) {
    ls_format_active++;
    ls_format_len = 0;
    ls_format_buf[0] = 0;
}

static const char *ls_format_end(const char *tail) {
    size_t n = strlen(tail);
    if (ls_format_len + n >= LS_FORMAT_CAP) n = LS_FORMAT_CAP - 1 - ls_format_len;
    memcpy(ls_format_buf + ls_format_len, tail, n);
    ls_format_len += n;
    ls_format_buf[ls_format_len] = 0;
    ls_format_active--;
    return ls_str_hold(ls_format_buf);
}

static void ls_format_mode_on(void) { ls_format_mode = 1; }
static void ls_free_console(void) { fflush(stdout); }

static const char *format_i64(int64_t v) {
    char *p = ls_scratch_take();
    snprintf(p, LS_SCRATCH_LEN, "%lld", (long long)v);
    return p;
}
static const char *format_i32(int32_t v) { return format_i64(v); }
static const char *format_f64(double v) {
    char *p = ls_scratch_take();
    snprintf(p, LS_SCRATCH_LEN, "%g", v);
    return p;
}
static const char *format_f32(float v) { return format_f64((double)v); }
static const char *format_bool(int v) { return v ? "true" : "false"; }
static const char *format_str(const char *s) { return s; }

static void print_str(const char *s) { ls_emit_text(s); }
static void println_str(const char *s) { ls_emit_text(s); ls_emit_text("\n"); }
static void print_i64(int64_t v) { ls_emit_text(format_i64(v)); }
static void println_i64(int64_t v) { print_i64(v); ls_emit_text("\n"); }
static void print_i32(int32_t v) { print_i64(v); }
static void println_i32(int32_t v) { println_i64(v); }
static void print_f64(double v) { ls_emit_text(format_f64(v)); }
static void println_f64(double v) { print_f64(v); ls_emit_text("\n"); }
static void print_f32(float v) { print_f64((double)v); }
static void println_f32(float v) { println_f64((double)v); }
static void print_bool(int v) { ls_emit_text(format_bool(v)); }
static void println_bool(int v) { print_bool(v); ls_emit_text("\n"); }

static int64_t str_len(const char *s) { return (int64_t)strlen(s); }
static const char *str_concat(const char *a, const char *b) {
    size_t la = strlen(a), lb = strlen(b);
    char *p = (char *)malloc(la + lb + 1);
    memcpy(p, a, la);
    memcpy(p + la, b, lb + 1);
    return p;
}
static const char *str_substring(const char *s, int64_t from, int64_t to) {
    int64_t n = (int64_t)strlen(s);
    if (from < 0) from = 0;
    if (to > n) to = n;
    if (to < from) to = from;
    char *p = (char *)malloc((size_t)(to - from) + 1);
    memcpy(p, s + from, (size_t)(to - from));
    p[to - from] = 0;
    return p;
}
static const char *str_trim(const char *s) {
    while (*s && isspace((unsigned char)*s)) s++;
    size_t n = strlen(s);
    while (n > 0 && isspace((unsigned char)s[n - 1])) n--;
    char *p = (char *)malloc(n + 1);
    memcpy(p, s, n);
    p[n] = 0;
    return p;
}
static const char *str_replace(const char *s, const char *from, const char *to) {
    size_t lf = strlen(from);
    if (lf == 0) return s;
    size_t cap = strlen(s) * (strlen(to) + 1) + 1;
    char *out = (char *)malloc(cap);
    size_t w = 0;
    while (*s) {
        if (strncmp(s, from, lf) == 0) {
            size_t lt = strlen(to);
            memcpy(out + w, to, lt);
            w += lt;
            s += lf;
        } else {
            out[w++] = *s++;
        }
    }
    out[w] = 0;
    return out;
}
static const char *str_upper(const char *s) {
    size_t n = strlen(s);
    char *p = (char *)malloc(n + 1);
    for (size_t i = 0; i <= n; i++) p[i] = (char)toupper((unsigned char)s[i]);
    return p;
}
static const char *str_lower(const char *s) {
    size_t n = strlen(s);
    char *p = (char *)malloc(n + 1);
    for (size_t i = 0; i <= n; i++) p[i] = (char)tolower((unsigned char)s[i]);
    return p;
}
static int str_contains(const char *s, const char *sub) { return strstr(s, sub) != 0; }
static int str_starts_with(const char *s, const char *p) { return strncmp(s, p, strlen(p)) == 0; }
static int str_ends_with(const char *s, const char *p) {
    size_t ls_ = strlen(s), lp = strlen(p);
    return lp <= ls_ && strcmp(s + ls_ - lp, p) == 0;
}
static int64_t str_index_of(const char *s, const char *sub) {
    const char *p = strstr(s, sub);
    return p ? (int64_t)(p - s) : -1;
}
static const char *str_char_at(const char *s, int64_t i) {
    char *p = ls_scratch_take();
    if (i < 0 || i >= (int64_t)strlen(s)) { p[0] = 0; return p; }
    p[0] = s[i];
    p[1] = 0;
    return p;
}
static const char *str_repeat(const char *s, int64_t n) {
    size_t l = strlen(s);
    char *p = (char *)malloc(l * (size_t)(n > 0 ? n : 0) + 1);
    char *w = p;
    for (int64_t i = 0; i < n; i++) { memcpy(w, s, l); w += l; }
    *w = 0;
    return p;
}

static int64_t parse_i64(const char *s) { return strtoll(s, 0, 10); }
static double parse_f64(const char *s) { return strtod(s, 0); }
static int i64_to_bool(int64_t v) { return v != 0; }
static int64_t bool_to_i64(int v) { return v ? 1 : 0; }
static int32_t to_i32(int64_t v) { return (int32_t)v; }
static int64_t to_i64(int32_t v) { return (int64_t)v; }
static float to_f32(double v) { return (float)v; }
static double to_f64(float v) { return (double)v; }
static double i64_to_f64(int64_t v) { return (double)v; }
static int64_t f64_to_i64(double v) { return (int64_t)v; }
static const char *i64_to_str(int64_t v) { return format_i64(v); }
static const char *f64_to_str(double v) { return format_f64(v); }

static const char *input(void) {
    char *p = ls_scratch_take();
    if (!fgets(p, LS_SCRATCH_LEN, stdin)) { p[0] = 0; return p; }
    size_t n = strlen(p);
    if (n && p[n - 1] == '\n') p[n - 1] = 0;
    return p;
}
static const char *input_prompt(const char *prompt) { fputs(prompt, stdout); fflush(stdout); return input(); }
static int64_t input_i64(void) { return parse_i64(input()); }
static int64_t input_i64_prompt(const char *prompt) { return parse_i64(input_prompt(prompt)); }
static double input_f64(void) { return parse_f64(input()); }
static double input_f64_prompt(const char *prompt) { return parse_f64(input_prompt(prompt)); }
`

// runtimeCore is the handle-table heart of the full runtime: arrays,
// dicts, maps, objects, options, results, raw memory, math, vectors,
// clocks, CLI tokens and the thread pool. Tables are fixed-size slot
// stores; allocation scans for the first unused slot (there is no
// free-list) and exhaustion returns -1.
const runtimeCore = `
static int64_t ls_state_speed_mode = 0;
static void ls_state_speed(int64_t mode) { ls_state_speed_mode = mode; }

static void *ls_mem_alloc(size_t n) {
    if (ls_su_enabled && ls_su_mem_limit > 0 &&
        ls_su_mem_used + (long long)n > ls_su_mem_limit) {
        fputs("superuser: memory budget exceeded\n", stderr);
        exit(3);
    }
    ls_su_mem_used += (long long)n;
    return malloc(n);
}

static int64_t mem_alloc(int64_t n) { return (int64_t)(intptr_t)ls_mem_alloc((size_t)n); }
static void mem_free(int64_t p) { free((void *)(intptr_t)p); }
static int32_t mem_read_i32(int64_t p) { return *(int32_t *)(intptr_t)p; }
static int64_t mem_read_i64(int64_t p) { return *(int64_t *)(intptr_t)p; }
static double mem_read_f64(int64_t p) { return *(double *)(intptr_t)p; }
static void mem_write_i32(int64_t p, int32_t v) { *(int32_t *)(intptr_t)p = v; }
static void mem_write_i64(int64_t p, int64_t v) { *(int64_t *)(intptr_t)p = v; }
static void mem_write_f64(int64_t p, double v) { *(double *)(intptr_t)p = v; }
static void mem_copy(int64_t dst, int64_t src, int64_t n) {
    memcpy((void *)(intptr_t)dst, (void *)(intptr_t)src, (size_t)n);
}
static void mem_set(int64_t dst, int64_t byte, int64_t n) {
    memset((void *)(intptr_t)dst, (int)byte, (size_t)n);
}

#define LS_TABLE_CAP 4096

typedef struct { int64_t *items; int64_t len, cap; int used; } LsArray;
static LsArray ls_arrays[LS_TABLE_CAP];

static int64_t array_new(void) {
    for (int i = 0; i < LS_TABLE_CAP; i++) {
        if (!ls_arrays[i].used) {
            ls_arrays[i].used = 1;
            ls_arrays[i].len = 0;
            ls_arrays[i].cap = 8;
            ls_arrays[i].items = (int64_t *)ls_mem_alloc(8 * sizeof(int64_t));
            return i;
        }
    }
    return -1;
}
static void array_free(int64_t h) {
    if (h < 0 || h >= LS_TABLE_CAP || !ls_arrays[h].used) return;
    free(ls_arrays[h].items);
    ls_arrays[h].used = 0;
}
static int64_t array_len(int64_t h) { return ls_arrays[h].len; }
static int64_t array_get(int64_t h, int64_t i) {
    if (i < 0 || i >= ls_arrays[h].len) return 0;
    return ls_arrays[h].items[i];
}
static void array_set(int64_t h, int64_t i, int64_t v) {
    if (i >= 0 && i < ls_arrays[h].len) ls_arrays[h].items[i] = v;
}
static void array_push(int64_t h, int64_t v) {
    LsArray *a = &ls_arrays[h];
    if (a->len == a->cap) {
        a->cap *= 2;
        a->items = (int64_t *)realloc(a->items, (size_t)a->cap * sizeof(int64_t));
    }
    a->items[a->len++] = v;
}
static int64_t array_pop(int64_t h) {
    LsArray *a = &ls_arrays[h];
    return a->len > 0 ? a->items[--a->len] : 0;
}
static int array_has(int64_t h, int64_t v) {
    for (int64_t i = 0; i < ls_arrays[h].len; i++)
        if (ls_arrays[h].items[i] == v) return 1;
    return 0;
}
static void array_remove(int64_t h, int64_t i) {
    LsArray *a = &ls_arrays[h];
    if (i < 0 || i >= a->len) return;
    memmove(a->items + i, a->items + i + 1, (size_t)(a->len - i - 1) * sizeof(int64_t));
    a->len--;
}

typedef struct { char **keys; char **vals; int64_t len, cap; int used; } LsDict;
static LsDict ls_dicts[LS_TABLE_CAP];

static int64_t dict_new(void) {
    for (int i = 0; i < LS_TABLE_CAP; i++) {
        if (!ls_dicts[i].used) {
            ls_dicts[i].used = 1;
            ls_dicts[i].len = 0;
            ls_dicts[i].cap = 8;
            ls_dicts[i].keys = (char **)ls_mem_alloc(8 * sizeof(char *));
            ls_dicts[i].vals = (char **)ls_mem_alloc(8 * sizeof(char *));
            return i;
        }
    }
    return -1;
}
static void dict_free(int64_t h) {
    if (h < 0 || h >= LS_TABLE_CAP || !ls_dicts[h].used) return;
    for (int64_t i = 0; i < ls_dicts[h].len; i++) { free(ls_dicts[h].keys[i]); free(ls_dicts[h].vals[i]); }
    free(ls_dicts[h].keys);
    free(ls_dicts[h].vals);
    ls_dicts[h].used = 0;
}
static int64_t ls_dict_find(LsDict *d, const char *k) {
    for (int64_t i = 0; i < d->len; i++)
        if (strcmp(d->keys[i], k) == 0) return i;
    return -1;
}
static int64_t dict_len(int64_t h) { return ls_dicts[h].len; }
static const char *dict_get(int64_t h, const char *k) {
    int64_t i = ls_dict_find(&ls_dicts[h], k);
    return i >= 0 ? ls_dicts[h].vals[i] : "";
}
static void dict_set(int64_t h, const char *k, const char *v) {
    LsDict *d = &ls_dicts[h];
    int64_t i = ls_dict_find(d, k);
    if (i >= 0) {
        free(d->vals[i]);
        d->vals[i] = (char *)ls_str_hold(v);
        return;
    }
    if (d->len == d->cap) {
        d->cap *= 2;
        d->keys = (char **)realloc(d->keys, (size_t)d->cap * sizeof(char *));
        d->vals = (char **)realloc(d->vals, (size_t)d->cap * sizeof(char *));
    }
    d->keys[d->len] = (char *)ls_str_hold(k);
    d->vals[d->len] = (char *)ls_str_hold(v);
    d->len++;
}
static int dict_has(int64_t h, const char *k) { return ls_dict_find(&ls_dicts[h], k) >= 0; }
static void dict_remove(int64_t h, const char *k) {
    LsDict *d = &ls_dicts[h];
    int64_t i = ls_dict_find(d, k);
    if (i < 0) return;
    free(d->keys[i]);
    free(d->vals[i]);
    d->keys[i] = d->keys[d->len - 1];
    d->vals[i] = d->vals[d->len - 1];
    d->len--;
}

typedef struct { int64_t *keys; int64_t *vals; int64_t len, cap; int used; } LsMap;
static LsMap ls_maps[LS_TABLE_CAP];

static int64_t map_new(void) {
    for (int i = 0; i < LS_TABLE_CAP; i++) {
        if (!ls_maps[i].used) {
            ls_maps[i].used = 1;
            ls_maps[i].len = 0;
            ls_maps[i].cap = 8;
            ls_maps[i].keys = (int64_t *)ls_mem_alloc(8 * sizeof(int64_t));
            ls_maps[i].vals = (int64_t *)ls_mem_alloc(8 * sizeof(int64_t));
            return i;
        }
    }
    return -1;
}
static void map_free(int64_t h) {
    if (h < 0 || h >= LS_TABLE_CAP || !ls_maps[h].used) return;
    free(ls_maps[h].keys);
    free(ls_maps[h].vals);
    ls_maps[h].used = 0;
}
static int64_t ls_map_find(LsMap *m, int64_t k) {
    for (int64_t i = 0; i < m->len; i++)
        if (m->keys[i] == k) return i;
    return -1;
}
static int64_t map_len(int64_t h) { return ls_maps[h].len; }
static int64_t map_get(int64_t h, int64_t k) {
    int64_t i = ls_map_find(&ls_maps[h], k);
    return i >= 0 ? ls_maps[h].vals[i] : 0;
}
static void map_set(int64_t h, int64_t k, int64_t v) {
    LsMap *m = &ls_maps[h];
    int64_t i = ls_map_find(m, k);
    if (i >= 0) { m->vals[i] = v; return; }
    if (m->len == m->cap) {
        m->cap *= 2;
        m->keys = (int64_t *)realloc(m->keys, (size_t)m->cap * sizeof(int64_t));
        m->vals = (int64_t *)realloc(m->vals, (size_t)m->cap * sizeof(int64_t));
    }
    m->keys[m->len] = k;
    m->vals[m->len] = v;
    m->len++;
}
static int map_has(int64_t h, int64_t k) { return ls_map_find(&ls_maps[h], k) >= 0; }
static void map_remove(int64_t h, int64_t k) {
    LsMap *m = &ls_maps[h];
    int64_t i = ls_map_find(m, k);
    if (i < 0) return;
    m->keys[i] = m->keys[m->len - 1];
    m->vals[i] = m->vals[m->len - 1];
    m->len--;
}

/* Objects back class instances: a string-keyed, string-valued store. */
static int64_t object_new(void) { return dict_new(); }
static void object_free(int64_t h) { dict_free(h); }
static int64_t object_len(int64_t h) { return dict_len(h); }
static const char *object_get(int64_t h, const char *k) { return dict_get(h, k); }
static void object_set(int64_t h, const char *k, const char *v) { dict_set(h, k, v); }
static int object_has(int64_t h, const char *k) { return dict_has(h, k); }
static void object_remove(int64_t h, const char *k) { dict_remove(h, k); }

typedef struct { int64_t value; int some; int used; } LsOption;
static LsOption ls_options[LS_TABLE_CAP];

static int64_t ls_option_take(int64_t value, int some) {
    for (int i = 0; i < LS_TABLE_CAP; i++) {
        if (!ls_options[i].used) {
            ls_options[i].used = 1;
            ls_options[i].value = value;
            ls_options[i].some = some;
            return i;
        }
    }
    return -1;
}
static int64_t option_some(int64_t v) { return ls_option_take(v, 1); }
static int64_t option_none(void) { return ls_option_take(0, 0); }
static int option_is_some(int64_t h) { return ls_options[h].some; }
static int64_t option_get(int64_t h) { return ls_options[h].value; }
static int64_t option_get_or(int64_t h, int64_t dflt) { return ls_options[h].some ? ls_options[h].value : dflt; }
static void option_free(int64_t h) {
    if (h >= 0 && h < LS_TABLE_CAP) ls_options[h].used = 0;
}

typedef struct { int64_t value; int64_t err; int ok; int used; } LsResult;
static LsResult ls_results[LS_TABLE_CAP];

static int64_t ls_result_take(int64_t value, int64_t err, int ok) {
    for (int i = 0; i < LS_TABLE_CAP; i++) {
        if (!ls_results[i].used) {
            ls_results[i].used = 1;
            ls_results[i].value = value;
            ls_results[i].err = err;
            ls_results[i].ok = ok;
            return i;
        }
    }
    return -1;
}
static int64_t result_ok(int64_t v) { return ls_result_take(v, 0, 1); }
static int64_t result_err(int64_t e) { return ls_result_take(0, e, 0); }
static int result_is_ok(int64_t h) { return ls_results[h].ok; }
static int64_t result_get(int64_t h) { return ls_results[h].value; }
static int64_t result_error(int64_t h) { return ls_results[h].err; }
static void result_free(int64_t h) {
    if (h >= 0 && h < LS_TABLE_CAP) ls_results[h].used = 0;
}

typedef struct { double *items; int64_t len; int used; } LsVec;
static LsVec ls_vecs[LS_TABLE_CAP];

static int64_t ls_vec_take(int64_t len) {
    for (int i = 0; i < LS_TABLE_CAP; i++) {
        if (!ls_vecs[i].used) {
            ls_vecs[i].used = 1;
            ls_vecs[i].len = len;
            ls_vecs[i].items = (double *)ls_mem_alloc((size_t)len * sizeof(double));
            memset(ls_vecs[i].items, 0, (size_t)len * sizeof(double));
            return i;
        }
    }
    return -1;
}
static int64_t np_new(int64_t len) { return ls_vec_take(len); }
static int64_t np_copy(int64_t h) {
    int64_t out = ls_vec_take(ls_vecs[h].len);
    if (out >= 0) memcpy(ls_vecs[out].items, ls_vecs[h].items, (size_t)ls_vecs[h].len * sizeof(double));
    return out;
}
static int64_t np_from_range(int64_t start, int64_t stop, int64_t step) {
    int64_t n = ls_trip_count(start, stop, step);
    int64_t out = ls_vec_take(n);
    if (out >= 0)
        for (int64_t k = 0; k < n; k++) ls_vecs[out].items[k] = (double)(start + k * step);
    return out;
}
static int64_t np_linspace(double a, double b, int64_t n) {
    int64_t out = ls_vec_take(n);
    if (out >= 0 && n > 1)
        for (int64_t k = 0; k < n; k++) ls_vecs[out].items[k] = a + (b - a) * (double)k / (double)(n - 1);
    else if (out >= 0 && n == 1)
        ls_vecs[out].items[0] = a;
    return out;
}
static void np_free(int64_t h) {
    if (h < 0 || h >= LS_TABLE_CAP || !ls_vecs[h].used) return;
    free(ls_vecs[h].items);
    ls_vecs[h].used = 0;
}
static int64_t np_len(int64_t h) { return ls_vecs[h].len; }
static double np_get(int64_t h, int64_t i) { return i >= 0 && i < ls_vecs[h].len ? ls_vecs[h].items[i] : 0; }
static void np_set(int64_t h, int64_t i, double v) {
    if (i >= 0 && i < ls_vecs[h].len) ls_vecs[h].items[i] = v;
}
static void np_fill(int64_t h, double v) {
    for (int64_t i = 0; i < ls_vecs[h].len; i++) ls_vecs[h].items[i] = v;
}
static void np_add(int64_t a, int64_t b) {
    int64_t n = ls_vecs[a].len < ls_vecs[b].len ? ls_vecs[a].len : ls_vecs[b].len;
    for (int64_t i = 0; i < n; i++) ls_vecs[a].items[i] += ls_vecs[b].items[i];
}
static void np_mul(int64_t a, int64_t b) {
    int64_t n = ls_vecs[a].len < ls_vecs[b].len ? ls_vecs[a].len : ls_vecs[b].len;
    for (int64_t i = 0; i < n; i++) ls_vecs[a].items[i] *= ls_vecs[b].items[i];
}
static void np_scale(int64_t a, double v) {
    for (int64_t i = 0; i < ls_vecs[a].len; i++) ls_vecs[a].items[i] *= v;
}
static double np_dot(int64_t a, int64_t b) {
    double acc = 0;
    int64_t n = ls_vecs[a].len < ls_vecs[b].len ? ls_vecs[a].len : ls_vecs[b].len;
    for (int64_t i = 0; i < n; i++) acc += ls_vecs[a].items[i] * ls_vecs[b].items[i];
    return acc;
}
static double np_sum(int64_t h) {
    double acc = 0;
    for (int64_t i = 0; i < ls_vecs[h].len; i++) acc += ls_vecs[h].items[i];
    return acc;
}
static double np_min(int64_t h) {
    double best = ls_vecs[h].len ? ls_vecs[h].items[0] : 0;
    for (int64_t i = 1; i < ls_vecs[h].len; i++)
        if (ls_vecs[h].items[i] < best) best = ls_vecs[h].items[i];
    return best;
}
static double np_max(int64_t h) {
    double best = ls_vecs[h].len ? ls_vecs[h].items[0] : 0;
    for (int64_t i = 1; i < ls_vecs[h].len; i++)
        if (ls_vecs[h].items[i] > best) best = ls_vecs[h].items[i];
    return best;
}
static double np_mean(int64_t h) { return ls_vecs[h].len ? np_sum(h) / (double)ls_vecs[h].len : 0; }

static int64_t ls_pow_i64(int64_t base, int64_t exp) {
    int64_t out = 1;
    while (exp > 0) {
        if (exp & 1) out *= base;
        base *= base;
        exp >>= 1;
    }
    return out;
}
static double pow_f64(double a, double b) { return pow(a, b); }
static int64_t max_i64(int64_t a, int64_t b) { return a > b ? a : b; }
static double max_f64(double a, double b) { return a > b ? a : b; }
static int64_t min_i64(int64_t a, int64_t b) { return a < b ? a : b; }
static double min_f64(double a, double b) { return a < b ? a : b; }
static int64_t abs_i64(int64_t v) { return v < 0 ? -v : v; }
static double abs_f64(double v) { return v < 0 ? -v : v; }
static int64_t clamp_i64(int64_t v, int64_t lo, int64_t hi) { return v < lo ? lo : v > hi ? hi : v; }
static double clamp_f64(double v, double lo, double hi) { return v < lo ? lo : v > hi ? hi : v; }
static double ls_rand(void) { return (double)rand() / ((double)RAND_MAX + 1.0); }
static int64_t rand_i64(int64_t lo, int64_t hi) {
    if (hi <= lo) return lo;
    return lo + (int64_t)(ls_rand() * (double)(hi - lo));
}
static double pi(void) { return 3.14159265358979323846; }

static int64_t clock_ms(void) {
#if defined(_WIN32)
    return (int64_t)GetTickCount64();
#else
    struct timespec ts;
    clock_gettime(CLOCK_MONOTONIC, &ts);
    return (int64_t)ts.tv_sec * 1000 + ts.tv_nsec / 1000000;
#endif
}
static int64_t clock_us(void) {
#if defined(_WIN32)
    return (int64_t)GetTickCount64() * 1000;
#else
    struct timespec ts;
    clock_gettime(CLOCK_MONOTONIC, &ts);
    return (int64_t)ts.tv_sec * 1000000 + ts.tv_nsec / 1000;
#endif
}
static void sleep_ms(int64_t ms) {
#if defined(_WIN32)
    Sleep((DWORD)ms);
#else
    struct timespec ts = { ms / 1000, (ms % 1000) * 1000000 };
    nanosleep(&ts, 0);
#endif
}

#define LS_CLI_CAP 128
static const char *ls_cli_tokens[LS_CLI_CAP];
static int64_t ls_cli_count = 0;

static void ls_cli_init(int argc, char **argv) {
    for (int i = 1; i < argc && ls_cli_count < LS_CLI_CAP; i++)
        ls_cli_tokens[ls_cli_count++] = argv[i];
}
static int64_t cli_token_count(void) { return ls_cli_count; }
static const char *cli_token(int64_t i) { return i >= 0 && i < ls_cli_count ? ls_cli_tokens[i] : ""; }
static int cli_has(const char *name) {
    char want[256];
    snprintf(want, sizeof want, "--%s", name);
    for (int64_t i = 0; i < ls_cli_count; i++)
        if (strcmp(ls_cli_tokens[i], want) == 0) return 1;
    return 0;
}
static const char *cli_value(const char *name) {
    char want[256];
    snprintf(want, sizeof want, "--%s", name);
    for (int64_t i = 0; i < ls_cli_count; i++)
        if (strcmp(ls_cli_tokens[i], want) == 0 && i + 1 < ls_cli_count)
            return ls_cli_tokens[i + 1];
    return "";
}

/* Tasks map to OS threads; ids are slots, awaited LIFO by await_all. */
#define LS_TASK_CAP 256
typedef void (*LsTaskFn)(void);
#if defined(_WIN32)
static HANDLE ls_tasks[LS_TASK_CAP];
static DWORD WINAPI ls_task_tramp(LPVOID arg) { ((LsTaskFn)arg)(); return 0; }
static int64_t ls_spawn(LsTaskFn fn) {
    for (int i = 0; i < LS_TASK_CAP; i++) {
        if (!ls_tasks[i]) {
            ls_tasks[i] = CreateThread(0, 0, ls_task_tramp, (LPVOID)fn, 0, 0);
            return i;
        }
    }
    return -1;
}
static void await(int64_t id) {
    if (id < 0 || id >= LS_TASK_CAP || !ls_tasks[id]) return;
    WaitForSingleObject(ls_tasks[id], INFINITE);
    CloseHandle(ls_tasks[id]);
    ls_tasks[id] = 0;
}
#else
static pthread_t ls_tasks[LS_TASK_CAP];
static int ls_task_live[LS_TASK_CAP];
static void *ls_task_tramp(void *arg) { ((LsTaskFn)arg)(); return 0; }
static int64_t ls_spawn(LsTaskFn fn) {
    for (int i = 0; i < LS_TASK_CAP; i++) {
        if (!ls_task_live[i]) {
            if (pthread_create(&ls_tasks[i], 0, ls_task_tramp, (void *)fn) != 0) return -1;
            ls_task_live[i] = 1;
            return i;
        }
    }
    return -1;
}
static void await(int64_t id) {
    if (id < 0 || id >= LS_TASK_CAP || !ls_task_live[id]) return;
    pthread_join(ls_tasks[id], 0);
    ls_task_live[id] = 0;
}
#endif
static void await_all(void) {
    for (int i = LS_TASK_CAP - 1; i >= 0; i--) await(i);
}

static void ls_abort(const char *msg) {
    fputs(msg, stderr);
    fputc('\n', stderr);
    exit(2);
}
`

// runtimeGraphics is the software surface plus the game loop. The Win32
// window class lives behind _WIN32; elsewhere frames land in PPM files.
const runtimeGraphics = `
typedef struct { int64_t w, h; uint32_t *px; int used; } LsSurface;
static LsSurface ls_surfaces[256];

static int64_t gfx_new(int64_t w, int64_t h) {
    for (int i = 0; i < 256; i++) {
        if (!ls_surfaces[i].used) {
            ls_surfaces[i].used = 1;
            ls_surfaces[i].w = w;
            ls_surfaces[i].h = h;
            ls_surfaces[i].px = (uint32_t *)ls_mem_alloc((size_t)(w * h) * 4);
            memset(ls_surfaces[i].px, 0, (size_t)(w * h) * 4);
            return i;
        }
    }
    return -1;
}
static void gfx_free(int64_t h) {
    if (h < 0 || h >= 256 || !ls_surfaces[h].used) return;
    free(ls_surfaces[h].px);
    ls_surfaces[h].used = 0;
}
static void gfx_clear(int64_t h, int64_t color) {
    LsSurface *s = &ls_surfaces[h];
    for (int64_t i = 0; i < s->w * s->h; i++) s->px[i] = (uint32_t)color;
}
static void gfx_set_pixel(int64_t h, int64_t x, int64_t y, int64_t color) {
    LsSurface *s = &ls_surfaces[h];
    if (x >= 0 && x < s->w && y >= 0 && y < s->h) s->px[y * s->w + x] = (uint32_t)color;
}
static void gfx_line(int64_t h, int64_t x0, int64_t y0, int64_t x1, int64_t y1, int64_t color) {
    int64_t dx = llabs(x1 - x0), dy = -llabs(y1 - y0);
    int64_t sx = x0 < x1 ? 1 : -1, sy = y0 < y1 ? 1 : -1, err = dx + dy;
    for (;;) {
        gfx_set_pixel(h, x0, y0, color);
        if (x0 == x1 && y0 == y1) break;
        int64_t e2 = 2 * err;
        if (e2 >= dy) { err += dy; x0 += sx; }
        if (e2 <= dx) { err += dx; y0 += sy; }
    }
}
static void gfx_rect(int64_t h, int64_t x, int64_t y, int64_t w, int64_t ht, int64_t color) {
    gfx_line(h, x, y, x + w - 1, y, color);
    gfx_line(h, x, y + ht - 1, x + w - 1, y + ht - 1, color);
    gfx_line(h, x, y, x, y + ht - 1, color);
    gfx_line(h, x + w - 1, y, x + w - 1, y + ht - 1, color);
}
static void gfx_fill_rect(int64_t h, int64_t x, int64_t y, int64_t w, int64_t ht, int64_t color) {
    for (int64_t j = y; j < y + ht; j++)
        for (int64_t i = x; i < x + w; i++) gfx_set_pixel(h, i, j, color);
}
static void gfx_circle(int64_t h, int64_t cx, int64_t cy, int64_t r, int64_t color) {
    for (int64_t y = -r; y <= r; y++)
        for (int64_t x = -r; x <= r; x++)
            if (x * x + y * y <= r * r) gfx_set_pixel(h, cx + x, cy + y, color);
}
static void gfx_save_ppm(int64_t h, const char *path) {
    LsSurface *s = &ls_surfaces[h];
    FILE *f = fopen(path, "wb");
    if (!f) return;
    fprintf(f, "P6\n%lld %lld\n255\n", (long long)s->w, (long long)s->h);
    for (int64_t i = 0; i < s->w * s->h; i++) {
        uint32_t p = s->px[i];
        fputc((p >> 16) & 255, f);
        fputc((p >> 8) & 255, f);
        fputc(p & 255, f);
    }
    fclose(f);
}
static void gfx_present(int64_t h) { (void)h; }

static int ls_keys[512];
static int key_down(int64_t code) { return code >= 0 && code < 512 ? ls_keys[code] : 0; }
static int key_down_name(const char *name) {
    return name[0] ? ls_keys[(unsigned char)name[0]] : 0;
}

typedef struct { int64_t w, h; int64_t surface; int running; int64_t frame; int used; } LsGame;
static LsGame ls_games[16];

#if defined(_WIN32)
static LRESULT CALLBACK ls_wndproc(HWND hw, UINT msg, WPARAM wp, LPARAM lp) {
    switch (msg) {
    case WM_KEYDOWN: if (wp < 512) ls_keys[wp] = 1; return 0;
    case WM_KEYUP: if (wp < 512) ls_keys[wp] = 0; return 0;
    case WM_CLOSE: PostQuitMessage(0); return 0;
    }
    return DefWindowProcA(hw, msg, wp, lp);
}
#endif

static int64_t game_new(int64_t w, int64_t h, const char *title) {
    (void)title;
    for (int i = 0; i < 16; i++) {
        if (!ls_games[i].used) {
            ls_games[i].used = 1;
            ls_games[i].w = w;
            ls_games[i].h = h;
            ls_games[i].surface = gfx_new(w, h);
            ls_games[i].running = 1;
            ls_games[i].frame = 0;
            return i;
        }
    }
    return -1;
}
static void game_free(int64_t g) {
    if (g < 0 || g >= 16 || !ls_games[g].used) return;
    gfx_free(ls_games[g].surface);
    ls_games[g].used = 0;
}
static int game_running(int64_t g) { return ls_games[g].running; }
static void game_begin_frame(int64_t g) { gfx_clear(ls_games[g].surface, 0); }
static void game_end_frame(int64_t g) { ls_games[g].frame++; }
static int64_t game_width(int64_t g) { return ls_games[g].w; }
static int64_t game_height(int64_t g) { return ls_games[g].h; }

static int64_t pg_init(int64_t w, int64_t h) { return game_new(w, h, "pg"); }
static int64_t pg_surface_new(int64_t w, int64_t h) { return gfx_new(w, h); }
static void pg_surface_blit(int64_t dst, int64_t src, int64_t x, int64_t y) {
    LsSurface *d = &ls_surfaces[dst], *s = &ls_surfaces[src];
    for (int64_t j = 0; j < s->h; j++)
        for (int64_t i = 0; i < s->w; i++)
            gfx_set_pixel(dst, x + i, y + j, s->px[j * s->w + i]);
    (void)d;
}
static void pg_flip(void) {}
static void pg_quit(void) {}

/* Physics: structure-of-arrays bodies, a flat integrator step. */
typedef struct {
    double x[1024], y[1024], vx[1024], vy[1024], mass[1024];
    double gx, gy;
    int64_t count;
    int used;
} LsPhys;
static LsPhys ls_phys[8];

static int64_t phys_new(void) {
    for (int i = 0; i < 8; i++) {
        if (!ls_phys[i].used) {
            ls_phys[i].used = 1;
            ls_phys[i].count = 0;
            ls_phys[i].gx = 0;
            ls_phys[i].gy = -9.81;
            return i;
        }
    }
    return -1;
}
static void phys_free(int64_t p) {
    if (p >= 0 && p < 8) ls_phys[p].used = 0;
}
static void phys_set_gravity(int64_t p, double gx, double gy) {
    ls_phys[p].gx = gx;
    ls_phys[p].gy = gy;
}
static int64_t phys_add_body(int64_t p, double x, double y, double mass) {
    LsPhys *w = &ls_phys[p];
    if (w->count >= 1024) return -1;
    int64_t id = w->count++;
    w->x[id] = x; w->y[id] = y; w->vx[id] = 0; w->vy[id] = 0; w->mass[id] = mass;
    return id;
}
static void phys_step(int64_t p, double dt) {
    LsPhys *w = &ls_phys[p];
    for (int64_t i = 0; i < w->count; i++) {
        w->vx[i] += w->gx * dt;
        w->vy[i] += w->gy * dt;
        w->x[i] += w->vx[i] * dt;
        w->y[i] += w->vy[i] * dt;
    }
}
static double phys_body_x(int64_t p, int64_t id) { return ls_phys[p].x[id]; }
static double phys_body_y(int64_t p, int64_t id) { return ls_phys[p].y[id]; }
static void phys_body_set_vel(int64_t p, int64_t id, double vx, double vy) {
    ls_phys[p].vx[id] = vx;
    ls_phys[p].vy[id] = vy;
}

static double ls_camera_x = 0, ls_camera_y = 0, ls_camera_zoom = 1;
static void camera_set(double x, double y) { ls_camera_x = x; ls_camera_y = y; }
static double camera_x(void) { return ls_camera_x; }
static double camera_y(void) { return ls_camera_y; }
static void camera_zoom(double z) { ls_camera_zoom = z; }
`

// runtimeHTTP is the socket-backed client/server pair, Winsock or POSIX.
const runtimeHTTP = `
typedef struct { int fd; int used; } LsSock;
static LsSock ls_http_servers[64];
static LsSock ls_http_clients[64];
static char ls_http_req[64][4096];
static int ls_http_req_fd[64];

static int64_t ls_sock_take(LsSock *table, int fd) {
    for (int i = 0; i < 64; i++) {
        if (!table[i].used) {
            table[i].used = 1;
            table[i].fd = fd;
            return i;
        }
    }
    return -1;
}

static int64_t http_server_listen(int64_t port) {
    int fd = (int)socket(AF_INET, SOCK_STREAM, 0);
    if (fd < 0) return -1;
    int one = 1;
    setsockopt(fd, SOL_SOCKET, SO_REUSEADDR, (const char *)&one, sizeof one);
    struct sockaddr_in addr;
    memset(&addr, 0, sizeof addr);
    addr.sin_family = AF_INET;
    addr.sin_addr.s_addr = INADDR_ANY;
    addr.sin_port = htons((unsigned short)port);
    if (bind(fd, (struct sockaddr *)&addr, sizeof addr) != 0 || listen(fd, 16) != 0) {
        LS_CLOSESOCK(fd);
        return -1;
    }
    return ls_sock_take(ls_http_servers, fd);
}
static void http_server_close(int64_t h) {
    if (h < 0 || h >= 64 || !ls_http_servers[h].used) return;
    LS_CLOSESOCK(ls_http_servers[h].fd);
    ls_http_servers[h].used = 0;
}
static int64_t http_server_accept(int64_t h) {
    if (h < 0 || h >= 64 || !ls_http_servers[h].used) return -1;
    int fd = (int)accept(ls_http_servers[h].fd, 0, 0);
    if (fd < 0) return -1;
    for (int i = 0; i < 64; i++) {
        if (!ls_http_req_fd[i]) {
            long n = (long)recv(fd, ls_http_req[i], sizeof ls_http_req[i] - 1, 0);
            ls_http_req[i][n > 0 ? n : 0] = 0;
            ls_http_req_fd[i] = fd;
            return i;
        }
    }
    LS_CLOSESOCK(fd);
    return -1;
}
static const char *http_request_method(int64_t req) {
    char *p = ls_scratch_take();
    sscanf(ls_http_req[req], "%31s", p);
    return p;
}
static const char *http_request_path(int64_t req) {
    char *p = ls_scratch_take();
    char method[32];
    if (sscanf(ls_http_req[req], "%31s %255s", method, p) < 2) p[0] = 0;
    return p;
}
static void http_respond(int64_t req, int64_t status, const char *body) {
    char head[256];
    int n = snprintf(head, sizeof head,
        "HTTP/1.1 %lld OK\r\nContent-Length: %zu\r\nConnection: close\r\n\r\n",
        (long long)status, strlen(body));
    send(ls_http_req_fd[req], head, n, 0);
    send(ls_http_req_fd[req], body, (int)strlen(body), 0);
    LS_CLOSESOCK(ls_http_req_fd[req]);
    ls_http_req_fd[req] = 0;
}
static int64_t http_client_connect(const char *host, int64_t port) {
    struct hostent *he = gethostbyname(host);
    if (!he) return -1;
    int fd = (int)socket(AF_INET, SOCK_STREAM, 0);
    if (fd < 0) return -1;
    struct sockaddr_in addr;
    memset(&addr, 0, sizeof addr);
    addr.sin_family = AF_INET;
    addr.sin_port = htons((unsigned short)port);
    memcpy(&addr.sin_addr, he->h_addr_list[0], (size_t)he->h_length);
    if (connect(fd, (struct sockaddr *)&addr, sizeof addr) != 0) {
        LS_CLOSESOCK(fd);
        return -1;
    }
    return ls_sock_take(ls_http_clients, fd);
}
static void http_client_close(int64_t h) {
    if (h < 0 || h >= 64 || !ls_http_clients[h].used) return;
    LS_CLOSESOCK(ls_http_clients[h].fd);
    ls_http_clients[h].used = 0;
}
static const char *ls_http_fetch(const char *url, const char *method, const char *body) {
    char host[256];
    char path[512] = "/";
    const char *p = strstr(url, "://");
    p = p ? p + 3 : url;
    const char *slash = strchr(p, '/');
    size_t hn = slash ? (size_t)(slash - p) : strlen(p);
    if (hn >= sizeof host) hn = sizeof host - 1;
    memcpy(host, p, hn);
    host[hn] = 0;
    if (slash) snprintf(path, sizeof path, "%s", slash);
    int64_t h = http_client_connect(host, 80);
    if (h < 0) return "";
    char req[2048];
    int n = snprintf(req, sizeof req,
        "%s %s HTTP/1.1\r\nHost: %s\r\nContent-Length: %zu\r\nConnection: close\r\n\r\n%s",
        method, path, host, strlen(body), body);
    send(ls_http_clients[h].fd, req, n, 0);
    char *out = (char *)malloc(65536);
    long total = 0;
    for (;;) {
        long got = (long)recv(ls_http_clients[h].fd, out + total, 65535 - total, 0);
        if (got <= 0) break;
        total += got;
        if (total >= 65535) break;
    }
    out[total] = 0;
    http_client_close(h);
    const char *sep = strstr(out, "\r\n\r\n");
    return sep ? sep + 4 : out;
}
static const char *http_get(const char *url) { return ls_http_fetch(url, "GET", ""); }
static const char *http_post(const char *url, const char *body) { return ls_http_fetch(url, "POST", body); }
`
