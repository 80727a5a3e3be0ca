package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/linescript-lang/linescript/internal/diag"
)

func TestSourceHashOrderAndContentSensitive(t *testing.T) {
	base := SourceHash([]string{"a.lsc"}, []string{"println(1)\n"})
	if base != SourceHash([]string{"a.lsc"}, []string{"println(1)\n"}) {
		t.Fatal("source hash must be deterministic")
	}
	if base == SourceHash([]string{"b.lsc"}, []string{"println(1)\n"}) {
		t.Fatal("path bytes must participate in the hash")
	}
	if base == SourceHash([]string{"a.lsc"}, []string{"println(2)\n"}) {
		t.Fatal("content bytes must participate in the hash")
	}
}

func TestConfigHashSensitivity(t *testing.T) {
	src := SourceHash([]string{"a.lsc"}, []string{"println(1)\n"})
	mk := func(mut func(*Config)) string {
		cfg := &Config{}
		cfg.Defaults()
		if mut != nil {
			mut(cfg)
		}
		return ConfigHash(src, cfg)
	}

	base := mk(nil)
	if base != mk(nil) {
		t.Fatal("config hash must be deterministic")
	}

	muts := []func(*Config){
		func(c *Config) { c.CC = "gcc" },
		func(c *Config) { c.Backend = "asm" },
		func(c *Config) { c.Passes = 32 },
		func(c *Config) { c.Target = "x86_64-linux-musl" },
		func(c *Config) { c.Sysroot = "/opt/sysroot" },
		func(c *Config) { c.Linker = "lld" },
		func(c *Config) { c.MaxSpeed = true },
	}
	seen := map[string]bool{base: true}
	for i, mut := range muts {
		h := mk(mut)
		if seen[h] {
			t.Errorf("mutation %d did not change the config hash", i)
		}
		seen[h] = true
	}
}

func TestBundleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.json")
	in := &Bundle{
		Format:     BundleFormat,
		SourceHash: "0011223344556677",
		ConfigHash: "8899aabbccddeeff",
		CCode:      "int main(void) { return 0; }\n/* \"quoted\" */\n",
	}
	if err := WriteBundle(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadBundle(path)
	if err != nil {
		t.Fatal(err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestBundleRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.json")
	if err := os.WriteFile(path,
		[]byte(`{"format":"linescript-typed-ir-v2","source_hash":"x","config_hash":"y","c_code":"z"}`),
		0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBundle(path); err == nil {
		t.Fatal("unknown bundle format must be rejected")
	}
}

func TestValidInputExt(t *testing.T) {
	for _, tt := range []struct {
		path string
		ok   bool
	}{
		{"prog.lsc", true},
		{"prog.ls", true},
		{"prog.c", false},
		{"prog", false},
	} {
		if got := ValidInputExt(tt.path); got != tt.ok {
			t.Errorf("ValidInputExt(%q) = %v, want %v", tt.path, got, tt.ok)
		}
	}
}

func TestCompilePipeline(t *testing.T) {
	cfg := &Config{}
	res := Compile("println(1 + 2 * 3)\n", cfg)
	if diag.HasErrors(res.Diags) {
		t.Fatalf("compile failed: %v", res.Diags)
	}
	// Optimizer property 4 witness: the emitted C already carries the
	// folded, specialized output.
	if !strings.Contains(res.CText, `println_str("7")`) {
		t.Fatalf("expected specialized print in emitted C:\n%s", res.CText)
	}
}

func TestCompileReportsTypeErrors(t *testing.T) {
	cfg := &Config{}
	res := Compile("println(unknown_name)\n", cfg)
	if !diag.HasErrors(res.Diags) {
		t.Fatal("expected type error")
	}
	if res.CText != "" {
		t.Fatal("no partial output on error")
	}
}

func TestSuperuserSessionFlag(t *testing.T) {
	cfg := &Config{Superuser: true}
	res := Compile(`
fn f(a: i64) -> i64 { return a }
fn f(b: i64) -> i64 { return b }
println(f(1))
`, cfg)
	if diag.HasErrors(res.Diags) {
		t.Fatalf("--su-session must demote the duplicate signature: %v", res.Diags)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Incremental: true, CacheDir: dir}
	cfg.Defaults()

	bundle := &Bundle{
		Format:     BundleFormat,
		SourceHash: "s",
		ConfigHash: "deadbeef00000000",
		CCode:      "/* cached */",
	}
	StoreCache(cfg, bundle)

	got, ok := LookupCache(cfg, "deadbeef00000000")
	if !ok || got != "/* cached */" {
		t.Fatalf("cache lookup = %q, %v", got, ok)
	}

	if _, ok := LookupCache(cfg, "0000000000000000"); ok {
		t.Fatal("different config hash must miss")
	}

	noCache := &Config{Incremental: true, CacheDir: dir, NoCache: true}
	if _, ok := LookupCache(noCache, "deadbeef00000000"); ok {
		t.Fatal("--no-cache must bypass the cache")
	}
}

func TestReadInputsConcatenates(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.lsc")
	b := filepath.Join(dir, "b.lsc")
	os.WriteFile(a, []byte("declare x: i64 = 1"), 0o644)
	os.WriteFile(b, []byte("println(x)\n"), 0o644)

	src, contents, err := ReadInputs([]string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 2 {
		t.Fatalf("contents length = %d", len(contents))
	}
	// A missing trailing newline must not glue statements together.
	if !strings.Contains(src, "= 1\nprintln(x)") {
		t.Fatalf("concatenation wrong: %q", src)
	}

	res := Compile(src, &Config{})
	if diag.HasErrors(res.Diags) {
		t.Fatalf("concatenated program failed: %v", res.Diags)
	}
}

func TestMSVCCrossCompileRejected(t *testing.T) {
	cfg := &Config{CC: "cl", Target: "x86_64-pc-windows-msvc"}
	cfg.Defaults()
	if _, err := BuildBinary("int main(void){return 0;}", cfg, false); err == nil {
		t.Fatal("cross flags with an MSVC-style compiler must fail")
	} else if !strings.Contains(err.Error(), "MSVC") {
		t.Fatalf("unexpected error: %v", err)
	}
}
