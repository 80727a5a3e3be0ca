package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/linescript-lang/linescript/internal/diag"
	"github.com/linescript-lang/linescript/internal/driver"
)

var banners = map[string]string{
	"--LineScript":  "LineScript: small language, straight-line speed.",
	"--super-speed": "super speed engaged. it was already on.",
	"--what":        "LineScript compiles .lsc files to native binaries via C.",
	"--hlep":        "close enough. try --help.",
	"--max-sped":    "--max-speed. but yes.",
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: linescript [options] file.lsc [file2.lsc ...]")
	fmt.Fprintln(os.Stderr, "\nOptions:")
	fmt.Fprintln(os.Stderr, "  -o PATH             output path (C text, or binary with --build)")
	fmt.Fprintln(os.Stderr, "  --check             run frontend and optimizer only")
	fmt.Fprintln(os.Stderr, "  --build             compile to a native binary")
	fmt.Fprintln(os.Stderr, "  --run               build and execute")
	fmt.Fprintln(os.Stderr, "  --cc CMD            host C compiler (default clang)")
	fmt.Fprintln(os.Stderr, "  --backend auto|c|asm")
	fmt.Fprintln(os.Stderr, "  --target TRIPLE --sysroot PATH --linker NAME")
	fmt.Fprintln(os.Stderr, "  --passes N          optimizer iterations (default 12)")
	fmt.Fprintln(os.Stderr, "  -O4, --max-speed    aggressive flags, passes >= 32")
	fmt.Fprintln(os.Stderr, "  --pgo-generate --pgo-use DIR --bolt-use FDATA")
	fmt.Fprintln(os.Stderr, "  --keep-c --incremental --cache-dir PATH --no-cache")
	fmt.Fprintln(os.Stderr, "  --emit-typed-ir FILE --consume-typed-ir FILE")
	fmt.Fprintln(os.Stderr, "  --su-session        superuser session")
}

func fail(msg string) {
	fmt.Fprintf(os.Stderr, "driver: %s\n", msg)
	os.Exit(1)
}

// looksLikeUserFlag accepts --x[-y]* names forwarded to the runtime token
// table and flag-function dispatch.
func looksLikeUserFlag(arg string) bool {
	if !strings.HasPrefix(arg, "--") || len(arg) == 2 {
		return false
	}
	for _, part := range strings.Split(arg[2:], "-") {
		if part == "" {
			return false
		}
		for _, r := range part {
			ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			if !ok {
				return false
			}
		}
	}
	return true
}

func parseArgs(args []string) *driver.Config {
	cfg := &driver.Config{}
	bracketDepth := 0

	need := func(i int, name string) string {
		if i+1 >= len(args) {
			fail("flag " + name + " requires a value")
		}
		return args[i+1]
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if bracketDepth > 0 && arg != "[" && arg != "]" {
			cfg.RuntimeArgs = append(cfg.RuntimeArgs, arg)
			continue
		}

		switch arg {
		case "-o":
			cfg.Output = need(i, "-o")
			i++
		case "--check":
			cfg.Check = true
		case "--build":
			cfg.Build = true
		case "--run":
			cfg.Run = true
			cfg.Build = true
		case "--cc":
			cfg.CC = need(i, "--cc")
			i++
		case "--backend":
			v := need(i, "--backend")
			i++
			switch v {
			case "auto", "c", "asm":
				cfg.Backend = v
			default:
				fail("unknown backend " + strconv.Quote(v))
			}
		case "--target":
			cfg.Target = need(i, "--target")
			i++
		case "--sysroot":
			cfg.Sysroot = need(i, "--sysroot")
			i++
		case "--linker":
			cfg.Linker = need(i, "--linker")
			i++
		case "--passes":
			v := need(i, "--passes")
			i++
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				fail("bad value for --passes: " + v)
			}
			cfg.Passes = n
		case "-O4", "--max-speed":
			cfg.MaxSpeed = true
		case "--pgo-generate":
			cfg.PGOGenerate = true
		case "--pgo-use":
			cfg.PGOUse = need(i, "--pgo-use")
			i++
		case "--bolt-use":
			cfg.BoltUse = need(i, "--bolt-use")
			i++
		case "--keep-c":
			cfg.KeepC = true
		case "--incremental":
			cfg.Incremental = true
		case "--cache-dir":
			cfg.CacheDir = need(i, "--cache-dir")
			i++
		case "--no-cache":
			cfg.NoCache = true
		case "--emit-typed-ir":
			cfg.EmitTypedIR = need(i, "--emit-typed-ir")
			i++
		case "--consume-typed-ir":
			cfg.ConsumeTypedIR = need(i, "--consume-typed-ir")
			i++
		case "--su-session":
			cfg.Superuser = true
		case "--help", "-h":
			usage()
			os.Exit(0)
		case "[":
			bracketDepth++
			cfg.RuntimeArgs = append(cfg.RuntimeArgs, arg)
		case "]":
			bracketDepth--
			if bracketDepth < 0 {
				fail("unbalanced ']' in arguments")
			}
			cfg.RuntimeArgs = append(cfg.RuntimeArgs, arg)
		default:
			if line, ok := banners[arg]; ok {
				fmt.Println(line)
				os.Exit(0)
			}
			if looksLikeUserFlag(arg) {
				cfg.RuntimeArgs = append(cfg.RuntimeArgs, arg)
				// An optional following non-option value travels with it.
				if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") &&
					!driver.ValidInputExt(args[i+1]) && args[i+1] != "[" && args[i+1] != "]" {
					cfg.RuntimeArgs = append(cfg.RuntimeArgs, args[i+1])
					i++
				}
				continue
			}
			if strings.HasPrefix(arg, "-") {
				fail("unknown option " + strconv.Quote(arg))
			}
			if !driver.ValidInputExt(arg) {
				fail("input " + strconv.Quote(arg) + " must end in .lsc or .ls")
			}
			cfg.Inputs = append(cfg.Inputs, arg)
		}
	}
	if bracketDepth != 0 {
		fail("unbalanced '[' in arguments")
	}
	return cfg
}

func main() {
	cfg := parseArgs(os.Args[1:])
	cfg.Defaults()

	formatter := diag.NewFormatter(os.Stderr)

	var ctext string
	var parallel bool

	if cfg.ConsumeTypedIR != "" {
		b, err := driver.ReadBundle(cfg.ConsumeTypedIR)
		if err != nil {
			fail(err.Error())
		}
		ctext = b.CCode
		parallel = true // conservatively link the parallel runtime
	} else {
		if len(cfg.Inputs) == 0 {
			repl(cfg)
			return
		}
		source, contents, err := driver.ReadInputs(cfg.Inputs)
		if err != nil {
			fail(err.Error())
		}
		sourceHash := driver.SourceHash(cfg.Inputs, contents)
		configHash := driver.ConfigHash(sourceHash, cfg)

		if cached, ok := driver.LookupCache(cfg, configHash); ok {
			ctext = cached
			parallel = true
		} else {
			res := driver.Compile(source, cfg)
			formatter.FormatAll(res.Diags)
			if diag.HasErrors(res.Diags) {
				os.Exit(1)
			}
			ctext = res.CText
			parallel = res.Features.HasParallelFor

			bundle := &driver.Bundle{
				Format:     driver.BundleFormat,
				SourceHash: sourceHash,
				ConfigHash: configHash,
				CCode:      ctext,
			}
			driver.StoreCache(cfg, bundle)
			// An explicit --emit-typed-ir writes even under --no-cache.
			if cfg.EmitTypedIR != "" {
				if err := driver.WriteBundle(cfg.EmitTypedIR, bundle); err != nil {
					fail(err.Error())
				}
			}
		}
	}

	if cfg.Check {
		os.Exit(0)
	}

	if !cfg.Build {
		out := cfg.Output
		if out == "" {
			out = "out.c"
		}
		if err := os.WriteFile(out, []byte(ctext), 0o644); err != nil {
			fail("write output: " + err.Error())
		}
		return
	}

	bin, err := driver.BuildBinary(ctext, cfg, parallel)
	if err != nil {
		fail(err.Error())
	}
	if cfg.Run {
		code, err := driver.RunBinary(bin, cfg.RuntimeArgs)
		if err != nil {
			fail(err.Error())
		}
		os.Exit(code)
	}
}

// repl is the minimal interactive loop for zero-input invocations: lines
// accumulate into a program, :run builds and executes it, :quit leaves.
func repl(cfg *driver.Config) {
	fmt.Println("LineScript repl. :run builds and executes, :clear resets, :quit exits.")
	formatter := diag.NewFormatter(os.Stderr)
	scanner := bufio.NewScanner(os.Stdin)
	var lines []string

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case ":quit":
			return
		case ":clear":
			lines = nil
			continue
		case ":run":
			res := driver.Compile(strings.Join(lines, "\n")+"\n", cfg)
			formatter.FormatAll(res.Diags)
			if diag.HasErrors(res.Diags) {
				continue
			}
			bin, err := driver.BuildBinary(res.CText, cfg, res.Features.HasParallelFor)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			if _, err := driver.RunBinary(bin, cfg.RuntimeArgs); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			continue
		}
		lines = append(lines, line)
	}
}
