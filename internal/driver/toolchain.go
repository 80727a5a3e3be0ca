package driver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// msvcLike reports whether the configured compiler takes cl.exe-style
// options, which the cross-compile knobs cannot target.
func msvcLike(cc string) bool {
	base := strings.ToLower(filepath.Base(cc))
	base = strings.TrimSuffix(base, ".exe")
	return base == "cl" || base == "clang-cl" || strings.Contains(base, "msvc")
}

// BuildBinary compiles emitted C text to a native binary with the host
// toolchain, honoring the backend, cross-compile, PGO and BOLT knobs.
// It returns the path of the built binary.
func BuildBinary(ctext string, cfg *Config, parallel bool) (string, error) {
	out := cfg.Output
	if out == "" {
		out = "a.out"
	}

	if (cfg.Target != "" || cfg.Sysroot != "" || cfg.Linker != "") && msvcLike(cfg.CC) {
		return "", fmt.Errorf("cross-compile flags are not supported with MSVC-style compiler %s", cfg.CC)
	}
	if cfg.PGOUse != "" {
		if _, err := os.Stat(cfg.PGOUse); err != nil {
			return "", fmt.Errorf("profile directory %s: %w", cfg.PGOUse, err)
		}
	}

	cPath := out + ".c"
	if err := os.WriteFile(cPath, []byte(ctext), 0o644); err != nil {
		return "", fmt.Errorf("write C output: %w", err)
	}
	if !cfg.KeepC {
		defer os.Remove(cPath)
	}

	args := ccArgs(cfg, parallel)

	if cfg.Backend == "asm" {
		sPath := out + ".s"
		cmd := exec.Command(cfg.CC, append(args, "-S", cPath, "-o", sPath)...)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("%s -S failed: %w", cfg.CC, err)
		}
		defer os.Remove(sPath)
		cmd = exec.Command(cfg.CC, append(args, sPath, "-o", out)...)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("%s link failed: %w", cfg.CC, err)
		}
	} else {
		cmd := exec.Command(cfg.CC, append(args, cPath, "-o", out)...)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("%s failed: %w", cfg.CC, err)
		}
	}

	if cfg.BoltUse != "" {
		if _, err := os.Stat(cfg.BoltUse); err != nil {
			return "", fmt.Errorf("bolt profile %s: %w", cfg.BoltUse, err)
		}
		bolted := out + ".bolt"
		cmd := exec.Command("llvm-bolt", out, "-data", cfg.BoltUse, "-o", bolted)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("llvm-bolt failed: %w", err)
		}
		if err := os.Rename(bolted, out); err != nil {
			return "", fmt.Errorf("install bolted binary: %w", err)
		}
	}
	return out, nil
}

func ccArgs(cfg *Config, parallel bool) []string {
	var args []string
	if cfg.MaxSpeed {
		args = append(args, "-O3", "-march=native", "-funroll-loops", "-fomit-frame-pointer")
	} else {
		args = append(args, "-O2")
	}
	if parallel {
		args = append(args, "-fopenmp")
	}
	if cfg.Target != "" {
		args = append(args, "--target="+cfg.Target)
	}
	if cfg.Sysroot != "" {
		args = append(args, "--sysroot="+cfg.Sysroot)
	}
	if cfg.Linker != "" {
		args = append(args, "-fuse-ld="+cfg.Linker)
	}
	if cfg.PGOGenerate {
		args = append(args, "-fprofile-generate")
	}
	if cfg.PGOUse != "" {
		args = append(args, "-fprofile-use="+cfg.PGOUse)
	}
	args = append(args, "-lm")
	if !targetIsWindows(cfg) {
		args = append(args, "-lpthread")
	}
	return args
}

// RunBinary executes a built binary forwarding the runtime arguments and
// returns its exit code.
func RunBinary(path string, runtimeArgs []string) (int, error) {
	abs := path
	if !strings.ContainsRune(path, os.PathSeparator) {
		abs = "." + string(os.PathSeparator) + path
	}
	cmd := exec.Command(abs, runtimeArgs...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return 1, err
}
