package driver

import (
	"fmt"
	"hash/fnv"
	"strconv"
)

// SourceHash is FNV-1a-64 over the concatenation of each input's path
// bytes and contents, in argument order.
func SourceHash(paths []string, contents []string) string {
	h := fnv.New64a()
	for i, p := range paths {
		h.Write([]byte(p))
		h.Write([]byte(contents[i]))
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// ConfigHash is FNV-1a-64 over the source hash plus every knob that
// changes the emitted C: compiler command, backend, passes, target,
// sysroot, linker, and the max-speed switch.
func ConfigHash(sourceHash string, cfg *Config) string {
	h := fnv.New64a()
	h.Write([]byte(sourceHash))
	h.Write([]byte(cfg.CC))
	h.Write([]byte(cfg.Backend))
	h.Write([]byte(strconv.Itoa(cfg.Passes)))
	h.Write([]byte(cfg.Target))
	h.Write([]byte(cfg.Sysroot))
	h.Write([]byte(cfg.Linker))
	h.Write([]byte(strconv.FormatBool(cfg.MaxSpeed)))
	return fmt.Sprintf("%016x", h.Sum64())
}
