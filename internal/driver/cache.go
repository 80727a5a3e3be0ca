package driver

import (
	"os"
	"path/filepath"
)

// cachePath places a bundle under the cache directory by config hash.
func cachePath(cacheDir, configHash string) string {
	return filepath.Join(cacheDir, configHash+".json")
}

// LookupCache returns the cached C text for a config hash, if present and
// caching is enabled.
func LookupCache(cfg *Config, configHash string) (string, bool) {
	if cfg.NoCache || !cfg.Incremental || cfg.CacheDir == "" {
		return "", false
	}
	b, err := ReadBundle(cachePath(cfg.CacheDir, configHash))
	if err != nil || b.ConfigHash != configHash {
		return "", false
	}
	return b.CCode, true
}

// StoreCache writes a bundle into the cache directory. The noCache path
// deliberately still honors an explicit --emit-typed-ir; only the implicit
// cache write is suppressed.
func StoreCache(cfg *Config, b *Bundle) {
	if cfg.NoCache || !cfg.Incremental || cfg.CacheDir == "" {
		return
	}
	_ = os.MkdirAll(cfg.CacheDir, 0o755)
	_ = WriteBundle(cachePath(cfg.CacheDir, b.ConfigHash), b)
}
