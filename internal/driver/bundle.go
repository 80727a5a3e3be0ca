package driver

import (
	"encoding/json"
	"fmt"
	"os"
)

// BundleFormat is the only typed-IR bundle format this compiler reads.
const BundleFormat = "linescript-typed-ir-v1"

// Bundle is the typed-IR cache document: the emitted C plus the content
// hashes used for incremental rebuilds.
type Bundle struct {
	Format     string `json:"format"`
	SourceHash string `json:"source_hash"`
	ConfigHash string `json:"config_hash"`
	CCode      string `json:"c_code"`
}

// WriteBundle writes the bundle as JSON.
func WriteBundle(path string, b *Bundle) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode typed-IR bundle: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write typed-IR bundle %s: %w", path, err)
	}
	return nil
}

// ReadBundle reads and validates a bundle; any other format value is
// rejected.
func ReadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read typed-IR bundle %s: %w", path, err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode typed-IR bundle %s: %w", path, err)
	}
	if b.Format != BundleFormat {
		return nil, fmt.Errorf("typed-IR bundle %s has unsupported format %q", path, b.Format)
	}
	return &b, nil
}
