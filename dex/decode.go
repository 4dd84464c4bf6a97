package dex

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// Load decodes a Container from disk. The real binary DEX format is an
// out-of-scope external collaborator; this decoder reads the
// structurally-equivalent gob encoding this repo uses as its on-disk
// pre-parsed form, so the rest of the engine never has to care which
// concrete encoding produced the Container.
func Load(path string) (*Container, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dex: reading %s: %w", path, err)
	}
	var c Container
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&c); err != nil {
		return nil, fmt.Errorf("dex: decoding %s: %w", path, err)
	}
	return &c, nil
}

// Save encodes a Container to disk; used by tooling/tests that build a
// Container in memory and want to round-trip it through the CLI loader.
func Save(path string, c *Container) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("dex: encoding: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
