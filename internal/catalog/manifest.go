package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyCatalog is returned when a manifest carries no entries.
var ErrEmptyCatalog = errors.New("catalog has no entries")

// Decode parses a manifest encoded as JSON or YAML.
func Decode(data []byte) (Manifest, error) {
	var manifest Manifest
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &manifest); err != nil {
			return Manifest{}, fmt.Errorf("decode json manifest: %w", err)
		}
		return manifest, nil
	}
	if err := yaml.Unmarshal(trimmed, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode yaml manifest: %w", err)
	}
	return manifest, nil
}

// LoadFile reads and decodes a manifest from disk.
func LoadFile(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	return Decode(data)
}
