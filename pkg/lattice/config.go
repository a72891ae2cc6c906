package lattice

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type latticeFile struct {
	Labels []string `yaml:"labels"`
}

// Parse decodes a YAML lattice definition of the form `labels: [L, H]`.
func Parse(data []byte) (*Lattice, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var raw latticeFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("lattice: definition is empty")
		}
		return nil, fmt.Errorf("lattice: parse: %w", err)
	}
	return New(raw.Labels...)
}

// Load reads a YAML lattice definition from disk.
func Load(path string) (*Lattice, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lattice: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("lattice: open %s: %w", absPath, err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}
	return l, nil
}
