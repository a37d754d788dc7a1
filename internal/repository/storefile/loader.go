package storefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/storelocator/internal/domain/store"
)

// document is the on-disk layout of a store file.
type document struct {
	Stores []store.Input `yaml:"stores"`
}

// Load reads a YAML store file.
func Load(path string) ([]store.Input, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read store file %s: %w", path, err)
	}
	inputs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("store file %s: %w", path, err)
	}
	return inputs, nil
}

// Parse decodes a YAML store document. Unknown fields are rejected so that
// typos in tag or location keys do not silently drop data.
func Parse(data []byte) ([]store.Input, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse stores: %w", err)
	}
	for i, in := range doc.Stores {
		if in.Name == "" {
			return nil, fmt.Errorf("stores[%d]: name is required", i)
		}
	}
	return doc.Stores, nil
}
