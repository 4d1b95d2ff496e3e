package disksink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Manifest contains metadata about a built opening-tree dataset.
type Manifest struct {
	Version        int       `json:"version"`
	DocumentCount  int64     `json:"document_count"`
	BatchCount     int       `json:"batch_count"`
	BatchSize      int       `json:"batch_size"`
	MaxDepth       int       `json:"max_depth,omitempty"`
	GamesProcessed int64     `json:"games_processed,omitempty"`
	Compression    string    `json:"compression"`
	BuiltAt        time.Time `json:"built_at"`
}

const manifestFilename = "manifest.json"

// WriteManifest writes the manifest to the dataset directory.
func WriteManifest(dir string, m *Manifest) error {
	path := filepath.Join(dir, manifestFilename)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest from a dataset directory.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
