// Package loader reads cohort definition documents from disk. The core
// validators are pure functions over in-memory trees; everything touching
// the filesystem lives here.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// MaxDocumentSize caps how much of a document file is accepted. Cohort
// definitions are small; anything larger is almost certainly the wrong file.
const MaxDocumentSize = 10 * 1024 * 1024 // 10MB

// Loader reads JSON or YAML cohort documents into JSON-compatible trees.
type Loader struct {
	logger *zap.SugaredLogger
}

// New returns a loader logging through the given logger.
func New(logger *zap.SugaredLogger) *Loader {
	return &Loader{logger: logger}
}

// Load reads one document file and returns it as a raw tree ready for
// conversion or validation. YAML files (.yaml/.yml) are accepted alongside
// JSON; both decode to the same map shape.
func (l *Loader) Load(filename string) (map[string]interface{}, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat document file: %w", err)
	}
	if info.Size() > MaxDocumentSize {
		return nil, fmt.Errorf("document file %s is %d bytes, exceeding the %d byte limit",
			filename, info.Size(), MaxDocumentSize)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}

	var doc map[string]interface{}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML document %s: %w", filename, err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON document %s: %w", filename, err)
		}
	}

	l.logger.Debugw("loaded cohort document", "file", filename, "bytes", len(data))
	return doc, nil
}

// validateFilePath rejects paths containing traversal sequences before any
// file access happens.
func validateFilePath(filename string) error {
	clean := filepath.Clean(filename)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("invalid file path %q: path traversal detected", filename)
	}
	return nil
}
