package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"instaforce.app/engine/internal/model"
)

// loadFiles reads generated files from an exported state or a bare file list,
// in JSON or YAML.
func loadFiles(path string) ([]model.GeneratedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading files: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	files := model.NormalizeFiles(raw)
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found in %s", path)
	}
	return files, nil
}
