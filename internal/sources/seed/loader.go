package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the shape of the optional known-services seed file.
// Entries are a list so registration order is preserved.
type File struct {
	Services []Entry `yaml:"services"`
}

// Entry is one operator-curated service endpoint.
type Entry struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Loader reads a known-services seed file.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for the given path.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the seed file. Entries without both a name and a
// URL are dropped.
func (l *Loader) Load() ([]Entry, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read services seed file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse services seed yaml: %w", err)
	}

	entries := make([]Entry, 0, len(file.Services))
	for _, e := range file.Services {
		if e.Name == "" || e.URL == "" {
			continue
		}
		entries = append(entries, e)
	}

	return entries, nil
}
