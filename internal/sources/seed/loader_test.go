package seed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "services.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeSeedFile(t, `
services:
  - name: Leases
    url: https://example.com/arcgis/rest/services/Leases/FeatureServer
  - name: Roads
    url: https://example.com/arcgis/rest/services/Roads/MapServer
`)

	entries, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Load() returned %d entries, want 2", len(entries))
	}
	if entries[0].Name != "Leases" {
		t.Errorf("first entry = %q, want Leases (order must be preserved)", entries[0].Name)
	}
	if entries[1].Name != "Roads" {
		t.Errorf("second entry = %q, want Roads", entries[1].Name)
	}
}

func TestLoaderLoadDropsIncompleteEntries(t *testing.T) {
	path := writeSeedFile(t, `
services:
  - name: NoURL
  - url: https://example.com/only-url
  - name: Complete
    url: https://example.com/complete
`)

	entries, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("Load() returned %d entries, want 1", len(entries))
	}
	if entries[0].Name != "Complete" {
		t.Errorf("kept entry = %q, want Complete", entries[0].Name)
	}
}

func TestLoaderLoadMissingFile(t *testing.T) {
	if _, err := NewLoader("/does/not/exist.yaml").Load(); err == nil {
		t.Error("Load() on missing file should return error")
	}
}

func TestLoaderLoadInvalidYAML(t *testing.T) {
	path := writeSeedFile(t, "services: [not: {valid")
	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Load() on invalid yaml should return error")
	}
}
