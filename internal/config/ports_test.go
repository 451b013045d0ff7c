package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// TestLoadPorts tests port list resolution.
func TestLoadPorts(t *testing.T) {
	t.Parallel()

	t.Run("defaults when no inputs", func(t *testing.T) {
		t.Parallel()

		ports, err := LoadPorts("", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(ports, DefaultPorts) {
			t.Errorf("expected default ports, got %v", ports)
		}
	})

	t.Run("parses comma list sorted and deduplicated", func(t *testing.T) {
		t.Parallel()

		ports, err := LoadPorts("443, 22,80,22,", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(ports, []int{22, 80, 443}) {
			t.Errorf("unexpected ports %v", ports)
		}
	})

	t.Run("merges file and inline sources", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "ports.txt")
		if err := os.WriteFile(path, []byte("# web\n443\n8080\n\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		ports, err := LoadPorts("22,80", path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(ports, []int{22, 80, 443, 8080}) {
			t.Errorf("unexpected ports %v", ports)
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		t.Parallel()

		for _, spec := range []string{"0", "65536", "-22", "http", "22;80"} {
			if _, err := LoadPorts(spec, ""); err == nil {
				t.Errorf("expected error for %q", spec)
			}
		}
	})

	t.Run("missing ports file is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadPorts("", filepath.Join(t.TempDir(), "absent.txt")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
