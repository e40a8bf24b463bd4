package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPipelinesAuto(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"dvc.yaml",
		"b/dvc.yaml",
		"a/nested/dvc.yaml",
		".dvc/tmp/dvc.yaml",
		"node_modules/pkg/dvc.yaml",
		"a/params.yaml",
	} {
		writeFile(t, filepath.Join(root, rel))
	}

	got, err := Pipelines(root, nil)
	if err != nil {
		t.Fatalf("Pipelines returned error: %v", err)
	}

	want := []string{
		filepath.Join("a", "nested", "dvc.yaml"),
		filepath.Join("b", "dvc.yaml"),
		"dvc.yaml",
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d files, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: want %q, got %q", i, want[i], got[i])
		}
	}
}

func TestPipelinesExplicit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dvc.yaml"))
	writeFile(t, filepath.Join(root, "sub", "dvc.yaml"))

	externalDir := t.TempDir()
	absOutside := filepath.Join(externalDir, "dvc.yaml")
	writeFile(t, absOutside)

	got, err := Pipelines(root, []string{"dvc.yaml", absOutside, "sub", "dvc.yaml"})
	if err != nil {
		t.Fatalf("Pipelines returned error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(got), got)
	}
	if got[0] != "dvc.yaml" {
		t.Fatalf("first path mismatch: got %q", got[0])
	}
	if got[1] != absOutside {
		t.Fatalf("second path mismatch: got %q expected %q", got[1], absOutside)
	}
	if got[2] != filepath.Join("sub", "dvc.yaml") {
		t.Fatalf("directory input should resolve to its dvc.yaml, got %q", got[2])
	}
}

func TestPipelinesErrors(t *testing.T) {
	root := t.TempDir()

	if _, err := Pipelines(root, nil); !errors.Is(err, ErrNoPipelines) {
		t.Fatalf("expected ErrNoPipelines, got %v", err)
	}

	if _, err := Pipelines(root, []string{"missing.yaml"}); err == nil {
		t.Fatalf("expected error for missing file")
	}

	if err := os.Mkdir(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := Pipelines(root, []string{"empty"}); err == nil {
		t.Fatalf("expected error for directory without dvc.yaml")
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("stages: {}\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}
