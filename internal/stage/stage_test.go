package stage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}

func TestTemplatesCopiesTree(t *testing.T) {
	src := filepath.Join(t.TempDir(), "vehicle_templates")
	dst := filepath.Join(t.TempDir(), "appdata", "vehicle_templates")
	writeTree(t, src, map[string]string{
		"ArduCopter/diatone_taycan_mxc/vehicle_components.json": "{}",
		"ArduCopter/diatone_taycan_mxc/00_default.param":        "A 1\n",
		"ArduPlane/generic/vehicle_components.json":             "{}",
	})

	res, err := Templates(Options{Source: src, Dest: dst})
	if err != nil {
		t.Fatalf("Templates: %v", err)
	}
	if res.Copied != 3 || res.Skipped != 0 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	b, err := os.ReadFile(filepath.Join(dst, "ArduCopter", "diatone_taycan_mxc", "00_default.param"))
	if err != nil {
		t.Fatalf("expected staged file: %v", err)
	}
	if string(b) != "A 1\n" {
		t.Fatalf("unexpected content %q", string(b))
	}
}

func TestTemplatesKeepsUserEdits(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeTree(t, src, map[string]string{"ArduCopter/x/vehicle_components.json": "shipped"})
	writeTree(t, dst, map[string]string{"ArduCopter/x/vehicle_components.json": "edited"})

	res, err := Templates(Options{Source: src, Dest: dst})
	if err != nil {
		t.Fatalf("Templates: %v", err)
	}
	if res.Skipped != 1 {
		t.Fatalf("expected one skipped file, got %+v", res)
	}
	b, _ := os.ReadFile(filepath.Join(dst, "ArduCopter", "x", "vehicle_components.json"))
	if string(b) != "edited" {
		t.Fatalf("user edit was overwritten: %q", string(b))
	}

	if _, err := Templates(Options{Source: src, Dest: dst, Overwrite: true}); err != nil {
		t.Fatalf("Templates overwrite: %v", err)
	}
	b, _ = os.ReadFile(filepath.Join(dst, "ArduCopter", "x", "vehicle_components.json"))
	if string(b) != "shipped" {
		t.Fatalf("expected overwrite, got %q", string(b))
	}
}

func TestPlanDoesNotWrite(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	writeTree(t, src, map[string]string{"a/b.json": "{}"})

	res, err := Plan(Options{Source: src, Dest: dst})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(res.Actions) < 2 {
		t.Fatalf("expected actions, got %v", res.Actions)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("plan must not create %s", dst)
	}
}

func TestTemplatesRequiresSource(t *testing.T) {
	if _, err := Templates(Options{Source: filepath.Join(t.TempDir(), "missing"), Dest: t.TempDir()}); err == nil {
		t.Fatalf("expected error for missing source")
	}
	if _, err := Templates(Options{}); err == nil {
		t.Fatalf("expected error for empty options")
	}
}

func TestLeafDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"ArduCopter/a/f.json": "{}",
		"ArduCopter/b/f.json": "{}",
		"Rover/c/f.json":      "{}",
	})
	leaves, err := LeafDirs(root)
	if err != nil {
		t.Fatalf("LeafDirs: %v", err)
	}
	want := []string{
		filepath.Join(root, "ArduCopter", "a"),
		filepath.Join(root, "ArduCopter", "b"),
		filepath.Join(root, "Rover", "c"),
	}
	if len(leaves) != len(want) {
		t.Fatalf("expected %v, got %v", want, leaves)
	}
	for i := range want {
		if leaves[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, leaves)
		}
	}
}
