package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"gltf", FormatGLTF, false},
		{"GLB", FormatGLTF, false},
		{" fbx ", FormatFBX, false},
		{"obj", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCatalogFromDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.glb")
	touch(t, dir, "a.gltf")
	touch(t, dir, "c.fbx")
	touch(t, dir, "readme.txt")
	if err := os.Mkdir(filepath.Join(dir, "sub.gltf"), 0755); err != nil {
		t.Fatal(err)
	}

	paths, err := Catalog(dir, FormatGLTF, nil)
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}

	want := []AssetPath{
		AssetPath(filepath.Join(dir, "a.gltf")),
		AssetPath(filepath.Join(dir, "b.glb")),
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %d: %v", len(want), len(paths), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path %d: expected %s, got %s", i, want[i], paths[i])
		}
	}

	fbx, err := Catalog(dir, FormatFBX, nil)
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if len(fbx) != 1 || fbx[0].Base() != "c.fbx" {
		t.Errorf("expected only c.fbx, got %v", fbx)
	}
}

func TestCatalogExplicit(t *testing.T) {
	paths, err := Catalog("models", FormatGLTF, []string{"z.glb", "/abs/a.gltf"})
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if paths[0] != AssetPath(filepath.Join("models", "z.glb")) {
		t.Errorf("expected relative path joined with dir, got %s", paths[0])
	}
	if paths[1] != "/abs/a.gltf" {
		t.Errorf("expected absolute path kept, got %s", paths[1])
	}

	if _, err := Catalog("models", FormatGLTF, []string{"x.fbx"}); err == nil {
		t.Error("expected error for path of another format")
	}
}

func TestCatalogMissingDir(t *testing.T) {
	if _, err := Catalog(filepath.Join(t.TempDir(), "missing"), FormatGLTF, nil); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLimit(t *testing.T) {
	paths := []AssetPath{"a", "b", "c"}

	tests := []struct {
		n    int
		want int
	}{
		{0, 3},
		{-1, 3},
		{2, 2},
		{3, 3},
		{10, 3},
	}
	for _, tt := range tests {
		if got := Limit(paths, tt.n); len(got) != tt.want {
			t.Errorf("Limit(%d): expected %d paths, got %d", tt.n, tt.want, len(got))
		}
	}
}
