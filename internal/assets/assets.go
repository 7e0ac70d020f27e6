// Package assets enumerates the model files shown by the showcase.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AssetPath identifies a loadable model file.
type AssetPath string

// Ext returns the lower-cased file extension including the dot.
func (p AssetPath) Ext() string {
	return strings.ToLower(filepath.Ext(string(p)))
}

// Base returns the file name without directories.
func (p AssetPath) Base() string {
	return filepath.Base(string(p))
}

// Format is a family of model file extensions.
type Format string

// Supported model formats.
const (
	FormatGLTF Format = "gltf"
	FormatFBX  Format = "fbx"
)

// ParseFormat converts a config string into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gltf", "glb":
		return FormatGLTF, nil
	case "fbx":
		return FormatFBX, nil
	default:
		return "", fmt.Errorf("unknown model format %q", s)
	}
}

// Extensions returns the file extensions that belong to the format.
func (f Format) Extensions() []string {
	switch f {
	case FormatGLTF:
		return []string{".gltf", ".glb"}
	case FormatFBX:
		return []string{".fbx"}
	default:
		return nil
	}
}

// Matches reports whether path has one of the format's extensions.
func (f Format) Matches(path AssetPath) bool {
	ext := path.Ext()
	for _, e := range f.Extensions() {
		if ext == e {
			return true
		}
	}
	return false
}

// Catalog returns the fixed list of model paths for one format.
// Explicit paths win over the directory listing; the directory listing is
// non-recursive and sorted so the order is stable between runs.
func Catalog(dir string, format Format, explicit []string) ([]AssetPath, error) {
	if len(format.Extensions()) == 0 {
		return nil, fmt.Errorf("unknown model format %q", format)
	}

	if len(explicit) > 0 {
		paths := make([]AssetPath, 0, len(explicit))
		for _, p := range explicit {
			ap := AssetPath(p)
			if !filepath.IsAbs(p) && dir != "" {
				ap = AssetPath(filepath.Join(dir, p))
			}
			if !format.Matches(ap) {
				return nil, fmt.Errorf("model %s is not a %s file", p, format)
			}
			paths = append(paths, ap)
		}
		return paths, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing models in %s: %w", dir, err)
	}

	var paths []AssetPath
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ap := AssetPath(filepath.Join(dir, e.Name()))
		if format.Matches(ap) {
			paths = append(paths, ap)
		}
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths, nil
}

// Limit returns the first n paths. n <= 0 means no limit.
func Limit(paths []AssetPath, n int) []AssetPath {
	if n <= 0 || n >= len(paths) {
		return paths
	}
	return paths[:n]
}
