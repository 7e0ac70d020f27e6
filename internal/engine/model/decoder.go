package model

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// ErrUnsupportedFormat is returned when no decoder handles a file extension.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// Decoder turns a model file into a Model.
type Decoder interface {
	Decode(ctx context.Context, path string) (*Model, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, path string) (*Model, error)

// Decode calls f.
func (f DecoderFunc) Decode(ctx context.Context, path string) (*Model, error) {
	return f(ctx, path)
}

// Registry dispatches decoding by file extension.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewRegistry creates a registry with the built-in glTF decoder.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]Decoder)}
	gltfDec := NewGLTFDecoder()
	r.Register(".gltf", gltfDec)
	r.Register(".glb", gltfDec)
	return r
}

// Register sets the decoder for ext (".fbx", ".glb", ...).
func (r *Registry) Register(ext string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[strings.ToLower(ext)] = d
}

// Decode picks the decoder by the extension of path.
func (r *Registry) Decode(ctx context.Context, path string) (*Model, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	d, ok := r.decoders[ext]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	return d.Decode(ctx, path)
}
