package loader

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// ErrUnsupportedFormat is returned when a file is neither glTF, GLB nor STL.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// ErrNoSource is returned by Load when the Loader was built without a Source.
var ErrNoSource = errors.New("loader has no source configured")

// loader is the implementation of the Loader interface.
type loader struct {
	mu *sync.RWMutex

	source Source

	modelCache map[string]model.Model

	backends map[model.Format]loaderBackend
}

// Loader defines the public-facing interface for loading and caching 3D models.
// It abstracts the file format (glTF, GLB, STL) behind format backends and
// manages a cache of previously loaded models keyed by URL.
type Loader interface {
	// Load fetches a model through the configured Source, imports it and caches the result.
	// If the URL is already cached, the cached version is returned.
	// The format is detected from filename when given, otherwise from the URL and the file contents.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - url: the model URL, e.g. "display/chair.glb" or "blob:<id>"
	//   - filename: an optional file name used for format detection when the URL has no extension
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: error if fetching or decoding fails
	Load(ctx context.Context, url, filename string) (model.Model, error)

	// LoadBytes imports a model already held in memory. The result is not cached.
	// External glTF buffers cannot be resolved for in-memory data.
	//
	// Parameters:
	//   - filename: the file name, used for naming and format detection
	//   - data: the file contents
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if decoding fails
	LoadBytes(filename string, data []byte) (model.Model, error)

	// Get retrieves a cached model by URL. Returns nil if not found.
	//
	// Parameters:
	//   - url: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(url string) model.Model

	// Evict drops a cached model, e.g. when its blob handle is released.
	//
	// Parameters:
	//   - url: the cache key to remove
	Evict(url string)

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by URL
	Models() map[string]model.Model
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the glTF/GLB and STL backends registered and the options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided options
func NewLoader(options ...LoaderBuilderOption) Loader {
	gltf := newGLTFImporter()
	l := &loader{
		mu:         &sync.RWMutex{},
		modelCache: make(map[string]model.Model),
		backends: map[model.Format]loaderBackend{
			model.FormatGLB:  gltf,
			model.FormatGLTF: gltf,
			model.FormatSTL:  newSTLImporter(),
		},
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(ctx context.Context, url, filename string) (model.Model, error) {
	if m := l.Get(url); m != nil {
		return m, nil
	}
	if l.source == nil {
		return nil, ErrNoSource
	}

	data, err := l.source.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	name := filename
	if name == "" {
		name = path.Base(url)
	}
	resolve := func(uri string) ([]byte, error) {
		return l.source.Fetch(ctx, resolveRelative(url, uri))
	}

	m, err := l.decode(name, data, resolve)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.modelCache[url] = m
	return m, nil
}

func (l *loader) LoadBytes(filename string, data []byte) (model.Model, error) {
	return l.decode(filename, data, nil)
}

func (l *loader) Get(url string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[url]
}

func (l *loader) Evict(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.modelCache, url)
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		out[k] = v
	}
	return out
}

// decode selects the backend for the detected format and converts its output into a Model.
func (l *loader) decode(filename string, data []byte, resolve resolveFunc) (model.Model, error) {
	format, err := DetectFormat(filename, data)
	if err != nil {
		return nil, err
	}
	backend, ok := l.backends[format]
	if !ok {
		return nil, fmt.Errorf("%s: %w", format, ErrUnsupportedFormat)
	}

	imported, err := backend.Import(strings.TrimSuffix(path.Base(filename), path.Ext(filename)), data, resolve)
	if err != nil {
		return nil, err
	}
	return model.FromImported(imported), nil
}

// DetectFormat decides the container format of a model file.
// A recognised extension wins; otherwise the GLB magic number, a leading JSON object
// or a binary STL size signature are checked, in that order.
//
// Parameters:
//   - filename: the file name (may be empty or extensionless, e.g. for blob URLs)
//   - data: the file contents, or at least the first bytes of them
//
// Returns:
//   - model.Format: the detected format
//   - error: ErrUnsupportedFormat if the file cannot be identified
func DetectFormat(filename string, data []byte) (model.Format, error) {
	switch ext := strings.ToLower(path.Ext(filename)); ext {
	case ".glb":
		return model.FormatGLB, nil
	case ".gltf":
		return model.FormatGLTF, nil
	case ".stl":
		return model.FormatSTL, nil
	case "":
	default:
		return "", fmt.Errorf("%s: %w", ext, ErrUnsupportedFormat)
	}

	trimmed := strings.TrimLeft(string(data[:min(len(data), 64)]), " \t\r\n\ufeff")
	switch {
	case isGLBData(data):
		return model.FormatGLB, nil
	case strings.HasPrefix(trimmed, "{"):
		return model.FormatGLTF, nil
	case isBinarySTL(data), strings.HasPrefix(trimmed, "solid"):
		return model.FormatSTL, nil
	}
	return "", ErrUnsupportedFormat
}
