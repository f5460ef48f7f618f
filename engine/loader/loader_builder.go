package loader

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader during construction.
type LoaderBuilderOption func(*loader)

// WithSource is an option builder that sets where the Loader fetches model URLs from.
//
// Parameters:
//   - src: the Source used by Load
//
// Returns:
//   - LoaderBuilderOption: a function that applies the source option to a loader
func WithSource(src Source) LoaderBuilderOption {
	return func(l *loader) {
		l.source = src
	}
}

// WithModel is an option builder that pre-populates the model cache.
//
// Parameters:
//   - url: the cache key
//   - m: the Model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(url string, m model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[url] = m
	}
}
