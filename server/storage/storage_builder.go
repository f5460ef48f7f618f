package storage

import "strings"

// StorageBuilderOption is a functional option for configuring a Storage during construction.
type StorageBuilderOption func(*localStorage)

// WithUniqueNames is an option builder that prefixes every saved name with a random uuid, so
// uploads with the same name never replace each other.
//
// Parameters:
//   - enabled: whether to prefix names
//
// Returns:
//   - StorageBuilderOption: a function that sets the naming mode on a storage
func WithUniqueNames(enabled bool) StorageBuilderOption {
	return func(s *localStorage) {
		s.uniqueNames = enabled
	}
}

// WithMaxSize is an option builder that rejects files larger than n bytes with ErrTooLarge.
//
// Parameters:
//   - n: the size limit in bytes; 0 disables the limit
//
// Returns:
//   - StorageBuilderOption: a function that sets the size limit on a storage
func WithMaxSize(n int64) StorageBuilderOption {
	return func(s *localStorage) {
		s.maxSize = n
	}
}

// WithExtensions is an option builder that replaces the accepted file extensions.
//
// Parameters:
//   - exts: extensions including the dot, e.g. ".glb"; matched case-insensitively
//
// Returns:
//   - StorageBuilderOption: a function that sets the accepted extensions on a storage
func WithExtensions(exts ...string) StorageBuilderOption {
	return func(s *localStorage) {
		s.extensions = make([]string, 0, len(exts))
		for _, e := range exts {
			s.extensions = append(s.extensions, strings.ToLower(e))
		}
	}
}
