package loader

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// loaderBackend defines the generic interface for importing models from in-memory data.
// Concrete implementations (glTF/GLB, STL) handle format-specific details.
type loaderBackend interface {
	// Import decodes a complete model file.
	//
	// Parameters:
	//   - name: the model name used when the file does not carry one
	//   - data: the file contents
	//   - resolve: fetches resources referenced by relative URI; may be nil
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if decoding fails
	Import(name string, data []byte, resolve resolveFunc) (*model.ImportedModel, error)
}
