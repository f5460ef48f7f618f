package model

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithFormat is an option builder that records the container format of the Model.
//
// Parameters:
//   - format: the source format
//
// Returns:
//   - ModelBuilderOption: a function that applies the format option to a model
func WithFormat(format Format) ModelBuilderOption {
	return func(m *model) {
		m.format = format
	}
}

// WithMeshes is an option builder that sets the mesh summaries of the Model.
// The model bounds are recomputed as the union of every mesh's bounds.
//
// Parameters:
//   - meshes: the imported mesh primitives
//
// Returns:
//   - ModelBuilderOption: a function that applies the meshes option to a model
func WithMeshes(meshes []ImportedMesh) ModelBuilderOption {
	return func(m *model) {
		m.meshes = meshes
		m.bounds = common.EmptyBounds()
		for _, mesh := range meshes {
			m.bounds.Union(mesh.Bounds)
		}
	}
}

// WithAnimations is an option builder that sets the animation clips of the Model.
//
// Parameters:
//   - animations: the animation clips to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the animations option to a model
func WithAnimations(animations []*AnimationClip) ModelBuilderOption {
	return func(m *model) {
		m.animations = animations
	}
}

// WithImportedMaterials is an option builder that sets the raw imported materials of the Model.
//
// Parameters:
//   - materials: the imported materials to set
//
// Returns:
//   - ModelBuilderOption: a function that applies the imported materials option to a model
func WithImportedMaterials(materials []common.ImportedMaterial) ModelBuilderOption {
	return func(m *model) {
		m.materials = materials
	}
}
