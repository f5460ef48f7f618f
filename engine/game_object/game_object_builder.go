package game_object

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
)

// GameObjectBuilderOption is a function that configures a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID is an option builder that sets the object's ID.
//
// Parameters:
//   - id: the object ID
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the ID option to a gameObject
func WithID(id uint64) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.id = id
	}
}

// WithName is an option builder that overrides the name taken from the mesh.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the name option to a gameObject
func WithName(name string) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.name = name
	}
}

// WithEnabled is an option builder that sets whether the object is drawn.
//
// Parameters:
//   - enabled: true to draw the object
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the enabled option to a gameObject
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.enabled = enabled
	}
}

// WithMesh is an option builder that sets the imported mesh the object draws.
//
// Parameters:
//   - mesh: the mesh summary
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the mesh option to a gameObject
func WithMesh(mesh model.ImportedMesh) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.mesh = mesh
	}
}

// WithMaterial is an option builder that sets the material the object owns.
//
// Parameters:
//   - m: the original material
//
// Returns:
//   - GameObjectBuilderOption: a function that applies the material option to a gameObject
func WithMaterial(m material.Material) GameObjectBuilderOption {
	return func(g *gameObject) {
		if m != nil {
			g.slot = material.NewSlot(m)
		}
	}
}
