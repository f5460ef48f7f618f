package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// model is the implementation of the Model interface.
type model struct {
	name       string
	format     Format
	meshes     []ImportedMesh
	animations []*AnimationClip
	materials  []common.ImportedMaterial
	bounds     common.Bounds
}

// Model defines the interface for a loaded 3D model.
// A Model holds mesh summaries, animation clips and material properties.
// It is produced by the Loader after importing a model file.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Format retrieves the container format the model was decoded from.
	//
	// Returns:
	//   - Format: glb, gltf or stl
	Format() Format

	// Meshes retrieves the imported mesh primitives.
	//
	// Returns:
	//   - []ImportedMesh: the mesh summaries
	Meshes() []ImportedMesh

	// Animations retrieves all animation clips bundled with this model.
	//
	// Returns:
	//   - []*AnimationClip: the animation clips
	Animations() []*AnimationClip

	// ImportedMaterials retrieves the raw material properties imported from the model file.
	//
	// Returns:
	//   - []common.ImportedMaterial: the imported materials
	ImportedMaterials() []common.ImportedMaterial

	// AnimationCount returns the number of available animation clips.
	//
	// Returns:
	//   - int: the animation count
	AnimationCount() int

	// AnimationNames returns the names of all animation clips.
	//
	// Returns:
	//   - []string: the animation clip names
	AnimationNames() []string

	// Clips returns name/duration pairs for all animation clips, in file order.
	//
	// Returns:
	//   - []ClipInfo: the clip summaries
	Clips() []ClipInfo

	// GetAnimationIndex returns the index of an animation by name, or -1 if not found.
	//
	// Parameters:
	//   - name: the animation clip name to search for
	//
	// Returns:
	//   - int: the animation index, or -1 if not found
	GetAnimationIndex(name string) int

	// Bounds returns the bounding box enclosing every mesh.
	//
	// Returns:
	//   - common.Bounds: the model-space bounds (empty when the model has no geometry)
	Bounds() common.Bounds

	// Stats returns face, vertex and material totals for display.
	//
	// Returns:
	//   - Stats: the model statistics
	Stats() Stats
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		bounds: common.EmptyBounds(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// FromImported wraps an ImportedModel produced by an importer.
func FromImported(im *ImportedModel) Model {
	return NewModel(
		WithName(im.Name),
		WithFormat(im.Format),
		WithMeshes(im.Meshes),
		WithAnimations(im.Animations),
		WithImportedMaterials(im.Materials),
	)
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Format() Format {
	return m.format
}

func (m *model) Meshes() []ImportedMesh {
	return m.meshes
}

func (m *model) Animations() []*AnimationClip {
	return m.animations
}

func (m *model) ImportedMaterials() []common.ImportedMaterial {
	return m.materials
}

func (m *model) AnimationCount() int {
	return len(m.animations)
}

func (m *model) AnimationNames() []string {
	names := make([]string, len(m.animations))
	for i, anim := range m.animations {
		names[i] = anim.Name
	}
	return names
}

func (m *model) Clips() []ClipInfo {
	clips := make([]ClipInfo, len(m.animations))
	for i, anim := range m.animations {
		clips[i] = anim.Info()
	}
	return clips
}

func (m *model) GetAnimationIndex(name string) int {
	for i, anim := range m.animations {
		if anim.Name == name {
			return i
		}
	}
	return -1
}

func (m *model) Bounds() common.Bounds {
	return m.bounds
}

func (m *model) Stats() Stats {
	s := Stats{Materials: make([]string, 0, len(m.materials))}
	for _, mesh := range m.meshes {
		s.Faces += mesh.FaceCount
		s.Vertices += mesh.VertexCount
	}
	for i, mat := range m.materials {
		s.Materials = append(s.Materials, common.Coalesce(mat.Name, fmt.Sprintf("material_%d", i)))
	}
	return s
}
