package material

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"

	"github.com/cogentcore/webgpu/wgpu"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the albedo/diffuse RGBA color of the material.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithMetallic is an option builder that sets the metallic factor of the material.
//
// Parameters:
//   - metallic: the metallic factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metallic option to a material
func WithMetallic(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = metallic
	}
}

// WithRoughness is an option builder that sets the roughness factor of the material.
//
// Parameters:
//   - roughness: the roughness factor (0.0 = smooth, 1.0 = rough)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = roughness
	}
}

// WithOpacity is an option builder that sets the overall opacity, clamped to [0, 1].
//
// Parameters:
//   - opacity: the opacity
//
// Returns:
//   - MaterialBuilderOption: a function that applies the opacity option to a material
func WithOpacity(opacity float32) MaterialBuilderOption {
	return func(m *material) {
		m.opacity = common.Clamp(opacity, 0, 1)
	}
}

// WithTransparent is an option builder that marks the material as alpha blended.
// A standard source-alpha blend state is installed unless WithBlendState supplies one.
//
// Parameters:
//   - transparent: whether the material is blended
//
// Returns:
//   - MaterialBuilderOption: a function that applies the transparency option to a material
func WithTransparent(transparent bool) MaterialBuilderOption {
	return func(m *material) {
		m.transparent = transparent
	}
}

// WithWireframe is an option builder that makes the material draw edges only.
//
// Parameters:
//   - wireframe: whether the material is a wireframe
//
// Returns:
//   - MaterialBuilderOption: a function that applies the wireframe option to a material
func WithWireframe(wireframe bool) MaterialBuilderOption {
	return func(m *material) {
		m.wireframe = wireframe
	}
}

// WithFaceOpacity is an option builder that sets the opacity of faces beneath a wireframe.
//
// Parameters:
//   - opacity: the face opacity, clamped to [0, 1]
//
// Returns:
//   - MaterialBuilderOption: a function that applies the face opacity option to a material
func WithFaceOpacity(opacity float32) MaterialBuilderOption {
	return func(m *material) {
		m.faceOpacity = common.Clamp(opacity, 0, 1)
	}
}

// WithEdgeHighlight is an option builder that enables silhouette edge emphasis.
//
// Parameters:
//   - on: whether edges are highlighted
//
// Returns:
//   - MaterialBuilderOption: a function that applies the edge highlight option to a material
func WithEdgeHighlight(on bool) MaterialBuilderOption {
	return func(m *material) {
		m.edgeHighlight = on
	}
}

// WithTopology sets the primitive topology of the material's pipeline.
//
// Parameters:
//   - topology: the primitive topology (e.g., wgpu.PrimitiveTopologyTriangleList, wgpu.PrimitiveTopologyLineList)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the topology option to a material
func WithTopology(topology wgpu.PrimitiveTopology) MaterialBuilderOption {
	return func(m *material) {
		m.topology = topology
	}
}

// WithCullMode sets the face culling mode of the material's pipeline.
//
// Parameters:
//   - mode: the cull mode (e.g., wgpu.CullModeNone, wgpu.CullModeBack)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the cull mode option to a material
func WithCullMode(mode wgpu.CullMode) MaterialBuilderOption {
	return func(m *material) {
		m.cullMode = mode
	}
}

// WithFrontFace sets the front face winding order of the material's pipeline.
//
// Parameters:
//   - frontFace: the front face (e.g., wgpu.FrontFaceCCW, wgpu.FrontFaceCW)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the front face option to a material
func WithFrontFace(frontFace wgpu.FrontFace) MaterialBuilderOption {
	return func(m *material) {
		m.frontFace = frontFace
	}
}

// WithBlendState sets an explicit blend state for the material's pipeline.
//
// Parameters:
//   - state: the blend state, or nil for opaque rendering
//
// Returns:
//   - MaterialBuilderOption: a function that applies the blend state option to a material
func WithBlendState(state *wgpu.BlendState) MaterialBuilderOption {
	return func(m *material) {
		m.blendState = state
	}
}
