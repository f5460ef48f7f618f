package material

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"

	"github.com/cogentcore/webgpu/wgpu"
)

// material is the implementation of the Material interface.
type material struct {
	name          string
	baseColor     [4]float32
	metallic      float32
	roughness     float32
	opacity       float32
	transparent   bool
	wireframe     bool
	faceOpacity   float32
	edgeHighlight bool
	topology      wgpu.PrimitiveTopology
	cullMode      wgpu.CullMode
	frontFace     wgpu.FrontFace
	blendState    *wgpu.BlendState
}

// Material defines the interface for a render material, encapsulating surface
// properties and the pipeline state a WebGPU renderer needs to draw with it.
//
// Surface properties imported from a model file are set at construction. Opacity, color
// and the wireframe parameters are mutable so an override material can be tuned in place
// without being replaced.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo/diffuse RGBA color of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Metallic retrieves the metallic factor of the material.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness retrieves the roughness factor of the material.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// Opacity retrieves the overall opacity the material is drawn with.
	//
	// Returns:
	//   - float32: opacity in [0, 1]
	Opacity() float32

	// Transparent reports whether the material is alpha blended.
	//
	// Returns:
	//   - bool: true if the material needs a blend state
	Transparent() bool

	// Wireframe reports whether the material draws edges instead of filled faces.
	//
	// Returns:
	//   - bool: true for wireframe materials
	Wireframe() bool

	// FaceOpacity retrieves the opacity of the faces drawn underneath a wireframe.
	// Zero hides the faces entirely.
	//
	// Returns:
	//   - float32: face opacity in [0, 1]
	FaceOpacity() float32

	// EdgeHighlight reports whether silhouette edges are emphasised.
	//
	// Returns:
	//   - bool: true if edges are highlighted
	EdgeHighlight() bool

	// Topology retrieves the primitive topology of the render pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: triangle list for shaded materials, line list for wireframes
	Topology() wgpu.PrimitiveTopology

	// CullMode retrieves the face culling mode of the render pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// FrontFace retrieves the winding order of front faces.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding
	FrontFace() wgpu.FrontFace

	// BlendState retrieves the color blend state, or nil for opaque materials.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state or nil
	BlendState() *wgpu.BlendState

	// SetBaseColor replaces the base color; the alpha channel is kept.
	//
	// Parameters:
	//   - color: the new RGB color (alpha ignored)
	SetBaseColor(color [4]float32)

	// SetOpacity sets the overall opacity, clamped to [0, 1].
	//
	// Parameters:
	//   - opacity: the new opacity
	SetOpacity(opacity float32)

	// SetFaceOpacity sets the opacity of faces underneath a wireframe, clamped to [0, 1].
	//
	// Parameters:
	//   - opacity: the new face opacity
	SetFaceOpacity(opacity float32)

	// SetEdgeHighlight enables or disables silhouette edge emphasis.
	//
	// Parameters:
	//   - on: whether edges are highlighted
	SetEdgeHighlight(on bool)

	// Descriptor returns a serializable summary of the material for clients.
	//
	// Returns:
	//   - Descriptor: the material summary
	Descriptor() Descriptor
}

// Descriptor is the JSON form of a Material sent to browser clients.
type Descriptor struct {
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	Opacity       float32 `json:"opacity"`
	Transparent   bool    `json:"transparent"`
	Wireframe     bool    `json:"wireframe"`
	FaceOpacity   float32 `json:"faceOpacity"`
	EdgeHighlight bool    `json:"edgeHighlight"`
	Topology      string  `json:"topology"`
	CullMode      string  `json:"cullMode"`
	FrontFace     string  `json:"frontFace"`
	Blend         bool    `json:"blend"`
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// Defaults describe an opaque white triangle-list material with back-face culling.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		metallic:  0.0,
		roughness: 1.0,
		opacity:   1.0,
		topology:  wgpu.PrimitiveTopologyTriangleList,
		cullMode:  wgpu.CullModeBack,
		frontFace: wgpu.FrontFaceCCW,
	}
	for _, opt := range options {
		opt(m)
	}
	if m.transparent && m.blendState == nil {
		m.blendState = alphaBlend()
	}
	return m
}

// FromImported builds the render material for a material decoded from a model file.
//
// Parameters:
//   - im: the imported material properties
//
// Returns:
//   - Material: the render material
func FromImported(im common.ImportedMaterial) Material {
	options := []MaterialBuilderOption{
		WithName(im.Name),
		WithBaseColor(im.BaseColor),
		WithMetallic(im.Metallic),
		WithRoughness(im.Roughness),
	}
	if im.DoubleSided {
		options = append(options, WithCullMode(wgpu.CullModeNone))
	}
	if im.AlphaMode == common.AlphaModeBlend {
		options = append(options, WithTransparent(true), WithOpacity(im.BaseColor[3]))
	}
	return NewMaterial(options...)
}

// NewWireframeMaterial creates the flat-colored translucent override used by the wireframe render mode.
//
// Parameters:
//   - color: the wire color (alpha ignored)
//   - opacity: the wire opacity
//   - faceOpacity: the opacity of faces drawn beneath the wires
//   - edgeHighlight: whether silhouette edges are emphasised
//
// Returns:
//   - Material: the wireframe material
func NewWireframeMaterial(color [4]float32, opacity, faceOpacity float32, edgeHighlight bool) Material {
	return NewMaterial(
		WithName("wireframe"),
		WithBaseColor(color),
		WithOpacity(opacity),
		WithTransparent(true),
		WithWireframe(true),
		WithFaceOpacity(faceOpacity),
		WithEdgeHighlight(edgeHighlight),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithCullMode(wgpu.CullModeNone),
	)
}

func alphaBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Opacity() float32 {
	return m.opacity
}

func (m *material) Transparent() bool {
	return m.transparent
}

func (m *material) Wireframe() bool {
	return m.wireframe
}

func (m *material) FaceOpacity() float32 {
	return m.faceOpacity
}

func (m *material) EdgeHighlight() bool {
	return m.edgeHighlight
}

func (m *material) Topology() wgpu.PrimitiveTopology {
	return m.topology
}

func (m *material) CullMode() wgpu.CullMode {
	return m.cullMode
}

func (m *material) FrontFace() wgpu.FrontFace {
	return m.frontFace
}

func (m *material) BlendState() *wgpu.BlendState {
	return m.blendState
}

func (m *material) SetBaseColor(color [4]float32) {
	m.baseColor = [4]float32{color[0], color[1], color[2], m.baseColor[3]}
}

func (m *material) SetOpacity(opacity float32) {
	m.opacity = common.Clamp(opacity, 0, 1)
}

func (m *material) SetFaceOpacity(opacity float32) {
	m.faceOpacity = common.Clamp(opacity, 0, 1)
}

func (m *material) SetEdgeHighlight(on bool) {
	m.edgeHighlight = on
}

func (m *material) Descriptor() Descriptor {
	return Descriptor{
		Name:          m.name,
		Color:         common.FormatHexColor(m.baseColor),
		Opacity:       m.opacity,
		Transparent:   m.transparent,
		Wireframe:     m.wireframe,
		FaceOpacity:   m.faceOpacity,
		EdgeHighlight: m.edgeHighlight,
		Topology:      topologyName(m.topology),
		CullMode:      cullModeName(m.cullMode),
		FrontFace:     frontFaceName(m.frontFace),
		Blend:         m.blendState != nil,
	}
}

func topologyName(t wgpu.PrimitiveTopology) string {
	switch t {
	case wgpu.PrimitiveTopologyPointList:
		return "point-list"
	case wgpu.PrimitiveTopologyLineList:
		return "line-list"
	case wgpu.PrimitiveTopologyTriangleList:
		return "triangle-list"
	default:
		return "unknown"
	}
}

func cullModeName(c wgpu.CullMode) string {
	switch c {
	case wgpu.CullModeNone:
		return "none"
	case wgpu.CullModeFront:
		return "front"
	case wgpu.CullModeBack:
		return "back"
	default:
		return "unknown"
	}
}

func frontFaceName(f wgpu.FrontFace) string {
	switch f {
	case wgpu.FrontFaceCCW:
		return "ccw"
	case wgpu.FrontFaceCW:
		return "cw"
	default:
		return "unknown"
	}
}
