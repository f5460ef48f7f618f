package model

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
)

// Format identifies the container a model was decoded from.
type Format string

const (
	FormatGLB  Format = "glb"
	FormatGLTF Format = "gltf"
	FormatSTL  Format = "stl"
)

// --- Transform Types ---

// Transform represents a decomposed transform for animation interpolation.
type Transform struct {
	// Translation is the position offset.
	Translation [3]float32 `json:"translation"`

	// Rotation is the orientation as a quaternion (x, y, z, w).
	Rotation [4]float32 `json:"rotation"`

	// Scale is the scale factor along each axis.
	Scale [3]float32 `json:"scale"`
}

// IdentityTransform returns a transform with no translation, no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
}

// --- Animation Types ---

// AnimationClip represents a single named animation (idle, walk, spin, etc.).
type AnimationClip struct {
	// Name is the animation identifier.
	Name string

	// Duration is the total length of the animation in seconds.
	Duration float32

	// TicksPerSecond is the sample rate of the animation.
	TicksPerSecond float32

	// Channels contains animation data for each animated node.
	Channels []AnimationChannel
}

// Info returns the name and duration pair the store and UI work with.
func (c *AnimationClip) Info() ClipInfo {
	return ClipInfo{Name: c.Name, Duration: c.Duration}
}

// AnimationChannel contains keyframe data for a single node.
type AnimationChannel struct {
	// NodeIndex is the index of the glTF node this channel animates.
	NodeIndex int32

	// PositionKeys are keyframes for translation.
	PositionKeys []VectorKeyframe

	// RotationKeys are keyframes for rotation (quaternion).
	RotationKeys []QuaternionKeyframe

	// ScaleKeys are keyframes for scale.
	ScaleKeys []VectorKeyframe
}

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the 3D vector value at this keyframe.
	Value [3]float32
}

// QuaternionKeyframe stores a quaternion rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the quaternion value at this keyframe (x, y, z, w).
	Value [4]float32
}

// Sample evaluates the channel at time t with linear interpolation between keyframes.
// Channels without keys for a component leave that component at identity.
//
// Parameters:
//   - t: the clip-local time in seconds
//
// Returns:
//   - Transform: the interpolated local transform of the target node
func (c *AnimationChannel) Sample(t float32) Transform {
	out := IdentityTransform()
	if len(c.PositionKeys) > 0 {
		out.Translation = sampleVec3(c.PositionKeys, t)
	}
	if len(c.ScaleKeys) > 0 {
		out.Scale = sampleVec3(c.ScaleKeys, t)
	}
	if len(c.RotationKeys) > 0 {
		out.Rotation = sampleQuat(c.RotationKeys, t)
	}
	return out
}

func sampleVec3(keys []VectorKeyframe, t float32) [3]float32 {
	i, f := locate(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if f == 0 {
		return keys[i].Value
	}
	a, b := keys[i].Value, keys[i+1].Value
	return [3]float32{
		a[0] + (b[0]-a[0])*f,
		a[1] + (b[1]-a[1])*f,
		a[2] + (b[2]-a[2])*f,
	}
}

func sampleQuat(keys []QuaternionKeyframe, t float32) [4]float32 {
	i, f := locate(len(keys), func(i int) float32 { return keys[i].Time }, t)
	if f == 0 {
		return keys[i].Value
	}
	a, b := keys[i].Value, keys[i+1].Value
	// shortest path
	dot := a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
	if dot < 0 {
		b = [4]float32{-b[0], -b[1], -b[2], -b[3]}
	}
	q := [4]float32{
		a[0] + (b[0]-a[0])*f,
		a[1] + (b[1]-a[1])*f,
		a[2] + (b[2]-a[2])*f,
		a[3] + (b[3]-a[3])*f,
	}
	l := math32.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if l == 0 {
		return [4]float32{0, 0, 0, 1}
	}
	return [4]float32{q[0] / l, q[1] / l, q[2] / l, q[3] / l}
}

// locate finds the keyframe segment containing t. It returns the left key index and the
// interpolation factor within the segment; f is 0 when t is clamped to an end key.
func locate(n int, at func(int) float32, t float32) (int, float32) {
	if n == 1 || t <= at(0) {
		return 0, 0
	}
	if t >= at(n-1) {
		return n - 1, 0
	}
	for i := 0; i < n-1; i++ {
		t0, t1 := at(i), at(i+1)
		if t >= t0 && t < t1 {
			if t1 == t0 {
				return i, 0
			}
			return i, (t - t0) / (t1 - t0)
		}
	}
	return n - 1, 0
}

// ClipInfo is the name and duration of a clip, without keyframe data.
type ClipInfo struct {
	Name     string  `json:"name"`
	Duration float32 `json:"duration"`
}

// --- Import Types ---

// ImportedModel represents a 3D model loaded from an external format.
// This is the universal format that importers (glTF, GLB, STL) produce.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Format is the container the model was decoded from.
	Format Format

	// Meshes contains all mesh data (may have multiple meshes/primitives).
	Meshes []ImportedMesh

	// Animations are all animation clips bundled with the model.
	Animations []*AnimationClip

	// Materials are referenced materials (indices into a material library).
	Materials []common.ImportedMaterial
}

// ImportedMesh represents a single mesh primitive within an imported model.
// Only the data the viewer reports or positions by is retained; vertex streams are not kept.
type ImportedMesh struct {
	// Name is the mesh identifier.
	Name string

	// NodeIndex is the glTF node that instances this mesh, or -1 when the format has no nodes.
	NodeIndex int32

	// VertexCount is the number of vertices in the primitive.
	VertexCount int

	// FaceCount is the number of triangles in the primitive.
	FaceCount int

	// MaterialIndex references ImportedModel.Materials, or -1 for the default material.
	MaterialIndex int

	// Bounds is the axis-aligned bounding box in model space.
	Bounds common.Bounds
}

// Stats summarises a model for the model info panel.
type Stats struct {
	Faces     int      `json:"faces"`
	Vertices  int      `json:"vertices"`
	Materials []string `json:"materials"`
}
