// package common contains common types that are used throughout the viewer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// AlphaMode mirrors the glTF material alphaMode values.
type AlphaMode string

const (
	AlphaModeOpaque AlphaMode = "OPAQUE"
	AlphaModeMask   AlphaMode = "MASK"
	AlphaModeBlend  AlphaMode = "BLEND"
)

// ImportedMaterial represents material properties from an imported model file.
type ImportedMaterial struct {
	// Name is the material identifier.
	Name string

	// BaseColor is the albedo/diffuse color (RGBA).
	BaseColor [4]float32

	// Metallic factor (0.0 = dielectric, 1.0 = metal).
	Metallic float32

	// Roughness factor (0.0 = smooth, 1.0 = rough).
	Roughness float32

	// AlphaMode is how the alpha channel of BaseColor is interpreted.
	AlphaMode AlphaMode

	// DoubleSided disables back-face culling when true.
	DoubleSided bool
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Empty reports whether no point has been added to the box.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0]
}

// EmptyBounds returns an inverted box that any Extend call will overwrite.
func EmptyBounds() Bounds {
	const inf = float32(3.4e38)
	return Bounds{
		Min: [3]float32{inf, inf, inf},
		Max: [3]float32{-inf, -inf, -inf},
	}
}

// Extend grows the box to include p.
func (b *Bounds) Extend(p [3]float32) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// Union grows the box to include o.
func (b *Bounds) Union(o Bounds) {
	if o.Empty() {
		return
	}
	b.Extend(o.Min)
	b.Extend(o.Max)
}

// Center returns the midpoint of the box, or the origin for an empty box.
func (b Bounds) Center() [3]float32 {
	if b.Empty() {
		return [3]float32{}
	}
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() [3]float32 {
	if b.Empty() {
		return [3]float32{}
	}
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}
