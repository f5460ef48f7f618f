package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor defines the interface for extracting mesh data from a parsed glTF document.
// Each primitive becomes one ImportedMesh carrying its vertex and face counts and its bounds
// transformed into model space by the instancing node's world matrix.
type gltfMeshExtractor interface {
	// ExtractMesh extracts all primitives of a mesh as separate ImportedMesh entries.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh in the document
	//   - nodeIndex: the node instancing the mesh, or -1
	//   - world: the node's world matrix (column-major)
	//
	// Returns:
	//   - []model.ImportedMesh: one entry per primitive
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int, nodeIndex int32, world []float32) ([]model.ImportedMesh, error)

	// ExtractAllMeshes walks the default scene and extracts every instanced mesh.
	// Documents without nodes fall back to extracting each mesh once at the origin.
	//
	// Returns:
	//   - []model.ImportedMesh: all extracted primitives
	//   - error: error if extraction fails
	ExtractAllMeshes() ([]model.ImportedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int, nodeIndex int32, world []float32) ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	result := make([]model.ImportedMesh, 0, len(mesh.Primitives))

	for primIdx := range mesh.Primitives {
		imported, err := e.extractPrimitive(&mesh.Primitives[primIdx], mesh.Name, primIdx, world)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		imported.NodeIndex = nodeIndex
		result = append(result, *imported)
	}

	return result, nil
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	var allMeshes []model.ImportedMesh
	var identity [16]float32
	common.Identity(identity[:])

	roots := gltfSceneRoots(doc)
	if len(roots) == 0 {
		for i := range doc.Meshes {
			meshes, err := e.ExtractMesh(i, -1, identity[:])
			if err != nil {
				return nil, err
			}
			allMeshes = append(allMeshes, meshes...)
		}
		return allMeshes, nil
	}

	visited := make(map[int]bool, len(doc.Nodes))
	var walk func(nodeIndex int, parent []float32) error
	walk = func(nodeIndex int, parent []float32) error {
		if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", nodeIndex)
		}
		if visited[nodeIndex] {
			return fmt.Errorf("node %d appears twice in the scene hierarchy", nodeIndex)
		}
		visited[nodeIndex] = true

		node := &doc.Nodes[nodeIndex]
		var local, world [16]float32
		gltfNodeLocalMatrix(node, local[:])
		common.Mul4(world[:], parent, local[:])

		if node.Mesh != nil {
			meshes, err := e.ExtractMesh(*node.Mesh, int32(nodeIndex), world[:])
			if err != nil {
				return fmt.Errorf("node %d: %w", nodeIndex, err)
			}
			allMeshes = append(allMeshes, meshes...)
		}
		for _, child := range node.Children {
			if err := walk(child, world[:]); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := walk(root, identity[:]); err != nil {
			return nil, err
		}
	}

	return allMeshes, nil
}

// extractPrimitive extracts a single primitive as an ImportedMesh.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, meshName string, primIndex int, world []float32) (*model.ImportedMesh, error) {
	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}

	acc, err := e.parser.Accessor(posAccessor)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}
	vertexCount := acc.Count

	// Prefer the accessor's declared min/max; fall back to scanning positions.
	local := common.EmptyBounds()
	if len(acc.Min) == 3 && len(acc.Max) == 3 {
		local.Extend([3]float32{acc.Min[0], acc.Min[1], acc.Min[2]})
		local.Extend([3]float32{acc.Max[0], acc.Max[1], acc.Max[2]})
	} else {
		positions, err := e.parser.ReadVec3Accessor(posAccessor)
		if err != nil {
			return nil, fmt.Errorf("failed to read positions: %w", err)
		}
		for _, p := range positions {
			local.Extend(p)
		}
	}

	elementCount := vertexCount
	if prim.Indices != nil {
		idx, err := e.parser.Accessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		elementCount = idx.Count
	}

	mode := gltfPrimitiveModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}

	materialIndex := -1
	if prim.Material != nil {
		materialIndex = *prim.Material
	}

	name := meshName
	if name == "" {
		name = fmt.Sprintf("mesh_%d", primIndex)
	}
	if primIndex > 0 {
		name = fmt.Sprintf("%s_prim%d", name, primIndex)
	}

	return &model.ImportedMesh{
		Name:          name,
		VertexCount:   vertexCount,
		FaceCount:     gltfFaceCount(mode, elementCount),
		MaterialIndex: materialIndex,
		Bounds:        transformBounds(local, world),
	}, nil
}

// gltfFaceCount returns the number of triangles a primitive draws.
// Point and line primitives have no faces.
func gltfFaceCount(mode, elementCount int) int {
	switch mode {
	case gltfPrimitiveModeTriangles:
		return elementCount / 3
	case gltfPrimitiveModeTriangleStrip, gltfPrimitiveModeTriangleFan:
		return max(elementCount-2, 0)
	default:
		return 0
	}
}

// gltfSceneRoots returns the root nodes of the default scene, or of the first scene
// when no default is set. Documents without scenes treat every unparented node as a root.
func gltfSceneRoots(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	parented := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			parented[c] = true
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !parented[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// gltfNodeLocalMatrix writes a node's local transform into out (column-major).
func gltfNodeLocalMatrix(node *gltfNode, out []float32) {
	if node.Matrix != nil {
		copy(out, node.Matrix[:])
		return
	}

	t := [3]float32{}
	r := [4]float32{0, 0, 0, 1}
	s := [3]float32{1, 1, 1}
	if node.Translation != nil {
		t = *node.Translation
	}
	if node.Rotation != nil {
		r = *node.Rotation
	}
	if node.Scale != nil {
		s = *node.Scale
	}

	x, y, z, w := r[0], r[1], r[2], r[3]
	out[0] = (1 - 2*(y*y+z*z)) * s[0]
	out[1] = (2 * (x*y + z*w)) * s[0]
	out[2] = (2 * (x*z - y*w)) * s[0]
	out[3] = 0
	out[4] = (2 * (x*y - z*w)) * s[1]
	out[5] = (1 - 2*(x*x+z*z)) * s[1]
	out[6] = (2 * (y*z + x*w)) * s[1]
	out[7] = 0
	out[8] = (2 * (x*z + y*w)) * s[2]
	out[9] = (2 * (y*z - x*w)) * s[2]
	out[10] = (1 - 2*(x*x+y*y)) * s[2]
	out[11] = 0
	out[12], out[13], out[14], out[15] = t[0], t[1], t[2], 1
}

// transformBounds returns the axis-aligned box enclosing b after transformation by m.
func transformBounds(b common.Bounds, m []float32) common.Bounds {
	if b.Empty() {
		return b
	}
	out := common.EmptyBounds()
	for i := 0; i < 8; i++ {
		p := [3]float32{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			p[0] = b.Max[0]
		}
		if i&2 != 0 {
			p[1] = b.Max[1]
		}
		if i&4 != 0 {
			p[2] = b.Max[2]
		}
		out.Extend([3]float32{
			m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
			m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
			m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
		})
	}
	return out
}
