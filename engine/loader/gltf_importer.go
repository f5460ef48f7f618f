package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// gltfImporterImpl is the implementation of the loaderBackend interface for glTF and GLB data.
type gltfImporterImpl struct{}

var _ loaderBackend = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - loaderBackend: the importer
func newGLTFImporter() loaderBackend {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(name string, data []byte, resolve resolveFunc) (*model.ImportedModel, error) {
	parser := newGLTFParser(resolve)
	glb := isGLBData(data)
	if err := parser.Parse(data, glb); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	imported, err := imp.importFromParser(parser, name)
	if err != nil {
		return nil, err
	}
	imported.Format = model.FormatGLTF
	if glb {
		imported.Format = model.FormatGLB
	}
	return imported, nil
}

// importFromParser performs a full import from a parser that has already loaded a document.
//
// Parameters:
//   - parser: the glTF parser that has already loaded a document
//   - fallbackName: name used when the document's scene is unnamed
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackName string) (*model.ImportedModel, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	meshes, err := newGLTFMeshExtractor(parser).ExtractAllMeshes()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	animations, err := newGLTFAnimationExtractor(parser).ExtractAllAnimations()
	if err != nil {
		return nil, fmt.Errorf("animation extraction failed: %w", err)
	}

	materials, err := newGLTFMaterialExtractor(parser).ExtractAllMaterials()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}

	return &model.ImportedModel{
		Name:       gltfExtractModelName(doc, fallbackName),
		Meshes:     meshes,
		Animations: animations,
		Materials:  materials,
	}, nil
}

// gltfExtractModelName derives a model name from the default scene or a fallback.
func gltfExtractModelName(doc *gltfDocument, fallback string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}

	if fallback != "" {
		return fallback
	}

	return "unnamed_model"
}
