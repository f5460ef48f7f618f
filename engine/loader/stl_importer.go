package loader

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50 // normal + 3 vertices (12 float32) + uint16 attribute count
)

var errMalformedSTL = errors.New("malformed STL data")

// stlImporterImpl is the implementation of the loaderBackend interface for STL data.
// STL carries a single triangle soup with no materials or animations.
type stlImporterImpl struct{}

var _ loaderBackend = &stlImporterImpl{}

func newSTLImporter() loaderBackend {
	return &stlImporterImpl{}
}

func (imp *stlImporterImpl) Import(name string, data []byte, _ resolveFunc) (*model.ImportedModel, error) {
	var (
		mesh model.ImportedMesh
		err  error
	)
	if isBinarySTL(data) {
		mesh, err = parseBinarySTL(data)
	} else if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		mesh, err = parseASCIISTL(data)
	} else {
		err = errMalformedSTL
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	mesh.Name = common.Coalesce(mesh.Name, name)
	mesh.NodeIndex = -1
	mesh.MaterialIndex = -1

	return &model.ImportedModel{
		Name:   common.Coalesce(name, mesh.Name),
		Format: model.FormatSTL,
		Meshes: []model.ImportedMesh{mesh},
	}, nil
}

// isBinarySTL reports whether data is sized exactly like a binary STL with the triangle
// count it declares. ASCII files may start with "solid" yet some exporters write that
// into binary headers too, so the size check decides.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return int64(stlHeaderSize+4)+int64(count)*stlTriangleSize == int64(len(data))
}

func parseBinarySTL(data []byte) (model.ImportedMesh, error) {
	count := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
	bounds := common.EmptyBounds()

	off := stlHeaderSize + 4
	for i := 0; i < count; i++ {
		tri := data[off : off+stlTriangleSize]
		// skip the 12-byte facet normal
		for v := 0; v < 3; v++ {
			base := 12 + v*12
			bounds.Extend([3]float32{
				math.Float32frombits(binary.LittleEndian.Uint32(tri[base:])),
				math.Float32frombits(binary.LittleEndian.Uint32(tri[base+4:])),
				math.Float32frombits(binary.LittleEndian.Uint32(tri[base+8:])),
			})
		}
		off += stlTriangleSize
	}

	return model.ImportedMesh{
		Name:        strings.TrimRight(string(data[:stlHeaderSize]), " \x00"),
		VertexCount: count * 3,
		FaceCount:   count,
		Bounds:      bounds,
	}, nil
}

func parseASCIISTL(data []byte) (model.ImportedMesh, error) {
	var mesh model.ImportedMesh
	bounds := common.EmptyBounds()

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			if line == 1 && len(fields) > 1 {
				mesh.Name = strings.Join(fields[1:], " ")
			}
		case "facet":
			mesh.FaceCount++
		case "vertex":
			if len(fields) != 4 {
				return mesh, fmt.Errorf("line %d: %w", line, errMalformedSTL)
			}
			var p [3]float32
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return mesh, fmt.Errorf("line %d: %w", line, errMalformedSTL)
				}
				p[i] = float32(f)
			}
			bounds.Extend(p)
			mesh.VertexCount++
		}
	}
	if err := scanner.Err(); err != nil {
		return mesh, err
	}
	if mesh.VertexCount != mesh.FaceCount*3 {
		return mesh, fmt.Errorf("%d vertices for %d facets: %w", mesh.VertexCount, mesh.FaceCount, errMalformedSTL)
	}

	mesh.Bounds = bounds
	return mesh, nil
}
