// Package loadertest builds small in-memory model files for tests.
package loadertest

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
)

// Clip describes an animation written into a generated asset.
// Each clip animates the single node's translation from the origin over Duration seconds.
type Clip struct {
	Name     string
	Duration float32
}

// Asset describes a one-triangle glTF asset with optional animations.
type Asset struct {
	// Name is written as the default scene name.
	Name string

	// Translation is applied to the node instancing the triangle.
	Translation [3]float32

	// Material is the name of the single material; empty writes no material.
	Material string

	Clips []Clip
}

// Chair is the asset used across package tests: a triangle with clips idle (2s) and spin (4s).
var Chair = Asset{
	Name:     "chair",
	Material: "wood",
	Clips:    []Clip{{Name: "idle", Duration: 2}, {Name: "spin", Duration: 4}},
}

// GLB encodes the asset as a binary glTF container.
func (a Asset) GLB() []byte {
	doc, bin := a.build("")
	jsonChunk := pad(mustJSON(doc), ' ')
	binChunk := pad(bin, 0)

	var buf bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	write(&buf, uint32(0x46546C67), uint32(2), uint32(total))
	write(&buf, uint32(len(jsonChunk)), uint32(0x4E4F534A))
	buf.Write(jsonChunk)
	write(&buf, uint32(len(binChunk)), uint32(0x004E4942))
	buf.Write(binChunk)
	return buf.Bytes()
}

// GLTF encodes the asset as glTF JSON with the buffer embedded as a base64 data URI.
func (a Asset) GLTF() []byte {
	_, bin := a.build("")
	doc, _ := a.build("data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin))
	return mustJSON(doc)
}

// GLTFExternal encodes the asset as glTF JSON referencing bufferURI, and returns the
// buffer contents that must be served under that URI.
func (a Asset) GLTFExternal(bufferURI string) (doc []byte, buffer []byte) {
	d, bin := a.build(bufferURI)
	return mustJSON(d), bin
}

func (a Asset) build(uri string) (map[string]any, []byte) {
	var bin bytes.Buffer
	var views, accessors []map[string]any

	add := func(data []float32, typ string, count int, extra map[string]any) int {
		offset := bin.Len()
		for _, f := range data {
			write(&bin, math.Float32bits(f))
		}
		views = append(views, map[string]any{"buffer": 0, "byteOffset": offset, "byteLength": len(data) * 4})
		acc := map[string]any{"bufferView": len(views) - 1, "componentType": 5126, "count": count, "type": typ}
		for k, v := range extra {
			acc[k] = v
		}
		accessors = append(accessors, acc)
		return len(accessors) - 1
	}

	pos := add([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, "VEC3", 3, map[string]any{
		"min": []float32{0, 0, 0},
		"max": []float32{1, 1, 0},
	})

	var animations []map[string]any
	for _, c := range a.Clips {
		in := add([]float32{0, c.Duration}, "SCALAR", 2, nil)
		out := add([]float32{0, 0, 0, 0, 1, 0}, "VEC3", 2, nil)
		animations = append(animations, map[string]any{
			"name":     c.Name,
			"samplers": []map[string]any{{"input": in, "output": out}},
			"channels": []map[string]any{{"sampler": 0, "target": map[string]any{"node": 0, "path": "translation"}}},
		})
	}

	primitive := map[string]any{"attributes": map[string]int{"POSITION": pos}}
	doc := map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []map[string]any{{"name": a.Name, "nodes": []int{0}}},
		"nodes":  []map[string]any{{"mesh": 0, "translation": a.Translation}},
		"meshes": []map[string]any{{"name": "triangle", "primitives": []map[string]any{primitive}}},
	}
	if a.Material != "" {
		primitive["material"] = 0
		doc["materials"] = []map[string]any{{"name": a.Material}}
	}
	if len(animations) > 0 {
		doc["animations"] = animations
	}

	buffer := map[string]any{"byteLength": bin.Len()}
	if uri != "" {
		buffer["uri"] = uri
	}
	doc["buffers"] = []map[string]any{buffer}
	doc["bufferViews"] = views
	doc["accessors"] = accessors

	return doc, bin.Bytes()
}

// BinarySTL encodes the given triangles (three vertices each) as a binary STL file.
func BinarySTL(triangles ...[3][3]float32) []byte {
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	write(&buf, uint32(len(triangles)))
	for _, tri := range triangles {
		write(&buf, [3]float32{})
		for _, v := range tri {
			write(&buf, v)
		}
		write(&buf, uint16(0))
	}
	return buf.Bytes()
}

// ASCIISTL encodes the given triangles as an ASCII STL solid named name.
func ASCIISTL(name string, triangles ...[3][3]float32) []byte {
	var buf bytes.Buffer
	buf.WriteString("solid " + name + "\n")
	for _, tri := range triangles {
		buf.WriteString("  facet normal 0 0 1\n    outer loop\n")
		for _, v := range tri {
			b, _ := json.Marshal(v)
			fields := bytes.Trim(b, "[]")
			buf.WriteString("      vertex " + string(bytes.ReplaceAll(fields, []byte(","), []byte(" "))) + "\n")
		}
		buf.WriteString("    endloop\n  endfacet\n")
	}
	buf.WriteString("endsolid " + name + "\n")
	return buf.Bytes()
}

func write(buf *bytes.Buffer, values ...any) {
	for _, v := range values {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}
}

func pad(b []byte, with byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, with)
	}
	return b
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
