package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/loader/loadertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

func TestLoadBytesGLB(t *testing.T) {
	asset := loadertest.Chair
	asset.Translation = [3]float32{10, 0, 0}

	m, err := NewLoader().LoadBytes("chair.glb", asset.GLB())
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}

	if m.Format() != model.FormatGLB {
		t.Errorf("Format = %s, expected glb", m.Format())
	}
	if m.Name() != "chair" {
		t.Errorf("Name = %q, expected chair", m.Name())
	}

	clips := m.Clips()
	expected := []model.ClipInfo{{Name: "idle", Duration: 2}, {Name: "spin", Duration: 4}}
	if len(clips) != len(expected) {
		t.Fatalf("Clips = %v, expected %v", clips, expected)
	}
	for i := range expected {
		if clips[i] != expected[i] {
			t.Errorf("Clips[%d] = %v, expected %v", i, clips[i], expected[i])
		}
	}

	stats := m.Stats()
	if stats.Faces != 1 || stats.Vertices != 3 {
		t.Errorf("Stats = %+v, expected 1 face and 3 vertices", stats)
	}
	if len(stats.Materials) != 1 || stats.Materials[0] != "wood" {
		t.Errorf("Materials = %v, expected [wood]", stats.Materials)
	}

	b := m.Bounds()
	if b.Min != [3]float32{10, 0, 0} || b.Max != [3]float32{11, 1, 0} {
		t.Errorf("Bounds = %+v, expected node translation applied", b)
	}

	idle := m.Animations()[0]
	if len(idle.Channels) != 1 || idle.Channels[0].NodeIndex != 0 || len(idle.Channels[0].PositionKeys) != 2 {
		t.Errorf("idle channels = %+v", idle.Channels)
	}
}

func TestLoadBytesGLTFDataURI(t *testing.T) {
	m, err := NewLoader().LoadBytes("chair.gltf", loadertest.Chair.GLTF())
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if m.Format() != model.FormatGLTF {
		t.Errorf("Format = %s, expected gltf", m.Format())
	}
	if names := m.AnimationNames(); len(names) != 2 || names[0] != "idle" || names[1] != "spin" {
		t.Errorf("AnimationNames = %v", names)
	}
}

func TestLoadBytesGLTFExternalBufferWithoutSource(t *testing.T) {
	doc, _ := loadertest.Chair.GLTFExternal("chair.bin")
	if _, err := NewLoader().LoadBytes("chair.gltf", doc); !errors.Is(err, errNoResolver) {
		t.Errorf("LoadBytes error = %v, expected errNoResolver", err)
	}
}

func TestLoadResolvesExternalBufferAndCaches(t *testing.T) {
	doc, bin := loadertest.Chair.GLTFExternal("chair.bin")
	fetched := map[string]int{}
	src := SourceFunc(func(_ context.Context, url string) ([]byte, error) {
		fetched[url]++
		switch url {
		case "display/chair.gltf":
			return doc, nil
		case "display/chair.bin":
			return bin, nil
		}
		return nil, errors.New("not found")
	})

	l := NewLoader(WithSource(src))
	first, err := l.Load(context.Background(), "display/chair.gltf", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := l.Load(context.Background(), "display/chair.gltf", "")
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}

	if first != second {
		t.Error("second Load should return the cached model")
	}
	if fetched["display/chair.gltf"] != 1 || fetched["display/chair.bin"] != 1 {
		t.Errorf("fetch counts = %v, expected one fetch each", fetched)
	}

	l.Evict("display/chair.gltf")
	if l.Get("display/chair.gltf") != nil {
		t.Error("Evict should drop the cached model")
	}
}

func TestLoadWithoutSource(t *testing.T) {
	if _, err := NewLoader().Load(context.Background(), "display/chair.glb", ""); !errors.Is(err, ErrNoSource) {
		t.Errorf("Load error = %v, expected ErrNoSource", err)
	}
}

func TestLoadBlobUsesFilenameHint(t *testing.T) {
	data := loadertest.BinarySTL([3][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	src := SourceFunc(func(context.Context, string) ([]byte, error) { return data, nil })

	m, err := NewLoader(WithSource(src)).Load(context.Background(), "blob:1234", "part.stl")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Format() != model.FormatSTL || m.Name() != "part" {
		t.Errorf("got format %s name %q, expected stl part", m.Format(), m.Name())
	}
}

func TestSTLImport(t *testing.T) {
	tris := [][3][3]float32{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, 1}, {1, 0, 1}, {0, -2, 1}},
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"binary", loadertest.BinarySTL(tris...)},
		{"ascii", loadertest.ASCIISTL("bracket", tris...)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m, err := NewLoader().LoadBytes("bracket.stl", test.data)
			if err != nil {
				t.Fatalf("LoadBytes: %v", err)
			}
			stats := m.Stats()
			if stats.Faces != 2 || stats.Vertices != 6 {
				t.Errorf("Stats = %+v, expected 2 faces and 6 vertices", stats)
			}
			if m.AnimationCount() != 0 {
				t.Errorf("AnimationCount = %d, expected 0", m.AnimationCount())
			}
			b := m.Bounds()
			if b.Min != [3]float32{0, -2, 0} || b.Max != [3]float32{1, 1, 1} {
				t.Errorf("Bounds = %+v", b)
			}
		})
	}
}

func TestSTLImportMalformed(t *testing.T) {
	if _, err := NewLoader().LoadBytes("bad.stl", []byte("not an stl file at all")); err == nil {
		t.Error("expected an error for malformed STL data")
	}
}

func TestDetectFormat(t *testing.T) {
	glb := loadertest.Chair.GLB()
	tests := []struct {
		name     string
		filename string
		data     []byte
		expected model.Format
		err      error
	}{
		{"glb extension", "a.GLB", nil, model.FormatGLB, nil},
		{"gltf extension", "a.gltf", nil, model.FormatGLTF, nil},
		{"stl extension", "a.stl", nil, model.FormatSTL, nil},
		{"unknown extension", "a.obj", glb, "", ErrUnsupportedFormat},
		{"glb magic", "", glb, model.FormatGLB, nil},
		{"json sniff", "", []byte("  {\"asset\":{}}"), model.FormatGLTF, nil},
		{"ascii stl sniff", "", []byte("solid x\nendsolid x\n"), model.FormatSTL, nil},
		{"garbage", "", []byte("hello"), "", ErrUnsupportedFormat},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := DetectFormat(test.filename, test.data)
			if !errors.Is(err, test.err) {
				t.Fatalf("error = %v, expected %v", err, test.err)
			}
			if got != test.expected {
				t.Errorf("format = %q, expected %q", got, test.expected)
			}
		})
	}
}

func TestParseGLBRejectsCorruptData(t *testing.T) {
	glb := loadertest.Chair.GLB()
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"bad version", func() []byte { b := append([]byte(nil), glb...); b[4] = 1; return b }(), errInvalidGLBVersion},
		{"too small", glb[:8], nil},
		{"truncated chunk", glb[:40], nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := newGLTFParser(nil).Parse(test.data, true)
			if err == nil {
				t.Fatal("expected an error")
			}
			if test.err != nil && !errors.Is(err, test.err) {
				t.Errorf("error = %v, expected %v", err, test.err)
			}
		})
	}
}

func TestGLTFFaceCount(t *testing.T) {
	tests := []struct {
		mode, count, expected int
	}{
		{gltfPrimitiveModeTriangles, 9, 3},
		{gltfPrimitiveModeTriangleStrip, 5, 3},
		{gltfPrimitiveModeTriangleFan, 1, 0},
		{gltfPrimitiveModeLines, 10, 0},
	}
	for _, test := range tests {
		if got := gltfFaceCount(test.mode, test.count); got != test.expected {
			t.Errorf("gltfFaceCount(%d, %d) = %d, expected %d", test.mode, test.count, got, test.expected)
		}
	}
}
