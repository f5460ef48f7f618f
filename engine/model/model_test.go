package model

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

func box(min, max [3]float32) common.Bounds {
	b := common.EmptyBounds()
	b.Extend(min)
	b.Extend(max)
	return b
}

func TestModelStatsAndBounds(t *testing.T) {
	m := NewModel(
		WithName("chair"),
		WithMeshes([]ImportedMesh{
			{Name: "seat", VertexCount: 8, FaceCount: 12, Bounds: box([3]float32{-1, 0, -1}, [3]float32{1, 1, 1})},
			{Name: "back", VertexCount: 4, FaceCount: 2, Bounds: box([3]float32{-1, 1, 0.8}, [3]float32{1, 3, 1})},
		}),
		WithImportedMaterials([]common.ImportedMaterial{{Name: "wood"}, {}}),
		WithAnimations([]*AnimationClip{{Name: "idle", Duration: 2}, {Name: "spin", Duration: 4}}),
	)

	stats := m.Stats()
	if stats.Faces != 14 || stats.Vertices != 12 {
		t.Errorf("Stats = %+v, expected 14 faces and 12 vertices", stats)
	}
	if len(stats.Materials) != 2 || stats.Materials[0] != "wood" || stats.Materials[1] != "material_1" {
		t.Errorf("Stats.Materials = %v", stats.Materials)
	}

	b := m.Bounds()
	if b.Min != [3]float32{-1, 0, -1} || b.Max != [3]float32{1, 3, 1} {
		t.Errorf("Bounds = %+v", b)
	}

	clips := m.Clips()
	if len(clips) != 2 || clips[1] != (ClipInfo{Name: "spin", Duration: 4}) {
		t.Errorf("Clips = %v", clips)
	}
	if m.GetAnimationIndex("spin") != 1 || m.GetAnimationIndex("walk") != -1 {
		t.Error("GetAnimationIndex returned the wrong index")
	}
}

func TestChannelSample(t *testing.T) {
	ch := AnimationChannel{
		PositionKeys: []VectorKeyframe{
			{Time: 0, Value: [3]float32{0, 0, 0}},
			{Time: 2, Value: [3]float32{2, 4, 0}},
		},
	}

	tests := []struct {
		name     string
		t        float32
		expected [3]float32
	}{
		{"before first key", -1, [3]float32{0, 0, 0}},
		{"midpoint", 1, [3]float32{1, 2, 0}},
		{"after last key", 5, [3]float32{2, 4, 0}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := ch.Sample(test.t)
			if got.Translation != test.expected {
				t.Errorf("Translation = %v, expected %v", got.Translation, test.expected)
			}
			if got.Scale != [3]float32{1, 1, 1} || got.Rotation != [4]float32{0, 0, 0, 1} {
				t.Errorf("untouched components should stay identity, got %+v", got)
			}
		})
	}
}
