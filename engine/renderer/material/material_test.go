package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestSlotRestoreReturnsIdenticalOriginal(t *testing.T) {
	original := NewMaterial(WithName("wood"))
	slot := NewSlot(original)

	for i := 0; i < 5; i++ {
		created := 0
		create := func() Material {
			created++
			return NewWireframeMaterial([4]float32{0, 1, 0, 1}, 0.1, 0.1, true)
		}

		first, installed := slot.Override(create)
		if !installed || created != 1 {
			t.Fatalf("toggle %d: first Override should install a new material", i)
		}
		second, installed := slot.Override(create)
		if installed || created != 1 || second != first {
			t.Fatalf("toggle %d: second Override should keep the existing override", i)
		}
		if slot.Active() != first || !slot.Overridden() {
			t.Fatalf("toggle %d: Active should be the override", i)
		}

		if got := slot.Restore(); got != original {
			t.Fatalf("toggle %d: Restore returned %v, expected the original", i, got)
		}
		if slot.Active() != original || slot.Overridden() {
			t.Fatalf("toggle %d: Active should be the original after Restore", i)
		}
	}
}

func TestWireframeMaterial(t *testing.T) {
	m := NewWireframeMaterial([4]float32{0, 1, 0, 1}, 0.1, 0.2, true)

	if !m.Wireframe() || !m.Transparent() {
		t.Error("wireframe material should be a transparent wireframe")
	}
	if m.Topology() != wgpu.PrimitiveTopologyLineList {
		t.Errorf("Topology = %v, expected line list", m.Topology())
	}
	if m.CullMode() != wgpu.CullModeNone {
		t.Errorf("CullMode = %v, expected none", m.CullMode())
	}
	if m.BlendState() == nil {
		t.Fatal("transparent material should carry a blend state")
	}
	if m.BlendState().Color.SrcFactor != wgpu.BlendFactorSrcAlpha {
		t.Errorf("blend src factor = %v, expected src alpha", m.BlendState().Color.SrcFactor)
	}

	m.SetOpacity(1.5)
	m.SetFaceOpacity(-1)
	m.SetBaseColor([4]float32{1, 0, 0, 0.5})
	d := m.Descriptor()
	if d.Opacity != 1 || d.FaceOpacity != 0 {
		t.Errorf("opacities not clamped: %+v", d)
	}
	if d.Color != "#ff0000" || m.BaseColor()[3] != 1 {
		t.Errorf("SetBaseColor should change RGB only, got %s alpha %v", d.Color, m.BaseColor()[3])
	}
	if d.Topology != "line-list" || d.CullMode != "none" || !d.Blend {
		t.Errorf("Descriptor pipeline state = %+v", d)
	}
}

func TestFromImported(t *testing.T) {
	tests := []struct {
		name     string
		imported common.ImportedMaterial
		cull     wgpu.CullMode
		blend    bool
		opacity  float32
	}{
		{
			name:     "opaque single sided",
			imported: common.ImportedMaterial{Name: "wood", BaseColor: [4]float32{1, 1, 1, 1}, AlphaMode: common.AlphaModeOpaque},
			cull:     wgpu.CullModeBack,
			opacity:  1,
		},
		{
			name:     "blended double sided",
			imported: common.ImportedMaterial{Name: "glass", BaseColor: [4]float32{1, 1, 1, 0.4}, AlphaMode: common.AlphaModeBlend, DoubleSided: true},
			cull:     wgpu.CullModeNone,
			blend:    true,
			opacity:  0.4,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := FromImported(test.imported)
			if m.Name() != test.imported.Name {
				t.Errorf("Name = %q", m.Name())
			}
			if m.CullMode() != test.cull {
				t.Errorf("CullMode = %v, expected %v", m.CullMode(), test.cull)
			}
			if (m.BlendState() != nil) != test.blend {
				t.Errorf("BlendState = %v, expected blend %v", m.BlendState(), test.blend)
			}
			if m.Opacity() != test.opacity {
				t.Errorf("Opacity = %v, expected %v", m.Opacity(), test.opacity)
			}
		})
	}
}

func TestDescriptorFrontFace(t *testing.T) {
	tests := []struct {
		name string
		opts []MaterialBuilderOption
		want string
	}{
		{name: "default winding", want: "ccw"},
		{name: "clockwise", opts: []MaterialBuilderOption{WithFrontFace(wgpu.FrontFaceCW)}, want: "cw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewMaterial(tt.opts...).Descriptor().FrontFace; got != tt.want {
				t.Errorf("FrontFace = %q, want %q", got, tt.want)
			}
		})
	}
}
