package game_object

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
)

type gameObject struct {
	mu      *sync.Mutex
	id      uint64
	name    string
	enabled bool
	mesh    model.ImportedMesh
	slot    *material.Slot
	pose    model.Transform
	posed   bool
}

// Snapshot is the JSON form of a mesh node sent to browser clients.
type Snapshot struct {
	ID         uint64              `json:"id"`
	Name       string              `json:"name"`
	NodeIndex  int32               `json:"nodeIndex"`
	Enabled    bool                `json:"enabled"`
	Vertices   int                 `json:"vertices"`
	Faces      int                 `json:"faces"`
	Material   material.Descriptor `json:"material"`
	Overridden bool                `json:"overridden"`
	Pose       *model.Transform    `json:"pose,omitempty"`
}

// GameObject is one mesh node of the loaded model inside the scene.
// It owns the node's material slot, so material overrides never touch the mesh itself,
// and carries the animated local pose of its glTF node.
type GameObject interface {
	// ID returns the object's unique identifier within its scene.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the mesh name.
	Name() string

	// Enabled returns whether this object is drawn.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Mesh returns the imported mesh the object draws.
	//
	// Returns:
	//   - model.ImportedMesh: the mesh summary
	Mesh() model.ImportedMesh

	// NodeIndex returns the glTF node the object instances, or -1.
	NodeIndex() int32

	// Material returns the material the object currently draws with.
	//
	// Returns:
	//   - material.Material: the override if one is installed, otherwise the original
	Material() material.Material

	// OverrideMaterial installs the material built by create unless an override is stored.
	// When one is stored, update is called with it instead.
	//
	// Parameters:
	//   - create: builds a new override material
	//   - update: adjusts an existing override; may be nil
	//
	// Returns:
	//   - material.Material: the active override
	OverrideMaterial(create func() material.Material, update func(material.Material)) material.Material

	// RestoreMaterial discards any override.
	//
	// Returns:
	//   - material.Material: the original material
	RestoreMaterial() material.Material

	// Overridden reports whether an override material is installed.
	Overridden() bool

	// Pose returns the animated local transform and whether one has been applied.
	//
	// Returns:
	//   - model.Transform: the local transform
	//   - bool: false if the node is not animated
	Pose() (model.Transform, bool)

	// SetPose records the animated local transform.
	//
	// Parameters:
	//   - t: the local transform
	SetPose(t model.Transform)

	// ClearPose drops the animated transform.
	ClearPose()

	// SetID sets the object's ID.
	//
	// Parameters:
	//   - id: the new object ID
	SetID(id uint64)

	// SetEnabled enables or disables drawing of this object.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Snapshot returns the JSON form of the object.
	Snapshot() Snapshot
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new enabled GameObject with the default material and any provided options applied.
//
// Parameters:
//   - options: variadic list of GameObjectBuilderOption functions to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	g := &gameObject{
		mu:      &sync.Mutex{},
		enabled: true,
		mesh:    model.ImportedMesh{NodeIndex: -1, MaterialIndex: -1},
	}
	for _, opt := range options {
		opt(g)
	}
	if g.slot == nil {
		g.slot = material.NewSlot(material.NewMaterial(material.WithName("default")))
	}
	if g.name == "" {
		g.name = g.mesh.Name
	}
	return g
}

func (g *gameObject) ID() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

func (g *gameObject) Mesh() model.ImportedMesh {
	return g.mesh
}

func (g *gameObject) NodeIndex() int32 {
	return g.mesh.NodeIndex
}

func (g *gameObject) Material() material.Material {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.slot.Active()
}

func (g *gameObject) OverrideMaterial(create func() material.Material, update func(material.Material)) material.Material {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, created := g.slot.Override(create)
	if !created && update != nil {
		update(m)
	}
	return m
}

func (g *gameObject) RestoreMaterial() material.Material {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.slot.Restore()
}

func (g *gameObject) Overridden() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.slot.Overridden()
}

func (g *gameObject) Pose() (model.Transform, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pose, g.posed
}

func (g *gameObject) SetPose(t model.Transform) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pose = t
	g.posed = true
}

func (g *gameObject) ClearPose() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pose = model.Transform{}
	g.posed = false
}

func (g *gameObject) SetID(id uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enabled = enabled
}

func (g *gameObject) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := Snapshot{
		ID:         g.id,
		Name:       g.name,
		NodeIndex:  g.mesh.NodeIndex,
		Enabled:    g.enabled,
		Vertices:   g.mesh.VertexCount,
		Faces:      g.mesh.FaceCount,
		Material:   g.slot.Active().Descriptor(),
		Overridden: g.slot.Overridden(),
	}
	if g.posed {
		p := g.pose
		s.Pose = &p
	}
	return s
}
