package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/game_object"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// ModelScale is the uniform scale applied to every loaded model after centring.
const ModelScale float32 = 1.5

// DefaultBackground is the clear colour of the viewport.
const DefaultBackground = "#1a1a1a"

// GridSettings describes the infinite ground grid.
type GridSettings struct {
	Visible          bool    `json:"visible"`
	CellSize         float32 `json:"cellSize"`
	CellThickness    float32 `json:"cellThickness"`
	CellColor        string  `json:"cellColor"`
	SectionSize      float32 `json:"sectionSize"`
	SectionThickness float32 `json:"sectionThickness"`
	SectionColor     string  `json:"sectionColor"`
	FadeDistance     float32 `json:"fadeDistance"`
	FadeStrength     float32 `json:"fadeStrength"`
	Infinite         bool    `json:"infiniteGrid"`
}

// DefaultGrid returns the grid every scene starts with.
func DefaultGrid() GridSettings {
	return GridSettings{
		Visible:          true,
		CellSize:         0.5,
		CellThickness:    0.5,
		CellColor:        "#333",
		SectionSize:      3,
		SectionThickness: 1,
		SectionColor:     "#444",
		FadeDistance:     30,
		FadeStrength:     1,
		Infinite:         true,
	}
}

// AxesSettings describes the axes helper at the origin.
type AxesSettings struct {
	Visible bool    `json:"visible"`
	Size    float32 `json:"size"`
}

// ModelRoot places the loaded model: centred on its bounding box, then scaled.
type ModelRoot struct {
	Name   string      `json:"name"`
	Center [3]float32  `json:"center"`
	Scale  float32     `json:"scale"`
	Matrix [16]float32 `json:"matrix"`
}

// Snapshot is the JSON description of the scene a browser client renders.
type Snapshot struct {
	Background  string                 `json:"background"`
	Environment string                 `json:"environment"`
	Grid        GridSettings           `json:"grid"`
	Axes        AxesSettings           `json:"axes"`
	Lights      []light.Descriptor     `json:"lights"`
	Camera      camera.Snapshot        `json:"camera"`
	Root        *ModelRoot             `json:"root,omitempty"`
	Nodes       []game_object.Snapshot `json:"nodes"`
}

type scene struct {
	mu *sync.RWMutex

	name        string
	background  string
	environment string
	grid        GridSettings
	axes        AxesSettings
	lights      []light.Light
	cam         camera.Camera

	mdl     model.Model
	root    ModelRoot
	objects []game_object.GameObject
	nextID  uint64
}

// Scene composes the viewport: background, ground grid, axes helper, the light rig of an
// environment preset, the orbit camera and the loaded model's mesh nodes.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Lights returns the scene's light rig.
	Lights() []light.Light

	// Grid returns the ground grid settings.
	Grid() GridSettings

	// Axes returns the axes helper settings.
	Axes() AxesSettings

	// SetShowGrid toggles the ground grid.
	//
	// Parameters:
	//   - show: true to draw the grid
	SetShowGrid(show bool)

	// SetShowAxes toggles the axes helper.
	//
	// Parameters:
	//   - show: true to draw the axes
	SetShowAxes(show bool)

	// SetModel replaces the loaded model. Each mesh becomes a GameObject owning its material;
	// the model root is centred on the model bounds and scaled by ModelScale.
	//
	// Parameters:
	//   - m: the model
	//   - objects: the mesh nodes built for the model
	SetModel(m model.Model, objects []game_object.GameObject)

	// ClearModel removes the model and every mesh node.
	ClearModel()

	// Model returns the loaded model, or nil.
	Model() model.Model

	// Root returns the model root placement and whether a model is loaded.
	//
	// Returns:
	//   - ModelRoot: centre, scale and matrix of the root
	//   - bool: false without a model
	Root() (ModelRoot, bool)

	// Objects returns the mesh nodes of the loaded model in load order.
	//
	// Returns:
	//   - []game_object.GameObject: the mesh nodes
	Objects() []game_object.GameObject

	// ApplyPose sets the animated local transform of every node present in pose.
	//
	// Parameters:
	//   - pose: glTF node index to local transform
	ApplyPose(pose map[int32]model.Transform)

	// Update advances camera damping and recomputes the camera matrices.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// Snapshot returns the JSON description of the scene.
	Snapshot() Snapshot
}

var _ Scene = &scene{}

// NewScene creates a scene with the default grid, a hidden axes helper, the warehouse light
// rig and an orbit camera at (0, 0, 5).
//
// Parameters:
//   - name: the scene identifier
//   - options: a variadic list of SceneBuilderOption functions to configure the Scene
//
// Returns:
//   - Scene: the scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:          &sync.RWMutex{},
		name:        name,
		background:  DefaultBackground,
		environment: light.PresetWarehouse,
		grid:        DefaultGrid(),
		axes:        AxesSettings{Size: 5},
		nextID:      1,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.lights == nil {
		s.lights = light.NewRig(s.environment)
	}
	if s.cam == nil {
		s.cam = camera.NewCamera(camera.WithController(camera.NewCameraController()))
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]light.Light(nil), s.lights...)
}

func (s *scene) Grid() GridSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}

func (s *scene) Axes() AxesSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.axes
}

func (s *scene) SetShowGrid(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.Visible = show
}

func (s *scene) SetShowAxes(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.axes.Visible = show
}

func (s *scene) SetModel(m model.Model, objects []game_object.GameObject) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mdl = m
	s.objects = objects
	for _, obj := range objects {
		if obj.ID() == 0 {
			obj.SetID(s.nextID)
			s.nextID++
		}
	}
	s.root = placeRoot(m)
}

// placeRoot centres the model on its bounds and scales it: world = scale * (p - center).
func placeRoot(m model.Model) ModelRoot {
	root := ModelRoot{Scale: ModelScale}
	if m == nil {
		common.Identity(root.Matrix[:])
		return root
	}
	root.Name = m.Name()
	if b := m.Bounds(); !b.Empty() {
		root.Center = b.Center()
	}
	c := root.Center
	common.TranslateScale(root.Matrix[:], -c[0]*ModelScale, -c[1]*ModelScale, -c[2]*ModelScale, ModelScale)
	return root
}

func (s *scene) ClearModel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mdl = nil
	s.objects = nil
	s.root = ModelRoot{}
}

func (s *scene) Model() model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mdl
}

func (s *scene) Root() (ModelRoot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root, s.mdl != nil
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]game_object.GameObject(nil), s.objects...)
}

func (s *scene) ApplyPose(pose map[int32]model.Transform) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obj := range s.objects {
		if t, ok := pose[obj.NodeIndex()]; ok {
			obj.SetPose(t)
		}
	}
}

func (s *scene) Update(dt float32) {
	s.mu.RLock()
	cam := s.cam
	s.mu.RUnlock()

	if ctrl := cam.Controller(); ctrl != nil {
		ctrl.Update(dt)
	}
	cam.Update()
}

func (s *scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Background:  s.background,
		Environment: s.environment,
		Grid:        s.grid,
		Axes:        s.axes,
		Lights:      make([]light.Descriptor, 0, len(s.lights)),
		Camera:      s.cam.Snapshot(),
		Nodes:       make([]game_object.Snapshot, 0, len(s.objects)),
	}
	for _, l := range s.lights {
		if l.Enabled() {
			snap.Lights = append(snap.Lights, l.Descriptor())
		}
	}
	if s.mdl != nil {
		root := s.root
		snap.Root = &root
	}
	for _, obj := range s.objects {
		snap.Nodes = append(snap.Nodes, obj.Snapshot())
	}
	return snap
}
