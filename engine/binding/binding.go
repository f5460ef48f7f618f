package binding

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/animation"
	"github.com/Carmen-Shannon/oxy-viewer/engine/game_object"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/store"
)

// binding is the implementation of the Binding interface.
type binding struct {
	mu *sync.Mutex

	st    store.Store
	sc    scene.Scene
	ld    loader.Loader
	mixer animation.Mixer

	pool        worker.DynamicWorkerPool
	ownsPool    bool
	loadTimeout time.Duration
	loads       *sync.WaitGroup
	taskID      int

	ctx    context.Context
	cancel context.CancelFunc

	// url and rev identify the model the mixer and scene belong to; a load result whose
	// generation no longer matches is discarded.
	url        string
	rev        uint64
	generation uint64
	loading    bool

	// applied is the playback the mixer currently reflects.
	applied     animation.Playback
	appliedView store.ViewSettings

	unsubscribe func()
}

// Binding keeps the scene graph and the animation mixer in step with the store.
//
// When the model reference is replaced, even by the same file, it stops all actions, discards
// the previous clips, nodes and material slots, evicts the previous model from the loader cache
// and loads the new asset on the worker pool. A finished load builds the scene nodes,
// registers the clips into the mixer and then records clips and stats in the store.
// Every other state change is turned into mixer commands by animation.Reconcile, and render
// mode changes install or restore override materials on every mesh node.
//
// The binding never calls the store while holding its own lock.
type Binding interface {
	// Start subscribes to the store and applies its current state.
	Start()

	// Sync moves the mixer and scene from prev to next. Start registers it as a store listener.
	//
	// Parameters:
	//   - prev: the previous store state
	//   - next: the new store state
	Sync(prev, next store.State)

	// Update advances the mixer by dt and poses the scene nodes.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	//
	// Returns:
	//   - float32: playback progress of the first running clip, in percent
	//   - bool: false when no clip is advancing
	Update(dt float32) (float32, bool)

	// Mixer returns the animation mixer.
	Mixer() animation.Mixer

	// Loading reports whether a model load is in flight for the current URL.
	Loading() bool

	// Wait blocks until every submitted load has finished.
	Wait()

	// Close unsubscribes from the store, cancels in-flight loads and waits for them.
	Close()
}

var _ Binding = &binding{}

// NewBinding creates a Binding between a store, a scene and a loader.
//
// Parameters:
//   - st: the viewer state
//   - sc: the scene the model nodes are placed in
//   - ld: the model loader
//   - options: a variadic list of BindingBuilderOption functions to configure the Binding
//
// Returns:
//   - Binding: the binding, not yet subscribed; call Start
func NewBinding(st store.Store, sc scene.Scene, ld loader.Loader, options ...BindingBuilderOption) Binding {
	b := &binding{
		mu:          &sync.Mutex{},
		st:          st,
		sc:          sc,
		ld:          ld,
		mixer:       animation.NewMixer(),
		loadTimeout: 60 * time.Second,
		loads:       &sync.WaitGroup{},
	}
	for _, opt := range options {
		opt(b)
	}
	if b.pool == nil {
		b.pool = worker.NewDynamicWorkerPool(2, 64, 1*time.Second)
		b.ownsPool = true
	}
	b.ctx, b.cancel = context.WithCancel(context.Background())
	return b
}

func (b *binding) Start() {
	b.unsubscribe = b.st.Subscribe(b.Sync)
	b.Sync(store.State{}, b.st.State())
}

func (b *binding) Sync(_, next store.State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if next.Model.URL != b.url || next.Model.Rev != b.rev {
		b.switchModelLocked(next)
	} else {
		target := next.Playback()
		if cmds := animation.Reconcile(b.applied, target); len(cmds) > 0 {
			b.mixer.Apply(cmds)
		}
		b.applied = target
	}

	if next.View != b.appliedView {
		b.applyViewLocked(next.View)
	}
}

// switchModelLocked drops everything bound to the previous model and starts loading the next.
// Caller must hold the mutex.
func (b *binding) switchModelLocked(next store.State) {
	b.mixer.StopAll()
	b.mixer.Clear()
	b.sc.ClearModel()
	if b.url != "" {
		b.ld.Evict(b.url)
	}

	b.generation++
	b.url = next.Model.URL
	b.rev = next.Model.Rev
	b.applied = next.Playback()
	b.loading = false

	if b.url == "" {
		return
	}

	filename := ""
	if next.Model.File != nil {
		filename = next.Model.File.Name
	}
	b.loading = true
	b.loads.Add(1)
	gen, url := b.generation, b.url
	b.taskID++
	b.pool.SubmitTask(worker.Task{
		ID: b.taskID,
		Do: func() (any, error) {
			defer b.loads.Done()
			ctx, cancel := context.WithTimeout(b.ctx, b.loadTimeout)
			defer cancel()

			m, err := b.ld.Load(ctx, url, filename)
			b.finishLoad(gen, url, m, err)
			return m, err
		},
	})
	log.Printf("[Binding] loading %s", url)
}

func (b *binding) finishLoad(gen uint64, url string, m model.Model, err error) {
	b.mu.Lock()
	if gen != b.generation {
		b.mu.Unlock()
		log.Printf("[Binding] discarding stale load of %s", url)
		return
	}
	b.loading = false

	if err != nil {
		b.mu.Unlock()
		log.Printf("[Binding] failed to load %s: %v", url, err)
		b.st.FailLoad(url, err)
		return
	}

	for _, clip := range m.Animations() {
		b.mixer.AddClip(clip)
	}
	b.sc.SetModel(m, buildObjects(m))
	b.applyViewLocked(b.appliedView)
	b.mu.Unlock()

	stats := m.Stats()
	log.Printf("[Binding] loaded %s: %d meshes, %d clips, %d faces", url, len(m.Meshes()), m.AnimationCount(), stats.Faces)
	b.st.CompleteLoad(url, m.Clips(), &stats)
}

// buildObjects creates one scene node per mesh. Meshes sharing a material index share the
// Material instance, as they do in the source file.
func buildObjects(m model.Model) []game_object.GameObject {
	imported := m.ImportedMaterials()
	materials := make(map[int]material.Material)
	objects := make([]game_object.GameObject, 0, len(m.Meshes()))

	for _, mesh := range m.Meshes() {
		var mat material.Material
		if mesh.MaterialIndex >= 0 && mesh.MaterialIndex < len(imported) {
			mat = materials[mesh.MaterialIndex]
			if mat == nil {
				mat = material.FromImported(imported[mesh.MaterialIndex])
				materials[mesh.MaterialIndex] = mat
			}
		}
		objects = append(objects, game_object.NewGameObject(
			game_object.WithMesh(mesh),
			game_object.WithMaterial(mat),
		))
	}
	return objects
}

// applyViewLocked mirrors grid/axes visibility and the render mode onto the scene.
// Caller must hold the mutex.
func (b *binding) applyViewLocked(view store.ViewSettings) {
	b.sc.SetShowGrid(view.ShowGrid)
	b.sc.SetShowAxes(view.ShowAxes)

	switch view.RenderMode {
	case store.RenderModeWireframe:
		color, err := common.ParseHexColor(view.WireframeColor)
		if err != nil {
			color, _ = common.ParseHexColor(store.DefaultWireframeColor)
		}
		create := func() material.Material {
			return material.NewWireframeMaterial(color, view.WireframeOpacity, view.FaceOpacity, view.EdgeHighlight)
		}
		update := func(m material.Material) {
			m.SetBaseColor(color)
			m.SetOpacity(view.WireframeOpacity)
			m.SetFaceOpacity(view.FaceOpacity)
			m.SetEdgeHighlight(view.EdgeHighlight)
		}
		for _, obj := range b.sc.Objects() {
			obj.OverrideMaterial(create, update)
		}
	default:
		for _, obj := range b.sc.Objects() {
			obj.RestoreMaterial()
		}
	}
	b.appliedView = view
}

func (b *binding) Update(dt float32) (float32, bool) {
	b.mixer.Update(dt)
	if pose := b.mixer.Pose(); len(pose) > 0 {
		b.sc.ApplyPose(pose)
	}
	return b.mixer.Progress()
}

func (b *binding) Mixer() animation.Mixer {
	return b.mixer
}

func (b *binding) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

func (b *binding) Wait() {
	b.loads.Wait()
}

func (b *binding) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
	b.cancel()
	b.loads.Wait()
	if b.ownsPool {
		b.pool.Stop()
	}
}
