package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/engine/animation"
	"github.com/Carmen-Shannon/oxy-viewer/engine/binding"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/store"
)

// engine implements the Engine interface.
// Owns the store, the scene, the loader worker pool and the binding between them, and drives
// them from a fixed-rate tick goroutine.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
	closeOnce   sync.Once

	st      store.Store
	sc      scene.Scene
	ld      loader.Loader
	source  loader.Source
	pool    worker.DynamicWorkerPool
	workers int
	binding binding.Binding

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	mu             *sync.Mutex
	tickCallback   func(deltaTime float32)
	lastProgress   int
}

// Snapshot is everything a client needs to mirror the viewer: the application state, the
// scene description and the per-clip mixer state.
type Snapshot struct {
	State   store.State             `json:"state"`
	Scene   scene.Snapshot          `json:"scene"`
	Actions []animation.ActionState `json:"actions"`
	Loading bool                    `json:"loading"`
}

// Engine is the composition root of the viewer.
// It orchestrates the tick loop, model loading and the binding of store state onto the scene.
type Engine interface {
	// Store returns the application state store.
	//
	// Returns:
	//   - store.Store: the store
	Store() store.Store

	// Scene returns the scene the model is composed into.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Binding returns the binding between store, scene and mixer.
	//
	// Returns:
	//   - binding.Binding: the binding
	Binding() binding.Binding

	// Loader returns the model loader.
	//
	// Returns:
	//   - loader.Loader: the loader
	Loader() loader.Loader

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called at the end of each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// Tick runs one engine step: advances the mixer, forwards playback progress to the store,
	// applies camera damping and fires the tick callback. Run calls it at the tick rate.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Tick(dt float32)

	// Snapshot captures the current viewer state.
	//
	// Returns:
	//   - Snapshot: store state, scene description and mixer actions
	Snapshot() Snapshot

	// Run starts the tick loop and blocks until Quit is called.
	Run()

	// Quit stops the tick loop, waits for it and releases the binding, the worker pool and the
	// store's blob handle. Safe to call multiple times; must not be called from the tick callback.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Missing collaborators are created with defaults: an empty store, a "viewer" scene with the
// warehouse rig, and a loader whose source serves blob URLs from the store and everything else
// from the configured source. The binding is started immediately, so store changes load models
// even before Run.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		mu:              &sync.Mutex{},
		profiler:        profiler.NewProfiler(time.Second),
		engineTickRate:  time.Second / 60,
		workers:         4,
		lastProgress:    -1,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.st == nil {
		e.st = store.NewStore()
	}
	if e.sc == nil {
		e.sc = scene.NewScene("viewer")
	}
	if e.ld == nil {
		e.ld = loader.NewLoader(loader.WithSource(BlobSource(e.st, e.source)))
	}
	if e.pool == nil {
		e.pool = worker.NewDynamicWorkerPool(e.workers, 64, 5*time.Second)
	}

	e.binding = binding.NewBinding(e.st, e.sc, e.ld, binding.WithPool(e.pool))
	e.binding.Start()
	return e
}

// BlobSource serves "blob:<id>" URLs from the store's blob handles and delegates every other
// URL to fallback.
//
// Parameters:
//   - st: the store holding the blob handles
//   - fallback: the source for registry URLs; nil rejects them
//
// Returns:
//   - loader.Source: the combined source
func BlobSource(st store.Store, fallback loader.Source) loader.Source {
	return loader.SourceFunc(func(ctx context.Context, rawURL string) ([]byte, error) {
		if id, ok := strings.CutPrefix(rawURL, store.BlobURLPrefix); ok {
			return st.OpenBlob(id)
		}
		if fallback == nil {
			return nil, fmt.Errorf("%w: %s", loader.ErrNoSource, rawURL)
		}
		return fallback.Fetch(ctx, rawURL)
	})
}

func (e *engine) Store() store.Store {
	return e.st
}

func (e *engine) Scene() scene.Scene {
	return e.sc
}

func (e *engine) Binding() binding.Binding {
	return e.binding
}

func (e *engine) Loader() loader.Loader {
	return e.ld
}

func (e *engine) Run() {
	e.running.Store(true)
	e.wg.Add(1)
	go e.handleEngine()
	<-e.quitChannel
	e.wg.Wait()
}

// Quit signals the tick goroutine to stop, waits for it and tears down the collaborators once.
func (e *engine) Quit() {
	e.signalQuit()
	e.wg.Wait()
	e.closeOnce.Do(func() {
		e.binding.Close()
		e.pool.Stop()
		e.st.Close()
		log.Printf("[Engine] stopped")
	})
}

// signalQuit closes the quit channel to signal the tick goroutine to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Listens for dynamic rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.Tick(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

func (e *engine) Tick(dt float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if progress, ok := e.binding.Update(dt); ok {
		// Only whole-percent changes reach the store; every store change is broadcast.
		if whole := int(progress); whole != e.lastProgress {
			e.lastProgress = whole
			e.st.SyncProgress(progress)
		}
	} else {
		e.lastProgress = -1
	}

	e.sc.Update(dt)

	if e.profilingEnabled.Load() && e.profiler != nil {
		running := 0
		for _, a := range e.binding.Mixer().States() {
			if a.Running && !a.Paused {
				running++
			}
		}
		e.profiler.Tick(running)
	}

	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
}

func (e *engine) Snapshot() Snapshot {
	return Snapshot{
		State:   e.st.State(),
		Scene:   e.sc.Snapshot(),
		Actions: e.binding.Mixer().States(),
		Loading: e.binding.Loading(),
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}

	// Non-blocking send - if the channel is full, replace the pending value
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}
