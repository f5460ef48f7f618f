package engine

import (
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/store"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfilerInterval sets how often the profiler logs when profiling is enabled.
//
// Parameters:
//   - interval: the logging interval (default 1 second)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilerInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = profiler.NewProfiler(interval)
	}
}

// WithTickRate sets the engine tick rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithStore sets the application state store instead of an empty default store.
//
// Parameters:
//   - st: the store, typically built with store.WithRegistry
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStore(st store.Store) EngineBuilderOption {
	return func(e *engine) {
		e.st = st
	}
}

// WithScene sets the scene the model is composed into.
//
// Parameters:
//   - s: the Scene to use
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.sc = s
	}
}

// WithSource sets the source used for non-blob model URLs, e.g. a loader.HTTPSource pointing
// at the upload service. Ignored when WithLoader is given.
//
// Parameters:
//   - src: the model source
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSource(src loader.Source) EngineBuilderOption {
	return func(e *engine) {
		e.source = src
	}
}

// WithLoader sets a pre-configured loader. The loader's source must resolve blob URLs itself,
// see BlobSource.
//
// Parameters:
//   - ld: the loader
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoader(ld loader.Loader) EngineBuilderOption {
	return func(e *engine) {
		e.ld = ld
	}
}

// WithLoadWorkers sets the maximum number of concurrent model loads.
//
// Parameters:
//   - n: maximum workers (default 4)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoadWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithPool sets the worker pool model loads run on. The engine stops it on Quit.
//
// Parameters:
//   - pool: the worker pool
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPool(pool worker.DynamicWorkerPool) EngineBuilderOption {
	return func(e *engine) {
		e.pool = pool
	}
}
