package binding

import (
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/engine/animation"
)

// BindingBuilderOption is a functional option for configuring a Binding during construction.
type BindingBuilderOption func(*binding)

// WithPool is an option builder that runs model loads on a shared worker pool instead of a
// private two-worker pool. A shared pool is not stopped by Close.
//
// Parameters:
//   - pool: the worker pool
//
// Returns:
//   - BindingBuilderOption: a function that sets the pool on a binding
func WithPool(pool worker.DynamicWorkerPool) BindingBuilderOption {
	return func(b *binding) {
		b.pool = pool
	}
}

// WithLoadTimeout is an option builder that bounds each model load.
//
// Parameters:
//   - d: the timeout, 60 seconds by default
//
// Returns:
//   - BindingBuilderOption: a function that sets the load timeout on a binding
func WithLoadTimeout(d time.Duration) BindingBuilderOption {
	return func(b *binding) {
		if d > 0 {
			b.loadTimeout = d
		}
	}
}

// WithMixer is an option builder that replaces the binding's animation mixer.
//
// Parameters:
//   - m: the mixer
//
// Returns:
//   - BindingBuilderOption: a function that sets the mixer on a binding
func WithMixer(m animation.Mixer) BindingBuilderOption {
	return func(b *binding) {
		if m != nil {
			b.mixer = m
		}
	}
}
