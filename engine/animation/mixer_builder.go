package animation

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// MixerBuilderOption is a functional option for configuring a Mixer during construction.
type MixerBuilderOption func(*mixer)

// WithClips is an option builder that registers clips on the Mixer in the given order.
//
// Parameters:
//   - clips: the animation clips
//
// Returns:
//   - MixerBuilderOption: a function that registers the clips on a mixer
func WithClips(clips ...*model.AnimationClip) MixerBuilderOption {
	return func(m *mixer) {
		for _, c := range clips {
			m.addClip(c)
		}
	}
}
