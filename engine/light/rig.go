package light

// Environment presets understood by NewRig.
const (
	PresetWarehouse = "warehouse"
	PresetStudio    = "studio"
)

// NewRig returns the lights that stand in for an environment preset. Unknown presets
// fall back to the warehouse rig.
//
// The warehouse rig is a soft ambient fill, a warm key light from above front-right and a
// cool rim light from behind-left.
//
// Parameters:
//   - preset: the environment preset name
//
// Returns:
//   - []Light: the rig, ambient light first
func NewRig(preset string) []Light {
	switch preset {
	case PresetStudio:
		return []Light{
			NewLight(LightTypeAmbient, WithName("ambient"), WithIntensity(0.6)),
			NewLight(LightTypeDirectional, WithName("key"),
				WithPosition(0, 10, 10), WithDirection(0, -1, -1), WithIntensity(1.2)),
			NewLight(LightTypeDirectional, WithName("fill"),
				WithPosition(-10, 5, 0), WithDirection(1, -0.5, 0), WithIntensity(0.5)),
		}
	default:
		return []Light{
			NewLight(LightTypeAmbient, WithName("ambient"),
				WithColor(0.9, 0.9, 0.95), WithIntensity(0.5)),
			NewLight(LightTypeDirectional, WithName("key"),
				WithPosition(5, 10, 7.5), WithDirection(-5, -10, -7.5),
				WithColor(1, 0.96, 0.9), WithIntensity(1)),
			NewLight(LightTypeDirectional, WithName("rim"),
				WithPosition(-5, 5, -5), WithDirection(5, -5, 5),
				WithColor(0.8, 0.85, 1), WithIntensity(0.4)),
		}
	}
}
