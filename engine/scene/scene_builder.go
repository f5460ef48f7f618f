package scene

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithCamera replaces the default orbit camera.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cam = cam
	}
}

// WithEnvironment selects the environment preset whose light rig the scene uses.
//
// Parameters:
//   - preset: the preset name, e.g. light.PresetWarehouse
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithEnvironment(preset string) SceneBuilderOption {
	return func(s *scene) {
		s.environment = preset
	}
}

// WithLights replaces the light rig of the environment preset.
//
// Parameters:
//   - lights: the lights
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = lights
	}
}

// WithGrid replaces the default grid settings.
//
// Parameters:
//   - grid: the grid settings
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithGrid(grid GridSettings) SceneBuilderOption {
	return func(s *scene) {
		s.grid = grid
	}
}

// WithShowAxes sets the initial visibility of the axes helper.
//
// Parameters:
//   - show: true to draw the axes
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShowAxes(show bool) SceneBuilderOption {
	return func(s *scene) {
		s.axes.Visible = show
	}
}

// WithBackground sets the clear colour.
//
// Parameters:
//   - hex: the colour as "#rrggbb"
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBackground(hex string) SceneBuilderOption {
	return func(s *scene) {
		s.background = hex
	}
}
