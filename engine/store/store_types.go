package store

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/animation"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

// RenderMode selects how loaded meshes are drawn.
type RenderMode string

const (
	RenderModeNormal    RenderMode = "normal"
	RenderModeWireframe RenderMode = "wireframe"
)

// Valid reports whether m is a known render mode.
func (m RenderMode) Valid() bool {
	return m == RenderModeNormal || m == RenderModeWireframe
}

// Tabs of the floating tab bar.
const (
	TabModel     = "model"
	TabAnimation = "animation"
	TabView      = "view"
	TabCamera    = "camera"
)

// Tabs lists the floating tab bar entries in display order.
var Tabs = []string{TabModel, TabAnimation, TabView, TabCamera}

// Defaults for a fresh store.
const (
	DefaultSpeed            float32 = 0.2
	DefaultWireframeOpacity float32 = 0.1
	DefaultWireframeColor           = "#00ff00"
	DefaultFaceOpacity      float32 = 0.1
)

// FileInfo describes a file opened from the local machine.
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ModelRef identifies the asset the viewer shows.
type ModelRef struct {
	// URL is "display/<filename>" for registry files or "blob:<id>" for local files.
	// Empty when no model is selected.
	URL string `json:"url"`

	// File is set for locally opened files only.
	File *FileInfo `json:"file,omitempty"`

	// Rev increases every time the reference is replaced, so selecting the same file again
	// is still a new model.
	Rev uint64 `json:"rev"`
}

// ViewSettings are the process-lifetime render and view flags.
type ViewSettings struct {
	RenderMode       RenderMode `json:"renderMode"`
	WireframeOpacity float32    `json:"wireframeOpacity"`
	WireframeColor   string     `json:"wireframeColor"`
	FaceOpacity      float32    `json:"faceOpacity"`
	EdgeHighlight    bool       `json:"edgeHighlight"`
	ShowGrid         bool       `json:"showGrid"`
	ShowAxes         bool       `json:"showAxes"`
}

// DefaultViewSettings returns the settings a new store starts with.
func DefaultViewSettings() ViewSettings {
	return ViewSettings{
		RenderMode:       RenderModeWireframe,
		WireframeOpacity: DefaultWireframeOpacity,
		WireframeColor:   DefaultWireframeColor,
		FaceOpacity:      DefaultFaceOpacity,
		EdgeHighlight:    true,
		ShowGrid:         true,
		ShowAxes:         false,
	}
}

// State is a snapshot of the viewer state.
type State struct {
	Model ModelRef `json:"model"`

	// Animations is the clip set of the loaded model in file order.
	Animations       []model.ClipInfo `json:"animations"`
	CurrentAnimation string           `json:"currentAnimation"`

	Playing  bool     `json:"isPlaying"`
	Progress float32  `json:"animationProgress"`
	Speed    float32  `json:"animationSpeed"`
	Selected []string `json:"selectedAnimations"`

	Stats     *model.Stats `json:"modelStats,omitempty"`
	LoadError string       `json:"loadError,omitempty"`

	View      ViewSettings `json:"view"`
	ActiveTab string       `json:"activeTab"`

	UploadsList []string `json:"uploadsList"`
	DisplayList []string `json:"displayList"`
}

// HasModel reports whether a model reference is set.
func (s State) HasModel() bool {
	return s.Model.URL != ""
}

// IsSelected reports whether the named clip takes part in playback.
func (s State) IsSelected(name string) bool {
	for _, n := range s.Selected {
		if n == name {
			return true
		}
	}
	return false
}

// Playback extracts the part of the state the animation mixer follows.
func (s State) Playback() animation.Playback {
	return animation.Playback{
		Source:   s.Model.URL,
		Clips:    s.Animations,
		Playing:  s.Playing,
		Progress: s.Progress,
		Speed:    s.Speed,
		Selected: s.Selected,
	}
}

func (s State) clone() State {
	c := s
	if s.Model.File != nil {
		f := *s.Model.File
		c.Model.File = &f
	}
	c.Animations = cloneSlice(s.Animations)
	c.Selected = cloneSlice(s.Selected)
	c.UploadsList = cloneSlice(s.UploadsList)
	c.DisplayList = cloneSlice(s.DisplayList)
	if s.Stats != nil {
		st := *s.Stats
		st.Materials = cloneSlice(s.Stats.Materials)
		c.Stats = &st
	}
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// setAnimations installs a clip set; a non-empty set selects every clip and makes the first current.
func (s *State) setAnimations(clips []model.ClipInfo) {
	s.Animations = cloneSlice(clips)
	s.Selected = nil
	s.CurrentAnimation = ""
	if len(clips) > 0 {
		s.Selected = make([]string, len(clips))
		for i, c := range clips {
			s.Selected[i] = c.Name
		}
		s.CurrentAnimation = clips[0].Name
	}
}

// resetModel clears everything that belongs to the previous model. Speed and view settings survive.
func (s *State) resetModel(ref ModelRef) {
	ref.Rev = s.Model.Rev + 1
	s.Model = ref
	s.Animations = nil
	s.CurrentAnimation = ""
	s.Playing = false
	s.Progress = 0
	s.Selected = nil
	s.Stats = nil
	s.LoadError = ""
}
