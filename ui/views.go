package ui

import (
	"fmt"
	"path"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/store"
	"github.com/chewxy/math32"
)

// AcceptedExtensions is the file picker filter of the import button.
const AcceptedExtensions = ".glb,.gltf,.stl"

// Button identifiers of the toolbar.
const (
	ButtonImport      = "import"
	ButtonPlayback    = "playback"
	ButtonReset       = "reset"
	ButtonGrid        = "grid"
	ButtonCameraReset = "cameraReset"
	ButtonZoomReset   = "zoomReset"
)

// Slider describes a range input.
type Slider struct {
	Min   float32 `json:"min"`
	Max   float32 `json:"max"`
	Step  float32 `json:"step"`
	Value float32 `json:"value"`
	Label string  `json:"label"`
}

// Snap rounds v to the nearest step and clamps it into the slider range.
func (s Slider) Snap(v float32) float32 {
	if s.Step > 0 {
		v = math32.Round(v/s.Step) * s.Step
	}
	if v < s.Min {
		v = s.Min
	}
	if v > s.Max {
		v = s.Max
	}
	return v
}

var (
	progressSlider = Slider{Min: 0, Max: 100, Step: 1}
	speedSlider    = Slider{Min: 0.1, Max: 2, Step: 0.1}
	wireSlider     = Slider{Min: 0.1, Max: 1, Step: 0.1}
	faceSlider     = Slider{Min: 0, Max: 0.5, Step: 0.05}
)

// Button is a toolbar entry.
type Button struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Action string `json:"action"`
	Active bool   `json:"active,omitempty"`
}

// Toolbar is the top bar. Without a model only the import button is present.
type Toolbar struct {
	Accept  string   `json:"accept"`
	Buttons []Button `json:"buttons"`
}

// Tab is an entry of the floating tab bar.
type Tab struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Active   bool   `json:"active"`
	Disabled bool   `json:"disabled"`
}

// ModelInfo is the model tab of the sidebar.
type ModelInfo struct {
	Name      string   `json:"name"`
	Size      string   `json:"size,omitempty"`
	Faces     int      `json:"faces"`
	Vertices  int      `json:"vertices"`
	Materials []string `json:"materials"`
	Loading   bool     `json:"loading"`
	Error     string   `json:"error,omitempty"`
}

// ClipOption is one checkbox of the animation list.
type ClipOption struct {
	Name     string  `json:"name"`
	Duration float32 `json:"duration"`
	Selected bool    `json:"selected"`
	Current  bool    `json:"current"`
}

// AnimationControls is the animation tab of the sidebar.
type AnimationControls struct {
	Empty    string       `json:"empty,omitempty"`
	Clips    []ClipOption `json:"clips"`
	Playing  bool         `json:"playing"`
	Progress Slider       `json:"progress"`
	Speed    Slider       `json:"speed"`
}

// ViewSettingsPanel is the view tab of the sidebar. The wireframe fields are nil outside
// wireframe mode.
type ViewSettingsPanel struct {
	ShowGrid         bool             `json:"showGrid"`
	ShowAxes         bool             `json:"showAxes"`
	RenderMode       store.RenderMode `json:"renderMode"`
	WireframeOpacity *Slider          `json:"wireframeOpacity,omitempty"`
	FaceOpacity      *Slider          `json:"faceOpacity,omitempty"`
	WireframeColor   string           `json:"wireframeColor,omitempty"`
	EdgeHighlight    *bool            `json:"edgeHighlight,omitempty"`
}

// CameraPanel is the camera tab of the sidebar.
type CameraPanel struct {
	Position  [3]float32 `json:"position"`
	Target    [3]float32 `json:"target"`
	Distance  float32    `json:"distance"`
	Azimuth   float32    `json:"azimuth"`
	Elevation float32    `json:"elevation"`
}

// Sidebar holds the panel of the active tab, or the empty state without a model.
type Sidebar struct {
	Empty     string             `json:"empty,omitempty"`
	ActiveTab string             `json:"activeTab"`
	Model     *ModelInfo         `json:"model,omitempty"`
	Animation *AnimationControls `json:"animation,omitempty"`
	View      *ViewSettingsPanel `json:"view,omitempty"`
	Camera    *CameraPanel       `json:"camera,omitempty"`
}

// View is every control surface rendered from one state snapshot.
type View struct {
	Toolbar Toolbar `json:"toolbar"`
	Tabs    []Tab   `json:"tabs"`
	Sidebar Sidebar `json:"sidebar"`
}

// Render builds the control surfaces for a state snapshot.
//
// Parameters:
//   - st: the store state
//   - ctrl: the orbit controller for the camera tab; may be nil
//   - loading: whether a model load is in flight
//
// Returns:
//   - View: the control surfaces
func Render(st store.State, ctrl camera.CameraController, loading bool) View {
	v := View{
		Toolbar: BuildToolbar(st),
		Tabs:    BuildTabs(st),
		Sidebar: Sidebar{ActiveTab: st.ActiveTab},
	}
	if !st.HasModel() {
		v.Sidebar.Empty = "No Model Loaded"
		return v
	}

	switch st.ActiveTab {
	case store.TabModel:
		v.Sidebar.Model = BuildModelInfo(st, loading)
	case store.TabAnimation:
		anim := BuildAnimationControls(st)
		v.Sidebar.Animation = &anim
	case store.TabView:
		view := BuildViewSettings(st.View)
		v.Sidebar.View = &view
	case store.TabCamera:
		if ctrl != nil {
			v.Sidebar.Camera = BuildCameraPanel(ctrl)
		}
	}
	return v
}

// BuildToolbar renders the toolbar.
func BuildToolbar(st store.State) Toolbar {
	tb := Toolbar{
		Accept:  AcceptedExtensions,
		Buttons: []Button{{ID: ButtonImport, Title: "Import Model", Action: ActionUploadFile}},
	}
	if !st.HasModel() {
		return tb
	}

	playTitle := "Play Animation"
	if st.Playing {
		playTitle = "Pause Animation"
	}
	tb.Buttons = append(tb.Buttons,
		Button{ID: ButtonPlayback, Title: playTitle, Action: ActionTogglePlayback, Active: st.Playing},
		Button{ID: ButtonReset, Title: "Reset Animation", Action: ActionResetAnimation},
		Button{ID: ButtonGrid, Title: "Toggle Grid", Action: ActionToggleGrid, Active: st.View.ShowGrid},
		Button{ID: ButtonCameraReset, Title: "Camera Reset", Action: ActionResetCamera},
		Button{ID: ButtonZoomReset, Title: "Reset Zoom", Action: ActionResetZoom},
	)
	return tb
}

// BuildTabs renders the floating tab bar; every tab is disabled without a model.
func BuildTabs(st store.State) []Tab {
	labels := map[string]string{
		store.TabModel:     "Model",
		store.TabAnimation: "Animation",
		store.TabView:      "View",
		store.TabCamera:    "Camera",
	}
	tabs := make([]Tab, 0, len(store.Tabs))
	for _, id := range store.Tabs {
		tabs = append(tabs, Tab{
			ID:       id,
			Label:    labels[id],
			Active:   st.ActiveTab == id,
			Disabled: !st.HasModel(),
		})
	}
	return tabs
}

// BuildModelInfo renders the model tab, or nil without a model.
func BuildModelInfo(st store.State, loading bool) *ModelInfo {
	if !st.HasModel() {
		return nil
	}
	info := &ModelInfo{
		Name:      path.Base(st.Model.URL),
		Materials: []string{},
		Loading:   loading,
		Error:     st.LoadError,
	}
	if f := st.Model.File; f != nil {
		info.Name = f.Name
		info.Size = FormatMB(f.Size)
	}
	if s := st.Stats; s != nil {
		info.Faces = s.Faces
		info.Vertices = s.Vertices
		info.Materials = append(info.Materials, s.Materials...)
	}
	return info
}

// FormatMB renders a byte count in megabytes with two decimals.
func FormatMB(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/1024/1024)
}

// BuildAnimationControls renders the animation tab.
func BuildAnimationControls(st store.State) AnimationControls {
	ac := AnimationControls{Playing: st.Playing, Clips: []ClipOption{}}
	if len(st.Animations) == 0 {
		ac.Empty = "No animations found"
		return ac
	}
	for _, c := range st.Animations {
		ac.Clips = append(ac.Clips, ClipOption{
			Name:     c.Name,
			Duration: c.Duration,
			Selected: st.IsSelected(c.Name),
			Current:  c.Name == st.CurrentAnimation,
		})
	}

	ac.Progress = progressSlider
	ac.Progress.Value = st.Progress
	ac.Progress.Label = fmt.Sprintf("%d%%", int(st.Progress))

	ac.Speed = speedSlider
	ac.Speed.Value = st.Speed
	ac.Speed.Label = fmt.Sprintf("%.1fx", st.Speed)
	return ac
}

// BuildViewSettings renders the view tab.
func BuildViewSettings(vs store.ViewSettings) ViewSettingsPanel {
	p := ViewSettingsPanel{
		ShowGrid:   vs.ShowGrid,
		ShowAxes:   vs.ShowAxes,
		RenderMode: vs.RenderMode,
	}
	if vs.RenderMode != store.RenderModeWireframe {
		return p
	}

	wire := wireSlider
	wire.Value = vs.WireframeOpacity
	wire.Label = fmt.Sprintf("%.1f", vs.WireframeOpacity)
	face := faceSlider
	face.Value = vs.FaceOpacity
	face.Label = fmt.Sprintf("%.1f", vs.FaceOpacity)
	edge := vs.EdgeHighlight

	p.WireframeOpacity = &wire
	p.FaceOpacity = &face
	p.WireframeColor = vs.WireframeColor
	p.EdgeHighlight = &edge
	return p
}

// BuildCameraPanel renders the camera tab.
func BuildCameraPanel(ctrl camera.CameraController) *CameraPanel {
	p := &CameraPanel{
		Distance:  ctrl.Radius(),
		Azimuth:   ctrl.Azimuth(),
		Elevation: ctrl.Elevation(),
	}
	p.Position[0], p.Position[1], p.Position[2] = ctrl.Position()
	p.Target[0], p.Target[1], p.Target[2] = ctrl.Target()
	return p
}
