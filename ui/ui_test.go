package ui

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/store"
)

var chairClips = []model.ClipInfo{{Name: "idle", Duration: 2}, {Name: "spin", Duration: 4}}

func withChair(t *testing.T) store.Store {
	t.Helper()
	st := store.NewStore()
	t.Cleanup(st.Close)
	st.SelectModel("chair.glb")
	st.SetAnimations(chairClips)
	return st
}

func action(name string, value any) Action {
	a := Action{Name: name}
	if value != nil {
		raw, err := json.Marshal(value)
		if err != nil {
			panic(err)
		}
		a.Value = raw
	}
	return a
}

func TestRenderWithoutModel(t *testing.T) {
	st := store.NewStore()
	defer st.Close()

	v := Render(st.State(), nil, false)
	if len(v.Toolbar.Buttons) != 1 || v.Toolbar.Buttons[0].ID != ButtonImport {
		t.Errorf("toolbar = %+v, want import only", v.Toolbar.Buttons)
	}
	if v.Toolbar.Accept != ".glb,.gltf,.stl" {
		t.Errorf("accept = %q", v.Toolbar.Accept)
	}
	for _, tab := range v.Tabs {
		if !tab.Disabled {
			t.Errorf("tab %s enabled without a model", tab.ID)
		}
	}
	if v.Sidebar.Empty == "" || v.Sidebar.Model != nil {
		t.Errorf("sidebar = %+v", v.Sidebar)
	}
}

func TestToolbarWithModel(t *testing.T) {
	st := withChair(t)

	tb := BuildToolbar(st.State())
	ids := make([]string, 0, len(tb.Buttons))
	for _, b := range tb.Buttons {
		ids = append(ids, b.ID)
	}
	want := []string{ButtonImport, ButtonPlayback, ButtonReset, ButtonGrid, ButtonCameraReset, ButtonZoomReset}
	if len(ids) != len(want) {
		t.Fatalf("buttons = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("buttons = %v, want %v", ids, want)
		}
	}
	if tb.Buttons[1].Title != "Play Animation" || !tb.Buttons[3].Active {
		t.Errorf("paused toolbar = %+v", tb.Buttons)
	}

	st.TogglePlayback()
	if got := BuildToolbar(st.State()).Buttons[1]; got.Title != "Pause Animation" || !got.Active {
		t.Errorf("playing button = %+v", got)
	}
}

func TestModelInfo(t *testing.T) {
	st := store.NewStore()
	defer st.Close()
	st.OpenLocalFile("chair.glb", make([]byte, 1572864))
	st.SetModelStats(&model.Stats{Faces: 12, Vertices: 36, Materials: []string{"wood"}})

	info := BuildModelInfo(st.State(), false)
	if info == nil {
		t.Fatal("no model info")
	}
	if info.Name != "chair.glb" || info.Size != "1.50 MB" || info.Faces != 12 || info.Vertices != 36 {
		t.Errorf("info = %+v", info)
	}
	if len(info.Materials) != 1 || info.Materials[0] != "wood" {
		t.Errorf("materials = %v", info.Materials)
	}

	st.SelectModel("fox.glb")
	info = BuildModelInfo(st.State(), true)
	if info.Name != "fox.glb" || info.Size != "" || !info.Loading || info.Materials == nil {
		t.Errorf("display model info = %+v", info)
	}
}

func TestAnimationControls(t *testing.T) {
	st := store.NewStore()
	defer st.Close()
	st.SelectModel("static.stl")

	if ac := BuildAnimationControls(st.State()); ac.Empty != "No animations found" || len(ac.Clips) != 0 {
		t.Errorf("empty controls = %+v", ac)
	}

	st.SetAnimations(chairClips)
	if err := st.ToggleAnimationSelection("spin"); err != nil {
		t.Fatal(err)
	}
	st.SetProgress(42.7)

	ac := BuildAnimationControls(st.State())
	if ac.Empty != "" || len(ac.Clips) != 2 {
		t.Fatalf("controls = %+v", ac)
	}
	if !ac.Clips[0].Selected || !ac.Clips[0].Current || ac.Clips[1].Selected {
		t.Errorf("clips = %+v", ac.Clips)
	}
	if ac.Speed.Label != "0.2x" || ac.Speed.Min != 0.1 || ac.Speed.Max != 2 || ac.Speed.Step != 0.1 {
		t.Errorf("speed slider = %+v", ac.Speed)
	}
	if ac.Progress.Label != "42%" || ac.Progress.Max != 100 {
		t.Errorf("progress slider = %+v", ac.Progress)
	}
}

func TestViewSettingsWireframeOptions(t *testing.T) {
	p := BuildViewSettings(store.DefaultViewSettings())
	if p.WireframeOpacity == nil || p.FaceOpacity == nil || p.EdgeHighlight == nil {
		t.Fatalf("wireframe options missing: %+v", p)
	}
	if p.WireframeColor != "#00ff00" || p.WireframeOpacity.Label != "0.1" || p.FaceOpacity.Max != 0.5 {
		t.Errorf("wireframe panel = %+v / %+v", p.WireframeOpacity, p.FaceOpacity)
	}

	vs := store.DefaultViewSettings()
	vs.RenderMode = store.RenderModeNormal
	if p := BuildViewSettings(vs); p.WireframeOpacity != nil || p.WireframeColor != "" || p.EdgeHighlight != nil {
		t.Errorf("normal mode shows wireframe options: %+v", p)
	}
}

func TestRenderSidebarFollowsTab(t *testing.T) {
	st := withChair(t)
	ctrl := camera.NewCameraController()

	tests := []struct {
		tab   string
		check func(s Sidebar) bool
	}{
		{store.TabModel, func(s Sidebar) bool { return s.Model != nil && s.Animation == nil }},
		{store.TabAnimation, func(s Sidebar) bool { return s.Animation != nil && s.Model == nil }},
		{store.TabView, func(s Sidebar) bool { return s.View != nil }},
		{store.TabCamera, func(s Sidebar) bool { return s.Camera != nil && s.Camera.Distance == 5 }},
	}
	for _, tt := range tests {
		if err := st.SetActiveTab(tt.tab); err != nil {
			t.Fatal(err)
		}
		v := Render(st.State(), ctrl, false)
		if !tt.check(v.Sidebar) {
			t.Errorf("tab %s: sidebar = %+v", tt.tab, v.Sidebar)
		}
		for _, tab := range v.Tabs {
			if tab.Disabled || tab.Active != (tab.ID == tt.tab) {
				t.Errorf("tab %s: tab bar = %+v", tt.tab, v.Tabs)
			}
		}
	}
}

func TestSliderSnap(t *testing.T) {
	tests := []struct {
		slider Slider
		in     float32
		want   float32
	}{
		{speedSlider, 0, 0.1},
		{speedSlider, 1.54, 1.5},
		{speedSlider, 5, 2},
		{faceSlider, 0.12, 0.1},
		{progressSlider, 49.6, 50},
	}
	for _, tt := range tests {
		got := tt.slider.Snap(tt.in)
		if d := got - tt.want; d > 1e-5 || d < -1e-5 {
			t.Errorf("Snap(%v) on %+v = %v, want %v", tt.in, tt.slider, got, tt.want)
		}
	}
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr error
		check   func(s store.State) bool
	}{
		{"toggle playback", action(ActionTogglePlayback, nil), nil, func(s store.State) bool { return s.Playing }},
		{"set playing", action(ActionSetPlaying, true), nil, func(s store.State) bool { return s.Playing }},
		{"speed", action(ActionSetSpeed, 1.5), nil, func(s store.State) bool { return s.Speed == 1.5 }},
		{"speed snapped into range", action(ActionSetSpeed, 0), nil, func(s store.State) bool { return s.Speed > 0.09 && s.Speed < 0.11 }},
		{"progress", action(ActionSetProgress, 50), nil, func(s store.State) bool { return s.Progress == 50 }},
		{"toggle clip", action(ActionToggleAnimation, "idle"), nil, func(s store.State) bool { return !s.IsSelected("idle") }},
		{"unknown clip", action(ActionToggleAnimation, "walk"), store.ErrUnknownClip, nil},
		{"grid toggle", action(ActionToggleGrid, nil), nil, func(s store.State) bool { return !s.View.ShowGrid }},
		{"axes", action(ActionSetShowAxes, true), nil, func(s store.State) bool { return s.View.ShowAxes }},
		{"render mode", action(ActionSetRenderMode, "normal"), nil, func(s store.State) bool { return s.View.RenderMode == store.RenderModeNormal }},
		{"bad render mode", action(ActionSetRenderMode, "points"), store.ErrInvalidRenderMode, nil},
		{"wire colour", action(ActionSetWireframeColor, "#ff8800"), nil, func(s store.State) bool { return s.View.WireframeColor == "#ff8800" }},
		{"bad wire colour", action(ActionSetWireframeColor, "orange"), common.ErrInvalidHexColor, nil},
		{"wire opacity", action(ActionSetWireframeOpacity, 0.5), nil, func(s store.State) bool { return s.View.WireframeOpacity == 0.5 }},
		{"face opacity clamped", action(ActionSetFaceOpacity, 0.9), nil, func(s store.State) bool { return s.View.FaceOpacity == 0.5 }},
		{"edge highlight", action(ActionSetEdgeHighlight, false), nil, func(s store.State) bool { return !s.View.EdgeHighlight }},
		{"tab", action(ActionSetActiveTab, "view"), nil, func(s store.State) bool { return s.ActiveTab == store.TabView }},
		{"unknown tab", action(ActionSetActiveTab, "lights"), store.ErrUnknownTab, nil},
		{"select model", action(ActionSelectModel, "fox.glb"), nil, func(s store.State) bool { return s.Model.URL == "display/fox.glb" && len(s.Animations) == 0 }},
		{"empty model name", action(ActionSelectModel, ""), ErrInvalidValue, nil},
		{"unknown action", action("explode", nil), ErrUnknownAction, nil},
		{"missing value", action(ActionSetSpeed, nil), ErrInvalidValue, nil},
		{"wrong value type", action(ActionSetShowGrid, "yes"), ErrInvalidValue, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := withChair(t)
			c := NewControls(st, camera.NewCameraController())

			err := c.Dispatch(context.Background(), tt.action)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if !IsClientError(err) {
					t.Errorf("err = %v is not a client error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if !tt.check(st.State()) {
				t.Errorf("state after %s = %+v", tt.action.Name, st.State())
			}
		})
	}
}

func TestDispatchNeedsModel(t *testing.T) {
	st := store.NewStore()
	defer st.Close()
	c := NewControls(st, camera.NewCameraController())

	for _, name := range []string{ActionTogglePlayback, ActionResetAnimation, ActionResetCamera} {
		if err := c.Dispatch(context.Background(), action(name, nil)); !errors.Is(err, ErrNoModel) {
			t.Errorf("%s without model: err = %v, want ErrNoModel", name, err)
		}
	}
	if err := c.Dispatch(context.Background(), action(ActionSetActiveTab, "view")); !errors.Is(err, ErrNoModel) {
		t.Errorf("tab change without model: err = %v, want ErrNoModel", err)
	}
	if err := c.Dispatch(context.Background(), action(ActionSetShowAxes, true)); err != nil {
		t.Errorf("view setting without model: %v", err)
	}
}

func TestDispatchOpenLocalFile(t *testing.T) {
	st := store.NewStore()
	defer st.Close()
	c := NewControls(st, nil)

	payload := FilePayload{Name: "part.stl", Data: []byte("solid part")}
	if err := c.Dispatch(context.Background(), action(ActionOpenLocalFile, payload)); err != nil {
		t.Fatal(err)
	}
	s := st.State()
	if s.Model.File == nil || s.Model.File.Name != "part.stl" || s.Model.File.Size != 10 {
		t.Errorf("model = %+v", s.Model)
	}

	if err := c.Dispatch(context.Background(), action(ActionUploadFile, payload)); !errors.Is(err, store.ErrNoRegistry) {
		t.Errorf("upload without registry: err = %v", err)
	}
}

func TestCameraActions(t *testing.T) {
	st := withChair(t)
	ctrl := camera.NewCameraController(camera.WithDampingFactor(1))
	c := NewControls(st, ctrl)
	ctx := context.Background()

	if err := c.Dispatch(ctx, action(ActionOrbit, Delta{DX: 0.5, DY: 0.1})); err != nil {
		t.Fatal(err)
	}
	if err := c.Dispatch(ctx, action(ActionZoom, 4)); err != nil {
		t.Fatal(err)
	}
	ctrl.Update(1.0 / 60)
	if ctrl.Azimuth() == 0 || ctrl.Radius() >= 5 {
		t.Fatalf("controller did not move: az=%v r=%v", ctrl.Azimuth(), ctrl.Radius())
	}

	if err := c.Dispatch(ctx, action(ActionResetZoom, nil)); err != nil {
		t.Fatal(err)
	}
	if ctrl.Radius() != 5 || ctrl.Azimuth() == 0 {
		t.Errorf("after zoom reset: az=%v r=%v", ctrl.Azimuth(), ctrl.Radius())
	}

	if err := c.Dispatch(ctx, action(ActionResetCamera, nil)); err != nil {
		t.Fatal(err)
	}
	if ctrl.Azimuth() != 0 || ctrl.Elevation() != 0 {
		t.Errorf("after camera reset: az=%v el=%v", ctrl.Azimuth(), ctrl.Elevation())
	}

	if err := NewControls(st, nil).Dispatch(ctx, action(ActionPan, Delta{DX: 1})); !errors.Is(err, ErrNoCamera) {
		t.Errorf("pan without camera: err = %v", err)
	}
}

func TestActionsListed(t *testing.T) {
	c := NewControls(store.NewStore(), nil)
	names := c.Actions()
	if len(names) != 26 {
		t.Errorf("got %d actions: %v", len(names), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("actions not sorted: %v", names)
		}
	}
}
