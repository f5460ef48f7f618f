package binding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/animation"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader/loadertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/store"
)

type fixture struct {
	st store.Store
	sc scene.Scene
	ld loader.Loader
	b  Binding
}

// newFixture wires a store, scene and binding to an in-memory file set. Files listed in gates
// block until their channel is closed.
func newFixture(t *testing.T, files map[string][]byte, gates map[string]chan struct{}) *fixture {
	t.Helper()
	st := store.NewStore()
	src := loader.SourceFunc(func(ctx context.Context, url string) ([]byte, error) {
		if id, ok := strings.CutPrefix(url, store.BlobURLPrefix); ok {
			return st.OpenBlob(id)
		}
		if gate, ok := gates[url]; ok {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		data, ok := files[url]
		if !ok {
			return nil, errors.New("404 not found")
		}
		return data, nil
	})
	sc := scene.NewScene("test")
	ld := loader.NewLoader(loader.WithSource(src))
	b := NewBinding(st, sc, ld)
	b.Start()
	t.Cleanup(func() {
		b.Close()
		st.Close()
	})
	return &fixture{st: st, sc: sc, ld: ld, b: b}
}

func chairFiles() map[string][]byte {
	return map[string][]byte{"display/chair.glb": loadertest.Chair.GLB()}
}

func statesByName(m animation.Mixer) map[string]animation.ActionState {
	out := map[string]animation.ActionState{}
	for _, s := range m.States() {
		out[s.Name] = s
	}
	return out
}

func near(a, b float32) bool {
	d := a - b
	return d < 1e-4 && d > -1e-4
}

func TestChairScenario(t *testing.T) {
	f := newFixture(t, chairFiles(), nil)

	f.st.SelectModel("chair.glb")
	f.b.Wait()

	st := f.st.State()
	if len(st.Animations) != 2 || len(st.Selected) != 2 || st.Playing || st.Progress != 0 {
		t.Fatalf("state after load = %+v", st)
	}
	if st.Stats == nil || st.Stats.Faces != 1 || st.Stats.Vertices != 3 {
		t.Errorf("stats = %+v", st.Stats)
	}
	for name, s := range statesByName(f.b.Mixer()) {
		if !s.Running || !s.Paused || s.Time != 0 {
			t.Errorf("%s after load = %+v, expected active-paused at 0", name, s)
		}
	}

	f.st.TogglePlayback()
	for name, s := range statesByName(f.b.Mixer()) {
		if !s.Running || s.Paused || s.TimeScale != store.DefaultSpeed {
			t.Errorf("%s after play = %+v, expected running at the default speed", name, s)
		}
	}

	f.b.Update(1)
	if err := f.st.SetSpeed(1.5); err != nil {
		t.Fatal(err)
	}
	for name, s := range statesByName(f.b.Mixer()) {
		if s.TimeScale != 1.5 || !near(s.Time, 0.2) {
			t.Errorf("%s after speed change = %+v, expected scale 1.5 at 0.2s", name, s)
		}
	}
}

func TestSubsetPlaysExactlySelected(t *testing.T) {
	f := newFixture(t, chairFiles(), nil)
	f.st.SelectModel("chair.glb")
	f.b.Wait()

	if err := f.st.ToggleAnimationSelection("idle"); err != nil {
		t.Fatal(err)
	}
	f.st.TogglePlayback()

	states := statesByName(f.b.Mixer())
	if states["idle"].Running {
		t.Error("deselected clip idle should not run")
	}
	if s := states["spin"]; !s.Running || s.Paused {
		t.Errorf("spin = %+v, expected running", s)
	}
}

func TestScrubWhilePaused(t *testing.T) {
	f := newFixture(t, chairFiles(), nil)
	f.st.SelectModel("chair.glb")
	f.b.Wait()

	f.st.SetProgress(50)
	states := statesByName(f.b.Mixer())
	if states["idle"].Time != 1 || states["spin"].Time != 2 {
		t.Errorf("times = idle %v spin %v, expected 1 and 2", states["idle"].Time, states["spin"].Time)
	}

	f.st.SetPlaying(true)
	f.st.SetProgress(10)
	if got := statesByName(f.b.Mixer())["idle"].Time; got != 1 {
		t.Errorf("scrub while playing moved idle to %v", got)
	}
}

func TestUpdateReportsProgressAndPoses(t *testing.T) {
	f := newFixture(t, chairFiles(), nil)
	f.st.SelectModel("chair.glb")
	f.b.Wait()

	if _, ok := f.b.Update(0.5); ok {
		t.Error("no progress expected while paused")
	}

	f.st.SetPlaying(true)
	p, ok := f.b.Update(1)
	if !ok || !near(p, 10) {
		t.Errorf("progress = %v %v, expected 10 (0.2s of idle's 2s)", p, ok)
	}
	objects := f.sc.Objects()
	if len(objects) != 1 {
		t.Fatalf("expected one mesh node, got %d", len(objects))
	}
	if _, posed := objects[0].Pose(); !posed {
		t.Error("the animated node should be posed after Update")
	}
}

func TestWireframeRestoresIdenticalMaterial(t *testing.T) {
	f := newFixture(t, chairFiles(), nil)
	f.st.SelectModel("chair.glb")
	f.b.Wait()

	obj := f.sc.Objects()[0]
	if !obj.Overridden() {
		t.Fatal("the default render mode is wireframe; the node should be overridden after load")
	}

	if err := f.st.SetRenderMode(store.RenderModeNormal); err != nil {
		t.Fatal(err)
	}
	original := obj.Material()
	if original.Name() != "wood" || obj.Overridden() {
		t.Fatalf("normal mode material = %q overridden=%v", original.Name(), obj.Overridden())
	}

	var override material.Material
	for i := range 5 {
		if err := f.st.SetRenderMode(store.RenderModeWireframe); err != nil {
			t.Fatal(err)
		}
		if obj.Material() == original || !obj.Material().Wireframe() {
			t.Fatalf("toggle %d: wireframe mode should draw the override", i)
		}
		override = obj.Material()

		f.st.SetWireframeOpacity(0.5)
		if obj.Material() != override || obj.Material().Opacity() != 0.5 {
			t.Errorf("toggle %d: an opacity change must update the existing override", i)
		}
		f.st.SetWireframeOpacity(0.1)

		if err := f.st.SetRenderMode(store.RenderModeNormal); err != nil {
			t.Fatal(err)
		}
		if obj.Material() != original {
			t.Fatalf("toggle %d: normal mode should restore the identical material", i)
		}
	}
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	slow := loadertest.Asset{Name: "slow", Clips: []loadertest.Clip{{Name: "walk", Duration: 1}}}
	files := chairFiles()
	files["display/slow.glb"] = slow.GLB()
	gate := make(chan struct{})
	f := newFixture(t, files, map[string]chan struct{}{"display/slow.glb": gate})

	f.st.SelectModel("slow.glb")
	f.st.SelectModel("chair.glb")
	close(gate)
	f.b.Wait()

	st := f.st.State()
	if len(st.Animations) != 2 || st.Animations[0].Name != "idle" {
		t.Errorf("animations = %v, expected the chair's clips", st.Animations)
	}
	clips := f.b.Mixer().Clips()
	if len(clips) != 2 || clips[0].Name != "idle" || clips[1].Name != "spin" {
		t.Errorf("mixer clips = %v, expected only the chair's", clips)
	}
	if m := f.sc.Model(); m == nil || m.Name() != "chair" {
		t.Errorf("scene model = %v, expected chair", m)
	}
}

func TestLoadFailureIsRecorded(t *testing.T) {
	f := newFixture(t, chairFiles(), nil)
	f.st.SelectModel("missing.glb")
	f.b.Wait()

	st := f.st.State()
	if st.LoadError == "" || len(st.Animations) != 0 {
		t.Errorf("state after failed load = %+v", st)
	}
	if f.b.Loading() || len(f.b.Mixer().Clips()) != 0 {
		t.Error("a failed load leaves nothing bound")
	}
}

func TestLocalFileResetsAndLoads(t *testing.T) {
	f := newFixture(t, chairFiles(), nil)
	f.st.SelectModel("chair.glb")
	f.b.Wait()
	f.st.SetPlaying(true)
	f.st.SetProgress(30)

	f.st.OpenLocalFile("chair.glb", loadertest.Chair.GLB())
	st := f.st.State()
	if st.Playing || st.Progress != 0 {
		t.Errorf("opening a file must reset playback, got playing=%v progress=%v", st.Playing, st.Progress)
	}
	f.b.Wait()

	if clips := f.st.State().Animations; len(clips) != 2 {
		t.Errorf("animations after local load = %v", clips)
	}
	for name, s := range statesByName(f.b.Mixer()) {
		if !s.Paused || s.Time != 0 {
			t.Errorf("%s = %+v, expected paused at 0", name, s)
		}
	}
}

func TestReselectingSameFileReloads(t *testing.T) {
	f := newFixture(t, chairFiles(), nil)
	f.st.SelectModel("chair.glb")
	f.b.Wait()
	f.st.TogglePlayback()

	f.st.SelectModel("chair.glb")
	f.b.Wait()

	st := f.st.State()
	if len(st.Animations) != 2 || len(st.Selected) != 2 || st.Stats == nil {
		t.Fatalf("state after reselect = %+v", st)
	}
	if st.Playing || st.Progress != 0 {
		t.Errorf("reselect must reset playback, got playing=%v progress=%v", st.Playing, st.Progress)
	}
	if f.b.Loading() {
		t.Error("reselect left the binding loading")
	}
	if clips := f.b.Mixer().Clips(); len(clips) != 2 {
		t.Errorf("mixer clips after reselect = %v", clips)
	}
	for name, s := range statesByName(f.b.Mixer()) {
		if !s.Paused || s.Time != 0 {
			t.Errorf("%s = %+v, expected paused at 0", name, s)
		}
	}
}

func TestSwitchEvictsPreviousModel(t *testing.T) {
	other := loadertest.Asset{Name: "other", Clips: []loadertest.Clip{{Name: "walk", Duration: 1}}}
	files := chairFiles()
	files["display/other.glb"] = other.GLB()
	f := newFixture(t, files, nil)

	f.st.SelectModel("chair.glb")
	f.b.Wait()
	f.st.SelectModel("other.glb")
	f.b.Wait()

	cached := f.ld.Models()
	if len(cached) != 1 || cached["display/other.glb"] == nil {
		t.Errorf("cached models = %v, expected only display/other.glb", cached)
	}

	// chair.glb replaced on disk by something unreadable
	files["display/chair.glb"] = []byte("not a model")
	f.st.SelectModel("chair.glb")
	f.b.Wait()

	st := f.st.State()
	if st.LoadError == "" || len(st.Animations) != 0 {
		t.Errorf("state after reloading a replaced file = %+v, expected a load error", st)
	}
}
