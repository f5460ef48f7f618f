package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader/loadertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/store"
)

func newTestEngine(t *testing.T, options ...EngineBuilderOption) Engine {
	t.Helper()
	files := map[string][]byte{"display/chair.glb": loadertest.Chair.GLB()}
	src := loader.SourceFunc(func(_ context.Context, url string) ([]byte, error) {
		data, ok := files[url]
		if !ok {
			return nil, errors.New("404 not found")
		}
		return data, nil
	})
	e := NewEngine(append([]EngineBuilderOption{WithSource(src), WithLoadWorkers(1)}, options...)...)
	t.Cleanup(e.Quit)
	return e
}

func near(a, b float32) bool {
	d := a - b
	return d < 1e-3 && d > -1e-3
}

func TestTickSyncsWholePercentProgress(t *testing.T) {
	e := newTestEngine(t)
	e.Store().SelectModel("chair.glb")
	e.Binding().Wait()
	e.Store().TogglePlayback()

	// idle runs first: 0.45s at speed 0.2 is 0.09s of a 2s clip.
	e.Tick(0.45)
	if p := e.Store().State().Progress; !near(p, 4.5) {
		t.Fatalf("progress after first tick = %v, want 4.5", p)
	}

	e.Tick(0.02)
	if p := e.Store().State().Progress; !near(p, 4.5) {
		t.Errorf("progress after sub-percent tick = %v, want 4.5", p)
	}

	e.Tick(0.05)
	if p := e.Store().State().Progress; !near(p, 5.2) {
		t.Errorf("progress after crossing a whole percent = %v, want 5.2", p)
	}
}

func TestTickWhilePausedLeavesProgress(t *testing.T) {
	e := newTestEngine(t)
	e.Store().SelectModel("chair.glb")
	e.Binding().Wait()
	e.Store().SetProgress(30)

	e.Tick(1)
	if p := e.Store().State().Progress; p != 30 {
		t.Errorf("progress = %v, want 30", p)
	}
}

func TestTickCallback(t *testing.T) {
	e := newTestEngine(t)
	var got []float32
	e.SetTickCallback(func(dt float32) { got = append(got, dt) })

	e.Tick(0.25)
	e.Tick(0.5)
	if len(got) != 2 || got[0] != 0.25 || got[1] != 0.5 {
		t.Errorf("callback deltas = %v", got)
	}
}

func TestLocalFileLoadsThroughBlobSource(t *testing.T) {
	e := newTestEngine(t)
	url := e.Store().OpenLocalFile("chair.glb", loadertest.Chair.GLB())
	e.Binding().Wait()

	st := e.Store().State()
	if st.Model.URL != url || len(st.Animations) != 2 || st.LoadError != "" {
		t.Fatalf("state after local load = %+v", st)
	}
	if e.Scene().Model() == nil {
		t.Error("scene has no model")
	}
}

func TestBlobSourceWithoutFallback(t *testing.T) {
	st := store.NewStore()
	defer st.Close()
	src := BlobSource(st, nil)

	if _, err := src.Fetch(context.Background(), "display/chair.glb"); !errors.Is(err, loader.ErrNoSource) {
		t.Errorf("err = %v, want ErrNoSource", err)
	}

	url := st.OpenLocalFile("a.stl", []byte("solid a"))
	data, err := src.Fetch(context.Background(), url)
	if err != nil || string(data) != "solid a" {
		t.Errorf("blob fetch = %q, %v", data, err)
	}
}

func TestSnapshot(t *testing.T) {
	e := newTestEngine(t)
	e.Store().SelectModel("chair.glb")
	e.Binding().Wait()

	snap := e.Snapshot()
	if snap.Loading {
		t.Error("snapshot reports loading after Wait")
	}
	if len(snap.Actions) != 2 {
		t.Errorf("actions = %+v", snap.Actions)
	}
	if snap.Scene.Root == nil || len(snap.Scene.Nodes) == 0 {
		t.Errorf("scene snapshot missing model: %+v", snap.Scene)
	}
	if snap.State.Model.URL != "display/chair.glb" {
		t.Errorf("state model = %+v", snap.State.Model)
	}
}

func TestRunAndQuit(t *testing.T) {
	e := newTestEngine(t, WithTickRate(200))
	url := e.Store().OpenLocalFile("chair.glb", loadertest.Chair.GLB())
	e.Binding().Wait()

	ticked := make(chan struct{}, 1)
	e.SetTickCallback(func(float32) {
		select {
		case ticked <- struct{}{}:
		default:
		}
	})

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("tick loop never ran")
	}

	e.Quit()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}

	if _, err := e.Store().OpenBlob(url[len(store.BlobURLPrefix):]); !errors.Is(err, store.ErrBlobReleased) {
		t.Errorf("blob after Quit: err = %v, want ErrBlobReleased", err)
	}
	e.Quit()
}
