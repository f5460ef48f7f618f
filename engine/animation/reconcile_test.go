package animation

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

var chairClips = []model.ClipInfo{{Name: "idle", Duration: 2}, {Name: "spin", Duration: 4}}

func playback(playing bool, progress, speed float32, selected ...string) Playback {
	return Playback{
		Source:   "display/chair.glb",
		Clips:    chairClips,
		Playing:  playing,
		Progress: progress,
		Speed:    speed,
		Selected: selected,
	}
}

func equalCommands(t *testing.T, got, expected []Command) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("got %d commands %v, expected %d %v", len(got), got, len(expected), expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("command %d = %v, expected %v", i, got[i], expected[i])
		}
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name     string
		prev     Playback
		next     Playback
		expected []Command
	}{
		{
			name: "model loaded paused",
			prev: Playback{Speed: 0.2},
			next: playback(false, 0, 0.2, "idle", "spin"),
			expected: []Command{
				{Kind: CommandStopAll},
				{Kind: CommandPause, Clip: "idle"},
				{Kind: CommandPause, Clip: "spin"},
			},
		},
		{
			name: "model loaded while playing",
			prev: Playback{Playing: true, Speed: 0.2},
			next: playback(true, 0, 0.2, "idle", "spin"),
			expected: []Command{
				{Kind: CommandStopAll},
				{Kind: CommandPlay, Clip: "idle", TimeScale: 0.2},
				{Kind: CommandPlay, Clip: "spin", TimeScale: 0.2},
			},
		},
		{
			name: "toggle play starts exactly the selected subset",
			prev: playback(false, 0, 0.2, "spin"),
			next: playback(true, 0, 0.2, "spin"),
			expected: []Command{
				{Kind: CommandPlay, Clip: "spin", TimeScale: 0.2},
			},
		},
		{
			name: "speed change while playing updates time scale in place",
			prev: playback(true, 10, 0.2, "idle", "spin"),
			next: playback(true, 10, 1.5, "idle", "spin"),
			expected: []Command{
				{Kind: CommandSetTimeScale, Clip: "idle", TimeScale: 1.5},
				{Kind: CommandSetTimeScale, Clip: "spin", TimeScale: 1.5},
			},
		},
		{
			name: "scrub while paused seeks each clip by its own duration",
			prev: playback(false, 0, 0.2, "idle", "spin"),
			next: playback(false, 50, 0.2, "idle", "spin"),
			expected: []Command{
				{Kind: CommandSeek, Clip: "idle", Time: 1},
				{Kind: CommandSeek, Clip: "spin", Time: 2},
			},
		},
		{
			name:     "scrub while playing issues nothing",
			prev:     playback(true, 10, 0.2, "idle"),
			next:     playback(true, 60, 0.2, "idle"),
			expected: nil,
		},
		{
			name: "pause keeps clips active",
			prev: playback(true, 30, 0.2, "idle", "spin"),
			next: playback(false, 30, 0.2, "idle", "spin"),
			expected: []Command{
				{Kind: CommandPause, Clip: "idle"},
				{Kind: CommandPause, Clip: "spin"},
			},
		},
		{
			name: "reset while playing pauses and rewinds",
			prev: playback(true, 30, 0.2, "idle"),
			next: playback(false, 0, 0.2, "idle"),
			expected: []Command{
				{Kind: CommandPause, Clip: "idle"},
				{Kind: CommandSeek, Clip: "idle", Time: 0},
			},
		},
		{
			name: "deselect while playing stops only that clip",
			prev: playback(true, 0, 0.2, "idle", "spin"),
			next: playback(true, 0, 0.2, "idle"),
			expected: []Command{
				{Kind: CommandStop, Clip: "spin"},
			},
		},
		{
			name: "select while playing starts the added clip",
			prev: playback(true, 0, 0.2, "idle"),
			next: playback(true, 0, 0.2, "idle", "spin"),
			expected: []Command{
				{Kind: CommandPlay, Clip: "spin", TimeScale: 0.2},
			},
		},
		{
			name: "select while paused at a scrub position pauses and seeks the new clip",
			prev: playback(false, 25, 0.2, "idle"),
			next: playback(false, 25, 0.2, "idle", "spin"),
			expected: []Command{
				{Kind: CommandPause, Clip: "spin"},
				{Kind: CommandSeek, Clip: "spin", Time: 1},
			},
		},
		{
			name: "unknown selected names are ignored",
			prev: playback(false, 0, 0.2),
			next: playback(true, 0, 0.2, "walk", "idle"),
			expected: []Command{
				{Kind: CommandPlay, Clip: "idle", TimeScale: 0.2},
			},
		},
		{
			name: "model replaced stops everything",
			prev: playback(true, 40, 0.2, "idle"),
			next: Playback{Source: "display/lamp.glb", Speed: 0.2},
			expected: []Command{
				{Kind: CommandStopAll},
			},
		},
		{
			name:     "no change",
			prev:     playback(false, 0, 0.2, "idle"),
			next:     playback(false, 0, 0.2, "idle"),
			expected: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			equalCommands(t, Reconcile(test.prev, test.next), test.expected)
		})
	}
}

// TestReconcileChairScenario walks the load, play, speed sequence and checks the mixer outcome.
func TestReconcileChairScenario(t *testing.T) {
	m := NewMixer(WithClips(
		&model.AnimationClip{Name: "idle", Duration: 2},
		&model.AnimationClip{Name: "spin", Duration: 4},
	))

	empty := Playback{Speed: 0.2}
	loaded := playback(false, 0, 0.2, "idle", "spin")
	m.Apply(Reconcile(empty, loaded))
	for _, s := range m.States() {
		if !s.Running || !s.Paused || s.Time != 0 {
			t.Fatalf("after load %s = %+v, expected active-paused at 0", s.Name, s)
		}
	}

	playing := playback(true, 0, 0.2, "idle", "spin")
	m.Apply(Reconcile(loaded, playing))
	m.Update(1)
	for _, s := range m.States() {
		if !s.Running || s.Paused || s.TimeScale != 0.2 {
			t.Fatalf("after play %s = %+v, expected running at 0.2", s.Name, s)
		}
		if !near(s.Time, 0.2) {
			t.Errorf("after 1s %s time = %v, expected 0.2", s.Name, s.Time)
		}
	}

	faster := playback(true, 0, 1.5, "idle", "spin")
	m.Apply(Reconcile(playing, faster))
	for _, s := range m.States() {
		if s.TimeScale != 1.5 {
			t.Errorf("%s time scale = %v, expected 1.5", s.Name, s.TimeScale)
		}
		if !near(s.Time, 0.2) {
			t.Errorf("%s restarted: time = %v, expected 0.2", s.Name, s.Time)
		}
	}
}
