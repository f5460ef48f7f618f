package animation

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/chewxy/math32"
)

// action is the playback state of one clip inside a Mixer.
type action struct {
	clip      *model.AnimationClip
	time      float32
	timeScale float32
	running   bool
	paused    bool
}

// mixer is the implementation of the Mixer interface.
type mixer struct {
	mu      *sync.Mutex
	order   []string
	actions map[string]*action
}

// Mixer is the animation playback clock of a loaded model. It holds one action per clip;
// each action has its own time, time scale and running/paused flags. Actions loop when their
// time passes the clip duration.
//
// A running action advances on Update unless it is paused. A paused action is still active:
// it keeps its time and resumes from it on Play. Stop deactivates an action and rewinds it.
type Mixer interface {
	// AddClip registers a clip and creates a stopped action for it.
	// Adding a clip with an existing name replaces that action.
	//
	// Parameters:
	//   - clip: the animation clip
	AddClip(clip *model.AnimationClip)

	// Clear stops every action and removes all clips.
	Clear()

	// Clips returns the registered clips in registration order.
	//
	// Returns:
	//   - []model.ClipInfo: name and duration of each clip
	Clips() []model.ClipInfo

	// Play activates and unpauses the named action at the given time scale.
	// The action continues from its current time. Unknown names are ignored.
	//
	// Parameters:
	//   - name: the clip name
	//   - timeScale: the playback speed multiplier
	Play(name string, timeScale float32)

	// Pause keeps the named action active but stops it from advancing. Unknown names are ignored.
	//
	// Parameters:
	//   - name: the clip name
	Pause(name string)

	// Stop deactivates the named action and rewinds it to zero. Unknown names are ignored.
	//
	// Parameters:
	//   - name: the clip name
	Stop(name string)

	// StopAll deactivates and rewinds every action.
	StopAll()

	// Seek sets the named action's time, clamped to the clip duration. Unknown names are ignored.
	//
	// Parameters:
	//   - name: the clip name
	//   - t: the time in seconds
	Seek(name string, t float32)

	// SetTimeScale changes the named action's speed without restarting it. Unknown names are ignored.
	//
	// Parameters:
	//   - name: the clip name
	//   - timeScale: the playback speed multiplier
	SetTimeScale(name string, timeScale float32)

	// Apply executes commands in order.
	//
	// Parameters:
	//   - cmds: the commands produced by Reconcile
	Apply(cmds []Command)

	// Update advances every running, unpaused action by dt scaled by its time scale.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// Progress reports the position of the first running, unpaused action as a percentage
	// of its clip duration.
	//
	// Returns:
	//   - float32: progress in [0, 100)
	//   - bool: false when no action is advancing
	Progress() (float32, bool)

	// Pose samples every active action and returns the resulting local transform per node.
	// Later clips override earlier ones on the nodes they share.
	//
	// Returns:
	//   - map[int32]model.Transform: node index to local transform
	Pose() map[int32]model.Transform

	// States returns the state of every action in clip order.
	//
	// Returns:
	//   - []ActionState: the action states
	States() []ActionState
}

// ActionState is a read-only view of one action.
type ActionState struct {
	Name      string  `json:"name"`
	Time      float32 `json:"time"`
	Duration  float32 `json:"duration"`
	TimeScale float32 `json:"timeScale"`
	Running   bool    `json:"running"`
	Paused    bool    `json:"paused"`
}

var _ Mixer = &mixer{}

// NewMixer creates an empty Mixer.
//
// Parameters:
//   - options: a variadic list of MixerBuilderOption functions to configure the Mixer
//
// Returns:
//   - Mixer: the mixer
func NewMixer(options ...MixerBuilderOption) Mixer {
	m := &mixer{
		mu:      &sync.Mutex{},
		actions: make(map[string]*action),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *mixer) AddClip(clip *model.AnimationClip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addClip(clip)
}

func (m *mixer) addClip(clip *model.AnimationClip) {
	if _, exists := m.actions[clip.Name]; !exists {
		m.order = append(m.order, clip.Name)
	}
	m.actions[clip.Name] = &action{clip: clip, timeScale: 1}
}

func (m *mixer) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = nil
	m.actions = make(map[string]*action)
}

func (m *mixer) Clips() []model.ClipInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	clips := make([]model.ClipInfo, len(m.order))
	for i, name := range m.order {
		clips[i] = m.actions[name].clip.Info()
	}
	return clips
}

func (m *mixer) Play(name string, timeScale float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.play(name, timeScale)
}

func (m *mixer) play(name string, timeScale float32) {
	if a, ok := m.actions[name]; ok {
		a.timeScale = timeScale
		a.running = true
		a.paused = false
	}
}

func (m *mixer) Pause(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pause(name)
}

func (m *mixer) pause(name string) {
	if a, ok := m.actions[name]; ok {
		a.running = true
		a.paused = true
	}
}

func (m *mixer) Stop(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop(name)
}

func (m *mixer) stop(name string) {
	if a, ok := m.actions[name]; ok {
		a.running = false
		a.paused = false
		a.time = 0
	}
}

func (m *mixer) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopAll()
}

func (m *mixer) stopAll() {
	for _, name := range m.order {
		m.stop(name)
	}
}

func (m *mixer) Seek(name string, t float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seek(name, t)
}

func (m *mixer) seek(name string, t float32) {
	if a, ok := m.actions[name]; ok {
		a.time = max(0, min(t, a.clip.Duration))
	}
}

func (m *mixer) SetTimeScale(name string, timeScale float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.actions[name]; ok {
		a.timeScale = timeScale
	}
}

func (m *mixer) Apply(cmds []Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cmds {
		switch c.Kind {
		case CommandStopAll:
			m.stopAll()
		case CommandStop:
			m.stop(c.Clip)
		case CommandPlay:
			m.play(c.Clip, c.TimeScale)
		case CommandPause:
			m.pause(c.Clip)
		case CommandSetTimeScale:
			if a, ok := m.actions[c.Clip]; ok {
				a.timeScale = c.TimeScale
			}
		case CommandSeek:
			m.seek(c.Clip, c.Time)
		}
	}
}

func (m *mixer) Update(dt float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range m.order {
		a := m.actions[name]
		if !a.running || a.paused {
			continue
		}

		a.time += dt * a.timeScale

		duration := a.clip.Duration
		if duration <= 0 {
			a.time = 0
			continue
		}
		if a.time >= duration || a.time < 0 {
			a.time = math32.Mod(a.time, duration)
			if a.time < 0 {
				a.time += duration
			}
		}
	}
}

func (m *mixer) Progress() (float32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range m.order {
		a := m.actions[name]
		if !a.running || a.paused || a.clip.Duration <= 0 {
			continue
		}
		return a.time / a.clip.Duration * 100, true
	}
	return 0, false
}

func (m *mixer) Pose() map[int32]model.Transform {
	m.mu.Lock()
	defer m.mu.Unlock()

	pose := make(map[int32]model.Transform)
	for _, name := range m.order {
		a := m.actions[name]
		if !a.running {
			continue
		}
		for i := range a.clip.Channels {
			ch := &a.clip.Channels[i]
			pose[ch.NodeIndex] = ch.Sample(a.time)
		}
	}
	return pose
}

func (m *mixer) States() []ActionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	states := make([]ActionState, len(m.order))
	for i, name := range m.order {
		a := m.actions[name]
		states[i] = ActionState{
			Name:      name,
			Time:      a.time,
			Duration:  a.clip.Duration,
			TimeScale: a.timeScale,
			Running:   a.running,
			Paused:    a.paused,
		}
	}
	return states
}
