package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/client"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
)

var (
	ErrUnknownClip       = errors.New("unknown animation clip")
	ErrInvalidSpeed      = errors.New("animation speed must be positive")
	ErrInvalidRenderMode = errors.New("unknown render mode")
	ErrUnknownTab        = errors.New("unknown tab")
	ErrNoRegistry        = errors.New("no file registry configured")

	errStaleModel = errors.New("model changed")
)

// Registry is the part of the registry client the store needs.
type Registry interface {
	Upload(ctx context.Context, name string, r io.Reader) (*client.UploadResult, error)
	List(ctx context.Context, category string) ([]string, error)
	MoveToDisplay(ctx context.Context, filename string) error
}

// Listener receives the state before and after a mutation.
type Listener func(prev, next State)

type change struct {
	prev, next State
}

// store is the implementation of the Store interface.
type store struct {
	mu        *sync.Mutex
	state     State
	listeners []*listenerEntry
	pending   []change
	draining  bool

	registry Registry
	blobs    *blobTable
	blobID   string
}

type listenerEntry struct {
	fn Listener
}

// Store is the viewer's single mutable state container. Every setter updates the state
// synchronously under the store's lock; listeners are then notified with the previous and
// next snapshot outside the lock, one mutation at a time, in mutation order.
//
// Listeners may call setters. Such nested mutations are queued and delivered after the
// current notification round.
type Store interface {
	// State returns a deep copy of the current state.
	//
	// Returns:
	//   - State: the snapshot
	State() State

	// Subscribe registers a listener.
	//
	// Parameters:
	//   - l: the listener
	//
	// Returns:
	//   - func(): removes the listener; safe to call more than once
	Subscribe(l Listener) func()

	// SelectModel shows a file from the registry's "display" set. Playback, clips, selection
	// and stats are reset and a previously opened local file is released.
	//
	// Parameters:
	//   - filename: the display filename
	SelectModel(filename string)

	// OpenLocalFile shows a file from the local machine through a blob handle.
	// Playback is reset and the previous blob handle is released.
	//
	// Parameters:
	//   - name: the original filename
	//   - data: the file contents
	//
	// Returns:
	//   - string: the blob URL of the new model reference
	OpenLocalFile(name string, data []byte) string

	// UploadFile opens the file locally, uploads it to the registry and refreshes the
	// uploads list. A second upload while one is pending is not guarded against.
	//
	// Parameters:
	//   - ctx: cancels the network calls
	//   - name: the original filename
	//   - data: the file contents
	//
	// Returns:
	//   - *client.UploadResult: the registry's answer
	//   - error: error if the upload or the list refresh failed
	UploadFile(ctx context.Context, name string, data []byte) (*client.UploadResult, error)

	// FetchUploadsList refreshes the uploads list. On failure the list is reset to empty.
	FetchUploadsList(ctx context.Context) error

	// FetchDisplayList refreshes the display list. On failure the list is reset to empty.
	FetchDisplayList(ctx context.Context) error

	// MoveToDisplay moves a file to the display set and refreshes both lists.
	MoveToDisplay(ctx context.Context, filename string) error

	// OpenBlob returns the bytes behind a live blob handle.
	//
	// Parameters:
	//   - id: the handle id, the part of the blob URL after "blob:"
	//
	// Returns:
	//   - []byte: the contents
	//   - error: ErrBlobReleased if the handle is gone
	OpenBlob(id string) ([]byte, error)

	TogglePlayback()
	SetPlaying(playing bool)

	// ResetAnimation rewinds to progress 0 and pauses.
	ResetAnimation()

	// SetProgress scrubs to p percent, clamped to [0, 100].
	SetProgress(p float32)

	// SyncProgress records playback-driven progress. It is ignored while paused.
	SyncProgress(p float32)

	// SetSpeed changes the time scale of playing clips.
	//
	// Returns:
	//   - error: ErrInvalidSpeed if s <= 0
	SetSpeed(s float32) error

	// ToggleAnimationSelection adds or removes a clip from the selection.
	//
	// Returns:
	//   - error: ErrUnknownClip if the model has no clip with that name
	ToggleAnimationSelection(name string) error

	// SetAnimations registers the clip set of the loaded model. A non-empty set selects
	// every clip and makes the first one current.
	SetAnimations(clips []model.ClipInfo)

	// SetCurrentAnimation changes the current clip; an empty name clears it.
	SetCurrentAnimation(name string) error

	SetModelStats(stats *model.Stats)
	SetLoadError(err error)

	// CompleteLoad records the outcome of a successful load, as SetAnimations and
	// SetModelStats would, but only while url is still the current model.
	//
	// Parameters:
	//   - url: the model URL the load was started for
	//   - clips: the clip set of the loaded model
	//   - stats: the model statistics
	//
	// Returns:
	//   - bool: false if the model changed meanwhile and nothing was recorded
	CompleteLoad(url string, clips []model.ClipInfo, stats *model.Stats) bool

	// FailLoad records a load error, but only while url is still the current model.
	//
	// Returns:
	//   - bool: false if the model changed meanwhile and nothing was recorded
	FailLoad(url string, err error) bool

	SetShowGrid(show bool)
	SetShowAxes(show bool)
	SetRenderMode(mode RenderMode) error

	// SetWireframeOpacity clamps to [0, 1].
	SetWireframeOpacity(o float32)

	// SetWireframeColor accepts "#rrggbb".
	SetWireframeColor(hex string) error

	// SetFaceOpacity clamps to [0, 1].
	SetFaceOpacity(o float32)
	SetEdgeHighlight(on bool)
	SetActiveTab(tab string) error

	// Close releases the blob handle held at teardown.
	Close()
}

var _ Store = &store{}

// NewStore creates a Store with default state.
//
// Parameters:
//   - options: a variadic list of StoreBuilderOption functions to configure the Store
//
// Returns:
//   - Store: the store
func NewStore(options ...StoreBuilderOption) Store {
	s := &store{
		mu: &sync.Mutex{},
		state: State{
			Speed:       DefaultSpeed,
			View:        DefaultViewSettings(),
			ActiveTab:   TabModel,
			UploadsList: []string{},
			DisplayList: []string{},
		},
		blobs: newBlobTable(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *store) Subscribe(l Listener) func() {
	entry := &listenerEntry{fn: l}
	s.mu.Lock()
	s.listeners = append(s.listeners, entry)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, e := range s.listeners {
				if e == entry {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// update applies mutate under the lock and then delivers the change. An error from mutate
// leaves the state untouched and notifies nobody.
func (s *store) update(mutate func(st *State) error) error {
	s.mu.Lock()
	next := s.state.clone()
	if err := mutate(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	prev := s.state
	s.state = next
	s.pending = append(s.pending, change{prev: prev.clone(), next: next.clone()})
	if s.draining {
		s.mu.Unlock()
		return nil
	}

	s.draining = true
	for len(s.pending) > 0 {
		c := s.pending[0]
		s.pending = s.pending[1:]
		listeners := append([]*listenerEntry(nil), s.listeners...)
		s.mu.Unlock()
		for _, l := range listeners {
			l.fn(c.prev, c.next)
		}
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
	return nil
}

func (s *store) set(mutate func(st *State)) {
	_ = s.update(func(st *State) error {
		mutate(st)
		return nil
	})
}

// releaseBlobLocked drops the current blob handle; callers hold s.mu.
func (s *store) releaseBlobLocked() {
	if s.blobID == "" {
		return
	}
	s.blobs.release(s.blobID)
	s.blobID = ""
}

func (s *store) SelectModel(filename string) {
	s.set(func(st *State) {
		s.releaseBlobLocked()
		st.resetModel(ModelRef{URL: "display/" + filename})
	})
}

func (s *store) OpenLocalFile(name string, data []byte) string {
	var url string
	s.set(func(st *State) {
		s.releaseBlobLocked()
		s.blobID = s.blobs.create(data)
		url = BlobURLPrefix + s.blobID
		st.resetModel(ModelRef{URL: url, File: &FileInfo{Name: name, Size: int64(len(data))}})
	})
	return url
}

func (s *store) UploadFile(ctx context.Context, name string, data []byte) (*client.UploadResult, error) {
	s.OpenLocalFile(name, data)
	if s.registry == nil {
		return nil, ErrNoRegistry
	}

	res, err := s.registry.Upload(ctx, name, bytes.NewReader(data))
	if err != nil {
		log.Printf("[Store] upload of %s failed: %v", name, err)
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	log.Printf("[Store] uploaded %s as %s", name, res.Filename)

	if err := s.FetchUploadsList(ctx); err != nil {
		return res, err
	}
	return res, nil
}

func (s *store) fetchList(ctx context.Context, category string, assign func(st *State, files []string)) error {
	if s.registry == nil {
		s.set(func(st *State) { assign(st, []string{}) })
		return ErrNoRegistry
	}

	files, err := s.registry.List(ctx, category)
	if err != nil {
		log.Printf("[Store] error fetching %s list: %v", category, err)
		s.set(func(st *State) { assign(st, []string{}) })
		return fmt.Errorf("fetch %s list: %w", category, err)
	}
	if files == nil {
		files = []string{}
	}
	s.set(func(st *State) { assign(st, files) })
	return nil
}

func (s *store) FetchUploadsList(ctx context.Context) error {
	return s.fetchList(ctx, client.CategoryUploaded, func(st *State, files []string) {
		st.UploadsList = files
	})
}

func (s *store) FetchDisplayList(ctx context.Context) error {
	return s.fetchList(ctx, client.CategoryDisplay, func(st *State, files []string) {
		st.DisplayList = files
	})
}

func (s *store) MoveToDisplay(ctx context.Context, filename string) error {
	if s.registry == nil {
		return ErrNoRegistry
	}
	if err := s.registry.MoveToDisplay(ctx, filename); err != nil {
		log.Printf("[Store] error moving %s to display: %v", filename, err)
		return fmt.Errorf("move %s to display: %w", filename, err)
	}
	if err := s.FetchUploadsList(ctx); err != nil {
		return err
	}
	return s.FetchDisplayList(ctx)
}

func (s *store) OpenBlob(id string) ([]byte, error) {
	return s.blobs.open(id)
}

func (s *store) TogglePlayback() {
	s.set(func(st *State) { st.Playing = !st.Playing })
}

func (s *store) SetPlaying(playing bool) {
	s.set(func(st *State) { st.Playing = playing })
}

func (s *store) ResetAnimation() {
	s.set(func(st *State) {
		st.Progress = 0
		st.Playing = false
	})
}

func (s *store) SetProgress(p float32) {
	s.set(func(st *State) { st.Progress = common.Clamp(p, 0, 100) })
}

func (s *store) SyncProgress(p float32) {
	s.set(func(st *State) {
		if st.Playing {
			st.Progress = common.Clamp(p, 0, 100)
		}
	})
}

func (s *store) SetSpeed(speed float32) error {
	if !(speed > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	return s.update(func(st *State) error {
		st.Speed = speed
		return nil
	})
}

func (s *store) ToggleAnimationSelection(name string) error {
	return s.update(func(st *State) error {
		if !hasClip(st.Animations, name) {
			return fmt.Errorf("%w: %q", ErrUnknownClip, name)
		}
		if st.IsSelected(name) {
			kept := make([]string, 0, len(st.Selected))
			for _, n := range st.Selected {
				if n != name {
					kept = append(kept, n)
				}
			}
			st.Selected = kept
		} else {
			st.Selected = append(st.Selected, name)
		}
		return nil
	})
}

func (s *store) SetAnimations(clips []model.ClipInfo) {
	s.set(func(st *State) { st.setAnimations(clips) })
}

func (s *store) CompleteLoad(url string, clips []model.ClipInfo, stats *model.Stats) bool {
	err := s.update(func(st *State) error {
		if st.Model.URL != url {
			return errStaleModel
		}
		st.setAnimations(clips)
		st.Stats = stats
		st.LoadError = ""
		return nil
	})
	return err == nil
}

func (s *store) FailLoad(url string, loadErr error) bool {
	err := s.update(func(st *State) error {
		if st.Model.URL != url {
			return errStaleModel
		}
		st.LoadError = loadErr.Error()
		return nil
	})
	return err == nil
}

func (s *store) SetCurrentAnimation(name string) error {
	return s.update(func(st *State) error {
		if name != "" && !hasClip(st.Animations, name) {
			return fmt.Errorf("%w: %q", ErrUnknownClip, name)
		}
		st.CurrentAnimation = name
		return nil
	})
}

func (s *store) SetModelStats(stats *model.Stats) {
	s.set(func(st *State) { st.Stats = stats })
}

func (s *store) SetLoadError(err error) {
	s.set(func(st *State) {
		st.LoadError = ""
		if err != nil {
			st.LoadError = err.Error()
		}
	})
}

func (s *store) SetShowGrid(show bool) {
	s.set(func(st *State) { st.View.ShowGrid = show })
}

func (s *store) SetShowAxes(show bool) {
	s.set(func(st *State) { st.View.ShowAxes = show })
}

func (s *store) SetRenderMode(mode RenderMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRenderMode, mode)
	}
	return s.update(func(st *State) error {
		st.View.RenderMode = mode
		return nil
	})
}

func (s *store) SetWireframeOpacity(o float32) {
	s.set(func(st *State) { st.View.WireframeOpacity = common.Clamp(o, 0, 1) })
}

func (s *store) SetWireframeColor(hex string) error {
	if _, err := common.ParseHexColor(hex); err != nil {
		return err
	}
	return s.update(func(st *State) error {
		st.View.WireframeColor = hex
		return nil
	})
}

func (s *store) SetFaceOpacity(o float32) {
	s.set(func(st *State) { st.View.FaceOpacity = common.Clamp(o, 0, 1) })
}

func (s *store) SetEdgeHighlight(on bool) {
	s.set(func(st *State) { st.View.EdgeHighlight = on })
}

func (s *store) SetActiveTab(tab string) error {
	if !common.Contains(Tabs, tab) {
		return fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}
	return s.update(func(st *State) error {
		st.ActiveTab = tab
		return nil
	})
}

func (s *store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseBlobLocked()
}

func hasClip(clips []model.ClipInfo, name string) bool {
	for _, c := range clips {
		if c.Name == name {
			return true
		}
	}
	return false
}
