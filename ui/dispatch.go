package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/store"
)

// Action names understood by Dispatch.
const (
	ActionSelectModel         = "selectModel"
	ActionOpenLocalFile       = "openLocalFile"
	ActionUploadFile          = "uploadFile"
	ActionMoveToDisplay       = "moveToDisplay"
	ActionRefreshLists        = "refreshLists"
	ActionTogglePlayback      = "togglePlayback"
	ActionSetPlaying          = "setPlaying"
	ActionResetAnimation      = "resetAnimation"
	ActionSetProgress         = "setProgress"
	ActionSetSpeed            = "setSpeed"
	ActionToggleAnimation     = "toggleAnimation"
	ActionSetCurrentAnimation = "setCurrentAnimation"
	ActionToggleGrid          = "toggleGrid"
	ActionSetShowGrid         = "setShowGrid"
	ActionSetShowAxes         = "setShowAxes"
	ActionSetRenderMode       = "setRenderMode"
	ActionSetWireframeOpacity = "setWireframeOpacity"
	ActionSetWireframeColor   = "setWireframeColor"
	ActionSetFaceOpacity      = "setFaceOpacity"
	ActionSetEdgeHighlight    = "setEdgeHighlight"
	ActionSetActiveTab        = "setActiveTab"
	ActionResetCamera         = "resetCamera"
	ActionResetZoom           = "resetZoom"
	ActionOrbit               = "orbit"
	ActionZoom                = "zoom"
	ActionPan                 = "pan"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrInvalidValue  = errors.New("invalid action value")
	ErrNoModel       = errors.New("no model loaded")
	ErrNoCamera      = errors.New("no camera controls")
)

// Action is a named control-surface event with an optional JSON value.
type Action struct {
	Name  string          `json:"action"`
	Value json.RawMessage `json:"value,omitempty"`
}

// FilePayload is the value of the openLocalFile and uploadFile actions; Data is base64 in JSON.
type FilePayload struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// Delta is the value of the orbit and pan actions.
type Delta struct {
	DX float32 `json:"dx"`
	DY float32 `json:"dy"`
}

// IsClientError reports whether err was caused by a bad action rather than a failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownAction) ||
		errors.Is(err, ErrInvalidValue) ||
		errors.Is(err, ErrNoModel) ||
		errors.Is(err, store.ErrUnknownClip) ||
		errors.Is(err, store.ErrInvalidSpeed) ||
		errors.Is(err, store.ErrInvalidRenderMode) ||
		errors.Is(err, store.ErrUnknownTab) ||
		errors.Is(err, common.ErrInvalidHexColor)
}

// controls is the implementation of the Controls interface.
type controls struct {
	st       store.Store
	ctrl     camera.CameraController
	handlers map[string]handler
}

type handler struct {
	needsModel bool
	run        func(ctx context.Context, raw json.RawMessage) error
}

// Controls turns control-surface actions into store and camera mutations and renders the
// surfaces back from the store.
type Controls interface {
	// Dispatch applies one action.
	//
	// Parameters:
	//   - ctx: cancels registry requests started by the action
	//   - a: the action
	//
	// Returns:
	//   - error: ErrUnknownAction, ErrInvalidValue or ErrNoModel for bad actions, the store's
	//     validation errors, or a registry failure
	Dispatch(ctx context.Context, a Action) error

	// Render builds the control surfaces from the current store state.
	//
	// Parameters:
	//   - loading: whether a model load is in flight
	//
	// Returns:
	//   - View: the control surfaces
	Render(loading bool) View

	// Actions lists the action names Dispatch understands.
	Actions() []string
}

var _ Controls = &controls{}

// NewControls creates Controls over a store and an orbit controller.
//
// Parameters:
//   - st: the store the actions mutate
//   - ctrl: the orbit controller for the camera actions; nil rejects them with ErrNoCamera
//
// Returns:
//   - Controls: the controls
func NewControls(st store.Store, ctrl camera.CameraController) Controls {
	c := &controls{
		st:   st,
		ctrl: ctrl,
	}
	c.handlers = map[string]handler{
		ActionSelectModel: {run: withValue(func(_ context.Context, name string) error {
			if name == "" {
				return fmt.Errorf("%w: empty filename", ErrInvalidValue)
			}
			c.st.SelectModel(name)
			return nil
		})},
		ActionOpenLocalFile: {run: withValue(func(_ context.Context, f FilePayload) error {
			if f.Name == "" {
				return fmt.Errorf("%w: empty filename", ErrInvalidValue)
			}
			c.st.OpenLocalFile(f.Name, f.Data)
			return nil
		})},
		ActionUploadFile: {run: withValue(func(ctx context.Context, f FilePayload) error {
			if f.Name == "" {
				return fmt.Errorf("%w: empty filename", ErrInvalidValue)
			}
			_, err := c.st.UploadFile(ctx, f.Name, f.Data)
			return err
		})},
		ActionMoveToDisplay: {run: withValue(func(ctx context.Context, name string) error {
			return c.st.MoveToDisplay(ctx, name)
		})},
		ActionRefreshLists: {run: noValue(func(ctx context.Context) error {
			return errors.Join(c.st.FetchUploadsList(ctx), c.st.FetchDisplayList(ctx))
		})},

		ActionTogglePlayback: {needsModel: true, run: noValue(func(context.Context) error {
			c.st.TogglePlayback()
			return nil
		})},
		ActionSetPlaying: {needsModel: true, run: withValue(func(_ context.Context, on bool) error {
			c.st.SetPlaying(on)
			return nil
		})},
		ActionResetAnimation: {needsModel: true, run: noValue(func(context.Context) error {
			c.st.ResetAnimation()
			return nil
		})},
		ActionSetProgress: {needsModel: true, run: withValue(func(_ context.Context, p float32) error {
			c.st.SetProgress(progressSlider.Snap(p))
			return nil
		})},
		ActionSetSpeed: {needsModel: true, run: withValue(func(_ context.Context, s float32) error {
			return c.st.SetSpeed(speedSlider.Snap(s))
		})},
		ActionToggleAnimation: {needsModel: true, run: withValue(func(_ context.Context, name string) error {
			return c.st.ToggleAnimationSelection(name)
		})},
		ActionSetCurrentAnimation: {needsModel: true, run: withValue(func(_ context.Context, name string) error {
			return c.st.SetCurrentAnimation(name)
		})},

		ActionToggleGrid: {run: noValue(func(context.Context) error {
			c.st.SetShowGrid(!c.st.State().View.ShowGrid)
			return nil
		})},
		ActionSetShowGrid: {run: withValue(func(_ context.Context, on bool) error {
			c.st.SetShowGrid(on)
			return nil
		})},
		ActionSetShowAxes: {run: withValue(func(_ context.Context, on bool) error {
			c.st.SetShowAxes(on)
			return nil
		})},
		ActionSetRenderMode: {run: withValue(func(_ context.Context, mode string) error {
			return c.st.SetRenderMode(store.RenderMode(mode))
		})},
		ActionSetWireframeOpacity: {run: withValue(func(_ context.Context, o float32) error {
			c.st.SetWireframeOpacity(wireSlider.Snap(o))
			return nil
		})},
		ActionSetWireframeColor: {run: withValue(func(_ context.Context, hex string) error {
			return c.st.SetWireframeColor(hex)
		})},
		ActionSetFaceOpacity: {run: withValue(func(_ context.Context, o float32) error {
			c.st.SetFaceOpacity(faceSlider.Snap(o))
			return nil
		})},
		ActionSetEdgeHighlight: {run: withValue(func(_ context.Context, on bool) error {
			c.st.SetEdgeHighlight(on)
			return nil
		})},
		ActionSetActiveTab: {needsModel: true, run: withValue(func(_ context.Context, tab string) error {
			return c.st.SetActiveTab(tab)
		})},

		ActionResetCamera: {needsModel: true, run: c.camera(func(cc camera.CameraController, _ json.RawMessage) error {
			cc.Reset()
			return nil
		})},
		ActionResetZoom: {needsModel: true, run: c.camera(func(cc camera.CameraController, _ json.RawMessage) error {
			cc.ResetZoom()
			return nil
		})},
		ActionOrbit: {run: c.camera(func(cc camera.CameraController, raw json.RawMessage) error {
			var d Delta
			if err := decodeValue(raw, &d); err != nil {
				return err
			}
			cc.Rotate(d.DX, d.DY)
			return nil
		})},
		ActionZoom: {run: c.camera(func(cc camera.CameraController, raw json.RawMessage) error {
			var dz float32
			if err := decodeValue(raw, &dz); err != nil {
				return err
			}
			cc.Zoom(dz)
			return nil
		})},
		ActionPan: {run: c.camera(func(cc camera.CameraController, raw json.RawMessage) error {
			var d Delta
			if err := decodeValue(raw, &d); err != nil {
				return err
			}
			cc.Pan(d.DX, d.DY)
			return nil
		})},
	}
	return c
}

func (c *controls) Dispatch(ctx context.Context, a Action) error {
	h, ok := c.handlers[a.Name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Name)
	}
	if h.needsModel && !c.st.State().HasModel() {
		return fmt.Errorf("%s: %w", a.Name, ErrNoModel)
	}
	if err := h.run(ctx, a.Value); err != nil {
		if !IsClientError(err) {
			log.Printf("[UI] %s failed: %v", a.Name, err)
		}
		return fmt.Errorf("%s: %w", a.Name, err)
	}
	return nil
}

func (c *controls) Render(loading bool) View {
	return Render(c.st.State(), c.ctrl, loading)
}

func (c *controls) Actions() []string {
	names := make([]string, 0, len(c.handlers))
	for name := range c.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *controls) camera(fn func(camera.CameraController, json.RawMessage) error) func(context.Context, json.RawMessage) error {
	return func(_ context.Context, raw json.RawMessage) error {
		if c.ctrl == nil {
			return ErrNoCamera
		}
		return fn(c.ctrl, raw)
	}
}

func decodeValue(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing value", ErrInvalidValue)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}

func withValue[T any](fn func(context.Context, T) error) func(context.Context, json.RawMessage) error {
	return func(ctx context.Context, raw json.RawMessage) error {
		var v T
		if err := decodeValue(raw, &v); err != nil {
			return err
		}
		return fn(ctx, v)
	}
}

func noValue(fn func(context.Context) error) func(context.Context, json.RawMessage) error {
	return func(ctx context.Context, _ json.RawMessage) error {
		return fn(ctx)
	}
}
