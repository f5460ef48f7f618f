package hub

import "time"

// HubBuilderOption is a functional option for configuring a Hub during construction.
type HubBuilderOption func(*hub)

// WithOrigins is an option builder that allows websocket connections from the given origins
// in addition to same-host pages.
//
// Parameters:
//   - origins: allowed origins, e.g. "http://localhost:5173"
//
// Returns:
//   - HubBuilderOption: a function that sets the allowed origins on a hub
func WithOrigins(origins ...string) HubBuilderOption {
	return func(h *hub) {
		for _, o := range origins {
			h.origins[o] = true
		}
	}
}

// WithTickDivisor is an option builder that sets how many engine ticks pass between playback
// broadcasts. At the default 60 Hz tick rate the default of 6 broadcasts 10 times a second.
//
// Parameters:
//   - n: ticks per broadcast; values < 1 are ignored
//
// Returns:
//   - HubBuilderOption: a function that sets the tick divisor on a hub
func WithTickDivisor(n int) HubBuilderOption {
	return func(h *hub) {
		if n >= 1 {
			h.tickDivisor = uint64(n)
		}
	}
}

// WithActionTimeout is an option builder that bounds registry requests started by an action.
//
// Parameters:
//   - d: the timeout, 60 seconds by default
//
// Returns:
//   - HubBuilderOption: a function that sets the action timeout on a hub
func WithActionTimeout(d time.Duration) HubBuilderOption {
	return func(h *hub) {
		if d > 0 {
			h.actionTimeout = d
		}
	}
}
