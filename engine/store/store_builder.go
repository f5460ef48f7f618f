package store

// StoreBuilderOption is a functional option for configuring a Store during construction.
type StoreBuilderOption func(*store)

// WithRegistry is an option builder that connects the Store to the file registry used by
// UploadFile, the list fetches and MoveToDisplay.
//
// Parameters:
//   - r: the registry client
//
// Returns:
//   - StoreBuilderOption: a function that sets the registry on a store
func WithRegistry(r Registry) StoreBuilderOption {
	return func(s *store) {
		s.registry = r
	}
}

// WithViewSettings is an option builder that replaces the default view settings.
//
// Parameters:
//   - v: the initial view settings
//
// Returns:
//   - StoreBuilderOption: a function that sets the view settings on a store
func WithViewSettings(v ViewSettings) StoreBuilderOption {
	return func(s *store) {
		s.state.View = v
	}
}

// WithSpeed is an option builder that sets the initial animation speed. Non-positive
// values are ignored.
//
// Parameters:
//   - speed: the initial time scale
//
// Returns:
//   - StoreBuilderOption: a function that sets the speed on a store
func WithSpeed(speed float32) StoreBuilderOption {
	return func(s *store) {
		if speed > 0 {
			s.state.Speed = speed
		}
	}
}
