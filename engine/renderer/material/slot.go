package material

// Slot records which material a mesh node owns and which, if any, temporarily replaces it.
// The original reference is never changed by Override or Restore, so restoring after any
// number of overrides yields the identical Material the node was built with.
type Slot struct {
	original Material
	override Material
}

// NewSlot creates a Slot owning the given material.
//
// Parameters:
//   - original: the material the node was loaded with
//
// Returns:
//   - *Slot: a slot with no override
func NewSlot(original Material) *Slot {
	return &Slot{original: original}
}

// Active returns the material the node should currently draw with.
func (s *Slot) Active() Material {
	if s.override != nil {
		return s.override
	}
	return s.original
}

// Original returns the owned material regardless of any override.
func (s *Slot) Original() Material {
	return s.original
}

// Overridden reports whether an override is installed.
func (s *Slot) Overridden() bool {
	return s.override != nil
}

// Override installs the material built by create unless an override is already stored,
// in which case the existing override is returned untouched and create is not called.
//
// Parameters:
//   - create: builds the override material
//
// Returns:
//   - Material: the installed override
//   - bool: true if a new override was installed
func (s *Slot) Override(create func() Material) (Material, bool) {
	if s.override != nil {
		return s.override, false
	}
	s.override = create()
	return s.override, true
}

// Restore discards any override and returns the original material.
func (s *Slot) Restore() Material {
	s.override = nil
	return s.original
}
