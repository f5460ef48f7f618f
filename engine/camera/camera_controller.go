package camera

// CameraController is a damped orbit controller around a target point.
// Input (Rotate, Zoom, Pan) is accumulated and eased in over successive Update calls;
// the fraction applied per 60 Hz frame is the damping factor.
// Position is derived from spherical coordinates (radius, azimuth, elevation) around the target.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// Target returns the look-at point.
	//
	// Returns:
	//   - x, y, z: world-space target position
	Target() (x, y, z float32)

	// Radius returns the current distance from the target.
	//
	// Returns:
	//   - float32: distance from target
	Radius() float32

	// Azimuth returns the current horizontal angle around the Y axis.
	//
	// Returns:
	//   - float32: azimuth in radians (0 = +Z axis)
	Azimuth() float32

	// Elevation returns the current vertical angle from the horizontal plane.
	//
	// Returns:
	//   - float32: elevation in radians
	Elevation() float32

	// Rotate queues an orbit around the target.
	//
	// Parameters:
	//   - dAzimuth: horizontal angle in radians, positive orbits right
	//   - dElevation: vertical angle in radians, positive orbits up
	Rotate(dAzimuth, dElevation float32)

	// Zoom queues a dolly toward the target. Positive delta zooms in; one unit of delta
	// shrinks the distance by the zoom step.
	//
	// Parameters:
	//   - delta: zoom amount
	Zoom(delta float32)

	// Pan queues a translation of both target and position along the camera's right and up axes.
	// Offsets are scaled by the current distance so panning feels constant on screen.
	//
	// Parameters:
	//   - dx: right offset
	//   - dy: up offset
	Pan(dx, dy float32)

	// Update applies a damped share of the queued input.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	//
	// Returns:
	//   - bool: true if the camera moved
	Update(dt float32) bool

	// Reset returns to the initial position, target and distance and drops queued input.
	Reset()

	// ResetZoom returns to the initial distance, keeping the current angles and target.
	ResetZoom()

	// DampingFactor returns the fraction of queued input applied per 60 Hz frame.
	//
	// Returns:
	//   - float32: the damping factor in (0, 1]
	DampingFactor() float32

	// MinRadius returns the minimum allowed distance.
	MinRadius() float32

	// MaxRadius returns the maximum allowed distance.
	MaxRadius() float32
}
