package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
)

const settleEpsilon = 1e-5

// cameraControllerImpl is the implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32

	radius    float32
	azimuth   float32
	elevation float32

	// initial pose restored by Reset
	home orbit

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	dampingFactor float32
	zoomStep      float32

	// queued input not yet applied
	pendingAzimuth   float32
	pendingElevation float32
	pendingZoom      float32
	pendingPan       [2]float32
}

type orbit struct {
	target    [3]float32
	radius    float32
	azimuth   float32
	elevation float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller. The defaults place the camera at (0, 0, 5)
// looking at the origin, with damping 0.05 and a distance range of [1, 100].
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		radius: 5,

		minRadius:    1,
		maxRadius:    100,
		minElevation: -math32.Pi/2 + 0.01,
		maxElevation: math32.Pi/2 - 0.01,

		dampingFactor: 0.05,
		zoomStep:      0.95,
	}

	for _, option := range options {
		option(cc)
	}

	cc.radius = common.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = common.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.home = orbit{target: cc.target, radius: cc.radius, azimuth: cc.azimuth, elevation: cc.elevation}
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	sinElev, cosElev := math32.Sincos(cc.elevation)
	sinAzim, cosAzim := math32.Sincos(cc.azimuth)

	cc.position[0] = cc.target[0] + cc.radius*cosElev*sinAzim
	cc.position[1] = cc.target[1] + cc.radius*sinElev
	cc.position[2] = cc.target[2] + cc.radius*cosElev*cosAzim
}

// localAxes returns the camera's right and up vectors consistent with the LookAt matrix.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up [3]float32) {
	bx := cc.position[0] - cc.target[0]
	by := cc.position[1] - cc.target[1]
	bz := cc.position[2] - cc.target[2]
	bLen := math32.Sqrt(bx*bx + by*by + bz*bz)
	if bLen < 1e-8 {
		return
	}
	bx /= bLen
	by /= bLen
	bz /= bLen

	// cross((0,1,0), backward)
	rx, rz := bz, -bx
	rLen := math32.Sqrt(rx*rx + rz*rz)
	if rLen < 1e-8 {
		return
	}
	rx /= rLen
	rz /= rLen

	right = [3]float32{rx, 0, rz}
	up = [3]float32{by * rz, bz*rx - bx*rz, -by * rx}
	return
}

func (cc *cameraControllerImpl) Position() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position[0], cc.position[1], cc.position[2]
}

func (cc *cameraControllerImpl) Target() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target[0], cc.target[1], cc.target[2]
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) Rotate(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingAzimuth += dAzimuth
	cc.pendingElevation += dElevation
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingZoom += delta
}

func (cc *cameraControllerImpl) Pan(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingPan[0] += dx
	cc.pendingPan[1] += dy
}

func (cc *cameraControllerImpl) Update(dt float32) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.settled() {
		return false
	}

	// fraction of the queued input applied this step, normalised to 60 Hz frames
	f := float32(1)
	if cc.dampingFactor < 1 {
		f = 1 - math32.Pow(1-cc.dampingFactor, dt*60)
	}

	da := cc.pendingAzimuth * f
	de := cc.pendingElevation * f
	dz := cc.pendingZoom * f
	px := cc.pendingPan[0] * f
	py := cc.pendingPan[1] * f

	cc.pendingAzimuth -= da
	cc.pendingElevation -= de
	cc.pendingZoom -= dz
	cc.pendingPan[0] -= px
	cc.pendingPan[1] -= py

	right, up := cc.localAxes()
	for i := range 3 {
		cc.target[i] += (right[i]*px + up[i]*py) * cc.radius
	}

	cc.azimuth += da
	cc.elevation = common.Clamp(cc.elevation+de, cc.minElevation, cc.maxElevation)
	cc.radius = common.Clamp(cc.radius*math32.Pow(cc.zoomStep, dz), cc.minRadius, cc.maxRadius)
	cc.updatePosition()

	if cc.settled() {
		cc.pendingAzimuth, cc.pendingElevation, cc.pendingZoom = 0, 0, 0
		cc.pendingPan = [2]float32{}
	}
	return true
}

// settled reports whether no meaningful input is queued. Caller must hold the mutex.
func (cc *cameraControllerImpl) settled() bool {
	return math32.Abs(cc.pendingAzimuth) < settleEpsilon &&
		math32.Abs(cc.pendingElevation) < settleEpsilon &&
		math32.Abs(cc.pendingZoom) < settleEpsilon &&
		math32.Abs(cc.pendingPan[0]) < settleEpsilon &&
		math32.Abs(cc.pendingPan[1]) < settleEpsilon
}

func (cc *cameraControllerImpl) Reset() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = cc.home.target
	cc.radius = cc.home.radius
	cc.azimuth = cc.home.azimuth
	cc.elevation = cc.home.elevation
	cc.pendingAzimuth, cc.pendingElevation, cc.pendingZoom = 0, 0, 0
	cc.pendingPan = [2]float32{}
	cc.updatePosition()
}

func (cc *cameraControllerImpl) ResetZoom() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = cc.home.radius
	cc.pendingZoom = 0
	cc.updatePosition()
}

func (cc *cameraControllerImpl) DampingFactor() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.dampingFactor
}

func (cc *cameraControllerImpl) MinRadius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minRadius
}

func (cc *cameraControllerImpl) MaxRadius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxRadius
}
