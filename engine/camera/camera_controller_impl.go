package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/component"
	"github.com/go-gl/mathgl/mgl32"
)

// Default fly controller settings.
const (
	DefaultSpeed       = float32(50.0)
	DefaultSensitivity = float32(0.1)
	DefaultPitchLimit  = float32(89.0)
)

// cameraControllerImpl is the implementation of the CameraController interface.
type cameraControllerImpl struct {
	mu *sync.Mutex

	yaw   float32
	pitch float32

	lastX, lastY float32
	hasCursor    bool

	speed       float32
	sensitivity float32
	pitchLimit  float32

	held map[uint32]bool
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a fly controller with speed 50, sensitivity 0.1 and a pitch limit of 89 degrees.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the new controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:          &sync.Mutex{},
		speed:       DefaultSpeed,
		sensitivity: DefaultSensitivity,
		pitchLimit:  DefaultPitchLimit,
		held:        make(map[uint32]bool),
	}
	for _, opt := range options {
		opt(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) OnMouseMove(x, y int32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	fx, fy := float32(x), float32(y)
	if !cc.hasCursor {
		cc.lastX, cc.lastY = fx, fy
		cc.hasCursor = true
		return
	}
	dx := (fx - cc.lastX) * cc.sensitivity
	dy := (fy - cc.lastY) * cc.sensitivity
	cc.lastX, cc.lastY = fx, fy

	cc.yaw -= dx
	cc.pitch = mgl32.Clamp(cc.pitch-dy, -cc.pitchLimit, cc.pitchLimit)
}

func (cc *cameraControllerImpl) OnKeyDown(keyCode uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.held[keyCode] = true
}

func (cc *cameraControllerImpl) OnKeyUp(keyCode uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.held, keyCode)
}

func (cc *cameraControllerImpl) Update(t *component.Transform, dt float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	yawQ := mgl32.QuatRotate(mgl32.DegToRad(cc.yaw), common.WorldUp)
	pitchQ := mgl32.QuatRotate(mgl32.DegToRad(cc.pitch), common.WorldRight)
	t.SetRotation(yawQ.Mul(pitchQ))

	var offset mgl32.Vec3
	if cc.held[common.KeyW] {
		offset = offset.Add(t.Front())
	}
	if cc.held[common.KeyS] {
		offset = offset.Sub(t.Front())
	}
	if cc.held[common.KeyA] {
		offset = offset.Sub(t.Right())
	}
	if cc.held[common.KeyD] {
		offset = offset.Add(t.Right())
	}
	if offset.Len() > 0 {
		t.Translate(offset.Normalize().Mul(cc.speed * dt))
	}
}

func (cc *cameraControllerImpl) Yaw() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.yaw
}

func (cc *cameraControllerImpl) Pitch() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.pitch
}

func (cc *cameraControllerImpl) Speed() float32 {
	return cc.speed
}

func (cc *cameraControllerImpl) Sensitivity() float32 {
	return cc.sensitivity
}
