package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Default perspective settings.
const (
	DefaultFov  = float32(45.0 * math.Pi / 180.0)
	DefaultNear = float32(0.1)
	DefaultFar  = float32(1000.0)
)

// Camera is the projection component of the active camera entity.
// Position and orientation come from the entity's Transform; the Camera only
// holds the lens settings.
type Camera struct {
	fov  float32
	near float32
	far  float32
}

// NewCamera creates a Camera with a 45 degree field of view and [0.1, 1000] clip range.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - *Camera: the new camera
func NewCamera(options ...CameraBuilderOption) *Camera {
	c := &Camera{
		fov:  DefaultFov,
		near: DefaultNear,
		far:  DefaultFar,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Fov returns the vertical field of view in radians.
func (c *Camera) Fov() float32 { return c.fov }

// Near returns the near clipping plane distance.
func (c *Camera) Near() float32 { return c.near }

// Far returns the far clipping plane distance.
func (c *Camera) Far() float32 { return c.far }

// SetFov sets the vertical field of view in radians.
func (c *Camera) SetFov(fov float32) { c.fov = fov }

// SetNear sets the near clipping plane distance.
func (c *Camera) SetNear(near float32) { c.near = near }

// SetFar sets the far clipping plane distance.
func (c *Camera) SetFar(far float32) { c.far = far }

// Perspective returns the projection over the full [near, far] range.
//
// Parameters:
//   - aspect: viewport width / height
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func (c *Camera) Perspective(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.fov, aspect, c.near, c.far)
}

// PerspectiveFar returns the projection with the far plane overridden.
// Used to build the sub-frusta of shadow cascades.
//
// Parameters:
//   - aspect: viewport width / height
//   - far: the far plane distance to use
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func (c *Camera) PerspectiveFar(aspect, far float32) mgl32.Mat4 {
	return mgl32.Perspective(c.fov, aspect, c.near, far)
}
