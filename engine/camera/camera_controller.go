package camera

import "github.com/Carmen-Shannon/oxy-gl/engine/component"

// CameraController defines a first-person fly controller.
// The controller accumulates window input through the On* callbacks and applies it
// to a Transform once per tick in Update. Mouse motion drives yaw and pitch; the
// movement keys translate along the transform's front and right axes.
type CameraController interface {
	// OnMouseMove feeds an absolute cursor position. The first call only records the position.
	//
	// Parameters:
	//   - x, y: cursor position in window pixels
	OnMouseMove(x, y int32)

	// OnKeyDown marks a key as held.
	//
	// Parameters:
	//   - keyCode: the key code from the window callback
	OnKeyDown(keyCode uint32)

	// OnKeyUp marks a key as released.
	//
	// Parameters:
	//   - keyCode: the key code from the window callback
	OnKeyUp(keyCode uint32)

	// Update applies the accumulated rotation and the held movement keys to t.
	//
	// Parameters:
	//   - t: the camera transform to drive
	//   - dt: elapsed time in seconds
	Update(t *component.Transform, dt float32)

	// Yaw returns the accumulated yaw in degrees.
	//
	// Returns:
	//   - float32: yaw in degrees
	Yaw() float32

	// Pitch returns the accumulated pitch in degrees, clamped to the pitch limit.
	//
	// Returns:
	//   - float32: pitch in degrees
	Pitch() float32

	// Speed returns the movement speed in units per second.
	//
	// Returns:
	//   - float32: the movement speed
	Speed() float32

	// Sensitivity returns the rotation in degrees per pixel of mouse motion.
	//
	// Returns:
	//   - float32: the mouse sensitivity
	Sensitivity() float32
}
