package common

// Key codes delivered by the window key callbacks.
// Printable keys use their ASCII value; the rest follow GLFW numbering.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87
	KeyA     = 65
	KeyS     = 83
	KeyD     = 68
	KeyQ     = 81
	KeyE     = 69
	KeyB     = 66
	KeyF     = 70
	KeyG     = 71
	KeySpace = 32
	KeyEsc   = 256
	KeyF1    = 290
	KeyF2    = 291
	KeyF3    = 292

	KeyLeftShift   = 340
	KeyLeftControl = 341
)

// Mouse buttons delivered by the window button callbacks.
const (
	MouseButtonLeft   = 0
	MouseButtonRight  = 1
	MouseButtonMiddle = 2
)
