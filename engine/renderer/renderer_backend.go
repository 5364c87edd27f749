package renderer

import "github.com/Carmen-Shannon/oxy-gl/engine/renderer/backend"

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// swapInterval returns the buffer swap interval of the mode.
func (m PresentMode) swapInterval() int {
	if m == PresentModeUncapped {
		return 0
	}
	return 1
}

// Surface is the window side of the renderer: the graphics context, the drawable size and
// buffer presentation. window.Window satisfies it.
type Surface interface {
	backend.Context

	// Width returns the drawable width in pixels.
	Width() int

	// Height returns the drawable height in pixels.
	Height() int

	// SwapBuffers presents the back buffer.
	SwapBuffers()

	// SetSwapInterval sets the number of vertical blanks to wait for before a swap.
	//
	// Parameters:
	//   - interval: 0 for uncapped, 1 for vsync
	SetSwapInterval(interval int)
}
