package framebuffer

import "github.com/Carmen-Shannon/oxy-gl/common"

// FramebufferBuilderOption is a functional option for configuring a Framebuffer via NewFramebuffer.
type FramebufferBuilderOption func(*framebufferImpl)

// WithID fixes the AssetID of the framebuffer.
//
// Parameters:
//   - id: the asset identifier
//
// Returns:
//   - FramebufferBuilderOption: option function to apply
func WithID(id common.AssetID) FramebufferBuilderOption {
	return func(f *framebufferImpl) {
		f.id = id
	}
}

// WithResize sets whether the framebuffer follows the viewport size.
//
// Parameters:
//   - resize: true to rebuild on viewport change
//
// Returns:
//   - FramebufferBuilderOption: option function to apply
func WithResize(resize bool) FramebufferBuilderOption {
	return func(f *framebufferImpl) {
		f.resize = resize
	}
}

// WithResizeFactor sets the multiplier applied to the viewport on resize.
//
// Parameters:
//   - factor: the viewport multiplier, 0.5 for half resolution
//
// Returns:
//   - FramebufferBuilderOption: option function to apply
func WithResizeFactor(factor float32) FramebufferBuilderOption {
	return func(f *framebufferImpl) {
		f.resizeFactor = factor
	}
}
