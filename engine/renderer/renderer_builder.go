package renderer

import "github.com/cogentcore/webgpu/wgpu"

// ContextBuilderOption is a functional option used to configure a GraphicsContext during construction.
type ContextBuilderOption func(*graphicsContext)

// WithPresentMode sets how finished frames are delivered to the display.
//
// Parameters:
//   - mode: the present mode (VSync or Uncapped)
//
// Returns:
//   - ContextBuilderOption: a function that sets the present mode
func WithPresentMode(mode PresentMode) ContextBuilderOption {
	return func(c *graphicsContext) {
		switch mode {
		case PresentModeVSync:
			c.presentMode = wgpu.PresentModeFifo
		case PresentModeUncapped:
			fallthrough
		default:
			c.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithForceFallbackAdapter forces the software fallback adapter, for
// environments without a usable GPU.
//
// Returns:
//   - ContextBuilderOption: a function that forces the fallback adapter
func WithForceFallbackAdapter() ContextBuilderOption {
	return func(c *graphicsContext) {
		c.forceFallbackAdapter = true
	}
}
