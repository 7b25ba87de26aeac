package composer

import "github.com/Carmen-Shannon/oxy-fx/engine/target"

// ComposerBuilderOption is a functional option used to configure a composer
// created with New.
type ComposerBuilderOption func(*composerImpl)

// WithRenderTargets supplies caller-owned ping-pong buffers instead of
// letting the composer allocate its own. The composer will resize but never
// dispose them.
//
// Parameters:
//   - read: the initial read buffer
//   - write: the initial write buffer
//
// Returns:
//   - ComposerBuilderOption: a function that sets the buffers
func WithRenderTargets(read, write target.RenderTarget) ComposerBuilderOption {
	return func(c *composerImpl) {
		c.readBuffer = read
		c.writeBuffer = write
		c.ownsTargets = false
		c.width, c.height = read.Width(), read.Height()
	}
}

// WithSize overrides the renderer-derived buffer dimensions.
//
// Parameters:
//   - width: the buffer width in pixels
//   - height: the buffer height in pixels
//
// Returns:
//   - ComposerBuilderOption: a function that sets the dimensions
func WithSize(width, height int) ComposerBuilderOption {
	return func(c *composerImpl) {
		c.width, c.height = width, height
	}
}

// WithPixelRatio sets the device pixel ratio the buffers are scaled by.
// Ratios that are not positive are ignored.
//
// Parameters:
//   - ratio: the device pixel ratio
//
// Returns:
//   - ComposerBuilderOption: a function that sets the ratio
func WithPixelRatio(ratio float32) ComposerBuilderOption {
	return func(c *composerImpl) {
		if ratio > 0 {
			c.pixelRatio = ratio
		}
	}
}

// WithoutRenderToScreen keeps the final pass rendering into the write buffer
// so the result can be read back or fed into another chain.
//
// Returns:
//   - ComposerBuilderOption: a function that disables screen output
func WithoutRenderToScreen() ComposerBuilderOption {
	return func(c *composerImpl) {
		c.renderToScreen = false
	}
}
