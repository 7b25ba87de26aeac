package target

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// RenderTargetBuilderOption is a functional option used to configure a
// RenderTarget during construction.
type RenderTargetBuilderOption func(*renderTarget)

// WithLabel sets the debug label used for the target and its attachments.
//
// Parameters:
//   - label: the label string
//
// Returns:
//   - RenderTargetBuilderOption: a function that sets the label
func WithLabel(label string) RenderTargetBuilderOption {
	return func(t *renderTarget) {
		t.label = label
	}
}

// WithFormat sets the color attachment format. Supported formats are the
// 8-bit unorm and 16/32-bit float color formats (e.g. wgpu.TextureFormatRGBA8Unorm,
// wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatRGBA16Float, wgpu.TextureFormatRGBA32Float,
// wgpu.TextureFormatR32Float).
//
// Parameters:
//   - format: the color texel format
//
// Returns:
//   - RenderTargetBuilderOption: a function that sets the format
func WithFormat(format wgpu.TextureFormat) RenderTargetBuilderOption {
	return func(t *renderTarget) {
		t.format = format
	}
}

// WithMinFilter sets the minification filter used when sampling the color
// texture.
//
// Parameters:
//   - filter: the filter mode (wgpu.FilterModeNearest or wgpu.FilterModeLinear)
//
// Returns:
//   - RenderTargetBuilderOption: a function that sets the minification filter
func WithMinFilter(filter wgpu.FilterMode) RenderTargetBuilderOption {
	return func(t *renderTarget) {
		t.minFilter = filter
	}
}

// WithMagFilter sets the magnification filter used when sampling the color
// texture.
//
// Parameters:
//   - filter: the filter mode (wgpu.FilterModeNearest or wgpu.FilterModeLinear)
//
// Returns:
//   - RenderTargetBuilderOption: a function that sets the magnification filter
func WithMagFilter(filter wgpu.FilterMode) RenderTargetBuilderOption {
	return func(t *renderTarget) {
		t.magFilter = filter
	}
}

// WithWrapMode sets the texture coordinate addressing mode used when sampling
// the color texture.
//
// Parameters:
//   - mode: the address mode (e.g. wgpu.AddressModeClampToEdge, wgpu.AddressModeRepeat)
//
// Returns:
//   - RenderTargetBuilderOption: a function that sets the wrap mode
func WithWrapMode(mode wgpu.AddressMode) RenderTargetBuilderOption {
	return func(t *renderTarget) {
		t.wrapMode = mode
	}
}

// WithDepthBuffer sets whether the target owns a depth attachment.
//
// Parameters:
//   - enabled: true to allocate a depth texture
//
// Returns:
//   - RenderTargetBuilderOption: a function that sets the depth buffer flag
func WithDepthBuffer(enabled bool) RenderTargetBuilderOption {
	return func(t *renderTarget) {
		t.depthBuffer = enabled
	}
}

// WithStencilBuffer sets whether the target's depth attachment includes a
// stencil aspect. Enabling the stencil buffer implies a depth attachment
// (the combined depth24plus-stencil8 format).
//
// Parameters:
//   - enabled: true to allocate a stencil buffer
//
// Returns:
//   - RenderTargetBuilderOption: a function that sets the stencil buffer flag
func WithStencilBuffer(enabled bool) RenderTargetBuilderOption {
	return func(t *renderTarget) {
		t.stencilBuffer = enabled
	}
}

// WithGenerateMipmaps sets whether the color texture is allocated with a
// full mip chain.
//
// Parameters:
//   - enabled: true to allocate mip levels
//
// Returns:
//   - RenderTargetBuilderOption: a function that sets the mipmap flag
func WithGenerateMipmaps(enabled bool) RenderTargetBuilderOption {
	return func(t *renderTarget) {
		t.generateMipmaps = enabled
	}
}

// WithSamples sets the MSAA sample count for every attachment. Zero or one
// disables multisampling.
//
// Parameters:
//   - samples: the sample count (0, 1, or 4)
//
// Returns:
//   - RenderTargetBuilderOption: a function that sets the sample count
func WithSamples(samples int) RenderTargetBuilderOption {
	return func(t *renderTarget) {
		t.samples = samples
	}
}
