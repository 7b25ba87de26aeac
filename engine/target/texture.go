package target

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureDescriptor describes a 2D GPU texture to be created by an Allocator.
// It is the staging form of every texture this library owns: render target
// attachments, effect-internal buffers, and generated lookup textures.
type TextureDescriptor struct {
	// Label identifies the texture in GPU debugging tools.
	Label string

	// Width and Height are the texture dimensions in pixels. Both must be positive.
	Width, Height int

	// Format is the texel format.
	Format wgpu.TextureFormat

	// Usage is the combined texture usage flags. Zero defaults to
	// render attachment + texture binding, the usage every composer-owned
	// target needs.
	Usage wgpu.TextureUsage

	// MipLevelCount is the number of mip levels. Zero defaults to 1.
	MipLevelCount int

	// SampleCount is the MSAA sample count. Zero or one means no multisampling.
	SampleCount int

	// Pixels optionally holds tightly-packed texel data uploaded at creation.
	// len(Pixels) must equal Width*Height*bytes-per-texel for the format.
	Pixels []byte
}

// Texture is an opaque GPU image handle. Textures are owned exclusively by
// the RenderTarget or effect pass that created them.
type Texture interface {
	// Label returns the debug label the texture was created with.
	//
	// Returns:
	//   - string: the texture label
	Label() string

	// Width returns the texture width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the texture height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// Format returns the texel format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the texture format
	Format() wgpu.TextureFormat

	// View returns the backend-native texture view.
	// Note: The caller is responsible for type asserting the returned value
	// (*wgpu.TextureView for the wgpu backend).
	//
	// Returns:
	//   - any: the native view object, or nil for test fakes
	View() any

	// Native returns the backend-native texture object.
	// Note: The caller is responsible for type asserting the returned value
	// (*wgpu.Texture for the wgpu backend).
	//
	// Returns:
	//   - any: the native texture object, or nil for test fakes
	Native() any

	// Release frees the GPU memory backing this texture. Safe to call more
	// than once; calls after the first are no-ops.
	Release()
}

// Allocator is the minimal capability interface for creating GPU textures.
// The wgpu renderer backend implements it for real GPU memory; tests
// implement it with fakes so resource-routing logic runs without a device.
type Allocator interface {
	// AllocateTexture creates a texture from the descriptor, uploading the
	// staged pixel data when present.
	//
	// Parameters:
	//   - desc: the texture configuration
	//
	// Returns:
	//   - Texture: the created texture
	//   - error: an error if the descriptor is invalid or creation fails
	AllocateTexture(desc TextureDescriptor) (Texture, error)
}
