package renderer

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/cogentcore/webgpu/wgpu"
)

// MaterialOverride selects a substitute material applied to every object in a
// scene during an auxiliary geometry pass.
type MaterialOverride int

const (
	// OverrideNone renders the scene with its own materials.
	OverrideNone MaterialOverride = iota

	// OverrideNormal renders packed view-space normals into the color
	// attachment, used as input by screen-space occlusion effects.
	OverrideNormal
)

// RenderContext carries an already-begun backend-native render pass plus the
// attachment and state information a scene needs to select or build
// compatible pipelines. For the WGPU backend, Pass is a
// *wgpu.RenderPassEncoder and Device is a *wgpu.Device; scene implementations
// type-assert to the native types of the backend they target.
type RenderContext struct {
	Pass   any
	Device any

	// ColorFormat is the format of the bound color attachment.
	ColorFormat wgpu.TextureFormat

	// DepthFormat is the format of the bound depth attachment, or
	// wgpu.TextureFormatUndefined when the target has no depth buffer.
	DepthFormat wgpu.TextureFormat

	// HasStencil reports whether the depth attachment carries a stencil
	// aspect.
	HasStencil bool

	// ColorWrite is false when the renderer has color writes disabled, as
	// during the geometry half of a mask.
	ColorWrite bool

	// StencilTest and the fields below mirror the renderer's stencil state
	// at encode time. The stencil reference is already set on the pass.
	StencilTest    bool
	StencilCompare wgpu.CompareFunction
	StencilFail    wgpu.StencilOperation
	StencilZFail   wgpu.StencilOperation
	StencilZPass   wgpu.StencilOperation
}

// Scene defines the interface for renderable scene content. The renderer owns
// the render pass; the scene encodes its geometry into it.
type Scene interface {
	// RenderInto encodes the scene's draw commands into the context's
	// render pass.
	//
	// Parameters:
	//   - ctx: the backend-native pass and attachment information
	//   - cam: the camera to render with
	//
	// Returns:
	//   - error: an error if encoding fails
	RenderInto(ctx RenderContext, cam camera.Camera) error
}

// OverridableScene is a Scene that can additionally render itself with a
// substitute material, for effects that need an auxiliary geometry pass.
type OverridableScene interface {
	Scene

	// RenderIntoOverride encodes the scene with the given material override
	// instead of its own materials.
	//
	// Parameters:
	//   - ctx: the backend-native pass and attachment information
	//   - cam: the camera to render with
	//   - override: the material override to apply
	//
	// Returns:
	//   - error: an error if encoding fails
	RenderIntoOverride(ctx RenderContext, cam camera.Camera, override MaterialOverride) error
}
