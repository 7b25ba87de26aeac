package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
	"github.com/Carmen-Shannon/oxy-fx/engine/window"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	currentTarget target.RenderTarget
	clearColor    common.Color
	colorWrite    bool
	stencil       *stencilState

	width  int
	height int

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
}

// Renderer defines the interface for the rendering system used by the
// post-processing stack.
//
// This is a high-level API designed to simplify rendering tasks into a
// streamlined and idiomatic flow. The Renderer tracks the bound render target,
// clear color, color write mask, and stencil state, and delegates actual GPU
// work to a backend, which allows for multiple backend API implementations to
// exist. A nil render target means draws go to the window surface.
type Renderer interface {
	target.Allocator

	// SetRenderTarget binds the render target subsequent draws render into.
	//
	// Parameters:
	//   - t: the render target, or nil to render to the window surface
	SetRenderTarget(t target.RenderTarget)

	// RenderTarget retrieves the currently bound render target.
	//
	// Returns:
	//   - target.RenderTarget: the bound target, or nil when rendering to the window surface
	RenderTarget() target.RenderTarget

	// SetClearColor sets the color used when clearing the color attachment.
	//
	// Parameters:
	//   - color: the clear color
	SetClearColor(color common.Color)

	// ClearColor retrieves the current clear color.
	//
	// Returns:
	//   - common.Color: the clear color
	ClearColor() common.Color

	// SetColorWrite enables or disables writes to the color attachment.
	// Disabling color writes lets stencil-only draws shape the stencil buffer
	// without touching the image.
	//
	// Parameters:
	//   - enabled: whether color writes are enabled
	SetColorWrite(enabled bool)

	// ColorWrite reports whether color writes are enabled.
	//
	// Returns:
	//   - bool: true when color writes are enabled
	ColorWrite() bool

	// Clear clears the selected attachments of the bound render target, or of
	// the window surface when no target is bound.
	//
	// Parameters:
	//   - color: clear the color attachment
	//   - depth: clear the depth attachment, if present
	//   - stencil: clear the stencil attachment, if present
	//
	// Returns:
	//   - error: an error if the clear could not be encoded
	Clear(color, depth, stencil bool) error

	// DrawQuad draws a full-screen triangle with the given shader and uniform
	// values into the bound render target. Uniform values must cover every
	// declaration of the shader, including its textures.
	//
	// Parameters:
	//   - sh: the effect shader to draw with
	//   - uniforms: values for the shader's declared uniforms
	//
	// Returns:
	//   - error: an error if a declared uniform is missing or encoding fails
	DrawQuad(sh shader.Shader, uniforms shader.Uniforms) error

	// RenderScene renders scene content into the bound render target using
	// the given camera.
	//
	// Parameters:
	//   - scene: the scene content to render
	//   - cam: the camera to render with
	//
	// Returns:
	//   - error: an error if scene encoding fails
	RenderScene(scene Scene, cam camera.Camera) error

	// RenderSceneOverride renders scene content with an override material,
	// used by effects that need an auxiliary geometry pass such as a normal
	// pre-pass.
	//
	// Parameters:
	//   - scene: the scene content to render
	//   - cam: the camera to render with
	//   - override: the material override to apply
	//
	// Returns:
	//   - error: an error if scene encoding fails
	RenderSceneOverride(scene OverridableScene, cam camera.Camera, override MaterialOverride) error

	// Stencil retrieves the stencil state interface.
	//
	// Returns:
	//   - Stencil: the stencil state
	Stencil() Stencil

	// Size retrieves the current surface size in pixels.
	//
	// Returns:
	//   - width: the surface width
	//   - height: the surface height
	Size() (width, height int)

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size
	// should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames
	// are delivered to the display. A call to Resize is required after
	// changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the swapchain texture for this frame. Must be
	// paired with Present after all draws targeting the window surface.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// Present presents the surface to the display and releases the swapchain
	// texture. Must be called once per frame after BeginFrame.
	Present()

	// Dispose releases the backend's GPU resources. The renderer must not be
	// used after Dispose.
	Dispose()
}

var (
	_ Renderer      = &renderer{}
	_ target.Binder = &renderer{}
)

// NewRenderer creates a new Renderer instance with the specified backend type
// and window. The window provides the platform-specific surface descriptor for
// surface creation.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - win: the window providing the rendering surface
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:         &sync.Mutex{},
		clearColor: common.Black,
		colorWrite: true,
		stencil:    newStencilState(),
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(win.SurfaceDescriptor(), r.forceFallbackAdapter)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.width, r.height = win.Width(), win.Height()
	r.backend.ConfigureSurface(r.width, r.height)
	return r
}

func (r *renderer) AllocateTexture(desc target.TextureDescriptor) (target.Texture, error) {
	return r.backend.AllocateTexture(desc)
}

func (r *renderer) SetRenderTarget(t target.RenderTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentTarget = t
}

func (r *renderer) RenderTarget() target.RenderTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentTarget
}

func (r *renderer) SetClearColor(color common.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = color
}

func (r *renderer) ClearColor() common.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearColor
}

func (r *renderer) SetColorWrite(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.colorWrite = enabled
}

func (r *renderer) ColorWrite() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.colorWrite
}

func (r *renderer) Clear(color, depth, stencil bool) error {
	return r.backend.Clear(r.snapshot(), color, depth, stencil)
}

func (r *renderer) DrawQuad(sh shader.Shader, uniforms shader.Uniforms) error {
	return r.backend.DrawQuad(sh, uniforms, r.snapshot())
}

func (r *renderer) RenderScene(scene Scene, cam camera.Camera) error {
	return r.backend.RenderScene(scene, cam, r.snapshot())
}

func (r *renderer) RenderSceneOverride(scene OverridableScene, cam camera.Camera, override MaterialOverride) error {
	return r.backend.RenderSceneOverride(scene, cam, override, r.snapshot())
}

func (r *renderer) Stencil() Stencil {
	return r.stencil
}

func (r *renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Dispose() {
	r.backend.Dispose()
}

// snapshot captures the mutable render state for a single backend call.
func (r *renderer) snapshot() renderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return renderState{
		target:     r.currentTarget,
		clearColor: r.clearColor,
		colorWrite: r.colorWrite,
		stencil:    r.stencil.snapshot(),
	}
}
