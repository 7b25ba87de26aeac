package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)

	// Swapchain state for the current frame. Each draw submits its own
	// command buffer; submission order preserves draw order on the queue.
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	linearSampler  *wgpu.Sampler
	nearestSampler *wgpu.Sampler

	// Caches keyed by shader key (modules, layouts, uniform buffers) and by
	// the full pipeline configuration (pipelines).
	moduleCache    map[string]*wgpu.ShaderModule
	layoutCache    map[string]*wgpu.BindGroupLayout
	uniformBuffers map[string]*wgpu.Buffer
	pipelineCache  map[string]*wgpu.RenderPipeline
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Instance() *wgpu.Instance
	Adapter() *wgpu.Adapter
	Surface() *wgpu.Surface

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// AllocateTexture creates a GPU texture and view from the descriptor,
	// uploading initial pixel data when provided.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - target.Texture: the allocated texture
	//   - error: an error if texture creation fails
	AllocateTexture(desc target.TextureDescriptor) (target.Texture, error)

	// Clear encodes a render pass that clears the selected attachments of the
	// state's bound target, or the swapchain when no target is bound.
	//
	// Parameters:
	//   - state: the render state snapshot
	//   - color: clear the color attachment
	//   - depth: clear the depth attachment, if present
	//   - stencil: clear the stencil attachment, if present
	//
	// Returns:
	//   - error: an error if the clear could not be encoded
	Clear(state renderState, color, depth, stencil bool) error

	// DrawQuad encodes and submits a full-screen triangle draw with the given
	// shader and uniforms under the given render state.
	//
	// Parameters:
	//   - sh: the effect shader
	//   - uniforms: values for the shader's declared uniforms
	//   - state: the render state snapshot
	//
	// Returns:
	//   - error: an error if a uniform is missing or encoding fails
	DrawQuad(sh shader.Shader, uniforms shader.Uniforms, state renderState) error

	// RenderScene begins a render pass on the state's bound target and hands
	// the pass to the scene for encoding.
	//
	// Parameters:
	//   - scene: the scene content to render
	//   - cam: the camera to render with
	//   - state: the render state snapshot
	//
	// Returns:
	//   - error: an error if scene encoding fails
	RenderScene(scene Scene, cam camera.Camera, state renderState) error

	// RenderSceneOverride is RenderScene with a material override applied.
	//
	// Parameters:
	//   - scene: the scene content to render
	//   - cam: the camera to render with
	//   - override: the material override to apply
	//   - state: the render state snapshot
	//
	// Returns:
	//   - error: an error if scene encoding fails
	RenderSceneOverride(scene OverridableScene, cam camera.Camera, override MaterialOverride, state renderState) error

	// BeginFrame acquires the next swapchain texture. Must be paired with
	// Present after all draws targeting the window surface.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after BeginFrame.
	Present()

	// Dispose releases all cached GPU resources and the device.
	Dispose()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:             &sync.Mutex{},
		instance:       wgpu.CreateInstance(nil),
		presentMode:    wgpu.PresentModeImmediate,
		moduleCache:    make(map[string]*wgpu.ShaderModule),
		layoutCache:    make(map[string]*wgpu.BindGroupLayout),
		uniformBuffers: make(map[string]*wgpu.Buffer),
		pipelineCache:  make(map[string]*wgpu.RenderPipeline),
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	w.device = d
	w.queue = d.GetQueue()

	w.linearSampler, err = d.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Effect Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		panic(err)
	}

	// Depth textures may only be bound alongside a non-filtering sampler.
	w.nearestSampler, err = d.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Effect Nearest Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		panic(err)
	}

	return w
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Instance() *wgpu.Instance {
	return b.instance
}

func (b *wgpuRendererBackendImpl) Adapter() *wgpu.Adapter {
	return b.adapter
}

func (b *wgpuRendererBackendImpl) Surface() *wgpu.Surface {
	return b.surface
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) AllocateTexture(desc target.TextureDescriptor) (target.Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	mips := max(desc.MipLevelCount, 1)
	samples := max(desc.SampleCount, 1)

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: uint32(mips),
		SampleCount:   uint32(samples),
		Dimension:     wgpu.TextureDimension2D,
		Format:        desc.Format,
		Usage:         desc.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", desc.Label, err)
	}

	if len(desc.Pixels) > 0 {
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			desc.Pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  uint32(desc.Width) * 4,
				RowsPerImage: uint32(desc.Height),
			},
			&wgpu.Extent3D{
				Width:              uint32(desc.Width),
				Height:             uint32(desc.Height),
				DepthOrArrayLayers: 1,
			},
		)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create texture view %q: %w", desc.Label, err)
	}

	return &wgpuTexture{desc: desc, texture: tex, view: view}, nil
}

// attachments resolves the color and depth-stencil views the state renders
// into. A nil target means the swapchain, which requires a frame in flight.
func (b *wgpuRendererBackendImpl) attachments(state renderState) (colorView *wgpu.TextureView, format wgpu.TextureFormat, depthView *wgpu.TextureView, depthFormat wgpu.TextureFormat, hasStencil bool, err error) {
	if state.target != nil {
		colorView = state.target.ColorTexture().View().(*wgpu.TextureView)
		format = state.target.Format()
		if state.target.HasDepth() {
			depthView = state.target.DepthTexture().View().(*wgpu.TextureView)
			depthFormat = state.target.DepthFormat()
			hasStencil = state.target.HasStencil()
		}
		return colorView, format, depthView, depthFormat, hasStencil, nil
	}
	if b.frameView == nil {
		return nil, 0, nil, 0, false, fmt.Errorf("no swapchain texture acquired, call BeginFrame before rendering to the surface")
	}
	return b.frameView, *b.surfaceFormat, nil, 0, false, nil
}

func (b *wgpuRendererBackendImpl) Clear(state renderState, color, depth, stencil bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	colorView, _, depthView, _, hasStencil, err := b.attachments(state)
	if err != nil {
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	loadOp := wgpu.LoadOpLoad
	if color {
		loadOp = wgpu.LoadOpClear
	}
	descriptor := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       colorView,
				LoadOp:     loadOp,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: state.clearColor.ToWGPU(),
			},
		},
	}
	if depthView != nil {
		attachment := &wgpu.RenderPassDepthStencilAttachment{
			View:            depthView,
			DepthLoadOp:     wgpu.LoadOpLoad,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
		if depth {
			attachment.DepthLoadOp = wgpu.LoadOpClear
		}
		if hasStencil {
			attachment.StencilLoadOp = wgpu.LoadOpLoad
			attachment.StencilStoreOp = wgpu.StoreOpStore
			attachment.StencilClearValue = state.stencil.clearValue
			if stencil {
				attachment.StencilLoadOp = wgpu.LoadOpClear
			}
		}
		descriptor.DepthStencilAttachment = attachment
	}

	pass := encoder.BeginRenderPass(descriptor)
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) DrawQuad(sh shader.Shader, uniforms shader.Uniforms, state renderState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	colorView, format, depthView, depthFormat, hasStencil, err := b.attachments(state)
	if err != nil {
		return err
	}

	textureNames := sh.TextureNames()
	for _, name := range textureNames {
		u, ok := uniforms[name]
		if !ok || u.Texture() == nil {
			return fmt.Errorf("shader %q: texture %q: %w", sh.Key(), name, shader.ErrMissingUniform)
		}
	}

	data, err := shader.Pack(sh.Declarations(), uniforms)
	if err != nil {
		return fmt.Errorf("shader %q: %w", sh.Key(), err)
	}

	attachStencil := depthView != nil && hasStencil
	pipeline, err := b.fullscreenPipeline(sh, format, depthFormat, depthView != nil, attachStencil, state)
	if err != nil {
		return err
	}

	entries := make([]wgpu.BindGroupEntry, 0, 2+len(textureNames))
	if len(data) > 0 {
		buf, bufErr := b.uniformBuffer(sh.Key(), uint64(len(data)))
		if bufErr != nil {
			return bufErr
		}
		b.queue.WriteBuffer(buf, 0, data)
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: 0,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}
	if len(textureNames) > 0 {
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: 1,
			Sampler: b.shaderSampler(sh),
		})
		for i, name := range textureNames {
			entries = append(entries, wgpu.BindGroupEntry{
				Binding:     uint32(2 + i),
				TextureView: uniforms[name].Texture().View().(*wgpu.TextureView),
			})
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   sh.Key() + " Bind Group",
		Layout:  b.layoutCache[sh.Key()],
		Entries: entries,
	})
	if err != nil {
		return err
	}
	defer bindGroup.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	descriptor := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    colorView,
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			},
		},
	}
	if depthView != nil {
		attachment := &wgpu.RenderPassDepthStencilAttachment{
			View:         depthView,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		}
		if hasStencil {
			attachment.StencilLoadOp = wgpu.LoadOpLoad
			attachment.StencilStoreOp = wgpu.StoreOpStore
		}
		descriptor.DepthStencilAttachment = attachment
	}

	pass := encoder.BeginRenderPass(descriptor)
	pass.SetPipeline(pipeline)
	if attachStencil {
		pass.SetStencilReference(state.stencil.reference)
	}
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) RenderScene(scene Scene, cam camera.Camera, state renderState) error {
	return b.encodeScene(state, func(ctx RenderContext) error {
		return scene.RenderInto(ctx, cam)
	})
}

func (b *wgpuRendererBackendImpl) RenderSceneOverride(scene OverridableScene, cam camera.Camera, override MaterialOverride, state renderState) error {
	return b.encodeScene(state, func(ctx RenderContext) error {
		return scene.RenderIntoOverride(ctx, cam, override)
	})
}

func (b *wgpuRendererBackendImpl) encodeScene(state renderState, encode func(ctx RenderContext) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	colorView, format, depthView, depthFormat, hasStencil, err := b.attachments(state)
	if err != nil {
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	descriptor := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    colorView,
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			},
		},
	}
	if depthView != nil {
		attachment := &wgpu.RenderPassDepthStencilAttachment{
			View:         depthView,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		}
		if hasStencil {
			attachment.StencilLoadOp = wgpu.LoadOpLoad
			attachment.StencilStoreOp = wgpu.StoreOpStore
		}
		descriptor.DepthStencilAttachment = attachment
	}

	pass := encoder.BeginRenderPass(descriptor)
	if depthView != nil && hasStencil {
		pass.SetStencilReference(state.stencil.reference)
	}
	ctx := RenderContext{
		Pass:           pass,
		Device:         b.device,
		ColorFormat:    format,
		DepthFormat:    depthFormat,
		HasStencil:     hasStencil,
		ColorWrite:     state.colorWrite,
		StencilTest:    state.stencil.test,
		StencilCompare: state.stencil.compare,
		StencilFail:    state.stencil.fail,
		StencilZFail:   state.stencil.zfail,
		StencilZPass:   state.stencil.zpass,
	}
	if encodeErr := encode(ctx); encodeErr != nil {
		pass.End()
		encoder.Release()
		return encodeErr
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Defensive: if a previous frame's surface texture is still held, avoid
	// attempting to acquire another one. This prevents wgpu-native validation
	// errors like "Surface image is already acquired" when frames overlap.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.pipelineCache {
		p.Release()
	}
	b.pipelineCache = make(map[string]*wgpu.RenderPipeline)
	for _, l := range b.layoutCache {
		l.Release()
	}
	b.layoutCache = make(map[string]*wgpu.BindGroupLayout)
	for _, m := range b.moduleCache {
		m.Release()
	}
	b.moduleCache = make(map[string]*wgpu.ShaderModule)
	for _, buf := range b.uniformBuffers {
		buf.Release()
	}
	b.uniformBuffers = make(map[string]*wgpu.Buffer)

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
	if b.linearSampler != nil {
		b.linearSampler.Release()
		b.linearSampler = nil
	}
	if b.nearestSampler != nil {
		b.nearestSampler.Release()
		b.nearestSampler = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// shaderSampler picks the sampler a shader's bind group uses. Shaders sampling
// a depth texture get the non-filtering sampler to satisfy depth binding
// rules.
func (b *wgpuRendererBackendImpl) shaderSampler(sh shader.Shader) *wgpu.Sampler {
	for _, name := range sh.TextureNames() {
		if sh.IsDepthTexture(name) {
			return b.nearestSampler
		}
	}
	return b.linearSampler
}

// uniformBuffer retrieves the persistent uniform buffer for a shader,
// reallocating when the packed size grows. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) uniformBuffer(key string, size uint64) (*wgpu.Buffer, error) {
	if buf, ok := b.uniformBuffers[key]; ok {
		if buf.GetSize() >= size {
			return buf, nil
		}
		buf.Release()
		delete(b.uniformBuffers, key)
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: key + " Uniform Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.uniformBuffers[key] = buf
	return buf, nil
}

// shaderModule retrieves the compiled module for a shader, combining the
// shared vertex stage with the effect fragment stage. Caller must hold the
// mutex.
func (b *wgpuRendererBackendImpl) shaderModule(sh shader.Shader) (*wgpu.ShaderModule, error) {
	if m, ok := b.moduleCache[sh.Key()]; ok {
		return m, nil
	}
	m, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: sh.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: sh.VertexSource() + "\n" + sh.FragmentSource(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shader module %q: %w", sh.Key(), err)
	}
	b.moduleCache[sh.Key()] = m
	return m, nil
}

// bindGroupLayout retrieves the bind group layout for a shader, derived from
// its uniform declarations per the shared binding convention. Caller must
// hold the mutex.
func (b *wgpuRendererBackendImpl) bindGroupLayout(sh shader.Shader) (*wgpu.BindGroupLayout, error) {
	if l, ok := b.layoutCache[sh.Key()]; ok {
		return l, nil
	}

	hasBuffer := false
	for _, d := range sh.Declarations() {
		if d.Kind != shader.KindTexture {
			hasBuffer = true
			break
		}
	}
	textureNames := sh.TextureNames()
	hasDepth := false
	for _, name := range textureNames {
		if sh.IsDepthTexture(name) {
			hasDepth = true
		}
	}

	var entries []wgpu.BindGroupLayoutEntry
	if hasBuffer {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeUniform,
			},
		})
	}
	if len(textureNames) > 0 {
		samplerType := wgpu.SamplerBindingTypeFiltering
		if hasDepth {
			samplerType = wgpu.SamplerBindingTypeNonFiltering
		}
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    1,
			Visibility: wgpu.ShaderStageFragment,
			Sampler: wgpu.SamplerBindingLayout{
				Type: samplerType,
			},
		})
		for i, name := range textureNames {
			sampleType := wgpu.TextureSampleTypeFloat
			if hasDepth {
				sampleType = wgpu.TextureSampleTypeUnfilterableFloat
			}
			if sh.IsDepthTexture(name) {
				sampleType = wgpu.TextureSampleTypeDepth
			}
			entries = append(entries, wgpu.BindGroupLayoutEntry{
				Binding:    uint32(2 + i),
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    sampleType,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			})
		}
	}

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   sh.Key() + " Bind Group Layout",
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group layout %q: %w", sh.Key(), err)
	}
	b.layoutCache[sh.Key()] = layout
	return layout, nil
}

// fullscreenPipeline retrieves or creates the render pipeline for a shader
// under the given attachment formats, blend mode, color write mask, and
// stencil configuration. Caller must hold the mutex.
func (b *wgpuRendererBackendImpl) fullscreenPipeline(sh shader.Shader, format, depthFormat wgpu.TextureFormat, hasDepth, hasStencil bool, state renderState) (*wgpu.RenderPipeline, error) {
	key := fmt.Sprintf("%s|f%d|b%d|w%t|d%d", sh.Key(), format, sh.Blend(), state.colorWrite, depthFormat)
	if hasStencil {
		st := state.stencil
		key += fmt.Sprintf("|s%t.%d.%d.%d.%d.%d", st.test, st.compare, st.mask, st.fail, st.zfail, st.zpass)
	}
	if p, ok := b.pipelineCache[key]; ok {
		return p, nil
	}

	module, err := b.shaderModule(sh)
	if err != nil {
		return nil, err
	}
	layout, err := b.bindGroupLayout(sh)
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            sh.Key(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return nil, err
	}
	defer pipelineLayout.Release()

	writeMask := wgpu.ColorWriteMaskAll
	if !state.colorWrite {
		writeMask = wgpu.ColorWriteMaskNone
	}

	descriptor := &wgpu.RenderPipelineDescriptor{
		Label:  sh.Key() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					Blend:     blendState(sh.Blend()),
					WriteMask: writeMask,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}

	if hasDepth {
		face := wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		}
		readMask := uint32(0xFF)
		writeMaskStencil := uint32(0xFF)
		if hasStencil && state.stencil.test {
			face = wgpu.StencilFaceState{
				Compare:     state.stencil.compare,
				FailOp:      state.stencil.fail,
				DepthFailOp: state.stencil.zfail,
				PassOp:      state.stencil.zpass,
			}
			readMask = state.stencil.mask
			writeMaskStencil = state.stencil.mask
		}
		descriptor.DepthStencil = &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: false,
			DepthCompare:      wgpu.CompareFunctionAlways,
			StencilFront:      face,
			StencilBack:       face,
			StencilReadMask:   readMask,
			StencilWriteMask:  writeMaskStencil,
		}
	}

	created, err := b.device.CreateRenderPipeline(descriptor)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline for shader %q: %w", sh.Key(), err)
	}
	b.pipelineCache[key] = created
	return created, nil
}

// blendState maps a shader blend mode to a wgpu blend state. BlendNone
// returns nil, which disables blending entirely.
func blendState(mode shader.BlendMode) *wgpu.BlendState {
	switch mode {
	case shader.BlendNormal:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
		}
	case shader.BlendAdditive:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
			},
		}
	case shader.BlendMultiply:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorDst,
				DstFactor: wgpu.BlendFactorZero,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorDst,
				DstFactor: wgpu.BlendFactorZero,
			},
		}
	default:
		return nil
	}
}

// wgpuTexture is the WGPU-backed implementation of target.Texture.
type wgpuTexture struct {
	desc     target.TextureDescriptor
	texture  *wgpu.Texture
	view     *wgpu.TextureView
	released bool
}

var _ target.Texture = &wgpuTexture{}

func (t *wgpuTexture) Label() string {
	return t.desc.Label
}

func (t *wgpuTexture) Width() int {
	return t.desc.Width
}

func (t *wgpuTexture) Height() int {
	return t.desc.Height
}

func (t *wgpuTexture) Format() wgpu.TextureFormat {
	return t.desc.Format
}

func (t *wgpuTexture) View() any {
	return t.view
}

func (t *wgpuTexture) Native() any {
	return t.texture
}

func (t *wgpuTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	t.view.Release()
	t.texture.Release()
}
