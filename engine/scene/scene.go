package scene

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const vertexSource = `struct MeshParams {
    mvp: mat4x4f,
    modelView: mat4x4f,
    color: vec4f,
    lightDirection: vec4f,
}

@group(0) @binding(0) var<uniform> params: MeshParams;

struct VertexOutput {
    @builtin(position) position: vec4f,
    @location(0) normal: vec3f,
}

@vertex
fn vs_main(@location(0) position: vec3f, @location(1) normal: vec3f) -> VertexOutput {
    var out: VertexOutput;
    out.position = params.mvp * vec4f(position, 1.0);
    out.normal = (params.modelView * vec4f(normal, 0.0)).xyz;
    return out;
}
`

const lambertFragmentSource = `@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4f {
    let ndl = max(dot(normalize(in.normal), normalize(params.lightDirection.xyz)), 0.0);
    let ambient = 0.18;
    return vec4f(params.color.rgb * (ambient + (1.0 - ambient) * ndl), params.color.a);
}
`

// Normals are packed into [0, 1] for storage in a unorm attachment; consumers
// unpack with n * 2 - 1.
const normalFragmentSource = `@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4f {
    return vec4f(normalize(in.normal) * 0.5 + vec3f(0.5), 1.0);
}
`

// meshParams mirrors the WGSL MeshParams uniform block layout.
type meshParams struct {
	MVP            mgl32.Mat4
	ModelView      mgl32.Mat4
	Color          [4]float32
	LightDirection [4]float32
}

var meshParamsSize = uint64(unsafe.Sizeof(meshParams{}))

// meshGPU holds the per-mesh device resources, created lazily on first
// encode.
type meshGPU struct {
	vertexBuffer  *wgpu.Buffer
	indexBuffer   *wgpu.Buffer
	uniformBuffer *wgpu.Buffer
	bindGroup     *wgpu.BindGroup
	indexCount    uint32
}

// sceneImpl is the implementation of the Scene interface.
type sceneImpl struct {
	mu *sync.Mutex

	name           string
	meshes         []Mesh
	lightDirection mgl32.Vec3

	device    *wgpu.Device
	layout    *wgpu.BindGroupLayout
	modules   map[renderer.MaterialOverride]*wgpu.ShaderModule
	pipelines map[string]*wgpu.RenderPipeline
	gpu       map[Mesh]*meshGPU
	disposed  bool
}

// Scene is a collection of meshes that encodes itself into render passes
// owned by the renderer. It implements the renderer's scene contract,
// including the normal-override path used by screen-space occlusion, and
// honors the renderer's stencil and color-write state so it can serve as
// mask geometry.
type Scene interface {
	renderer.OverridableScene

	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Add adds a mesh to the scene.
	//
	// Parameters:
	//   - m: the mesh to add
	Add(m Mesh)

	// Remove removes the first occurrence of the mesh, releasing its device
	// resources.
	//
	// Parameters:
	//   - m: the mesh to remove
	//
	// Returns:
	//   - bool: true if the mesh was found and removed
	Remove(m Mesh) bool

	// Meshes retrieves the scene's meshes.
	//
	// Returns:
	//   - []Mesh: the meshes
	Meshes() []Mesh

	// LightDirection retrieves the view-space light direction.
	//
	// Returns:
	//   - mgl32.Vec3: the light direction
	LightDirection() mgl32.Vec3

	// SetLightDirection sets the view-space light direction.
	//
	// Parameters:
	//   - dir: the light direction
	SetLightDirection(dir mgl32.Vec3)

	// Dispose releases all device resources held by the scene. Disposing an
	// already-disposed scene is a no-op.
	Dispose()
}

var _ Scene = &sceneImpl{}

// NewScene creates an empty scene.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &sceneImpl{
		mu:             &sync.Mutex{},
		name:           "scene",
		lightDirection: mgl32.Vec3{0.4, 0.6, 0.8},
		modules:        make(map[renderer.MaterialOverride]*wgpu.ShaderModule),
		pipelines:      make(map[string]*wgpu.RenderPipeline),
		gpu:            make(map[Mesh]*meshGPU),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *sceneImpl) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *sceneImpl) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *sceneImpl) Add(m Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meshes = append(s.meshes, m)
}

func (s *sceneImpl) Remove(m Mesh) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.meshes {
		if existing == m {
			s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
			if res, ok := s.gpu[m]; ok {
				res.release()
				delete(s.gpu, m)
			}
			return true
		}
	}
	return false
}

func (s *sceneImpl) Meshes() []Mesh {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Mesh, len(s.meshes))
	copy(out, s.meshes)
	return out
}

func (s *sceneImpl) LightDirection() mgl32.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lightDirection
}

func (s *sceneImpl) SetLightDirection(dir mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lightDirection = dir
}

func (s *sceneImpl) RenderInto(ctx renderer.RenderContext, cam camera.Camera) error {
	return s.encode(ctx, cam, renderer.OverrideNone)
}

func (s *sceneImpl) RenderIntoOverride(ctx renderer.RenderContext, cam camera.Camera, override renderer.MaterialOverride) error {
	return s.encode(ctx, cam, override)
}

func (s *sceneImpl) encode(ctx renderer.RenderContext, cam camera.Camera, override renderer.MaterialOverride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return fmt.Errorf("scene %q: already disposed", s.name)
	}

	pass, ok := ctx.Pass.(*wgpu.RenderPassEncoder)
	if !ok {
		return fmt.Errorf("scene %q: unsupported render pass type %T", s.name, ctx.Pass)
	}
	device, ok := ctx.Device.(*wgpu.Device)
	if !ok {
		return fmt.Errorf("scene %q: unsupported device type %T", s.name, ctx.Device)
	}
	if s.device == nil {
		s.device = device
	}

	pipeline, err := s.pipeline(ctx, override)
	if err != nil {
		return err
	}
	pass.SetPipeline(pipeline)

	view := cam.ViewMatrix()
	viewProjection := cam.ViewProjectionMatrix()
	queue := device.GetQueue()

	for _, m := range s.meshes {
		res, resErr := s.meshResources(m)
		if resErr != nil {
			return resErr
		}

		model := m.Transform()
		color := m.Color()
		params := meshParams{
			MVP:            viewProjection.Mul4(model),
			ModelView:      view.Mul4(model),
			Color:          [4]float32{color.R, color.G, color.B, color.A},
			LightDirection: [4]float32{s.lightDirection.X(), s.lightDirection.Y(), s.lightDirection.Z(), 0},
		}
		queue.WriteBuffer(res.uniformBuffer, 0, common.StructToBytes(&params))

		pass.SetBindGroup(0, res.bindGroup, nil)
		pass.SetVertexBuffer(0, res.vertexBuffer, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(res.indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(res.indexCount, 1, 0, 0, 0)
	}
	return nil
}

// meshResources retrieves or creates the device buffers and bind group for a
// mesh. Caller must hold the mutex.
func (s *sceneImpl) meshResources(m Mesh) (*meshGPU, error) {
	if res, ok := s.gpu[m]; ok {
		return res, nil
	}

	vertices := m.Vertices()
	indices := m.Indices()
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("scene %q: mesh has no geometry", s.name)
	}

	vertexBuffer, err := s.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    s.name + " Vertex Buffer",
		Contents: common.SliceToBytes(vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, err
	}
	indexBuffer, err := s.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    s.name + " Index Buffer",
		Contents: common.SliceToBytes(indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vertexBuffer.Release()
		return nil, err
	}
	uniformBuffer, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: s.name + " Mesh Uniform Buffer",
		Size:  meshParamsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vertexBuffer.Release()
		indexBuffer.Release()
		return nil, err
	}

	layout, err := s.bindGroupLayout()
	if err != nil {
		vertexBuffer.Release()
		indexBuffer.Release()
		uniformBuffer.Release()
		return nil, err
	}
	bindGroup, err := s.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  s.name + " Mesh Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  uniformBuffer,
				Size:    meshParamsSize,
			},
		},
	})
	if err != nil {
		vertexBuffer.Release()
		indexBuffer.Release()
		uniformBuffer.Release()
		return nil, err
	}

	res := &meshGPU{
		vertexBuffer:  vertexBuffer,
		indexBuffer:   indexBuffer,
		uniformBuffer: uniformBuffer,
		bindGroup:     bindGroup,
		indexCount:    uint32(len(indices)),
	}
	s.gpu[m] = res
	return res, nil
}

// bindGroupLayout retrieves or creates the shared mesh bind group layout.
// Caller must hold the mutex.
func (s *sceneImpl) bindGroupLayout() (*wgpu.BindGroupLayout, error) {
	if s.layout != nil {
		return s.layout, nil
	}
	layout, err := s.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: s.name + " Mesh Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	s.layout = layout
	return layout, nil
}

// shaderModule retrieves or creates the module for a material override.
// Caller must hold the mutex.
func (s *sceneImpl) shaderModule(override renderer.MaterialOverride) (*wgpu.ShaderModule, error) {
	if m, ok := s.modules[override]; ok {
		return m, nil
	}
	fragment := lambertFragmentSource
	label := s.name + " lambert"
	if override == renderer.OverrideNormal {
		fragment = normalFragmentSource
		label = s.name + " normal"
	}
	module, err := s.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vertexSource + "\n" + fragment,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scene shader module %q: %w", label, err)
	}
	s.modules[override] = module
	return module, nil
}

// pipeline retrieves or creates the render pipeline compatible with the
// context's attachments, stencil state, and material override. Caller must
// hold the mutex.
func (s *sceneImpl) pipeline(ctx renderer.RenderContext, override renderer.MaterialOverride) (*wgpu.RenderPipeline, error) {
	key := fmt.Sprintf("o%d|f%d|d%d|w%t", override, ctx.ColorFormat, ctx.DepthFormat, ctx.ColorWrite)
	if ctx.HasStencil {
		key += fmt.Sprintf("|s%t.%d.%d.%d.%d", ctx.StencilTest, ctx.StencilCompare, ctx.StencilFail, ctx.StencilZFail, ctx.StencilZPass)
	}
	if p, ok := s.pipelines[key]; ok {
		return p, nil
	}

	module, err := s.shaderModule(override)
	if err != nil {
		return nil, err
	}
	layout, err := s.bindGroupLayout()
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := s.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.name + " Mesh Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return nil, err
	}
	defer pipelineLayout.Release()

	writeMask := wgpu.ColorWriteMaskAll
	if !ctx.ColorWrite {
		writeMask = wgpu.ColorWriteMaskNone
	}

	descriptor := &wgpu.RenderPipelineDescriptor{
		Label:  s.name + " Mesh Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 24,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    ctx.ColorFormat,
					WriteMask: writeMask,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}

	if ctx.DepthFormat != wgpu.TextureFormatUndefined {
		face := wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		}
		if ctx.HasStencil && ctx.StencilTest {
			face = wgpu.StencilFaceState{
				Compare:     ctx.StencilCompare,
				FailOp:      ctx.StencilFail,
				DepthFailOp: ctx.StencilZFail,
				PassOp:      ctx.StencilZPass,
			}
		}
		descriptor.DepthStencil = &wgpu.DepthStencilState{
			Format:            ctx.DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      face,
			StencilBack:       face,
			StencilReadMask:   0xFF,
			StencilWriteMask:  0xFF,
		}
	}

	created, err := s.device.CreateRenderPipeline(descriptor)
	if err != nil {
		return nil, fmt.Errorf("failed to create scene pipeline %q: %w", key, err)
	}
	s.pipelines[key] = created
	return created, nil
}

func (s *sceneImpl) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.disposed = true

	for _, res := range s.gpu {
		res.release()
	}
	s.gpu = make(map[Mesh]*meshGPU)
	for _, p := range s.pipelines {
		p.Release()
	}
	s.pipelines = make(map[string]*wgpu.RenderPipeline)
	for _, m := range s.modules {
		m.Release()
	}
	s.modules = make(map[renderer.MaterialOverride]*wgpu.ShaderModule)
	if s.layout != nil {
		s.layout.Release()
		s.layout = nil
	}
}

func (r *meshGPU) release() {
	if r.bindGroup != nil {
		r.bindGroup.Release()
	}
	if r.uniformBuffer != nil {
		r.uniformBuffer.Release()
	}
	if r.indexBuffer != nil {
		r.indexBuffer.Release()
	}
	if r.vertexBuffer != nil {
		r.vertexBuffer.Release()
	}
}
