package pass

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTexture and fakeAllocator let render targets exist without a GPU.
type fakeTexture struct {
	desc target.TextureDescriptor
}

func (f *fakeTexture) Label() string              { return f.desc.Label }
func (f *fakeTexture) Width() int                 { return f.desc.Width }
func (f *fakeTexture) Height() int                { return f.desc.Height }
func (f *fakeTexture) Format() wgpu.TextureFormat { return f.desc.Format }
func (f *fakeTexture) View() any                  { return nil }
func (f *fakeTexture) Native() any                { return nil }
func (f *fakeTexture) Release()                   {}

type fakeAllocator struct {
	allocations int
}

func (f *fakeAllocator) AllocateTexture(desc target.TextureDescriptor) (target.Texture, error) {
	f.allocations++
	return &fakeTexture{desc: desc}, nil
}

// recordingStencil implements renderer.Stencil and appends every honored
// mutation to the shared event log.
type recordingStencil struct {
	log *[]string

	test       bool
	compare    wgpu.CompareFunction
	reference  uint32
	mask       uint32
	fail       wgpu.StencilOperation
	zfail      wgpu.StencilOperation
	zpass      wgpu.StencilOperation
	clearValue uint32
	locked     bool
}

func (s *recordingStencil) SetTest(enabled bool) {
	if s.locked {
		return
	}
	s.test = enabled
	*s.log = append(*s.log, fmt.Sprintf("stencil.test(%t)", enabled))
}

func (s *recordingStencil) Test() bool { return s.test }

func (s *recordingStencil) SetFunc(compare wgpu.CompareFunction, reference, mask uint32) {
	if s.locked {
		return
	}
	s.compare, s.reference, s.mask = compare, reference, mask
	*s.log = append(*s.log, fmt.Sprintf("stencil.func(%d,%d)", compare, reference))
}

func (s *recordingStencil) Func() (wgpu.CompareFunction, uint32, uint32) {
	return s.compare, s.reference, s.mask
}

func (s *recordingStencil) SetOp(fail, zfail, zpass wgpu.StencilOperation) {
	if s.locked {
		return
	}
	s.fail, s.zfail, s.zpass = fail, zfail, zpass
	*s.log = append(*s.log, fmt.Sprintf("stencil.op(%d,%d,%d)", fail, zfail, zpass))
}

func (s *recordingStencil) Op() (fail, zfail, zpass wgpu.StencilOperation) {
	return s.fail, s.zfail, s.zpass
}

func (s *recordingStencil) SetClear(value uint32) {
	if s.locked {
		return
	}
	s.clearValue = value
}

func (s *recordingStencil) ClearValue() uint32 { return s.clearValue }

func (s *recordingStencil) SetLocked(locked bool) {
	s.locked = locked
	*s.log = append(*s.log, fmt.Sprintf("stencil.locked(%t)", locked))
}

func (s *recordingStencil) Locked() bool { return s.locked }

// drawCall records one DrawQuad: which shader, with what values, into which
// target.
type drawCall struct {
	shaderKey string
	uniforms  shader.Uniforms
	target    target.RenderTarget
}

// mockRenderer implements renderer.Renderer over the fake allocator,
// recording draws, clears, and scene renders instead of touching a GPU.
type mockRenderer struct {
	alloc fakeAllocator

	boundTarget target.RenderTarget
	clearColor  common.Color
	colorWrite  bool
	stencil     *recordingStencil

	width, height int

	log    []string
	draws  []drawCall
	clears [][3]bool

	sceneTargets []target.RenderTarget

	drawErr  error
	clearErr error
	sceneErr error
}

var _ renderer.Renderer = &mockRenderer{}

func newMockRenderer() *mockRenderer {
	m := &mockRenderer{
		clearColor: common.Black,
		colorWrite: true,
		width:      1920,
		height:     1080,
	}
	m.stencil = &recordingStencil{
		log:     &m.log,
		compare: wgpu.CompareFunctionAlways,
		mask:    0xFF,
	}
	return m
}

func (m *mockRenderer) AllocateTexture(desc target.TextureDescriptor) (target.Texture, error) {
	return m.alloc.AllocateTexture(desc)
}

func (m *mockRenderer) SetRenderTarget(t target.RenderTarget) {
	m.boundTarget = t
	if t == nil {
		m.log = append(m.log, "target(screen)")
	} else {
		m.log = append(m.log, "target("+t.Label()+")")
	}
}

func (m *mockRenderer) RenderTarget() target.RenderTarget { return m.boundTarget }

func (m *mockRenderer) SetClearColor(color common.Color) { m.clearColor = color }
func (m *mockRenderer) ClearColor() common.Color         { return m.clearColor }

func (m *mockRenderer) SetColorWrite(enabled bool) {
	m.colorWrite = enabled
	m.log = append(m.log, fmt.Sprintf("colorWrite(%t)", enabled))
}

func (m *mockRenderer) ColorWrite() bool { return m.colorWrite }

func (m *mockRenderer) Clear(color, depth, stencil bool) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.clears = append(m.clears, [3]bool{color, depth, stencil})
	m.log = append(m.log, fmt.Sprintf("clear(%t,%t,%t)", color, depth, stencil))
	return nil
}

func (m *mockRenderer) DrawQuad(sh shader.Shader, uniforms shader.Uniforms) error {
	if m.drawErr != nil {
		return m.drawErr
	}
	// Enforce the real renderer's contract: every declared uniform must be
	// present with the right kind, textures included.
	if _, err := shader.Pack(sh.Declarations(), uniforms); err != nil {
		return err
	}
	for _, name := range sh.TextureNames() {
		u, ok := uniforms[name]
		if !ok || u.Kind() != shader.KindTexture {
			return fmt.Errorf("%w: texture %q", shader.ErrMissingUniform, name)
		}
	}
	m.draws = append(m.draws, drawCall{
		shaderKey: sh.Key(),
		uniforms:  uniforms.Clone(),
		target:    m.boundTarget,
	})
	m.log = append(m.log, "draw("+sh.Key()+")")
	return nil
}

func (m *mockRenderer) RenderScene(scene renderer.Scene, cam camera.Camera) error {
	if m.sceneErr != nil {
		return m.sceneErr
	}
	m.sceneTargets = append(m.sceneTargets, m.boundTarget)
	m.log = append(m.log, "renderScene")
	return nil
}

func (m *mockRenderer) RenderSceneOverride(scene renderer.OverridableScene, cam camera.Camera, override renderer.MaterialOverride) error {
	m.sceneTargets = append(m.sceneTargets, m.boundTarget)
	m.log = append(m.log, fmt.Sprintf("renderSceneOverride(%d)", override))
	return nil
}

func (m *mockRenderer) Stencil() renderer.Stencil { return m.stencil }

func (m *mockRenderer) Size() (int, int) { return m.width, m.height }

func (m *mockRenderer) Resize(width, height int) { m.width, m.height = width, height }

func (m *mockRenderer) SetPresentMode(mode renderer.PresentMode) {}

func (m *mockRenderer) BeginFrame() error { return nil }
func (m *mockRenderer) Present()          {}
func (m *mockRenderer) Dispose()          {}

// stubScene satisfies renderer.Scene for mask and render pass tests.
type stubScene struct{}

func (stubScene) RenderInto(ctx renderer.RenderContext, cam camera.Camera) error { return nil }

func newTestBuffers(t *testing.T, m *mockRenderer) (write, read target.RenderTarget) {
	t.Helper()
	var err error
	write, err = target.New(m, 256, 256, target.WithLabel("write"), target.WithStencilBuffer(true))
	require.NoError(t, err)
	read, err = target.New(m, 256, 256, target.WithLabel("read"), target.WithStencilBuffer(true))
	require.NoError(t, err)
	return write, read
}

func newTestCamera(t *testing.T) camera.Camera {
	t.Helper()
	cam, err := camera.NewCamera()
	require.NoError(t, err)
	return cam
}

func TestPassDefaults(t *testing.T) {
	cam := newTestCamera(t)

	tests := []struct {
		name      string
		p         Pass
		kind      Kind
		needsSwap bool
		clear     bool
	}{
		{name: "shader pass", p: NewShaderPass(shader.Copy()), kind: KindGeneric, needsSwap: true},
		{name: "render pass", p: NewRenderPass(stubScene{}, cam), kind: KindScene, clear: true},
		{name: "mask pass", p: NewMaskPass(stubScene{}, cam), kind: KindMaskBegin, clear: true},
		{name: "clear mask pass", p: NewClearMaskPass(), kind: KindMaskEnd},
		{name: "texture pass", p: NewTexturePass(&fakeTexture{}), kind: KindGeneric},
		{name: "clear pass", p: NewClearPass(), kind: KindGeneric},
		{name: "output pass", p: NewOutputPass(), kind: KindGeneric, needsSwap: true},
		{name: "film pass", p: NewFilmPass(), kind: KindGeneric, needsSwap: true},
		{name: "fxaa pass", p: NewFXAAPass(), kind: KindGeneric, needsSwap: true},
		{name: "dot screen pass", p: NewDotScreenPass(), kind: KindGeneric, needsSwap: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.p.Enabled())
			assert.False(t, tt.p.RenderToScreen())
			assert.Equal(t, tt.kind, tt.p.Kind())
			assert.Equal(t, tt.needsSwap, tt.p.NeedsSwap())
			assert.Equal(t, tt.clear, tt.p.Clear())
		})
	}
}

func TestPassFlagSetters(t *testing.T) {
	p := NewShaderPass(shader.Copy())

	p.SetEnabled(false)
	assert.False(t, p.Enabled())

	p.SetNeedsSwap(false)
	assert.False(t, p.NeedsSwap())

	p.SetClear(true)
	assert.True(t, p.Clear())

	p.SetRenderToScreen(true)
	assert.True(t, p.RenderToScreen())
}

func TestPassTracksSize(t *testing.T) {
	p := NewShaderPass(shader.Copy())
	require.NoError(t, p.SetSize(640, 360))

	width, height := p.(*shaderPassImpl).Size()
	assert.Equal(t, 640, width)
	assert.Equal(t, 360, height)
}

func TestShaderPassRender(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	p := NewShaderPass(shader.Copy())
	require.NoError(t, p.SetSize(256, 256))
	require.NoError(t, p.Render(m, write, read, 0.016, false))

	require.Len(t, m.draws, 1)
	assert.Equal(t, "copy", m.draws[0].shaderKey)
	assert.Same(t, write, m.draws[0].target)

	// The read buffer's color texture is fed in under tDiffuse.
	tex := m.draws[0].uniforms["tDiffuse"].Texture()
	assert.Same(t, read.ColorTexture(), tex)
}

func TestShaderPassRenderToScreen(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	p := NewShaderPass(shader.Copy())
	p.SetRenderToScreen(true)
	require.NoError(t, p.Render(m, write, read, 0.016, false))

	require.Len(t, m.draws, 1)
	assert.Nil(t, m.draws[0].target)
}

func TestShaderPassClearsWhenConfigured(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	p := NewShaderPass(shader.Copy())
	p.SetClear(true)
	require.NoError(t, p.Render(m, write, read, 0.016, false))

	require.Len(t, m.clears, 1)
	assert.Equal(t, [3]bool{true, true, false}, m.clears[0])
}

func TestShaderPassUniforms(t *testing.T) {
	p := NewShaderPass(shader.Copy(), WithUniformValue("opacity", shader.Float(0.5)))
	assert.Equal(t, float32(0.5), p.Uniforms()["opacity"].Float32())

	p.SetUniform("opacity", shader.Float(0.25))
	assert.Equal(t, float32(0.25), p.Uniforms()["opacity"].Float32())
	assert.Equal(t, "tDiffuse", p.TextureID())
}

func TestShaderPassDisposed(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	p := NewShaderPass(shader.Copy())
	p.Dispose()
	p.Dispose()
	assert.ErrorIs(t, p.Render(m, write, read, 0.016, false), ErrDisposed)
}

func TestRenderPassTargetsReadBuffer(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	p := NewRenderPass(stubScene{}, newTestCamera(t))
	require.NoError(t, p.Render(m, write, read, 0.016, false))

	require.Len(t, m.sceneTargets, 1)
	assert.Same(t, read, m.sceneTargets[0])
	require.Len(t, m.clears, 1)
	assert.Equal(t, [3]bool{true, true, false}, m.clears[0])
}

func TestRenderPassOverrideClearColorRestored(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)
	m.SetClearColor(common.Color{R: 1, G: 0, B: 0, A: 1})

	p := NewRenderPass(stubScene{}, newTestCamera(t),
		WithOverrideClearColor(common.Color{R: 0, G: 0, B: 1, A: 1}))
	require.NoError(t, p.Render(m, write, read, 0.016, false))

	assert.Equal(t, common.Color{R: 1, G: 0, B: 0, A: 1}, m.ClearColor())
}

func TestRenderPassClearErrorRestoresClearColor(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)
	m.SetClearColor(common.Color{R: 1, G: 0, B: 0, A: 1})
	m.clearErr = errors.New("clear failed")

	p := NewRenderPass(stubScene{}, newTestCamera(t),
		WithOverrideClearColor(common.Color{R: 0, G: 0, B: 1, A: 1}))
	require.Error(t, p.Render(m, write, read, 0.016, false))

	// The override clear color must not leak through the error path.
	assert.Equal(t, common.Color{R: 1, G: 0, B: 0, A: 1}, m.ClearColor())
}

func TestTexturePassDrawsIntoReadBuffer(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	tex := &fakeTexture{}
	p := NewTexturePass(tex)
	p.SetOpacity(0.75)
	require.NoError(t, p.Render(m, write, read, 0.016, false))

	require.Len(t, m.draws, 1)
	assert.Same(t, read, m.draws[0].target)
	assert.Equal(t, float32(0.75), m.draws[0].uniforms["opacity"].Float32())
	assert.Same(t, tex, m.draws[0].uniforms["tDiffuse"].Texture())
	assert.False(t, p.NeedsSwap(), "texture pass composites in place")
}

func TestClearPass(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)
	m.SetClearColor(common.Black)

	p := NewClearPass(WithClearColor(common.Color{R: 0.2, G: 0.2, B: 0.2, A: 1}))
	require.NoError(t, p.Render(m, write, read, 0.016, false))

	require.Len(t, m.clears, 1)
	assert.Equal(t, [3]bool{true, true, false}, m.clears[0])
	assert.Same(t, read, m.boundTarget)
	assert.Equal(t, common.Black, m.ClearColor())

	noDepth := NewClearPass(WithoutDepthClear())
	require.NoError(t, noDepth.Render(m, write, read, 0.016, false))
	assert.Equal(t, [3]bool{true, false, false}, m.clears[1])
}

func TestOutputPassUniforms(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	p := NewOutputPass()
	p.SetToneMapping(ToneMappingACES)
	p.SetExposure(1.4)
	require.NoError(t, p.Render(m, write, read, 0.016, false))

	require.Len(t, m.draws, 1)
	assert.Equal(t, "output", m.draws[0].shaderKey)
	assert.Equal(t, int32(ToneMappingACES), m.draws[0].uniforms["toneMapping"].Int32())
	assert.Equal(t, float32(1.4), m.draws[0].uniforms["exposure"].Float32())
}

func TestFilmPassAccumulatesTime(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	p := NewFilmPass()
	require.NoError(t, p.Render(m, write, read, 0.5, false))
	require.NoError(t, p.Render(m, write, read, 0.25, false))

	require.Len(t, m.draws, 2)
	assert.InDelta(t, 0.5, m.draws[0].uniforms["time"].Float32(), 1e-6)
	assert.InDelta(t, 0.75, m.draws[1].uniforms["time"].Float32(), 1e-6)
}

func TestFXAAPassTracksResolution(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	p := NewFXAAPass()
	require.NoError(t, p.SetSize(800, 600))
	require.NoError(t, p.Render(m, write, read, 0.016, false))

	require.Len(t, m.draws, 1)
	res := m.draws[0].uniforms["resolution"].Vec()
	assert.Equal(t, float32(800), res.X())
	assert.Equal(t, float32(600), res.Y())
}

func TestAfterimagePass(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	p := NewAfterimagePass(m, WithDamp(0.9))
	assert.ErrorIs(t, p.Render(m, write, read, 0.016, false), ErrNotInitialized)

	require.NoError(t, p.SetSize(256, 256))
	allocsAfterInit := m.alloc.allocations

	// Same dimensions: the history buffers survive.
	require.NoError(t, p.SetSize(256, 256))
	assert.Equal(t, allocsAfterInit, m.alloc.allocations)

	require.NoError(t, p.Render(m, write, read, 0.016, false))

	// History reset clears, then one blend draw plus one output copy.
	require.Len(t, m.draws, 2)
	assert.Equal(t, "afterimage", m.draws[0].shaderKey)
	assert.Equal(t, float32(0.9), m.draws[0].uniforms["damp"].Float32())
	assert.Equal(t, "copy", m.draws[1].shaderKey)
	assert.Same(t, write, m.draws[1].target)

	// Second frame: blend input (tOld) is the previous frame's accumulation.
	firstAccum := m.draws[0].target
	require.NoError(t, p.Render(m, write, read, 0.016, false))
	require.Len(t, m.draws, 4)
	assert.Same(t, firstAccum.ColorTexture(), m.draws[2].uniforms["tOld"].Texture())

	p.Dispose()
	p.Dispose()
	assert.ErrorIs(t, p.Render(m, write, read, 0.016, false), ErrDisposed)
	assert.ErrorIs(t, p.SetSize(128, 128), ErrDisposed)
}

func TestMaskPassBracketsStencilState(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	p := NewMaskPass(stubScene{}, newTestCamera(t))
	require.NoError(t, p.Render(m, write, read, 0.016, false))

	// The silhouette is rendered into both composition buffers with color
	// writes off and the stencil buffers cleared first.
	require.Len(t, m.sceneTargets, 2)
	assert.Same(t, write, m.sceneTargets[0])
	assert.Same(t, read, m.sceneTargets[1])
	require.Len(t, m.clears, 2)
	assert.Equal(t, [3]bool{false, false, true}, m.clears[0])
	assert.Equal(t, [3]bool{false, false, true}, m.clears[1])

	// Color writes are restored when the pass finishes.
	assert.True(t, m.ColorWrite())

	// Terminal stencil state: equal-to-1 test, no writes, locked.
	st := m.stencil
	assert.True(t, st.Test())
	assert.True(t, st.Locked())
	compare, reference, mask := st.Func()
	assert.Equal(t, wgpu.CompareFunctionEqual, compare)
	assert.Equal(t, uint32(1), reference)
	assert.Equal(t, uint32(0xFF), mask)
	fail, zfail, zpass := st.Op()
	assert.Equal(t, wgpu.StencilOperationKeep, fail)
	assert.Equal(t, wgpu.StencilOperationKeep, zfail)
	assert.Equal(t, wgpu.StencilOperationKeep, zpass)

	// Color writes were off for the whole geometry phase.
	var sawSceneWithColorOff bool
	colorOn := true
	for _, ev := range m.log {
		switch ev {
		case "colorWrite(false)":
			colorOn = false
		case "colorWrite(true)":
			colorOn = true
		case "renderScene":
			if !colorOn {
				sawSceneWithColorOff = true
			} else {
				t.Fatal("mask geometry rendered with color writes enabled")
			}
		}
	}
	assert.True(t, sawSceneWithColorOff)
}

func TestMaskPassInverse(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	p := NewMaskPass(stubScene{}, newTestCamera(t))
	p.SetInverse(true)
	assert.True(t, p.Inverse())
	require.NoError(t, p.Render(m, write, read, 0.016, false))

	// Inverted masks clear the stencil to 1 and stamp 0 over the silhouette,
	// so the equal-to-1 test passes outside it.
	assert.Equal(t, uint32(1), m.stencil.ClearValue())
	_, reference, _ := m.stencil.Func()
	assert.Equal(t, uint32(1), reference)
}

func TestMaskPassSceneErrorRestoresState(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)
	m.sceneErr = errors.New("scene failed")

	p := NewMaskPass(stubScene{}, newTestCamera(t))
	require.Error(t, p.Render(m, write, read, 0.016, false))

	// Color writes come back on and the stencil is disarmed rather than left
	// configured for replace writes.
	assert.True(t, m.ColorWrite())
	assert.False(t, m.stencil.Locked())
	assert.False(t, m.stencil.Test())
	fail, zfail, zpass := m.stencil.Op()
	assert.Equal(t, wgpu.StencilOperationKeep, fail)
	assert.Equal(t, wgpu.StencilOperationKeep, zfail)
	assert.Equal(t, wgpu.StencilOperationKeep, zpass)
}

func TestClearMaskPassReleasesStencil(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	mask := NewMaskPass(stubScene{}, newTestCamera(t))
	require.NoError(t, mask.Render(m, write, read, 0.016, false))
	require.True(t, m.stencil.Locked())

	clear := NewClearMaskPass()
	require.NoError(t, clear.Render(m, write, read, 0.016, true))

	assert.False(t, m.stencil.Locked())
	assert.False(t, m.stencil.Test())
}

func TestGlitchPass(t *testing.T) {
	m := newMockRenderer()
	write, read := newTestBuffers(t, m)

	p, err := NewGlitchPass(m, WithGoWild())
	require.NoError(t, err)
	assert.True(t, p.GoWild())

	require.NoError(t, p.Render(m, write, read, 0.016, false))
	require.Len(t, m.draws, 1)
	assert.Equal(t, "glitch", m.draws[0].shaderKey)
	assert.Same(t, write, m.draws[0].target)

	// Wild mode glitches every frame.
	assert.Equal(t, int32(0), m.draws[0].uniforms["byp"].Int32())

	disp, ok := m.draws[0].uniforms["tDisp"].Texture().(*fakeTexture)
	require.True(t, ok)
	assert.Equal(t, 64, disp.desc.Width)
	assert.Equal(t, 64, disp.desc.Height)
	assert.Len(t, disp.desc.Pixels, 64*64*4)

	p.Dispose()
	assert.ErrorIs(t, p.Render(m, write, read, 0.016, false), ErrDisposed)
}

func TestDotScreenPassSetSize(t *testing.T) {
	p := NewDotScreenPass()
	require.NoError(t, p.SetSize(640, 480))
	sp, ok := p.(interface{ Uniforms() shader.Uniforms })
	require.True(t, ok)
	size := sp.Uniforms()["tSize"].Vec()
	assert.Equal(t, float32(640), size.X())
	assert.Equal(t, float32(480), size.Y())
}
