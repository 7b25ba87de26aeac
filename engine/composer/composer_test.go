package composer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/pass"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

// recordingStencil implements renderer.Stencil with the lock semantics of the
// real state, recording every honored SetFunc.
type recordingStencil struct {
	compare   wgpu.CompareFunction
	reference uint32
	mask      uint32
	fail      wgpu.StencilOperation
	zfail     wgpu.StencilOperation
	zpass     wgpu.StencilOperation
	clear     uint32
	test      bool
	locked    bool

	funcHistory []wgpu.CompareFunction
}

func (s *recordingStencil) SetTest(enabled bool) {
	if !s.locked {
		s.test = enabled
	}
}
func (s *recordingStencil) Test() bool { return s.test }

func (s *recordingStencil) SetFunc(compare wgpu.CompareFunction, reference, mask uint32) {
	if s.locked {
		return
	}
	s.compare, s.reference, s.mask = compare, reference, mask
	s.funcHistory = append(s.funcHistory, compare)
}

func (s *recordingStencil) Func() (wgpu.CompareFunction, uint32, uint32) {
	return s.compare, s.reference, s.mask
}

func (s *recordingStencil) SetOp(fail, zfail, zpass wgpu.StencilOperation) {
	if !s.locked {
		s.fail, s.zfail, s.zpass = fail, zfail, zpass
	}
}

func (s *recordingStencil) Op() (wgpu.StencilOperation, wgpu.StencilOperation, wgpu.StencilOperation) {
	return s.fail, s.zfail, s.zpass
}

func (s *recordingStencil) SetClear(value uint32) {
	if !s.locked {
		s.clear = value
	}
}
func (s *recordingStencil) ClearValue() uint32     { return s.clear }
func (s *recordingStencil) SetLocked(locked bool)  { s.locked = locked }
func (s *recordingStencil) Locked() bool           { return s.locked }

type drawCall struct {
	shaderKey string
	target    target.RenderTarget
}

// mockRenderer records draws instead of encoding GPU work.
type mockRenderer struct {
	allocations int

	boundTarget target.RenderTarget
	clearColor  common.Color
	colorWrite  bool
	stencil     recordingStencil

	width, height int

	draws []drawCall
}

var _ renderer.Renderer = &mockRenderer{}

func newMockRenderer() *mockRenderer {
	return &mockRenderer{
		clearColor: common.Black,
		colorWrite: true,
		width:      1024,
		height:     768,
	}
}

func (m *mockRenderer) AllocateTexture(desc target.TextureDescriptor) (target.Texture, error) {
	m.allocations++
	return &fakeTexture{desc: desc}, nil
}

func (m *mockRenderer) SetRenderTarget(t target.RenderTarget) { m.boundTarget = t }
func (m *mockRenderer) RenderTarget() target.RenderTarget     { return m.boundTarget }
func (m *mockRenderer) SetClearColor(color common.Color)      { m.clearColor = color }
func (m *mockRenderer) ClearColor() common.Color              { return m.clearColor }
func (m *mockRenderer) SetColorWrite(enabled bool)            { m.colorWrite = enabled }
func (m *mockRenderer) ColorWrite() bool                      { return m.colorWrite }

func (m *mockRenderer) Clear(color, depth, stencil bool) error { return nil }

func (m *mockRenderer) DrawQuad(sh shader.Shader, uniforms shader.Uniforms) error {
	if _, err := shader.Pack(sh.Declarations(), uniforms); err != nil {
		return err
	}
	m.draws = append(m.draws, drawCall{shaderKey: sh.Key(), target: m.boundTarget})
	return nil
}

func (m *mockRenderer) RenderScene(scene renderer.Scene, cam camera.Camera) error { return nil }

func (m *mockRenderer) RenderSceneOverride(scene renderer.OverridableScene, cam camera.Camera, override renderer.MaterialOverride) error {
	return nil
}

func (m *mockRenderer) Stencil() renderer.Stencil           { return &m.stencil }
func (m *mockRenderer) Size() (int, int)                    { return m.width, m.height }
func (m *mockRenderer) Resize(width, height int)            { m.width, m.height = width, height }
func (m *mockRenderer) SetPresentMode(renderer.PresentMode) {}
func (m *mockRenderer) BeginFrame() error                   { return nil }
func (m *mockRenderer) Present()                            {}
func (m *mockRenderer) Dispose()                            {}

// renderRecord captures everything a recording pass observed during one
// Render call.
type renderRecord struct {
	pass           *recordingPass
	write, read    target.RenderTarget
	maskActive     bool
	renderToScreen bool
}

// recordingPass implements pass.Pass and appends to a shared trace.
type recordingPass struct {
	kind      pass.Kind
	enabled   bool
	needsSwap bool
	rts       bool

	trace *[]renderRecord

	sizes     [][2]int
	renderErr error
	disposed  int
}

var _ pass.Pass = &recordingPass{}

func newRecordingPass(trace *[]renderRecord, needsSwap bool) *recordingPass {
	return &recordingPass{enabled: true, needsSwap: needsSwap, trace: trace}
}

func (p *recordingPass) Kind() pass.Kind                       { return p.kind }
func (p *recordingPass) Enabled() bool                         { return p.enabled }
func (p *recordingPass) SetEnabled(enabled bool)               { p.enabled = enabled }
func (p *recordingPass) NeedsSwap() bool                       { return p.needsSwap }
func (p *recordingPass) SetNeedsSwap(needsSwap bool)           { p.needsSwap = needsSwap }
func (p *recordingPass) Clear() bool                           { return false }
func (p *recordingPass) SetClear(bool)                         {}
func (p *recordingPass) RenderToScreen() bool                  { return p.rts }
func (p *recordingPass) SetRenderToScreen(renderToScreen bool) { p.rts = renderToScreen }

func (p *recordingPass) SetSize(width, height int) error {
	p.sizes = append(p.sizes, [2]int{width, height})
	return nil
}

func (p *recordingPass) Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) error {
	if p.renderErr != nil {
		return p.renderErr
	}
	if p.trace != nil {
		*p.trace = append(*p.trace, renderRecord{
			pass:           p,
			write:          write,
			read:           read,
			maskActive:     maskActive,
			renderToScreen: p.rts,
		})
	}
	return nil
}

func (p *recordingPass) Dispose() { p.disposed++ }

func newTestComposer(t *testing.T, m *mockRenderer, options ...ComposerBuilderOption) Composer {
	t.Helper()
	c, err := New(m, options...)
	require.NoError(t, err)
	return c
}

func TestNewAllocatesStencilBuffers(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	read, write := c.ReadBuffer(), c.WriteBuffer()
	require.NotNil(t, read)
	require.NotNil(t, write)
	assert.NotSame(t, read, write)
	assert.Equal(t, 1024, read.Width())
	assert.Equal(t, 768, read.Height())
	assert.True(t, read.HasDepth())
	assert.True(t, read.HasStencil())
	assert.True(t, write.HasStencil())
	assert.True(t, c.RenderToScreen())
}

func TestNewWithProvidedTargets(t *testing.T) {
	m := newMockRenderer()
	read, err := target.New(m, 512, 512, target.WithStencilBuffer(true))
	require.NoError(t, err)
	write, err := target.New(m, 512, 512, target.WithStencilBuffer(true))
	require.NoError(t, err)

	c := newTestComposer(t, m, WithRenderTargets(read, write))
	assert.Same(t, read, c.ReadBuffer())
	assert.Same(t, write, c.WriteBuffer())

	// Provided buffers are not owned: disposing the composer leaves them
	// alive.
	c.Dispose()
	assert.False(t, read.Disposed())
	assert.False(t, write.Disposed())
}

func TestAddPassSizesToComposer(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	p := newRecordingPass(nil, true)
	require.NoError(t, c.AddPass(p))
	require.Len(t, p.sizes, 1)
	assert.Equal(t, [2]int{1024, 768}, p.sizes[0])
	assert.Len(t, c.Passes(), 1)
}

func TestInsertPass(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	first := newRecordingPass(nil, true)
	third := newRecordingPass(nil, true)
	require.NoError(t, c.AddPass(first))
	require.NoError(t, c.AddPass(third))

	second := newRecordingPass(nil, true)
	require.NoError(t, c.InsertPass(1, second))

	passes := c.Passes()
	require.Len(t, passes, 3)
	assert.Same(t, first, passes[0])
	assert.Same(t, second, passes[1])
	assert.Same(t, third, passes[2])

	assert.Error(t, c.InsertPass(-1, newRecordingPass(nil, true)))
	assert.Error(t, c.InsertPass(4, newRecordingPass(nil, true)))
}

func TestRemovePass(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	p := newRecordingPass(nil, true)
	require.NoError(t, c.AddPass(p))

	assert.True(t, c.RemovePass(p))
	assert.Empty(t, c.Passes())
	assert.False(t, c.RemovePass(p))
	assert.Zero(t, p.disposed, "removal must not dispose the pass")
}

func TestRemovePassAt(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	a := newRecordingPass(nil, true)
	b := newRecordingPass(nil, true)
	require.NoError(t, c.AddPass(a))
	require.NoError(t, c.AddPass(b))

	removed, err := c.RemovePassAt(0)
	require.NoError(t, err)
	assert.Same(t, a, removed)
	require.Len(t, c.Passes(), 1)
	assert.Same(t, b, c.Passes()[0])
	assert.Zero(t, a.disposed)

	_, err = c.RemovePassAt(-1)
	assert.Error(t, err)
	_, err = c.RemovePassAt(1)
	assert.Error(t, err)
}

func TestRemoveAllAndContainsPass(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	a := newRecordingPass(nil, true)
	b := newRecordingPass(nil, true)
	require.NoError(t, c.AddPass(a))
	assert.True(t, c.ContainsPass(a))
	assert.False(t, c.ContainsPass(b))

	c.RemoveAllPasses()
	assert.Empty(t, c.Passes())
	assert.False(t, c.ContainsPass(a))
	assert.Zero(t, a.disposed)
}

func TestPixelRatioScalesBuffersAndPasses(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m, WithPixelRatio(2))
	assert.Equal(t, float32(2), c.PixelRatio())
	assert.Equal(t, 2048, c.ReadBuffer().Width())
	assert.Equal(t, 1536, c.ReadBuffer().Height())

	p := newRecordingPass(nil, true)
	require.NoError(t, c.AddPass(p))
	require.Len(t, p.sizes, 1)
	assert.Equal(t, [2]int{2048, 1536}, p.sizes[0])

	require.NoError(t, c.SetPixelRatio(1))
	assert.Equal(t, 1024, c.ReadBuffer().Width())
	require.Len(t, p.sizes, 2)
	assert.Equal(t, [2]int{1024, 768}, p.sizes[1])

	assert.Error(t, c.SetPixelRatio(0))
	assert.Error(t, c.SetPixelRatio(-1))
}

func TestIsLastEnabledPass(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	a := newRecordingPass(nil, true)
	b := newRecordingPass(nil, true)
	tail := newRecordingPass(nil, true)
	tail.SetEnabled(false)
	require.NoError(t, c.AddPass(a))
	require.NoError(t, c.AddPass(b))
	require.NoError(t, c.AddPass(tail))

	assert.False(t, c.IsLastEnabledPass(0))
	assert.True(t, c.IsLastEnabledPass(1), "disabled trailing passes do not count")
	assert.True(t, c.IsLastEnabledPass(2))
}

func TestRenderSwapInvariant(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)
	c.SetRenderToScreen(false)

	var trace []renderRecord
	passes := []*recordingPass{
		newRecordingPass(&trace, true),
		newRecordingPass(&trace, true),
		newRecordingPass(&trace, true),
	}
	for _, p := range passes {
		require.NoError(t, c.AddPass(p))
	}

	origRead, origWrite := c.ReadBuffer(), c.WriteBuffer()
	require.NoError(t, c.Render(0.016))
	require.Len(t, trace, 3)

	// Each pass reads what the previous one wrote.
	for i := 1; i < len(trace); i++ {
		assert.Same(t, trace[i-1].write, trace[i].read, "pass %d must read pass %d's output", i, i-1)
	}

	// Three swaps leave the buffers exchanged; a fourth pass would restore
	// them.
	assert.Same(t, origWrite, c.ReadBuffer())
	assert.Same(t, origRead, c.WriteBuffer())

	require.NoError(t, c.Render(0.016))
	assert.Same(t, origRead, c.ReadBuffer())
}

func TestRenderSkipsDisabledAndPreservesOrder(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	var trace []renderRecord
	a := newRecordingPass(&trace, true)
	b := newRecordingPass(&trace, true)
	b.SetEnabled(false)
	d := newRecordingPass(&trace, true)
	for _, p := range []*recordingPass{a, b, d} {
		require.NoError(t, c.AddPass(p))
	}

	require.NoError(t, c.Render(0.016))

	require.Len(t, trace, 2)
	assert.Same(t, a, trace[0].pass)
	assert.Same(t, d, trace[1].pass)

	// The disabled pass must not have swapped buffers: d reads a's output.
	assert.Same(t, trace[0].write, trace[1].read)
}

func TestRenderToScreenOnlyOnLastEnabledPass(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	var trace []renderRecord
	a := newRecordingPass(&trace, true)
	b := newRecordingPass(&trace, true)
	tail := newRecordingPass(&trace, true)
	tail.SetEnabled(false)
	for _, p := range []*recordingPass{a, b, tail} {
		require.NoError(t, c.AddPass(p))
	}

	require.NoError(t, c.Render(0.016))
	require.Len(t, trace, 2)
	assert.False(t, trace[0].renderToScreen)
	assert.True(t, trace[1].renderToScreen)

	// With screen output off, no pass renders to screen.
	trace = trace[:0]
	c.SetRenderToScreen(false)
	require.NoError(t, c.Render(0.016))
	require.Len(t, trace, 2)
	assert.False(t, trace[0].renderToScreen)
	assert.False(t, trace[1].renderToScreen)
}

func TestRenderMaskBracketing(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)
	c.SetRenderToScreen(false)

	var trace []renderRecord
	before := newRecordingPass(&trace, true)
	maskBegin := newRecordingPass(&trace, false)
	maskBegin.kind = pass.KindMaskBegin
	inside := newRecordingPass(&trace, false)
	maskEnd := newRecordingPass(&trace, false)
	maskEnd.kind = pass.KindMaskEnd
	after := newRecordingPass(&trace, true)
	for _, p := range []*recordingPass{before, maskBegin, inside, maskEnd, after} {
		require.NoError(t, c.AddPass(p))
	}

	require.NoError(t, c.Render(0.016))
	require.Len(t, trace, 5)

	assert.False(t, trace[0].maskActive)
	assert.False(t, trace[1].maskActive, "the opening pass runs before the mask is active")
	assert.True(t, trace[2].maskActive)
	assert.True(t, trace[3].maskActive, "the closing pass still sees the mask")
	assert.False(t, trace[4].maskActive)
}

func TestRenderMaskedSwapCopiesProtectedRegion(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)
	c.SetRenderToScreen(false)

	var trace []renderRecord
	maskBegin := newRecordingPass(&trace, false)
	maskBegin.kind = pass.KindMaskBegin
	swapping := newRecordingPass(&trace, true)
	maskEnd := newRecordingPass(&trace, false)
	maskEnd.kind = pass.KindMaskEnd
	for _, p := range []*recordingPass{maskBegin, swapping, maskEnd} {
		require.NoError(t, c.AddPass(p))
	}

	require.NoError(t, c.Render(0.016))

	// The unprotected-region copy lands in the swapping pass's write buffer
	// before the swap.
	require.Len(t, m.draws, 1)
	assert.Equal(t, "copy", m.draws[0].shaderKey)
	assert.Same(t, trace[1].write, m.draws[0].target)

	// The copy ran with the inverted stencil test, then the masked test was
	// restored and relocked.
	assert.Equal(t, []wgpu.CompareFunction{
		wgpu.CompareFunctionNotEqual,
		wgpu.CompareFunctionEqual,
	}, m.stencil.funcHistory)
	assert.True(t, m.stencil.Locked())
}

func TestRenderWrapsPassErrors(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	ok := newRecordingPass(nil, true)
	boom := errors.New("device lost")
	failing := newRecordingPass(nil, true)
	failing.renderErr = boom
	require.NoError(t, c.AddPass(ok))
	require.NoError(t, c.AddPass(failing))

	err := c.Render(0.016)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "pass 1")
}

func TestRenderRestoresPriorTarget(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	prior, err := target.New(m, 64, 64)
	require.NoError(t, err)
	m.SetRenderTarget(prior)

	require.NoError(t, c.AddPass(newRecordingPass(nil, true)))
	require.NoError(t, c.Render(0.016))
	assert.Same(t, prior, m.RenderTarget())
}

func TestSetSizePropagates(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	p := newRecordingPass(nil, true)
	require.NoError(t, c.AddPass(p))

	require.NoError(t, c.SetSize(640, 480))
	assert.Equal(t, 640, c.ReadBuffer().Width())
	assert.Equal(t, 480, c.ReadBuffer().Height())
	assert.Equal(t, 640, c.WriteBuffer().Width())

	require.Len(t, p.sizes, 2)
	assert.Equal(t, [2]int{640, 480}, p.sizes[1])

	assert.ErrorIs(t, c.SetSize(0, 480), target.ErrInvalidSize)
}

func TestReset(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	oldRead, oldWrite := c.ReadBuffer(), c.WriteBuffer()
	require.NoError(t, c.Reset(nil, nil))
	assert.True(t, oldRead.Disposed())
	assert.True(t, oldWrite.Disposed())
	assert.NotSame(t, oldRead, c.ReadBuffer())
	assert.Equal(t, 1024, c.ReadBuffer().Width())

	// Adopting caller buffers takes their dimensions and gives up ownership.
	read, err := target.New(m, 400, 300, target.WithStencilBuffer(true))
	require.NoError(t, err)
	write, err := target.New(m, 400, 300, target.WithStencilBuffer(true))
	require.NoError(t, err)
	require.NoError(t, c.Reset(read, write))
	assert.Same(t, read, c.ReadBuffer())

	c.Dispose()
	assert.False(t, read.Disposed())
}

func TestSwapBuffers(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	read, write := c.ReadBuffer(), c.WriteBuffer()
	c.SwapBuffers()
	assert.Same(t, write, c.ReadBuffer())
	assert.Same(t, read, c.WriteBuffer())
}

func TestDispose(t *testing.T) {
	m := newMockRenderer()
	c := newTestComposer(t, m)

	p := newRecordingPass(nil, true)
	require.NoError(t, c.AddPass(p))
	read, write := c.ReadBuffer(), c.WriteBuffer()

	c.Dispose()
	c.Dispose()

	assert.Equal(t, 1, p.disposed)
	assert.True(t, read.Disposed())
	assert.True(t, write.Disposed())
	assert.Empty(t, c.Passes())
}
