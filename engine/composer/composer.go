package composer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/engine/pass"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
	"github.com/cogentcore/webgpu/wgpu"
)

// composerImpl is the implementation of the Composer interface.
type composerImpl struct {
	mu *sync.Mutex

	r              renderer.Renderer
	readBuffer     target.RenderTarget
	writeBuffer    target.RenderTarget
	ownsTargets    bool
	passes         []pass.Pass
	copyPass       pass.ShaderPass
	renderToScreen bool
	width          int
	height         int
	pixelRatio     float32
	disposed       bool
}

// Composer chains post-processing passes over a pair of ping-pong render
// targets. Each enabled pass reads the output of the previous one from the
// read buffer and renders into the write buffer; passes that report NeedsSwap
// have the two buffers exchanged after they run, so the next pass always
// finds its input in the read buffer. The last enabled pass renders to the
// surface when RenderToScreen is set.
type Composer interface {
	// AddPass appends a pass to the end of the chain and sizes it to the
	// composer's current dimensions.
	//
	// Parameters:
	//   - p: the pass to append
	//
	// Returns:
	//   - error: an error if sizing the pass fails
	AddPass(p pass.Pass) error

	// InsertPass inserts a pass at the given index, shifting later passes
	// back, and sizes it to the composer's current dimensions.
	//
	// Parameters:
	//   - index: the position to insert at, 0 through len(Passes())
	//   - p: the pass to insert
	//
	// Returns:
	//   - error: an error if the index is out of range or sizing fails
	InsertPass(index int, p pass.Pass) error

	// RemovePass removes the first occurrence of the pass from the chain.
	// The pass is not disposed.
	//
	// Parameters:
	//   - p: the pass to remove
	//
	// Returns:
	//   - bool: true if the pass was found and removed
	RemovePass(p pass.Pass) bool

	// RemovePassAt removes the pass at the given index from the chain. The
	// pass is not disposed.
	//
	// Parameters:
	//   - index: the index into Passes()
	//
	// Returns:
	//   - pass.Pass: the removed pass
	//   - error: an error if the index is out of range
	RemovePassAt(index int) (pass.Pass, error)

	// RemoveAllPasses empties the chain without disposing any pass.
	RemoveAllPasses()

	// ContainsPass reports whether the pass is currently in the chain.
	//
	// Parameters:
	//   - p: the pass to look for
	//
	// Returns:
	//   - bool: true if the pass is in the chain
	ContainsPass(p pass.Pass) bool

	// Passes retrieves the current pass chain in execution order.
	//
	// Returns:
	//   - []pass.Pass: the passes
	Passes() []pass.Pass

	// IsLastEnabledPass reports whether the pass at the given index is the
	// last enabled pass in the chain.
	//
	// Parameters:
	//   - index: the index into Passes()
	//
	// Returns:
	//   - bool: true if no enabled pass follows it
	IsLastEnabledPass(index int) bool

	// Render executes the chain once. Disabled passes are skipped. The
	// renderer's current render target is restored afterwards.
	//
	// Parameters:
	//   - deltaTime: seconds elapsed since the previous frame
	//
	// Returns:
	//   - error: the first error returned by a pass, annotated with its index
	Render(deltaTime float32) error

	// SetSize resizes both buffers and propagates the new dimensions to
	// every pass in the chain.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if a buffer or pass rejects the dimensions
	SetSize(width, height int) error

	// SetPixelRatio sets the device pixel ratio and re-applies the current
	// size, so buffers and passes run at width*ratio by height*ratio.
	//
	// Parameters:
	//   - ratio: the device pixel ratio, must be positive
	//
	// Returns:
	//   - error: an error if the ratio is not positive or resizing fails
	SetPixelRatio(ratio float32) error

	// PixelRatio retrieves the current device pixel ratio.
	//
	// Returns:
	//   - float32: the ratio
	PixelRatio() float32

	// Reset replaces the ping-pong buffers. Passing nil allocates a fresh
	// pair at the renderer's current size. Previously owned buffers are
	// disposed; caller-provided ones are not.
	//
	// Parameters:
	//   - read: the new read buffer, or nil
	//   - write: the new write buffer, or nil
	//
	// Returns:
	//   - error: an error if allocation fails
	Reset(read, write target.RenderTarget) error

	// ReadBuffer retrieves the buffer the next pass will read from.
	//
	// Returns:
	//   - target.RenderTarget: the read buffer
	ReadBuffer() target.RenderTarget

	// WriteBuffer retrieves the buffer the next pass will render into.
	//
	// Returns:
	//   - target.RenderTarget: the write buffer
	WriteBuffer() target.RenderTarget

	// SwapBuffers exchanges the read and write buffers.
	SwapBuffers()

	// RenderToScreen reports whether the last enabled pass renders to the
	// surface instead of the write buffer.
	//
	// Returns:
	//   - bool: true if the chain ends on the surface
	RenderToScreen() bool

	// SetRenderToScreen sets whether the last enabled pass renders to the
	// surface.
	//
	// Parameters:
	//   - renderToScreen: true to end the chain on the surface
	SetRenderToScreen(renderToScreen bool)

	// Dispose releases owned buffers and disposes every pass in the chain.
	// Disposing an already-disposed composer is a no-op.
	Dispose()
}

var _ Composer = &composerImpl{}

// New creates a composer driving the given renderer. Unless WithRenderTargets
// is supplied, two buffers with depth and stencil attachments are allocated
// at the renderer's current size.
//
// Parameters:
//   - r: the renderer the chain draws with
//   - options: functional options to configure the composer
//
// Returns:
//   - Composer: the newly created composer
//   - error: an error if buffer allocation fails
func New(r renderer.Renderer, options ...ComposerBuilderOption) (Composer, error) {
	width, height := r.Size()
	c := &composerImpl{
		mu:             &sync.Mutex{},
		r:              r,
		copyPass:       pass.NewShaderPass(shader.Copy()),
		renderToScreen: true,
		width:          width,
		height:         height,
		pixelRatio:     1,
	}
	for _, option := range options {
		option(c)
	}

	if c.readBuffer == nil {
		w, h := c.scaledSize()
		read, write, err := allocateBuffers(r, w, h)
		if err != nil {
			return nil, err
		}
		c.readBuffer, c.writeBuffer = read, write
		c.ownsTargets = true
	}
	return c, nil
}

func allocateBuffers(alloc target.Allocator, width, height int) (read, write target.RenderTarget, err error) {
	read, err = target.New(alloc, width, height,
		target.WithLabel("composer read"),
		target.WithDepthBuffer(true),
		target.WithStencilBuffer(true),
	)
	if err != nil {
		return nil, nil, err
	}
	write, err = target.New(alloc, width, height,
		target.WithLabel("composer write"),
		target.WithDepthBuffer(true),
		target.WithStencilBuffer(true),
	)
	if err != nil {
		read.Dispose()
		return nil, nil, err
	}
	return read, write, nil
}

func (c *composerImpl) AddPass(p pass.Pass) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, h := c.scaledSize()
	if err := p.SetSize(w, h); err != nil {
		return err
	}
	c.passes = append(c.passes, p)
	return nil
}

func (c *composerImpl) scaledSize() (int, int) {
	return int(float32(c.width) * c.pixelRatio), int(float32(c.height) * c.pixelRatio)
}

func (c *composerImpl) InsertPass(index int, p pass.Pass) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index > len(c.passes) {
		return fmt.Errorf("composer: insert index %d out of range [0, %d]", index, len(c.passes))
	}
	w, h := c.scaledSize()
	if err := p.SetSize(w, h); err != nil {
		return err
	}
	c.passes = append(c.passes[:index], append([]pass.Pass{p}, c.passes[index:]...)...)
	return nil
}

func (c *composerImpl) RemovePass(p pass.Pass) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.passes {
		if existing == p {
			c.passes = append(c.passes[:i], c.passes[i+1:]...)
			return true
		}
	}
	return false
}

func (c *composerImpl) RemovePassAt(index int) (pass.Pass, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.passes) {
		return nil, fmt.Errorf("composer: remove index %d out of range [0, %d)", index, len(c.passes))
	}
	p := c.passes[index]
	c.passes = append(c.passes[:index], c.passes[index+1:]...)
	return p, nil
}

func (c *composerImpl) RemoveAllPasses() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passes = nil
}

func (c *composerImpl) ContainsPass(p pass.Pass) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.passes {
		if existing == p {
			return true
		}
	}
	return false
}

func (c *composerImpl) Passes() []pass.Pass {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]pass.Pass, len(c.passes))
	copy(out, c.passes)
	return out
}

func (c *composerImpl) IsLastEnabledPass(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isLastEnabledPass(index)
}

func (c *composerImpl) isLastEnabledPass(index int) bool {
	for i := index + 1; i < len(c.passes); i++ {
		if c.passes[i].Enabled() {
			return false
		}
	}
	return true
}

func (c *composerImpl) Render(deltaTime float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prior := c.r.RenderTarget()
	defer c.r.SetRenderTarget(prior)

	maskActive := false
	for i, p := range c.passes {
		if !p.Enabled() {
			continue
		}

		p.SetRenderToScreen(c.renderToScreen && c.isLastEnabledPass(i))
		if err := p.Render(c.r, c.writeBuffer, c.readBuffer, deltaTime, maskActive); err != nil {
			return fmt.Errorf("composer: pass %d: %w", i, err)
		}

		if p.NeedsSwap() {
			if maskActive {
				if err := c.maskedCopy(); err != nil {
					return fmt.Errorf("composer: pass %d: %w", i, err)
				}
			}
			c.readBuffer, c.writeBuffer = c.writeBuffer, c.readBuffer
		}

		switch p.Kind() {
		case pass.KindMaskBegin:
			maskActive = true
		case pass.KindMaskEnd:
			maskActive = false
		}
	}
	return nil
}

// maskedCopy carries the unmasked region of the read buffer forward into the
// write buffer before a swap, so texels the mask protected are not lost to
// the pass that just rendered around them.
func (c *composerImpl) maskedCopy() error {
	st := c.r.Stencil()
	st.SetLocked(false)
	st.SetFunc(wgpu.CompareFunctionNotEqual, 1, 0xffffffff)
	st.SetLocked(true)

	err := c.copyPass.Render(c.r, c.writeBuffer, c.readBuffer, 0, false)

	st.SetLocked(false)
	st.SetFunc(wgpu.CompareFunctionEqual, 1, 0xffffffff)
	st.SetLocked(true)
	return err
}

func (c *composerImpl) SetSize(width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applySize(width, height)
}

func (c *composerImpl) applySize(width, height int) error {
	w := int(float32(width) * c.pixelRatio)
	h := int(float32(height) * c.pixelRatio)
	if err := c.readBuffer.Resize(w, h); err != nil {
		return err
	}
	if err := c.writeBuffer.Resize(w, h); err != nil {
		return err
	}
	for i, p := range c.passes {
		if err := p.SetSize(w, h); err != nil {
			return fmt.Errorf("composer: pass %d: %w", i, err)
		}
	}
	c.width, c.height = width, height
	return nil
}

func (c *composerImpl) SetPixelRatio(ratio float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ratio <= 0 {
		return fmt.Errorf("composer: pixel ratio must be positive, got %v", ratio)
	}
	c.pixelRatio = ratio
	return c.applySize(c.width, c.height)
}

func (c *composerImpl) PixelRatio() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pixelRatio
}

func (c *composerImpl) Reset(read, write target.RenderTarget) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if read == nil || write == nil {
		w, h := c.scaledSize()
		var err error
		read, write, err = allocateBuffers(c.r, w, h)
		if err != nil {
			return err
		}
		c.disposeBuffers()
		c.readBuffer, c.writeBuffer = read, write
		c.ownsTargets = true
		return nil
	}
	c.disposeBuffers()
	c.readBuffer, c.writeBuffer = read, write
	c.ownsTargets = false
	c.width, c.height = read.Width(), read.Height()
	return nil
}

func (c *composerImpl) ReadBuffer() target.RenderTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readBuffer
}

func (c *composerImpl) WriteBuffer() target.RenderTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeBuffer
}

func (c *composerImpl) SwapBuffers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readBuffer, c.writeBuffer = c.writeBuffer, c.readBuffer
}

func (c *composerImpl) RenderToScreen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderToScreen
}

func (c *composerImpl) SetRenderToScreen(renderToScreen bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderToScreen = renderToScreen
}

func (c *composerImpl) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.disposeBuffers()
	for _, p := range c.passes {
		p.Dispose()
	}
	c.copyPass.Dispose()
	c.passes = nil
}

func (c *composerImpl) disposeBuffers() {
	if !c.ownsTargets {
		return
	}
	if c.readBuffer != nil {
		c.readBuffer.Dispose()
	}
	if c.writeBuffer != nil {
		c.writeBuffer.Dispose()
	}
	c.readBuffer, c.writeBuffer = nil, nil
}
