package pass

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
)

// ErrNotInitialized is returned when a pass is rendered before it has been
// given a size via SetSize.
var ErrNotInitialized = errors.New("pass: not initialized, call SetSize first")

// ErrDisposed is returned when a disposed pass is rendered.
var ErrDisposed = errors.New("pass: already disposed")

// Kind tags a pass with its structural role in the composer's pass chain.
// The composer uses it to track mask bracketing without inspecting concrete
// pass types.
type Kind int

const (
	// KindGeneric marks an ordinary full-screen effect pass.
	KindGeneric Kind = iota

	// KindScene marks a pass that renders scene geometry rather than a
	// full-screen effect.
	KindScene

	// KindMaskBegin marks a pass that opens a stencil-masked region.
	KindMaskBegin

	// KindMaskEnd marks a pass that closes a stencil-masked region.
	KindMaskEnd
)

// Pass defines the interface every post-processing pass implements. A pass
// reads from one buffer, writes into another (or the screen), and carries
// flags the composer uses to route buffers between passes:
//
//   - Enabled: disabled passes are skipped entirely.
//   - NeedsSwap: after the pass runs, the composer swaps its read and write
//     buffers so the next pass reads this pass's output.
//   - Clear: the pass clears its output before rendering.
//   - RenderToScreen: the pass writes to the window surface instead of the
//     write buffer.
type Pass interface {
	// Kind retrieves the pass's structural role.
	//
	// Returns:
	//   - Kind: the pass kind
	Kind() Kind

	// Enabled reports whether the pass participates in composition.
	//
	// Returns:
	//   - bool: true when enabled
	Enabled() bool

	// SetEnabled enables or disables the pass.
	//
	// Parameters:
	//   - enabled: whether the pass is enabled
	SetEnabled(enabled bool)

	// NeedsSwap reports whether the composer swaps buffers after this pass.
	//
	// Returns:
	//   - bool: true when the composer should swap
	NeedsSwap() bool

	// SetNeedsSwap sets whether the composer swaps buffers after this pass.
	//
	// Parameters:
	//   - needsSwap: whether the composer should swap
	SetNeedsSwap(needsSwap bool)

	// Clear reports whether the pass clears its output before rendering.
	//
	// Returns:
	//   - bool: true when the pass clears first
	Clear() bool

	// SetClear sets whether the pass clears its output before rendering.
	//
	// Parameters:
	//   - clear: whether the pass clears first
	SetClear(clear bool)

	// RenderToScreen reports whether the pass writes to the window surface.
	//
	// Returns:
	//   - bool: true when the pass renders to screen
	RenderToScreen() bool

	// SetRenderToScreen sets whether the pass writes to the window surface.
	//
	// Parameters:
	//   - renderToScreen: whether the pass renders to screen
	SetRenderToScreen(renderToScreen bool)

	// SetSize notifies the pass of the composition resolution so it can
	// resize any internal buffers.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if internal buffer allocation fails
	SetSize(width, height int) error

	// Render executes the pass. The read buffer holds the previous pass's
	// output; the write buffer receives this pass's output unless the pass
	// renders to screen.
	//
	// Parameters:
	//   - r: the renderer to draw with
	//   - write: the buffer to write into
	//   - read: the buffer holding the previous pass's output
	//   - deltaTime: seconds elapsed since the previous frame
	//   - maskActive: whether a stencil-masked region is open
	//
	// Returns:
	//   - error: an error if rendering fails
	Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) error

	// Dispose releases the pass's internal resources. Dispose is idempotent.
	Dispose()
}

// base carries the flags and composition dimensions shared by every pass
// implementation.
type base struct {
	kind           Kind
	enabled        bool
	needsSwap      bool
	clear          bool
	renderToScreen bool
	width          int
	height         int
}

func (b *base) Kind() Kind {
	return b.kind
}

func (b *base) Enabled() bool {
	return b.enabled
}

func (b *base) SetEnabled(enabled bool) {
	b.enabled = enabled
}

func (b *base) NeedsSwap() bool {
	return b.needsSwap
}

func (b *base) SetNeedsSwap(needsSwap bool) {
	b.needsSwap = needsSwap
}

func (b *base) Clear() bool {
	return b.clear
}

func (b *base) SetClear(clear bool) {
	b.clear = clear
}

func (b *base) RenderToScreen() bool {
	return b.renderToScreen
}

func (b *base) SetRenderToScreen(renderToScreen bool) {
	b.renderToScreen = renderToScreen
}

// SetSize records the composition resolution. Passes with internal buffers
// shadow this and reallocate before recording.
func (b *base) SetSize(width, height int) error {
	b.width, b.height = width, height
	return nil
}

// Size retrieves the composition resolution last given via SetSize.
func (b *base) Size() (width, height int) {
	return b.width, b.height
}

// bindOutput points the renderer at the pass's output: the window surface
// when renderToScreen is set, the write buffer otherwise.
func (b *base) bindOutput(r renderer.Renderer, write target.RenderTarget) {
	if b.renderToScreen {
		r.SetRenderTarget(nil)
	} else {
		r.SetRenderTarget(write)
	}
}
