package pass

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
)

// afterimagePassImpl is the implementation of the AfterimagePass interface.
type afterimagePassImpl struct {
	base

	alloc   target.Allocator
	blendSh shader.Shader
	copySh  shader.Shader

	history      target.RenderTarget
	accumulation target.RenderTarget
	dampValue    float32
	resetPending bool
	disposed     bool
}

// AfterimagePass defines the interface for the motion trail effect: each
// frame is blended with a damped copy of the accumulated previous frames, so
// moving content leaves a fading trail.
type AfterimagePass interface {
	Pass

	// SetDamp sets how slowly trails fade. Values close to 1 leave long
	// trails; 0 disables the effect.
	//
	// Parameters:
	//   - damp: the damping factor in [0, 1)
	SetDamp(damp float32)

	// Damp retrieves the damping factor.
	//
	// Returns:
	//   - float32: the damping factor
	Damp() float32

	// ResetHistory discards the accumulated trail at the start of the next
	// render, e.g. after a camera cut.
	ResetHistory()
}

var _ AfterimagePass = &afterimagePassImpl{}

// NewAfterimagePass creates a motion trail pass. Internal history buffers are
// allocated on the first SetSize.
//
// Parameters:
//   - alloc: the allocator for the internal history buffers
//   - options: functional options to configure the pass
//
// Returns:
//   - AfterimagePass: the newly created pass
func NewAfterimagePass(alloc target.Allocator, options ...AfterimagePassBuilderOption) AfterimagePass {
	p := &afterimagePassImpl{
		base: base{
			kind:      KindGeneric,
			enabled:   true,
			needsSwap: true,
		},
		alloc:     alloc,
		blendSh:   shader.Afterimage(),
		copySh:    shader.Copy(),
		dampValue: 0.96,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *afterimagePassImpl) SetDamp(damp float32) {
	p.dampValue = damp
}

func (p *afterimagePassImpl) Damp() float32 {
	return p.dampValue
}

func (p *afterimagePassImpl) ResetHistory() {
	p.resetPending = true
}

func (p *afterimagePassImpl) SetSize(width, height int) error {
	if p.disposed {
		return ErrDisposed
	}
	if p.history != nil && width == p.width && height == p.height {
		return nil
	}

	if p.history != nil {
		p.history.Dispose()
		p.accumulation.Dispose()
		p.history, p.accumulation = nil, nil
	}

	history, err := target.New(p.alloc, width, height, target.WithLabel("afterimage history"))
	if err != nil {
		return err
	}
	accumulation, err := target.New(p.alloc, width, height, target.WithLabel("afterimage accumulation"))
	if err != nil {
		history.Dispose()
		return err
	}

	p.history = history
	p.accumulation = accumulation
	p.resetPending = true
	return p.base.SetSize(width, height)
}

func (p *afterimagePassImpl) Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) error {
	if p.disposed {
		return ErrDisposed
	}
	if p.history == nil {
		return ErrNotInitialized
	}

	if p.resetPending {
		for _, t := range []target.RenderTarget{p.history, p.accumulation} {
			r.SetRenderTarget(t)
			if err := r.Clear(true, false, false); err != nil {
				return err
			}
		}
		p.resetPending = false
	}

	// Blend the damped history with the current frame into the accumulation
	// buffer.
	r.SetRenderTarget(p.accumulation)
	err := r.DrawQuad(p.blendSh, shader.Uniforms{
		"damp": shader.Float(p.dampValue),
		"tOld": shader.TextureValue(p.history.ColorTexture()),
		"tNew": shader.TextureValue(read.ColorTexture()),
	})
	if err != nil {
		return err
	}

	// Copy the accumulation to the pass output.
	p.bindOutput(r, write)
	err = r.DrawQuad(p.copySh, shader.Uniforms{
		"opacity":  shader.Float(1.0),
		"tDiffuse": shader.TextureValue(p.accumulation.ColorTexture()),
	})
	if err != nil {
		return err
	}

	// The accumulation becomes next frame's history.
	p.history, p.accumulation = p.accumulation, p.history
	return nil
}

func (p *afterimagePassImpl) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	if p.history != nil {
		p.history.Dispose()
		p.history = nil
	}
	if p.accumulation != nil {
		p.accumulation.Dispose()
		p.accumulation = nil
	}
}
