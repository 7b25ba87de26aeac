package pass

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
)

// clearPassImpl is the implementation of the ClearPass interface.
type clearPassImpl struct {
	base

	overrideClearColor *common.Color
	clearDepth         bool

	disposed bool
}

// ClearPass defines the interface for a pass that clears the read buffer (or
// the screen), optionally with its own clear color. Useful ahead of passes
// that composite without clearing.
type ClearPass interface {
	Pass
}

var _ ClearPass = &clearPassImpl{}

// NewClearPass creates a clearing pass.
//
// Parameters:
//   - options: functional options to configure the pass
//
// Returns:
//   - ClearPass: the newly created pass
func NewClearPass(options ...ClearPassBuilderOption) ClearPass {
	p := &clearPassImpl{
		base: base{
			kind:    KindGeneric,
			enabled: true,
		},
		clearDepth: true,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *clearPassImpl) Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) error {
	if p.disposed {
		return ErrDisposed
	}

	if p.renderToScreen {
		r.SetRenderTarget(nil)
	} else {
		r.SetRenderTarget(read)
	}

	var restoreColor *common.Color
	if p.overrideClearColor != nil {
		prior := r.ClearColor()
		restoreColor = &prior
		r.SetClearColor(*p.overrideClearColor)
	}

	err := r.Clear(true, p.clearDepth, false)

	if restoreColor != nil {
		r.SetClearColor(*restoreColor)
	}
	return err
}

func (p *clearPassImpl) Dispose() {
	p.disposed = true
}
