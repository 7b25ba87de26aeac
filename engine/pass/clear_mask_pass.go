package pass

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
)

// clearMaskPassImpl is the implementation of the ClearMaskPass interface.
type clearMaskPassImpl struct {
	base
	disposed bool
}

// ClearMaskPass defines the interface for the pass that closes a
// stencil-masked region opened by a MaskPass: it unlocks the stencil state
// and disables the stencil test so following passes cover the full output
// again.
type ClearMaskPass interface {
	Pass
}

var _ ClearMaskPass = &clearMaskPassImpl{}

// NewClearMaskPass creates a mask-closing pass.
//
// Returns:
//   - ClearMaskPass: the newly created pass
func NewClearMaskPass() ClearMaskPass {
	return &clearMaskPassImpl{
		base: base{
			kind:    KindMaskEnd,
			enabled: true,
		},
	}
}

func (p *clearMaskPassImpl) Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) error {
	if p.disposed {
		return ErrDisposed
	}
	st := r.Stencil()
	st.SetLocked(false)
	st.SetTest(false)
	return nil
}

func (p *clearMaskPassImpl) Dispose() {
	p.disposed = true
}
