package pass

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
	"github.com/cogentcore/webgpu/wgpu"
)

// maskPassImpl is the implementation of the MaskPass interface.
type maskPassImpl struct {
	base

	scene   renderer.Scene
	cam     camera.Camera
	inverse bool

	disposed bool
}

// MaskPass defines the interface for a pass that opens a stencil-masked
// region: it renders the mask scene's silhouette into the stencil buffers of
// both composition buffers with color writes disabled, then configures and
// locks the stencil test so every following pass only touches texels the
// silhouette covered. The region stays open until a ClearMaskPass runs.
//
// Scene materials used in a mask must write the stencil buffer (replace on
// pass); the mask pass controls the stencil reference and the test state
// around the scene render.
type MaskPass interface {
	Pass

	// Inverse reports whether the mask is inverted, limiting subsequent
	// passes to texels the silhouette did NOT cover.
	//
	// Returns:
	//   - bool: true when inverted
	Inverse() bool

	// SetInverse inverts or un-inverts the mask.
	//
	// Parameters:
	//   - inverse: whether the mask is inverted
	SetInverse(inverse bool)
}

var _ MaskPass = &maskPassImpl{}

// NewMaskPass creates a mask-opening pass for the given scene and camera.
//
// Parameters:
//   - scene: the scene whose silhouette shapes the mask
//   - cam: the camera to render the mask scene with
//
// Returns:
//   - MaskPass: the newly created pass
func NewMaskPass(scene renderer.Scene, cam camera.Camera) MaskPass {
	return &maskPassImpl{
		base: base{
			kind:    KindMaskBegin,
			enabled: true,
			clear:   true,
		},
		scene: scene,
		cam:   cam,
	}
}

func (p *maskPassImpl) Inverse() bool {
	return p.inverse
}

func (p *maskPassImpl) SetInverse(inverse bool) {
	p.inverse = inverse
}

func (p *maskPassImpl) Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) (err error) {
	if p.disposed {
		return ErrDisposed
	}

	writeValue := uint32(1)
	clearValue := uint32(0)
	if p.inverse {
		writeValue, clearValue = 0, 1
	}

	st := r.Stencil()
	st.SetLocked(false)

	// Shape the stencil buffers of both composition buffers: color writes
	// off, every covered texel replaced with the write value.
	r.SetColorWrite(false)
	st.SetTest(true)
	st.SetOp(wgpu.StencilOperationReplace, wgpu.StencilOperationReplace, wgpu.StencilOperationReplace)
	st.SetFunc(wgpu.CompareFunctionAlways, writeValue, 0xFF)
	st.SetClear(clearValue)

	defer func() {
		r.SetColorWrite(true)
		if err != nil {
			// A failed mask must not leave the chain half-bracketed with
			// replace writes armed.
			st.SetOp(wgpu.StencilOperationKeep, wgpu.StencilOperationKeep, wgpu.StencilOperationKeep)
			st.SetTest(false)
		}
	}()

	for _, t := range []target.RenderTarget{write, read} {
		r.SetRenderTarget(t)
		if p.clear {
			if err = r.Clear(false, false, true); err != nil {
				return err
			}
		}
		if err = r.RenderScene(p.scene, p.cam); err != nil {
			return err
		}
	}

	// Only texels holding a 1 pass until the mask is cleared.
	st.SetFunc(wgpu.CompareFunctionEqual, 1, 0xFF)
	st.SetOp(wgpu.StencilOperationKeep, wgpu.StencilOperationKeep, wgpu.StencilOperationKeep)
	st.SetLocked(true)
	return nil
}

func (p *maskPassImpl) Dispose() {
	p.disposed = true
}
