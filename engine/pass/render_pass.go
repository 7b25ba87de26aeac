package pass

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
)

// renderPassImpl is the implementation of the RenderPass interface.
type renderPassImpl struct {
	base

	scene renderer.Scene
	cam   camera.Camera

	overrideClearColor *common.Color
	disposed           bool
}

// RenderPass defines the interface for a pass that renders scene geometry
// into the composition chain. It is usually the first pass: it fills the
// read buffer with the scene image the effect passes then transform. It does
// not swap buffers; its output lands where the next pass reads from.
type RenderPass interface {
	Pass

	// Scene retrieves the scene the pass renders.
	//
	// Returns:
	//   - renderer.Scene: the scene
	Scene() renderer.Scene

	// Camera retrieves the camera the pass renders with.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera
}

var _ RenderPass = &renderPassImpl{}

// NewRenderPass creates a scene-rendering pass. The pass starts enabled with
// clear set and needsSwap unset.
//
// Parameters:
//   - scene: the scene to render
//   - cam: the camera to render with
//   - options: functional options to configure the pass
//
// Returns:
//   - RenderPass: the newly created pass
func NewRenderPass(scene renderer.Scene, cam camera.Camera, options ...RenderPassBuilderOption) RenderPass {
	p := &renderPassImpl{
		base: base{
			kind:    KindScene,
			enabled: true,
			clear:   true,
		},
		scene: scene,
		cam:   cam,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *renderPassImpl) Scene() renderer.Scene {
	return p.scene
}

func (p *renderPassImpl) Camera() camera.Camera {
	return p.cam
}

func (p *renderPassImpl) Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) error {
	if p.disposed {
		return ErrDisposed
	}

	// Scene passes render into the read buffer so the following effect pass
	// picks the image up without a swap.
	if p.renderToScreen {
		r.SetRenderTarget(nil)
	} else {
		r.SetRenderTarget(read)
	}

	if p.overrideClearColor != nil {
		prior := r.ClearColor()
		r.SetClearColor(*p.overrideClearColor)
		defer r.SetClearColor(prior)
	}
	if p.clear {
		if err := r.Clear(true, true, false); err != nil {
			return err
		}
	}

	return r.RenderScene(p.scene, p.cam)
}

func (p *renderPassImpl) Dispose() {
	p.disposed = true
}
