package ao

import (
	"math/rand"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/pass"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
	"github.com/go-gl/mathgl/mgl32"
)

// Output selects what the ambient occlusion pass writes to the composition
// chain.
type Output int

const (
	// OutputDefault multiplies the blurred visibility onto the scene image.
	OutputDefault Output = iota

	// OutputOcclusion shows the blurred visibility buffer itself.
	OutputOcclusion

	// OutputDepth shows the linearized scene depth.
	OutputDepth

	// OutputNormal shows the reconstructed view-space normals.
	OutputNormal
)

// aoImpl is the implementation of the AO interface.
type aoImpl struct {
	scene renderer.OverridableScene
	cam   camera.Camera

	intensity   float32
	radius      float32
	bias        float32
	minDistance float32
	maxDistance float32
	kernelSize  int
	blurStdDev  float32
	blurRadius  int
	blurCutoff  float32
	output      Output

	enabled        bool
	renderToScreen bool

	alloc       target.Allocator
	aoSh        shader.Shader
	blurSh      shader.Shader
	multiplySh  shader.Shader
	copySh      shader.Shader
	rng         *rand.Rand
	normalDepth target.RenderTarget
	occlusion   target.RenderTarget
	blurH       target.RenderTarget
	blurV       target.RenderTarget

	width    int
	height   int
	disposed bool
}

// AO defines the interface for the screen-space ambient occlusion effect. A
// normal/depth pre-pass renders the scene with a normal override material;
// the occlusion estimate samples that buffer, is denoised with a depth-aware
// blur, and multiplies the scene image in place. The pass does not swap
// buffers.
type AO interface {
	pass.Pass

	// SetIntensity sets how strongly occlusion darkens the image.
	//
	// Parameters:
	//   - intensity: the occlusion intensity
	SetIntensity(intensity float32)

	// Intensity retrieves the occlusion intensity.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	// SetRadius sets the world-space sampling radius.
	//
	// Parameters:
	//   - radius: the sampling radius in world units
	SetRadius(radius float32)

	// Radius retrieves the sampling radius.
	//
	// Returns:
	//   - float32: the radius
	Radius() float32

	// SetDistanceGate sets the view-space distance window outside of which
	// potential occluders are ignored.
	//
	// Parameters:
	//   - minDistance: occluders closer than this contribute nothing
	//   - maxDistance: occluders farther than this contribute nothing
	SetDistanceGate(minDistance, maxDistance float32)

	// SetOutput selects what the pass writes to the composition chain.
	//
	// Parameters:
	//   - output: the output selection
	SetOutput(output Output)

	// Output retrieves the output selection.
	//
	// Returns:
	//   - Output: the output selection
	Output() Output
}

var _ AO = &aoImpl{}

// New creates an ambient occlusion pass for the given scene and camera.
// Internal buffers are allocated on the first SetSize; rendering before that
// returns pass.ErrNotInitialized.
//
// Parameters:
//   - alloc: the allocator for the internal buffers
//   - scene: the scene providing the normal/depth pre-pass
//   - cam: the camera the scene is rendered with
//   - options: functional options to configure the pass
//
// Returns:
//   - AO: the newly created pass
func New(alloc target.Allocator, scene renderer.OverridableScene, cam camera.Camera, options ...AOBuilderOption) AO {
	a := &aoImpl{
		scene:       scene,
		cam:         cam,
		intensity:   0.5,
		radius:      4.0,
		bias:        0.01,
		minDistance: 0.005,
		maxDistance: 10.0,
		kernelSize:  16,
		blurStdDev:  4.0,
		blurRadius:  8,
		blurCutoff:  0.01,
		enabled:     true,
		alloc:       alloc,
		aoSh:        shader.AO(),
		blurSh:      shader.AOBlur(),
		multiplySh:  shader.Copy(shader.WithBlend(shader.BlendMultiply)),
		copySh:      shader.Copy(),
		rng:         rand.New(rand.NewSource(1)),
	}
	for _, option := range options {
		option(a)
	}
	return a
}

func (a *aoImpl) Kind() pass.Kind {
	return pass.KindGeneric
}

func (a *aoImpl) Enabled() bool {
	return a.enabled
}

func (a *aoImpl) SetEnabled(enabled bool) {
	a.enabled = enabled
}

// NeedsSwap is always false: the pass modulates the read buffer in place.
func (a *aoImpl) NeedsSwap() bool {
	return false
}

func (a *aoImpl) SetNeedsSwap(bool) {}

func (a *aoImpl) Clear() bool {
	return false
}

func (a *aoImpl) SetClear(bool) {}

func (a *aoImpl) RenderToScreen() bool {
	return a.renderToScreen
}

func (a *aoImpl) SetRenderToScreen(renderToScreen bool) {
	a.renderToScreen = renderToScreen
}

func (a *aoImpl) SetIntensity(intensity float32) {
	a.intensity = intensity
}

func (a *aoImpl) Intensity() float32 {
	return a.intensity
}

func (a *aoImpl) SetRadius(radius float32) {
	a.radius = radius
}

func (a *aoImpl) Radius() float32 {
	return a.radius
}

func (a *aoImpl) SetDistanceGate(minDistance, maxDistance float32) {
	a.minDistance = minDistance
	a.maxDistance = maxDistance
}

func (a *aoImpl) SetOutput(output Output) {
	a.output = output
}

func (a *aoImpl) Output() Output {
	return a.output
}

func (a *aoImpl) SetSize(width, height int) error {
	if a.disposed {
		return pass.ErrDisposed
	}
	if a.normalDepth != nil && width == a.width && height == a.height {
		return nil
	}

	a.releaseTargets()

	normalDepth, err := target.New(a.alloc, width, height,
		target.WithLabel("ao normal depth"),
		target.WithDepthBuffer(true),
	)
	if err != nil {
		return err
	}
	a.normalDepth = normalDepth

	for _, slot := range []struct {
		label string
		dst   *target.RenderTarget
	}{
		{"ao occlusion", &a.occlusion},
		{"ao blur h", &a.blurH},
		{"ao blur v", &a.blurV},
	} {
		t, tErr := target.New(a.alloc, width, height, target.WithLabel(slot.label))
		if tErr != nil {
			a.releaseTargets()
			return tErr
		}
		*slot.dst = t
	}

	a.width, a.height = width, height
	return nil
}

func (a *aoImpl) Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) error {
	if a.disposed {
		return pass.ErrDisposed
	}
	if a.normalDepth == nil {
		return pass.ErrNotInitialized
	}

	// 1. Normal/depth pre-pass. The clear color encodes a camera-facing
	// normal so untouched texels read as unoccludable background.
	priorClear := r.ClearColor()
	r.SetRenderTarget(a.normalDepth)
	r.SetClearColor(common.Color{R: 0.5, G: 0.5, B: 1.0, A: 1.0})
	if err := r.Clear(true, true, false); err != nil {
		r.SetClearColor(priorClear)
		return err
	}
	err := r.RenderSceneOverride(a.scene, a.cam, renderer.OverrideNormal)
	r.SetClearColor(priorClear)
	if err != nil {
		return err
	}

	// 2. Occlusion estimate (or a debug channel).
	outputChannel := int32(0)
	switch a.output {
	case OutputDepth:
		outputChannel = 1
	case OutputNormal:
		outputChannel = 2
	}
	r.SetRenderTarget(a.occlusion)
	err = r.DrawQuad(a.aoSh, shader.Uniforms{
		"cameraNear":                    shader.Float(a.cam.Near()),
		"cameraFar":                     shader.Float(a.cam.Far()),
		"intensity":                     shader.Float(a.intensity),
		"radius":                        shader.Float(a.radius),
		"bias":                          shader.Float(a.bias),
		"minDistance":                   shader.Float(a.minDistance),
		"maxDistance":                   shader.Float(a.maxDistance),
		"kernelSize":                    shader.Int(int32(a.kernelSize)),
		"outputChannel":                 shader.Int(outputChannel),
		"randomSeed":                    shader.Float(a.rng.Float32()),
		"resolution":                    shader.Vec2(mgl32.Vec2{float32(a.width), float32(a.height)}),
		"cameraProjectionMatrix":        shader.Mat4(a.cam.ProjectionMatrix()),
		"cameraInverseProjectionMatrix": shader.Mat4(a.cam.InverseProjectionMatrix()),
		"tDepth":                        shader.TextureValue(a.normalDepth.DepthTexture()),
		"tNormal":                       shader.TextureValue(a.normalDepth.ColorTexture()),
	})
	if err != nil {
		return err
	}

	// Debug channels bypass the blur and replace the chain output.
	if a.output == OutputDepth || a.output == OutputNormal {
		return a.composite(r, read, a.copySh, a.occlusion)
	}

	// 3. Depth-aware separable blur.
	invSize := mgl32.Vec2{1 / float32(a.width), 1 / float32(a.height)}
	depthCutoff := a.blurCutoff * (a.cam.Far() - a.cam.Near())
	for _, dir := range []struct {
		direction mgl32.Vec2
		src       target.RenderTarget
		dst       target.RenderTarget
	}{
		{mgl32.Vec2{1, 0}, a.occlusion, a.blurH},
		{mgl32.Vec2{0, 1}, a.blurH, a.blurV},
	} {
		r.SetRenderTarget(dir.dst)
		err = r.DrawQuad(a.blurSh, shader.Uniforms{
			"invSize":     shader.Vec2(invSize),
			"direction":   shader.Vec2(dir.direction),
			"stdDev":      shader.Float(a.blurStdDev),
			"depthCutoff": shader.Float(depthCutoff),
			"cameraNear":  shader.Float(a.cam.Near()),
			"cameraFar":   shader.Float(a.cam.Far()),
			"radius":      shader.Int(int32(a.blurRadius)),
			"tDiffuse":    shader.TextureValue(dir.src.ColorTexture()),
			"tDepth":      shader.TextureValue(a.normalDepth.DepthTexture()),
		})
		if err != nil {
			return err
		}
	}

	// 4. Composite: multiply visibility onto the scene image, or show the
	// visibility buffer itself.
	if a.output == OutputOcclusion {
		return a.composite(r, read, a.copySh, a.blurV)
	}
	return a.composite(r, read, a.multiplySh, a.blurV)
}

func (a *aoImpl) composite(r renderer.Renderer, read target.RenderTarget, sh shader.Shader, src target.RenderTarget) error {
	if a.renderToScreen {
		r.SetRenderTarget(nil)
	} else {
		r.SetRenderTarget(read)
	}
	return r.DrawQuad(sh, shader.Uniforms{
		"opacity":  shader.Float(1.0),
		"tDiffuse": shader.TextureValue(src.ColorTexture()),
	})
}

func (a *aoImpl) Dispose() {
	if a.disposed {
		return
	}
	a.disposed = true
	a.releaseTargets()
}

func (a *aoImpl) releaseTargets() {
	for _, t := range []target.RenderTarget{a.normalDepth, a.occlusion, a.blurH, a.blurV} {
		if t != nil {
			t.Dispose()
		}
	}
	a.normalDepth, a.occlusion, a.blurH, a.blurV = nil, nil, nil, nil
}
