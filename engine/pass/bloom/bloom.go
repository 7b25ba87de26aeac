package bloom

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/pass"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxLevels is the deepest mip pyramid the bloom builds. The composite
// shader carries one fixed weight per level.
const MaxLevels = 8

// kernelRadii holds the gaussian kernel radius used at each pyramid level.
// Deeper levels cover lower resolutions, so the radii grow to keep the blur
// footprint roughly constant in screen space.
var kernelRadii = [MaxLevels]int{3, 5, 7, 9, 11, 13, 15, 17}

// bloomImpl is the implementation of the Bloom interface.
type bloomImpl struct {
	strength    float32
	radius      float32
	threshold   float32
	smoothWidth float32
	maxLevels   int

	enabled        bool
	renderToScreen bool

	alloc       target.Allocator
	highpassSh  shader.Shader
	blurSh      shader.Shader
	compositeSh shader.Shader

	bright     target.RenderTarget
	horizontal []target.RenderTarget
	vertical   []target.RenderTarget
	levels     int

	width    int
	height   int
	disposed bool
}

// Bloom defines the interface for the multi-resolution bloom effect. Bright
// regions above a soft luminance threshold are extracted, blurred across a
// mip pyramid with per-level gaussian kernels, and composited additively
// back onto the previous pass's buffer. The pass does not swap buffers.
type Bloom interface {
	pass.Pass

	// Strength retrieves the overall bloom intensity.
	//
	// Returns:
	//   - float32: the strength
	Strength() float32

	// SetStrength sets the overall bloom intensity.
	//
	// Parameters:
	//   - strength: the strength
	SetStrength(strength float32)

	// Radius retrieves the spread factor shifting weight toward the deeper,
	// blurrier pyramid levels.
	//
	// Returns:
	//   - float32: the radius in [0, 1]
	Radius() float32

	// SetRadius sets the spread factor.
	//
	// Parameters:
	//   - radius: the radius in [0, 1]
	SetRadius(radius float32)

	// Threshold retrieves the luminance threshold below which texels
	// contribute no bloom.
	//
	// Returns:
	//   - float32: the threshold
	Threshold() float32

	// SetThreshold sets the luminance threshold.
	//
	// Parameters:
	//   - threshold: the threshold
	SetThreshold(threshold float32)
}

var _ Bloom = &bloomImpl{}

// New creates a bloom pass. Internal pyramid buffers are allocated on the
// first SetSize; rendering before that returns pass.ErrNotInitialized.
//
// Parameters:
//   - alloc: the allocator for the internal pyramid buffers
//   - options: functional options to configure the pass
//
// Returns:
//   - Bloom: the newly created pass
func New(alloc target.Allocator, options ...BloomBuilderOption) Bloom {
	b := &bloomImpl{
		strength:    1.0,
		radius:      0.0,
		threshold:   0.8,
		smoothWidth: 0.01,
		maxLevels:   MaxLevels,
		enabled:     true,
		alloc:       alloc,
		highpassSh:  shader.LuminosityHighPass(),
		blurSh:      shader.GaussianBlur(),
		compositeSh: shader.BloomComposite(),
	}
	for _, option := range options {
		option(b)
	}
	return b
}

func (b *bloomImpl) Kind() pass.Kind {
	return pass.KindGeneric
}

func (b *bloomImpl) Enabled() bool {
	return b.enabled
}

func (b *bloomImpl) SetEnabled(enabled bool) {
	b.enabled = enabled
}

// NeedsSwap is always false: the bloom composites additively onto the read
// buffer instead of producing output in the write buffer.
func (b *bloomImpl) NeedsSwap() bool {
	return false
}

func (b *bloomImpl) SetNeedsSwap(bool) {}

func (b *bloomImpl) Clear() bool {
	return false
}

func (b *bloomImpl) SetClear(bool) {}

func (b *bloomImpl) RenderToScreen() bool {
	return b.renderToScreen
}

func (b *bloomImpl) SetRenderToScreen(renderToScreen bool) {
	b.renderToScreen = renderToScreen
}

func (b *bloomImpl) Strength() float32 {
	return b.strength
}

func (b *bloomImpl) SetStrength(strength float32) {
	b.strength = strength
}

func (b *bloomImpl) Radius() float32 {
	return b.radius
}

func (b *bloomImpl) SetRadius(radius float32) {
	b.radius = radius
}

func (b *bloomImpl) Threshold() float32 {
	return b.threshold
}

func (b *bloomImpl) SetThreshold(threshold float32) {
	b.threshold = threshold
}

func (b *bloomImpl) SetSize(width, height int) error {
	if b.disposed {
		return pass.ErrDisposed
	}
	if b.bright != nil && width == b.width && height == b.height {
		return nil
	}

	b.releaseTargets()

	// The level count follows the full composition resolution; the pyramid
	// itself starts at half resolution and halves at each level.
	b.levels = common.MipLevels(width, height, b.maxLevels)
	resX, resY := max(width/2, 1), max(height/2, 1)

	bright, err := target.New(b.alloc, resX, resY, target.WithLabel("bloom bright"))
	if err != nil {
		return err
	}
	b.bright = bright

	for i := 0; i < b.levels; i++ {
		h, hErr := target.New(b.alloc, resX, resY, target.WithLabel("bloom blur h"))
		if hErr != nil {
			b.releaseTargets()
			return hErr
		}
		v, vErr := target.New(b.alloc, resX, resY, target.WithLabel("bloom blur v"))
		if vErr != nil {
			h.Dispose()
			b.releaseTargets()
			return vErr
		}
		b.horizontal = append(b.horizontal, h)
		b.vertical = append(b.vertical, v)
		resX, resY = max(resX/2, 1), max(resY/2, 1)
	}

	b.width, b.height = width, height
	return nil
}

func (b *bloomImpl) Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) error {
	if b.disposed {
		return pass.ErrDisposed
	}
	if b.bright == nil {
		return pass.ErrNotInitialized
	}

	// 1. Extract bright regions above the soft threshold.
	r.SetRenderTarget(b.bright)
	err := r.DrawQuad(b.highpassSh, shader.Uniforms{
		"luminosityThreshold": shader.Float(b.threshold),
		"smoothWidth":         shader.Float(b.smoothWidth),
		"tDiffuse":            shader.TextureValue(read.ColorTexture()),
	})
	if err != nil {
		return err
	}

	// 2. Separable gaussian blur down the pyramid, each level feeding the
	// next.
	input := b.bright
	for i := 0; i < b.levels; i++ {
		radius := kernelRadii[i]
		invSize := mgl32.Vec2{
			1 / float32(b.horizontal[i].Width()),
			1 / float32(b.horizontal[i].Height()),
		}

		r.SetRenderTarget(b.horizontal[i])
		err = r.DrawQuad(b.blurSh, shader.Uniforms{
			"invSize":      shader.Vec2(invSize),
			"direction":    shader.Vec2(mgl32.Vec2{1, 0}),
			"sigma":        shader.Float(float32(radius)),
			"kernelRadius": shader.Int(int32(radius)),
			"tDiffuse":     shader.TextureValue(input.ColorTexture()),
		})
		if err != nil {
			return err
		}

		r.SetRenderTarget(b.vertical[i])
		err = r.DrawQuad(b.blurSh, shader.Uniforms{
			"invSize":      shader.Vec2(invSize),
			"direction":    shader.Vec2(mgl32.Vec2{0, 1}),
			"sigma":        shader.Float(float32(radius)),
			"kernelRadius": shader.Int(int32(radius)),
			"tDiffuse":     shader.TextureValue(b.horizontal[i].ColorTexture()),
		})
		if err != nil {
			return err
		}

		input = b.vertical[i]
	}

	// 3. Composite the weighted pyramid additively onto the read buffer.
	// Unused texture slots are bound to the deepest level; the levels
	// uniform zeroes their weights.
	uniforms := shader.Uniforms{
		"strength": shader.Float(b.strength),
		"radius":   shader.Float(b.radius),
		"levels":   shader.Int(int32(b.levels)),
	}
	blurNames := [MaxLevels]string{"tBlur1", "tBlur2", "tBlur3", "tBlur4", "tBlur5", "tBlur6", "tBlur7", "tBlur8"}
	for i, name := range blurNames {
		level := min(i, b.levels-1)
		uniforms[name] = shader.TextureValue(b.vertical[level].ColorTexture())
	}

	if b.renderToScreen {
		r.SetRenderTarget(nil)
	} else {
		r.SetRenderTarget(read)
	}
	return r.DrawQuad(b.compositeSh, uniforms)
}

func (b *bloomImpl) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	b.releaseTargets()
}

func (b *bloomImpl) releaseTargets() {
	if b.bright != nil {
		b.bright.Dispose()
		b.bright = nil
	}
	for _, t := range b.horizontal {
		t.Dispose()
	}
	for _, t := range b.vertical {
		t.Dispose()
	}
	b.horizontal, b.vertical = nil, nil
	b.levels = 0
}
