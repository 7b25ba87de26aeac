package pass

import (
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
	"github.com/cogentcore/webgpu/wgpu"
)

// displacementSize is the side length of the random heightmap driving band
// distortion.
const displacementSize = 64

// glitchPassImpl is the implementation of the GlitchPass interface.
type glitchPassImpl struct {
	base

	sh           shader.Shader
	displacement target.Texture
	goWild       bool

	curFrame    int
	randomFrame int
	rng         *rand.Rand

	disposed bool
}

// GlitchPass defines the interface for the digital glitch effect: random
// frames get band distortion driven by a noise heightmap, RGB channel
// tearing, and snow. In wild mode every frame glitches; otherwise the effect
// fires in random bursts.
type GlitchPass interface {
	Pass

	// GoWild reports whether every frame glitches.
	//
	// Returns:
	//   - bool: true when wild mode is on
	GoWild() bool

	// SetGoWild toggles glitching on every frame.
	//
	// Parameters:
	//   - wild: whether every frame glitches
	SetGoWild(wild bool)
}

var _ GlitchPass = &glitchPassImpl{}

// NewGlitchPass creates a glitch effect pass. The noise heightmap is
// generated on the CPU, one row per pooled worker task, and uploaded once.
//
// Parameters:
//   - alloc: the allocator used to upload the displacement heightmap
//   - options: functional options to configure the pass
//
// Returns:
//   - GlitchPass: the newly created pass
//   - error: an error if the heightmap texture could not be allocated
func NewGlitchPass(alloc target.Allocator, options ...GlitchPassBuilderOption) (GlitchPass, error) {
	p := &glitchPassImpl{
		base: base{
			kind:      KindGeneric,
			enabled:   true,
			needsSwap: true,
		},
		sh:  shader.Glitch(),
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, option := range options {
		option(p)
	}

	displacement, err := alloc.AllocateTexture(target.TextureDescriptor{
		Label:         "glitch displacement",
		Width:         displacementSize,
		Height:        displacementSize,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		MipLevelCount: 1,
		SampleCount:   1,
		Pixels:        generateHeightmap(p.rng.Int63()),
	})
	if err != nil {
		return nil, err
	}
	p.displacement = displacement
	p.randomFrame = p.rng.Intn(240) + 120

	return p, nil
}

// generateHeightmap fills a square RGBA8 noise texture, one row per worker
// task. Each row seeds its own source so rows are independent of scheduling
// order.
func generateHeightmap(seed int64) []byte {
	pixels := make([]byte, displacementSize*displacementSize*4)

	pool := worker.NewDynamicWorkerPool(max(runtime.NumCPU()-1, 1), displacementSize, 1*time.Second)
	var wg sync.WaitGroup
	for row := 0; row < displacementSize; row++ {
		wg.Add(1)
		rowCap := row
		pool.SubmitTask(worker.Task{
			ID: row,
			Do: func() (any, error) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(seed + int64(rowCap)))
				offset := rowCap * displacementSize * 4
				for x := 0; x < displacementSize; x++ {
					v := byte(rng.Intn(256))
					i := offset + x*4
					pixels[i+0] = v
					pixels[i+1] = v
					pixels[i+2] = v
					pixels[i+3] = 0xFF
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	return pixels
}

func (p *glitchPassImpl) GoWild() bool {
	return p.goWild
}

func (p *glitchPassImpl) SetGoWild(wild bool) {
	p.goWild = wild
}

func (p *glitchPassImpl) Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) error {
	if p.disposed {
		return ErrDisposed
	}

	uniforms := shader.Uniforms{
		"seed":     shader.Float(p.rng.Float32()),
		"byp":      shader.Bool(true),
		"tDiffuse": shader.TextureValue(read.ColorTexture()),
		"tDisp":    shader.TextureValue(p.displacement),
	}
	uniforms["amount"] = shader.Float(0)
	uniforms["angle"] = shader.Float(0)
	uniforms["seedX"] = shader.Float(0)
	uniforms["seedY"] = shader.Float(0)
	uniforms["distortionX"] = shader.Float(0)
	uniforms["distortionY"] = shader.Float(0)
	uniforms["colS"] = shader.Float(0)

	switch {
	case p.curFrame == 0 || p.goWild:
		// Full-strength burst frame.
		uniforms["byp"] = shader.Bool(false)
		uniforms["amount"] = shader.Float(p.rng.Float32() / 30)
		uniforms["angle"] = shader.Float(randRange(p.rng, -math.Pi, math.Pi))
		uniforms["seedX"] = shader.Float(randRange(p.rng, -1, 1))
		uniforms["seedY"] = shader.Float(randRange(p.rng, -1, 1))
		uniforms["distortionX"] = shader.Float(randRange(p.rng, 0, 1))
		uniforms["distortionY"] = shader.Float(randRange(p.rng, 0, 1))
		uniforms["colS"] = shader.Float(randRange(p.rng, 0.3, 0.6))
	case p.curFrame < p.randomFrame/5:
		// Decaying tail after the burst.
		uniforms["byp"] = shader.Bool(false)
		uniforms["amount"] = shader.Float(p.rng.Float32() / 90)
		uniforms["angle"] = shader.Float(randRange(p.rng, -math.Pi, math.Pi))
		uniforms["distortionX"] = shader.Float(randRange(p.rng, 0, 1))
		uniforms["distortionY"] = shader.Float(randRange(p.rng, 0, 1))
		uniforms["seedX"] = shader.Float(randRange(p.rng, -0.3, 0.3))
		uniforms["seedY"] = shader.Float(randRange(p.rng, -0.3, 0.3))
	}

	p.curFrame++
	if p.curFrame >= p.randomFrame {
		p.curFrame = 0
		p.randomFrame = p.rng.Intn(240) + 120
	}

	p.bindOutput(r, write)
	return r.DrawQuad(p.sh, uniforms)
}

func (p *glitchPassImpl) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	if p.displacement != nil {
		p.displacement.Release()
		p.displacement = nil
	}
}

func randRange(rng *rand.Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}
