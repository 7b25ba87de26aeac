package pass

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
)

// filmPassImpl is the implementation of the FilmPass interface.
type filmPassImpl struct {
	ShaderPass
	time float32
}

// FilmPass defines the interface for the film grain and scanline effect.
type FilmPass interface {
	Pass

	// SetNoiseIntensity sets the strength of the animated grain.
	//
	// Parameters:
	//   - intensity: the grain intensity
	SetNoiseIntensity(intensity float32)

	// SetScanlineIntensity sets the strength of the scanline darkening.
	//
	// Parameters:
	//   - intensity: the scanline intensity
	SetScanlineIntensity(intensity float32)

	// SetScanlineCount sets the number of scanlines across the output.
	//
	// Parameters:
	//   - count: the scanline count
	SetScanlineCount(count float32)

	// SetGrayscale switches the output to grayscale.
	//
	// Parameters:
	//   - grayscale: whether the output is grayscale
	SetGrayscale(grayscale bool)
}

var _ FilmPass = &filmPassImpl{}

// NewFilmPass creates a film grain effect pass with moderate defaults.
//
// Returns:
//   - FilmPass: the newly created pass
func NewFilmPass() FilmPass {
	return &filmPassImpl{
		ShaderPass: NewShaderPass(shader.Film(),
			WithUniformValue("noiseIntensity", shader.Float(0.5)),
			WithUniformValue("scanlineIntensity", shader.Float(0.05)),
			WithUniformValue("scanlineCount", shader.Float(4096)),
		),
	}
}

func (p *filmPassImpl) SetNoiseIntensity(intensity float32) {
	p.SetUniform("noiseIntensity", shader.Float(intensity))
}

func (p *filmPassImpl) SetScanlineIntensity(intensity float32) {
	p.SetUniform("scanlineIntensity", shader.Float(intensity))
}

func (p *filmPassImpl) SetScanlineCount(count float32) {
	p.SetUniform("scanlineCount", shader.Float(count))
}

func (p *filmPassImpl) SetGrayscale(grayscale bool) {
	p.SetUniform("grayscale", shader.Bool(grayscale))
}

func (p *filmPassImpl) Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) error {
	p.time += deltaTime
	p.SetUniform("time", shader.Float(p.time))
	return p.ShaderPass.Render(r, write, read, deltaTime, maskActive)
}
