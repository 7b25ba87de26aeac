package pass

import "github.com/Carmen-Shannon/oxy-fx/engine/shader"

// ToneMapping selects the tone mapping curve the output pass applies.
type ToneMapping int32

const (
	// ToneMappingNone applies no tone mapping, only exposure and encoding.
	ToneMappingNone ToneMapping = iota

	// ToneMappingReinhard applies the Reinhard curve.
	ToneMappingReinhard

	// ToneMappingACES applies the ACES filmic approximation.
	ToneMappingACES
)

// outputPassImpl is the implementation of the OutputPass interface.
type outputPassImpl struct {
	ShaderPass
}

// OutputPass defines the interface for the final presentation pass: exposure,
// tone mapping, and linear-to-sRGB encoding. Typically the last pass in a
// chain, with renderToScreen set by the composer.
type OutputPass interface {
	Pass

	// SetToneMapping selects the tone mapping curve.
	//
	// Parameters:
	//   - mode: the tone mapping mode
	SetToneMapping(mode ToneMapping)

	// SetExposure sets the exposure multiplier applied before tone mapping.
	//
	// Parameters:
	//   - exposure: the exposure multiplier
	SetExposure(exposure float32)
}

var _ OutputPass = &outputPassImpl{}

// NewOutputPass creates an output pass with exposure 1 and no tone mapping.
//
// Returns:
//   - OutputPass: the newly created pass
func NewOutputPass() OutputPass {
	return &outputPassImpl{
		ShaderPass: NewShaderPass(shader.Output(),
			WithUniformValue("exposure", shader.Float(1.0)),
		),
	}
}

func (p *outputPassImpl) SetToneMapping(mode ToneMapping) {
	p.SetUniform("toneMapping", shader.Int(int32(mode)))
}

func (p *outputPassImpl) SetExposure(exposure float32) {
	p.SetUniform("exposure", shader.Float(exposure))
}
