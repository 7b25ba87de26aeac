package pass

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// fxaaPassImpl is the implementation of the FXAAPass interface.
type fxaaPassImpl struct {
	ShaderPass
}

// FXAAPass defines the interface for the fast approximate anti-aliasing
// effect. The pass tracks the composition resolution through SetSize; no
// other configuration is needed.
type FXAAPass interface {
	Pass
}

var _ FXAAPass = &fxaaPassImpl{}

// NewFXAAPass creates an anti-aliasing pass.
//
// Returns:
//   - FXAAPass: the newly created pass
func NewFXAAPass() FXAAPass {
	return &fxaaPassImpl{
		ShaderPass: NewShaderPass(shader.FXAA(),
			WithUniformValue("resolution", shader.Vec2(mgl32.Vec2{1, 1})),
		),
	}
}

func (p *fxaaPassImpl) SetSize(width, height int) error {
	if err := p.ShaderPass.SetSize(width, height); err != nil {
		return err
	}
	p.SetUniform("resolution", shader.Vec2(mgl32.Vec2{float32(width), float32(height)}))
	return nil
}
