package pass

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// dotScreenPassImpl is the implementation of the DotScreenPass interface.
type dotScreenPassImpl struct {
	ShaderPass
}

// DotScreenPass defines the interface for the halftone dot pattern effect.
type DotScreenPass interface {
	Pass

	// SetAngle sets the rotation of the dot grid in radians.
	//
	// Parameters:
	//   - angle: the rotation in radians
	SetAngle(angle float32)

	// SetScale sets the size of the dot grid; larger values produce smaller
	// dots.
	//
	// Parameters:
	//   - scale: the grid scale
	SetScale(scale float32)
}

var _ DotScreenPass = &dotScreenPassImpl{}

// NewDotScreenPass creates a halftone effect pass.
//
// Returns:
//   - DotScreenPass: the newly created pass
func NewDotScreenPass() DotScreenPass {
	return &dotScreenPassImpl{
		ShaderPass: NewShaderPass(shader.DotScreen(),
			WithUniformValue("center", shader.Vec2(mgl32.Vec2{0.5, 0.5})),
			WithUniformValue("angle", shader.Float(1.57)),
			WithUniformValue("scale", shader.Float(1.0)),
		),
	}
}

func (p *dotScreenPassImpl) SetAngle(angle float32) {
	p.SetUniform("angle", shader.Float(angle))
}

func (p *dotScreenPassImpl) SetScale(scale float32) {
	p.SetUniform("scale", shader.Float(scale))
}

func (p *dotScreenPassImpl) SetSize(width, height int) error {
	if err := p.ShaderPass.SetSize(width, height); err != nil {
		return err
	}
	p.SetUniform("tSize", shader.Vec2(mgl32.Vec2{float32(width), float32(height)}))
	return nil
}
