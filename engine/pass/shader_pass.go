package pass

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
)

// shaderPassImpl is the implementation of the ShaderPass interface.
type shaderPassImpl struct {
	base

	sh        shader.Shader
	uniforms  shader.Uniforms
	textureID string
	disposed  bool
}

// ShaderPass defines the interface for a generic full-screen effect pass: it
// draws a single shader over the whole output, feeding the previous pass's
// color buffer in under a configurable uniform name (by convention
// "tDiffuse").
type ShaderPass interface {
	Pass

	// Shader retrieves the effect shader the pass draws with.
	//
	// Returns:
	//   - shader.Shader: the shader
	Shader() shader.Shader

	// Uniforms retrieves the pass's uniform values. Mutating the returned map
	// changes what the next Render draws with.
	//
	// Returns:
	//   - shader.Uniforms: the uniform values
	Uniforms() shader.Uniforms

	// SetUniform sets a single uniform value by name.
	//
	// Parameters:
	//   - name: the uniform name
	//   - value: the value to set
	SetUniform(name string, value shader.Uniform)

	// TextureID retrieves the uniform name the read buffer is bound under.
	//
	// Returns:
	//   - string: the uniform name
	TextureID() string
}

var _ ShaderPass = &shaderPassImpl{}

// NewShaderPass creates a full-screen effect pass for the given shader. The
// pass starts enabled with needsSwap set, and binds the read buffer under the
// uniform name "tDiffuse" unless overridden via WithTextureID.
//
// Parameters:
//   - sh: the effect shader to draw with
//   - options: functional options to configure the pass
//
// Returns:
//   - ShaderPass: the newly created pass
func NewShaderPass(sh shader.Shader, options ...ShaderPassBuilderOption) ShaderPass {
	p := &shaderPassImpl{
		base: base{
			kind:      KindGeneric,
			enabled:   true,
			needsSwap: true,
		},
		sh:        sh,
		uniforms:  sh.DefaultUniforms(),
		textureID: "tDiffuse",
	}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *shaderPassImpl) Shader() shader.Shader {
	return p.sh
}

func (p *shaderPassImpl) Uniforms() shader.Uniforms {
	return p.uniforms
}

func (p *shaderPassImpl) SetUniform(name string, value shader.Uniform) {
	p.uniforms[name] = value
}

func (p *shaderPassImpl) TextureID() string {
	return p.textureID
}

func (p *shaderPassImpl) Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) error {
	if p.disposed {
		return ErrDisposed
	}

	uniforms := p.uniforms.Clone()
	if read != nil {
		uniforms[p.textureID] = shader.TextureValue(read.ColorTexture())
	}

	p.bindOutput(r, write)
	if p.clear {
		if err := r.Clear(true, true, false); err != nil {
			return err
		}
	}
	return r.DrawQuad(p.sh, uniforms)
}

func (p *shaderPassImpl) Dispose() {
	p.disposed = true
}
