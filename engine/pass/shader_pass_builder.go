package pass

import "github.com/Carmen-Shannon/oxy-fx/engine/shader"

// ShaderPassBuilderOption is a functional option applied to a shader pass during construction via NewShaderPass.
type ShaderPassBuilderOption func(*shaderPassImpl)

// WithTextureID overrides the uniform name the read buffer is bound under.
//
// Parameters:
//   - textureID: the uniform name, e.g. "tNew"
//
// Returns:
//   - ShaderPassBuilderOption: a function that applies the texture ID option to a shader pass
func WithTextureID(textureID string) ShaderPassBuilderOption {
	return func(p *shaderPassImpl) {
		p.textureID = textureID
	}
}

// WithUniformValue sets an initial uniform value on the pass.
//
// Parameters:
//   - name: the uniform name
//   - value: the value to set
//
// Returns:
//   - ShaderPassBuilderOption: a function that applies the uniform value option to a shader pass
func WithUniformValue(name string, value shader.Uniform) ShaderPassBuilderOption {
	return func(p *shaderPassImpl) {
		p.uniforms[name] = value
	}
}

// WithRenderToScreen makes the pass write to the window surface instead of
// the write buffer.
//
// Returns:
//   - ShaderPassBuilderOption: a function that applies the render-to-screen option to a shader pass
func WithRenderToScreen() ShaderPassBuilderOption {
	return func(p *shaderPassImpl) {
		p.renderToScreen = true
	}
}
