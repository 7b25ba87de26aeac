package shader

// ShaderBuilderOption is a functional option used to configure a Shader
// during construction.
type ShaderBuilderOption func(*shaderImpl)

// WithUniform declares one buffer-resident uniform. Declaration order must
// match the field order of the fragment source's Params struct.
//
// Parameters:
//   - name: the WGSL field name
//   - kind: the value kind (KindFloat, KindVec2, ... but not KindTexture)
//
// Returns:
//   - ShaderBuilderOption: a function that appends the declaration
func WithUniform(name string, kind Kind) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.decls = append(s.decls, UniformDecl{Name: name, Kind: kind})
	}
}

// WithTexture declares one 2D texture uniform. Declaration order must match
// the fragment source's texture binding order (bindings 2, 3, ...).
//
// Parameters:
//   - name: the WGSL binding variable name
//
// Returns:
//   - ShaderBuilderOption: a function that appends the declaration
func WithTexture(name string) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.decls = append(s.decls, UniformDecl{Name: name, Kind: KindTexture})
	}
}

// WithBlend sets the blend mode used when this shader is drawn.
//
// Parameters:
//   - mode: the blend mode (BlendNone, BlendNormal, BlendAdditive, BlendMultiply)
//
// Returns:
//   - ShaderBuilderOption: a function that sets the blend mode
func WithBlend(mode BlendMode) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.blend = mode
	}
}

// WithVertexSource overrides the shared full-screen triangle vertex stage.
// Effect shaders rarely need this; it exists for shaders that compute extra
// per-vertex outputs.
//
// Parameters:
//   - source: the replacement vertex WGSL
//
// Returns:
//   - ShaderBuilderOption: a function that sets the vertex source
func WithVertexSource(source string) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.vertexSource = source
	}
}
