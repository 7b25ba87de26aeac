package shader

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFragmentSource = `
struct Params {
    strength: f32,
    enabled: i32,
    tint: vec4f,
};
@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var smp: sampler;
@group(0) @binding(2) var tDiffuse: texture_2d<f32>;
@group(0) @binding(3) var tDepth: texture_depth_2d;

@fragment
fn fs_main(@location(0) uv: vec2f) -> @location(0) vec4f {
    return textureSample(tDiffuse, smp, uv) * params.tint * params.strength;
}
`

func testShaderOptions() []ShaderBuilderOption {
	return []ShaderBuilderOption{
		WithUniform("strength", KindFloat),
		WithUniform("enabled", KindBool),
		WithUniform("tint", KindVec4),
		WithTexture("tDiffuse"),
		WithTexture("tDepth"),
	}
}

func TestNewValidShader(t *testing.T) {
	s, err := New("test", testFragmentSource, testShaderOptions()...)
	require.NoError(t, err)

	assert.Equal(t, "test", s.Key())
	assert.Equal(t, BlendNone, s.Blend())
	assert.Len(t, s.Declarations(), 5)
	assert.Equal(t, []string{"tDiffuse", "tDepth"}, s.TextureNames())
	assert.False(t, s.IsDepthTexture("tDiffuse"))
	assert.True(t, s.IsDepthTexture("tDepth"))
	assert.NotEmpty(t, s.VertexSource())
	assert.Equal(t, testFragmentSource, s.FragmentSource())
}

func TestNewRejectsDeclarationMismatch(t *testing.T) {
	tests := []struct {
		name    string
		options []ShaderBuilderOption
	}{
		{
			name: "missing uniform declaration",
			options: []ShaderBuilderOption{
				WithUniform("strength", KindFloat),
				WithUniform("enabled", KindBool),
				WithTexture("tDiffuse"),
				WithTexture("tDepth"),
			},
		},
		{
			name: "wrong field order",
			options: []ShaderBuilderOption{
				WithUniform("enabled", KindBool),
				WithUniform("strength", KindFloat),
				WithUniform("tint", KindVec4),
				WithTexture("tDiffuse"),
				WithTexture("tDepth"),
			},
		},
		{
			name: "wrong kind",
			options: []ShaderBuilderOption{
				WithUniform("strength", KindVec2),
				WithUniform("enabled", KindBool),
				WithUniform("tint", KindVec4),
				WithTexture("tDiffuse"),
				WithTexture("tDepth"),
			},
		},
		{
			name: "wrong texture name",
			options: []ShaderBuilderOption{
				WithUniform("strength", KindFloat),
				WithUniform("enabled", KindBool),
				WithUniform("tint", KindVec4),
				WithTexture("tColor"),
				WithTexture("tDepth"),
			},
		},
		{
			name: "missing texture declaration",
			options: []ShaderBuilderOption{
				WithUniform("strength", KindFloat),
				WithUniform("enabled", KindBool),
				WithUniform("tint", KindVec4),
				WithTexture("tDiffuse"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New("test", testFragmentSource, tt.options...)
			assert.Nil(t, s)
			assert.Error(t, err)
		})
	}
}

func TestDefaultUniforms(t *testing.T) {
	s, err := New("test", testFragmentSource, testShaderOptions()...)
	require.NoError(t, err)

	u := s.DefaultUniforms()
	assert.Len(t, u, 3)
	assert.Equal(t, KindFloat, u["strength"].Kind())
	assert.Equal(t, KindBool, u["enabled"].Kind())
	assert.Equal(t, KindVec4, u["tint"].Kind())
	_, hasTexture := u["tDiffuse"]
	assert.False(t, hasTexture, "texture uniforms are left unset")

	// Defaults must pack without error.
	_, packErr := Pack(s.Declarations(), u)
	assert.NoError(t, packErr)
}

func TestUniformsClone(t *testing.T) {
	u := Uniforms{"strength": Float(2)}
	c := u.Clone()
	c["strength"] = Float(7)
	assert.Equal(t, float32(2), u["strength"].Float32())
	assert.Equal(t, float32(7), c["strength"].Float32())
}

func TestPackLayout(t *testing.T) {
	f32At := func(b []byte, offset int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[offset:]))
	}

	t.Run("single float rounds to 16", func(t *testing.T) {
		decls := []UniformDecl{{Name: "a", Kind: KindFloat}}
		b, err := Pack(decls, Uniforms{"a": Float(1.5)})
		require.NoError(t, err)
		assert.Len(t, b, 16)
		assert.Equal(t, float32(1.5), f32At(b, 0))
	})

	t.Run("vec2 aligns to 8", func(t *testing.T) {
		decls := []UniformDecl{
			{Name: "a", Kind: KindFloat},
			{Name: "b", Kind: KindVec2},
		}
		b, err := Pack(decls, Uniforms{
			"a": Float(1),
			"b": Vec2(mgl32.Vec2{2, 3}),
		})
		require.NoError(t, err)
		assert.Len(t, b, 16)
		assert.Equal(t, float32(2), f32At(b, 8))
		assert.Equal(t, float32(3), f32At(b, 12))
	})

	t.Run("vec3 aligns to 16", func(t *testing.T) {
		decls := []UniformDecl{
			{Name: "a", Kind: KindFloat},
			{Name: "b", Kind: KindVec3},
		}
		b, err := Pack(decls, Uniforms{
			"a": Float(1),
			"b": Vec3(mgl32.Vec3{2, 3, 4}),
		})
		require.NoError(t, err)
		assert.Len(t, b, 32)
		assert.Equal(t, float32(2), f32At(b, 16))
		assert.Equal(t, float32(4), f32At(b, 24))
	})

	t.Run("mat4", func(t *testing.T) {
		decls := []UniformDecl{{Name: "m", Kind: KindMat4}}
		b, err := Pack(decls, Uniforms{"m": Mat4(mgl32.Ident4())})
		require.NoError(t, err)
		assert.Len(t, b, 64)
		assert.Equal(t, float32(1), f32At(b, 0))
		assert.Equal(t, float32(1), f32At(b, 5*4))
		assert.Equal(t, float32(0), f32At(b, 4))
	})

	t.Run("bool packs as i32", func(t *testing.T) {
		decls := []UniformDecl{
			{Name: "on", Kind: KindBool},
			{Name: "n", Kind: KindInt},
		}
		b, err := Pack(decls, Uniforms{
			"on": Bool(true),
			"n":  Int(-3),
		})
		require.NoError(t, err)
		assert.Len(t, b, 16)
		assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(b[0:]))
		assert.Equal(t, int32(-3), int32(binary.LittleEndian.Uint32(b[4:])))
	})

	t.Run("textures have no buffer footprint", func(t *testing.T) {
		decls := []UniformDecl{
			{Name: "tDiffuse", Kind: KindTexture},
			{Name: "a", Kind: KindFloat},
		}
		b, err := Pack(decls, Uniforms{"a": Float(9)})
		require.NoError(t, err)
		assert.Len(t, b, 16)
		assert.Equal(t, float32(9), f32At(b, 0))
	})

	t.Run("texture-only shader packs nil", func(t *testing.T) {
		decls := []UniformDecl{{Name: "tDiffuse", Kind: KindTexture}}
		b, err := Pack(decls, nil)
		require.NoError(t, err)
		assert.Nil(t, b)
	})
}

func TestPackErrors(t *testing.T) {
	decls := []UniformDecl{{Name: "strength", Kind: KindFloat}}

	_, err := Pack(decls, Uniforms{})
	assert.ErrorIs(t, err, ErrMissingUniform)

	_, err = Pack(decls, Uniforms{"strength": Int(1)})
	assert.ErrorIs(t, err, ErrUniformKind)
}

func TestLibraryShaders(t *testing.T) {
	tests := []struct {
		name   string
		shader Shader
		key    string
		blend  BlendMode
	}{
		{name: "copy", shader: Copy(), key: "copy", blend: BlendNone},
		{name: "copy multiply", shader: Copy(WithBlend(BlendMultiply)), key: "copy", blend: BlendMultiply},
		{name: "highpass", shader: LuminosityHighPass(), key: "luminosity_highpass", blend: BlendNone},
		{name: "gaussian blur", shader: GaussianBlur(), key: "gaussian_blur", blend: BlendNone},
		{name: "bloom composite", shader: BloomComposite(), key: "bloom_composite", blend: BlendAdditive},
		{name: "film", shader: Film(), key: "film", blend: BlendNone},
		{name: "dotscreen", shader: DotScreen(), key: "dotscreen", blend: BlendNone},
		{name: "glitch", shader: Glitch(), key: "glitch", blend: BlendNone},
		{name: "fxaa", shader: FXAA(), key: "fxaa", blend: BlendNone},
		{name: "afterimage", shader: Afterimage(), key: "afterimage", blend: BlendNone},
		{name: "output", shader: Output(), key: "output", blend: BlendNone},
		{name: "ao", shader: AO(), key: "ao", blend: BlendNone},
		{name: "ao blur", shader: AOBlur(), key: "ao_blur", blend: BlendNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.shader.Key())
			assert.Equal(t, tt.blend, tt.shader.Blend())
			assert.NotEmpty(t, tt.shader.Declarations())

			// Every library shader's defaults pack cleanly.
			_, err := Pack(tt.shader.Declarations(), tt.shader.DefaultUniforms())
			assert.NoError(t, err)
		})
	}
}

func TestBloomCompositeDeclaresEightLevels(t *testing.T) {
	s := BloomComposite()
	assert.Len(t, s.TextureNames(), 8)
}

func TestAODepthTextureBinding(t *testing.T) {
	s := AO()
	assert.True(t, s.IsDepthTexture("tDepth"))
	assert.False(t, s.IsDepthTexture("tNormal"))

	blur := AOBlur()
	assert.True(t, blur.IsDepthTexture("tDepth"))
	assert.False(t, blur.IsDepthTexture("tDiffuse"))
}
