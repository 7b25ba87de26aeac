package shader

import (
	"fmt"
	"regexp"
	"strings"
)

// BlendMode identifies how a full-screen draw blends into the bound color
// attachment.
type BlendMode int

const (
	// BlendNone overwrites the destination.
	BlendNone BlendMode = iota

	// BlendNormal is standard source-over alpha blending.
	BlendNormal

	// BlendAdditive adds the source to the destination (bloom composite).
	BlendAdditive

	// BlendMultiply multiplies the destination by the source (occlusion
	// modulation).
	BlendMultiply
)

// shaderImpl is the implementation of the Shader interface.
type shaderImpl struct {
	key            string
	vertexSource   string
	fragmentSource string
	decls          []UniformDecl
	blend          BlendMode
	depthTextures  map[string]bool
}

// Shader defines the interface for a full-screen effect shader: one WGSL
// fragment stage run over a viewport-covering triangle, plus the ordered
// uniform declarations that describe its bindable interface. The declarations
// are validated against the WGSL source at construction, so a mismatch
// between the Go-side uniform map and the shader is a constructor error
// rather than a draw-time surprise.
//
// Binding convention shared by every effect shader:
//   - @group(0) @binding(0): var<uniform> params (when buffer uniforms are declared)
//   - @group(0) @binding(1): var smp: sampler (when textures are declared)
//   - @group(0) @binding(2+i): the i-th declared texture
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for pipeline
	// caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// VertexSource retrieves the WGSL source of the shared full-screen
	// triangle vertex stage.
	//
	// Returns:
	//   - string: the vertex WGSL source
	VertexSource() string

	// FragmentSource retrieves the WGSL source of the effect fragment stage.
	//
	// Returns:
	//   - string: the fragment WGSL source
	FragmentSource() string

	// Declarations retrieves the ordered uniform declarations, buffer fields
	// first in WGSL struct order, then textures in binding order.
	//
	// Returns:
	//   - []UniformDecl: the declaration list
	Declarations() []UniformDecl

	// TextureNames retrieves the declared texture uniform names in binding
	// order.
	//
	// Returns:
	//   - []string: texture names, possibly empty
	TextureNames() []string

	// IsDepthTexture reports whether the named texture binding is declared as
	// a depth texture (texture_depth_2d) rather than a float color texture.
	//
	// Parameters:
	//   - name: the texture uniform name
	//
	// Returns:
	//   - bool: true for depth texture bindings
	IsDepthTexture(name string) bool

	// Blend retrieves the blend mode full-screen draws of this shader use.
	//
	// Returns:
	//   - BlendMode: the blend mode
	Blend() BlendMode

	// DefaultUniforms builds a uniform map holding a zero value of the
	// declared kind for every buffer-resident uniform. Texture uniforms are
	// left unset.
	//
	// Returns:
	//   - Uniforms: the default uniform map
	DefaultUniforms() Uniforms
}

var _ Shader = &shaderImpl{}

var (
	paramsStructRe = regexp.MustCompile(`struct\s+Params\s*\{([^}]*)\}`)
	paramsFieldRe  = regexp.MustCompile(`(\w+)\s*:\s*([\w<>]+)`)
	textureVarRe   = regexp.MustCompile(`@group\(0\)\s*@binding\((\d+)\)\s*var\s+(\w+)\s*:\s*(texture_2d<f32>|texture_depth_2d)`)
)

// wgslFieldKinds maps WGSL uniform struct field types to the uniform kinds
// allowed to populate them.
var wgslFieldKinds = map[string][]Kind{
	"f32":         {KindFloat},
	"i32":         {KindInt, KindBool},
	"u32":         {KindInt, KindBool},
	"vec2f":       {KindVec2},
	"vec2<f32>":   {KindVec2},
	"vec3f":       {KindVec3},
	"vec3<f32>":   {KindVec3},
	"vec4f":       {KindVec4},
	"vec4<f32>":   {KindVec4},
	"mat4x4f":     {KindMat4},
	"mat4x4<f32>": {KindMat4},
}

// New creates a Shader from a fragment WGSL source and its declared uniform
// interface. The declaration list must match the WGSL source: buffer uniforms
// must mirror the fields of the fragment's Params struct in order, and
// texture declarations must mirror the texture bindings in binding order.
//
// Parameters:
//   - key: unique identifier for pipeline caching
//   - fragmentSource: the fragment stage WGSL
//   - options: functional options declaring uniforms, textures, and blending
//
// Returns:
//   - Shader: the validated shader
//   - error: an error describing the first declaration/source mismatch
func New(key, fragmentSource string, options ...ShaderBuilderOption) (Shader, error) {
	s := &shaderImpl{
		key:            key,
		vertexSource:   fullscreenVertexSource,
		fragmentSource: fragmentSource,
		depthTextures:  make(map[string]bool),
	}
	for _, opt := range options {
		opt(s)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("shader %q: %w", key, err)
	}
	return s, nil
}

// mustNew is New for the built-in shader library, whose sources are known
// good; a mismatch there is a programming error.
func mustNew(key, fragmentSource string, options ...ShaderBuilderOption) Shader {
	s, err := New(key, fragmentSource, options...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *shaderImpl) Key() string {
	return s.key
}

func (s *shaderImpl) VertexSource() string {
	return s.vertexSource
}

func (s *shaderImpl) FragmentSource() string {
	return s.fragmentSource
}

func (s *shaderImpl) Declarations() []UniformDecl {
	return s.decls
}

func (s *shaderImpl) TextureNames() []string {
	var names []string
	for _, d := range s.decls {
		if d.Kind == KindTexture {
			names = append(names, d.Name)
		}
	}
	return names
}

func (s *shaderImpl) IsDepthTexture(name string) bool {
	return s.depthTextures[name]
}

func (s *shaderImpl) Blend() BlendMode {
	return s.blend
}

func (s *shaderImpl) DefaultUniforms() Uniforms {
	u := make(Uniforms, len(s.decls))
	for _, d := range s.decls {
		if d.Kind == KindTexture {
			continue
		}
		u[d.Name] = Uniform{kind: d.Kind}
	}
	return u
}

// validate cross-checks the Go-side declarations against the fragment WGSL:
// Params struct fields must match the buffer uniform declarations (names,
// order, compatible types), and texture bindings must match the texture
// declarations in binding order starting at binding 2.
func (s *shaderImpl) validate() error {
	var fields []UniformDecl
	var textures []UniformDecl
	for _, d := range s.decls {
		if d.Kind == KindTexture {
			textures = append(textures, d)
		} else {
			fields = append(fields, d)
		}
	}

	var wgslFields [][2]string
	if m := paramsStructRe.FindStringSubmatch(s.fragmentSource); m != nil {
		for _, line := range strings.Split(m[1], "\n") {
			line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ","))
			if line == "" || strings.HasPrefix(line, "//") {
				continue
			}
			fm := paramsFieldRe.FindStringSubmatch(line)
			if fm == nil {
				continue
			}
			wgslFields = append(wgslFields, [2]string{fm[1], fm[2]})
		}
	}
	if len(wgslFields) != len(fields) {
		return fmt.Errorf("declared %d buffer uniforms, source Params struct has %d fields", len(fields), len(wgslFields))
	}
	for i, d := range fields {
		name, typ := wgslFields[i][0], wgslFields[i][1]
		if name != d.Name {
			return fmt.Errorf("uniform %d declared %q, source field is %q", i, d.Name, name)
		}
		kinds, ok := wgslFieldKinds[typ]
		if !ok {
			return fmt.Errorf("uniform %q has unsupported source type %q", d.Name, typ)
		}
		matched := false
		for _, k := range kinds {
			if k == d.Kind {
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("uniform %q declared %s, source field type is %q", d.Name, d.Kind, typ)
		}
	}

	texMatches := textureVarRe.FindAllStringSubmatch(s.fragmentSource, -1)
	if len(texMatches) != len(textures) {
		return fmt.Errorf("declared %d textures, source has %d texture bindings", len(textures), len(texMatches))
	}
	for i, d := range textures {
		name := texMatches[i][2]
		if name != d.Name {
			return fmt.Errorf("texture %d declared %q, source binding is %q", i, d.Name, name)
		}
		if texMatches[i][3] == "texture_depth_2d" {
			s.depthTextures[d.Name] = true
		}
	}
	return nil
}
