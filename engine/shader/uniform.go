package shader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrMissingUniform is returned when a uniform a shader declares has not been
// set before a render call.
var ErrMissingUniform = errors.New("shader: required uniform is not set")

// ErrUniformKind is returned when a uniform value's kind does not match the
// shader's declaration for that name.
var ErrUniformKind = errors.New("shader: uniform kind mismatch")

// Kind identifies one of the closed set of uniform value kinds an effect
// shader can declare. Keeping the set closed lets uniform maps be validated
// against the shader's declared interface at construction time instead of at
// draw time.
type Kind int

const (
	// KindFloat is a single f32 value.
	KindFloat Kind = iota

	// KindInt is a single i32 value.
	KindInt

	// KindBool is a boolean, packed as an i32 (0 or 1) since WGSL uniform
	// buffers cannot hold bool directly.
	KindBool

	// KindVec2 is a vec2f value.
	KindVec2

	// KindVec3 is a vec3f value.
	KindVec3

	// KindVec4 is a vec4f value.
	KindVec4

	// KindMat4 is a mat4x4f value.
	KindMat4

	// KindTexture is a 2D texture binding rather than a uniform buffer field.
	KindTexture
)

// String returns the WGSL-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "f32"
	case KindInt:
		return "i32"
	case KindBool:
		return "bool(i32)"
	case KindVec2:
		return "vec2f"
	case KindVec3:
		return "vec3f"
	case KindVec4:
		return "vec4f"
	case KindMat4:
		return "mat4x4f"
	case KindTexture:
		return "texture_2d"
	default:
		return "unknown"
	}
}

// size and align return the WGSL uniform address space byte size and
// alignment of the kind. KindTexture has no buffer footprint.
func (k Kind) size() int {
	switch k {
	case KindFloat, KindInt, KindBool:
		return 4
	case KindVec2:
		return 8
	case KindVec3:
		return 12
	case KindVec4:
		return 16
	case KindMat4:
		return 64
	default:
		return 0
	}
}

func (k Kind) align() int {
	switch k {
	case KindFloat, KindInt, KindBool:
		return 4
	case KindVec2:
		return 8
	case KindVec3, KindVec4, KindMat4:
		return 16
	default:
		return 1
	}
}

// Uniform is a tagged uniform value of one of the closed kinds. The zero
// Uniform is a KindFloat zero.
type Uniform struct {
	kind Kind

	f   float32
	i   int32
	vec mgl32.Vec4
	mat mgl32.Mat4
	tex target.Texture
}

// Float builds a KindFloat uniform value.
func Float(v float32) Uniform {
	return Uniform{kind: KindFloat, f: v}
}

// Int builds a KindInt uniform value.
func Int(v int32) Uniform {
	return Uniform{kind: KindInt, i: v}
}

// Bool builds a KindBool uniform value, packed as 0 or 1.
func Bool(v bool) Uniform {
	u := Uniform{kind: KindBool}
	if v {
		u.i = 1
	}
	return u
}

// Vec2 builds a KindVec2 uniform value.
func Vec2(v mgl32.Vec2) Uniform {
	return Uniform{kind: KindVec2, vec: mgl32.Vec4{v.X(), v.Y(), 0, 0}}
}

// Vec3 builds a KindVec3 uniform value.
func Vec3(v mgl32.Vec3) Uniform {
	return Uniform{kind: KindVec3, vec: mgl32.Vec4{v.X(), v.Y(), v.Z(), 0}}
}

// Vec4 builds a KindVec4 uniform value.
func Vec4(v mgl32.Vec4) Uniform {
	return Uniform{kind: KindVec4, vec: v}
}

// ColorValue builds a KindVec4 uniform value from a Color.
func ColorValue(c common.Color) Uniform {
	return Uniform{kind: KindVec4, vec: mgl32.Vec4{c.R, c.G, c.B, c.A}}
}

// Mat4 builds a KindMat4 uniform value.
func Mat4(m mgl32.Mat4) Uniform {
	return Uniform{kind: KindMat4, mat: m}
}

// TextureValue builds a KindTexture uniform value. A nil texture is a valid
// value at set time but a configuration error at render time.
func TextureValue(t target.Texture) Uniform {
	return Uniform{kind: KindTexture, tex: t}
}

// Kind returns the value's kind tag.
func (u Uniform) Kind() Kind {
	return u.kind
}

// Texture returns the texture handle of a KindTexture value, or nil.
func (u Uniform) Texture() target.Texture {
	return u.tex
}

// Float32 returns the scalar payload of a KindFloat value.
func (u Uniform) Float32() float32 {
	return u.f
}

// Int32 returns the scalar payload of a KindInt or KindBool value.
func (u Uniform) Int32() int32 {
	return u.i
}

// Vec returns the vector payload of a KindVec2/3/4 value, zero-padded to
// four components.
func (u Uniform) Vec() mgl32.Vec4 {
	return u.vec
}

// Mat returns the matrix payload of a KindMat4 value.
func (u Uniform) Mat() mgl32.Mat4 {
	return u.mat
}

// Uniforms is the string-keyed uniform map every full-screen shader pass
// exposes. Callers set values by name before or during render.
type Uniforms map[string]Uniform

// Clone returns a shallow copy of the map. Texture handles are shared, not
// duplicated.
//
// Returns:
//   - Uniforms: the copied map
func (u Uniforms) Clone() Uniforms {
	out := make(Uniforms, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}

// UniformDecl is one entry of a shader's ordered uniform declaration list.
type UniformDecl struct {
	// Name is the WGSL-side field or binding variable name.
	Name string

	// Kind is the declared value kind.
	Kind Kind
}

// Pack serializes the buffer-resident uniforms (everything but textures)
// into a byte slice laid out per the WGSL uniform address space rules:
// each field is placed at the next offset aligned to its kind, and the total
// size is rounded up to 16 bytes. Declaration order defines field order, so
// the Go-side declarations and the WGSL struct must agree.
//
// Parameters:
//   - decls: the shader's ordered uniform declarations
//   - values: the uniform values keyed by name
//
// Returns:
//   - []byte: the packed uniform buffer contents (nil when the shader has no
//     buffer-resident uniforms)
//   - error: ErrMissingUniform or ErrUniformKind wrapped with the field name
func Pack(decls []UniformDecl, values Uniforms) ([]byte, error) {
	size := 0
	for _, d := range decls {
		if d.Kind == KindTexture {
			continue
		}
		size = alignUp(size, d.Kind.align()) + d.Kind.size()
	}
	if size == 0 {
		return nil, nil
	}
	size = alignUp(size, 16)

	buf := make([]byte, size)
	offset := 0
	for _, d := range decls {
		if d.Kind == KindTexture {
			continue
		}
		v, ok := values[d.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q (%s)", ErrMissingUniform, d.Name, d.Kind)
		}
		if v.kind != d.Kind {
			return nil, fmt.Errorf("%w: %q declared %s, set %s", ErrUniformKind, d.Name, d.Kind, v.kind)
		}
		offset = alignUp(offset, d.Kind.align())
		switch d.Kind {
		case KindFloat:
			putFloat32(buf[offset:], v.f)
		case KindInt, KindBool:
			binary.LittleEndian.PutUint32(buf[offset:], uint32(v.i))
		case KindVec2:
			putFloat32(buf[offset:], v.vec.X())
			putFloat32(buf[offset+4:], v.vec.Y())
		case KindVec3:
			putFloat32(buf[offset:], v.vec.X())
			putFloat32(buf[offset+4:], v.vec.Y())
			putFloat32(buf[offset+8:], v.vec.Z())
		case KindVec4:
			putFloat32(buf[offset:], v.vec.X())
			putFloat32(buf[offset+4:], v.vec.Y())
			putFloat32(buf[offset+8:], v.vec.Z())
			putFloat32(buf[offset+12:], v.vec.W())
		case KindMat4:
			for i := range 16 {
				putFloat32(buf[offset+i*4:], v.mat[i])
			}
		}
		offset += d.Kind.size()
	}
	return buf, nil
}

func alignUp(v, align int) int {
	return (v + align - 1) / align * align
}

func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}
