package pass

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/target"
)

// texturePassImpl is the implementation of the TexturePass interface.
type texturePassImpl struct {
	base

	texture target.Texture
	opacity float32
	copySh  shader.Shader

	disposed bool
}

// TexturePass defines the interface for a pass that draws a fixed texture
// into the composition chain, typically as a background or overlay. It draws
// into the read buffer without swapping, so the next pass composites over it.
type TexturePass interface {
	Pass

	// Texture retrieves the texture the pass draws.
	//
	// Returns:
	//   - target.Texture: the texture
	Texture() target.Texture

	// SetTexture replaces the texture the pass draws.
	//
	// Parameters:
	//   - texture: the texture to draw
	SetTexture(texture target.Texture)

	// Opacity retrieves the opacity the texture is drawn with.
	//
	// Returns:
	//   - float32: the opacity in [0, 1]
	Opacity() float32

	// SetOpacity sets the opacity the texture is drawn with.
	//
	// Parameters:
	//   - opacity: the opacity in [0, 1]
	SetOpacity(opacity float32)
}

var _ TexturePass = &texturePassImpl{}

// NewTexturePass creates a texture-drawing pass with full opacity.
//
// Parameters:
//   - texture: the texture to draw
//
// Returns:
//   - TexturePass: the newly created pass
func NewTexturePass(texture target.Texture) TexturePass {
	return &texturePassImpl{
		base: base{
			kind:    KindGeneric,
			enabled: true,
		},
		texture: texture,
		opacity: 1.0,
		copySh:  shader.Copy(shader.WithBlend(shader.BlendNormal)),
	}
}

func (p *texturePassImpl) Texture() target.Texture {
	return p.texture
}

func (p *texturePassImpl) SetTexture(texture target.Texture) {
	p.texture = texture
}

func (p *texturePassImpl) Opacity() float32 {
	return p.opacity
}

func (p *texturePassImpl) SetOpacity(opacity float32) {
	p.opacity = opacity
}

func (p *texturePassImpl) Render(r renderer.Renderer, write, read target.RenderTarget, deltaTime float32, maskActive bool) error {
	if p.disposed {
		return ErrDisposed
	}

	if p.renderToScreen {
		r.SetRenderTarget(nil)
	} else {
		r.SetRenderTarget(read)
	}
	if p.clear {
		if err := r.Clear(true, false, false); err != nil {
			return err
		}
	}
	return r.DrawQuad(p.copySh, shader.Uniforms{
		"opacity":  shader.Float(p.opacity),
		"tDiffuse": shader.TextureValue(p.texture),
	})
}

func (p *texturePassImpl) Dispose() {
	p.disposed = true
}
