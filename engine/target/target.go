package target

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrInvalidSize is returned when a render target is constructed or resized
// with a non-positive width or height.
var ErrInvalidSize = errors.New("target: width and height must be positive")

// ErrDisposed is returned when a disposed render target is resized.
var ErrDisposed = errors.New("target: render target is disposed")

// Binder is the slice of the renderer surface needed by Clear: binding a
// render target and clearing its attachments. The renderer package's
// Renderer interface satisfies it.
type Binder interface {
	SetRenderTarget(t RenderTarget)
	RenderTarget() RenderTarget
	Clear(color, depth, stencil bool) error
}

// renderTarget is the implementation of the RenderTarget interface.
type renderTarget struct {
	alloc Allocator

	label  string
	width  int
	height int

	format          wgpu.TextureFormat
	minFilter       wgpu.FilterMode
	magFilter       wgpu.FilterMode
	wrapMode        wgpu.AddressMode
	depthBuffer     bool
	stencilBuffer   bool
	generateMipmaps bool
	samples         int

	color Texture
	depth Texture

	disposed bool
}

// RenderTarget is an owned GPU-backed 2D image: a color texture plus an
// optional depth (and stencil) attachment. All attachments always share the
// target's declared width and height. A RenderTarget is created with explicit
// dimensions and reallocates every attachment on resize, preserving the
// attachment kinds and options it was configured with.
type RenderTarget interface {
	// Label returns the debug label for this target.
	//
	// Returns:
	//   - string: the target label
	Label() string

	// Width returns the current width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// Format returns the color attachment's texel format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the color format
	Format() wgpu.TextureFormat

	// MinFilter returns the minification filter mode used when the color
	// texture is sampled.
	//
	// Returns:
	//   - wgpu.FilterMode: the minification filter
	MinFilter() wgpu.FilterMode

	// MagFilter returns the magnification filter mode used when the color
	// texture is sampled.
	//
	// Returns:
	//   - wgpu.FilterMode: the magnification filter
	MagFilter() wgpu.FilterMode

	// WrapMode returns the texture coordinate addressing mode used when the
	// color texture is sampled.
	//
	// Returns:
	//   - wgpu.AddressMode: the wrap mode
	WrapMode() wgpu.AddressMode

	// Samples returns the MSAA sample count (0 or 1 = no multisampling).
	//
	// Returns:
	//   - int: the sample count
	Samples() int

	// GenerateMipmaps reports whether the color texture carries a mip chain.
	//
	// Returns:
	//   - bool: true if mipmaps are allocated
	GenerateMipmaps() bool

	// HasDepth reports whether the target owns a depth attachment.
	//
	// Returns:
	//   - bool: true if a depth texture is attached
	HasDepth() bool

	// HasStencil reports whether the target's depth attachment includes a
	// stencil aspect.
	//
	// Returns:
	//   - bool: true if a stencil buffer is attached
	HasStencil() bool

	// DepthFormat returns the format of the depth attachment, or
	// wgpu.TextureFormatUndefined when the target has none.
	//
	// Returns:
	//   - wgpu.TextureFormat: the depth attachment format
	DepthFormat() wgpu.TextureFormat

	// ColorTexture returns the color attachment. Nil after Dispose.
	//
	// Returns:
	//   - Texture: the color texture
	ColorTexture() Texture

	// DepthTexture returns the depth attachment, or nil when the target has
	// none (or after Dispose).
	//
	// Returns:
	//   - Texture: the depth texture or nil
	DepthTexture() Texture

	// Resize reallocates every attachment at the new dimensions, preserving
	// attachment kind, format, and filter options. A resize to the current
	// dimensions is a no-op.
	//
	// Parameters:
	//   - width, height: the new dimensions in pixels (must be positive)
	//
	// Returns:
	//   - error: ErrInvalidSize for non-positive dimensions, ErrDisposed after
	//     Dispose, or the allocator's error if reallocation fails
	Resize(width, height int) error

	// Clear binds the target on the given renderer, clears the color
	// attachment and whichever of depth/stencil the target is configured
	// with, and restores the previously bound target.
	//
	// Parameters:
	//   - b: the renderer to clear through
	//
	// Returns:
	//   - error: the renderer's error if clearing fails
	Clear(b Binder) error

	// Dispose releases all GPU memory owned by the target. Safe to call more
	// than once; calls after the first are no-ops.
	Dispose()

	// Disposed reports whether Dispose has been called.
	//
	// Returns:
	//   - bool: true once the target has been disposed
	Disposed() bool
}

var _ RenderTarget = &renderTarget{}

// New creates a RenderTarget with the specified dimensions and options.
// The color attachment is allocated immediately; a depth attachment is
// allocated when WithDepthBuffer or WithStencilBuffer is set.
//
// Parameters:
//   - alloc: the texture allocator (the renderer backend)
//   - width, height: dimensions in pixels (must be positive)
//   - options: functional options configuring format, filters, and attachments
//
// Returns:
//   - RenderTarget: the created target
//   - error: ErrInvalidSize for non-positive dimensions, or the allocator's
//     error if attachment creation fails
func New(alloc Allocator, width, height int, options ...RenderTargetBuilderOption) (RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	t := &renderTarget{
		alloc:     alloc,
		label:     "Render Target",
		width:     width,
		height:    height,
		format:    wgpu.TextureFormatRGBA8Unorm,
		minFilter: wgpu.FilterModeLinear,
		magFilter: wgpu.FilterModeLinear,
		wrapMode:  wgpu.AddressModeClampToEdge,
	}
	for _, opt := range options {
		opt(t)
	}
	if err := t.allocate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *renderTarget) Label() string {
	return t.label
}

func (t *renderTarget) Width() int {
	return t.width
}

func (t *renderTarget) Height() int {
	return t.height
}

func (t *renderTarget) Format() wgpu.TextureFormat {
	return t.format
}

func (t *renderTarget) MinFilter() wgpu.FilterMode {
	return t.minFilter
}

func (t *renderTarget) MagFilter() wgpu.FilterMode {
	return t.magFilter
}

func (t *renderTarget) WrapMode() wgpu.AddressMode {
	return t.wrapMode
}

func (t *renderTarget) Samples() int {
	return t.samples
}

func (t *renderTarget) GenerateMipmaps() bool {
	return t.generateMipmaps
}

func (t *renderTarget) HasDepth() bool {
	return t.depthBuffer || t.stencilBuffer
}

func (t *renderTarget) HasStencil() bool {
	return t.stencilBuffer
}

func (t *renderTarget) DepthFormat() wgpu.TextureFormat {
	switch {
	case t.stencilBuffer:
		return wgpu.TextureFormatDepth24PlusStencil8
	case t.depthBuffer:
		return wgpu.TextureFormatDepth24Plus
	default:
		return wgpu.TextureFormatUndefined
	}
}

func (t *renderTarget) ColorTexture() Texture {
	return t.color
}

func (t *renderTarget) DepthTexture() Texture {
	return t.depth
}

func (t *renderTarget) Resize(width, height int) error {
	if t.disposed {
		return ErrDisposed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width == t.width && height == t.height {
		return nil
	}
	t.release()
	t.width = width
	t.height = height
	return t.allocate()
}

func (t *renderTarget) Clear(b Binder) error {
	prev := b.RenderTarget()
	b.SetRenderTarget(t)
	err := b.Clear(true, t.HasDepth(), t.HasStencil())
	b.SetRenderTarget(prev)
	return err
}

func (t *renderTarget) Dispose() {
	if t.disposed {
		return
	}
	t.release()
	t.disposed = true
}

func (t *renderTarget) Disposed() bool {
	return t.disposed
}

// allocate creates the color (and optional depth) attachments at the
// target's current dimensions.
func (t *renderTarget) allocate() error {
	mips := 1
	if t.generateMipmaps {
		// Full chain down to 1x1 for the larger dimension.
		for s := max(t.width, t.height); s > 1; s >>= 1 {
			mips++
		}
	}
	color, err := t.alloc.AllocateTexture(TextureDescriptor{
		Label:         t.label + " Color",
		Width:         t.width,
		Height:        t.height,
		Format:        t.format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
		MipLevelCount: mips,
		SampleCount:   t.samples,
	})
	if err != nil {
		return fmt.Errorf("failed to allocate color attachment: %w", err)
	}
	t.color = color

	if !t.HasDepth() {
		return nil
	}
	depth, err := t.alloc.AllocateTexture(TextureDescriptor{
		Label:       t.label + " Depth",
		Width:       t.width,
		Height:      t.height,
		Format:      t.DepthFormat(),
		Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
		SampleCount: t.samples,
	})
	if err != nil {
		t.color.Release()
		t.color = nil
		return fmt.Errorf("failed to allocate depth attachment: %w", err)
	}
	t.depth = depth
	return nil
}

// release frees the current attachments. Resize calls it before
// reallocating; Dispose calls it exactly once.
func (t *renderTarget) release() {
	if t.color != nil {
		t.color.Release()
		t.color = nil
	}
	if t.depth != nil {
		t.depth.Release()
		t.depth = nil
	}
}
