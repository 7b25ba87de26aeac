// package common contains common types that are used throughout this library. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Color is a linear-space RGBA color with float32 components in [0, 1].
// It is the color type used for clear colors and color uniforms.
type Color struct {
	R, G, B, A float32
}

// NewColor builds an opaque Color from its red, green, and blue components.
//
// Parameters:
//   - r, g, b: color components in [0, 1]
//
// Returns:
//   - Color: the color with alpha set to 1
func NewColor(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// ToWGPU converts the color to the wgpu.Color float64 representation used by
// render pass clear values.
//
// Returns:
//   - wgpu.Color: the converted color
func (c Color) ToWGPU() wgpu.Color {
	return wgpu.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
}

// Black is the default clear color.
var Black = Color{R: 0, G: 0, B: 0, A: 1}
