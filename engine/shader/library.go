package shader

import (
	"embed"
	"fmt"
)

//go:embed wgsl/*.wgsl
var wgslFS embed.FS

// fullscreenVertexSource is the shared vertex stage: a single triangle that
// covers the viewport, generated from the vertex index with no vertex buffer.
var fullscreenVertexSource = mustSource("fullscreen.wgsl")

func mustSource(name string) string {
	data, err := wgslFS.ReadFile("wgsl/" + name)
	if err != nil {
		panic(fmt.Errorf("missing embedded shader %q: %w", name, err))
	}
	return string(data)
}

// Copy creates the pass-through shader: samples tDiffuse and writes it out
// scaled by opacity. It is the default shader behind buffer-to-buffer and
// buffer-to-screen copies.
//
// Parameters:
//   - options: additional shader options, typically WithBlend
//
// Returns:
//   - Shader: the copy shader
func Copy(options ...ShaderBuilderOption) Shader {
	opts := append([]ShaderBuilderOption{
		WithUniform("opacity", KindFloat),
		WithTexture("tDiffuse"),
	}, options...)
	return mustNew("copy", mustSource("copy.wgsl"), opts...)
}

// LuminosityHighPass creates the bloom bright-region extraction shader. Texels
// whose Rec.709 luma falls below luminosityThreshold fade smoothly to black
// over smoothWidth.
//
// Returns:
//   - Shader: the high-pass shader
func LuminosityHighPass() Shader {
	return mustNew("luminosity_highpass", mustSource("highpass.wgsl"),
		WithUniform("luminosityThreshold", KindFloat),
		WithUniform("smoothWidth", KindFloat),
		WithTexture("tDiffuse"),
	)
}

// GaussianBlur creates the separable gaussian blur shader. One draw blurs
// along direction; a horizontal and a vertical draw together form the full
// kernel.
//
// Returns:
//   - Shader: the blur shader
func GaussianBlur() Shader {
	return mustNew("gaussian_blur", mustSource("gaussian_blur.wgsl"),
		WithUniform("invSize", KindVec2),
		WithUniform("direction", KindVec2),
		WithUniform("sigma", KindFloat),
		WithUniform("kernelRadius", KindInt),
		WithTexture("tDiffuse"),
	)
}

// BloomComposite creates the bloom mip-combining shader: a fixed-weight sum of
// up to eight blurred levels, scaled by strength and shaped by radius, drawn
// additively onto the scene.
//
// Returns:
//   - Shader: the composite shader
func BloomComposite() Shader {
	return mustNew("bloom_composite", mustSource("bloom_composite.wgsl"),
		WithUniform("strength", KindFloat),
		WithUniform("radius", KindFloat),
		WithUniform("levels", KindInt),
		WithTexture("tBlur1"),
		WithTexture("tBlur2"),
		WithTexture("tBlur3"),
		WithTexture("tBlur4"),
		WithTexture("tBlur5"),
		WithTexture("tBlur6"),
		WithTexture("tBlur7"),
		WithTexture("tBlur8"),
		WithBlend(BlendAdditive),
	)
}

// Film creates the film grain and scanline shader.
//
// Returns:
//   - Shader: the film shader
func Film() Shader {
	return mustNew("film", mustSource("film.wgsl"),
		WithUniform("time", KindFloat),
		WithUniform("noiseIntensity", KindFloat),
		WithUniform("scanlineIntensity", KindFloat),
		WithUniform("scanlineCount", KindFloat),
		WithUniform("grayscale", KindBool),
		WithTexture("tDiffuse"),
	)
}

// DotScreen creates the halftone dot pattern shader.
//
// Returns:
//   - Shader: the dot screen shader
func DotScreen() Shader {
	return mustNew("dotscreen", mustSource("dotscreen.wgsl"),
		WithUniform("tSize", KindVec2),
		WithUniform("center", KindVec2),
		WithUniform("angle", KindFloat),
		WithUniform("scale", KindFloat),
		WithTexture("tDiffuse"),
	)
}

// Glitch creates the digital glitch shader: band distortion driven by a
// displacement texture plus RGB channel tearing and snow.
//
// Returns:
//   - Shader: the glitch shader
func Glitch() Shader {
	return mustNew("glitch", mustSource("glitch.wgsl"),
		WithUniform("seed", KindFloat),
		WithUniform("amount", KindFloat),
		WithUniform("angle", KindFloat),
		WithUniform("seedX", KindFloat),
		WithUniform("seedY", KindFloat),
		WithUniform("distortionX", KindFloat),
		WithUniform("distortionY", KindFloat),
		WithUniform("colS", KindFloat),
		WithUniform("byp", KindBool),
		WithTexture("tDiffuse"),
		WithTexture("tDisp"),
	)
}

// FXAA creates the fast approximate anti-aliasing shader. resolution carries
// the render target size in pixels.
//
// Returns:
//   - Shader: the FXAA shader
func FXAA() Shader {
	return mustNew("fxaa", mustSource("fxaa.wgsl"),
		WithUniform("resolution", KindVec2),
		WithTexture("tDiffuse"),
	)
}

// Afterimage creates the motion trail shader, blending the previous
// accumulation buffer with the current frame.
//
// Returns:
//   - Shader: the afterimage shader
func Afterimage() Shader {
	return mustNew("afterimage", mustSource("afterimage.wgsl"),
		WithUniform("damp", KindFloat),
		WithTexture("tOld"),
		WithTexture("tNew"),
	)
}

// Output creates the final output shader: exposure, tone mapping, and
// linear-to-sRGB encoding.
//
// Returns:
//   - Shader: the output shader
func Output() Shader {
	return mustNew("output", mustSource("output.wgsl"),
		WithUniform("toneMapping", KindInt),
		WithUniform("exposure", KindFloat),
		WithTexture("tDiffuse"),
	)
}

// AO creates the screen-space ambient occlusion estimation shader, sampling
// scene depth and view-space normals to produce a per-texel visibility value.
//
// Returns:
//   - Shader: the occlusion shader
func AO() Shader {
	return mustNew("ao", mustSource("ao.wgsl"),
		WithUniform("cameraNear", KindFloat),
		WithUniform("cameraFar", KindFloat),
		WithUniform("intensity", KindFloat),
		WithUniform("radius", KindFloat),
		WithUniform("bias", KindFloat),
		WithUniform("minDistance", KindFloat),
		WithUniform("maxDistance", KindFloat),
		WithUniform("kernelSize", KindInt),
		WithUniform("outputChannel", KindInt),
		WithUniform("randomSeed", KindFloat),
		WithUniform("resolution", KindVec2),
		WithUniform("cameraProjectionMatrix", KindMat4),
		WithUniform("cameraInverseProjectionMatrix", KindMat4),
		WithTexture("tDepth"),
		WithTexture("tNormal"),
	)
}

// AOBlur creates the depth-aware separable blur shader used to denoise the
// occlusion buffer without bleeding across silhouette edges.
//
// Returns:
//   - Shader: the occlusion blur shader
func AOBlur() Shader {
	return mustNew("ao_blur", mustSource("ao_blur.wgsl"),
		WithUniform("invSize", KindVec2),
		WithUniform("direction", KindVec2),
		WithUniform("stdDev", KindFloat),
		WithUniform("depthCutoff", KindFloat),
		WithUniform("cameraNear", KindFloat),
		WithUniform("cameraFar", KindFloat),
		WithUniform("radius", KindInt),
		WithTexture("tDiffuse"),
		WithTexture("tDepth"),
	)
}
