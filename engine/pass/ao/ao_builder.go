package ao

import "math/rand"

// AOBuilderOption is a functional option used to configure an ambient
// occlusion pass created with New.
type AOBuilderOption func(*aoImpl)

// WithIntensity sets how strongly occlusion darkens the image.
//
// Parameters:
//   - intensity: the occlusion intensity
//
// Returns:
//   - AOBuilderOption: a function that sets the intensity
func WithIntensity(intensity float32) AOBuilderOption {
	return func(a *aoImpl) {
		a.intensity = intensity
	}
}

// WithRadius sets the world-space sampling radius.
//
// Parameters:
//   - radius: the sampling radius in world units
//
// Returns:
//   - AOBuilderOption: a function that sets the radius
func WithRadius(radius float32) AOBuilderOption {
	return func(a *aoImpl) {
		a.radius = radius
	}
}

// WithBias sets the depth offset applied when comparing a sample against the
// center depth, suppressing self-occlusion on flat surfaces.
//
// Parameters:
//   - bias: the depth bias in view units
//
// Returns:
//   - AOBuilderOption: a function that sets the bias
func WithBias(bias float32) AOBuilderOption {
	return func(a *aoImpl) {
		a.bias = bias
	}
}

// WithDistanceGate sets the view-space distance window outside of which
// potential occluders are ignored.
//
// Parameters:
//   - minDistance: occluders closer than this contribute nothing
//   - maxDistance: occluders farther than this contribute nothing
//
// Returns:
//   - AOBuilderOption: a function that sets the distance gate
func WithDistanceGate(minDistance, maxDistance float32) AOBuilderOption {
	return func(a *aoImpl) {
		a.minDistance = minDistance
		a.maxDistance = maxDistance
	}
}

// WithKernelSize sets the number of occlusion samples taken per texel.
//
// Parameters:
//   - kernelSize: the sample count
//
// Returns:
//   - AOBuilderOption: a function that sets the kernel size
func WithKernelSize(kernelSize int) AOBuilderOption {
	return func(a *aoImpl) {
		if kernelSize > 0 {
			a.kernelSize = kernelSize
		}
	}
}

// WithBlur configures the depth-aware blur that denoises the occlusion
// estimate.
//
// Parameters:
//   - stdDev: the gaussian standard deviation in texels
//   - radius: the blur kernel radius in texels
//
// Returns:
//   - AOBuilderOption: a function that sets the blur parameters
func WithBlur(stdDev float32, radius int) AOBuilderOption {
	return func(a *aoImpl) {
		a.blurStdDev = stdDev
		if radius > 0 {
			a.blurRadius = radius
		}
	}
}

// WithOutput selects what the pass writes to the composition chain.
//
// Parameters:
//   - output: the output selection
//
// Returns:
//   - AOBuilderOption: a function that sets the output selection
func WithOutput(output Output) AOBuilderOption {
	return func(a *aoImpl) {
		a.output = output
	}
}

// WithSeed seeds the per-frame sample rotation, making output reproducible.
//
// Parameters:
//   - seed: the random seed
//
// Returns:
//   - AOBuilderOption: a function that seeds the rotation
func WithSeed(seed int64) AOBuilderOption {
	return func(a *aoImpl) {
		a.rng = rand.New(rand.NewSource(seed))
	}
}
