package bloom

// BloomBuilderOption is a functional option applied to a bloom pass during construction via New.
type BloomBuilderOption func(*bloomImpl)

// WithStrength sets the overall bloom intensity.
//
// Parameters:
//   - strength: the strength
//
// Returns:
//   - BloomBuilderOption: a function that applies the strength option to a bloom pass
func WithStrength(strength float32) BloomBuilderOption {
	return func(b *bloomImpl) {
		b.strength = strength
	}
}

// WithRadius sets the spread factor shifting weight toward the deeper,
// blurrier pyramid levels.
//
// Parameters:
//   - radius: the radius in [0, 1]
//
// Returns:
//   - BloomBuilderOption: a function that applies the radius option to a bloom pass
func WithRadius(radius float32) BloomBuilderOption {
	return func(b *bloomImpl) {
		b.radius = radius
	}
}

// WithThreshold sets the luminance threshold below which texels contribute no
// bloom.
//
// Parameters:
//   - threshold: the threshold
//
// Returns:
//   - BloomBuilderOption: a function that applies the threshold option to a bloom pass
func WithThreshold(threshold float32) BloomBuilderOption {
	return func(b *bloomImpl) {
		b.threshold = threshold
	}
}

// WithSmoothWidth sets the width of the soft edge below the threshold over
// which texels fade in.
//
// Parameters:
//   - smoothWidth: the soft edge width
//
// Returns:
//   - BloomBuilderOption: a function that applies the smooth width option to a bloom pass
func WithSmoothWidth(smoothWidth float32) BloomBuilderOption {
	return func(b *bloomImpl) {
		b.smoothWidth = smoothWidth
	}
}

// WithMaxLevels caps the depth of the blur pyramid. The effective level
// count is the smaller of this cap and what the resolution supports.
//
// Parameters:
//   - levels: the maximum pyramid depth, at most MaxLevels
//
// Returns:
//   - BloomBuilderOption: a function that applies the level cap option to a bloom pass
func WithMaxLevels(levels int) BloomBuilderOption {
	return func(b *bloomImpl) {
		if levels > MaxLevels {
			levels = MaxLevels
		}
		if levels < 1 {
			levels = 1
		}
		b.maxLevels = levels
	}
}
