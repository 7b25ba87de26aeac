package pass

// GlitchPassBuilderOption is a functional option applied to a glitch pass during construction via NewGlitchPass.
type GlitchPassBuilderOption func(*glitchPassImpl)

// WithGoWild makes every frame glitch instead of random bursts.
//
// Returns:
//   - GlitchPassBuilderOption: a function that applies the wild option to a glitch pass
func WithGoWild() GlitchPassBuilderOption {
	return func(p *glitchPassImpl) {
		p.goWild = true
	}
}
