package pass

import "github.com/Carmen-Shannon/oxy-fx/common"

// ClearPassBuilderOption is a functional option applied to a clear pass during construction via NewClearPass.
type ClearPassBuilderOption func(*clearPassImpl)

// WithClearColor clears with the given color instead of the renderer's clear
// color, restoring the renderer's color after the pass.
//
// Parameters:
//   - color: the clear color to use for this pass
//
// Returns:
//   - ClearPassBuilderOption: a function that applies the clear color option to a clear pass
func WithClearColor(color common.Color) ClearPassBuilderOption {
	return func(p *clearPassImpl) {
		p.overrideClearColor = &color
	}
}

// WithoutDepthClear leaves the depth attachment untouched.
//
// Returns:
//   - ClearPassBuilderOption: a function that applies the depth option to a clear pass
func WithoutDepthClear() ClearPassBuilderOption {
	return func(p *clearPassImpl) {
		p.clearDepth = false
	}
}
