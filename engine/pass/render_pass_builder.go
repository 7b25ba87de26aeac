package pass

import "github.com/Carmen-Shannon/oxy-fx/common"

// RenderPassBuilderOption is a functional option applied to a render pass during construction via NewRenderPass.
type RenderPassBuilderOption func(*renderPassImpl)

// WithOverrideClearColor clears with the given color instead of the
// renderer's clear color, restoring the renderer's color after the pass.
//
// Parameters:
//   - color: the clear color to use for this pass
//
// Returns:
//   - RenderPassBuilderOption: a function that applies the clear color option to a render pass
func WithOverrideClearColor(color common.Color) RenderPassBuilderOption {
	return func(p *renderPassImpl) {
		p.overrideClearColor = &color
	}
}

// WithoutClear disables the clear before the scene render, compositing the
// scene over whatever the read buffer already holds.
//
// Returns:
//   - RenderPassBuilderOption: a function that applies the no-clear option to a render pass
func WithoutClear() RenderPassBuilderOption {
	return func(p *renderPassImpl) {
		p.clear = false
	}
}
