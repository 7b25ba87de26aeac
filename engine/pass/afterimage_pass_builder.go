package pass

// AfterimagePassBuilderOption is a functional option applied to an afterimage pass during construction via NewAfterimagePass.
type AfterimagePassBuilderOption func(*afterimagePassImpl)

// WithDamp sets the initial damping factor.
//
// Parameters:
//   - damp: the damping factor in [0, 1)
//
// Returns:
//   - AfterimagePassBuilderOption: a function that applies the damp option to an afterimage pass
func WithDamp(damp float32) AfterimagePassBuilderOption {
	return func(p *afterimagePassImpl) {
		p.dampValue = damp
	}
}
