package renderer

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Stencil defines the interface for the renderer's stencil state. The state
// applies to subsequent full-screen draws and clears; it is sticky until
// changed.
//
// SetLocked freezes the state: while locked, every other setter is ignored.
// This lets an effect bracket a region of the frame: configure the stencil,
// lock it, run arbitrary draws that would otherwise reset stencil state, then
// unlock.
type Stencil interface {
	// SetTest enables or disables stencil testing.
	//
	// Parameters:
	//   - enabled: whether the stencil test is enabled
	SetTest(enabled bool)

	// Test reports whether stencil testing is enabled.
	//
	// Returns:
	//   - bool: true when the stencil test is enabled
	Test() bool

	// SetFunc sets the stencil comparison function, reference value, and
	// read/write mask.
	//
	// Parameters:
	//   - compare: the comparison function
	//   - reference: the reference value compared against the buffer
	//   - mask: the bit mask applied to both sides of the comparison
	SetFunc(compare wgpu.CompareFunction, reference, mask uint32)

	// Func retrieves the comparison function, reference value, and mask.
	//
	// Returns:
	//   - compare: the comparison function
	//   - reference: the reference value
	//   - mask: the bit mask
	Func() (compare wgpu.CompareFunction, reference, mask uint32)

	// SetOp sets the stencil operations applied on test failure, depth test
	// failure, and pass.
	//
	// Parameters:
	//   - fail: operation when the stencil test fails
	//   - zfail: operation when the stencil test passes but the depth test fails
	//   - zpass: operation when both tests pass
	SetOp(fail, zfail, zpass wgpu.StencilOperation)

	// Op retrieves the stencil operations.
	//
	// Returns:
	//   - fail: operation when the stencil test fails
	//   - zfail: operation when the stencil test passes but the depth test fails
	//   - zpass: operation when both tests pass
	Op() (fail, zfail, zpass wgpu.StencilOperation)

	// SetClear sets the value the stencil buffer is cleared to.
	//
	// Parameters:
	//   - value: the stencil clear value
	SetClear(value uint32)

	// ClearValue retrieves the stencil clear value.
	//
	// Returns:
	//   - uint32: the stencil clear value
	ClearValue() uint32

	// SetLocked freezes or unfreezes the stencil state. Unlocking is always
	// honored; every other setter is ignored while locked.
	//
	// Parameters:
	//   - locked: whether the state is locked
	SetLocked(locked bool)

	// Locked reports whether the stencil state is locked.
	//
	// Returns:
	//   - bool: true when locked
	Locked() bool
}

// stencilSnapshot is an immutable copy of the stencil state taken per draw.
type stencilSnapshot struct {
	test       bool
	compare    wgpu.CompareFunction
	reference  uint32
	mask       uint32
	fail       wgpu.StencilOperation
	zfail      wgpu.StencilOperation
	zpass      wgpu.StencilOperation
	clearValue uint32
}

type stencilState struct {
	mu *sync.Mutex

	state  stencilSnapshot
	locked bool
}

var _ Stencil = &stencilState{}

func newStencilState() *stencilState {
	return &stencilState{
		mu: &sync.Mutex{},
		state: stencilSnapshot{
			compare: wgpu.CompareFunctionAlways,
			mask:    0xFF,
			fail:    wgpu.StencilOperationKeep,
			zfail:   wgpu.StencilOperationKeep,
			zpass:   wgpu.StencilOperationKeep,
		},
	}
}

func (s *stencilState) SetTest(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return
	}
	s.state.test = enabled
}

func (s *stencilState) Test() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.test
}

func (s *stencilState) SetFunc(compare wgpu.CompareFunction, reference, mask uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return
	}
	s.state.compare = compare
	s.state.reference = reference
	s.state.mask = mask
}

func (s *stencilState) Func() (compare wgpu.CompareFunction, reference, mask uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.compare, s.state.reference, s.state.mask
}

func (s *stencilState) SetOp(fail, zfail, zpass wgpu.StencilOperation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return
	}
	s.state.fail = fail
	s.state.zfail = zfail
	s.state.zpass = zpass
}

func (s *stencilState) Op() (fail, zfail, zpass wgpu.StencilOperation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.fail, s.state.zfail, s.state.zpass
}

func (s *stencilState) SetClear(value uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return
	}
	s.state.clearValue = value
}

func (s *stencilState) ClearValue() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clearValue
}

func (s *stencilState) SetLocked(locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = locked
}

func (s *stencilState) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

func (s *stencilState) snapshot() stencilSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
