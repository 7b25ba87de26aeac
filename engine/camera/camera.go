package camera

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidFrustum is returned when perspective parameters cannot form a
// valid projection: near must be positive, far must exceed near, the field of
// view must lie in (0, pi), and the aspect ratio must be positive.
var ErrInvalidFrustum = errors.New("camera: invalid frustum")

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix              mgl32.Mat4
	projectionMatrix        mgl32.Mat4
	viewProjectionMatrix    mgl32.Mat4
	inverseProjectionMatrix mgl32.Mat4
}

// Camera defines the interface for the perspective camera used by scene
// renders and depth-dependent post-processing effects. It holds perspective
// settings and derives view/projection matrices from position and target.
type Camera interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Target returns the world-space point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at target
	Target() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the up vector
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns the combined view-projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view-projection matrix
	ViewProjectionMatrix() mgl32.Mat4

	// InverseProjectionMatrix returns the inverse of the projection matrix,
	// used by screen-space effects to reconstruct view-space positions from
	// depth.
	//
	// Returns:
	//   - mgl32.Mat4: the inverse projection matrix
	InverseProjectionMatrix() mgl32.Mat4

	// SetPosition moves the camera and recomputes matrices.
	//
	// Parameters:
	//   - position: the new world-space position
	SetPosition(position mgl32.Vec3)

	// SetTarget changes the look-at point and recomputes matrices.
	//
	// Parameters:
	//   - target: the new look-at target
	SetTarget(target mgl32.Vec3)

	// SetUp sets the camera's up vector and recomputes matrices.
	//
	// Parameters:
	//   - up: the new up vector
	SetUp(up mgl32.Vec3)

	// SetFov sets the vertical field of view in radians and recomputes
	// matrices.
	//
	// Parameters:
	//   - fov: field of view in radians, in (0, pi)
	//
	// Returns:
	//   - error: ErrInvalidFrustum when fov is out of range
	SetFov(fov float32) error

	// SetAspect sets the aspect ratio and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio, must be positive
	//
	// Returns:
	//   - error: ErrInvalidFrustum when aspect is not positive
	SetAspect(aspect float32) error

	// SetPlanes sets the near and far clipping plane distances together and
	// recomputes matrices. Setting them as a pair avoids transient states
	// where an old far plane conflicts with a new near plane.
	//
	// Parameters:
	//   - near: near plane distance, must be positive
	//   - far: far plane distance, must exceed near
	//
	// Returns:
	//   - error: ErrInvalidFrustum when the pair is degenerate
	SetPlanes(near, far float32) error
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the given perspective settings.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
//   - error: ErrInvalidFrustum when the configured perspective is degenerate
func NewCamera(options ...CameraBuilderOption) (Camera, error) {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: mgl32.Vec3{0, 0, 5},
		target:   mgl32.Vec3{0, 0, 0},
		up:       mgl32.Vec3{0, 1, 0},
		fov:      45.0 * (math.Pi / 180.0),
		aspect:   1.0,
		near:     0.1,
		far:      100.0,
	}
	for _, option := range options {
		option(c)
	}
	if err := validateFrustum(c.fov, c.aspect, c.near, c.far); err != nil {
		return nil, err
	}
	c.updateMatrices()
	return c, nil
}

// validateFrustum checks that the perspective parameters form a valid
// projection matrix.
func validateFrustum(fov, aspect, near, far float32) error {
	if near <= 0 {
		return fmt.Errorf("%w: near plane %v must be positive", ErrInvalidFrustum, near)
	}
	if far <= near {
		return fmt.Errorf("%w: far plane %v must exceed near plane %v", ErrInvalidFrustum, far, near)
	}
	if fov <= 0 || fov >= math.Pi {
		return fmt.Errorf("%w: fov %v must be in (0, pi)", ErrInvalidFrustum, fov)
	}
	if aspect <= 0 {
		return fmt.Errorf("%w: aspect ratio %v must be positive", ErrInvalidFrustum, aspect)
	}
	return nil
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) InverseProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseProjectionMatrix
}

func (c *cameraImpl) SetPosition(position mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := validateFrustum(fov, c.aspect, c.near, c.far); err != nil {
		return err
	}
	c.fov = fov
	c.updateMatrices()
	return nil
}

func (c *cameraImpl) SetAspect(aspect float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := validateFrustum(c.fov, aspect, c.near, c.far); err != nil {
		return err
	}
	c.aspect = aspect
	c.updateMatrices()
	return nil
}

func (c *cameraImpl) SetPlanes(near, far float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := validateFrustum(c.fov, c.aspect, near, far); err != nil {
		return err
	}
	c.near = near
	c.far = far
	c.updateMatrices()
	return nil
}

// updateMatrices recalculates the view, projection, view-projection, and
// inverse projection matrices. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.inverseProjectionMatrix = c.projectionMatrix.Inv()
}
