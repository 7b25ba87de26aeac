package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a single mesh vertex with an object-space position and normal.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// meshImpl is the implementation of the Mesh interface.
type meshImpl struct {
	mu *sync.Mutex

	vertices  []Vertex
	indices   []uint32
	transform mgl32.Mat4
	color     common.Color
}

// Mesh is a piece of indexed triangle geometry with a model transform and a
// base color. Meshes are rendered by adding them to a Scene.
type Mesh interface {
	// Vertices retrieves the mesh's vertex data.
	//
	// Returns:
	//   - []Vertex: the vertices
	Vertices() []Vertex

	// Indices retrieves the mesh's triangle indices.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// Transform retrieves the model transform.
	//
	// Returns:
	//   - mgl32.Mat4: the model matrix
	Transform() mgl32.Mat4

	// SetTransform sets the model transform.
	//
	// Parameters:
	//   - transform: the model matrix
	SetTransform(transform mgl32.Mat4)

	// Color retrieves the base color.
	//
	// Returns:
	//   - common.Color: the base color
	Color() common.Color

	// SetColor sets the base color.
	//
	// Parameters:
	//   - color: the base color
	SetColor(color common.Color)
}

var _ Mesh = &meshImpl{}

// NewMesh creates a mesh from raw vertex and index data.
//
// Parameters:
//   - vertices: the vertex data
//   - indices: the triangle indices
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the newly created mesh
func NewMesh(vertices []Vertex, indices []uint32, options ...MeshBuilderOption) Mesh {
	m := &meshImpl{
		mu:        &sync.Mutex{},
		vertices:  vertices,
		indices:   indices,
		transform: mgl32.Ident4(),
		color:     common.Color{R: 1, G: 1, B: 1, A: 1},
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// NewCube creates a cube mesh centered on the origin with per-face normals.
//
// Parameters:
//   - size: the edge length
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the newly created cube
func NewCube(size float32, options ...MeshBuilderOption) Mesh {
	h := size / 2
	faces := []struct {
		normal mgl32.Vec3
		a, b   mgl32.Vec3 // in-plane axes
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		center := f.normal.Mul(h)
		for _, corner := range [][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			pos := center.Add(f.a.Mul(h * corner[0])).Add(f.b.Mul(h * corner[1]))
			vertices = append(vertices, Vertex{Position: pos, Normal: f.normal})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh(vertices, indices, options...)
}

// NewPlane creates a flat plane mesh in the XZ plane, facing up.
//
// Parameters:
//   - width: the extent along X
//   - depth: the extent along Z
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the newly created plane
func NewPlane(width, depth float32, options ...MeshBuilderOption) Mesh {
	hw, hd := width/2, depth/2
	up := mgl32.Vec3{0, 1, 0}
	vertices := []Vertex{
		{Position: mgl32.Vec3{-hw, 0, -hd}, Normal: up},
		{Position: mgl32.Vec3{hw, 0, -hd}, Normal: up},
		{Position: mgl32.Vec3{hw, 0, hd}, Normal: up},
		{Position: mgl32.Vec3{-hw, 0, hd}, Normal: up},
	}
	indices := []uint32{0, 2, 1, 0, 3, 2}
	return NewMesh(vertices, indices, options...)
}

// NewSphere creates a latitude/longitude sphere mesh centered on the origin.
//
// Parameters:
//   - radius: the sphere radius
//   - segments: longitudinal subdivisions (minimum 3)
//   - rings: latitudinal subdivisions (minimum 2)
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the newly created sphere
func NewSphere(radius float32, segments, rings int, options ...MeshBuilderOption) Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	vertices := make([]Vertex, 0, (rings+1)*(segments+1))
	for ring := 0; ring <= rings; ring++ {
		phi := math32.Pi * float32(ring) / float32(rings)
		sinPhi, cosPhi := math32.Sincos(phi)
		for seg := 0; seg <= segments; seg++ {
			theta := 2 * math32.Pi * float32(seg) / float32(segments)
			sinTheta, cosTheta := math32.Sincos(theta)
			normal := mgl32.Vec3{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			vertices = append(vertices, Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
			})
		}
	}

	indices := make([]uint32, 0, rings*segments*6)
	stride := uint32(segments + 1)
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			a := uint32(ring)*stride + uint32(seg)
			b := a + stride
			indices = append(indices, a, a+1, b, b, a+1, b+1)
		}
	}
	return NewMesh(vertices, indices, options...)
}

func (m *meshImpl) Vertices() []Vertex {
	return m.vertices
}

func (m *meshImpl) Indices() []uint32 {
	return m.indices
}

func (m *meshImpl) Transform() mgl32.Mat4 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transform
}

func (m *meshImpl) SetTransform(transform mgl32.Mat4) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transform = transform
}

func (m *meshImpl) Color() common.Color {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.color
}

func (m *meshImpl) SetColor(color common.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.color = color
}
