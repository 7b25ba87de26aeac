package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeshDefaults(t *testing.T) {
	m := NewMesh(nil, nil)
	assert.Equal(t, mgl32.Ident4(), m.Transform())
	assert.Equal(t, common.Color{R: 1, G: 1, B: 1, A: 1}, m.Color())

	m.SetTransform(mgl32.Translate3D(1, 2, 3))
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), m.Transform())

	red := common.Color{R: 1, A: 1}
	m.SetColor(red)
	assert.Equal(t, red, m.Color())
}

func TestMeshBuilderOptions(t *testing.T) {
	m := NewMesh(nil, nil,
		WithTransform(mgl32.Scale3D(2, 2, 2)),
		WithColor(common.Color{G: 1, A: 1}),
	)
	assert.Equal(t, mgl32.Scale3D(2, 2, 2), m.Transform())
	assert.Equal(t, common.Color{G: 1, A: 1}, m.Color())
}

func TestNewCube(t *testing.T) {
	c := NewCube(2)
	verts := c.Vertices()
	assert.Len(t, verts, 24)
	assert.Len(t, c.Indices(), 36)

	for _, v := range verts {
		// Every corner sits on the cube surface and every normal is a unit
		// axis vector.
		assert.InDelta(t, 1, math32.Abs(v.Position.X()), 1e-5)
		assert.InDelta(t, 1, math32.Abs(v.Position.Y()), 1e-5)
		assert.InDelta(t, 1, math32.Abs(v.Position.Z()), 1e-5)
		assert.InDelta(t, 1, v.Normal.Len(), 1e-5)

		// Each vertex's normal points out of the face it belongs to.
		assert.InDelta(t, 1, v.Position.Dot(v.Normal), 1e-5)
	}

	for _, i := range c.Indices() {
		assert.Less(t, int(i), len(verts))
	}
}

func TestNewPlane(t *testing.T) {
	p := NewPlane(4, 6)
	verts := p.Vertices()
	require.Len(t, verts, 4)
	assert.Len(t, p.Indices(), 6)

	for _, v := range verts {
		assert.Equal(t, float32(0), v.Position.Y())
		assert.Equal(t, mgl32.Vec3{0, 1, 0}, v.Normal)
		assert.InDelta(t, 2, math32.Abs(v.Position.X()), 1e-5)
		assert.InDelta(t, 3, math32.Abs(v.Position.Z()), 1e-5)
	}
}

func TestNewSphere(t *testing.T) {
	const radius = 3.0
	s := NewSphere(radius, 16, 12)
	verts := s.Vertices()
	assert.Len(t, verts, (12+1)*(16+1))
	assert.Len(t, s.Indices(), 12*16*6)

	for _, v := range verts {
		assert.InDelta(t, radius, v.Position.Len(), 1e-4)
		assert.InDelta(t, 1, v.Normal.Len(), 1e-4)
		// The normal is radial.
		assert.InDelta(t, radius, v.Position.Dot(v.Normal), 1e-4)
	}

	for _, i := range s.Indices() {
		assert.Less(t, int(i), len(verts))
	}
}

func TestNewSphereClampsSubdivisions(t *testing.T) {
	s := NewSphere(1, 1, 1)
	// Clamped to 3 segments and 2 rings.
	assert.Len(t, s.Vertices(), (2+1)*(3+1))
	assert.Len(t, s.Indices(), 2*3*6)
}

func TestSceneMeshManagement(t *testing.T) {
	cube := NewCube(1)
	plane := NewPlane(1, 1)
	sc := NewScene(WithName("test"), WithMeshes(cube))

	assert.Equal(t, "test", sc.Name())
	assert.Len(t, sc.Meshes(), 1)

	sc.Add(plane)
	assert.Len(t, sc.Meshes(), 2)

	assert.True(t, sc.Remove(cube))
	assert.False(t, sc.Remove(cube))
	require.Len(t, sc.Meshes(), 1)
	assert.Same(t, plane, sc.Meshes()[0])

	sc.SetName("renamed")
	assert.Equal(t, "renamed", sc.Name())
}

func TestSceneLightDirection(t *testing.T) {
	sc := NewScene(WithLightDirection(mgl32.Vec3{1, 0, 0}))
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, sc.LightDirection())

	sc.SetLightDirection(mgl32.Vec3{0, 1, 0})
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, sc.LightDirection())
}
