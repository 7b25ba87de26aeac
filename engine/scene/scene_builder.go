package scene

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option used to configure a scene created
// with NewScene.
type SceneBuilderOption func(*sceneImpl)

// WithName sets the scene's identifier, used in device resource labels.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: a function that sets the name
func WithName(name string) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.name = name
	}
}

// WithMeshes adds meshes to the scene at construction.
//
// Parameters:
//   - meshes: the meshes to add
//
// Returns:
//   - SceneBuilderOption: a function that adds the meshes
func WithMeshes(meshes ...Mesh) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.meshes = append(s.meshes, meshes...)
	}
}

// WithLightDirection sets the view-space light direction used by the lambert
// material.
//
// Parameters:
//   - dir: the light direction
//
// Returns:
//   - SceneBuilderOption: a function that sets the light direction
func WithLightDirection(dir mgl32.Vec3) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.lightDirection = dir
	}
}

// MeshBuilderOption is a functional option used to configure a mesh created
// with NewMesh or the primitive constructors.
type MeshBuilderOption func(*meshImpl)

// WithTransform sets the mesh's model transform.
//
// Parameters:
//   - transform: the model matrix
//
// Returns:
//   - MeshBuilderOption: a function that sets the transform
func WithTransform(transform mgl32.Mat4) MeshBuilderOption {
	return func(m *meshImpl) {
		m.transform = transform
	}
}

// WithColor sets the mesh's base color.
//
// Parameters:
//   - color: the base color
//
// Returns:
//   - MeshBuilderOption: a function that sets the color
func WithColor(color common.Color) MeshBuilderOption {
	return func(m *meshImpl) {
		m.color = color
	}
}
