package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Object pairs one shape with the material it is made of
type Object struct {
	Shape    geometry.Shape
	Material material.Material
}

// Scene contains all the elements needed for rendering
type Scene struct {
	Name    string
	Objects []Object
	Camera  *geometry.Camera
	Config  SceneConfig
}

// SceneConfig holds the recommended rendering settings for a scene
type SceneConfig struct {
	MaxDepth int     // Maximum ray bounce depth
	Exposure float64 // Display exposure
	ToneMode string  // "linear" or "exponential"
}

// DefaultSceneConfig returns the settings most scenes render well with
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		MaxDepth: 6,
		Exposure: 5.0,
		ToneMode: "exponential",
	}
}

// NewScene creates an empty scene viewed through camera
func NewScene(name string, camera *geometry.Camera, config SceneConfig) *Scene {
	return &Scene{
		Name:    name,
		Objects: make([]Object, 0),
		Camera:  camera,
		Config:  config,
	}
}

// Add stores copies of shape and material so the scene owns them exclusively
func (s *Scene) Add(shape geometry.Shape, mat material.Material) {
	s.Objects = append(s.Objects, Object{Shape: shape.Clone(), Material: mat.Clone()})
}

// Intersect finds the nearest object hit by ray
func (s *Scene) Intersect(ray core.Ray) (Object, geometry.Hit, bool) {
	nearest := geometry.Miss()
	index := -1
	for i := range s.Objects {
		hit := s.Objects[i].Shape.Intersect(ray)
		if hit.IsHit() && (index < 0 || hit.Distance < nearest.Distance) {
			nearest = hit
			index = i
		}
	}

	if index < 0 {
		return Object{}, nearest, false
	}
	return s.Objects[index], nearest, true
}
