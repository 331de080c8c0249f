package integrator

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// DefaultMaxDepth is the number of surface interactions traced per camera ray
const DefaultMaxDepth = 6

// emissionScale normalizes material emission for the bounce sampling scheme
const emissionScale = 1 / (math.Pi * math.Pi)

// PathTracer implements recursive unidirectional path tracing. The scene has no
// background: all light comes from emissive materials.
type PathTracer struct {
	MaxDepth int
}

// NewPathTracer creates a path tracer; maxDepth <= 0 selects DefaultMaxDepth
func NewPathTracer(maxDepth int) *PathTracer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &PathTracer{MaxDepth: maxDepth}
}

// Trace computes the radiance carried back along ray
func (pt *PathTracer) Trace(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	return pt.trace(ray, s, sampler, 0)
}

func (pt *PathTracer) trace(ray core.Ray, s *scene.Scene, sampler core.Sampler, depth int) core.Vec3 {
	if !ray.Valid || depth >= pt.MaxDepth {
		return core.Vec3{}
	}

	obj, hit, ok := s.Intersect(ray)
	if !ok {
		return core.Vec3{}
	}
	mat := obj.Material

	var radiance core.Vec3
	if !mat.IsBlack() {
		next := mat.Bounce(ray, hit.Normal, hit.Distance, sampler)
		radiance = pt.trace(next, s, sampler, depth+1)

		// Inside an absorbing medium the colour is applied by Beer-Lambert instead
		if ray.Opacity.IsZero() && next.Opacity.IsZero() {
			radiance = radiance.MultiplyVec(mat.Colour)
		}
	}

	radiance = radiance.Add(mat.Emission.Multiply(emissionScale).MultiplyVec(ray.Filter))

	if !ray.Opacity.IsZero() {
		radiance = radiance.MultiplyVec(ray.Opacity.Multiply(-hit.Distance).Exp())
	}
	return radiance
}
