package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// bounceDiffuse reflects about a Gaussian-perturbed normal. Samples whose
// perturbed normal lies on the other side of the incoming ray than the true
// normal would reflect below the surface and are rejected.
func (m Material) bounceDiffuse(ray core.Ray, normal core.Vec3, distance float64, sampler core.Sampler) core.Ray {
	perturbed := perturb(normal, m.Roughness, sampler)
	if ray.Direction.Dot(perturbed)*ray.Direction.Dot(normal) < 0 {
		return core.InvalidRay()
	}

	return ray.Continue(distance, reflect(ray.Direction, perturbed))
}
