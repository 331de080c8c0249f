package material

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// bounceGlass picks reflection or refraction by the Fresnel reflectance.
// The ray enters the glass when it travels against the outward normal and
// leaves it into vacuum otherwise.
func (m Material) bounceGlass(ray core.Ray, normal core.Vec3, distance float64, sampler core.Sampler) core.Ray {
	if m.Roughness > 0 {
		perturbed := perturb(normal, m.Roughness, sampler)
		if ray.Direction.Dot(perturbed)*ray.Direction.Dot(normal) < 0 {
			perturbed = perturbed.Negate()
		}
		normal = perturbed
	}

	cos1 := -ray.Direction.Dot(normal)
	n1, n2 := ray.IOR, m.IOR
	opacity := absorption(m.Colour)
	if cos1 < 0 {
		// Leaving the medium: work against the inward-facing normal
		normal = normal.Negate()
		cos1 = -cos1
		n2 = 1.0
		opacity = core.Vec3{}
	}

	eta := n1 / n2
	cos2, ok := refractedCos(eta, cos1)
	if !ok || sampler.Get1D() < fresnel(n1, n2, cos1, cos2) {
		return ray.Continue(distance, reflect(ray.Direction, normal))
	}

	direction := ray.Direction.Multiply(eta).Add(normal.Multiply(eta*cos1 - cos2)).Normalize()
	return ray.Enter(distance, direction, n2, opacity)
}

// absorption converts a transmission colour into per-channel absorption coefficients
func absorption(colour core.Vec3) core.Vec3 {
	return core.NewVec3(-math.Log(colour.X), -math.Log(colour.Y), -math.Log(colour.Z))
}

// refractedCos applies Snell's law for relative index eta = n1/n2.
// It reports false on total internal reflection.
func refractedCos(eta, cos1 float64) (float64, bool) {
	cos2sq := 1 - eta*eta*(1-cos1*cos1)
	if cos2sq <= 0 {
		return 0, false
	}
	return math.Sqrt(cos2sq), true
}

// fresnel returns the unpolarized reflectance, the mean of the s and p terms
func fresnel(n1, n2, cos1, cos2 float64) float64 {
	rs := (n1*cos1 - n2*cos2) / (n1*cos1 + n2*cos2)
	rp := (n2*cos1 - n1*cos2) / (n2*cos1 + n1*cos2)
	return (rs*rs + rp*rp) / 2
}

// reflectance is the Fresnel reflectance going from n1 into n2, 1 under total internal reflection
func reflectance(n1, n2, cos1 float64) float64 {
	cos2, ok := refractedCos(n1/n2, cos1)
	if !ok {
		return 1
	}
	return fresnel(n1, n2, cos1, cos2)
}
