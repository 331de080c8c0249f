package material

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Representative wavelengths in metres for the red, green and blue channels
const (
	WavelengthRed   = 640e-9
	WavelengthGreen = 540e-9
	WavelengthBlue  = 450e-9
)

// bounceFilm treats the film as a layer with parallel faces in vacuum. Light
// reflected inside the layer interferes with itself, tinting both the
// reflected and the transmitted rays.
func (m Material) bounceFilm(ray core.Ray, normal core.Vec3, distance float64, sampler core.Sampler) core.Ray {
	cos1 := -ray.Direction.Dot(normal)
	if cos1 < 0 {
		normal = normal.Negate()
		cos1 = -cos1
	}

	outside := reflectance(1.0, m.IOR, cos1)
	cos2, ok := refractedCos(1.0/m.IOR, cos1)
	if !ok {
		return ray.Continue(distance, reflect(ray.Direction, normal))
	}
	inside := reflectance(m.IOR, 1.0, cos2)
	pathLength := 2 * m.Thickness / cos2

	// Two outer faces each reflect with probability outside
	if sampler.Get1D() < 2*outside/(1+outside) {
		reflected := ray.Continue(distance, reflect(ray.Direction, normal))
		return reflected.WithFilter(interferenceFilter(pathLength, inside))
	}

	// Parallel faces leave the transmitted direction unchanged
	transmitted := ray.Continue(distance, ray.Direction)
	return transmitted.WithFilter(interferenceFilter(pathLength, inside*inside))
}

// interferenceFilter blends the per-channel interference term against 1 by weight
func interferenceFilter(pathLength, weight float64) core.Vec3 {
	return core.NewVec3(
		lerp(1, interference(WavelengthRed, pathLength), weight),
		lerp(1, interference(WavelengthGreen, pathLength), weight),
		lerp(1, interference(WavelengthBlue, pathLength), weight),
	)
}

func interference(wavelength, pathLength float64) float64 {
	return (1 + math.Cos(2*math.Pi*pathLength/wavelength)) / 2
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}
