package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// SampleUniformSphere generates a uniform random direction on the unit sphere
// by inverting the CDF of the polar angle
func SampleUniformSphere(sample Vec2) Vec3 {
	theta := math.Acos(2*sample.X - 1)
	phi := 2 * math.Pi * sample.Y
	return sphericalDirection(theta, phi)
}

// SampleGaussianDirection returns a unit vector in a z-up frame whose polar angle is
// offset from mean by a normally distributed amount with the given standard deviation.
//
// X and Y feed a Box-Muller transform for the offset, Z picks the azimuth. A negative
// offset lands on the opposite side of the pole, which keeps the spread symmetric.
func SampleGaussianDirection(mean, stddev float64, sample Vec3) Vec3 {
	u := 1 - sample.X // (0, 1], keeps the log finite
	offset := math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*sample.Y)
	theta := mean + stddev*offset
	phi := 2 * math.Pi * sample.Z
	return sphericalDirection(theta, phi)
}

// SampleLensDisk picks a point on a lens of the given radius with polar sampling.
// The radius is uniform rather than area-uniform, which concentrates samples near the centre.
func SampleLensDisk(aperture float64, sample Vec2) Vec2 {
	angle := 2 * math.Pi * sample.X
	radius := sample.Y * aperture
	return NewVec2(radius*math.Cos(angle), radius*math.Sin(angle))
}

// SampleFrame maps a direction from a z-up local frame onto the frame around normal
func SampleFrame(normal, local Vec3) Vec3 {
	tangent := GenerateNormal(normal)
	bitangent := normal.Cross(tangent)
	return tangent.Multiply(local.X).Add(bitangent.Multiply(local.Y)).Add(normal.Multiply(local.Z))
}

func sphericalDirection(theta, phi float64) Vec3 {
	sinTheta := math.Sin(theta)
	return NewVec3(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), math.Cos(theta))
}
