package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) Shape {
	return Shape{
		Kind:   SphereKind,
		Center: center,
		Radius: radius,
	}
}

// intersectSphere solves |O + tD - C|² = r² for the ray
func (s Shape) intersectSphere(ray core.Ray) Hit {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return Miss()
	}
	sqrtD := math.Sqrt(discriminant)

	// Prefer the nearer root unless it sits on (or behind) the ray origin
	distance := (-halfB - sqrtD) / a
	if distance < core.Epsilon {
		distance = (-halfB + sqrtD) / a
	}

	normal := ray.At(distance).Subtract(s.Center).Normalize()
	return Hit{Distance: distance, Normal: normal}
}
