package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ParallelEpsilon is the smallest |cos| between a ray and a plane normal that still intersects
const ParallelEpsilon = 1e-8

// NewPlane creates a new one-sided plane through point, visible from the side normal points to
func NewPlane(point, normal core.Vec3) Shape {
	return Shape{
		Kind:   PlaneKind,
		Point:  point,
		Normal: normal.Normalize(), // Ensure normal is normalized
	}
}

// intersectPlane solves the ray/plane equation, rejecting parallel and back-facing rays
func (s Shape) intersectPlane(ray core.Ray) Hit {
	// A ray must travel against the normal to see the plane
	denominator := ray.Direction.Dot(s.Normal)
	if denominator > -ParallelEpsilon {
		return Miss()
	}

	// t = (point_on_plane - ray_origin) · normal / (ray_direction · normal)
	t := s.Point.Subtract(ray.Origin).Dot(s.Normal) / denominator
	return Hit{Distance: t, Normal: s.Normal}
}
