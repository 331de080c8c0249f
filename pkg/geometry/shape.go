package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Hit contains the result of a ray-shape intersection test
type Hit struct {
	Distance float64   // Parameter t along the ray
	Normal   core.Vec3 // Outward geometric normal; consumers resolve the side from the ray
}

// Miss returns the hit value reported when a ray misses a shape
func Miss() Hit {
	return Hit{Distance: -1}
}

// IsHit reports whether the intersection lies far enough along the ray to count
func (h Hit) IsHit() bool {
	return h.Distance > core.Epsilon
}

// ShapeKind identifies the variant held by a Shape
type ShapeKind int

const (
	SphereKind ShapeKind = iota
	PlaneKind
	DifferenceKind
)

func (k ShapeKind) String() string {
	switch k {
	case SphereKind:
		return "sphere"
	case PlaneKind:
		return "plane"
	case DifferenceKind:
		return "difference"
	default:
		return "unknown"
	}
}

// Shape is a closed set of primitive variants. Only the fields for Kind are meaningful:
// Sphere uses Center and Radius, Plane uses Point and Normal, Difference uses Base and Cut.
//
// The shapes inside a Difference are owned by it; use Clone to copy a Shape without
// sharing them.
type Shape struct {
	Kind ShapeKind

	Center core.Vec3
	Radius float64

	Point  core.Vec3
	Normal core.Vec3

	Base *Shape
	Cut  *Shape
}

// Intersect tests the ray against the shape
func (s Shape) Intersect(ray core.Ray) Hit {
	switch s.Kind {
	case SphereKind:
		return s.intersectSphere(ray)
	case PlaneKind:
		return s.intersectPlane(ray)
	case DifferenceKind:
		return s.intersectDifference(ray)
	default:
		return Miss()
	}
}

// Clone returns a deep copy of the shape
func (s Shape) Clone() Shape {
	clone := s
	if s.Base != nil {
		base := s.Base.Clone()
		clone.Base = &base
	}
	if s.Cut != nil {
		cut := s.Cut.Clone()
		clone.Cut = &cut
	}
	return clone
}
