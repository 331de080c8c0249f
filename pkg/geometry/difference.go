package geometry

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// NewDifference creates the boolean subtraction base − cut. Both shapes are cloned.
//
// There is no boundary representation: Intersect marches the ray through both shapes.
// The result is only exact for convex, non-nested pairs such as two spheres or a
// half-space and a sphere; concave or deeply overlapping combinations are not supported.
func NewDifference(base, cut Shape) Shape {
	baseClone := base.Clone()
	cutClone := cut.Clone()
	return Shape{
		Kind: DifferenceKind,
		Base: &baseClone,
		Cut:  &cutClone,
	}
}

// intersectDifference finds the first visible surface of base − cut along the ray
func (s Shape) intersectDifference(ray core.Ray) Hit {
	baseHit := s.Base.Intersect(ray)
	if !baseHit.IsHit() {
		return Miss()
	}

	cutHit := s.Cut.Intersect(ray)
	if !cutHit.IsHit() || cutHit.Distance > baseHit.Distance {
		return baseHit
	}

	// The cut starts before the base surface: march on from the base hit to see where
	// the removed region ends.
	inner := ray.Continue(baseHit.Distance, ray.Direction)
	baseExit := s.Base.Intersect(inner)
	cutExit := s.Cut.Intersect(inner)

	if !cutExit.IsHit() {
		// Cut was left before reaching the base surface, unless both boundaries coincide
		if cutHit.Distance < baseHit.Distance {
			return baseHit
		}
		return Miss()
	}

	// A base that is never left again (a half-space) counts as infinitely deep
	baseExitDistance := math.Inf(1)
	if baseExit.IsHit() {
		baseExitDistance = baseExit.Distance
	}

	if cutExit.Distance < baseExitDistance {
		return Hit{
			Distance: baseHit.Distance + cutExit.Distance,
			Normal:   cutExit.Normal.Negate(),
		}
	}
	return Miss()
}
