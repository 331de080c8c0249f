package core

// Epsilon is the minimum distance a hit must lie along a ray. It keeps rays that
// leave a surface from immediately re-hitting it.
const Epsilon = 1e-4

// Ray represents a ray together with the medium it is travelling through.
//
// IOR is the refractive index of the current medium, Opacity the per-channel
// absorption coefficients of that medium and Filter the accumulated thin-film
// interference weight. A ray with Valid unset carries no light.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	IOR       float64
	Opacity   Vec3
	Filter    Vec3
	Valid     bool
}

// NewRay creates a new ray in vacuum with a neutral filter
func NewRay(origin, direction Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		IOR:       1.0,
		Filter:    NewVec3(1, 1, 1),
		Valid:     true,
	}
}

// InvalidRay returns a ray that terminates its path with zero contribution
func InvalidRay() Ray {
	return Ray{}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// Continue derives a ray leaving the hit point at distance along r, staying in the same medium
func (r Ray) Continue(distance float64, direction Vec3) Ray {
	next := r
	next.Origin = r.At(distance)
	next.Direction = direction
	return next
}

// Enter derives a ray leaving the hit point at distance along r into a new medium
func (r Ray) Enter(distance float64, direction Vec3, ior float64, opacity Vec3) Ray {
	next := r.Continue(distance, direction)
	next.IOR = ior
	next.Opacity = opacity
	return next
}

// WithFilter returns a copy of r whose filter is composed with f
func (r Ray) WithFilter(f Vec3) Ray {
	r.Filter = r.Filter.MultiplyVec(f)
	return r
}
