package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Camera generates rays through a rectangular image plane from a thin lens.
//
// The image plane is given by three of its corners; u runs from the top-left towards
// the top-right corner and v from the top-left towards the bottom-left corner.
type Camera struct {
	origin     core.Vec3 // Lens centre
	topLeft    core.Vec3
	horizontal core.Vec3 // topRight - topLeft
	vertical   core.Vec3 // bottomLeft - topLeft
	focus      float64   // Distance to the plane of perfect focus
	aperture   float64   // Lens radius, 0 for a pinhole
}

// CameraConfig describes the camera geometry and lens
type CameraConfig struct {
	Origin     core.Vec3
	TopLeft    core.Vec3
	TopRight   core.Vec3
	BottomLeft core.Vec3
	Focus      float64 // <= 0 focuses on the image plane
	Aperture   float64
}

// LensSample is the per-pass lens state: one point on the lens and the image plane
// shift that keeps the focus plane sharp for rays leaving that point.
type LensSample struct {
	Origin core.Vec3
	PlaneX float64
	PlaneY float64
}

// NewCamera creates a camera from its configuration
func NewCamera(config CameraConfig) *Camera {
	c := &Camera{
		origin:     config.Origin,
		topLeft:    config.TopLeft,
		horizontal: config.TopRight.Subtract(config.TopLeft),
		vertical:   config.BottomLeft.Subtract(config.TopLeft),
		focus:      config.Focus,
		aperture:   config.Aperture,
	}
	if c.focus <= 0 {
		c.focus = c.PlaneDistance()
	}
	return c
}

// PlaneDistance returns the distance from the lens centre to the centre of the image plane
func (c *Camera) PlaneDistance() float64 {
	center := c.topLeft.Add(c.horizontal.Multiply(0.5)).Add(c.vertical.Multiply(0.5))
	return center.Subtract(c.origin).Length()
}

// Focus returns the focus distance
func (c *Camera) Focus() float64 {
	return c.focus
}

// Aperture returns the lens radius
func (c *Camera) Aperture() float64 {
	return c.aperture
}

// CenterLens returns the lens sample at the lens centre, as used by a pinhole
func (c *Camera) CenterLens() LensSample {
	return LensSample{Origin: c.origin}
}

// PaintStart samples the lens once for a full pass.
// Points at the focus distance stay put; nearer and farther points blur in proportion
// to (focus - planeDistance) / focus.
func (c *Camera) PaintStart(sampler core.Sampler) LensSample {
	if c.aperture <= 0 {
		return c.CenterLens()
	}

	dof := core.SampleLensDisk(c.aperture, sampler.Get2D())
	shift := (c.focus - c.PlaneDistance()) / c.focus

	return LensSample{
		Origin: c.origin.Add(c.horizontal.Multiply(dof.X)).Add(c.vertical.Multiply(dof.Y)),
		PlaneX: dof.X * shift,
		PlaneY: dof.Y * shift,
	}
}

// GetRay generates a ray for image plane coordinates (u, v) in [0, 1)
func (c *Camera) GetRay(u, v float64, lens LensSample) core.Ray {
	p := c.topLeft.
		Add(c.horizontal.Multiply(u + lens.PlaneX)).
		Add(c.vertical.Multiply(v + lens.PlaneY))

	direction := p.Subtract(lens.Origin).Normalize()
	return core.NewRay(lens.Origin, direction)
}
