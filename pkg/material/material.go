package material

import (
	"fmt"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Kind identifies the scattering model of a material
type Kind int

const (
	Diffuse Kind = iota // Rough reflector, also used for chrome and light sources
	Glass               // Refracting dielectric with optional absorption
	Film                // Thin dielectric layer with interference colouring
)

func (k Kind) String() string {
	switch k {
	case Diffuse:
		return "diffuse"
	case Glass:
		return "glass"
	case Film:
		return "film"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DefaultRoughness is the Gaussian spread of a plain diffuse surface in radians
const DefaultRoughness = 1.0

// ChromeRoughness gives a nearly mirror-like reflector
const ChromeRoughness = 0.1

// Material describes how a surface scatters and emits light.
//
// Colour is the albedo for diffuse surfaces and the per-channel transmission of
// glass, which absorbs -ln(Colour) per unit distance travelled inside it.
// Thickness is the physical film thickness in metres.
type Material struct {
	Kind      Kind
	Colour    core.Vec3
	Emission  core.Vec3
	Roughness float64
	IOR       float64
	Thickness float64
}

// NewDiffuse creates a rough diffuse material
func NewDiffuse(colour core.Vec3) Material {
	return NewRough(colour, DefaultRoughness)
}

// NewRough creates a reflector with the given roughness, 0 being a perfect mirror
func NewRough(colour core.Vec3, roughness float64) Material {
	return Material{Kind: Diffuse, Colour: colour, Roughness: roughness}
}

// NewEmissive creates a diffuse material that also emits light
func NewEmissive(colour, emission core.Vec3) Material {
	m := NewDiffuse(colour)
	m.Emission = emission
	return m
}

// NewChrome creates a mirror-like metal
func NewChrome(colour core.Vec3) Material {
	return NewRough(colour, ChromeRoughness)
}

// NewGlass creates a dielectric; roughness 0 gives a perfectly smooth surface
func NewGlass(colour core.Vec3, ior, roughness float64) Material {
	return Material{Kind: Glass, Colour: colour, IOR: ior, Roughness: roughness}
}

// NewFilm creates a thin film such as a soap bubble
func NewFilm(colour core.Vec3, ior, thickness float64) Material {
	return Material{Kind: Film, Colour: colour, IOR: ior, Thickness: thickness}
}

// Clone returns an independent copy of the material
func (m Material) Clone() Material {
	return m
}

// IsBlack reports whether the material reflects no light at all
func (m Material) IsBlack() bool {
	return m.Colour.IsZero()
}

// Bounce scatters ray at a hit distance along it against the geometric normal
// and returns the continuation ray. A rejected sample returns core.InvalidRay.
func (m Material) Bounce(ray core.Ray, normal core.Vec3, distance float64, sampler core.Sampler) core.Ray {
	switch m.Kind {
	case Glass:
		return m.bounceGlass(ray, normal, distance, sampler)
	case Film:
		return m.bounceFilm(ray, normal, distance, sampler)
	default:
		return m.bounceDiffuse(ray, normal, distance, sampler)
	}
}

// reflect mirrors d about the unit normal n
func reflect(d, n core.Vec3) core.Vec3 {
	return d.Subtract(n.Multiply(2 * d.Dot(n)))
}

// perturb tilts normal by a Gaussian-distributed angle with the given spread
func perturb(normal core.Vec3, roughness float64, sampler core.Sampler) core.Vec3 {
	return core.SampleFrame(normal, core.SampleGaussianDirection(0, roughness, sampler.Get3D()))
}
