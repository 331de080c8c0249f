package scene

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// wallRadius makes a sphere flat enough to serve as a room wall
const wallRadius = 10e6

// frameCamera builds a camera at origin looking at target, the centre of an image
// plane 2*halfHeight tall and as wide as the image aspect ratio requires.
func frameCamera(origin, target, up core.Vec3, halfHeight float64, width, height int, focus, aperture float64) *geometry.Camera {
	forward := target.Subtract(origin).Normalize()
	right := forward.Cross(up).Normalize()
	trueUp := right.Cross(forward)
	halfWidth := halfHeight * float64(width) / float64(height)

	topLeft := target.Subtract(right.Multiply(halfWidth)).Add(trueUp.Multiply(halfHeight))
	return geometry.NewCamera(geometry.CameraConfig{
		Origin:     origin,
		TopLeft:    topLeft,
		TopRight:   topLeft.Add(right.Multiply(2 * halfWidth)),
		BottomLeft: topLeft.Subtract(trueUp.Multiply(2 * halfHeight)),
		Focus:      focus,
		Aperture:   aperture,
	})
}

// roomCamera looks along +y from just behind the middle of the room, z up
func roomCamera(width, height int, focus, aperture float64) *geometry.Camera {
	return frameCamera(core.NewVec3(0, -0.5, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1), 1.0, width, height, focus, aperture)
}

// addRoom encloses the scene in walls made of huge spheres with a glowing ceiling.
// The floor is optional so scenes can supply their own ground.
func addRoom(s *Scene, floor bool) {
	white := material.NewDiffuse(core.NewVec3(0.9, 0.9, 0.9))

	if floor {
		s.Add(geometry.NewSphere(core.NewVec3(0, 3.5, -wallRadius), wallRadius-0.5), white)
	}
	s.Add(geometry.NewSphere(core.NewVec3(0, wallRadius, 0), wallRadius-4.5), white)
	s.Add(geometry.NewSphere(core.NewVec3(-wallRadius, 3.5, 0), wallRadius-1.9),
		material.NewDiffuse(core.NewVec3(0.9, 0.5, 0.5)))
	s.Add(geometry.NewSphere(core.NewVec3(wallRadius, 3.5, 0), wallRadius-1.9),
		material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.9)))
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, wallRadius), wallRadius-2.5),
		material.NewEmissive(core.NewVec3(0, 0, 0), core.NewVec3(1.6, 1.47, 1.29)))
	s.Add(geometry.NewSphere(core.NewVec3(0, -wallRadius, 0), wallRadius-2.5), white)
}

// NewDefaultScene creates a room with a glass sphere and a chrome sphere
func NewDefaultScene(width, height int) *Scene {
	s := NewScene("default", roomCamera(width, height, 0, 0), DefaultSceneConfig())

	s.Add(geometry.NewSphere(core.NewVec3(1.0, 2.0, 0), 0.5),
		material.NewGlass(core.NewVec3(1, 1, 1), 1.5, 0.1))
	s.Add(geometry.NewSphere(core.NewVec3(-1.1, 2.8, 0), 0.5),
		material.NewChrome(core.NewVec3(0.8, 0.8, 0.8)))
	addRoom(s, true)

	return s
}

// NewCornellScene creates a closed white box lit by its ceiling. Every wall is a
// one-sided plane facing inwards, including the one behind the camera.
func NewCornellScene(width, height int) *Scene {
	config := DefaultSceneConfig()
	config.Exposure = 3.0
	camera := frameCamera(core.NewVec3(0, -0.8, 0), core.NewVec3(0, 0.2, 0), core.NewVec3(0, 0, 1), 1.0, width, height, 0, 0)
	s := NewScene("cornell", camera, config)

	white := material.NewDiffuse(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewDiffuse(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewDiffuse(core.NewVec3(0.12, 0.45, 0.15))
	light := material.NewEmissive(core.NewVec3(0.73, 0.73, 0.73), core.NewVec3(8, 8, 8))

	s.Add(geometry.NewPlane(core.NewVec3(-1, 0, 0), core.NewVec3(1, 0, 0)), red)
	s.Add(geometry.NewPlane(core.NewVec3(1, 0, 0), core.NewVec3(-1, 0, 0)), green)
	s.Add(geometry.NewPlane(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1)), white)
	s.Add(geometry.NewPlane(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), light)
	s.Add(geometry.NewPlane(core.NewVec3(0, 3, 0), core.NewVec3(0, -1, 0)), white)
	s.Add(geometry.NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0)), white)

	s.Add(geometry.NewSphere(core.NewVec3(-0.4, 1.9, -0.6), 0.4),
		material.NewGlass(core.NewVec3(0.95, 0.95, 0.95), 1.5, 0))
	s.Add(geometry.NewSphere(core.NewVec3(0.45, 1.4, -0.7), 0.3), white)

	return s
}

// NewFilmScene creates a soap bubble floating in the room
func NewFilmScene(width, height int) *Scene {
	s := NewScene("film", roomCamera(width, height, 0, 0), DefaultSceneConfig())

	s.Add(geometry.NewSphere(core.NewVec3(0, 2.0, 0.2), 0.6),
		material.NewFilm(core.NewVec3(1, 1, 1), 1.33, 380e-9))
	s.Add(geometry.NewSphere(core.NewVec3(-1.0, 3.2, -0.1), 0.4),
		material.NewDiffuse(core.NewVec3(0.3, 0.8, 0.3)))
	addRoom(s, true)

	return s
}

// NewCraterScene creates a floor with a crater and a sphere with a bite taken out,
// focused on the bitten sphere with a wide aperture
func NewCraterScene(width, height int) *Scene {
	s := NewScene("crater", roomCamera(width, height, 3.2, 0.05), DefaultSceneConfig())

	ground := geometry.NewPlane(core.NewVec3(0, 0, -0.5), core.NewVec3(0, 0, 1))
	bowl := geometry.NewSphere(core.NewVec3(0.2, 2.2, -0.5), 0.7)
	s.Add(geometry.NewDifference(ground, bowl), material.NewDiffuse(core.NewVec3(0.9, 0.9, 0.9)))

	apple := geometry.NewSphere(core.NewVec3(-0.9, 2.6, 0), 0.5)
	bite := geometry.NewSphere(core.NewVec3(-0.6, 2.2, 0.25), 0.35)
	s.Add(geometry.NewDifference(apple, bite), material.NewDiffuse(core.NewVec3(0.8, 0.2, 0.2)))

	s.Add(geometry.NewSphere(core.NewVec3(0.9, 2.0, 0.3), 0.35),
		material.NewGlass(core.NewVec3(0.8, 0.9, 1.0), 1.5, 0))
	addRoom(s, false)

	return s
}

// NewEmissivePlaneScene creates a single light-emitting plane filling the whole view.
// Every camera ray hits it directly, so each pixel converges to radiance 1.
func NewEmissivePlaneScene(width, height int) *Scene {
	config := SceneConfig{MaxDepth: 6, Exposure: 1.0, ToneMode: "linear"}
	s := NewScene("emissive-plane", roomCamera(width, height, 0, 0), config)

	pi2 := math.Pi * math.Pi
	s.Add(geometry.NewPlane(core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0)),
		material.NewEmissive(core.NewVec3(0, 0, 0), core.NewVec3(pi2, pi2, pi2)))

	return s
}
