package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

const tolerance = 1e-9

func vecNear(a, b core.Vec3) bool {
	return math.Abs(a.X-b.X) <= tolerance && math.Abs(a.Y-b.Y) <= tolerance && math.Abs(a.Z-b.Z) <= tolerance
}

// newEmitterScene creates a scene with one emitting plane at y=2 facing -y,
// scaled so that looking at it directly gives radiance 1
func newEmitterScene() *scene.Scene {
	s := scene.NewScene("emitter", nil, scene.DefaultSceneConfig())
	pi2 := math.Pi * math.Pi
	s.Add(geometry.NewPlane(core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0)),
		material.NewEmissive(core.NewVec3(0, 0, 0), core.NewVec3(pi2, pi2, pi2)))
	return s
}

func TestNewPathTracer_DefaultDepth(t *testing.T) {
	if pt := NewPathTracer(0); pt.MaxDepth != DefaultMaxDepth {
		t.Errorf("Expected default depth %d, got %d", DefaultMaxDepth, pt.MaxDepth)
	}
	if pt := NewPathTracer(3); pt.MaxDepth != 3 {
		t.Errorf("Expected depth 3, got %d", pt.MaxDepth)
	}
}

func TestTrace_MissIsBlack(t *testing.T) {
	pt := NewPathTracer(DefaultMaxDepth)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	tests := []struct {
		name  string
		scene *scene.Scene
	}{
		{"empty scene", scene.NewScene("empty", nil, scene.DefaultSceneConfig())},
		{"emitter behind the ray", newEmitterScene()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0))
			if got := pt.Trace(ray, tt.scene, sampler); got != (core.Vec3{}) {
				t.Errorf("Expected exactly zero radiance, got %v", got)
			}
		})
	}
}

func TestTrace_InvalidRayIsBlack(t *testing.T) {
	pt := NewPathTracer(DefaultMaxDepth)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	if got := pt.Trace(core.InvalidRay(), newEmitterScene(), sampler); got != (core.Vec3{}) {
		t.Errorf("Expected zero radiance for an invalid ray, got %v", got)
	}
}

func TestTrace_EmitterNormalization(t *testing.T) {
	pt := NewPathTracer(DefaultMaxDepth)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	s := newEmitterScene()

	for i := 0; i < 50; i++ {
		direction := core.NewVec3(sampler.Get1D()-0.5, 1, sampler.Get1D()-0.5).Normalize()
		got := pt.Trace(core.NewRay(core.NewVec3(0, 0, 0), direction), s, sampler)
		if !vecNear(got, core.NewVec3(1, 1, 1)) {
			t.Fatalf("Expected radiance 1 looking at the emitter, got %v", got)
		}
	}
}

func TestTrace_DepthLimit(t *testing.T) {
	// A mirrored emitting sphere seen from its centre: every bounce returns through
	// the centre and adds one unit of radiance until the depth limit stops it
	s := scene.NewScene("mirror ball", nil, scene.DefaultSceneConfig())
	pi2 := math.Pi * math.Pi
	mirror := material.NewRough(core.NewVec3(1, 1, 1), 0)
	mirror.Emission = core.NewVec3(pi2, pi2, pi2)
	s.Add(geometry.NewSphere(core.NewVec3(0, 0, 0), 1), mirror)

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	for _, depth := range []int{1, 3, 6, 10} {
		pt := NewPathTracer(depth)
		got := pt.Trace(ray, s, sampler)
		expected := float64(depth)
		if math.Abs(got.X-expected) > 1e-9 {
			t.Errorf("MaxDepth %d: expected radiance %f, got %v", depth, expected, got)
		}
	}
}

func TestTrace_ClosedWhiteBoxTerminates(t *testing.T) {
	box := scene.NewScene("white box", nil, scene.DefaultSceneConfig())
	white := material.NewDiffuse(core.NewVec3(1, 1, 1))
	for _, n := range []core.Vec3{
		core.NewVec3(1, 0, 0), core.NewVec3(-1, 0, 0),
		core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0),
		core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1),
	} {
		// Inward-facing walls one unit from the origin
		box.Add(geometry.NewPlane(n.Negate(), n), white)
	}

	pt := NewPathTracer(DefaultMaxDepth)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	for i := 0; i < 500; i++ {
		ray := core.NewRay(core.NewVec3(0, 0, 0), core.SampleUniformSphere(sampler.Get2D()))
		if got := pt.Trace(ray, box, sampler); got != (core.Vec3{}) {
			t.Fatalf("A box without emitters should stay black, got %v", got)
		}
	}
}

func TestTrace_FilterWeightsEmission(t *testing.T) {
	pt := NewPathTracer(DefaultMaxDepth)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))
	ray.Filter = core.NewVec3(0.5, 1, 0.25)

	if got := pt.Trace(ray, newEmitterScene(), sampler); !vecNear(got, ray.Filter) {
		t.Errorf("Expected emission weighted by the filter %v, got %v", ray.Filter, got)
	}
}

func TestTrace_AbsorptionAttenuates(t *testing.T) {
	pt := NewPathTracer(DefaultMaxDepth)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	// Travelling two units through a medium before reaching the emitter
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))
	ray.Opacity = core.NewVec3(0.5, 0, 1)

	expected := core.NewVec3(math.Exp(-1), 1, math.Exp(-2))
	if got := pt.Trace(ray, newEmitterScene(), sampler); !vecNear(got, expected) {
		t.Errorf("Expected Beer-Lambert attenuation %v, got %v", expected, got)
	}
}

func TestTrace_MatchedGlassIsInvisible(t *testing.T) {
	s := newEmitterScene()
	s.Add(geometry.NewSphere(core.NewVec3(0, 1, 0), 0.5), material.NewGlass(core.NewVec3(1, 1, 1), 1.0, 0))

	pt := NewPathTracer(DefaultMaxDepth)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	for i := 0; i < 20; i++ {
		if got := pt.Trace(ray, s, sampler); !vecNear(got, core.NewVec3(1, 1, 1)) {
			t.Fatalf("Expected the emitter seen straight through the glass, got %v", got)
		}
	}
}

func TestTrace_ColouredGlassAbsorbs(t *testing.T) {
	s := newEmitterScene()
	// Light passes through one unit of glass that keeps half of the red per unit length
	s.Add(geometry.NewSphere(core.NewVec3(0, 1, 0), 0.5), material.NewGlass(core.NewVec3(0.5, 1, 1), 1.0, 0))

	pt := NewPathTracer(DefaultMaxDepth)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))

	expected := core.NewVec3(0.5, 1, 1)
	for i := 0; i < 20; i++ {
		if got := pt.Trace(ray, s, sampler); !vecNear(got, expected) {
			t.Fatalf("Expected %v after absorption, got %v", expected, got)
		}
	}
}
