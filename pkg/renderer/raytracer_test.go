package renderer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

func newSeededSampler(seed int64) core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(seed)))
}

func mustTrace(t *testing.T, rt *Raytracer, img *Image, sampler core.Sampler) RenderStats {
	t.Helper()
	stats, err := rt.TraceImage(img, sampler)
	if err != nil {
		t.Fatalf("TraceImage failed: %v", err)
	}
	return stats
}

func mustTraceTiled(t *testing.T, rt *Raytracer, img *Image, random *rand.Rand, tileSize, workers int) RenderStats {
	t.Helper()
	stats, err := rt.TraceImageTiled(img, random, tileSize, workers)
	if err != nil {
		t.Fatalf("TraceImageTiled failed: %v", err)
	}
	return stats
}

func TestRaytracer_EmissivePlaneIsUnitRadiance(t *testing.T) {
	s := scene.NewEmissivePlaneScene(16, 12)
	rt := NewRaytracer(s, 16, 12, nil)
	img := NewImage(16, 12)

	stats, err := rt.TraceImage(img, newSeededSampler(1))
	if err != nil {
		t.Fatalf("TraceImage failed: %v", err)
	}

	if stats.Passes != 1 || stats.TotalPixels != 16*12 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			if got := img.Mean(x, y); !vecClose(got, core.NewVec3(1, 1, 1), 1e-9) {
				t.Fatalf("Pixel (%d,%d): expected unit radiance, got %v", x, y, got)
			}
		}
	}
}

func TestRaytracer_RepeatedPassMatchesSinglePass(t *testing.T) {
	const width, height = 8, 6
	s := scene.NewDefaultScene(width, height)
	rt := NewRaytracer(s, width, height, nil)

	single := NewImage(width, height)
	mustTrace(t, rt, single, newSeededSampler(99))

	repeated := NewImage(width, height)
	for i := 0; i < 3; i++ {
		mustTrace(t, rt, repeated, newSeededSampler(99))
	}

	if repeated.Passes != 3 {
		t.Fatalf("Expected 3 passes, got %d", repeated.Passes)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			want := single.Mean(x, y)
			got := repeated.Mean(x, y)
			tol := 1e-9 * math.Max(1, want.Length())
			if !vecClose(got, want, tol) {
				t.Errorf("Pixel (%d,%d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

func TestRaytracer_TiledIsDeterministic(t *testing.T) {
	const width, height = 20, 14
	s := scene.NewCornellScene(width, height)
	rt := NewRaytracer(s, width, height, nil)

	a := NewImage(width, height)
	b := NewImage(width, height)
	mustTraceTiled(t, rt, a, rand.New(rand.NewSource(7)), 6, 3)
	mustTraceTiled(t, rt, b, rand.New(rand.NewSource(7)), 6, 1)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("Pixel (%d,%d) differs between runs: %v vs %v", x, y, a.At(x, y), b.At(x, y))
			}
		}
	}
}

func TestRaytracer_TiledCoversEveryPixel(t *testing.T) {
	const width, height = 13, 9
	s := scene.NewEmissivePlaneScene(width, height)
	rt := NewRaytracer(s, width, height, nil)
	img := NewImage(width, height)

	mustTraceTiled(t, rt, img, rand.New(rand.NewSource(3)), 4, 2)
	stats := mustTraceTiled(t, rt, img, rand.New(rand.NewSource(4)), 0, 2) // default tile size

	if stats.Passes != 2 {
		t.Errorf("Expected 2 passes, got %d", stats.Passes)
	}
	if stats.TotalPixels != width*height {
		t.Errorf("Expected %d pixels in the pass, got %d", width*height, stats.TotalPixels)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if got := img.Mean(x, y); !vecClose(got, core.NewVec3(1, 1, 1), 1e-9) {
				t.Fatalf("Pixel (%d,%d): expected unit radiance, got %v", x, y, got)
			}
		}
	}
}

func TestRaytracer_UsesGivenIntegrator(t *testing.T) {
	s := scene.NewEmissivePlaneScene(4, 4)
	mock := &MockIntegrator{returnColor: core.NewVec3(0.25, 0.5, 1)}
	rt := NewRaytracer(s, 4, 4, mock)
	img := NewImage(4, 4)

	mustTrace(t, rt, img, newSeededSampler(5))

	if mock.callCount != 16 {
		t.Errorf("Expected 16 integrator calls, got %d", mock.callCount)
	}
	if got := img.Mean(3, 3); got != mock.returnColor {
		t.Errorf("Expected integrator colour %v, got %v", mock.returnColor, got)
	}
}

func TestRaytracer_RejectsMismatchedImage(t *testing.T) {
	s := scene.NewEmissivePlaneScene(8, 6)
	rt := NewRaytracer(s, 8, 6, nil)

	tests := []struct {
		name          string
		width, height int
	}{
		{"narrower", 4, 6},
		{"taller", 8, 9},
		{"larger", 16, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := NewImage(tt.width, tt.height)
			if _, err := rt.TraceImage(img, newSeededSampler(1)); err == nil {
				t.Error("TraceImage: expected size mismatch error")
			}
			if _, err := rt.TraceImageTiled(img, rand.New(rand.NewSource(1)), 4, 2); err == nil {
				t.Error("TraceImageTiled: expected size mismatch error")
			}
			if img.Passes != 0 {
				t.Errorf("Rejected image should not complete a pass, got %d", img.Passes)
			}
		})
	}
}
