package renderer

import (
	"image"
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

func vecClose(a, b core.Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

// addPass adds c to every pixel and completes the pass
func addPass(img *Image, c core.Vec3) {
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			img.Add(x, y, c)
		}
	}
	img.CompletePass()
}

func TestImage_ZeroPassesIsBlack(t *testing.T) {
	img := NewImage(3, 2)

	if got := img.Mean(1, 1); !got.IsZero() {
		t.Errorf("Expected black mean before the first pass, got %v", got)
	}
	if got := img.Tonemap(1, 1, 1.0, ToneLinear); !got.IsZero() {
		t.Errorf("Expected black linear tonemap before the first pass, got %v", got)
	}
	if got := img.Tonemap(1, 1, 1.0, ToneExponential); !got.IsZero() {
		t.Errorf("Expected black exponential tonemap before the first pass, got %v", got)
	}

	rgba := img.ToRGBA(1.0, ToneLinear)
	for i := 0; i < len(rgba.Pix); i += 4 {
		if rgba.Pix[i] != 0 || rgba.Pix[i+1] != 0 || rgba.Pix[i+2] != 0 || rgba.Pix[i+3] != 255 {
			t.Fatalf("Expected opaque black at byte %d, got %v", i, rgba.Pix[i:i+4])
		}
	}
}

func TestImage_Tonemap(t *testing.T) {
	img := NewImage(1, 1)
	addPass(img, core.NewVec3(2, 1, 0.5))
	addPass(img, core.NewVec3(2, 1, 0.5))

	tests := []struct {
		name     string
		exposure float64
		mode     ToneMode
		expected core.Vec3
	}{
		{"linear unit exposure", 1.0, ToneLinear, core.NewVec3(2, 1, 0.5)},
		{"linear exposure 2", 2.0, ToneLinear, core.NewVec3(1, 0.5, 0.25)},
		{"exponential unit exposure", 1.0, ToneExponential,
			core.NewVec3(1-math.Exp(-2), 1-math.Exp(-1), 1-math.Exp(-0.5))},
		{"exponential exposure 2", 2.0, ToneExponential,
			core.NewVec3(1-math.Exp(-4), 1-math.Exp(-2), 1-math.Exp(-1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := img.Tonemap(0, 0, tt.exposure, tt.mode)
			if !vecClose(got, tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestImage_MeanAndAccumulation(t *testing.T) {
	img := NewImage(2, 2)
	addPass(img, core.NewVec3(1, 2, 3))
	addPass(img, core.NewVec3(3, 2, 1))

	if img.Passes != 2 {
		t.Fatalf("Expected 2 passes, got %d", img.Passes)
	}
	if got := img.At(1, 0); !vecClose(got, core.NewVec3(4, 4, 4), 1e-12) {
		t.Errorf("Expected accumulated (4,4,4), got %v", got)
	}
	if got := img.Mean(1, 0); !vecClose(got, core.NewVec3(2, 2, 2), 1e-12) {
		t.Errorf("Expected mean (2,2,2), got %v", got)
	}
	// Luminances 1.815 and 2.185 differ by 0.37
	if got := img.Variance(1, 0); math.Abs(got-0.37*0.37/2) > 1e-9 {
		t.Errorf("Expected variance %f, got %f", 0.37*0.37/2, got)
	}
}

func TestImage_WriteDoesNotModifyAccumulator(t *testing.T) {
	img := NewImage(2, 1)
	addPass(img, core.NewVec3(0.3, 0.6, 0.9))
	before := img.At(0, 0)

	dst := image.NewRGBA(image.Rect(0, 0, 2, 1))
	for i := 0; i < 3; i++ {
		if err := img.Write(dst, 1.5, ToneExponential); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := img.Write(dst, 0.5, ToneLinear); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	if got := img.At(0, 0); got != before {
		t.Errorf("Accumulator changed from %v to %v", before, got)
	}
	if img.Passes != 1 {
		t.Errorf("Expected 1 pass after writes, got %d", img.Passes)
	}
}

func TestImage_WriteSizeMismatch(t *testing.T) {
	img := NewImage(4, 4)
	if err := img.Write(image.NewRGBA(image.Rect(0, 0, 3, 4)), 1.0, ToneLinear); err == nil {
		t.Error("Expected error writing into a smaller image")
	}
}

func TestImage_WriteQuantizesWhite(t *testing.T) {
	img := NewImage(2, 2)
	addPass(img, core.NewVec3(1, 1, 1))

	rgba := img.ToRGBA(1.0, ToneLinear)
	for i, b := range rgba.Pix {
		if b != 255 {
			t.Fatalf("Expected 255 at byte %d, got %d", i, b)
		}
	}
}

func TestImage_Merge(t *testing.T) {
	a := NewImage(2, 2)
	b := NewImage(2, 2)
	addPass(a, core.NewVec3(1, 0, 0))
	addPass(b, core.NewVec3(0, 1, 0))
	addPass(b, core.NewVec3(0, 1, 0))

	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if a.Passes != 3 {
		t.Errorf("Expected 3 passes after merge, got %d", a.Passes)
	}
	if got := a.At(1, 1); !vecClose(got, core.NewVec3(1, 2, 0), 1e-12) {
		t.Errorf("Expected merged (1,2,0), got %v", got)
	}

	if err := a.Merge(NewImage(3, 2)); err == nil {
		t.Error("Expected error merging images of different sizes")
	}
}

func TestImage_Reset(t *testing.T) {
	img := NewImage(2, 2)
	addPass(img, core.NewVec3(5, 5, 5))
	img.Reset()

	if img.Passes != 0 {
		t.Errorf("Expected 0 passes after reset, got %d", img.Passes)
	}
	if got := img.At(0, 1); !got.IsZero() {
		t.Errorf("Expected cleared pixel after reset, got %v", got)
	}
	if stats := img.Stats(); stats.TotalSamples != 0 {
		t.Errorf("Expected no samples after reset, got %d", stats.TotalSamples)
	}
}

func TestImage_Stats(t *testing.T) {
	img := NewImage(2, 2)
	addPass(img, core.NewVec3(1, 1, 1))
	addPass(img, core.NewVec3(3, 3, 3))

	stats := img.Stats()
	if stats.Passes != 2 || stats.TotalPixels != 4 || stats.TotalSamples != 8 {
		t.Errorf("Unexpected counts: %+v", stats)
	}
	if math.Abs(stats.AverageSamples-2) > 1e-12 {
		t.Errorf("Expected 2 samples per pixel, got %f", stats.AverageSamples)
	}
	if math.Abs(stats.AverageLuminance-2) > 1e-9 {
		t.Errorf("Expected average luminance 2, got %f", stats.AverageLuminance)
	}
	// Luminance samples 1 and 3 have unbiased variance 2
	if math.Abs(stats.MeanVariance-2) > 1e-9 {
		t.Errorf("Expected mean variance 2, got %f", stats.MeanVariance)
	}
}

func TestParseToneMode(t *testing.T) {
	tests := []struct {
		input    string
		expected ToneMode
		wantErr  bool
	}{
		{"linear", ToneLinear, false},
		{"exponential", ToneExponential, false},
		{"Linear", ToneLinear, true},
		{"", ToneLinear, true},
	}

	for _, tt := range tests {
		got, err := ParseToneMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseToneMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseToneMode(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
		if !tt.wantErr && got.String() != tt.input {
			t.Errorf("%v.String() = %q, expected %q", got, got.String(), tt.input)
		}
	}

	if got := ToneMode(7).String(); got != "ToneMode(7)" {
		t.Errorf("Expected fallback name, got %q", got)
	}
}
