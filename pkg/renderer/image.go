package renderer

import (
	"fmt"
	"image"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ToneMode selects how accumulated radiance is mapped to display values
type ToneMode int

const (
	// ToneLinear divides the accumulated radiance by exposure × passes
	ToneLinear ToneMode = iota
	// ToneExponential maps the mean radiance through 1 - exp(-mean × exposure)
	ToneExponential
)

func (m ToneMode) String() string {
	switch m {
	case ToneLinear:
		return "linear"
	case ToneExponential:
		return "exponential"
	default:
		return fmt.Sprintf("ToneMode(%d)", int(m))
	}
}

// ParseToneMode converts "linear" or "exponential" to a ToneMode
func ParseToneMode(s string) (ToneMode, error) {
	switch s {
	case "linear":
		return ToneLinear, nil
	case "exponential":
		return ToneExponential, nil
	default:
		return ToneLinear, fmt.Errorf("unknown tone mode %q", s)
	}
}

// Image is a progressive accumulation buffer. Each pixel holds the sum of the
// radiance of every completed pass; display conversion never modifies it.
type Image struct {
	Width  int
	Height int
	Passes int // Completed passes

	pixels []PixelStats
}

// NewImage creates an empty accumulation buffer
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		pixels: make([]PixelStats, width*height),
	}
}

// Add accumulates radiance c into pixel (x, y)
func (img *Image) Add(x, y int, c core.Vec3) {
	img.pixels[y*img.Width+x].AddSample(c)
}

// At returns the accumulated radiance of pixel (x, y)
func (img *Image) At(x, y int) core.Vec3 {
	return img.pixels[y*img.Width+x].ColorAccum
}

// Mean returns the average radiance per pass of pixel (x, y), black before the first pass
func (img *Image) Mean(x, y int) core.Vec3 {
	if img.Passes == 0 {
		return core.Vec3{}
	}
	return img.At(x, y).Divide(float64(img.Passes))
}

// Variance returns the sample variance of the luminance of pixel (x, y)
func (img *Image) Variance(x, y int) float64 {
	return img.pixels[y*img.Width+x].Variance()
}

// CompletePass marks one more full pass as accumulated
func (img *Image) CompletePass() {
	img.Passes++
}

// Merge adds the accumulated passes of other into img
func (img *Image) Merge(other *Image) error {
	if other.Width != img.Width || other.Height != img.Height {
		return fmt.Errorf("cannot merge %dx%d image into %dx%d image", other.Width, other.Height, img.Width, img.Height)
	}
	for i := range img.pixels {
		img.pixels[i].Merge(other.pixels[i])
	}
	img.Passes += other.Passes
	return nil
}

// Reset clears all accumulated data
func (img *Image) Reset() {
	clear(img.pixels)
	img.Passes = 0
}

// Tonemap converts accumulated radiance at (x, y) to a display colour in [0, 1]
// before gamma encoding
func (img *Image) Tonemap(x, y int, exposure float64, mode ToneMode) core.Vec3 {
	if img.Passes == 0 {
		return core.Vec3{}
	}
	switch mode {
	case ToneExponential:
		return img.Mean(x, y).Expose(exposure)
	default:
		return img.At(x, y).Divide(exposure * float64(img.Passes))
	}
}

// Write tone maps, gamma encodes and quantizes the buffer into dst
func (img *Image) Write(dst *image.RGBA, exposure float64, mode ToneMode) error {
	bounds := dst.Bounds()
	if bounds.Dx() != img.Width || bounds.Dy() != img.Height {
		return fmt.Errorf("destination is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), img.Width, img.Height)
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			dst.SetRGBA(bounds.Min.X+x, bounds.Min.Y+y, img.Tonemap(x, y, exposure, mode).ToSRGB().ToRGBA())
		}
	}
	return nil
}

// ToRGBA returns a new display image of the buffer
func (img *Image) ToRGBA(exposure float64, mode ToneMode) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	_ = img.Write(dst, exposure, mode) // sizes match by construction
	return dst
}

// Stats summarizes the accumulated samples
func (img *Image) Stats() RenderStats {
	stats := RenderStats{
		Passes:      img.Passes,
		TotalPixels: img.Width * img.Height,
	}
	if stats.TotalPixels == 0 {
		return stats
	}

	var variance, luminance float64
	for i := range img.pixels {
		p := &img.pixels[i]
		stats.TotalSamples += p.SampleCount
		variance += p.Variance()
		luminance += p.GetColor().Luminance()
	}

	pixels := float64(stats.TotalPixels)
	stats.AverageSamples = float64(stats.TotalSamples) / pixels
	stats.MeanVariance = variance / pixels
	stats.AverageLuminance = luminance / pixels
	return stats
}
