package core

import (
	"image/color"
	"math"
)

const (
	srgbThreshold = 0.0031308
	srgbLinear    = 12.92
	srgbOffset    = 0.055
	srgbGamma     = 2.4
)

// Expose remaps unbounded radiance into [0, 1) with 1 - exp(-value*exposure)
func (v Vec3) Expose(exposure float64) Vec3 {
	return Vec3{
		X: 1 - math.Exp(-v.X*exposure),
		Y: 1 - math.Exp(-v.Y*exposure),
		Z: 1 - math.Exp(-v.Z*exposure),
	}
}

// ToSRGB gamma-encodes a linear colour with the sRGB transfer curve
func (v Vec3) ToSRGB() Vec3 {
	return Vec3{X: toSRGB(v.X), Y: toSRGB(v.Y), Z: toSRGB(v.Z)}
}

// ToRGBA quantizes an encoded colour to 8-bit channels
func (v Vec3) ToRGBA() color.RGBA {
	return color.RGBA{R: ToByte(v.X), G: ToByte(v.Y), B: ToByte(v.Z), A: 255}
}

// ToByte maps [0, 1] to [0, 255] with rounding, clamping anything outside
func ToByte(value float64) uint8 {
	value = math.Round(value * 255)
	if !(value > 0) { // also catches NaN
		return 0
	}
	if value > 255 {
		return 255
	}
	return uint8(value)
}

func toSRGB(value float64) float64 {
	if value < srgbThreshold {
		return srgbLinear * value
	}
	return (1+srgbOffset)*math.Pow(value, 1/srgbGamma) - srgbOffset
}
