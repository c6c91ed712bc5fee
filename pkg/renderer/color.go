package renderer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// channelIntensity bounds linear channel values before scaling to 8 bits
var channelIntensity = core.NewInterval(0.0, 0.999)

// LinearToGamma applies the gamma-2 tone curve. Non-positive input maps to 0.
func LinearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

// QuantizeChannel converts an averaged linear channel to an 8-bit value
func QuantizeChannel(linear float64) uint8 {
	return uint8(256 * channelIntensity.Clamp(LinearToGamma(linear)))
}

// ToRGBA averages a sample sum over samplesPerPixel and quantizes it
func ToRGBA(sum core.Vec3, samplesPerPixel int) color.RGBA {
	avg := sum.Divide(float64(samplesPerPixel))
	return color.RGBA{
		R: QuantizeChannel(avg.X),
		G: QuantizeChannel(avg.Y),
		B: QuantizeChannel(avg.Z),
		A: 255,
	}
}

// ColorString formats a sample sum as the "r g b" line of a P3 image
func ColorString(sum core.Vec3, samplesPerPixel int) string {
	c := ToRGBA(sum, samplesPerPixel)
	return fmt.Sprintf("%d %d %d", c.R, c.G, c.B)
}
