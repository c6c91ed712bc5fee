package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

func TestPixelStats(t *testing.T) {
	var ps PixelStats

	if got := ps.GetColor(); got != (core.Vec3{}) {
		t.Errorf("Expected black for empty pixel, got %v", got)
	}
	if got := ps.RGBA(); got != (color.RGBA{A: 255}) {
		t.Errorf("Expected opaque black for empty pixel, got %v", got)
	}

	ps.AddSample(core.NewVec3(1, 0, 0))
	ps.AddSample(core.NewVec3(0, 0, 0))

	if ps.SampleCount != 2 {
		t.Errorf("Expected 2 samples, got %d", ps.SampleCount)
	}
	if got := ps.GetColor(); !got.Equals(core.NewVec3(0.5, 0, 0)) {
		t.Errorf("Expected average (0.5,0,0), got %v", got)
	}
	if got := ps.RGBA(); got != ToRGBA(core.NewVec3(1, 0, 0), 2) {
		t.Errorf("Expected RGBA to match ToRGBA of the sum, got %v", got)
	}
}

func TestCalculateAverageLuminance(t *testing.T) {
	// Red, green, blue and black average to (0.2126 + 0.7152 + 0.0722 + 0) / 4 = 0.25
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{0, 0, 0, 255})

	avgLum := CalculateAverageLuminance(img)
	expected := 0.25
	tolerance := 0.0001

	if avgLum < expected-tolerance || avgLum > expected+tolerance {
		t.Errorf("Expected average luminosity %f, got %f", expected, avgLum)
	}
}

func TestCalculateAverageLuminance_White(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}

	if avgLum := CalculateAverageLuminance(img); avgLum < 0.9999 || avgLum > 1.0001 {
		t.Errorf("Expected luminosity 1.0, got %f", avgLum)
	}
}
