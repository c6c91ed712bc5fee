package renderer

import (
	"image/color"
	"math"
	"testing"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

func TestLinearToGamma(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0.0, 0.0},
		{0.25, 0.5},
		{1.0, 1.0},
		{4.0, 2.0},
		{-0.5, 0.0},
		{math.NaN(), 0.0},
	}

	for _, tt := range tests {
		if got := LinearToGamma(tt.input); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("LinearToGamma(%v) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestColorString(t *testing.T) {
	tests := []struct {
		name     string
		sum      core.Vec3
		samples  int
		expected string
	}{
		{"white", core.NewVec3(1, 1, 1), 1, "255 255 255"},
		{"black", core.NewVec3(0, 0, 0), 1, "0 0 0"},
		{"averaged white", core.NewVec3(4, 4, 4), 4, "255 255 255"},
		{"quarter gray gamma to half", core.NewVec3(0.25, 0.25, 0.25), 1, "128 128 128"},
		{"overbright clamps", core.NewVec3(9, 0, 0), 1, "255 0 0"},
		{"negative noise", core.NewVec3(-1, 0.25, 1), 1, "0 128 255"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ColorString(tt.sum, tt.samples); got != tt.expected {
				t.Errorf("ColorString(%v, %d) = %q, expected %q", tt.sum, tt.samples, got, tt.expected)
			}
		})
	}
}

func TestToRGBA(t *testing.T) {
	got := ToRGBA(core.NewVec3(0.5, 1.0, 0.0), 2)
	// Average (0.25, 0.5, 0): gamma (0.5, 0.7071, 0)
	expected := color.RGBA{R: 128, G: 181, B: 0, A: 255}
	if got != expected {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}
