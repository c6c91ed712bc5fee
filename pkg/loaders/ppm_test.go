package loaders

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
)

func TestWritePPM(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 221, G: 236, B: 255, A: 255})
	img.SetRGBA(1, 0, color.RGBA{R: 0, G: 0, B: 0, A: 255})

	var buf bytes.Buffer
	if err := WritePPM(&buf, img); err != nil {
		t.Fatalf("WritePPM failed: %v", err)
	}

	expected := "P3\n2 1\n255\n221 236 255\n0 0 0\n"
	if buf.String() != expected {
		t.Errorf("Expected:\n%s\ngot:\n%s", expected, buf.String())
	}
}

func TestWritePPM_RowMajorTopDown(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePPM(&buf, createTestImage()); err != nil {
		t.Fatalf("WritePPM failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	expected := []string{"P3", "2 2", "255", "255 255 255", "255 0 0", "0 255 0", "0 0 255"}
	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %d", len(expected), len(lines))
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("Line %d: expected %q, got %q", i, expected[i], lines[i])
		}
	}
}

func TestReadPPM(t *testing.T) {
	input := "P3\n# created by hand\n2 1 # width height\n255\n10 20 30\n40 50 60\n"
	img, err := ReadPPM(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadPPM failed: %v", err)
	}

	if img.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("Expected 2x1 image, got %v", img.Bounds())
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("Pixel (0,0): got %v", got)
	}
	if got := img.RGBAAt(1, 0); got != (color.RGBA{40, 50, 60, 255}) {
		t.Errorf("Pixel (1,0): got %v", got)
	}
}

func TestReadPPM_RescalesMaxValue(t *testing.T) {
	img, err := ReadPPM(strings.NewReader("P3 1 1 15 15 0 5"))
	if err != nil {
		t.Fatalf("ReadPPM failed: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{255, 0, 85, 255}) {
		t.Errorf("Expected (255,0,85), got %v", got)
	}
}

func TestReadPPM_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"binary format", "P6\n1 1\n255\n"},
		{"bad width", "P3\nx 1\n255\n0 0 0\n"},
		{"zero height", "P3\n1 0\n255\n"},
		{"truncated pixels", "P3\n2 1\n255\n0 0 0\n1 2\n"},
		{"value above max", "P3\n1 1\n255\n256 0 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadPPM(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
