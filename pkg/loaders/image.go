package loaders

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // JPEG decoder
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Supported image output formats
const (
	FormatPPM = "ppm"
	FormatPNG = "png"
)

// ParseFormat normalizes a format name, rejecting unsupported ones
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case FormatPPM:
		return FormatPPM, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported image format %q (expected ppm or png)", name)
}

// FormatFromFilename infers the output format from a file extension, defaulting to PPM
func FormatFromFilename(filename string) string {
	if format, err := ParseFormat(filepath.Ext(filename)); err == nil {
		return format
	}
	return FormatPPM
}

// EncodeImage writes img to w in the given format
func EncodeImage(w io.Writer, img image.Image, format string) error {
	normalized, err := ParseFormat(format)
	if err != nil {
		return err
	}

	switch normalized {
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode PNG: %w", err)
		}
		return nil
	default:
		return WritePPM(w, img)
	}
}

// SaveImage writes img to filename in the given format
func SaveImage(filename string, img image.Image, format string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	if err := EncodeImage(file, img, format); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close image file: %w", err)
	}
	return nil
}

// LoadImage loads a P3 PPM, PNG or JPEG image into an RGBA buffer
func LoadImage(filename string) (*image.RGBA, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(filename), ".ppm") {
		return ReadPPM(file)
	}

	// Decode image (auto-detects PNG/JPEG from file header)
	decoded, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := decoded.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(img, img.Bounds(), decoded, bounds.Min, draw.Src)
	return img, nil
}
