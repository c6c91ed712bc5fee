package loaders

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"
)

// WritePPM writes img as a plain-text (P3) PPM: a header, then one "r g b" line per pixel,
// rows top to bottom and left to right
func WritePPM(w io.Writer, img image.Image) error {
	bw := bufio.NewWriter(w)
	bounds := img.Bounds()

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", bounds.Dx(), bounds.Dy()); err != nil {
		return fmt.Errorf("failed to write PPM header: %w", err)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if _, err := fmt.Fprintf(bw, "%d %d %d\n", c.R, c.G, c.B); err != nil {
				return fmt.Errorf("failed to write PPM pixel (%d,%d): %w", x, y, err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush PPM output: %w", err)
	}
	return nil
}

// ReadPPM parses a plain-text (P3) PPM with any max value up to 65535.
// Channels are rescaled to 8 bits.
func ReadPPM(r io.Reader) (*image.RGBA, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read PPM data: %w", err)
	}

	// Drop "#" comments, which run to end of line
	var tokens []string
	for _, line := range strings.Split(string(data), "\n") {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		tokens = append(tokens, strings.Fields(line)...)
	}

	pos := 0
	nextInt := func(what string) (int, error) {
		if pos >= len(tokens) {
			return 0, fmt.Errorf("unexpected end of PPM data reading %s", what)
		}
		token := tokens[pos]
		pos++
		value, err := strconv.Atoi(token)
		if err != nil {
			return 0, fmt.Errorf("invalid PPM %s %q: %w", what, token, err)
		}
		return value, nil
	}

	if len(tokens) == 0 || tokens[0] != "P3" {
		return nil, fmt.Errorf("unsupported PPM format, expected P3")
	}
	pos = 1

	width, err := nextInt("width")
	if err != nil {
		return nil, err
	}
	height, err := nextInt("height")
	if err != nil {
		return nil, err
	}
	maxValue, err := nextInt("max value")
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid PPM dimensions %dx%d", width, height)
	}
	if maxValue <= 0 || maxValue > 65535 {
		return nil, fmt.Errorf("invalid PPM max value %d", maxValue)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var channels [3]uint8
			for c := range channels {
				value, err := nextInt("pixel value")
				if err != nil {
					return nil, fmt.Errorf("pixel (%d,%d): %w", x, y, err)
				}
				if value < 0 || value > maxValue {
					return nil, fmt.Errorf("pixel (%d,%d): value %d outside [0, %d]", x, y, value, maxValue)
				}
				channels[c] = uint8(value * 255 / maxValue)
			}
			img.SetRGBA(x, y, color.RGBA{R: channels[0], G: channels[1], B: channels[2], A: 255})
		}
	}

	return img, nil
}
