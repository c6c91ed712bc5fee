package renderer

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"testing"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/material"
)

// createTestWorld builds a small diffuse/metal/glass scene over a ground sphere
func createTestWorld() *geometry.HittableList {
	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	return geometry.NewHittableList(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)),
	)
}

func createTestCamera() *Camera {
	return NewCamera(CameraConfig{
		AspectRatio:     1.5,
		Width:           24,
		SamplesPerPixel: 4,
		MaxDepth:        8,
		VFov:            90.0,
		Center:          core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		Up:              core.NewVec3(0, 1, 0),
		FocusDistance:   1.0,
	})
}

func imagesEqual(a, b *image.RGBA) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			return false
		}
	}
	return true
}

func TestParallelRenderer_DeterministicAcrossWorkerCounts(t *testing.T) {
	world := createTestWorld()

	var reference *image.RGBA
	for _, workers := range []int{1, 2, 4, 7} {
		config := ParallelConfig{TileSize: 8, NumWorkers: workers, Seed: 99}
		renderer := NewParallelRenderer(createTestCamera(), world, config, nil)

		img, _, err := renderer.Render(context.Background(), nil)
		if err != nil {
			t.Fatalf("workers=%d: unexpected error: %v", workers, err)
		}
		if reference == nil {
			reference = img
			continue
		}
		if !imagesEqual(reference, img) {
			t.Errorf("workers=%d: image differs from single-worker render", workers)
		}
	}
}

func TestParallelRenderer_SingleTileMatchesSequential(t *testing.T) {
	world := createTestWorld()
	seed := int64(5)

	// A tile larger than the image has ID 0 and is seeded with seed + 0
	parallel := NewParallelRenderer(createTestCamera(), world, ParallelConfig{TileSize: 64, NumWorkers: 3, Seed: seed}, nil)
	parallelImg, _, err := parallel.Render(context.Background(), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))
	sequentialImg := createTestCamera().Render(world, sampler, nil)

	if !imagesEqual(parallelImg, sequentialImg) {
		t.Error("Expected single-tile parallel render to match the sequential render")
	}
}

func TestParallelRenderer_StatsAndCallbacks(t *testing.T) {
	camera := createTestCamera() // 24x16
	renderer := NewParallelRenderer(camera, createTestWorld(), ParallelConfig{TileSize: 8, NumWorkers: 2, Seed: 1}, &recordingLogger{})

	var callbacks []TileCompletionResult
	img, stats, err := renderer.Render(context.Background(), func(result TileCompletionResult) {
		callbacks = append(callbacks, result)
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if img.Bounds() != image.Rect(0, 0, 24, 16) {
		t.Errorf("Expected 24x16 image, got %v", img.Bounds())
	}
	if stats.TotalPixels != 24*16 {
		t.Errorf("Expected %d pixels, got %d", 24*16, stats.TotalPixels)
	}
	if stats.TotalSamples != 24*16*4 {
		t.Errorf("Expected exactly %d samples, got %d", 24*16*4, stats.TotalSamples)
	}
	if stats.AverageSamples != 4 {
		t.Errorf("Expected 4 samples per pixel, got %f", stats.AverageSamples)
	}
	if stats.TilesRendered != 6 {
		t.Errorf("Expected 6 tiles, got %d", stats.TilesRendered)
	}

	if len(callbacks) != 6 {
		t.Fatalf("Expected 6 tile callbacks, got %d", len(callbacks))
	}
	seen := make(map[[2]int]bool)
	for i, cb := range callbacks {
		if cb.TileNumber != i+1 || cb.TotalTiles != 6 {
			t.Errorf("Callback %d: unexpected progress %d/%d", i, cb.TileNumber, cb.TotalTiles)
		}
		seen[[2]int{cb.TileX, cb.TileY}] = true

		// Tile images hold the same pixels as the final image
		for y := 0; y < cb.Bounds.Dy(); y++ {
			for x := 0; x < cb.Bounds.Dx(); x++ {
				if cb.TileImage.RGBAAt(x, y) != img.RGBAAt(cb.Bounds.Min.X+x, cb.Bounds.Min.Y+y) {
					t.Fatalf("Tile (%d,%d) pixel (%d,%d) differs from final image", cb.TileX, cb.TileY, x, y)
				}
			}
		}
	}
	if len(seen) != 6 {
		t.Errorf("Expected 6 distinct tiles, got %d", len(seen))
	}
}

func TestParallelRenderer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	renderer := NewParallelRenderer(createTestCamera(), createTestWorld(), ParallelConfig{TileSize: 8, NumWorkers: 2, Seed: 1}, nil)
	img, _, err := renderer.Render(ctx, nil)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if img != nil {
		t.Error("Expected no image from a cancelled render")
	}
}
