package renderer

import (
	"image"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
)

// TileRenderer renders rectangular pixel regions of a camera's image
type TileRenderer struct {
	camera *Camera
	world  geometry.Shape
}

// NewTileRenderer creates a new tile renderer for the given camera and world
func NewTileRenderer(camera *Camera, world geometry.Shape) *TileRenderer {
	return &TileRenderer{
		camera: camera,
		world:  world,
	}
}

// RenderTileBounds takes exactly SamplesPerPixel samples for every pixel in bounds,
// accumulating into pixelStats (global image coordinates)
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler) RenderStats {
	config := tr.camera.Config()

	stats := RenderStats{
		TotalPixels:     bounds.Dx() * bounds.Dy(),
		SamplesPerPixel: config.SamplesPerPixel,
	}

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ps := &pixelStats[j][i]
			for sample := 0; sample < config.SamplesPerPixel; sample++ {
				ray := tr.camera.GetRay(i, j, sampler)
				ps.AddSample(RayColor(ray, config.MaxDepth, tr.world, sampler))
			}
			stats.TotalSamples += config.SamplesPerPixel
		}
	}

	stats.finalize()
	return stats
}
