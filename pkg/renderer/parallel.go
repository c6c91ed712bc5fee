package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
)

// ParallelConfig contains configuration for tiled parallel rendering
type ParallelConfig struct {
	TileSize   int   // Size of each square tile in pixels
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	Seed       int64 // Base seed; each tile uses Seed + tile id
}

// DefaultParallelConfig returns sensible default values
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		TileSize:   32,
		NumWorkers: 0,
		Seed:       42,
	}
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX     int // Tile coordinates (not pixel coordinates)
	TileY     int
	Bounds    image.Rectangle // Pixel bounds of the tile within the image
	TileImage *image.RGBA     // Image data for just this tile

	// Progress information
	TileNumber int // Number of tiles completed so far (1-based)
	TotalTiles int // Total number of tiles in the image
}

// ParallelRenderer renders a camera's image with a pool of tile workers.
// Output depends only on the seed and tile size, not on worker count or scheduling.
type ParallelRenderer struct {
	camera *Camera
	world  geometry.Shape
	config ParallelConfig
	logger core.Logger
}

// NewParallelRenderer creates a parallel renderer; logger may be nil
func NewParallelRenderer(camera *Camera, world geometry.Shape, config ParallelConfig, logger core.Logger) *ParallelRenderer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultParallelConfig().TileSize
	}
	return &ParallelRenderer{
		camera: camera,
		world:  world,
		config: config,
		logger: logger,
	}
}

func (pr *ParallelRenderer) logf(format string, args ...interface{}) {
	if pr.logger != nil {
		pr.logger.Printf(format, args...)
	}
}

// Render traces the full image. tileCallback, when non-nil, is invoked from the
// calling goroutine as each tile finishes. Cancelling ctx stops work at the next tile boundary.
func (pr *ParallelRenderer) Render(ctx context.Context, tileCallback func(TileCompletionResult)) (*image.RGBA, RenderStats, error) {
	startTime := time.Now()
	pr.camera.Initialize()

	width, height := pr.camera.ImageWidth(), pr.camera.ImageHeight()
	tiles := NewTileGrid(width, height, pr.config.TileSize, pr.config.Seed)

	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}

	pool := NewWorkerPool(NewTileRenderer(pr.camera, pr.world), len(tiles), pr.config.NumWorkers)
	pool.Start()
	defer pool.Stop()

	pr.logf("Rendering %dx%d at %d samples per pixel (%d tiles, %d workers)...\n",
		width, height, pr.camera.Config().SamplesPerPixel, len(tiles), pool.GetNumWorkers())

	for taskID, tile := range tiles {
		pool.SubmitTask(TileTask{
			Ctx:        ctx,
			Tile:       tile,
			TaskID:     taskID,
			PixelStats: pixelStats,
		})
	}

	tilesX := (width + pr.config.TileSize - 1) / pr.config.TileSize
	for i := 0; i < len(tiles); i++ {
		result, ok := pool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			pr.logf("Rendering cancelled after %d of %d tiles\n", i, len(tiles))
			return nil, RenderStats{}, result.Error
		}

		if tileCallback != nil {
			tile := tiles[result.TaskID]
			tileCallback(TileCompletionResult{
				TileX:      result.TaskID % tilesX,
				TileY:      result.TaskID / tilesX,
				Bounds:     tile.Bounds,
				TileImage:  extractTileImage(tile.Bounds, pixelStats),
				TileNumber: i + 1,
				TotalTiles: len(tiles),
			})
		}
	}

	img, stats := assembleImage(width, height, pixelStats)
	stats.SamplesPerPixel = pr.camera.Config().SamplesPerPixel
	stats.TilesRendered = len(tiles)
	stats.Elapsed = time.Since(startTime)

	pr.logf("Render completed in %v (%.0f samples/pixel)\n", stats.Elapsed, stats.AverageSamples)
	return img, stats, nil
}

// extractTileImage copies a tile's pixels out of the shared stats array
func extractTileImage(bounds image.Rectangle, pixelStats [][]PixelStats) *image.RGBA {
	tileImage := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			tileImage.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, pixelStats[y][x].RGBA())
		}
	}
	return tileImage
}

// assembleImage builds the final image and render statistics in a single pass
func assembleImage(width, height int, pixelStats [][]PixelStats) (*image.RGBA, RenderStats) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	stats := RenderStats{TotalPixels: width * height}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixel := &pixelStats[y][x]
			img.SetRGBA(x, y, pixel.RGBA())
			stats.TotalSamples += pixel.SampleCount
		}
	}

	stats.finalize()
	return img, stats
}
