package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strings"
	"time"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/loaders"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
)

// Config holds the command line options
type Config struct {
	SceneType string
	Output    string
	Format    string
	Width     int
	Samples   int
	MaxDepth  int
	DepthSet  bool // -depth given explicitly, so 0 is honored
	Workers   int
	Seed      int64
	TileSize  int
	Quiet     bool
	List      bool
	Help      bool
}

func main() {
	config := parseFlags(os.Args[1:])

	if config.Help {
		showHelp(os.Stdout)
		return
	}

	if config.List {
		if err := listScenes(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(config, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newFlagSet(config *Config, errorHandling flag.ErrorHandling) *flag.FlagSet {
	defaults := renderer.DefaultParallelConfig()
	fs := flag.NewFlagSet("raytracer", errorHandling)
	fs.StringVar(&config.SceneType, "scene", "default", "Scene: built-in name, script name in scenes/, or path to a .zy script")
	fs.StringVar(&config.Output, "out", "-", "Output file, or - for stdout")
	fs.StringVar(&config.Format, "format", "", "Output format: ppm or png (default: from -out extension, else ppm)")
	fs.IntVar(&config.Width, "width", 0, "Override image width in pixels")
	fs.IntVar(&config.Samples, "spp", 0, "Override samples per pixel")
	fs.IntVar(&config.MaxDepth, "depth", 0, "Override maximum ray bounce depth")
	fs.IntVar(&config.Workers, "workers", 0, "Number of parallel workers (0 = auto, 1 = sequential)")
	fs.Int64Var(&config.Seed, "seed", defaults.Seed, "Random seed")
	fs.IntVar(&config.TileSize, "tile", defaults.TileSize, "Tile size for parallel rendering")
	fs.BoolVar(&config.Quiet, "quiet", false, "Suppress progress output")
	fs.BoolVar(&config.List, "list", false, "List available scenes and named colors")
	fs.BoolVar(&config.Help, "help", false, "Show help information")
	return fs
}

func parseFlags(args []string) Config {
	config := Config{}
	fs := newFlagSet(&config, flag.ExitOnError)
	fs.Parse(args)
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "depth" {
			config.DepthSet = true
		}
	})
	return config
}

func showHelp(w io.Writer) {
	fmt.Fprintln(w, "Recursive Raytracer")
	fmt.Fprintln(w, "Usage: raytracer [options] > image.ppm")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs := newFlagSet(&Config{}, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Built-in scenes:")
	for _, info := range scene.BuiltinScenes() {
		fmt.Fprintf(w, "  %-16s %s\n", info.ID, info.Description)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use -list to include script scenes from the scenes directory.")
}

func listScenes(w io.Writer) error {
	response, err := scene.ListAllScenes(scene.ScriptsDir())
	if err != nil {
		return err
	}
	for _, group := range response.Groups {
		fmt.Fprintf(w, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			if info.Description != "" {
				fmt.Fprintf(w, "  %-16s %s - %s\n", info.ID, info.DisplayName, info.Description)
			} else {
				fmt.Fprintf(w, "  %-16s %s\n", info.ID, info.DisplayName)
			}
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "Named colors for scene scripts:")
	fmt.Fprintf(w, "  %s\n", strings.Join(loaders.ColorNames(), " "))
	return nil
}

// createScene builds the requested scene with command line overrides applied
func createScene(config Config) (*scene.Scene, error) {
	if config.Width < 0 || config.Samples < 0 || config.MaxDepth < 0 {
		return nil, errors.New("width, spp and depth must not be negative")
	}
	overrides := renderer.CameraConfig{
		Width:           config.Width,
		SamplesPerPixel: config.Samples,
		MaxDepth:        config.MaxDepth,
	}
	s, err := scene.Create(config.SceneType, overrides)
	if err != nil {
		return nil, err
	}
	if config.DepthSet {
		s.CameraConfig.MaxDepth = config.MaxDepth
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// outputFormat picks the explicit format, else the one implied by the output name
func outputFormat(config Config) (string, error) {
	if config.Format != "" {
		return loaders.ParseFormat(config.Format)
	}
	if config.Output == "-" {
		return loaders.FormatPPM, nil
	}
	return loaders.FormatFromFilename(config.Output), nil
}

// run renders the configured scene and writes the image to stdout or the output file
func run(config Config, stdout io.Writer) error {
	format, err := outputFormat(config)
	if err != nil {
		return err
	}

	s, err := createScene(config)
	if err != nil {
		return err
	}

	var logger core.Logger
	if !config.Quiet {
		logger = renderer.NewDefaultLogger()
		logger.Printf("Scene: %s (%d spheres)\n", s.Name, s.GetPrimitiveCount())
	}

	startTime := time.Now()
	img, err := renderScene(s, config, logger)
	if err != nil {
		return err
	}
	if logger != nil {
		logger.Printf("Render completed in %v\n", time.Since(startTime))
	}

	if config.Output == "-" {
		return loaders.EncodeImage(stdout, img, format)
	}
	if err := loaders.SaveImage(config.Output, img, format); err != nil {
		return err
	}
	if logger != nil {
		logger.Printf("Render saved as %s\n", config.Output)
	}
	return nil
}

// renderScene renders sequentially with one worker, otherwise in parallel tiles
func renderScene(s *scene.Scene, config Config, logger core.Logger) (*image.RGBA, error) {
	camera := s.NewCamera()

	if config.Workers == 1 {
		return camera.Render(s.World, core.NewSeededSampler(config.Seed), logger), nil
	}

	pr := renderer.NewParallelRenderer(camera, s.World, renderer.ParallelConfig{
		TileSize:   config.TileSize,
		NumWorkers: config.Workers,
		Seed:       config.Seed,
	}, logger)

	img, stats, err := pr.Render(context.Background(), nil)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Printf("Samples per pixel: %.1f across %d tiles\n", stats.AverageSamples, stats.TilesRendered)
	}
	return img, nil
}
