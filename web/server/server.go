package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/df07/go-recursive-raytracer/pkg/loaders"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
	"github.com/df07/go-recursive-raytracer/pkg/scene"
)

// Request limits
const (
	MinWidth        = 16
	MaxWidth        = 2000
	MaxSamples      = 10000
	MaxDepth        = 500
	MaxScriptBytes  = 64 << 10
	DefaultTileSize = 32
)

// Server handles web requests for the raytracer
type Server struct {
	port      int
	scenesDir string
	staticDir string
}

// NewServer creates a new web server that discovers scripts in scenesDir
func NewServer(port int, scenesDir string) *Server {
	return &Server{port: port, scenesDir: scenesDir, staticDir: "static/"}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene    string `json:"scene"`    // Scene name accepted by scene.Create
	Width    int    `json:"width"`    // Image width override, 0 keeps the scene's
	Samples  int    `json:"samples"`  // Samples per pixel override, 0 keeps the scene's
	MaxDepth int    `json:"maxDepth"` // Bounce limit override, 0 keeps the scene's
	Format   string `json:"format"`   // ppm or png
	Seed     int64  `json:"seed"`     // Render seed
	Script   string `json:"-"`        // Script source for POST renders
}

// Stats represents render statistics
type Stats struct {
	TotalPixels     int     `json:"totalPixels"`
	TotalSamples    int     `json:"totalSamples"`
	AverageSamples  float64 `json:"averageSamples"`
	SamplesPerPixel int     `json:"samplesPerPixel"`
	TilesRendered   int     `json:"tilesRendered"`
	PrimitiveCount  int     `json:"primitiveCount"`
	ElapsedMs       int64   `json:"elapsedMs"`
}

// Handler returns the HTTP routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	// API endpoints
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/render/stream", s.handleRenderStream)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleScenes lists built-in and discovered script scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	response, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// handleRender renders a whole image and returns it as the response body.
// GET renders a named scene; POST renders the scene script in the request body.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	if r.Method == http.MethodPost {
		source, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxScriptBytes))
		if err != nil {
			writeJSONError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Failed to read script: %v", err))
			return
		}
		if len(bytes.TrimSpace(source)) == 0 {
			writeJSONError(w, http.StatusBadRequest, "empty scene script")
			return
		}
		req.Script = string(source)
	}

	sceneObj, err := s.createScene(req)
	if err != nil {
		writeSceneError(w, err)
		return
	}

	camera := sceneObj.NewCamera()
	pr := renderer.NewParallelRenderer(camera, sceneObj.World, renderer.ParallelConfig{
		TileSize: DefaultTileSize,
		Seed:     req.Seed,
	}, nil)

	img, stats, err := pr.Render(r.Context(), nil)
	if err != nil {
		log.Printf("Render of %s aborted: %v", sceneObj.Name, err)
		return
	}
	log.Printf("Rendered %s: %dx%d, %d spp in %v", sceneObj.Name,
		camera.ImageWidth(), camera.ImageHeight(), stats.SamplesPerPixel, stats.Elapsed)

	var buf bytes.Buffer
	if err := loaders.EncodeImage(&buf, img, req.Format); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType(req.Format))
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// parseRenderRequest parses the query parameters shared by render, stream and inspect
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, MinWidth, MaxWidth); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "spp", 0, 1, MaxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "depth", 0, 1, MaxDepth); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(query, "seed", int(renderer.DefaultParallelConfig().Seed), 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)

	format := query.Get("format")
	if format == "" {
		format = loaders.FormatPNG
	}
	if req.Format, err = loaders.ParseFormat(format); err != nil {
		return nil, err
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// errUnknownScene marks scene lookup failures so they map to 404
var errUnknownScene = errors.New("unknown scene")

// createScene builds the requested scene with the request's camera overrides
// and rejects cameras that exceed the request limits.
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	sceneObj, err := s.buildScene(req)
	if err != nil {
		return nil, err
	}
	if err := checkLimits(sceneObj.CameraConfig); err != nil {
		return nil, fmt.Errorf("scene %s: %w", sceneObj.Name, err)
	}
	return sceneObj, nil
}

// checkLimits applies the query parameter limits to a scene's own camera,
// since scripts choose their size, sample count and depth themselves.
func checkLimits(cfg renderer.CameraConfig) error {
	switch {
	case cfg.Width > MaxWidth:
		return fmt.Errorf("width must be at most %d, got: %d", MaxWidth, cfg.Width)
	case cfg.SamplesPerPixel > MaxSamples:
		return fmt.Errorf("samples must be at most %d, got: %d", MaxSamples, cfg.SamplesPerPixel)
	case cfg.MaxDepth > MaxDepth:
		return fmt.Errorf("max depth must be at most %d, got: %d", MaxDepth, cfg.MaxDepth)
	case float64(cfg.Width)/cfg.AspectRatio > MaxWidth:
		return fmt.Errorf("image height must be at most %d, got: %d", MaxWidth, int(float64(cfg.Width)/cfg.AspectRatio))
	}
	return nil
}

// buildScene resolves the request to a script, built-in or discovered scene.
// Named scenes are limited to built-ins and scripts in the server's scenes directory.
func (s *Server) buildScene(req *RenderRequest) (*scene.Scene, error) {
	overrides := renderer.CameraConfig{
		Width:           req.Width,
		SamplesPerPixel: req.Samples,
		MaxDepth:        req.MaxDepth,
	}

	if req.Script != "" {
		return scene.NewScriptSceneFromSource("script", req.Script, overrides)
	}

	for _, info := range scene.BuiltinScenes() {
		if info.ID == req.Scene {
			return scene.Create(req.Scene, overrides)
		}
	}

	scripts, err := scene.ListScriptScenes(s.scenesDir)
	if err != nil {
		return nil, err
	}
	for _, info := range scripts {
		if info.ID == req.Scene {
			return scene.NewScriptScene(info.FilePath, overrides)
		}
	}
	return nil, fmt.Errorf("%w: %s", errUnknownScene, req.Scene)
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func contentType(format string) string {
	if format == loaders.FormatPNG {
		return "image/png"
	}
	return "image/x-portable-pixmap"
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeSceneError reports unknown scenes as 404 and script or camera problems as 400
func writeSceneError(w http.ResponseWriter, err error) {
	if errors.Is(err, errUnknownScene) {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	var evalErr loaders.EvalError
	if errors.As(err, &evalErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": evalErr.Message,
			"line":  evalErr.Line,
		})
		return
	}

	writeJSONError(w, http.StatusBadRequest, strings.TrimSpace(err.Error()))
}
