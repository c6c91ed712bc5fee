package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/loaders"
	"github.com/df07/go-recursive-raytracer/pkg/material"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
)

const testScript = `
(camera :width 120 :aspect-ratio 1.5 :samples 8 :max-depth 0
        :look-from (vec3 0 0 0) :look-at (vec3 0 0 -1) :focus-distance 1)
(def ground (lambertian (rgb 0.5 0.5 0.5)))
(def glass (dielectric 1.5))
(sphere (vec3 0 -100.5 -1) 100 ground)
(sphere (vec3 0 0 -1) 0.5 glass)
(sphere (vec3 0 0 -1) -0.4 glass)
(sphere (vec3 1 0 -1) 0.5 (metal (rgb 0.8 0.6 0.2) 0.3))
`

func TestNewScriptSceneFromSource(t *testing.T) {
	s, err := NewScriptSceneFromSource("test", testScript)
	if err != nil {
		t.Fatalf("NewScriptSceneFromSource failed: %v", err)
	}

	cfg := s.CameraConfig
	if cfg.Width != 120 || cfg.AspectRatio != 1.5 || cfg.SamplesPerPixel != 8 {
		t.Errorf("Unexpected camera config %+v", cfg)
	}
	// Explicit zeros in a script are kept
	if cfg.MaxDepth != 0 {
		t.Errorf("Expected max depth 0, got %d", cfg.MaxDepth)
	}
	// Unset keys keep the stock defaults
	if cfg.VFov != 90 || !cfg.Up.Equals(core.NewVec3(0, 1, 0)) {
		t.Errorf("Expected default vfov and up, got %v and %v", cfg.VFov, cfg.Up)
	}

	spheres := spheresOf(t, s)
	if len(spheres) != 4 {
		t.Fatalf("Expected 4 spheres, got %d", len(spheres))
	}
	if _, ok := spheres[0].Material.(*material.Lambertian); !ok {
		t.Errorf("Expected lambertian ground, got %T", spheres[0].Material)
	}
	if spheres[1].Material != spheres[2].Material {
		t.Error("Spheres referencing one script material should share it")
	}
	if _, ok := spheres[3].Material.(*material.Metal); !ok {
		t.Errorf("Expected metal, got %T", spheres[3].Material)
	}
}

func TestNewScriptSceneFromSource_Overrides(t *testing.T) {
	s, err := NewScriptSceneFromSource("test", testScript, renderer.CameraConfig{Width: 32})
	if err != nil {
		t.Fatalf("NewScriptSceneFromSource failed: %v", err)
	}
	if s.CameraConfig.Width != 32 {
		t.Errorf("Expected width override 32, got %d", s.CameraConfig.Width)
	}
	if s.CameraConfig.SamplesPerPixel != 8 {
		t.Errorf("Expected script samples 8, got %d", s.CameraConfig.SamplesPerPixel)
	}
}

func TestNewScriptSceneFromSource_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"syntax", "(sphere (vec3 0 0 0) 1"},
		{"fractional width", "(camera :width 10.5)"},
		{"invalid camera", "(camera :look-from (vec3 0 0 0) :look-at (vec3 0 0 0))"},
		{"zero vfov", "(camera :vfov 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScriptSceneFromSource("bad", tt.source); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestNewScriptScene_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "three-balls.zy")
	if err := os.WriteFile(path, []byte(testScript), 0644); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}

	s, err := NewScriptScene(path)
	if err != nil {
		t.Fatalf("NewScriptScene failed: %v", err)
	}
	if s.Name != "three-balls" {
		t.Errorf("Expected name from filename, got %q", s.Name)
	}

	// Paths ending in .zy resolve directly through Create
	created, err := Create(path)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", path, err)
	}
	if created.GetPrimitiveCount() != s.GetPrimitiveCount() {
		t.Errorf("Expected %d spheres, got %d", s.GetPrimitiveCount(), created.GetPrimitiveCount())
	}
}

func TestNewScriptScene_Missing(t *testing.T) {
	if _, err := NewScriptScene(filepath.Join(t.TempDir(), "missing.zy")); err == nil {
		t.Error("Expected error for missing script")
	}
}

func TestConvertMaterial_Unknown(t *testing.T) {
	if _, err := convertMaterial(loaders.MaterialStatement{Type: "plasma"}); err == nil {
		t.Error("Expected error for unknown material type")
	}
}
