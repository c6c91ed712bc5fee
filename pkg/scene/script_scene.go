package scene

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/df07/go-recursive-raytracer/pkg/loaders"
	"github.com/df07/go-recursive-raytracer/pkg/material"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
)

// NewScriptScene evaluates a .zy scene script and builds a scene from it
func NewScriptScene(path string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	script, err := loaders.LoadScript(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return fromScript(name, script, cameraOverrides)
}

// NewScriptSceneFromSource evaluates scene script source held in memory
func NewScriptSceneFromSource(name, source string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	script, err := loaders.EvaluateScript(source)
	if err != nil {
		return nil, err
	}
	return fromScript(name, script, cameraOverrides)
}

func fromScript(name string, script *loaders.ScriptScene, cameraOverrides []renderer.CameraConfig) (*Scene, error) {
	config, err := scriptCameraConfig(script.Camera)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", name, err)
	}

	s := NewScene(name, applyOverrides(config, cameraOverrides))
	if err := s.Validate(); err != nil {
		return nil, err
	}

	// Each material is built once; spheres referring to the same index share it
	materials := make([]material.Material, len(script.Materials))
	for i, stmt := range script.Materials {
		mat, err := convertMaterial(stmt)
		if err != nil {
			return nil, fmt.Errorf("scene %q: material %d: %w", name, i, err)
		}
		materials[i] = mat
	}

	for i, sphere := range script.Spheres {
		if sphere.MaterialIndex < 0 || sphere.MaterialIndex >= len(materials) {
			return nil, fmt.Errorf("scene %q: sphere %d: unknown material %d", name, i, sphere.MaterialIndex)
		}
		s.AddSphere(sphere.Center, sphere.Radius, materials[sphere.MaterialIndex])
	}

	return s, nil
}

// scriptCameraConfig starts from the stock camera and applies every key the
// script set, including zero values that MergeCameraConfig would ignore
func scriptCameraConfig(stmt loaders.CameraStatement) (renderer.CameraConfig, error) {
	config := renderer.DefaultCameraConfig()

	intValue := func(key string, target *int) error {
		v, ok := stmt.GetFloat(key)
		if !ok {
			return nil
		}
		if v != math.Trunc(v) {
			return fmt.Errorf("camera %s must be a whole number, got %g", key, v)
		}
		*target = int(v)
		return nil
	}
	if err := intValue("width", &config.Width); err != nil {
		return config, err
	}
	if err := intValue("samples", &config.SamplesPerPixel); err != nil {
		return config, err
	}
	if err := intValue("max-depth", &config.MaxDepth); err != nil {
		return config, err
	}

	if v, ok := stmt.GetFloat("aspect-ratio"); ok {
		config.AspectRatio = v
	}
	if v, ok := stmt.GetFloat("vfov"); ok {
		config.VFov = v
	}
	if v, ok := stmt.GetFloat("defocus-angle"); ok {
		config.DefocusAngle = v
	}
	if v, ok := stmt.GetFloat("focus-distance"); ok {
		config.FocusDistance = v
	}
	if p, ok := stmt.GetPoint("look-from"); ok {
		config.Center = p
	}
	if p, ok := stmt.GetPoint("look-at"); ok {
		config.LookAt = p
	}
	if p, ok := stmt.GetPoint("up"); ok {
		config.Up = p
	}
	return config, nil
}

func convertMaterial(stmt loaders.MaterialStatement) (material.Material, error) {
	switch stmt.Type {
	case loaders.MaterialLambertian:
		return material.NewLambertian(stmt.Albedo), nil
	case loaders.MaterialMetal:
		return material.NewMetal(stmt.Albedo, stmt.Fuzz), nil
	case loaders.MaterialDielectric:
		return material.NewDielectric(stmt.RefractiveIndex), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", stmt.Type)
	}
}
