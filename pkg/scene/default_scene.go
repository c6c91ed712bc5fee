package scene

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/material"
	"github.com/df07/go-recursive-raytracer/pkg/renderer"
)

// NewDefaultScene creates a small diffuse sphere resting on a large ground sphere
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.DefaultCameraConfig()
	defaultCameraConfig.AspectRatio = 16.0 / 9.0
	defaultCameraConfig.Width = 400
	defaultCameraConfig.SamplesPerPixel = 100
	defaultCameraConfig.MaxDepth = 50
	defaultCameraConfig.Center = core.NewVec3(0, 0, 0)
	defaultCameraConfig.LookAt = core.NewVec3(0, 0, -1)
	defaultCameraConfig.FocusDistance = 1.0

	s := NewScene("default", applyOverrides(defaultCameraConfig, cameraOverrides))

	// One shared material for both spheres
	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, gray)
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, gray)

	return s
}
