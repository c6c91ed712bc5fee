package renderer

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
)

// CameraConfig contains all camera and sampling parameters
type CameraConfig struct {
	AspectRatio     float64   // Width / height
	Width           int       // Image width in pixels
	SamplesPerPixel int       // Primary rays per pixel
	MaxDepth        int       // Maximum ray bounce depth
	VFov            float64   // Vertical field of view in degrees
	Center          core.Vec3 // Eye position (look from)
	LookAt          core.Vec3 // Point the camera looks at
	Up              core.Vec3 // Camera-relative up direction
	DefocusAngle    float64   // Lens cone angle in degrees, 0 disables depth of field
	FocusDistance   float64   // Distance to the plane of perfect focus
}

// DefaultCameraConfig returns the stock camera settings
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		AspectRatio:     1.0,
		Width:           100,
		SamplesPerPixel: 10,
		MaxDepth:        10,
		VFov:            90.0,
		Center:          core.NewVec3(0, 0, -1),
		LookAt:          core.NewVec3(0, 0, 0),
		Up:              core.NewVec3(0, 1, 0),
		DefocusAngle:    0.0,
		FocusDistance:   10.0,
	}
}

// MergeCameraConfig applies the non-zero fields of override on top of base.
// MaxDepth and DefocusAngle can't be overridden to zero this way; set them directly.
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.SamplesPerPixel != 0 {
		result.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.Center != (core.Vec3{}) {
		result.Center = override.Center
	}
	if override.LookAt != (core.Vec3{}) {
		result.LookAt = override.LookAt
	}
	if override.Up != (core.Vec3{}) {
		result.Up = override.Up
	}
	if override.DefocusAngle != 0 {
		result.DefocusAngle = override.DefocusAngle
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}
	return result
}

// Validate checks that the configuration describes a renderable camera
func (c CameraConfig) Validate() error {
	switch {
	case c.Width <= 0:
		return fmt.Errorf("width must be positive, got %d", c.Width)
	case c.AspectRatio <= 0:
		return fmt.Errorf("aspect ratio must be positive, got %g", c.AspectRatio)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("samples per pixel must be positive, got %d", c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("max depth must not be negative, got %d", c.MaxDepth)
	case c.VFov <= 0 || c.VFov >= 180:
		return fmt.Errorf("vertical field of view must be in (0, 180), got %g", c.VFov)
	case c.DefocusAngle < 0:
		return fmt.Errorf("defocus angle must not be negative, got %g", c.DefocusAngle)
	case c.FocusDistance <= 0:
		return fmt.Errorf("focus distance must be positive, got %g", c.FocusDistance)
	}

	view := c.Center.Subtract(c.LookAt)
	if view.NearZero() {
		return errors.New("camera center and look-at point coincide")
	}
	if c.Up.Cross(view).NearZero() {
		return errors.New("up vector is parallel to the view direction")
	}
	return nil
}

// Camera generates primary rays and renders a world into an image.
// Derived fields are only valid after Initialize.
type Camera struct {
	config CameraConfig

	imageHeight  int
	center       core.Vec3
	pixel00Loc   core.Vec3
	pixelDeltaU  core.Vec3
	pixelDeltaV  core.Vec3
	u, v, w      core.Vec3
	defocusDiskU core.Vec3
	defocusDiskV core.Vec3
}

// NewCamera creates a camera and derives its viewport
func NewCamera(config CameraConfig) *Camera {
	c := &Camera{config: config}
	c.Initialize()
	return c
}

// Config returns the camera configuration
func (c *Camera) Config() CameraConfig {
	return c.config
}

// SetConfig replaces the configuration and recomputes derived state
func (c *Camera) SetConfig(config CameraConfig) {
	c.config = config
	c.Initialize()
}

// Initialize computes image height, camera basis, pixel steps and defocus disk
func (c *Camera) Initialize() {
	cfg := c.config

	c.imageHeight = int(float64(cfg.Width) / cfg.AspectRatio)
	if c.imageHeight < 1 {
		c.imageHeight = 1
	}

	c.center = cfg.Center

	theta := degreesToRadians(cfg.VFov)
	viewportHeight := 2.0 * math.Tan(theta/2.0) * cfg.FocusDistance
	viewportWidth := viewportHeight * cfg.AspectRatio

	// Orthonormal camera basis
	c.w = cfg.Center.Subtract(cfg.LookAt).Normalize()
	c.u = cfg.Up.Cross(c.w).Normalize()
	c.v = c.w.Cross(c.u)

	// Image rows increase downward while v points up
	viewportU := c.u.Multiply(viewportWidth)
	viewportV := c.v.Negate().Multiply(viewportHeight)

	c.pixelDeltaU = viewportU.Divide(float64(cfg.Width))
	c.pixelDeltaV = viewportV.Divide(float64(c.imageHeight))

	viewportUpperLeft := c.center.
		Subtract(c.w.Multiply(cfg.FocusDistance)).
		Subtract(viewportU.Multiply(0.5)).
		Subtract(viewportV.Multiply(0.5))
	c.pixel00Loc = viewportUpperLeft.Add(c.pixelDeltaU.Add(c.pixelDeltaV).Multiply(0.5))

	defocusRadius := cfg.FocusDistance * math.Tan(degreesToRadians(cfg.DefocusAngle/2.0))
	c.defocusDiskU = c.u.Multiply(defocusRadius)
	c.defocusDiskV = c.v.Multiply(defocusRadius)
}

// ImageWidth returns the image width in pixels
func (c *Camera) ImageWidth() int {
	return c.config.Width
}

// ImageHeight returns the derived image height in pixels
func (c *Camera) ImageHeight() int {
	return c.imageHeight
}

// GetRay returns a jittered primary ray through pixel (i, j), origin top-left
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	pixelCenter := c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float64(i))).
		Add(c.pixelDeltaV.Multiply(float64(j)))

	// Offset within [-0.5, 0.5) of a pixel step in each direction
	jitter := sampler.Get2D()
	pixelSample := pixelCenter.
		Add(c.pixelDeltaU.Multiply(jitter.X - 0.5)).
		Add(c.pixelDeltaV.Multiply(jitter.Y - 0.5))

	rayOrigin := c.center
	if c.config.DefocusAngle > 0 {
		rayOrigin = c.defocusDiskSample(sampler)
	}

	return core.NewRay(rayOrigin, pixelSample.Subtract(rayOrigin))
}

// GetPixelCenterRay returns the unjittered ray through the center of pixel (i, j) from the eye
func (c *Camera) GetPixelCenterRay(i, j int) core.Ray {
	pixelCenter := c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float64(i))).
		Add(c.pixelDeltaV.Multiply(float64(j)))
	return core.NewRay(c.center, pixelCenter.Subtract(c.center))
}

func (c *Camera) defocusDiskSample(sampler core.Sampler) core.Vec3 {
	p := core.SamplePointInUnitDisk(sampler.Get2D())
	return c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
}

// Render traces every pixel row by row, top row first, and returns the image.
// Progress goes to logger when it is non-nil.
func (c *Camera) Render(world geometry.Shape, sampler core.Sampler, logger core.Logger) *image.RGBA {
	c.Initialize()

	width, height := c.config.Width, c.imageHeight
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for j := 0; j < height; j++ {
		if logger != nil {
			logger.Printf("Scanlines remaining: %d\n", height-j)
		}
		for i := 0; i < width; i++ {
			var ps PixelStats
			for sample := 0; sample < c.config.SamplesPerPixel; sample++ {
				ray := c.GetRay(i, j, sampler)
				ps.AddSample(RayColor(ray, c.config.MaxDepth, world, sampler))
			}
			img.SetRGBA(i, j, ps.RGBA())
		}
	}

	if logger != nil {
		logger.Printf("Done.\n")
	}
	return img
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
