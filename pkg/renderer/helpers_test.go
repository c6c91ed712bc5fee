package renderer

import (
	"fmt"
	"strings"

	"github.com/df07/go-recursive-raytracer/pkg/core"
	"github.com/df07/go-recursive-raytracer/pkg/geometry"
	"github.com/df07/go-recursive-raytracer/pkg/material"
)

// constSampler returns the same value for every dimension
type constSampler struct {
	value float64
}

func (c constSampler) Get1D() float64 { return c.value }
func (c constSampler) Get2D() core.Vec2 {
	return core.NewVec2(c.value, c.value)
}
func (c constSampler) Get3D() core.Vec3 {
	return core.NewVec3(c.value, c.value, c.value)
}

// absorbingMaterial never scatters
type absorbingMaterial struct{}

func (absorbingMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	return material.ScatterResult{}, false
}

// skywardMaterial always sends the ray straight up from the hit point
type skywardMaterial struct {
	attenuation core.Vec3
}

func (m skywardMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	return material.ScatterResult{
		Scattered:   core.NewRay(hit.Point, core.NewVec3(0, 1, 0)),
		Attenuation: m.attenuation,
	}, true
}

// recordingLogger captures formatted log lines
type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Printf(format string, args ...interface{}) {
	r.lines = append(r.lines, strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

func vecClose(a, b core.Vec3, tolerance float64) bool {
	return a.Subtract(b).Length() <= tolerance
}

// twoPixelConfig frames a 2x1 image whose pixel centers look along (∓1, 0, -1)
func twoPixelConfig() CameraConfig {
	return CameraConfig{
		AspectRatio:     2.0,
		Width:           2,
		SamplesPerPixel: 1,
		MaxDepth:        10,
		VFov:            90.0,
		Center:          core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		Up:              core.NewVec3(0, 1, 0),
		FocusDistance:   1.0,
	}
}

func emptyWorld() *geometry.HittableList {
	return geometry.NewHittableList()
}
