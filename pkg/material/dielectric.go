package material

import (
	"math"

	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter reflects or refracts the incoming ray with no color loss
func (d *Dielectric) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	in := rayIn.Direction.Normalize()
	eta := d.etaRatio(hit.FrontFace)

	direction := in.Refract(hit.Normal, eta)
	if d.reflects(in, hit.Normal, eta, sampler) {
		direction = in.Reflect(hit.Normal)
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: core.NewVec3(1.0, 1.0, 1.0),
	}, true
}

// etaRatio is the incident over transmitted index; the outside is always air
func (d *Dielectric) etaRatio(frontFace bool) float64 {
	if frontFace {
		return 1.0 / d.RefractiveIndex
	}
	return d.RefractiveIndex
}

// reflects reports whether a unit direction bounces off the surface: always under
// total internal reflection, otherwise with Schlick probability. The sampler is
// only drawn when refraction is possible.
func (d *Dielectric) reflects(in, normal core.Vec3, eta float64, sampler core.Sampler) bool {
	cosTheta := math.Min(in.Negate().Dot(normal), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)
	if eta*sinTheta > 1.0 {
		return true
	}
	return Reflectance(cosTheta, eta) > sampler.Get1D()
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
