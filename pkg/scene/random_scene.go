package scene

import (
	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
)

// NewRandomScene creates the classic cover scene: a large ground sphere, a grid of
// small randomly placed spheres with random materials, and three large feature spheres.
// The layout is drawn from sampler, so a seeded sampler reproduces the same scene.
func NewRandomScene(sampler core.Sampler, cameraOverrides ...geometry.CameraConfig) *Scene {
	defaultCameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		Width:         1200,
		AspectRatio:   3.0 / 2.0,
		VFov:          20.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}
	cameraConfig := applyCameraOverrides(defaultCameraConfig, cameraOverrides)

	s := NewScene("random", cameraConfig, 500, DefaultMaxDepth)

	// Ground
	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	// Keep small spheres clear of the metal feature sphere
	clearance := core.NewVec3(4, 0.2, 0)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(
				float64(a)+0.9*sampler.Get1D(),
				0.2,
				float64(b)+0.9*sampler.Get1D(),
			)

			if center.Subtract(clearance).Length() <= 0.9 {
				continue
			}

			var mat material.Material
			switch {
			case chooseMat < 0.8:
				// diffuse
				albedo := sampler.Get3D().MultiplyVec(sampler.Get3D())
				mat = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				// metal
				albedo := core.RandomVecRange(sampler, 0.5, 1.0)
				fuzz := core.RandomRange(sampler, 0, 0.5)
				mat = material.NewMetal(albedo, fuzz)
			default:
				// glass
				mat = material.NewDielectric(1.5)
			}
			s.AddSphere(center, 0.2, mat)
		}
	}

	s.AddSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5))
	s.AddSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1)))
	s.AddSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0))

	return s
}
