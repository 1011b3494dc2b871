package scene

import (
	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
)

// NewDefaultScene creates a default scene with spheres, ground, and camera
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	defaultCameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(0, 0.75, 2), // Position camera higher and farther back
		LookAt:        core.NewVec3(0, 0.5, -1), // Look at the sphere center
		Up:            core.NewVec3(0, 1, 0),    // Standard up direction
		Width:         400,
		AspectRatio:   16.0 / 9.0,
		VFov:          40.0, // Narrower field of view for focus effect
		Aperture:      0.05, // Strong depth of field blur
		FocusDistance: 0.0,  // Auto-calculate focus distance
	}
	cameraConfig := applyCameraOverrides(defaultCameraConfig, cameraOverrides)

	s := NewScene("default", cameraConfig, 200, DefaultMaxDepth)

	// Create materials
	lambertianGreen := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6))
	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	lambertianRed := material.NewLambertian(core.NewVec3(0.65, 0.25, 0.2))
	metalSilver := material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0)
	metalGold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)
	materialGlass := material.NewDielectric(1.5)

	// Ground is a huge sphere whose top touches y=0
	s.AddSphere(core.NewVec3(0, -1000, -1), 1000, lambertianGreen)

	s.AddSphere(core.NewVec3(0, 0.5, -1), 0.5, lambertianRed)
	s.AddSphere(core.NewVec3(-1, 0.5, -1), 0.5, metalSilver)
	s.AddSphere(core.NewVec3(1, 0.5, -1), 0.5, metalGold)
	s.AddSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, materialGlass)

	// Hollow glass sphere with blue sphere inside
	s.AddSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.25, materialGlass)
	s.AddSphere(core.NewVec3(-0.5, 0.25, -0.5), -0.24, materialGlass)
	s.AddSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.20, lambertianBlue)

	return s
}

// NewTwoSphereScene creates the minimal scene: one diffuse sphere resting on a large ground sphere,
// viewed from the origin
func NewTwoSphereScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	defaultCameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        90.0,
	}
	cameraConfig := applyCameraOverrides(defaultCameraConfig, cameraOverrides)

	s := NewScene("two-spheres", cameraConfig, DefaultSamplesPerPixel, DefaultMaxDepth)

	diffuse := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, diffuse)
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, diffuse)

	return s
}
