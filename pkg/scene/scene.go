package scene

import (
	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         *geometry.Camera
	World          *geometry.HittableList // Objects in the scene
	SamplingConfig SamplingConfig
	CameraConfig   geometry.CameraConfig
	TopColor       core.Vec3 // Background color straight up
	BottomColor    core.Vec3 // Background color straight down
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// Defaults used by scenes that do not override them
const (
	DefaultSamplesPerPixel = 100
	DefaultMaxDepth        = 50
)

// DefaultTopColor and DefaultBottomColor form the sky gradient
var (
	DefaultTopColor    = core.NewVec3(0.5, 0.7, 1.0)
	DefaultBottomColor = core.NewVec3(1.0, 1.0, 1.0)
)

// NewScene creates an empty scene with the given camera.
// Image dimensions are derived from the camera configuration.
func NewScene(name string, cameraConfig geometry.CameraConfig, samplesPerPixel, maxDepth int) *Scene {
	return &Scene{
		Name:   name,
		Camera: geometry.NewCamera(cameraConfig),
		World:  geometry.NewHittableList(),
		SamplingConfig: SamplingConfig{
			Width:           cameraConfig.Width,
			Height:          cameraConfig.ImageHeight(),
			SamplesPerPixel: samplesPerPixel,
			MaxDepth:        maxDepth,
		},
		CameraConfig: cameraConfig,
		TopColor:     DefaultTopColor,
		BottomColor:  DefaultBottomColor,
	}
}

// AddSphere adds a sphere to the scene
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) {
	s.World.Add(geometry.NewSphere(center, radius, mat))
}

// SetCamera replaces the camera and recomputes the image dimensions
func (s *Scene) SetCamera(cameraConfig geometry.CameraConfig) {
	s.CameraConfig = cameraConfig
	s.Camera = geometry.NewCamera(cameraConfig)
	s.SamplingConfig.Width = cameraConfig.Width
	s.SamplingConfig.Height = cameraConfig.ImageHeight()
}

// ApplyOverrides replaces the scene's image width and sampling settings with
// the non-zero arguments. A new width keeps the aspect ratio.
func (s *Scene) ApplyOverrides(width, samplesPerPixel, maxDepth int) {
	if width > 0 {
		s.SetCamera(geometry.MergeCameraConfig(s.CameraConfig, geometry.CameraConfig{Width: width}))
	}
	if samplesPerPixel > 0 {
		s.SamplingConfig.SamplesPerPixel = samplesPerPixel
	}
	if maxDepth > 0 {
		s.SamplingConfig.MaxDepth = maxDepth
	}
}

// Hit finds the closest intersection with any object in the scene
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return s.World.Hit(ray, tMin, tMax)
}

// GetPrimitiveCount returns the number of objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// applyCameraOverrides merges the first override, if any, on top of defaults
func applyCameraOverrides(defaults geometry.CameraConfig, overrides []geometry.CameraConfig) geometry.CameraConfig {
	if len(overrides) > 0 {
		return geometry.MergeCameraConfig(defaults, overrides[0])
	}
	return defaults
}
