package geometry

import (
	"math"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
)

// CameraConfig contains all camera-related configuration
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually 0,1,0)
	Width         int       // Image width in pixels
	AspectRatio   float64   // Aspect ratio (width/height)
	VFov          float64   // Vertical field of view in degrees
	Aperture      float64   // Lens diameter, 0 for a pinhole
	FocusDistance float64   // Distance to focus plane (0 = auto-calculate from LookAt)
}

// Camera generates rays for rendering, with optional depth of field
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Camera basis vectors
	lensRadius      float64
	config          CameraConfig
}

// NewCamera creates a camera from configuration
func NewCamera(config CameraConfig) *Camera {
	theta := config.VFov * math.Pi / 180.0
	h := math.Tan(theta / 2)
	viewportHeight := 2.0 * h
	viewportWidth := config.AspectRatio * viewportHeight

	// Orthonormal basis: w points backwards, u right, v up
	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = config.Center.Subtract(config.LookAt).Length()
	}

	horizontal := u.Multiply(focusDistance * viewportWidth)
	vertical := v.Multiply(focusDistance * viewportHeight)
	lowerLeftCorner := config.Center.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		origin:          config.Center,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
		config:          config,
	}
}

// GetRay generates a ray for viewport coordinates (s, t), where (0,0) is the lower-left corner.
// The origin is offset within the lens disk when the aperture is non-zero.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
	offset := c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))

	origin := c.origin.Add(offset)
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// ImageHeight returns the image height implied by the width and aspect ratio
func (config CameraConfig) ImageHeight() int {
	if config.AspectRatio <= 0 {
		return config.Width
	}
	height := int(float64(config.Width) / config.AspectRatio)
	if height < 1 {
		height = 1
	}
	return height
}

// MergeCameraConfig applies the non-zero fields of override on top of base
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	zero := core.Vec3{}

	if override.Center != zero {
		result.Center = override.Center
	}
	if override.LookAt != zero {
		result.LookAt = override.LookAt
	}
	if override.Up != zero {
		result.Up = override.Up
	}
	if override.Width > 0 {
		result.Width = override.Width
	}
	if override.AspectRatio > 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.VFov > 0 {
		result.VFov = override.VFov
	}
	if override.Aperture > 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance > 0 {
		result.FocusDistance = override.FocusDistance
	}

	return result
}
