package integrator

import (
	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the radiance arriving along ray.
	// The sampler is owned by the calling worker and must not be shared.
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Vec3
}
