package integrator

import (
	"math"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
)

// MinHitDistance skips intersections this close to the ray origin to avoid self-hits (shadow acne)
const MinHitDistance = 0.001

// PathTracingIntegrator implements unidirectional path tracing
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor computes the color for a single ray, following at most MaxDepth bounces
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, sc *scene.Scene, sampler core.Sampler) core.Vec3 {
	return pt.rayColor(ray, sc, sampler, pt.config.MaxDepth)
}

func (pt *PathTracingIntegrator) rayColor(ray core.Ray, sc *scene.Scene, sampler core.Sampler, depth int) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := sc.Hit(ray, MinHitDistance, math.Inf(1))
	if !isHit {
		return BackgroundGradient(ray, sc.TopColor, sc.BottomColor)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		// Material absorbed the ray
		return core.Vec3{}
	}

	return scatter.Attenuation.MultiplyVec(pt.rayColor(scatter.Scattered, sc, sampler, depth-1))
}

// BackgroundGradient blends from bottomColor to topColor with the ray's vertical direction
func BackgroundGradient(r core.Ray, topColor, bottomColor core.Vec3) core.Vec3 {
	// Normalize the ray direction to get consistent results
	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return bottomColor.Lerp(topColor, t)
}
