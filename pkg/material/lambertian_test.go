package material

import (
	"math/rand"
	"testing"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
)

func TestLambertian_AlwaysScatters(t *testing.T) {
	albedo := core.NewVec3(0.8, 0.3, 0.3)
	lambertian := NewLambertian(albedo)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	normal := core.NewVec3(0, 0, 1)
	hit := HitRecord{
		Point:     core.NewVec3(1, 2, 3),
		Normal:    normal,
		FrontFace: true,
	}
	ray := core.NewRay(core.NewVec3(1, 2, 4), core.NewVec3(0, 0, -1))

	for i := 0; i < 1000; i++ {
		scatter, didScatter := lambertian.Scatter(ray, hit, sampler)
		if !didScatter {
			t.Fatal("Lambertian should always scatter")
		}
		if scatter.Attenuation != albedo {
			t.Fatalf("Attenuation should equal albedo: expected %v, got %v", albedo, scatter.Attenuation)
		}
		if scatter.Scattered.Origin != hit.Point {
			t.Fatalf("Scattered ray should start at the hit point, got %v", scatter.Scattered.Origin)
		}
		// normal + unit vector never points below the surface
		if scatter.Scattered.Direction.Dot(normal) < -1e-12 {
			t.Fatalf("Scattered direction %v points into the surface", scatter.Scattered.Direction)
		}
	}
}

func TestLambertian_DegenerateDirectionFallsBackToNormal(t *testing.T) {
	lambertian := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	normal := core.NewVec3(0, 0, 1)
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: normal, FrontFace: true}
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))

	// (0.5, 0.5, 0.25) maps to (0, 0, -0.5) in the unit sphere, i.e. exactly -normal once normalized
	sampler := core.NewFixedSampler(0.5, 0.5, 0.25)

	scatter, didScatter := lambertian.Scatter(ray, hit, sampler)
	if !didScatter {
		t.Fatal("Lambertian should always scatter")
	}
	if scatter.Scattered.Direction != normal {
		t.Errorf("Expected fallback to normal %v, got %v", normal, scatter.Scattered.Direction)
	}
}
