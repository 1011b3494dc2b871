package scene

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
)

func TestByName(t *testing.T) {
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		{"random scene", "random", false},
		{"default scene", "default", false},
		{"two-spheres scene", "two-spheres", false},
		{"spheregrid scene", "spheregrid", false},
		{"unknown scene", "nonexistent", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ByName(tt.sceneType, sampler)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if s != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if s.Name != tt.sceneType {
				t.Errorf("Expected scene name %q, got %q", tt.sceneType, s.Name)
			}
			if s.SamplingConfig.Width <= 0 || s.SamplingConfig.Height <= 0 {
				t.Errorf("Scene dimensions should be positive, got %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
			}
			if s.SamplingConfig.SamplesPerPixel <= 0 || s.SamplingConfig.MaxDepth <= 0 {
				t.Errorf("Sampling config should be positive, got %+v", s.SamplingConfig)
			}
			if s.GetPrimitiveCount() == 0 {
				t.Error("Scene should contain objects")
			}
		})
	}
}

func TestByName_RandomRequiresSampler(t *testing.T) {
	if _, err := ByName("random", nil); err == nil {
		t.Error("Expected error when building the random scene without a sampler")
	}
	// Deterministic scenes ignore the sampler
	if _, err := ByName("default", nil); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestNamesMatchesList(t *testing.T) {
	names := Names()
	infos := List()
	if len(names) != len(infos) {
		t.Fatalf("Names and List disagree: %d vs %d", len(names), len(infos))
	}
	for i := range names {
		if names[i] != infos[i].ID {
			t.Errorf("Entry %d: %q vs %q", i, names[i], infos[i].ID)
		}
	}
}

func TestRandomScene_Layout(t *testing.T) {
	s := NewRandomScene(core.NewRandomSampler(rand.New(rand.NewSource(7))))

	// Ground + up to 22x22 small spheres + 3 feature spheres
	count := s.GetPrimitiveCount()
	if count < 4 || count > 1+22*22+3 {
		t.Fatalf("Unexpected sphere count %d", count)
	}

	clearance := core.NewVec3(4, 0.2, 0)
	for i, shape := range s.World.Shapes() {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			t.Fatalf("Shape %d is %T, expected *geometry.Sphere", i, shape)
		}
		if sphere.Radius != 0.2 {
			continue
		}
		if sphere.Center.Subtract(clearance).Length() <= 0.9 {
			t.Errorf("Small sphere at %v is inside the clearance zone", sphere.Center)
		}
		if sphere.Center.Y != 0.2 {
			t.Errorf("Small sphere at %v should rest at y=0.2", sphere.Center)
		}
		if m, ok := sphere.Material.(*material.Metal); ok && (m.Fuzz < 0 || m.Fuzz >= 0.5) {
			t.Errorf("Metal fuzz %f outside [0, 0.5)", m.Fuzz)
		}
	}

	// Feature spheres are the last three
	shapes := s.World.Shapes()
	last := shapes[len(shapes)-3:]
	if _, ok := last[0].(*geometry.Sphere).Material.(*material.Dielectric); !ok {
		t.Error("Center feature sphere should be glass")
	}
	if _, ok := last[1].(*geometry.Sphere).Material.(*material.Lambertian); !ok {
		t.Error("Left feature sphere should be diffuse")
	}
	if _, ok := last[2].(*geometry.Sphere).Material.(*material.Metal); !ok {
		t.Error("Right feature sphere should be metal")
	}

	if s.SamplingConfig.Width != 1200 || s.SamplingConfig.Height != 800 {
		t.Errorf("Expected 1200x800, got %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}
}

func TestRandomScene_SameSeedSameScene(t *testing.T) {
	a := NewRandomScene(core.NewSeededSampler(99))
	b := NewRandomScene(core.NewSeededSampler(99))

	if a.GetPrimitiveCount() != b.GetPrimitiveCount() {
		t.Fatalf("Sphere counts differ: %d vs %d", a.GetPrimitiveCount(), b.GetPrimitiveCount())
	}
	for i := range a.World.Shapes() {
		sa := a.World.Shapes()[i].(*geometry.Sphere)
		sb := b.World.Shapes()[i].(*geometry.Sphere)
		if sa.Center != sb.Center || sa.Radius != sb.Radius {
			t.Fatalf("Sphere %d differs: %v vs %v", i, sa, sb)
		}
	}
}

func TestDefaultScene_HollowGlassShell(t *testing.T) {
	s := NewDefaultScene()

	negative := 0
	for _, shape := range s.World.Shapes() {
		if sphere := shape.(*geometry.Sphere); sphere.Radius < 0 {
			negative++
			if _, ok := sphere.Material.(*material.Dielectric); !ok {
				t.Errorf("Inner shell should be glass, got %T", sphere.Material)
			}
		}
	}
	if negative != 1 {
		t.Errorf("Expected exactly one negative-radius sphere, got %d", negative)
	}
}

func TestCameraOverrides(t *testing.T) {
	s := NewTwoSphereScene(geometry.CameraConfig{Width: 160})

	if s.SamplingConfig.Width != 160 {
		t.Errorf("Expected width 160, got %d", s.SamplingConfig.Width)
	}
	if s.SamplingConfig.Height != 90 {
		t.Errorf("Expected height 90, got %d", s.SamplingConfig.Height)
	}
	if s.CameraConfig.VFov != 90 {
		t.Errorf("Override should keep default vfov, got %f", s.CameraConfig.VFov)
	}

	s.SetCamera(geometry.MergeCameraConfig(s.CameraConfig, geometry.CameraConfig{Width: 320}))
	if s.SamplingConfig.Width != 320 || s.SamplingConfig.Height != 180 {
		t.Errorf("SetCamera should recompute dimensions, got %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}
}

func TestApplyOverrides(t *testing.T) {
	s := NewDefaultScene()
	original := s.SamplingConfig

	s.ApplyOverrides(0, 0, 0)
	if s.SamplingConfig != original {
		t.Errorf("Zero overrides should keep defaults, got %+v", s.SamplingConfig)
	}

	s.ApplyOverrides(200, 4, 5)
	if s.SamplingConfig.Width != 200 || s.SamplingConfig.Height != 112 {
		t.Errorf("Expected 200x112, got %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}
	if s.SamplingConfig.SamplesPerPixel != 4 || s.SamplingConfig.MaxDepth != 5 {
		t.Errorf("Sampling overrides not applied: %+v", s.SamplingConfig)
	}
	if s.Camera.Config().Width != 200 {
		t.Errorf("Camera not rebuilt, width %d", s.Camera.Config().Width)
	}
}

func TestSceneHit(t *testing.T) {
	s := NewTwoSphereScene()

	hit, ok := s.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1))
	if !ok {
		t.Fatal("Center ray should hit the small sphere")
	}
	if math.Abs(hit.T-0.5) > 1e-9 {
		t.Errorf("Expected t=0.5, got %f", hit.T)
	}
}

func TestOklchToRGB_InRange(t *testing.T) {
	for hue := 0.0; hue < 360; hue += 30 {
		c := oklchToRGB(0.65, 0.25, hue)
		for _, v := range []float64{c.X, c.Y, c.Z} {
			if v < 0 || v > 1 {
				t.Fatalf("oklchToRGB(0.65, 0.25, %f) = %v out of range", hue, c)
			}
		}
	}
	// Zero chroma is gray
	gray := oklchToRGB(0.5, 0, 0)
	if math.Abs(gray.X-gray.Y) > 1e-6 || math.Abs(gray.Y-gray.Z) > 1e-6 {
		t.Errorf("Expected gray for zero chroma, got %v", gray)
	}
}
