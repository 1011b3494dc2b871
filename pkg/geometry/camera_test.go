package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
)

func TestCamera_CenterRayLooksAtTarget(t *testing.T) {
	config := CameraConfig{
		Center:      core.NewVec3(13, 2, 3),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		Width:       300,
		AspectRatio: 3.0 / 2.0,
		VFov:        20.0,
	}
	camera := NewCamera(config)

	ray := camera.GetRay(0.5, 0.5, core.NewFixedSampler())
	if ray.Origin != config.Center {
		t.Errorf("Pinhole ray should start at the camera center, got %v", ray.Origin)
	}

	expected := config.LookAt.Subtract(config.Center).Normalize()
	actual := ray.Direction.Normalize()
	if actual.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected center ray direction %v, got %v", expected, actual)
	}
}

func TestCamera_ViewportCorners(t *testing.T) {
	config := CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		Width:         400,
		AspectRatio:   2.0,
		VFov:          90.0,
		FocusDistance: 1.0,
	}
	camera := NewCamera(config)
	sampler := core.NewFixedSampler()

	// 90 degree vfov at focus 1 gives a viewport 2 high and 4 wide
	tests := []struct {
		name     string
		s, t     float64
		expected core.Vec3
	}{
		{"lower left", 0, 0, core.NewVec3(-2, -1, -1)},
		{"upper right", 1, 1, core.NewVec3(2, 1, -1)},
		{"center", 0.5, 0.5, core.NewVec3(0, 0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GetRay(tt.s, tt.t, sampler)
			if ray.Direction.Subtract(tt.expected).Length() > 1e-9 {
				t.Errorf("Expected direction %v, got %v", tt.expected, ray.Direction)
			}
		})
	}
}

func TestCamera_ApertureOffsetsOriginWithinLens(t *testing.T) {
	config := CameraConfig{
		Center:        core.NewVec3(1, 2, 3),
		LookAt:        core.NewVec3(1, 2, -7),
		Up:            core.NewVec3(0, 1, 0),
		Width:         100,
		AspectRatio:   1.0,
		VFov:          40,
		Aperture:      0.5,
		FocusDistance: 10,
	}
	camera := NewCamera(config)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	focusPoint := camera.GetRay(0.5, 0.5, core.NewFixedSampler()).At(1)
	moved := false
	for i := 0; i < 200; i++ {
		ray := camera.GetRay(0.5, 0.5, sampler)
		offset := ray.Origin.Subtract(config.Center)
		if offset.Length() > 0.25+1e-12 {
			t.Fatalf("Lens offset %v exceeds lens radius", offset)
		}
		if math.Abs(offset.Z) > 1e-12 {
			t.Fatalf("Lens offset %v should lie in the lens plane", offset)
		}
		if offset.Length() > 0 {
			moved = true
		}
		// Every lens sample converges on the same point of the focus plane
		if ray.At(1).Subtract(focusPoint).Length() > 1e-9 {
			t.Fatalf("Ray does not pass through focus point %v", focusPoint)
		}
	}
	if !moved {
		t.Error("Expected lens sampling to move the ray origin")
	}
}

func TestCamera_AutoFocusDistance(t *testing.T) {
	config := CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -4),
		Up:          core.NewVec3(0, 1, 0),
		Width:       100,
		AspectRatio: 1.0,
		VFov:        90,
	}
	camera := NewCamera(config)

	// Viewport center sits on the focus plane at the look-at distance
	ray := camera.GetRay(0.5, 0.5, core.NewFixedSampler())
	if ray.Direction.Subtract(core.NewVec3(0, 0, -4)).Length() > 1e-9 {
		t.Errorf("Expected direction (0,0,-4), got %v", ray.Direction)
	}
}

func TestCameraConfig_ImageHeight(t *testing.T) {
	tests := []struct {
		width    int
		aspect   float64
		expected int
	}{
		{400, 16.0 / 9.0, 225},
		{1200, 3.0 / 2.0, 800},
		{100, 1.0, 100},
		{1, 4.0, 1},
	}

	for _, tt := range tests {
		config := CameraConfig{Width: tt.width, AspectRatio: tt.aspect}
		if got := config.ImageHeight(); got != tt.expected {
			t.Errorf("ImageHeight(%d, %f) = %d, expected %d", tt.width, tt.aspect, got, tt.expected)
		}
	}
}

func TestMergeCameraConfig(t *testing.T) {
	base := CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 16.0 / 9.0,
		VFov:        90,
	}

	merged := MergeCameraConfig(base, CameraConfig{Width: 800, Aperture: 0.1})
	if merged.Width != 800 || merged.Aperture != 0.1 {
		t.Errorf("Overrides not applied: %+v", merged)
	}
	if merged.VFov != 90 || merged.LookAt != base.LookAt {
		t.Errorf("Unset fields should keep base values: %+v", merged)
	}
}

func TestCamera_BasisIsOrthonormal(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	randomVec := func(scale float64) core.Vec3 {
		return core.NewVec3(
			(random.Float64()*2-1)*scale,
			(random.Float64()*2-1)*scale,
			(random.Float64()*2-1)*scale,
		)
	}

	const tolerance = 1e-9
	checked := 0
	for i := 0; i < 500; i++ {
		config := CameraConfig{
			Center:      randomVec(20),
			LookAt:      randomVec(5),
			Up:          core.NewVec3(0, 1, 0),
			Width:       100,
			AspectRatio: 1.5,
			VFov:        10 + random.Float64()*100,
		}
		direction := config.Center.Subtract(config.LookAt).Normalize()
		if math.Abs(direction.Y) > 0.99 {
			continue // up is nearly parallel to the view direction
		}
		camera := NewCamera(config)
		checked++

		for name, axis := range map[string]core.Vec3{"u": camera.u, "v": camera.v, "w": camera.w} {
			if math.Abs(axis.Length()-1) > tolerance {
				t.Fatalf("Camera %d: %s has length %f", i, name, axis.Length())
			}
		}
		if math.Abs(camera.u.Dot(camera.v)) > tolerance ||
			math.Abs(camera.v.Dot(camera.w)) > tolerance ||
			math.Abs(camera.w.Dot(camera.u)) > tolerance {
			t.Fatalf("Camera %d: basis not orthogonal u=%v v=%v w=%v", i, camera.u, camera.v, camera.w)
		}
		if camera.w.Subtract(direction).Length() > tolerance {
			t.Fatalf("Camera %d: w=%v should point from the target to the camera %v", i, camera.w, direction)
		}
		// Right-handed: u x v = w
		if camera.u.Cross(camera.v).Subtract(camera.w).Length() > tolerance {
			t.Fatalf("Camera %d: basis is not right-handed", i)
		}
	}

	if checked < 400 {
		t.Errorf("Only %d cameras checked", checked)
	}
}

func TestCamera_ObliqueLensOffsetIsPerpendicularToView(t *testing.T) {
	config := CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		Width:         300,
		AspectRatio:   3.0 / 2.0,
		VFov:          20,
		Aperture:      0.1,
		FocusDistance: 10,
	}
	camera := NewCamera(config)
	view := config.Center.Subtract(config.LookAt).Normalize()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	for i := 0; i < 1000; i++ {
		ray := camera.GetRay(sampler.Get1D(), sampler.Get1D(), sampler)
		offset := ray.Origin.Subtract(config.Center)

		if offset.Length() > 0.05+1e-12 {
			t.Fatalf("Lens offset %v exceeds lens radius 0.05", offset)
		}
		if math.Abs(offset.Dot(view)) > 1e-12 {
			t.Fatalf("Lens offset %v is not perpendicular to the view direction %v", offset, view)
		}
	}
}
