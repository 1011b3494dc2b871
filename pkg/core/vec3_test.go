package core

import (
	"math"
	"testing"
)

func TestVec3_Cross(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		expected Vec3
	}{
		{"x cross y", NewVec3(1, 0, 0), NewVec3(0, 1, 0), NewVec3(0, 0, 1)},
		{"y cross z", NewVec3(0, 1, 0), NewVec3(0, 0, 1), NewVec3(1, 0, 0)},
		{"z cross x", NewVec3(0, 0, 1), NewVec3(1, 0, 0), NewVec3(0, 1, 0)},
		{"parallel", NewVec3(2, 0, 0), NewVec3(5, 0, 0), NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.a.Cross(tt.b)
			if result.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Expected zero vector, got %v", got)
	}

	n := NewVec3(3, 4, 0).Normalize()
	if math.Abs(n.Length()-1) > 1e-12 {
		t.Errorf("Expected unit length, got %f", n.Length())
	}
}

func TestVec3_Lerp(t *testing.T) {
	white := NewVec3(1, 1, 1)
	sky := NewVec3(0.5, 0.7, 1.0)

	if got := white.Lerp(sky, 0); got != white {
		t.Errorf("t=0: expected %v, got %v", white, got)
	}
	if got := white.Lerp(sky, 1); got.Subtract(sky).Length() > 1e-12 {
		t.Errorf("t=1: expected %v, got %v", sky, got)
	}
	mid := white.Lerp(sky, 0.5)
	expected := NewVec3(0.75, 0.85, 1.0)
	if mid.Subtract(expected).Length() > 1e-12 {
		t.Errorf("t=0.5: expected %v, got %v", expected, mid)
	}
}

func TestVec3_ClampAndSqrt(t *testing.T) {
	v := NewVec3(-0.5, 0.25, 4).Clamp(0, 0.999)
	if v != NewVec3(0, 0.25, 0.999) {
		t.Errorf("Unexpected clamp result %v", v)
	}

	s := NewVec3(0.25, 1, 0.01).Sqrt()
	if math.Abs(s.X-0.5) > 1e-12 || s.Y != 1 || math.Abs(s.Z-0.1) > 1e-12 {
		t.Errorf("Unexpected sqrt result %v", s)
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 2, 3), NewVec3(0, 0, -2))
	if got := ray.At(1.5); got != NewVec3(1, 2, 0) {
		t.Errorf("Expected (1,2,0), got %v", got)
	}
}
