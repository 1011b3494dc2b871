package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
)

func TestHittableList_ClosestHitWins(t *testing.T) {
	near := material.NewLambertian(core.NewVec3(1, 0, 0))
	far := material.NewLambertian(core.NewVec3(0, 0, 1))

	// Insert the far sphere first so ordering cannot explain the result
	list := NewHittableList(
		NewSphere(core.NewVec3(0, 0, -5), 0.5, far),
		NewSphere(core.NewVec3(0, 0, -2), 0.5, near),
	)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	hit, ok := list.Hit(ray, 0.001, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-1.5) > 1e-9 {
		t.Errorf("Expected closest t=1.5, got %f", hit.T)
	}
	if hit.Material != material.Material(near) {
		t.Error("Expected the near sphere's material")
	}
}

func TestHittableList_EmptyAndMiss(t *testing.T) {
	list := NewHittableList()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if _, ok := list.Hit(ray, 0.001, math.Inf(1)); ok {
		t.Error("Empty list should never report a hit")
	}

	list.Add(NewSphere(core.NewVec3(0, 5, -1), 0.5, nil))
	if list.Len() != 1 {
		t.Fatalf("Expected 1 shape, got %d", list.Len())
	}
	if _, ok := list.Hit(ray, 0.001, math.Inf(1)); ok {
		t.Error("Ray should miss the only sphere")
	}
}

func TestHittableList_RespectsTMax(t *testing.T) {
	list := NewHittableList(NewSphere(core.NewVec3(0, 0, -5), 0.5, nil))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	if _, ok := list.Hit(ray, 0.001, 4.0); ok {
		t.Error("Hit beyond tMax should be ignored")
	}
}
