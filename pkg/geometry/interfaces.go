package geometry

import (
	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
)

// Shape interface for objects that can be hit by rays.
// Hits are only reported for tMin < t < tMax.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}
