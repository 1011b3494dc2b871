package geometry

import (
	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
)

// HittableList is an ordered collection of shapes tested by linear scan
type HittableList struct {
	shapes []Shape
}

// NewHittableList creates a list holding the given shapes
func NewHittableList(shapes ...Shape) *HittableList {
	return &HittableList{shapes: append([]Shape(nil), shapes...)}
}

// Add appends a shape to the list
func (h *HittableList) Add(shape Shape) {
	h.shapes = append(h.shapes, shape)
}

// Len returns the number of shapes in the list
func (h *HittableList) Len() int {
	return len(h.shapes)
}

// Shapes returns the shapes in insertion order
func (h *HittableList) Shapes() []Shape {
	return h.shapes
}

// Hit returns the closest intersection across all shapes
func (h *HittableList) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for _, shape := range h.shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, hitAnything
}
