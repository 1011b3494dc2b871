package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/integrator"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

// InspectResult contains the hit record and the shape an inspection ray hit
type InspectResult struct {
	Hit       bool
	HitRecord *material.HitRecord
	Shape     geometry.Shape
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = [3]float64{m.Albedo.X, m.Albedo.Y, m.Albedo.Z}
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = [3]float64{m.Albedo.X, m.Albedo.Y, m.Albedo.Z}
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = [3]float64{geom.Center.X, geom.Center.Y, geom.Center.Z}
		properties["radius"] = geom.Radius
		properties["hollow"] = geom.Radius < 0
		return "sphere", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts a ray through the center of pixel (x, y) and returns the first object hit
func inspectPixel(sceneObj *scene.Scene, pixelX, pixelY int) InspectResult {
	width, height := sceneObj.SamplingConfig.Width, sceneObj.SamplingConfig.Height
	s, t := renderer.ViewportCoords(pixelX, pixelY, width, height, 0.5, 0.5)

	// 0.5 draws put the lens sample at the disk center, so the ray has no blur
	ray := sceneObj.Camera.GetRay(s, t, core.NewFixedSampler(0.5))

	hit, isHit := sceneObj.Hit(ray, integrator.MinHitDistance, math.Inf(1))
	if !isHit {
		return InspectResult{Hit: false}
	}

	// HittableList does not report which shape was hit
	for _, shape := range sceneObj.World.Shapes() {
		if shapeHit, ok := shape.Hit(ray, integrator.MinHitDistance, hit.T+integrator.MinHitDistance); ok && shapeHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Shape: shape}
		}
	}

	return InspectResult{Hit: true, HitRecord: hit}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
	}

	pixelX, err := strconv.Atoi(c.QueryParam("x"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
	}
	pixelY, err := strconv.Atoi(c.QueryParam("y"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
	}

	sceneObj, err := s.createScene(req, s.logger)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	if pixelX < 0 || pixelX >= sceneObj.SamplingConfig.Width || pixelY < 0 || pixelY >= sceneObj.SamplingConfig.Height {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
	}

	result := inspectPixel(sceneObj, pixelX, pixelY)
	if !result.Hit {
		return c.JSON(http.StatusOK, InspectResponse{Hit: false})
	}

	materialType, materialProps := extractMaterialInfo(result.HitRecord.Material)
	geometryType, geometryProps := extractGeometryInfo(result.Shape)

	hit := result.HitRecord
	return c.JSON(http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        [3]float64{hit.Point.X, hit.Point.Y, hit.Point.Z},
		Normal:       [3]float64{hit.Normal.X, hit.Normal.Y, hit.Normal.Z},
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
