package scene

import (
	"fmt"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
)

// Scene types reported in SceneInfo
const (
	TypeBuiltin = "builtin"
	TypeFile    = "file"
)

// BuiltinGroup is the group name of the built-in scenes
const BuiltinGroup = "Built-in Scenes"

// SceneInfo describes a selectable scene
type SceneInfo struct {
	ID          string `json:"id"`                 // Name accepted by ByName, or file:<name>
	DisplayName string `json:"displayName"`        // UI display name
	Description string `json:"description"`        // Optional description
	Group       string `json:"group"`              // Grouping category
	Type        string `json:"type"`               // "builtin" or "file"
	FilePath    string `json:"filePath,omitempty"` // Scene file path (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

var builtinScenes = []SceneInfo{
	{ID: "random", DisplayName: "Random Spheres", Description: "Ground, three feature spheres and a randomized field of small spheres", Group: BuiltinGroup, Type: TypeBuiltin},
	{ID: "default", DisplayName: "Default", Description: "Diffuse, metal and glass spheres including a hollow glass shell", Group: BuiltinGroup, Type: TypeBuiltin},
	{ID: "two-spheres", DisplayName: "Two Spheres", Description: "One diffuse sphere on a large ground sphere", Group: BuiltinGroup, Type: TypeBuiltin},
	{ID: "spheregrid", DisplayName: "Sphere Grid", Description: "Grid of metal spheres colored across hue and chroma", Group: BuiltinGroup, Type: TypeBuiltin},
}

// List returns metadata for every built-in scene
func List() []SceneInfo {
	return append([]SceneInfo(nil), builtinScenes...)
}

// Names returns the identifiers of every built-in scene
func Names() []string {
	names := make([]string, len(builtinScenes))
	for i, info := range builtinScenes {
		names[i] = info.ID
	}
	return names
}

// ByName builds the named scene. The sampler is only consumed by randomized scenes.
func ByName(name string, sampler core.Sampler, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	switch name {
	case "random":
		if sampler == nil {
			return nil, fmt.Errorf("scene %q requires a sampler", name)
		}
		return NewRandomScene(sampler, cameraOverrides...), nil
	case "default":
		return NewDefaultScene(cameraOverrides...), nil
	case "two-spheres":
		return NewTwoSphereScene(cameraOverrides...), nil
	case "spheregrid":
		return NewSphereGridScene(cameraOverrides...), nil
	default:
		return nil, fmt.Errorf("unknown scene type: %q", name)
	}
}
