package loaders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/geometry"
	"github.com/df07/go-parallel-pathtracer/pkg/material"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
)

// Material type names used in scene files
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// SceneFile is the YAML representation of a sphere scene
type SceneFile struct {
	Name       string          `yaml:"name"`
	Camera     CameraFile      `yaml:"camera"`
	Sampling   SamplingFile    `yaml:"sampling"`
	Background *BackgroundFile `yaml:"background,omitempty"`
	Spheres    []SphereFile    `yaml:"spheres"`
}

// CameraFile mirrors geometry.CameraConfig
type CameraFile struct {
	Center        []float64 `yaml:"center,flow"`
	LookAt        []float64 `yaml:"look_at,flow"`
	Up            []float64 `yaml:"up,flow"`
	Width         int       `yaml:"width"`
	AspectRatio   float64   `yaml:"aspect_ratio"`
	VFov          float64   `yaml:"vfov"`
	Aperture      float64   `yaml:"aperture"`
	FocusDistance float64   `yaml:"focus_distance"` // 0 = distance to look_at
}

// SamplingFile holds per-scene sampling defaults
type SamplingFile struct {
	SamplesPerPixel int `yaml:"samples_per_pixel"`
	MaxDepth        int `yaml:"max_depth"`
}

// BackgroundFile holds the sky gradient colors
type BackgroundFile struct {
	Top    []float64 `yaml:"top,flow"`
	Bottom []float64 `yaml:"bottom,flow"`
}

// SphereFile describes one sphere; a negative radius makes a hollow shell
type SphereFile struct {
	Center   []float64    `yaml:"center,flow"`
	Radius   float64      `yaml:"radius"`
	Material MaterialFile `yaml:"material"`
}

// MaterialFile describes a material by type name
type MaterialFile struct {
	Type   string    `yaml:"type"`
	Albedo []float64 `yaml:"albedo,flow,omitempty"`
	Fuzz   float64   `yaml:"fuzz,omitempty"`
	IOR    float64   `yaml:"ior,omitempty"`
}

// LoadScene reads a YAML scene file
func LoadScene(filePath string) (*scene.Scene, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	sc, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("scene file %s: %w", filePath, err)
	}
	return sc, nil
}

// ParseScene builds a scene from YAML data
func ParseScene(data []byte) (*scene.Scene, error) {
	var file SceneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing scene: %w", err)
	}
	return file.Build()
}

// Build converts the file representation into a renderable scene
func (f *SceneFile) Build() (*scene.Scene, error) {
	cameraConfig, err := f.Camera.config()
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	samples := f.Sampling.SamplesPerPixel
	if samples <= 0 {
		samples = scene.DefaultSamplesPerPixel
	}
	maxDepth := f.Sampling.MaxDepth
	if maxDepth <= 0 {
		maxDepth = scene.DefaultMaxDepth
	}

	name := f.Name
	if name == "" {
		name = "custom"
	}
	sc := scene.NewScene(name, cameraConfig, samples, maxDepth)

	if f.Background != nil {
		if sc.TopColor, err = toVec3(f.Background.Top, "background top"); err != nil {
			return nil, err
		}
		if sc.BottomColor, err = toVec3(f.Background.Bottom, "background bottom"); err != nil {
			return nil, err
		}
	}

	for i, sf := range f.Spheres {
		center, err := toVec3(sf.Center, "center")
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		if sf.Radius == 0 {
			return nil, fmt.Errorf("sphere %d: radius must be non-zero", i)
		}
		mat, err := sf.Material.build()
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		sc.AddSphere(center, sf.Radius, mat)
	}

	return sc, nil
}

func (c CameraFile) config() (geometry.CameraConfig, error) {
	center, err := toVec3(c.Center, "center")
	if err != nil {
		return geometry.CameraConfig{}, err
	}
	lookAt, err := toVec3(c.LookAt, "look_at")
	if err != nil {
		return geometry.CameraConfig{}, err
	}
	up := core.NewVec3(0, 1, 0)
	if len(c.Up) > 0 {
		if up, err = toVec3(c.Up, "up"); err != nil {
			return geometry.CameraConfig{}, err
		}
	}
	if center == lookAt {
		return geometry.CameraConfig{}, fmt.Errorf("center and look_at must differ")
	}
	if c.Width <= 0 || c.AspectRatio <= 0 {
		return geometry.CameraConfig{}, fmt.Errorf("width and aspect_ratio must be positive")
	}
	if c.VFov <= 0 || c.VFov >= 180 {
		return geometry.CameraConfig{}, fmt.Errorf("vfov must be in (0, 180), got %v", c.VFov)
	}

	return geometry.CameraConfig{
		Center:        center,
		LookAt:        lookAt,
		Up:            up,
		Width:         c.Width,
		AspectRatio:   c.AspectRatio,
		VFov:          c.VFov,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDistance,
	}, nil
}

func (m MaterialFile) build() (material.Material, error) {
	switch m.Type {
	case MaterialLambertian:
		albedo, err := toVec3(m.Albedo, "albedo")
		if err != nil {
			return nil, err
		}
		return material.NewLambertian(albedo), nil
	case MaterialMetal:
		albedo, err := toVec3(m.Albedo, "albedo")
		if err != nil {
			return nil, err
		}
		return material.NewMetal(albedo, m.Fuzz), nil
	case MaterialDielectric:
		if m.IOR <= 0 {
			return nil, fmt.Errorf("dielectric ior must be positive, got %v", m.IOR)
		}
		return material.NewDielectric(m.IOR), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", m.Type)
	}
}

// SaveScene writes a scene as YAML so it can be re-rendered exactly
func SaveScene(filePath string, sc *scene.Scene) error {
	data, err := MarshalScene(sc)
	if err != nil {
		return err
	}

	// Header comments are read back by scene discovery
	header := fmt.Sprintf("# Scene: %s\n# Group: %s\n", titleCase(sc.Name), ExportedGroup)
	data = append([]byte(header), data...)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing scene file: %w", err)
	}
	return nil
}

// MarshalScene converts a scene to YAML
func MarshalScene(sc *scene.Scene) ([]byte, error) {
	cam := sc.CameraConfig
	file := SceneFile{
		Name: sc.Name,
		Camera: CameraFile{
			Center:        fromVec3(cam.Center),
			LookAt:        fromVec3(cam.LookAt),
			Up:            fromVec3(cam.Up),
			Width:         cam.Width,
			AspectRatio:   cam.AspectRatio,
			VFov:          cam.VFov,
			Aperture:      cam.Aperture,
			FocusDistance: cam.FocusDistance,
		},
		Sampling: SamplingFile{
			SamplesPerPixel: sc.SamplingConfig.SamplesPerPixel,
			MaxDepth:        sc.SamplingConfig.MaxDepth,
		},
		Background: &BackgroundFile{
			Top:    fromVec3(sc.TopColor),
			Bottom: fromVec3(sc.BottomColor),
		},
	}

	for i, shape := range sc.World.Shapes() {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			return nil, fmt.Errorf("shape %d: cannot serialize %T", i, shape)
		}
		mf, err := materialFile(sphere.Material)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		file.Spheres = append(file.Spheres, SphereFile{
			Center:   fromVec3(sphere.Center),
			Radius:   sphere.Radius,
			Material: mf,
		})
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return nil, fmt.Errorf("error serializing scene: %w", err)
	}
	return data, nil
}

func materialFile(m material.Material) (MaterialFile, error) {
	switch mat := m.(type) {
	case *material.Lambertian:
		return MaterialFile{Type: MaterialLambertian, Albedo: fromVec3(mat.Albedo)}, nil
	case *material.Metal:
		return MaterialFile{Type: MaterialMetal, Albedo: fromVec3(mat.Albedo), Fuzz: mat.Fuzz}, nil
	case *material.Dielectric:
		return MaterialFile{Type: MaterialDielectric, IOR: mat.RefractiveIndex}, nil
	default:
		return MaterialFile{}, fmt.Errorf("cannot serialize material %T", m)
	}
}

func toVec3(values []float64, field string) (core.Vec3, error) {
	if len(values) != 3 {
		return core.Vec3{}, fmt.Errorf("%s: expected 3 components, got %d", field, len(values))
	}
	return core.NewVec3(values[0], values[1], values[2]), nil
}

func fromVec3(v core.Vec3) []float64 {
	return []float64{v.X, v.Y, v.Z}
}
