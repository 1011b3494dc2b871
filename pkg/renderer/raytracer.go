package renderer

import (
	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/integrator"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
)

// maxChannel keeps quantized channels below 256
const maxChannel = 0.999

// Raytracer computes individual pixels of a scene. It holds no mutable state,
// so one instance is shared by every worker.
type Raytracer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	width      int
	height     int
	config     scene.SamplingConfig
}

// NewRaytracer creates a new raytracer using the scene's sampling configuration
func NewRaytracer(sc *scene.Scene, integ integrator.Integrator) *Raytracer {
	return &Raytracer{
		scene:      sc,
		integrator: integ,
		width:      sc.SamplingConfig.Width,
		height:     sc.SamplingConfig.Height,
		config:     sc.SamplingConfig,
	}
}

// Width returns the image width in pixels
func (rt *Raytracer) Width() int {
	return rt.width
}

// Height returns the image height in pixels
func (rt *Raytracer) Height() int {
	return rt.height
}

// SamplesPerPixel returns the number of camera rays traced per pixel
func (rt *Raytracer) SamplesPerPixel() int {
	return rt.config.SamplesPerPixel
}

// SamplePixel returns the average linear color of samplesPerPixel jittered camera rays
// through pixel (x, y). Row 0 is the top of the image.
func (rt *Raytracer) SamplePixel(x, y int, sampler core.Sampler) core.Vec3 {
	camera := rt.scene.Camera
	samples := rt.config.SamplesPerPixel
	if samples < 1 {
		samples = 1
	}

	colorAccum := core.Vec3{}
	for sample := 0; sample < samples; sample++ {
		s, t := ViewportCoords(x, y, rt.width, rt.height, sampler.Get1D(), sampler.Get1D())

		ray := camera.GetRay(s, t, sampler)
		colorAccum = colorAccum.Add(rt.integrator.RayColor(ray, rt.scene, sampler))
	}

	return colorAccum.Multiply(1.0 / float64(samples))
}

// ViewportCoords maps pixel (x, y) plus a jitter in [0,1) to camera coordinates (s, t).
// Image rows grow downward while t grows upward.
func ViewportCoords(x, y, width, height int, jitterX, jitterY float64) (float64, float64) {
	row := height - 1 - y
	s := (float64(x) + jitterX) / float64(max(width-1, 1))
	t := (float64(row) + jitterY) / float64(max(height-1, 1))
	return s, t
}

// RenderPixel samples pixel (x, y) and quantizes the result to 8-bit RGB
func (rt *Raytracer) RenderPixel(x, y int, sampler core.Sampler) [3]uint8 {
	return ColorToPixel(rt.SamplePixel(x, y, sampler))
}

// ColorToPixel converts a linear color to 8-bit RGB with gamma 2 correction
func ColorToPixel(colorVec core.Vec3) [3]uint8 {
	colorVec = colorVec.Sqrt().Clamp(0.0, maxChannel)

	return [3]uint8{
		uint8(256 * colorVec.X),
		uint8(256 * colorVec.Y),
		uint8(256 * colorVec.Z),
	}
}
