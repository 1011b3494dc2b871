package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/integrator"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
)

// ErrIncompleteFrame is returned when the result stream ends before every pixel arrived
var ErrIncompleteFrame = errors.New("render ended before every pixel was delivered")

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// FrameConfig contains settings for a single-frame render
type FrameConfig struct {
	NumWorkers int   // Number of parallel workers (0 = auto-detect from CPU count)
	Seed       int64 // Frame seed; 0 means unseeded
}

// FrameRenderer renders one complete frame in parallel, one task per pixel
type FrameRenderer struct {
	scene           *scene.Scene
	raytracer       *Raytracer
	config          FrameConfig
	logger          core.Logger
	pixelsCompleted atomic.Int64
}

// NewFrameRenderer creates a renderer for sc using path tracing
func NewFrameRenderer(sc *scene.Scene, config FrameConfig, logger core.Logger) *FrameRenderer {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	integ := integrator.NewPathTracingIntegrator(sc.SamplingConfig)

	return &FrameRenderer{
		scene:     sc,
		raytracer: NewRaytracer(sc, integ),
		config:    config,
		logger:    logger,
	}
}

// PixelsCompleted returns how many pixels workers have finished so far.
// Safe to call from any goroutine while Render is running.
func (fr *FrameRenderer) PixelsCompleted() int64 {
	return fr.pixelsCompleted.Load()
}

// TotalPixels returns the number of pixels in the frame
func (fr *FrameRenderer) TotalPixels() int {
	return fr.raytracer.Width() * fr.raytracer.Height()
}

// Render traces every pixel and returns the finished buffer.
// The frame is either complete or an error is returned; no partial image is produced.
func (fr *FrameRenderer) Render(ctx context.Context) (*PixelBuffer, RenderStats, error) {
	width, height := fr.raytracer.Width(), fr.raytracer.Height()
	total := width * height
	if total <= 0 {
		return nil, RenderStats{}, fmt.Errorf("invalid image size %dx%d", width, height)
	}

	if err := ctx.Err(); err != nil {
		return nil, RenderStats{}, err
	}

	startTime := time.Now()
	fr.pixelsCompleted.Store(0)

	pool := NewWorkerPool(fr.raytracer, fr.config.NumWorkers, fr.config.Seed, &fr.pixelsCompleted)
	fr.logger.Printf("Rendering %dx%d at %d samples per pixel (using %d workers)...\n",
		width, height, fr.raytracer.SamplesPerPixel(), pool.GetNumWorkers())

	pool.Start()
	go func() {
		defer pool.Stop()
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if !pool.SubmitTask(PixelTask{X: x, Y: y}) {
					return
				}
			}
		}
	}()

	buffer := NewPixelBuffer(width, height)
	err := collectPixels(ctx, pool.Results(), buffer, fr.logger)
	if err != nil {
		pool.Cancel()
		// Drain until Stop closes the queue so no worker is left blocked
		for range pool.Results() {
		}
		fr.logger.Printf("Render aborted after %d of %d pixels: %v\n", buffer.Written(), total, err)
		return nil, RenderStats{}, err
	}

	stats := RenderStats{
		TotalPixels:     total,
		TotalSamples:    total * fr.raytracer.SamplesPerPixel(),
		SamplesPerPixel: fr.raytracer.SamplesPerPixel(),
		NumWorkers:      pool.GetNumWorkers(),
		Duration:        time.Since(startTime),
	}
	fr.logger.Printf("Render completed in %v\n", stats.Duration)

	return buffer, stats, nil
}

// collectPixels writes results into buffer by coordinate until it is full.
// Progress is logged every 1% of the frame.
func collectPixels(ctx context.Context, results <-chan PixelResult, buffer *PixelBuffer, logger core.Logger) error {
	total := buffer.Width() * buffer.Height()
	reportEvery := max(total/100, 1)

	for received := 0; received < total; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result, ok := <-results:
			if !ok {
				return fmt.Errorf("%w: got %d of %d pixels", ErrIncompleteFrame, received, total)
			}
			if err := buffer.PutPixel(result.X, result.Y, result.RGB); err != nil {
				return err
			}
			received++
			if received%reportEvery == 0 {
				logger.Printf("%d%% complete\n", received*100/total)
			}
		}
	}

	return nil
}
