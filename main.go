package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df07/go-parallel-pathtracer/pkg/config"
	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/loaders"
	"github.com/df07/go-parallel-pathtracer/pkg/logger"
	"github.com/df07/go-parallel-pathtracer/pkg/output"
	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
	"github.com/df07/go-parallel-pathtracer/pkg/sysinfo"
)

// options holds the command line flags
type options struct {
	configPath  string
	envPath     string
	sceneType   string
	sceneFile   string
	width       int
	samples     int
	maxDepth    int
	workers     int
	seed        int64
	exportScene string
	compare     string
	help        bool
}

func main() {
	opts := parseFlags()

	if opts.help {
		printHelp()
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML run configuration file")
	flag.StringVar(&opts.envPath, "env", ".env", "Environment file with RAYTRACER_* and S3_* overrides")
	flag.StringVar(&opts.sceneType, "scene", "", "Scene type: random, default, two-spheres, spheregrid")
	flag.StringVar(&opts.sceneFile, "scene-file", "", "Render a YAML scene file instead of a built-in scene")
	flag.IntVar(&opts.width, "width", 0, "Image width in pixels (0 = scene default)")
	flag.IntVar(&opts.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	flag.IntVar(&opts.maxDepth, "max-depth", 0, "Maximum bounce depth (0 = scene default)")
	flag.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (0 = auto-detect)")
	flag.Int64Var(&opts.seed, "seed", 0, "Random seed for a reproducible image (0 = random)")
	flag.StringVar(&opts.exportScene, "export-scene", "", "Write the selected scene to a YAML file and exit")
	flag.StringVar(&opts.compare, "compare", "", "Reference PNG to compare the render against")
	flag.BoolVar(&opts.help, "help", false, "Show help information")
	flag.Parse()
	return opts
}

func printHelp() {
	fmt.Println("Parallel Path Tracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, info := range scene.List() {
		fmt.Printf("  %-12s - %s\n", info.ID, info.Description)
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene_type>/render_<timestamp>.png")
}

// loadConfig builds the run configuration: defaults, then the config file,
// then the environment, then command line flags
func loadConfig(opts options) (*config.Config, error) {
	if err := config.LoadEnvFile(opts.envPath); err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	applyFlags(cfg, opts)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyFlags overrides configuration values with explicitly set flags
func applyFlags(cfg *config.Config, opts options) {
	if opts.sceneType != "" {
		cfg.Render.Scene = opts.sceneType
	}
	if opts.sceneFile != "" {
		cfg.Render.SceneFile = opts.sceneFile
	}
	if opts.width > 0 {
		cfg.Render.Width = opts.width
	}
	if opts.samples > 0 {
		cfg.Render.SamplesPerPixel = opts.samples
	}
	if opts.maxDepth > 0 {
		cfg.Render.MaxDepth = opts.maxDepth
	}
	if opts.workers > 0 {
		cfg.Render.Workers = opts.workers
	}
	if opts.seed != 0 {
		cfg.Render.Seed = opts.seed
	}
}

func newLogger(cfg config.LogConfig) (*logger.Logger, error) {
	var log *logger.Logger
	if cfg.File != "" {
		var err error
		log, err = logger.NewMultiLogger(cfg.Level, cfg.File)
		if err != nil {
			return nil, err
		}
	} else {
		log = logger.NewLogger(cfg.Level)
	}
	if !cfg.Color {
		log.EnableColors(false)
	}
	return log, nil
}

func run(opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Close()

	log.Infof("Starting Parallel Path Tracer...")
	if info, err := sysinfo.Collect(); err != nil {
		log.Warnf("Could not read host information: %v", err)
	} else {
		log.Infof("Host: %s", info)
	}

	selectedScene, err := createScene(cfg.Render)
	if err != nil {
		return err
	}
	sceneName := selectedScene.Name
	log.Infof("Using %s scene (%d spheres)", sceneName, selectedScene.GetPrimitiveCount())

	if opts.exportScene != "" {
		if err := loaders.SaveScene(opts.exportScene, selectedScene); err != nil {
			return err
		}
		log.Infof("Scene exported to %s", opts.exportScene)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	frameRenderer := renderer.NewFrameRenderer(selectedScene, renderer.FrameConfig{
		NumWorkers: cfg.Render.Workers,
		Seed:       cfg.Render.Seed,
	}, log)

	buffer, stats, err := frameRenderer.Render(ctx)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	log.Infof("Rendered %d pixels, %d samples (%.0f samples/sec) with %d workers",
		stats.TotalPixels, stats.TotalSamples, stats.SamplesPerSecond(), stats.NumWorkers)

	img := buffer.Image()
	filename := output.RenderFilename(cfg.Output.Dir, sceneName, time.Now())
	if err := output.SavePNG(filename, img); err != nil {
		return err
	}
	log.Infof("Render saved as %s", filename)

	files := []string{filename}
	if cfg.Output.ThumbnailWidth > 0 {
		thumbPath, err := output.SaveThumbnail(filename, img, cfg.Output.ThumbnailWidth)
		if err != nil {
			return err
		}
		log.Infof("Thumbnail saved as %s", thumbPath)
		files = append(files, thumbPath)
	}

	if cfg.Upload.Enabled {
		uploader, err := output.NewS3Uploader(cfg.Upload, log)
		if err != nil {
			return err
		}
		for _, f := range files {
			if _, err := uploader.UploadFile(ctx, sceneName, f); err != nil {
				// The render is already on disk
				log.Errorf("Upload failed: %v", err)
			}
		}
	}

	if opts.compare != "" {
		reference, err := loaders.LoadImage(opts.compare)
		if err != nil {
			return err
		}
		diff, err := output.MaxChannelDiff(img, reference)
		if err != nil {
			return err
		}
		log.Infof("Max channel difference from %s: %d", opts.compare, diff)
	}

	return nil
}

// createScene builds the configured scene and applies the render overrides.
// A scene file takes precedence over a built-in scene name.
func createScene(cfg config.RenderConfig) (*scene.Scene, error) {
	var sc *scene.Scene
	var err error

	if cfg.SceneFile != "" {
		sc, err = loaders.LoadScene(cfg.SceneFile)
	} else {
		sc, err = scene.ByName(cfg.Scene, sceneSampler(cfg.Seed))
	}
	if err != nil {
		return nil, err
	}

	sc.ApplyOverrides(cfg.Width, cfg.SamplesPerPixel, cfg.MaxDepth)
	return sc, nil
}

// sceneSampler returns the sampler that lays out randomized scenes
func sceneSampler(seed int64) core.Sampler {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return core.NewSeededSampler(seed)
}
