package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config represents the run configuration of the renderer
type Config struct {
	Render RenderConfig `yaml:"render"`
	Output OutputConfig `yaml:"output"`
	Upload UploadConfig `yaml:"upload"`
	Log    LogConfig    `yaml:"log"`
}

// RenderConfig selects the scene and overrides its sampling settings.
// Zero values keep the scene's own defaults.
type RenderConfig struct {
	Scene           string `yaml:"scene"`
	SceneFile       string `yaml:"scene_file"` // YAML scene description, takes precedence over Scene
	Width           int    `yaml:"width"`
	SamplesPerPixel int    `yaml:"samples_per_pixel"`
	MaxDepth        int    `yaml:"max_depth"`
	Workers         int    `yaml:"workers"` // 0 = one per CPU
	Seed            int64  `yaml:"seed"`    // Optional: 0 means random
}

// OutputConfig controls where renders are written
type OutputConfig struct {
	Dir            string `yaml:"dir"`
	ThumbnailWidth int    `yaml:"thumbnail_width"` // 0 disables thumbnails
}

// UploadConfig contains S3-compatible storage settings
type UploadConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"` // Empty for AWS, set for MinIO/R2/etc.
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Optional log file in addition to stdout
	Color bool   `yaml:"color"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Scene: "random",
			Seed:  0, // Random seed
		},
		Output: OutputConfig{
			Dir:            "output",
			ThumbnailWidth: 0,
		},
		Upload: UploadConfig{
			Enabled: false,
			Region:  "us-east-1",
			Prefix:  "renders",
		},
		Log: LogConfig{
			Level: "info",
			Color: true,
		},
	}
}

// LoadConfig loads the configuration from a file.
// On error the defaults are returned together with the error.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("config file not found, using defaults: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("error parsing config: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// LoadEnvFile loads KEY=value pairs from a .env file into the process environment.
// A missing file is not an error.
func LoadEnvFile(filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(filePath); err != nil {
		return fmt.Errorf("error loading %s: %w", filePath, err)
	}
	return nil
}

// ApplyEnv overrides configuration values from environment variables
func (c *Config) ApplyEnv() error {
	c.Render.Scene = getEnv("RAYTRACER_SCENE", c.Render.Scene)
	c.Render.SceneFile = getEnv("RAYTRACER_SCENE_FILE", c.Render.SceneFile)
	c.Output.Dir = getEnv("RAYTRACER_OUTPUT_DIR", c.Output.Dir)
	c.Log.Level = getEnv("RAYTRACER_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("RAYTRACER_LOG_FILE", c.Log.File)

	intVars := []struct {
		key    string
		target *int
	}{
		{"RAYTRACER_WIDTH", &c.Render.Width},
		{"RAYTRACER_SAMPLES", &c.Render.SamplesPerPixel},
		{"RAYTRACER_MAX_DEPTH", &c.Render.MaxDepth},
		{"RAYTRACER_WORKERS", &c.Render.Workers},
		{"RAYTRACER_THUMBNAIL_WIDTH", &c.Output.ThumbnailWidth},
	}
	for _, v := range intVars {
		if value, ok := os.LookupEnv(v.key); ok {
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid %s=%q: %w", v.key, value, err)
			}
			*v.target = n
		}
	}

	if value, ok := os.LookupEnv("RAYTRACER_SEED"); ok {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid RAYTRACER_SEED=%q: %w", value, err)
		}
		c.Render.Seed = seed
	}

	c.Upload.Bucket = getEnv("S3_BUCKET", c.Upload.Bucket)
	c.Upload.Region = getEnv("S3_REGION", c.Upload.Region)
	c.Upload.Endpoint = getEnv("S3_ENDPOINT", c.Upload.Endpoint)
	c.Upload.Prefix = getEnv("S3_PREFIX", c.Upload.Prefix)
	c.Upload.AccessKeyID = getEnv("S3_ACCESS_KEY", c.Upload.AccessKeyID)
	c.Upload.SecretAccessKey = getEnv("S3_SECRET_KEY", c.Upload.SecretAccessKey)
	if value, ok := os.LookupEnv("S3_UPLOAD"); ok {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid S3_UPLOAD=%q: %w", value, err)
		}
		c.Upload.Enabled = enabled
	}

	return nil
}

// Validate checks the configuration for values the renderer cannot use
func (c *Config) Validate() error {
	if c.Render.Scene == "" && c.Render.SceneFile == "" {
		return fmt.Errorf("render.scene or render.scene_file is required")
	}
	if c.Render.Width < 0 || c.Render.SamplesPerPixel < 0 || c.Render.MaxDepth < 0 || c.Render.Workers < 0 {
		return fmt.Errorf("render settings must not be negative: %+v", c.Render)
	}
	if c.Output.ThumbnailWidth < 0 {
		return fmt.Errorf("output.thumbnail_width must not be negative")
	}
	if c.Upload.Enabled && c.Upload.Bucket == "" {
		return fmt.Errorf("upload.bucket is required when upload is enabled")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// getEnv returns the environment variable or fallback when unset
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
