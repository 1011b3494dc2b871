package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/loaders"
)

// Parameter limits shared by the render, stream and inspect endpoints
const (
	DefaultWidth = 400
	MinWidth     = 16
	MaxWidth     = 2000
	MaxSamples   = 10000
	MaxDepth     = 200
)

// Server handles web requests for the path tracer
type Server struct {
	port      int
	scenesDir string
	staticDir string
	logger    core.Logger
	echo      *echo.Echo
}

// NewServer creates a new web server. scenesDir holds YAML scene files offered
// alongside the built-in scenes.
func NewServer(port int, scenesDir, staticDir string, logger core.Logger) *Server {
	if logger == nil {
		logger = core.NopLogger{}
	}

	s := &Server{
		port:      port,
		scenesDir: scenesDir,
		staticDir: staticDir,
		logger:    logger,
		echo:      echo.New(),
	}
	s.echo.HideBanner = true
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.Use(corsMiddleware)

	if s.staticDir != "" {
		e.Static("/", s.staticDir)
	}

	e.GET("/api/health", s.handleHealth)
	e.GET("/api/scenes", s.handleScenes)
	e.GET("/api/scene-config", s.handleSceneConfig)
	e.GET("/api/render", s.handleRender)
	e.GET("/api/render/stream", s.handleRenderStream)
	e.GET("/api/inspect", s.handleInspect)
}

// Handler exposes the router, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Printf("Starting web server on http://localhost%s\n", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}

		return next(c)
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and scene files, grouped
func (s *Server) handleScenes(c echo.Context) error {
	response, err := loaders.ListAllScenes(s.scenesDir, s.logger)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, response)
}

// handleSceneConfig returns the defaults of a scene and the accepted parameter ranges
func (s *Server) handleSceneConfig(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	// Report the scene's own sampling defaults
	req.Width, req.SamplesPerPixel, req.MaxDepth = 0, 0, 0

	sceneObj, err := s.createScene(req, s.logger)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	config := sceneObj.SamplingConfig
	return c.JSON(http.StatusOK, map[string]interface{}{
		"scene": req.Scene,
		"defaults": map[string]interface{}{
			"width":           config.Width,
			"height":          config.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
			"spheres":         sceneObj.GetPrimitiveCount(),
		},
		"limits": map[string]interface{}{
			"width":           map[string]int{"min": MinWidth, "max": MaxWidth},
			"samplesPerPixel": map[string]int{"min": 1, "max": MaxSamples},
			"maxDepth":        map[string]int{"min": 1, "max": MaxDepth},
		},
	})
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseInt64Param parses an unbounded 64-bit integer parameter
func parseInt64Param(values url.Values, key string, defaultValue int64) (int64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
