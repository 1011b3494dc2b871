package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/loaders"
	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
	"github.com/df07/go-parallel-pathtracer/pkg/scene"
)

// progressInterval is how often the stream reports completed pixels
const progressInterval = 250 * time.Millisecond

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene           string `json:"scene"`           // Built-in scene name or file:<name>
	Width           int    `json:"width"`           // Image width; height follows the scene's aspect ratio
	SamplesPerPixel int    `json:"samplesPerPixel"` // 0 keeps the scene default
	MaxDepth        int    `json:"maxDepth"`        // 0 keeps the scene default
	Seed            int64  `json:"seed"`            // 0 renders unseeded
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int     `json:"totalSamples"`
	SamplesPerPixel  int     `json:"samplesPerPixel"`
	NumWorkers       int     `json:"numWorkers"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
}

// ProgressUpdate reports how much of the frame is done
type ProgressUpdate struct {
	PixelsCompleted int64 `json:"pixelsCompleted"`
	TotalPixels     int   `json:"totalPixels"`
	ElapsedMs       int64 `json:"elapsedMs"`
}

// CompleteUpdate carries the finished frame
type CompleteUpdate struct {
	ImageData      string `json:"imageData"` // Base64 encoded PNG
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Stats          Stats  `json:"stats"`
	PrimitiveCount int    `json:"primitiveCount"`
	ElapsedMs      int64  `json:"elapsedMs"`
}

// renderOutcome is the result of a frame render running in the background
type renderOutcome struct {
	buffer *renderer.PixelBuffer
	stats  renderer.RenderStats
	err    error
}

// parseRenderRequest parses and validates request parameters
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "random"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", DefaultWidth, MinWidth, MaxWidth); err != nil {
		return nil, err
	}
	if req.SamplesPerPixel, err = parseIntParam(values, "samplesPerPixel", 0, 1, MaxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", 0, 1, MaxDepth); err != nil {
		return nil, err
	}
	if req.Seed, err = parseInt64Param(values, "seed", 0); err != nil {
		return nil, err
	}

	return req, nil
}

// createScene builds the requested scene and applies the request overrides
func (s *Server) createScene(req *RenderRequest, logger core.Logger) (*scene.Scene, error) {
	var sceneObj *scene.Scene
	var err error

	if strings.HasPrefix(req.Scene, loaders.FileScenePrefix) {
		path, ok := loaders.ResolveSceneFile(s.scenesDir, req.Scene)
		if !ok {
			return nil, fmt.Errorf("unknown scene file: %s", req.Scene)
		}
		logger.Printf("Loading scene file %s\n", path)
		sceneObj, err = loaders.LoadScene(path)
	} else {
		// Seeded requests also lay out randomized scenes reproducibly
		layoutSeed := req.Seed
		if layoutSeed == 0 {
			layoutSeed = time.Now().UnixNano()
		}
		sceneObj, err = scene.ByName(req.Scene, core.NewSeededSampler(layoutSeed))
	}
	if err != nil {
		return nil, err
	}

	sceneObj.ApplyOverrides(req.Width, req.SamplesPerPixel, req.MaxDepth)
	return sceneObj, nil
}

// handleRender renders one frame and returns it as a PNG
func (s *Server) handleRender(c echo.Context) error {
	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid request: %v", err)})
	}

	sceneObj, err := s.createScene(req, s.logger)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	frameRenderer := renderer.NewFrameRenderer(sceneObj, renderer.FrameConfig{Seed: req.Seed}, s.logger)
	buffer, stats, err := frameRenderer.Render(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("Render error: %v", err)})
	}

	data, err := encodePNG(buffer.Image())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("Failed to encode image: %v", err)})
	}

	header := c.Response().Header()
	header.Set("X-Render-Duration-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	header.Set("X-Render-Workers", strconv.Itoa(stats.NumWorkers))
	return c.Blob(http.StatusOK, "image/png", data)
}

// handleRenderStream renders one frame and streams console output, progress
// and the final image as Server-Sent Events
func (s *Server) handleRenderStream(c echo.Context) error {
	w := c.Response()
	setSSEHeaders(w.Header())
	w.WriteHeader(http.StatusOK)

	req, err := parseRenderRequest(c.QueryParams())
	if err != nil {
		return sendSSEEvent(w, "error", fmt.Sprintf("Invalid request: %v", err))
	}

	consoleChan, webLogger := s.setupConsoleLogging()

	sceneObj, err := s.createScene(req, webLogger)
	if err != nil {
		return sendSSEEvent(w, "error", err.Error())
	}

	// Stop the render as soon as the client goes away
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	frameRenderer := renderer.NewFrameRenderer(sceneObj, renderer.FrameConfig{Seed: req.Seed}, webLogger)
	startTime := time.Now()

	done := make(chan renderOutcome, 1)
	go func() {
		buffer, stats, err := frameRenderer.Render(ctx)
		done <- renderOutcome{buffer: buffer, stats: stats, err: err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-consoleChan:
			if err := sendConsoleMessage(w, msg); err != nil {
				return nil
			}

		case <-ticker.C:
			update := ProgressUpdate{
				PixelsCompleted: frameRenderer.PixelsCompleted(),
				TotalPixels:     frameRenderer.TotalPixels(),
				ElapsedMs:       time.Since(startTime).Milliseconds(),
			}
			if err := sendSSEJSON(w, "progress", update); err != nil {
				return nil
			}

		case outcome := <-done:
			flushConsole(w, consoleChan)
			if outcome.err != nil {
				return sendSSEEvent(w, "error", fmt.Sprintf("Rendering failed: %v", outcome.err))
			}
			return s.sendComplete(w, outcome, sceneObj, startTime)

		case <-ctx.Done():
			// Client disconnected; the render goroutine exits on the cancelled context
			return nil
		}
	}
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 200)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan, s.logger)
	return consoleChan, webLogger
}

// sendComplete encodes the finished frame and sends the final event
func (s *Server) sendComplete(w *echo.Response, outcome renderOutcome, sceneObj *scene.Scene, startTime time.Time) error {
	img := outcome.buffer.Image()
	data, err := encodePNG(img)
	if err != nil {
		return sendSSEEvent(w, "error", fmt.Sprintf("Failed to encode image: %v", err))
	}

	update := CompleteUpdate{
		ImageData: base64.StdEncoding.EncodeToString(data),
		Width:     outcome.buffer.Width(),
		Height:    outcome.buffer.Height(),
		Stats: Stats{
			TotalPixels:      outcome.stats.TotalPixels,
			TotalSamples:     outcome.stats.TotalSamples,
			SamplesPerPixel:  outcome.stats.SamplesPerPixel,
			NumWorkers:       outcome.stats.NumWorkers,
			SamplesPerSecond: outcome.stats.SamplesPerSecond(),
		},
		PrimitiveCount: sceneObj.GetPrimitiveCount(),
		ElapsedMs:      time.Since(startTime).Milliseconds(),
	}
	return sendSSEJSON(w, "complete", update)
}

// flushConsole sends console messages still buffered when the render finishes
func flushConsole(w *echo.Response, consoleChan chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			if err := sendConsoleMessage(w, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func sendConsoleMessage(w *echo.Response, msg ConsoleMessage) error {
	return sendSSEJSON(w, "console", msg)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(header http.Header) {
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
}

// sendSSEJSON sends v as the JSON data of an SSE event
func sendSSEJSON(w *echo.Response, event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return sendSSEEvent(w, event, string(data))
}

// sendSSEEvent sends a generic SSE event
func sendSSEEvent(w *echo.Response, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	w.Flush()
	return nil
}

// encodePNG converts an image to PNG bytes
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
