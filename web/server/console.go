package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by sending messages to a console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	server      core.Logger
}

// NewWebLogger creates a new web logger for a specific render.
// Messages are also written to the server log, prefixed with the render ID.
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage, server core.Logger) core.Logger {
	if server == nil {
		server = core.NopLogger{}
	}
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
		server:      server,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	wl.server.Printf("[%s] %s", wl.renderID, message)

	// Send to web console if channel is available (non-blocking)
	if wl.consoleChan != nil {
		select {
		case wl.consoleChan <- ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     messageLevel(message),
		}:
		default:
			// Channel full, skip (don't block)
		}
	}
}

// messageLevel classifies a renderer log line for the console
func messageLevel(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "error"), strings.Contains(lower, "failed"), strings.Contains(lower, "aborted"):
		return "error"
	case strings.Contains(lower, "warn"):
		return "warning"
	default:
		return "info"
	}
}
