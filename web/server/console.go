package server

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Console message levels
const (
	LevelInfo  = "info"
	LevelError = "error"
)

// ConsoleMessage is a renderer log line forwarded to the browser console
type ConsoleMessage struct {
	Message   string
	Timestamp time.Time
	Level     string
}

// WebLogger implements core.Logger by mirroring messages to the server log and
// forwarding them to a session's console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a logger for one render session; consoleChan may be nil
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// Printf logs an info message
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	wl.emit(LevelInfo, fmt.Sprintf(format, args...))
}

// Errorf logs an error message
func (wl *WebLogger) Errorf(format string, args ...interface{}) {
	wl.emit(LevelError, fmt.Sprintf(format, args...))
}

func (wl *WebLogger) emit(level, message string) {
	log.Printf("[%s] %s", wl.renderID, strings.TrimRight(message, "\n"))

	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{Message: message, Timestamp: time.Now(), Level: level}:
	default:
		// Session is not draining; drop rather than stall the renderer
	}
}
