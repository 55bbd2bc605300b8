package middleware

import (
	"net/http"
	"time"

	"github.com/dtroode/quicklogin/internal/logger"
)

// Logging is a round tripper that logs outgoing requests and results.
// Query strings are never logged.
type Logging struct {
	next   http.RoundTripper
	logger *logger.Logger
}

// NewLogging wraps next. A nil next uses http.DefaultTransport.
func NewLogging(next http.RoundTripper, logger *logger.Logger) *Logging {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Logging{next: next, logger: logger}
}

// RoundTrip logs method, path, duration and status for each request.
func (l *Logging) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	l.logger.Debug("HTTP request started",
		"method", req.Method,
		"path", req.URL.Path)

	resp, err := l.next.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		l.logger.Error("HTTP request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration_ms", duration.Milliseconds(),
			"error", err.Error())
		return nil, err
	}

	l.logger.Info("HTTP request completed",
		"method", req.Method,
		"path", req.URL.Path,
		"duration_ms", duration.Milliseconds(),
		"status", resp.StatusCode)

	return resp, nil
}
