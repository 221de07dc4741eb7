package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/boardgametracker/internal/middleware"
)

// Logging creates logging middleware for the web interface
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// RequestID tags each request with an id that is logged and forwarded to
// the backend
func RequestID(next http.Handler) http.Handler {
	return middleware.RequestID(next)
}

// GetRequestIDFrom returns the id assigned to r
func GetRequestIDFrom(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}
