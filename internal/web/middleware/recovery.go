package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/boardgametracker/internal/middleware"
	"github.com/mcoot/boardgametracker/internal/web/templates/layout"
	"github.com/mcoot/boardgametracker/internal/web/templates/pages"
)

// Recovery creates panic recovery middleware for the web interface.
// Renders the error page with retry and home actions on panic.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	data := pages.ErrorData{
		PageData: layout.PageData{Title: "Something went wrong"},
		Status:   http.StatusInternalServerError,
		Message:  "An unexpected error occurred while loading this page.",
	}
	// Retrying a failed form post would resubmit it
	if r.Method == http.MethodGet {
		data.RetryURL = r.URL.RequestURI()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if err := pages.Error(data).Render(r.Context(), w); err != nil {
		_, _ = w.Write([]byte(`<p>Internal Server Error</p><p><a href="/">Go home</a></p>`))
	}
}
