package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"

	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/web/middleware"
	"github.com/mcoot/boardgametracker/internal/web/templates/layout"
	"github.com/mcoot/boardgametracker/internal/web/templates/pages"
)

// pageData builds the common page data. A non-empty topic makes the page
// refetch itself when that resource is invalidated.
func pageData(r *http.Request, title, nav, topic string) layout.PageData {
	return layout.PageData{
		Title: title,
		Nav:   nav,
		Flash: middleware.GetFlash(r.Context()),
		URL:   r.URL.RequestURI(),
		Topic: topic,
	}
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.ErrorContext(r.Context(), "render failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect navigates after a form post. HTMX requests get an HX-Redirect so
// the whole page changes rather than the swap target.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// failPage renders the error page for a failed load
func failPage(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	data := pages.ErrorData{
		PageData: pageData(r, "Something went wrong", "", ""),
		Status:   http.StatusInternalServerError,
		Message:  "The data for this page could not be loaded.",
		RetryURL: r.URL.RequestURI(),
	}

	switch {
	case errors.Is(err, context.Canceled):
		// Client navigated away
		return
	case errors.Is(err, model.ErrNotFound):
		data.Title = "Not found"
		data.Status = http.StatusNotFound
		data.Message = "The page you are looking for does not exist."
		data.RetryURL = ""
	case errors.Is(err, model.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		data.Status = http.StatusServiceUnavailable
		data.Message = "The tracker backend is not reachable right now."
	}

	if data.Status >= http.StatusInternalServerError {
		logger.Error("page load failed",
			slog.String("request_id", middleware.GetRequestIDFrom(r)),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	render(w, r, data.Status, pages.Error(data))
}

// mutationMessage turns a failed write into a toast message
func mutationMessage(action string, err error) string {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return action + " failed: it no longer exists"
	case errors.Is(err, model.ErrDuplicate):
		return action + " failed: it already exists"
	case errors.Is(err, model.ErrInvalid):
		return action + " failed: the backend rejected the data"
	case errors.Is(err, model.ErrUnavailable):
		return action + " failed: the backend is not reachable"
	default:
		return action + " failed"
	}
}

// pathID reads a positive integer route variable
func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func notFound(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	failPage(w, r, logger, model.ErrNotFound)
}

// queryInt reads a positive integer query parameter, or def
func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// NotFound renders the not found page for unknown routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	notFound(w, r, slog.Default())
}
