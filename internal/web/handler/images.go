package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// NewImageProxy serves /images/... from the backend, which stores the
// uploaded pictures
func NewImageProxy(backendURL string, logger *slog.Logger) (http.Handler, error) {
	target, err := url.Parse(backendURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	logger = logger.With(slog.String("handler", "images"))

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Header.Del("Cookie")
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("image proxy failed", slog.String("path", r.URL.Path), slog.Any("error", err))
			w.WriteHeader(http.StatusBadGateway)
		},
	}, nil
}
