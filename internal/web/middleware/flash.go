package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcoot/boardgametracker/internal/web/templates/layout"
)

type contextKey string

const (
	flashCookieName = "flash"
	flashContextKey = contextKey("flash")
	flashLifetime   = time.Minute
)

// Toast kinds
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "error"
	FlashInfo    = "info"
)

// GetFlash returns the toast carried over from the previous response, if any
func GetFlash(ctx context.Context) *layout.FlashMessage {
	flash, _ := ctx.Value(flashContextKey).(*layout.FlashMessage)
	return flash
}

// SetFlash queues a toast for the page the browser is redirected to
func SetFlash(w http.ResponseWriter, flashType, message string) {
	value := url.QueryEscape(knownFlashType(flashType) + ":" + message)
	http.SetCookie(w, flashCookie(value, int(flashLifetime.Seconds())))
}

// Flash moves a queued toast into the request context and expires the
// cookie so a reload does not show it again
func Flash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(flashCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			http.SetCookie(w, flashCookie("", -1))
			ctx := context.WithValue(r.Context(), flashContextKey, parseFlash(cookie.Value))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func flashCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		c.Expires = time.Unix(0, 0)
	}
	return c
}

// parseFlash reads "type:message". A value without a type is an info toast.
func parseFlash(raw string) *layout.FlashMessage {
	value, err := url.QueryUnescape(raw)
	if err != nil {
		value = raw
	}
	flashType, message, ok := strings.Cut(value, ":")
	if !ok {
		return &layout.FlashMessage{Type: FlashInfo, Message: value}
	}
	return &layout.FlashMessage{Type: knownFlashType(flashType), Message: message}
}

func knownFlashType(t string) string {
	switch t {
	case FlashSuccess, FlashWarning, FlashError:
		return t
	default:
		return FlashInfo
	}
}
