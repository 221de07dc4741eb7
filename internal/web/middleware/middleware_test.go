package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/testutil"
)

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	SetFlash(rec, FlashWarning, "Game already exists: Azul; try again")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	var got string
	var gotType string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flash := GetFlash(r.Context())
		require.NotNil(t, flash)
		got, gotType = flash.Message, flash.Type
	})
	out := httptest.NewRecorder()
	Flash()(next).ServeHTTP(out, req)

	assert.Equal(t, "Game already exists: Azul; try again", got)
	assert.Equal(t, FlashWarning, gotType)

	cleared := out.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestParseFlash(t *testing.T) {
	tests := []struct {
		raw      string
		wantType string
		wantMsg  string
	}{
		{"success%3ASaved", FlashSuccess, "Saved"},
		{"plain", FlashInfo, "plain"},
		{"bogus:text", FlashInfo, "text"},
		{"error:a:b", FlashError, "a:b"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			flash := parseFlash(tt.raw)
			assert.Equal(t, tt.wantType, flash.Type)
			assert.Equal(t, tt.wantMsg, flash.Message)
		})
	}
}

func TestNoFlashWithoutCookie(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, GetFlash(r.Context()))
	})
	Flash()(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

type staticSettings model.Settings

func (s staticSettings) Current(context.Context) model.Settings { return model.Settings(s) }

func TestSettingsInContext(t *testing.T) {
	want := model.Settings{DateFormat: "YYYY-MM-DD", TimeFormat: "HH:mm", Currency: "USD", Language: "en-US"}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, want, GetSettings(r.Context()))
	})
	Settings(staticSettings(want))(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRecoveryRendersErrorBoundary(t *testing.T) {
	h := Recovery(testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("render failed")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games/3?tab=stats", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/games/3?tab=stats"`)
	assert.Contains(t, body, "Try again")
	assert.Contains(t, body, "Go home")
}

func TestRecoveryOmitsRetryForPosts(t *testing.T) {
	h := Recovery(testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("save failed")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/games", nil))

	assert.NotContains(t, rec.Body.String(), "Try again")
	assert.Contains(t, rec.Body.String(), "Go home")
}
