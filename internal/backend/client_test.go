package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/boardgametracker/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL + "/"
	cfg.RequestID = func(ctx context.Context) string { return "req-123" }
	return NewClient(cfg)
}

func TestGetDecodesListEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/game", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "req-123", r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`{"items":[{"id":1,"title":"Azul","state":"owned","hasScoring":true}],"count":1}`))
	})

	result, err := client.Games.List(t.Context())
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "Azul", result.Items[0].Title)
	assert.Equal(t, model.GameStateOwned, result.Items[0].State)
	assert.True(t, result.Items[0].HasScoring)
}

func TestPostSendsJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/game/bgg", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req model.BggImport
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 174430, req.BggID)

		_, _ = w.Write([]byte(`{"state":"duplicate"}`))
	})

	result, err := client.Games.ImportBgg(t.Context(), &model.BggImport{BggID: 174430, State: model.GameStateOwned})
	require.NoError(t, err)
	assert.Equal(t, model.ResultDuplicate, result.State)
	assert.Nil(t, result.Model)
}

func TestPagedPlaysQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/game/7/plays", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("skip"))
		assert.Equal(t, "10", r.URL.Query().Get("take"))
		_, _ = w.Write([]byte(`{"items":[],"count":25}`))
	})

	result, err := client.Games.Plays(t.Context(), 7, 20, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, result.Count)
}

func TestErrorStatusMapsToSentinel(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, model.ErrNotFound},
		{"conflict", http.StatusConflict, model.ErrDuplicate},
		{"bad request", http.StatusBadRequest, model.ErrInvalid},
		{"unavailable", http.StatusServiceUnavailable, model.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"nope"}`))
			})

			_, err := client.Players.Get(t.Context(), 3)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsStatus(err, tt.status))
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestInternalErrorIsNotASentinel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := client.Sessions.Delete(t.Context(), 4)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
	assert.False(t, errors.Is(err, model.ErrNotFound))
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://127.0.0.1:1"
	cfg.Timeout = time.Second
	client := NewClient(cfg)

	_, err := client.Settings.Get(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnavailable)
}

func TestCancelledContextAbortsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := client.Badges.List(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, model.ErrUnavailable)
}

func TestUploadSendsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/image", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "profile", r.FormValue("type"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "avatar.png", header.Filename)
		assert.Equal(t, "pixels", string(data))

		_, _ = w.Write([]byte(`{"image":"images/profile/avatar.png"}`))
	})

	ref, err := client.Images.Upload(t.Context(), ImageTypeProfile, "avatar.png", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.Equal(t, "images/profile/avatar.png", ref)
}

func TestOversizedResponseIsRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[],"count":0,"padding":"`))
		chunk := []byte(strings.Repeat("x", 1<<20))
		for range maxResponseSize>>20 + 1 {
			_, _ = w.Write(chunk)
		}
		_, _ = w.Write([]byte(`"}`))
	})

	_, err := client.Games.List(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}
