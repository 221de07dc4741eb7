package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mcoot/boardgametracker/internal/model"
)

// APIError is a non-2xx response from the backend
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Status)
}

// Unwrap maps well-known statuses onto the model sentinel errors
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusConflict:
		return model.ErrDuplicate
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return model.ErrInvalid
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return model.ErrUnavailable
	default:
		return nil
	}
}

type errorBody struct {
	Message string `json:"message"`
	Title   string `json:"title"`
	Error   string `json:"error"`
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{Method: method, Path: path, Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		switch {
		case eb.Message != "":
			apiErr.Message = eb.Message
		case eb.Title != "":
			apiErr.Message = eb.Title
		case eb.Error != "":
			apiErr.Message = eb.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		if len(apiErr.Message) > 200 {
			apiErr.Message = apiErr.Message[:200]
		}
	}
	return apiErr
}

func transportError(req *http.Request, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	return fmt.Errorf("%s %s: %w: %w", req.Method, req.URL.Path, model.ErrUnavailable, err)
}

// IsStatus reports whether err is an APIError with the given HTTP status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
