package model

import "errors"

// Common errors used across the application
var (
	ErrNotFound    = errors.New("resource not found")
	ErrDuplicate   = errors.New("resource already exists")
	ErrInvalid     = errors.New("invalid request")
	ErrUnavailable = errors.New("backend unavailable")
)
