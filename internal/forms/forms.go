// Package forms validates submitted HTML forms into backend request
// payloads. Each form keeps the raw submitted strings so a rejected form
// can be rendered again as the user typed it.
package forms

import (
	"fmt"
	"maps"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcoot/boardgametracker/internal/model"
)

// Input layouts used by the browser date controls
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04"
)

// FieldErrors maps a form field name to its first validation message
type FieldErrors map[string]string

// Add records msg for field unless the field already has an error
func (e FieldErrors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Has reports whether field failed validation
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Valid reports whether no field failed validation
func (e FieldErrors) Valid() bool {
	return len(e) == 0
}

// Err joins the messages in field order into an error wrapping
// model.ErrInvalid. It returns nil when e is valid.
func (e FieldErrors) Err() error {
	if e.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(e))
	for _, field := range slices.Sorted(maps.Keys(e)) {
		msgs = append(msgs, e[field])
	}
	return fmt.Errorf("%w: %s", model.ErrInvalid, strings.Join(msgs, "; "))
}

// Merge copies other into e, keeping existing messages
func (e FieldErrors) Merge(other FieldErrors) {
	for field, msg := range other {
		e.Add(field, msg)
	}
}

func value(v url.Values, key string) string {
	return strings.TrimSpace(v.Get(key))
}

// checkbox reads an HTML checkbox, which is only submitted when ticked
func checkbox(v url.Values, key string) bool {
	switch strings.ToLower(v.Get(key)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

func requiredText(errs FieldErrors, field, label, raw string, max int) string {
	switch {
	case raw == "":
		errs.Add(field, label+" is required")
	case utf8.RuneCountInString(raw) > max:
		errs.Add(field, fmt.Sprintf("%s must be at most %d characters", label, max))
	}
	return raw
}

func optionalInt(errs FieldErrors, field, label, raw string, min, max int) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(field, label+" must be a whole number")
		return nil
	}
	if n < min || n > max {
		errs.Add(field, fmt.Sprintf("%s must be between %d and %d", label, min, max))
		return nil
	}
	return &n
}

func optionalFloat(errs FieldErrors, field, label, raw string, min, max float64) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		errs.Add(field, label+" must be a number")
		return nil
	}
	if f < min || f > max {
		errs.Add(field, fmt.Sprintf("%s must be between %g and %g", label, min, max))
		return nil
	}
	return &f
}

func optionalDate(errs FieldErrors, field, label, raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		errs.Add(field, label+" must be a date")
		return nil
	}
	return &t
}

func positiveID(errs FieldErrors, field, label, raw string) int {
	if raw == "" {
		errs.Add(field, label+" is required")
		return 0
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		errs.Add(field, label+" is invalid")
		return 0
	}
	return id
}

func intString(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func floatString(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
