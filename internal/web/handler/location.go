package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mcoot/boardgametracker/internal/forms"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/services/locations"
	"github.com/mcoot/boardgametracker/internal/web/middleware"
	"github.com/mcoot/boardgametracker/internal/web/templates/layout"
	"github.com/mcoot/boardgametracker/internal/web/templates/pages"
)

// LocationHandler handles the location list and its inline forms
type LocationHandler struct {
	locations *locations.Service
	logger    *slog.Logger
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locationService *locations.Service, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{
		locations: locationService,
		logger:    logger.With(slog.String("handler", "locations")),
	}
}

// List renders every location with its session count
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, forms.LocationForm{}, forms.FieldErrors{})
}

func (h *LocationHandler) renderList(w http.ResponseWriter, r *http.Request, status int, form forms.LocationForm, fieldErrors forms.FieldErrors) {
	list, err := h.locations.List(r.Context())
	if err != nil {
		failPage(w, r, h.logger, err)
		return
	}
	render(w, r, status, pages.Locations(pages.LocationsData{
		PageData:    pageData(r, "Locations", layout.NavLocations, locations.Resource),
		Locations:   list,
		Form:        form,
		FieldErrors: fieldErrors,
	}))
}

// Create adds a location
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form := forms.LocationFormFromValues(r.PostForm)
	form.ID = ""
	location, fieldErrors := form.Validate()
	if !fieldErrors.Valid() {
		h.renderList(w, r, http.StatusUnprocessableEntity, form, fieldErrors)
		return
	}

	created, err := h.locations.Create(r.Context(), location.Name)
	if err != nil {
		h.logger.Warn("create location failed", slog.Any("error", err))
		middleware.SetFlash(w, middleware.FlashError, mutationMessage("Adding the location", err))
	} else {
		middleware.SetFlash(w, middleware.FlashSuccess, created.Name+" was added")
	}
	redirect(w, r, "/locations")
}

// Update renames a location
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	form := forms.LocationFormFromValues(r.PostForm)
	form.ID = fmt.Sprint(id)
	location, fieldErrors := form.Validate()
	if !fieldErrors.Valid() {
		middleware.SetFlash(w, middleware.FlashError, fieldErrors["name"])
		redirect(w, r, "/locations")
		return
	}

	if _, err := h.locations.Update(r.Context(), location); err != nil {
		h.logger.Warn("update location failed", slog.Int("location_id", id), slog.Any("error", err))
		middleware.SetFlash(w, middleware.FlashError, mutationMessage("Renaming the location", err))
	} else {
		middleware.SetFlash(w, middleware.FlashSuccess, "The location was renamed")
	}
	redirect(w, r, "/locations")
}

// Delete removes a location
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		notFound(w, r, h.logger)
		return
	}

	if err := h.locations.Delete(r.Context(), model.LocationID(id)); err != nil {
		h.logger.Warn("delete location failed", slog.Int("location_id", id), slog.Any("error", err))
		middleware.SetFlash(w, middleware.FlashError, mutationMessage("Deleting the location", err))
	} else {
		middleware.SetFlash(w, middleware.FlashSuccess, "The location was deleted")
	}
	redirect(w, r, "/locations")
}
