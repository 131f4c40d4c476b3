package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"visitordesk/internal/delivery/http/helpers"
	"visitordesk/internal/domain"
)

// CreateLocationRequest is the request body for POST /locations.
type CreateLocationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Validate implements Validator.
func (c CreateLocationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

type LocationController struct {
	Logger  *slog.Logger
	Service domain.LocationService
}

func NewLocationController(logger *slog.Logger, svc domain.LocationService) *LocationController {
	return &LocationController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create a location
// @Description Adds a site to the location directory. Requires authentication.
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateLocationRequest true "Location data"
// @Success 201 {object} helpers.APIResponse "data contains the created location"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /locations [post]
func (c *LocationController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLocationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now()
	location := domain.NewLocation(strings.TrimSpace(req.Name), strings.TrimSpace(req.Address), now, now)
	created, err := c.Service.Create(r.Context(), location)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// GetByID godoc
// @Summary Get a location by ID
// @Description Returns a single location. Requires authentication.
// @Tags locations
// @Produce json
// @Security BearerAuth
// @Param locationID path string true "Location ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the location"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /locations/{locationID} [get]
func (c *LocationController) GetByID(w http.ResponseWriter, r *http.Request) {
	locationID := r.PathValue("locationID")
	if locationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing locationID")
		return
	}
	location, err := c.Service.GetByID(r.Context(), locationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "location not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, location)
}

// List godoc
// @Summary List locations
// @Description Returns all locations. Public: the registration page needs the list to populate its location picker.
// @Tags locations
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is an array of locations"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /locations [get]
func (c *LocationController) List(w http.ResponseWriter, r *http.Request) {
	locations, err := c.Service.List(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if locations == nil {
		locations = []*domain.Location{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, locations)
}
