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

// CreateStaffRequest is the request body for POST /staff.
type CreateStaffRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"` // "admin" or "staff" (defaults to "staff")
	LocationID string `json:"location_id"`
}

// Validate implements Validator.
func (s CreateStaffRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.FirstName) == "" {
		errs = append(errs, "first_name is required")
	}
	email := strings.TrimSpace(strings.ToLower(s.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	} else if len(s.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	role := strings.TrimSpace(strings.ToLower(s.Role))
	if role != "" && role != domain.RoleAdmin && role != domain.RoleStaff {
		errs = append(errs, "role must be \"admin\" or \"staff\"")
	}
	return errs
}

// UpdateStaffRequest is the request body for PATCH /staff/{staffID}.
// All fields optional; omitted fields are unchanged.
type UpdateStaffRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	LocationID *string `json:"location_id"`
}

// Validate implements Validator.
func (u UpdateStaffRequest) Validate() []string {
	var errs []string
	if u.FirstName != nil && strings.TrimSpace(*u.FirstName) == "" {
		errs = append(errs, "first_name cannot be empty")
	}
	if u.Email != nil && !emailRegexp.MatchString(strings.TrimSpace(strings.ToLower(*u.Email))) {
		errs = append(errs, "invalid email format")
	}
	if u.Role != nil {
		role := strings.TrimSpace(strings.ToLower(*u.Role))
		if role != domain.RoleAdmin && role != domain.RoleStaff {
			errs = append(errs, "role must be \"admin\" or \"staff\"")
		}
	}
	return errs
}

// ListStaffResponse is the data payload for GET /staff (200).
type ListStaffResponse struct {
	Items      []*domain.Staff        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// DeactivateStaffResponse is the data payload for DELETE /staff/{staffID} (200).
type DeactivateStaffResponse struct {
	Status string `json:"status"`
}

type StaffController struct {
	Logger  *slog.Logger
	Service domain.StaffService
}

func NewStaffController(logger *slog.Logger, svc domain.StaffService) *StaffController {
	return &StaffController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Create a staff member
// @Description Adds a staff member to the directory. Role defaults to "staff"; admins without a location_id are global admins. Requires authentication.
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateStaffRequest true "Staff data"
// @Success 201 {object} helpers.APIResponse "data contains the created staff member"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already in use)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff [post]
func (c *StaffController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateStaffRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	staff := &domain.Staff{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      strings.TrimSpace(strings.ToLower(req.Email)),
		Role:       strings.TrimSpace(strings.ToLower(req.Role)),
		LocationID: strings.TrimSpace(req.LocationID),
	}
	created, err := c.Service.Create(r.Context(), staff, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "email already in use")
			return
		}
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
// @Summary Get a staff member by ID
// @Description Returns a single staff directory entry. Requires authentication.
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the staff member"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/{staffID} [get]
func (c *StaffController) GetByID(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("staffID")
	if staffID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing staffID")
		return
	}
	staff, err := c.Service.GetByID(r.Context(), staffID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "staff member not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, staff)
}

// List godoc
// @Summary List staff
// @Description Returns a paginated list of staff directory entries. Requires authentication.
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff [get]
func (c *StaffController) List(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	staff, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if staff == nil {
		staff = []*domain.Staff{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListStaffResponse{Items: staff, Pagination: meta})
}

// Update godoc
// @Summary Update a staff member
// @Description Updates staff directory fields. Optional fields omitted from the body are unchanged. Requires authentication.
// @Tags staff
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID (UUID)"
// @Param body body UpdateStaffRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated staff member"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already in use)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/{staffID} [patch]
func (c *StaffController) Update(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("staffID")
	if staffID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing staffID")
		return
	}
	var req UpdateStaffRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	current, err := c.Service.GetByID(r.Context(), staffID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "staff member not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if req.FirstName != nil {
		current.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		current.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		current.Email = strings.TrimSpace(strings.ToLower(*req.Email))
	}
	if req.Role != nil {
		current.Role = strings.TrimSpace(strings.ToLower(*req.Role))
	}
	if req.LocationID != nil {
		current.LocationID = strings.TrimSpace(*req.LocationID)
	}
	current.UpdatedAt = time.Now()
	updated, err := c.Service.Update(r.Context(), current)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "email already in use")
			return
		}
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "staff member not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, updated)
}

// Deactivate godoc
// @Summary Deactivate a staff member
// @Description Marks the staff member inactive. Inactive staff cannot log in and are excluded from the notification cascade. Requires authentication.
// @Tags staff
// @Produce json
// @Security BearerAuth
// @Param staffID path string true "Staff ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /staff/{staffID} [delete]
func (c *StaffController) Deactivate(w http.ResponseWriter, r *http.Request) {
	staffID := r.PathValue("staffID")
	if staffID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing staffID")
		return
	}
	if err := c.Service.Deactivate(r.Context(), staffID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "staff member not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeactivateStaffResponse{Status: "deactivated"})
}
