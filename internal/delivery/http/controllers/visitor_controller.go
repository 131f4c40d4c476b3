package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"visitordesk/internal/delivery/http/helpers"
	"visitordesk/internal/delivery/http/middleware"
	"visitordesk/internal/domain"
)

// emailRegexp matches a simple email format (local@domain with at least one dot in domain).
var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegisterVisitorRequest is the request body for POST /visitors.
// This endpoint is public: visitors fill it in at the front-desk kiosk or
// the registration page.
type RegisterVisitorRequest struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	LocationID  string    `json:"location_id"`
	MeetWith    string    `json:"meet_with"`
	Purpose     string    `json:"purpose"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Validate implements Validator.
func (v RegisterVisitorRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(v.Name) == "" {
		errs = append(errs, "name is required")
	}
	email := strings.TrimSpace(strings.ToLower(v.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if strings.TrimSpace(v.LocationID) == "" {
		errs = append(errs, "location_id is required")
	}
	if v.ScheduledAt.IsZero() {
		errs = append(errs, "scheduled_at is required")
	}
	return errs
}

// RegisterVisitorSuccessResponse is the success response envelope for POST /visitors (201).
type RegisterVisitorSuccessResponse struct {
	Data  *domain.Visitor   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetVisitorSuccessResponse is the success response envelope for GET /visitors/{visitorID} (200).
type GetVisitorSuccessResponse struct {
	Data  *domain.Visitor   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListVisitorsResponse is the data payload for GET /visitors (200).
type ListVisitorsResponse struct {
	Items      []*domain.Visitor      `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListVisitorsSuccessResponse is the success response envelope for GET /visitors (200).
type ListVisitorsSuccessResponse struct {
	Data  ListVisitorsResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// TransitionRequest is the request body for the visitor transition endpoints.
// Reason is optional for approve/check-in/check-out, carries the rejection
// reason for reject, and scheduled_at is required for reschedule.
type TransitionRequest struct {
	Reason      string     `json:"reason"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// Validate implements Validator.
func (t TransitionRequest) Validate() []string { return nil }

// OverrideStatusRequest is the request body for PUT /visitors/{visitorID}/status.
type OverrideStatusRequest struct {
	Status      string     `json:"status"`
	Reason      string     `json:"reason"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// Validate implements Validator.
func (o OverrideStatusRequest) Validate() []string {
	var errs []string
	if o.Status == "" {
		errs = append(errs, "status is required")
	} else if !domain.VisitorStatus(o.Status).Valid() {
		errs = append(errs, "unknown status")
	}
	return errs
}

// DeleteVisitorResponse is the data payload for DELETE /visitors/{visitorID} (200).
type DeleteVisitorResponse struct {
	Status string `json:"status"`
}

type VisitorController struct {
	Logger  *slog.Logger
	Service domain.VisitorService
}

func NewVisitorController(logger *slog.Logger, svc domain.VisitorService) *VisitorController {
	return &VisitorController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register a visit
// @Description Public endpoint. Creates a visitor in awaiting_approval and triggers the staff notification cascade in the background. Registration succeeds even when no notification recipient can be reached.
// @Tags visitors
// @Accept json
// @Produce json
// @Param body body RegisterVisitorRequest true "Visit registration"
// @Success 201 {object} controllers.RegisterVisitorSuccessResponse "data contains the created visitor"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /visitors [post]
func (c *VisitorController) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterVisitorRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now()
	visitor := domain.NewVisitor(req.Name, req.Email, req.Phone, req.LocationID, req.MeetWith, req.Purpose, req.ScheduledAt, now)
	if err := c.Service.Register(r.Context(), visitor); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, visitor)
}

// GetByID godoc
// @Summary Get a visitor by ID
// @Description Returns a single visitor record. Requires authentication.
// @Tags visitors
// @Produce json
// @Security BearerAuth
// @Param visitorID path string true "Visitor ID (UUID)"
// @Success 200 {object} controllers.GetVisitorSuccessResponse "data contains the visitor"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /visitors/{visitorID} [get]
func (c *VisitorController) GetByID(w http.ResponseWriter, r *http.Request) {
	visitorID := r.PathValue("visitorID")
	if visitorID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing visitorID")
		return
	}
	visitor, err := c.Service.GetByID(r.Context(), visitorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "visitor not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, visitor)
}

// List godoc
// @Summary List visitors
// @Description Returns a paginated list of visitors, optionally filtered by status and location_id. Requires authentication.
// @Tags visitors
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by lifecycle status"
// @Param location_id query string false "Filter by location"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListVisitorsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /visitors [get]
func (c *VisitorController) List(w http.ResponseWriter, r *http.Request) {
	status := domain.VisitorStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown status")
		return
	}
	locationID := strings.TrimSpace(r.URL.Query().Get("location_id"))
	params := helpers.ParsePagination(r)
	visitors, total, err := c.Service.List(r.Context(), status, locationID, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if visitors == nil {
		visitors = []*domain.Visitor{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListVisitorsResponse{Items: visitors, Pagination: meta})
}

// Approve godoc
// @Summary Approve a visitor
// @Description Transitions the visitor from awaiting_approval to approved and emails the visitor. Returns 409 already_processed when the approval has already been settled. Requires authentication.
// @Tags visitors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param visitorID path string true "Visitor ID (UUID)"
// @Param body body TransitionRequest false "Optional reason"
// @Success 200 {object} controllers.GetVisitorSuccessResponse "data contains the updated visitor"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_processed"
// @Failure 422 {object} helpers.APIResponse "error.code: conflict (illegal transition)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /visitors/{visitorID}/approve [post]
func (c *VisitorController) Approve(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, domain.StatusApproved)
}

// Reject godoc
// @Summary Reject a visitor
// @Description Transitions the visitor from awaiting_approval to rejected and emails the visitor with the reason. Returns 409 already_processed when the approval has already been settled. Requires authentication.
// @Tags visitors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param visitorID path string true "Visitor ID (UUID)"
// @Param body body TransitionRequest false "Rejection reason"
// @Success 200 {object} controllers.GetVisitorSuccessResponse "data contains the updated visitor"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_processed"
// @Failure 422 {object} helpers.APIResponse "error.code: conflict (illegal transition)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /visitors/{visitorID}/reject [post]
func (c *VisitorController) Reject(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, domain.StatusRejected)
}

// CheckIn godoc
// @Summary Check a visitor in
// @Description Transitions an approved visitor to checked_in and stamps the check-in time. Requires authentication.
// @Tags visitors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param visitorID path string true "Visitor ID (UUID)"
// @Success 200 {object} controllers.GetVisitorSuccessResponse "data contains the updated visitor"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: conflict (illegal transition)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /visitors/{visitorID}/check-in [post]
func (c *VisitorController) CheckIn(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, domain.StatusCheckedIn)
}

// CheckOut godoc
// @Summary Check a visitor out
// @Description Transitions a checked-in visitor to checked_out and stamps the check-out time. Requires authentication.
// @Tags visitors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param visitorID path string true "Visitor ID (UUID)"
// @Success 200 {object} controllers.GetVisitorSuccessResponse "data contains the updated visitor"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: conflict (illegal transition)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /visitors/{visitorID}/check-out [post]
func (c *VisitorController) CheckOut(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, domain.StatusCheckedOut)
}

// Reschedule godoc
// @Summary Reschedule a visit
// @Description Moves the visit to a new scheduled time and resets the visitor to rescheduled, clearing any check-in/check-out stamps. scheduled_at is required. Requires authentication.
// @Tags visitors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param visitorID path string true "Visitor ID (UUID)"
// @Param body body TransitionRequest true "New scheduled_at and optional reason"
// @Success 200 {object} controllers.GetVisitorSuccessResponse "data contains the updated visitor"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (missing scheduled_at)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: conflict (illegal transition)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /visitors/{visitorID}/reschedule [post]
func (c *VisitorController) Reschedule(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, domain.StatusRescheduled)
}

// transition is the shared handler body for the guarded transition endpoints.
func (c *VisitorController) transition(w http.ResponseWriter, r *http.Request, target domain.VisitorStatus) {
	visitorID := r.PathValue("visitorID")
	if visitorID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing visitorID")
		return
	}
	var req TransitionRequest
	if r.ContentLength > 0 {
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	}
	actor, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	visitor, err := c.Service.AttemptTransition(r.Context(), visitorID, target, actor, req.Reason, req.ScheduledAt)
	if err != nil {
		c.writeTransitionError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, visitor)
}

// OverrideStatus godoc
// @Summary Override a visitor's status
// @Description Administrative override: sets the status directly, bypassing the transition guards. Triggers the same visitor emails (and, for awaiting_approval, the notification cascade) as the guarded transitions. Requires authentication.
// @Tags visitors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param visitorID path string true "Visitor ID (UUID)"
// @Param body body OverrideStatusRequest true "Target status"
// @Success 200 {object} controllers.GetVisitorSuccessResponse "data contains the updated visitor"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /visitors/{visitorID}/status [put]
func (c *VisitorController) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	visitorID := r.PathValue("visitorID")
	if visitorID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing visitorID")
		return
	}
	var req OverrideStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	visitor, err := c.Service.SetStatus(r.Context(), visitorID, domain.VisitorStatus(req.Status), actor, req.Reason, req.ScheduledAt)
	if err != nil {
		c.writeTransitionError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, visitor)
}

// Delete godoc
// @Summary Delete a visitor record
// @Description Permanently removes a visitor record. Requires authentication.
// @Tags visitors
// @Produce json
// @Security BearerAuth
// @Param visitorID path string true "Visitor ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /visitors/{visitorID} [delete]
func (c *VisitorController) Delete(w http.ResponseWriter, r *http.Request) {
	visitorID := r.PathValue("visitorID")
	if visitorID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing visitorID")
		return
	}
	if err := c.Service.Delete(r.Context(), visitorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "visitor not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteVisitorResponse{Status: "deleted"})
}

// writeTransitionError maps the visitor service's transition errors onto the
// response envelope.
func (c *VisitorController) writeTransitionError(w http.ResponseWriter, r *http.Request, err error) {
	var processed *domain.AlreadyProcessedError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "visitor not found")
	case errors.As(err, &processed):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeAlreadyProcessed, processed.Error())
	case errors.Is(err, domain.ErrIllegalTransition):
		helpers.WriteJSONError(w, http.StatusUnprocessableEntity, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
