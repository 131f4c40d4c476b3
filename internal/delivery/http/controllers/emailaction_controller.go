package controllers

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"visitordesk/internal/domain"
)

//go:embed pages/*.html
var pageFS embed.FS

var pageTemplates = template.Must(template.ParseFS(pageFS, "pages/*.html"))

// emailActor is recorded as approved_by when a decision arrives through an
// email link rather than the admin API.
const emailActor = "email"

// actionResultPage is the template data for pages/action_result.html.
type actionResultPage struct {
	Title   string
	Message string
}

// rejectFormPage is the template data for pages/reject_form.html.
type rejectFormPage struct {
	VisitorName string
	Action      string
}

// EmailActionController serves the unauthenticated approve/reject links
// embedded in staff notification emails. Every handler renders a plain HTML
// page: the audience is a person clicking a link in their mail client, not
// an API consumer.
type EmailActionController struct {
	Logger  *slog.Logger
	Service domain.VisitorService
	Tokens  domain.ActionTokenIssuer
}

func NewEmailActionController(logger *slog.Logger, svc domain.VisitorService, tokens domain.ActionTokenIssuer) *EmailActionController {
	return &EmailActionController{
		Logger:  logger,
		Service: svc,
		Tokens:  tokens,
	}
}

// loadVisitor reads the visitor and verifies the link token. The database
// read always happens before the token check, and a bad token renders the
// same page as an unknown visitor, so the response does not reveal whether
// the visitor id exists.
func (c *EmailActionController) loadVisitor(w http.ResponseWriter, r *http.Request) (*domain.Visitor, bool) {
	visitorID := r.PathValue("visitorID")
	token := r.PathValue("token")

	visitor, err := c.Service.GetByID(r.Context(), visitorID)
	tokenOK := c.Tokens.Verify(visitorID, token)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.Logger.ErrorContext(r.Context(), "email action lookup failed", "visitor_id", visitorID, "err", err)
			c.renderResult(w, http.StatusInternalServerError, "Something went wrong", "Please try again later or contact the front desk.")
			return nil, false
		}
		visitor = nil
	}
	if visitor == nil || !tokenOK {
		c.renderInvalidLink(w)
		return nil, false
	}
	return visitor, true
}

// Approve godoc
// @Summary Approve a visit from an email link
// @Description Approves the visit using the day-scoped token from the notification email. Renders an HTML confirmation page. Expired or malformed links and unknown visitors render the same invalid-link page.
// @Tags email-actions
// @Produce html
// @Param visitorID path string true "Visitor ID (UUID)"
// @Param token path string true "Day-scoped action token"
// @Success 200 {string} string "HTML confirmation page"
// @Failure 403 {string} string "HTML invalid-link page"
// @Failure 409 {string} string "HTML already-processed page"
// @Router /email-actions/approve/{visitorID}/{token} [get]
func (c *EmailActionController) Approve(w http.ResponseWriter, r *http.Request) {
	visitor, ok := c.loadVisitor(w, r)
	if !ok {
		return
	}
	updated, err := c.Service.AttemptTransition(r.Context(), visitor.ID, domain.StatusApproved, emailActor, "", nil)
	if err != nil {
		c.renderTransitionError(w, r, err)
		return
	}
	c.renderResult(w, http.StatusOK, "Visit approved",
		fmt.Sprintf("The visit from %s has been approved. They have been notified by email.", updated.Name))
}

// Reject godoc
// @Summary Reject a visit from an email link
// @Description Rejects the visit using the day-scoped token from the notification email. GET rejects without a reason; POST (from the reject form) carries the reason. Renders an HTML confirmation page.
// @Tags email-actions
// @Produce html
// @Param visitorID path string true "Visitor ID (UUID)"
// @Param token path string true "Day-scoped action token"
// @Success 200 {string} string "HTML confirmation page"
// @Failure 403 {string} string "HTML invalid-link page"
// @Failure 409 {string} string "HTML already-processed page"
// @Router /email-actions/reject/{visitorID}/{token} [get]
func (c *EmailActionController) Reject(w http.ResponseWriter, r *http.Request) {
	visitor, ok := c.loadVisitor(w, r)
	if !ok {
		return
	}
	reason := ""
	if r.Method == http.MethodPost {
		reason = strings.TrimSpace(r.FormValue("reason"))
	}
	updated, err := c.Service.AttemptTransition(r.Context(), visitor.ID, domain.StatusRejected, emailActor, reason, nil)
	if err != nil {
		c.renderTransitionError(w, r, err)
		return
	}
	c.renderResult(w, http.StatusOK, "Visit rejected",
		fmt.Sprintf("The visit from %s has been rejected. They have been notified by email.", updated.Name))
}

// RejectForm godoc
// @Summary Show the reject-with-reason form
// @Description Renders an HTML form where the recipient can enter a rejection reason before submitting. The form posts to the reject action with the same token.
// @Tags email-actions
// @Produce html
// @Param visitorID path string true "Visitor ID (UUID)"
// @Param token path string true "Day-scoped action token"
// @Success 200 {string} string "HTML form page"
// @Failure 403 {string} string "HTML invalid-link page"
// @Router /email-actions/reject-form/{visitorID}/{token} [get]
func (c *EmailActionController) RejectForm(w http.ResponseWriter, r *http.Request) {
	visitor, ok := c.loadVisitor(w, r)
	if !ok {
		return
	}
	if visitor.Status != domain.StatusAwaitingApproval {
		c.renderAlreadyProcessed(w, visitor.Status)
		return
	}
	action := fmt.Sprintf("/email-actions/reject/%s/%s", r.PathValue("visitorID"), r.PathValue("token"))
	c.renderPage(w, http.StatusOK, "reject_form.html", rejectFormPage{
		VisitorName: visitor.Name,
		Action:      action,
	})
}

func (c *EmailActionController) renderTransitionError(w http.ResponseWriter, r *http.Request, err error) {
	var processed *domain.AlreadyProcessedError
	switch {
	case errors.As(err, &processed):
		c.renderAlreadyProcessed(w, processed.Current)
	case errors.Is(err, domain.ErrIllegalTransition):
		c.renderResult(w, http.StatusConflict, "Action not available",
			"This visit can no longer be changed from this link.")
	case errors.Is(err, domain.ErrNotFound):
		c.renderInvalidLink(w)
	default:
		c.Logger.ErrorContext(r.Context(), "email action failed", "path", r.URL.Path, "err", err)
		c.renderResult(w, http.StatusInternalServerError, "Something went wrong",
			"Please try again later or contact the front desk.")
	}
}

func (c *EmailActionController) renderAlreadyProcessed(w http.ResponseWriter, current domain.VisitorStatus) {
	c.renderResult(w, http.StatusConflict, "Already processed",
		fmt.Sprintf("This visit request has already been handled: its current status is %s. No changes were made.",
			strings.ReplaceAll(string(current), "_", " ")))
}

func (c *EmailActionController) renderInvalidLink(w http.ResponseWriter) {
	c.renderResult(w, http.StatusForbidden, "Link invalid or expired",
		"This action link is invalid or has expired. Links expire at the end of the day they were sent. Please handle the request from the admin dashboard.")
}

func (c *EmailActionController) renderResult(w http.ResponseWriter, status int, title, message string) {
	c.renderPage(w, status, "action_result.html", actionResultPage{Title: title, Message: message})
}

func (c *EmailActionController) renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		c.Logger.Error("render page failed", "page", name, "err", err)
	}
}
