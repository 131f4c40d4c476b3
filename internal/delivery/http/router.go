package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"visitordesk/internal/delivery/http/controllers"
	"visitordesk/internal/delivery/http/middleware"
	"visitordesk/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Registration, the location list, and the email action links are public;
// everything else requires a staff Bearer token.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	visitorController *controllers.VisitorController,
	emailActionController *controllers.EmailActionController,
	staffController *controllers.StaffController,
	locationController *controllers.LocationController,
	authController *controllers.AuthController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Public surface
	mux.HandleFunc("POST /visitors", visitorController.Register)
	mux.HandleFunc("GET /locations", locationController.List)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Email action links (token-authenticated, no session)
	mux.HandleFunc("GET /email-actions/approve/{visitorID}/{token}", emailActionController.Approve)
	mux.HandleFunc("GET /email-actions/reject/{visitorID}/{token}", emailActionController.Reject)
	mux.HandleFunc("POST /email-actions/reject/{visitorID}/{token}", emailActionController.Reject)
	mux.HandleFunc("GET /email-actions/reject-form/{visitorID}/{token}", emailActionController.RejectForm)

	// Visitor admin surface
	mux.HandleFunc("GET /visitors", auth(visitorController.List))
	mux.HandleFunc("GET /visitors/{visitorID}", auth(visitorController.GetByID))
	mux.HandleFunc("POST /visitors/{visitorID}/approve", auth(visitorController.Approve))
	mux.HandleFunc("POST /visitors/{visitorID}/reject", auth(visitorController.Reject))
	mux.HandleFunc("POST /visitors/{visitorID}/check-in", auth(visitorController.CheckIn))
	mux.HandleFunc("POST /visitors/{visitorID}/check-out", auth(visitorController.CheckOut))
	mux.HandleFunc("POST /visitors/{visitorID}/reschedule", auth(visitorController.Reschedule))
	mux.HandleFunc("PUT /visitors/{visitorID}/status", auth(visitorController.OverrideStatus))
	mux.HandleFunc("DELETE /visitors/{visitorID}", auth(visitorController.Delete))

	// Staff directory
	mux.HandleFunc("POST /staff", auth(staffController.Create))
	mux.HandleFunc("GET /staff", auth(staffController.List))
	mux.HandleFunc("GET /staff/{staffID}", auth(staffController.GetByID))
	mux.HandleFunc("PATCH /staff/{staffID}", auth(staffController.Update))
	mux.HandleFunc("DELETE /staff/{staffID}", auth(staffController.Deactivate))

	// Locations
	mux.HandleFunc("POST /locations", auth(locationController.Create))
	mux.HandleFunc("GET /locations/{locationID}", auth(locationController.GetByID))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
