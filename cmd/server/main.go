package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"visitordesk/config"
	authadapter "visitordesk/internal/adapters/auth"
	emailadapter "visitordesk/internal/adapters/email"
	delivery "visitordesk/internal/delivery/http"
	"visitordesk/internal/delivery/http/controllers"
	"visitordesk/internal/delivery/http/middleware"
	"visitordesk/internal/repository/postgres"
	"visitordesk/internal/services"
)

const contextTimeout = 10 * time.Second

// @title Visitor Desk API
// @version 1.0
// @description Visitor check-in backend: registration, approval workflow, staff notifications, and email action links.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	visitorRepo := postgres.NewVisitorRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	locationRepo := postgres.NewLocationRepository(db)

	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: emailadapter.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKey,
			SecretAccessKey:    cfg.SESSecretKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
		MailerSend: emailadapter.MailerSendConfig{APIKey: cfg.MailerSendToken},
	})
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}

	emailService := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())
	actionTokens := authadapter.NewActionTokenIssuer(cfg.ActionTokenSecret, nil)
	resolver := services.NewNotificationResolver(staffRepo, emailService, actionTokens, cfg.BaseURL, logger)
	visitorService := services.NewVisitorService(visitorRepo, resolver, emailService, logger, contextTimeout, cfg.NotifyTimeout)

	hasher := authadapter.NewBcryptHasher(12)
	jwtTokens := authadapter.NewJWTTokens(cfg.JWTSecret)
	authService := services.NewAuthService(staffRepo, hasher, jwtTokens, cfg.JWTExpiry)
	staffService := services.NewStaffService(staffRepo, hasher)
	locationService := services.NewLocationService(locationRepo)

	mux := delivery.NewRouter(
		logger,
		jwtTokens,
		controllers.NewVisitorController(logger, visitorService),
		controllers.NewEmailActionController(logger, visitorService, actionTokens),
		controllers.NewStaffController(logger, staffService),
		controllers.NewLocationController(logger, locationService),
		controllers.NewAuthController(logger, authService),
	)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
