package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"examscheduler/internal/delivery/http/controllers"
	"examscheduler/internal/delivery/http/middleware"
	"examscheduler/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Everything except login and the swagger UI requires a Bearer token.
func NewRouter(
	schedulingController *controllers.SchedulingController,
	availabilityController *controllers.AvailabilityController,
	authController *controllers.AuthController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Availability checks and profiles
	mux.HandleFunc("POST /availability/check", auth(schedulingController.CheckAvailability))
	mux.HandleFunc("GET /staff/{staffID}/rules", auth(availabilityController.ListRules))
	mux.HandleFunc("POST /staff/{staffID}/rules", auth(availabilityController.AddRule))
	mux.HandleFunc("DELETE /staff/{staffID}/rules/{ruleID}", auth(availabilityController.RemoveRule))
	mux.HandleFunc("GET /staff/{staffID}/overrides", auth(availabilityController.ListOverrides))
	mux.HandleFunc("POST /staff/{staffID}/overrides", auth(availabilityController.AddOverride))
	mux.HandleFunc("DELETE /staff/{staffID}/overrides/{overrideID}", auth(availabilityController.RemoveOverride))

	// Sessions
	mux.HandleFunc("GET /sessions", auth(schedulingController.ListSessions))
	mux.HandleFunc("POST /sessions", auth(schedulingController.CreateSession))
	mux.HandleFunc("POST /sessions/validate-batch", auth(schedulingController.ValidateBatch))
	mux.HandleFunc("PATCH /sessions/{sessionID}", auth(schedulingController.UpdateSession))
	mux.HandleFunc("POST /sessions/{sessionID}/cancel", auth(schedulingController.CancelSession))
	mux.HandleFunc("DELETE /sessions/{sessionID}", auth(schedulingController.DeleteSession))

	// Generation
	mux.HandleFunc("POST /schedule/generate", auth(schedulingController.GenerateSchedule))

	// Auth
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
