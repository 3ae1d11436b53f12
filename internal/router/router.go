package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-checkin/internal/handler"
	"github.com/iliyamo/conference-checkin/internal/middleware"
	"github.com/iliyamo/conference-checkin/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check,
// used by load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token and issues a new access token.
	g.POST("/refresh", a.Refresh)
	// Logout accepts a refresh token in the body and revokes it; no JWT
	// is required so an expired session can still be terminated.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleOrganizer, model.RoleStaff, model.RoleAttendee))
	auth.GET("/me", a.Me)
}

// RegisterCheckin registers the registration and check-in desk routes.
// Every route requires a valid access token; fine-grained permissions
// are enforced inside the handlers via the permission gate, so the role
// middleware here only filters out unknown roles.
func RegisterCheckin(e *echo.Echo, r *handler.RegistrationHandler, ch *handler.CheckinHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleOrganizer, model.RoleStaff, model.RoleAttendee))

	g.POST("/registrations", r.Create)
	g.GET("/registrations/:id", r.Get)

	g.POST("/checkins/scan", ch.Scan)
	g.POST("/checkins/manual", ch.Manual)
	g.GET("/checkins", ch.List)
	g.DELETE("/checkins/:id", ch.Delete)
}
