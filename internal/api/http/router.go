package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Analyst        *handlers.AnalystHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/collaborator/login", cfg.Auth.CollaboratorLogin)
	authGroup.Post("/analyst/login", cfg.Auth.AnalystLogin)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireCollaborator())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListOpenTickets)
	tickets.Get("/search", cfg.Tickets.SearchTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/conversation", cfg.Tickets.GetConversation)

	analyst := app.Group("/analyst/tickets", cfg.AuthMiddleware.Handle, auth.RequireAnalyst())
	analyst.Get("", cfg.Analyst.ListTickets)
	analyst.Get("/:id", cfg.Analyst.GetTicket)
	analyst.Patch("/:id/status", cfg.Analyst.UpdateStatus)
	analyst.Patch("/:id/level", cfg.Analyst.UpdateLevel)
	analyst.Post("/:id/escalate", cfg.Analyst.Escalate)
}
