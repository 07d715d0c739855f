package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/http/handlers"
	"github.com/spec-kit/sla-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	ServiceLevels  *handlers.ServiceLevelsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)

	levels := api.Group("/service-levels")
	levels.Get("", cfg.ServiceLevels.ListServiceLevels)
	levels.Get("/:id", cfg.ServiceLevels.GetServiceLevel)
	levels.Post("/:id/preview", cfg.ServiceLevels.PreviewDeadlines)
}
