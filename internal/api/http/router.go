package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Chat     *handlers.ChatHandler
	Tickets  *handlers.TicketsHandler
	Rules    *handlers.RulesHandler
	Feedback *handlers.FeedbackHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/chat", cfg.Chat.Turn)
	api.Post("/chat/reset", cfg.Chat.Reset)

	api.Get("/tickets", cfg.Tickets.List)
	api.Get("/tickets/:id", cfg.Tickets.Get)

	api.Get("/priority-rules", cfg.Rules.List)
	api.Post("/priority-rules", cfg.Rules.Create)
	api.Delete("/priority-rules/:id", cfg.Rules.Delete)

	api.Get("/sessions/:session_id/feedback", cfg.Feedback.ListBySession)
}
