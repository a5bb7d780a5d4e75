package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hairult/hairstyle-service/internal/api/http/handlers"
	"github.com/hairult/hairstyle-service/internal/auth"
	"github.com/hairult/hairstyle-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Submissions     *handlers.SubmissionHandler
	Results         *handlers.ResultsHandler
	Hairstyles      *handlers.HairstylesHandler
	Sweep           *handlers.SweepHandler
	Admin           *handlers.AdminHandler
	AdminMiddleware *auth.AdminMiddleware
	CronSecret      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/hairstyles", cfg.Hairstyles.List)
	app.Get("/hairstyles/:id", cfg.Hairstyles.Get)
	app.Post("/submissions", cfg.Submissions.Submit)
	app.Get("/results/:id", cfg.Results.Get)

	cron := app.Group("/cron", auth.CronSecret(cfg.CronSecret))
	cron.Get("/sweep", cfg.Sweep.Sweep)
	cron.Post("/sweep", cfg.Sweep.Sweep)

	admin := app.Group("/admin")
	admin.Post("/login", cfg.Admin.Login)

	operators := admin.Group("", cfg.AdminMiddleware.Handle)
	operators.Get("/suggestions", auth.RequireRole(domain.AdminRoleAdmin, domain.AdminRoleOperator), cfg.Admin.ListSuggestions)
	operators.Get("/suggestions/:id/history", auth.RequireRole(domain.AdminRoleAdmin, domain.AdminRoleOperator), cfg.Admin.History)
	operators.Get("/metrics", auth.RequireRole(domain.AdminRoleAdmin, domain.AdminRoleOperator), cfg.Admin.Metrics)
	operators.Post("/hairstyles", auth.RequireRole(domain.AdminRoleAdmin), cfg.Hairstyles.Create)
	operators.Post("/suggestions/recover", auth.RequireRole(domain.AdminRoleAdmin), cfg.Admin.Recover)
}
