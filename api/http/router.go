package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pavelk2v/cvforge/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app. auth may be nil when
// the development token endpoint is disabled.
func Register(app *fiber.App, health *handlers.HealthHandler, auth *handlers.AuthHandler,
	docs *handlers.DocumentHandler, settings *handlers.SettingsHandler, tasks *handlers.TaskHandler,
	authMW fiber.Handler) {

	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	if auth != nil {
		v1.Post("/auth/token", auth.Token)
	}

	// Everything below requires an authenticated user.
	protected := v1.Group("", authMW)

	d := protected.Group("/documents")
	d.Post("", docs.Create)
	d.Get("", docs.List)
	d.Get("/:id", docs.Get)
	d.Put("/:id", docs.Update)
	d.Delete("/:id", docs.Delete)
	d.Post("/:id/variants", docs.CloneVariant)
	d.Put("/:id/application", docs.LinkApplication)
	d.Get("/:id/assessments", docs.ListAssessments)

	ai := protected.Group("/ai")
	ai.Get("/settings", settings.GetUser)
	ai.Put("/settings", settings.PutUser)
	ai.Put("/credentials/:provider", settings.PutUserCredential)
	ai.Delete("/credentials/:provider", settings.DeleteUserCredential)

	org := protected.Group("/org/ai")
	org.Get("/settings", settings.GetOrg)
	org.Put("/settings", settings.PutOrg)
	org.Put("/credentials/:provider", settings.PutOrgCredential)
	org.Delete("/credentials/:provider", settings.DeleteOrgCredential)

	// AI content tasks: each endpoint serves both phases of the protocol.
	ai.Post("/rewrite", tasks.Rewrite)
	ai.Post("/assess", tasks.Assess)
	ai.Post("/keywords", tasks.Keywords)
	ai.Post("/cover-letter", tasks.CoverLetter)
	ai.Post("/template", tasks.Template)
}
