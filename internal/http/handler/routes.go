package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"portfolioapi/internal/http/middleware"
	"portfolioapi/internal/service"
)

// Deps are the collaborators the HTTP routes need.
type Deps struct {
	Portfolio      service.PortfolioService
	Notifications  NotificationLister
	Gatherer       prometheus.Gatherer
	ProjectSoftCap int
	PreviewTitle   string
	OpenAPIPath    string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers only translate HTTP to service calls; the rules live in the service.
func RegisterRoutes(app *fiber.App, d Deps) {
	if d.OpenAPIPath == "" {
		d.OpenAPIPath = "openapi.yaml"
	}

	app.Get("/openapi.yaml", OpenAPISpec(d.OpenAPIPath))
	app.Get("/docs", DocsPage())

	app.Get("/health", HealthCheck(d.Portfolio))
	app.Get("/healthz", LivenessProbe())

	if d.Gatherer != nil {
		app.Get("/metrics", Metrics(d.Gatherer))
	}
	if d.Notifications != nil {
		app.Get("/notifications", ListNotifications(d.Notifications))
	}

	app.Get("/preview", PreviewHTML(d.Portfolio, d.PreviewTitle))
	app.Get("/preview.md", PreviewMarkdown(d.Portfolio, d.PreviewTitle))

	p := app.Group("/portfolio", middleware.BusyGuard(d.Portfolio, BusyResponse))
	p.Get("/", GetPortfolio(d.Portfolio))
	p.Delete("/", ClearPortfolio(d.Portfolio))
	p.Get("/stats", GetStats(d.Portfolio))
	p.Get("/files/:id", GetFile(d.Portfolio))
	p.Post("/:category", UploadFiles(d.Portfolio, d.ProjectSoftCap))
	p.Put("/:category", ReplaceFile(d.Portfolio))
	p.Put("/:category/:id", ReplaceFile(d.Portfolio))
	p.Delete("/:category", DeleteFile(d.Portfolio))
	p.Delete("/:category/:id", DeleteFile(d.Portfolio))
}
