package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/preview"
	"portfolioapi/internal/service"
)

// PreviewHTML renders the live portfolio page.
func PreviewHTML(svc service.PortfolioService, title string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := preview.HTML(svc.Files(), preview.Options{Title: title})
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Type("html").SendString(page)
	}
}

// PreviewMarkdown renders the live portfolio as Markdown.
func PreviewMarkdown(svc service.PortfolioService, title string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := preview.Markdown(svc.Files(), preview.Options{Title: title})
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
		return c.SendString(doc)
	}
}
