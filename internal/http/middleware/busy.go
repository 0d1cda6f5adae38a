package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// BusyChecker reports whether an upload is in flight.
type BusyChecker interface {
	IsUploading() bool
}

// BusyGuard rejects mutating requests with 409 while an upload or replace is running.
// Read-only methods always pass. onBusy writes the rejection response.
func BusyGuard(b BusyChecker, onBusy fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		if b.IsUploading() {
			return onBusy(c)
		}
		return c.Next()
	}
}
