package handler

import (
	"github.com/gofiber/fiber/v2"

	"portfolioapi/internal/notify"
)

// NotificationLister returns notifications newer than sinceID.
type NotificationLister interface {
	List(sinceID string) []notify.Notification
}

// ListNotifications returns the notification feed. ?since=<id> returns only newer entries.
func ListNotifications(l NotificationLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": l.List(c.Query("since"))})
	}
}
