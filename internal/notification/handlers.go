package notification

import (
	"strconv"

	"backend-ping/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/notifications", authMiddleware, func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page"))
		size, _ := strconv.Atoi(c.Query("page_size"))
		notifications, err := svc.List(c.Context(), currentUser(c), page, size)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(notifications)
	})

	r.Get("/notifications/unread-count", authMiddleware, func(c *fiber.Ctx) error {
		count, err := svc.UnreadCount(c.Context(), currentUser(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"unread": count})
	})

	r.Post("/notifications/:id/read", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.MarkRead(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "notification read"})
	})

	r.Post("/notifications/read-all", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.MarkAllRead(c.Context(), currentUser(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "all notifications read"})
	})
}

func currentUser(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
