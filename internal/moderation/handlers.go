package moderation

import (
	"strconv"
	"time"

	"backend-ping/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, adminMiddleware fiber.Handler) {
	r.Post("/reports", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			TargetID string `json:"target_id"`
			Reason   string `json:"reason"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		userID, _ := c.Locals("user_id").(string)
		report, err := svc.ReportUser(c.Context(), userID, body.TargetID, body.Reason)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(report)
	})

	admin := r.Group("/moderation", authMiddleware, adminMiddleware)

	admin.Post("/users/:id/ban", func(c *fiber.Ctx) error {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		if err := svc.BanUser(c.Context(), c.Params("id"), body.Reason); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "user banned"})
	})

	admin.Post("/users/:id/unban", func(c *fiber.Ctx) error {
		if err := svc.UnbanUser(c.Context(), c.Params("id")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "user unbanned"})
	})

	admin.Get("/banned-users", func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page"))
		size, _ := strconv.Atoi(c.Query("page_size"))
		users, err := svc.BannedUsers(c.Context(), page, size)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(users)
	})

	admin.Get("/banned-users/:id", func(c *fiber.Ctx) error {
		user, err := svc.BannedUser(c.Context(), c.Params("id"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(user)
	})

	admin.Post("/ips/ban", func(c *fiber.Ctx) error {
		var body struct {
			IP        string     `json:"ip"`
			Reason    string     `json:"reason"`
			ExpiresAt *time.Time `json:"expires_at"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		if err := svc.BanIP(c.Context(), body.IP, body.Reason, body.ExpiresAt); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "ip banned"})
	})

	admin.Post("/ips/unban", func(c *fiber.Ctx) error {
		var body struct {
			IP string `json:"ip"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		if err := svc.UnbanIP(c.Context(), body.IP); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "ip unbanned"})
	})
}
