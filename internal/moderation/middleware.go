package moderation

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// BanGate rejects requests from banned IPs and banned users with a fixed
// 403 body. Mounted app-wide, before auth, so the caller identity comes
// from the identify func (nil skips the user half of the check).
func BanGate(svc *Service, identify func(*fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" && identify != nil {
			userID = identify(c)
		}
		banned, reason := svc.CheckBan(c.Context(), ClientIP(c), userID)
		if banned {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":  "banned",
				"reason": reason,
			})
		}
		return c.Next()
	}
}

// ClientIP prefers the first X-Forwarded-For entry over the peer address.
func ClientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.IP()
}
