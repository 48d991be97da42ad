package analytics

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ActivityLog wraps an auth middleware so every authenticated request marks
// the user active for the current day. Logging failure never fails the
// request.
func ActivityLog(svc *Service, authMiddleware fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := authMiddleware(c)
		if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
			if touchErr := svc.Touch(c.Context(), userID, time.Now().UTC()); touchErr != nil {
				log.Printf("activity log: %v", touchErr)
			}
		}
		return err
	}
}
