package profile

import (
	"backend-ping/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/profiles/me", authMiddleware, func(c *fiber.Ctx) error {
		p, err := svc.MyProfile(c.Context(), currentUser(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(p)
	})

	r.Get("/profiles/search", authMiddleware, func(c *fiber.Ctx) error {
		results, err := svc.Search(c.Context(), currentUser(c), c.Query("username"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(results)
	})
}

func currentUser(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
