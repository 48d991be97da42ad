package tag

import (
	"strconv"

	"backend-ping/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, adminMiddleware fiber.Handler) {
	r.Get("/tags/search", authMiddleware, func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit"))
		tags, err := svc.SearchTags(c.Context(), c.Query("q"), limit)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(tags)
	})

	r.Get("/tags/popular", authMiddleware, func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit"))
		tags, err := svc.PopularTags(c.Context(), limit, c.Query("place_id"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(tags)
	})

	r.Post("/tags/:id/approve", authMiddleware, adminMiddleware, func(c *fiber.Ctx) error {
		if err := svc.ApproveTag(c.Context(), c.Params("id")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "tag approved"})
	})

	r.Post("/tags/:id/ban", authMiddleware, adminMiddleware, func(c *fiber.Ctx) error {
		if err := svc.BanTag(c.Context(), c.Params("id")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "tag banned"})
	})

	r.Post("/tags/:targetId/merge/:sourceId", authMiddleware, adminMiddleware, func(c *fiber.Ctx) error {
		if err := svc.MergeTags(c.Context(), c.Params("sourceId"), c.Params("targetId")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "tags merged"})
	})

	r.Delete("/tags/:id", authMiddleware, adminMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteTag(c.Context(), c.Params("id")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
