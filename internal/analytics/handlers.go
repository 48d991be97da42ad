package analytics

import (
	"time"

	"backend-ping/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, adminMiddleware fiber.Handler) {
	r.Post("/places/:id/view", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.TrackPlaceView(c.Context(), c.Params("id"), time.Now().UTC()); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	admin := r.Group("/analytics", authMiddleware, adminMiddleware)

	admin.Get("/places/:id", func(c *fiber.Ctx) error {
		stats, err := svc.PlaceAnalytics(c.Context(), c.Params("id"), time.Now().UTC())
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(stats)
	})

	admin.Get("/dashboard", func(c *fiber.Ctx) error {
		stats, err := svc.Dashboard(c.Context(), time.Now().UTC())
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(stats)
	})

	admin.Post("/metrics/compute", func(c *fiber.Ctx) error {
		day := time.Now().UTC()
		if raw := c.Query("date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
			}
			day = parsed
		}
		metrics, err := svc.ComputeDailyMetrics(c.Context(), day)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(metrics)
	})
}
