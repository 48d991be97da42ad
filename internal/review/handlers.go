package review

import (
	"backend-ping/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/activities/:activityId/reviews", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		created, err := svc.CreateReview(c.Context(), c.Params("activityId"), currentUser(c), body.Rating, body.Comment)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/activities/:activityId/reviews", authMiddleware, func(c *fiber.Ctx) error {
		reviews, err := svc.ListReviews(c.Context(), c.Params("activityId"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(reviews)
	})

	r.Delete("/reviews/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteReview(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/reviews/:id/like", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.LikeReview(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Delete("/reviews/:id/like", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.UnlikeReview(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/reviews/:id/tags", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Tags []string `json:"tags"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		attached, err := svc.AttachTags(c.Context(), c.Params("id"), currentUser(c), body.Tags)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"tags": attached})
	})

	r.Get("/reviews/:id/tags", authMiddleware, func(c *fiber.Ctx) error {
		tags, err := svc.ReviewTags(c.Context(), c.Params("id"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"tags": tags})
	})
}

func currentUser(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
