package activity

import (
	"backend-ping/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/places/:placeId/activities", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Name   string `json:"name"`
			KindID string `json:"kind_id"`
			Notes  string `json:"notes"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		act, err := svc.CreateActivity(c.Context(), c.Params("placeId"), body.Name, body.KindID, body.Notes)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(act)
	})

	r.Get("/places/:placeId/activities", authMiddleware, func(c *fiber.Ctx) error {
		activities, err := svc.ListActivities(c.Context(), c.Params("placeId"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(activities)
	})

	r.Delete("/activities/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteActivity(c.Context(), c.Params("id")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/activities/:id/checkins", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Note string `json:"note"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		checkin, err := svc.CheckIn(c.Context(), c.Params("id"), currentUser(c), body.Note)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(checkin)
	})

	r.Get("/activities/:id/checkins", authMiddleware, func(c *fiber.Ctx) error {
		checkins, err := svc.ListCheckins(c.Context(), c.Params("id"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(checkins)
	})

	r.Post("/activity-kinds", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		kind, err := svc.CreateKind(c.Context(), body.Name)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(kind)
	})

	r.Get("/activity-kinds", authMiddleware, func(c *fiber.Ctx) error {
		kinds, err := svc.ListKinds(c.Context())
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(kinds)
	})
}

func currentUser(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
