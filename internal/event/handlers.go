package event

import (
	"strconv"

	"backend-ping/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/events", authMiddleware, func(c *fiber.Ctx) error {
		var input Event
		if err := c.BodyParser(&input); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		created, err := svc.CreateEvent(c.Context(), currentUser(c), input)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/events/nearby", authMiddleware, func(c *fiber.Ctx) error {
		lat, err := strconv.ParseFloat(c.Query("lat"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat must be a number")
		}
		lng, err := strconv.ParseFloat(c.Query("lng"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lng must be a number")
		}
		radius, err := strconv.ParseFloat(c.Query("radius_km"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "radius_km must be a number")
		}
		events, err := svc.PublicEvents(c.Context(), lat, lng, radius)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(events)
	})

	r.Get("/events/mine", authMiddleware, func(c *fiber.Ctx) error {
		events, err := svc.MyEvents(c.Context(), currentUser(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(events)
	})

	r.Get("/events/attending", authMiddleware, func(c *fiber.Ctx) error {
		events, err := svc.AttendingEvents(c.Context(), currentUser(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(events)
	})

	r.Get("/events/:id", authMiddleware, func(c *fiber.Ctx) error {
		e, err := svc.GetEvent(c.Context(), c.Params("id"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(e)
	})

	r.Delete("/events/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteEvent(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/events/:id/join", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Join(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Delete("/events/:id/join", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Leave(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/events/:id/comments", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Content string `json:"content"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		comment, err := svc.AddComment(c.Context(), c.Params("id"), currentUser(c), body.Content)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(comment)
	})

	r.Get("/events/:id/comments", authMiddleware, func(c *fiber.Ctx) error {
		comments, err := svc.ListComments(c.Context(), c.Params("id"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(comments)
	})

	r.Post("/events/:id/invites", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			FriendID string `json:"friend_id"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		if err := svc.InviteFriend(c.Context(), c.Params("id"), currentUser(c), body.FriendID); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Get("/events/:id/invites", authMiddleware, func(c *fiber.Ctx) error {
		invites, err := svc.FriendInviteStatuses(c.Context(), c.Params("id"), currentUser(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(invites)
	})
}

func currentUser(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
