package place

import (
	"strconv"

	"backend-ping/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware, adminMiddleware fiber.Handler) {
	r.Post("/places", authMiddleware, func(c *fiber.Ctx) error {
		var input Place
		if err := c.BodyParser(&input); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		created, err := svc.CreatePlace(c.Context(), currentUser(c), input)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/places/nearby", authMiddleware, func(c *fiber.Ctx) error {
		q, err := nearbyQueryFromRequest(c)
		if err != nil {
			return err
		}
		results, err := svc.SearchNearby(c.Context(), currentUser(c), q)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(results)
	})

	r.Get("/places/:id", authMiddleware, func(c *fiber.Ctx) error {
		p, err := svc.GetPlace(c.Context(), c.Params("id"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(p)
	})

	r.Put("/places/:id", authMiddleware, func(c *fiber.Ctx) error {
		var patch Patch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		updated, err := svc.UpdatePlace(c.Context(), c.Params("id"), currentUser(c), patch)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(updated)
	})

	r.Delete("/places/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeletePlace(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/places/:id/favorite", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.FavoritePlace(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Delete("/places/:id/favorite", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.UnfavoritePlace(c.Context(), c.Params("id"), currentUser(c)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/places/:id/claims", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Evidence string `json:"evidence"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		claim, err := svc.CreateClaim(c.Context(), c.Params("id"), currentUser(c), body.Evidence)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(claim)
	})

	r.Get("/claims", authMiddleware, adminMiddleware, func(c *fiber.Ctx) error {
		claims, err := svc.ListClaims(c.Context(), c.Query("status"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(claims)
	})

	r.Post("/claims/:id/approve", authMiddleware, adminMiddleware, func(c *fiber.Ctx) error {
		if err := svc.ResolveClaim(c.Context(), c.Params("id"), currentUser(c), true); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "claim approved"})
	})

	r.Post("/claims/:id/reject", authMiddleware, adminMiddleware, func(c *fiber.Ctx) error {
		if err := svc.ResolveClaim(c.Context(), c.Params("id"), currentUser(c), false); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "claim rejected"})
	})
}

func nearbyQueryFromRequest(c *fiber.Ctx) (NearbyQuery, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return NearbyQuery{}, fiber.NewError(fiber.StatusBadRequest, "lat must be a number")
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return NearbyQuery{}, fiber.NewError(fiber.StatusBadRequest, "lng must be a number")
	}
	radius, err := strconv.ParseFloat(c.Query("radius_km"), 64)
	if err != nil {
		return NearbyQuery{}, fiber.NewError(fiber.StatusBadRequest, "radius_km must be a number")
	}
	return NearbyQuery{
		Lat:          lat,
		Lng:          lng,
		RadiusKm:     radius,
		ActivityName: c.Query("activity"),
		KindName:     c.Query("kind"),
	}, nil
}

func currentUser(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
