package social

import (
	"strconv"

	"backend-ping/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/friends", authMiddleware, func(c *fiber.Ctx) error {
		friends, err := svc.ListFriends(c.Context(), currentUser(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(friends)
	})

	r.Post("/friends/add/:username", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.SendRequest(c.Context(), currentUser(c), c.Params("username")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "friend request sent"})
	})

	r.Post("/friends/accept/:username", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.AcceptRequest(c.Context(), currentUser(c), c.Params("username")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "friend request accepted"})
	})

	r.Get("/friends/requests/incoming", authMiddleware, func(c *fiber.Ctx) error {
		requests, err := svc.ListIncomingRequests(c.Context(), currentUser(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(requests)
	})

	r.Post("/friends/remove/:username", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.RemoveFriend(c.Context(), currentUser(c), c.Params("username")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "friend removed"})
	})

	r.Post("/follows/:targetId", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.FollowUser(c.Context(), currentUser(c), c.Params("targetId")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Delete("/follows/:targetId", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.UnfollowUser(c.Context(), currentUser(c), c.Params("targetId")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/follows/followers", authMiddleware, func(c *fiber.Ctx) error {
		page, size := pagination(c)
		followers, err := svc.Followers(c.Context(), currentUser(c), page, size)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(followers)
	})

	r.Get("/follows/following", authMiddleware, func(c *fiber.Ctx) error {
		page, size := pagination(c)
		following, err := svc.Following(c.Context(), currentUser(c), page, size)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(following)
	})

	r.Get("/follows/mutuals", authMiddleware, func(c *fiber.Ctx) error {
		page, size := pagination(c)
		mutuals, err := svc.Mutuals(c.Context(), currentUser(c), page, size)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(mutuals)
	})

	r.Get("/follows/:targetId/status", authMiddleware, func(c *fiber.Ctx) error {
		following, err := svc.IsFollowing(c.Context(), currentUser(c), c.Params("targetId"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"is_following": following})
	})

	r.Post("/blocks/:targetId", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.BlockUser(c.Context(), currentUser(c), c.Params("targetId")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})

	r.Delete("/blocks/:targetId", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.UnblockUser(c.Context(), currentUser(c), c.Params("targetId")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/blocks", authMiddleware, func(c *fiber.Ctx) error {
		blocked, err := svc.BlockedUsers(c.Context(), currentUser(c))
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(blocked)
	})
}

func currentUser(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}

func pagination(c *fiber.Ctx) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}
