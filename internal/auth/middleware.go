package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTMiddleware validates bearer tokens and stores user_id in locals.
func JWTMiddleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
			return secretBytes, nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		claims, ok := parsed.Claims.(*Claims)
		if !ok || !parsed.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "token invalid")
		}

		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}

var parseMiddlewareClaimsFn = jwt.ParseWithClaims

// TokenUserID returns a resolver that extracts the caller's user id from a
// bearer token without aborting the request. Missing or invalid tokens
// resolve to "". The ban gate uses this to check user bans before the auth
// middleware has run.
func TokenUserID(secret string) func(*fiber.Ctx) string {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) string {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return ""
		}
		parsed, err := parseMiddlewareClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
			return secretBytes, nil
		})
		if err != nil {
			return ""
		}
		claims, ok := parsed.Claims.(*Claims)
		if !ok || !parsed.Valid {
			return ""
		}
		return claims.UserID
	}
}

// AdminMiddleware gates a route to users with the admin flag. It must run
// after JWTMiddleware so user_id is present.
func AdminMiddleware(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		admin, err := svc.IsAdmin(c.Context(), userID)
		if err != nil {
			return err
		}
		if !admin {
			return fiber.NewError(fiber.StatusForbidden, "admin access required")
		}
		return c.Next()
	}
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
