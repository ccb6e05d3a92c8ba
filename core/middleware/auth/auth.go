package auth

import (
	"strings"

	coreauth "equipment-manager/core/auth"

	"github.com/gofiber/fiber/v2"
)

// LocalsKey is the fiber locals key holding the verified *auth.Claims.
const LocalsKey = "claims"

// Config holds the middleware settings.
type Config struct {
	// Issuer verifies bearer tokens.
	Issuer *coreauth.Issuer
	// Optional lets requests without a token through; a token that is
	// present must still be valid.
	Optional bool
}

// New returns a middleware that verifies the bearer token and stores its
// claims in the request locals.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" && cfg.Optional {
			return c.Next()
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return unauthorized(c, "Missing or invalid Authorization header")
		}

		claims, err := cfg.Issuer.Parse(token)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(LocalsKey, claims)
		return c.Next()
	}
}

// RequireLogin rejects requests without verified claims. It must run after
// New.
func RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ClaimsFrom(c) == nil {
			return unauthorized(c, "Login required")
		}
		return c.Next()
	}
}

// RequireRole rejects requests whose claims do not carry the role. It must
// run after New.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := ClaimsFrom(c)
		if claims == nil {
			return unauthorized(c, "Login required")
		}
		if claims.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"ok":      false,
				"message": "Insufficient permissions",
			})
		}
		return c.Next()
	}
}

// ClaimsFrom returns the verified claims of the request, or nil.
func ClaimsFrom(c *fiber.Ctx) *coreauth.Claims {
	claims, _ := c.Locals(LocalsKey).(*coreauth.Claims)
	return claims
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"ok":      false,
		"message": msg,
	})
}
