package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireCollaborator ensures a collaborator is authenticated.
func RequireCollaborator() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Collaborator == nil {
			return fiber.NewError(http.StatusForbidden, "collaborator required")
		}
		return c.Next()
	}
}

// RequireAnalyst ensures an analyst is authenticated.
func RequireAnalyst() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Analyst == nil {
			return fiber.NewError(http.StatusForbidden, "analyst required")
		}
		return c.Next()
	}
}
