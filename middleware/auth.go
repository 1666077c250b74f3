package middleware

import (
	"github.com/gofiber/fiber/v2"

	"lingo/config"
	"lingo/utils"
)

// AuthMiddleware validates the bearer token and stashes the user id in the
// request locals for the handlers downstream.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		c.Locals("userId", userID)
		return c.Next()
	}
}

// AdminMiddleware gates the content-authoring surface behind the configured
// allow-list. Deliberately answers a bare 401 with no detail.
func AdminMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil || !cfg.IsAdmin(userID) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		c.Locals("userId", userID)
		return c.Next()
	}
}

// UserID reads the authenticated user id placed by the auth middleware.
func UserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userId").(uint)
	return userID, ok
}
