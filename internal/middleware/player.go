package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// EnsurePlayerID reads the caller's ID from the X-Player-ID header or the playerId query
// parameter and stores it in Locals under "playerID".
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("playerID") != nil {
			return c.Next()
		}

		playerID := c.Get("X-Player-ID")
		if playerID == "" {
			// Browsers cannot set headers on a websocket handshake.
			playerID = c.Query("playerId")
		}
		if playerID == "" {
			log.Debugf("rejecting %s %s without player ID", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}

		c.Locals("playerID", playerID)
		return c.Next()
	}
}
