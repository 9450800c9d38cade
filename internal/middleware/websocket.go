package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade ensures that requests to WebSocket endpoints are valid
// upgrade attempts from an identified player. When the route names a game,
// the game id must be present too.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		playerID := PlayerID(c)
		if playerID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "player ID is required",
			})
		}

		for _, param := range c.Route().Params {
			if param == "gameId" && c.Params("gameId") == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "game ID is required",
				})
			}
		}

		// The connection context after the upgrade only sees Locals.
		c.Locals("wsGameID", c.Params("gameId"))
		c.Locals("wsPlayerID", playerID)
		return c.Next()
	}
}
