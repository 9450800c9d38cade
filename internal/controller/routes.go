package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/dama-backend/internal/middleware"
)

// SetupRoutes mounts the REST API under /api and the sockets under /ws.
// Every route requires a player id.
func SetupRoutes(app *fiber.App, gc *GameController, pc *ProfileController, wsc *WebSocketController, origins []string) {
	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         origins,
	}

	sockets := app.Group("/ws", middleware.EnsurePlayerID())
	sockets.Get("/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsc.HandleConnection, wsConfig))
	sockets.Get("/matchmaking", middleware.WebSocketUpgrade(), websocket.New(wsc.HandleMatchmaking, wsConfig))

	api := app.Group("/api", middleware.EnsurePlayerID())
	gc.Register(api.Group("/game"))
	pc.Register(api)
}
