package controller

import (
	"github.com/benbeisheim/negachess-backend/internal/config"
	"github.com/benbeisheim/negachess-backend/internal/middleware"
	"github.com/benbeisheim/negachess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes mounts the REST API under /api and the game socket under /ws.
func RegisterRoutes(app *fiber.App, gameService *service.GameService, cfg config.Config) {
	gameController := NewGameController(gameService)
	wsController := NewWebSocketController(gameService)

	app.Use("/ws", middleware.EnsurePlayerID())
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		Origins:         cfg.AllowedOrigins,
	}))

	api := app.Group("/api", middleware.EnsurePlayerID())

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Post("/join/:gameId", gameController.JoinGame)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Get("/:gameId/hint", gameController.Hint)
	gameRoutes.Post("/:gameId/move", gameController.MakeMove)
	gameRoutes.Post("/:gameId/undo", gameController.Undo)
	gameRoutes.Post("/:gameId/reset", gameController.Reset)
}
