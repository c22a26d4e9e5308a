package controller

import (
	"errors"

	"github.com/benbeisheim/negachess-backend/internal/model"
	"github.com/benbeisheim/negachess-backend/internal/service"
	"github.com/benbeisheim/negachess-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// errorStatus maps service and rules errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrGameFull),
		errors.Is(err, service.ErrGameExists),
		errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrGameOver),
		errors.Is(err, service.ErrEngineThinking):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrInvalidOptions),
		errors.Is(err, model.ErrInvalidSquare),
		errors.Is(err, model.ErrNoPieceAtSource),
		errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrInvalidFEN):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	playerID := c.Locals("playerID").(string)

	var opts service.GameOptions
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid game options: " + err.Error(),
			})
		}
	}

	gameID, color, err := gc.gameService.CreateGame(playerID, opts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
		"color":   color,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return respondError(c, err)
	}
	log.Debugf("player %s joined game %s as %s", playerID, gameID, color)

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	var move ws.MovePayload
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move: " + err.Error(),
		})
	}
	if err := gc.gameService.HandleMove(gameID, playerID, move.From, move.To); err != nil {
		return respondError(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	if err := gc.gameService.Undo(c.Params("gameId"), c.Locals("playerID").(string)); err != nil {
		return respondError(c, err)
	}
	return gc.GetGameState(c)
}

func (gc *GameController) Reset(c *fiber.Ctx) error {
	if err := gc.gameService.Reset(c.Params("gameId"), c.Locals("playerID").(string)); err != nil {
		return respondError(c, err)
	}
	return gc.GetGameState(c)
}

// Hint searches the current position at the game's depth and reports the move it would play.
func (gc *GameController) Hint(c *fiber.Ctx) error {
	ply, stats, err := gc.gameService.Hint(c.Params("gameId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"move":  ply,
		"stats": stats,
	})
}
