package service

import (
	"fmt"

	"github.com/benbeisheim/negachess-backend/internal/engine"
	"github.com/benbeisheim/negachess-backend/internal/model"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

// CreateGame starts a game under a fresh ID and seats the creator.
func (gs *GameService) CreateGame(playerID string, opts GameOptions) (string, model.Color, error) {
	gameID := uuid.New().String()

	game, err := gs.gameManager.CreateGame(gameID, opts)
	if err != nil {
		return "", model.NoColor, fmt.Errorf("failed to create game: %w", err)
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", model.NoColor, fmt.Errorf("failed to seat creator: %w", err)
	}
	return gameID, color, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) GetGameState(gameID string) (GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) HandleMove(gameID string, playerID string, from, to string) error {
	return gs.gameManager.MakeMove(gameID, playerID, from, to)
}

func (gs *GameService) Undo(gameID string, playerID string) error {
	return gs.gameManager.Undo(gameID, playerID)
}

func (gs *GameService) Reset(gameID string, playerID string) error {
	return gs.gameManager.Reset(gameID, playerID)
}

func (gs *GameService) Hint(gameID string) (model.Ply, engine.Stats, error) {
	return gs.gameManager.Hint(gameID)
}

func (gs *GameService) GetGame(gameID string) (*Game, error) {
	return gs.gameManager.GetGame(gameID)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn *websocket.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}
