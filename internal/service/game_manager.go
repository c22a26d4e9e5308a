// service/game_manager.go
package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/negachess-backend/internal/config"
	"github.com/benbeisheim/negachess-backend/internal/engine"
	"github.com/benbeisheim/negachess-backend/internal/model"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type GameManager struct {
	games       map[string]*Game
	mu          sync.RWMutex
	depth       int
	maxDepth    int
	engineDelay time.Duration
}

func NewGameManager(cfg config.Config) *GameManager {
	return &GameManager{
		games:       make(map[string]*Game),
		depth:       cfg.SearchDepth,
		maxDepth:    cfg.MaxSearchDepth,
		engineDelay: cfg.EngineMoveDelay,
	}
}

func (gm *GameManager) CreateGame(gameID string, opts GameOptions) (*Game, error) {
	if opts.Depth == 0 {
		opts.Depth = gm.depth
	}
	if opts.Depth > gm.maxDepth {
		return nil, fmt.Errorf("%w: depth %d above limit %d", ErrInvalidOptions, opts.Depth, gm.maxDepth)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return nil, ErrGameExists
	}
	game, err := NewGame(gameID, opts, gm.engineDelay)
	if err != nil {
		return nil, err
	}
	gm.games[gameID] = game
	log.Infof("created game %s (mode %s, depth %d)", gameID, game.mode, game.depth)
	return game, nil
}

func (gm *GameManager) GetGame(gameID string) (*Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.NoColor, err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, from, to string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, from, to)
}

func (gm *GameManager) Undo(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Undo(playerID)
}

func (gm *GameManager) Reset(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Reset(playerID)
}

func (gm *GameManager) Hint(gameID string) (model.Ply, engine.Stats, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.Ply{}, engine.Stats{}, err
	}
	return game.Hint()
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn *websocket.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}
