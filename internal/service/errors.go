package service

import "errors"

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameExists      = errors.New("game already exists")
	ErrGameFull        = errors.New("game is full")
	ErrNotInGame       = errors.New("player not in game")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrGameOver        = errors.New("game is over")
	ErrEngineThinking  = errors.New("engine is thinking")
	ErrInvalidOptions  = errors.New("invalid game options")
	ErrDuplicateSocket = errors.New("connection already exists")
)
