package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/negachess-backend/internal/service"
	"github.com/benbeisheim/negachess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID, _ := c.Locals("wsGameID").(string)
	playerID, _ := c.Locals("wsPlayerID").(string)

	game, err := wsc.gameService.GetGame(gameID)
	if err != nil {
		log.Warnf("websocket for unknown game %s: %v", gameID, err)
		c.Close()
		return
	}
	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warnf("failed to register connection: %v", err)
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("game %s: read from player %s ended: %v", gameID, playerID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			game.SendError(c, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugf("game %s: %s from player %s rejected: %v", gameID, msg.Type, playerID, err)
			game.SendError(c, err)
		}
	}
}

// Handle different types of incoming messages
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return fmt.Errorf("malformed move: %w", err)
		}
		return wsc.gameService.HandleMove(gameID, playerID, move.From, move.To)
	case ws.MessageTypeUndo:
		return wsc.gameService.Undo(gameID, playerID)
	case ws.MessageTypeReset:
		return wsc.gameService.Reset(gameID, playerID)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}
