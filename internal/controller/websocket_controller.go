package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/dama-backend/internal/model"
	"github.com/benbeisheim/dama-backend/internal/service"
	"github.com/benbeisheim/dama-backend/internal/ws"
)

var errUnknownMessage = errors.New("unknown message type")

type WebSocketController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewWebSocketController(gameService *service.GameService, log zerolog.Logger) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
		log:         log.With().Str("component", "websocket").Logger(),
	}
}

// HandleConnection serves one player's game socket: it registers the
// connection for state pushes and plays the player's inbound messages.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID, _ := c.Locals("wsGameID").(string)
	playerID, _ := c.Locals("wsPlayerID").(string)
	log := wsc.log.With().Str("game", gameID).Str("player", playerID).Logger()

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warn().Err(err).Msg("failed to register connection")
		if msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()}); merr == nil {
			c.WriteJSON(msg)
		}
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, c)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Msg("read error")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(gameID, playerID, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debug().Err(err).Str("type", string(msg.Type)).Msg("message rejected")
			wsc.sendError(gameID, playerID, err)
		}
	}
}

// handleMessage applies an inbound message. The resulting state reaches the
// sender through the game's broadcast.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return fmt.Errorf("malformed move: %w", err)
		}
		_, err := wsc.gameService.HandleMove(gameID, playerID, model.MoveRequest{From: move.From, To: move.To})
		return err

	case ws.MessageTypeReset:
		_, err := wsc.gameService.Reset(gameID, playerID)
		return err

	case ws.MessageTypeUndo:
		_, err := wsc.gameService.Undo(gameID, playerID)
		return err
	}
	return fmt.Errorf("%w: %s", errUnknownMessage, msg.Type)
}

func (wsc *WebSocketController) sendError(gameID, playerID string, cause error) {
	msg, err := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: cause.Error()})
	if err != nil {
		return
	}
	if err := wsc.gameService.SendTo(gameID, playerID, msg); err != nil {
		wsc.log.Debug().Err(err).Str("player", playerID).Msg("failed to send error")
	}
}

// HandleMatchmaking queues the player and pushes a matchFound message once
// paired. Closing the socket leaves the queue.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals("wsPlayerID").(string)
	log := wsc.log.With().Str("player", playerID).Logger()

	events := make(chan model.MatchFoundEvent, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, events)
	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		log.Warn().Err(err).Msg("failed to join matchmaking")
		wsc.gameService.UnregisterMatchmakingChannel(playerID, events)
		c.Close()
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-events:
		if !ok {
			// superseded by a newer matchmaking socket
			c.Close()
			return
		}
		msg, err := ws.NewMessage(ws.MessageTypeMatchFound, event)
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal match")
			return
		}
		if err := c.WriteJSON(msg); err != nil {
			log.Warn().Err(err).Msg("failed to send match")
		}
		c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match found"))
		c.Close()
	case <-closed:
		wsc.gameService.UnregisterMatchmakingChannel(playerID, events)
		wsc.gameService.LeaveMatchmaking(playerID)
	}
}
