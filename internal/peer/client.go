// Package peer is the client side of remote play: it joins a game socket on
// a dama server and exchanges move, undo and reset records with it.
package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/dama-backend/internal/checkers"
	"github.com/benbeisheim/dama-backend/internal/model"
	"github.com/benbeisheim/dama-backend/internal/ws"
)

var ErrUnexpectedMessage = errors.New("unexpected message")

const writeWait = 5 * time.Second

type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
	log  zerolog.Logger
}

// GameURL builds the socket address of gameID from an http(s) or ws(s)
// server base URL.
func GameURL(serverURL, gameID, playerID string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/game/" + url.PathEscape(gameID)
	q := u.Query()
	q.Set("playerId", playerID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial opens the game socket as playerID.
func Dial(ctx context.Context, serverURL, gameID, playerID string, log zerolog.Logger) (*Client, error) {
	target, err := GameURL(serverURL, gameID, playerID)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("X-Player-ID", playerID)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", target, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{
		conn: conn,
		log:  log.With().Str("game", gameID).Str("player", playerID).Logger(),
	}, nil
}

func (c *Client) send(t ws.MessageType, payload any) error {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

func (c *Client) SendMove(from, to checkers.Position) error {
	c.log.Debug().Stringer("from", from).Stringer("to", to).Msg("sending move")
	return c.send(ws.MessageTypeMove, ws.MovePayload{From: from, To: to})
}

func (c *Client) SendUndo() error {
	return c.send(ws.MessageTypeUndo, nil)
}

func (c *Client) SendReset() error {
	return c.send(ws.MessageTypeReset, nil)
}

// ReadMessage blocks for the next record from the server.
func (c *Client) ReadMessage() (ws.Message, error) {
	var msg ws.Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		return ws.Message{}, err
	}
	return msg, nil
}

// DecodeState unpacks a gameState or reset record.
func DecodeState(msg ws.Message) (model.GameState, error) {
	if msg.Type != ws.MessageTypeGameState && msg.Type != ws.MessageTypeReset {
		return model.GameState{}, fmt.Errorf("%w: %s", ErrUnexpectedMessage, msg.Type)
	}
	var state model.GameState
	if err := json.Unmarshal(msg.Payload, &state); err != nil {
		return model.GameState{}, fmt.Errorf("decode state: %w", err)
	}
	return state, nil
}

// DecodeError unpacks an error record.
func DecodeError(msg ws.Message) (string, error) {
	if msg.Type != ws.MessageTypeError {
		return "", fmt.Errorf("%w: %s", ErrUnexpectedMessage, msg.Type)
	}
	var payload ws.ErrorPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return "", fmt.Errorf("decode error: %w", err)
	}
	return payload.Error, nil
}

// Close says goodbye and closes the socket.
func (c *Client) Close() error {
	c.mu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(writeWait))
	c.mu.Unlock()
	return c.conn.Close()
}
