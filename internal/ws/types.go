package ws

import (
	"encoding/json"

	"github.com/benbeisheim/dama-backend/internal/checkers"
)

// MessageType represents the different kinds of messages exchanged with clients
type MessageType string

const (
	MessageTypeMove       MessageType = "move"
	MessageTypeReset      MessageType = "reset"
	MessageTypeUndo       MessageType = "undo"
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message is the envelope of every websocket frame
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MovePayload carries a chosen move; the server resolves it against the legal list.
type MovePayload struct {
	From checkers.Position `json:"from"`
	To   checkers.Position `json:"to"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into a Message of type t.
func NewMessage(t MessageType, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}
