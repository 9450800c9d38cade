package ws

import (
	"encoding/json"
	"testing"

	"github.com/benbeisheim/dama-backend/internal/checkers"
)

func TestNewMessageWithoutPayload(t *testing.T) {
	msg, err := NewMessage(MessageTypeUndo, nil)
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	raw, _ := json.Marshal(msg)
	if string(raw) != `{"type":"undo"}` {
		t.Fatalf("expected a bare undo record, got %s", raw)
	}
}

func TestMovePayloadWireShape(t *testing.T) {
	msg, err := NewMessage(MessageTypeMove, MovePayload{
		From: checkers.Position{Row: 5, Col: 2},
		To:   checkers.Position{Row: 4, Col: 2},
	})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	want := `{"from":{"row":5,"col":2},"to":{"row":4,"col":2}}`
	if string(msg.Payload) != want {
		t.Fatalf("expected %s, got %s", want, msg.Payload)
	}
}
