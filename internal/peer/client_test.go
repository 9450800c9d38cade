package peer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/dama-backend/internal/checkers"
	"github.com/benbeisheim/dama-backend/internal/model"
	"github.com/benbeisheim/dama-backend/internal/ws"
)

// relay answers a move with a state showing it played, anything else with an error.
func relay(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/game/g1" || r.URL.Query().Get("playerId") != "alice" {
			http.Error(w, "bad target", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			var in ws.Message
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			var out ws.Message
			switch in.Type {
			case ws.MessageTypeMove:
				state := model.GameState{Board: checkers.NewBoard(), ToMove: checkers.Far, MoveHistory: []model.Ply{{Side: checkers.Near, Notation: "a3-a4"}}}
				out, _ = ws.NewMessage(ws.MessageTypeGameState, state)
			default:
				out, _ = ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: "unsupported"})
			}
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGameURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:3000":      "ws://localhost:3000/ws/game/g1?playerId=alice",
		"https://dama.example/base/": "wss://dama.example/base/ws/game/g1?playerId=alice",
	}
	for in, want := range cases {
		got, err := GameURL(in, "g1", "alice")
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
	if _, err := GameURL("ftp://x", "g1", "alice"); err == nil {
		t.Fatalf("expected an error for an unsupported scheme")
	}
}

func TestClientExchangesRecords(t *testing.T) {
	srv := relay(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	c, err := Dial(ctx, srv.URL, "g1", "alice", zerolog.Nop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if err := c.SendMove(checkers.Position{Row: 5, Col: 0}, checkers.Position{Row: 4, Col: 0}); err != nil {
		t.Fatalf("send move: %v", err)
	}
	msg, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	state, err := DecodeState(msg)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.ToMove != checkers.Far || len(state.MoveHistory) != 1 {
		t.Fatalf("expected far to move after one ply, got %v %d", state.ToMove, len(state.MoveHistory))
	}

	if err := c.SendUndo(); err != nil {
		t.Fatalf("send undo: %v", err)
	}
	msg, _ = c.ReadMessage()
	if _, err := DecodeState(msg); !errors.Is(err, ErrUnexpectedMessage) {
		t.Fatalf("expected ErrUnexpectedMessage, got %v", err)
	}
	text, err := DecodeError(msg)
	if err != nil || text != "unsupported" {
		t.Fatalf("expected the relay's error, got %q %v", text, err)
	}
}

func TestDialReportsRejection(t *testing.T) {
	srv := relay(t)
	_, err := Dial(context.Background(), srv.URL, "other", "alice", zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("expected a 400 rejection, got %v", err)
	}
}
