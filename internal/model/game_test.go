package model

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/benbeisheim/dama-backend/internal/checkers"
	"github.com/benbeisheim/dama-backend/internal/ws"
)

func pos(row, col int) checkers.Position {
	return checkers.Position{Row: row, Col: col}
}

func newTestGame(mode GameMode) *Game {
	return NewGame("g1", mode, 10*time.Minute, zerolog.Nop())
}

func TestAddPlayerSeatsByMode(t *testing.T) {
	g := newTestGame(ModeOnline)
	side, err := g.AddPlayer("alice")
	if err != nil || side != checkers.Near {
		t.Fatalf("expected alice on near, got %v %v", side, err)
	}
	side, err = g.AddPlayer("bob")
	if err != nil || side != checkers.Far {
		t.Fatalf("expected bob on far, got %v %v", side, err)
	}
	if side, _ := g.AddPlayer("alice"); side != checkers.Near {
		t.Fatalf("expected rejoin to keep near, got %v", side)
	}
	if _, err := g.AddPlayer("carol"); !errors.Is(err, ErrGameFull) {
		t.Fatalf("expected ErrGameFull, got %v", err)
	}
	if g.CanSpectate() {
		t.Fatalf("expected full game to refuse spectators")
	}
}

func TestEngineHoldsFarSeat(t *testing.T) {
	g := newTestGame(ModePVAI)
	st := g.GetState()
	if st.Players.Far.ID != AIPlayerID || !st.Players.Far.IsAI {
		t.Fatalf("expected engine on far, got %+v", st.Players.Far)
	}
	if side, _ := g.AddPlayer("alice"); side != checkers.Near {
		t.Fatalf("expected alice on near, got %v", side)
	}
}

func TestHotSeatCreatorMovesBothSides(t *testing.T) {
	g := newTestGame(ModePVP)
	g.AddPlayer("alice")
	if _, err := g.MakeMove("alice", MoveRequest{From: pos(5, 3), To: pos(4, 3)}); err != nil {
		t.Fatalf("near move: %v", err)
	}
	st, err := g.MakeMove("alice", MoveRequest{From: pos(2, 3), To: pos(3, 3)})
	if err != nil {
		t.Fatalf("far move: %v", err)
	}
	if st.ToMove != checkers.Near || len(st.MoveHistory) != 2 {
		t.Fatalf("expected near to move after two plies, got %v with %d plies", st.ToMove, len(st.MoveHistory))
	}
}

func TestMakeMoveRejections(t *testing.T) {
	g := newTestGame(ModeOnline)
	g.AddPlayer("alice")
	g.AddPlayer("bob")

	cases := []struct {
		name   string
		player string
		req    MoveRequest
		want   error
	}{
		{"stranger", "mallory", MoveRequest{From: pos(5, 0), To: pos(4, 0)}, ErrNotInGame},
		{"wrong turn", "bob", MoveRequest{From: pos(2, 0), To: pos(3, 0)}, ErrNotYourTurn},
		{"off board", "alice", MoveRequest{From: pos(5, 0), To: pos(8, 0)}, ErrOutOfBounds},
		{"backward", "alice", MoveRequest{From: pos(6, 0), To: pos(7, 0)}, ErrIllegalMove},
		{"blocked", "alice", MoveRequest{From: pos(6, 0), To: pos(5, 0)}, ErrIllegalMove},
	}
	for _, tc := range cases {
		st, err := g.MakeMove(tc.player, tc.req)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if len(st.MoveHistory) != 0 || st.ToMove != checkers.Near {
			t.Fatalf("%s: rejected move changed state", tc.name)
		}
	}
}

func TestMoveSwitchesTurnAndRecordsPly(t *testing.T) {
	g := newTestGame(ModeOnline)
	g.AddPlayer("alice")
	g.AddPlayer("bob")

	st, err := g.MakeMove("alice", MoveRequest{From: pos(5, 4), To: pos(4, 4)})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if st.ToMove != checkers.Far {
		t.Fatalf("expected far to move, got %v", st.ToMove)
	}
	if st.Sound != "move" {
		t.Fatalf("expected move sound, got %q", st.Sound)
	}
	if len(st.MoveHistory) != 1 || st.MoveHistory[0].Notation != "e3-e4" {
		t.Fatalf("expected e3-e4 in history, got %+v", st.MoveHistory)
	}
	if st.LastMove == nil || st.LastMove.To != pos(4, 4) {
		t.Fatalf("expected last move to (4,4), got %+v", st.LastMove)
	}
}

func chainBoard() checkers.Board {
	return checkers.EmptyBoard().
		With(pos(4, 0), checkers.Piece{Side: checkers.Near}).
		With(pos(7, 7), checkers.Piece{Side: checkers.Near}).
		With(pos(3, 0), checkers.Piece{Side: checkers.Far}).
		With(pos(1, 0), checkers.Piece{Side: checkers.Far}).
		With(pos(0, 7), checkers.Piece{Side: checkers.Far})
}

func TestCaptureChainKeepsTurn(t *testing.T) {
	g := newTestGame(ModePVP)
	g.AddPlayer("alice")
	g.state.Board = chainBoard()

	if moves := g.LegalMovesFrom(pos(7, 7)); len(moves) != 0 {
		t.Fatalf("expected forced capture to lock out (7,7), got %+v", moves)
	}

	st, err := g.MakeMove("alice", MoveRequest{From: pos(4, 0), To: pos(2, 0)})
	if err != nil {
		t.Fatalf("first jump: %v", err)
	}
	if st.ToMove != checkers.Near || st.MustContinueFrom == nil || *st.MustContinueFrom != pos(2, 0) {
		t.Fatalf("expected near to continue from (2,0), got %v %v", st.ToMove, st.MustContinueFrom)
	}
	if !st.MoveHistory[0].Continues || st.Sound != "capture" {
		t.Fatalf("expected continuing capture ply, got %+v sound %q", st.MoveHistory[0], st.Sound)
	}
	if _, err := g.MakeMove("alice", MoveRequest{From: pos(7, 7), To: pos(6, 7)}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected other pieces locked during a chain, got %v", err)
	}

	st, err = g.MakeMove("alice", MoveRequest{From: pos(2, 0), To: pos(0, 0)})
	if err != nil {
		t.Fatalf("second jump: %v", err)
	}
	if st.ToMove != checkers.Far || st.MustContinueFrom != nil {
		t.Fatalf("expected turn to pass after the chain, got %v %v", st.ToMove, st.MustContinueFrom)
	}
	if !st.Board.At(pos(0, 0)).King || st.Sound != "promote" {
		t.Fatalf("expected promotion on the back row, got %+v sound %q", st.Board.At(pos(0, 0)), st.Sound)
	}
}

func TestCapturingLastPieceEndsGame(t *testing.T) {
	g := newTestGame(ModeOnline)
	g.AddPlayer("alice")
	g.AddPlayer("bob")
	g.state.Board = checkers.EmptyBoard().
		With(pos(4, 3), checkers.Piece{Side: checkers.Near}).
		With(pos(4, 4), checkers.Piece{Side: checkers.Far})

	st, err := g.MakeMove("alice", MoveRequest{From: pos(4, 3), To: pos(4, 5)})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if st.Winner != checkers.Near {
		t.Fatalf("expected near to win, got %v", st.Winner)
	}
	if _, err := g.MakeMove("bob", MoveRequest{From: pos(0, 0), To: pos(1, 0)}); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	res, ok := g.TakeResult()
	if !ok || res.Winner != checkers.Near || res.Near != "alice" || res.Far != "bob" {
		t.Fatalf("unexpected result %+v %v", res, ok)
	}
	if _, ok := g.TakeResult(); ok {
		t.Fatalf("expected result to be reported once")
	}
}

func TestUndoAgainstEngineRewindsToHumanTurn(t *testing.T) {
	g := newTestGame(ModePVAI)
	g.AddPlayer("alice")
	if _, err := g.MakeMove("alice", MoveRequest{From: pos(5, 0), To: pos(4, 0)}); err != nil {
		t.Fatalf("human move: %v", err)
	}
	if _, err := g.MakeMove(AIPlayerID, MoveRequest{From: pos(2, 0), To: pos(3, 0)}); err != nil {
		t.Fatalf("engine move: %v", err)
	}

	st, err := g.Undo("alice")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if st.ToMove != checkers.Near || len(st.MoveHistory) != 0 {
		t.Fatalf("expected a fresh near turn, got %v with %d plies", st.ToMove, len(st.MoveHistory))
	}
	if st.Board != checkers.NewBoard() {
		t.Fatalf("expected the starting board back")
	}
	if _, err := g.Undo("alice"); !errors.Is(err, ErrUndoUnavailable) {
		t.Fatalf("expected ErrUndoUnavailable with empty history, got %v", err)
	}
}

func TestUndoRefusedWhileEngineThinks(t *testing.T) {
	g := newTestGame(ModePVAI)
	g.AddPlayer("alice")
	g.MakeMove("alice", MoveRequest{From: pos(5, 0), To: pos(4, 0)})
	g.SetAIThinking(true)
	if _, err := g.Undo("alice"); !errors.Is(err, ErrUndoUnavailable) {
		t.Fatalf("expected ErrUndoUnavailable, got %v", err)
	}
}

func TestUndoRestoresWinnerAndContinuation(t *testing.T) {
	g := newTestGame(ModePVP)
	g.AddPlayer("alice")
	g.state.Board = chainBoard()
	g.MakeMove("alice", MoveRequest{From: pos(4, 0), To: pos(2, 0)})

	st, err := g.Undo("alice")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if st.MustContinueFrom != nil || st.Board != chainBoard() {
		t.Fatalf("expected pre-capture state, got %+v", st.MustContinueFrom)
	}
}

func TestUndoUnavailableOnline(t *testing.T) {
	g := newTestGame(ModeOnline)
	g.AddPlayer("alice")
	g.AddPlayer("bob")
	g.MakeMove("alice", MoveRequest{From: pos(5, 0), To: pos(4, 0)})
	if _, err := g.Undo("alice"); !errors.Is(err, ErrUndoUnavailable) {
		t.Fatalf("expected ErrUndoUnavailable, got %v", err)
	}
}

func TestResetKeepsPlayers(t *testing.T) {
	g := newTestGame(ModeOnline)
	g.AddPlayer("alice")
	g.AddPlayer("bob")
	g.MakeMove("alice", MoveRequest{From: pos(5, 0), To: pos(4, 0)})

	st, err := g.Reset("bob")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if st.Board != checkers.NewBoard() || len(st.MoveHistory) != 0 || st.ToMove != checkers.Near {
		t.Fatalf("expected a fresh game")
	}
	if st.Players.Near.ID != "alice" || st.Players.Far.ID != "bob" {
		t.Fatalf("expected players kept, got %+v", st.Players)
	}
	if _, err := g.Reset("mallory"); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("expected ErrNotInGame, got %v", err)
	}
}

func TestResignAwardsOpponent(t *testing.T) {
	g := newTestGame(ModeOnline)
	g.AddPlayer("alice")
	g.AddPlayer("bob")
	st := g.Resign(checkers.Far)
	if st.Winner != checkers.Near {
		t.Fatalf("expected near to win on resignation, got %v", st.Winner)
	}
}

type fakeConn struct {
	mu     sync.Mutex
	sent   []ws.Message
	closed bool
	fail   bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.sent = append(c.sent, v.(ws.Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func TestRegisterConnectionSendsState(t *testing.T) {
	g := newTestGame(ModeOnline)
	g.AddPlayer("alice")
	conn := &fakeConn{}
	if err := g.RegisterConnection("alice", conn); err != nil {
		t.Fatalf("register: %v", err)
	}
	if conn.count() != 1 || conn.sent[0].Type != ws.MessageTypeGameState {
		t.Fatalf("expected initial game state, got %+v", conn.sent)
	}

	g.BroadcastState()
	if conn.count() != 2 {
		t.Fatalf("expected broadcast to reach alice, got %d messages", conn.count())
	}
}

func TestRegisterConnectionReplacesOld(t *testing.T) {
	g := newTestGame(ModeOnline)
	g.AddPlayer("alice")
	first, second := &fakeConn{}, &fakeConn{}
	g.RegisterConnection("alice", first)
	g.RegisterConnection("alice", second)
	if !first.closed {
		t.Fatalf("expected the old connection to be closed")
	}
	g.UnregisterConnection("alice", first)
	if g.ConnectionCount() != 1 {
		t.Fatalf("expected stale unregister to be ignored")
	}
}

func TestRegisterConnectionRejectsStrangersWhenFull(t *testing.T) {
	g := newTestGame(ModeOnline)
	g.AddPlayer("alice")
	g.AddPlayer("bob")
	if err := g.RegisterConnection("mallory", &fakeConn{}); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestBroadcastDropsFailedObservers(t *testing.T) {
	g := newTestGame(ModeOnline)
	g.AddPlayer("alice")
	g.AddPlayer("bob")
	good, bad := &fakeConn{}, &fakeConn{}
	g.RegisterConnection("alice", good)
	g.RegisterConnection("bob", bad)
	bad.mu.Lock()
	bad.fail = true
	bad.mu.Unlock()

	g.BroadcastState()
	if g.ConnectionCount() != 1 {
		t.Fatalf("expected failed observer dropped, got %d", g.ConnectionCount())
	}
}
