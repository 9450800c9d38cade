package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"

	"github.com/benbeisheim/dama-backend/internal/checkers"
)

// The Game struct owns a single game's session: board, turn, continuation,
// undo history, clocks and its observers.
type Game struct {
	ID          string
	Mode        GameMode
	mu          sync.Mutex
	state       GameState
	history     []snapshot
	result      *Result
	reported    bool
	connections *GameConnections
	clocks      map[checkers.Side]*Clock
	log         zerolog.Logger
}

type GameState struct {
	Sound            string             `json:"sound"`
	Board            checkers.Board     `json:"board"`
	ToMove           checkers.Side      `json:"toMove"`
	Mode             GameMode           `json:"mode"`
	MustContinueFrom *checkers.Position `json:"mustContinueFrom"`
	Winner           checkers.Side      `json:"winner"`
	MoveHistory      []Ply              `json:"moveHistory"`
	LastMove         *checkers.Move     `json:"lastMove"`
	AIThinking       bool               `json:"aiThinking"`
	Players          Players            `json:"players"`
}

// snapshot is what undo restores.
type snapshot struct {
	board            checkers.Board
	toMove           checkers.Side
	mustContinueFrom *checkers.Position
	winner           checkers.Side
	lastMove         *checkers.Move
	sound            string
	historyLen       int
}

func NewGame(id string, mode GameMode, clockTime time.Duration, log zerolog.Logger) *Game {
	g := &Game{
		ID:          id,
		Mode:        mode,
		state:       newGameState(mode),
		connections: NewGameConnections(),
		clocks: map[checkers.Side]*Clock{
			checkers.Near: NewClock(clockTime),
			checkers.Far:  NewClock(clockTime),
		},
		log: log.With().Str("game", id).Logger(),
	}
	if mode == ModePVAI {
		g.state.Players.Far.ID = AIPlayerID
		g.state.Players.Far.IsAI = true
	}
	g.refreshClocksLocked()
	return g
}

func newGameState(mode GameMode) GameState {
	return GameState{
		Board:       checkers.NewBoard(),
		ToMove:      checkers.Near,
		Mode:        mode,
		MoveHistory: make([]Ply, 0),
		Players: Players{
			Near: ClientPlayer{Side: checkers.Near},
			Far:  ClientPlayer{Side: checkers.Far},
		},
	}
}

// AddPlayer seats playerID and returns its side. The creator of a hot-seat
// game holds both seats; rejoining returns the seat already held.
func (g *Game) AddPlayer(playerID string) (checkers.Side, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if side, ok := g.sideOfLocked(playerID); ok {
		return side, nil
	}
	if g.state.Players.Near.ID == "" {
		g.state.Players.Near.ID = playerID
		if g.Mode == ModePVP {
			g.state.Players.Far.ID = playerID
		}
		g.log.Info().Str("player", playerID).Stringer("side", checkers.Near).Msg("player seated")
		return checkers.Near, nil
	}
	if g.state.Players.Far.ID == "" {
		g.state.Players.Far.ID = playerID
		g.log.Info().Str("player", playerID).Stringer("side", checkers.Far).Msg("player seated")
		return checkers.Far, nil
	}
	return checkers.NoSide, ErrGameFull
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.stateLocked()
}

func (g *Game) stateLocked() GameState {
	g.refreshClocksLocked()
	st := g.state
	st.MoveHistory = slices.Clone(g.state.MoveHistory)
	return st
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.sideOfLocked(playerID)
	return ok
}

// SideOf returns the side playerID sits on. Hot-seat creators report Near.
func (g *Game) SideOf(playerID string) (checkers.Side, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.sideOfLocked(playerID)
}

func (g *Game) sideOfLocked(playerID string) (checkers.Side, bool) {
	if playerID == "" {
		return checkers.NoSide, false
	}
	if g.state.Players.Near.ID == playerID {
		return checkers.Near, true
	}
	if g.state.Players.Far.ID == playerID {
		return checkers.Far, true
	}
	return checkers.NoSide, false
}

func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.canSpectateLocked()
}

func (g *Game) canSpectateLocked() bool {
	return g.state.Players.Near.ID == "" || g.state.Players.Far.ID == ""
}

// LegalMovesFrom lists the moves of the side to move that start on pos.
func (g *Game) LegalMovesFrom(pos checkers.Position) []checkers.Move {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Winner != checkers.NoSide || !pos.Valid() {
		return []checkers.Move{}
	}
	out := make([]checkers.Move, 0)
	for _, m := range checkers.LegalMoves(g.state.Board, g.state.ToMove, g.state.MustContinueFrom) {
		if m.From == pos {
			out = append(out, m)
		}
	}
	return out
}

// MakeMove resolves req against the legal moves of the side to move and plays it.
func (g *Game) MakeMove(playerID string, req MoveRequest) (GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Winner != checkers.NoSide {
		return g.stateLocked(), ErrGameOver
	}
	if _, ok := g.sideOfLocked(playerID); !ok {
		return g.stateLocked(), ErrNotInGame
	}
	if g.state.Players.seat(g.state.ToMove).ID != playerID {
		return g.stateLocked(), ErrNotYourTurn
	}
	if !req.From.Valid() || !req.To.Valid() {
		return g.stateLocked(), ErrOutOfBounds
	}

	legal := checkers.LegalMoves(g.state.Board, g.state.ToMove, g.state.MustContinueFrom)
	i := slices.IndexFunc(legal, func(m checkers.Move) bool {
		return m.From == req.From && m.To == req.To
	})
	if i < 0 {
		return g.stateLocked(), ErrIllegalMove
	}
	if err := g.applyLocked(legal[i]); err != nil {
		return g.stateLocked(), err
	}
	return g.stateLocked(), nil
}

func (g *Game) applyLocked(m checkers.Move) error {
	next, promoted, err := checkers.Apply(g.state.Board, m)
	if err != nil {
		return fmt.Errorf("apply %s: %w", m.Notation(), err)
	}
	g.history = append(g.history, g.snapshotLocked())

	mover := g.state.ToMove
	g.state.Board = next
	g.state.LastMove = &m
	switch {
	case promoted:
		g.state.Sound = "promote"
	case m.IsCapture:
		g.state.Sound = "capture"
	default:
		g.state.Sound = "move"
	}

	ply := Ply{Side: mover, Move: m, Notation: m.Notation(), Promoted: promoted}
	if m.IsCapture && checkers.CanContinue(next, m.To) {
		to := m.To
		g.state.MustContinueFrom = &to
		ply.Continues = true
	} else {
		g.state.MustContinueFrom = nil
		g.switchTurnLocked()
	}
	g.state.MoveHistory = append(g.state.MoveHistory, ply)

	g.log.Debug().Stringer("side", mover).Str("move", ply.Notation).Bool("continues", ply.Continues).Msg("move applied")

	if winner, over := checkers.Winner(next, g.state.ToMove); over {
		g.finishLocked(winner)
	}
	return nil
}

func (g *Game) switchTurnLocked() {
	g.clocks[g.state.ToMove].Stop()
	g.state.ToMove = g.state.ToMove.Opponent()
	g.clocks[g.state.ToMove].Start()
}

func (g *Game) finishLocked(winner checkers.Side) {
	for _, c := range g.clocks {
		c.Stop()
	}
	g.state.Winner = winner
	g.state.MustContinueFrom = nil
	g.result = &Result{
		GameID: g.ID,
		Mode:   g.Mode,
		Winner: winner,
		Near:   g.state.Players.Near.ID,
		Far:    g.state.Players.Far.ID,
	}
	g.reported = false
	g.log.Info().Stringer("winner", winner).Int("plies", len(g.state.MoveHistory)).Msg("game finished")
}

// Resign ends the game in favour of side's opponent.
func (g *Game) Resign(side checkers.Side) GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Winner == checkers.NoSide {
		g.finishLocked(side.Opponent())
	}
	return g.stateLocked()
}

// TakeResult returns the result of a finished game once.
func (g *Game) TakeResult() (Result, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.result == nil || g.reported {
		return Result{}, false
	}
	g.reported = true
	return *g.result, true
}

func (g *Game) SetAIThinking(thinking bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state.AIThinking = thinking
}

func (g *Game) snapshotLocked() snapshot {
	return snapshot{
		board:            g.state.Board,
		toMove:           g.state.ToMove,
		mustContinueFrom: g.state.MustContinueFrom,
		winner:           g.state.Winner,
		lastMove:         g.state.LastMove,
		sound:            g.state.Sound,
		historyLen:       len(g.state.MoveHistory),
	}
}

func (g *Game) restoreLocked(s snapshot) {
	if g.state.ToMove != s.toMove {
		g.clocks[g.state.ToMove].Stop()
	}
	g.state.Board = s.board
	g.state.ToMove = s.toMove
	g.state.MustContinueFrom = s.mustContinueFrom
	g.state.Winner = s.winner
	g.state.LastMove = s.lastMove
	g.state.Sound = s.sound
	g.state.MoveHistory = g.state.MoveHistory[:s.historyLen]
}

// Undo takes back the last move. Against the engine it rewinds to the
// human's previous turn. Online games cannot be undone.
func (g *Game) Undo(playerID string) (GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.sideOfLocked(playerID); !ok {
		return g.stateLocked(), ErrNotInGame
	}
	if g.Mode == ModeOnline || g.state.AIThinking || len(g.history) == 0 {
		return g.stateLocked(), ErrUndoUnavailable
	}

	for len(g.history) > 0 {
		last := g.history[len(g.history)-1]
		g.history = g.history[:len(g.history)-1]
		g.restoreLocked(last)
		if g.Mode != ModePVAI || !g.state.Players.seat(g.state.ToMove).IsAI {
			break
		}
	}
	if g.state.Winner == checkers.NoSide {
		g.result = nil
		if len(g.state.MoveHistory) > 0 {
			g.clocks[g.state.ToMove].Start()
		}
	}
	g.log.Info().Str("player", playerID).Int("plies", len(g.state.MoveHistory)).Msg("move undone")
	return g.stateLocked(), nil
}

// Reset starts the game over with the same players.
func (g *Game) Reset(playerID string) (GameState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.sideOfLocked(playerID); !ok {
		return g.stateLocked(), ErrNotInGame
	}
	players := g.state.Players
	g.state = newGameState(g.Mode)
	g.state.Players = players
	g.history = nil
	g.result = nil
	g.reported = false
	for _, c := range g.clocks {
		c.Reset()
	}
	g.log.Info().Str("player", playerID).Msg("game reset")
	return g.stateLocked(), nil
}

func (g *Game) refreshClocksLocked() {
	g.state.Players.Near.TimeLeft = g.clocks[checkers.Near].Tenths()
	g.state.Players.Far.TimeLeft = g.clocks[checkers.Far].Tenths()
}
