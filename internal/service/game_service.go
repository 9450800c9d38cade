package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/benbeisheim/dama-backend/internal/ai"
	"github.com/benbeisheim/dama-backend/internal/checkers"
	"github.com/benbeisheim/dama-backend/internal/config"
	"github.com/benbeisheim/dama-backend/internal/model"
	"github.com/benbeisheim/dama-backend/internal/profile"
	"github.com/benbeisheim/dama-backend/internal/ws"
)

// Advisor produces a short coaching tip for side.
type Advisor interface {
	Advice(ctx context.Context, b checkers.Board, side checkers.Side) (string, error)
}

type GameService struct {
	gameManager *GameManager
	profiles    *profile.Store
	advisor     Advisor

	aiDepth    int
	hintDepth  int
	aiTimeout  time.Duration
	aiMaxNodes int

	log     zerolog.Logger
	engines sync.WaitGroup
}

func NewGameService(gameManager *GameManager, profiles *profile.Store, advisor Advisor, cfg config.Config, log zerolog.Logger) *GameService {
	return &GameService{
		gameManager: gameManager,
		profiles:    profiles,
		advisor:     advisor,
		aiDepth:     cfg.AIDepth,
		hintDepth:   cfg.HintDepth,
		aiTimeout:   cfg.AITimeout,
		aiMaxNodes:  cfg.AIMaxNodes,
		log:         log.With().Str("component", "game_service").Logger(),
	}
}

// CreateGame opens a game in mode and seats its creator.
func (gs *GameService) CreateGame(playerID string, mode model.GameMode) (string, checkers.Side, error) {
	game, err := gs.gameManager.CreateGame(mode)
	if err != nil {
		return "", checkers.NoSide, fmt.Errorf("failed to create game: %w", err)
	}
	side, err := game.AddPlayer(playerID)
	if err != nil {
		return "", checkers.NoSide, err
	}
	gs.log.Info().Str("game", game.ID).Str("mode", string(mode)).Str("player", playerID).Msg("game created")
	return game.ID, side, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (checkers.Side, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return checkers.NoSide, err
	}
	side, err := game.AddPlayer(playerID)
	if err != nil {
		return checkers.NoSide, err
	}
	game.BroadcastState()
	return side, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) {
	gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gs *GameService) LegalMoves(gameID string, from checkers.Position) ([]checkers.Move, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if !from.Valid() {
		return nil, model.ErrOutOfBounds
	}
	return game.LegalMovesFrom(from), nil
}

// HandleMove plays a player's move, pushes the new state to observers and
// hands the turn to the engine when it is due.
func (gs *GameService) HandleMove(gameID string, playerID string, req model.MoveRequest) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	state, err := game.MakeMove(playerID, req)
	if err != nil {
		return state, err
	}
	game.BroadcastState()
	gs.reportResult(game)
	if gs.engineToMove(game, state) {
		gs.startEngine(game)
		state = game.GetState()
	}
	return state, nil
}

func (gs *GameService) Undo(gameID string, playerID string) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	state, err := game.Undo(playerID)
	if err != nil {
		return state, err
	}
	game.BroadcastState()
	return state, nil
}

// Reset restarts the game and tells observers with a reset message.
func (gs *GameService) Reset(gameID string, playerID string) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	state, err := game.Reset(playerID)
	if err != nil {
		return state, err
	}
	msg, err := ws.NewMessage(ws.MessageTypeReset, state)
	if err != nil {
		return state, err
	}
	game.Broadcast(msg)
	return state, nil
}

// Resign ends the game in favour of the resigning player's opponent.
func (gs *GameService) Resign(gameID string, playerID string) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	side, ok := game.SideOf(playerID)
	if !ok {
		return game.GetState(), model.ErrNotInGame
	}
	if game.Mode == model.ModePVP {
		side = game.GetState().ToMove
	}
	state := game.Resign(side)
	game.BroadcastState()
	gs.reportResult(game)
	return state, nil
}

// Hint suggests a move for the side to move, or nil when there is none.
func (gs *GameService) Hint(gameID string) (*checkers.Move, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	state := game.GetState()
	if state.Winner != checkers.NoSide {
		return nil, nil
	}
	res := ai.Search(state.Board, state.ToMove, gs.hintDepth, state.MustContinueFrom, ai.Options{MaxNodes: gs.aiMaxNodes})
	if !res.Found {
		return nil, nil
	}
	return &res.Move, nil
}

// Advice asks the advisor for a tip for the player's side, or for the side
// to move when the caller is not seated.
func (gs *GameService) Advice(ctx context.Context, gameID string, playerID string) (string, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return "", err
	}
	state := game.GetState()
	side, ok := game.SideOf(playerID)
	if !ok || game.Mode == model.ModePVP {
		side = state.ToMove
	}
	return gs.advisor.Advice(ctx, state.Board, side)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

// SendTo writes msg to one player's observer of a game.
func (gs *GameService) SendTo(gameID string, playerID string, msg ws.Message) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Send(playerID, msg)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}

// Wait blocks until every running engine turn has finished.
func (gs *GameService) Wait() {
	gs.engines.Wait()
}

func (gs *GameService) engineToMove(game *model.Game, state model.GameState) bool {
	if game.Mode != model.ModePVAI || state.Winner != checkers.NoSide {
		return false
	}
	return state.ToMove == checkers.Far && state.Players.Far.IsAI
}

func (gs *GameService) startEngine(game *model.Game) {
	game.SetAIThinking(true)
	game.BroadcastState()
	gs.engines.Add(1)
	go gs.playEngine(game)
}

// playEngine moves for the engine until the turn passes back to the human,
// playing every continuation of a capture chain.
func (gs *GameService) playEngine(game *model.Game) {
	defer gs.engines.Done()
	defer func() {
		game.SetAIThinking(false)
		game.BroadcastState()
	}()

	for {
		state := game.GetState()
		if !gs.engineToMove(game, state) {
			return
		}
		move, ok := gs.engineMove(state)
		if !ok {
			return
		}
		if _, err := game.MakeMove(model.AIPlayerID, model.MoveRequest{From: move.From, To: move.To}); err != nil {
			gs.log.Warn().Err(err).Str("game", game.ID).Str("move", move.Notation()).Msg("engine move rejected")
			return
		}
		game.BroadcastState()
		gs.reportResult(game)
	}
}

// engineMove searches within the configured time budget. Past the budget it
// falls back to the first legal move.
func (gs *GameService) engineMove(state model.GameState) (checkers.Move, bool) {
	done := make(chan ai.Result, 1)
	go func() {
		done <- ai.Search(state.Board, state.ToMove, gs.aiDepth, state.MustContinueFrom, ai.Options{MaxNodes: gs.aiMaxNodes})
	}()

	timeout := gs.aiTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		gs.log.Debug().Int("nodes", res.Nodes).Float64("score", res.Score).Str("move", res.Move.Notation()).Msg("engine searched")
		return res.Move, res.Found
	case <-timer.C:
		gs.log.Warn().Dur("timeout", timeout).Msg("engine search timed out, playing first legal move")
		moves := checkers.LegalMoves(state.Board, state.ToMove, state.MustContinueFrom)
		if len(moves) == 0 {
			return checkers.Move{}, false
		}
		return moves[0], true
	}
}

// reportResult credits a finished game to the players' profiles once.
func (gs *GameService) reportResult(game *model.Game) {
	res, ok := game.TakeResult()
	if !ok {
		return
	}
	switch res.Mode {
	case model.ModePVAI:
		gs.record(res.Near, res.Winner == checkers.Near)
	case model.ModeOnline:
		gs.record(res.Near, res.Winner == checkers.Near)
		gs.record(res.Far, res.Winner == checkers.Far)
	case model.ModePVP:
		if res.Winner == checkers.Near {
			gs.record(res.Near, true)
		}
	}
}

func (gs *GameService) record(playerID string, won bool) {
	if playerID == "" || playerID == model.AIPlayerID {
		return
	}
	p, gained := gs.profiles.RecordResult(playerID, won)
	gs.log.Info().Str("player", playerID).Bool("won", won).Int("xp_gained", gained).Int("level", p.Level).Msg("result recorded")
}
