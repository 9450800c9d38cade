// Command bot joins an online dama game and plays it with the search engine.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/dama-backend/internal/ai"
	"github.com/benbeisheim/dama-backend/internal/checkers"
	"github.com/benbeisheim/dama-backend/internal/logging"
	"github.com/benbeisheim/dama-backend/internal/peer"
	"github.com/benbeisheim/dama-backend/internal/ws"
)

func main() {
	server := flag.String("server", "http://localhost:3000", "dama server base URL")
	gameID := flag.String("game", "", "game to join; empty creates a new online game")
	player := flag.String("player", "dama-bot", "player id to play as")
	depth := flag.Int("depth", 4, "search depth")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logging.New(*level, true)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *server, *gameID, *player, *depth, log); err != nil {
		log.Error().Err(err).Msg("bot stopped")
		os.Exit(1)
	}
}

type seatResponse struct {
	GameID string        `json:"game_id"`
	Side   checkers.Side `json:"side"`
	Error  string        `json:"error"`
}

// seat creates or joins a game over REST and returns the game id and side.
func seat(server, gameID, player string) (string, checkers.Side, error) {
	base := strings.TrimRight(server, "/")
	var agent *fiber.Agent
	if gameID == "" {
		agent = fiber.Post(base + "/api/game/create")
		agent.JSON(map[string]string{"mode": "online"})
	} else {
		agent = fiber.Post(base + "/api/game/join/" + gameID)
	}
	agent.Set("X-Player-ID", player)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", checkers.NoSide, errs[0]
	}
	var resp seatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", checkers.NoSide, fmt.Errorf("decode seat response: %w", err)
	}
	if code != fiber.StatusOK {
		return "", checkers.NoSide, fmt.Errorf("seat: status %d: %s", code, resp.Error)
	}
	if resp.GameID != "" {
		gameID = resp.GameID
	}
	return gameID, resp.Side, nil
}

func run(ctx context.Context, server, gameID, player string, depth int, log zerolog.Logger) error {
	gameID, side, err := seat(server, gameID, player)
	if err != nil {
		return err
	}
	log = log.With().Str("game", gameID).Stringer("side", side).Logger()
	log.Info().Msg("seated")

	client, err := peer.Dial(ctx, server, gameID, player, log)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		client.Close()
	}()

	played := -1
	for {
		msg, err := client.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if msg.Type == ws.MessageTypeError {
			text, _ := peer.DecodeError(msg)
			log.Warn().Str("error", text).Msg("server rejected a message")
			played = -1
			continue
		}
		state, err := peer.DecodeState(msg)
		if err != nil {
			continue
		}
		if state.Winner != checkers.NoSide {
			log.Info().Stringer("winner", state.Winner).Msg("game over")
			return nil
		}
		// the same position is pushed more than once
		if state.ToMove != side || len(state.MoveHistory) == played {
			continue
		}

		move, ok := ai.BestMove(state.Board, side, depth, state.MustContinueFrom)
		if !ok {
			continue
		}
		log.Info().Str("move", move.Notation()).Msg("playing")
		if err := client.SendMove(move.From, move.To); err != nil {
			return err
		}
		played = len(state.MoveHistory)
	}
}
