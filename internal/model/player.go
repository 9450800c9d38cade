package model

import (
	"fmt"

	"github.com/benbeisheim/dama-backend/internal/checkers"
)

// AIPlayerID occupies the engine's seat in player-vs-engine games.
const AIPlayerID = "engine"

type GameMode string

const (
	// ModePVP is a hot-seat game: the creator plays both sides.
	ModePVP GameMode = "pvp"
	// ModePVAI puts the creator on Near and the engine on Far.
	ModePVAI GameMode = "pvai"
	// ModeOnline seats two remote players.
	ModeOnline GameMode = "online"
)

func ParseGameMode(v string) (GameMode, error) {
	switch GameMode(v) {
	case ModePVP, ModePVAI, ModeOnline:
		return GameMode(v), nil
	case "":
		return ModePVAI, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, v)
}

type ClientPlayer struct {
	ID       string        `json:"name"`
	Side     checkers.Side `json:"side"`
	TimeLeft int           `json:"timeLeft"`
	IsAI     bool          `json:"isAi"`
}

type Players struct {
	Near ClientPlayer `json:"near"`
	Far  ClientPlayer `json:"far"`
}

func (p *Players) seat(side checkers.Side) *ClientPlayer {
	if side == checkers.Far {
		return &p.Far
	}
	return &p.Near
}
