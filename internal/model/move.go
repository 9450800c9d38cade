package model

import "github.com/benbeisheim/dama-backend/internal/checkers"

// MoveRequest is a client's chosen piece and destination.
type MoveRequest struct {
	From checkers.Position `json:"from"`
	To   checkers.Position `json:"to"`
}

type Ply struct {
	Side      checkers.Side `json:"side"`
	Move      checkers.Move `json:"move"`
	Notation  string        `json:"notation"`
	Promoted  bool          `json:"promoted"`
	Continues bool          `json:"continues"`
}

// Result describes a finished game.
type Result struct {
	GameID string
	Mode   GameMode
	Winner checkers.Side
	Near   string
	Far    string
}

// MatchFoundEvent tells a queued player which game and side they were paired into.
type MatchFoundEvent struct {
	GameID string        `json:"gameId"`
	Side   checkers.Side `json:"side"`
}
