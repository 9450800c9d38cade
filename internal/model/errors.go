package model

import "errors"

var (
	ErrGameFull        = errors.New("game is full")
	ErrNotInGame       = errors.New("player not in game")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrOutOfBounds     = errors.New("invalid move, out of bounds")
	ErrIllegalMove     = errors.New("invalid move, not legal")
	ErrGameOver        = errors.New("game is over")
	ErrUndoUnavailable = errors.New("undo unavailable")
	ErrAlreadyQueued   = errors.New("player already in queue")
	ErrInvalidMode     = errors.New("invalid game mode")
)
