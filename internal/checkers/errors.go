package checkers

import "errors"

var (
	ErrInvalidMoveApplication = errors.New("invalid move application")
	ErrInvalidSide            = errors.New("invalid side")
)
