package checkers

import "fmt"

// Apply returns the board after m together with whether the moving man was
// crowned on the opponent's back row. The input board is left untouched.
//
// After every move a side reduced to a single uncrowned piece has that piece
// crowned, wherever it stands.
func Apply(b Board, m Move) (Board, bool, error) {
	piece := b.At(m.From)
	if piece.Empty() {
		return b, false, fmt.Errorf("%w: no piece on %s", ErrInvalidMoveApplication, m.From)
	}

	next := b.Without(m.From)
	if m.IsCapture {
		next = next.Without(m.Captured)
	}

	promoted := false
	if !piece.King && m.To.Row == piece.Side.promotionRow() {
		piece.King = true
		promoted = true
	}
	next = next.With(m.To, piece)

	for _, side := range []Side{Near, Far} {
		next = crownLastSurvivor(next, side)
	}
	return next, promoted, nil
}

func crownLastSurvivor(b Board, side Side) Board {
	positions := b.Positions(side)
	if len(positions) != 1 {
		return b
	}
	piece := b.At(positions[0])
	if piece.King {
		return b
	}
	piece.King = true
	return b.With(positions[0], piece)
}
