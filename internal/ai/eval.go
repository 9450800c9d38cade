package ai

import "github.com/benbeisheim/dama-backend/internal/checkers"

const (
	manValue      = 5.0
	kingValue     = 25.0
	centerBonus   = 0.5
	advanceBonus  = 0.2
	centerColFrom = 2
	centerColTo   = 5
)

// Evaluate scores b from side's point of view: material, central columns and
// how far each man has advanced toward promotion.
func Evaluate(b checkers.Board, side checkers.Side) float64 {
	score := 0.0
	for _, owner := range []checkers.Side{checkers.Near, checkers.Far} {
		total := 0.0
		for _, pos := range b.Positions(owner) {
			total += pieceValue(b.At(pos), pos)
		}
		if owner == side {
			score += total
		} else {
			score -= total
		}
	}
	return score
}

func pieceValue(p checkers.Piece, pos checkers.Position) float64 {
	value := manValue
	if p.King {
		value = kingValue
	}
	if pos.Col >= centerColFrom && pos.Col <= centerColTo {
		value += centerBonus
	}
	if !p.King {
		value += float64(advancement(p.Side, pos)) * advanceBonus
	}
	return value
}

// advancement counts rows travelled from the side's own back row.
func advancement(side checkers.Side, pos checkers.Position) int {
	if side == checkers.Far {
		return pos.Row
	}
	return checkers.BoardSize - 1 - pos.Row
}
