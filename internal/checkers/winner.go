package checkers

// Winner reports the side that has won on b. A side without pieces loses.
// When toMove is given, a side that still has pieces but no legal move loses
// as well.
func Winner(b Board, toMove Side) (Side, bool) {
	if b.Count(Near) == 0 {
		return Far, true
	}
	if b.Count(Far) == 0 {
		return Near, true
	}
	if toMove != NoSide && len(LegalMoves(b, toMove, nil)) == 0 {
		return toMove.Opponent(), true
	}
	return NoSide, false
}
