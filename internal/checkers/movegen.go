package checkers

type direction struct {
	dr, dc int
}

var (
	up    = direction{dr: -1}
	down  = direction{dr: 1}
	left  = direction{dc: -1}
	right = direction{dc: 1}

	kingDirs = []direction{up, down, left, right}
	nearDirs = []direction{up, left, right}
	farDirs  = []direction{down, left, right}
)

func directionsFor(p Piece) []direction {
	switch {
	case p.King:
		return kingDirs
	case p.Side == Near:
		return nearDirs
	default:
		return farDirs
	}
}

// LegalMoves enumerates the moves side may play. When from is set only the
// piece on that square is considered. If any capture exists only captures are
// returned, and only those starting the longest capture chain.
func LegalMoves(b Board, side Side, from *Position) []Move {
	var moves []Move
	if from != nil {
		if b.At(*from).Side == side {
			moves = PieceMoves(b, *from)
		}
	} else {
		for _, pos := range b.Positions(side) {
			moves = append(moves, PieceMoves(b, pos)...)
		}
	}

	var captures []Move
	for _, m := range moves {
		if m.IsCapture {
			captures = append(captures, m)
		}
	}
	if len(captures) == 0 {
		return moves
	}

	memo := make(chainMemo)
	lengths := make([]int, len(captures))
	longest := 0
	for i, m := range captures {
		lengths[i] = 1 + memo.afterMove(b, m)
		if lengths[i] > longest {
			longest = lengths[i]
		}
	}
	out := captures[:0]
	for i, m := range captures {
		if lengths[i] == longest {
			out = append(out, m)
		}
	}
	return out
}

// PieceMoves returns every candidate move of the piece on pos, ignoring the
// forced-capture rule.
func PieceMoves(b Board, pos Position) []Move {
	piece := b.At(pos)
	if piece.Empty() {
		return nil
	}
	var moves []Move
	for _, dir := range directionsFor(piece) {
		if piece.King {
			moves = appendKingMoves(moves, b, pos, piece.Side, dir)
		} else {
			moves = appendManMoves(moves, b, pos, piece.Side, dir)
		}
	}
	return moves
}

func appendManMoves(moves []Move, b Board, pos Position, side Side, dir direction) []Move {
	next := pos.step(dir, 1)
	if !next.Valid() {
		return moves
	}
	if b.At(next).Empty() {
		return append(moves, Move{From: pos, To: next})
	}
	landing := pos.step(dir, 2)
	if landing.Valid() && b.At(next).Side == side.Opponent() && b.At(landing).Empty() {
		moves = append(moves, Move{From: pos, To: landing, IsCapture: true, Captured: next})
	}
	return moves
}

func appendKingMoves(moves []Move, b Board, pos Position, side Side, dir direction) []Move {
	dist := 1
	for ; ; dist++ {
		target := pos.step(dir, dist)
		if !target.Valid() {
			return moves
		}
		if !b.At(target).Empty() {
			break
		}
		moves = append(moves, Move{From: pos, To: target})
	}

	enemy := pos.step(dir, dist)
	if b.At(enemy).Side != side.Opponent() {
		return moves
	}
	for jump := 1; ; jump++ {
		landing := enemy.step(dir, jump)
		if !landing.Valid() || !b.At(landing).Empty() {
			return moves
		}
		moves = append(moves, Move{From: pos, To: landing, IsCapture: true, Captured: enemy})
	}
}

// CanContinue reports whether the piece that just moved to pos has another
// capture available, which keeps the turn with its side.
func CanContinue(b Board, pos Position) bool {
	for _, m := range PieceMoves(b, pos) {
		if m.IsCapture {
			return true
		}
	}
	return false
}

type chainKey struct {
	board Board
	pos   Position
}

// chainMemo caches the longest capture chain available to the piece on a
// square of a given board. It lives for a single LegalMoves call.
type chainMemo map[chainKey]int

// afterMove applies the capture m and returns the longest run of further
// captures by the same piece from its landing square.
func (c chainMemo) afterMove(b Board, m Move) int {
	next, _, err := Apply(b, m)
	if err != nil {
		return 0
	}
	return c.from(next, m.To)
}

func (c chainMemo) from(b Board, pos Position) int {
	key := chainKey{board: b, pos: pos}
	if n, ok := c[key]; ok {
		return n
	}
	best := 0
	for _, m := range PieceMoves(b, pos) {
		if !m.IsCapture {
			continue
		}
		if n := 1 + c.afterMove(b, m); n > best {
			best = n
		}
	}
	c[key] = best
	return best
}
