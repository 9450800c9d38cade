package ai

import (
	"fmt"
	"math"

	"github.com/benbeisheim/dama-backend/internal/checkers"
)

const (
	// WinScore is returned for a decided game, signed for the searching side.
	WinScore = 10000.0
	// NoMovesScore scores a node whose mover has no legal move.
	NoMovesScore = 5000.0

	DefaultMaxNodes = 1 << 20
)

type Options struct {
	// MaxNodes caps the nodes visited in one search. Once spent, the
	// remaining nodes are scored statically. Zero means DefaultMaxNodes.
	MaxNodes int
}

type Result struct {
	Move  checkers.Move
	Score float64
	Found bool
	Nodes int
}

// BestMove runs Search with default options. ok is false only when side has
// no legal move.
func BestMove(b checkers.Board, side checkers.Side, maxDepth int, from *checkers.Position) (checkers.Move, bool) {
	res := Search(b, side, maxDepth, from, Options{})
	return res.Move, res.Found
}

// Search is a depth-limited minimax with alpha-beta pruning, maximizing for
// side. A capture that can be followed by another capture keeps the same
// mover at the same depth, so a whole capture chain costs one ply.
func Search(b checkers.Board, side checkers.Side, maxDepth int, from *checkers.Position, opts Options) Result {
	s := &searcher{side: side, maxNodes: opts.MaxNodes}
	if s.maxNodes <= 0 {
		s.maxNodes = DefaultMaxNodes
	}

	moves := orderMoves(checkers.LegalMoves(b, side, from))
	if len(moves) == 0 {
		return Result{Score: -NoMovesScore}
	}
	if maxDepth < 1 {
		maxDepth = 1
	}
	s.nodes++
	best, score := s.expand(b, moves, maxDepth, true, math.Inf(-1), math.Inf(1))
	return Result{Move: moves[best], Score: score, Found: true, Nodes: s.nodes}
}

type searcher struct {
	side     checkers.Side
	maxNodes int
	nodes    int
}

func (s *searcher) mover(maximizing bool) checkers.Side {
	if maximizing {
		return s.side
	}
	return s.side.Opponent()
}

func (s *searcher) minimax(b checkers.Board, depth int, maximizing bool, from *checkers.Position, alpha, beta float64) float64 {
	s.nodes++
	mover := s.mover(maximizing)

	if winner, over := checkers.Winner(b, mover); over {
		if winner == s.side {
			return WinScore
		}
		return -WinScore
	}
	if depth <= 0 || s.nodes >= s.maxNodes {
		return Evaluate(b, s.side)
	}

	moves := orderMoves(checkers.LegalMoves(b, mover, from))
	if len(moves) == 0 {
		if maximizing {
			return -NoMovesScore
		}
		return NoMovesScore
	}
	_, score := s.expand(b, moves, depth, maximizing, alpha, beta)
	return score
}

// expand scores the children of a node and returns the index of the best move.
// The first move is kept when no child improves on the initial bound.
func (s *searcher) expand(b checkers.Board, moves []checkers.Move, depth int, maximizing bool, alpha, beta float64) (int, float64) {
	best := 0
	bestScore := math.Inf(1)
	if maximizing {
		bestScore = math.Inf(-1)
	}

	for i, m := range moves {
		next, _, err := checkers.Apply(b, m)
		if err != nil {
			panic(fmt.Sprintf("ai: generated move %s does not apply: %v", m.Notation(), err))
		}

		nextMaximizing, nextDepth := !maximizing, depth-1
		var nextFrom *checkers.Position
		if m.IsCapture && checkers.CanContinue(next, m.To) {
			to := m.To
			nextMaximizing, nextDepth, nextFrom = maximizing, depth, &to
		}

		score := s.minimax(next, nextDepth, nextMaximizing, nextFrom, alpha, beta)
		if maximizing {
			if score > bestScore {
				best, bestScore = i, score
			}
			alpha = math.Max(alpha, score)
		} else {
			if score < bestScore {
				best, bestScore = i, score
			}
			beta = math.Min(beta, score)
		}
		if beta <= alpha {
			break
		}
	}
	return best, bestScore
}

// orderMoves puts captures first, keeping generation order otherwise.
func orderMoves(moves []checkers.Move) []checkers.Move {
	ordered := make([]checkers.Move, 0, len(moves))
	for _, m := range moves {
		if m.IsCapture {
			ordered = append(ordered, m)
		}
	}
	for _, m := range moves {
		if !m.IsCapture {
			ordered = append(ordered, m)
		}
	}
	return ordered
}
