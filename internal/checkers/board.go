package checkers

import (
	"encoding/json"
	"fmt"
)

const BoardSize = 8

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

func (p Position) step(dir direction, n int) Position {
	return Position{Row: p.Row + dir.dr*n, Col: p.Col + dir.dc*n}
}

// String returns the square in file/rank notation, row 0 being rank 8.
func (p Position) String() string {
	return fmt.Sprintf("%c%d", p.Col+'a', BoardSize-p.Row)
}

type Piece struct {
	Side Side `json:"side"`
	King bool `json:"king"`
}

func (p Piece) Empty() bool {
	return p.Side == NoSide
}

// Board is an immutable 8x8 grid. Every transformation returns a new value,
// and two boards with the same pieces compare equal.
type Board struct {
	cells [BoardSize][BoardSize]Piece
}

// NewBoard returns the starting layout: Far fills rows 1-2, Near fills rows 5-6.
func NewBoard() Board {
	var b Board
	for col := 0; col < BoardSize; col++ {
		b.cells[1][col] = Piece{Side: Far}
		b.cells[2][col] = Piece{Side: Far}
		b.cells[5][col] = Piece{Side: Near}
		b.cells[6][col] = Piece{Side: Near}
	}
	return b
}

func EmptyBoard() Board {
	return Board{}
}

// At returns the piece on pos, or an empty Piece when pos is empty or off-board.
func (b Board) At(pos Position) Piece {
	if !pos.Valid() {
		return Piece{}
	}
	return b.cells[pos.Row][pos.Col]
}

func (b Board) With(pos Position, piece Piece) Board {
	b.cells[pos.Row][pos.Col] = piece
	return b
}

func (b Board) Without(pos Position) Board {
	b.cells[pos.Row][pos.Col] = Piece{}
	return b
}

func (b Board) Count(side Side) int {
	n := 0
	for row := range b.cells {
		for col := range b.cells[row] {
			if b.cells[row][col].Side == side {
				n++
			}
		}
	}
	return n
}

// Positions lists the squares holding pieces of side in row-major order.
func (b Board) Positions(side Side) []Position {
	var out []Position
	for row := range b.cells {
		for col := range b.cells[row] {
			if b.cells[row][col].Side == side {
				out = append(out, Position{Row: row, Col: col})
			}
		}
	}
	return out
}

func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([][]*Piece, BoardSize)
	for row := range b.cells {
		rows[row] = make([]*Piece, BoardSize)
		for col := range b.cells[row] {
			if p := b.cells[row][col]; !p.Empty() {
				rows[row][col] = &p
			}
		}
	}
	return json.Marshal(rows)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]*Piece
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != BoardSize {
		return fmt.Errorf("board: expected %d rows, got %d", BoardSize, len(rows))
	}
	var out Board
	for row := range rows {
		if len(rows[row]) != BoardSize {
			return fmt.Errorf("board: row %d: expected %d cells, got %d", row, BoardSize, len(rows[row]))
		}
		for col, p := range rows[row] {
			if p != nil {
				out.cells[row][col] = *p
			}
		}
	}
	*b = out
	return nil
}
