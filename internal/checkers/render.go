package checkers

import "strings"

// String renders the board row by row, "[ ]" for an empty square and a side
// letter, followed by K for kings, for pieces.
func (b Board) String() string {
	var sb strings.Builder
	for row := range b.cells {
		sb.WriteString("Row ")
		sb.WriteByte(byte('0' + row))
		sb.WriteString(": ")
		for _, p := range b.cells[row] {
			sb.WriteByte('[')
			if p.Empty() {
				sb.WriteByte(' ')
			} else {
				sb.WriteByte(p.Side.tag())
				if p.King {
					sb.WriteByte('K')
				}
			}
			sb.WriteByte(']')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
