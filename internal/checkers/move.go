package checkers

import "encoding/json"

// Move is one atomic transition: a step, a king slide, or a single jump over
// exactly one enemy piece. Multi-jumps are sequences of Moves.
type Move struct {
	From      Position
	To        Position
	IsCapture bool
	// Captured is only meaningful when IsCapture is set.
	Captured Position
}

// Notation renders the move as "c3-c4" or "c3xc5".
func (m Move) Notation() string {
	sep := "-"
	if m.IsCapture {
		sep = "x"
	}
	return m.From.String() + sep + m.To.String()
}

type moveJSON struct {
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	IsCapture bool      `json:"isCapture"`
	Captured  *Position `json:"capturedPos,omitempty"`
}

func (m Move) MarshalJSON() ([]byte, error) {
	out := moveJSON{From: m.From, To: m.To, IsCapture: m.IsCapture}
	if m.IsCapture {
		captured := m.Captured
		out.Captured = &captured
	}
	return json.Marshal(out)
}

func (m *Move) UnmarshalJSON(data []byte) error {
	var in moveJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = Move{From: in.From, To: in.To, IsCapture: in.IsCapture}
	if in.Captured != nil {
		m.IsCapture = true
		m.Captured = *in.Captured
	}
	return nil
}
