package checkers

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBoardStringRendersTags(t *testing.T) {
	b := place(EmptyBoard(), map[Position]Piece{
		pos(0, 0): king(Far),
		pos(0, 1): man(Near),
		pos(0, 2): king(Near),
		pos(0, 3): man(Far),
	})
	lines := strings.Split(b.String(), "\n")
	if lines[0] != "Row 0: [WK][B][BK][W][ ][ ][ ][ ]" {
		t.Fatalf("unexpected first row %q", lines[0])
	}
	if lines[7] != "Row 7: [ ][ ][ ][ ][ ][ ][ ][ ]" {
		t.Fatalf("unexpected last row %q", lines[7])
	}
}

func TestInitialBoardString(t *testing.T) {
	lines := strings.Split(NewBoard().String(), "\n")
	if lines[1] != "Row 1: [W][W][W][W][W][W][W][W]" {
		t.Fatalf("unexpected row 1 %q", lines[1])
	}
	if lines[6] != "Row 6: [B][B][B][B][B][B][B][B]" {
		t.Fatalf("unexpected row 6 %q", lines[6])
	}
}

func TestBoardJSONRoundTrip(t *testing.T) {
	b, _, err := Apply(NewBoard(), Move{From: pos(5, 4), To: pos(4, 4)})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Board
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != b {
		t.Fatalf("board changed across JSON")
	}
}

func TestMoveJSONCapturedPosOnlyForCaptures(t *testing.T) {
	step, _ := json.Marshal(Move{From: pos(5, 4), To: pos(4, 4)})
	if strings.Contains(string(step), "capturedPos") {
		t.Fatalf("unexpected capturedPos in %s", step)
	}
	jump, _ := json.Marshal(Move{From: pos(3, 3), To: pos(3, 5), IsCapture: true, Captured: pos(3, 4)})
	if !strings.Contains(string(jump), `"capturedPos":{"row":3,"col":4}`) {
		t.Fatalf("expected capturedPos in %s", jump)
	}
}

func TestPositionNotation(t *testing.T) {
	if got := pos(0, 0).String(); got != "a8" {
		t.Fatalf("expected a8, got %s", got)
	}
	if got := (Move{From: pos(5, 2), To: pos(4, 2)}).Notation(); got != "c3-c4" {
		t.Fatalf("expected c3-c4, got %s", got)
	}
}
