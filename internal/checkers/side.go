package checkers

import (
	"encoding/json"
	"fmt"
)

// Side is one of the two players. Near starts on rows 5-6 and advances
// toward row 0, Far starts on rows 1-2 and advances toward row 7.
type Side uint8

const (
	NoSide Side = iota
	Near
	Far
)

func (s Side) Opponent() Side {
	switch s {
	case Near:
		return Far
	case Far:
		return Near
	}
	return NoSide
}

func (s Side) String() string {
	switch s {
	case Near:
		return "near"
	case Far:
		return "far"
	}
	return "none"
}

// DisplayName is the colour shown to players.
func (s Side) DisplayName() string {
	switch s {
	case Near:
		return "Blue"
	case Far:
		return "White"
	}
	return ""
}

func (s Side) tag() byte {
	if s == Near {
		return 'B'
	}
	return 'W'
}

// promotionRow is the opponent's back row.
func (s Side) promotionRow() int {
	if s == Near {
		return 0
	}
	return BoardSize - 1
}

func ParseSide(v string) (Side, error) {
	switch v {
	case "near":
		return Near, nil
	case "far":
		return Far, nil
	}
	return NoSide, fmt.Errorf("%w: %q", ErrInvalidSide, v)
}

func (s Side) MarshalJSON() ([]byte, error) {
	if s == NoSide {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

func (s *Side) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NoSide
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	side, err := ParseSide(v)
	if err != nil {
		return err
	}
	*s = side
	return nil
}
