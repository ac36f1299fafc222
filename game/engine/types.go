package engine

import (
	"encoding/json"
	"fmt"
)

// Symbol is the content of a single grid cell
type Symbol byte

const (
	Empty    Symbol = '.'
	Positive Symbol = '+'
	Negative Symbol = '-'
	Neutral  Symbol = 'x'
)

const (
	// Unconstrained marks a row or column without a count limit
	Unconstrained = -1

	// Validation constants
	MinGridSize = 1
	MaxGridSize = 50
	MaxHistory  = 1000
)

// ParseSymbol converts a one-character token into a placeable symbol
func ParseSymbol(s string) (Symbol, error) {
	if len(s) != 1 {
		return Empty, fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
	}
	sym := Symbol(s[0])
	if !sym.Placeable() {
		return Empty, fmt.Errorf("%w: %q", ErrInvalidSymbol, s)
	}
	return sym, nil
}

// Placeable reports whether a player may place the symbol
func (s Symbol) Placeable() bool {
	return s == Positive || s == Negative || s == Neutral
}

// IsPolar reports whether the symbol is '+' or '-'
func (s Symbol) IsPolar() bool {
	return s == Positive || s == Negative
}

// Opposite returns the symbol a domino partner receives
func (s Symbol) Opposite() Symbol {
	switch s {
	case Positive:
		return Negative
	case Negative:
		return Positive
	default:
		return s
	}
}

func (s Symbol) String() string {
	return string(rune(s))
}

// MarshalJSON encodes the symbol as a one-character string
func (s Symbol) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a one-character string
func (s *Symbol) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if len(str) != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, str)
	}
	sym := Symbol(str[0])
	if sym != Empty && !sym.Placeable() {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, str)
	}
	*s = sym
	return nil
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CellChange is one cell whose symbol was set by a placement
type CellChange struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Symbol Symbol `json:"symbol"`
}

// Markers holds the four border count constraints.
// Top and left limit '+', bottom and right limit '-'.
type Markers struct {
	Top    []int `json:"top"`
	Bottom []int `json:"bottom"`
	Left   []int `json:"left"`
	Right  []int `json:"right"`
}

// PuzzleConfig is an immutable board layout loaded from a puzzle file
type PuzzleConfig struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	LeftMarkers   []int    `json:"left_markers"`
	TopMarkers    []int    `json:"top_markers"`
	RightMarkers  []int    `json:"right_markers"`
	BottomMarkers []int    `json:"bottom_markers"`
	Plan          []string `json:"plan"`
}

// Markers returns the border constraints of the puzzle
func (c *PuzzleConfig) Markers() Markers {
	return Markers{
		Top:    c.TopMarkers,
		Bottom: c.BottomMarkers,
		Left:   c.LeftMarkers,
		Right:  c.RightMarkers,
	}
}

// Status is the turn driver state
type Status string

const (
	AwaitingMove Status = "awaiting_move"
	Won          Status = "won"
	Lost         Status = "lost"
)

// LossKind classifies why a game was lost
type LossKind string

const (
	MalformedOutput LossKind = "malformed_output"
	OutOfBounds     LossKind = "out_of_bounds"
	AlreadyFilled   LossKind = "already_filled"
	RuleViolation   LossKind = "rule_violation"
	Timeout         LossKind = "timeout"
)

// Move is one tokenized player placement
type Move struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Symbol Symbol `json:"symbol"`
}

func (m Move) String() string {
	return fmt.Sprintf("%d %d %s", m.X, m.Y, m.Symbol)
}

// MoveHistoryEntry represents a single turn in the game history
type MoveHistoryEntry struct {
	Turn      int          `json:"turn"`
	Raw       string       `json:"raw,omitempty"`
	Move      *Move        `json:"move,omitempty"`
	Changed   []CellChange `json:"changed,omitempty"`
	Status    Status       `json:"status"`
	LossKind  LossKind     `json:"loss_kind,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

// TurnOutcome is what the presentation layer is notified of after a turn
type TurnOutcome struct {
	Turn       int          `json:"turn"`
	Status     Status       `json:"status"`
	Changed    []CellChange `json:"changed,omitempty"`
	LossKind   LossKind     `json:"loss_kind,omitempty"`
	Reason     string       `json:"reason,omitempty"`
	Violations []Violation  `json:"violations,omitempty"`
}

// GameState represents the complete serializable game state
type GameState struct {
	Cells       []string           `json:"cells"`
	Filled      []string           `json:"filled"`
	Status      Status             `json:"status"`
	LossKind    LossKind           `json:"loss_kind,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	Violations  []Violation        `json:"violations,omitempty"`
	Turn        int                `json:"turn"`
	MaxTurns    int                `json:"max_turns"`
	Message     string             `json:"message"`
	ConfigName  string             `json:"config_name"`
	LastChanged []CellChange       `json:"last_changed,omitempty"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
}

// GameOver reports whether the state is terminal
func (s *GameState) GameOver() bool {
	return s.Status == Won || s.Status == Lost
}
