package engine

import (
	"errors"
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Status() Status
	IsGameOver() bool
	IsVictory() bool

	// Turn operations
	Play(move Move) (*TurnOutcome, error)
	PlayLine(line string) (*TurnOutcome, error)
	Timeout() (*TurnOutcome, error)

	// Player input
	SetupLines() []string
	SnapshotLines() []string

	// Configuration
	GetConfig() *PuzzleConfig
	MaxTurns() int

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It is the synchronous half
// of the turn driver: one call to Play is one turn.
type GameEngine struct {
	config *PuzzleConfig
	grid   *Grid
	state  *GameState
}

// NewEngine creates a new game engine with the provided puzzle
func NewEngine(config *PuzzleConfig) (*GameEngine, error) {
	if err := ValidatePuzzleConfig(config); err != nil {
		return nil, err
	}

	grid, err := NewGrid(config.Width, config.Height, config.Plan)
	if err != nil {
		return nil, err
	}

	e := &GameEngine{
		config: config,
		grid:   grid,
	}
	e.state = &GameState{
		Status:      AwaitingMove,
		MaxTurns:    e.MaxTurns(),
		Message:     fmt.Sprintf("Place magnets on %s: %d dominoes to fill.", config.Name, e.MaxTurns()),
		ConfigName:  config.Name,
		MoveHistory: []MoveHistoryEntry{},
	}
	e.syncGrid()

	return e, nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState restores a persisted game state
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if err := e.grid.Restore(state.Cells); err != nil {
		return err
	}
	e.state = state
	e.state.MaxTurns = e.MaxTurns()
	if e.state.MoveHistory == nil {
		e.state.MoveHistory = []MoveHistoryEntry{}
	}
	e.syncGrid()
	return nil
}

// Status returns the turn driver state
func (e *GameEngine) Status() Status {
	return e.state.Status
}

// IsGameOver returns whether the game reached Won or Lost
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver()
}

// IsVictory returns whether the player has won
func (e *GameEngine) IsVictory() bool {
	return e.state.Status == Won
}

// Grid exposes the underlying puzzle grid
func (e *GameEngine) Grid() *Grid {
	return e.grid
}

// PlayLine parses one raw player output line and plays it
func (e *GameEngine) PlayLine(line string) (*TurnOutcome, error) {
	if e.IsGameOver() {
		return nil, ErrGameOver
	}
	move, err := ParseMove(line)
	if err != nil {
		var moveErr *MoveError
		if errors.As(err, &moveErr) {
			return e.lose(line, nil, moveErr.Kind, moveErr.Message, nil), nil
		}
		return nil, err
	}
	return e.play(line, move), nil
}

// Play applies one move: bounds and filled checks, placement, rule
// evaluation and completion detection.
func (e *GameEngine) Play(move Move) (*TurnOutcome, error) {
	if e.IsGameOver() {
		return nil, ErrGameOver
	}
	if !move.Symbol.Placeable() {
		return e.lose("", &move, MalformedOutput, "Invalid output. Symbol should be one of +/-/x.", nil), nil
	}
	return e.play(move.String(), move), nil
}

func (e *GameEngine) play(raw string, move Move) *TurnOutcome {
	if !e.grid.InBounds(move.X, move.Y) {
		me := outOfBounds(move.X, move.Y)
		return e.lose(raw, &move, me.Kind, me.Message, nil)
	}
	if e.grid.IsFilled(move.X, move.Y) {
		me := alreadyFilled(move.X, move.Y)
		return e.lose(raw, &move, me.Kind, me.Message, nil)
	}

	placed, err := e.grid.Place(move.X, move.Y, move.Symbol)
	if err != nil {
		// preconditions were checked above
		return e.lose(raw, &move, MalformedOutput, err.Error(), nil)
	}
	changed := placed.Changed()
	e.state.LastChanged = changed

	if violations := Evaluate(e.grid.cells, e.config.Markers()); len(violations) > 0 {
		return e.lose(raw, &move, RuleViolation, FormatViolations(violations), violations)
	}

	e.state.Turn++
	if e.grid.IsComplete() {
		e.state.Status = Won
		e.state.Message = "Puzzle solved!"
	} else {
		e.state.Message = fmt.Sprintf("Placed %s at [%d, %d].", move.Symbol, move.X, move.Y)
	}
	e.syncGrid()

	outcome := &TurnOutcome{
		Turn:    e.state.Turn,
		Status:  e.state.Status,
		Changed: changed,
	}
	e.record(raw, &move, outcome)
	return outcome
}

// Timeout ends the game because the player did not answer in time.
// The pending move, if any, is never applied.
func (e *GameEngine) Timeout() (*TurnOutcome, error) {
	if e.IsGameOver() {
		return nil, ErrGameOver
	}
	return e.lose("", nil, Timeout, "Timeout!", nil), nil
}

func (e *GameEngine) lose(raw string, move *Move, kind LossKind, reason string, violations []Violation) *TurnOutcome {
	e.state.Turn++
	e.state.Status = Lost
	e.state.LossKind = kind
	e.state.Reason = reason
	e.state.Violations = violations
	e.state.Message = reason
	e.syncGrid()

	outcome := &TurnOutcome{
		Turn:       e.state.Turn,
		Status:     Lost,
		LossKind:   kind,
		Reason:     reason,
		Violations: violations,
	}
	if kind == RuleViolation {
		outcome.Changed = e.state.LastChanged
	} else {
		e.state.LastChanged = nil
	}
	e.record(raw, move, outcome)
	return outcome
}

func (e *GameEngine) record(raw string, move *Move, outcome *TurnOutcome) {
	if len(e.state.MoveHistory) >= MaxHistory {
		return
	}
	e.state.MoveHistory = append(e.state.MoveHistory, MoveHistoryEntry{
		Turn:      outcome.Turn,
		Raw:       raw,
		Move:      move,
		Changed:   outcome.Changed,
		Status:    outcome.Status,
		LossKind:  outcome.LossKind,
		Timestamp: time.Now().Unix(),
	})
}

func (e *GameEngine) syncGrid() {
	e.state.Cells = e.grid.Rows()
	e.state.Filled = e.grid.FilledIDs()
}

// SetupLines returns the turn-one player input
func (e *GameEngine) SetupLines() []string {
	return SetupLines(e.config)
}

// SnapshotLines returns the player input for every later turn
func (e *GameEngine) SnapshotLines() []string {
	return SnapshotLines(e.config.Plan, e.grid.cells)
}

// InputLines returns the player input for the next turn
func (e *GameEngine) InputLines() []string {
	if e.state.Turn == 0 {
		return e.SetupLines()
	}
	return e.SnapshotLines()
}

// GetConfig returns the puzzle configuration
func (e *GameEngine) GetConfig() *PuzzleConfig {
	return e.config
}

// MaxTurns returns the number of dominoes, one per turn
func (e *GameEngine) MaxTurns() int {
	return (e.config.Width * e.config.Height) / 2
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}
