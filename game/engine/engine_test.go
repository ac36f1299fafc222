package engine

import (
	"errors"
	"reflect"
	"testing"
)

// createTestConfig returns a 4x2 puzzle with tight markers and a unique solution:
//
//	+ - + -
//	- + - +
func createTestConfig() *PuzzleConfig {
	return &PuzzleConfig{
		Name:          "engine_test",
		Description:   "Configuration for engine tests",
		Width:         4,
		Height:        2,
		LeftMarkers:   []int{2, 2},
		TopMarkers:    []int{1, 1, 1, 1},
		RightMarkers:  []int{2, 2},
		BottomMarkers: []int{1, 1, 1, 1},
		Plan: []string{
			"aabc",
			"ddbc",
		},
	}
}

func unconstrained(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = Unconstrained
	}
	return out
}

func createOpenConfig(width, height int, plan ...string) *PuzzleConfig {
	return &PuzzleConfig{
		Name:          "open",
		Description:   "No markers",
		Width:         width,
		Height:        height,
		LeftMarkers:   unconstrained(height),
		TopMarkers:    unconstrained(width),
		RightMarkers:  unconstrained(height),
		BottomMarkers: unconstrained(width),
		Plan:          plan,
	}
}

func mustEngine(t *testing.T, config *PuzzleConfig) *GameEngine {
	t.Helper()
	e, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func mustPlay(t *testing.T, e *GameEngine, line string) *TurnOutcome {
	t.Helper()
	outcome, err := e.PlayLine(line)
	if err != nil {
		t.Fatalf("PlayLine(%q) returned error: %v", line, err)
	}
	return outcome
}

func TestNewEngine(t *testing.T) {
	e := mustEngine(t, createTestConfig())

	if e.Status() != AwaitingMove {
		t.Errorf("Expected status %s, got %s", AwaitingMove, e.Status())
	}
	if e.IsGameOver() {
		t.Error("Expected game not to be over initially")
	}
	if e.MaxTurns() != 4 {
		t.Errorf("Expected 4 max turns, got %d", e.MaxTurns())
	}

	state := e.GetState()
	want := []string{"....", "...."}
	if !reflect.DeepEqual(state.Cells, want) {
		t.Errorf("Expected empty cells %v, got %v", want, state.Cells)
	}
	if len(state.Filled) != 0 {
		t.Errorf("Expected no filled dominoes, got %v", state.Filled)
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.TopMarkers = []int{1, 1}

	if _, err := NewEngine(config); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestEngine_VictoryScenario(t *testing.T) {
	e := mustEngine(t, createTestConfig())

	moves := []string{"0 0 +", "0 1 -", "2 0 +", "3 1 +"}
	for i, line := range moves {
		outcome := mustPlay(t, e, line)
		if i < len(moves)-1 && outcome.Status != AwaitingMove {
			t.Fatalf("Move %d (%s): expected %s, got %s (%s)", i+1, line, AwaitingMove, outcome.Status, outcome.Reason)
		}
		if len(outcome.Changed) != 2 {
			t.Errorf("Move %d: expected 2 changed cells, got %d", i+1, len(outcome.Changed))
		}
	}

	if !e.IsVictory() {
		t.Fatalf("Expected victory, got status %s", e.Status())
	}
	want := []string{"+-+-", "-+-+"}
	if got := e.GetState().Cells; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected cells %v, got %v", want, got)
	}
	if got := e.GetState().Filled; !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("Expected all dominoes filled, got %v", got)
	}
}

func TestEngine_AdjacentSamePolarityLoses(t *testing.T) {
	e := mustEngine(t, createOpenConfig(2, 2, "aa", "bb"))

	outcome := mustPlay(t, e, "0 0 +")
	if outcome.Status != AwaitingMove {
		t.Fatalf("Expected first move to be accepted, got %s: %s", outcome.Status, outcome.Reason)
	}
	if got := e.GetState().Cells[0]; got != "+-" {
		t.Errorf("Expected row 0 to be +-, got %s", got)
	}

	outcome = mustPlay(t, e, "0 1 +")
	if outcome.Status != Lost {
		t.Fatalf("Expected loss, got %s", outcome.Status)
	}
	if outcome.LossKind != RuleViolation {
		t.Errorf("Expected loss kind %s, got %s", RuleViolation, outcome.LossKind)
	}
	if len(outcome.Violations) == 0 {
		t.Fatal("Expected violations")
	}
	first := outcome.Violations[0]
	if first.Kind != AdjacentSamePolarity || first.X1 != 0 || first.Y1 != 0 || first.X2 != 0 || first.Y2 != 1 {
		t.Errorf("Expected AdjacentSamePolarity(0,0,0,1), got %+v", first)
	}
	if e.GetState().Reason != FormatViolations(outcome.Violations) {
		t.Errorf("Expected combined reason, got %q", e.GetState().Reason)
	}
}

func TestEngine_ColumnTopExceeded(t *testing.T) {
	config := createOpenConfig(2, 3, "aa", "bb", "cc")
	config.TopMarkers = []int{1, Unconstrained}
	e := mustEngine(t, config)

	if outcome := mustPlay(t, e, "0 0 +"); outcome.Status != AwaitingMove {
		t.Fatalf("Expected first move to be accepted, got %s", outcome.Reason)
	}

	outcome := mustPlay(t, e, "0 2 +")
	if outcome.Status != Lost {
		t.Fatalf("Expected loss, got %s", outcome.Status)
	}
	want := []Violation{columnViolation(ColumnTopExceeded, 0, Positive)}
	if !reflect.DeepEqual(outcome.Violations, want) {
		t.Errorf("Expected %+v, got %+v", want, outcome.Violations)
	}
}

func TestEngine_MoveErrors(t *testing.T) {
	tests := []struct {
		name   string
		setup  []string
		line   string
		kind   LossKind
		reason string
	}{
		{"empty output", nil, "", MalformedOutput, "Empty output; space separated 'x', 'y' and '+/-/x' character expected."},
		{"too few tokens", nil, "0 0", MalformedOutput, "Space separated 'x', 'y' and '+/-/x' symbol expected."},
		{"too many tokens", nil, "0 0 + +", MalformedOutput, "Space separated 'x', 'y' and '+/-/x' symbol expected."},
		{"bad x", nil, "a 0 +", MalformedOutput, "Invalid output. X coordinate should be integer."},
		{"bad y", nil, "0 b +", MalformedOutput, "Invalid output. Y coordinate should be integer."},
		{"bad symbol", nil, "0 0 *", MalformedOutput, "Invalid output. Symbol should be one of +/-/x."},
		{"long symbol", nil, "0 0 ++", MalformedOutput, "Invalid output. Symbol should be one of +/-/x."},
		{"negative x", nil, "-1 0 +", OutOfBounds, "Out of bounds."},
		{"y too large", nil, "0 2 +", OutOfBounds, "Out of bounds."},
		{"same cell", []string{"0 0 +"}, "0 0 -", AlreadyFilled, "Position [0, 0] already taken."},
		{"partner cell", []string{"0 0 +"}, "1 0 x", AlreadyFilled, "Position [1, 0] already taken."},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e := mustEngine(t, createTestConfig())
			for _, line := range test.setup {
				mustPlay(t, e, line)
			}
			before := append([]string(nil), e.GetState().Cells...)

			outcome := mustPlay(t, e, test.line)
			if outcome.Status != Lost {
				t.Fatalf("Expected loss, got %s", outcome.Status)
			}
			if outcome.LossKind != test.kind {
				t.Errorf("Expected kind %s, got %s", test.kind, outcome.LossKind)
			}
			if outcome.Reason != test.reason {
				t.Errorf("Expected reason %q, got %q", test.reason, outcome.Reason)
			}
			if !reflect.DeepEqual(e.GetState().Cells, before) {
				t.Errorf("Rejected move changed the grid: %v -> %v", before, e.GetState().Cells)
			}
		})
	}
}

func TestEngine_AlreadyFilledRegardlessOfSymbol(t *testing.T) {
	for _, symbol := range []string{"+", "-", "x"} {
		e := mustEngine(t, createOpenConfig(2, 2, "aa", "bb"))
		mustPlay(t, e, "0 0 x")
		outcome := mustPlay(t, e, "1 0 "+symbol)
		if outcome.LossKind != AlreadyFilled {
			t.Errorf("Symbol %s: expected %s, got %s", symbol, AlreadyFilled, outcome.LossKind)
		}
	}
}

func TestEngine_Play(t *testing.T) {
	e := mustEngine(t, createTestConfig())

	outcome, err := e.Play(Move{X: 2, Y: 1, Symbol: Negative})
	if err != nil {
		t.Fatalf("Play returned error: %v", err)
	}
	want := []CellChange{{X: 2, Y: 1, Symbol: Negative}, {X: 2, Y: 0, Symbol: Positive}}
	if !reflect.DeepEqual(outcome.Changed, want) {
		t.Errorf("Expected changes %+v, got %+v", want, outcome.Changed)
	}

	outcome, err = e.Play(Move{X: 0, Y: 0, Symbol: Empty})
	if err != nil {
		t.Fatalf("Play returned error: %v", err)
	}
	if outcome.LossKind != MalformedOutput {
		t.Errorf("Expected %s for empty symbol, got %s", MalformedOutput, outcome.LossKind)
	}
}

func TestEngine_Timeout(t *testing.T) {
	e := mustEngine(t, createTestConfig())
	mustPlay(t, e, "0 0 +")

	outcome, err := e.Timeout()
	if err != nil {
		t.Fatalf("Timeout returned error: %v", err)
	}
	if outcome.LossKind != Timeout || outcome.Reason != "Timeout!" {
		t.Errorf("Expected timeout loss, got %+v", outcome)
	}
	if len(outcome.Changed) != 0 {
		t.Errorf("Expected no changed cells on timeout, got %v", outcome.Changed)
	}
	if e.GetState().Cells[0] != "+-.." {
		t.Errorf("Timeout must not change the grid, got %v", e.GetState().Cells)
	}
}

func TestEngine_GameOverRejectsMoves(t *testing.T) {
	e := mustEngine(t, createTestConfig())
	mustPlay(t, e, "9 9 +")

	if _, err := e.PlayLine("0 0 +"); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver from PlayLine, got %v", err)
	}
	if _, err := e.Play(Move{X: 0, Y: 0, Symbol: Positive}); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver from Play, got %v", err)
	}
	if _, err := e.Timeout(); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver from Timeout, got %v", err)
	}
	if len(e.GetMoveHistory()) != 1 {
		t.Errorf("Expected 1 history entry, got %d", len(e.GetMoveHistory()))
	}
}

func TestEngine_InputLines(t *testing.T) {
	e := mustEngine(t, createTestConfig())

	setup := []string{"4", "2", "2 2", "1 1 1 1", "2 2", "1 1 1 1", "aabc", "ddbc"}
	if got := e.InputLines(); !reflect.DeepEqual(got, setup) {
		t.Errorf("Expected setup lines %v, got %v", setup, got)
	}

	mustPlay(t, e, "2 0 +")
	want := []string{"aa+c", "dd-c"}
	if got := e.InputLines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected snapshot %v, got %v", want, got)
	}
}

func TestEngine_History(t *testing.T) {
	e := mustEngine(t, createTestConfig())
	if e.GetLastMove() != nil {
		t.Error("Expected no last move initially")
	}

	mustPlay(t, e, "0 0 +")
	mustPlay(t, e, "0 0 +")

	history := e.GetMoveHistory()
	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}
	if history[0].Turn != 1 || history[0].Status != AwaitingMove || history[0].Move == nil {
		t.Errorf("Unexpected first entry: %+v", history[0])
	}
	last := e.GetLastMove()
	if last.Turn != 2 || last.Status != Lost || last.LossKind != AlreadyFilled {
		t.Errorf("Unexpected last entry: %+v", last)
	}
}

func TestEngine_SetState(t *testing.T) {
	e := mustEngine(t, createTestConfig())
	mustPlay(t, e, "0 0 +")
	saved := e.GetState()

	restored := mustEngine(t, createTestConfig())
	if err := restored.SetState(saved); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if !restored.Grid().IsFilled(1, 0) {
		t.Error("Expected restored grid to mark domino a as filled")
	}
	if restored.Grid().Cell(1, 0) != Negative {
		t.Errorf("Expected restored partner cell '-', got %s", restored.Grid().Cell(1, 0))
	}

	outcome := mustPlay(t, restored, "1 0 +")
	if outcome.LossKind != AlreadyFilled {
		t.Errorf("Expected AlreadyFilled after restore, got %s", outcome.LossKind)
	}

	if err := restored.SetState(nil); err == nil {
		t.Error("Expected error for nil state")
	}
	if err := restored.SetState(&GameState{Cells: []string{"...."}}); err == nil {
		t.Error("Expected error for mismatched rows")
	}
}
