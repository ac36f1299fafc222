package referee

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/magnets-referee/game/engine"
)

func createTestConfig() *engine.PuzzleConfig {
	return &engine.PuzzleConfig{
		Name:          "referee_test",
		Description:   "Configuration for referee tests",
		Width:         4,
		Height:        2,
		LeftMarkers:   []int{2, 2},
		TopMarkers:    []int{1, 1, 1, 1},
		RightMarkers:  []int{2, 2},
		BottomMarkers: []int{1, 1, 1, 1},
		Plan:          []string{"aabc", "ddbc"},
	}
}

// scriptedPlayer answers from a fixed list; an empty script entry means
// "never answer".
type scriptedPlayer struct {
	mu      sync.Mutex
	answers []string
	inputs  [][]string
}

func (p *scriptedPlayer) Send(lines []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inputs = append(p.inputs, append([]string(nil), lines...))
	return nil
}

func (p *scriptedPlayer) Receive(ctx context.Context) (string, error) {
	p.mu.Lock()
	if len(p.answers) == 0 {
		p.mu.Unlock()
		return "", ErrPlayerClosed
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	p.mu.Unlock()

	if answer == "" {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return answer, nil
}

func (p *scriptedPlayer) Close() error { return nil }

func TestDriver_Win(t *testing.T) {
	player := &scriptedPlayer{answers: []string{"0 0 +", "0 1 -", "2 0 +", "3 1 +"}}

	var outcomes []*engine.TurnOutcome
	driver, err := NewDriver(createTestConfig(), player, Options{
		Notifier: NotifierFunc(func(matchID string, outcome *engine.TurnOutcome) {
			outcomes = append(outcomes, outcome)
		}),
	})
	if err != nil {
		t.Fatalf("NewDriver failed: %v", err)
	}

	result, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Status != engine.Won {
		t.Fatalf("Expected win, got %s: %s", result.Status, result.Reason)
	}
	if result.Turns != 4 || len(outcomes) != 4 {
		t.Errorf("Expected 4 turns and 4 notifications, got %d and %d", result.Turns, len(outcomes))
	}
	if result.MatchID != driver.ID() {
		t.Errorf("Expected match id %s, got %s", driver.ID(), result.MatchID)
	}

	if len(player.inputs) != 4 {
		t.Fatalf("Expected 4 inputs, got %d", len(player.inputs))
	}
	if len(player.inputs[0]) != 8 {
		t.Errorf("Expected full setup on turn 1, got %v", player.inputs[0])
	}
	if want := []string{"+-bc", "ddbc"}; !reflect.DeepEqual(player.inputs[1], want) {
		t.Errorf("Expected snapshot %v on turn 2, got %v", want, player.inputs[1])
	}
}

func TestDriver_RuleViolation(t *testing.T) {
	player := &scriptedPlayer{answers: []string{"0 0 +", "0 1 +"}}
	driver, err := NewDriver(createTestConfig(), player, Options{})
	if err != nil {
		t.Fatalf("NewDriver failed: %v", err)
	}

	result, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Status != engine.Lost || result.LossKind != engine.RuleViolation {
		t.Fatalf("Expected rule violation loss, got %s / %s", result.Status, result.LossKind)
	}
	if len(result.Violations) == 0 {
		t.Error("Expected structured violations in result")
	}
	if !strings.HasPrefix(result.Reason, "You broke the rules!") {
		t.Errorf("Unexpected reason %q", result.Reason)
	}
}

func TestDriver_MalformedOutput(t *testing.T) {
	player := &scriptedPlayer{answers: []string{"hello"}}
	driver, _ := NewDriver(createTestConfig(), player, Options{})

	result, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.LossKind != engine.MalformedOutput || result.Turns != 1 {
		t.Errorf("Expected malformed output on turn 1, got %+v", result)
	}
}

func TestDriver_Timeout(t *testing.T) {
	player := &scriptedPlayer{answers: []string{"0 0 +", ""}}
	driver, _ := NewDriver(createTestConfig(), player, Options{
		FirstTurnTimeout: time.Second,
		TurnTimeout:      10 * time.Millisecond,
	})

	start := time.Now()
	result, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.LossKind != engine.Timeout || result.Reason != "Timeout!" {
		t.Errorf("Expected timeout loss, got %+v", result)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected the short turn timeout to apply, took %v", elapsed)
	}
	if want := []string{"+-..", "...."}; !reflect.DeepEqual(result.Cells, want) {
		t.Errorf("Expected grid %v after timeout, got %v", want, result.Cells)
	}
}

func TestDriver_PlayerGone(t *testing.T) {
	player := &scriptedPlayer{}
	driver, _ := NewDriver(createTestConfig(), player, Options{})

	result, err := driver.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.LossKind != engine.Timeout {
		t.Errorf("Expected a silent player to lose by timeout, got %s", result.LossKind)
	}
}

func TestDriver_Cancelled(t *testing.T) {
	player := &scriptedPlayer{answers: []string{""}}
	driver, _ := NewDriver(createTestConfig(), player, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if _, err := driver.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if driver.Engine().IsGameOver() {
		t.Error("A cancelled match must not be decided")
	}
}

func TestNewDriver_Errors(t *testing.T) {
	if _, err := NewDriver(createTestConfig(), nil, Options{}); err == nil {
		t.Error("Expected error for nil player")
	}
	config := createTestConfig()
	config.Plan = []string{"abcd", "dcba"}
	if _, err := NewDriver(config, &scriptedPlayer{}, Options{}); err == nil {
		t.Error("Expected error for invalid plan")
	}
}

// TestHelperProcess is not a real test. It is the player program started
// by TestProcessPlayer.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	moves := strings.Split(os.Getenv("HELPER_MOVES"), ";")
	in := bufio.NewScanner(os.Stdin)

	readLines := func(n int) {
		for i := 0; i < n && in.Scan(); i++ {
		}
	}

	var height int
	in.Scan()
	in.Scan()
	fmt.Sscanf(in.Text(), "%d", &height)
	readLines(4 + height)

	for i, move := range moves {
		if i > 0 {
			readLines(height)
		}
		fmt.Println(move)
	}
	for in.Scan() {
	}
	os.Exit(0)
}

func TestProcessPlayer(t *testing.T) {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")
	t.Setenv("HELPER_MOVES", "0 0 +;0 1 -;2 0 +;3 1 +")

	ctx := context.Background()
	player, err := StartProcessPlayer(ctx, os.Args[0], "-test.run=TestHelperProcess")
	if err != nil {
		t.Fatalf("StartProcessPlayer failed: %v", err)
	}
	defer player.Close()

	driver, err := NewDriver(createTestConfig(), player, Options{
		FirstTurnTimeout: 10 * time.Second,
		TurnTimeout:      5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewDriver failed: %v", err)
	}

	result, err := driver.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Status != engine.Won {
		t.Errorf("Expected process player to win, got %s: %s", result.Status, result.Reason)
	}

	if err := player.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := player.Send([]string{"late"}); !errors.Is(err, ErrPlayerClosed) {
		t.Errorf("Expected ErrPlayerClosed after close, got %v", err)
	}
}
