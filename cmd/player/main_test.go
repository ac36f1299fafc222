package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/magnets-referee/api"
	"github.com/wricardo/magnets-referee/game/config"
	"github.com/wricardo/magnets-referee/game/engine"
	"github.com/wricardo/magnets-referee/game/service"
	"github.com/wricardo/magnets-referee/game/session"
)

var winningMoves = []string{"0 0 +", "0 1 -", "2 0 +", "3 1 +"}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func createTestPuzzle() *engine.PuzzleConfig {
	return &engine.PuzzleConfig{
		Name:          "Test Puzzle",
		Width:         4,
		Height:        2,
		LeftMarkers:   []int{2, 2},
		TopMarkers:    []int{1, 1, 1, 1},
		RightMarkers:  []int{2, 2},
		BottomMarkers: []int{1, 1, 1, 1},
		Plan:          []string{"aabc", "ddbc"},
	}
}

// refereeInput builds what the referee sends over a game played with moves
func refereeInput(t *testing.T, moves []string) string {
	t.Helper()
	eng, err := engine.NewEngine(createTestPuzzle())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	var lines []string
	for _, move := range moves {
		lines = append(lines, eng.InputLines()...)
		if _, err := eng.PlayLine(move); err != nil {
			t.Fatalf("PlayLine(%q) failed: %v", move, err)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestLoadScript(t *testing.T) {
	script := filepath.Join(t.TempDir(), "moves.txt")
	if err := os.WriteFile(script, []byte("0 0 +\n\n0 1 -\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		inline  string
		path    string
		want    []string
		wantErr bool
	}{
		{name: "inline", inline: "0 0 +; 0 1 - ;", want: []string{"0 0 +", "0 1 -"}},
		{name: "file wins", inline: "9 9 x", path: script, want: []string{"0 0 +", "0 1 -"}},
		{name: "nothing", wantErr: true},
		{name: "blank", inline: " ; ;", wantErr: true},
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadScript(tt.inline, tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadScript failed: %v", err)
			}
			if strings.Join(got, ";") != strings.Join(tt.want, ";") {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPlayStdio(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader(refereeInput(t, winningMoves))
	if err := playStdio(in, &out, winningMoves, quietLogger()); err != nil {
		t.Fatalf("playStdio failed: %v", err)
	}

	got := strings.Split(strings.TrimSpace(out.String()), "\n")
	if strings.Join(got, ";") != strings.Join(winningMoves, ";") {
		t.Errorf("Expected %q, got %q", winningMoves, got)
	}
}

func TestPlayStdio_StopsWhenInputEnds(t *testing.T) {
	setup := strings.Join(engine.SetupLines(createTestPuzzle()), "\n") + "\n"

	var out bytes.Buffer
	if err := playStdio(strings.NewReader(setup), &out, winningMoves, quietLogger()); err != nil {
		t.Fatalf("playStdio failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "0 0 +" {
		t.Errorf("Expected only the first move, got %q", got)
	}
}

func TestPlayStdio_BadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "bad height", input: "4\ntwo\n"},
		{name: "truncated", input: "4\n2\n2 2\n"},
		{name: "invalid plan", input: "4\n2\n2 2\n1 1 1 1\n2 2\n1 1 1 1\naaac\nddbc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := playStdio(strings.NewReader(tt.input), io.Discard, winningMoves, quietLogger())
			if err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func setupAPI(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	data, _ := json.Marshal(createTestPuzzle())
	if err := os.WriteFile(filepath.Join(dir, "classic.json"), data, 0644); err != nil {
		t.Fatal(err)
	}

	configs, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), configs, nil)

	srv := httptest.NewServer(api.NewServer(svc, nil, nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestPlayAPI(t *testing.T) {
	srv := setupAPI(t)
	ctx := context.Background()

	var out bytes.Buffer
	client := NewClient(srv.URL)
	if err := playAPI(ctx, client, winningMoves, apiOptions{configID: "classic"}, &out, quietLogger()); err != nil {
		t.Fatalf("playAPI failed: %v", err)
	}

	want := "Session " + client.SessionID() + ": won after 4 turns\n+-+-\n-+-+\n"
	if out.String() != want {
		t.Errorf("Expected report %q, got %q", want, out.String())
	}

	// a finished session cannot be resumed
	err := playAPI(ctx, NewClient(srv.URL), winningMoves, apiOptions{resume: client.SessionID()}, io.Discard, quietLogger())
	if err == nil || !strings.Contains(err.Error(), "already won") {
		t.Errorf("Expected already won error, got %v", err)
	}
}

func TestPlayAPI_Resume(t *testing.T) {
	srv := setupAPI(t)
	ctx := context.Background()

	client := NewClient(srv.URL)
	if _, err := client.CreateSession(ctx, ""); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := client.Place(ctx, winningMoves[0]); err != nil {
		t.Fatalf("Place failed: %v", err)
	}

	var out bytes.Buffer
	err := playAPI(ctx, NewClient(srv.URL), winningMoves, apiOptions{resume: client.SessionID()}, &out, quietLogger())
	if err != nil {
		t.Fatalf("playAPI failed: %v", err)
	}
	if !strings.Contains(out.String(), "won after 4 turns") {
		t.Errorf("Expected resumed session to be won: %q", out.String())
	}

	// script shorter than what was played
	other := NewClient(srv.URL)
	if _, err := other.CreateSession(ctx, ""); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := other.Place(ctx, winningMoves[0]); err != nil {
		t.Fatalf("Place failed: %v", err)
	}
	err = playAPI(ctx, NewClient(srv.URL), winningMoves[:1], apiOptions{resume: other.SessionID()}, io.Discard, quietLogger())
	if err == nil {
		t.Error("Expected error when the script is already used up")
	}
}

func TestPlayAPI_Lost(t *testing.T) {
	tests := []struct {
		name   string
		moves  []string
		reason string
	}{
		{name: "rule violation", moves: []string{"0 0 +", "0 1 +"}, reason: "You broke the rules!"},
		{name: "malformed", moves: []string{"place it"}, reason: "Space separated"},
		{name: "out of bounds", moves: []string{"9 9 +"}, reason: "Out of bounds."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := setupAPI(t)

			var out bytes.Buffer
			err := playAPI(context.Background(), NewClient(srv.URL), append(tt.moves, "3 1 +"), apiOptions{}, &out, quietLogger())
			if !errors.Is(err, errGameLost) {
				t.Fatalf("Expected errGameLost, got %v", err)
			}
			if !strings.Contains(out.String(), "lost after") || !strings.Contains(out.String(), tt.reason) {
				t.Errorf("Unexpected report %q", out.String())
			}
		})
	}
}

func TestClient_Errors(t *testing.T) {
	srv := setupAPI(t)
	ctx := context.Background()

	if _, err := NewClient(srv.URL).CreateSession(ctx, "missing"); err == nil {
		t.Error("Expected error for unknown config")
	}
	if _, err := NewClient(srv.URL).GetSession(ctx, "nope"); err == nil {
		t.Error("Expected error for unknown session")
	}
	if _, err := NewClient("http://127.0.0.1:1").CreateSession(ctx, ""); err == nil {
		t.Error("Expected error when the server is down")
	}

	client := NewClient(srv.URL)
	if _, err := client.CreateSession(ctx, ""); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	for _, move := range []string{"0 0 +", "0 1 +"} {
		if _, err := client.Place(ctx, move); err != nil {
			t.Fatalf("Place(%q) failed: %v", move, err)
		}
	}
	if _, err := client.Place(ctx, "2 0 +"); err == nil {
		t.Error("Expected error placing after game over")
	}
}

func TestNewApp_Stdio(t *testing.T) {
	setup := strings.Join(engine.SetupLines(createTestPuzzle()), "\n") + "\n"

	var out bytes.Buffer
	err := newApp(quietLogger(), strings.NewReader(setup), &out).Run(context.Background(), []string{"player", "--moves", "1 0 x;3 0 -"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "1 0 x" {
		t.Errorf("Expected the first scripted move, got %q", got)
	}
}

func TestNewApp_NoMoves(t *testing.T) {
	err := newApp(quietLogger(), strings.NewReader(""), io.Discard).Run(context.Background(), []string{"player"})
	if err == nil {
		t.Error("Expected error without a script")
	}
}
