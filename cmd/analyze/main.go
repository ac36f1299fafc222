// Command analyze prints quick, human-readable heuristics about the puzzles
// in the project's configs directory. It summarizes dimensions, domino
// orientations and marker capacity. Given a sessions directory as the second
// argument, it also summarizes how the recorded games on each puzzle ended.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/wricardo/magnets-referee/game/config"
	"github.com/wricardo/magnets-referee/game/engine"
	"github.com/wricardo/magnets-referee/game/service"
	"github.com/wricardo/magnets-referee/game/session"
)

// Analysis holds the figures printed for one puzzle
type Analysis struct {
	Name       string
	Width      int
	Height     int
	Horizontal int
	Vertical   int

	// Capacity is the most cells of a polarity the markers allow,
	// taking the tighter of the row and column totals
	PositiveCapacity int
	NegativeCapacity int
	// ClosedLines are rows and columns where a marker forbids a polarity
	ClosedLines []string

	Bound int
	Games *GameStats
}

// GameStats aggregates the recorded sessions of one puzzle
type GameStats struct {
	Played     int
	InProgress int
	Won        int
	Losses     map[engine.LossKind]int
	Turns      int

	// cell totals over every recorded grid
	Positive int
	Negative int
	Neutral  int
}

func capacity(markers []int, length int) int {
	total := 0
	for _, m := range markers {
		if m == engine.Unconstrained || m > length {
			m = length
		}
		total += m
	}
	return total
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func analyzePuzzle(puzzle *engine.PuzzleConfig) (*Analysis, error) {
	if err := engine.ValidatePuzzleConfig(puzzle); err != nil {
		return nil, err
	}

	a := &Analysis{Name: puzzle.Name, Width: puzzle.Width, Height: puzzle.Height}
	a.Horizontal, a.Vertical = engine.DominoOrientations(puzzle.Plan)

	a.PositiveCapacity = minInt(capacity(puzzle.LeftMarkers, puzzle.Width), capacity(puzzle.TopMarkers, puzzle.Height))
	a.NegativeCapacity = minInt(capacity(puzzle.RightMarkers, puzzle.Width), capacity(puzzle.BottomMarkers, puzzle.Height))
	a.Bound = minInt(a.PositiveCapacity, a.NegativeCapacity, a.Horizontal+a.Vertical)

	closed := func(side string, markers []int) {
		for i, m := range markers {
			if m == 0 {
				a.ClosedLines = append(a.ClosedLines, fmt.Sprintf("%s %d", side, i))
			}
		}
	}
	closed("left", puzzle.LeftMarkers)
	closed("top", puzzle.TopMarkers)
	closed("right", puzzle.RightMarkers)
	closed("bottom", puzzle.BottomMarkers)

	return a, nil
}

// collectGames loads every stored session and groups the results by puzzle
func collectGames(store session.SessionPersistence) (map[string]*GameStats, error) {
	ids, err := store.ListAll()
	if err != nil {
		return nil, err
	}

	stats := make(map[string]*GameStats)
	for _, id := range ids {
		sess, err := store.Load(id)
		if err != nil {
			// sessions on puzzles that are gone cannot be restored
			continue
		}
		addGame(stats, sess)
	}
	return stats, nil
}

func addGame(stats map[string]*GameStats, sess *service.Session) {
	s, ok := stats[sess.ConfigID]
	if !ok {
		s = &GameStats{Losses: make(map[engine.LossKind]int)}
		stats[sess.ConfigID] = s
	}

	state := sess.Engine.GetState()
	s.Played++
	s.Turns += state.Turn
	switch state.Status {
	case engine.Won:
		s.Won++
	case engine.Lost:
		s.Losses[state.LossKind]++
	default:
		s.InProgress++
	}

	cells := sess.Engine.Grid().Snapshot()
	s.Positive += engine.CountCells(cells, engine.Positive)
	s.Negative += engine.CountCells(cells, engine.Negative)
	s.Neutral += engine.CountCells(cells, engine.Neutral)
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(w, "Dominoes: %d horizontal, %d vertical\n", a.Horizontal, a.Vertical)
	fmt.Fprintf(w, "Positive capacity: %d, negative capacity: %d\n", a.PositiveCapacity, a.NegativeCapacity)

	if len(a.ClosedLines) > 0 {
		fmt.Fprintf(w, "Closed lines (marker 0): %v\n", a.ClosedLines)
	}

	dominoes := a.Horizontal + a.Vertical
	if a.Bound < dominoes {
		fmt.Fprintf(w, "⚠️  At most %d of %d dominoes can be magnets\n", a.Bound, dominoes)
	} else {
		fmt.Fprintf(w, "✅ Markers leave room for every domino to be a magnet\n")
	}

	if a.Games == nil {
		return
	}
	g := a.Games
	fmt.Fprintf(w, "Games: %d played, %d won, %d in progress, %d turns\n", g.Played, g.Won, g.InProgress, g.Turns)

	kinds := make([]string, 0, len(g.Losses))
	for kind := range g.Losses {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "   lost by %s: %d\n", kind, g.Losses[engine.LossKind(kind)])
	}
	fmt.Fprintf(w, "Cells: %d positive, %d negative, %d neutral\n", g.Positive, g.Negative, g.Neutral)
}

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	manager, err := config.NewManager(configDir)
	if err != nil {
		fmt.Printf("Error opening configs: %v\n", err)
		os.Exit(1)
	}
	puzzles, err := manager.ListConfigs()
	if err != nil {
		fmt.Printf("Error listing configs: %v\n", err)
		os.Exit(1)
	}

	var games map[string]*GameStats
	if len(os.Args) > 2 {
		store, err := session.NewFilePersistence(os.Args[2], manager)
		if err != nil {
			fmt.Printf("Error opening sessions: %v\n", err)
			os.Exit(1)
		}
		if games, err = collectGames(store); err != nil {
			fmt.Printf("Error reading sessions: %v\n", err)
			os.Exit(1)
		}
	}

	for _, info := range puzzles {
		fmt.Printf("\n=== Analyzing %s ===\n", info.Filename)
		puzzle, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Printf("Error loading puzzle: %v\n", err)
			continue
		}
		a, err := analyzePuzzle(puzzle)
		if err != nil {
			fmt.Printf("Error analyzing puzzle: %v\n", err)
			continue
		}
		if games != nil {
			a.Games = games[info.ConfigID]
			if a.Games == nil {
				a.Games = &GameStats{Losses: map[engine.LossKind]int{}}
			}
		}
		printAnalysis(os.Stdout, a)
	}
}
