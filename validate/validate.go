// Command validate checks the puzzle files (*.json and *.txt) in a
// directory, ../configs by default. It checks:
//   - file format and required fields
//   - grid size and marker lengths
//   - that the plan tiles the grid with two-cell dominoes
//   - markers that can never bind (larger than their row or column)
//   - that a fresh game can start, and whether any domino can be polar
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/magnets-referee/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors holds informational lines (prefixed with ✓) and
// warnings (prefixed with ⚠); otherwise it holds the errors found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validatePuzzle loads and validates a single puzzle file
func validatePuzzle(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	config, err := engine.LoadPuzzleConfig(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Errors = append(result.Errors, markerWarnings(config)...)

	start := validateStart(config)
	if !start.Valid {
		result.Valid = false
		result.Errors = append(result.Errors, start.Errors...)
		return result
	}

	horizontal, vertical := engine.DominoOrientations(config.Plan)
	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Name: %s", config.Name),
		fmt.Sprintf("✓ Grid: %dx%d", config.Width, config.Height),
		fmt.Sprintf("✓ Dominoes: %d (%d horizontal, %d vertical)", horizontal+vertical, horizontal, vertical),
		fmt.Sprintf("✓ Constrained markers: %d/%d", constrainedMarkers(config), 2*(config.Width+config.Height)),
	)
	result.Errors = append(result.Errors, start.Errors...)

	return result
}

// markerWarnings reports markers that are legal but never matter
func markerWarnings(config *engine.PuzzleConfig) []string {
	var warnings []string
	check := func(side string, markers []int, length int) {
		for i, v := range markers {
			if v > length {
				warnings = append(warnings, fmt.Sprintf("⚠ %s marker %d is %d, larger than its line of %d cells", side, i, v, length))
			}
		}
	}
	check("Left", config.LeftMarkers, config.Width)
	check("Right", config.RightMarkers, config.Width)
	check("Top", config.TopMarkers, config.Height)
	check("Bottom", config.BottomMarkers, config.Height)

	if constrainedMarkers(config) == 0 {
		warnings = append(warnings, "⚠ Every marker is unconstrained; only the adjacency rule applies")
	}
	return warnings
}

func constrainedMarkers(config *engine.PuzzleConfig) int {
	n := 0
	for _, markers := range [][]int{config.LeftMarkers, config.TopMarkers, config.RightMarkers, config.BottomMarkers} {
		for _, v := range markers {
			if v != engine.Unconstrained {
				n++
			}
		}
	}
	return n
}

// validateStart opens a game on the puzzle and reports how much room the
// markers leave for polar cells
func validateStart(config *engine.PuzzleConfig) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []string{}}

	eng, err := engine.NewEngine(config)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot start a game: %v", err))
		return result
	}

	positive := min(polarRoom(config.LeftMarkers, config.Width), polarRoom(config.TopMarkers, config.Height))
	negative := min(polarRoom(config.RightMarkers, config.Width), polarRoom(config.BottomMarkers, config.Height))
	result.Errors = append(result.Errors,
		fmt.Sprintf("✓ Turns: at most %d", eng.MaxTurns()),
		fmt.Sprintf("✓ Polar room: %d positive, %d negative", positive, negative),
	)
	if min(positive, negative) == 0 {
		result.Errors = append(result.Errors, "⚠ No domino can be polar; the puzzle is only solvable with neutrals")
	}
	return result
}

// polarRoom is how many cells of one polarity the markers on one side allow
func polarRoom(markers []int, length int) int {
	n := 0
	for _, v := range markers {
		if v == engine.Unconstrained || v > length {
			v = length
		}
		n += v
	}
	return n
}

// puzzleFiles lists the puzzle files in dir in name order
func puzzleFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.txt"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every puzzle file in the directory given as the first
// argument, printing a concise report and exiting with non-zero status if
// any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := puzzleFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding puzzle files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No puzzle files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validatePuzzle(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All puzzles are valid!")
	} else {
		fmt.Println("❌ Some puzzles have errors")
		os.Exit(1)
	}
}
