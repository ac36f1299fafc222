package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ValidatePuzzleConfig validates a puzzle for structural correctness
func ValidatePuzzleConfig(config *PuzzleConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.Width < MinGridSize || config.Width > MaxGridSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Width)
	}
	if config.Height < MinGridSize || config.Height > MaxGridSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Height)
	}
	if (config.Width*config.Height)%2 != 0 {
		return fmt.Errorf("config validation: %dx%d grid cannot be tiled by dominoes", config.Width, config.Height)
	}

	markers := []struct {
		name   string
		values []int
		length int
	}{
		{"left_markers", config.LeftMarkers, config.Height},
		{"top_markers", config.TopMarkers, config.Width},
		{"right_markers", config.RightMarkers, config.Height},
		{"bottom_markers", config.BottomMarkers, config.Width},
	}
	for _, m := range markers {
		if len(m.values) != m.length {
			return fmt.Errorf("config validation: %s must have %d entries, got %d", m.name, m.length, len(m.values))
		}
		for i, v := range m.values {
			if v < Unconstrained {
				return fmt.Errorf("config validation: %s[%d] must be >= %d, got %d", m.name, i, Unconstrained, v)
			}
		}
	}

	if _, err := NewGrid(config.Width, config.Height, config.Plan); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	return nil
}

// ParseTestCase reads a puzzle in the referee text format: width, height,
// left, top, right and bottom marker lines, then one line per plan row.
func ParseTestCase(name string, lines []string) (*PuzzleConfig, error) {
	cleaned := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		cleaned = append(cleaned, l)
	}
	if len(cleaned) < 6 {
		return nil, fmt.Errorf("test case: expected at least 6 lines, got %d", len(cleaned))
	}

	width, err := strconv.Atoi(strings.TrimSpace(cleaned[0]))
	if err != nil {
		return nil, fmt.Errorf("test case: width: %w", err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(cleaned[1]))
	if err != nil {
		return nil, fmt.Errorf("test case: height: %w", err)
	}

	var markers [4][]int
	for i := range markers {
		markers[i], err = parseMarkerLine(cleaned[2+i])
		if err != nil {
			return nil, fmt.Errorf("test case: marker line %d: %w", i+1, err)
		}
	}

	plan := make([]string, 0, len(cleaned)-6)
	for _, l := range cleaned[6:] {
		plan = append(plan, strings.TrimSpace(l))
	}

	config := &PuzzleConfig{
		Name:          name,
		Description:   fmt.Sprintf("%dx%d magnets puzzle", width, height),
		Width:         width,
		Height:        height,
		LeftMarkers:   markers[0],
		TopMarkers:    markers[1],
		RightMarkers:  markers[2],
		BottomMarkers: markers[3],
		Plan:          plan,
	}
	if err := ValidatePuzzleConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func parseMarkerLine(line string) ([]int, error) {
	fields := strings.Fields(line)
	values := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// SetupLines renders the puzzle in the referee text format
func SetupLines(config *PuzzleConfig) []string {
	lines := []string{
		strconv.Itoa(config.Width),
		strconv.Itoa(config.Height),
		joinInts(config.LeftMarkers),
		joinInts(config.TopMarkers),
		joinInts(config.RightMarkers),
		joinInts(config.BottomMarkers),
	}
	return append(lines, config.Plan...)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

// LoadPuzzleConfig loads a puzzle from a .json or .txt file
func LoadPuzzleConfig(path string) (*PuzzleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.HasSuffix(path, ".txt") {
		return ParseTestCase(name, strings.Split(string(data), "\n"))
	}

	var config PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse puzzle '%s': %w", path, err)
	}
	if config.Name == "" {
		config.Name = name
	}
	if err := ValidatePuzzleConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
