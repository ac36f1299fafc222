package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestValidatePuzzleConfig_ValidConfig(t *testing.T) {
	if err := ValidatePuzzleConfig(createTestConfig()); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}
}

func TestValidatePuzzleConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*PuzzleConfig)
		want   string
	}{
		{"missing name", func(c *PuzzleConfig) { c.Name = "" }, "name is required"},
		{"zero width", func(c *PuzzleConfig) { c.Width = 0 }, "width must be between"},
		{"huge height", func(c *PuzzleConfig) { c.Height = MaxGridSize + 1 }, "height must be between"},
		{"odd area", func(c *PuzzleConfig) { c.Width, c.Height = 3, 3 }, "cannot be tiled"},
		{"left length", func(c *PuzzleConfig) { c.LeftMarkers = []int{1} }, "left_markers must have 2 entries"},
		{"top length", func(c *PuzzleConfig) { c.TopMarkers = []int{1, 1, 1} }, "top_markers must have 4 entries"},
		{"right length", func(c *PuzzleConfig) { c.RightMarkers = nil }, "right_markers must have 2 entries"},
		{"bottom length", func(c *PuzzleConfig) { c.BottomMarkers = []int{1, 1, 1, 1, 1} }, "bottom_markers must have 4 entries"},
		{"marker below sentinel", func(c *PuzzleConfig) { c.TopMarkers[2] = -2 }, "top_markers[2] must be >= -1"},
		{"broken plan", func(c *PuzzleConfig) { c.Plan = []string{"aabc", "ddcb"} }, "not adjacent"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := createTestConfig()
			test.modify(config)
			err := ValidatePuzzleConfig(config)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("Expected error containing %q, got %q", test.want, err.Error())
			}
		})
	}
}

func TestParseTestCase(t *testing.T) {
	lines := []string{
		"4",
		"2",
		"2 2",
		"1 1 1 1",
		"2 2",
		"1 1 1 1",
		"aabc",
		"ddbc",
		"",
	}

	config, err := ParseTestCase("engine_test", lines)
	if err != nil {
		t.Fatalf("ParseTestCase failed: %v", err)
	}

	want := createTestConfig()
	want.Description = "4x2 magnets puzzle"
	if !reflect.DeepEqual(config, want) {
		t.Errorf("Expected %+v, got %+v", want, config)
	}

	if got := SetupLines(config); !reflect.DeepEqual(got, lines[:8]) {
		t.Errorf("SetupLines did not round trip: %v", got)
	}
}

func TestParseTestCase_Errors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"too short", []string{"2", "2"}},
		{"bad width", []string{"w", "2", "-1 -1", "-1 -1", "-1 -1", "-1 -1", "aa", "bb"}},
		{"bad height", []string{"2", "h", "-1 -1", "-1 -1", "-1 -1", "-1 -1", "aa", "bb"}},
		{"bad marker", []string{"2", "2", "-1 z", "-1 -1", "-1 -1", "-1 -1", "aa", "bb"}},
		{"invalid plan", []string{"2", "2", "-1 -1", "-1 -1", "-1 -1", "-1 -1", "ab", "ba"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ParseTestCase("bad", test.lines); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadPuzzleConfig(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "tiny.json")
	config := createTestConfig()
	config.Name = ""
	data, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	loaded, err := LoadPuzzleConfig(jsonPath)
	if err != nil {
		t.Fatalf("LoadPuzzleConfig(json) failed: %v", err)
	}
	if loaded.Name != "tiny" {
		t.Errorf("Expected name to default to file name, got %q", loaded.Name)
	}

	txtPath := filepath.Join(dir, "case01.txt")
	text := "2\n2\n-1 -1\n1 -1\n-1 -1\n-1 -1\naa\nbb\n"
	if err := os.WriteFile(txtPath, []byte(text), 0644); err != nil {
		t.Fatalf("Failed to write test case: %v", err)
	}
	loaded, err = LoadPuzzleConfig(txtPath)
	if err != nil {
		t.Fatalf("LoadPuzzleConfig(txt) failed: %v", err)
	}
	if loaded.Name != "case01" || loaded.TopMarkers[0] != 1 {
		t.Errorf("Unexpected config %+v", loaded)
	}

	if _, err := LoadPuzzleConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	badPath := filepath.Join(dir, "bad.json")
	os.WriteFile(badPath, []byte("{not json"), 0644)
	if _, err := LoadPuzzleConfig(badPath); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
