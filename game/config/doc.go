// Package config provides puzzle catalogue and process settings for the
// Magnets referee.
//
// The config package handles:
//   - Loading puzzles from .json files and from the referee text format (.txt)
//   - Puzzle validation on load and on save
//   - Default puzzle selection and puzzle listing
//   - Process Settings parsed from the environment
//
// Puzzle Formats:
//
// A .json puzzle carries name, description, width, height, the four marker
// arrays and the plan rows. A .txt puzzle is exactly what a player reads on
// its first turn: width, height, left, top, right and bottom marker lines,
// then the plan rows. The identifier of a puzzle is its file name without
// extension; "classic" is the default when present.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	puzzle, err := manager.LoadConfig("classic")
//	configs, err := manager.ListConfigs()
//
//	settings, err := config.LoadSettings()
package config
