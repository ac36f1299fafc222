// Package engine provides the core rule engine for the Magnets puzzle.
//
// The engine package implements:
//   - The puzzle grid and its domino topology
//   - Polarity placement with automatic partner assignment
//   - Row and column marker limits and same-polarity adjacency rules
//   - Turn handling, loss classification and victory detection
//   - Puzzle configuration loading and validation
//
// Core Types:
//
// Grid owns the cell symbols and a partner map built once from the plan.
// Evaluate is a pure function that checks a grid snapshot against the
// border markers. GameEngine applies one move per turn and moves between
// the AwaitingMove, Won and Lost states.
//
// Usage:
//
//	config, err := engine.LoadPuzzleConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := gameEngine.PlayLine("0 0 +")
//	if outcome.Status == engine.Lost {
//		fmt.Println(outcome.Reason)
//	}
//
// Game Rules:
//
// Every domino holds either a magnet ('+' on one cell, '-' on the other) or
// two neutral cells ('x'). Two orthogonally adjacent cells may not share a
// polarity. Top and left markers cap the number of '+' in a column or row,
// bottom and right markers cap the number of '-'; -1 means no cap. The
// puzzle is won when every cell holds a symbol; any rule break, malformed
// move or timeout loses it.
package engine
