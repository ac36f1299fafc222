// Package referee drives a single Magnets match against an external player.
//
// A Driver owns one engine.GameEngine and one Player. Each turn it sends
// the player its input (the full setup on turn one, a grid snapshot after
// that), waits for one output line under a per-turn deadline and hands the
// line to the engine. The first turn gets a longer deadline than the rest.
//
// ProcessPlayer is the stock Player: a child process fed over stdin with
// answers read from stdout.
package referee
