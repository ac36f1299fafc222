package service

import (
	"time"

	"github.com/wricardo/magnets-referee/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string               `json:"id"`
	ConfigName     string               `json:"config_name"`
	CreatedAt      time.Time            `json:"created_at"`
	LastAccessedAt time.Time            `json:"last_accessed_at"`
	GameState      *engine.GameState    `json:"game_state"`
	Puzzle         *engine.PuzzleConfig `json:"puzzle"`
}

// PlaceResult contains the result of one placement
type PlaceResult struct {
	Success   bool                `json:"success"`
	Outcome   *engine.TurnOutcome `json:"outcome"`
	GameState *engine.GameState   `json:"game_state"`
	Message   string              `json:"message"`
	Events    []GameEvent         `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during a turn
type GameEvent struct {
	Type      string              `json:"type"` // "place", "violation", "victory", "loss"
	Message   string              `json:"message"`
	Timestamp time.Time           `json:"timestamp"`
	Cells     []engine.CellChange `json:"cells,omitempty"`
}

// PlayerInput is what a player program would read on the next turn
type PlayerInput struct {
	Turn  int      `json:"turn"`
	Setup bool     `json:"setup"`
	Lines []string `json:"lines"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a puzzle configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Dominoes    int    `json:"dominoes"`
}
