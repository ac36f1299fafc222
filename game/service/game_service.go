package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/magnets-referee/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Place(ctx context.Context, sessionID string, move engine.Move) (*PlaceResult, error)
	PlaceLine(ctx context.Context, sessionID, line string) (*PlaceResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetPlayerInput(ctx context.Context, sessionID string) (*PlayerInput, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.PuzzleConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles puzzle configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.PuzzleConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.PuzzleConfig
	DefaultID() string
	SaveConfig(name string, config *engine.PuzzleConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.PuzzleConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
