package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/magnets-referee/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	log      logrus.FieldLogger
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. A nil logger
// discards output.
func NewGameService(sessions SessionManager, configs ConfigManager, log logrus.FieldLogger) GameService {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		log:      log,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.PuzzleConfig
	configID := configName
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				// Provide helpful error message with available options
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.configs.DefaultID()
	}

	session, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.WithFields(logrus.Fields{"session": session.ID, "config": configID}).Info("Session created")
	return sessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.log.WithField("session", sessionID).Info("Session deleted")
	return nil
}

// Place applies a structured move to a session
func (s *gameServiceImpl) Place(ctx context.Context, sessionID string, move engine.Move) (*PlaceResult, error) {
	return s.place(sessionID, move.String(), func(e *engine.GameEngine) (*engine.TurnOutcome, error) {
		return e.Play(move)
	})
}

// PlaceLine applies one raw player output line to a session
func (s *gameServiceImpl) PlaceLine(ctx context.Context, sessionID, line string) (*PlaceResult, error) {
	return s.place(sessionID, line, func(e *engine.GameEngine) (*engine.TurnOutcome, error) {
		return e.PlayLine(line)
	})
}

func (s *gameServiceImpl) place(sessionID, raw string, play func(*engine.GameEngine) (*engine.TurnOutcome, error)) (*PlaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	outcome, err := play(sess.Engine)
	if err != nil {
		return nil, err
	}
	state := sess.Engine.GetState()

	result := &PlaceResult{
		Success:   outcome.Status != engine.Lost,
		Outcome:   outcome,
		GameState: state,
		Message:   state.Message,
		Events:    outcomeEvents(outcome, state.Message),
	}

	log := s.log.WithFields(logrus.Fields{"session": sessionID, "turn": outcome.Turn, "move": raw})
	if outcome.Status == engine.Lost {
		log.WithField("kind", outcome.LossKind).Info("Player lost")
	} else {
		log.Debug("Move applied")
	}

	// Auto-save session after move
	if err := s.sessions.Save(sessionID); err != nil {
		log.WithError(err).Warn("Failed to persist session after move")
	}

	return result, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetPlayerInput returns the lines a player program reads on the next turn
func (s *gameServiceImpl) GetPlayerInput(ctx context.Context, sessionID string) (*PlayerInput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Engine.IsGameOver() {
		return nil, engine.ErrGameOver
	}

	state := sess.Engine.GetState()
	return &PlayerInput{
		Turn:  state.Turn + 1,
		Setup: state.Turn == 0,
		Lines: sess.Engine.InputLines(),
	}, nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}
	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available puzzle configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific puzzle configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.PuzzleConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a puzzle configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.PuzzleConfig) error {
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return err
	}
	s.log.WithField("config", configName).Info("Puzzle saved")
	return nil
}

// getSession looks a session up and refreshes its access time
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		Puzzle:         sess.Config,
	}
}

// outcomeEvents describes a turn outcome as a list of events
func outcomeEvents(outcome *engine.TurnOutcome, message string) []GameEvent {
	now := time.Now()
	switch {
	case outcome.Status == engine.Won:
		return []GameEvent{
			{Type: "place", Message: "Domino placed", Timestamp: now, Cells: outcome.Changed},
			{Type: "victory", Message: message, Timestamp: now},
		}
	case outcome.LossKind == engine.RuleViolation:
		return []GameEvent{{Type: "violation", Message: outcome.Reason, Timestamp: now, Cells: outcome.Changed}}
	case outcome.Status == engine.Lost:
		return []GameEvent{{Type: "loss", Message: outcome.Reason, Timestamp: now}}
	default:
		return []GameEvent{{Type: "place", Message: message, Timestamp: now, Cells: outcome.Changed}}
	}
}
