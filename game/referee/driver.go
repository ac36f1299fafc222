package referee

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/magnets-referee/game/engine"
)

const (
	// DefaultFirstTurnTimeout leaves room for the player's startup cost
	DefaultFirstTurnTimeout = 5000 * time.Millisecond
	DefaultTurnTimeout      = 50 * time.Millisecond
)

// Notifier receives every turn outcome, typically a presentation layer
type Notifier interface {
	TurnPlayed(matchID string, outcome *engine.TurnOutcome)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(matchID string, outcome *engine.TurnOutcome)

// TurnPlayed calls f
func (f NotifierFunc) TurnPlayed(matchID string, outcome *engine.TurnOutcome) {
	f(matchID, outcome)
}

// Options configures a Driver
type Options struct {
	FirstTurnTimeout time.Duration
	TurnTimeout      time.Duration
	Logger           logrus.FieldLogger
	Notifier         Notifier
}

// Result is the final report of one match
type Result struct {
	MatchID    string             `json:"match_id"`
	Status     engine.Status      `json:"status"`
	LossKind   engine.LossKind    `json:"loss_kind,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	Violations []engine.Violation `json:"violations,omitempty"`
	Turns      int                `json:"turns"`
	Cells      []string           `json:"cells"`
	Duration   time.Duration      `json:"duration"`
}

// Driver runs one puzzle against one player, a turn at a time
type Driver struct {
	id               string
	engine           *engine.GameEngine
	player           Player
	firstTurnTimeout time.Duration
	turnTimeout      time.Duration
	log              logrus.FieldLogger
	notifier         Notifier
}

// NewDriver creates a driver owning a fresh engine for config
func NewDriver(config *engine.PuzzleConfig, player Player, opts Options) (*Driver, error) {
	if player == nil {
		return nil, fmt.Errorf("player cannot be nil")
	}
	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	if opts.FirstTurnTimeout <= 0 {
		opts.FirstTurnTimeout = DefaultFirstTurnTimeout
	}
	if opts.TurnTimeout <= 0 {
		opts.TurnTimeout = DefaultTurnTimeout
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}

	id := uuid.NewString()
	return &Driver{
		id:               id,
		engine:           eng,
		player:           player,
		firstTurnTimeout: opts.FirstTurnTimeout,
		turnTimeout:      opts.TurnTimeout,
		log:              opts.Logger.WithFields(logrus.Fields{"match": id, "puzzle": config.Name}),
		notifier:         opts.Notifier,
	}, nil
}

// ID returns the match identifier
func (d *Driver) ID() string {
	return d.id
}

// Engine returns the engine the driver owns
func (d *Driver) Engine() *engine.GameEngine {
	return d.engine
}

// Run plays turns until the game is won or lost. The returned error is
// reserved for failures of the referee itself, such as a cancelled ctx;
// every player mistake ends in a Lost result.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	d.log.WithField("max_turns", d.engine.MaxTurns()).Info("Match started")

	for turn := 1; !d.engine.IsGameOver(); turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome, err := d.playTurn(ctx, turn)
		if err != nil {
			return nil, err
		}
		if d.notifier != nil {
			d.notifier.TurnPlayed(d.id, outcome)
		}
	}

	state := d.engine.GetState()
	result := &Result{
		MatchID:    d.id,
		Status:     state.Status,
		LossKind:   state.LossKind,
		Reason:     state.Reason,
		Violations: state.Violations,
		Turns:      state.Turn,
		Cells:      state.Cells,
		Duration:   time.Since(start),
	}

	entry := d.log.WithFields(logrus.Fields{"status": result.Status, "turns": result.Turns})
	if result.Status == engine.Lost {
		entry.WithField("kind", result.LossKind).Warn(result.Reason)
	} else {
		entry.Info("Puzzle solved")
	}
	return result, nil
}

func (d *Driver) playTurn(ctx context.Context, turn int) (*engine.TurnOutcome, error) {
	log := d.log.WithField("turn", turn)

	if err := d.player.Send(d.engine.InputLines()); err != nil {
		log.WithError(err).Warn("Failed to send input to player")
		return d.engine.Timeout()
	}

	timeout := d.turnTimeout
	if turn == 1 {
		timeout = d.firstTurnTimeout
	}
	turnCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	line, err := d.player.Receive(turnCtx)
	if err != nil {
		// a cancelled match is not the player's fault
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			log.WithError(err).Warn("Player stopped responding")
		}
		return d.engine.Timeout()
	}

	log.WithField("output", line).Debug("Player answered")
	return d.engine.PlayLine(line)
}
