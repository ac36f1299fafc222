package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/magnets-referee/game/config"
	"github.com/wricardo/magnets-referee/game/engine"
	"github.com/wricardo/magnets-referee/game/referee"
)

var errMatchLost = errors.New("player lost the match")

func refereeCommand(log *logrus.Logger, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "referee",
		Aliases:   []string{"play"},
		Usage:     "Play one puzzle against a player program over stdin/stdout",
		ArgsUsage: "<puzzle file or config id> -- <player> [args...]",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "first-turn-timeout", Usage: "Time allowed for the first answer (FIRST_TURN_TIMEOUT)"},
			&cli.DurationFlag{Name: "turn-timeout", Usage: "Time allowed for every later answer (TURN_TIMEOUT)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) > 0 && args[0] == "--" {
				args = args[1:]
			}
			if len(args) < 2 {
				return fmt.Errorf("usage: %s referee %s", cmd.Root().Name, cmd.ArgsUsage)
			}
			puzzleArg, playerArgs := args[0], args[1:]
			if playerArgs[0] == "--" {
				playerArgs = playerArgs[1:]
			}
			if len(playerArgs) == 0 {
				return errors.New("missing player command")
			}

			settings, err := loadSettings(cmd, log)
			if err != nil {
				return err
			}
			puzzle, err := resolvePuzzle(puzzleArg, settings)
			if err != nil {
				return err
			}

			result, err := runMatch(ctx, puzzle, playerArgs, settings, log)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if result.Status == engine.Lost {
				return errMatchLost
			}
			return nil
		},
	}
}

// resolvePuzzle reads arg as a puzzle file, falling back to a catalogue id
func resolvePuzzle(arg string, settings *config.Settings) (*engine.PuzzleConfig, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return engine.LoadPuzzleConfig(arg)
	}

	configManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, err
	}
	return configManager.LoadConfig(arg)
}

func runMatch(ctx context.Context, puzzle *engine.PuzzleConfig, playerArgs []string, settings *config.Settings, log logrus.FieldLogger) (*referee.Result, error) {
	player, err := referee.StartProcessPlayer(ctx, playerArgs[0], playerArgs[1:]...)
	if err != nil {
		return nil, err
	}
	defer player.Close()

	driver, err := referee.NewDriver(puzzle, player, referee.Options{
		FirstTurnTimeout: settings.FirstTurnTimeout,
		TurnTimeout:      settings.TurnTimeout,
		Logger:           log,
		Notifier: referee.NotifierFunc(func(matchID string, outcome *engine.TurnOutcome) {
			log.WithFields(logrus.Fields{
				"match":   matchID,
				"turn":    outcome.Turn,
				"status":  outcome.Status,
				"changed": len(outcome.Changed),
			}).Debug("Turn played")
		}),
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"puzzle": puzzle.Name,
		"player": playerArgs[0],
		"match":  driver.ID(),
	}).Info("Starting match")
	return driver.Run(ctx)
}
