// Command player replays a fixed script of moves, for smoke-testing the
// referee and the server.
//
// With no --url it speaks the referee protocol on stdin/stdout: it reads the
// puzzle on the first turn and prints one scripted line per turn, skipping
// over the grid snapshot sent before each later turn. Run it under the
// referee:
//
//	magnets referee configs/twobyfour.txt -- player --moves "0 0 +;0 1 -;2 0 +;3 1 +"
//
// With --url it plays the same script through the REST API instead.
// Script lines are sent as they are, so malformed moves can be scripted too.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/magnets-referee/game/engine"
	"github.com/wricardo/magnets-referee/game/service"
)

var errGameLost = errors.New("game lost")

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(log, os.Stdin, os.Stdout).Run(ctx, os.Args); err != nil {
		log.WithError(err).Error("Player failed")
		stop()
		os.Exit(1)
	}
}

func newApp(log *logrus.Logger, in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "Scripted Magnets player",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "moves", Usage: "Moves separated by ';'"},
			&cli.StringFlag{Name: "script", Usage: "File with one move per line"},
			&cli.StringFlag{Name: "url", Usage: "Play through the REST API at this base URL"},
			&cli.StringFlag{Name: "config", Usage: "Puzzle to play in API mode (server default when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume an API session by ID, skipping moves already played"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between API moves"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output on stderr"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("v") {
				log.SetLevel(logrus.DebugLevel)
			}

			moves, err := loadScript(cmd.String("moves"), cmd.String("script"))
			if err != nil {
				return err
			}

			if baseURL := cmd.String("url"); baseURL != "" {
				return playAPI(ctx, NewClient(strings.TrimSuffix(baseURL, "/")), moves, apiOptions{
					configID: cmd.String("config"),
					resume:   cmd.String("continue"),
					delay:    cmd.Duration("delay"),
				}, out, log)
			}
			return playStdio(in, out, moves, log)
		},
	}
}

// loadScript reads moves from the inline list, or from a file when given
func loadScript(inline, path string) ([]string, error) {
	var raw []string
	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		raw = strings.Split(string(data), "\n")
	case inline != "":
		raw = strings.Split(inline, ";")
	default:
		return nil, errors.New("no moves: use --moves or --script")
	}

	moves := make([]string, 0, len(raw))
	for _, m := range raw {
		if m = strings.TrimSpace(m); m != "" {
			moves = append(moves, m)
		}
	}
	if len(moves) == 0 {
		return nil, errors.New("script is empty")
	}
	return moves, nil
}

// playStdio answers the referee: setup lines on the first turn, then one
// snapshot of height lines before every later turn
func playStdio(in io.Reader, out io.Writer, moves []string, log logrus.FieldLogger) error {
	scanner := bufio.NewScanner(in)
	readLines := func(n int) ([]string, error) {
		lines := make([]string, 0, n)
		for len(lines) < n {
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return nil, err
				}
				return nil, io.ErrUnexpectedEOF
			}
			lines = append(lines, scanner.Text())
		}
		return lines, nil
	}

	header, err := readLines(2)
	if err != nil {
		return fmt.Errorf("read puzzle size: %w", err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(header[1]))
	if err != nil {
		return fmt.Errorf("read puzzle height: %w", err)
	}
	rest, err := readLines(4 + height)
	if err != nil {
		return fmt.Errorf("read puzzle: %w", err)
	}
	if _, err := engine.ParseTestCase("stdin", append(header, rest...)); err != nil {
		return err
	}

	for i, move := range moves {
		if i > 0 {
			snapshot, err := readLines(height)
			if err != nil {
				// the referee stops sending once the game is over
				if errors.Is(err, io.ErrUnexpectedEOF) {
					return nil
				}
				return err
			}
			log.WithField("snapshot", strings.Join(snapshot, "|")).Debug("Turn input")
		}
		if _, err := fmt.Fprintln(out, move); err != nil {
			return err
		}
	}
	return nil
}

type apiOptions struct {
	configID string
	resume   string
	delay    time.Duration
}

// playAPI plays the script through one session and prints the final grid
func playAPI(ctx context.Context, client *Client, moves []string, opts apiOptions, out io.Writer, log logrus.FieldLogger) error {
	state, err := openSession(ctx, client, opts)
	if err != nil {
		return err
	}
	log = log.WithField("session", client.SessionID())
	if state.GameOver() {
		return fmt.Errorf("session %s is already %s", client.SessionID(), state.Status)
	}

	if state.Turn > 0 {
		if state.Turn >= len(moves) {
			return fmt.Errorf("session %s has played %d turns, script has %d moves", client.SessionID(), state.Turn, len(moves))
		}
		log.WithField("skipped", state.Turn).Info("Resuming session")
		moves = moves[state.Turn:]
	}

	for i, move := range moves {
		if i > 0 && opts.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.delay):
			}
		}

		result, err := client.Place(ctx, move)
		if err != nil {
			return err
		}
		state = result.GameState
		log.WithFields(logrus.Fields{"move": move, "status": state.Status}).Debug("Placed")

		if state.GameOver() {
			break
		}
	}

	fmt.Fprintf(out, "Session %s: %s after %d turns\n", client.SessionID(), state.Status, state.Turn)
	for _, row := range state.Cells {
		fmt.Fprintln(out, row)
	}
	if state.Status == engine.Lost {
		fmt.Fprintln(out, state.Reason)
		return errGameLost
	}
	return nil
}

func openSession(ctx context.Context, client *Client, opts apiOptions) (*engine.GameState, error) {
	var (
		info *service.SessionInfo
		err  error
	)
	if opts.resume != "" {
		info, err = client.GetSession(ctx, opts.resume)
	} else {
		info, err = client.CreateSession(ctx, opts.configID)
	}
	if err != nil {
		return nil, err
	}
	if info.GameState == nil {
		return nil, fmt.Errorf("session %s has no game state", info.ID)
	}
	return info.GameState, nil
}
