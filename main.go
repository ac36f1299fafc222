// Command magnets runs the Magnets puzzle referee.
//
// Commands:
//  1. "server" – HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "mcp" – MCP stdio server; reuses a running API or starts an internal one
//  3. "referee" – plays one puzzle against an external player program
//  4. "version"
//
// Every setting can come from the environment (or a .env file) and is
// overridden by the matching flag.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/magnets-referee/game/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Magnets Referee"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("Error loading .env file")
		}
	} else {
		log.Debug("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(log, os.Stdout).Run(ctx, os.Args); err != nil {
		log.WithError(err).Error("Command failed")
		stop()
		os.Exit(1)
	}
}

// newApp builds the command tree. Results meant for the user go to out;
// logs go to the logger, which writes to stderr.
func newApp(log *logrus.Logger, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "magnets",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
			&cli.StringFlag{Name: "config-dir", Usage: "Directory containing puzzle files (CONFIG_DIR)"},
			&cli.StringFlag{Name: "sessions-dir", Usage: "Directory for file session storage (SESSIONS_DIR)"},
			&cli.StringFlag{Name: "session-store", Usage: "Session storage: file or sqlite (SESSION_STORE)"},
			&cli.StringFlag{Name: "sqlite-path", Usage: "SQLite database path (SQLITE_PATH)"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetLevel(logrus.DebugLevel)
				log.SetReportCaller(true)
			}
			return ctx, nil
		},
		DefaultCommand: "server",
		Commands: []*cli.Command{
			serverCommand(log),
			mcpCommand(log),
			refereeCommand(log, out),
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(out, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

// loadSettings reads the environment and applies flags set on the command line
func loadSettings(cmd *cli.Command, log *logrus.Logger) (*config.Settings, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}

	overrideString := func(flag string, dst *string) {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}
	overrideString("config-dir", &settings.ConfigDir)
	overrideString("sessions-dir", &settings.SessionsDir)
	overrideString("session-store", &settings.SessionStore)
	overrideString("sqlite-path", &settings.SQLitePath)
	overrideString("host", &settings.Host)
	overrideString("ngrok-auth", &settings.NgrokAuthToken)
	overrideString("ngrok-domain", &settings.NgrokDomain)

	if cmd.IsSet("port") {
		settings.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("ngrok") {
		settings.NgrokEnabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("first-turn-timeout") {
		settings.FirstTurnTimeout = cmd.Duration("first-turn-timeout")
	}
	if cmd.IsSet("turn-timeout") {
		settings.TurnTimeout = cmd.Duration("turn-timeout")
	}
	if cmd.Bool("debug") {
		settings.Debug = true
	}
	if settings.Debug {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}
