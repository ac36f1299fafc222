package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/magnets-referee/api"
	"github.com/wricardo/magnets-referee/game/config"
	"github.com/wricardo/magnets-referee/game/service"
	"github.com/wricardo/magnets-referee/game/session"
	"github.com/wricardo/magnets-referee/transport/mcp"
	"github.com/wricardo/magnets-referee/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

const (
	sessionMaxAge       = 24 * time.Hour
	sessionCleanupEvery = time.Hour
	storeSyncEvery      = 5 * time.Second
)

func serverCommand(log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"http"},
		Usage:   "Run the HTTP server with REST API, WebSocket and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (HOST)"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (PORT)"},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel (NGROK_ENABLED)"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token (NGROK_AUTHTOKEN)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (NGROK_DOMAIN)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := loadSettings(cmd, log)
			if err != nil {
				return err
			}
			return runHTTPServer(ctx, settings, log)
		},
	}
}

func mcpCommand(log *logrus.Logger) *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "Run an MCP stdio server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "REST API to reuse when it is running"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := loadSettings(cmd, log)
			if err != nil {
				return err
			}
			return runStdioMCP(ctx, cmd.String("api-url"), settings, log)
		},
	}
}

// services bundles what the transports need
type services struct {
	game     service.GameService
	sessions *session.Manager
	store    session.SessionPersistence
}

func (s *services) Close() error {
	return s.sessions.Close()
}

// initializeServices wires the puzzle catalogue, session storage and the game
// service according to settings.
func initializeServices(settings *config.Settings, log logrus.FieldLogger) (*services, error) {
	configManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	var store session.SessionPersistence
	switch settings.SessionStore {
	case config.StoreSQLite:
		store, err = session.NewSQLitePersistence(settings.SQLitePath, configManager)
	default:
		store, err = session.NewFilePersistence(settings.SessionsDir, configManager)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s session store: %w", settings.SessionStore, err)
	}

	sessionManager := session.NewManagerWithPersistence(store)
	sessionManager.SetLogger(log)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.WithError(err).Warn("Failed to load persisted sessions")
	}

	log.WithFields(logrus.Fields{
		"config_dir": settings.ConfigDir,
		"store":      settings.SessionStore,
		"sessions":   sessionManager.Count(),
		"default":    configManager.DefaultID(),
	}).Info("Services initialized")

	return &services{
		game:     service.NewGameService(sessionManager, configManager, log),
		sessions: sessionManager,
		store:    store,
	}, nil
}

// maintainSessions prunes expired sessions and drops sessions whose stored
// copy was removed behind the server's back, until ctx is done.
func maintainSessions(ctx context.Context, manager *session.Manager, store session.SessionPersistence, log logrus.FieldLogger) {
	cleanup := time.NewTicker(sessionCleanupEvery)
	defer cleanup.Stop()
	storeSync := time.NewTicker(storeSyncEvery)
	defer storeSync.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanup.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				log.WithField("removed", removed).Info("Cleaned up expired sessions")
			}
		case <-storeSync.C:
			pruned := 0
			for _, sess := range manager.List() {
				if !store.Exists(sess.ID) {
					if err := manager.DeleteFromMemory(sess.ID); err == nil {
						pruned++
					}
				}
			}
			if pruned > 0 {
				log.WithField("pruned", pruned).Info("Pruned sessions missing from the store")
			}
		}
	}
}

// newHandler mounts the API, WebSocket and MCP endpoint on one router
func newHandler(game service.GameService, hub *websocket.Hub, baseURL string, log logrus.FieldLogger) http.Handler {
	apiServer := api.NewServer(game, hub, log)
	apiServer.Router().Handle("/mcp", mcp.NewClient(baseURL, log))
	return apiServer
}

// runHTTPServer serves until ctx is cancelled, optionally through an ngrok tunnel
func runHTTPServer(ctx context.Context, settings *config.Settings, log *logrus.Logger) error {
	svc, err := initializeServices(settings, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.WithError(err).Warn("Failed to close session store")
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub(log)
	go hub.Run(ctx)
	go maintainSessions(ctx, svc.sessions, svc.store, log)

	addr := settings.Addr()
	handler := newHandler(svc.game, hub, "http://"+addr, log)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.WithFields(logrus.Fields{
			"api":       fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Infof("%s v%s listening on %s", AppName, Version, addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			cancel()
		}
	}()

	if settings.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, settings, handler, log)
		}()
	}

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("Server stopped")

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

func runNgrok(ctx context.Context, settings *config.Settings, handler http.Handler, log logrus.FieldLogger) {
	if settings.NgrokAuthToken == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if settings.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.NgrokDomain))
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(settings.NgrokAuthToken))
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.WithField("url", tun.URL()).Info("Ngrok tunnel established")
	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Warn("Ngrok server error")
	}
	log.Info("Ngrok tunnel closed")
}

// apiReachable reports whether a REST API already answers at baseURL
func apiReachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP serves MCP over stdio. It proxies to the API at apiURL when
// one is running and otherwise starts an internal API on a loopback port.
func runStdioMCP(ctx context.Context, apiURL string, settings *config.Settings, log *logrus.Logger) error {
	baseURL := apiURL
	if apiReachable(ctx, apiURL) {
		log.WithField("api", apiURL).Info("Using external API server for MCP")
	} else {
		svc, err := initializeServices(settings, log)
		if err != nil {
			return err
		}
		defer svc.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		hub := websocket.NewHub(log)
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(svc.game, hub, log)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		log.WithField("api", baseURL).Info("Started internal API server for MCP")
	}

	client := mcp.NewClient(baseURL, log)
	log.Info("MCP stdio server ready")
	return server.ServeStdio(client.GetMCPServer())
}
