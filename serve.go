package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/circuit-tracer/api"
	"github.com/wricardo/circuit-tracer/circuit/config"
	"github.com/wricardo/circuit-tracer/circuit/runs"
	"github.com/wricardo/circuit-tracer/circuit/service"
	"github.com/wricardo/circuit-tracer/circuit/trace"
	"github.com/wricardo/circuit-tracer/logging"
	"github.com/wricardo/circuit-tracer/transport/mcp"
	"github.com/wricardo/circuit-tracer/transport/websocket"
)

// maxCleanupInterval caps how long expired runs linger between sweeps
const maxCleanupInterval = time.Hour

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket feed and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.StringFlag{Name: "boards-dir", Usage: "directory containing board files"},
			&cli.DurationFlag{Name: "trace-timeout", Usage: "bound on a single search (0 disables)"},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "expose the server through an ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runServe,
	}
}

// loadSettings reads settings and applies the serve flags that were set
func loadSettings(cmd *cli.Command) (config.Settings, error) {
	settings, err := config.LoadSettings(cmd.String("config"))
	if err != nil {
		return settings, err
	}

	if cmd.IsSet("host") {
		settings.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		settings.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("boards-dir") {
		settings.BoardsDir = cmd.String("boards-dir")
	}
	if cmd.IsSet("trace-timeout") {
		settings.TraceTimeout = cmd.Duration("trace-timeout")
	}
	if cmd.Bool("debug") {
		settings.LogLevel = "debug"
	}
	return settings, settings.Validate()
}

// newLogger builds the process logger from settings
func newLogger(cmd *cli.Command, settings config.Settings) (*zap.Logger, error) {
	return logging.New(settings.LogLevel, cmd.Bool("debug"))
}

// initializeServices wires the board catalog, run store and trace service
func initializeServices(settings config.Settings, logger *zap.Logger) (service.TraceService, *runs.Manager, error) {
	catalog, err := config.NewManager(settings.BoardsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create board catalog: %w", err)
	}

	kind, err := trace.ParseStorageKind(settings.DefaultStorage)
	if err != nil {
		return nil, nil, err
	}

	runStore := runs.NewManager()
	traceService := service.NewTraceService(catalog, runStore,
		service.WithLogger(logger.Named("service")),
		service.WithTraceTimeout(settings.TraceTimeout),
		service.WithDefaultStorage(kind),
	)
	return traceService, runStore, nil
}

// newHTTPHandler combines the API server and the /mcp endpoint
func newHTTPHandler(traceService service.TraceService, hub *websocket.Hub, mcpClient *mcp.Client, logger *zap.Logger) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(traceService, hub, logger.Named("api")))
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// runServe starts the HTTP server and blocks until SIGINT or SIGTERM
func runServe(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, settings)
	if err != nil {
		return err
	}
	defer logger.Sync()

	traceService, runStore, err := initializeServices(settings, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(logger.Named("ws"))
	go hub.Run(ctx)
	go runCleanupRoutine(ctx, runStore, settings.RunRetention, logger)

	addr := settings.Addr()
	mcpClient := mcp.NewClient("http://"+addr, Version, mcp.WithTimeout(writeTimeout(settings.TraceTimeout)))
	handler := newHTTPHandler(traceService, hub, mcpClient, logger)

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(settings.TraceTimeout),
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serverErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?board=<name>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)),
			zap.String("boards_dir", settings.BoardsDir))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler, logger.Named("ngrok"))
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-serverErr:
		stop()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("Server stopped")
	return nil
}

// writeTimeout leaves room for the slowest permitted search; an unbounded
// search gets an unbounded write
func writeTimeout(traceTimeout time.Duration) time.Duration {
	if traceTimeout <= 0 {
		return 0
	}
	return traceTimeout + 15*time.Second
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, authToken, domain string, handler http.Handler, logger *zap.Logger) {
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("Using custom ngrok domain", zap.String("domain", domain))
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("Failed to start ngrok tunnel", zap.Error(err))
		return
	}

	logger.Info("ngrok tunnel established",
		zap.String("url", tun.URL()),
		zap.String("api", tun.URL()+"/api"),
		zap.String("mcp", tun.URL()+"/mcp"))

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("Failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		logger.Error("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// runCleanupRoutine periodically removes runs not read within retention
func runCleanupRoutine(ctx context.Context, store *runs.Manager, retention time.Duration, logger *zap.Logger) {
	interval := retention
	if interval > maxCleanupInterval {
		interval = maxCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := store.CleanupExpired(retention); removed > 0 {
				logger.Info("Cleaned up expired runs", zap.Int("removed", removed), zap.Int("remaining", store.Count()))
			}
		}
	}
}
