package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/circuit-tracer/circuit/config"
	"github.com/wricardo/circuit-tracer/transport/mcp"
	"github.com/wricardo/circuit-tracer/transport/websocket"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp"},
		Usage:   "run an MCP stdio server proxying to the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Usage: "REST API to proxy (default: probe host:port, else start an internal server)"},
			&cli.StringFlag{Name: "boards-dir", Usage: "directory containing board files for the internal server"},
		},
		Action: runStdioMCP,
	}
}

// runStdioMCP serves MCP over stdio. It reuses a running API when one answers,
// otherwise it starts an internal API on a random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	// stdout carries the MCP protocol; logs stay on stderr
	logger, err := newLogger(cmd, settings)
	if err != nil {
		return err
	}
	defer logger.Sync()

	baseURL := cmd.String("api-url")
	if baseURL == "" {
		externalURL := "http://" + settings.Addr()
		if apiAvailable(ctx, externalURL) {
			logger.Info("Using external API server", zap.String("url", externalURL))
			baseURL = externalURL
		}
	}

	if baseURL == "" {
		internalURL, shutdown, err := startInternalServer(ctx, settings, logger)
		if err != nil {
			return err
		}
		defer shutdown()
		baseURL = internalURL
	}

	mcpClient := mcp.NewClient(baseURL, Version, mcp.WithTimeout(writeTimeout(settings.TraceTimeout)))
	logger.Info("MCP stdio server ready", zap.String("api", baseURL))

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable reports whether a REST API answers at baseURL
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
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

// startInternalServer serves the API on a loopback port and returns its URL
func startInternalServer(ctx context.Context, settings config.Settings, logger *zap.Logger) (string, func(), error) {
	traceService, _, err := initializeServices(settings, logger)
	if err != nil {
		return "", nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}
	internalURL := "http://" + listener.Addr().String()

	ctx, cancel := context.WithCancel(ctx)
	hub := websocket.NewHub(logger.Named("ws"))
	go hub.Run(ctx)

	mcpClient := mcp.NewClient(internalURL, Version, mcp.WithTimeout(writeTimeout(settings.TraceTimeout)))
	httpServer := &http.Server{Handler: newHTTPHandler(traceService, hub, mcpClient, logger)}

	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("Internal HTTP server error", zap.Error(err))
		}
	}()

	logger.Info("Started internal HTTP server", zap.String("url", internalURL))

	shutdown := func() {
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		httpServer.Shutdown(shutdownCtx)
	}
	return internalURL, shutdown, nil
}
