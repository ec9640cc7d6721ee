// Command pacta runs the contract analysis service: an HTTP API and
// optional MCP stdio transport over the four-agent analysis pipeline.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/pacta/history"
	"github.com/hazyhaar/pacta/reason"
	"github.com/hazyhaar/pacta/service"
)

func main() {
	configPath := env("CONFIG_FILE", "")
	mcpTransport := env("MCP_TRANSPORT", "")
	logLevel := env("LOG_LEVEL", "info")

	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	var cfg *service.Config
	if configPath != "" {
		loaded, err := service.LoadConfigFile(configPath)
		if err != nil {
			slog.Error("config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = service.DefaultConfig()
	}
	// Environment overrides the file for the common deployment knobs.
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("HISTORY_DB"); v != "" {
		cfg.HistoryPath = v
	}
	if v := os.Getenv("LLM_ENDPOINT"); v != "" {
		cfg.LLM.Endpoint = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := history.Open(cfg.HistoryPath)
	if err != nil {
		slog.Error("history db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Reasoning client with retry, per-call timeout and a circuit breaker
	// shared by all four agents.
	client := reason.NewHTTPClient(reason.HTTPConfig{
		Endpoint:  cfg.LLM.Endpoint,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		Timeout:   cfg.LLM.Timeout,
		MaxTokens: cfg.LLM.MaxTokens,
		Logger:    logger,
	})
	breaker := reason.NewCircuitBreaker()
	invoke := reason.Chain(client.Invoke,
		reason.WithBreaker(breaker),
		reason.WithRetry(cfg.LLM.MaxRetries, cfg.LLM.Backoff, logger),
		reason.WithTimeout(cfg.LLM.Timeout),
	)

	svc, err := service.New(cfg, db, invoke, logger)
	if err != nil {
		slog.Error("service", "error", err)
		os.Exit(1)
	}

	if mcpTransport == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "pacta",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(mcpSrv)

		slog.Info("MCP stdio starting")
		if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("MCP stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           svc.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute, // analyses block until all agents resolve
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("pacta starting", "addr", cfg.ListenAddr, "model", cfg.LLM.Model)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
