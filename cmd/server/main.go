package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"kulapay/internal/config"
	"kulapay/internal/dispatch"
	"kulapay/internal/notify"
	"kulapay/internal/server"
	"kulapay/internal/service"
	"kulapay/internal/storage/sqlite"
	"kulapay/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file (optional)")
	flag.Parse()

	logging.Setup()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	// Outbound messaging falls back to log-only when credentials are
	// missing, so the conversation flows stay testable without an account.
	var notifier notify.Notifier
	if cfg.AfricasTalking.Username != "" && cfg.AfricasTalking.APIKey != "" {
		notifier = notify.NewAfricasTalking(cfg.AfricasTalking.Username, cfg.AfricasTalking.APIKey)
		slog.Info("Messaging configured", "username", cfg.AfricasTalking.Username)
	} else {
		notifier = notify.LogNotifier{}
		slog.Warn("Messaging credentials not configured, notifications are log-only")
	}

	processor := service.NewProcessor(store, notify.MockLoanScheduler{})
	dispatcher := dispatch.New(processor)
	handler := server.New(dispatcher, store, notifier).Handler()

	// Wrap with h2c for HTTP/2 without TLS
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("KulaPay server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
