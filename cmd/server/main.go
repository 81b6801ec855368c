package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tntchem/devhub/api"
	"github.com/tntchem/devhub/config"
	"github.com/tntchem/devhub/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration YAML file")
	addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := store.NewPGStore(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	if err := store.NewMigrator(pg.Pool(), logger).Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	handler, mw := api.NewRouter(api.Stores{
		Compounds:   pg.Compounds(),
		Deployments: pg.Deployments(),
		Users:       pg.Users(),
		Sessions:    pg.Sessions(),
	}, api.Config{
		LinkSecret:     []byte(cfg.Auth.LinkSecret),
		Issuer:         cfg.Auth.Issuer,
		BaseURL:        cfg.Server.BaseURL,
		LinkTTL:        cfg.Auth.LinkTTL,
		SessionTTL:     cfg.Auth.SessionTTL,
		AuthRateLimit:  cfg.Auth.RatePerMinute,
		OAuthProviders: cfg.OAuth,
		Logger:         logger,
	})
	defer mw.Stop()

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
	}

	go func() {
		logger.Info("Starting server", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}
