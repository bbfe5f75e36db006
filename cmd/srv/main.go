package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gookit/slog"

	"github.com/minima-tools/go-minima-gateway/pkg/appconfig"
	"github.com/minima-tools/go-minima-gateway/pkg/core/session"
	"github.com/minima-tools/go-minima-gateway/pkg/gateway"
	"github.com/minima-tools/go-minima-gateway/pkg/node"
)

const shutdownGrace = 10 * time.Second

func main() {
	configFile := flag.String("config", "", "Path to the configuration file")
	flag.StringVar(configFile, "C", "", "Path to the configuration file (shorthand)")
	flag.Parse()

	slog.SetLogLevel(slog.InfoLevel)
	slog.SetFormatter(slog.NewJSONFormatter())

	loader := appconfig.NewLoader("GATEWAY")
	if *configFile != "" {
		if err := loader.SetConfigFilePath(*configFile); err != nil {
			slog.Fatalf("invalid config file path: %v", err)
		}
	}
	cfg, err := loader.Load()
	if err != nil {
		slog.Fatalf("failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		slog.Fatalf("invalid configuration: %v", err)
	}

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		slog.Fatalf("invalid session configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := node.New(cfg.Node)
	if err := client.Login(ctx, cfg.Node.Password); err != nil {
		slog.Fatalf("failed to establish a node session: %v", err)
	}
	slog.WithFields(slog.M{"host": cfg.Node.Host, "port": cfg.Node.Port}).
		Info("node session established")

	store := session.NewStore(cfg.Session.Store)
	store.StartJanitor(ctx)
	engine := session.NewEngine(store, client, engineCfg)

	srv := gateway.New(
		gateway.WithConfig(cfg.Server),
		gateway.WithDraftEngine(engine),
		gateway.WithNodeQueries(client),
	)

	errCh := make(chan error, 1)
	go func() {
		slog.WithFields(slog.M{"addr": srv.SocketAddr()}).Info("gateway listening")
		errCh <- srv.ListenAndServe(ctx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Fatalf("server terminated: %v", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Errorf("graceful shutdown failed: %v", err)
			os.Exit(1)
		}
		slog.Info("gateway stopped")
	}
}
