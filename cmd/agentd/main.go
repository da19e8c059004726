// Command agentd hosts one agent service behind POST /process.
//
// The agent's name, listen address, reasoning engine, and session store come
// from a YAML config file:
//
//	agentd -config analyst.yaml
//
// Without -config it serves a static echo agent on :8090, which is enough for
// local orchestration experiments.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"

	"github.com/hupe1980/agentrelay/config"
	"github.com/hupe1980/agentrelay/engine"
	"github.com/hupe1980/agentrelay/engine/anthropic"
	"github.com/hupe1980/agentrelay/engine/openai"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/service"
	"github.com/hupe1980/agentrelay/session"
	"github.com/hupe1980/agentrelay/session/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "agentd:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Provider API keys commonly live in a local .env during development.
	_ = godotenv.Load()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return err
		}
	}

	logger := buildLogger(cfg.Log)

	store, err := buildStore(cfg.Store)
	if err != nil {
		return err
	}

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	svc := service.New(cfg.Name, eng, func(o *service.Options) {
		o.Role = cfg.Role
		o.Store = store
		o.Logger = logger
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize service: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("agentd listening", "addr", cfg.Addr, "agent", cfg.Name)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("agentd shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return svc.Shutdown(shutdownCtx)
}

func buildLogger(cfg config.LogConfig) logging.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if cfg.Format == "json" {
		return logging.NewJSONLogger(os.Stdout, level)
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return logging.NewSlogAdapter(slog.New(handler))
}

func buildStore(cfg config.StoreConfig) (session.Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.Path)
	default:
		return session.NewInMemoryStore(), nil
	}
}

func buildEngine(cfg config.Config) (engine.Engine, error) {
	ec := cfg.Engine
	switch ec.Provider {
	case "openai":
		return openai.New(func(o *openai.Options) {
			if ec.Model != "" {
				o.Model = ec.Model
			}
			o.Temperature = ec.Temperature
			o.Instructions = ec.Instructions
		}), nil
	case "anthropic":
		return anthropic.New(func(o *anthropic.Options) {
			if ec.Model != "" {
				o.Model = anthropicsdk.Model(ec.Model)
			}
			o.Temperature = ec.Temperature
			o.Instructions = ec.Instructions
		}), nil
	case "static":
		return engine.NewStaticEngine(cfg.Name), nil
	default:
		return nil, fmt.Errorf("unknown engine provider %q", ec.Provider)
	}
}
