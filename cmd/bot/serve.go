package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tg-notes-bot/internal/bootstrap"
	"tg-notes-bot/internal/config"
	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/internal/server"
	"tg-notes-bot/internal/tracer"

	"github.com/spf13/cobra"
)

// serveCmd runs the poll loop, the update consumer and the ops server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	// 1. Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 2. Logging and tracing
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, sysLogger)
	defer func() { _ = shutdownTracer(context.Background()) }()

	// 3. Container
	container, err := bootstrap.NewContainer(cfg, sysLogger)
	if err != nil {
		sysLogger.Error("MAIN", "Failed to bootstrap", map[string]interface{}{"error": err.Error()})
		return err
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		return err
	}

	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			sysLogger.Error("MAIN", "Ops server stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	// 5. Poll until interrupted
	sysLogger.Info("MAIN", "Bot started", map[string]interface{}{"name": cfg.Telegram.BotName})
	return container.Adapter.Run(ctx)
}
