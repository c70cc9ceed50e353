package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sunwarden/sunwarden/pkg/device"
	"github.com/sunwarden/sunwarden/pkg/log"
	"github.com/sunwarden/sunwarden/pkg/notify"
	"github.com/sunwarden/sunwarden/pkg/server"
	"github.com/sunwarden/sunwarden/pkg/source"
	"github.com/sunwarden/sunwarden/pkg/storage"
	"github.com/sunwarden/sunwarden/pkg/weather"

	"github.com/levenlabs/go-lflag"
	"github.com/levenlabs/go-llog"
)

func main() {
	// init packages
	w := weather.Configured()
	sel := source.Configured(w)
	reg := device.Configured()
	db := storage.Configured()
	n := notify.Configured()

	// init server
	srv := server.Configured(sel, reg, db, n)

	// parse flags
	lflag.Configure()

	var level slog.Level
	// lflag automatically sets llog's level, but we need to set the slog level
	switch llog.GetLevel() {
	case llog.DebugLevel:
		level = slog.LevelDebug
	case llog.InfoLevel:
		level = slog.LevelInfo
	case llog.WarnLevel:
		level = slog.LevelWarn
	case llog.ErrorLevel:
		level = slog.LevelError
	default:
		panic(fmt.Errorf("unknown log level: %s", llog.GetLevel().String()))
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	slog.Debug("logger configured", slog.String("level", level.String()))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := n.Connect(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to connect notifier", "error", err)
		os.Exit(1)
	}
	defer n.Close()

	// If initialization inside lflag.Do failed, we wouldn't be here (panic).
	defer func() {
		if err := db.Close(); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to close storage", "error", err)
		}
	}()

	// Run blocks until the context is canceled or an error happens
	if err := srv.Run(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "server failed", "error", err)
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "server exited cleanly")
}
