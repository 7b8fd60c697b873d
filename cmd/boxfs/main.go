package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string
)

func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func setupSignalHandlers(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupLogging(slog.LevelInfo)
	setupSignalHandlers(cancel)

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("Failed to execute command.",
			"err", err,
		)
		ExitCode = 1
	}
}
