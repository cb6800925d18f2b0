package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aurumlife/aurum/adapter/cli"
	"github.com/aurumlife/aurum/adapter/cli/priority"
	"github.com/aurumlife/aurum/internal/app"
	"github.com/aurumlife/aurum/pkg/config"
	"github.com/aurumlife/aurum/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development defaults", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			// The CLI still prints usage and helpful hints without a
			// database.
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()
		cli.SetContainer(container)
	}

	cli.AddCommand(priority.Cmd)
	cli.Execute(ctx)
}
