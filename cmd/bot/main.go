package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/artur/tubesave/internal/app"
	"github.com/artur/tubesave/internal/bot"
	"github.com/artur/tubesave/internal/config"
	"github.com/artur/tubesave/internal/handler"
	"github.com/artur/tubesave/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := zap.NewNop()

	cliApp := &cli.App{
		Name:  "bot",
		Usage: "Telegram bot that downloads YouTube videos",
		Flags: config.BotFlags(),
		Before: func(c *cli.Context) error {
			l, err := logging.New(c.Bool(config.FlagDebug))
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			zap.RedirectStdLog(l)
			logger = l
			return nil
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, config.FromContext(c), logger)
		},
		HideHelpCommand: true,
	}

	err := cliApp.RunContext(ctx, os.Args)
	logger.Sync()
	if err != nil {
		logger.Fatal(err.Error())
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if err := cfg.ValidateBot(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a, err := app.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close", zap.Error(err))
		}
	}()

	b, err := bot.New(cfg.Token, logger)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	b.RegisterHandler(handler.NewStartHandler(logger))
	b.RegisterHandler(handler.NewHistoryHandler(a.Archive, logger))
	b.RegisterHandler(handler.NewYouTubeHandler(a.Archive, logger))

	return b.Run(ctx)
}
