package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/artur/tubesave/internal/app"
	"github.com/artur/tubesave/internal/config"
	"github.com/artur/tubesave/internal/downloader"
	"github.com/artur/tubesave/internal/logging"
	"github.com/artur/tubesave/internal/shell"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCommand(os.Stdin, os.Stdout, os.Stderr)
	err := c.app.RunContext(ctx, os.Args)
	c.logger.Sync()
	if err != nil {
		c.logger.Fatal(err.Error())
	}
}

type command struct {
	app    *cli.App
	logger *zap.Logger
	stderr io.Writer
}

func newCommand(stdin io.Reader, stdout, stderr io.Writer) *command {
	c := &command{logger: zap.NewNop(), stderr: stderr}

	get := &cli.Command{
		Name:      "get",
		Usage:     "download videos, prompting for URLs when none are given",
		ArgsUsage: "[URL...]",
		Action:    c.get,
	}

	c.app = &cli.App{
		Name:      "tubesave",
		Usage:     "download YouTube videos and keep a history of them",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     config.Flags(),
		Before:    c.setup,
		Commands: []*cli.Command{
			get,
			{
				Name:   "history",
				Usage:  "list downloaded videos, newest first",
				Action: c.history,
			},
		},
		Action:          c.get,
		HideHelpCommand: true,
	}
	return c
}

func (c *command) setup(ctx *cli.Context) error {
	logger, err := logging.New(ctx.Bool(config.FlagDebug))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.RedirectStdLog(logger)
	c.logger = logger
	return nil
}

func (c *command) open(ctx *cli.Context, opts ...app.Option) (*app.App, error) {
	return app.Open(config.FromContext(ctx), c.logger, opts...)
}

func (c *command) get(ctx *cli.Context) error {
	progress := shell.NewProgress(c.stderr)
	a, err := c.open(ctx, app.WithDownloaderOptions(downloader.WithProgress(progress.Report)))
	if err != nil {
		return err
	}
	defer c.close(a)

	sh := shell.New(a.Archive, ctx.App.Reader, ctx.App.Writer, c.logger, shell.WithProgress(progress))
	if ctx.NArg() == 0 {
		return sh.Run(ctx.Context)
	}

	urls := ctx.Args().Slice()
	failed := 0
	for _, url := range urls {
		if err := sh.Download(ctx.Context, strings.TrimSpace(url)); err != nil {
			failed++
		}
		if ctx.Context.Err() != nil {
			break
		}
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d downloads failed", failed, len(urls)), 1)
	}
	return nil
}

func (c *command) history(ctx *cli.Context) error {
	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer c.close(a)

	return shell.New(a.Archive, ctx.App.Reader, ctx.App.Writer, c.logger).PrintHistory(ctx.Context)
}

func (c *command) close(a *app.App) {
	if err := a.Close(); err != nil {
		c.logger.Error("failed to close", zap.Error(err))
	}
}
