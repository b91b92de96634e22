// Package app wires a record store, the YouTube downloader and the archive service
// from a config.Config.
package app

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/artur/tubesave/internal/archive"
	"github.com/artur/tubesave/internal/config"
	"github.com/artur/tubesave/internal/database"
	"github.com/artur/tubesave/internal/database/boltdb"
	"github.com/artur/tubesave/internal/database/repository"
	"github.com/artur/tubesave/internal/downloader"
)

type App struct {
	Archive *archive.Service
	Store   archive.Store

	closers []io.Closer
	log     *zap.Logger
}

type options struct {
	gateway        archive.Gateway
	downloaderOpts []downloader.Option
	archiveOpts    []archive.Option
}

type Option func(*options)

// WithDownloaderOptions adds options applied after the ones derived from the config.
func WithDownloaderOptions(opts ...downloader.Option) Option {
	return func(o *options) {
		o.downloaderOpts = append(o.downloaderOpts, opts...)
	}
}

// WithGateway replaces the YouTube downloader.
func WithGateway(gateway archive.Gateway) Option {
	return func(o *options) {
		o.gateway = gateway
	}
}

func WithArchiveOptions(opts ...archive.Option) Option {
	return func(o *options) {
		o.archiveOpts = append(o.archiveOpts, opts...)
	}
}

// Open validates cfg and builds the application. The caller must Close it.
func Open(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{log: logger.Named("app")}

	store, err := a.openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Store = store

	gateway := o.gateway
	if gateway == nil {
		dlOpts := append([]downloader.Option{
			downloader.WithOutputDir(cfg.OutputDir),
			downloader.WithTemplate(cfg.Template),
			downloader.WithMode(cfg.Mode()),
			downloader.WithLogger(logger),
		}, o.downloaderOpts...)
		gateway = downloader.NewYouTubeDownloader(dlOpts...)
	}

	a.Archive = archive.New(store, gateway, logger, o.archiveOpts...)
	a.log.Debug("application ready",
		zap.String("store", string(cfg.Store)),
		zap.String("output", cfg.OutputDir),
		zap.String("mode", string(cfg.Mode())))
	return a, nil
}

func (a *App) openStore(cfg config.Config, logger *zap.Logger) (archive.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := database.New(cfg.DatabasePath(), logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
		a.closers = append(a.closers, db)
		return repository.NewVideoRepository(db.DB, logger), nil
	case config.StoreBolt:
		store, err := boltdb.Open(cfg.DatabasePath())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	case config.StoreMemory:
		return repository.NewMemoryVideoRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Close releases every resource opened by Open and reports all failures.
func (a *App) Close() error {
	var result *multierror.Error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	a.closers = nil
	return result.ErrorOrNil()
}
