// Package archive sequences a single download: validate the URL, reuse an existing
// record if there is one, otherwise download through the Gateway and record the result.
package archive

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/artur/tubesave/internal/database/models"
	"github.com/artur/tubesave/internal/validator"
)

// Store persists download records keyed by URL.
type Store interface {
	// Save inserts the record. A record with the same URL already present makes Save a no-op.
	Save(ctx context.Context, record *models.VideoRecord) error
	// FindByURL returns (nil, nil) when no record exists for url.
	FindByURL(ctx context.Context, url string) (*models.VideoRecord, error)
	// ListAll returns every record, most recent first.
	ListAll(ctx context.Context) ([]models.VideoRecord, error)
}

// Gateway downloads the media behind url and reports where it was written.
type Gateway interface {
	Download(ctx context.Context, url string) (title string, filePath string, err error)
}

// State is a step of Execute, used for logging.
type State string

const (
	StateIdle             State = "idle"
	StateValidating       State = "validating"
	StateCheckingExisting State = "checking-existing"
	StateShortCircuit     State = "short-circuit"
	StateDownloading      State = "downloading"
	StatePersisting       State = "persisting"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Service is the download orchestrator. It is not safe for concurrent Execute calls
// on the same URL; shells call it sequentially.
type Service struct {
	store   Store
	gateway Gateway
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Service)

// WithClock overrides the timestamp source used for new records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, gateway Gateway, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:   store,
		gateway: gateway,
		log:     logger.Named("archive"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute downloads url unless a record for it already exists, and returns the record.
func (s *Service) Execute(ctx context.Context, url string) (*models.VideoRecord, error) {
	log := s.log.With(zap.String("url", url))
	s.enter(log, StateValidating)

	if err := validator.ValidateURL(url); err != nil {
		s.fail(log, KindInvalidURL, err)
		return nil, err
	}

	s.enter(log, StateCheckingExisting)
	existing, err := s.store.FindByURL(ctx, url)
	if err != nil {
		log.Warn("lookup failed, treating as not downloaded", zap.Error(err))
	} else if existing != nil {
		s.enter(log, StateShortCircuit)
		log.Info("already downloaded", zap.String("path", existing.FilePath))
		return existing, nil
	}

	s.enter(log, StateDownloading)
	title, path, err := s.gateway.Download(ctx, url)
	if err != nil {
		var dlErr *DownloadError
		if !errors.As(err, &dlErr) {
			err = NewDownloadError(url, err)
		}
		s.fail(log, KindDownloadFailed, err)
		return nil, err
	}

	s.enter(log, StatePersisting)
	record := &models.VideoRecord{
		URL:          url,
		Title:        title,
		FilePath:     path,
		DownloadedAt: s.now().UTC(),
	}
	if err := s.store.Save(ctx, record); err != nil {
		notSaved := &NotSavedError{Reason: err.Error(), Err: err}
		s.fail(log, KindNotSaved, notSaved)
		return nil, notSaved
	}

	s.enter(log, StateDone)
	log.Info("download recorded", zap.String("title", title), zap.String("path", path))
	return record, nil
}

// History returns all recorded downloads, most recent first.
func (s *Service) History(ctx context.Context) ([]models.VideoRecord, error) {
	return s.store.ListAll(ctx)
}

func (s *Service) enter(log *zap.Logger, state State) {
	log.Debug("state", zap.String("state", string(state)))
}

func (s *Service) fail(log *zap.Logger, kind Kind, err error) {
	log.Warn("execute failed",
		zap.String("state", string(StateFailed)),
		zap.String("kind", string(kind)),
		zap.Error(err))
}
