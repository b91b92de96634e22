package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/artur/tubesave/internal/database/models"
)

// TimeLayout is the fixed-width ISO-8601 form stored in downloaded_at.
// Fixed width keeps lexical order equal to chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// VideoRepository handles download history persistence in SQLite
type VideoRepository struct {
	db  *sqlx.DB
	log *zap.Logger
}

// NewVideoRepository creates a new VideoRepository
func NewVideoRepository(db *sql.DB, logger *zap.Logger) *VideoRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VideoRepository{
		db:  sqlx.NewDb(db, "sqlite"),
		log: logger.Named("repository"),
	}
}

type videoRow struct {
	ID           int64  `db:"id"`
	URL          string `db:"url"`
	Title        string `db:"title"`
	FilePath     string `db:"file_path"`
	DownloadedAt string `db:"downloaded_at"`
}

func (row videoRow) record() (models.VideoRecord, error) {
	downloadedAt, err := time.Parse(TimeLayout, row.DownloadedAt)
	if err != nil {
		return models.VideoRecord{}, fmt.Errorf("failed to parse downloaded_at %q: %w", row.DownloadedAt, err)
	}
	return models.VideoRecord{
		ID:           row.ID,
		URL:          row.URL,
		Title:        row.Title,
		FilePath:     row.FilePath,
		DownloadedAt: downloadedAt.UTC(),
	}, nil
}

// Save inserts a download record. A record with the same URL is left untouched
// and no error is reported. On insert record.ID is set to the new row ID.
func (r *VideoRepository) Save(ctx context.Context, record *models.VideoRecord) error {
	query := `
		INSERT INTO videos (url, title, file_path, downloaded_at)
		VALUES (:url, :title, :file_path, :downloaded_at)
		ON CONFLICT(url) DO NOTHING
	`

	res, err := r.db.NamedExecContext(ctx, query, videoRow{
		URL:          record.URL,
		Title:        record.Title,
		FilePath:     record.FilePath,
		DownloadedAt: record.DownloadedAt.UTC().Format(TimeLayout),
	})
	if err != nil {
		return fmt.Errorf("failed to save video: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save video: %w", err)
	}
	if inserted == 0 {
		r.log.Warn("video already recorded", zap.String("url", record.URL))
		return nil
	}

	if record.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("failed to read video id: %w", err)
	}
	r.log.Debug("video saved", zap.String("url", record.URL), zap.Int64("id", record.ID))
	return nil
}

// FindByURL returns (nil, nil) if no record exists for url
func (r *VideoRepository) FindByURL(ctx context.Context, url string) (*models.VideoRecord, error) {
	var row videoRow
	err := r.db.GetContext(ctx, &row, `SELECT id, url, title, file_path, downloaded_at FROM videos WHERE url = ? LIMIT 1`, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find video: %w", err)
	}

	record, err := row.record()
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListAll returns all records, most recent first
func (r *VideoRepository) ListAll(ctx context.Context) ([]models.VideoRecord, error) {
	var rows []videoRow
	query := `SELECT id, url, title, file_path, downloaded_at FROM videos ORDER BY downloaded_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	records := make([]models.VideoRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.record()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
