package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/artur/tubesave/internal/database/models"
)

// MemoryVideoRepository keeps records in process memory. Nothing survives a restart.
type MemoryVideoRepository struct {
	mu      sync.RWMutex
	records []models.VideoRecord
	byURL   map[string]int
}

// NewMemoryVideoRepository creates an empty MemoryVideoRepository
func NewMemoryVideoRepository() *MemoryVideoRepository {
	return &MemoryVideoRepository{byURL: make(map[string]int)}
}

// Save stores a copy of record unless its URL is already present
func (r *MemoryVideoRepository) Save(_ context.Context, record *models.VideoRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byURL[record.URL]; ok {
		return nil
	}
	r.byURL[record.URL] = len(r.records)
	r.records = append(r.records, *record)
	return nil
}

// FindByURL returns a copy of the stored record, or nil
func (r *MemoryVideoRepository) FindByURL(_ context.Context, url string) (*models.VideoRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byURL[url]
	if !ok {
		return nil, nil
	}
	record := r.records[i]
	return &record, nil
}

// ListAll returns all records ordered by DownloadedAt, newest first. Equal timestamps
// are ordered by insertion, latest first.
func (r *MemoryVideoRepository) ListAll(_ context.Context) ([]models.VideoRecord, error) {
	r.mu.RLock()
	records := make([]models.VideoRecord, 0, len(r.records))
	for i := len(r.records) - 1; i >= 0; i-- {
		records = append(records, r.records[i])
	}
	r.mu.RUnlock()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DownloadedAt.After(records[j].DownloadedAt)
	})
	return records, nil
}

// Len returns the number of stored records
func (r *MemoryVideoRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
