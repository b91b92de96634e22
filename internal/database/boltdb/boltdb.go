// Package boltdb stores download records in a bbolt file, one key per URL.
package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/artur/tubesave/internal/database/models"
)

var Buckets = struct {
	Metadata []byte
	Videos   []byte
}{
	Metadata: []byte("__metadata__"),
	Videos:   []byte("videos"),
}

var MetadataKeys = struct {
	Version []byte
}{
	Version: []byte("version"),
}

const currentVersion = 1

// VideoStore is a bbolt backed record store
type VideoStore struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt file at path and makes sure its buckets exist.
func Open(path string) (*VideoStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		metadata, err := tx.CreateBucketIfNotExists(Buckets.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(Buckets.Videos); err != nil {
			return err
		}

		var version int
		if versionBytes := metadata.Get(MetadataKeys.Version); versionBytes != nil {
			if err := json.Unmarshal(versionBytes, &version); err != nil {
				return err
			}
		}
		if version > currentVersion {
			return fmt.Errorf("unsupported database version %d", version)
		}

		versionBytes, err := json.Marshal(currentVersion)
		if err != nil {
			return err
		}
		return metadata.Put(MetadataKeys.Version, versionBytes)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise bolt database: %w", err)
	}

	return &VideoStore{db: db}, nil
}

func (s *VideoStore) Close() error {
	return s.db.Close()
}

// Save writes the record unless its URL is already present
func (s *VideoStore) Save(_ context.Context, record *models.VideoRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode video: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(Buckets.Videos)
		key := []byte(record.URL)
		if bucket.Get(key) != nil {
			return nil
		}
		return bucket.Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("failed to save video: %w", err)
	}
	return nil
}

// FindByURL returns (nil, nil) if no record exists for url
func (s *VideoStore) FindByURL(_ context.Context, url string) (*models.VideoRecord, error) {
	var record *models.VideoRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(Buckets.Videos).Get([]byte(url))
		if data == nil {
			return nil
		}
		record = &models.VideoRecord{}
		return json.Unmarshal(data, record)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find video: %w", err)
	}
	return record, nil
}

// ListAll returns all records, most recent first
func (s *VideoStore) ListAll(_ context.Context) ([]models.VideoRecord, error) {
	records := []models.VideoRecord{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(Buckets.Videos).ForEach(func(_, v []byte) error {
			var record models.VideoRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DownloadedAt.After(records[j].DownloadedAt)
	})
	return records, nil
}
