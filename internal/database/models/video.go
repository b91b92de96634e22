package models

import "time"

// VideoRecord represents one completed download
type VideoRecord struct {
	ID           int64     `json:"-"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	FilePath     string    `json:"file_path"`
	DownloadedAt time.Time `json:"downloaded_at"`
}
