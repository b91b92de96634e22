// Package downloader fetches YouTube media to local disk.
package downloader

import (
	"fmt"

	"go.uber.org/zap"
)

// Mode selects which kind of stream is downloaded
type Mode string

const (
	ModeVideo Mode = "video"
	ModeAudio Mode = "audio"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeVideo, ModeAudio:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown download mode %q", s)
	}
}

const (
	DefaultOutputDir = "downloads"
	DefaultTemplate  = "{title}.{ext}"

	// Untitled replaces an empty title reported by YouTube
	Untitled = "untitled"
)

// ProgressFunc receives the number of bytes written so far and the expected total
// (0 when unknown).
type ProgressFunc func(written, total int64)

type Option func(*YouTubeDownloader)

func WithOutputDir(dir string) Option {
	return func(d *YouTubeDownloader) {
		d.outputDir = dir
	}
}

// WithTemplate sets the filename template. Supported placeholders are
// {title}, {id}, {author} and {ext}.
func WithTemplate(template string) Option {
	return func(d *YouTubeDownloader) {
		d.template = template
	}
}

func WithMode(mode Mode) Option {
	return func(d *YouTubeDownloader) {
		d.mode = mode
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(d *YouTubeDownloader) {
		d.progress = fn
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(d *YouTubeDownloader) {
		d.log = logger.Named("downloader")
	}
}
