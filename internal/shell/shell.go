// Package shell is the interactive terminal front end of tubesave.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/artur/tubesave/internal/archive"
	"github.com/artur/tubesave/internal/database/models"
)

const (
	rule       = "============================================================"
	timeFormat = "2006-01-02 15:04:05"
)

// Archiver is the part of archive.Service used by the shells.
type Archiver interface {
	Execute(ctx context.Context, url string) (*models.VideoRecord, error)
	History(ctx context.Context) ([]models.VideoRecord, error)
}

type Shell struct {
	archive  Archiver
	in       *bufio.Scanner
	out      io.Writer
	progress *Progress
	log      *zap.Logger
}

type Option func(*Shell)

// WithProgress makes the shell finish the progress bar after every download.
func WithProgress(p *Progress) Option {
	return func(s *Shell) {
		s.progress = p
	}
}

func New(archiver Archiver, in io.Reader, out io.Writer, logger *zap.Logger, opts ...Option) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Shell{
		archive: archiver,
		in:      bufio.NewScanner(in),
		out:     out,
		log:     logger.Named("shell"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Shell) Banner() {
	fmt.Fprintln(s.out, rule)
	fmt.Fprintln(s.out, " YouTube Video Downloader")
	fmt.Fprintln(s.out, rule)
	fmt.Fprintln(s.out)
}

// Run prompts for URLs until the input ends, the user types quit or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	s.Banner()
	for {
		fmt.Fprint(s.out, "Enter the video URL (or 'quit'): ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}

		url := strings.TrimSpace(s.in.Text())
		switch url {
		case "":
			fmt.Fprintln(s.out, "\nError: URL cannot be empty!")
			fmt.Fprintln(s.out)
			continue
		case "quit", "exit":
			return nil
		}

		s.Download(ctx, url)
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Download runs a single download and renders the outcome. The error is returned
// after it has been shown to the user.
func (s *Shell) Download(ctx context.Context, url string) error {
	fmt.Fprintln(s.out, "\nDownloading video, please wait...")

	record, err := s.archive.Execute(ctx, url)
	if s.progress != nil {
		s.progress.Finish()
	}
	if err != nil {
		s.renderError(err)
		fmt.Fprintln(s.out)
		return err
	}

	fmt.Fprintln(s.out, "\n"+rule)
	fmt.Fprintln(s.out, "Download completed successfully!")
	fmt.Fprintln(s.out, rule)
	s.renderRecord(record)
	fmt.Fprintln(s.out, rule)
	fmt.Fprintln(s.out)
	return nil
}

func (s *Shell) renderRecord(record *models.VideoRecord) {
	fmt.Fprintf(s.out, "Title:       %s\n", record.Title)
	fmt.Fprintf(s.out, "File:        %s\n", record.FilePath)
	fmt.Fprintf(s.out, "Downloaded:  %s\n", record.DownloadedAt.Local().Format(timeFormat))
}

func (s *Shell) renderError(err error) {
	if errors.Is(err, context.Canceled) {
		s.log.Info("download cancelled by user")
		fmt.Fprintln(s.out, "\nDownload cancelled by user.")
		return
	}

	switch archive.KindOf(err) {
	case archive.KindInvalidURL:
		s.log.Error("invalid url", zap.Error(err))
		fmt.Fprintf(s.out, "\nError: %v\n", err)
		fmt.Fprintln(s.out, "Please provide a valid URL (e.g. https://youtube.com/watch?v=...)")
	case archive.KindDownloadFailed:
		var dlErr *archive.DownloadError
		errors.As(err, &dlErr)
		s.log.Error("download failed", zap.Error(err))
		fmt.Fprintf(s.out, "\nError downloading video: %s\n", dlErr.Reason)
		fmt.Fprintln(s.out, "Check that the URL is correct and that you are connected to the internet.")
	case archive.KindNotSaved:
		s.log.Error("record not saved", zap.Error(err))
		fmt.Fprintf(s.out, "\nError saving video to the database: %v\n", err)
		fmt.Fprintln(s.out, "The video was downloaded but was not added to the history.")
	default:
		s.log.Error("unexpected error", zap.Error(err))
		fmt.Fprintf(s.out, "\nUnexpected error: %v\n", err)
		fmt.Fprintln(s.out, "Please try again or report the problem.")
	}
}

// PrintHistory lists every recorded download, most recent first.
func (s *Shell) PrintHistory(ctx context.Context) error {
	records, err := s.archive.History(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(s.out, "No downloads yet.")
		return nil
	}

	for i := range records {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, records[i].URL)
		fmt.Fprintf(s.out, "   %s\n", records[i].Title)
		fmt.Fprintf(s.out, "   %s\n", records[i].FilePath)
		fmt.Fprintf(s.out, "   %s\n", records[i].DownloadedAt.Local().Format(timeFormat))
	}
	return nil
}
