package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/artur/tubesave/internal/archive"
	"github.com/artur/tubesave/internal/database/models"
	"github.com/artur/tubesave/internal/validator"
)

type fakeArchiver struct {
	results    map[string]error
	calls      []string
	history    []models.VideoRecord
	historyErr error
}

func (f *fakeArchiver) Execute(_ context.Context, url string) (*models.VideoRecord, error) {
	f.calls = append(f.calls, url)
	if err := f.results[url]; err != nil {
		return nil, err
	}
	return &models.VideoRecord{
		URL:          url,
		Title:        "Title of " + url,
		FilePath:     "downloads/video.mp4",
		DownloadedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (f *fakeArchiver) History(_ context.Context) ([]models.VideoRecord, error) {
	return f.history, f.historyErr
}

func newTestShell(t *testing.T, a Archiver, input string) (*Shell, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return New(a, strings.NewReader(input), out, zaptest.NewLogger(t)), out
}

func TestShell_DownloadSuccess(t *testing.T) {
	s, out := newTestShell(t, &fakeArchiver{}, "")

	err := s.Download(context.Background(), "https://youtu.be/a")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Download completed successfully!")
	assert.Contains(t, out.String(), "Title:       Title of https://youtu.be/a")
	assert.Contains(t, out.String(), "File:        downloads/video.mp4")
}

func TestShell_DownloadErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			"invalid url",
			&validator.InvalidURLError{URL: "x", Reason: validator.ReasonMalformed},
			[]string{"Error: ", "Please provide a valid URL"},
		},
		{
			"download failed",
			&archive.DownloadError{URL: "u", Reason: "video unavailable"},
			[]string{"Error downloading video: video unavailable", "connected to the internet"},
		},
		{
			"not saved",
			&archive.NotSavedError{Reason: "disk full"},
			[]string{"Error saving video to the database", "disk full", "was not added to the history"},
		},
		{
			"cancelled",
			archive.NewDownloadError("u", fmt.Errorf("failed to download video: %w", context.Canceled)),
			[]string{"Download cancelled by user."},
		},
		{
			"unknown",
			errors.New("boom"),
			[]string{"Unexpected error: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &fakeArchiver{results: map[string]error{"u": tt.err}}
			s, out := newTestShell(t, a, "")

			err := s.Download(context.Background(), "u")
			assert.Same(t, tt.err, err)
			for _, want := range tt.want {
				assert.Contains(t, out.String(), want)
			}
			assert.NotContains(t, out.String(), "Download completed")
		})
	}
}

func TestShell_RunLoop(t *testing.T) {
	a := &fakeArchiver{results: map[string]error{
		"bad": &validator.InvalidURLError{URL: "bad", Reason: validator.ReasonMalformed},
	}}
	s, out := newTestShell(t, a, "  https://youtu.be/a  \n\nbad\nquit\nhttps://youtu.be/never\n")

	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"https://youtu.be/a", "bad"}, a.calls)
	assert.Contains(t, out.String(), "YouTube Video Downloader")
	assert.Contains(t, out.String(), "Error: URL cannot be empty!")
	assert.Contains(t, out.String(), "Please provide a valid URL")
}

func TestShell_RunStopsAtEOF(t *testing.T) {
	a := &fakeArchiver{}
	s, _ := newTestShell(t, a, "https://youtu.be/a\nhttps://youtu.be/b")

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"https://youtu.be/a", "https://youtu.be/b"}, a.calls)
}

func TestShell_RunStopsWhenCancelled(t *testing.T) {
	a := &fakeArchiver{}
	s, _ := newTestShell(t, a, "https://youtu.be/a\nhttps://youtu.be/b\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, []string{"https://youtu.be/a"}, a.calls)
}

func TestShell_PrintHistory(t *testing.T) {
	a := &fakeArchiver{history: []models.VideoRecord{
		{URL: "https://youtu.be/new", Title: "New", FilePath: "downloads/new.mp4", DownloadedAt: time.Now()},
		{URL: "https://youtu.be/old", Title: "Old", FilePath: "downloads/old.mp4", DownloadedAt: time.Now().Add(-time.Hour)},
	}}
	s, out := newTestShell(t, a, "")

	require.NoError(t, s.PrintHistory(context.Background()))
	text := out.String()
	assert.Contains(t, text, "1. https://youtu.be/new")
	assert.Contains(t, text, "2. https://youtu.be/old")
	assert.Less(t, strings.Index(text, "New"), strings.Index(text, "Old"))
}

func TestShell_PrintHistoryEmpty(t *testing.T) {
	s, out := newTestShell(t, &fakeArchiver{}, "")

	require.NoError(t, s.PrintHistory(context.Background()))
	assert.Equal(t, "No downloads yet.\n", out.String())
}

func TestShell_PrintHistoryError(t *testing.T) {
	s, _ := newTestShell(t, &fakeArchiver{historyErr: errors.New("db gone")}, "")
	assert.ErrorContains(t, s.PrintHistory(context.Background()), "db gone")
}

func TestProgress(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewProgress(out)

	p.Report(512, 1024)
	p.Report(1024, 1024)
	require.NotNil(t, p.bar)
	assert.Equal(t, int64(1024), p.total)
	assert.Equal(t, int64(1024), p.bar.GetMax64())

	p.Finish()
	assert.Nil(t, p.bar)

	p.Report(10, 0)
	require.NotNil(t, p.bar)
	assert.Equal(t, int64(-1), p.total)
	p.Report(20, 2048)
	assert.Equal(t, int64(2048), p.total)
	p.Finish()
	p.Finish()
}

func TestShell_FinishesProgress(t *testing.T) {
	p := NewProgress(&bytes.Buffer{})
	p.Report(1, 2)
	s := New(&fakeArchiver{}, strings.NewReader(""), &bytes.Buffer{}, nil, WithProgress(p))

	require.NoError(t, s.Download(context.Background(), "https://youtu.be/a"))
	assert.Nil(t, p.bar)
}
