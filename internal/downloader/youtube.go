package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/artur/tubesave/internal/archive"
)

// videoClient is the subset of youtube.Client used by YouTubeDownloader
type videoClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// YouTubeDownloader implements archive.Gateway on top of github.com/kkdai/youtube.
type YouTubeDownloader struct {
	client    videoClient
	outputDir string
	template  string
	mode      Mode
	progress  ProgressFunc
	log       *zap.Logger
}

var _ archive.Gateway = (*YouTubeDownloader)(nil)

func NewYouTubeDownloader(opts ...Option) *YouTubeDownloader {
	d := &YouTubeDownloader{
		client:    &youtube.Client{},
		outputDir: DefaultOutputDir,
		template:  DefaultTemplate,
		mode:      ModeVideo,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches url into the output directory and returns the video title and
// the path of the written file. Every failure is an *archive.DownloadError.
func (d *YouTubeDownloader) Download(ctx context.Context, url string) (string, string, error) {
	log := d.log.With(zap.String("url", url), zap.String("mode", string(d.mode)))
	log.Info("starting download")

	video, err := d.client.GetVideoContext(ctx, url)
	if err != nil {
		return "", "", downloadError(url, fmt.Errorf("failed to get video info: %w", err))
	}
	if video == nil {
		return "", "", downloadError(url, errors.New("no video information returned"))
	}

	format, err := selectFormat(video.Formats, d.mode)
	if err != nil {
		return "", "", downloadError(url, err)
	}

	title := video.Title
	if strings.TrimSpace(title) == "" {
		title = Untitled
	}

	target := filepath.Join(d.outputDir, renderFilename(d.template, video, title, format))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", "", downloadError(url, fmt.Errorf("failed to create output directory: %w", err))
	}

	log.Debug("selected format",
		zap.Int("itag", format.ItagNo),
		zap.String("mime", format.MimeType),
		zap.String("quality", format.QualityLabel),
		zap.String("target", target))

	stream, size, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", "", downloadError(url, fmt.Errorf("failed to get stream: %w", err))
	}
	defer stream.Close()

	if err := d.save(ctx, target, stream, size); err != nil {
		return "", "", downloadError(url, err)
	}

	log.Info("download completed", zap.String("title", title), zap.String("path", target))
	return title, target, nil
}

// save writes stream to a hidden part file next to target and renames it into place.
func (d *YouTubeDownloader) save(ctx context.Context, target string, stream io.Reader, size int64) error {
	part := filepath.Join(filepath.Dir(target), "."+uuid.NewString()+".part")
	f, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	counter := &progressWriter{total: size, fn: d.progress}
	_, err = io.Copy(io.MultiWriter(f, counter), &readerContext{ctx: ctx, r: stream})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(part)
		return fmt.Errorf("failed to download video: %w", err)
	}

	if err := os.Rename(part, target); err != nil {
		os.Remove(part)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

func downloadError(url string, err error) *archive.DownloadError {
	return archive.NewDownloadError(url, err)
}

// A context-aware io.Reader wrapper.
type readerContext struct {
	ctx context.Context
	r   io.Reader
}

func (r *readerContext) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// progressWriter discards data and reports the running byte count. It must be the
// last writer of an io.MultiWriter so failed writes are not counted.
type progressWriter struct {
	written int64
	total   int64
	fn      ProgressFunc
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	if w.fn != nil {
		w.fn(w.written, w.total)
	}
	return len(p), nil
}
