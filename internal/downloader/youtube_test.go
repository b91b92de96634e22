package downloader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/artur/tubesave/internal/archive"
)

type fakeClient struct {
	video     *youtube.Video
	videoErr  error
	body      io.Reader
	streamErr error
	selected  *youtube.Format
}

func (c *fakeClient) GetVideoContext(_ context.Context, _ string) (*youtube.Video, error) {
	return c.video, c.videoErr
}

func (c *fakeClient) GetStreamContext(_ context.Context, _ *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error) {
	c.selected = format
	if c.streamErr != nil {
		return nil, 0, c.streamErr
	}
	return io.NopCloser(c.body), 0, nil
}

// failingReader returns data followed by err.
type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

var testFormats = youtube.FormatList{
	{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, QualityLabel: "360p", Width: 640, Height: 360, AudioChannels: 2, Bitrate: 500},
	{ItagNo: 22, MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`, QualityLabel: "720p", Width: 1280, Height: 720, AudioChannels: 2, Bitrate: 1500},
	{ItagNo: 43, MimeType: `video/webm; codecs="vp8, vorbis"`, QualityLabel: "720p", Width: 1280, Height: 720, AudioChannels: 2, Bitrate: 1400},
	{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`, QualityLabel: "1080p", Width: 1920, Height: 1080, Bitrate: 4000},
	{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, AudioChannels: 2, Bitrate: 130000},
	{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`, AudioChannels: 2, Bitrate: 130000},
	{ItagNo: 250, MimeType: `audio/webm; codecs="opus"`, AudioChannels: 2, Bitrate: 70000},
}

func newTestDownloader(t *testing.T, client *fakeClient, opts ...Option) (*YouTubeDownloader, string) {
	t.Helper()
	dir := t.TempDir()
	opts = append([]Option{WithOutputDir(dir), WithLogger(zaptest.NewLogger(t))}, opts...)
	d := NewYouTubeDownloader(opts...)
	d.client = client
	return d, dir
}

func TestSelectFormat(t *testing.T) {
	tests := []struct {
		name     string
		formats  youtube.FormatList
		mode     Mode
		wantItag int
		wantErr  bool
	}{
		{"video prefers highest progressive mp4", testFormats, ModeVideo, 22, false},
		{"audio prefers m4a on equal bitrate", testFormats, ModeAudio, 140, false},
		{"video without progressive formats", testFormats[3:], ModeVideo, 0, true},
		{"audio without audio-only formats", testFormats[:4], ModeAudio, 0, true},
		{"empty list", nil, ModeVideo, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := selectFormat(tt.formats, tt.mode)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got format %d", f.ItagNo)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.ItagNo != tt.wantItag {
				t.Errorf("selectFormat() = itag %d, want %d", f.ItagNo, tt.wantItag)
			}
		})
	}
}

func TestParseQualityNum(t *testing.T) {
	tests := []struct {
		quality  string
		expected int
	}{
		{"360p", 360},
		{"720p", 720},
		{"1080p60", 1080},
		{"2160p", 2160},
		{"invalid", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.quality, func(t *testing.T) {
			if got := parseQualityNum(tt.quality); got != tt.expected {
				t.Errorf("parseQualityNum(%q) = %d, want %d", tt.quality, got, tt.expected)
			}
		})
	}
}

func TestRenderFilename(t *testing.T) {
	video := &youtube.Video{ID: "abc123", Author: "Some/Channel"}
	mp4 := &youtube.Format{MimeType: `video/mp4; codecs="avc1"`}
	m4a := &youtube.Format{MimeType: `audio/mp4; codecs="mp4a.40.2"`}

	tests := []struct {
		name     string
		template string
		title    string
		format   *youtube.Format
		want     string
	}{
		{"default template", "", "My Video", mp4, "My Video.mp4"},
		{"audio extension", DefaultTemplate, "Song", m4a, "Song.m4a"},
		{"all placeholders", "{author} - {title} [{id}].{ext}", "Clip", mp4, "Some-Channel - Clip [abc123].mp4"},
		{"extension appended", "{id}", "Clip", mp4, "abc123.mp4"},
		{"unsafe title", DefaultTemplate, `a<b>:c"d/e\f|g?h*`, mp4, "a-b--c-d-e-f-g-h-.mp4"},
		{"blank title", DefaultTemplate, "   ", mp4, "untitled.mp4"},
		{"dot title", "{title}", ".", mp4, "untitled.mp4"},
		{"dot-dot title", "{title}", "..", mp4, "untitled.mp4"},
		{"dots with spaces", DefaultTemplate, " ... ", mp4, "untitled.mp4"},
		{"dots inside title", DefaultTemplate, "a..b", mp4, "a..b.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderFilename(tt.template, video, tt.title, tt.format)
			if got != tt.want {
				t.Errorf("renderFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileExt(t *testing.T) {
	tests := map[string]string{
		`video/mp4; codecs="avc1"`: "mp4",
		`video/webm`:               "webm",
		`audio/mp4`:                "m4a",
		`audio/webm; codecs=opus`:  "webm",
		`video/3gpp`:               "3gp",
		`garbage`:                  "bin",
	}
	for mime, want := range tests {
		if got := fileExt(mime); got != want {
			t.Errorf("fileExt(%q) = %q, want %q", mime, got, want)
		}
	}
}

func TestHumanSize(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("~5MB", HumanSize(5*1024*1024))
	assert.Equal("~500KB", HumanSize(500*1024))
	assert.Equal("~0KB", HumanSize(0))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("audio")
	require.NoError(t, err)
	assert.Equal(t, ModeAudio, m)

	_, err = ParseMode("mp3")
	assert.Error(t, err)
}

func TestDownload_WritesFile(t *testing.T) {
	assert := assert.New(t)
	client := &fakeClient{
		video: &youtube.Video{ID: "abc123", Title: "Test Video", Formats: testFormats},
		body:  strings.NewReader("video-bytes"),
	}
	var lastWritten int64
	d, dir := newTestDownloader(t, client, WithProgress(func(written, _ int64) {
		lastWritten = written
	}))

	title, path, err := d.Download(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)

	assert.Equal("Test Video", title)
	assert.Equal(filepath.Join(dir, "Test Video.mp4"), path)
	assert.Equal(22, client.selected.ItagNo)
	assert.Equal(int64(len("video-bytes")), lastWritten)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal("video-bytes", string(data))
	assertNoPartFiles(t, dir)
}

func TestDownload_AudioModeAndTemplate(t *testing.T) {
	client := &fakeClient{
		video: &youtube.Video{ID: "abc123", Title: "Song", Author: "Band", Formats: testFormats},
		body:  strings.NewReader("audio"),
	}
	d, dir := newTestDownloader(t, client, WithMode(ModeAudio), WithTemplate("{author}/{title}.{ext}"))

	_, path, err := d.Download(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Band", "Song.m4a"), path)
	assert.FileExists(t, path)
}

func TestDownload_EmptyTitleUsesPlaceholder(t *testing.T) {
	client := &fakeClient{
		video: &youtube.Video{ID: "abc123", Formats: testFormats},
		body:  strings.NewReader("x"),
	}
	d, dir := newTestDownloader(t, client)

	title, path, err := d.Download(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)
	assert.Equal(t, Untitled, title)
	assert.Equal(t, filepath.Join(dir, "untitled.mp4"), path)
}

func TestDownload_DotTitleStaysInOutputDir(t *testing.T) {
	client := &fakeClient{
		video: &youtube.Video{ID: "abc123", Title: "..", Formats: testFormats},
		body:  strings.NewReader("x"),
	}
	d, dir := newTestDownloader(t, client, WithTemplate("{title}"))

	title, path, err := d.Download(context.Background(), "https://youtu.be/abc123")
	require.NoError(t, err)
	assert.Equal(t, "..", title)
	assert.Equal(t, filepath.Join(dir, "untitled.mp4"), path)
	assert.FileExists(t, path)
}

func TestDownload_Failures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		client *fakeClient
		cause  error
	}{
		{"metadata", &fakeClient{videoErr: boom}, boom},
		{"no video", &fakeClient{}, nil},
		{"no format", &fakeClient{video: &youtube.Video{Title: "t", Formats: testFormats[3:4]}}, nil},
		{"stream", &fakeClient{video: &youtube.Video{Title: "t", Formats: testFormats}, streamErr: boom}, boom},
		{"copy", &fakeClient{
			video: &youtube.Video{Title: "t", Formats: testFormats},
			body:  &failingReader{data: []byte("partial"), err: boom},
		}, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, dir := newTestDownloader(t, tt.client)

			title, path, err := d.Download(context.Background(), "https://youtu.be/x")
			require.Error(t, err)
			assert.Empty(t, title)
			assert.Empty(t, path)

			var dlErr *archive.DownloadError
			require.ErrorAs(t, err, &dlErr)
			assert.Equal(t, "https://youtu.be/x", dlErr.URL)
			assert.NotEmpty(t, dlErr.Reason)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
			assertNoPartFiles(t, dir)
		})
	}
}

func TestDownload_CancelledContext(t *testing.T) {
	client := &fakeClient{
		video: &youtube.Video{Title: "t", Formats: testFormats},
		body:  strings.NewReader("data"),
	}
	d, dir := newTestDownloader(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := d.Download(ctx, "https://youtu.be/x")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assertNoPartFiles(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, "t.mp4"))
}

func assertNoPartFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.part"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
