package archive

import (
	"errors"
	"fmt"

	"github.com/artur/tubesave/internal/validator"
)

// DownloadError is returned when the gateway could not produce a file for URL.
type DownloadError struct {
	URL    string
	Reason string
	Err    error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s: %s", e.URL, e.Reason)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// NewDownloadError wraps err, keeping its message as the reason.
func NewDownloadError(url string, err error) *DownloadError {
	return &DownloadError{URL: url, Reason: err.Error(), Err: err}
}

// NotSavedError is returned when a downloaded file could not be recorded in the store.
// The file itself stays on disk.
type NotSavedError struct {
	Reason string
	Err    error
}

func (e *NotSavedError) Error() string {
	return "failed to save download record: " + e.Reason
}

func (e *NotSavedError) Unwrap() error {
	return e.Err
}

// Kind classifies errors returned by Service.Execute
type Kind string

const (
	KindNone           Kind = ""
	KindInvalidURL     Kind = "invalid-url"
	KindDownloadFailed Kind = "download-failed"
	KindNotSaved       Kind = "not-saved"
	KindUnknown        Kind = "unknown"
)

// KindOf reports which kind of failure err is.
func KindOf(err error) Kind {
	var (
		invalid  *validator.InvalidURLError
		download *DownloadError
		notSaved *NotSavedError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &invalid):
		return KindInvalidURL
	case errors.As(err, &download):
		return KindDownloadFailed
	case errors.As(err, &notSaved):
		return KindNotSaved
	default:
		return KindUnknown
	}
}
