// Package config holds the settings shared by the tubesave binaries and binds them to
// command line flags and environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/artur/tubesave/internal/downloader"
)

// StoreKind names a record store backend
type StoreKind string

const (
	StoreSQLite StoreKind = "sqlite"
	StoreBolt   StoreKind = "bolt"
	StoreMemory StoreKind = "memory"
)

// Default database files, used when DBPath is empty. Each store gets its own file so
// switching backends never opens the other backend's file.
const (
	DefaultSQLitePath = "db.sqlite3"
	DefaultBoltPath   = "db.bolt"
)

type Config struct {
	// DBPath overrides the default database file of the selected store.
	DBPath    string
	Store     StoreKind
	OutputDir string
	Template  string
	AudioOnly bool
	Debug     bool
	// Token is only used by the Telegram bot.
	Token string
}

func Default() Config {
	return Config{
		Store:     StoreSQLite,
		OutputDir: downloader.DefaultOutputDir,
		Template:  downloader.DefaultTemplate,
	}
}

// DatabasePath returns DBPath, or the default file of the selected store when DBPath
// is empty. The memory store has no file.
func (c Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	switch c.Store {
	case StoreSQLite:
		return DefaultSQLitePath
	case StoreBolt:
		return DefaultBoltPath
	}
	return ""
}

// Mode returns the download mode selected by AudioOnly.
func (c Config) Mode() downloader.Mode {
	if c.AudioOnly {
		return downloader.ModeAudio
	}
	return downloader.ModeVideo
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var result *multierror.Error

	if c.DBPath != "" && strings.TrimSpace(c.DBPath) == "" {
		result = multierror.Append(result, errors.New("database path must not be blank"))
	}

	switch c.Store {
	case StoreSQLite, StoreBolt, StoreMemory:
	default:
		result = multierror.Append(result, fmt.Errorf("unknown store %q, expected sqlite, bolt or memory", c.Store))
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		result = multierror.Append(result, errors.New("output directory is required"))
	}

	switch {
	case strings.TrimSpace(c.Template) == "":
		result = multierror.Append(result, errors.New("filename template is required"))
	case filepath.IsAbs(c.Template):
		result = multierror.Append(result, errors.New("filename template must be relative to the output directory"))
	case !strings.Contains(c.Template, "{title}") && !strings.Contains(c.Template, "{id}"):
		result = multierror.Append(result, errors.New("filename template must contain {title} or {id}"))
	}

	return result.ErrorOrNil()
}

// ValidateBot is Validate plus the settings only the Telegram bot needs.
func (c Config) ValidateBot() error {
	var result *multierror.Error
	if err := c.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if strings.TrimSpace(c.Token) == "" {
		result = multierror.Append(result, errors.New("telegram bot token is required"))
	}
	return result.ErrorOrNil()
}
