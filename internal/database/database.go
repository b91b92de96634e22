package database

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite
const DriverName = "sqlite"

// DB wraps the history database connection
type DB struct {
	*sql.DB
	log *zap.Logger
}

// New opens (creating if needed) the SQLite file at path
func New(path string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One statement sequence at a time; this also keeps the busy timeout on the only connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	logger.Named("db").Info("database opened", zap.String("path", path))
	return &DB{DB: db, log: logger.Named("db")}, nil
}
