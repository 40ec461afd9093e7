package service

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// badgerLogger routes badger's internal logging through zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

// openDB opens the fixture database at path, creating it when missing.
func openDB(path string, logger *zap.Logger) (*badger.DB, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	quiet := logger.Named("badger").WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{quiet.Sugar()})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	return db, nil
}

func dbExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
