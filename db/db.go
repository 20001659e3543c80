package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/inconshreveable/log15/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var logger = log15.New("module", "db")

// Store is the durable store for watch configs, captured messages and
// backup records.
type Store struct {
	DB *gorm.DB
}

// Open connects to dsn and migrates the schema. A postgres:// or
// postgresql:// URL selects Postgres, anything else is a SQLite file path.
func Open(dsn string) (*Store, error) {
	dialector, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("Open: failed to connect: %w", err)
	}

	if err := gdb.AutoMigrate(&WatchConfig{}, &CapturedMessage{}, &BackupRecord{}); err != nil {
		return nil, fmt.Errorf("Open: failed to migrate schema: %w", err)
	}

	logger.Info("Connected to DB", "driver", dialector.Name())
	return &Store{DB: gdb}, nil
}

func dialectorFor(dsn string) (gorm.Dialector, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn), nil
	}
	if dsn == "" {
		dsn = "data.db"
	}
	if dir := filepath.Dir(strings.SplitN(dsn, "?", 2)[0]); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("Open: failed to create db directory: %w", err)
		}
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	// WAL keeps dashboard reads from blocking capture writes.
	return sqlite.Open(dsn + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
