package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options controls how the SQLite database connection is initialised.
type Options struct {
	Path          string
	Logger        *logrus.Logger
	BusyTimeout   time.Duration
	SlowThreshold time.Duration
	MaxOpenConns  int
}

const (
	defaultBusyTimeout   = 5 * time.Second
	defaultSlowThreshold = 200 * time.Millisecond
)

// Open establishes a SQLite connection using Gorm with WAL journaling.
func Open(opts Options) (*gorm.DB, error) {
	if opts.Path == "" {
		return nil, eris.New("database path is required")
	}

	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = defaultBusyTimeout
	}
	if opts.SlowThreshold <= 0 {
		opts.SlowThreshold = defaultSlowThreshold
	}

	busyMillis := int(opts.BusyTimeout / time.Millisecond)
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL", opts.Path, busyMillis)

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: newGormLogger(opts)})
	if err != nil {
		return nil, eris.Wrap(err, "opening sqlite database")
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, eris.Wrap(err, "retrieving sql.DB from gorm")
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	for _, pragma := range []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyMillis),
		"PRAGMA journal_mode = WAL;",
	} {
		if err := conn.Exec(pragma).Error; err != nil {
			return nil, eris.Wrapf(err, "applying %s", pragma)
		}
	}

	return conn, nil
}

// newGormLogger routes Gorm warnings (slow queries, errors) through logrus.
func newGormLogger(opts Options) gormlogger.Interface {
	if opts.Logger == nil {
		return gormlogger.Default.LogMode(gormlogger.Warn)
	}

	return gormlogger.New(opts.Logger.WithField("component", "gorm"), gormlogger.Config{
		SlowThreshold:             opts.SlowThreshold,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Ping checks that the underlying connection is alive.
func Ping(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return eris.New("gorm.DB is nil")
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return eris.Wrap(err, "retrieving sql.DB")
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return eris.Wrap(err, "pinging database")
	}
	return nil
}

// Close releases the underlying database resources.
func Close(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return eris.Wrap(err, "retrieving sql.DB for close")
	}

	if err := sqlDB.Close(); err != nil {
		return eris.Wrap(err, "closing database connection")
	}

	return nil
}
