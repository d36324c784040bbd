package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the record store named by uri. The scheme picks the backend:
// mongodb:// and mongodb+srv:// use MongoDB, postgres:// and postgresql:// use
// PostgreSQL, sqlite:// and file: use SQLite. dbName only applies to MongoDB.
func Open(ctx context.Context, uri, dbName string, log *slog.Logger) (Database, error) {
	scheme, _, _ := strings.Cut(uri, ":")

	var dialector gorm.Dialector
	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		store, err := NewMongoStore(ctx, uri, dbName, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres", "postgresql":
		dialector = postgres.Open(uri)
	case "sqlite":
		dialector = sqlite.Open(strings.TrimPrefix(uri, "sqlite://"))
	case "file":
		dialector = sqlite.Open(uri)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}

	store, err := openSQL(ctx, dialector, log)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func openSQL(ctx context.Context, dialector gorm.Dialector, log *slog.Logger) (*SQLStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(slog.NewLogLogger(log.Handler(), slog.LevelWarn), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	// Set connection pool settings
	if db.Dialector.Name() == "sqlite" {
		// a single long-lived connection avoids SQLITE_BUSY and keeps in-memory databases alive
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	log.Info("connected to record store", "backend", db.Dialector.Name())
	return NewSQLStore(db, log), nil
}
