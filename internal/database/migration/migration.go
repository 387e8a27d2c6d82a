package migration

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var files embed.FS

// Source returns the embedded migration files as a golang-migrate source driver.
func Source() (source.Driver, error) {
	return iofs.New(files, "sql")
}

// MigrateURL rewrites a postgres:// DSN into the pgx5:// form golang-migrate registers.
func MigrateURL(dsn string) (string, error) {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix), nil
		}
	}
	return "", fmt.Errorf("unsupported dsn scheme")
}

// Up applies every pending migration. It opens its own connection from dsn and closes it on return.
func Up(ctx context.Context, dsn string, log *zap.Logger) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"))
	log.Info("db_migration_start")

	url, err := MigrateURL(dsn)
	if err != nil {
		return err
	}

	src, err := Source()
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		log.Error("db_migration_failed", zap.Error(err))
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("db_migration_skip",
			zap.String("msg_detail", "schema already up to date"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()))
		return nil
	case err != nil:
		log.Error("db_migration_failed",
			zap.Error(err),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info("db_migration_success",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
