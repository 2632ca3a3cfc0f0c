// Package db connects to PostgreSQL, applies the schema and seeds demo data.
package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-orcamentos/internal/config"
	"github.com/diewo77/go-orcamentos/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// MigrationsSource is where golang-migrate reads the SQL files from.
var MigrationsSource = "file://migrations"

// DSN resolves the connection string: a raw DATABASE_DSN wins over the individual fields.
func DSN(cfg config.DatabaseConfig) string {
	if cfg.RawDSN != "" {
		return NormalizeDSN(cfg.RawDSN)
	}
	return cfg.DSN()
}

// Connect opens the database, retrying while PostgreSQL starts up.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := DSN(cfg)
	if dsn == "" {
		return nil, errors.New("database DSN is empty, check the environment")
	}
	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	var (
		conn *gorm.DB
		err  error
	)
	for i := 1; i <= connectAttempts; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			break
		}
		log.Warn("database not ready, retrying", zap.Int("attempt", i), zap.Error(err))
		time.Sleep(connectBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
	}
	if err := conn.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	log.Info("database connected", zap.String("dsn", MaskDSN(dsn)))
	return conn, nil
}

// Migrate applies the schema. With SQL migrations enabled golang-migrate runs the files under
// ./migrations; otherwise gorm AutoMigrate is used as a development convenience.
func Migrate(conn *gorm.DB, cfg config.DatabaseConfig) error {
	if cfg.Migrations {
		if err := RunSQLMigrations(ToURLDSN(DSN(cfg))); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		return nil
	}
	return AutoMigrate(conn)
}

// AutoMigrate creates or updates every table from the models.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	for _, table := range []string{"users", "customers", "suppliers", "quotes", "orders"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// RunSQLMigrations applies pending migrations from MigrationsSource.
func RunSQLMigrations(url string) error {
	m, err := migrate.New(MigrationsSource, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
