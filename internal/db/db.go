// Package db opens the datastore and applies migrations and seed data.
package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aTrapDeer/portfolio-cms/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured driver. Driver errors are translated to
// gorm sentinels (ErrDuplicatedKey...) so repositories can classify them.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(sqliteDSN(dsn))
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// A single connection serialises writers and keeps in-memory databases alive.
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return conn, nil
}

func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=1&_busy_timeout=5000"
}

func ensureDir(dsn string) error {
	if strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, ":memory:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	return nil
}

// Migrate creates or updates the schema.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Honor{},
		&models.Experience{},
		&models.ExperienceRole{},
		&models.Education{},
		&models.Skill{},
		&models.PublicProfile{},
		&models.Resume{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// At most one active profile and one active resume, enforced by the datastore too.
	for _, table := range []string{"public_profiles", "resumes"} {
		stmt := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_single_active ON %s (is_active) WHERE is_active", table, table)
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create active index on %s: %w", table, err)
		}
	}
	log.Println("Database migrated")
	return nil
}
