package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"divisadero-api/pkg/apperr"
	"divisadero-api/pkg/config"
)

// DB holds the two handles to the hosted store: Anon uses the restricted
// credentials and is subject to row-level security, Admin uses the elevated
// credentials and bypasses it. Both are opened once at startup and passed
// explicitly to the components that need them.
type DB struct {
	Anon  *gorm.DB
	Admin *gorm.DB
}

// Connect opens both handles from configuration.
func Connect(cfg *config.DatabaseConfig) (*DB, error) {
	if cfg.Host == "" {
		return nil, apperr.New(apperr.Configuration, "DB_HOST environment variable is not set")
	}
	if cfg.User == "" || cfg.Password == "" {
		return nil, apperr.New(apperr.Configuration, "DB_USER and DB_PASSWORD environment variables are not set")
	}
	if cfg.AdminUser == "" || cfg.AdminPassword == "" {
		return nil, apperr.New(apperr.Configuration, "DB_ADMIN_USER and DB_ADMIN_PASSWORD environment variables are not set")
	}

	anon, err := open(cfg, false)
	if err != nil {
		return nil, err
	}
	admin, err := open(cfg, true)
	if err != nil {
		return nil, err
	}

	return &DB{Anon: anon, Admin: admin}, nil
}

// Get selects between the restricted and the elevated handle.
func (d *DB) Get(elevated bool) *gorm.DB {
	if elevated {
		return d.Admin
	}
	return d.Anon
}

func open(cfg *config.DatabaseConfig, elevated bool) (*gorm.DB, error) {
	pgConfig := postgres.Config{
		DSN:                  cfg.DSN(elevated),
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func logLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
