// Package database opens the storage pool from resolved configuration.  The
// default driver is go-sql-driver/mysql, which also works with MariaDB.
//
// Keys:
//
//	database.driver        – sqlx driver name (default "mysql").
//	database.url           – DSN without credentials.  Required.
//	database.user          – injected into the DSN when set.
//	database.password      – usually served by the Vault tier.
//	database.maxPoolSize   – max open connections (default 15).
//	database.maxIdle       – max idle connections (default 5).
//	database.checkConnection – probe query for Check (default "SELECT 1").
//
// Open Pings the database before returning so callers can fail fast during
// bootstrap.  Callers should Close() the returned *sqlx.DB.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/confchain/internal/config"
)

// ErrNoURL is returned when database.url resolves in no tier.
var ErrNoURL = errors.New("database: database.url is not set")

// Settings is the pool description derived from configuration.
type Settings struct {
	Driver  string
	DSN     string
	MaxOpen int
	MaxIdle int
}

// SettingsFrom reads the database.* keys from cfg.
func SettingsFrom(cfg config.Reader) (Settings, error) {
	s := Settings{Driver: cfg.String("database.driver", "mysql")}

	url, ok := cfg.GetString("database.url")
	if !ok || url == "" {
		return Settings{}, ErrNoURL
	}
	s.DSN = url

	if s.Driver == "mysql" {
		mc, err := mysql.ParseDSN(url)
		if err != nil {
			return Settings{}, fmt.Errorf("database: parse url: %w", err)
		}
		if user, ok := cfg.GetString("database.user"); ok {
			mc.User = user
		}
		if pw, ok := cfg.GetString("database.password"); ok {
			mc.Passwd = pw
		}
		mc.ParseTime = true
		s.DSN = mc.FormatDSN()
	}

	var err error
	if s.MaxOpen, err = cfg.IntOr("database.maxPoolSize", 15); err != nil {
		return Settings{}, err
	}
	if s.MaxIdle, err = cfg.IntOr("database.maxIdle", 5); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Open resolves Settings from cfg and opens the pool.
func Open(cfg config.Reader) (*sqlx.DB, error) {
	s, err := SettingsFrom(cfg)
	if err != nil {
		return nil, err
	}
	return OpenWithSettings(s)
}

// OpenWithSettings opens and pings a pool with a 30-minute connection
// lifetime.
func OpenWithSettings(s Settings) (*sqlx.DB, error) {
	db, err := sqlx.Open(s.Driver, s.DSN)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(s.MaxOpen)
	db.SetMaxIdleConns(s.MaxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Check runs the configured probe query.
func Check(ctx context.Context, db *sqlx.DB, cfg config.Reader) error {
	q := cfg.String("database.checkConnection", "SELECT 1")
	var one int
	if err := db.GetContext(ctx, &one, q); err != nil {
		return fmt.Errorf("database: check: %w", err)
	}
	return nil
}
