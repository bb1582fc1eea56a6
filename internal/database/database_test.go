// internal/database/database_test.go
//
// Unit-tests for settings resolution and the probe query using sqlmock.
//
// Run: go test ./internal/database -v

package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/confchain/internal/config"
)

type secrets map[string]string

func (s secrets) Fetch(_ context.Context, _, key string) (string, bool, error) {
	v, ok := s[key]
	return v, ok, nil
}

func newConfig(kv map[string]string, opts ...config.Option) *config.Config {
	p := config.NewProperties()
	for k, v := range kv {
		p.Set(k, v)
	}
	opts = append([]config.Option{
		config.WithLogger(zap.NewNop().Sugar()),
		config.WithLookupEnv(func(string) (string, bool) { return "", false }),
	}, opts...)
	return config.New(p, opts...)
}

func TestSettingsFromMySQL(t *testing.T) {
	cfg := newConfig(map[string]string{
		"database.url":         "tcp(db:3306)/traccar",
		"database.user":        "traccar",
		"database.password":    "from-file",
		"database.maxPoolSize": "30",
	}, config.WithSecretStore(secrets{"database.password": "from-vault"}))

	s, err := SettingsFrom(cfg)
	if err != nil {
		t.Fatalf("SettingsFrom: %v", err)
	}
	if s.Driver != "mysql" || s.MaxOpen != 30 || s.MaxIdle != 5 {
		t.Fatalf("unexpected settings: %+v", s)
	}

	mc, err := mysql.ParseDSN(s.DSN)
	if err != nil {
		t.Fatalf("ParseDSN(%q): %v", s.DSN, err)
	}
	if mc.User != "traccar" || mc.Passwd != "from-vault" || mc.Addr != "db:3306" || mc.DBName != "traccar" {
		t.Fatalf("unexpected DSN fields: %+v", mc)
	}
	if !mc.ParseTime {
		t.Fatal("ParseTime should be forced on")
	}
}

func TestSettingsFromErrors(t *testing.T) {
	if _, err := SettingsFrom(newConfig(nil)); !errors.Is(err, ErrNoURL) {
		t.Fatalf("want ErrNoURL, got %v", err)
	}

	bad := newConfig(map[string]string{"database.url": "tcp(db)/x", "database.maxIdle": "many"})
	var pe *config.ParseError
	if _, err := SettingsFrom(bad); !errors.As(err, &pe) {
		t.Fatalf("want *config.ParseError, got %v", err)
	}
}

func TestSettingsFromOtherDriverKeepsURL(t *testing.T) {
	cfg := newConfig(map[string]string{
		"database.driver": "postgres",
		"database.url":    "postgres://db/traccar",
	})
	s, err := SettingsFrom(cfg)
	if err != nil {
		t.Fatalf("SettingsFrom: %v", err)
	}
	if s.DSN != "postgres://db/traccar" {
		t.Fatalf("DSN = %q", s.DSN)
	}
}

func TestCheck(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM dual`)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	cfg := newConfig(map[string]string{"database.checkConnection": "SELECT 1 FROM dual"})
	if err := Check(context.Background(), sqlx.NewDb(db, "sqlmock"), cfg); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCheckFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1`)).WillReturnError(errors.New("gone away"))

	if err := Check(context.Background(), sqlx.NewDb(db, "sqlmock"), newConfig(nil)); err == nil {
		t.Fatal("expected Check error")
	}
}
