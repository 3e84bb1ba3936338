package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/gamebot/core/config"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunSkipsDatabaseWhenDisabled(t *testing.T) {
	called := false
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			called = true
			return nil, errors.New("unexpected")
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if called || res.DB != nil {
		t.Fatalf("database touched without host: called=%v db=%v", called, res.DB)
	}
	if err := res.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRunMigratesConfiguredDatabase(t *testing.T) {
	cfg := &coreconfig.Config{Database: coreconfig.DatabaseConfig{Host: "db", Name: "gamebot"}}
	raw, err := sql.Open("postgres", "host=db dbname=gamebot")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db := sqlx.NewDb(raw, "postgres")

	var migrated string
	res, err := Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Connect: func(_ context.Context, c coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			return db, nil
		},
		Migrate: func(_ context.Context, c coreconfig.DatabaseConfig) error {
			migrated = c.Name
			return nil
		},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.DB != db || migrated != "gamebot" {
		t.Fatalf("db=%v migrated=%q", res.DB, migrated)
	}
	_ = res.Close()
}

func TestRunReportsStageFailures(t *testing.T) {
	boom := errors.New("boom")
	cfg := &coreconfig.Config{Database: coreconfig.DatabaseConfig{Host: "db", Name: "gamebot"}}

	if _, err := Run(context.Background(), Options{Config: cfg, LoggerInit: func(*coreconfig.Config) error { return boom }}); !errors.Is(err, boom) {
		t.Fatalf("logger failure: %v", err)
	}

	_, err := Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Connect: func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			return nil, boom
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("connect failure: %v", err)
	}

	raw, _ := sql.Open("postgres", "host=db dbname=gamebot")
	db := sqlx.NewDb(raw, "postgres")
	_, err = Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Connect: func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			return db, nil
		},
		Migrate: func(context.Context, coreconfig.DatabaseConfig) error { return boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("migrate failure: %v", err)
	}
	if err := db.Ping(); err == nil {
		t.Fatal("db should be closed after migration failure")
	}

	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Fatal("nil config must fail")
	}
}
