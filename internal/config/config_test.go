package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Postgres.Host != "localhost" {
		t.Errorf("expected localhost, got %s", cfg.Postgres.Host)
	}
	if cfg.ListenAddr != "0.0.0.0:3000" {
		t.Errorf("expected 0.0.0.0:3000, got %s", cfg.ListenAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected info, got %s", cfg.LogLevel)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Postgres.Database != "trade_with_me" {
		t.Errorf("expected default database name, got %s", cfg.Postgres.Database)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("postgres:\n  host: db.internal\n  port: 6543\nrpc_url: https://example.test\nlisten_addr: 0.0.0.0:8080\n")
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Postgres.Host != "db.internal" || cfg.Postgres.Port != 6543 {
		t.Errorf("postgres = %+v, want overridden host/port", cfg.Postgres)
	}
	if cfg.RPCURL != "https://example.test" {
		t.Errorf("rpc_url = %s, want overridden", cfg.RPCURL)
	}
	if cfg.ListenAddr != "0.0.0.0:8080" {
		t.Errorf("listen_addr = %s, want overridden", cfg.ListenAddr)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d"}
	dsn := p.DSN()
	want := "host=h port=5432 user=u password=p dbname=d sslmode=disable"
	if dsn != want {
		t.Errorf("DSN() = %q, want %q", dsn, want)
	}
}
