// Package metadatastore persists the token metadata cache: a thin SQLite
// CRUD layer over the metadata(mint_address, name, symbol, uri, image)
// table (§6). Fetching the values from Metaplex/IPFS and resizing images
// is outside the core's scope — this package only stores and serves
// whatever values the caller already resolved.
package metadatastore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no metadata row exists for a mint.
var ErrNotFound = errors.New("token metadata not found")

// TokenMetadata is a row of the metadata table.
type TokenMetadata struct {
	MintAddress string
	Name        string
	Symbol      string
	URI         string
	Image       string
}

// Store wraps a SQLite connection for the metadata table.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures the metadata table exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create metadata store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping metadata store: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			mint_address TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			symbol TEXT NOT NULL,
			uri TEXT NOT NULL,
			image TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize metadata schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts or replaces a mint's cached metadata.
func (s *Store) Upsert(m TokenMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO metadata (mint_address, name, symbol, uri, image)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(mint_address) DO UPDATE SET
			name = excluded.name, symbol = excluded.symbol,
			uri = excluded.uri, image = excluded.image
	`, m.MintAddress, m.Name, m.Symbol, m.URI, m.Image)
	if err != nil {
		return fmt.Errorf("failed to upsert token metadata: %w", err)
	}
	return nil
}

// Get retrieves a mint's cached metadata.
func (s *Store) Get(mintAddress string) (*TokenMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var m TokenMetadata
	err := s.db.QueryRow(`
		SELECT mint_address, name, symbol, uri, image FROM metadata WHERE mint_address = ?
	`, mintAddress).Scan(&m.MintAddress, &m.Name, &m.Symbol, &m.URI, &m.Image)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token metadata: %w", err)
	}
	return &m, nil
}
