// Package pgstore persists trade-session creation records to Postgres. It
// is written only at session creation (§3 TradeRecord); the session engine
// itself holds no reference to it and never mutates a row after insert.
package pgstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// ErrTradeNotFound is returned when a lookup finds no matching row.
var ErrTradeNotFound = errors.New("trade record not found")

// Trade is a row of the trades table.
type Trade struct {
	ID            string
	Initiator     string
	Counterparty  *string
	Status        string
	StatusDetails json.RawMessage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Store wraps a Postgres connection pool for the trades table.
type Store struct {
	db *sql.DB
}

// Open opens a Postgres connection using dsn (see config.PostgresConfig.DSN)
// and ensures the trades table exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id uuid PRIMARY KEY,
			initiator TEXT NOT NULL,
			counterparty TEXT,
			status TEXT NOT NULL,
			status_details jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize trades schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTrade inserts a new trade record with the given status (typically
// traderepo.StatusCreated) and no counterparty yet assigned.
func (s *Store) CreateTrade(id, initiator, status string) error {
	_, err := s.db.Exec(`
		INSERT INTO trades (id, initiator, status)
		VALUES ($1, $2, $3)
	`, id, initiator, status)
	if err != nil {
		return fmt.Errorf("failed to create trade record: %w", err)
	}
	return nil
}

// GetTrade retrieves a trade record by id.
func (s *Store) GetTrade(id string) (*Trade, error) {
	var t Trade
	var counterparty sql.NullString
	var statusDetails []byte

	err := s.db.QueryRow(`
		SELECT id, initiator, counterparty, status, status_details, created_at, updated_at
		FROM trades WHERE id = $1
	`, id).Scan(&t.ID, &t.Initiator, &counterparty, &t.Status, &statusDetails, &t.CreatedAt, &t.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrTradeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade record: %w", err)
	}
	if counterparty.Valid {
		t.Counterparty = &counterparty.String
	}
	if statusDetails != nil {
		t.StatusDetails = json.RawMessage(statusDetails)
	}

	return &t, nil
}

// UpdateStatus updates a trade's status and optional structured detail blob.
func (s *Store) UpdateStatus(id, status string, details json.RawMessage) error {
	result, err := s.db.Exec(`
		UPDATE trades SET status = $1, status_details = $2, updated_at = now()
		WHERE id = $3
	`, status, details, id)
	if err != nil {
		return fmt.Errorf("failed to update trade status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrTradeNotFound
	}
	return nil
}
