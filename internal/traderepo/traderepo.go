// Package traderepo is the session-creation façade (C6): it assigns a
// fresh session identifier, persists the creation record, and returns the
// identifier. It does not otherwise participate in trade negotiation —
// that is the session engine's job once the client opens the push channel.
package traderepo

import (
	"fmt"

	"github.com/google/uuid"
)

// StatusCreated is the status a trade record is written with at creation.
const StatusCreated = "Created"

// tradeStore is the persistence dependency Service requires. pgstore.Store
// satisfies it; tests substitute a fake to avoid a live Postgres instance.
type tradeStore interface {
	CreateTrade(id, initiator, status string) error
}

// Service creates trade sessions and persists their creation record.
type Service struct {
	store tradeStore
}

// New returns a Service backed by store.
func New(store tradeStore) *Service {
	return &Service{store: store}
}

// CreateTradeSession assigns a fresh session id, persists a TradeRecord
// for initiatorAddress, and returns the id.
func (s *Service) CreateTradeSession(initiatorAddress string) (uuid.UUID, error) {
	id := uuid.New()
	if err := s.store.CreateTrade(id.String(), initiatorAddress, StatusCreated); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create trade session: %w", err)
	}
	return id, nil
}
