package tradeengine

import (
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/klingon-exchange/trade-with-me/internal/wire"
	"github.com/klingon-exchange/trade-with-me/pkg/money"
)

// Status is a trade session's position in its lifecycle.
type Status string

const (
	StatusTrading            Status = "Trading"
	StatusOneUserAccepted    Status = "OneUserAccepted"
	StatusAccepted           Status = "Accepted"
	StatusTransactionCreated Status = "TransactionCreated"
	StatusOneUserSigned      Status = "OneUserSigned"
	StatusTransactionSent    Status = "TransactionSent"
)

// TradeState is the negotiated state of a two-party trade. Offers is
// copy-on-write: every mutation clones the map and replaces the whole
// value rather than mutating in place, so a snapshot taken for broadcast
// remains valid after the lock that produced it is released.
type TradeState struct {
	Offers      map[string]money.OfferBundle
	UserActed   *string
	Status      Status
	Transaction *solana.Transaction
	Signatures  map[string]string
}

func newTradeState() TradeState {
	return TradeState{
		Offers: make(map[string]money.OfferBundle),
		Status: StatusTrading,
	}
}

// cloneOffers returns a shallow copy of the offers map. OfferBundle values
// themselves are copy-on-write (see pkg/money), so sharing them across the
// old and new maps is safe.
func (s TradeState) cloneOffers() map[string]money.OfferBundle {
	next := make(map[string]money.OfferBundle, len(s.Offers))
	for user, bundle := range s.Offers {
		next[user] = bundle
	}
	return next
}

// session is a registry entry: the negotiated state plus the set of
// currently-subscribed push-channel connections.
type session struct {
	state   TradeState
	clients map[uuid.UUID]chan<- wire.OutboundMessage
}

func newSession() *session {
	return &session{
		state:   newTradeState(),
		clients: make(map[uuid.UUID]chan<- wire.OutboundMessage),
	}
}
