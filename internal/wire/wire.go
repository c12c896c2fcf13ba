// Package wire defines the push-channel JSON frames exchanged between a
// trade session and its connected clients.
package wire

import (
	"encoding/json"
	"fmt"
)

// Inbound message type tags.
const (
	TypeOfferTokens         = "OfferTokens"
	TypeWithdrawTokens      = "WithdrawTokens"
	TypeAcceptTrade         = "AcceptTrade"
	TypeGetTransactionToSign = "GetTransactionToSign"
	TypeSignedTransaction   = "SignedTransaction"
)

// Outbound message type tags.
const (
	TypeTradeStateUpdate = "TradeStateUpdate"
	TypeError            = "Error"
)

// InboundMessage is any message a client may send over the push channel.
type InboundMessage interface {
	inboundMessage()
}

// OfferTokens proposes adding amount of tokenMint to userAddress's offer.
type OfferTokens struct {
	UserAddress string `json:"userAddress"`
	TokenMint   string `json:"tokenMint"`
	Amount      string `json:"amount"`
}

func (OfferTokens) inboundMessage() {}

// WithdrawTokens retracts amount of tokenMint from userAddress's offer.
type WithdrawTokens struct {
	UserAddress string `json:"userAddress"`
	TokenMint   string `json:"tokenMint"`
	Amount      string `json:"amount"`
}

func (WithdrawTokens) inboundMessage() {}

// AcceptTrade records userAddress's acceptance of the current bundle.
type AcceptTrade struct {
	UserAddress string `json:"userAddress"`
}

func (AcceptTrade) inboundMessage() {}

// GetTransactionToSign requests that the unsigned settlement transaction be
// built and cached on the session. The built transaction is not included
// in any outbound frame; connections see only the resulting status.
type GetTransactionToSign struct {
	UserAddress string `json:"userAddress"`
}

func (GetTransactionToSign) inboundMessage() {}

// SignedTransaction reports that userAddress has countersigned the
// previously issued transaction.
type SignedTransaction struct {
	UserAddress string `json:"userAddress"`
	Signature   string `json:"signature"`
}

func (SignedTransaction) inboundMessage() {}

// DecodeInbound parses a text frame's JSON payload into its concrete
// InboundMessage type, dispatching on the "type" discriminator.
func DecodeInbound(data []byte) (InboundMessage, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode message envelope: %w", err)
	}

	switch envelope.Type {
	case TypeOfferTokens:
		var m OfferTokens
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return m, nil
	case TypeWithdrawTokens:
		var m WithdrawTokens
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return m, nil
	case TypeAcceptTrade:
		var m AcceptTrade
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return m, nil
	case TypeGetTransactionToSign:
		var m GetTransactionToSign
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return m, nil
	case TypeSignedTransaction:
		var m SignedTransaction
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", envelope.Type)
	}
}

// OutboundMessage is any message the server may send over the push
// channel.
type OutboundMessage interface {
	outboundMessage()
}

// TradeStateUpdate is the full current state of a session, sent after
// every successful mutation and once to every newly-registered
// connection.
type TradeStateUpdate struct {
	Type      string                       `json:"type"`
	Offers    map[string]map[string]string `json:"offers"`
	UserActed *string                      `json:"userActed"`
	Status    string                       `json:"status"`
}

func (TradeStateUpdate) outboundMessage() {}

// NewTradeStateUpdate builds a TradeStateUpdate frame.
func NewTradeStateUpdate(offers map[string]map[string]string, userActed *string, status string) TradeStateUpdate {
	return TradeStateUpdate{Type: TypeTradeStateUpdate, Offers: offers, UserActed: userActed, Status: status}
}

// Error surfaces a failed operation to the connection that caused it.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (Error) outboundMessage() {}

// NewError builds an Error frame.
func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}
