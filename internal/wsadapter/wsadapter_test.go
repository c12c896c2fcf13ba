package wsadapter

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/klingon-exchange/trade-with-me/internal/chainctx"
	"github.com/klingon-exchange/trade-with-me/internal/tokencache"
	"github.com/klingon-exchange/trade-with-me/internal/tradeengine"
	"github.com/klingon-exchange/trade-with-me/internal/txbuilder"
	"github.com/klingon-exchange/trade-with-me/internal/wire"
)

func newTestAdapter() (*Adapter, *tradeengine.Engine) {
	engine := tradeengine.New(tokencache.New(), txbuilder.New(chainctx.Test{}), nil)
	return New(engine, nil), engine
}

func TestDispatchOfferTokensWithEmptyCacheOffersNothing(t *testing.T) {
	a, engine := newTestAdapter()
	sessionID := uuid.New()
	engine.AddClient(sessionID, uuid.New(), make(chan wire.OutboundMessage, 1))

	err := a.dispatch(context.Background(), sessionID, wire.OfferTokens{
		UserAddress: "Alice",
		TokenMint:   "TokenA",
		Amount:      "1",
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	state, err := engine.Snapshot(sessionID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	// No balance was ever cached for Alice, so the offer ceiling is zero
	// and the mint key never survives into the bundle.
	if _, ok := state.Offers["Alice"]["TokenA"]; ok {
		t.Error("expected TokenA absent from Alice's bundle with an empty cache")
	}
}

func TestDispatchOfferTokensRejectsMalformedAmount(t *testing.T) {
	a, engine := newTestAdapter()
	sessionID := uuid.New()
	engine.AddClient(sessionID, uuid.New(), make(chan wire.OutboundMessage, 1))

	err := a.dispatch(context.Background(), sessionID, wire.OfferTokens{
		UserAddress: "Alice",
		TokenMint:   "TokenA",
		Amount:      "not-a-number",
	})
	if err == nil {
		t.Fatal("expected error for malformed amount, got nil")
	}
}

func TestDispatchUnknownMessageType(t *testing.T) {
	a, _ := newTestAdapter()

	err := a.dispatch(context.Background(), uuid.New(), struct{ wire.InboundMessage }{})
	if err == nil {
		t.Fatal("expected error for unhandled message type, got nil")
	}
}
