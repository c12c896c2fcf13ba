package txbuilder

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/klingon-exchange/trade-with-me/internal/chainctx"
	"github.com/klingon-exchange/trade-with-me/pkg/money"
)

func newTestAddress(t *testing.T, seed byte) string {
	t.Helper()
	var raw [32]byte
	for i := range raw {
		raw[i] = seed
	}
	return solana.PublicKeyFromBytes(raw[:]).String()
}

func TestCreateTransactionRejectsWrongPartyCount(t *testing.T) {
	b := New(chainctx.Test{})

	offers := map[string]money.OfferBundle{
		newTestAddress(t, 1): {"mint": amt(t, "1")},
	}

	_, err := b.CreateTransaction(context.Background(), offers)
	if err == nil {
		t.Fatal("expected error for single-party trade, got nil")
	}
	var txErr *Error
	if !errors.As(err, &txErr) || txErr.Kind != KindInvalidParties {
		t.Errorf("got %v, want KindInvalidParties", err)
	}
}

func TestCreateTransactionRejectsFullyCanceledTrade(t *testing.T) {
	b := New(chainctx.Test{})

	user1 := newTestAddress(t, 1)
	user2 := newTestAddress(t, 2)
	mint := newTestAddress(t, 3)

	offers := map[string]money.OfferBundle{
		user1: {mint: amt(t, "5")},
		user2: {mint: amt(t, "5")},
	}

	_, err := b.CreateTransaction(context.Background(), offers)
	if err == nil {
		t.Fatal("expected error for fully-canceled trade, got nil")
	}
	var txErr *Error
	if !errors.As(err, &txErr) || txErr.Kind != KindEmptyTrade {
		t.Errorf("got %v, want KindEmptyTrade", err)
	}
}

func TestCreateTransactionBuildsUnsignedTransaction(t *testing.T) {
	b := New(chainctx.Test{})

	user1 := newTestAddress(t, 1)
	user2 := newTestAddress(t, 2)
	mintA := newTestAddress(t, 3)
	mintB := newTestAddress(t, 4)

	offers := map[string]money.OfferBundle{
		user1: {mintA: amt(t, "10")},
		user2: {mintB: amt(t, "2.5")},
	}

	tx, err := b.CreateTransaction(context.Background(), offers)
	if err != nil {
		t.Fatalf("CreateTransaction returned error: %v", err)
	}
	if len(tx.Message.Instructions) != 1 {
		t.Fatalf("got %d instructions, want 1", len(tx.Message.Instructions))
	}
	if !tx.Message.AccountKeys[0].Equals(solana.MustPublicKeyFromBase58(user1)) {
		t.Errorf("payer = %s, want lexicographically-first party %s", tx.Message.AccountKeys[0], user1)
	}
}
