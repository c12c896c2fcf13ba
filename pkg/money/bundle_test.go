package money

import "testing"

func TestOfferBundleWithTokensAccumulates(t *testing.T) {
	b := NewOfferBundle()

	amt1, _ := NewAmountFromString("10")
	b, err := b.WithTokens("mintA", amt1)
	if err != nil {
		t.Fatalf("WithTokens: %v", err)
	}

	amt2, _ := NewAmountFromString("5")
	b, err = b.WithTokens("mintA", amt2)
	if err != nil {
		t.Fatalf("WithTokens: %v", err)
	}

	if got := b["mintA"].String(); got != "15" {
		t.Errorf("mintA = %s, want 15", got)
	}
}

func TestOfferBundleWithTokensRejectsNonPositive(t *testing.T) {
	b := NewOfferBundle()
	if _, err := b.WithTokens("mintA", Zero); err == nil {
		t.Error("expected error offering a zero amount")
	}
}

func TestOfferBundleWithoutTokensRemovesEmptiedMint(t *testing.T) {
	b := NewOfferBundle()
	amt, _ := NewAmountFromString("10")
	b, _ = b.WithTokens("mintA", amt)

	b, err := b.WithoutTokens("mintA", amt)
	if err != nil {
		t.Fatalf("WithoutTokens: %v", err)
	}
	if _, ok := b["mintA"]; ok {
		t.Error("expected mintA to be removed after full withdrawal, zero-amount key present")
	}
}

func TestOfferBundleWithoutTokensRejectsOverWithdrawal(t *testing.T) {
	b := NewOfferBundle()
	amt, _ := NewAmountFromString("10")
	b, _ = b.WithTokens("mintA", amt)

	more, _ := NewAmountFromString("11")
	if _, err := b.WithoutTokens("mintA", more); err == nil {
		t.Error("expected error withdrawing more than offered")
	}
}

func TestOfferBundleWithoutTokensRejectsUnknownMint(t *testing.T) {
	b := NewOfferBundle()
	amt, _ := NewAmountFromString("1")
	if _, err := b.WithoutTokens("mintA", amt); err == nil {
		t.Error("expected error withdrawing from a mint never offered")
	}
}

func TestOfferBundleIsImmutable(t *testing.T) {
	b := NewOfferBundle()
	amt, _ := NewAmountFromString("10")
	b1, _ := b.WithTokens("mintA", amt)
	b2, _ := b1.WithTokens("mintA", amt)

	if got := b1["mintA"].String(); got != "10" {
		t.Errorf("original bundle mutated: b1[mintA] = %s, want 10", got)
	}
	if got := b2["mintA"].String(); got != "20" {
		t.Errorf("b2[mintA] = %s, want 20", got)
	}
}
