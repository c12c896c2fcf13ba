package money

import "fmt"

// OfferBundle is a party's current offer: a mapping from token mint address
// to the amount of that token being offered. The zero-amount key is never
// present — withdrawing a token removes its entry rather than storing zero.
type OfferBundle map[string]Amount

// NewOfferBundle returns an empty bundle.
func NewOfferBundle() OfferBundle {
	return make(OfferBundle)
}

// WithTokens returns a copy of the bundle with amount added to mint's
// existing offer (or set, if mint was not previously offered). It never
// mutates the receiver, matching the engine's copy-on-write state model.
func (b OfferBundle) WithTokens(mint string, amount Amount) (OfferBundle, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("offer amount for %s must be strictly positive", mint)
	}

	next := b.clone()
	if existing, ok := next[mint]; ok {
		next[mint] = existing.Add(amount)
	} else {
		next[mint] = amount
	}
	return next, nil
}

// WithoutTokens returns a copy of the bundle with amount removed from
// mint's offer. It errors if mint is not offered or the withdrawal would
// take the balance below zero. A withdrawal that exactly empties a mint's
// offer removes the key entirely, preserving the positive-amount invariant.
func (b OfferBundle) WithoutTokens(mint string, amount Amount) (OfferBundle, error) {
	existing, ok := b[mint]
	if !ok {
		return nil, fmt.Errorf("mint %s is not part of this offer", mint)
	}
	if amount.Cmp(existing) > 0 {
		return nil, fmt.Errorf("cannot withdraw %s of %s, only %s offered", amount, mint, existing)
	}

	next := b.clone()
	remaining := existing.Sub(amount)
	if remaining.IsZero() {
		delete(next, mint)
	} else {
		next[mint] = remaining
	}
	return next, nil
}

// IsEmpty reports whether the bundle offers no tokens at all.
func (b OfferBundle) IsEmpty() bool {
	return len(b) == 0
}

func (b OfferBundle) clone() OfferBundle {
	next := make(OfferBundle, len(b))
	for mint, amount := range b {
		next[mint] = amount
	}
	return next
}
