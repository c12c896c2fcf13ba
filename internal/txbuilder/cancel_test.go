package txbuilder

import (
	"testing"

	"github.com/klingon-exchange/trade-with-me/pkg/money"
)

func amt(t *testing.T, s string) money.Amount {
	t.Helper()
	a, err := money.NewAmountFromString(s)
	if err != nil {
		t.Fatalf("NewAmountFromString(%q): %v", s, err)
	}
	return a
}

// TestCancelOutSameTokenTransfers mirrors the original implementation's
// should_cancel_out_same_token_transfers fixture: two parties each offer a
// mix of tokens, some overlapping, and only the net difference should
// survive cancellation.
func TestCancelOutSameTokenTransfers(t *testing.T) {
	offers1 := money.OfferBundle{
		"token1": amt(t, "10.0"),
		"token2": amt(t, "3.5"),
		"token3": amt(t, "4.0"),
		"token6": amt(t, "4.0"),
		"token7": amt(t, "4.0"),
	}
	offers2 := money.OfferBundle{
		"token2": amt(t, "10.0"),
		"token4": amt(t, "1.0"),
		"token5": amt(t, "4.0"),
		"token6": amt(t, "4.0"),
		"token7": amt(t, "0.2"),
	}

	net1, net2 := cancelOutTradeTokens(offers1, offers2)

	assertAmount(t, net1, "token1", "10")
	assertAbsent(t, net1, "token2")
	assertAmount(t, net1, "token3", "4")
	assertAmount(t, net2, "token2", "6.5")
	assertAmount(t, net2, "token4", "1")
	assertAmount(t, net2, "token5", "4")
	assertAbsent(t, net1, "token6")
	assertAbsent(t, net2, "token6")
	assertAmount(t, net1, "token7", "3.8")
	assertAbsent(t, net2, "token7")
}

func TestCancelOutTradeTokensDoesNotMutateInputs(t *testing.T) {
	offers1 := money.OfferBundle{"token1": amt(t, "5")}
	offers2 := money.OfferBundle{"token1": amt(t, "2")}

	cancelOutTradeTokens(offers1, offers2)

	assertAmount(t, offers1, "token1", "5")
	assertAmount(t, offers2, "token1", "2")
}

func assertAmount(t *testing.T, b money.OfferBundle, mint, want string) {
	t.Helper()
	got, ok := b[mint]
	if !ok {
		t.Errorf("%s: missing, want %s", mint, want)
		return
	}
	if got.String() != want {
		t.Errorf("%s = %s, want %s", mint, got, want)
	}
}

func assertAbsent(t *testing.T, b money.OfferBundle, mint string) {
	t.Helper()
	if _, ok := b[mint]; ok {
		t.Errorf("%s: expected absent, found %s", mint, b[mint])
	}
}
