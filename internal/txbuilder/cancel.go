package txbuilder

import "github.com/klingon-exchange/trade-with-me/pkg/money"

// cancelOutTradeTokens removes the overlap between two parties' offers: for
// any mint both parties are offering, the smaller amount is subtracted from
// both sides, so only the net difference (if any) remains. A mint present
// in the output of only one side means that side still owes the other that
// net amount; a mint absent from both means the offers exactly matched.
func cancelOutTradeTokens(offers1, offers2 money.OfferBundle) (money.OfferBundle, money.OfferBundle) {
	net1 := make(money.OfferBundle, len(offers1))
	for mint, amount := range offers1 {
		net1[mint] = amount
	}
	net2 := make(money.OfferBundle, len(offers2))
	for mint, amount := range offers2 {
		net2[mint] = amount
	}

	for mint, amount1 := range net1 {
		amount2, ok := net2[mint]
		if !ok {
			continue
		}

		switch amount2.Cmp(amount1) {
		case 1: // amount2 > amount1
			net2[mint] = amount2.Sub(amount1)
			net1[mint] = money.Zero
		case -1: // amount2 < amount1
			net1[mint] = amount1.Sub(amount2)
			net2[mint] = money.Zero
		default: // equal
			net1[mint] = money.Zero
			net2[mint] = money.Zero
		}
	}

	retainPositive(net1)
	retainPositive(net2)

	return net1, net2
}

func retainPositive(offers money.OfferBundle) {
	for mint, amount := range offers {
		if !amount.IsPositive() {
			delete(offers, mint)
		}
	}
}
