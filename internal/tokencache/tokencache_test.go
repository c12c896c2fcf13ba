package tokencache

import (
	"testing"

	"github.com/klingon-exchange/trade-with-me/pkg/money"
)

func TestCacheGetMiss(t *testing.T) {
	c := New()

	if _, ok := c.Get("wallet1"); ok {
		t.Error("Get on empty cache returned ok = true")
	}
}

func TestCacheInsertThenGet(t *testing.T) {
	c := New()

	amt, _ := money.NewAmountFromString("10")
	balances := Balances{"mintA": amt}
	c.Insert("wallet1", balances)

	got, ok := c.Get("wallet1")
	if !ok {
		t.Fatal("expected cache hit after Insert")
	}
	if got["mintA"].String() != "10" {
		t.Errorf("balances[mintA] = %s, want 10", got["mintA"])
	}
}

func TestCacheInsertReplacesExisting(t *testing.T) {
	c := New()

	amt1, _ := money.NewAmountFromString("10")
	c.Insert("wallet1", Balances{"mintA": amt1})

	amt2, _ := money.NewAmountFromString("20")
	c.Insert("wallet1", Balances{"mintA": amt2})

	got, _ := c.Get("wallet1")
	if got["mintA"].String() != "20" {
		t.Errorf("balances[mintA] = %s, want 20 after replace", got["mintA"])
	}
}
