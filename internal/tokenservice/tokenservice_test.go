package tokenservice

import "testing"

func TestParseTokenAccountFungible(t *testing.T) {
	raw := []byte(`{
		"parsed": {
			"info": {
				"mint": "TokenA",
				"tokenAmount": {"amount": "1500000", "decimals": 6, "uiAmountString": "1.5"}
			}
		}
	}`)

	account, amount, ok := parseTokenAccount("AccountA", raw)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if account.Mint != "TokenA" || account.TokenAccount != "AccountA" {
		t.Errorf("account = %+v, want mint=TokenA tokenAccount=AccountA", account)
	}
	if account.IsNFT {
		t.Error("expected IsNFT=false for a fungible balance")
	}
	if amount.String() != "1.5" {
		t.Errorf("amount = %s, want 1.5", amount.String())
	}
}

func TestParseTokenAccountNFT(t *testing.T) {
	raw := []byte(`{
		"parsed": {
			"info": {
				"mint": "MintNFT",
				"tokenAmount": {"amount": "1", "decimals": 0, "uiAmountString": "1"}
			}
		}
	}`)

	account, _, ok := parseTokenAccount("AccountB", raw)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if !account.IsNFT {
		t.Error("expected IsNFT=true for amount=1 decimals=0")
	}
}

func TestParseTokenAccountZeroBalanceSkipped(t *testing.T) {
	raw := []byte(`{
		"parsed": {
			"info": {
				"mint": "TokenA",
				"tokenAmount": {"amount": "0", "decimals": 6, "uiAmountString": "0"}
			}
		}
	}`)

	if _, _, ok := parseTokenAccount("AccountC", raw); ok {
		t.Error("expected ok=false for zero balance")
	}
}

func TestParseTokenAccountMalformedSkipped(t *testing.T) {
	if _, _, ok := parseTokenAccount("AccountD", []byte("not json")); ok {
		t.Error("expected ok=false for malformed JSON")
	}
}

func TestParseUint(t *testing.T) {
	cases := map[string]uint64{"0": 0, "42": 42, "1500000": 1500000, "not-a-number": 0}
	for in, want := range cases {
		if got := parseUint(in); got != want {
			t.Errorf("parseUint(%q) = %d, want %d", in, got, want)
		}
	}
}
