// Package tokenservice discovers a wallet's SPL token balances from chain
// RPC and feeds them into the token-amount cache (C2) that the session
// engine consults for offer ceilings. Resolving a mint's display metadata
// is delegated to metadatastore; this package never talks to Metaplex or
// IPFS itself.
package tokenservice

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/klingon-exchange/trade-with-me/internal/metadatastore"
	"github.com/klingon-exchange/trade-with-me/internal/tokencache"
	"github.com/klingon-exchange/trade-with-me/pkg/money"
)

// splTokenProgramID is the SPL Token program every owned token account is
// filtered against.
const splTokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// TokenAccount is one of a wallet's parsed SPL token holdings.
type TokenAccount struct {
	TokenAccount string `json:"tokenAccount"`
	Mint         string `json:"mint"`
	Balance      string `json:"balance"`
	IsNFT        bool   `json:"isNft"`
	Name         string `json:"name,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
	URI          string `json:"uri,omitempty"`
}

// parsedTokenAccount mirrors the "jsonParsed" encoding's info object for an
// SPL token account, as returned by getTokenAccountsByOwner.
type parsedTokenAccount struct {
	Info struct {
		Mint        string `json:"mint"`
		TokenAmount struct {
			Amount   string `json:"amount"`
			Decimals uint8  `json:"decimals"`
			UIAmount string `json:"uiAmountString"`
		} `json:"tokenAmount"`
	} `json:"info"`
}

// Service discovers wallet balances and keeps the token-amount cache warm.
type Service struct {
	rpcClient *rpc.Client
	metadata  *metadatastore.Store
	cache     *tokencache.Cache
}

// New returns a Service that queries rpcClient and resolves metadata via
// metadata, caching every non-zero balance it discovers in cache.
func New(rpcClient *rpc.Client, metadata *metadatastore.Store, cache *tokencache.Cache) *Service {
	return &Service{rpcClient: rpcClient, metadata: metadata, cache: cache}
}

// FetchTokens queries every SPL token account owned by walletAddress,
// resolves each mint's cached display metadata, caches the balances for
// use as offer ceilings, and returns them for the HTTP /tokens response.
func (s *Service) FetchTokens(ctx context.Context, walletAddress string) ([]TokenAccount, error) {
	owner, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address %q: %w", walletAddress, err)
	}
	programID := solana.MustPublicKeyFromBase58(splTokenProgramID)

	result, err := s.rpcClient.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingJSONParsed},
	)
	if err != nil {
		return nil, fmt.Errorf("get token accounts by owner: %w", err)
	}

	balances := make(tokencache.Balances)
	accounts := make([]TokenAccount, 0, len(result.Value))

	for _, keyed := range result.Value {
		raw := keyed.Account.Data.GetRawJSON()
		if raw == nil {
			continue
		}
		account, amount, ok := parseTokenAccount(keyed.Pubkey.String(), raw)
		if !ok {
			continue
		}

		balances[account.Mint] = amount
		if meta, err := s.metadata.Get(account.Mint); err == nil {
			account.Name = meta.Name
			account.Symbol = meta.Symbol
			account.URI = meta.URI
		}
		accounts = append(accounts, account)
	}

	s.cache.Insert(walletAddress, balances)
	return accounts, nil
}

// parseTokenAccount decodes a single jsonParsed token account's raw "parsed"
// object into a TokenAccount and its Amount, skipping (ok=false) accounts
// with a zero or malformed balance.
func parseTokenAccount(tokenAccountAddress string, raw []byte) (TokenAccount, money.Amount, bool) {
	var parsed struct {
		Parsed parsedTokenAccount `json:"parsed"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return TokenAccount{}, money.Zero, false
	}

	info := parsed.Parsed.Info
	amount := money.NewAmountFromRaw(parseUint(info.TokenAmount.Amount), info.TokenAmount.Decimals)
	if !amount.IsPositive() {
		return TokenAccount{}, money.Zero, false
	}

	account := TokenAccount{
		TokenAccount: tokenAccountAddress,
		Mint:         info.Mint,
		Balance:      amount.String(),
		IsNFT:        info.TokenAmount.Amount == "1" && info.TokenAmount.Decimals == 0,
	}
	return account, amount, true
}

func parseUint(s string) uint64 {
	var n uint64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + uint64(c-'0')
	}
	return n
}
