// Package tokencache holds a short-lived, per-wallet snapshot of token
// balances so repeated "what can this wallet offer" queries don't each hit
// the RPC node.
package tokencache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/klingon-exchange/trade-with-me/pkg/money"
)

// expiry is how long a wallet's balance snapshot stays valid before it
// must be refreshed from chain.
const expiry = 600 * time.Second

// defaultSize bounds the number of distinct wallets cached at once.
const defaultSize = 4096

// Balances maps a token mint address to the amount of that token a wallet
// holds.
type Balances map[string]money.Amount

// Cache is a TTL cache of per-wallet token balances, keyed by wallet
// address. Safe for concurrent use.
type Cache struct {
	inner *lru.LRU[string, Balances]
}

// New returns an empty cache with the standard 600-second entry lifetime.
func New() *Cache {
	return &Cache{inner: lru.NewLRU[string, Balances](defaultSize, nil, expiry)}
}

// Get returns the cached balances for walletAddress, if present and not
// expired.
func (c *Cache) Get(walletAddress string) (Balances, bool) {
	return c.inner.Get(walletAddress)
}

// Insert stores (or replaces) the balances for walletAddress, resetting its
// expiry.
func (c *Cache) Insert(walletAddress string, balances Balances) {
	c.inner.Add(walletAddress, balances)
}
