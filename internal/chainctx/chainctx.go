// Package chainctx abstracts the on-chain facts the transaction builder
// needs: the current blockhash and the trade program's address. Swapping
// the implementation lets tests run without a live RPC endpoint.
package chainctx

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// tradeWithMeProgramID is the deployed address of the trade-with-me
// on-chain program.
const tradeWithMeProgramID = "DMnLeeL2qJQdWHDDnXKTyRie7o1kNvKqg74UYEqzHqgq"

// Context supplies chain facts to the transaction builder. Implementations
// must be safe for concurrent use.
type Context interface {
	// LatestBlockhash returns the most recent blockhash usable as a
	// transaction's recent_blockhash field.
	LatestBlockhash(ctx context.Context) (solana.Hash, error)

	// ProgramID returns the trade-with-me program's address.
	ProgramID() solana.PublicKey
}

var programID = solana.MustPublicKeyFromBase58(tradeWithMeProgramID)
