package chainctx

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// Test is a Context for use in tests: it returns a zero blockhash instead
// of calling out to a live RPC node.
type Test struct{}

// LatestBlockhash always returns the zero hash.
func (Test) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return solana.Hash{}, nil
}

// ProgramID returns the trade-with-me program's address.
func (Test) ProgramID() solana.PublicKey {
	return programID
}
