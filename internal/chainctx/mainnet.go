package chainctx

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Mainnet is the live Context, backed by a Solana JSON-RPC client.
type Mainnet struct {
	client *rpc.Client
}

// NewMainnet wraps an existing RPC client. Callers typically construct
// client with rpc.New(endpoint).
func NewMainnet(client *rpc.Client) *Mainnet {
	return &Mainnet{client: client}
}

// LatestBlockhash queries the RPC node for the current blockhash.
func (m *Mainnet) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	result, err := m.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	return result.Value.Blockhash, nil
}

// ProgramID returns the trade-with-me program's address.
func (m *Mainnet) ProgramID() solana.PublicKey {
	return programID
}
